package handlers

import (
	"context"
	"fmt"
)

// Down handles the down command.
//
// It destroys every droplet carrying the configured tag.
func Down(ctx context.Context, opts GlobalOptions) error {
	e, err := setup(opts)
	if err != nil {
		return err
	}
	tag := e.store.Current().Droplet.Tag

	destroyed, err := e.coord.DestroyTagged(ctx, tag)
	fmt.Fprint(opts.out(), renderDestroyed(tag, destroyed))
	if err != nil {
		return fmt.Errorf("down failed: %w", err)
	}
	return nil
}
