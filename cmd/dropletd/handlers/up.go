package handlers

import (
	"context"
	"fmt"
)

// Up handles the up command.
//
// It creates the tagged droplet from the configured snapshot, or returns
// the existing one, and prints its stream URLs. No inactivity monitor is
// started; use the bot for automatic shutdown.
func Up(ctx context.Context, opts GlobalOptions) error {
	e, err := setup(opts)
	if err != nil {
		return err
	}
	out := opts.out()

	d, err := e.coord.CreateOrGet(ctx, e.createParams(func(text string) {
		fmt.Fprintln(out, progressStyle.Render(text))
	}))
	if err != nil {
		return fmt.Errorf("up failed: %w", err)
	}
	fmt.Fprint(out, renderDroplet(e.store.Current(), d))
	return nil
}
