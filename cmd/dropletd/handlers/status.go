package handlers

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/imamik/dropletd/internal/droplet"
	"github.com/imamik/dropletd/internal/ui/tui"
)

// Function variable for dependency injection in tests.
var runWatchTUI = tui.RunWatchTUI

// Status handles the status command.
//
// It prints the tagged droplet with its stream URLs and action statuses.
// A missing droplet is reported, not treated as an error.
func Status(ctx context.Context, opts GlobalOptions) error {
	e, err := setup(opts)
	if err != nil {
		return err
	}
	cfg := e.store.Current()

	d, err := e.coord.Status(ctx, cfg.Droplet.Tag)
	if errors.Is(err, droplet.ErrResourceMissing) {
		fmt.Fprint(opts.out(), renderOff(cfg.Droplet.Tag))
		return nil
	}
	if err != nil {
		return fmt.Errorf("status failed: %w", err)
	}
	fmt.Fprint(opts.out(), renderDroplet(cfg, d))
	return nil
}

// Watch handles status --watch. It refreshes a terminal dashboard every
// interval until the user quits.
func Watch(ctx context.Context, opts GlobalOptions, interval time.Duration) error {
	if interval <= 0 {
		return fmt.Errorf("interval must be positive, got %s", interval)
	}
	e, err := setup(opts)
	if err != nil {
		return err
	}
	tag := e.store.Current().Droplet.Tag

	fetch := func(ctx context.Context) (*droplet.Record, error) {
		return e.coord.Status(ctx, tag)
	}
	return runWatchTUI(ctx, fetch, tag, interval)
}
