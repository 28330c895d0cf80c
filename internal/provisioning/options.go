package provisioning

import (
	"time"

	"github.com/go-logr/logr"
	"k8s.io/utils/clock"

	"github.com/imamik/dropletd/internal/config"
)

// Defaults.
const (
	DefaultPendingPollInterval = time.Second
	DefaultPendingPollAttempts = 30
	DefaultActionPollInterval  = time.Second
	DefaultDeleteConcurrency   = 4
)

// Option configures a Coordinator.
type Option func(*Coordinator)

// WithSize sets the droplet size slug used for new droplets.
func WithSize(size string) Option {
	return func(c *Coordinator) {
		c.size = size
	}
}

// WithFallbackRegion sets the region used when a snapshot reports none.
func WithFallbackRegion(region string) Option {
	return func(c *Coordinator) {
		c.fallbackRegion = region
	}
}

// WithPendingPoll sets how often and how many times to look for a droplet
// whose creation was started by an earlier call.
func WithPendingPoll(interval time.Duration, attempts int) Option {
	return func(c *Coordinator) {
		if interval > 0 {
			c.pendingPollInterval = interval
		}
		if attempts > 0 {
			c.pendingPollAttempts = attempts
		}
	}
}

// WithActionPoll sets the boot poll interval and an optional ceiling.
// A zero timeout polls until the provider reports a terminal status.
func WithActionPoll(interval, timeout time.Duration) Option {
	return func(c *Coordinator) {
		if interval > 0 {
			c.actionPollInterval = interval
		}
		c.actionPollTimeout = timeout
	}
}

// WithTimeouts applies the poll settings from t.
func WithTimeouts(t *config.Timeouts) Option {
	return func(c *Coordinator) {
		WithPendingPoll(t.PendingPoll, t.PendingPollAttempts)(c)
		WithActionPoll(t.ActionPoll, t.ActionPollTimeout)(c)
		c.deleteTimeout = t.Delete
	}
}

// WithDeleteConcurrency bounds parallel deletes in DestroyTagged.
func WithDeleteConcurrency(n int) Option {
	return func(c *Coordinator) {
		c.deleteConcurrency = n
	}
}

// WithClock sets the clock used for poll sleeps and durations.
func WithClock(clk clock.Clock) Option {
	return func(c *Coordinator) {
		c.clock = clk
	}
}

// WithLogger sets the logger.
func WithLogger(l logr.Logger) Option {
	return func(c *Coordinator) {
		c.log = l
	}
}
