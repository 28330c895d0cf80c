// Package ratelimit implements the coarse fixed-window spam guard used by
// the chat command layer.
package ratelimit

import (
	"sync"
	"time"

	"k8s.io/utils/clock"
)

// Defaults used when New is given non-positive values.
const (
	DefaultThreshold = 5
	DefaultWindow    = 5 * time.Second

	// DefaultRolloverThreshold is the negative elapsed time beyond which
	// the window is assumed to have been disturbed by a clock jump.
	DefaultRolloverThreshold = -1_000_000_000 * time.Second
)

// Limiter counts requests in a fixed window. Bursts across a window
// boundary are accepted.
type Limiter struct {
	mu sync.Mutex

	threshold int
	window    time.Duration
	rollover  time.Duration
	clock     clock.PassiveClock

	count int
	start time.Time
}

// Option configures a Limiter.
type Option func(*Limiter)

// WithClock sets the time source.
func WithClock(c clock.PassiveClock) Option {
	return func(l *Limiter) {
		l.clock = c
	}
}

// WithRolloverThreshold sets the negative elapsed time that forces a reset.
// Positive values are negated.
func WithRolloverThreshold(d time.Duration) Option {
	return func(l *Limiter) {
		if d > 0 {
			d = -d
		}
		l.rollover = d
	}
}

// New returns a Limiter allowing threshold requests per window.
func New(threshold int, window time.Duration, opts ...Option) *Limiter {
	l := &Limiter{
		rollover: DefaultRolloverThreshold,
		clock:    clock.RealClock{},
	}
	l.threshold, l.window = normalize(threshold, window)
	for _, opt := range opts {
		opt(l)
	}
	l.start = l.clock.Now()
	return l
}

// SetLimits changes the threshold and window. The current window and its
// count carry over. Non-positive values fall back to the defaults.
func (l *Limiter) SetLimits(threshold int, window time.Duration) {
	threshold, window = normalize(threshold, window)
	l.mu.Lock()
	defer l.mu.Unlock()
	l.threshold = threshold
	l.window = window
}

func normalize(threshold int, window time.Duration) (int, time.Duration) {
	if threshold <= 0 {
		threshold = DefaultThreshold
	}
	if window <= 0 {
		window = DefaultWindow
	}
	return threshold, window
}

// RecordRequest counts one request in the current window.
func (l *Limiter) RecordRequest() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.count++
}

// CheckOverflow resets the window if it has expired (or the clock moved
// backwards past the rollover threshold) and then reports whether the
// counter is above the threshold.
func (l *Limiter) CheckOverflow() bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.clock.Now()
	elapsed := now.Sub(l.start)
	if elapsed > l.window || elapsed < l.rollover {
		l.count = 0
		l.start = now
	}
	return l.count > l.threshold
}

// Allow records a request and reports whether it is within the limit.
func (l *Limiter) Allow() bool {
	l.RecordRequest()
	return !l.CheckOverflow()
}

// Count returns the number of requests recorded in the current window.
func (l *Limiter) Count() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.count
}
