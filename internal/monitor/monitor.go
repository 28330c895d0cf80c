// Package monitor watches a droplet's liveness endpoint and calls back when
// the droplet has been idle longer than a threshold.
//
// Each session is a small state machine running in its own goroutine:
//
//	idle-polling -> fetching -> (retrying)* -> idle-polling ...
//	                          \-> failed      (retries exhausted or panic)
//	idle callback returns false or Stop      -> stopped
package monitor

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/go-logr/logr"
	"github.com/google/uuid"
	"k8s.io/utils/clock"

	"github.com/imamik/dropletd/internal/droplet"
	"github.com/imamik/dropletd/internal/util/retry"
)

// Defaults.
const (
	DefaultThreshold      = 300 * time.Second
	DefaultPollInterval   = 60 * time.Second
	DefaultInitialDelay   = 30 * time.Second
	DefaultMaxAttempts    = 5
	DefaultInitialBackoff = time.Second
)

// IdleFunc is called when the droplet has been idle past the threshold.
// Returning false ends the session.
type IdleFunc func(ctx context.Context, lastActive time.Time, record droplet.Record) bool

// ErrorFunc is called once when a session fails.
type ErrorFunc func(ctx context.Context, err error, record droplet.Record)

// Monitor starts and tracks monitoring sessions.
type Monitor struct {
	fetcher        LivenessFetcher
	threshold      func() time.Duration
	pollInterval   func() time.Duration
	initialDelay   time.Duration
	maxAttempts    int
	initialBackoff time.Duration
	clock          clock.Clock
	log            logr.Logger

	mu       sync.Mutex
	sessions map[string]*Session
}

// Option configures a Monitor.
type Option func(*Monitor)

// WithThreshold sets a fixed idle threshold.
func WithThreshold(d time.Duration) Option {
	return func(m *Monitor) {
		m.threshold = func() time.Duration { return d }
	}
}

// WithThresholdFunc reads the threshold on every poll, so configuration
// reloads apply to running sessions.
func WithThresholdFunc(fn func() time.Duration) Option {
	return func(m *Monitor) {
		m.threshold = fn
	}
}

// WithPollInterval sets a fixed poll interval.
func WithPollInterval(d time.Duration) Option {
	return func(m *Monitor) {
		m.pollInterval = func() time.Duration { return d }
	}
}

// WithPollIntervalFunc reads the poll interval on every cycle.
func WithPollIntervalFunc(fn func() time.Duration) Option {
	return func(m *Monitor) {
		m.pollInterval = fn
	}
}

// WithInitialDelay sets the wait before the first fetch, giving a freshly
// booted droplet time to start serving.
func WithInitialDelay(d time.Duration) Option {
	return func(m *Monitor) {
		m.initialDelay = d
	}
}

// WithMaxAttempts sets the number of fetch attempts per sample.
func WithMaxAttempts(n int) Option {
	return func(m *Monitor) {
		if n > 0 {
			m.maxAttempts = n
		}
	}
}

// WithInitialBackoff sets the first retry delay; later delays double.
func WithInitialBackoff(d time.Duration) Option {
	return func(m *Monitor) {
		m.initialBackoff = d
	}
}

// WithClock sets the time source for idle checks and sleeps.
func WithClock(c clock.Clock) Option {
	return func(m *Monitor) {
		m.clock = c
	}
}

// WithLogger sets the logger.
func WithLogger(l logr.Logger) Option {
	return func(m *Monitor) {
		m.log = l
	}
}

// New returns a Monitor using fetcher for liveness samples.
func New(fetcher LivenessFetcher, opts ...Option) *Monitor {
	m := &Monitor{
		fetcher:        fetcher,
		threshold:      func() time.Duration { return DefaultThreshold },
		pollInterval:   func() time.Duration { return DefaultPollInterval },
		initialDelay:   DefaultInitialDelay,
		maxAttempts:    DefaultMaxAttempts,
		initialBackoff: DefaultInitialBackoff,
		clock:          clock.RealClock{},
		log:            logr.Discard(),
		sessions:       make(map[string]*Session),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Start launches a monitoring session for record and returns immediately.
// If a session for the same droplet is still running it is returned
// instead of starting a second one.
func (m *Monitor) Start(ctx context.Context, record droplet.Record, onIdle IdleFunc, onError ErrorFunc) *Session {
	m.mu.Lock()
	defer m.mu.Unlock()

	if existing, ok := m.sessions[record.Name]; ok && !existing.State().Terminal() {
		return existing
	}

	sctx, cancel := context.WithCancel(ctx)
	s := &Session{
		id:     uuid.NewString(),
		record: record,
		cancel: cancel,
		done:   make(chan struct{}),
	}
	s.setState(StateIdlePolling)
	m.sessions[record.Name] = s
	activeSessions.Inc()

	go m.run(sctx, s, onIdle, onError)
	return s
}

// Sessions returns the sessions that have not yet ended, ordered by
// droplet name.
func (m *Monitor) Sessions() []*Session {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]*Session, 0, len(m.sessions))
	for _, s := range m.sessions {
		if !s.State().Terminal() {
			out = append(out, s)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].record.Name < out[j].record.Name
	})
	return out
}

// StopAll stops every running session and waits for them to exit.
func (m *Monitor) StopAll() {
	for _, s := range m.Sessions() {
		s.Stop()
	}
}

func (m *Monitor) run(ctx context.Context, s *Session, onIdle IdleFunc, onError ErrorFunc) {
	log := m.log.WithValues("droplet", s.record.Name, "session", s.id)

	defer func() {
		if r := recover(); r != nil {
			err := fmt.Errorf("monitor panic: %v", r)
			log.Error(err, "monitoring session panicked")
			s.fail(err)
			m.report(ctx, log, onError, err, s.record)
		}
		m.finish(s)
		log.Info("monitoring session ended", "state", s.State().String())
	}()

	log.Info("monitoring session started")

	if !m.sleep(ctx, m.initialDelay) {
		s.setState(StateStopped)
		return
	}

	for {
		lastActive, err := m.fetch(ctx, s, log)
		if err != nil {
			if ctx.Err() != nil {
				s.setState(StateStopped)
				return
			}
			err = droplet.Wrap(droplet.KindTransientFetch, "monitor", s.record.Name, err)
			log.Error(err, "liveness fetch failed, giving up")
			s.fail(err)
			m.report(ctx, log, onError, err, s.record)
			return
		}

		if lastActive != nil {
			idle := m.clock.Since(*lastActive)
			if idle > m.threshold() {
				log.Info("droplet idle", "idle", idle.Round(time.Second).String())
				recordIdleMetric(s.record.Name)
				if onIdle != nil && !onIdle(ctx, *lastActive, s.record) {
					s.setState(StateStopped)
					return
				}
			}
		}

		s.setState(StateIdlePolling)
		if !m.sleep(ctx, m.pollInterval()) {
			s.setState(StateStopped)
			return
		}
	}
}

func (m *Monitor) fetch(ctx context.Context, s *Session, log logr.Logger) (*time.Time, error) {
	s.attempts.Store(0)
	s.setState(StateFetching)

	var lastActive *time.Time
	err := retry.WithExponentialBackoff(ctx, func() error {
		s.attempts.Add(1)
		ts, err := m.fetcher.LastActive(ctx, s.record)
		if err != nil {
			recordFetchMetric("error")
			return err
		}
		recordFetchMetric("success")
		lastActive = ts
		return nil
	},
		retry.WithMaxAttempts(m.maxAttempts),
		retry.WithInitialDelay(m.initialBackoff),
		retry.WithClock(m.clock),
		retry.WithNotify(func(err error, next time.Duration) {
			s.setState(StateRetrying)
			log.V(1).Info("liveness fetch failed, retrying", "attempt", s.Attempts(), "next", next.String(), "error", err.Error())
		}),
	)
	return lastActive, err
}

// report calls onError, shielding the monitor from a panicking callback.
func (m *Monitor) report(ctx context.Context, log logr.Logger, onError ErrorFunc, err error, record droplet.Record) {
	if onError == nil {
		return
	}
	defer func() {
		if r := recover(); r != nil {
			log.Error(errors.New(fmt.Sprint(r)), "error callback panicked")
		}
	}()
	onError(ctx, err, record)
}

func (m *Monitor) finish(s *Session) {
	s.cancel()
	m.mu.Lock()
	if m.sessions[s.record.Name] == s {
		delete(m.sessions, s.record.Name)
	}
	m.mu.Unlock()
	recordSessionEndMetric(s.State())
	close(s.done)
}

// sleep waits for d on the monitor clock. It returns false if ctx ended first.
func (m *Monitor) sleep(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return ctx.Err() == nil
	}
	t := m.clock.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C():
		return true
	}
}
