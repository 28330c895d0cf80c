package monitor

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/imamik/dropletd/internal/droplet"
)

// State is the lifecycle state of a monitoring session.
type State int32

// Session states.
const (
	StateIdlePolling State = iota
	StateFetching
	StateRetrying
	StateStopped
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateIdlePolling:
		return "idle-polling"
	case StateFetching:
		return "fetching"
	case StateRetrying:
		return "retrying"
	case StateStopped:
		return "stopped"
	case StateFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Terminal reports whether the session loop has ended.
func (s State) Terminal() bool {
	return s == StateStopped || s == StateFailed
}

// Session is one running monitoring loop bound to a droplet.
type Session struct {
	id     string
	record droplet.Record

	state    atomic.Int32
	attempts atomic.Int32

	cancel context.CancelFunc
	done   chan struct{}

	mu  sync.Mutex
	err error
}

// ID returns the session identifier.
func (s *Session) ID() string { return s.id }

// Droplet returns the droplet being monitored.
func (s *Session) Droplet() droplet.Record { return s.record }

// State returns the current state.
func (s *Session) State() State { return State(s.state.Load()) }

// Attempts returns the number of fetch attempts made for the current
// liveness sample.
func (s *Session) Attempts() int { return int(s.attempts.Load()) }

// Done is closed when the loop has exited.
func (s *Session) Done() <-chan struct{} { return s.done }

// Stop cancels the session and waits for the loop to exit.
func (s *Session) Stop() {
	s.cancel()
	<-s.done
}

// Err returns the error that failed the session, if any.
func (s *Session) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.err
}

func (s *Session) setState(st State) {
	s.state.Store(int32(st))
}

func (s *Session) fail(err error) {
	s.mu.Lock()
	s.err = err
	s.mu.Unlock()
	s.setState(StateFailed)
}
