// Package events publishes droplet lifecycle events for external consumers.
package events

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/imamik/dropletd/internal/droplet"
)

// Type identifies a lifecycle event.
type Type string

// Lifecycle event types.
const (
	TypeCreated       Type = "droplet.created"
	TypeDestroyed     Type = "droplet.destroyed"
	TypeIdleDestroyed Type = "droplet.idle_destroyed"
	TypeMonitorFailed Type = "monitor.failed"
)

// Event is a lifecycle event. It is published as JSON.
type Event struct {
	Type    Type      `json:"type"`
	Droplet string    `json:"droplet"`
	ID      string    `json:"id,omitempty"`
	Tag     string    `json:"tag,omitempty"`
	IP      string    `json:"ip,omitempty"`
	Error   string    `json:"error,omitempty"`
	Time    time.Time `json:"time"`
}

// New builds an event for record.
func New(t Type, tag string, record droplet.Record) Event {
	return Event{
		Type:    t,
		Droplet: record.Name,
		ID:      record.ID,
		Tag:     tag,
		IP:      record.IPv4,
		Time:    time.Now().UTC(),
	}
}

// Marshal encodes e.
func (e Event) Marshal() ([]byte, error) {
	return json.Marshal(e)
}

// Publisher delivers lifecycle events.
type Publisher interface {
	Publish(ctx context.Context, e Event) error
	Close()
}

// Nop discards events.
type Nop struct{}

// Publish implements Publisher.
func (Nop) Publish(context.Context, Event) error { return nil }

// Close implements Publisher.
func (Nop) Close() {}

// Recorder keeps published events in memory.
type Recorder struct {
	mu     sync.Mutex
	events []Event
}

// Publish implements Publisher.
func (r *Recorder) Publish(_ context.Context, e Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
	return nil
}

// Close implements Publisher.
func (r *Recorder) Close() {}

// Events returns the events published so far.
func (r *Recorder) Events() []Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Event(nil), r.events...)
}

// Types returns the types of the events published so far.
func (r *Recorder) Types() []Type {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Type, 0, len(r.events))
	for _, e := range r.events {
		out = append(out, e.Type)
	}
	return out
}
