// Package tui provides a Bubble Tea-based terminal dashboard for watching
// the managed droplet.
package tui

import "github.com/imamik/dropletd/internal/droplet"

// StatusMsg carries the latest droplet status.
type StatusMsg struct {
	Record *droplet.Record
	// Off is set when no droplet carries the tag.
	Off      bool
	FetchErr string
}

// TickMsg is sent periodically to refresh the display.
type TickMsg struct{}

// ErrMsg carries an error.
type ErrMsg struct{ Err error }

// DoneMsg signals that watching is over.
type DoneMsg struct{}
