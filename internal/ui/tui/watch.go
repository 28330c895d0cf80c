package tui

import (
	"context"
	"errors"
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/imamik/dropletd/internal/droplet"
)

// FetchFunc returns the current droplet record.
type FetchFunc func(ctx context.Context) (*droplet.Record, error)

// RunWatchTUI shows the droplet tagged tag, refreshing every interval
// until the user quits or ctx is done.
func RunWatchTUI(ctx context.Context, fetch FetchFunc, tag string, interval time.Duration) error {
	m := NewWatchModel(tag)

	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx))

	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		// Fetch immediately with a short timeout to avoid hanging
		fetchCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		p.Send(FetchStatus(fetchCtx, fetch))
		cancel()

		for {
			select {
			case <-ctx.Done():
				p.Send(DoneMsg{})
				return
			case <-ticker.C:
				p.Send(FetchStatus(ctx, fetch))
			}
		}
	}()

	finalModel, err := p.Run()
	if err != nil && !errors.Is(err, tea.ErrProgramKilled) {
		return fmt.Errorf("TUI error: %w", err)
	}

	if fm, ok := finalModel.(Model); ok && fm.Err != nil {
		return fm.Err
	}
	return nil
}

// FetchStatus calls fetch and converts the outcome into a StatusMsg.
func FetchStatus(ctx context.Context, fetch FetchFunc) StatusMsg {
	d, err := fetch(ctx)
	switch {
	case errors.Is(err, droplet.ErrResourceMissing):
		return StatusMsg{Off: true}
	case err != nil:
		return StatusMsg{FetchErr: err.Error()}
	default:
		return StatusMsg{Record: d}
	}
}

// RenderOnce renders the dashboard for msg once without starting a program.
func RenderOnce(msg StatusMsg, tag string) string {
	m := NewWatchModel(tag)
	m.updateStatus(msg)
	return renderView(m)
}
