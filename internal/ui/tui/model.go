package tui

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/imamik/dropletd/internal/droplet"
)

// Model is the Bubble Tea model for the watch dashboard.
type Model struct {
	Tag    string
	Record *droplet.Record
	Off    bool

	// Last fetch failure. Cleared by the next successful fetch.
	FetchErr  string
	LastFetch time.Time
	StartTime time.Time

	// Animation
	SpinnerFrame int

	// UI state
	Width  int
	Height int
	Err    error
	Done   bool
}

// NewWatchModel creates a model for watching the droplet tagged tag.
func NewWatchModel(tag string) Model {
	return Model{
		Tag:       tag,
		StartTime: time.Now(),
	}
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return tickCmd()
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			m.Done = true
			return m, tea.Quit
		}

	case tea.WindowSizeMsg:
		m.Width = msg.Width
		m.Height = msg.Height

	case StatusMsg:
		m.updateStatus(msg)

	case TickMsg:
		m.SpinnerFrame++
		return m, tickCmd()

	case ErrMsg:
		m.Err = msg.Err
		return m, tea.Quit

	case DoneMsg:
		m.Done = true
		return m, tea.Quit
	}

	return m, nil
}

func (m *Model) updateStatus(msg StatusMsg) {
	m.LastFetch = time.Now()
	if msg.FetchErr != "" {
		// Keep the last good record on screen.
		m.FetchErr = msg.FetchErr
		return
	}
	m.FetchErr = ""
	m.Off = msg.Off
	m.Record = msg.Record
	if msg.Off {
		m.Record = nil
	}
}

// Pending reports whether any droplet action is still running.
func (m Model) Pending() bool {
	if m.Record == nil {
		return false
	}
	for _, a := range m.Record.Actions {
		if !a.Status.Terminal() {
			return true
		}
	}
	return false
}

func tickCmd() tea.Cmd {
	return tea.Tick(time.Second, func(_ time.Time) tea.Msg {
		return TickMsg{}
	})
}

// View implements tea.Model.
func (m Model) View() string {
	return renderView(m)
}
