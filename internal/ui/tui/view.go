package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/imamik/dropletd/internal/droplet"
)

// styleFunc is a single-string styling function.
type styleFunc func(string) string

// sf wraps a lipgloss.Style into a styleFunc.
func sf(s lipgloss.Style) styleFunc {
	return func(str string) string { return s.Render(str) }
}

func renderView(m Model) string {
	var b strings.Builder

	renderHeader(&b, m)

	if m.Record != nil {
		renderDroplet(&b, m)
		if len(m.Record.Actions) > 0 {
			renderActions(&b, m)
		}
	}

	if m.FetchErr != "" {
		renderFetchError(&b, m)
	}

	renderFooter(&b, m)

	return b.String()
}

func renderHeader(b *strings.Builder, m Model) {
	b.WriteString(titleStyle.Render(fmt.Sprintf("dropletd: %s", m.Tag)))

	status := " "
	switch {
	case m.Err != nil:
		status += failedStyle.Render(fmt.Sprintf("Error: %v", m.Err))
	case m.Off:
		status += dimStyle.Render("Off")
	case m.Record == nil:
		status += activeStyle.Render(currentSpinner(m.SpinnerFrame)+" ") + dimStyle.Render("Loading...")
	case m.Pending():
		status += activeStyle.Render(currentSpinner(m.SpinnerFrame)+" ") + warningStyle.Render(m.Record.Status)
	default:
		_, style := dropletStatusIcon(m.Record.Status)
		status += style(m.Record.Status)
	}
	b.WriteString(status)
	b.WriteString("\n")
}

func renderDroplet(b *strings.Builder, m Model) {
	b.WriteString(sectionStyle.Render("  Droplet"))
	b.WriteString("\n")

	d := m.Record
	icon, style := dropletStatusIcon(d.Status)
	fmt.Fprintf(b, "    %s %-10s %s\n", style(icon), "Name", d.Name)
	row(b, "ID", d.ID)
	row(b, "IP", d.IPv4)
	row(b, "Region", d.Region)
	row(b, "Size", d.Size)
	if !d.Created.IsZero() {
		row(b, "Uptime", formatDuration(time.Since(d.Created)))
	}
}

func renderActions(b *strings.Builder, m Model) {
	b.WriteString(sectionStyle.Render("  Actions"))
	b.WriteString("\n")

	for _, a := range m.Record.Actions {
		icon, style := actionIcon(a.Status, m.SpinnerFrame)
		dur := ""
		if !a.StartedAt.IsZero() {
			dur = formatDuration(time.Since(a.StartedAt))
		}
		fmt.Fprintf(b, "    %s %-18s %-12s %s\n",
			style(icon), a.Type, style(string(a.Status)), dimStyle.Render(dur))
	}
}

func renderFetchError(b *strings.Builder, m Model) {
	b.WriteString(sectionStyle.Render("  Last Error"))
	b.WriteString("\n")
	fmt.Fprintf(b, "    %s %s\n", failedStyle.Render(crossMark), dimStyle.Render(m.FetchErr))
}

func renderFooter(b *strings.Builder, m Model) {
	parts := []string{fmt.Sprintf("watching: %s", formatDuration(time.Since(m.StartTime)))}
	if !m.LastFetch.IsZero() {
		parts = append(parts, fmt.Sprintf("last update: %s ago", formatDuration(time.Since(m.LastFetch))))
	}
	b.WriteString(footerStyle.Render(fmt.Sprintf("  %s  |  q: quit", strings.Join(parts, "  |  "))))
	b.WriteString("\n")
}

// Helper functions

func row(b *strings.Builder, label, value string) {
	if value == "" {
		value = "-"
	}
	fmt.Fprintf(b, "    %s %-10s %s\n", pending, label, value)
}

func dropletStatusIcon(status string) (string, styleFunc) {
	switch status {
	case "active", "running":
		return checkMark, sf(readyStyle)
	case "new", "initializing", "starting":
		return spinner, sf(activeStyle)
	case "off", "archive", "stopping":
		return warnMark, sf(warningStyle)
	default:
		return pending, sf(dimStyle)
	}
}

func actionIcon(status droplet.ActionStatus, frame int) (string, styleFunc) {
	switch status {
	case droplet.ActionCompleted:
		return checkMark, sf(readyStyle)
	case droplet.ActionErrored:
		return crossMark, sf(failedStyle)
	case droplet.ActionInProgress:
		return currentSpinner(frame), sf(activeStyle)
	default:
		return warnMark, sf(warningStyle)
	}
}

func currentSpinner(frame int) string {
	if len(spinnerFrames) == 0 {
		return spinner
	}
	if frame < 0 {
		frame = -frame
	}
	return spinnerFrames[frame%len(spinnerFrames)]
}

func formatDuration(d time.Duration) string {
	d = d.Round(time.Second)
	if d < time.Minute {
		return fmt.Sprintf("%ds", int(d.Seconds()))
	}
	if d < time.Hour {
		return fmt.Sprintf("%dm%ds", int(d.Minutes()), int(d.Seconds())%60)
	}
	return fmt.Sprintf("%dh%dm", int(d.Hours()), int(d.Minutes())%60)
}
