package handlers

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/imamik/dropletd/internal/config"
	"github.com/imamik/dropletd/internal/droplet"
)

var (
	colorGreen = lipgloss.Color("#22c55e")
	colorRed   = lipgloss.Color("#ef4444")
	colorBlue  = lipgloss.Color("#3b82f6")
	colorDim   = lipgloss.Color("#6b7280")
	colorWhite = lipgloss.Color("#f9fafb")
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(colorWhite)

	sectionStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(colorBlue)

	progressStyle = lipgloss.NewStyle().
			Foreground(colorDim)

	okStyle = lipgloss.NewStyle().
		Foreground(colorGreen)

	failStyle = lipgloss.NewStyle().
			Foreground(colorRed)
)

// renderDroplet produces a lipgloss-styled summary of d.
func renderDroplet(cfg *config.Config, d *droplet.Record) string {
	var b strings.Builder

	b.WriteString("\n")
	b.WriteString(titleStyle.Render(fmt.Sprintf("  dropletd: %s", d.Name)))
	b.WriteString("\n")
	b.WriteString(progressStyle.Render("  " + strings.Repeat("═", 30)))
	b.WriteString("\n")

	row(&b, "ID", d.ID)
	row(&b, "Status", statusText(d.Status))
	row(&b, "IP", d.IPv4)
	row(&b, "Region", d.Region)
	row(&b, "Size", d.Size)

	if len(d.Actions) > 0 {
		b.WriteString("\n")
		b.WriteString(sectionStyle.Render("  Actions"))
		b.WriteString("\n")
		for _, a := range d.Actions {
			fmt.Fprintf(&b, "    %-16s %s\n", a.Type, actionText(a.Status))
		}
	}

	b.WriteString("\n")
	b.WriteString(sectionStyle.Render("  Stream"))
	b.WriteString("\n")
	fmt.Fprintf(&b, "    publish: rtmp://%s:1935/publish?publish_key={publish key}\n", d.IPv4)
	if cfg.Bot.StreamKey != config.PlaceholderStreamKey {
		fmt.Fprintf(&b, "    key:     %s\n", cfg.Bot.StreamKey)
	}
	fmt.Fprintf(&b, "    play:    rtmp://%s:1935/live/%s?play_key=%s\n", d.IPv4, cfg.Bot.StreamKey, cfg.Bot.PlayKey)

	return b.String()
}

// renderDestroyed lists the destroyed droplets.
func renderDestroyed(tag string, destroyed []droplet.Record) string {
	if len(destroyed) == 0 {
		return progressStyle.Render(fmt.Sprintf("no droplets tagged %s to turn off", tag)) + "\n"
	}
	var b strings.Builder
	for _, d := range destroyed {
		b.WriteString(okStyle.Render("✓ "))
		fmt.Fprintf(&b, "destroyed %s (%s)\n", d.Name, d.ID)
	}
	return b.String()
}

func renderOff(tag string) string {
	return progressStyle.Render(fmt.Sprintf("no droplet tagged %s is running, turn it on with dropletd up", tag)) + "\n"
}

func row(b *strings.Builder, label, value string) {
	if value == "" {
		value = "-"
	}
	fmt.Fprintf(b, "    %-8s %s\n", label+":", value)
}

func statusText(status string) string {
	if status == "active" || status == "running" {
		return okStyle.Render(status)
	}
	return status
}

func actionText(s droplet.ActionStatus) string {
	switch s {
	case droplet.ActionCompleted:
		return okStyle.Render(string(s))
	case droplet.ActionErrored:
		return failStyle.Render(string(s))
	default:
		return string(s)
	}
}
