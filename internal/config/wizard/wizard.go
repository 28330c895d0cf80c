package wizard

import (
	"context"
	"fmt"
)

// Result holds the answers from the interactive wizard.
type Result struct {
	Provider string
	Region   string
	Size     string

	Tag      string
	Snapshot string
	Firewall string

	// Threshold is a duration string such as "5m".
	Threshold string

	Prefix    string
	PlayKey   string
	StreamKey string

	NATSURL        string
	MetricsAddress string
}

// RunWizard runs the interactive configuration wizard.
// If advanced is true, the events and metrics questions are shown too.
func RunWizard(ctx context.Context, advanced bool) (*Result, error) {
	result := &Result{}

	if err := runProviderGroup(ctx, result); err != nil {
		return nil, fmt.Errorf("provider: %w", err)
	}

	if err := runDropletGroup(ctx, result); err != nil {
		return nil, fmt.Errorf("droplet: %w", err)
	}

	if err := runInactivityGroup(ctx, result); err != nil {
		return nil, fmt.Errorf("inactivity: %w", err)
	}

	if err := runBotGroup(ctx, result); err != nil {
		return nil, fmt.Errorf("bot: %w", err)
	}

	if advanced {
		if err := runObservabilityGroup(ctx, result); err != nil {
			return nil, fmt.Errorf("observability: %w", err)
		}
	}

	return result, nil
}
