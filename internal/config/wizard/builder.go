package wizard

import (
	"fmt"
	"strings"
	"time"

	"github.com/imamik/dropletd/internal/config"
)

// BuildConfig converts wizard answers into a defaulted, validated config.
func BuildConfig(result *Result) (*config.Config, error) {
	cfg := &config.Config{
		Cloud: config.CloudConfig{
			Provider: result.Provider,
			Region:   strings.TrimSpace(result.Region),
			Size:     strings.TrimSpace(result.Size),
		},
		Droplet: config.DropletConfig{
			Tag:      strings.TrimSpace(result.Tag),
			Snapshot: strings.TrimSpace(result.Snapshot),
			Firewall: strings.TrimSpace(result.Firewall),
		},
		Bot: config.BotConfig{
			Prefix:    result.Prefix,
			PlayKey:   result.PlayKey,
			StreamKey: result.StreamKey,
		},
		Events:  config.EventsConfig{NATSURL: strings.TrimSpace(result.NATSURL)},
		Metrics: config.MetricsConfig{Address: strings.TrimSpace(result.MetricsAddress)},
	}

	if s := strings.TrimSpace(result.Threshold); s != "" {
		d, err := time.ParseDuration(s)
		if err != nil {
			return nil, fmt.Errorf("invalid threshold %q: %w", s, err)
		}
		cfg.Inactivity.Threshold = d
	}

	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}
