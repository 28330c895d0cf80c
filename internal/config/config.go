package config

import (
	"fmt"
	"os"
	"time"
)

// Supported cloud providers.
const (
	ProviderDigitalOcean = "digitalocean"
	ProviderHetzner      = "hetzner"
)

// Config is the dropletd configuration.
type Config struct {
	Cloud      CloudConfig      `yaml:"cloud"`
	Droplet    DropletConfig    `yaml:"droplet"`
	Inactivity InactivityConfig `yaml:"inactivity"`
	Bot        BotConfig        `yaml:"bot"`
	Notify     NotifyConfig     `yaml:"notify"`
	Events     EventsConfig     `yaml:"events"`
	Metrics    MetricsConfig    `yaml:"metrics"`
}

// CloudConfig selects and tunes the cloud provider.
type CloudConfig struct {
	Provider string `yaml:"provider"`
	// Size is the droplet size slug (DigitalOcean) or server type (Hetzner).
	Size string `yaml:"size"`
	// Region is used when the snapshot does not report one.
	Region string `yaml:"region"`
	// TokenEnv names the environment variable holding the API token.
	TokenEnv string `yaml:"token_env"`
}

// DropletConfig identifies the managed droplet.
type DropletConfig struct {
	Tag      string `yaml:"tag"`
	Snapshot string `yaml:"snapshot"`
	Firewall string `yaml:"firewall"`
}

// InactivityConfig controls the idle shutdown.
type InactivityConfig struct {
	Threshold    time.Duration `yaml:"threshold"`
	PollInterval time.Duration `yaml:"poll_interval"`
	InitialDelay time.Duration `yaml:"initial_delay"`
	MaxAttempts  int           `yaml:"max_attempts"`
}

// BotConfig configures the chat command surface.
type BotConfig struct {
	Prefix     string        `yaml:"prefix"`
	TokenEnv   string        `yaml:"token_env"`
	PlayKey    string        `yaml:"play_key"`
	StreamKey  string        `yaml:"stream_key"`
	RateLimit  int           `yaml:"rate_limit"`
	RateWindow time.Duration `yaml:"rate_window"`
}

// NotifyConfig configures the outbound message pump.
type NotifyConfig struct {
	Interval time.Duration `yaml:"interval"`
}

// EventsConfig configures lifecycle event publishing. Empty NATSURL
// disables publishing.
type EventsConfig struct {
	NATSURL string `yaml:"nats_url"`
	Subject string `yaml:"subject"`
}

// MetricsConfig configures the Prometheus endpoint. Empty Address
// disables it.
type MetricsConfig struct {
	Address string `yaml:"address"`
}

// Placeholder keys, shown verbatim in stream URLs when no key is configured.
const (
	PlaceholderPlayKey   = "{play key}"
	PlaceholderStreamKey = "{stream key}"
)

// ApplyDefaults fills unset fields with their defaults.
func (c *Config) ApplyDefaults() {
	if c.Cloud.Provider == "" {
		c.Cloud.Provider = ProviderDigitalOcean
	}
	switch c.Cloud.Provider {
	case ProviderDigitalOcean:
		setDefault(&c.Cloud.Size, "s-1vcpu-2gb")
		setDefault(&c.Cloud.Region, "nyc3")
		setDefault(&c.Cloud.TokenEnv, "DIGITALOCEAN_TOKEN")
	case ProviderHetzner:
		setDefault(&c.Cloud.Size, "cx22")
		setDefault(&c.Cloud.Region, "fsn1")
		setDefault(&c.Cloud.TokenEnv, "HCLOUD_TOKEN")
	}

	setDefaultDuration(&c.Inactivity.Threshold, 300*time.Second)
	setDefaultDuration(&c.Inactivity.PollInterval, 60*time.Second)
	setDefaultDuration(&c.Inactivity.InitialDelay, 30*time.Second)
	if c.Inactivity.MaxAttempts == 0 {
		c.Inactivity.MaxAttempts = 5
	}

	setDefault(&c.Bot.Prefix, "!")
	setDefault(&c.Bot.TokenEnv, "DISCORD_TOKEN")
	setDefault(&c.Bot.PlayKey, PlaceholderPlayKey)
	setDefault(&c.Bot.StreamKey, PlaceholderStreamKey)
	if c.Bot.RateLimit == 0 {
		c.Bot.RateLimit = 5
	}
	setDefaultDuration(&c.Bot.RateWindow, 5*time.Second)

	setDefaultDuration(&c.Notify.Interval, 5*time.Second)
	setDefault(&c.Events.Subject, "dropletd.events")
}

// Validate checks the configuration and returns a descriptive error.
func (c *Config) Validate() error {
	switch c.Cloud.Provider {
	case ProviderDigitalOcean, ProviderHetzner:
	default:
		return fmt.Errorf("cloud.provider %q is not supported (use %s or %s)",
			c.Cloud.Provider, ProviderDigitalOcean, ProviderHetzner)
	}
	if c.Droplet.Tag == "" {
		return fmt.Errorf("droplet.tag is required")
	}
	if c.Droplet.Snapshot == "" {
		return fmt.Errorf("droplet.snapshot is required")
	}
	if c.Inactivity.Threshold <= 0 {
		return fmt.Errorf("inactivity.threshold must be positive, got %s", c.Inactivity.Threshold)
	}
	if c.Inactivity.PollInterval <= 0 {
		return fmt.Errorf("inactivity.poll_interval must be positive, got %s", c.Inactivity.PollInterval)
	}
	if c.Inactivity.InitialDelay < 0 {
		return fmt.Errorf("inactivity.initial_delay must not be negative, got %s", c.Inactivity.InitialDelay)
	}
	if c.Inactivity.MaxAttempts < 1 {
		return fmt.Errorf("inactivity.max_attempts must be at least 1, got %d", c.Inactivity.MaxAttempts)
	}
	if c.Bot.RateLimit < 1 {
		return fmt.Errorf("bot.rate_limit must be at least 1, got %d", c.Bot.RateLimit)
	}
	if c.Bot.RateWindow <= 0 {
		return fmt.Errorf("bot.rate_window must be positive, got %s", c.Bot.RateWindow)
	}
	if c.Notify.Interval <= 0 {
		return fmt.Errorf("notify.interval must be positive, got %s", c.Notify.Interval)
	}
	return nil
}

// CloudToken returns the cloud API token from the environment.
func (c *Config) CloudToken() string {
	return os.Getenv(c.Cloud.TokenEnv)
}

// BotToken returns the chat bot token from the environment.
func (c *Config) BotToken() string {
	return os.Getenv(c.Bot.TokenEnv)
}

func setDefault(field *string, value string) {
	if *field == "" {
		*field = value
	}
}

func setDefaultDuration(field *time.Duration, value time.Duration) {
	if *field == 0 {
		*field = value
	}
}
