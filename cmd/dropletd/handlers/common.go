package handlers

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/go-logr/logr"

	"github.com/imamik/dropletd/internal/bot"
	"github.com/imamik/dropletd/internal/config"
	"github.com/imamik/dropletd/internal/droplet"
	"github.com/imamik/dropletd/internal/events"
	"github.com/imamik/dropletd/internal/logging"
	"github.com/imamik/dropletd/internal/notify"
	"github.com/imamik/dropletd/internal/platform/digitalocean"
	"github.com/imamik/dropletd/internal/platform/discord"
	"github.com/imamik/dropletd/internal/platform/hcloud"
	"github.com/imamik/dropletd/internal/provisioning"
)

// GlobalOptions carries the persistent flags shared by every command.
type GlobalOptions struct {
	ConfigPath string
	LogLevel   string
	LogFormat  string
	// Out receives command output. Nil means os.Stdout.
	Out io.Writer
}

func (o GlobalOptions) out() io.Writer {
	if o.Out == nil {
		return os.Stdout
	}
	return o.Out
}

// ChatSession is the chat connection used by the run command.
type ChatSession interface {
	notify.Sender
	bot.Authorizer
	Run(ctx context.Context, handle func(context.Context, bot.Message)) error
}

// Factory function variables - can be replaced in tests.
var (
	newLogger = logging.New

	loadStore = func(path string, log logr.Logger) (*config.Store, error) {
		return config.NewStore(path, config.WithStoreLogger(log))
	}

	newCloud = func(cfg *config.Config, timeouts *config.Timeouts) (droplet.Cloud, error) {
		token := cfg.CloudToken()
		if token == "" {
			return nil, fmt.Errorf("%s is not set", cfg.Cloud.TokenEnv)
		}
		switch cfg.Cloud.Provider {
		case config.ProviderHetzner:
			return hcloud.NewRealClient(token,
				hcloud.WithTimeouts(timeouts),
				hcloud.WithLocation(cfg.Cloud.Region)), nil
		default:
			return digitalocean.New(token, digitalocean.WithTimeouts(timeouts)), nil
		}
	}

	newChatSession = func(cfg *config.Config, log logr.Logger) (ChatSession, error) {
		token := cfg.BotToken()
		if token == "" {
			return nil, fmt.Errorf("%s is not set", cfg.Bot.TokenEnv)
		}
		s, err := discord.New(token, discord.WithLogger(log))
		if err != nil {
			return nil, err
		}
		return s, nil
	}

	newPublisher = func(cfg config.EventsConfig, log logr.Logger) (events.Publisher, error) {
		if cfg.NATSURL == "" {
			return events.Nop{}, nil
		}
		p, err := events.NewNATSPublisher(cfg.NATSURL, cfg.Subject, log)
		if err != nil {
			return nil, err
		}
		return p, nil
	}
)

// env bundles what every handler needs.
type env struct {
	log      logr.Logger
	store    *config.Store
	timeouts *config.Timeouts
	cloud    droplet.Cloud
	coord    *provisioning.Coordinator
}

func setup(opts GlobalOptions) (*env, error) {
	log, err := newLogger(logging.Options{Level: opts.LogLevel, Format: opts.LogFormat})
	if err != nil {
		return nil, err
	}

	path := opts.ConfigPath
	if path == "" {
		path = config.DefaultConfigPath()
	}
	store, err := loadStore(path, log.WithName("config"))
	if err != nil {
		return nil, err
	}
	cfg := store.Current()

	timeouts := config.LoadTimeouts()
	cloud, err := newCloud(cfg, timeouts)
	if err != nil {
		return nil, fmt.Errorf("failed to create %s client: %w", cfg.Cloud.Provider, err)
	}

	coord := provisioning.NewCoordinator(cloud,
		provisioning.WithSize(cfg.Cloud.Size),
		provisioning.WithFallbackRegion(cfg.Cloud.Region),
		provisioning.WithTimeouts(timeouts),
		provisioning.WithLogger(log.WithName("provisioning")),
	)

	return &env{log: log, store: store, timeouts: timeouts, cloud: cloud, coord: coord}, nil
}

func (e *env) createParams(progress provisioning.ProgressFunc) provisioning.CreateParams {
	cfg := e.store.Current()
	return provisioning.CreateParams{
		Tag:      cfg.Droplet.Tag,
		Snapshot: cfg.Droplet.Snapshot,
		Firewall: cfg.Droplet.Firewall,
		Progress: progress,
	}
}
