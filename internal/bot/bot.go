package bot

import (
	"context"
	"strings"
	"time"

	"github.com/go-logr/logr"

	"github.com/imamik/dropletd/internal/config"
	"github.com/imamik/dropletd/internal/droplet"
	"github.com/imamik/dropletd/internal/events"
	"github.com/imamik/dropletd/internal/monitor"
	"github.com/imamik/dropletd/internal/provisioning"
	"github.com/imamik/dropletd/internal/ratelimit"
)

// Message is an inbound chat message.
type Message struct {
	ChannelID  string
	GuildID    string
	AuthorID   string
	AuthorName string
	Content    string
}

// Authorizer decides whether the author of msg may manage droplets.
type Authorizer interface {
	CanManage(ctx context.Context, msg Message) (bool, error)
}

// AuthorizerFunc adapts a function to Authorizer.
type AuthorizerFunc func(ctx context.Context, msg Message) (bool, error)

// CanManage calls f.
func (f AuthorizerFunc) CanManage(ctx context.Context, msg Message) (bool, error) {
	return f(ctx, msg)
}

// Provisioner is the subset of the provisioning coordinator the bot uses.
type Provisioner interface {
	CreateOrGet(ctx context.Context, p provisioning.CreateParams) (*droplet.Record, error)
	DestroyTagged(ctx context.Context, tag string) ([]droplet.Record, error)
	Status(ctx context.Context, tag string) (*droplet.Record, error)
}

// Watcher starts inactivity monitoring sessions.
type Watcher interface {
	Start(ctx context.Context, record droplet.Record, onIdle monitor.IdleFunc, onError monitor.ErrorFunc) *monitor.Session
}

// Outbox queues replies for delivery.
type Outbox interface {
	Enqueue(destination, text string)
	Progress(destination string) func(string)
}

var (
	_ Provisioner = (*provisioning.Coordinator)(nil)
	_ Watcher     = (*monitor.Monitor)(nil)
)

// Bot dispatches chat commands.
type Bot struct {
	settings    func() *config.Config
	provisioner Provisioner
	watcher     Watcher
	outbox      Outbox
	limiter     *ratelimit.Limiter
	// followLimits is set when the limiter tracks bot.rate_limit and
	// bot.rate_window rather than being supplied by the caller.
	followLimits bool
	auth         Authorizer
	events       events.Publisher
	log          logr.Logger
}

// Option configures a Bot.
type Option func(*Bot)

// WithLimiter replaces the rate limiter built from the configuration. The
// supplied limiter keeps its own limits across configuration reloads.
func WithLimiter(l *ratelimit.Limiter) Option {
	return func(b *Bot) {
		b.limiter = l
	}
}

// WithAuthorizer sets the permission check for turning the stream on or
// off. Without one every author is refused.
func WithAuthorizer(a Authorizer) Option {
	return func(b *Bot) {
		b.auth = a
	}
}

// WithPublisher sets the lifecycle event sink.
func WithPublisher(p events.Publisher) Option {
	return func(b *Bot) {
		b.events = p
	}
}

// WithLogger sets the logger.
func WithLogger(l logr.Logger) Option {
	return func(b *Bot) {
		b.log = l
	}
}

// New returns a Bot. settings is read on every command so configuration
// reloads take effect without a restart.
func New(settings func() *config.Config, p Provisioner, w Watcher, out Outbox, opts ...Option) *Bot {
	b := &Bot{
		settings:    settings,
		provisioner: p,
		watcher:     w,
		outbox:      out,
		events:      events.Nop{},
		log:         logr.Discard(),
	}
	for _, opt := range opts {
		opt(b)
	}
	if b.limiter == nil {
		cfg := settings()
		b.limiter = ratelimit.New(cfg.Bot.RateLimit, cfg.Bot.RateWindow)
		b.followLimits = true
	}
	return b
}

type command struct {
	name       string
	privileged bool
	run        func(b *Bot, ctx context.Context, cfg *config.Config, msg Message) error
}

var commands []command

// commands is assigned in init because help ranges over it, which would
// otherwise form an initialization cycle.
func init() {
	commands = []command{
		{name: "turn on stream", privileged: true, run: (*Bot).turnOn},
		{name: "turn off stream", privileged: true, run: (*Bot).turnOff},
		{name: "stream status", run: (*Bot).status},
		{name: "stream help", run: (*Bot).help},
	}
}

// Handle dispatches msg. Messages that are not commands are ignored. ctx
// bounds the command and any monitoring session it starts, so it should
// live as long as the bot.
func (b *Bot) Handle(ctx context.Context, msg Message) {
	cfg := b.settings()
	cmd, ok := match(cfg.Bot.Prefix, msg.Content)
	if !ok {
		return
	}
	log := b.log.WithValues("command", cmd.name, "author", msg.AuthorName, "destination", msg.ChannelID)

	if b.followLimits {
		b.limiter.SetLimits(cfg.Bot.RateLimit, cfg.Bot.RateWindow)
	}
	b.limiter.RecordRequest()
	if b.limiter.CheckOverflow() {
		log.V(1).Info("rate limit exceeded", "count", b.limiter.Count())
		recordCommandMetric(cmd.name, resultRateLimited, 0)
		b.reply(msg, holdYourHorses)
		return
	}

	start := time.Now()
	err := b.execute(ctx, cmd, cfg, msg)
	recordCommandMetric(cmd.name, commandResult(err), time.Since(start).Seconds())
	if err != nil {
		log.Info("command failed", "error", err.Error())
		b.reply(msg, userText(err, msg))
	}
}

func (b *Bot) execute(ctx context.Context, cmd command, cfg *config.Config, msg Message) error {
	if cmd.privileged {
		if err := b.authorize(ctx, msg); err != nil {
			return err
		}
	}
	return cmd.run(b, ctx, cfg, msg)
}

func (b *Bot) authorize(ctx context.Context, msg Message) error {
	if b.auth == nil {
		return ErrUnauthorized
	}
	ok, err := b.auth.CanManage(ctx, msg)
	if err != nil {
		return err
	}
	if !ok {
		return ErrUnauthorized
	}
	return nil
}

func (b *Bot) reply(msg Message, text string) {
	b.outbox.Enqueue(msg.ChannelID, text)
}

func (b *Bot) publish(ctx context.Context, e events.Event) {
	if err := b.events.Publish(ctx, e); err != nil {
		b.log.Error(err, "failed to publish event", "type", string(e.Type), "droplet", e.Droplet)
	}
}

func match(prefix, content string) (command, bool) {
	if !strings.HasPrefix(content, prefix) {
		return command{}, false
	}
	rest := content[len(prefix):]
	for _, c := range commands {
		if strings.HasPrefix(rest, c.name) {
			return c, true
		}
	}
	return command{}, false
}
