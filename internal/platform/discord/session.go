package discord

import (
	"context"
	"errors"
	"fmt"

	"github.com/bwmarrin/discordgo"
	"github.com/go-logr/logr"

	"github.com/imamik/dropletd/internal/bot"
	"github.com/imamik/dropletd/internal/notify"
)

// manageServer is the permission set allowed to turn the stream on or off.
const manageServer = discordgo.PermissionManageServer | discordgo.PermissionAdministrator

// api is the part of *discordgo.Session used outside the gateway loop.
type api interface {
	ChannelMessageSend(channelID, content string, options ...discordgo.RequestOption) (*discordgo.Message, error)
	UserChannelPermissions(userID, channelID string, fetchOptions ...discordgo.RequestOption) (int64, error)
}

// Session is a Discord bot connection.
type Session struct {
	session *discordgo.Session
	api     api
	log     logr.Logger
}

var (
	_ notify.Sender  = (*Session)(nil)
	_ bot.Authorizer = (*Session)(nil)
)

// Option configures a Session.
type Option func(*Session)

// WithLogger sets the logger.
func WithLogger(l logr.Logger) Option {
	return func(s *Session) {
		s.log = l
	}
}

// New creates a Session for the bot token. The gateway connection is
// opened by Run.
func New(token string, opts ...Option) (*Session, error) {
	if token == "" {
		return nil, errors.New("discord bot token is empty")
	}
	ds, err := discordgo.New("Bot " + token)
	if err != nil {
		return nil, fmt.Errorf("failed to create discord session: %w", err)
	}
	ds.Identify.Intents = discordgo.IntentsGuildMessages | discordgo.IntentsDirectMessages | discordgo.IntentsMessageContent

	s := &Session{session: ds, api: ds, log: logr.Discard()}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Send posts text to a channel.
func (s *Session) Send(ctx context.Context, channelID, text string) error {
	if _, err := s.api.ChannelMessageSend(channelID, text, discordgo.WithContext(ctx)); err != nil {
		return fmt.Errorf("failed to send message to %s: %w", channelID, err)
	}
	return nil
}

// CanManage reports whether the author may manage the server in the
// channel the message was sent in.
func (s *Session) CanManage(ctx context.Context, msg bot.Message) (bool, error) {
	perms, err := s.api.UserChannelPermissions(msg.AuthorID, msg.ChannelID, discordgo.WithContext(ctx))
	if err != nil {
		return false, fmt.Errorf("failed to resolve permissions of %s: %w", msg.AuthorName, err)
	}
	return perms&manageServer != 0, nil
}

// Run opens the gateway connection and calls handle in its own goroutine
// for every message not sent by a bot. It blocks until ctx is done and
// then closes the connection.
func (s *Session) Run(ctx context.Context, handle func(context.Context, bot.Message)) error {
	remove := s.session.AddHandler(func(_ *discordgo.Session, r *discordgo.Ready) {
		s.log.Info("connected to discord", "user", r.User.Username, "id", r.User.ID, "guilds", len(r.Guilds))
	})
	defer remove()
	removeMsg := s.session.AddHandler(func(_ *discordgo.Session, m *discordgo.MessageCreate) {
		msg, ok := toMessage(m)
		if !ok {
			return
		}
		go handle(ctx, msg)
	})
	defer removeMsg()

	if err := s.session.Open(); err != nil {
		return fmt.Errorf("failed to open discord gateway: %w", err)
	}
	<-ctx.Done()
	if err := s.session.Close(); err != nil {
		s.log.Error(err, "failed to close discord gateway")
	}
	return nil
}

// toMessage converts a gateway event. Messages from bots, including this
// one, are dropped.
func toMessage(m *discordgo.MessageCreate) (bot.Message, bool) {
	if m == nil || m.Message == nil || m.Author == nil || m.Author.Bot {
		return bot.Message{}, false
	}
	return bot.Message{
		ChannelID:  m.ChannelID,
		GuildID:    m.GuildID,
		AuthorID:   m.Author.ID,
		AuthorName: m.Author.Username,
		Content:    m.Content,
	}, true
}
