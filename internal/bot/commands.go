package bot

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/imamik/dropletd/internal/config"
	"github.com/imamik/dropletd/internal/droplet"
	"github.com/imamik/dropletd/internal/events"
	"github.com/imamik/dropletd/internal/provisioning"
)

func (b *Bot) turnOn(ctx context.Context, cfg *config.Config, msg Message) error {
	d, err := b.provisioner.CreateOrGet(ctx, provisioning.CreateParams{
		Tag:      cfg.Droplet.Tag,
		Snapshot: cfg.Droplet.Snapshot,
		Firewall: cfg.Droplet.Firewall,
		Progress: b.outbox.Progress(msg.ChannelID),
	})
	if err != nil {
		return err
	}
	b.publish(ctx, events.New(events.TypeCreated, cfg.Droplet.Tag, *d))
	b.watch(ctx, cfg.Droplet.Tag, msg.ChannelID, *d)

	b.reply(msg, fmt.Sprintf("droplet %s turned on, exists at ip %s\n"+
		"don't forget to turn it off when you're finished (%sturn off stream)\n%s",
		d.Name, d.IPv4, cfg.Bot.Prefix, streamURLs(cfg, d.IPv4)))
	return nil
}

// watch starts monitoring d. When it goes idle every droplet carrying tag
// is destroyed and the channel that turned it on is told.
func (b *Bot) watch(ctx context.Context, tag, channel string, d droplet.Record) {
	onIdle := func(ctx context.Context, lastActive time.Time, rec droplet.Record) bool {
		log := b.log.WithValues("droplet", rec.Name, "tag", tag)
		destroyed, err := b.provisioner.DestroyTagged(ctx, tag)
		if err != nil {
			// Keep watching; the next idle cycle retries the destroy.
			log.Error(err, "failed to destroy idle droplet")
			return true
		}
		log.Info("destroyed idle droplet", "lastActive", lastActive)
		for _, r := range destroyed {
			b.publish(ctx, events.New(events.TypeIdleDestroyed, tag, r))
		}
		b.outbox.Enqueue(channel, fmt.Sprintf("droplet %s inactive since %s, turned it off",
			rec.Name, lastActive.UTC().Format(time.RFC3339)))
		return false
	}
	onError := func(ctx context.Context, err error, rec droplet.Record) {
		b.log.Error(err, "monitoring ended", "droplet", rec.Name, "tag", tag)
		e := events.New(events.TypeMonitorFailed, tag, rec)
		e.Error = err.Error()
		b.publish(ctx, e)
	}
	b.watcher.Start(ctx, d, onIdle, onError)
}

func (b *Bot) turnOff(ctx context.Context, cfg *config.Config, msg Message) error {
	destroyed, err := b.provisioner.DestroyTagged(ctx, cfg.Droplet.Tag)
	if err != nil {
		return err
	}
	if len(destroyed) == 0 {
		b.reply(msg, "no droplets to turn off")
		return nil
	}
	names := make([]string, 0, len(destroyed))
	for _, d := range destroyed {
		names = append(names, d.Name)
		b.publish(ctx, events.New(events.TypeDestroyed, cfg.Droplet.Tag, d))
	}
	b.reply(msg, fmt.Sprintf("droplet(s) %s turned off", strings.Join(names, ",")))
	return nil
}

func (b *Bot) status(ctx context.Context, cfg *config.Config, msg Message) error {
	d, err := b.provisioner.Status(ctx, cfg.Droplet.Tag)
	if errors.Is(err, droplet.ErrResourceMissing) {
		b.reply(msg, fmt.Sprintf("Stream is currently off, turn it on first! (%sturn on stream)", cfg.Bot.Prefix))
		return nil
	}
	if err != nil {
		return err
	}

	statuses := make([]string, 0, len(d.Actions))
	for _, a := range d.Actions {
		statuses = append(statuses, string(a.Status))
	}
	b.reply(msg, fmt.Sprintf("droplet %s exists at ip %s\n%s\ndroplet's last status(es) are %s",
		d.Name, d.IPv4, streamURLs(cfg, d.IPv4), strings.Join(statuses, ",")))
	return nil
}

func (b *Bot) help(_ context.Context, cfg *config.Config, msg Message) error {
	var sb strings.Builder
	sb.WriteString("possible commands are:")
	for _, c := range commands {
		sb.WriteString("\n" + cfg.Bot.Prefix + c.name)
	}
	b.reply(msg, sb.String())
	return nil
}

// streamURLs renders the RTMP publish and play URLs for ip. The stream key
// line is only shown when a key is configured.
func streamURLs(cfg *config.Config, ip string) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "stream publish url is rtmp://%s:1935/publish?publish_key={publish key}\n", ip)
	if cfg.Bot.StreamKey != config.PlaceholderStreamKey {
		fmt.Fprintf(&sb, "stream key for publishing is '%s'\n", cfg.Bot.StreamKey)
	}
	fmt.Fprintf(&sb, "stream play url is rtmp://%s:1935/live/%s?play_key=%s", ip, cfg.Bot.StreamKey, cfg.Bot.PlayKey)
	return sb.String()
}
