package bot

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	clocktesting "k8s.io/utils/clock/testing"

	"github.com/imamik/dropletd/internal/config"
	"github.com/imamik/dropletd/internal/droplet"
	"github.com/imamik/dropletd/internal/droplet/droplettest"
	"github.com/imamik/dropletd/internal/events"
	"github.com/imamik/dropletd/internal/monitor"
	"github.com/imamik/dropletd/internal/provisioning"
	"github.com/imamik/dropletd/internal/ratelimit"
)

type recordingOutbox struct {
	mu       sync.Mutex
	messages []string
}

func (o *recordingOutbox) Enqueue(destination, text string) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.messages = append(o.messages, destination+": "+text)
}

func (o *recordingOutbox) Progress(destination string) func(string) {
	return func(text string) { o.Enqueue(destination, text) }
}

func (o *recordingOutbox) all() []string {
	o.mu.Lock()
	defer o.mu.Unlock()
	return append([]string(nil), o.messages...)
}

func (o *recordingOutbox) last() string {
	all := o.all()
	if len(all) == 0 {
		return ""
	}
	return all[len(all)-1]
}

type capturingWatcher struct {
	mu      sync.Mutex
	records []droplet.Record
	onIdle  monitor.IdleFunc
	onError monitor.ErrorFunc
}

func (w *capturingWatcher) Start(_ context.Context, record droplet.Record, onIdle monitor.IdleFunc, onError monitor.ErrorFunc) *monitor.Session {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.records = append(w.records, record)
	w.onIdle = onIdle
	w.onError = onError
	return nil
}

type stubProvisioner struct {
	createOrGet   func(ctx context.Context, p provisioning.CreateParams) (*droplet.Record, error)
	destroyTagged func(ctx context.Context, tag string) ([]droplet.Record, error)
	status        func(ctx context.Context, tag string) (*droplet.Record, error)
}

func (s *stubProvisioner) CreateOrGet(ctx context.Context, p provisioning.CreateParams) (*droplet.Record, error) {
	return s.createOrGet(ctx, p)
}

func (s *stubProvisioner) DestroyTagged(ctx context.Context, tag string) ([]droplet.Record, error) {
	return s.destroyTagged(ctx, tag)
}

func (s *stubProvisioner) Status(ctx context.Context, tag string) (*droplet.Record, error) {
	return s.status(ctx, tag)
}

func testConfig() *config.Config {
	cfg := &config.Config{
		Droplet: config.DropletConfig{Tag: "stream", Snapshot: "obs-base", Firewall: "stream-fw"},
	}
	cfg.ApplyDefaults()
	return cfg
}

type harness struct {
	bot      *Bot
	cloud    *droplettest.FakeCloud
	outbox   *recordingOutbox
	watcher  *capturingWatcher
	recorder *events.Recorder
	clock    *clocktesting.FakePassiveClock
}

func newHarness(t *testing.T, cfg *config.Config, allow bool, p Provisioner) *harness {
	t.Helper()
	h := &harness{
		cloud: &droplettest.FakeCloud{
			Snapshots: []droplet.Snapshot{{ID: "4711", Name: "obs-base", Regions: []string{"sfo2"}}},
			Firewalls: []droplet.Firewall{{ID: "fw-1", Name: "stream-fw"}},
			Keys:      []droplet.SSHKey{{ID: "7", Name: "laptop"}},
		},
		outbox:   &recordingOutbox{},
		watcher:  &capturingWatcher{},
		recorder: &events.Recorder{},
		clock:    clocktesting.NewFakePassiveClock(time.Unix(1_700_000_000, 0)),
	}
	if p == nil {
		p = provisioning.NewCoordinator(h.cloud, provisioning.WithActionPoll(time.Millisecond, 0))
	}
	h.bot = New(func() *config.Config { return cfg }, p, h.watcher, h.outbox,
		WithAuthorizer(AuthorizerFunc(func(context.Context, Message) (bool, error) { return allow, nil })),
		WithPublisher(h.recorder),
		WithLimiter(ratelimit.New(cfg.Bot.RateLimit, cfg.Bot.RateWindow, ratelimit.WithClock(h.clock))),
	)
	return h
}

func message(content string) Message {
	return Message{ChannelID: "chan-1", AuthorID: "u-1", AuthorName: "dave", Content: content}
}

func TestHandle_IgnoresNonCommands(t *testing.T) {
	t.Parallel()
	h := newHarness(t, testConfig(), true, nil)

	for _, content := range []string{"hello", "turn on stream", "?turn on stream", "!turn up stream", ""} {
		h.bot.Handle(context.Background(), message(content))
	}
	assert.Empty(t, h.outbox.all())
	assert.Empty(t, h.cloud.Created())
}

func TestHandle_Help(t *testing.T) {
	t.Parallel()
	h := newHarness(t, testConfig(), false, nil)

	h.bot.Handle(context.Background(), message("!stream help please"))
	assert.Equal(t, []string{
		"chan-1: possible commands are:\n!turn on stream\n!turn off stream\n!stream status\n!stream help",
	}, h.outbox.all())
}

func TestHandle_CustomPrefix(t *testing.T) {
	t.Parallel()
	cfg := testConfig()
	cfg.Bot.Prefix = "$"
	h := newHarness(t, cfg, false, nil)

	h.bot.Handle(context.Background(), message("!stream help"))
	assert.Empty(t, h.outbox.all())

	h.bot.Handle(context.Background(), message("$stream help"))
	assert.Contains(t, h.outbox.last(), "$turn on stream")
}

func TestTurnOn_Unauthorized(t *testing.T) {
	t.Parallel()
	h := newHarness(t, testConfig(), false, nil)

	h.bot.Handle(context.Background(), message("!turn on stream"))
	assert.Equal(t, []string{"chan-1: I'm sorry dave, I'm afraid I can't allow you to do that."}, h.outbox.all())
	assert.Empty(t, h.cloud.Created())
	assert.Empty(t, h.watcher.records)
}

func TestTurnOn_NoAuthorizerRefuses(t *testing.T) {
	t.Parallel()
	cfg := testConfig()
	out := &recordingOutbox{}
	b := New(func() *config.Config { return cfg }, &stubProvisioner{}, &capturingWatcher{}, out)

	b.Handle(context.Background(), message("!turn off stream"))
	assert.Contains(t, out.last(), "I'm afraid I can't allow you to do that")
}

func TestTurnOn_CreatesAndWatches(t *testing.T) {
	t.Parallel()
	h := newHarness(t, testConfig(), true, nil)

	h.bot.Handle(context.Background(), message("!turn on stream"))

	require.Len(t, h.cloud.Created(), 1)
	assert.Equal(t, "obs-base-stream", h.cloud.Created()[0].Name)

	msgs := h.outbox.all()
	require.Len(t, msgs, 3)
	assert.Equal(t, "chan-1: Creating droplet obs-base-stream in sfo2...", msgs[0])
	assert.Equal(t, "chan-1: Droplet obs-base-stream created, waiting for it to boot...", msgs[1])
	assert.Equal(t, "chan-1: droplet obs-base-stream turned on, exists at ip 203.0.113.10\n"+
		"don't forget to turn it off when you're finished (!turn off stream)\n"+
		"stream publish url is rtmp://203.0.113.10:1935/publish?publish_key={publish key}\n"+
		"stream play url is rtmp://203.0.113.10:1935/live/{stream key}?play_key={play key}", msgs[2])

	require.Len(t, h.watcher.records, 1)
	assert.Equal(t, "obs-base-stream", h.watcher.records[0].Name)
	assert.Equal(t, []events.Type{events.TypeCreated}, h.recorder.Types())
}

func TestTurnOn_StreamKeyLine(t *testing.T) {
	t.Parallel()
	cfg := testConfig()
	cfg.Bot.StreamKey = "abc123"
	cfg.Bot.PlayKey = "watch"
	h := newHarness(t, cfg, true, nil)

	h.bot.Handle(context.Background(), message("!turn on stream"))
	assert.Contains(t, h.outbox.last(),
		"stream key for publishing is 'abc123'\nstream play url is rtmp://203.0.113.10:1935/live/abc123?play_key=watch")
}

func TestTurnOn_IdleCallbackDestroys(t *testing.T) {
	t.Parallel()
	h := newHarness(t, testConfig(), true, nil)
	h.bot.Handle(context.Background(), message("!turn on stream"))
	require.NotNil(t, h.watcher.onIdle)

	lastActive := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	cont := h.watcher.onIdle(context.Background(), lastActive, h.watcher.records[0])

	assert.False(t, cont, "monitoring stops once the droplet is gone")
	assert.Equal(t, []string{"id-1"}, h.cloud.Deleted())
	assert.Equal(t, "chan-1: droplet obs-base-stream inactive since 2026-03-01T12:00:00Z, turned it off", h.outbox.last())
	assert.Equal(t, []events.Type{events.TypeCreated, events.TypeIdleDestroyed}, h.recorder.Types())
}

func TestTurnOn_IdleCallbackKeepsWatchingOnDestroyError(t *testing.T) {
	t.Parallel()
	h := newHarness(t, testConfig(), true, nil)
	h.bot.Handle(context.Background(), message("!turn on stream"))
	h.cloud.DeleteFunc = func(context.Context, string) error { return errors.New("api down") }
	before := len(h.outbox.all())

	cont := h.watcher.onIdle(context.Background(), time.Now(), h.watcher.records[0])
	assert.True(t, cont)
	assert.Len(t, h.outbox.all(), before, "nothing is announced when the destroy fails")
}

func TestTurnOn_MonitorErrorPublishes(t *testing.T) {
	t.Parallel()
	h := newHarness(t, testConfig(), true, nil)
	h.bot.Handle(context.Background(), message("!turn on stream"))

	h.watcher.onError(context.Background(), errors.New("liveness unreachable"), h.watcher.records[0])

	evs := h.recorder.Events()
	require.Len(t, evs, 2)
	assert.Equal(t, events.TypeMonitorFailed, evs[1].Type)
	assert.Equal(t, "liveness unreachable", evs[1].Error)
}

func TestTurnOn_ErrorReplies(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		err  error
		want string
	}{
		{
			name: "locked",
			err:  droplet.Errorf(droplet.KindResourceLocked, "create", "obs-base-stream", "droplet obs-base-stream is already being created"),
			want: "droplet obs-base-stream is already being created, try again shortly",
		},
		{
			name: "missing snapshot",
			err:  droplet.Errorf(droplet.KindResourceMissing, "create", "obs-base", "snapshot obs-base is missing"),
			want: "snapshot obs-base is missing",
		},
		{
			name: "boot failed",
			err:  droplet.Errorf(droplet.KindBootFailed, "create", "obs-base-stream", "droplet obs-base-stream failed to boot"),
			want: "droplet obs-base-stream failed to boot, turn it off and try again",
		},
		{
			name: "unexpected",
			err:  errors.New("quota exceeded"),
			want: "Unexpected error: quota exceeded",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			p := &stubProvisioner{
				createOrGet: func(context.Context, provisioning.CreateParams) (*droplet.Record, error) {
					return nil, tt.err
				},
			}
			h := newHarness(t, testConfig(), true, p)

			h.bot.Handle(context.Background(), message("!turn on stream"))
			assert.Equal(t, []string{"chan-1: " + tt.want}, h.outbox.all())
			assert.Empty(t, h.watcher.records)
			assert.Empty(t, h.recorder.Events())
		})
	}
}

func TestTurnOn_AuthorizerError(t *testing.T) {
	t.Parallel()
	cfg := testConfig()
	out := &recordingOutbox{}
	b := New(func() *config.Config { return cfg }, &stubProvisioner{}, &capturingWatcher{}, out,
		WithAuthorizer(AuthorizerFunc(func(context.Context, Message) (bool, error) {
			return false, errors.New("member lookup failed")
		})))

	b.Handle(context.Background(), message("!turn on stream"))
	assert.Equal(t, []string{"chan-1: Unexpected error: member lookup failed"}, out.all())
}

func TestTurnOff(t *testing.T) {
	t.Parallel()
	h := newHarness(t, testConfig(), true, nil)

	h.bot.Handle(context.Background(), message("!turn off stream"))
	assert.Equal(t, "chan-1: no droplets to turn off", h.outbox.last())

	h.cloud.Droplets = []droplet.Record{
		{ID: "1", Name: "obs-base-stream", Tags: []string{"stream"}},
		{ID: "2", Name: "obs-base-stream-old", Tags: []string{"stream"}},
		{ID: "3", Name: "unrelated", Tags: []string{"web"}},
	}
	h.bot.Handle(context.Background(), message("!turn off stream"))
	assert.Equal(t, "chan-1: droplet(s) obs-base-stream,obs-base-stream-old turned off", h.outbox.last())
	assert.ElementsMatch(t, []string{"1", "2"}, h.cloud.Deleted())
	assert.Equal(t, []events.Type{events.TypeDestroyed, events.TypeDestroyed}, h.recorder.Types())
}

func TestStatus(t *testing.T) {
	t.Parallel()
	h := newHarness(t, testConfig(), false, nil)

	h.bot.Handle(context.Background(), message("!stream status"))
	assert.Equal(t, "chan-1: Stream is currently off, turn it on first! (!turn on stream)", h.outbox.last())

	h.cloud.Droplets = []droplet.Record{{ID: "1", Name: "obs-base-stream", Tags: []string{"stream"}, IPv4: "198.51.100.7"}}
	h.cloud.ActionScript = [][]droplet.Action{{
		{ID: "1", Status: droplet.ActionCompleted},
		{ID: "2", Status: droplet.ActionInProgress},
	}}
	h.bot.Handle(context.Background(), message("!stream status"))
	assert.Equal(t, "chan-1: droplet obs-base-stream exists at ip 198.51.100.7\n"+
		"stream publish url is rtmp://198.51.100.7:1935/publish?publish_key={publish key}\n"+
		"stream play url is rtmp://198.51.100.7:1935/live/{stream key}?play_key={play key}\n"+
		"droplet's last status(es) are completed,in-progress", h.outbox.last())
}

func TestStatus_ListError(t *testing.T) {
	t.Parallel()
	h := newHarness(t, testConfig(), false, nil)
	h.cloud.ListByTagFunc = func(context.Context, string) ([]droplet.Record, error) {
		return nil, errors.New("timeout")
	}

	h.bot.Handle(context.Background(), message("!stream status"))
	assert.Contains(t, h.outbox.last(), "chan-1: Unexpected error: ")
	assert.Contains(t, h.outbox.last(), "timeout")
}

func TestHandle_RateLimited(t *testing.T) {
	t.Parallel()
	h := newHarness(t, testConfig(), false, nil)

	for i := 0; i < 5; i++ {
		h.bot.Handle(context.Background(), message("!stream help"))
	}
	assert.Len(t, h.outbox.all(), 5)
	assert.NotEqual(t, "chan-1: "+holdYourHorses, h.outbox.last())

	h.bot.Handle(context.Background(), message("!turn on stream"))
	assert.Equal(t, "chan-1: "+holdYourHorses, h.outbox.last())
	assert.Empty(t, h.cloud.Created(), "rate limited commands do not run")

	h.clock.SetTime(h.clock.Now().Add(6 * time.Second))
	h.bot.Handle(context.Background(), message("!stream help"))
	assert.Contains(t, h.outbox.last(), "possible commands are:")
}

func TestHandle_RateLimitFollowsReload(t *testing.T) {
	t.Parallel()
	var current atomic.Pointer[config.Config]
	cfg := testConfig()
	cfg.Bot.RateLimit = 1
	current.Store(cfg)
	out := &recordingOutbox{}
	b := New(current.Load, &stubProvisioner{}, &capturingWatcher{}, out)

	b.Handle(context.Background(), message("!stream help"))
	b.Handle(context.Background(), message("!stream help"))
	assert.Equal(t, "chan-1: "+holdYourHorses, out.last())

	reloaded := *cfg
	reloaded.Bot.RateLimit = 10
	current.Store(&reloaded)

	b.Handle(context.Background(), message("!stream help"))
	assert.Contains(t, out.last(), "possible commands are:")
}

func TestUserText(t *testing.T) {
	t.Parallel()
	msg := message("")

	assert.Equal(t, "I'm sorry dave, I'm afraid I can't allow you to do that.",
		userText(fmt.Errorf("wrapped: %w", ErrUnauthorized), msg))
	assert.Equal(t, "droplet x is already being created, try again shortly",
		userText(fmt.Errorf("outer: %w", droplet.Errorf(droplet.KindResourceLocked, "create", "x", "droplet x is already being created")), msg))
	assert.Equal(t, "resource missing",
		userText(droplet.ErrResourceMissing, msg), "errors without a cause render their kind")
}

func TestRecordCommandMetric(t *testing.T) {
	commandsTotal.Reset()

	recordCommandMetric("stream help", resultSuccess, 0.1)
	recordCommandMetric("stream help", resultRateLimited, 0)

	assert.Equal(t, float64(1), testutil.ToFloat64(commandsTotal.WithLabelValues("stream help", resultSuccess)))
	assert.Equal(t, float64(1), testutil.ToFloat64(commandsTotal.WithLabelValues("stream help", resultRateLimited)))
	assert.Equal(t, resultUnauthorized, commandResult(ErrUnauthorized))
	assert.Equal(t, resultError, commandResult(errors.New("x")))
}
