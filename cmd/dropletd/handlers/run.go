package handlers

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-logr/logr"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/sync/errgroup"

	"github.com/imamik/dropletd/internal/bot"
	"github.com/imamik/dropletd/internal/config"
	"github.com/imamik/dropletd/internal/monitor"
	"github.com/imamik/dropletd/internal/notify"
)

// Run handles the run command.
//
// It connects the chat bot and serves commands until SIGINT or SIGTERM.
// The notifier, the configuration watcher and the optional metrics
// endpoint run alongside it. Monitoring sessions end with the process;
// droplets they were watching keep running.
func Run(ctx context.Context, opts GlobalOptions) error {
	e, err := setup(opts)
	if err != nil {
		return err
	}
	cfg := e.store.Current()
	log := e.log

	chat, err := newChatSession(cfg, log.WithName("discord"))
	if err != nil {
		return fmt.Errorf("failed to create chat session: %w", err)
	}
	publisher, err := newPublisher(cfg.Events, log.WithName("events"))
	if err != nil {
		return err
	}
	defer publisher.Close()

	mon := newMonitor(e.store, e.timeouts, log.WithName("monitor"))
	notifier := notify.New(chat,
		notify.WithInterval(cfg.Notify.Interval),
		notify.WithLogger(log.WithName("notify")))
	b := bot.New(e.store.Current, e.coord, mon, notifier,
		bot.WithAuthorizer(chat),
		bot.WithPublisher(publisher),
		bot.WithLogger(log.WithName("bot")))

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	e.store.OnReload(func(c *config.Config) {
		log.Info("configuration reloaded", "tag", c.Droplet.Tag, "snapshot", c.Droplet.Snapshot)
	})

	g, gctx := errgroup.WithContext(ctx)
	notifier.Start(gctx)
	g.Go(func() error {
		return e.store.Watch(gctx)
	})
	g.Go(func() error {
		return chat.Run(gctx, b.Handle)
	})
	if addr := cfg.Metrics.Address; addr != "" {
		g.Go(func() error {
			return serveMetrics(gctx, addr, log.WithName("metrics"))
		})
	}

	log.Info("dropletd running", "provider", cfg.Cloud.Provider, "tag", cfg.Droplet.Tag)
	err = g.Wait()

	mon.StopAll()
	notifier.Stop()
	if nerr := notifier.Err(); nerr != nil {
		log.Error(nerr, "notifier stopped after a delivery failure")
	}
	log.Info("dropletd stopped")
	return err
}

// newMonitor builds the inactivity monitor. Threshold and poll interval
// are read from the store on every cycle so reloads apply to running
// sessions.
func newMonitor(store *config.Store, timeouts *config.Timeouts, log logr.Logger) *monitor.Monitor {
	cfg := store.Current()
	return monitor.New(monitor.NewHTTPFetcher(timeouts.LivenessRequest),
		monitor.WithThresholdFunc(func() time.Duration { return store.Current().Inactivity.Threshold }),
		monitor.WithPollIntervalFunc(func() time.Duration { return store.Current().Inactivity.PollInterval }),
		monitor.WithInitialDelay(cfg.Inactivity.InitialDelay),
		monitor.WithMaxAttempts(cfg.Inactivity.MaxAttempts),
		monitor.WithLogger(log),
	)
}

// serveMetrics serves /metrics on addr until ctx is done.
func serveMetrics(ctx context.Context, addr string, log logr.Logger) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Error(err, "failed to shut down metrics server")
		}
	}()

	log.Info("serving metrics", "address", addr)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("metrics server: %w", err)
	}
	return nil
}
