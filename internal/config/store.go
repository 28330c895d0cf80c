package config

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"sync/atomic"

	"github.com/fsnotify/fsnotify"
	"github.com/go-logr/logr"
)

// Store holds the current configuration. Readers always get the latest
// successfully loaded snapshot; a reload that fails to parse or validate
// keeps the previous one.
type Store struct {
	path    string
	current atomic.Pointer[Config]
	log     logr.Logger

	mu        sync.Mutex
	listeners []func(*Config)
}

// StoreOption configures a Store.
type StoreOption func(*Store)

// WithStoreLogger sets the logger used to report reloads.
func WithStoreLogger(l logr.Logger) StoreOption {
	return func(s *Store) {
		s.log = l
	}
}

// NewStore loads path and returns a Store serving it.
func NewStore(path string, opts ...StoreOption) (*Store, error) {
	s := &Store{path: path, log: logr.Discard()}
	for _, opt := range opts {
		opt(s)
	}
	cfg, err := Load(path)
	if err != nil {
		return nil, err
	}
	s.current.Store(cfg)
	return s, nil
}

// NewStaticStore returns a Store that always serves cfg. Reload and Watch
// are no-ops.
func NewStaticStore(cfg *Config) *Store {
	s := &Store{log: logr.Discard()}
	s.current.Store(cfg)
	return s
}

// Current returns the current configuration. Callers must not mutate it.
func (s *Store) Current() *Config {
	return s.current.Load()
}

// Path returns the file the store was loaded from.
func (s *Store) Path() string {
	return s.path
}

// OnReload registers fn to be called with every newly loaded configuration.
func (s *Store) OnReload(fn func(*Config)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listeners = append(s.listeners, fn)
}

// Reload re-reads the file. On failure the previous configuration stays
// active and the error is returned.
func (s *Store) Reload() error {
	if s.path == "" {
		return nil
	}
	cfg, err := Load(s.path)
	if err != nil {
		return err
	}
	s.current.Store(cfg)

	s.mu.Lock()
	listeners := append([](func(*Config))(nil), s.listeners...)
	s.mu.Unlock()
	for _, fn := range listeners {
		fn(cfg)
	}
	return nil
}

// Watch reloads the configuration whenever the file changes, until ctx is
// done. The parent directory is watched so that editors replacing the file
// through a rename are picked up as well.
func (s *Store) Watch(ctx context.Context) error {
	if s.path == "" {
		<-ctx.Done()
		return nil
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create config watcher: %w", err)
	}
	defer func() {
		_ = watcher.Close()
	}()

	target := filepath.Clean(s.path)
	if err := watcher.Add(filepath.Dir(target)); err != nil {
		return fmt.Errorf("failed to watch %s: %w", filepath.Dir(target), err)
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != target {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}
			if err := s.Reload(); err != nil {
				s.log.Error(err, "config reload failed, keeping previous configuration", "path", s.path)
				continue
			}
			s.log.Info("config reloaded", "path", s.path)
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			s.log.Error(err, "config watcher error", "path", s.path)
		}
	}
}
