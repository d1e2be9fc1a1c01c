// Package watcher reports debounced changes to a set of files.
package watcher

import (
	"context"
	"fmt"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/zjrosen/scribe/internal/log"
	"github.com/zjrosen/scribe/internal/pubsub"
)

// Watcher monitors files for changes and publishes their paths.
type Watcher struct {
	fsWatcher *fsnotify.Watcher
	debounce  time.Duration
	broker    *pubsub.Broker[string]
	done      chan struct{}

	mu    sync.Mutex
	files map[string]bool
	dirs  map[string]int
}

// Config holds watcher configuration options.
type Config struct {
	DebounceDur time.Duration
}

// DefaultConfig returns sensible defaults for the watcher.
func DefaultConfig() Config {
	return Config{DebounceDur: 100 * time.Millisecond}
}

// New creates a watcher with nothing watched yet.
func New(cfg Config) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("creating fsnotify watcher: %w", err)
	}
	return &Watcher{
		fsWatcher: fsw,
		debounce:  cfg.DebounceDur,
		broker:    pubsub.NewBroker[string](),
		done:      make(chan struct{}),
		files:     make(map[string]bool),
		dirs:      make(map[string]int),
	}, nil
}

// Subscribe returns a channel of WrittenEvent and RemovedEvent events whose
// payload is the absolute path.
func (w *Watcher) Subscribe(ctx context.Context) <-chan pubsub.Event[string] {
	return w.broker.Subscribe(ctx)
}

// Add starts watching path. The containing directory is watched so that
// files replaced by rename still report.
func (w *Watcher) Add(path string) error {
	abs, err := filepath.Abs(path)
	if err != nil {
		return fmt.Errorf("resolving %s: %w", path, err)
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.files[abs] {
		return nil
	}
	dir := filepath.Dir(abs)
	if w.dirs[dir] == 0 {
		if err := w.fsWatcher.Add(dir); err != nil {
			return fmt.Errorf("watching directory %s: %w", dir, err)
		}
	}
	w.dirs[dir]++
	w.files[abs] = true
	log.Debug(log.CatWatcher, "watching", "path", abs)
	return nil
}

// Remove stops watching path.
func (w *Watcher) Remove(path string) error {
	abs, err := filepath.Abs(path)
	if err != nil {
		return fmt.Errorf("resolving %s: %w", path, err)
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	if !w.files[abs] {
		return nil
	}
	delete(w.files, abs)
	dir := filepath.Dir(abs)
	w.dirs[dir]--
	if w.dirs[dir] > 0 {
		return nil
	}
	delete(w.dirs, dir)
	if err := w.fsWatcher.Remove(dir); err != nil {
		return fmt.Errorf("unwatching directory %s: %w", dir, err)
	}
	return nil
}

// Watching reports whether path is watched.
func (w *Watcher) Watching(path string) bool {
	abs, err := filepath.Abs(path)
	if err != nil {
		return false
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.files[abs]
}

// Start begins processing events.
func (w *Watcher) Start() {
	go w.loop()
}

// Stop terminates the watcher and releases resources.
func (w *Watcher) Stop() error {
	close(w.done)
	w.broker.Close()
	return w.fsWatcher.Close()
}

// loop processes file system events with debouncing. Every path that
// changed during the quiet period is published once.
func (w *Watcher) loop() {
	var (
		timer   *time.Timer
		pending = make(map[string]pubsub.EventType)
	)

	for {
		select {
		case event, ok := <-w.fsWatcher.Events:
			if !ok {
				return
			}
			kind, relevant := w.classify(event)
			if !relevant {
				continue
			}
			pending[event.Name] = kind

			if timer == nil {
				timer = time.NewTimer(w.debounce)
			} else {
				if !timer.Stop() {
					select {
					case <-timer.C:
					default:
					}
				}
				timer.Reset(w.debounce)
			}

		case <-func() <-chan time.Time {
			if timer != nil {
				return timer.C
			}
			return nil
		}():
			paths := make([]string, 0, len(pending))
			for p := range pending {
				paths = append(paths, p)
			}
			sort.Strings(paths)
			for _, p := range paths {
				w.broker.Publish(pending[p], p)
			}
			clear(pending)

		case err, ok := <-w.fsWatcher.Errors:
			if !ok {
				return
			}
			log.ErrorErr(log.CatWatcher, "watch error", err)

		case <-w.done:
			if timer != nil {
				timer.Stop()
			}
			return
		}
	}
}

// classify maps an event on a watched file to the event type to publish.
func (w *Watcher) classify(event fsnotify.Event) (pubsub.EventType, bool) {
	w.mu.Lock()
	watched := w.files[event.Name]
	w.mu.Unlock()
	if !watched {
		return "", false
	}
	switch {
	case event.Op&(fsnotify.Write|fsnotify.Create) != 0:
		return pubsub.WrittenEvent, true
	case event.Op&(fsnotify.Remove|fsnotify.Rename) != 0:
		return pubsub.RemovedEvent, true
	}
	return "", false
}
