package watcher

import (
	"context"
	"log/slog"
	"os"
	"sync"
	"time"
)

type Watcher interface {
	Watch(ctx context.Context, path string) error
	Stop() error
	OnChange(callback func(path string, event EventType))
}

type EventType int

const (
	EventCreate EventType = iota
	EventModify
	EventDelete
)

func (e EventType) String() string {
	switch e {
	case EventCreate:
		return "create"
	case EventModify:
		return "modify"
	case EventDelete:
		return "delete"
	default:
		return "unknown"
	}
}

// PollWatcher watches a single file by polling its modification time.
// Sidecar files are small and change rarely, so polling is cheap and
// avoids platform-specific notification APIs.
type PollWatcher struct {
	interval time.Duration
	logger   *slog.Logger

	mu       sync.Mutex
	callback func(path string, event EventType)
	cancel   context.CancelFunc
	done     chan struct{}
}

func NewPollWatcher(interval time.Duration, logger *slog.Logger) *PollWatcher {
	if interval <= 0 {
		interval = 2 * time.Second
	}
	return &PollWatcher{interval: interval, logger: logger}
}

// Watch polls path until ctx is cancelled or Stop is called. Watching a
// new path stops any previous watch first.
func (w *PollWatcher) Watch(ctx context.Context, path string) error {
	w.Stop()

	ctx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})

	w.mu.Lock()
	w.cancel = cancel
	w.done = done
	w.mu.Unlock()

	exists, modTime := stat(path)

	go func() {
		defer close(done)
		ticker := time.NewTicker(w.interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				nowExists, nowMod := stat(path)
				switch {
				case !exists && nowExists:
					w.emit(path, EventCreate)
				case exists && !nowExists:
					w.emit(path, EventDelete)
				case exists && nowExists && !nowMod.Equal(modTime):
					w.emit(path, EventModify)
				}
				exists, modTime = nowExists, nowMod
			}
		}
	}()

	if w.logger != nil {
		w.logger.Info("watching file", "path", path, "interval", w.interval.String())
	}
	return nil
}

func (w *PollWatcher) Stop() error {
	w.mu.Lock()
	cancel, done := w.cancel, w.done
	w.cancel, w.done = nil, nil
	w.mu.Unlock()

	if cancel != nil {
		cancel()
		<-done
	}
	return nil
}

func (w *PollWatcher) OnChange(callback func(path string, event EventType)) {
	w.mu.Lock()
	w.callback = callback
	w.mu.Unlock()
}

func (w *PollWatcher) emit(path string, event EventType) {
	w.mu.Lock()
	cb := w.callback
	w.mu.Unlock()

	if w.logger != nil {
		w.logger.Debug("file changed", "path", path, "event", event.String())
	}
	if cb != nil {
		cb(path, event)
	}
}

func stat(path string) (bool, time.Time) {
	info, err := os.Stat(path)
	if err != nil {
		return false, time.Time{}
	}
	return true, info.ModTime()
}
