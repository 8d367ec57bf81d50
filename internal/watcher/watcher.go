package watcher

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/nguyentantai21042004/narration-flow/internal/logger"
)

type implWatcher struct {
	target   string
	dir      string
	handler  EventHandler
	logger   logger.Logger
	watcher  *fsnotify.Watcher
	debounce time.Duration
	// queued holds at most one pending run. A change that lands while the
	// handler is busy is kept here and runs once the handler returns.
	queued chan struct{}
	wg     sync.WaitGroup
}

// Start blocks until ctx is done or the watcher is stopped. Runs of the
// handler never overlap.
func (w *implWatcher) Start(ctx context.Context) error {
	w.logger.Info(ctx, "Watching %s for changes (debounce %s)", filepath.Join(w.dir, w.target), w.debounce)

	runCtx, cancel := context.WithCancel(ctx)
	w.wg.Add(1)
	go w.worker(runCtx)
	defer w.wg.Wait()
	defer cancel()

	var (
		timer *time.Timer
		fire  <-chan time.Time
	)
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			w.logger.Info(ctx, "Stopping watcher, cancelling any run in progress")
			return ctx.Err()

		case event, ok := <-w.watcher.Events:
			if !ok {
				return fmt.Errorf("watcher events channel closed")
			}
			if !w.matches(event) {
				continue
			}
			w.logger.Debug(ctx, "Description changed: %s", event)

			if timer != nil {
				timer.Stop()
			}
			timer = time.NewTimer(w.debounce)
			fire = timer.C

		case <-fire:
			fire = nil
			select {
			case w.queued <- struct{}{}:
			default:
				w.logger.Debug(ctx, "Run already queued")
			}

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return fmt.Errorf("watcher errors channel closed")
			}
			w.logger.Error(ctx, "Watcher error: %v", err)
		}
	}
}

func (w *implWatcher) worker(ctx context.Context) {
	defer w.wg.Done()
	for {
		select {
		case <-ctx.Done():
			return
		case <-w.queued:
			w.logger.Info(ctx, "Description changed, starting a new run")
			if err := w.handler(ctx); err != nil {
				w.logger.Error(ctx, "Run failed: %v", err)
			}
		}
	}
}

// Stop closes the file watcher
func (w *implWatcher) Stop() error {
	return w.watcher.Close()
}

func (w *implWatcher) matches(event fsnotify.Event) bool {
	if filepath.Base(event.Name) != w.target {
		return false
	}
	return event.Has(fsnotify.Write) || event.Has(fsnotify.Create)
}
