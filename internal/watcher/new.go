package watcher

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/nguyentantai21042004/narration-flow/internal/logger"
)

// New watches the directory holding target and reacts to changes of target
// only. Changes closer together than debounce collapse into one run.
func New(target string, handler EventHandler, debounce time.Duration, log logger.Logger) (Watcher, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create watcher: %w", err)
	}

	dir := filepath.Dir(target)
	if err := watcher.Add(dir); err != nil {
		watcher.Close()
		return nil, fmt.Errorf("add watch path: %w", err)
	}

	if debounce <= 0 {
		debounce = 500 * time.Millisecond
	}

	return &implWatcher{
		target:   filepath.Base(target),
		dir:      dir,
		handler:  handler,
		logger:   log,
		watcher:  watcher,
		debounce: debounce,
		queued:   make(chan struct{}, 1),
	}, nil
}
