package watcher

import "context"

// Watcher re-runs a handler whenever the watched file changes.
type Watcher interface {
	Start(ctx context.Context) error
	Stop() error
}

// EventHandler runs once per settled burst of changes.
type EventHandler func(ctx context.Context) error
