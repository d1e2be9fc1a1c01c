// Package pubsub provides a small generic publish/subscribe broker used to
// move events from background goroutines (file watcher, logger) onto the
// frame loop.
package pubsub

import (
	"context"
	"time"
)

// EventType names what happened to the payload.
type EventType string

const (
	// WrittenEvent reports a file that was created or written.
	WrittenEvent EventType = "written"
	// RemovedEvent reports a file that was removed or renamed away.
	RemovedEvent EventType = "removed"
	// LoggedEvent carries a formatted log line.
	LoggedEvent EventType = "logged"
	// ReloadedEvent reports that a configuration was re-read.
	ReloadedEvent EventType = "reloaded"
	// WokeEvent reports that a background source has output to drain.
	WokeEvent EventType = "woke"
)

// Event is a published payload stamped with its type and time.
type Event[T any] struct {
	Type      EventType
	Payload   T
	Timestamp time.Time
}

// Subscriber hands out subscription channels.
type Subscriber[T any] interface {
	Subscribe(ctx context.Context) <-chan Event[T]
}

// Publisher accepts events.
type Publisher[T any] interface {
	Publish(eventType EventType, payload T)
}
