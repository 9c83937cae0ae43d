// Package pubsub carries events from background goroutines (log writes, rule
// reloads) into the bubbletea event loop.
package pubsub

import (
	"context"
	"time"
)

// EventType represents the type of event being published.
type EventType string

const (
	// CreatedEvent announces a new item, such as a log entry.
	CreatedEvent EventType = "created"
	// ReloadedEvent announces that a watched resource was reloaded.
	ReloadedEvent EventType = "reloaded"
	// FailedEvent announces that a reload was attempted and rejected.
	FailedEvent EventType = "failed"
)

// Event represents a published event with a typed payload.
type Event[T any] struct {
	Type      EventType
	Payload   T
	Timestamp time.Time
}

// Subscriber provides a subscription channel for events.
type Subscriber[T any] interface {
	Subscribe(ctx context.Context) <-chan Event[T]
}

// Publisher allows publishing events with a typed payload.
type Publisher[T any] interface {
	Publish(eventType EventType, payload T)
}
