// Package eventbus publishes workflow lifecycle events over a Watermill publisher and
// dispatches them to subscribers.
package eventbus

import (
	"context"

	"github.com/almflow/workflows/pkg/events"
)

type Event interface {
	GetType() events.EventType
}

type EventPublisher interface {
	// Publish sends the event keyed by key, usually the workflow id, so that events of one
	// workflow stay ordered on partitioned brokers.
	Publish(ctx context.Context, key string, event Event) error
}

// EventHandler receives the decoded event, a pointer to one of the events structs.
type EventHandler func(ctx context.Context, event any) error

type EventSubscriber interface {
	Handle(eventType events.EventType, handler EventHandler)
	// HandleAll registers a handler for every event type.
	HandleAll(handler EventHandler)
	Subscribe(ctx context.Context) error
}

type EventBus interface {
	EventPublisher
	EventSubscriber
	Close() error
}
