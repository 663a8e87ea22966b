package eventbus

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/almflow/workflows/pkg/events"
)

var _ EventBus = (*WatermillEventBus)(nil)

// WatermillEventBus carries events over any Watermill pub/sub pair, in-memory or Kafka.
type WatermillEventBus struct {
	publisher  message.Publisher
	subscriber message.Subscriber
	logger     *slog.Logger

	mu       sync.RWMutex
	handlers map[events.EventType][]EventHandler
	catchAll []EventHandler
}

func NewWatermillEventBus(pub message.Publisher, sub message.Subscriber, logger *slog.Logger) *WatermillEventBus {
	return &WatermillEventBus{
		publisher:  pub,
		subscriber: sub,
		logger:     logger.With("module", "event_bus"),
		handlers:   make(map[events.EventType][]EventHandler),
	}
}

func (eb *WatermillEventBus) Publish(ctx context.Context, key string, event Event) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal %s event: %w", event.GetType(), err)
	}

	msg := message.NewMessage(watermill.NewUUID(), payload)
	msg.SetContext(ctx)
	msg.Metadata.Set(events.EventMetadataKey, key)
	msg.Metadata.Set(events.EventTypeMetadataKey, string(event.GetType()))

	err = eb.publisher.Publish(events.Topic, msg)
	if err != nil {
		return fmt.Errorf("failed to publish %s event: %w", event.GetType(), err)
	}

	eb.logger.DebugContext(ctx, "Event published", "event_type", event.GetType(), "key", key)

	return nil
}

func (eb *WatermillEventBus) Handle(eventType events.EventType, handler EventHandler) {
	eb.mu.Lock()
	defer eb.mu.Unlock()

	eb.handlers[eventType] = append(eb.handlers[eventType], handler)
}

func (eb *WatermillEventBus) HandleAll(handler EventHandler) {
	eb.mu.Lock()
	defer eb.mu.Unlock()

	eb.catchAll = append(eb.catchAll, handler)
}

// Subscribe starts delivering messages to the registered handlers until ctx is done or the
// subscriber is closed.
func (eb *WatermillEventBus) Subscribe(ctx context.Context) error {
	messages, err := eb.subscriber.Subscribe(ctx, events.Topic)
	if err != nil {
		return fmt.Errorf("failed to subscribe to %s: %w", events.Topic, err)
	}

	go func() {
		for msg := range messages {
			eb.dispatch(ctx, msg)
		}
	}()

	return nil
}

func (eb *WatermillEventBus) handlersFor(eventType events.EventType) []EventHandler {
	eb.mu.RLock()
	defer eb.mu.RUnlock()

	handlers := make([]EventHandler, 0, len(eb.handlers[eventType])+len(eb.catchAll))
	handlers = append(handlers, eb.handlers[eventType]...)

	return append(handlers, eb.catchAll...)
}

// dispatch acks messages nobody handles and drops messages that cannot be decoded, since
// redelivering them would never succeed. A failing handler nacks for redelivery.
func (eb *WatermillEventBus) dispatch(ctx context.Context, msg *message.Message) {
	eventType := events.EventType(msg.Metadata.Get(events.EventTypeMetadataKey))

	handlers := eb.handlersFor(eventType)
	if len(handlers) == 0 {
		msg.Ack()

		return
	}

	event, err := events.Decode(eventType, msg.Payload)
	if err != nil {
		eb.logger.WarnContext(ctx, "Dropping undecodable event", "message_id", msg.UUID, "error", err)
		msg.Ack()

		return
	}

	for _, handler := range handlers {
		err = handler(ctx, event)
		if err != nil {
			eb.logger.ErrorContext(ctx, "Event handler failed",
				"message_id", msg.UUID,
				"event_type", eventType,
				"error", err,
			)
			msg.Nack()

			return
		}
	}

	msg.Ack()
}

func (eb *WatermillEventBus) Close() error {
	err := eb.publisher.Close()
	if err != nil {
		return err
	}

	return eb.subscriber.Close()
}
