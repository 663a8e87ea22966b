// Package cmd provides common initialization functions for command-line applications.
package cmd

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/almflow/workflows/pkg/channels/gochannel"
	"github.com/almflow/workflows/pkg/channels/kafka"
	"github.com/almflow/workflows/pkg/eventbus"
)

const eventBusClientID = "almflow-workflows"

var ErrUnsupportedEventBus = errors.New("unsupported event bus provider")

type EventBusConfig struct {
	// Provider is "gochannel", "kafka" or empty to disable events.
	Provider string
	// Brokers is a comma separated Kafka broker list.
	Brokers       string
	ConsumerGroup string
	FromOldest    bool
	Tracing       bool
}

// NewEventBus creates the bus workflow lifecycle events travel on. An empty provider
// disables events and returns nil.
func NewEventBus(config EventBusConfig, logger *slog.Logger) (eventbus.EventBus, error) {
	adapter := watermill.NewSlogLogger(logger)

	switch config.Provider {
	case "":
		return nil, nil
	case "gochannel":
		pub, sub, err := gochannel.CreateChannel(adapter)
		if err != nil {
			return nil, fmt.Errorf("failed to create in-memory pub/sub: %w", err)
		}

		return eventbus.NewWatermillEventBus(pub, sub, logger), nil
	case "kafka":
		pub, sub, err := kafka.CreateChannel(adapter, kafka.Config{
			Brokers:       ParseBrokers(config.Brokers),
			ClientID:      eventBusClientID,
			ConsumerGroup: config.ConsumerGroup,
			FromOldest:    config.FromOldest,
			Tracing:       config.Tracing,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to create Kafka pub/sub: %w", err)
		}

		return eventbus.NewWatermillEventBus(pub, sub, logger), nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedEventBus, config.Provider)
	}
}

// ParseBrokers splits a comma separated broker list, dropping blanks.
func ParseBrokers(brokers string) []string {
	var result []string

	for broker := range strings.SplitSeq(brokers, ",") {
		broker = strings.TrimSpace(broker)
		if broker != "" {
			result = append(result, broker)
		}
	}

	return result
}
