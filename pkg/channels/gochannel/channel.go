// Package gochannel provides the in-memory event channel used in development and tests.
package gochannel

import (
	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
)

const defaultBuffer = 1000

type Option func(*gochannel.Config)

// WithReplay keeps published messages so that a subscriber created after publishing still
// receives them.
func WithReplay() Option {
	return func(config *gochannel.Config) {
		config.Persistent = true
	}
}

// WithBuffer sets the size of each subscriber's output channel.
func WithBuffer(size int64) Option {
	return func(config *gochannel.Config) {
		config.OutputChannelBuffer = size
	}
}

// CreateChannel returns one GoChannel as both publisher and subscriber, for running the API
// without a broker.
func CreateChannel(logger watermill.LoggerAdapter, opts ...Option) (*gochannel.GoChannel, *gochannel.GoChannel, error) {
	config := gochannel.Config{
		OutputChannelBuffer: defaultBuffer,
	}

	for _, opt := range opts {
		opt(&config)
	}

	pubSub := gochannel.NewGoChannel(config, logger)

	return pubSub, pubSub, nil
}
