package main

import (
	"context"
	"encoding/json"
	"io"
	"sync"

	"github.com/almflow/workflows/pkg/cmd"
	"github.com/almflow/workflows/pkg/eventbus"
	"github.com/almflow/workflows/pkg/log"
	cli "github.com/urfave/cli/v3"
)

func EventsCommand() *cli.Command {
	return &cli.Command{
		Name:  "events",
		Usage: "Print workflow lifecycle events from the event bus as JSON lines",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "kafka-brokers",
				Usage:   "Comma separated Kafka brokers",
				Sources: cli.EnvVars("KAFKA_BROKERS"),
			},
			&cli.StringFlag{
				Name:  "consumer-group",
				Usage: "Kafka consumer group",
				Value: "almflow-workflows-events",
			},
			&cli.BoolFlag{
				Name:  "from-oldest",
				Usage: "Start a new consumer group at the oldest retained event",
			},
		},
		Action: func(ctx context.Context, command *cli.Command) error {
			logger := log.WithModule("events")

			bus, err := cmd.NewEventBus(cmd.EventBusConfig{
				Provider:      "kafka",
				Brokers:       command.String("kafka-brokers"),
				ConsumerGroup: command.String("consumer-group"),
				FromOldest:    command.Bool("from-oldest"),
			}, logger)
			if err != nil {
				return err
			}

			defer func() {
				err := bus.Close()
				if err != nil {
					logger.ErrorContext(ctx, "Failed to close event bus", "error", err)
				}
			}()

			return watchEvents(ctx, bus, command.Root().Writer)
		},
	}
}

// watchEvents writes every received event to out until ctx is done.
func watchEvents(ctx context.Context, bus eventbus.EventSubscriber, out io.Writer) error {
	var mu sync.Mutex

	encoder := json.NewEncoder(out)

	bus.HandleAll(func(_ context.Context, event any) error {
		mu.Lock()
		defer mu.Unlock()

		return encoder.Encode(event)
	})

	err := bus.Subscribe(ctx)
	if err != nil {
		return err
	}

	<-ctx.Done()

	return nil
}
