package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/almflow/workflows/pkg/log"
	cli "github.com/urfave/cli/v3"
)

const (
	defaultPort       = 9091
	defaultCatalogTTL = 5 * time.Minute
)

func main() {
	cmd := &cli.Command{
		Name:                  "workflows-api",
		Usage:                 "Import, validate and manage ALM workflow definitions",
		EnableShellCompletion: true,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "database-url",
				Usage:   "postgres:// URL, or a directory for file persistence",
				Sources: cli.EnvVars("DATABASE_URL"),
			},
			&cli.StringFlag{
				Name:    "log-level",
				Usage:   "Log level (debug, info, warn, error)",
				Value:   "info",
				Sources: cli.EnvVars("LOG_LEVEL"),
			},
			&cli.StringFlag{
				Name:    "log-format",
				Usage:   "Log format (text, json)",
				Value:   "text",
				Sources: cli.EnvVars("LOG_FORMAT"),
			},
		},
		Before: func(ctx context.Context, command *cli.Command) (context.Context, error) {
			log.Setup(command.String("log-level"), command.String("log-format"))

			return ctx, nil
		},
		Commands: []*cli.Command{
			RunAPICommand(),
			ValidateCommand(),
			SeedCommand(),
			EventsCommand(),
		},
	}

	err := cmd.Run(context.Background(), os.Args)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func RunAPICommand() *cli.Command {
	return &cli.Command{
		Name:    "run",
		Aliases: []string{"r"},
		Usage:   "Start the API server",
		Flags: []cli.Flag{
			&cli.IntFlag{
				Name:    "port",
				Aliases: []string{"p"},
				Usage:   "Port to run the API server on",
				Value:   defaultPort,
				Sources: cli.EnvVars("PORT"),
			},
			&cli.StringFlag{
				Name:    "redis-url",
				Usage:   "Redis URL for caching standard types (optional)",
				Sources: cli.EnvVars("REDIS_URL"),
			},
			&cli.DurationFlag{
				Name:    "catalog-ttl",
				Usage:   "How long cached standard types stay fresh",
				Value:   defaultCatalogTTL,
				Sources: cli.EnvVars("CATALOG_TTL"),
			},
			&cli.StringFlag{
				Name:    "catalog-refresh",
				Usage:   "Cron schedule for rewarming cached standard types, e.g. \"@every 4m\" (requires redis-url)",
				Sources: cli.EnvVars("CATALOG_REFRESH"),
			},
			&cli.StringFlag{
				Name:    "event-bus",
				Usage:   "Event bus type for workflow lifecycle events (gochannel, kafka); empty disables events",
				Sources: cli.EnvVars("EVENT_BUS_TYPE"),
			},
			&cli.StringFlag{
				Name:    "kafka-brokers",
				Usage:   "Comma separated Kafka brokers",
				Sources: cli.EnvVars("KAFKA_BROKERS"),
			},
			&cli.BoolFlag{
				Name:    "otel",
				Usage:   "Export traces over OTLP HTTP",
				Sources: cli.EnvVars("OTEL_ENABLED"),
			},
		},
		Action: func(ctx context.Context, command *cli.Command) error {
			databaseURL, err := requireDatabaseURL(command)
			if err != nil {
				return err
			}

			return runAPI(ctx, Config{
				Port:           command.Int("port"),
				DatabaseURL:    databaseURL,
				RedisURL:       command.String("redis-url"),
				CatalogTTL:     command.Duration("catalog-ttl"),
				CatalogRefresh: command.String("catalog-refresh"),
				EventBus:       command.String("event-bus"),
				KafkaBrokers:   command.String("kafka-brokers"),
				OTelEnabled:    command.Bool("otel"),
			})
		},
	}
}

// requireDatabaseURL enforces database-url for the commands that read or write workflows.
func requireDatabaseURL(command *cli.Command) (string, error) {
	databaseURL := command.String("database-url")
	if databaseURL == "" {
		return "", cli.Exit("database-url (DATABASE_URL) is required for "+command.Name, 1)
	}

	return databaseURL, nil
}
