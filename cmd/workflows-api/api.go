// Package main provides the workflow definition API server.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/almflow/workflows/pkg/cmd"
	"github.com/almflow/workflows/pkg/log"
	"github.com/almflow/workflows/pkg/otelhelper"
	"github.com/almflow/workflows/pkg/services"
	"github.com/almflow/workflows/pkg/web"
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/cors"
	"github.com/gofiber/fiber/v3/middleware/healthcheck"
	"github.com/gofiber/fiber/v3/middleware/logger"
)

// Config holds the settings of the run command.
type Config struct {
	Port           int
	DatabaseURL    string
	RedisURL       string
	CatalogTTL     time.Duration
	CatalogRefresh string
	EventBus       string
	KafkaBrokers   string
	OTelEnabled    bool
}

type API struct {
	logger   *slog.Logger
	workflow *services.Workflow
	validate *validator.Validate
}

func NewAPI(logger *slog.Logger, workflow *services.Workflow) *API {
	return &API{
		logger:   logger,
		workflow: workflow,
		validate: validator.New(validator.WithRequiredStructEnabled()),
	}
}

func (a *API) App() (*fiber.App, error) {
	schema, err := web.NewSchemaChecker()
	if err != nil {
		return nil, err
	}

	handlers := web.NewAPIHandlers(a.workflow, a.validate, schema)

	app := fiber.New()
	app.Use(cors.New())
	app.Use(logger.New(logger.Config{
		DisableColors: true,
	}))

	app.Get(healthcheck.DefaultLivenessEndpoint, healthcheck.NewHealthChecker())
	app.Get(healthcheck.DefaultReadinessEndpoint, healthcheck.NewHealthChecker())

	app.Get("/", func(c fiber.Ctx) error {
		return c.SendString("ALM Workflows API")
	})

	handlers.RegisterRoutes(app)

	return app, nil
}

func (a *API) Start(port int) error {
	app, err := a.App()
	if err != nil {
		return err
	}

	return app.Listen(":" + strconv.Itoa(port))
}

func runAPI(ctx context.Context, config Config) error {
	logger := log.WithModule("api")

	logger.InfoContext(ctx, "Initializing ALM Workflows API")

	persistence, err := cmd.NewPersistence(ctx, logger, config.DatabaseURL)
	if err != nil {
		return err
	}

	defer func() {
		err := persistence.Close(ctx)
		if err != nil {
			logger.ErrorContext(ctx, "Failed to close persistence", "error", err)
		}
	}()

	metadata, closeCache, err := cmd.NewMetadataSource(ctx, logger, persistence, cmd.MetadataSourceConfig{
		RedisURL:        config.RedisURL,
		TTL:             config.CatalogTTL,
		RefreshSchedule: config.CatalogRefresh,
	})
	if err != nil {
		return err
	}

	defer func() {
		err := closeCache()
		if err != nil {
			logger.ErrorContext(ctx, "Failed to close metadata cache", "error", err)
		}
	}()

	options := []services.Option{
		services.WithMetadata(metadata),
		services.WithLogger(logger),
	}

	eventBus, err := cmd.NewEventBus(cmd.EventBusConfig{
		Provider: config.EventBus,
		Brokers:  config.KafkaBrokers,
		Tracing:  config.OTelEnabled,
	}, logger)
	if err != nil {
		return err
	}

	if eventBus != nil {
		defer func() {
			err := eventBus.Close()
			if err != nil {
				logger.ErrorContext(ctx, "Failed to close event bus", "error", err)
			}
		}()

		options = append(options, services.WithPublisher(eventBus))
	}

	if config.OTelEnabled {
		tracer, shutdown, err := otelhelper.NewTracer(ctx, "almflow-workflows-api")
		if err != nil {
			return fmt.Errorf("failed to initialize tracer: %w", err)
		}

		defer func() {
			err := shutdown(ctx)
			if err != nil {
				logger.ErrorContext(ctx, "Failed to shutdown tracer provider", "error", err)
			}
		}()

		options = append(options, services.WithTracer(tracer))
	}

	api := NewAPI(logger, services.NewWorkflow(persistence, options...))

	err = api.Start(config.Port)
	if err != nil {
		logger.ErrorContext(ctx, "Failed to start API server", "error", err)

		return err
	}

	return nil
}
