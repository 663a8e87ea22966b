package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/almflow/workflows/pkg/persistence"
	"github.com/almflow/workflows/pkg/persistence/cache"
	"github.com/almflow/workflows/pkg/persistence/file"
	"github.com/almflow/workflows/pkg/persistence/postgresql"
	"github.com/redis/go-redis/v9"
)

var supportedPersistenceProviders = []string{"file", "postgres", "postgresql"}

// NewPersistence selects PostgreSQL for postgres:// and postgresql:// URLs and a directory of
// JSON documents for anything else.
func NewPersistence(ctx context.Context, logger *slog.Logger, databaseURL string) (persistence.Persistence, error) {
	provider := parsePersistenceProvider(databaseURL)

	switch provider {
	case "postgres", "postgresql":
		p, err := postgresql.NewPersistence(ctx, logger, databaseURL)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize postgresql persistence: %w", err)
		}

		return p, nil
	default:
		return file.NewPersistence(databaseURL), nil
	}
}

// MetadataSourceConfig configures the optional Redis cache in front of the standard types.
type MetadataSourceConfig struct {
	RedisURL string
	TTL      time.Duration
	// RefreshSchedule is a cron expression; empty disables scheduled refreshes.
	RefreshSchedule string
}

// NewMetadataSource puts a Redis cache in front of the standard types when a Redis URL is
// set. The returned close function is never nil.
func NewMetadataSource(
	ctx context.Context,
	logger *slog.Logger,
	p persistence.Persistence,
	config MetadataSourceConfig,
) (persistence.MetadataRepository, func() error, error) {
	if config.RedisURL == "" {
		return p.MetadataRepository(), func() error { return nil }, nil
	}

	client, err := cache.NewClient(ctx, config.RedisURL)
	if err != nil {
		return nil, nil, err
	}

	logger.InfoContext(ctx, "Caching standard types in redis", "ttl", config.TTL)

	metadataCache := cache.NewMetadataCache(client, p.MetadataRepository(), config.TTL, logger)

	if config.RefreshSchedule == "" {
		return metadataCache, closeClient(client), nil
	}

	refresher, err := cache.NewRefresher(metadataCache, config.RefreshSchedule, logger)
	if err == nil {
		err = refresher.Start(ctx)
	}

	if err != nil {
		_ = client.Close()

		return nil, nil, err
	}

	return metadataCache, func() error {
		refresher.Stop(ctx)

		return client.Close()
	}, nil
}

func closeClient(client redis.UniversalClient) func() error {
	return client.Close
}

func parsePersistenceProvider(databaseURL string) string {
	provider, _, found := strings.Cut(databaseURL, "://")
	if !found {
		return "file"
	}

	for _, supported := range supportedPersistenceProviders {
		if provider == supported {
			return provider
		}
	}

	return "file"
}
