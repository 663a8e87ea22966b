// Package cache keeps the standard types catalog in Redis so that validation does not load
// it from the database on every request.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/almflow/workflows/pkg/models"
	"github.com/almflow/workflows/pkg/persistence"
	redis "github.com/redis/go-redis/v9"
)

const catalogKey = "almflow:workflows:standard-types"

var _ persistence.MetadataRepository = (*MetadataCache)(nil)

// MetadataCache is a read-through cache in front of a MetadataRepository. Redis failures
// are logged and fall back to the source.
type MetadataCache struct {
	client redis.UniversalClient
	source persistence.MetadataRepository
	ttl    time.Duration
	logger *slog.Logger
}

// NewClient connects to the Redis server at redisURL, e.g. redis://localhost:6379/0.
func NewClient(ctx context.Context, redisURL string) (redis.UniversalClient, error) {
	options, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("invalid redis url: %w", err)
	}

	client := redis.NewClient(options)

	err = client.Ping(ctx).Err()
	if err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	return client, nil
}

func NewMetadataCache(
	client redis.UniversalClient,
	source persistence.MetadataRepository,
	ttl time.Duration,
	logger *slog.Logger,
) *MetadataCache {
	return &MetadataCache{
		client: client,
		source: source,
		ttl:    ttl,
		logger: logger.With("module", "metadata_cache"),
	}
}

func (c *MetadataCache) StandardTypes(ctx context.Context) (*models.StandardTypes, error) {
	body, err := c.client.Get(ctx, catalogKey).Bytes()

	switch {
	case err == nil:
		var types models.StandardTypes

		err = json.Unmarshal(body, &types)
		if err == nil {
			return &types, nil
		}

		c.logger.WarnContext(ctx, "Discarding unreadable cached catalog", "error", err)
	case errors.Is(err, redis.Nil):
	default:
		c.logger.WarnContext(ctx, "Failed to read cached catalog", "error", err)
	}

	types, err := c.source.StandardTypes(ctx)
	if err != nil {
		return nil, err
	}

	err = c.store(ctx, types)
	if err != nil {
		c.logger.WarnContext(ctx, "Failed to cache catalog", "error", err)
	}

	return types, nil
}

// Refresh reloads the catalog from the source and replaces the cached copy, unlike
// StandardTypes it reports Redis failures.
func (c *MetadataCache) Refresh(ctx context.Context) error {
	types, err := c.source.StandardTypes(ctx)
	if err != nil {
		return err
	}

	return c.store(ctx, types)
}

func (c *MetadataCache) store(ctx context.Context, types *models.StandardTypes) error {
	body, err := json.Marshal(types)
	if err != nil {
		return fmt.Errorf("failed to marshal catalog: %w", err)
	}

	err = c.client.Set(ctx, catalogKey, body, c.ttl).Err()
	if err != nil {
		return fmt.Errorf("failed to cache catalog: %w", err)
	}

	return nil
}

// Invalidate drops the cached catalog so that the next read reloads it.
func (c *MetadataCache) Invalidate(ctx context.Context) error {
	err := c.client.Del(ctx, catalogKey).Err()
	if err != nil {
		return fmt.Errorf("failed to invalidate cached catalog: %w", err)
	}

	return nil
}
