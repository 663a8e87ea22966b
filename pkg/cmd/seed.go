package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/almflow/workflows/pkg/config"
	"github.com/almflow/workflows/pkg/persistence"
	"github.com/almflow/workflows/pkg/persistence/cache"
	"github.com/almflow/workflows/pkg/persistence/file"
	"github.com/almflow/workflows/pkg/persistence/postgresql"
)

var ErrUnsupportedSeedTarget = errors.New("persistence does not support seeding")

// ApplySeed writes the seeded catalog, projects, users and groups. File persistence
// replaces each document while PostgreSQL upserts row by row.
func ApplySeed(ctx context.Context, p persistence.Persistence, seed *config.Seed) error {
	switch target := p.(type) {
	case *file.Persistence:
		return seedFiles(ctx, target, seed)
	case *postgresql.Persistence:
		return seedPostgres(ctx, target, seed)
	default:
		return fmt.Errorf("%w: %T", ErrUnsupportedSeedTarget, p)
	}
}

func seedFiles(ctx context.Context, p *file.Persistence, seed *config.Seed) error {
	err := p.Metadata().SaveStandardTypes(ctx, seed.StandardTypes)
	if err != nil {
		return err
	}

	err = p.Projects().SaveProjects(ctx, seed.Projects)
	if err != nil {
		return err
	}

	err = p.Directory().SaveUsers(ctx, seed.Users)
	if err != nil {
		return err
	}

	return p.Directory().SaveGroups(ctx, seed.Groups)
}

func seedPostgres(ctx context.Context, p *postgresql.Persistence, seed *config.Seed) error {
	err := p.Metadata().SaveStandardTypes(ctx, seed.StandardTypes)
	if err != nil {
		return err
	}

	for _, project := range seed.Projects {
		err = p.Projects().Save(ctx, project)
		if err != nil {
			return err
		}
	}

	for _, user := range seed.Users {
		err = p.Directory().SaveUser(ctx, user)
		if err != nil {
			return err
		}
	}

	// groups reference projects
	for _, group := range seed.Groups {
		err = p.Directory().SaveGroup(ctx, group)
		if err != nil {
			return err
		}
	}

	return nil
}

// InvalidateMetadataCache drops the cached standard types so the next read sees the seed.
// It does nothing when redisURL is empty.
func InvalidateMetadataCache(ctx context.Context, logger *slog.Logger, redisURL string) error {
	if redisURL == "" {
		return nil
	}

	client, err := cache.NewClient(ctx, redisURL)
	if err != nil {
		return err
	}

	defer func() {
		err := client.Close()
		if err != nil {
			logger.ErrorContext(ctx, "Failed to close redis client", "error", err)
		}
	}()

	return cache.NewMetadataCache(client, nil, 0, logger).Invalidate(ctx)
}
