// Package postgresql provides the PostgreSQL persistence implementation for workflows and
// the metadata they are validated against.
package postgresql

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/almflow/workflows/pkg/persistence"
	"github.com/almflow/workflows/pkg/persistence/sqlbase"
	_ "github.com/lib/pq"
)

var _ persistence.Persistence = (*Persistence)(nil)

// Persistence implements the persistence layer for PostgreSQL.
type Persistence struct {
	db            *sql.DB
	logger        *slog.Logger
	migrations    *sqlbase.MigrationManager
	workflowRepo  *WorkflowRepository
	projectRepo   *ProjectRepository
	metadataRepo  *MetadataRepository
	directoryRepo *DirectoryRepository
}

// NewPersistence creates a new PostgreSQL persistence layer and migrates the schema.
func NewPersistence(ctx context.Context, logger *slog.Logger, databaseURL string) (*Persistence, error) {
	database, err := sql.Open("postgres", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to PostgreSQL database: %w", err)
	}

	err = database.PingContext(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	migrationManager := sqlbase.NewMigrationManager(logger, database, migrations())

	postgres := &Persistence{
		db:            database,
		logger:        logger,
		migrations:    migrationManager,
		workflowRepo:  NewWorkflowRepository(database, logger),
		projectRepo:   NewProjectRepository(database, logger),
		metadataRepo:  NewMetadataRepository(database, logger),
		directoryRepo: NewDirectoryRepository(database, logger),
	}

	err = migrationManager.RunMigrations(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return postgres, nil
}

func (p *Persistence) WorkflowRepository() persistence.WorkflowRepository {
	return p.workflowRepo
}

func (p *Persistence) ProjectRepository() persistence.ProjectRepository {
	return p.projectRepo
}

func (p *Persistence) MetadataRepository() persistence.MetadataRepository {
	return p.metadataRepo
}

func (p *Persistence) DirectoryRepository() persistence.DirectoryRepository {
	return p.directoryRepo
}

// Projects exposes the concrete repository, which can also provision projects.
func (p *Persistence) Projects() *ProjectRepository {
	return p.projectRepo
}

// Metadata exposes the concrete repository, which can also provision the catalog.
func (p *Persistence) Metadata() *MetadataRepository {
	return p.metadataRepo
}

// Directory exposes the concrete repository, which can also provision users and groups.
func (p *Persistence) Directory() *DirectoryRepository {
	return p.directoryRepo
}

// Close closes the database connection.
func (p *Persistence) Close(ctx context.Context) error {
	if p.db != nil {
		err := p.db.Close()
		if err != nil {
			return fmt.Errorf("failed to close database connection: %w", err)
		}
	}

	return nil
}

// HealthCheck verifies the database is reachable and its schema fully migrated.
func (p *Persistence) HealthCheck(ctx context.Context) error {
	err := p.db.PingContext(ctx)
	if err != nil {
		return fmt.Errorf("failed to ping database: %w", err)
	}

	return p.migrations.Verify(ctx)
}

func closeRows(ctx context.Context, logger *slog.Logger, rows *sql.Rows) {
	err := rows.Close()
	if err != nil {
		logger.ErrorContext(ctx, "failed to close rows", "error", err)
	}
}

func rollback(ctx context.Context, logger *slog.Logger, tx *sql.Tx) {
	err := tx.Rollback()
	if err != nil && !errors.Is(err, sql.ErrTxDone) {
		logger.ErrorContext(ctx, "failed to roll back transaction", "error", err)
	}
}
