// Package sqlbase holds the schema versioning shared by the SQL backed stores.
package sqlbase

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"slices"
)

// ErrSchemaBehind is returned when the database has not applied every known migration.
var ErrSchemaBehind = errors.New("database schema is behind")

// SchemaStatus reports the applied and known schema versions.
type SchemaStatus struct {
	Applied int
	Latest  int
}

// UpToDate reports whether every known migration has been applied.
func (s SchemaStatus) UpToDate() bool {
	return s.Applied >= s.Latest
}

// MigrationManager applies numbered SQL migrations and tracks them in schema_migrations.
type MigrationManager struct {
	db         *sql.DB
	logger     *slog.Logger
	migrations map[int]string
}

func NewMigrationManager(logger *slog.Logger, db *sql.DB, migrations map[int]string) *MigrationManager {
	return &MigrationManager{
		db:         db,
		logger:     logger,
		migrations: migrations,
	}
}

// RunMigrations brings the schema up to the latest version, one transaction per migration.
func (m *MigrationManager) RunMigrations(ctx context.Context) error {
	_, err := m.db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version INTEGER PRIMARY KEY,
			applied_at TIMESTAMP WITH TIME ZONE DEFAULT NOW()
		);
	`)
	if err != nil {
		return fmt.Errorf("failed to create schema_migrations table: %w", err)
	}

	status, err := m.Status(ctx)
	if err != nil {
		return err
	}

	pending := m.Pending(status.Applied)
	if len(pending) == 0 {
		m.logger.DebugContext(ctx, "Workflow schema is up to date", "version", status.Applied)

		return nil
	}

	m.logger.InfoContext(ctx, "Migrating workflow schema",
		"from_version", status.Applied,
		"to_version", status.Latest,
		"pending", len(pending))

	for _, version := range pending {
		err := m.apply(ctx, version)
		if err != nil {
			return err
		}
	}

	return nil
}

// Status reads the applied version from the database.
func (m *MigrationManager) Status(ctx context.Context) (SchemaStatus, error) {
	status := SchemaStatus{Latest: m.latestVersion()}

	err := m.db.QueryRowContext(ctx, "SELECT COALESCE(MAX(version), 0) FROM schema_migrations").Scan(&status.Applied)
	if err != nil {
		return status, fmt.Errorf("failed to query schema version: %w", err)
	}

	return status, nil
}

// Verify fails with ErrSchemaBehind when migrations are still pending.
func (m *MigrationManager) Verify(ctx context.Context) error {
	status, err := m.Status(ctx)
	if err != nil {
		return err
	}

	if !status.UpToDate() {
		return fmt.Errorf("%w: applied %d, latest %d", ErrSchemaBehind, status.Applied, status.Latest)
	}

	return nil
}

// Versions returns the known migration versions in ascending order.
func (m *MigrationManager) Versions() []int {
	versions := make([]int, 0, len(m.migrations))
	for version := range m.migrations {
		versions = append(versions, version)
	}

	slices.Sort(versions)

	return versions
}

// Pending returns the versions above applied, in the order they must run.
func (m *MigrationManager) Pending(applied int) []int {
	return slices.DeleteFunc(m.Versions(), func(version int) bool {
		return version <= applied
	})
}

func (m *MigrationManager) latestVersion() int {
	versions := m.Versions()
	if len(versions) == 0 {
		return 0
	}

	return versions[len(versions)-1]
}

func (m *MigrationManager) apply(ctx context.Context, version int) error {
	tx, err := m.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin migration %d: %w", version, err)
	}

	defer func() {
		err := tx.Rollback()
		if err != nil && !errors.Is(err, sql.ErrTxDone) {
			m.logger.ErrorContext(ctx, "Failed to roll back migration", "version", version, "error", err)
		}
	}()

	_, err = tx.ExecContext(ctx, m.migrations[version])
	if err != nil {
		return fmt.Errorf("failed to execute migration %d: %w", version, err)
	}

	_, err = tx.ExecContext(ctx, "INSERT INTO schema_migrations (version) VALUES ($1)", version)
	if err != nil {
		return fmt.Errorf("failed to record migration %d: %w", version, err)
	}

	err = tx.Commit()
	if err != nil {
		return fmt.Errorf("failed to commit migration %d: %w", version, err)
	}

	m.logger.InfoContext(ctx, "Applied workflow schema migration", "version", version)

	return nil
}
