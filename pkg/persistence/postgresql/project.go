package postgresql

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/almflow/workflows/pkg/models"
	"github.com/lib/pq"
)

// ProjectRepository resolves and verifies project references.
type ProjectRepository struct {
	db     *sql.DB
	logger *slog.Logger
}

func NewProjectRepository(db *sql.DB, logger *slog.Logger) *ProjectRepository {
	return &ProjectRepository{db: db, logger: logger}
}

// ResolvePaths returns the projects found for the given paths. Unknown paths are omitted.
func (r *ProjectRepository) ResolvePaths(ctx context.Context, paths []string) ([]models.ProjectPath, error) {
	if len(paths) == 0 {
		return []models.ProjectPath{}, nil
	}

	rows, err := r.db.QueryContext(ctx, `SELECT id, path FROM projects WHERE path = ANY($1) ORDER BY id`, pq.Array(paths))
	if err != nil {
		return nil, fmt.Errorf("failed to query project paths: %w", err)
	}

	defer closeRows(ctx, r.logger, rows)

	resolved := make([]models.ProjectPath, 0, len(paths))

	for rows.Next() {
		var project models.ProjectPath

		err := rows.Scan(&project.ID, &project.Path)
		if err != nil {
			return nil, fmt.Errorf("failed to scan project path: %w", err)
		}

		resolved = append(resolved, project)
	}

	err = rows.Err()
	if err != nil {
		return nil, fmt.Errorf("error iterating project paths: %w", err)
	}

	return resolved, nil
}

// ExistingIDs returns the subset of ids that identify existing projects.
func (r *ProjectRepository) ExistingIDs(ctx context.Context, ids []int64) ([]int64, error) {
	if len(ids) == 0 {
		return []int64{}, nil
	}

	rows, err := r.db.QueryContext(ctx, `SELECT id FROM projects WHERE id = ANY($1) ORDER BY id`, pq.Array(ids))
	if err != nil {
		return nil, fmt.Errorf("failed to query project ids: %w", err)
	}

	defer closeRows(ctx, r.logger, rows)

	existing := make([]int64, 0, len(ids))

	for rows.Next() {
		var id int64

		err := rows.Scan(&id)
		if err != nil {
			return nil, fmt.Errorf("failed to scan project id: %w", err)
		}

		existing = append(existing, id)
	}

	err = rows.Err()
	if err != nil {
		return nil, fmt.Errorf("error iterating project ids: %w", err)
	}

	return existing, nil
}

// Save inserts or replaces a project.
func (r *ProjectRepository) Save(ctx context.Context, project *models.Project) error {
	query := `
		INSERT INTO projects (id, name, path)
		VALUES ($1, $2, $3)
		ON CONFLICT (id) DO UPDATE SET
			name = EXCLUDED.name,
			path = EXCLUDED.path
	`

	_, err := r.db.ExecContext(ctx, query, project.ID, project.Name, project.Path)
	if err != nil {
		return fmt.Errorf("failed to save project %d: %w", project.ID, err)
	}

	return nil
}
