package postgresql

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/almflow/workflows/pkg/models"
	"github.com/almflow/workflows/pkg/persistence"
	"github.com/lib/pq"
)

const uniqueViolation = "23505"

// WorkflowRepository handles workflow-related database operations.
type WorkflowRepository struct {
	db     *sql.DB
	logger *slog.Logger
}

// NewWorkflowRepository creates a new workflow repository.
func NewWorkflowRepository(db *sql.DB, logger *slog.Logger) *WorkflowRepository {
	return &WorkflowRepository{db: db, logger: logger}
}

// GetAll returns all live workflows, newest first.
func (r *WorkflowRepository) GetAll(ctx context.Context) ([]*models.StoredWorkflow, error) {
	query := `
		SELECT
			id
		  , name
		  , description
		  , definition
		  , created_at
		  , updated_at
		  , deleted_at
		FROM workflows
		WHERE deleted_at IS NULL
		ORDER BY created_at DESC, id DESC
	`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query workflows: %w", err)
	}

	defer closeRows(ctx, r.logger, rows)

	workflows := make([]*models.StoredWorkflow, 0)

	for rows.Next() {
		workflow, err := scanWorkflow(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan workflow: %w", err)
		}

		workflows = append(workflows, workflow)
	}

	err = rows.Err()
	if err != nil {
		return nil, fmt.Errorf("error iterating workflows: %w", err)
	}

	return workflows, nil
}

func (r *WorkflowRepository) GetByID(ctx context.Context, id int64) (*models.StoredWorkflow, error) {
	query := `
		SELECT
			id
		  , name
		  , description
		  , definition
		  , created_at
		  , updated_at
		  , deleted_at
		FROM workflows
		WHERE id = $1 AND deleted_at IS NULL
	`

	workflow, err := scanWorkflow(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}

		return nil, fmt.Errorf("failed to scan workflow: %w", err)
	}

	return workflow, nil
}

// Save inserts the workflow when it has no id yet and updates it otherwise.
func (r *WorkflowRepository) Save(ctx context.Context, workflow *models.StoredWorkflow) error {
	now := time.Now().UTC()

	if workflow.CreatedAt.IsZero() {
		workflow.CreatedAt = now
	}

	workflow.UpdatedAt = now

	definitionJSON, err := json.Marshal(workflow.Definition)
	if err != nil {
		return fmt.Errorf("failed to marshal definition: %w", err)
	}

	if workflow.ID == 0 {
		query := `
			INSERT INTO workflows (name, description, definition, created_at, updated_at, deleted_at)
			VALUES ($1, $2, $3, $4, $5, $6)
			RETURNING id
		`

		err = r.db.QueryRowContext(ctx, query,
			workflow.Name,
			workflow.Description,
			definitionJSON,
			workflow.CreatedAt,
			workflow.UpdatedAt,
			workflow.DeletedAt,
		).Scan(&workflow.ID)
		if err != nil {
			return saveError(workflow, err)
		}

		return nil
	}

	query := `
		UPDATE workflows SET
			name = $2,
			description = $3,
			definition = $4,
			updated_at = $5
		WHERE id = $1 AND deleted_at IS NULL
	`

	result, err := r.db.ExecContext(ctx, query,
		workflow.ID,
		workflow.Name,
		workflow.Description,
		definitionJSON,
		workflow.UpdatedAt,
	)
	if err != nil {
		return saveError(workflow, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return persistence.NewWorkflowError(persistence.OpSave, workflow.ID, persistence.ErrWorkflowNotFound)
	}

	return nil
}

// Delete soft deletes a workflow by setting deleted_at timestamp.
func (r *WorkflowRepository) Delete(ctx context.Context, id int64) error {
	query := `UPDATE workflows SET deleted_at = NOW() WHERE id = $1 AND deleted_at IS NULL`

	result, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("failed to delete workflow: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return persistence.NewWorkflowError(persistence.OpDelete, id, persistence.ErrWorkflowNotFound)
	}

	return nil
}

// ExistingNames returns which of the names are used by live workflows other than exceptID.
func (r *WorkflowRepository) ExistingNames(ctx context.Context, names []string, exceptID *int64) ([]string, error) {
	if len(names) == 0 {
		return []string{}, nil
	}

	query := `
		SELECT DISTINCT name
		FROM workflows
		WHERE name = ANY($1)
		  AND deleted_at IS NULL
		  AND ($2::BIGINT IS NULL OR id <> $2)
		ORDER BY name
	`

	var except sql.NullInt64
	if exceptID != nil {
		except = sql.NullInt64{Int64: *exceptID, Valid: true}
	}

	rows, err := r.db.QueryContext(ctx, query, pq.Array(names), except)
	if err != nil {
		return nil, fmt.Errorf("failed to query workflow names: %w", err)
	}

	defer closeRows(ctx, r.logger, rows)

	existing := make([]string, 0)

	for rows.Next() {
		var name string

		err := rows.Scan(&name)
		if err != nil {
			return nil, fmt.Errorf("failed to scan workflow name: %w", err)
		}

		existing = append(existing, name)
	}

	err = rows.Err()
	if err != nil {
		return nil, fmt.Errorf("error iterating workflow names: %w", err)
	}

	return existing, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanWorkflow(row scanner) (*models.StoredWorkflow, error) {
	var (
		workflow       models.StoredWorkflow
		definitionJSON []byte
		deletedAt      sql.NullTime
	)

	err := row.Scan(
		&workflow.ID,
		&workflow.Name,
		&workflow.Description,
		&definitionJSON,
		&workflow.CreatedAt,
		&workflow.UpdatedAt,
		&deletedAt,
	)
	if err != nil {
		return nil, err
	}

	if deletedAt.Valid {
		workflow.DeletedAt = &deletedAt.Time
	}

	if definitionJSON != nil {
		workflow.Definition = &models.ImportWorkflow{}

		err = json.Unmarshal(definitionJSON, workflow.Definition)
		if err != nil {
			return nil, fmt.Errorf("failed to unmarshal definition: %w", err)
		}
	}

	return &workflow, nil
}

func saveError(workflow *models.StoredWorkflow, err error) error {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
		return persistence.NameTaken(workflow.ID, workflow.Name)
	}

	return fmt.Errorf("failed to save workflow: %w", err)
}
