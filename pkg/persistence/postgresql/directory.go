package postgresql

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/almflow/workflows/pkg/models"
	"github.com/lib/pq"
)

// DirectoryRepository looks up users and groups.
type DirectoryRepository struct {
	db     *sql.DB
	logger *slog.Logger
}

func NewDirectoryRepository(db *sql.DB, logger *slog.Logger) *DirectoryRepository {
	return &DirectoryRepository{db: db, logger: logger}
}

func (r *DirectoryRepository) UsersByName(ctx context.Context, names []string) ([]*models.User, error) {
	if len(names) == 0 {
		return []*models.User{}, nil
	}

	return r.queryUsers(ctx, `SELECT id, name, display_name FROM users WHERE name = ANY($1) ORDER BY id`, pq.Array(names))
}

func (r *DirectoryRepository) UsersByID(ctx context.Context, ids []int64) ([]*models.User, error) {
	if len(ids) == 0 {
		return []*models.User{}, nil
	}

	return r.queryUsers(ctx, `SELECT id, name, display_name FROM users WHERE id = ANY($1) ORDER BY id`, pq.Array(ids))
}

// GroupsByName returns the groups with the given names. With instanceOnly set, project
// groups are left out.
func (r *DirectoryRepository) GroupsByName(ctx context.Context, names []string, instanceOnly bool) ([]*models.Group, error) {
	if len(names) == 0 {
		return []*models.Group{}, nil
	}

	query := `
		SELECT id, name, project_id
		FROM groups
		WHERE name = ANY($1) AND (NOT $2 OR project_id IS NULL)
		ORDER BY id
	`

	return r.queryGroups(ctx, query, pq.Array(names), instanceOnly)
}

func (r *DirectoryRepository) GroupsByID(ctx context.Context, ids []int64, instanceOnly bool) ([]*models.Group, error) {
	if len(ids) == 0 {
		return []*models.Group{}, nil
	}

	query := `
		SELECT id, name, project_id
		FROM groups
		WHERE id = ANY($1) AND (NOT $2 OR project_id IS NULL)
		ORDER BY id
	`

	return r.queryGroups(ctx, query, pq.Array(ids), instanceOnly)
}

// SaveUser inserts or replaces a user.
func (r *DirectoryRepository) SaveUser(ctx context.Context, user *models.User) error {
	query := `
		INSERT INTO users (id, name, display_name)
		VALUES ($1, $2, $3)
		ON CONFLICT (id) DO UPDATE SET
			name = EXCLUDED.name,
			display_name = EXCLUDED.display_name
	`

	_, err := r.db.ExecContext(ctx, query, user.ID, user.Name, user.DisplayName)
	if err != nil {
		return fmt.Errorf("failed to save user %d: %w", user.ID, err)
	}

	return nil
}

// SaveGroup inserts or replaces a group.
func (r *DirectoryRepository) SaveGroup(ctx context.Context, group *models.Group) error {
	query := `
		INSERT INTO groups (id, name, project_id)
		VALUES ($1, $2, $3)
		ON CONFLICT (id) DO UPDATE SET
			name = EXCLUDED.name,
			project_id = EXCLUDED.project_id
	`

	var projectID sql.NullInt64
	if group.ProjectID != nil {
		projectID = sql.NullInt64{Int64: *group.ProjectID, Valid: true}
	}

	_, err := r.db.ExecContext(ctx, query, group.ID, group.Name, projectID)
	if err != nil {
		return fmt.Errorf("failed to save group %d: %w", group.ID, err)
	}

	return nil
}

func (r *DirectoryRepository) queryUsers(ctx context.Context, query string, args ...any) ([]*models.User, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query users: %w", err)
	}

	defer closeRows(ctx, r.logger, rows)

	users := make([]*models.User, 0)

	for rows.Next() {
		var user models.User

		err := rows.Scan(&user.ID, &user.Name, &user.DisplayName)
		if err != nil {
			return nil, fmt.Errorf("failed to scan user: %w", err)
		}

		users = append(users, &user)
	}

	err = rows.Err()
	if err != nil {
		return nil, fmt.Errorf("error iterating users: %w", err)
	}

	return users, nil
}

func (r *DirectoryRepository) queryGroups(ctx context.Context, query string, args ...any) ([]*models.Group, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query groups: %w", err)
	}

	defer closeRows(ctx, r.logger, rows)

	groups := make([]*models.Group, 0)

	for rows.Next() {
		var (
			group     models.Group
			projectID sql.NullInt64
		)

		err := rows.Scan(&group.ID, &group.Name, &projectID)
		if err != nil {
			return nil, fmt.Errorf("failed to scan group: %w", err)
		}

		if projectID.Valid {
			group.ProjectID = &projectID.Int64
		}

		groups = append(groups, &group)
	}

	err = rows.Err()
	if err != nil {
		return nil, fmt.Errorf("error iterating groups: %w", err)
	}

	return groups, nil
}
