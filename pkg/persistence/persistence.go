// Package persistence provides the storage abstraction for workflows and the system metadata
// that workflow definitions are validated against.
package persistence

import (
	"context"

	"github.com/almflow/workflows/pkg/models"
)

type Persistence interface {
	WorkflowRepository() WorkflowRepository
	ProjectRepository() ProjectRepository
	MetadataRepository() MetadataRepository
	DirectoryRepository() DirectoryRepository

	HealthCheck(ctx context.Context) error
	Close(ctx context.Context) error
}

// WorkflowRepository stores validated workflows. Deleted workflows are kept but are no
// longer live.
type WorkflowRepository interface {
	GetAll(ctx context.Context) ([]*models.StoredWorkflow, error)
	// GetByID returns nil and no error when the workflow does not exist.
	GetByID(ctx context.Context, id int64) (*models.StoredWorkflow, error)
	// Save inserts the workflow when its ID is zero, assigning a new ID, and updates it otherwise.
	Save(ctx context.Context, workflow *models.StoredWorkflow) error
	Delete(ctx context.Context, id int64) error
	ExistingNames(ctx context.Context, names []string, exceptID *int64) ([]string, error)
}

type ProjectRepository interface {
	ResolvePaths(ctx context.Context, paths []string) ([]models.ProjectPath, error)
	ExistingIDs(ctx context.Context, ids []int64) ([]int64, error)
}

type MetadataRepository interface {
	StandardTypes(ctx context.Context) (*models.StandardTypes, error)
}

type DirectoryRepository interface {
	UsersByName(ctx context.Context, names []string) ([]*models.User, error)
	UsersByID(ctx context.Context, ids []int64) ([]*models.User, error)
	GroupsByName(ctx context.Context, names []string, instanceOnly bool) ([]*models.Group, error)
	GroupsByID(ctx context.Context, ids []int64, instanceOnly bool) ([]*models.Group, error)
}
