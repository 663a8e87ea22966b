package validation

import (
	"context"

	"github.com/almflow/workflows/pkg/models"
)

// WorkflowNames reports names already taken by live workflows.
type WorkflowNames interface {
	// ExistingNames returns the subset of names used by a live workflow other than exceptID.
	ExistingNames(ctx context.Context, names []string, exceptID *int64) ([]string, error)
}

type Projects interface {
	// ResolvePaths returns the projects found for the given paths; unknown paths are omitted.
	ResolvePaths(ctx context.Context, paths []string) ([]models.ProjectPath, error)
	// ExistingIDs returns the subset of ids that belong to live projects.
	ExistingIDs(ctx context.Context, ids []int64) ([]int64, error)
}

type Metadata interface {
	StandardTypes(ctx context.Context) (*models.StandardTypes, error)
}

// Directory looks up users and groups. With instanceOnly set, project groups are excluded.
type Directory interface {
	UsersByName(ctx context.Context, names []string) ([]*models.User, error)
	UsersByID(ctx context.Context, ids []int64) ([]*models.User, error)
	GroupsByName(ctx context.Context, names []string, instanceOnly bool) ([]*models.Group, error)
	GroupsByID(ctx context.Context, ids []int64, instanceOnly bool) ([]*models.Group, error)
}

// Dependencies bundles the collaborators a Validator queries.
type Dependencies struct {
	WorkflowNames WorkflowNames
	Projects      Projects
	Metadata      Metadata
	Directory     Directory
}
