package file

import (
	"context"
	"slices"

	"github.com/almflow/workflows/pkg/models"
	"github.com/almflow/workflows/pkg/persistence"
)

// MetadataRepository reads the catalog from catalog.json.
type MetadataRepository struct {
	root string
}

func NewMetadataRepository(root string) *MetadataRepository {
	return &MetadataRepository{root: root}
}

func (r *MetadataRepository) StandardTypes(_ context.Context) (*models.StandardTypes, error) {
	var types models.StandardTypes

	found, err := readDocument(r.root, catalogFile, &types)
	if err != nil {
		return nil, err
	}

	if !found {
		return nil, persistence.ErrCatalogNotFound
	}

	return &types, nil
}

// SaveStandardTypes replaces the catalog.
func (r *MetadataRepository) SaveStandardTypes(_ context.Context, types *models.StandardTypes) error {
	return writeDocument(r.root, catalogFile, types)
}

// ProjectRepository reads projects from projects.json.
type ProjectRepository struct {
	root string
}

func NewProjectRepository(root string) *ProjectRepository {
	return &ProjectRepository{root: root}
}

func (r *ProjectRepository) ResolvePaths(_ context.Context, paths []string) ([]models.ProjectPath, error) {
	projects, err := r.projects()
	if err != nil {
		return nil, err
	}

	resolved := make([]models.ProjectPath, 0)

	for _, project := range projects {
		if slices.Contains(paths, project.Path) {
			resolved = append(resolved, models.ProjectPath{ID: project.ID, Path: project.Path})
		}
	}

	return resolved, nil
}

func (r *ProjectRepository) ExistingIDs(_ context.Context, ids []int64) ([]int64, error) {
	projects, err := r.projects()
	if err != nil {
		return nil, err
	}

	existing := make([]int64, 0)

	for _, project := range projects {
		if slices.Contains(ids, project.ID) {
			existing = append(existing, project.ID)
		}
	}

	return existing, nil
}

// SaveProjects replaces every project.
func (r *ProjectRepository) SaveProjects(_ context.Context, projects []*models.Project) error {
	return writeDocument(r.root, projectsFile, projects)
}

func (r *ProjectRepository) projects() ([]*models.Project, error) {
	projects := make([]*models.Project, 0)

	_, err := readDocument(r.root, projectsFile, &projects)
	if err != nil {
		return nil, err
	}

	return projects, nil
}
