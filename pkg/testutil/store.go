package testutil

import (
	"context"
	"slices"

	"github.com/almflow/workflows/pkg/models"
)

// Store is an in-memory stand-in for every lookup the validator performs, seeded with the
// test fixtures.
type Store struct {
	Types         *models.StandardTypes
	Projects      []*models.Project
	Users         []*models.User
	Groups        []*models.Group
	WorkflowNames map[int64]string

	// Calls counts lookups by method name.
	Calls map[string]int
}

func NewStore() *Store {
	return &Store{
		Types:         CreateTestStandardTypes(),
		Projects:      CreateTestProjects(),
		Users:         CreateTestUsers(),
		Groups:        CreateTestGroups(),
		WorkflowNames: map[int64]string{},
		Calls:         map[string]int{},
	}
}

func (s *Store) ExistingNames(_ context.Context, names []string, exceptID *int64) ([]string, error) {
	s.Calls["ExistingNames"]++

	existing := make([]string, 0)

	for id, name := range s.WorkflowNames {
		if exceptID != nil && *exceptID == id {
			continue
		}

		if slices.Contains(names, name) && !slices.Contains(existing, name) {
			existing = append(existing, name)
		}
	}

	return existing, nil
}

func (s *Store) ResolvePaths(_ context.Context, paths []string) ([]models.ProjectPath, error) {
	s.Calls["ResolvePaths"]++

	resolved := make([]models.ProjectPath, 0)

	for _, project := range s.Projects {
		if slices.Contains(paths, project.Path) {
			resolved = append(resolved, models.ProjectPath{ID: project.ID, Path: project.Path})
		}
	}

	return resolved, nil
}

func (s *Store) ExistingIDs(_ context.Context, ids []int64) ([]int64, error) {
	s.Calls["ExistingIDs"]++

	existing := make([]int64, 0)

	for _, project := range s.Projects {
		if slices.Contains(ids, project.ID) {
			existing = append(existing, project.ID)
		}
	}

	return existing, nil
}

func (s *Store) StandardTypes(context.Context) (*models.StandardTypes, error) {
	s.Calls["StandardTypes"]++

	return s.Types, nil
}

func (s *Store) UsersByName(_ context.Context, names []string) ([]*models.User, error) {
	s.Calls["UsersByName"]++

	return filter(s.Users, func(u *models.User) bool { return slices.Contains(names, u.Name) }), nil
}

func (s *Store) UsersByID(_ context.Context, ids []int64) ([]*models.User, error) {
	s.Calls["UsersByID"]++

	return filter(s.Users, func(u *models.User) bool { return slices.Contains(ids, u.ID) }), nil
}

func (s *Store) GroupsByName(_ context.Context, names []string, instanceOnly bool) ([]*models.Group, error) {
	s.Calls["GroupsByName"]++

	return filter(s.Groups, func(g *models.Group) bool {
		return slices.Contains(names, g.Name) && (!instanceOnly || g.IsInstanceGroup())
	}), nil
}

func (s *Store) GroupsByID(_ context.Context, ids []int64, instanceOnly bool) ([]*models.Group, error) {
	s.Calls["GroupsByID"]++

	return filter(s.Groups, func(g *models.Group) bool {
		return slices.Contains(ids, g.ID) && (!instanceOnly || g.IsInstanceGroup())
	}), nil
}

func filter[T any](items []T, keep func(T) bool) []T {
	result := make([]T, 0)

	for _, item := range items {
		if keep(item) {
			result = append(result, item)
		}
	}

	return result
}
