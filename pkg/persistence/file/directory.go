package file

import (
	"context"
	"slices"

	"github.com/almflow/workflows/pkg/models"
)

// DirectoryRepository reads users from users.json and groups from groups.json.
type DirectoryRepository struct {
	root string
}

func NewDirectoryRepository(root string) *DirectoryRepository {
	return &DirectoryRepository{root: root}
}

func (r *DirectoryRepository) UsersByName(_ context.Context, names []string) ([]*models.User, error) {
	return r.users(func(u *models.User) bool { return slices.Contains(names, u.Name) })
}

func (r *DirectoryRepository) UsersByID(_ context.Context, ids []int64) ([]*models.User, error) {
	return r.users(func(u *models.User) bool { return slices.Contains(ids, u.ID) })
}

func (r *DirectoryRepository) GroupsByName(_ context.Context, names []string, instanceOnly bool) ([]*models.Group, error) {
	return r.groups(func(g *models.Group) bool {
		return slices.Contains(names, g.Name) && (!instanceOnly || g.IsInstanceGroup())
	})
}

func (r *DirectoryRepository) GroupsByID(_ context.Context, ids []int64, instanceOnly bool) ([]*models.Group, error) {
	return r.groups(func(g *models.Group) bool {
		return slices.Contains(ids, g.ID) && (!instanceOnly || g.IsInstanceGroup())
	})
}

// SaveUsers replaces every user.
func (r *DirectoryRepository) SaveUsers(_ context.Context, users []*models.User) error {
	return writeDocument(r.root, usersFile, users)
}

// SaveGroups replaces every group.
func (r *DirectoryRepository) SaveGroups(_ context.Context, groups []*models.Group) error {
	return writeDocument(r.root, groupsFile, groups)
}

func (r *DirectoryRepository) users(keep func(*models.User) bool) ([]*models.User, error) {
	users := make([]*models.User, 0)

	_, err := readDocument(r.root, usersFile, &users)
	if err != nil {
		return nil, err
	}

	return slices.DeleteFunc(users, func(u *models.User) bool { return !keep(u) }), nil
}

func (r *DirectoryRepository) groups(keep func(*models.Group) bool) ([]*models.Group, error) {
	groups := make([]*models.Group, 0)

	_, err := readDocument(r.root, groupsFile, &groups)
	if err != nil {
		return nil, err
	}

	return slices.DeleteFunc(groups, func(g *models.Group) bool { return !keep(g) }), nil
}
