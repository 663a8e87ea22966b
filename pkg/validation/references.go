package validation

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/almflow/workflows/pkg/models"
)

func (v *Validator) checkNameUniqueness(ctx context.Context, c *checker, definition *models.ImportWorkflow) error {
	if isBlank(definition.Name) {
		return nil
	}

	existing, err := v.deps.WorkflowNames.ExistingNames(ctx, []string{definition.Name}, c.ids.exceptID(definition))
	if err != nil {
		return fmt.Errorf("failed to check workflow name uniqueness: %w", err)
	}

	if len(existing) > 0 {
		c.result.add(definition, WorkflowNameNotUnique)
	}

	return nil
}

// resolveProjects links path-only project references (create mode) and verifies every
// project id. Only ids that exist become valid project ids.
func (v *Validator) resolveProjects(ctx context.Context, c *checker, definition *models.ImportWorkflow) error {
	projects := slices.DeleteFunc(slices.Clone(definition.Projects), func(p *models.ImportProject) bool {
		return p == nil
	})
	if len(projects) == 0 {
		return nil
	}

	if c.ids.resolvesProjectPaths() {
		err := v.resolveProjectPaths(ctx, c, projects)
		if err != nil {
			return err
		}
	}

	candidates := make([]int64, 0, len(projects))

	for _, project := range projects {
		if project.ID != nil {
			candidates = append(candidates, *project.ID)
		}
	}

	if len(candidates) == 0 {
		return nil
	}

	existing, err := v.deps.Projects.ExistingIDs(ctx, distinct(candidates))
	if err != nil {
		return fmt.Errorf("failed to verify project ids: %w", err)
	}

	found := make(map[int64]struct{}, len(existing))
	for _, id := range existing {
		found[id] = struct{}{}
	}

	missing := make(map[int64]struct{})
	occurrences := make(map[int64]int, len(candidates))

	var duplicate *models.ImportProject

	for _, project := range projects {
		if project.ID == nil {
			continue
		}

		id := *project.ID

		occurrences[id]++
		if occurrences[id] == 2 && duplicate == nil {
			duplicate = project
		}

		if _, ok := found[id]; ok {
			c.result.validProjectIDs[id] = struct{}{}

			continue
		}

		if _, reported := missing[id]; !reported {
			missing[id] = struct{}{}
			c.result.add(project, ProjectByIDNotFound)
		}
	}

	if duplicate != nil {
		c.result.add(duplicate, ProjectDuplicate)
	}

	return nil
}

func (v *Validator) resolveProjectPaths(ctx context.Context, c *checker, projects []*models.ImportProject) error {
	pathOnly := make([]*models.ImportProject, 0)

	for _, project := range projects {
		if project.ID == nil && project.Path != "" {
			pathOnly = append(pathOnly, project)
		}
	}

	if len(pathOnly) == 0 {
		return nil
	}

	paths := make([]string, 0, len(pathOnly))
	for _, project := range pathOnly {
		paths = append(paths, project.Path)
	}

	resolved, err := v.lookupProjectPaths(ctx, paths)
	if err != nil {
		return err
	}

	for _, project := range pathOnly {
		id, ok := resolved[project.Path]
		if !ok {
			c.result.add(project, ProjectByPathNotFound)

			continue
		}

		project.ID = ptr(id)
	}

	return nil
}

// resolveGroupProjectPaths links the project of project-scoped group references that only
// carry a project path.
func (v *Validator) resolveGroupProjectPaths(ctx context.Context, c *checker, definition *models.ImportWorkflow) error {
	entries := make([]*models.ImportUserGroup, 0)

	for _, entry := range userGroupEntries(definition) {
		if entry.IsGroup && entry.GroupProjectID == nil && entry.GroupProjectPath != "" {
			entries = append(entries, entry)
		}
	}

	if len(entries) == 0 {
		return nil
	}

	paths := make([]string, 0, len(entries))
	for _, entry := range entries {
		paths = append(paths, entry.GroupProjectPath)
	}

	resolved, err := v.lookupProjectPaths(ctx, paths)
	if err != nil {
		return err
	}

	for _, entry := range entries {
		id, ok := resolved[entry.GroupProjectPath]
		if !ok {
			c.result.add(entry, ProjectByPathNotFound)
			c.unlinkedGroupProjects[entry] = struct{}{}

			continue
		}

		entry.GroupProjectID = ptr(id)
	}

	return nil
}

func (v *Validator) lookupProjectPaths(ctx context.Context, paths []string) (map[string]int64, error) {
	found, err := v.deps.Projects.ResolvePaths(ctx, distinct(paths))
	if err != nil {
		return nil, fmt.Errorf("failed to resolve project paths: %w", err)
	}

	resolved := make(map[string]int64, len(found))
	for _, project := range found {
		resolved[project.Path] = project.ID
	}

	return resolved, nil
}

// associateArtifactTypes links the artifact types of every project against the catalog and
// records the ones found as associated. Nothing is associated without a valid project.
func (c *checker) associateArtifactTypes(definition *models.ImportWorkflow) {
	if len(definition.Projects) == 0 || len(c.result.validProjectIDs) == 0 {
		return
	}

	for _, project := range definition.Projects {
		if project == nil {
			continue
		}

		for _, ref := range project.ArtifactTypes {
			if ref == nil {
				continue
			}

			c.associateArtifactType(ref)
		}
	}
}

func (c *checker) associateArtifactType(ref *models.ImportArtifactType) {
	trusted := c.ids.trusts(ref.ID)

	if trusted {
		artifactType, ok := c.result.artifactTypesByID[*ref.ID]
		if !ok {
			c.result.add(ref, StandardArtifactTypeNotFoundByID)
			ref.Name = ""

			return
		}

		ref.Name = artifactType.Name
	}

	if ref.Name == "" {
		return
	}

	artifactType, ok := c.result.artifactTypesByName[ref.Name]
	if !ok {
		c.result.add(ref, StandardArtifactTypeNotFoundByName)

		return
	}

	if !trusted {
		ref.ID = ptr(c.ids.artifactTypeID(artifactType.ID))
	}

	c.result.associatedArtifactTypeIDs[artifactType.ID] = struct{}{}
}

// userGroupEntries returns the user/group references of every property-change action.
func userGroupEntries(definition *models.ImportWorkflow) []*models.ImportUserGroup {
	entries := make([]*models.ImportUserGroup, 0)

	for _, trigger := range definition.Triggers() {
		if trigger == nil {
			continue
		}

		action, ok := trigger.Action.(*models.PropertyChangeAction)
		if !ok || action.UsersGroups == nil {
			continue
		}

		for _, entry := range action.UsersGroups.UsersGroups {
			if entry != nil {
				entries = append(entries, entry)
			}
		}
	}

	return entries
}

func permissionGroups(definition *models.ImportWorkflow) []*models.ImportGroup {
	groups := make([]*models.ImportGroup, 0)

	for _, event := range definition.TransitionEvents {
		if event == nil {
			continue
		}

		for _, group := range event.PermissionGroups {
			if group != nil {
				groups = append(groups, group)
			}
		}
	}

	return groups
}

func distinct[T int64 | string](values []T) []T {
	result := slices.Clone(values)
	slices.Sort(result)

	return slices.Compact(result)
}

func nonBlank(names []string) []string {
	return slices.DeleteFunc(names, func(name string) bool {
		return strings.TrimSpace(name) == ""
	})
}
