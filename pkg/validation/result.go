package validation

import (
	"slices"

	"github.com/almflow/workflows/pkg/models"
)

// instanceScope is the group scope of instance-level groups; project ids are always positive.
const instanceScope int64 = 0

// Error is a single finding: the offending element of the definition and what is wrong with it.
type Error struct {
	Element any       `json:"-"`
	Code    ErrorCode `json:"code"`
}

type groupKey struct {
	name  string
	scope int64
}

// Result collects the findings of one validation call together with the lookup tables built
// for it. A Result is owned by a single call and must not be shared.
type Result struct {
	errors []Error

	validProjectIDs           map[int64]struct{}
	associatedArtifactTypeIDs map[int64]struct{}

	standardTypes *models.StandardTypes

	artifactTypesByName map[string]*models.ArtifactType
	artifactTypesByID   map[int64]*models.ArtifactType
	propertyTypesByName map[string]*models.PropertyType
	propertyTypesByID   map[int64]*models.PropertyType

	usersByName  map[string]*models.User
	usersByID    map[int64]*models.User
	groupsByName map[groupKey]*models.Group
	groupsByID   map[int64]*models.Group
}

// newResult builds the catalog indices. Artifact types that cannot take part in workflows are
// pruned before anything resolves against them.
func newResult(types *models.StandardTypes) *Result {
	result := &Result{
		validProjectIDs:           make(map[int64]struct{}),
		associatedArtifactTypeIDs: make(map[int64]struct{}),
		artifactTypesByName:       make(map[string]*models.ArtifactType),
		artifactTypesByID:         make(map[int64]*models.ArtifactType),
		propertyTypesByName:       make(map[string]*models.PropertyType),
		propertyTypesByID:         make(map[int64]*models.PropertyType),
		usersByName:               make(map[string]*models.User),
		usersByID:                 make(map[int64]*models.User),
		groupsByName:              make(map[groupKey]*models.Group),
		groupsByID:                make(map[int64]*models.Group),
	}

	regular := make([]*models.ArtifactType, 0, len(types.ArtifactTypes))

	for _, artifactType := range types.ArtifactTypes {
		if artifactType == nil || !artifactType.BaseType.IsRegular() {
			continue
		}

		regular = append(regular, artifactType)
		result.artifactTypesByName[artifactType.Name] = artifactType
		result.artifactTypesByID[artifactType.ID] = artifactType
	}

	for _, propertyType := range types.PropertyTypes {
		if propertyType == nil {
			continue
		}

		result.propertyTypesByName[propertyType.Name] = propertyType
		result.propertyTypesByID[propertyType.ID] = propertyType
	}

	result.standardTypes = &models.StandardTypes{
		ArtifactTypes: regular,
		PropertyTypes: types.PropertyTypes,
	}

	return result
}

func (r *Result) add(element any, code ErrorCode) {
	r.errors = append(r.errors, Error{Element: element, Code: code})
}

// Errors returns the findings in the order they were reported.
func (r *Result) Errors() []Error {
	return slices.Clone(r.errors)
}

func (r *Result) HasErrors() bool {
	return len(r.errors) > 0
}

// Codes returns the error codes in report order.
func (r *Result) Codes() []ErrorCode {
	codes := make([]ErrorCode, 0, len(r.errors))
	for _, err := range r.errors {
		codes = append(codes, err.Code)
	}

	return codes
}

// ValidProjectIDs returns the sorted ids of the definition's projects that exist.
func (r *Result) ValidProjectIDs() []int64 {
	return sortedKeys(r.validProjectIDs)
}

// AssociatedArtifactTypeIDs returns the sorted catalog ids of the artifact types assigned
// to the definition's projects.
func (r *Result) AssociatedArtifactTypeIDs() []int64 {
	return sortedKeys(r.associatedArtifactTypeIDs)
}

// StandardTypes returns the catalog the definition was validated against, restricted to
// regular artifact types.
func (r *Result) StandardTypes() *models.StandardTypes {
	return r.standardTypes
}

func (r *Result) propertyTypeByID(id int64) (*models.PropertyType, bool) {
	if property, ok := models.SyntheticPropertyTypeByID(id); ok {
		return property, true
	}

	property, ok := r.propertyTypesByID[id]

	return property, ok
}

func (r *Result) propertyTypeByName(name string) (*models.PropertyType, bool) {
	if property, ok := models.SyntheticPropertyTypeByName(name); ok {
		return property, true
	}

	property, ok := r.propertyTypesByName[name]

	return property, ok
}

// isAssociated reports whether the property type is available on at least one of the
// definition's artifact types. Synthetic properties are available everywhere.
func (r *Result) isAssociated(property *models.PropertyType) bool {
	if models.IsSyntheticPropertyType(property.ID) {
		return true
	}

	for id := range r.associatedArtifactTypeIDs {
		artifactType, ok := r.artifactTypesByID[id]
		if ok && artifactType.HasPropertyType(property.ID) {
			return true
		}
	}

	return false
}

func (r *Result) addUsers(users []*models.User) {
	for _, user := range users {
		if user == nil {
			continue
		}

		r.usersByName[user.Name] = user
		r.usersByID[user.ID] = user
	}
}

func (r *Result) addGroups(groups []*models.Group) {
	for _, group := range groups {
		if group == nil {
			continue
		}

		r.groupsByName[groupKey{name: group.Name, scope: scopeOf(group.ProjectID)}] = group
		r.groupsByID[group.ID] = group
	}
}

func (r *Result) groupByName(name string, scope int64) (*models.Group, bool) {
	group, ok := r.groupsByName[groupKey{name: name, scope: scope}]

	return group, ok
}

func (r *Result) groupByID(id int64, scope int64) (*models.Group, bool) {
	group, ok := r.groupsByID[id]
	if !ok || scopeOf(group.ProjectID) != scope {
		return nil, false
	}

	return group, true
}

func scopeOf(projectID *int64) int64 {
	if projectID == nil {
		return instanceScope
	}

	return *projectID
}

func sortedKeys(set map[int64]struct{}) []int64 {
	keys := make([]int64, 0, len(set))
	for key := range set {
		keys = append(keys, key)
	}

	slices.Sort(keys)

	return keys
}
