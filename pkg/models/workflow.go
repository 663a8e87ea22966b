// Package models defines the workflow definition intermediate representation and the
// system metadata it is validated against.
package models

import "time"

// ImportWorkflow is an externally authored workflow definition, already deserialized from
// the import format. Validation writes resolved names and ids back onto it.
type ImportWorkflow struct {
	ID                   *int64                       `json:"id,omitempty"`
	Name                 string                       `json:"name"                             validate:"required,max=24"`
	Description          string                       `json:"description,omitempty"            validate:"max=4000"`
	States               []*ImportState               `json:"states,omitempty"                 validate:"dive"`
	Projects             []*ImportProject             `json:"projects,omitempty"               validate:"dive"`
	TransitionEvents     []*ImportTransitionEvent     `json:"transition_events,omitempty"      validate:"dive"`
	PropertyChangeEvents []*ImportPropertyChangeEvent `json:"property_change_events,omitempty" validate:"dive"`
	NewArtifactEvents    []*ImportNewArtifactEvent    `json:"new_artifact_events,omitempty"    validate:"dive"`
}

// Triggers returns every trigger of every event, in declaration order.
func (w *ImportWorkflow) Triggers() []*ImportTrigger {
	triggers := make([]*ImportTrigger, 0)

	for _, event := range w.TransitionEvents {
		if event != nil {
			triggers = append(triggers, event.Triggers...)
		}
	}

	for _, event := range w.PropertyChangeEvents {
		if event != nil {
			triggers = append(triggers, event.Triggers...)
		}
	}

	for _, event := range w.NewArtifactEvents {
		if event != nil {
			triggers = append(triggers, event.Triggers...)
		}
	}

	return triggers
}

type ImportState struct {
	ID        *int64 `json:"id,omitempty"`
	Name      string `json:"name"                 validate:"required"`
	IsInitial bool   `json:"is_initial,omitempty"`
}

// ImportProject is a project the workflow is assigned to, referenced by id or by path.
type ImportProject struct {
	ID            *int64                `json:"id,omitempty"`
	Path          string                `json:"path,omitempty"`
	ArtifactTypes []*ImportArtifactType `json:"artifact_types,omitempty" validate:"dive"`
}

// Label returns the path when known, otherwise the id as "#id".
func (p *ImportProject) Label() string {
	if p.Path != "" {
		return p.Path
	}

	return formatID(p.ID)
}

// ImportArtifactType references a standard artifact type by id or by name.
//
// When resolved by name in create mode, ID is set to the negated catalog id so that a later
// diff against the stored workflow can tell name-resolved entries from persisted ones.
type ImportArtifactType struct {
	ID   *int64 `json:"id,omitempty"`
	Name string `json:"name,omitempty"`
}

// ResolvedByName reports whether ID holds the negated catalog id of a name-only resolution.
func (a *ImportArtifactType) ResolvedByName() bool {
	return a.ID != nil && *a.ID < 0
}

// CatalogID returns the standard artifact type id regardless of how it was resolved.
func (a *ImportArtifactType) CatalogID() (int64, bool) {
	if a.ID == nil {
		return 0, false
	}

	if *a.ID < 0 {
		return -*a.ID, true
	}

	return *a.ID, true
}

// ImportGroup references an instance-level group.
type ImportGroup struct {
	ID   *int64 `json:"id,omitempty"`
	Name string `json:"name,omitempty"`
}

type ImportTransitionEvent struct {
	ID               *int64           `json:"id,omitempty"`
	Name             string           `json:"name"                        validate:"required"`
	FromState        string           `json:"from_state"                  validate:"required"`
	ToState          string           `json:"to_state"                    validate:"required"`
	PermissionGroups []*ImportGroup   `json:"permission_groups,omitempty"`
	Triggers         []*ImportTrigger `json:"triggers,omitempty"          validate:"dive"`
}

type ImportPropertyChangeEvent struct {
	PropertyRef

	ID       *int64           `json:"id,omitempty"`
	Name     string           `json:"name"               validate:"required"`
	Triggers []*ImportTrigger `json:"triggers,omitempty" validate:"dive"`
}

type ImportNewArtifactEvent struct {
	ID       *int64           `json:"id,omitempty"`
	Name     string           `json:"name"               validate:"required"`
	Triggers []*ImportTrigger `json:"triggers,omitempty" validate:"dive"`
}

// PropertyRef references a property type by id or by name.
type PropertyRef struct {
	PropertyID   *int64 `json:"property_id,omitempty"`
	PropertyName string `json:"property_name,omitempty"`
}

// IsEmpty reports whether the reference carries neither an id nor a name.
func (r *PropertyRef) IsEmpty() bool {
	return r.PropertyID == nil && r.PropertyName == ""
}

// ArtifactTypeRef references an artifact type by id or by name.
type ArtifactTypeRef struct {
	ArtifactTypeID   *int64 `json:"artifact_type_id,omitempty"`
	ArtifactTypeName string `json:"artifact_type,omitempty"`
}

// StoredWorkflow is a validated workflow definition as persisted.
type StoredWorkflow struct {
	ID          int64           `json:"id"`
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Definition  *ImportWorkflow `json:"definition"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
	DeletedAt   *time.Time      `json:"deleted_at,omitempty"`
}
