package testutil

import "github.com/almflow/workflows/pkg/models"

// Ptr returns a pointer to v.
func Ptr[T any](v T) *T {
	return &v
}

// CreateTestDefinition creates a minimal valid workflow definition bound to the Alpha
// project and its Requirement artifact type, by name only.
func CreateTestDefinition(overrides ...func(*models.ImportWorkflow)) *models.ImportWorkflow {
	definition := &models.ImportWorkflow{
		Name:        "Review Flow",
		Description: "Moves requirements through review",
		States: []*models.ImportState{
			{Name: "New", IsInitial: true},
			{Name: "In Review"},
			{Name: "Done"},
		},
		Projects: []*models.ImportProject{
			{
				Path:          AlphaProjectPath,
				ArtifactTypes: []*models.ImportArtifactType{{Name: "Requirement"}},
			},
		},
	}

	for _, override := range overrides {
		override(definition)
	}

	return definition
}

// WithName sets the workflow name.
func WithName(name string) func(*models.ImportWorkflow) {
	return func(w *models.ImportWorkflow) {
		w.Name = name
	}
}

// WithProjects replaces the projects of the definition.
func WithProjects(projects ...*models.ImportProject) func(*models.ImportWorkflow) {
	return func(w *models.ImportWorkflow) {
		w.Projects = projects
	}
}

// WithTransition adds a New -> Done transition carrying the given actions.
func WithTransition(actions ...models.ImportAction) func(*models.ImportWorkflow) {
	return func(w *models.ImportWorkflow) {
		w.TransitionEvents = append(w.TransitionEvents, &models.ImportTransitionEvent{
			Name:      "Complete",
			FromState: "New",
			ToState:   "Done",
			Triggers:  Triggers(actions...),
		})
	}
}

// WithPermissionGroups adds a transition restricted to the given groups.
func WithPermissionGroups(groups ...*models.ImportGroup) func(*models.ImportWorkflow) {
	return func(w *models.ImportWorkflow) {
		w.TransitionEvents = append(w.TransitionEvents, &models.ImportTransitionEvent{
			Name:             "Approve",
			FromState:        "In Review",
			ToState:          "Done",
			PermissionGroups: groups,
		})
	}
}

// WithPropertyChangeEvent adds an event watching the property with the given name.
func WithPropertyChangeEvent(propertyName string, actions ...models.ImportAction) func(*models.ImportWorkflow) {
	return func(w *models.ImportWorkflow) {
		w.PropertyChangeEvents = append(w.PropertyChangeEvents, &models.ImportPropertyChangeEvent{
			PropertyRef: models.PropertyRef{PropertyName: propertyName},
			Name:        "On " + propertyName,
			Triggers:    Triggers(actions...),
		})
	}
}

// WithNewArtifactEvent adds a new-artifact event carrying the given actions.
func WithNewArtifactEvent(actions ...models.ImportAction) func(*models.ImportWorkflow) {
	return func(w *models.ImportWorkflow) {
		w.NewArtifactEvents = append(w.NewArtifactEvents, &models.ImportNewArtifactEvent{
			Name:     "On create",
			Triggers: Triggers(actions...),
		})
	}
}

func Triggers(actions ...models.ImportAction) []*models.ImportTrigger {
	triggers := make([]*models.ImportTrigger, 0, len(actions))

	for _, action := range actions {
		triggers = append(triggers, &models.ImportTrigger{Action: action})
	}

	return triggers
}

// PropertyChange builds a property-change action referencing a property by name.
func PropertyChange(propertyName, value string) *models.PropertyChangeAction {
	return &models.PropertyChangeAction{
		PropertyRef:   models.PropertyRef{PropertyName: propertyName},
		PropertyValue: value,
	}
}

// ChoiceChange builds a property-change action selecting valid values by text.
func ChoiceChange(propertyName string, values ...string) *models.PropertyChangeAction {
	action := PropertyChange(propertyName, "")

	for _, value := range values {
		action.ValidValues = append(action.ValidValues, &models.ImportValidValue{Value: value})
	}

	return action
}

// UserChange builds a property-change action assigning the given users and groups.
func UserChange(propertyName string, entries ...*models.ImportUserGroup) *models.PropertyChangeAction {
	action := PropertyChange(propertyName, "")
	action.UsersGroups = &models.ImportUsersGroups{UsersGroups: entries}

	return action
}

func UserEntry(name string) *models.ImportUserGroup {
	return &models.ImportUserGroup{Name: name}
}

func GroupEntry(name string) *models.ImportUserGroup {
	return &models.ImportUserGroup{Name: name, IsGroup: true}
}

// ProjectGroupEntry references a group scoped to the project at projectPath.
func ProjectGroupEntry(name, projectPath string) *models.ImportUserGroup {
	return &models.ImportUserGroup{Name: name, IsGroup: true, GroupProjectPath: projectPath}
}

func EmailNotification(propertyName string, emails ...string) *models.EmailNotificationAction {
	return &models.EmailNotificationAction{
		PropertyRef: models.PropertyRef{PropertyName: propertyName},
		Emails:      emails,
		Message:     "Heads up",
	}
}

func GenerateChildren(artifactTypeName string) *models.GenerateChildrenAction {
	return &models.GenerateChildrenAction{
		ArtifactTypeRef: models.ArtifactTypeRef{ArtifactTypeName: artifactTypeName},
		ChildCount:      1,
	}
}
