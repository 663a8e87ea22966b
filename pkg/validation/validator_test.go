package validation

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/almflow/workflows/pkg/models"
	"github.com/almflow/workflows/pkg/testutil"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestValidator(store *testutil.Store) *Validator {
	return NewValidator(Dependencies{
		WorkflowNames: store,
		Projects:      store,
		Metadata:      store,
		Directory:     store,
	})
}

func validateCreate(t *testing.T, store *testutil.Store, definition *models.ImportWorkflow) *Result {
	t.Helper()

	result, err := newTestValidator(store).ValidateForCreate(t.Context(), definition)
	require.NoError(t, err)

	return result
}

func validateUpdate(t *testing.T, store *testutil.Store, definition *models.ImportWorkflow) *Result {
	t.Helper()

	result, err := newTestValidator(store).ValidateForUpdate(t.Context(), definition, store.Types)
	require.NoError(t, err)

	return result
}

func propertyType(store *testutil.Store, id int64) *models.PropertyType {
	for _, property := range store.Types.PropertyTypes {
		if property.ID == id {
			return property
		}
	}

	return nil
}

func TestValidator_ValidDefinition(t *testing.T) {
	store := testutil.NewStore()
	definition := testutil.CreateTestDefinition(
		testutil.WithTransition(
			testutil.ChoiceChange("Priority", "High"),
			testutil.PropertyChange("Estimate", "12.5"),
			testutil.PropertyChange("Due Date", "2025-06-01"),
			testutil.UserChange("Owner", testutil.UserEntry("alice"), testutil.GroupEntry("Authors")),
			testutil.PropertyChange("Notes", "reviewed"),
			testutil.EmailNotification("Owner"),
			testutil.GenerateChildren("Use Case"),
		),
		testutil.WithPermissionGroups(&models.ImportGroup{Name: "Authors"}),
		testutil.WithPropertyChangeEvent("Priority", &models.GenerateTestCasesAction{}),
		testutil.WithNewArtifactEvent(&models.WebhookAction{URL: "https://hooks.example.com/new"}),
	)

	result := validateCreate(t, store, definition)

	assert.False(t, result.HasErrors(), "unexpected findings: %v", result.Codes())
	assert.Equal(t, []int64{testutil.AlphaProjectID}, result.ValidProjectIDs())
	assert.Equal(t, []int64{testutil.RequirementTypeID}, result.AssociatedArtifactTypeIDs())

	project := definition.Projects[0]
	require.NotNil(t, project.ID)
	assert.Equal(t, testutil.AlphaProjectID, *project.ID)

	artifactType := project.ArtifactTypes[0]
	require.NotNil(t, artifactType.ID)
	assert.Equal(t, -testutil.RequirementTypeID, *artifactType.ID)
	assert.True(t, artifactType.ResolvedByName())

	triggers := definition.TransitionEvents[0].Triggers

	choice := triggers[0].Action.(*models.PropertyChangeAction)
	assert.Equal(t, testutil.PriorityPropertyID, *choice.PropertyID)
	assert.Equal(t, testutil.HighPriorityID, *choice.ValidValues[0].ID)

	owner := triggers[3].Action.(*models.PropertyChangeAction)
	assert.Equal(t, testutil.AliceUserID, *owner.UsersGroups.UsersGroups[0].ID)
	assert.Equal(t, testutil.AuthorsGroupID, *owner.UsersGroups.UsersGroups[1].ID)

	email := triggers[5].Action.(*models.EmailNotificationAction)
	assert.Equal(t, testutil.OwnerPropertyID, *email.PropertyID)

	children := triggers[6].Action.(*models.GenerateChildrenAction)
	assert.Equal(t, testutil.UseCaseTypeID, *children.ArtifactTypeID)

	assert.Equal(t, testutil.AuthorsGroupID, *definition.TransitionEvents[1].PermissionGroups[0].ID)
	assert.Equal(t, testutil.PriorityPropertyID, *definition.PropertyChangeEvents[0].PropertyID)
}

func TestValidator_ArgumentErrors(t *testing.T) {
	validator := newTestValidator(testutil.NewStore())

	_, err := validator.ValidateForCreate(t.Context(), nil)
	require.ErrorIs(t, err, ErrNilDefinition)

	_, err = validator.ValidateForUpdate(t.Context(), nil, testutil.CreateTestStandardTypes())
	require.ErrorIs(t, err, ErrNilDefinition)

	_, err = validator.ValidateForUpdate(t.Context(), testutil.CreateTestDefinition(), nil)
	require.ErrorIs(t, err, ErrNilStandardTypes)

	_, err = validator.Validate(t.Context(), testutil.CreateTestDefinition(), Mode("merge"))
	require.ErrorIs(t, err, ErrUnknownMode)
}

func TestValidator_UnknownPrimitiveTypeAborts(t *testing.T) {
	store := testutil.NewStore()
	propertyType(store, testutil.NotesPropertyID).PrimitiveType = models.PrimitiveType("rich_text")

	_, err := newTestValidator(store).ValidateForCreate(t.Context(),
		testutil.CreateTestDefinition(testutil.WithTransition(testutil.PropertyChange("Notes", "x"))))
	require.ErrorIs(t, err, ErrUnknownPrimitiveType)
}

type failingMetadata struct{}

var errCatalogDown = errors.New("catalog unavailable")

func (failingMetadata) StandardTypes(context.Context) (*models.StandardTypes, error) {
	return nil, errCatalogDown
}

func TestValidator_CollaboratorFailure(t *testing.T) {
	store := testutil.NewStore()
	validator := NewValidator(Dependencies{
		WorkflowNames: store,
		Projects:      store,
		Metadata:      failingMetadata{},
		Directory:     store,
	})

	result, err := validator.ValidateForCreate(t.Context(), testutil.CreateTestDefinition())
	require.ErrorIs(t, err, errCatalogDown)
	assert.Nil(t, result)

	_, err = validator.Validate(t.Context(), testutil.CreateTestDefinition(), ModeUpdate)
	require.ErrorIs(t, err, errCatalogDown)
}

func TestValidator_WorkflowNameUniqueness(t *testing.T) {
	store := testutil.NewStore()
	store.WorkflowNames[7] = "Review Flow"

	result := validateCreate(t, store, testutil.CreateTestDefinition())
	assert.Equal(t, []ErrorCode{WorkflowNameNotUnique}, result.Codes())

	definition := testutil.CreateTestDefinition()
	definition.ID = testutil.Ptr(int64(7))
	definition.Projects[0].ID = testutil.Ptr(testutil.AlphaProjectID)

	result = validateUpdate(t, store, definition)
	assert.Empty(t, result.Codes())

	result = validateCreate(t, store, testutil.CreateTestDefinition(testutil.WithName("Other Flow")))
	assert.Empty(t, result.Codes())
}

func TestValidator_Projects(t *testing.T) {
	requirement := func() []*models.ImportArtifactType {
		return []*models.ImportArtifactType{{Name: "Requirement"}}
	}

	tests := []struct {
		name          string
		projects      []*models.ImportProject
		expected      []ErrorCode
		validProjects []int64
	}{
		{
			name:          "path resolved",
			projects:      []*models.ImportProject{{Path: testutil.AlphaProjectPath, ArtifactTypes: requirement()}},
			validProjects: []int64{testutil.AlphaProjectID},
		},
		{
			name:     "unknown path",
			projects: []*models.ImportProject{{Path: "Blueprint/Gamma"}},
			expected: []ErrorCode{ProjectByPathNotFound},
		},
		{
			name: "unknown id reported once",
			projects: []*models.ImportProject{
				{ID: testutil.Ptr(int64(99))},
				{ID: testutil.Ptr(int64(99))},
			},
			expected: []ErrorCode{ProjectByIDNotFound, ProjectDuplicate},
		},
		{
			name: "duplicate through id and path",
			projects: []*models.ImportProject{
				{ID: testutil.Ptr(testutil.AlphaProjectID), ArtifactTypes: requirement()},
				{Path: testutil.AlphaProjectPath},
				{ID: testutil.Ptr(testutil.AlphaProjectID)},
			},
			expected:      []ErrorCode{ProjectDuplicate},
			validProjects: []int64{testutil.AlphaProjectID},
		},
		{
			name: "id without path",
			projects: []*models.ImportProject{
				{ID: testutil.Ptr(testutil.BetaProjectID), ArtifactTypes: requirement()},
			},
			validProjects: []int64{testutil.BetaProjectID},
		},
		{
			name:     "no projects",
			projects: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := validateCreate(t, testutil.NewStore(), testutil.CreateTestDefinition(testutil.WithProjects(tt.projects...)))

			assert.Equal(t, tt.expected, nilIfEmpty(result.Codes()))
			assert.Equal(t, tt.validProjects, nilIfEmpty(result.ValidProjectIDs()))
		})
	}
}

func TestValidator_ProjectDuplicateOfSeven(t *testing.T) {
	store := testutil.NewStore()
	store.Projects = append(store.Projects, &models.Project{ID: 7, Name: "Seven", Path: "Blueprint/Seven"})

	definition := testutil.CreateTestDefinition(testutil.WithProjects(
		&models.ImportProject{ID: testutil.Ptr(int64(7))},
		&models.ImportProject{ID: testutil.Ptr(int64(7))},
	))

	result := validateCreate(t, store, definition)

	require.Equal(t, []ErrorCode{ProjectDuplicate}, result.Codes())
	assert.Same(t, definition.Projects[1], result.Errors()[0].Element)
	assert.Equal(t, []int64{7}, result.ValidProjectIDs())
}

func TestValidator_NothingAssociatedWithoutProjects(t *testing.T) {
	definition := testutil.CreateTestDefinition(
		testutil.WithProjects(),
		testutil.WithTransition(testutil.ChoiceChange("Priority", "High"), testutil.PropertyChange("Name", "Renamed")),
	)

	result := validateCreate(t, testutil.NewStore(), definition)

	assert.Equal(t, []ErrorCode{PropertyChangeActionPropertyTypeNotAssociated}, result.Codes())
	assert.Empty(t, result.AssociatedArtifactTypeIDs())
}

func TestValidator_ArtifactTypes(t *testing.T) {
	definition := testutil.CreateTestDefinition(testutil.WithProjects(&models.ImportProject{
		Path: testutil.AlphaProjectPath,
		ArtifactTypes: []*models.ImportArtifactType{
			{Name: "Requirement"},
			{Name: "Baseline"},
			{Name: "Epic"},
			{ID: testutil.Ptr(testutil.UseCaseTypeID)},
		},
	}))

	result := validateCreate(t, testutil.NewStore(), definition)

	// Baseline is not a regular artifact type; an id without a name is ignored in create mode.
	assert.Equal(t, []ErrorCode{StandardArtifactTypeNotFoundByName, StandardArtifactTypeNotFoundByName}, result.Codes())
	assert.Equal(t, []int64{testutil.RequirementTypeID}, result.AssociatedArtifactTypeIDs())
	assert.Equal(t, testutil.UseCaseTypeID, *definition.Projects[0].ArtifactTypes[3].ID)
}

func TestValidator_NumberValues(t *testing.T) {
	tests := []struct {
		name     string
		value    string
		places   *int
		min, max *decimal.Decimal
		expected []ErrorCode
	}{
		{name: "within bounds", value: "12.5"},
		{name: "trailing zero counts as a place", value: "12.50"},
		{name: "too many places", value: "12.345", expected: []ErrorCode{InvalidNumberDecimalPlaces}},
		{name: "enough places", value: "12.345", places: testutil.Ptr(3)},
		{name: "thousands separators", value: "1,234.5", expected: []ErrorCode{NumberOutOfRange}},
		{name: "misplaced separator", value: "1,23", expected: []ErrorCode{InvalidNumberFormat}},
		{name: "not a number", value: "twelve", expected: []ErrorCode{InvalidNumberFormat}},
		{name: "sign only", value: "-", expected: []ErrorCode{InvalidNumberFormat}},
		{name: "below minimum", value: "-0.5", expected: []ErrorCode{NumberOutOfRange}},
		{name: "blank is fine when optional", value: "  "},
		{
			name:  "min equals max",
			value: "5",
			min:   testutil.Ptr(decimal.NewFromInt(5)),
			max:   testutil.Ptr(decimal.NewFromInt(5)),
		},
		{
			name:     "min equals max rejects others",
			value:    "5.01",
			min:      testutil.Ptr(decimal.NewFromInt(5)),
			max:      testutil.Ptr(decimal.NewFromInt(5)),
			expected: []ErrorCode{NumberOutOfRange},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := testutil.NewStore()
			estimate := propertyType(store, testutil.EstimatePropertyID)

			if tt.places != nil {
				estimate.DecimalPlaces = tt.places
			}

			if tt.min != nil {
				estimate.MinNumber = tt.min
				estimate.MaxNumber = tt.max
			}

			definition := testutil.CreateTestDefinition(testutil.WithTransition(testutil.PropertyChange("Estimate", tt.value)))

			assert.Equal(t, tt.expected, nilIfEmpty(validateCreate(t, store, definition).Codes()))
		})
	}
}

func TestValidator_NumberValuesNotValidated(t *testing.T) {
	store := testutil.NewStore()
	propertyType(store, testutil.EstimatePropertyID).IsValidated = false

	definition := testutil.CreateTestDefinition(testutil.WithTransition(
		testutil.PropertyChange("Estimate", "12345.6789"),
		testutil.PropertyChange("Estimate", "abc"),
	))

	assert.Equal(t, []ErrorCode{InvalidNumberFormat}, validateCreate(t, store, definition).Codes())
}

func TestValidator_DateValues(t *testing.T) {
	tests := []struct {
		name     string
		value    string
		expected []ErrorCode
	}{
		{name: "absolute date", value: "2025-06-01"},
		{name: "first day of range", value: "2020-01-01"},
		{name: "last day of range", value: "2030-12-31"},
		{name: "relative days", value: "30"},
		{name: "relative days in the past", value: "-7"},
		{name: "surrounding whitespace", value: " 2024-01-01 "},
		{name: "whitespace out of range", value: " 2019-12-31", expected: []ErrorCode{DateOutOfRange}},
		{name: "before range", value: "2019-12-31", expected: []ErrorCode{DateOutOfRange}},
		{name: "after range", value: "2031-01-01", expected: []ErrorCode{DateOutOfRange}},
		{name: "wrong layout", value: "06/01/2025", expected: []ErrorCode{InvalidDateFormat}},
		{name: "not a date", value: "tomorrow", expected: []ErrorCode{InvalidDateFormat}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			definition := testutil.CreateTestDefinition(testutil.WithTransition(testutil.PropertyChange("Due Date", tt.value)))

			assert.Equal(t, tt.expected, nilIfEmpty(validateCreate(t, testutil.NewStore(), definition).Codes()))
		})
	}
}

func TestValidator_RequiredValues(t *testing.T) {
	store := testutil.NewStore()
	propertyType(store, testutil.NotesPropertyID).IsRequired = true
	propertyType(store, testutil.OwnerPropertyID).IsRequired = true
	propertyType(store, testutil.PriorityPropertyID).IsRequired = true

	definition := testutil.CreateTestDefinition(testutil.WithTransition(
		testutil.PropertyChange("Notes", " "),
		testutil.UserChange("Owner"),
		testutil.PropertyChange("Priority", ""),
		testutil.PropertyChange("Name", ""),
		testutil.PropertyChange("Description", ""),
	))

	assert.Equal(t, []ErrorCode{
		PropertyChangeActionRequiredPropertyValueEmpty,
		PropertyChangeActionRequiredPropertyValueEmpty,
		PropertyChangeActionRequiredPropertyValueEmpty,
		PropertyChangeActionRequiredPropertyValueEmpty,
	}, validateCreate(t, store, definition).Codes())
}

func TestValidator_SyntheticProperties(t *testing.T) {
	name := testutil.PropertyChange("Name", "Renamed")
	description := &models.PropertyChangeAction{PropertyRef: models.PropertyRef{PropertyID: testutil.Ptr(models.DescriptionPropertyTypeID)}}

	definition := testutil.CreateTestDefinition(
		testutil.WithTransition(name, testutil.EmailNotification("Name")),
		testutil.WithPropertyChangeEvent("Description"),
	)

	result := validateCreate(t, testutil.NewStore(), definition)

	// Email recipients never come from synthetic properties.
	assert.Equal(t, []ErrorCode{EmailNotificationActionPropertyTypeNotFoundByName}, result.Codes())
	assert.Equal(t, models.NamePropertyTypeID, *name.PropertyID)
	assert.Equal(t, models.DescriptionPropertyTypeID, *definition.PropertyChangeEvents[0].PropertyID)

	update := testutil.CreateTestDefinition(testutil.WithTransition(description))
	update.Projects[0].ID = testutil.Ptr(testutil.AlphaProjectID)

	result = validateUpdate(t, testutil.NewStore(), update)
	assert.Empty(t, result.Codes())
	assert.Equal(t, models.DescriptionPropertyTypeName, description.PropertyName)
}

func TestValidator_ChoiceValues(t *testing.T) {
	tests := []struct {
		name     string
		action   *models.PropertyChangeAction
		expected []ErrorCode
	}{
		{name: "single value", action: testutil.ChoiceChange("Priority", "Low")},
		{name: "multiple allowed", action: testutil.ChoiceChange("Tags", "UI", "Backend")},
		{
			name:     "multiple not allowed",
			action:   testutil.ChoiceChange("Priority", "High", "Low"),
			expected: []ErrorCode{ChoicePropertyMultipleValidValuesNotAllowed},
		},
		{
			name:     "free text on validated choice",
			action:   testutil.PropertyChange("Priority", "High"),
			expected: []ErrorCode{ChoiceValueSpecifiedAsNotValidated},
		},
		{
			name:     "every unknown value is reported",
			action:   testutil.ChoiceChange("Tags", "Mobile", "UI", "Infra"),
			expected: []ErrorCode{ValidValueNotFoundByValue, ValidValueNotFoundByValue},
		},
		{
			name:     "users and groups not applicable",
			action:   testutil.UserChange("Priority", testutil.UserEntry("alice")),
			expected: []ErrorCode{PropertyChangeActionUsersGroupsNotApplicable},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			definition := testutil.CreateTestDefinition(testutil.WithTransition(tt.action))

			assert.Equal(t, tt.expected, nilIfEmpty(validateCreate(t, testutil.NewStore(), definition).Codes()))
		})
	}
}

func TestValidator_ChoiceValuesWriteIDs(t *testing.T) {
	action := testutil.ChoiceChange("Tags", "UI", "Backend")

	result := validateCreate(t, testutil.NewStore(), testutil.CreateTestDefinition(testutil.WithTransition(action)))
	require.Empty(t, result.Codes())

	assert.Equal(t, testutil.UITagID, *action.ValidValues[0].ID)
	assert.Equal(t, testutil.BackendTagID, *action.ValidValues[1].ID)
}

func TestValidator_NotApplicableSuppressesValueRules(t *testing.T) {
	notes := testutil.PropertyChange("Notes", "x")
	notes.ValidValues = []*models.ImportValidValue{{Value: "x"}}

	estimate := testutil.UserChange("Estimate", testutil.UserEntry("nobody"))
	estimate.PropertyValue = "not a number"

	owner := testutil.UserChange("Owner", testutil.UserEntry("nobody"))
	owner.PropertyValue = "alice"

	ownerChoice := testutil.ChoiceChange("Owner", "alice")

	definition := testutil.CreateTestDefinition(testutil.WithTransition(notes, estimate, owner, ownerChoice))

	assert.Equal(t, []ErrorCode{
		PropertyChangeActionValidValuesNotApplicable,
		PropertyChangeActionUsersGroupsNotApplicable,
		PropertyChangeActionUserPropertyValueNotApplicable,
		PropertyChangeActionValidValuesNotApplicable,
	}, validateCreate(t, testutil.NewStore(), definition).Codes())
}

func TestValidator_UsersAndGroups(t *testing.T) {
	alice := testutil.UserEntry("alice")
	reviewers := testutil.ProjectGroupEntry("Reviewers", testutil.AlphaProjectPath)
	unknownProject := testutil.ProjectGroupEntry("Reviewers", "Blueprint/Gamma")
	instanceReviewers := testutil.GroupEntry("Reviewers")
	mallory := testutil.UserEntry("mallory")

	definition := testutil.CreateTestDefinition(
		testutil.WithTransition(testutil.UserChange("Owner", alice, reviewers, unknownProject, instanceReviewers, mallory)),
		testutil.WithPermissionGroups(&models.ImportGroup{Name: "Authors"}, &models.ImportGroup{Name: "Reviewers"}),
	)

	store := testutil.NewStore()
	result := validateCreate(t, store, definition)

	assert.Equal(t, []ErrorCode{
		ProjectByPathNotFound,
		GroupNotFoundByName,
		UserNotFoundByName,
		InstanceGroupNotFoundByName,
	}, result.Codes())

	errs := result.Errors()
	assert.Same(t, unknownProject, errs[0].Element)
	assert.Same(t, instanceReviewers, errs[1].Element)
	assert.Same(t, mallory, errs[2].Element)
	assert.Same(t, definition.TransitionEvents[1].PermissionGroups[1], errs[3].Element)

	assert.Equal(t, testutil.AliceUserID, *alice.ID)
	assert.Equal(t, testutil.ReviewersGroupID, *reviewers.ID)
	assert.Equal(t, testutil.AlphaProjectID, *reviewers.GroupProjectID)
	assert.Nil(t, unknownProject.ID)

	// Lookups are batched per kind.
	assert.Equal(t, 1, store.Calls["UsersByName"])
	assert.Equal(t, 2, store.Calls["GroupsByName"])
	assert.Zero(t, store.Calls["UsersByID"])
}

func TestValidator_EmailNotifications(t *testing.T) {
	tests := []struct {
		name     string
		action   *models.EmailNotificationAction
		expected []ErrorCode
	}{
		{name: "text property", action: testutil.EmailNotification("Notes")},
		{name: "user property", action: testutil.EmailNotification("Owner")},
		{name: "explicit addresses only", action: testutil.EmailNotification("", "qa@example.com")},
		{
			name:     "unknown property",
			action:   testutil.EmailNotification("Watchers"),
			expected: []ErrorCode{EmailNotificationActionPropertyTypeNotFoundByName},
		},
		{
			name:     "number property",
			action:   testutil.EmailNotification("Estimate"),
			expected: []ErrorCode{EmailNotificationActionUnacceptablePropertyType},
		},
		{
			name:     "unassociated property",
			action:   testutil.EmailNotification("Orphan"),
			expected: []ErrorCode{EmailNotificationActionPropertyTypeNotAssociated},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			definition := testutil.CreateTestDefinition(testutil.WithNewArtifactEvent(tt.action))

			assert.Equal(t, tt.expected, nilIfEmpty(validateCreate(t, testutil.NewStore(), definition).Codes()))
		})
	}
}

func TestValidator_PropertyChangeEvents(t *testing.T) {
	definition := testutil.CreateTestDefinition(
		testutil.WithPropertyChangeEvent("Priority"),
		testutil.WithPropertyChangeEvent("Orphan"),
		testutil.WithPropertyChangeEvent("Velocity"),
		testutil.WithPropertyChangeEvent(""),
	)

	assert.Equal(t, []ErrorCode{
		PropertyChangeEventPropertyTypeNotAssociated,
		PropertyChangeEventPropertyTypeNotFoundByName,
		PropertyChangeEventPropertyTypeNotFoundByName,
	}, validateCreate(t, testutil.NewStore(), definition).Codes())
}

func TestValidator_GenerateChildren(t *testing.T) {
	definition := testutil.CreateTestDefinition(testutil.WithTransition(
		testutil.GenerateChildren("Use Case"),
		testutil.GenerateChildren("Baseline"),
		&models.GenerateUserStoriesAction{},
	))

	assert.Equal(t,
		[]ErrorCode{GenerateChildArtifactsActionArtifactTypeNotFoundByName},
		validateCreate(t, testutil.NewStore(), definition).Codes(),
	)
}

func TestValidator_UpdateTrustsIDs(t *testing.T) {
	store := testutil.NewStore()

	priority := &models.PropertyChangeAction{
		PropertyRef: models.PropertyRef{PropertyID: testutil.Ptr(testutil.PriorityPropertyID), PropertyName: "Old name"},
		ValidValues: []*models.ImportValidValue{{ID: testutil.Ptr(testutil.LowPriorityID), Value: "Old value"}},
	}
	owner := testutil.UserChange("Owner", &models.ImportUserGroup{ID: testutil.Ptr(testutil.BobUserID), Name: "robert"})
	children := &models.GenerateChildrenAction{ArtifactTypeRef: models.ArtifactTypeRef{ArtifactTypeID: testutil.Ptr(testutil.UseCaseTypeID)}}

	definition := testutil.CreateTestDefinition(
		testutil.WithProjects(&models.ImportProject{
			ID:            testutil.Ptr(testutil.AlphaProjectID),
			ArtifactTypes: []*models.ImportArtifactType{{ID: testutil.Ptr(testutil.RequirementTypeID), Name: "Req"}},
		}),
		testutil.WithTransition(priority, owner, children),
		testutil.WithPermissionGroups(&models.ImportGroup{ID: testutil.Ptr(testutil.AuthorsGroupID)}),
	)

	result := validateUpdate(t, store, definition)
	require.Empty(t, result.Codes())

	assert.Equal(t, "Requirement", definition.Projects[0].ArtifactTypes[0].Name)
	assert.Equal(t, "Priority", priority.PropertyName)
	assert.Equal(t, "Low", priority.ValidValues[0].Value)
	assert.Equal(t, "bob", owner.UsersGroups.UsersGroups[0].Name)
	assert.Equal(t, "Use Case", children.ArtifactTypeName)
	assert.Equal(t, "Authors", definition.TransitionEvents[1].PermissionGroups[0].Name)

	assert.Equal(t, 1, store.Calls["UsersByID"])
	assert.Equal(t, 1, store.Calls["GroupsByID"])
	assert.Zero(t, store.Calls["ResolvePaths"])
	assert.Zero(t, store.Calls["StandardTypes"])
}

func TestValidator_UpdateStaleIDsFailOnce(t *testing.T) {
	artifactType := &models.ImportArtifactType{ID: testutil.Ptr(int64(99)), Name: "Requirement"}
	property := &models.PropertyChangeAction{
		PropertyRef:   models.PropertyRef{PropertyID: testutil.Ptr(int64(999)), PropertyName: "Notes"},
		PropertyValue: "x",
	}
	group := &models.ImportGroup{ID: testutil.Ptr(int64(999)), Name: "Authors"}
	children := &models.GenerateChildrenAction{
		ArtifactTypeRef: models.ArtifactTypeRef{ArtifactTypeID: testutil.Ptr(int64(99)), ArtifactTypeName: "Use Case"},
	}
	email := &models.EmailNotificationAction{PropertyRef: models.PropertyRef{PropertyID: testutil.Ptr(int64(999)), PropertyName: "Notes"}}

	definition := testutil.CreateTestDefinition(
		testutil.WithProjects(
			&models.ImportProject{ID: testutil.Ptr(testutil.AlphaProjectID), ArtifactTypes: []*models.ImportArtifactType{
				{ID: testutil.Ptr(testutil.RequirementTypeID)},
				artifactType,
			}},
		),
		testutil.WithTransition(property, children, email),
		testutil.WithPermissionGroups(group),
	)

	result := validateUpdate(t, testutil.NewStore(), definition)

	assert.Equal(t, []ErrorCode{
		StandardArtifactTypeNotFoundByID,
		PropertyChangeActionPropertyTypeNotFoundByID,
		GenerateChildArtifactsActionArtifactTypeNotFoundByID,
		EmailNotificationActionPropertyTypeNotFoundByID,
		InstanceGroupNotFoundByID,
	}, result.Codes())

	assert.Empty(t, artifactType.Name)
	assert.Empty(t, property.PropertyName)
	assert.Empty(t, group.Name)
	assert.Empty(t, children.ArtifactTypeName)
	assert.Empty(t, email.PropertyName)
}

func TestValidator_UpdateStaleValueAndUserIDs(t *testing.T) {
	choice := &models.PropertyChangeAction{
		PropertyRef: models.PropertyRef{PropertyName: "Tags"},
		ValidValues: []*models.ImportValidValue{
			{ID: testutil.Ptr(int64(9999)), Value: "UI"},
			{ID: testutil.Ptr(int64(9998)), Value: "Backend"},
		},
	}
	owner := testutil.UserChange("Owner",
		&models.ImportUserGroup{ID: testutil.Ptr(int64(999)), Name: "alice"},
		&models.ImportUserGroup{ID: testutil.Ptr(int64(998)), Name: "Authors", IsGroup: true},
	)

	definition := testutil.CreateTestDefinition(testutil.WithTransition(choice, owner))
	definition.Projects[0].ID = testutil.Ptr(testutil.AlphaProjectID)

	result := validateUpdate(t, testutil.NewStore(), definition)

	// A stale value id ends the check of the action.
	assert.Equal(t, []ErrorCode{ValidValueNotFoundByID, UserNotFoundByID, GroupNotFoundByID}, result.Codes())

	for _, entry := range owner.UsersGroups.UsersGroups {
		assert.Empty(t, entry.Name)
	}
}

func TestValidator_UpdateChecksGroupsWithOnlyAProjectPath(t *testing.T) {
	staleGhosts := &models.ImportUserGroup{
		ID:               testutil.Ptr(int64(9999)),
		Name:             "Ghosts",
		IsGroup:          true,
		GroupProjectPath: "Blueprint/Nowhere",
	}
	namedGhosts := testutil.ProjectGroupEntry("Ghosts", "Blueprint/Nowhere")

	store := testutil.NewStore()
	definition := testutil.CreateTestDefinition(
		testutil.WithProjects(&models.ImportProject{
			ID:            testutil.Ptr(testutil.AlphaProjectID),
			ArtifactTypes: []*models.ImportArtifactType{{ID: testutil.Ptr(testutil.RequirementTypeID)}},
		}),
		testutil.WithTransition(testutil.UserChange("Owner", staleGhosts, namedGhosts)),
	)

	result := validateUpdate(t, store, definition)

	assert.Equal(t, []ErrorCode{GroupNotFoundByID, GroupNotFoundByName}, result.Codes())

	errs := result.Errors()
	assert.Same(t, staleGhosts, errs[0].Element)
	assert.Same(t, namedGhosts, errs[1].Element)
	assert.Empty(t, staleGhosts.Name)
	assert.Zero(t, store.Calls["ResolvePaths"])
}

func TestValidator_EmptyPropertyReference(t *testing.T) {
	change := &models.PropertyChangeAction{PropertyValue: "x"}

	for _, mode := range []Mode{ModeCreate, ModeUpdate} {
		t.Run(string(mode), func(t *testing.T) {
			definition := testutil.CreateTestDefinition(testutil.WithTransition(change))
			definition.Projects[0].ID = testutil.Ptr(testutil.AlphaProjectID)

			result, err := newTestValidator(testutil.NewStore()).Validate(t.Context(), definition, mode)
			require.NoError(t, err)

			assert.Equal(t, []ErrorCode{PropertyChangeActionPropertyTypeNotFoundByName}, result.Codes())
		})
	}
}

func TestValidator_UpdateLeavesPathOnlyProjectsAlone(t *testing.T) {
	store := testutil.NewStore()
	definition := testutil.CreateTestDefinition(
		testutil.WithProjects(&models.ImportProject{Path: "Blueprint/Gamma"}),
		testutil.WithTransition(testutil.UserChange("Owner", testutil.ProjectGroupEntry("Reviewers", "Blueprint/Gamma"))),
	)

	result := validateUpdate(t, store, definition)

	assert.Empty(t, result.ValidProjectIDs())
	assert.Equal(t, []ErrorCode{PropertyChangeActionPropertyTypeNotAssociated}, result.Codes())
	assert.Nil(t, definition.Projects[0].ID)
	assert.Zero(t, store.Calls["ResolvePaths"])
}

func TestValidator_CreateAndUpdateAgreeWithoutIDs(t *testing.T) {
	build := func() *models.ImportWorkflow {
		return testutil.CreateTestDefinition(
			testutil.WithProjects(&models.ImportProject{
				ID:            testutil.Ptr(testutil.AlphaProjectID),
				ArtifactTypes: []*models.ImportArtifactType{{Name: "Requirement"}, {Name: "Epic"}},
			}),
			testutil.WithTransition(
				testutil.PropertyChange("Estimate", "12.345"),
				testutil.ChoiceChange("Priority", "Urgent"),
				testutil.UserChange("Owner", testutil.UserEntry("mallory"), testutil.GroupEntry("Authors")),
				testutil.EmailNotification("Orphan"),
				testutil.GenerateChildren("Baseline"),
			),
			testutil.WithPermissionGroups(&models.ImportGroup{Name: "Nobody"}),
			testutil.WithPropertyChangeEvent("Velocity"),
		)
	}

	create := validateCreate(t, testutil.NewStore(), build())
	update := validateUpdate(t, testutil.NewStore(), build())

	assert.Equal(t, create.Codes(), update.Codes())
	assert.Len(t, create.Codes(), 8)
}

func TestValidator_RevalidationIsIdempotent(t *testing.T) {
	definition := testutil.CreateTestDefinition(
		testutil.WithTransition(
			testutil.ChoiceChange("Tags", "UI", "Mobile"),
			testutil.UserChange("Owner", testutil.UserEntry("bob"), testutil.ProjectGroupEntry("Reviewers", testutil.AlphaProjectPath)),
			testutil.PropertyChange("Estimate", "7"),
		),
		testutil.WithPermissionGroups(&models.ImportGroup{Name: "Authors"}),
	)

	store := testutil.NewStore()
	first := validateCreate(t, store, definition)
	linked := snapshot(t, definition)

	second := validateCreate(t, store, definition)

	assert.Equal(t, first.Codes(), second.Codes())
	assert.JSONEq(t, linked, snapshot(t, definition))
}

func TestValidator_LinkedDefinitionValidatesForUpdate(t *testing.T) {
	definition := testutil.CreateTestDefinition(
		testutil.WithTransition(
			testutil.ChoiceChange("Priority", "High"),
			testutil.UserChange("Owner", testutil.UserEntry("alice"), testutil.ProjectGroupEntry("Reviewers", testutil.AlphaProjectPath)),
			testutil.GenerateChildren("Use Case"),
		),
		testutil.WithPermissionGroups(&models.ImportGroup{Name: "Authors"}),
		testutil.WithPropertyChangeEvent("Estimate"),
	)

	store := testutil.NewStore()
	require.Empty(t, validateCreate(t, store, definition).Codes())

	for _, artifactType := range definition.Projects[0].ArtifactTypes {
		id, _ := artifactType.CatalogID()
		artifactType.ID = &id
	}

	definition.ID = testutil.Ptr(int64(3))
	store.WorkflowNames[3] = definition.Name
	linked := snapshot(t, definition)

	result := validateUpdate(t, store, definition)

	assert.Empty(t, result.Codes())
	assert.JSONEq(t, linked, snapshot(t, definition))
}

func snapshot(t *testing.T, definition *models.ImportWorkflow) string {
	t.Helper()

	data, err := json.Marshal(definition)
	require.NoError(t, err)

	return string(data)
}

func nilIfEmpty[T any](values []T) []T {
	if len(values) == 0 {
		return nil
	}

	return values
}
