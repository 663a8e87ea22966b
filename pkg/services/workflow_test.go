package services

import (
	"context"
	"errors"
	"testing"

	"github.com/almflow/workflows/pkg/mocks"
	"github.com/almflow/workflows/pkg/models"
	"github.com/almflow/workflows/pkg/persistence/file"
	"github.com/almflow/workflows/pkg/testutil"
	"github.com/almflow/workflows/pkg/validation"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func newSeededPersistence(t *testing.T) *file.Persistence {
	t.Helper()

	fp := file.NewPersistence(t.TempDir())
	ctx := t.Context()

	require.NoError(t, fp.Metadata().SaveStandardTypes(ctx, testutil.CreateTestStandardTypes()))
	require.NoError(t, fp.Projects().SaveProjects(ctx, testutil.CreateTestProjects()))
	require.NoError(t, fp.Directory().SaveUsers(ctx, testutil.CreateTestUsers()))
	require.NoError(t, fp.Directory().SaveGroups(ctx, testutil.CreateTestGroups()))

	return fp
}

func TestNewWorkflow(t *testing.T) {
	persistence := newSeededPersistence(t)
	service := NewWorkflow(persistence)

	assert.NotNil(t, service)
	assert.Equal(t, persistence, service.persistence)
	assert.Equal(t, persistence.MetadataRepository(), service.metadata)
}

func TestWorkflow_HealthCheck(t *testing.T) {
	service := NewWorkflow(newSeededPersistence(t))

	message, healthy := service.HealthCheck(t.Context())
	assert.True(t, healthy)
	assert.Equal(t, "Persistence layer is healthy", message)
}

func TestWorkflow_Import(t *testing.T) {
	publisher := &mocks.MockEventBus{}
	publisher.On("Publish", mock.Anything, "1", mock.AnythingOfType("events.WorkflowCreated")).Return(nil)

	service := NewWorkflow(newSeededPersistence(t), WithPublisher(publisher))

	definition := testutil.CreateTestDefinition(
		testutil.WithTransition(
			testutil.PropertyChange("Estimate", "12.5"),
			testutil.ChoiceChange("Priority", "High"),
		),
	)

	workflow, err := service.Import(t.Context(), definition)
	require.NoError(t, err)

	assert.Equal(t, int64(1), workflow.ID)
	require.NotNil(t, workflow.Definition.ID)
	assert.Equal(t, int64(1), *workflow.Definition.ID)

	project := workflow.Definition.Projects[0]
	require.NotNil(t, project.ID)
	assert.Equal(t, testutil.AlphaProjectID, *project.ID)
	require.NotNil(t, project.ArtifactTypes[0].ID)
	assert.Equal(t, testutil.RequirementTypeID, *project.ArtifactTypes[0].ID)

	choice := workflow.Definition.TransitionEvents[0].Triggers[1].Action.(*models.PropertyChangeAction)
	require.NotNil(t, choice.ValidValues[0].ID)
	assert.Equal(t, testutil.HighPriorityID, *choice.ValidValues[0].ID)

	publisher.AssertExpectations(t)
}

func TestWorkflow_ImportRejectsFindings(t *testing.T) {
	persistence := newSeededPersistence(t)
	service := NewWorkflow(persistence)

	definition := testutil.CreateTestDefinition(testutil.WithTransition(testutil.PropertyChange("Missing", "x")))

	_, err := service.Import(t.Context(), definition)
	require.Error(t, err)

	failed, ok := AsValidationFailed(err)
	require.True(t, ok)
	assert.Equal(t,
		[]validation.ErrorCode{validation.PropertyChangeActionPropertyTypeNotFoundByName},
		failed.Result.Codes(),
	)

	workflows, err := service.List(t.Context())
	require.NoError(t, err)
	assert.Empty(t, workflows)
}

func TestWorkflow_ImportDuplicateName(t *testing.T) {
	service := NewWorkflow(newSeededPersistence(t))

	_, err := service.Import(t.Context(), testutil.CreateTestDefinition())
	require.NoError(t, err)

	_, err = service.Import(t.Context(), testutil.CreateTestDefinition())

	failed, ok := AsValidationFailed(err)
	require.True(t, ok)
	assert.Equal(t, []validation.ErrorCode{validation.WorkflowNameNotUnique}, failed.Result.Codes())
}

func TestWorkflow_ImportNil(t *testing.T) {
	service := NewWorkflow(newSeededPersistence(t))

	_, err := service.Import(t.Context(), nil)
	assert.True(t, IsValidationError(err))
}

func TestWorkflow_ImportPublishFailureIsNotFatal(t *testing.T) {
	publisher := &mocks.MockEventBus{}
	publisher.On("Publish", mock.Anything, mock.Anything, mock.Anything).Return(errors.New("broker down"))

	service := NewWorkflow(newSeededPersistence(t), WithPublisher(publisher))

	workflow, err := service.Import(t.Context(), testutil.CreateTestDefinition())
	require.NoError(t, err)
	assert.NotZero(t, workflow.ID)
}

func TestWorkflow_UpdateStoredDefinition(t *testing.T) {
	publisher := &mocks.MockEventBus{}
	publisher.On("Publish", mock.Anything, "1", mock.AnythingOfType("events.WorkflowCreated")).Return(nil)
	publisher.On("Publish", mock.Anything, "1", mock.AnythingOfType("events.WorkflowUpdated")).Return(nil)

	service := NewWorkflow(newSeededPersistence(t), WithPublisher(publisher))
	ctx := t.Context()

	created, err := service.Import(ctx, testutil.CreateTestDefinition(
		testutil.WithTransition(testutil.UserChange("Owner", testutil.UserEntry("alice"))),
	))
	require.NoError(t, err)

	stored, err := service.FetchByID(ctx, created.ID)
	require.NoError(t, err)

	stored.Definition.Name = "Renamed Flow"

	updated, err := service.Update(ctx, created.ID, stored.Definition)
	require.NoError(t, err)
	assert.Equal(t, "Renamed Flow", updated.Name)
	assert.Equal(t, created.CreatedAt.Unix(), updated.CreatedAt.Unix())

	publisher.AssertExpectations(t)
}

func TestWorkflow_UpdateMissing(t *testing.T) {
	service := NewWorkflow(newSeededPersistence(t))

	_, err := service.Update(t.Context(), 99, testutil.CreateTestDefinition())
	assert.True(t, IsNotFoundError(err))
}

func TestWorkflow_UpdateReportsStaleIDs(t *testing.T) {
	service := NewWorkflow(newSeededPersistence(t))
	ctx := t.Context()

	created, err := service.Import(ctx, testutil.CreateTestDefinition())
	require.NoError(t, err)

	definition := created.Definition
	definition.Projects[0].ArtifactTypes[0].ID = testutil.Ptr(int64(4040))

	_, err = service.Update(ctx, created.ID, definition)

	failed, ok := AsValidationFailed(err)
	require.True(t, ok)
	assert.Equal(t, []validation.ErrorCode{validation.StandardArtifactTypeNotFoundByID}, failed.Result.Codes())
}

func TestWorkflow_Validate(t *testing.T) {
	service := NewWorkflow(newSeededPersistence(t))

	result, err := service.Validate(t.Context(), testutil.CreateTestDefinition(), validation.ModeCreate)
	require.NoError(t, err)
	assert.False(t, result.HasErrors())

	_, err = service.Validate(t.Context(), testutil.CreateTestDefinition(), validation.Mode("upsert"))
	assert.True(t, IsValidationError(err))
}

func TestWorkflow_Delete(t *testing.T) {
	service := NewWorkflow(newSeededPersistence(t))
	ctx := t.Context()

	created, err := service.Import(ctx, testutil.CreateTestDefinition())
	require.NoError(t, err)

	require.NoError(t, service.Delete(ctx, created.ID))

	_, err = service.FetchByID(ctx, created.ID)
	assert.True(t, IsNotFoundError(err))

	assert.True(t, IsNotFoundError(service.Delete(ctx, created.ID)))

	// The name of a deleted workflow can be reused.
	_, err = service.Import(ctx, testutil.CreateTestDefinition())
	assert.NoError(t, err)
}

func TestWorkflow_ImportCatalogFailure(t *testing.T) {
	persistence := mocks.NewMockPersistence()
	persistence.Metadata.On("StandardTypes", mock.Anything).Return(nil, errors.New("connection refused"))

	service := NewWorkflow(persistence)

	_, err := service.Import(context.Background(), testutil.CreateTestDefinition())
	require.Error(t, err)
	assert.False(t, IsValidationError(err))

	_, ok := AsValidationFailed(err)
	assert.False(t, ok)

	persistence.Workflows.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
}

func TestWorkflow_UsesMetadataOverride(t *testing.T) {
	persistence := newSeededPersistence(t)
	metadata := &mocks.MockMetadataRepository{}
	metadata.On("StandardTypes", mock.Anything).Return(testutil.CreateTestStandardTypes(), nil).Once()

	service := NewWorkflow(persistence, WithMetadata(metadata))

	_, err := service.Validate(t.Context(), testutil.CreateTestDefinition(), validation.ModeCreate)
	require.NoError(t, err)

	metadata.AssertExpectations(t)
}
