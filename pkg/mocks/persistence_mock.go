package mocks

import (
	"context"

	"github.com/almflow/workflows/pkg/models"
	"github.com/almflow/workflows/pkg/persistence"
	"github.com/stretchr/testify/mock"
)

var (
	_ persistence.Persistence         = (*MockPersistence)(nil)
	_ persistence.WorkflowRepository  = (*MockWorkflowRepository)(nil)
	_ persistence.ProjectRepository   = (*MockProjectRepository)(nil)
	_ persistence.MetadataRepository  = (*MockMetadataRepository)(nil)
	_ persistence.DirectoryRepository = (*MockDirectoryRepository)(nil)
)

// MockWorkflowRepository is a mock implementation of persistence.WorkflowRepository interface.
type MockWorkflowRepository struct {
	mock.Mock
}

func (m *MockWorkflowRepository) GetAll(ctx context.Context) ([]*models.StoredWorkflow, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).([]*models.StoredWorkflow), args.Error(1)
}

func (m *MockWorkflowRepository) GetByID(ctx context.Context, id int64) (*models.StoredWorkflow, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).(*models.StoredWorkflow), args.Error(1)
}

func (m *MockWorkflowRepository) Save(ctx context.Context, workflow *models.StoredWorkflow) error {
	args := m.Called(ctx, workflow)

	return args.Error(0)
}

func (m *MockWorkflowRepository) Delete(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)

	return args.Error(0)
}

func (m *MockWorkflowRepository) ExistingNames(ctx context.Context, names []string, exceptID *int64) ([]string, error) {
	args := m.Called(ctx, names, exceptID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).([]string), args.Error(1)
}

// MockProjectRepository is a mock implementation of persistence.ProjectRepository interface.
type MockProjectRepository struct {
	mock.Mock
}

func (m *MockProjectRepository) ResolvePaths(ctx context.Context, paths []string) ([]models.ProjectPath, error) {
	args := m.Called(ctx, paths)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).([]models.ProjectPath), args.Error(1)
}

func (m *MockProjectRepository) ExistingIDs(ctx context.Context, ids []int64) ([]int64, error) {
	args := m.Called(ctx, ids)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).([]int64), args.Error(1)
}

// MockMetadataRepository is a mock implementation of persistence.MetadataRepository interface.
type MockMetadataRepository struct {
	mock.Mock
}

func (m *MockMetadataRepository) StandardTypes(ctx context.Context) (*models.StandardTypes, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).(*models.StandardTypes), args.Error(1)
}

// MockDirectoryRepository is a mock implementation of persistence.DirectoryRepository interface.
type MockDirectoryRepository struct {
	mock.Mock
}

func (m *MockDirectoryRepository) UsersByName(ctx context.Context, names []string) ([]*models.User, error) {
	args := m.Called(ctx, names)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).([]*models.User), args.Error(1)
}

func (m *MockDirectoryRepository) UsersByID(ctx context.Context, ids []int64) ([]*models.User, error) {
	args := m.Called(ctx, ids)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).([]*models.User), args.Error(1)
}

func (m *MockDirectoryRepository) GroupsByName(ctx context.Context, names []string, instanceOnly bool) ([]*models.Group, error) {
	args := m.Called(ctx, names, instanceOnly)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).([]*models.Group), args.Error(1)
}

func (m *MockDirectoryRepository) GroupsByID(ctx context.Context, ids []int64, instanceOnly bool) ([]*models.Group, error) {
	args := m.Called(ctx, ids, instanceOnly)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).([]*models.Group), args.Error(1)
}

// MockPersistence is a mock implementation of persistence.Persistence interface.
type MockPersistence struct {
	mock.Mock

	Workflows *MockWorkflowRepository
	Projects  *MockProjectRepository
	Metadata  *MockMetadataRepository
	Directory *MockDirectoryRepository
}

// NewMockPersistence wires fresh repository mocks into a MockPersistence.
func NewMockPersistence() *MockPersistence {
	return &MockPersistence{
		Workflows: &MockWorkflowRepository{},
		Projects:  &MockProjectRepository{},
		Metadata:  &MockMetadataRepository{},
		Directory: &MockDirectoryRepository{},
	}
}

func (m *MockPersistence) WorkflowRepository() persistence.WorkflowRepository {
	return m.Workflows
}

func (m *MockPersistence) ProjectRepository() persistence.ProjectRepository {
	return m.Projects
}

func (m *MockPersistence) MetadataRepository() persistence.MetadataRepository {
	return m.Metadata
}

func (m *MockPersistence) DirectoryRepository() persistence.DirectoryRepository {
	return m.Directory
}

func (m *MockPersistence) HealthCheck(ctx context.Context) error {
	args := m.Called(ctx)

	return args.Error(0)
}

func (m *MockPersistence) Close(ctx context.Context) error {
	args := m.Called(ctx)

	return args.Error(0)
}
