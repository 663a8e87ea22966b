package file

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path"
	"slices"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/almflow/workflows/pkg/models"
	"github.com/almflow/workflows/pkg/persistence"
)

// WorkflowRepository stores one JSON document per workflow under workflows/.
type WorkflowRepository struct {
	root string
	mu   sync.Mutex
}

// NewWorkflowRepository creates a new workflow repository.
func NewWorkflowRepository(root string) *WorkflowRepository {
	return &WorkflowRepository{root: root}
}

// GetAll returns every live workflow, newest first.
func (wr *WorkflowRepository) GetAll(_ context.Context) ([]*models.StoredWorkflow, error) {
	all, err := wr.loadAll()
	if err != nil {
		return nil, err
	}

	live := slices.DeleteFunc(all, func(w *models.StoredWorkflow) bool {
		return w.DeletedAt != nil
	})

	sort.Slice(live, func(i, j int) bool {
		if live[i].CreatedAt.Equal(live[j].CreatedAt) {
			return live[i].ID > live[j].ID
		}

		return live[i].CreatedAt.After(live[j].CreatedAt)
	})

	return live, nil
}

// GetByID retrieves a live workflow by its ID from the file system.
func (wr *WorkflowRepository) GetByID(_ context.Context, id int64) (*models.StoredWorkflow, error) {
	workflow, err := wr.load(id)
	if err != nil || workflow == nil || workflow.DeletedAt != nil {
		return nil, err
	}

	return workflow, nil
}

// Save saves a workflow to the file system, allocating the next id for new workflows.
func (wr *WorkflowRepository) Save(_ context.Context, workflow *models.StoredWorkflow) error {
	wr.mu.Lock()
	defer wr.mu.Unlock()

	all, err := wr.loadAll()
	if err != nil {
		return err
	}

	var nextID int64

	for _, existing := range all {
		nextID = max(nextID, existing.ID)

		if existing.DeletedAt == nil && existing.ID != workflow.ID && existing.Name == workflow.Name {
			return persistence.NameTaken(workflow.ID, workflow.Name)
		}
	}

	if workflow.ID != 0 {
		current, err := wr.load(workflow.ID)
		if err != nil {
			return err
		}

		if current == nil || current.DeletedAt != nil {
			return persistence.NewWorkflowError(persistence.OpSave, workflow.ID, persistence.ErrWorkflowNotFound)
		}
	} else {
		workflow.ID = nextID + 1
	}

	now := time.Now().UTC()
	if workflow.CreatedAt.IsZero() {
		workflow.CreatedAt = now
	}

	workflow.UpdatedAt = now

	return wr.write(workflow)
}

// Delete marks a workflow deleted. The document is kept.
func (wr *WorkflowRepository) Delete(_ context.Context, id int64) error {
	wr.mu.Lock()
	defer wr.mu.Unlock()

	workflow, err := wr.load(id)
	if err != nil {
		return err
	}

	if workflow == nil || workflow.DeletedAt != nil {
		return persistence.NewWorkflowError(persistence.OpDelete, id, persistence.ErrWorkflowNotFound)
	}

	now := time.Now().UTC()
	workflow.DeletedAt = &now

	return wr.write(workflow)
}

// ExistingNames returns which of the names are used by live workflows other than exceptID.
func (wr *WorkflowRepository) ExistingNames(_ context.Context, names []string, exceptID *int64) ([]string, error) {
	all, err := wr.loadAll()
	if err != nil {
		return nil, err
	}

	existing := make([]string, 0)

	for _, workflow := range all {
		if workflow.DeletedAt != nil || (exceptID != nil && workflow.ID == *exceptID) {
			continue
		}

		if slices.Contains(names, workflow.Name) && !slices.Contains(existing, workflow.Name) {
			existing = append(existing, workflow.Name)
		}
	}

	slices.Sort(existing)

	return existing, nil
}

func (wr *WorkflowRepository) loadAll() ([]*models.StoredWorkflow, error) {
	jsonFiles, err := fs.Glob(os.DirFS(path.Join(wr.root, workflowsDir)), "*.json")
	if err != nil {
		return nil, fmt.Errorf("failed to list workflow files: %w", err)
	}

	workflows := make([]*models.StoredWorkflow, 0, len(jsonFiles))

	for _, file := range jsonFiles {
		id, err := strconv.ParseInt(strings.TrimSuffix(file, ".json"), 10, 64)
		if err != nil {
			continue
		}

		workflow, err := wr.load(id)
		if err != nil {
			return nil, fmt.Errorf("failed to load workflow %d: %w", id, err)
		}

		if workflow != nil {
			workflows = append(workflows, workflow)
		}
	}

	return workflows, nil
}

func (wr *WorkflowRepository) load(id int64) (*models.StoredWorkflow, error) {
	var workflow models.StoredWorkflow

	found, err := readDocument(wr.root, documentName(id), &workflow)
	if err != nil || !found {
		return nil, err
	}

	return &workflow, nil
}

func (wr *WorkflowRepository) write(workflow *models.StoredWorkflow) error {
	return writeDocument(wr.root, documentName(workflow.ID), workflow)
}

func documentName(id int64) string {
	return path.Join(workflowsDir, strconv.FormatInt(id, 10)+".json")
}
