// Package file provides file-based persistence for workflows and the metadata they are
// validated against. Metadata is provisioned as JSON documents under the root directory.
package file

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/almflow/workflows/pkg/persistence"
)

const (
	catalogFile  = "catalog.json"
	projectsFile = "projects.json"
	usersFile    = "users.json"
	groupsFile   = "groups.json"
	workflowsDir = "workflows"
)

var _ persistence.Persistence = (*Persistence)(nil)

// Persistence implements the persistence.Persistence interface using the file system.
type Persistence struct {
	root          string
	workflowRepo  *WorkflowRepository
	projectRepo   *ProjectRepository
	metadataRepo  *MetadataRepository
	directoryRepo *DirectoryRepository
}

// NewPersistence creates a new instance of Persistence with the specified root directory.
func NewPersistence(root string) *Persistence {
	cleanRoot := strings.Replace(root, "file://", "", 1)

	return &Persistence{
		root:          cleanRoot,
		workflowRepo:  NewWorkflowRepository(cleanRoot),
		projectRepo:   NewProjectRepository(cleanRoot),
		metadataRepo:  NewMetadataRepository(cleanRoot),
		directoryRepo: NewDirectoryRepository(cleanRoot),
	}
}

// Close performs any necessary cleanup. For file-based persistence, there is nothing to clean up.
func (fp *Persistence) Close(_ context.Context) error {
	return nil
}

// HealthCheck checks if the file persistence layer is healthy by verifying the root directory exists.
func (fp *Persistence) HealthCheck(_ context.Context) error {
	if _, err := os.Stat(fp.root); os.IsNotExist(err) {
		return os.ErrNotExist
	}

	return nil
}

// readDocument decodes the JSON document name into target. A missing document reports
// false and no error.
func readDocument(root, name string, target any) (bool, error) {
	body, err := os.ReadFile(filepath.Clean(filepath.Join(root, name)))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return false, nil
		}

		return false, fmt.Errorf("failed to read %s: %w", name, err)
	}

	err = json.Unmarshal(body, target)
	if err != nil {
		return false, fmt.Errorf("failed to unmarshal %s: %w", name, err)
	}

	return true, nil
}

func writeDocument(root, name string, value any) error {
	filePath := filepath.Clean(filepath.Join(root, name))

	err := os.MkdirAll(filepath.Dir(filePath), 0750)
	if err != nil {
		return fmt.Errorf("failed to create directory for %s: %w", name, err)
	}

	data, err := json.MarshalIndent(value, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal %s: %w", name, err)
	}

	err = os.WriteFile(filePath, data, 0600)
	if err != nil {
		return fmt.Errorf("failed to write %s: %w", name, err)
	}

	return nil
}

func (fp *Persistence) WorkflowRepository() persistence.WorkflowRepository {
	return fp.workflowRepo
}

func (fp *Persistence) ProjectRepository() persistence.ProjectRepository {
	return fp.projectRepo
}

func (fp *Persistence) MetadataRepository() persistence.MetadataRepository {
	return fp.metadataRepo
}

func (fp *Persistence) DirectoryRepository() persistence.DirectoryRepository {
	return fp.directoryRepo
}

// Projects exposes the concrete repository, which can also provision projects.
func (fp *Persistence) Projects() *ProjectRepository {
	return fp.projectRepo
}

// Metadata exposes the concrete repository, which can also provision the catalog.
func (fp *Persistence) Metadata() *MetadataRepository {
	return fp.metadataRepo
}

// Directory exposes the concrete repository, which can also provision users and groups.
func (fp *Persistence) Directory() *DirectoryRepository {
	return fp.directoryRepo
}
