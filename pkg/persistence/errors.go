package persistence

import (
	"errors"
	"fmt"
	"strconv"
)

var (
	ErrWorkflowNotFound = errors.New("workflow not found")

	// ErrWorkflowNameTaken indicates another live workflow already uses the name.
	ErrWorkflowNameTaken = errors.New("workflow name already taken")

	// ErrCatalogNotFound indicates no standard types catalog has been provisioned.
	ErrCatalogNotFound = errors.New("standard types catalog not found")
)

// Operation names the repository call that failed.
type Operation string

const (
	OpFetch  Operation = "fetch"
	OpSave   Operation = "save"
	OpDelete Operation = "delete"
)

// WorkflowError ties a repository failure to the workflow it concerns.
// WorkflowID is zero for a workflow that was never stored.
type WorkflowError struct {
	Op         Operation
	WorkflowID int64
	Name       string
	Err        error
}

func (e *WorkflowError) Error() string {
	subject := "new workflow"
	if e.WorkflowID != 0 {
		subject = "workflow " + strconv.FormatInt(e.WorkflowID, 10)
	}

	if e.Name != "" {
		subject += fmt.Sprintf(" %q", e.Name)
	}

	return fmt.Sprintf("%s %s: %v", e.Op, subject, e.Err)
}

func (e *WorkflowError) Unwrap() error {
	return e.Err
}

func NewWorkflowError(op Operation, workflowID int64, err error) *WorkflowError {
	return &WorkflowError{
		Op:         op,
		WorkflowID: workflowID,
		Err:        err,
	}
}

// NameTaken reports that saving workflowID would duplicate the live workflow name.
func NameTaken(workflowID int64, name string) *WorkflowError {
	return &WorkflowError{
		Op:         OpSave,
		WorkflowID: workflowID,
		Name:       name,
		Err:        ErrWorkflowNameTaken,
	}
}

func IsWorkflowNotFound(err error) bool {
	return errors.Is(err, ErrWorkflowNotFound)
}

func IsWorkflowNameTaken(err error) bool {
	return errors.Is(err, ErrWorkflowNameTaken)
}
