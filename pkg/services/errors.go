package services

import (
	"errors"
	"fmt"

	"github.com/almflow/workflows/pkg/persistence"
	"github.com/almflow/workflows/pkg/validation"
)

// Client errors. Each maps to one HTTP status in pkg/web.
var (
	ErrWorkflowNil = errors.New("workflow cannot be nil")
	ErrInvalidMode = errors.New("invalid validation mode")

	ErrWorkflowNotFound = persistence.ErrWorkflowNotFound

	// ErrWorkflowNameConflict is returned when another live workflow took the name after
	// validation ran.
	ErrWorkflowNameConflict = persistence.ErrWorkflowNameTaken
)

// ServiceError classifies a failure of Op by one of the sentinels above while keeping the
// underlying cause for the message.
type ServiceError struct {
	Op    string
	Kind  error
	Cause error
}

func (e *ServiceError) Error() string {
	if e.Cause == nil {
		return fmt.Sprintf("%s: %v", e.Op, e.Kind)
	}

	return fmt.Sprintf("%s: %v", e.Op, e.Cause)
}

func (e *ServiceError) Unwrap() []error {
	return []error{e.Kind, e.Cause}
}

func classify(op string, kind, cause error) *ServiceError {
	return &ServiceError{Op: op, Kind: kind, Cause: cause}
}

// ValidationFailedError blocks persistence of a definition with findings.
type ValidationFailedError struct {
	Result *validation.Result
}

func (e *ValidationFailedError) Error() string {
	return fmt.Sprintf("workflow definition has %d validation errors", len(e.Result.Errors()))
}

// AsValidationFailed extracts the findings of a rejected definition.
func AsValidationFailed(err error) (*ValidationFailedError, bool) {
	var failed *ValidationFailedError
	if errors.As(err, &failed) {
		return failed, true
	}

	return nil, false
}

// IsValidationError reports a malformed request (400).
func IsValidationError(err error) bool {
	return errors.Is(err, ErrWorkflowNil) || errors.Is(err, ErrInvalidMode)
}

func IsNotFoundError(err error) bool {
	return errors.Is(err, ErrWorkflowNotFound)
}

// IsConflictError reports a lost race on the workflow name (409).
func IsConflictError(err error) bool {
	return errors.Is(err, ErrWorkflowNameConflict)
}
