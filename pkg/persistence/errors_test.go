package persistence_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/almflow/workflows/pkg/persistence"
	"github.com/stretchr/testify/assert"
)

func TestWorkflowError(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		err     error
		message string
		target  error
	}{
		{
			name:    "missing stored workflow",
			err:     persistence.NewWorkflowError(persistence.OpDelete, 123, persistence.ErrWorkflowNotFound),
			message: "delete workflow 123: workflow not found",
			target:  persistence.ErrWorkflowNotFound,
		},
		{
			name:    "name collision on create",
			err:     persistence.NameTaken(0, "Review Flow"),
			message: `save new workflow "Review Flow": workflow name already taken`,
			target:  persistence.ErrWorkflowNameTaken,
		},
		{
			name:    "name collision on update",
			err:     persistence.NameTaken(7, "Review Flow"),
			message: `save workflow 7 "Review Flow": workflow name already taken`,
			target:  persistence.ErrWorkflowNameTaken,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			assert.EqualError(t, tt.err, tt.message)
			assert.ErrorIs(t, fmt.Errorf("wrapped: %w", tt.err), tt.target)
		})
	}
}

func TestErrorPredicates(t *testing.T) {
	t.Parallel()

	notFound := fmt.Errorf("get: %w", persistence.NewWorkflowError(persistence.OpFetch, 1, persistence.ErrWorkflowNotFound))
	taken := fmt.Errorf("save: %w", persistence.NameTaken(7, "Review Flow"))

	assert.True(t, persistence.IsWorkflowNotFound(notFound))
	assert.False(t, persistence.IsWorkflowNotFound(taken))
	assert.True(t, persistence.IsWorkflowNameTaken(taken))
	assert.False(t, persistence.IsWorkflowNameTaken(persistence.ErrCatalogNotFound))

	var workflowErr *persistence.WorkflowError
	assert.True(t, errors.As(taken, &workflowErr))
	assert.Equal(t, "Review Flow", workflowErr.Name)
}
