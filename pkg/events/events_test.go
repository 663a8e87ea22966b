package events

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecode(t *testing.T) {
	created := WorkflowCreated{
		BaseEvent: BaseEvent{
			ID:         "evt-1",
			Type:       WorkflowCreatedEvent,
			Timestamp:  time.Date(2026, time.March, 2, 9, 30, 0, 0, time.UTC),
			WorkflowID: 42,
		},
		Name:         "Review Flow",
		ProjectIDs:   []int64{1, 2},
		TriggerCount: 3,
	}

	payload, err := json.Marshal(created)
	require.NoError(t, err)

	event, err := Decode(WorkflowCreatedEvent, payload)
	require.NoError(t, err)
	assert.Equal(t, &created, event)
}

func TestDecode_Deleted(t *testing.T) {
	event, err := Decode(WorkflowDeletedEvent, []byte(`{"id":"evt-2","type":"workflow.deleted","workflow_id":7}`))
	require.NoError(t, err)

	deleted, ok := event.(*WorkflowDeleted)
	require.True(t, ok)
	assert.Equal(t, int64(7), deleted.WorkflowID)
}

func TestDecode_Errors(t *testing.T) {
	_, err := Decode("workflow.archived", []byte(`{}`))
	require.ErrorIs(t, err, ErrUnknownEventType)

	_, err = Decode(WorkflowUpdatedEvent, []byte(`{"name":`))
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrUnknownEventType)
}

func TestEventTypes(t *testing.T) {
	assert.Equal(t, WorkflowCreatedEvent, WorkflowCreated{}.GetType())
	assert.Equal(t, WorkflowUpdatedEvent, WorkflowUpdated{}.GetType())
	assert.Equal(t, WorkflowDeletedEvent, WorkflowDeleted{}.GetType())
}
