// Package events defines the notifications published when stored workflows change.
package events

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

type EventType string

// Topic carries every workflow lifecycle event.
const Topic = "almflow.workflows"

// Message metadata keys.
const (
	EventMetadataKey     = "key"
	EventTypeMetadataKey = "event_type"
)

const (
	WorkflowCreatedEvent EventType = "workflow.created"
	WorkflowUpdatedEvent EventType = "workflow.updated"
	WorkflowDeletedEvent EventType = "workflow.deleted"
)

var ErrUnknownEventType = errors.New("unknown event type")

type BaseEvent struct {
	ID         string         `json:"id"`
	Type       EventType      `json:"type"`
	Timestamp  time.Time      `json:"timestamp"`
	WorkflowID int64          `json:"workflow_id"`
	Metadata   map[string]any `json:"metadata,omitempty"`
}

// WorkflowCreated is published after an imported workflow has been validated and stored.
type WorkflowCreated struct {
	BaseEvent

	Name         string  `json:"name"`
	ProjectIDs   []int64 `json:"project_ids,omitempty"`
	TriggerCount int     `json:"trigger_count"`
}

func (w WorkflowCreated) GetType() EventType {
	return WorkflowCreatedEvent
}

type WorkflowUpdated struct {
	BaseEvent

	Name         string  `json:"name"`
	ProjectIDs   []int64 `json:"project_ids,omitempty"`
	TriggerCount int     `json:"trigger_count"`
}

func (w WorkflowUpdated) GetType() EventType {
	return WorkflowUpdatedEvent
}

type WorkflowDeleted struct {
	BaseEvent
}

func (w WorkflowDeleted) GetType() EventType {
	return WorkflowDeletedEvent
}

// Decode returns a pointer to the event struct registered for eventType.
func Decode(eventType EventType, payload []byte) (any, error) {
	var event any

	switch eventType {
	case WorkflowCreatedEvent:
		event = &WorkflowCreated{}
	case WorkflowUpdatedEvent:
		event = &WorkflowUpdated{}
	case WorkflowDeletedEvent:
		event = &WorkflowDeleted{}
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownEventType, eventType)
	}

	err := json.Unmarshal(payload, event)
	if err != nil {
		return nil, fmt.Errorf("failed to decode %s event: %w", eventType, err)
	}

	return event, nil
}
