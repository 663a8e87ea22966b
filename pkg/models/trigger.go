package models

import (
	"encoding/json"
	"errors"
	"strconv"
)

var ErrTriggerActionMissing = errors.New("trigger action is required")

// ImportTrigger pairs an optional condition with the action it guards.
type ImportTrigger struct {
	Name      string                `json:"name,omitempty"`
	Condition *ImportStateCondition `json:"condition,omitempty"`
	Action    ImportAction          `json:"action"              validate:"required"`
}

// ImportStateCondition restricts a trigger to artifacts in the named state.
type ImportStateCondition struct {
	State string `json:"state" validate:"required"`
}

type triggerJSON struct {
	Name      string                `json:"name,omitempty"`
	Condition *ImportStateCondition `json:"condition,omitempty"`
	Action    json.RawMessage       `json:"action"`
}

func (t ImportTrigger) MarshalJSON() ([]byte, error) {
	if t.Action == nil {
		return nil, ErrTriggerActionMissing
	}

	action, err := MarshalAction(t.Action)
	if err != nil {
		return nil, err
	}

	return json.Marshal(triggerJSON{
		Name:      t.Name,
		Condition: t.Condition,
		Action:    action,
	})
}

func (t *ImportTrigger) UnmarshalJSON(data []byte) error {
	var raw triggerJSON

	err := json.Unmarshal(data, &raw)
	if err != nil {
		return err
	}

	t.Name = raw.Name
	t.Condition = raw.Condition
	t.Action = nil

	if len(raw.Action) == 0 || string(raw.Action) == "null" {
		return nil
	}

	t.Action, err = UnmarshalAction(raw.Action)

	return err
}

func formatID(id *int64) string {
	if id == nil {
		return ""
	}

	return "#" + strconv.FormatInt(*id, 10)
}
