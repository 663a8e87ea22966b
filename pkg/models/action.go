package models

import (
	"encoding/json"
	"errors"
	"fmt"
)

type ActionType string

const (
	ActionTypeEmailNotification   ActionType = "email_notification"
	ActionTypePropertyChange      ActionType = "property_change"
	ActionTypeGenerateChildren    ActionType = "generate_children"
	ActionTypeGenerateUserStories ActionType = "generate_user_stories"
	ActionTypeGenerateTestCases   ActionType = "generate_test_cases"
	ActionTypeWebhook             ActionType = "webhook"
)

var ErrUnknownActionType = errors.New("unknown action type")

// ImportAction is the closed set of trigger actions. Implementations live in this package only.
type ImportAction interface {
	Type() ActionType
	Accept(visitor ActionVisitor) error

	importAction()
}

// ActionVisitor has one method per action variant, so a new variant cannot be added
// without every visitor handling it.
type ActionVisitor interface {
	VisitEmailNotification(action *EmailNotificationAction) error
	VisitPropertyChange(action *PropertyChangeAction) error
	VisitGenerateChildren(action *GenerateChildrenAction) error
	VisitGenerateUserStories(action *GenerateUserStoriesAction) error
	VisitGenerateTestCases(action *GenerateTestCasesAction) error
	VisitWebhook(action *WebhookAction) error
}

// EmailNotificationAction sends a notification to explicit addresses and/or to the users
// held in a Text or User property of the artifact.
type EmailNotificationAction struct {
	PropertyRef

	Emails  []string `json:"emails,omitempty" validate:"dive,email"`
	Message string   `json:"message,omitempty"`
}

func (*EmailNotificationAction) Type() ActionType { return ActionTypeEmailNotification }

func (a *EmailNotificationAction) Accept(visitor ActionVisitor) error {
	return visitor.VisitEmailNotification(a)
}

func (*EmailNotificationAction) importAction() {}

// PropertyChangeAction sets a property of the artifact to a new value.
type PropertyChangeAction struct {
	PropertyRef

	PropertyValue string             `json:"property_value,omitempty"`
	ValidValues   []*ImportValidValue `json:"valid_values,omitempty"`
	UsersGroups   *ImportUsersGroups  `json:"users_groups,omitempty"`
}

func (*PropertyChangeAction) Type() ActionType { return ActionTypePropertyChange }

func (a *PropertyChangeAction) Accept(visitor ActionVisitor) error {
	return visitor.VisitPropertyChange(a)
}

func (*PropertyChangeAction) importAction() {}

// HasUsersGroups reports whether any user/group payload was supplied.
func (a *PropertyChangeAction) HasUsersGroups() bool {
	return a.UsersGroups != nil && (len(a.UsersGroups.UsersGroups) > 0 || a.UsersGroups.IncludeCurrentUser)
}

// ImportValidValue selects a choice value by id or by its text.
type ImportValidValue struct {
	ID    *int64 `json:"id,omitempty"`
	Value string `json:"value,omitempty"`
}

type ImportUsersGroups struct {
	UsersGroups        []*ImportUserGroup `json:"users_groups,omitempty"`
	IncludeCurrentUser bool               `json:"include_current_user,omitempty"`
}

// ImportUserGroup references a user, or a group scoped to a project or to the instance.
type ImportUserGroup struct {
	ID               *int64 `json:"id,omitempty"`
	Name             string `json:"name,omitempty"`
	IsGroup          bool   `json:"is_group,omitempty"`
	GroupProjectID   *int64 `json:"group_project_id,omitempty"`
	GroupProjectPath string `json:"group_project_path,omitempty"`
}

type GenerateChildrenAction struct {
	ArtifactTypeRef

	ChildCount int `json:"child_count,omitempty" validate:"min=0,max=10"`
}

func (*GenerateChildrenAction) Type() ActionType { return ActionTypeGenerateChildren }

func (a *GenerateChildrenAction) Accept(visitor ActionVisitor) error {
	return visitor.VisitGenerateChildren(a)
}

func (*GenerateChildrenAction) importAction() {}

type GenerateUserStoriesAction struct{}

func (*GenerateUserStoriesAction) Type() ActionType { return ActionTypeGenerateUserStories }

func (a *GenerateUserStoriesAction) Accept(visitor ActionVisitor) error {
	return visitor.VisitGenerateUserStories(a)
}

func (*GenerateUserStoriesAction) importAction() {}

type GenerateTestCasesAction struct{}

func (*GenerateTestCasesAction) Type() ActionType { return ActionTypeGenerateTestCases }

func (a *GenerateTestCasesAction) Accept(visitor ActionVisitor) error {
	return visitor.VisitGenerateTestCases(a)
}

func (*GenerateTestCasesAction) importAction() {}

type WebhookAction struct {
	ID  *int64 `json:"id,omitempty"`
	URL string `json:"url,omitempty" validate:"omitempty,url"`
}

func (*WebhookAction) Type() ActionType { return ActionTypeWebhook }

func (a *WebhookAction) Accept(visitor ActionVisitor) error {
	return visitor.VisitWebhook(a)
}

func (*WebhookAction) importAction() {}

// NewAction returns an empty action of the given type.
func NewAction(actionType ActionType) (ImportAction, error) {
	switch actionType {
	case ActionTypeEmailNotification:
		return &EmailNotificationAction{}, nil
	case ActionTypePropertyChange:
		return &PropertyChangeAction{}, nil
	case ActionTypeGenerateChildren:
		return &GenerateChildrenAction{}, nil
	case ActionTypeGenerateUserStories:
		return &GenerateUserStoriesAction{}, nil
	case ActionTypeGenerateTestCases:
		return &GenerateTestCasesAction{}, nil
	case ActionTypeWebhook:
		return &WebhookAction{}, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownActionType, actionType)
	}
}

// MarshalAction encodes an action as a JSON object with a "type" discriminator.
func MarshalAction(action ImportAction) ([]byte, error) {
	body, err := json.Marshal(action)
	if err != nil {
		return nil, err
	}

	fields := map[string]json.RawMessage{}

	err = json.Unmarshal(body, &fields)
	if err != nil {
		return nil, err
	}

	fields["type"], err = json.Marshal(action.Type())
	if err != nil {
		return nil, err
	}

	return json.Marshal(fields)
}

// UnmarshalAction decodes an action written by MarshalAction.
func UnmarshalAction(data []byte) (ImportAction, error) {
	var envelope struct {
		Type ActionType `json:"type"`
	}

	err := json.Unmarshal(data, &envelope)
	if err != nil {
		return nil, fmt.Errorf("failed to decode action type: %w", err)
	}

	action, err := NewAction(envelope.Type)
	if err != nil {
		return nil, err
	}

	err = json.Unmarshal(data, action)
	if err != nil {
		return nil, fmt.Errorf("failed to decode %s action: %w", envelope.Type, err)
	}

	return action, nil
}
