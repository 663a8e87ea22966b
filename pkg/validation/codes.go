package validation

import "fmt"

// ErrorCode identifies a validation finding. The numeric values and names are a stable
// contract with the import/edit flows.
type ErrorCode int

const (
	WorkflowNameNotUnique ErrorCode = iota + 1

	ProjectByPathNotFound
	ProjectByIDNotFound
	ProjectDuplicate

	StandardArtifactTypeNotFoundByID
	StandardArtifactTypeNotFoundByName

	InstanceGroupNotFoundByID
	InstanceGroupNotFoundByName

	PropertyChangeEventPropertyTypeNotFoundByID
	PropertyChangeEventPropertyTypeNotFoundByName
	PropertyChangeEventPropertyTypeNotAssociated

	EmailNotificationActionPropertyTypeNotFoundByID
	EmailNotificationActionPropertyTypeNotFoundByName
	EmailNotificationActionUnacceptablePropertyType
	EmailNotificationActionPropertyTypeNotAssociated

	PropertyChangeActionPropertyTypeNotFoundByID
	PropertyChangeActionPropertyTypeNotFoundByName
	PropertyChangeActionPropertyTypeNotAssociated
	PropertyChangeActionRequiredPropertyValueEmpty
	PropertyChangeActionValidValuesNotApplicable
	PropertyChangeActionUsersGroupsNotApplicable
	PropertyChangeActionUserPropertyValueNotApplicable

	GenerateChildArtifactsActionArtifactTypeNotFoundByID
	GenerateChildArtifactsActionArtifactTypeNotFoundByName

	InvalidNumberFormat
	InvalidNumberDecimalPlaces
	NumberOutOfRange
	InvalidDateFormat
	DateOutOfRange

	ChoicePropertyMultipleValidValuesNotAllowed
	ChoiceValueSpecifiedAsNotValidated
	ValidValueNotFoundByID
	ValidValueNotFoundByValue

	GroupNotFoundByID
	GroupNotFoundByName
	UserNotFoundByID
	UserNotFoundByName
)

var errorCodeNames = map[ErrorCode]string{
	WorkflowNameNotUnique: "WorkflowNameNotUnique",

	ProjectByPathNotFound: "ProjectByPathNotFound",
	ProjectByIDNotFound:   "ProjectByIdNotFound",
	ProjectDuplicate:      "ProjectDuplicate",

	StandardArtifactTypeNotFoundByID:   "StandardArtifactTypeNotFoundById",
	StandardArtifactTypeNotFoundByName: "StandardArtifactTypeNotFoundByName",

	InstanceGroupNotFoundByID:   "InstanceGroupNotFoundById",
	InstanceGroupNotFoundByName: "InstanceGroupNotFoundByName",

	PropertyChangeEventPropertyTypeNotFoundByID:   "PropertyChangeEventPropertyTypeNotFoundById",
	PropertyChangeEventPropertyTypeNotFoundByName: "PropertyChangeEventPropertyTypeNotFoundByName",
	PropertyChangeEventPropertyTypeNotAssociated:  "PropertyChangeEventPropertyTypeNotAssociated",

	EmailNotificationActionPropertyTypeNotFoundByID:   "EmailNotificationActionPropertyTypeNotFoundById",
	EmailNotificationActionPropertyTypeNotFoundByName: "EmailNotificationActionPropertyTypeNotFoundByName",
	EmailNotificationActionUnacceptablePropertyType:   "EmailNotificationActionUnacceptablePropertyType",
	EmailNotificationActionPropertyTypeNotAssociated:  "EmailNotificationActionPropertyTypeNotAssociated",

	PropertyChangeActionPropertyTypeNotFoundByID:       "PropertyChangeActionPropertyTypeNotFoundById",
	PropertyChangeActionPropertyTypeNotFoundByName:     "PropertyChangeActionPropertyTypeNotFoundByName",
	PropertyChangeActionPropertyTypeNotAssociated:      "PropertyChangeActionPropertyTypeNotAssociated",
	PropertyChangeActionRequiredPropertyValueEmpty:     "PropertyChangeActionRequiredPropertyValueEmpty",
	PropertyChangeActionValidValuesNotApplicable:       "PropertyChangeActionNotChoicePropertyValidValuesNotApplicable",
	PropertyChangeActionUsersGroupsNotApplicable:       "PropertyChangeActionNotUserPropertyUsersGroupsNotApplicable",
	PropertyChangeActionUserPropertyValueNotApplicable: "PropertyChangeActionUserPropertyValueNotApplicable",

	GenerateChildArtifactsActionArtifactTypeNotFoundByID:   "GenerateChildArtifactsActionArtifactTypeNotFoundById",
	GenerateChildArtifactsActionArtifactTypeNotFoundByName: "GenerateChildArtifactsActionArtifactTypeNotFoundByName",

	InvalidNumberFormat:        "InvalidNumberFormat",
	InvalidNumberDecimalPlaces: "InvalidNumberDecimalPlaces",
	NumberOutOfRange:           "NumberOutOfRange",
	InvalidDateFormat:          "InvalidDateFormat",
	DateOutOfRange:             "DateOutOfRange",

	ChoicePropertyMultipleValidValuesNotAllowed: "ChoicePropertyMultipleValidValuesNotAllowed",
	ChoiceValueSpecifiedAsNotValidated:          "ChoiceValueSpecifiedAsNotValidated",
	ValidValueNotFoundByID:                      "ValidValueNotFoundById",
	ValidValueNotFoundByValue:                   "ValidValueNotFoundByValue",

	GroupNotFoundByID:   "GroupNotFoundById",
	GroupNotFoundByName: "GroupNotFoundByName",
	UserNotFoundByID:    "UserNotFoundById",
	UserNotFoundByName:  "UserNotFoundByName",
}

var errorCodeDescriptions = map[ErrorCode]string{
	WorkflowNameNotUnique:                                  "another workflow already uses this name",
	ProjectByPathNotFound:                                  "no project exists at this path",
	ProjectByIDNotFound:                                    "no project exists with this id",
	ProjectDuplicate:                                       "the same project is assigned more than once",
	StandardArtifactTypeNotFoundByID:                       "no standard artifact type exists with this id",
	StandardArtifactTypeNotFoundByName:                     "no standard artifact type exists with this name",
	InstanceGroupNotFoundByID:                              "no instance group exists with this id",
	InstanceGroupNotFoundByName:                            "no instance group exists with this name",
	PropertyChangeEventPropertyTypeNotFoundByID:            "the watched property type id does not exist",
	PropertyChangeEventPropertyTypeNotFoundByName:          "the watched property type name does not exist",
	PropertyChangeEventPropertyTypeNotAssociated:           "the watched property type is not used by the assigned artifact types",
	EmailNotificationActionPropertyTypeNotFoundByID:        "the notification property type id does not exist",
	EmailNotificationActionPropertyTypeNotFoundByName:      "the notification property type name does not exist",
	EmailNotificationActionUnacceptablePropertyType:        "notifications can only target text or user properties",
	EmailNotificationActionPropertyTypeNotAssociated:       "the notification property type is not used by the assigned artifact types",
	PropertyChangeActionPropertyTypeNotFoundByID:           "the changed property type id does not exist",
	PropertyChangeActionPropertyTypeNotFoundByName:         "the changed property type name does not exist",
	PropertyChangeActionPropertyTypeNotAssociated:          "the changed property type is not used by the assigned artifact types",
	PropertyChangeActionRequiredPropertyValueEmpty:         "a value is required for this property",
	PropertyChangeActionValidValuesNotApplicable:           "valid values apply to choice properties only",
	PropertyChangeActionUsersGroupsNotApplicable:           "users and groups apply to user properties only",
	PropertyChangeActionUserPropertyValueNotApplicable:     "user properties take users and groups, not a plain value",
	GenerateChildArtifactsActionArtifactTypeNotFoundByID:   "the child artifact type id does not exist",
	GenerateChildArtifactsActionArtifactTypeNotFoundByName: "the child artifact type name does not exist",
	InvalidNumberFormat:                                    "the value is not a number",
	InvalidNumberDecimalPlaces:                             "the value has more decimal places than allowed",
	NumberOutOfRange:                                       "the value is outside the allowed range",
	InvalidDateFormat:                                      "the value is not a yyyy-MM-dd date",
	DateOutOfRange:                                         "the date is outside the allowed range",
	ChoicePropertyMultipleValidValuesNotAllowed:            "the property allows a single selection only",
	ChoiceValueSpecifiedAsNotValidated:                     "a validated choice property needs valid values, not free text",
	ValidValueNotFoundByID:                                 "no valid value exists with this id",
	ValidValueNotFoundByValue:                              "no valid value exists with this text",
	GroupNotFoundByID:                                      "no group exists with this id",
	GroupNotFoundByName:                                    "no group exists with this name",
	UserNotFoundByID:                                       "no user exists with this id",
	UserNotFoundByName:                                     "no user exists with this name",
}

func (c ErrorCode) String() string {
	if name, ok := errorCodeNames[c]; ok {
		return name
	}

	return fmt.Sprintf("ErrorCode(%d)", int(c))
}

// Description returns a short human-readable explanation of the code.
func (c ErrorCode) Description() string {
	return errorCodeDescriptions[c]
}

func (c ErrorCode) MarshalText() ([]byte, error) {
	return []byte(c.String()), nil
}

func (c *ErrorCode) UnmarshalText(text []byte) error {
	for code, name := range errorCodeNames {
		if name == string(text) {
			*c = code

			return nil
		}
	}

	return fmt.Errorf("unknown error code %q", string(text))
}
