package web

import (
	"errors"
	"fmt"
	"strings"

	"github.com/xeipuuv/gojsonschema"
)

var ErrDefinitionShape = errors.New("definition does not match the import schema")

// definitionSchema checks the shape of an import body before it is decoded. Each trigger
// action must name one of the known action types.
const definitionSchema = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "type": "object",
  "required": ["name"],
  "definitions": {
    "id": {"type": ["integer", "null"]},
    "trigger": {
      "type": "object",
      "required": ["action"],
      "properties": {
        "name": {"type": "string"},
        "condition": {
          "type": "object",
          "required": ["state"],
          "properties": {"state": {"type": "string"}}
        },
        "action": {
          "type": "object",
          "required": ["type"],
          "properties": {
            "type": {
              "enum": [
                "email_notification",
                "property_change",
                "generate_children",
                "generate_user_stories",
                "generate_test_cases",
                "webhook"
              ]
            }
          }
        }
      }
    },
    "triggers": {"type": "array", "items": {"$ref": "#/definitions/trigger"}}
  },
  "properties": {
    "id": {"$ref": "#/definitions/id"},
    "name": {"type": "string"},
    "description": {"type": "string"},
    "states": {
      "type": "array",
      "items": {
        "type": "object",
        "required": ["name"],
        "properties": {"name": {"type": "string"}, "is_initial": {"type": "boolean"}}
      }
    },
    "projects": {
      "type": "array",
      "items": {
        "type": "object",
        "properties": {
          "id": {"$ref": "#/definitions/id"},
          "path": {"type": "string"},
          "artifact_types": {
            "type": "array",
            "items": {
              "type": "object",
              "properties": {"id": {"$ref": "#/definitions/id"}, "name": {"type": "string"}}
            }
          }
        }
      }
    },
    "transition_events": {
      "type": "array",
      "items": {
        "type": "object",
        "required": ["name", "from_state", "to_state"],
        "properties": {"triggers": {"$ref": "#/definitions/triggers"}}
      }
    },
    "property_change_events": {
      "type": "array",
      "items": {
        "type": "object",
        "required": ["name"],
        "properties": {"triggers": {"$ref": "#/definitions/triggers"}}
      }
    },
    "new_artifact_events": {
      "type": "array",
      "items": {
        "type": "object",
        "required": ["name"],
        "properties": {"triggers": {"$ref": "#/definitions/triggers"}}
      }
    }
  }
}`

// SchemaChecker validates raw import bodies against the definition schema.
type SchemaChecker struct {
	schema *gojsonschema.Schema
}

func NewSchemaChecker() (*SchemaChecker, error) {
	schema, err := gojsonschema.NewSchema(gojsonschema.NewStringLoader(definitionSchema))
	if err != nil {
		return nil, fmt.Errorf("failed to compile definition schema: %w", err)
	}

	return &SchemaChecker{schema: schema}, nil
}

// Check returns ErrDefinitionShape listing every schema violation of body.
func (s *SchemaChecker) Check(body []byte) error {
	result, err := s.schema.Validate(gojsonschema.NewBytesLoader(body))
	if err != nil {
		return fmt.Errorf("%w: %s", ErrDefinitionShape, err.Error())
	}

	if !result.Valid() {
		var violations []string
		for _, desc := range result.Errors() {
			violations = append(violations, desc.String())
		}

		return fmt.Errorf("%w: %s", ErrDefinitionShape, strings.Join(violations, "; "))
	}

	return nil
}
