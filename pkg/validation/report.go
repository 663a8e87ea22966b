package validation

import (
	"strconv"

	"github.com/almflow/workflows/pkg/models"
)

// ErrorReport is the serializable form of an Error.
type ErrorReport struct {
	Code        ErrorCode `json:"code"`
	Element     string    `json:"element,omitempty"`
	Description string    `json:"description"`
}

// Report renders the findings in order, labelling each offending element.
func (r *Result) Report() []ErrorReport {
	reports := make([]ErrorReport, 0, len(r.errors))

	for _, err := range r.errors {
		reports = append(reports, ErrorReport{
			Code:        err.Code,
			Element:     ElementLabel(err.Element),
			Description: err.Code.Description(),
		})
	}

	return reports
}

// ElementLabel returns a short human label for an element of a definition.
func ElementLabel(element any) string {
	switch e := element.(type) {
	case *models.ImportWorkflow:
		return e.Name
	case *models.ImportProject:
		return e.Label()
	case *models.ImportArtifactType:
		return nameOrID(e.Name, e.ID)
	case *models.ImportGroup:
		return nameOrID(e.Name, e.ID)
	case *models.ImportUserGroup:
		return nameOrID(e.Name, e.ID)
	case *models.ImportValidValue:
		return nameOrID(e.Value, e.ID)
	case *models.ImportPropertyChangeEvent:
		return nameOrID(e.PropertyName, e.PropertyID)
	case *models.EmailNotificationAction:
		return nameOrID(e.PropertyName, e.PropertyID)
	case *models.PropertyChangeAction:
		return nameOrID(e.PropertyName, e.PropertyID)
	case *models.GenerateChildrenAction:
		return nameOrID(e.ArtifactTypeName, e.ArtifactTypeID)
	default:
		return ""
	}
}

func nameOrID(name string, id *int64) string {
	if name != "" {
		return name
	}

	if id != nil {
		return "#" + strconv.FormatInt(*id, 10)
	}

	return ""
}
