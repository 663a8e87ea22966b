package models

import (
	"slices"
	"time"

	"github.com/shopspring/decimal"
)

// PrimitiveType is the base value kind of a property type.
type PrimitiveType string

const (
	PrimitiveTypeText   PrimitiveType = "text"
	PrimitiveTypeNumber PrimitiveType = "number"
	PrimitiveTypeDate   PrimitiveType = "date"
	PrimitiveTypeChoice PrimitiveType = "choice"
	PrimitiveTypeUser   PrimitiveType = "user"
)

func (p PrimitiveType) IsKnown() bool {
	switch p {
	case PrimitiveTypeText, PrimitiveTypeNumber, PrimitiveTypeDate, PrimitiveTypeChoice, PrimitiveTypeUser:
		return true
	default:
		return false
	}
}

// ArtifactBaseType is the predefined kind an artifact type derives from.
type ArtifactBaseType string

const (
	BaseTypeActor              ArtifactBaseType = "actor"
	BaseTypeBusinessProcess    ArtifactBaseType = "business_process"
	BaseTypeDocument           ArtifactBaseType = "document"
	BaseTypeDomainDiagram      ArtifactBaseType = "domain_diagram"
	BaseTypeGenericDiagram     ArtifactBaseType = "generic_diagram"
	BaseTypeGlossary           ArtifactBaseType = "glossary"
	BaseTypeProcess            ArtifactBaseType = "process"
	BaseTypeStoryboard         ArtifactBaseType = "storyboard"
	BaseTypeTextualRequirement ArtifactBaseType = "textual_requirement"
	BaseTypeUIMockup           ArtifactBaseType = "ui_mockup"
	BaseTypeUseCase            ArtifactBaseType = "use_case"
	BaseTypeUseCaseDiagram     ArtifactBaseType = "use_case_diagram"

	BaseTypeProject            ArtifactBaseType = "project"
	BaseTypeFolder             ArtifactBaseType = "folder"
	BaseTypeBaseline           ArtifactBaseType = "baseline"
	BaseTypeCollection         ArtifactBaseType = "collection"
	BaseTypeArtifactCollection ArtifactBaseType = "artifact_collection"
	BaseTypeReview             ArtifactBaseType = "review"
	BaseTypeBaselineFolder     ArtifactBaseType = "baseline_folder"
	BaseTypeCollectionFolder   ArtifactBaseType = "collection_folder"
)

var regularBaseTypes = []ArtifactBaseType{
	BaseTypeActor,
	BaseTypeBusinessProcess,
	BaseTypeDocument,
	BaseTypeDomainDiagram,
	BaseTypeGenericDiagram,
	BaseTypeGlossary,
	BaseTypeProcess,
	BaseTypeStoryboard,
	BaseTypeTextualRequirement,
	BaseTypeUIMockup,
	BaseTypeUseCase,
	BaseTypeUseCaseDiagram,
}

// IsRegular reports whether artifacts of this base type can take part in workflows.
func (b ArtifactBaseType) IsRegular() bool {
	return slices.Contains(regularBaseTypes, b)
}

type ArtifactType struct {
	ID              int64            `json:"id"`
	Name            string           `json:"name"`
	Prefix          string           `json:"prefix,omitempty"`
	BaseType        ArtifactBaseType `json:"base_type"`
	PropertyTypeIDs []int64          `json:"property_type_ids,omitempty"`
}

// HasPropertyType reports whether the property type is associated with this artifact type.
func (a *ArtifactType) HasPropertyType(id int64) bool {
	return slices.Contains(a.PropertyTypeIDs, id)
}

type ValidValue struct {
	ID    int64  `json:"id"`
	Value string `json:"value"`
}

type PropertyType struct {
	ID                int64            `json:"id"`
	Name              string           `json:"name"`
	PrimitiveType     PrimitiveType    `json:"primitive_type"`
	IsRequired        bool             `json:"is_required,omitempty"`
	IsValidated       bool             `json:"is_validated,omitempty"`
	MinNumber         *decimal.Decimal `json:"min_number,omitempty"`
	MaxNumber         *decimal.Decimal `json:"max_number,omitempty"`
	DecimalPlaces     *int             `json:"decimal_places,omitempty"`
	MinDate           *time.Time       `json:"min_date,omitempty"`
	MaxDate           *time.Time       `json:"max_date,omitempty"`
	ValidValues       []ValidValue     `json:"valid_values,omitempty"`
	IsMultipleAllowed bool             `json:"is_multiple_allowed,omitempty"`
}

func (p *PropertyType) ValidValueByID(id int64) (ValidValue, bool) {
	for _, value := range p.ValidValues {
		if value.ID == id {
			return value, true
		}
	}

	return ValidValue{}, false
}

func (p *PropertyType) ValidValueByText(text string) (ValidValue, bool) {
	for _, value := range p.ValidValues {
		if value.Value == text {
			return value, true
		}
	}

	return ValidValue{}, false
}

// StandardTypes is the system-wide artifact and property type catalog.
type StandardTypes struct {
	ArtifactTypes []*ArtifactType `json:"artifact_types"`
	PropertyTypes []*PropertyType `json:"property_types"`
}

// Synthetic property types exist on every artifact type without being catalog members.
const (
	NamePropertyTypeID        int64 = -1
	DescriptionPropertyTypeID int64 = -2

	NamePropertyTypeName        = "Name"
	DescriptionPropertyTypeName = "Description"
)

var syntheticPropertyTypes = [...]PropertyType{
	{ID: NamePropertyTypeID, Name: NamePropertyTypeName, PrimitiveType: PrimitiveTypeText, IsRequired: true},
	{ID: DescriptionPropertyTypeID, Name: DescriptionPropertyTypeName, PrimitiveType: PrimitiveTypeText},
}

func SyntheticPropertyTypeByID(id int64) (*PropertyType, bool) {
	for i := range syntheticPropertyTypes {
		if syntheticPropertyTypes[i].ID == id {
			property := syntheticPropertyTypes[i]

			return &property, true
		}
	}

	return nil, false
}

func SyntheticPropertyTypeByName(name string) (*PropertyType, bool) {
	for i := range syntheticPropertyTypes {
		if syntheticPropertyTypes[i].Name == name {
			property := syntheticPropertyTypes[i]

			return &property, true
		}
	}

	return nil, false
}

func IsSyntheticPropertyType(id int64) bool {
	_, ok := SyntheticPropertyTypeByID(id)

	return ok
}
