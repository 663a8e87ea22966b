// Package testutil provides test data builders and utilities for testing.
package testutil

import (
	"time"

	"github.com/almflow/workflows/pkg/models"
	"github.com/shopspring/decimal"
)

// Catalog ids used by the fixtures.
const (
	RequirementTypeID int64 = 10
	UseCaseTypeID     int64 = 11
	BaselineTypeID    int64 = 90

	PriorityPropertyID int64 = 100
	EstimatePropertyID int64 = 101
	DueDatePropertyID  int64 = 102
	OwnerPropertyID    int64 = 103
	NotesPropertyID    int64 = 104
	TagsPropertyID     int64 = 105
	OrphanPropertyID   int64 = 106

	HighPriorityID   int64 = 1000
	MediumPriorityID int64 = 1001
	LowPriorityID    int64 = 1002
	UITagID          int64 = 1100
	BackendTagID     int64 = 1101

	AlphaProjectID int64 = 1
	BetaProjectID  int64 = 2

	AliceUserID int64 = 500
	BobUserID   int64 = 501

	AuthorsGroupID   int64 = 600
	ReviewersGroupID int64 = 601
)

const (
	AlphaProjectPath = "Blueprint/Alpha"
	BetaProjectPath  = "Blueprint/Beta"
)

// CreateTestStandardTypes returns a catalog with one artifact type of each interesting kind
// and one property type per primitive type.
func CreateTestStandardTypes() *models.StandardTypes {
	places := 2
	minNumber := decimal.NewFromInt(0)
	maxNumber := decimal.NewFromInt(100)
	minDate := time.Date(2020, time.January, 1, 0, 0, 0, 0, time.UTC)
	maxDate := time.Date(2030, time.December, 31, 0, 0, 0, 0, time.UTC)

	return &models.StandardTypes{
		ArtifactTypes: []*models.ArtifactType{
			{
				ID:       RequirementTypeID,
				Name:     "Requirement",
				Prefix:   "RQ",
				BaseType: models.BaseTypeTextualRequirement,
				PropertyTypeIDs: []int64{
					PriorityPropertyID, EstimatePropertyID, DueDatePropertyID,
					OwnerPropertyID, NotesPropertyID, TagsPropertyID,
				},
			},
			{
				ID:              UseCaseTypeID,
				Name:            "Use Case",
				Prefix:          "UC",
				BaseType:        models.BaseTypeUseCase,
				PropertyTypeIDs: []int64{PriorityPropertyID},
			},
			{
				ID:       BaselineTypeID,
				Name:     "Baseline",
				Prefix:   "BL",
				BaseType: models.BaseTypeBaseline,
			},
		},
		PropertyTypes: []*models.PropertyType{
			{
				ID:            PriorityPropertyID,
				Name:          "Priority",
				PrimitiveType: models.PrimitiveTypeChoice,
				IsValidated:   true,
				ValidValues: []models.ValidValue{
					{ID: HighPriorityID, Value: "High"},
					{ID: MediumPriorityID, Value: "Medium"},
					{ID: LowPriorityID, Value: "Low"},
				},
			},
			{
				ID:            EstimatePropertyID,
				Name:          "Estimate",
				PrimitiveType: models.PrimitiveTypeNumber,
				IsValidated:   true,
				MinNumber:     &minNumber,
				MaxNumber:     &maxNumber,
				DecimalPlaces: &places,
			},
			{
				ID:            DueDatePropertyID,
				Name:          "Due Date",
				PrimitiveType: models.PrimitiveTypeDate,
				IsValidated:   true,
				MinDate:       &minDate,
				MaxDate:       &maxDate,
			},
			{
				ID:            OwnerPropertyID,
				Name:          "Owner",
				PrimitiveType: models.PrimitiveTypeUser,
			},
			{
				ID:            NotesPropertyID,
				Name:          "Notes",
				PrimitiveType: models.PrimitiveTypeText,
			},
			{
				ID:                TagsPropertyID,
				Name:              "Tags",
				PrimitiveType:     models.PrimitiveTypeChoice,
				IsValidated:       true,
				IsMultipleAllowed: true,
				ValidValues: []models.ValidValue{
					{ID: UITagID, Value: "UI"},
					{ID: BackendTagID, Value: "Backend"},
				},
			},
			{
				ID:            OrphanPropertyID,
				Name:          "Orphan",
				PrimitiveType: models.PrimitiveTypeText,
			},
		},
	}
}

func CreateTestProjects() []*models.Project {
	return []*models.Project{
		{ID: AlphaProjectID, Name: "Alpha", Path: AlphaProjectPath},
		{ID: BetaProjectID, Name: "Beta", Path: BetaProjectPath},
	}
}

func CreateTestUsers() []*models.User {
	return []*models.User{
		{ID: AliceUserID, Name: "alice", DisplayName: "Alice Liddell"},
		{ID: BobUserID, Name: "bob", DisplayName: "Bob Dobbs"},
	}
}

// CreateTestGroups returns one instance group and one group scoped to the Alpha project.
func CreateTestGroups() []*models.Group {
	alpha := AlphaProjectID

	return []*models.Group{
		{ID: AuthorsGroupID, Name: "Authors"},
		{ID: ReviewersGroupID, Name: "Reviewers", ProjectID: &alpha},
	}
}
