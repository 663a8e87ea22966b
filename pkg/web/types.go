// Package web provides HTTP request and response types for the workflow API.
package web

import (
	"github.com/almflow/workflows/pkg/models"
	"github.com/almflow/workflows/pkg/validation"
)

// ValidateResponse is the outcome of a dry-run validation.
type ValidateResponse struct {
	Valid  bool                     `json:"valid"`
	Errors []validation.ErrorReport `json:"errors"`
}

// ListWorkflowsResponse wraps the live workflows.
type ListWorkflowsResponse struct {
	Workflows  []*models.StoredWorkflow `json:"workflows"`
	TotalCount int                      `json:"total_count"`
}

// ValidateQuery holds the query parameters of the validate endpoint.
type ValidateQuery struct {
	Mode string `query:"mode" validate:"omitempty,oneof=create update"`
}
