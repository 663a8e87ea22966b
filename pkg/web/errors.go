package web

import (
	"github.com/almflow/workflows/pkg/services"
	"github.com/almflow/workflows/pkg/validation"
	"github.com/gofiber/fiber/v3"
	"github.com/moogar0880/problems"
)

// Problem types returned in the "type" member of every error body.
const (
	problemBadRequest      = "validation_error"
	problemNotFound        = "workflow_not_found"
	problemNameConflict    = "workflow_name_conflict"
	problemInvalidWorkflow = "workflow_definition_invalid"
	problemInternal        = "internal_error"
)

// findingsProblem carries the ordered validation findings next to the RFC 7807 members.
type findingsProblem struct {
	*problems.DefaultProblem

	Errors []validation.ErrorReport `json:"errors"`
}

func newProblem(c fiber.Ctx, status int, problemType string) *problems.DefaultProblem {
	return problems.NewStatusProblem(status).
		WithInstance(c.Path()).
		WithType(problemType)
}

func badRequest(c fiber.Ctx, detail string) error {
	return c.Status(fiber.StatusBadRequest).
		JSON(newProblem(c, fiber.StatusBadRequest, problemBadRequest).WithDetail(detail))
}

// handleServiceError maps service failures onto problem documents.
func handleServiceError(c fiber.Ctx, err error) error {
	if failed, ok := services.AsValidationFailed(err); ok {
		return c.Status(fiber.StatusUnprocessableEntity).JSON(findingsProblem{
			DefaultProblem: newProblem(c, fiber.StatusUnprocessableEntity, problemInvalidWorkflow).
				WithDetail("workflow definition has validation errors"),
			Errors: failed.Result.Report(),
		})
	}

	switch {
	case services.IsValidationError(err):
		return badRequest(c, err.Error())
	case services.IsConflictError(err):
		return c.Status(fiber.StatusConflict).
			JSON(newProblem(c, fiber.StatusConflict, problemNameConflict).WithDetail(err.Error()))
	case services.IsNotFoundError(err):
		return c.Status(fiber.StatusNotFound).
			JSON(newProblem(c, fiber.StatusNotFound, problemNotFound).WithDetail("workflow not found"))
	default:
		return c.Status(fiber.StatusInternalServerError).
			JSON(newProblem(c, fiber.StatusInternalServerError, problemInternal).WithError(err))
	}
}
