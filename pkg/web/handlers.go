// Package web provides HTTP handlers and REST API endpoints for workflow definitions.
package web

import (
	"net/http"
	"strconv"
	"time"

	"github.com/almflow/workflows/pkg/models"
	"github.com/almflow/workflows/pkg/services"
	"github.com/almflow/workflows/pkg/validation"
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v3"
)

type APIHandlers struct {
	workflowService *services.Workflow
	validator       *validator.Validate
	schema          *SchemaChecker
}

func NewAPIHandlers(
	workflowService *services.Workflow,
	validator *validator.Validate,
	schema *SchemaChecker,
) *APIHandlers {
	return &APIHandlers{
		workflowService: workflowService,
		validator:       validator,
		schema:          schema,
	}
}

// RegisterRoutes mounts the workflow endpoints on app.
func (h *APIHandlers) RegisterRoutes(app *fiber.App) {
	app.Get("/health", h.HealthCheck)

	w := app.Group("/workflows")
	w.Get("/", h.GetWorkflows)
	w.Post("/import", h.ImportWorkflow)
	w.Post("/validate", h.ValidateWorkflow)
	w.Get("/:id", h.GetWorkflow)
	w.Put("/:id", h.UpdateWorkflow)
	w.Delete("/:id", h.DeleteWorkflow)
}

func (h *APIHandlers) HealthCheck(c fiber.Ctx) error {
	repositoryCheck, repOk := h.workflowService.HealthCheck(c.Context())

	status := "unhealthy"
	message := "Workflows API is unhealthy"
	httpStatus := http.StatusInternalServerError

	if repOk {
		status = "healthy"
		message = "Workflows API is healthy"
		httpStatus = http.StatusOK
	}

	return c.Status(httpStatus).JSON(fiber.Map{
		"status":  status,
		"message": message,
		"checkers": fiber.Map{
			"repository": repositoryCheck,
		},
		"timestamp": time.Now().UTC(),
	})
}

func (h *APIHandlers) GetWorkflows(c fiber.Ctx) error {
	workflows, err := h.workflowService.List(c.Context())
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.JSON(ListWorkflowsResponse{
		Workflows:  workflows,
		TotalCount: len(workflows),
	})
}

func (h *APIHandlers) GetWorkflow(c fiber.Ctx) error {
	id, err := workflowID(c)
	if err != nil {
		return badRequest(c, "Workflow ID must be a positive integer")
	}

	workflow, err := h.workflowService.FetchByID(c.Context(), id)
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.JSON(workflow)
}

func (h *APIHandlers) ImportWorkflow(c fiber.Ctx) error {
	definition, err := h.parseDefinition(c)
	if err != nil {
		return badRequest(c, err.Error())
	}

	stored, err := h.workflowService.Import(c.Context(), definition)
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(stored)
}

func (h *APIHandlers) ValidateWorkflow(c fiber.Ctx) error {
	var query ValidateQuery
	if err := c.Bind().Query(&query); err != nil {
		return badRequest(c, "Invalid query parameters")
	}

	if err := h.validator.Struct(query); err != nil {
		return badRequest(c, err.Error())
	}

	mode, err := validation.ParseMode(query.Mode)
	if err != nil {
		return badRequest(c, err.Error())
	}

	definition, err := h.parseDefinition(c)
	if err != nil {
		return badRequest(c, err.Error())
	}

	result, err := h.workflowService.Validate(c.Context(), definition, mode)
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.JSON(ValidateResponse{
		Valid:  !result.HasErrors(),
		Errors: result.Report(),
	})
}

func (h *APIHandlers) UpdateWorkflow(c fiber.Ctx) error {
	id, err := workflowID(c)
	if err != nil {
		return badRequest(c, "Workflow ID must be a positive integer")
	}

	definition, err := h.parseDefinition(c)
	if err != nil {
		return badRequest(c, err.Error())
	}

	updated, err := h.workflowService.Update(c.Context(), id, definition)
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.JSON(updated)
}

func (h *APIHandlers) DeleteWorkflow(c fiber.Ctx) error {
	id, err := workflowID(c)
	if err != nil {
		return badRequest(c, "Workflow ID must be a positive integer")
	}

	err = h.workflowService.Delete(c.Context(), id)
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.SendStatus(fiber.StatusNoContent)
}

// parseDefinition checks the body against the import schema, decodes it and applies the
// struct tags of the definition model.
func (h *APIHandlers) parseDefinition(c fiber.Ctx) (*models.ImportWorkflow, error) {
	if err := h.schema.Check(c.Body()); err != nil {
		return nil, err
	}

	var definition models.ImportWorkflow
	if err := c.Bind().JSON(&definition); err != nil {
		return nil, err
	}

	if err := h.validator.Struct(definition); err != nil {
		return nil, err
	}

	return &definition, nil
}

func workflowID(c fiber.Ctx) (int64, error) {
	id, err := strconv.ParseInt(c.Params("id"), 10, 64)
	if err != nil {
		return 0, err
	}

	if id <= 0 {
		return 0, strconv.ErrRange
	}

	return id, nil
}
