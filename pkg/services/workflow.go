// Package services coordinates validation, persistence and lifecycle events for workflow definitions.
package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/almflow/workflows/pkg/eventbus"
	"github.com/almflow/workflows/pkg/events"
	"github.com/almflow/workflows/pkg/models"
	"github.com/almflow/workflows/pkg/otelhelper"
	"github.com/almflow/workflows/pkg/persistence"
	"github.com/almflow/workflows/pkg/validation"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
)

// Workflow validates workflow definitions and stores the ones without findings.
type Workflow struct {
	persistence persistence.Persistence
	metadata    persistence.MetadataRepository
	publisher   eventbus.EventPublisher
	logger      *slog.Logger
	tracer      trace.Tracer
	validator   *validation.Validator
}

type Option func(*Workflow)

// WithMetadata replaces the catalog source, typically with a cache in front of the persistence.
func WithMetadata(metadata persistence.MetadataRepository) Option {
	return func(w *Workflow) {
		w.metadata = metadata
	}
}

// WithPublisher enables lifecycle events.
func WithPublisher(publisher eventbus.EventPublisher) Option {
	return func(w *Workflow) {
		w.publisher = publisher
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(w *Workflow) {
		w.logger = logger
	}
}

func WithTracer(tracer trace.Tracer) Option {
	return func(w *Workflow) {
		w.tracer = tracer
	}
}

// NewWorkflow creates a new workflow service.
func NewWorkflow(p persistence.Persistence, opts ...Option) *Workflow {
	service := &Workflow{
		persistence: p,
		metadata:    p.MetadataRepository(),
		logger:      slog.Default(),
		tracer:      noop.NewTracerProvider().Tracer("services"),
	}

	for _, opt := range opts {
		opt(service)
	}

	service.validator = validation.NewValidator(
		validation.Dependencies{
			WorkflowNames: p.WorkflowRepository(),
			Projects:      p.ProjectRepository(),
			Metadata:      service.metadata,
			Directory:     p.DirectoryRepository(),
		},
		validation.WithLogger(service.logger),
		validation.WithTracer(service.tracer),
	)
	service.logger = service.logger.With("module", "workflow_service")

	return service
}

// HealthCheck checks the health of the persistence layer.
func (w *Workflow) HealthCheck(ctx context.Context) (string, bool) {
	if w.persistence == nil {
		return "Persistence layer not initialized", false
	}

	err := w.persistence.HealthCheck(ctx)
	if err != nil {
		return "Persistence layer is unhealthy: " + err.Error(), false
	}

	return "Persistence layer is healthy", true
}

// Validate runs validation without storing anything. The definition is linked in place.
func (w *Workflow) Validate(
	ctx context.Context,
	definition *models.ImportWorkflow,
	mode validation.Mode,
) (*validation.Result, error) {
	if definition == nil {
		return nil, ErrWorkflowNil
	}

	result, err := w.validator.Validate(ctx, definition, mode)
	if err != nil {
		if errors.Is(err, validation.ErrUnknownMode) {
			return nil, classify("validate", ErrInvalidMode, err)
		}

		return nil, fmt.Errorf("failed to validate workflow: %w", err)
	}

	return result, nil
}

// Import validates a new definition in create mode and stores it when there are no findings.
func (w *Workflow) Import(ctx context.Context, definition *models.ImportWorkflow) (*models.StoredWorkflow, error) {
	if definition == nil {
		return nil, ErrWorkflowNil
	}

	ctx, span := otelhelper.StartSpan(ctx, w.tracer, "services.workflow.import",
		attribute.String(otelhelper.WorkflowNameKey, definition.Name),
	)
	defer span.End()

	result, err := w.validator.ValidateForCreate(ctx, definition)
	if err != nil {
		otelhelper.SetError(span, err)

		return nil, fmt.Errorf("failed to validate workflow: %w", err)
	}

	if result.HasErrors() {
		return nil, &ValidationFailedError{Result: result}
	}

	storeCatalogIDs(definition)

	workflow := &models.StoredWorkflow{
		Name:        definition.Name,
		Description: definition.Description,
		Definition:  definition,
	}

	err = w.persistence.WorkflowRepository().Save(ctx, workflow)
	if err != nil {
		otelhelper.SetError(span, err)

		return nil, w.mapSaveError("import", err)
	}

	hydrate(workflow)
	span.SetAttributes(attribute.Int64(otelhelper.WorkflowIDKey, workflow.ID))

	w.logger.InfoContext(ctx, "Workflow imported", "workflow_id", workflow.ID, "name", workflow.Name)

	w.publish(ctx, workflow.ID, events.WorkflowCreated{
		BaseEvent:    w.baseEvent(events.WorkflowCreatedEvent, workflow.ID),
		Name:         workflow.Name,
		ProjectIDs:   result.ValidProjectIDs(),
		TriggerCount: len(definition.Triggers()),
	})

	return workflow, nil
}

// Update validates an edited definition in update mode and replaces the stored one.
func (w *Workflow) Update(
	ctx context.Context,
	workflowID int64,
	definition *models.ImportWorkflow,
) (*models.StoredWorkflow, error) {
	if definition == nil {
		return nil, ErrWorkflowNil
	}

	ctx, span := otelhelper.StartSpan(ctx, w.tracer, "services.workflow.update",
		attribute.Int64(otelhelper.WorkflowIDKey, workflowID),
		attribute.String(otelhelper.WorkflowNameKey, definition.Name),
	)
	defer span.End()

	existing, err := w.FetchByID(ctx, workflowID)
	if err != nil {
		return nil, err
	}

	definition.ID = &workflowID

	types, err := w.metadata.StandardTypes(ctx)
	if err != nil {
		otelhelper.SetError(span, err)

		return nil, fmt.Errorf("failed to load standard types: %w", err)
	}

	result, err := w.validator.ValidateForUpdate(ctx, definition, types)
	if err != nil {
		otelhelper.SetError(span, err)

		return nil, fmt.Errorf("failed to validate workflow: %w", err)
	}

	if result.HasErrors() {
		return nil, &ValidationFailedError{Result: result}
	}

	existing.Name = definition.Name
	existing.Description = definition.Description
	existing.Definition = definition

	err = w.persistence.WorkflowRepository().Save(ctx, existing)
	if err != nil {
		otelhelper.SetError(span, err)

		return nil, w.mapSaveError("update", err)
	}

	w.logger.InfoContext(ctx, "Workflow updated", "workflow_id", existing.ID, "name", existing.Name)

	w.publish(ctx, existing.ID, events.WorkflowUpdated{
		BaseEvent:    w.baseEvent(events.WorkflowUpdatedEvent, existing.ID),
		Name:         existing.Name,
		ProjectIDs:   result.ValidProjectIDs(),
		TriggerCount: len(definition.Triggers()),
	})

	return existing, nil
}

// FetchByID retrieves a live workflow by its ID.
func (w *Workflow) FetchByID(ctx context.Context, id int64) (*models.StoredWorkflow, error) {
	workflow, err := w.persistence.WorkflowRepository().GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if workflow == nil {
		return nil, ErrWorkflowNotFound
	}

	hydrate(workflow)

	return workflow, nil
}

// List returns every live workflow.
func (w *Workflow) List(ctx context.Context) ([]*models.StoredWorkflow, error) {
	workflows, err := w.persistence.WorkflowRepository().GetAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list workflows: %w", err)
	}

	for _, workflow := range workflows {
		hydrate(workflow)
	}

	return workflows, nil
}

// Delete soft deletes a workflow; its name becomes available again.
func (w *Workflow) Delete(ctx context.Context, id int64) error {
	err := w.persistence.WorkflowRepository().Delete(ctx, id)
	if err != nil {
		if persistence.IsWorkflowNotFound(err) {
			return ErrWorkflowNotFound
		}

		return fmt.Errorf("failed to delete workflow: %w", err)
	}

	w.logger.InfoContext(ctx, "Workflow deleted", "workflow_id", id)

	w.publish(ctx, id, events.WorkflowDeleted{
		BaseEvent: w.baseEvent(events.WorkflowDeletedEvent, id),
	})

	return nil
}

func (w *Workflow) mapSaveError(op string, err error) error {
	switch {
	case persistence.IsWorkflowNameTaken(err):
		return classify(op, ErrWorkflowNameConflict, err)
	case persistence.IsWorkflowNotFound(err):
		return ErrWorkflowNotFound
	default:
		return fmt.Errorf("failed to save workflow: %w", err)
	}
}

func (w *Workflow) baseEvent(eventType events.EventType, workflowID int64) events.BaseEvent {
	return events.BaseEvent{
		ID:         uuid.NewString(),
		Type:       eventType,
		Timestamp:  time.Now().UTC(),
		WorkflowID: workflowID,
	}
}

// publish is best effort: the workflow is already stored.
func (w *Workflow) publish(ctx context.Context, workflowID int64, event eventbus.Event) {
	if w.publisher == nil {
		return
	}

	err := w.publisher.Publish(ctx, fmt.Sprint(workflowID), event)
	otelhelper.EventPublished(trace.SpanFromContext(ctx), string(event.GetType()), err == nil)

	if err != nil {
		w.logger.ErrorContext(ctx, "Failed to publish workflow event",
			"workflow_id", workflowID,
			"event_type", event.GetType(),
			"error", err,
		)
	}
}

// storeCatalogIDs replaces the negated ids of artifact types resolved by name with their
// catalog ids, so that the stored definition validates in update mode.
func storeCatalogIDs(definition *models.ImportWorkflow) {
	for _, project := range definition.Projects {
		if project == nil {
			continue
		}

		for _, artifactType := range project.ArtifactTypes {
			if artifactType == nil || !artifactType.ResolvedByName() {
				continue
			}

			id, _ := artifactType.CatalogID()
			artifactType.ID = &id
		}
	}
}

// hydrate copies the storage id onto the definition, which may have been stored without it.
func hydrate(workflow *models.StoredWorkflow) {
	if workflow.Definition != nil {
		id := workflow.ID
		workflow.Definition.ID = &id
	}
}
