// Package validation checks imported workflow definitions for internal and cross-referential
// correctness against live system metadata before they are persisted.
//
// Validation links the definition as it goes: resolved names and ids are written back onto
// the caller-owned *models.ImportWorkflow. Callers that persist a definition rely on these
// fields, so a definition must be owned exclusively by one validation call at a time.
// Running validation again on an already linked definition yields the same result.
package validation

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/almflow/workflows/pkg/models"
	"github.com/almflow/workflows/pkg/otelhelper"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
)

// Validator is safe for concurrent use on different definitions; each call builds its own
// Result and lookup tables.
type Validator struct {
	deps   Dependencies
	logger *slog.Logger
	tracer trace.Tracer
}

type Option func(*Validator)

func WithLogger(logger *slog.Logger) Option {
	return func(v *Validator) {
		v.logger = logger
	}
}

func WithTracer(tracer trace.Tracer) Option {
	return func(v *Validator) {
		v.tracer = tracer
	}
}

func NewValidator(deps Dependencies, opts ...Option) *Validator {
	validator := &Validator{
		deps:   deps,
		logger: slog.Default(),
		tracer: noop.NewTracerProvider().Tracer("validation"),
	}

	for _, opt := range opts {
		opt(validator)
	}

	validator.logger = validator.logger.With("module", "validation")

	return validator
}

// ValidateForCreate validates a new definition. Names are authoritative: ids in the
// definition are disregarded and overwritten with the ids the names resolve to. Artifact
// types resolved by name receive the negated catalog id.
func (v *Validator) ValidateForCreate(ctx context.Context, definition *models.ImportWorkflow) (*Result, error) {
	if definition == nil {
		return nil, ErrNilDefinition
	}

	ctx, span := v.startSpan(ctx, ModeCreate, definition)
	defer span.End()

	types, err := v.deps.Metadata.StandardTypes(ctx)
	if err != nil {
		return nil, v.fail(ctx, span, fmt.Errorf("failed to load standard types: %w", err))
	}

	if types == nil {
		return nil, ErrNilStandardTypes
	}

	return v.run(ctx, span, newChecker(newResult(types), nameAuthority{}), definition)
}

// ValidateForUpdate validates an edited definition against a catalog the caller already
// loaded. Ids are authoritative and their names are written back; names are only used
// where no id is present.
func (v *Validator) ValidateForUpdate(
	ctx context.Context,
	definition *models.ImportWorkflow,
	standardTypes *models.StandardTypes,
) (*Result, error) {
	if definition == nil {
		return nil, ErrNilDefinition
	}

	if standardTypes == nil {
		return nil, ErrNilStandardTypes
	}

	ctx, span := v.startSpan(ctx, ModeUpdate, definition)
	defer span.End()

	return v.run(ctx, span, newChecker(newResult(standardTypes), idAuthority{}), definition)
}

// Validate dispatches on mode. Update mode loads the catalog itself.
func (v *Validator) Validate(ctx context.Context, definition *models.ImportWorkflow, mode Mode) (*Result, error) {
	switch mode {
	case ModeCreate:
		return v.ValidateForCreate(ctx, definition)
	case ModeUpdate:
		types, err := v.deps.Metadata.StandardTypes(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to load standard types: %w", err)
		}

		return v.ValidateForUpdate(ctx, definition, types)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownMode, mode)
	}
}

func (v *Validator) run(ctx context.Context, span trace.Span, c *checker, definition *models.ImportWorkflow) (*Result, error) {
	mode := c.ids.mode()

	v.logger.DebugContext(ctx, "Validating workflow definition", "workflow", definition.Name, "mode", mode)

	steps := []func(context.Context, *checker, *models.ImportWorkflow) error{
		v.loadDirectory,
		v.checkNameUniqueness,
		v.resolveProjects,
	}

	for _, step := range steps {
		if err := step(ctx, c, definition); err != nil {
			return nil, v.fail(ctx, span, err)
		}
	}

	c.associateArtifactTypes(definition)

	if c.ids.resolvesProjectPaths() {
		if err := v.resolveGroupProjectPaths(ctx, c, definition); err != nil {
			return nil, v.fail(ctx, span, err)
		}
	}

	if err := c.checkEvents(definition); err != nil {
		return nil, v.fail(ctx, span, err)
	}

	errorCodes := make([]string, 0, len(c.result.errors))
	for _, code := range c.result.Codes() {
		errorCodes = append(errorCodes, code.String())
	}

	otelhelper.SetFindings(span, errorCodes)

	v.logger.InfoContext(ctx, "Workflow definition validated",
		"workflow", definition.Name,
		"mode", mode,
		"errors", len(c.result.errors),
	)

	return c.result, nil
}

// loadDirectory fetches every user and group the definition refers to, by name and, when
// ids are authoritative, by id.
func (v *Validator) loadDirectory(ctx context.Context, c *checker, definition *models.ImportWorkflow) error {
	var (
		userNames, groupNames, instanceGroupNames []string
		userIDs, groupIDs, instanceGroupIDs       []int64
	)

	for _, entry := range userGroupEntries(definition) {
		if entry.IsGroup {
			groupNames = append(groupNames, entry.Name)
		} else {
			userNames = append(userNames, entry.Name)
		}

		if !c.ids.trusts(entry.ID) {
			continue
		}

		if entry.IsGroup {
			groupIDs = append(groupIDs, *entry.ID)
		} else {
			userIDs = append(userIDs, *entry.ID)
		}
	}

	for _, group := range permissionGroups(definition) {
		instanceGroupNames = append(instanceGroupNames, group.Name)

		if c.ids.trusts(group.ID) {
			instanceGroupIDs = append(instanceGroupIDs, *group.ID)
		}
	}

	directory := v.deps.Directory

	if names := distinct(nonBlank(userNames)); len(names) > 0 {
		users, err := directory.UsersByName(ctx, names)
		if err != nil {
			return fmt.Errorf("failed to find users by name: %w", err)
		}

		c.result.addUsers(users)
	}

	if ids := distinct(userIDs); len(ids) > 0 {
		users, err := directory.UsersByID(ctx, ids)
		if err != nil {
			return fmt.Errorf("failed to find users by id: %w", err)
		}

		c.result.addUsers(users)
	}

	if names := distinct(nonBlank(groupNames)); len(names) > 0 {
		groups, err := directory.GroupsByName(ctx, names, false)
		if err != nil {
			return fmt.Errorf("failed to find groups by name: %w", err)
		}

		c.result.addGroups(groups)
	}

	if ids := distinct(groupIDs); len(ids) > 0 {
		groups, err := directory.GroupsByID(ctx, ids, false)
		if err != nil {
			return fmt.Errorf("failed to find groups by id: %w", err)
		}

		c.result.addGroups(groups)
	}

	if names := distinct(nonBlank(instanceGroupNames)); len(names) > 0 {
		groups, err := directory.GroupsByName(ctx, names, true)
		if err != nil {
			return fmt.Errorf("failed to find instance groups by name: %w", err)
		}

		c.result.addGroups(groups)
	}

	if ids := distinct(instanceGroupIDs); len(ids) > 0 {
		groups, err := directory.GroupsByID(ctx, ids, true)
		if err != nil {
			return fmt.Errorf("failed to find instance groups by id: %w", err)
		}

		c.result.addGroups(groups)
	}

	return nil
}

//nolint:spancheck // the span is ended by the caller
func (v *Validator) startSpan(ctx context.Context, mode Mode, definition *models.ImportWorkflow) (context.Context, trace.Span) {
	return otelhelper.StartSpan(ctx, v.tracer, "validation."+string(mode),
		attribute.String(otelhelper.WorkflowNameKey, definition.Name),
		attribute.String(otelhelper.ValidationModeKey, string(mode)),
	)
}

func (v *Validator) fail(ctx context.Context, span trace.Span, err error) error {
	otelhelper.SetError(span, err)
	v.logger.ErrorContext(ctx, "Workflow validation aborted", "error", err)

	return err
}
