package otelhelper

import (
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// SetError marks the span failed. Validation findings are not errors; use SetFindings.
func SetError(span trace.Span, err error, attrs ...attribute.KeyValue) {
	span.RecordError(err, trace.WithAttributes(attrs...))
	span.SetStatus(codes.Error, err.Error())
}

// SetFindings records the validation error codes of a definition, in report order.
func SetFindings(span trace.Span, errorCodes []string) {
	span.SetAttributes(attribute.Int(ErrorCountKey, len(errorCodes)))

	if len(errorCodes) > 0 {
		span.SetAttributes(attribute.StringSlice(ErrorCodesKey, errorCodes))
	}
}

// EventPublished notes on the span that a lifecycle event left the service.
func EventPublished(span trace.Span, eventType string, published bool) {
	span.AddEvent("workflow_event", trace.WithAttributes(
		attribute.String(EventTypeKey, eventType),
		attribute.Bool(EventPublishedKey, published),
	))
}
