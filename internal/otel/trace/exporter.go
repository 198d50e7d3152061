package trace

import (
	"context"

	sdkTrace "go.opentelemetry.io/otel/sdk/trace"
)

// noOpSpanExporter drops every span. It is installed when no OTLP endpoint is
// configured so spans still carry IDs for log correlation.
type noOpSpanExporter struct{}

func NewNoOpSpanExporter() sdkTrace.SpanExporter {
	return &noOpSpanExporter{}
}

func (noOpSpanExporter) ExportSpans(context.Context, []sdkTrace.ReadOnlySpan) error {
	return nil
}

func (noOpSpanExporter) Shutdown(context.Context) error {
	return nil
}
