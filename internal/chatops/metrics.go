package chatops

import (
	"context"
	"log/slog"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"github.com/dynoinc/respond/internal/otel/semconv"
)

const instrumentationName = "github.com/dynoinc/respond/internal/chatops"

var tracer trace.Tracer = otel.Tracer(instrumentationName)

type metrics struct {
	remoteCalls metric.Int64Counter
	retries     metric.Int64Counter
	submissions metric.Int64Counter
}

func newMetrics() *metrics {
	meter := otel.Meter(instrumentationName)
	m := &metrics{}

	var err error
	if m.remoteCalls, err = meter.Int64Counter("chatops.slack.calls",
		metric.WithDescription("Slack Web API calls made by the engine, after retries")); err != nil {
		slog.Warn("failed to create counter", "name", "chatops.slack.calls", "error", err)
	}
	if m.retries, err = meter.Int64Counter("chatops.slack.retries",
		metric.WithDescription("Slack Web API calls retried after a transient failure")); err != nil {
		slog.Warn("failed to create counter", "name", "chatops.slack.retries", "error", err)
	}
	if m.submissions, err = meter.Int64Counter("chatops.submissions",
		metric.WithDescription("View submissions handled, by callback id and outcome")); err != nil {
		slog.Warn("failed to create counter", "name", "chatops.submissions", "error", err)
	}
	return m
}

func (m *metrics) add(ctx context.Context, c metric.Int64Counter, attrs ...attribute.KeyValue) {
	if c == nil {
		return
	}
	c.Add(ctx, 1, metric.WithAttributes(attrs...))
}

func outcome(err error) attribute.KeyValue {
	if err != nil {
		return semconv.OutcomeFailure
	}
	return semconv.OutcomeSuccess
}
