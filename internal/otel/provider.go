// Package otel installs the process-wide tracer and meter providers.
package otel

import (
	"context"
	"errors"
	"fmt"

	sentryotel "github.com/getsentry/sentry-go/otel"
	promclient "github.com/prometheus/client_golang/prometheus"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/exporters/prometheus"
	"go.opentelemetry.io/otel/propagation"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	sdkTrace "go.opentelemetry.io/otel/sdk/trace"
	otelsemconv "go.opentelemetry.io/otel/semconv/v1.26.0"

	"github.com/dynoinc/respond/internal/otel/trace"
)

type Config struct {
	OTLPEndpoint string
	SampleRate   float64
}

// Providers holds what Setup installed. Gatherer serves the metrics registered
// through the global meter provider.
type Providers struct {
	Gatherer promclient.Gatherer

	shutdown []func(context.Context) error
}

func (p *Providers) Shutdown(ctx context.Context) error {
	var errs []error
	for _, fn := range p.shutdown {
		errs = append(errs, fn(ctx))
	}
	return errors.Join(errs...)
}

// Setup installs global providers. Spans go to the OTLP endpoint when one is
// configured and to Sentry when withSentry is set; otherwise they are dropped.
func Setup(ctx context.Context, c Config, serviceName, version string, withSentry bool) (*Providers, error) {
	res, err := resource.New(ctx,
		resource.WithAttributes(
			otelsemconv.ServiceName(serviceName),
			otelsemconv.ServiceVersion(version),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("creating resource: %w", err)
	}

	var exporter sdkTrace.SpanExporter = trace.NewNoOpSpanExporter()
	if c.OTLPEndpoint != "" {
		exporter, err = otlptracehttp.New(ctx, otlptracehttp.WithEndpointURL(c.OTLPEndpoint))
		if err != nil {
			return nil, fmt.Errorf("creating OTLP exporter: %w", err)
		}
	}

	opts := []sdkTrace.TracerProviderOption{
		sdkTrace.WithResource(res),
		sdkTrace.WithSampler(trace.NewForceBasedSampler(c.SampleRate)),
		sdkTrace.WithBatcher(exporter),
	}
	propagators := []propagation.TextMapPropagator{propagation.TraceContext{}, propagation.Baggage{}}
	if withSentry {
		opts = append(opts, sdkTrace.WithSpanProcessor(sentryotel.NewSentrySpanProcessor()))
		propagators = append(propagators, sentryotel.NewSentryPropagator())
	}

	tp := sdkTrace.NewTracerProvider(opts...)
	otel.SetTracerProvider(tp)
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(propagators...))

	registry := promclient.NewRegistry()
	metricExporter, err := prometheus.New(prometheus.WithRegisterer(registry))
	if err != nil {
		return nil, errors.Join(fmt.Errorf("creating prometheus exporter: %w", err), tp.Shutdown(ctx))
	}

	mp := sdkmetric.NewMeterProvider(
		sdkmetric.WithResource(res),
		sdkmetric.WithReader(metricExporter),
	)
	otel.SetMeterProvider(mp)

	return &Providers{
		Gatherer: registry,
		shutdown: []func(context.Context) error{tp.Shutdown, mp.Shutdown},
	}, nil
}
