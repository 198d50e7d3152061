package trace

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"go.opentelemetry.io/otel/attribute"
	sdkTrace "go.opentelemetry.io/otel/sdk/trace"
	oteltrace "go.opentelemetry.io/otel/trace"

	"github.com/dynoinc/respond/internal/otel/semconv"
)

func TestForceBasedSampler(t *testing.T) {
	sampler := NewForceBasedSampler(0)
	traceID := oteltrace.TraceID{1}

	tests := []struct {
		name  string
		attrs []attribute.KeyValue
		want  sdkTrace.SamplingDecision
	}{
		{"no attributes", nil, sdkTrace.Drop},
		{"forced", []attribute.KeyValue{semconv.ForceTraceKey.Bool(true)}, sdkTrace.RecordAndSample},
		{"force disabled", []attribute.KeyValue{semconv.ForceTraceKey.Bool(false)}, sdkTrace.Drop},
		{"other attributes", []attribute.KeyValue{semconv.IncidentIDKey.String("INC-1")}, sdkTrace.Drop},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := sampler.ShouldSample(sdkTrace.SamplingParameters{
				TraceID:    traceID,
				Name:       "span",
				Attributes: tt.attrs,
			})
			assert.Equal(t, tt.want, res.Decision)
		})
	}

	assert.Contains(t, sampler.Description(), "ForceBasedSampler")
}
