package tracing

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace/noop"
)

func TestDisabledIsNoop(t *testing.T) {
	shutdown, err := Init(context.Background(), Config{}, "test")
	require.NoError(t, err)
	require.NoError(t, shutdown(context.Background()))

	_, _, ok := TraceFields(context.Background())
	assert.False(t, ok)
}

func TestEnabledExportsSpans(t *testing.T) {
	defer otel.SetTracerProvider(noop.NewTracerProvider())

	var buf bytes.Buffer
	shutdown, err := Init(context.Background(), Config{Enabled: true, ServiceName: "quantfuse-test", Writer: &buf}, "test")
	require.NoError(t, err)

	ctx, span := StartSpan(context.Background(), "gateway.quote")
	traceID, spanID, ok := TraceFields(ctx)
	assert.True(t, ok)
	assert.NotEmpty(t, traceID)
	assert.NotEmpty(t, spanID)
	span.End()

	require.NoError(t, shutdown(context.Background()))
	assert.Contains(t, buf.String(), "gateway.quote")
	assert.Contains(t, buf.String(), "quantfuse-test")
}
