package tracing

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
)

func TestInitTracer_SinEndpointEsNoop(t *testing.T) {
	tp, err := InitTracer(Config{ServiceName: "retail-ledger"})
	require.NoError(t, err)
	_, isSDK := tp.(*sdktrace.TracerProvider)
	assert.False(t, isSDK)
	assert.NoError(t, Shutdown(context.Background(), tp))
}

func TestInitTracer_ConEndpoint(t *testing.T) {
	tp, err := InitTracer(Config{
		ServiceName:    "retail-ledger",
		JaegerEndpoint: "http://localhost:14268/api/traces",
		SampleRatio:    0.5,
	})
	require.NoError(t, err)
	_, isSDK := tp.(*sdktrace.TracerProvider)
	assert.True(t, isSDK)
	assert.NoError(t, Shutdown(context.Background(), tp))
}
