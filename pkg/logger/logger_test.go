package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/trace"
)

func decodeLine(t *testing.T, buf *bytes.Buffer) map[string]any {
	t.Helper()
	var m map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &m))
	return m
}

func TestNew_JSONConServicioYComponente(t *testing.T) {
	var buf bytes.Buffer
	log := New(Config{Env: "production", Level: "info", Service: "retail-ledger", Output: &buf})

	log.Named("transaction").Info().Str("transaction_id", "t1").Msg("APPLIED")

	m := decodeLine(t, &buf)
	assert.Equal(t, "retail-ledger", m["service"])
	assert.Equal(t, "transaction", m["component"])
	assert.Equal(t, "t1", m["transaction_id"])
	assert.Equal(t, "info", m["level"])
}

func TestNew_RespetaNivel(t *testing.T) {
	var buf bytes.Buffer
	log := New(Config{Env: "production", Level: "warn", Output: &buf})
	log.Info().Msg("descartado")
	assert.Zero(t, buf.Len())
}

func TestWithContext_AgregaTraza(t *testing.T) {
	var buf bytes.Buffer
	log := New(Config{Env: "production", Level: "debug", Output: &buf})

	sc := trace.NewSpanContext(trace.SpanContextConfig{
		TraceID:    trace.TraceID{0x01, 0x02, 0x03, 0x04, 0x05, 0x06, 0x07, 0x08, 0x09, 0x0a, 0x0b, 0x0c, 0x0d, 0x0e, 0x0f, 0x10},
		SpanID:     trace.SpanID{0x01, 0x02, 0x03, 0x04, 0x05, 0x06, 0x07, 0x08},
		TraceFlags: trace.FlagsSampled,
	})
	ctx := trace.ContextWithSpanContext(context.Background(), sc)

	log.WithContext(ctx).Debug().Msg("con traza")
	m := decodeLine(t, &buf)
	assert.Equal(t, "0102030405060708090a0b0c0d0e0f10", m["trace_id"])
	assert.Equal(t, "0102030405060708", m["span_id"])

	assert.Same(t, log, log.WithContext(context.Background()))
}
