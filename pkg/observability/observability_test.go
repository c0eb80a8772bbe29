package observability

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

func recordSpans(t *testing.T) *tracetest.SpanRecorder {
	t.Helper()
	recorder := tracetest.NewSpanRecorder()
	prev := otel.GetTracerProvider()
	otel.SetTracerProvider(sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder)))
	t.Cleanup(func() { otel.SetTracerProvider(prev) })
	return recorder
}

func TestTraceRecordsAttributes(t *testing.T) {
	recorder := recordSpans(t)

	err := Trace(context.Background(), "tidy", func(ctx context.Context, span *Span) error {
		span.SetAttribute("rows", 4)
		span.SetAttribute("source", "json")
		span.SetAttribute("exclude", []string{"a"})
		return nil
	})
	require.NoError(t, err)

	spans := recorder.Ended()
	require.Len(t, spans, 1)
	assert.Equal(t, "tidy", spans[0].Name())
	assert.Equal(t, codes.Ok, spans[0].Status().Code)

	attrs := map[string]string{}
	for _, kv := range spans[0].Attributes() {
		attrs[string(kv.Key)] = kv.Value.Emit()
	}
	assert.Equal(t, "4", attrs["rows"])
	assert.Equal(t, "json", attrs["source"])
}

func TestTraceRecordsError(t *testing.T) {
	recorder := recordSpans(t)

	boom := errors.New("boom")
	err := Trace(context.Background(), "write", func(context.Context, *Span) error { return boom })
	assert.ErrorIs(t, err, boom)

	spans := recorder.Ended()
	require.Len(t, spans, 1)
	assert.Equal(t, codes.Error, spans[0].Status().Code)
	assert.Equal(t, "boom", spans[0].Status().Description)
	require.NotEmpty(t, spans[0].Events())
	assert.Equal(t, "exception", spans[0].Events()[0].Name)
}

func TestNestedSpans(t *testing.T) {
	recorder := recordSpans(t)

	ctx, parent := StartSpan(context.Background(), "run")
	_, child := StartSpan(ctx, "read")
	child.End(nil)
	parent.End(nil)

	spans := recorder.Ended()
	require.Len(t, spans, 2)
	assert.Equal(t, "read", spans[0].Name())
	assert.Equal(t, spans[1].SpanContext().SpanID(), spans[0].Parent().SpanID())
}

func TestInitTracingExportsToWriter(t *testing.T) {
	prev := otel.GetTracerProvider()
	t.Cleanup(func() { otel.SetTracerProvider(prev) })

	var buf bytes.Buffer
	cfg := DefaultTracingConfig("test")
	cfg.Writer = &buf
	cfg.PrettyPrint = false

	shutdown, err := InitTracing(cfg)
	require.NoError(t, err)

	_, span := StartSpan(context.Background(), "run")
	span.End(nil)

	require.NoError(t, shutdown(context.Background()))
	assert.Contains(t, buf.String(), `"Name":"run"`)
	assert.Contains(t, buf.String(), "tidify")
}
