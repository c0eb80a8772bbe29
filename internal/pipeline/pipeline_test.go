package pipeline

import (
	"context"
	"errors"
	"testing"

	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/ajitpratap0/tidify/pkg/metrics"
	"github.com/ajitpratap0/tidify/pkg/nested"
	"github.com/ajitpratap0/tidify/pkg/tidy"
	"github.com/ajitpratap0/tidify/pkg/tidyerrors"
)

type fakeSource struct {
	value  nested.Value
	err    error
	closed bool
}

func (s *fakeSource) Name() string { return "fake-in" }

func (s *fakeSource) Read(context.Context) (nested.Value, error) { return s.value, s.err }

func (s *fakeSource) Close(context.Context) error {
	s.closed = true
	return nil
}

type fakeDestination struct {
	table  *tidy.Table
	err    error
	closed bool
}

func (d *fakeDestination) Name() string { return "fake-out" }

func (d *fakeDestination) Write(_ context.Context, t *tidy.Table) error {
	d.table = t
	return d.err
}

func (d *fakeDestination) Close(context.Context) error {
	d.closed = true
	return errors.New("close failed")
}

func metricValue(t *testing.T, c *metrics.Collector, name string) float64 {
	t.Helper()
	families, err := c.Registry().Gather()
	require.NoError(t, err)

	var total float64
	for _, mf := range families {
		if mf.GetName() != name {
			continue
		}
		for _, m := range mf.GetMetric() {
			total += sampleValue(mf.GetType(), m)
		}
	}
	return total
}

func sampleValue(typ dto.MetricType, m *dto.Metric) float64 {
	switch typ {
	case dto.MetricType_COUNTER:
		return m.GetCounter().GetValue()
	case dto.MetricType_GAUGE:
		return m.GetGauge().GetValue()
	case dto.MetricType_HISTOGRAM:
		return float64(m.GetHistogram().GetSampleCount())
	default:
		return 0
	}
}

// pets: two records, two pets each.
func petsValue() nested.Value {
	return nested.Seq(
		nested.Map(
			nested.E("name", nested.Str("Ann")),
			nested.E("pets", nested.Seq(nested.Str("cat"), nested.Str("dog"))),
		),
		nested.Map(
			nested.E("name", nested.Str("Bob")),
			nested.E("pets", nested.Seq(nested.Str("fish"))),
		),
	)
}

func TestRun(t *testing.T) {
	recorder := tracetest.NewSpanRecorder()
	prev := otel.GetTracerProvider()
	otel.SetTracerProvider(sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder)))
	t.Cleanup(func() { otel.SetTracerProvider(prev) })

	src := &fakeSource{value: petsValue()}
	dst := &fakeDestination{}
	collector := metrics.NewCollector("tidify")

	p := New(src, dst, tidy.DefaultOptions(), nil, collector)
	summary, err := p.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, "fake-in", summary.Source)
	assert.Equal(t, "fake-out", summary.Destination)
	assert.Equal(t, 3, summary.Rows)
	assert.Equal(t, []string{"name", "pets", "pets.index", "index"}, dst.table.Columns)
	assert.Equal(t, dst.table.Width(), summary.Columns)
	require.Len(t, summary.Stages, 3)
	assert.Equal(t, StageRead, summary.Stages[0].Stage)
	assert.Equal(t, StageWrite, summary.Stages[2].Stage)

	assert.Equal(t, 1.0, metricValue(t, collector, "tidify_runs_total"))
	assert.Equal(t, 3.0, metricValue(t, collector, "tidify_rows_total"))
	assert.Equal(t, 4.0, metricValue(t, collector, "tidify_columns"))
	assert.Equal(t, 3.0, metricValue(t, collector, "tidify_stage_duration_seconds"))

	var names []string
	for _, s := range recorder.Ended() {
		names = append(names, s.Name())
	}
	assert.Equal(t, []string{"tidify.read", "tidify.tidy", "tidify.write", "tidify.run"}, names)

	err = p.Close(context.Background())
	assert.EqualError(t, err, "close failed")
	assert.True(t, src.closed)
	assert.True(t, dst.closed)
}

func TestRunWarnsOncePerCollidingColumn(t *testing.T) {
	core, logs := observer.New(zapcore.WarnLevel)
	record := nested.Map(
		nested.E("a.b", nested.IntValue(1)),
		nested.E("a", nested.Map(nested.E("b", nested.IntValue(2)))),
	)
	src := &fakeSource{value: nested.Seq(record, record)}
	dst := &fakeDestination{}
	collector := metrics.NewCollector("tidify")

	var seen []string
	opts := tidy.DefaultOptions()
	opts.OnCollision = func(column string) { seen = append(seen, column) }

	summary, err := New(src, dst, opts, zap.New(core), collector).Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 2, summary.Collisions)
	assert.Equal(t, []string{"a.b", "a.b"}, seen, "caller hooks still run")
	assert.Equal(t, 2.0, metricValue(t, collector, "tidify_column_collisions_total"))
	require.Equal(t, 1, logs.FilterMessage("column collision").Len())
	assert.Equal(t, "a.b", logs.All()[0].ContextMap()["column"])
}

func TestRunCollisionError(t *testing.T) {
	src := &fakeSource{value: nested.Map(
		nested.E("a.b", nested.IntValue(1)),
		nested.E("a", nested.Map(nested.E("b", nested.IntValue(2)))),
	)}
	dst := &fakeDestination{}
	collector := metrics.NewCollector("tidify")

	opts := tidy.DefaultOptions()
	opts.Collision = tidy.CollisionError
	summary, err := New(src, dst, opts, nil, collector).Run(context.Background())

	assert.True(t, tidyerrors.IsType(err, tidyerrors.ErrorTypeConflict))
	assert.Equal(t, 1, summary.Collisions)
	assert.Nil(t, dst.table, "nothing is written after a failed stage")
	assert.Equal(t, 1.0, metricValue(t, collector, "tidify_runs_total"))
	assert.Equal(t, 0.0, metricValue(t, collector, "tidify_rows_total"))
}

func TestRunStageErrors(t *testing.T) {
	readErr := tidyerrors.New(tidyerrors.ErrorTypeFile, "missing input")
	src := &fakeSource{err: readErr}
	dst := &fakeDestination{}

	summary, err := New(src, dst, tidy.Options{}, nil, nil).Run(context.Background())
	assert.ErrorIs(t, err, readErr)
	assert.Len(t, summary.Stages, 1)

	writeErr := tidyerrors.New(tidyerrors.ErrorTypeConnection, "upload failed")
	src = &fakeSource{value: nested.Str("x")}
	dst = &fakeDestination{err: writeErr}
	summary, err = New(src, dst, tidy.Options{}, nil, nil).Run(context.Background())
	assert.ErrorIs(t, err, writeErr)
	assert.Equal(t, 1, summary.Rows)
	assert.Len(t, summary.Stages, 3)
}
