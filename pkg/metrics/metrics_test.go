package metrics

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCollectorCounts(t *testing.T) {
	c := NewCollector("tidify")

	c.RecordRun("success")
	c.RecordRun("success")
	c.RecordRun("failure")
	c.AddRows("json", "csv", 4)
	c.AddRows("json", "csv", 2)
	c.SetColumns("json", "csv", 7)
	c.IncCollisions()

	assert.Equal(t, 2.0, testutil.ToFloat64(c.runs.WithLabelValues("success")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.runs.WithLabelValues("failure")))
	assert.Equal(t, 6.0, testutil.ToFloat64(c.rows.WithLabelValues("json", "csv")))
	assert.Equal(t, 7.0, testutil.ToFloat64(c.columns.WithLabelValues("json", "csv")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.collisions))
}

func TestCollectorsAreIndependent(t *testing.T) {
	a := NewCollector("tidify")
	b := NewCollector("tidify")

	a.IncCollisions()
	assert.Equal(t, 0.0, testutil.ToFloat64(b.collisions))
}

func TestWriteText(t *testing.T) {
	c := NewCollector("tidify")
	c.RecordRun("success")
	c.ObserveStage("tidy", 3*time.Millisecond)

	expected := `
# HELP tidify_runs_total Total number of runs
# TYPE tidify_runs_total counter
tidify_runs_total{status="success"} 1
`
	require.NoError(t, testutil.GatherAndCompare(c.Registry(), strings.NewReader(expected), "tidify_runs_total"))

	var buf bytes.Buffer
	require.NoError(t, c.WriteText(&buf))
	out := buf.String()
	assert.Contains(t, out, `tidify_runs_total{status="success"} 1`)
	assert.Contains(t, out, `tidify_stage_duration_seconds_count{stage="tidy"} 1`)
	assert.Less(t, strings.Index(out, "tidify_column_collisions_total"), strings.Index(out, "tidify_runs_total"))
}

func TestWriteFile(t *testing.T) {
	c := NewCollector("tidify")
	c.AddRows("yaml", "grid", 3)

	path := filepath.Join(t.TempDir(), "tidify.prom")
	require.NoError(t, c.WriteFile(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `tidify_rows_total{destination="grid",source="yaml"} 3`)

	_, err = os.Stat(path + ".tmp")
	assert.True(t, os.IsNotExist(err))

	assert.Error(t, c.WriteFile(filepath.Join(t.TempDir(), "missing", "x.prom")))
}

func TestTimer(t *testing.T) {
	timer := NewTimer("read")
	time.Sleep(time.Millisecond)
	assert.Equal(t, "read", timer.Name())
	assert.GreaterOrEqual(t, timer.Stop(), time.Millisecond)
}
