package json

import (
	"bufio"
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/ajitpratap0/tidify/pkg/config"
	"github.com/ajitpratap0/tidify/pkg/connector/core"
	"github.com/ajitpratap0/tidify/pkg/nested"
	"github.com/ajitpratap0/tidify/pkg/tidy"
)

func sampleTable() *tidy.Table {
	return &tidy.Table{
		Columns: []string{"z", "a.b", "note"},
		Rows: [][]nested.Scalar{
			{nested.Int(1), nested.String(`x"y`), nested.Null()},
			{nested.Float(0.5), nested.Bool(false), nested.Absent()},
		},
	}
}

func TestJSONLinesDestination(t *testing.T) {
	cfg := config.NewConfig()
	cfg.Output.Path = filepath.Join(t.TempDir(), "rows.jsonl")

	dst, err := NewJSONLinesDestination(cfg, core.Deps{Logger: zaptest.NewLogger(t)})
	require.NoError(t, err)
	require.NoError(t, dst.Write(context.Background(), sampleTable()))
	require.NoError(t, dst.Close(context.Background()))

	data, err := os.ReadFile(cfg.Output.Path)
	require.NoError(t, err)
	assert.Equal(t,
		`{"z":1,"a.b":"x\"y","note":null}`+"\n"+
			`{"z":0.5,"a.b":false}`+"\n",
		string(data))
}

func TestJSONTableDestination(t *testing.T) {
	cfg := config.NewConfig()
	cfg.Output.Path = filepath.Join(t.TempDir(), "table.json")

	dst, err := NewJSONTableDestination(cfg, core.Deps{})
	require.NoError(t, err)
	require.NoError(t, dst.Write(context.Background(), sampleTable()))

	data, err := os.ReadFile(cfg.Output.Path)
	require.NoError(t, err)
	assert.JSONEq(t,
		`{"columns":["z","a.b","note"],"rows":[[1,"x\"y",null],[0.5,false,null]]}`,
		string(data))
}

func TestJSONTableEmpty(t *testing.T) {
	var buf bytes.Buffer
	w := bufio.NewWriter(&buf)
	require.NoError(t, writeTable(w, &tidy.Table{}))
	require.NoError(t, w.Flush())
	assert.Equal(t, `{"columns":[],"rows":[]}`+"\n", buf.String())
}
