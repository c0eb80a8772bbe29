package grid

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ajitpratap0/tidify/pkg/config"
	"github.com/ajitpratap0/tidify/pkg/connector/core"
	"github.com/ajitpratap0/tidify/pkg/nested"
	"github.com/ajitpratap0/tidify/pkg/storage"
	"github.com/ajitpratap0/tidify/pkg/tidy"
	"github.com/ajitpratap0/tidify/pkg/tidyerrors"
)

func sampleTable() *tidy.Table {
	return &tidy.Table{
		Columns: []string{"index", "name", "note"},
		Rows: [][]nested.Scalar{
			{nested.Int(0), nested.String("Ann"), nested.Null()},
			{nested.Int(1), nested.String("Bartholomew"), nested.Absent()},
			{nested.Int(2), nested.String("Cy"), nested.String("two\nlines")},
		},
	}
}

func TestRender(t *testing.T) {
	var buf bytes.Buffer
	render(&buf, sampleTable(), config.GridConfig{NoColor: true})
	assert.Equal(t,
		"index  name         note\n"+
			"─────  ───────────  ──────────\n"+
			"0      Ann          null\n"+
			"1      Bartholomew  \n"+
			"2      Cy           two\\nlines\n",
		buf.String())
}

func TestRenderLimits(t *testing.T) {
	var buf bytes.Buffer
	render(&buf, sampleTable(), config.GridConfig{NoColor: true, MaxRows: 2, MaxWidth: 6})
	assert.Equal(t,
		"index  name    note\n"+
			"─────  ──────  ────\n"+
			"0      Ann     null\n"+
			"1      Barth…  \n"+
			"… 1 more rows\n",
		buf.String())
}

func TestRenderNoColumns(t *testing.T) {
	var buf bytes.Buffer
	render(&buf, &tidy.Table{Rows: [][]nested.Scalar{{}}}, config.GridConfig{})
	assert.Equal(t, "(1 rows, no columns)\n", buf.String())
}

func TestGridDestinationStdout(t *testing.T) {
	var out bytes.Buffer
	opener := storage.NewOpener(storage.Options{}, nil)
	opener.Stdout = &out

	cfg := config.NewConfig()
	cfg.Output.Grid.NoColor = true
	dst, err := NewGridDestination(cfg, core.Deps{Storage: opener})
	require.NoError(t, err)
	require.NoError(t, dst.Write(context.Background(), sampleTable()))
	require.NoError(t, dst.Close(context.Background()))
	assert.Contains(t, out.String(), "Bartholomew")

	cfg.Output.Grid.MaxRows = -1
	_, err = NewGridDestination(cfg, core.Deps{})
	assert.True(t, tidyerrors.IsType(err, tidyerrors.ErrorTypeConfig))
}
