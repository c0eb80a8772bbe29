package csv

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/ajitpratap0/tidify/pkg/compression"
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
			{nested.Int(0), nested.String("Ann, Jr."), nested.Null()},
			{nested.Int(1), nested.String(`say "hi"`), nested.Absent()},
			{nested.Int(2), nested.Bool(true), nested.Float(2.5)},
		},
	}
}

const sampleCSV = "index,name,note\n" +
	"0,\"Ann, Jr.\",\n" +
	"1,\"say \"\"hi\"\"\",\n" +
	"2,true,2.5\n"

func TestCSVDestinationFile(t *testing.T) {
	cfg := config.NewConfig()
	cfg.Output.Path = filepath.Join(t.TempDir(), "out.csv")

	dst, err := NewCSVDestination(cfg, core.Deps{Logger: zaptest.NewLogger(t)})
	require.NoError(t, err)
	require.NoError(t, dst.Write(context.Background(), sampleTable()))
	require.NoError(t, dst.Close(context.Background()))

	data, err := os.ReadFile(cfg.Output.Path)
	require.NoError(t, err)
	assert.Equal(t, sampleCSV, string(data))
}

func TestCSVDestinationStdoutCompressed(t *testing.T) {
	var out bytes.Buffer
	opener := storage.NewOpener(storage.Options{}, nil)
	opener.Stdout = &out

	cfg := config.NewConfig()
	cfg.Output.Compression = "gzip"
	dst, err := NewCSVDestination(cfg, core.Deps{Storage: opener})
	require.NoError(t, err)
	require.NoError(t, dst.Write(context.Background(), sampleTable()))

	data, err := compression.Decompress(compression.Gzip, out.Bytes())
	require.NoError(t, err)
	assert.Equal(t, sampleCSV, string(data))
}

func TestCSVDestinationEmptyTable(t *testing.T) {
	var out bytes.Buffer
	require.NoError(t, writeCSV(context.Background(), &out, &tidy.Table{Columns: []string{"a"}}))
	assert.Equal(t, "a\n", out.String())
}

func TestCSVDestinationCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var out bytes.Buffer
	err := writeCSV(ctx, &out, sampleTable())
	assert.True(t, tidyerrors.IsType(err, tidyerrors.ErrorTypeTimeout))
}
