package json

import (
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
	"github.com/ajitpratap0/tidify/pkg/tidyerrors"
)

func writeInput(t *testing.T, name string, data []byte) *config.Config {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, data, 0o600))
	cfg := config.NewConfig()
	cfg.Input.Path = path
	return cfg
}

func TestJSONSourceKeepsKeyOrder(t *testing.T) {
	cfg := writeInput(t, "doc.json", []byte(`{"z": 1, "a": {"y": true, "b": null}}`))
	deps := core.Deps{Logger: zaptest.NewLogger(t)}

	src, err := NewJSONSource(cfg, deps)
	require.NoError(t, err)
	defer src.Close(context.Background())
	assert.Equal(t, "json", src.Name())

	v, err := src.Read(context.Background())
	require.NoError(t, err)
	assert.Equal(t, nested.Mapping, v.Kind())
	assert.Equal(t, `{"z": 1, "a": {"y": true, "b": null}}`, v.String())
}

func TestJSONLinesSource(t *testing.T) {
	raw, err := compression.Compress(compression.Gzip, compression.Default, []byte("{\"a\":1}\n{\"a\":2}\n\n{\"b\":\"x\"}\n"))
	require.NoError(t, err)
	cfg := writeInput(t, "rows.jsonl.gz", raw)

	src, err := NewJSONLinesSource(cfg, core.Deps{})
	require.NoError(t, err)

	v, err := src.Read(context.Background())
	require.NoError(t, err)
	require.Equal(t, nested.Sequence, v.Kind())
	assert.Equal(t, 3, v.Len())
	second, ok := v.Index(1)
	require.True(t, ok)
	a, ok := second.Get("a")
	require.True(t, ok)
	assert.Equal(t, "2", a.Scalar().Text())
}

func TestJSONSourceErrors(t *testing.T) {
	cfg := writeInput(t, "bad.json", []byte(`{"a": [1, 2`))
	src, err := NewJSONSource(cfg, core.Deps{})
	require.NoError(t, err)
	_, err = src.Read(context.Background())
	assert.True(t, tidyerrors.IsType(err, tidyerrors.ErrorTypeData))

	cfg.Input.Path = filepath.Join(t.TempDir(), "missing.json")
	src, err = NewJSONSource(cfg, core.Deps{})
	require.NoError(t, err)
	_, err = src.Read(context.Background())
	assert.True(t, tidyerrors.IsType(err, tidyerrors.ErrorTypeFile))
}
