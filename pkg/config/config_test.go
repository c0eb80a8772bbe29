package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ajitpratap0/tidify/pkg/tidy"
	"github.com/ajitpratap0/tidify/pkg/tidyerrors"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestNewConfigIsValid(t *testing.T) {
	require.NoError(t, NewConfig().Validate())
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"empty separator", func(c *Config) { c.Flatten.Separator = "" }},
		{"empty index suffix", func(c *Config) { c.Flatten.IndexSuffix = "" }},
		{"negative max rows", func(c *Config) { c.Flatten.MaxRows = -1 }},
		{"bad collision", func(c *Config) { c.Flatten.Collision = "first" }},
		{"missing input", func(c *Config) { c.Input.Path = "" }},
		{"mongo without uri", func(c *Config) { c.Input.Format = "mongodb" }},
		{"postgres without dsn", func(c *Config) { c.Output.Format = "postgresql" }},
		{"negative timeout", func(c *Config) { c.Timeouts.Run = -time.Second }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := NewConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			require.Error(t, err)
			assert.True(t, tidyerrors.IsType(err, tidyerrors.ErrorTypeConfig))
		})
	}
}

func TestToOptions(t *testing.T) {
	cfg := NewConfig()
	cfg.Flatten.Separator = "_"
	cfg.Flatten.Exclude = []string{"a.b"}
	cfg.Flatten.Collision = "error"
	cfg.Flatten.MaxRows = 10

	opts := cfg.ToOptions()
	assert.Equal(t, "_", opts.Separator)
	assert.Equal(t, tidy.CollisionError, opts.Collision)
	assert.Equal(t, []string{"a.b"}, opts.Exclude)
	assert.Equal(t, 10, opts.MaxRows)
	require.NoError(t, opts.Validate())

	opts.Exclude[0] = "changed"
	assert.Equal(t, "a.b", cfg.Flatten.Exclude[0], "options do not alias the config")
}

func TestLoadYAML(t *testing.T) {
	t.Setenv("TIDIFY_TEST_DSN", "postgres://u:p@db/x")

	path := writeFile(t, "tidify.yaml", `
flatten:
  separator: "/"
  exclude: [secrets]
input:
  path: events.jsonl
output:
  format: postgresql
  postgres:
    dsn: ${TIDIFY_TEST_DSN}
    table: events
timeouts:
  run: 2m
`)

	cfg, err := LoadYAML(path)
	require.NoError(t, err)
	assert.Equal(t, "/", cfg.Flatten.Separator)
	assert.Equal(t, "index", cfg.Flatten.IndexSuffix, "unset keys keep defaults")
	assert.Equal(t, []string{"secrets"}, cfg.Flatten.Exclude)
	assert.Equal(t, "postgres://u:p@db/x", cfg.Output.Postgres.DSN)
	assert.Equal(t, "public.events", cfg.Output.Postgres.QualifiedTable())
	assert.Equal(t, 2*time.Minute, cfg.Timeouts.Run)
	assert.Equal(t, "jsonl", cfg.Input.InputFormat())
}

func TestLoadYAMLErrors(t *testing.T) {
	_, err := LoadYAML(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.True(t, tidyerrors.IsType(err, tidyerrors.ErrorTypeFile))

	_, err = LoadYAML(writeFile(t, "bad.yaml", "flatten: [unclosed"))
	assert.True(t, tidyerrors.IsType(err, tidyerrors.ErrorTypeConfig))
}

func TestSaveYAMLRoundTrip(t *testing.T) {
	cfg := NewConfig()
	cfg.Flatten.SortColumns = true
	cfg.Flatten.Exclude = []string{"a.b"}
	cfg.Timeouts.Run = 90 * time.Second

	path := filepath.Join(t.TempDir(), "out.yaml")
	require.NoError(t, SaveYAML(path, cfg))

	loaded, err := LoadYAML(path)
	require.NoError(t, err)
	assert.Equal(t, cfg, loaded)
}

func TestLoadViperLayers(t *testing.T) {
	path := writeFile(t, "tidify.yaml", `
flatten:
  separator: "/"
  max_rows: 100
output:
  path: out.csv
`)
	t.Setenv("TIDIFY_FLATTEN_MAX_ROWS", "5")
	t.Setenv("TIDIFY_TIMEOUTS_RUN", "30s")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "/", cfg.Flatten.Separator, "file overrides defaults")
	assert.Equal(t, 5, cfg.Flatten.MaxRows, "environment overrides file")
	assert.Equal(t, 30*time.Second, cfg.Timeouts.Run)
	assert.Equal(t, "out.csv", cfg.Output.Path)
	assert.Equal(t, "index", cfg.Flatten.IndexSuffix)
}

func TestLoadViperJSON(t *testing.T) {
	path := writeFile(t, "tidify.json", `{"flatten": {"collision": "error"}}`)

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "error", cfg.Flatten.Collision)
}

func TestLoadWithoutFile(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "-", cfg.Input.Path)
	assert.Equal(t, ".", cfg.Flatten.Separator)
}

func TestFormatInference(t *testing.T) {
	tests := []struct {
		path string
		in   string
		out  string
	}{
		{"data.json", "json", "jsontab"},
		{"data.JSONL", "jsonl", "jsonl"},
		{"data.ndjson.zst", "jsonl", "jsonl"},
		{"conf.yml", "yaml", "csv"},
		{"gs://bucket/t.parquet", "parquet", "parquet"},
		{"noext", "json", "csv"},
		{"dir.v2/noext", "json", "csv"},
	}

	for _, tt := range tests {
		in := InputConfig{Path: tt.path}
		out := OutputConfig{Path: tt.path}
		assert.Equal(t, tt.in, in.InputFormat(), tt.path)
		assert.Equal(t, tt.out, out.OutputFormat(), tt.path)
	}

	explicit := InputConfig{Path: "x.json", Format: "yaml"}
	assert.Equal(t, "yaml", explicit.InputFormat())
}

func TestSubstituteEnvVars(t *testing.T) {
	t.Setenv("TIDIFY_A", "1")
	assert.Equal(t, "a=1 b= c=${", substituteEnvVars("a=${TIDIFY_A} b=${TIDIFY_UNSET_VAR} c=${"))
}
