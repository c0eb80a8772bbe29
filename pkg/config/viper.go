package config

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"

	"github.com/ajitpratap0/tidify/pkg/tidyerrors"
)

// EnvPrefix prefixes environment overrides: flatten.separator is read
// from TIDIFY_FLATTEN_SEPARATOR.
const EnvPrefix = "TIDIFY"

// NewViper returns a viper instance holding the NewConfig defaults for
// every key, with environment overrides enabled. Callers may bind flags
// before calling Decode.
func NewViper() *viper.Viper {
	v := viper.New()

	d := NewConfig()
	v.SetDefault("flatten.separator", d.Flatten.Separator)
	v.SetDefault("flatten.root_column", d.Flatten.RootColumn)
	v.SetDefault("flatten.index_suffix", d.Flatten.IndexSuffix)
	v.SetDefault("flatten.exclude", []string{})
	v.SetDefault("flatten.collision", d.Flatten.Collision)
	v.SetDefault("flatten.sort_columns", d.Flatten.SortColumns)
	v.SetDefault("flatten.max_rows", d.Flatten.MaxRows)

	v.SetDefault("input.path", d.Input.Path)
	v.SetDefault("input.format", d.Input.Format)
	v.SetDefault("input.compression", d.Input.Compression)
	v.SetDefault("input.mongo.uri", d.Input.Mongo.URI)
	v.SetDefault("input.mongo.database", d.Input.Mongo.Database)
	v.SetDefault("input.mongo.collection", d.Input.Mongo.Collection)
	v.SetDefault("input.mongo.filter", d.Input.Mongo.Filter)
	v.SetDefault("input.mongo.limit", d.Input.Mongo.Limit)

	v.SetDefault("output.path", d.Output.Path)
	v.SetDefault("output.format", d.Output.Format)
	v.SetDefault("output.compression", d.Output.Compression)
	v.SetDefault("output.grid.max_rows", d.Output.Grid.MaxRows)
	v.SetDefault("output.grid.max_width", d.Output.Grid.MaxWidth)
	v.SetDefault("output.grid.no_color", d.Output.Grid.NoColor)
	v.SetDefault("output.postgres.dsn", d.Output.Postgres.DSN)
	v.SetDefault("output.postgres.schema", d.Output.Postgres.Schema)
	v.SetDefault("output.postgres.table", d.Output.Postgres.Table)
	v.SetDefault("output.postgres.create_table", d.Output.Postgres.CreateTable)
	v.SetDefault("output.postgres.truncate", d.Output.Postgres.Truncate)
	v.SetDefault("output.columnar.compression", d.Output.Columnar.Compression)
	v.SetDefault("output.columnar.batch_size", d.Output.Columnar.BatchSize)

	v.SetDefault("storage.region", d.Storage.Region)
	v.SetDefault("storage.endpoint", d.Storage.Endpoint)
	v.SetDefault("storage.credentials_file", d.Storage.CredentialsFile)
	v.SetDefault("storage.anonymous", d.Storage.Anonymous)
	v.SetDefault("storage.concurrency", d.Storage.Concurrency)

	v.SetDefault("observability.log_level", d.Observability.LogLevel)
	v.SetDefault("observability.log_encoding", d.Observability.LogEncoding)
	v.SetDefault("observability.metrics_file", d.Observability.MetricsFile)
	v.SetDefault("observability.trace", d.Observability.Trace)

	v.SetDefault("timeouts.run", d.Timeouts.Run)
	v.SetDefault("timeouts.connection", d.Timeouts.Connection)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	return v
}

// ReadFile merges a YAML or JSON configuration file into v after
// substituting ${VAR_NAME} references.
func ReadFile(v *viper.Viper, path string) error {
	data, err := os.ReadFile(path) //nolint:gosec // G304: File path is controlled by caller
	if err != nil {
		return tidyerrors.Wrap(err, tidyerrors.ErrorTypeFile, "failed to read config file").
			WithDetail("path", path)
	}

	configType := "yaml"
	if strings.EqualFold(filepath.Ext(path), ".json") {
		configType = "json"
	}
	v.SetConfigType(configType)

	if err := v.ReadConfig(bytes.NewReader([]byte(substituteEnvVars(string(data))))); err != nil {
		return tidyerrors.Wrap(err, tidyerrors.ErrorTypeConfig, "failed to parse config file").
			WithDetail("path", path)
	}
	return nil
}

// Decode unmarshals and validates the configuration held by v.
func Decode(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, tidyerrors.Wrap(err, tidyerrors.ErrorTypeConfig, "failed to unmarshal config")
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Load reads the configuration from defaults, the optional file at path,
// and TIDIFY_* environment variables, in increasing precedence.
func Load(path string) (*Config, error) {
	v := NewViper()
	if path != "" {
		if err := ReadFile(v, path); err != nil {
			return nil, err
		}
	}
	return Decode(v)
}
