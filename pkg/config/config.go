package config

import (
	"time"

	"github.com/ajitpratap0/tidify/pkg/tidy"
	"github.com/ajitpratap0/tidify/pkg/tidyerrors"
)

// Config is the complete configuration of one tidify run. The same
// structure is read from YAML files, JSON, viper (file plus TIDIFY_*
// environment variables) and CLI flags.
type Config struct {
	// Flatten controls how nested values become rows and columns
	Flatten FlattenConfig `yaml:"flatten" json:"flatten" mapstructure:"flatten"`

	// Input describes where the nested value comes from
	Input InputConfig `yaml:"input" json:"input" mapstructure:"input"`

	// Output describes where the table goes
	Output OutputConfig `yaml:"output" json:"output" mapstructure:"output"`

	// Storage configures object storage access
	Storage StorageConfig `yaml:"storage" json:"storage" mapstructure:"storage"`

	// Observability settings for logs, metrics and traces
	Observability ObservabilityConfig `yaml:"observability" json:"observability" mapstructure:"observability"`

	// Timeouts bound the run and the connections it opens
	Timeouts TimeoutConfig `yaml:"timeouts" json:"timeouts" mapstructure:"timeouts"`
}

// FlattenConfig mirrors tidy.Options in serializable form.
type FlattenConfig struct {
	// Separator joins path segments into column names
	Separator string `yaml:"separator" json:"separator" mapstructure:"separator"`
	// RootColumn names the column of a scalar at the root
	RootColumn string `yaml:"root_column" json:"root_column" mapstructure:"root_column"`
	// IndexSuffix names sequence position columns
	IndexSuffix string `yaml:"index_suffix" json:"index_suffix" mapstructure:"index_suffix"`
	// Exclude lists column paths to skip
	Exclude []string `yaml:"exclude" json:"exclude" mapstructure:"exclude"`
	// Collision is "overwrite" or "error"
	Collision string `yaml:"collision" json:"collision" mapstructure:"collision"`
	// SortColumns orders columns instead of keeping first-seen order
	SortColumns bool `yaml:"sort_columns" json:"sort_columns" mapstructure:"sort_columns"`
	// MaxRows bounds the row expansion (0 = unlimited)
	MaxRows int `yaml:"max_rows" json:"max_rows" mapstructure:"max_rows"`
}

// TimeoutConfig contains all timeout-related settings.
type TimeoutConfig struct {
	// Run bounds the whole run (0 = none)
	Run time.Duration `yaml:"run" json:"run" mapstructure:"run"`
	// Connection bounds establishing database and storage connections
	Connection time.Duration `yaml:"connection" json:"connection" mapstructure:"connection"`
}

// ObservabilityConfig contains monitoring and observability settings.
type ObservabilityConfig struct {
	// LogLevel sets logging verbosity (debug, info, warn, error)
	LogLevel string `yaml:"log_level" json:"log_level" mapstructure:"log_level"`
	// LogEncoding is json or console
	LogEncoding string `yaml:"log_encoding" json:"log_encoding" mapstructure:"log_encoding"`
	// MetricsFile receives the metrics in Prometheus text format after the run
	MetricsFile string `yaml:"metrics_file" json:"metrics_file" mapstructure:"metrics_file"`
	// Trace prints spans to stderr
	Trace bool `yaml:"trace" json:"trace" mapstructure:"trace"`
}

// NewConfig returns a Config with defaults: JSON from stdin, CSV to
// stdout, default flatten options.
func NewConfig() *Config {
	return &Config{
		Flatten: FlattenConfig{
			Separator:   tidy.DefaultSeparator,
			RootColumn:  tidy.DefaultRootColumn,
			IndexSuffix: tidy.DefaultIndexSuffix,
			Collision:   string(tidy.CollisionOverwrite),
		},
		Input: InputConfig{
			Path: "-",
			Mongo: MongoConfig{
				Filter: "{}",
			},
		},
		Output: OutputConfig{
			Path: "-",
			Grid: GridConfig{
				MaxRows:  50,
				MaxWidth: 40,
			},
			Postgres: PostgresConfig{
				Schema:      "public",
				CreateTable: true,
			},
			Columnar: ColumnarConfig{
				Compression: "snappy",
				BatchSize:   10000,
			},
		},
		Storage: StorageConfig{
			Concurrency: 5,
		},
		Observability: ObservabilityConfig{
			LogLevel:    "info",
			LogEncoding: "json",
		},
		Timeouts: TimeoutConfig{
			Connection: 10 * time.Second,
		},
	}
}

// Validate validates the configuration for correctness.
func (c *Config) Validate() error {
	if c.Flatten.Separator == "" {
		return configError("flatten.separator is required")
	}
	if c.Flatten.IndexSuffix == "" {
		return configError("flatten.index_suffix is required")
	}
	if c.Flatten.MaxRows < 0 {
		return configError("flatten.max_rows cannot be negative")
	}
	switch tidy.CollisionPolicy(c.Flatten.Collision) {
	case "", tidy.CollisionOverwrite, tidy.CollisionError:
	default:
		return configError("flatten.collision must be overwrite or error").
			WithDetail("collision", c.Flatten.Collision)
	}

	if c.Input.Path == "" && c.Input.Format != "mongodb" {
		return configError("input.path is required")
	}
	if c.Input.Format == "mongodb" {
		if err := c.Input.Mongo.Validate(); err != nil {
			return err
		}
	}

	if c.Output.Path == "" && c.Output.Format != "postgresql" {
		return configError("output.path is required")
	}
	if c.Output.Format == "postgresql" {
		if err := c.Output.Postgres.Validate(); err != nil {
			return err
		}
	}

	if c.Output.Columnar.BatchSize < 0 {
		return configError("output.columnar.batch_size cannot be negative")
	}
	if c.Storage.Concurrency < 0 {
		return configError("storage.concurrency cannot be negative")
	}

	if c.Timeouts.Run < 0 || c.Timeouts.Connection < 0 {
		return configError("timeouts cannot be negative")
	}
	return nil
}

// ToOptions converts the flatten section to tidy.Options.
func (c *Config) ToOptions() tidy.Options {
	return tidy.Options{
		Separator:   c.Flatten.Separator,
		RootColumn:  c.Flatten.RootColumn,
		IndexSuffix: c.Flatten.IndexSuffix,
		Exclude:     append([]string(nil), c.Flatten.Exclude...),
		Collision:   tidy.CollisionPolicy(c.Flatten.Collision),
		SortColumns: c.Flatten.SortColumns,
		MaxRows:     c.Flatten.MaxRows,
	}
}

func configError(msg string) *tidyerrors.Error {
	return tidyerrors.New(tidyerrors.ErrorTypeConfig, msg)
}
