package config

import (
	"strings"
)

// InputConfig selects the source connector.
type InputConfig struct {
	// Path is a local file, "-" for stdin, or an s3:// or gs:// URL
	Path string `yaml:"path" json:"path" mapstructure:"path"`
	// Format is json, jsonl, yaml, arrow, parquet, avro or mongodb; empty
	// means infer from Path
	Format string `yaml:"format" json:"format" mapstructure:"format"`
	// Compression is none, gzip, zstd, snappy, s2 or lz4; empty means infer from Path
	Compression string `yaml:"compression" json:"compression" mapstructure:"compression"`
	// Mongo configures the mongodb source
	Mongo MongoConfig `yaml:"mongo" json:"mongo" mapstructure:"mongo"`
}

// OutputConfig selects the destination connector.
type OutputConfig struct {
	// Path is a local file, "-" for stdout, or an s3:// or gs:// URL
	Path string `yaml:"path" json:"path" mapstructure:"path"`
	// Format is csv, jsonl, jsontab, grid, arrow, parquet, avro or postgresql;
	// empty means infer from Path
	Format string `yaml:"format" json:"format" mapstructure:"format"`
	// Compression applies to row formats; empty means infer from Path
	Compression string `yaml:"compression" json:"compression" mapstructure:"compression"`
	// Grid configures the terminal preview
	Grid GridConfig `yaml:"grid" json:"grid" mapstructure:"grid"`
	// Postgres configures the postgresql destination
	Postgres PostgresConfig `yaml:"postgres" json:"postgres" mapstructure:"postgres"`
	// Columnar configures arrow, parquet and avro output
	Columnar ColumnarConfig `yaml:"columnar" json:"columnar" mapstructure:"columnar"`
}

// StorageConfig configures access to s3:// and gs:// locations.
type StorageConfig struct {
	// Region overrides the AWS region from the environment
	Region string `yaml:"region" json:"region" mapstructure:"region"`
	// Endpoint points S3 at a compatible service (path-style addressing)
	// or GCS at an emulator
	Endpoint string `yaml:"endpoint" json:"endpoint" mapstructure:"endpoint"`
	// CredentialsFile is a GCS service account key file
	CredentialsFile string `yaml:"credentials_file" json:"credentials_file" mapstructure:"credentials_file"`
	// Anonymous disables GCS authentication
	Anonymous bool `yaml:"anonymous" json:"anonymous" mapstructure:"anonymous"`
	// Concurrency is the number of parallel S3 upload parts
	Concurrency int `yaml:"concurrency" json:"concurrency" mapstructure:"concurrency"`
}

// MongoConfig configures the mongodb source.
type MongoConfig struct {
	URI        string `yaml:"uri" json:"uri" mapstructure:"uri"`
	Database   string `yaml:"database" json:"database" mapstructure:"database"`
	Collection string `yaml:"collection" json:"collection" mapstructure:"collection"`
	// Filter is an extended JSON query document
	Filter string `yaml:"filter" json:"filter" mapstructure:"filter"`
	// Limit caps the number of documents (0 = all)
	Limit int64 `yaml:"limit" json:"limit" mapstructure:"limit"`
}

// Validate checks the required connection fields.
func (m *MongoConfig) Validate() error {
	switch {
	case m.URI == "":
		return configError("input.mongo.uri is required")
	case m.Database == "":
		return configError("input.mongo.database is required")
	case m.Collection == "":
		return configError("input.mongo.collection is required")
	case m.Limit < 0:
		return configError("input.mongo.limit cannot be negative")
	}
	return nil
}

// PostgresConfig configures the postgresql destination.
type PostgresConfig struct {
	DSN    string `yaml:"dsn" json:"dsn" mapstructure:"dsn"`
	Schema string `yaml:"schema" json:"schema" mapstructure:"schema"`
	Table  string `yaml:"table" json:"table" mapstructure:"table"`
	// CreateTable issues CREATE TABLE IF NOT EXISTS before loading
	CreateTable bool `yaml:"create_table" json:"create_table" mapstructure:"create_table"`
	// Truncate empties the table before loading
	Truncate bool `yaml:"truncate" json:"truncate" mapstructure:"truncate"`
}

// Validate checks the required connection fields.
func (p *PostgresConfig) Validate() error {
	if p.DSN == "" {
		return configError("output.postgres.dsn is required")
	}
	if p.Table == "" {
		return configError("output.postgres.table is required")
	}
	return nil
}

// QualifiedTable returns schema.table, or just the table without a schema.
func (p *PostgresConfig) QualifiedTable() string {
	if p.Schema == "" {
		return p.Table
	}
	return p.Schema + "." + p.Table
}

// GridConfig configures the grid destination.
type GridConfig struct {
	// MaxRows limits printed rows (0 = all)
	MaxRows int `yaml:"max_rows" json:"max_rows" mapstructure:"max_rows"`
	// MaxWidth truncates cells wider than this (0 = no limit)
	MaxWidth int `yaml:"max_width" json:"max_width" mapstructure:"max_width"`
	// NoColor disables ANSI colors
	NoColor bool `yaml:"no_color" json:"no_color" mapstructure:"no_color"`
}

// ColumnarConfig configures the typed columnar formats.
type ColumnarConfig struct {
	// Compression is the format's internal codec: snappy, gzip, zstd or
	// none for parquet; zstd, lz4 or none for arrow; snappy, deflate or
	// none for avro
	Compression string `yaml:"compression" json:"compression" mapstructure:"compression"`
	// BatchSize is the number of rows per record batch or row group
	BatchSize int `yaml:"batch_size" json:"batch_size" mapstructure:"batch_size"`
}

// inputFormats maps file extensions to source formats.
var inputFormats = map[string]string{
	".json":    "json",
	".jsonl":   "jsonl",
	".ndjson":  "jsonl",
	".yaml":    "yaml",
	".yml":     "yaml",
	".arrow":   "arrow",
	".ipc":     "arrow",
	".parquet": "parquet",
	".avro":    "avro",
}

// outputFormats maps file extensions to destination formats.
var outputFormats = map[string]string{
	".csv":     "csv",
	".jsonl":   "jsonl",
	".ndjson":  "jsonl",
	".json":    "jsontab",
	".arrow":   "arrow",
	".ipc":     "arrow",
	".parquet": "parquet",
	".avro":    "avro",
}

// compressionExtensions are stripped before the format extension is read.
var compressionExtensions = []string{".gz", ".zst", ".snappy", ".s2", ".lz4"}

// InputFormat returns the configured format or the one implied by Path.
func (i *InputConfig) InputFormat() string {
	if i.Format != "" {
		return i.Format
	}
	if f, ok := inputFormats[formatExtension(i.Path)]; ok {
		return f
	}
	return "json"
}

// OutputFormat returns the configured format or the one implied by Path.
func (o *OutputConfig) OutputFormat() string {
	if o.Format != "" {
		return o.Format
	}
	if o.Path == "-" || o.Path == "" {
		return "csv"
	}
	if f, ok := outputFormats[formatExtension(o.Path)]; ok {
		return f
	}
	return "csv"
}

func formatExtension(path string) string {
	lower := strings.ToLower(path)
	for _, ext := range compressionExtensions {
		if strings.HasSuffix(lower, ext) {
			lower = strings.TrimSuffix(lower, ext)
			break
		}
	}
	if i := strings.LastIndexByte(lower, '.'); i >= 0 && !strings.ContainsRune(lower[i:], '/') {
		return lower[i:]
	}
	return ""
}
