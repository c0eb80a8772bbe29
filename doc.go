// Package tidify turns nested documents into tidy tables.
//
// A nested value (mappings, sequences and scalars, as decoded from JSON,
// YAML, MongoDB or a columnar file) is flattened so that every scalar
// path becomes a column and every sequence element becomes a row. Keys
// along a path are joined with a separator ("." by default) and each
// sequence contributes a position column named after it ("tags.index").
// Sibling sequences multiply: their rows are cross joined.
//
//	{"id": 1, "tags": ["a", "b"]}
//
// becomes
//
//	id  tags  tags.index
//	1   a     0
//	1   b     1
//
// # Quick Start
//
//	tidify run --input orders.json --output orders.csv
//	cat doc.yaml | tidify run --input-format yaml --output-format grid
//	tidify run --config tidify.yaml --output s3://bucket/orders.parquet
//
// From Go:
//
//	v, err := nested.DecodeJSON(r)
//	if err != nil {
//		return err
//	}
//	table, err := tidy.Tidify(v, tidy.DefaultOptions())
//
// # Key Packages
//
//	pkg/nested       - Nested value model and JSON/YAML decoding
//	pkg/tidy         - Flattening, column ordering and table assembly
//	pkg/connector    - Sources and destinations, registered by name
//	pkg/formats      - Arrow, Parquet and Avro table codecs
//	pkg/storage      - Local, stdio, S3 and GCS locations
//	pkg/compression  - Stream compression (gzip, zstd, snappy, s2, lz4)
//	pkg/config       - Run configuration from YAML, env and flags
//	pkg/tidyerrors   - Structured error types
//	pkg/logger       - Structured logging
//	pkg/metrics      - Prometheus run metrics
//	internal/pipeline - Read, tidy and write stages of one run
//
// # Configuration
//
// Settings are read from defaults, an optional YAML or JSON file,
// TIDIFY_* environment variables and command-line flags, in increasing
// precedence. Files may reference environment variables with
// ${VAR_NAME}.
package tidify
