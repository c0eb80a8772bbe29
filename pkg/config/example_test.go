package config_test

import (
	"fmt"

	"github.com/ajitpratap0/tidify/pkg/config"
)

// ExampleNewConfig demonstrates the defaults of a new configuration.
func ExampleNewConfig() {
	cfg := config.NewConfig()

	fmt.Printf("Separator: %s\n", cfg.Flatten.Separator)
	fmt.Printf("Index suffix: %s\n", cfg.Flatten.IndexSuffix)
	fmt.Printf("Collision: %s\n", cfg.Flatten.Collision)
	fmt.Printf("Connection timeout: %s\n", cfg.Timeouts.Connection)

	// Output:
	// Separator: .
	// Index suffix: index
	// Collision: overwrite
	// Connection timeout: 10s
}

// ExampleConfig_Validate shows a configuration rejected before any work.
func ExampleConfig_Validate() {
	cfg := config.NewConfig()
	cfg.Flatten.Collision = "merge"

	fmt.Println(cfg.Validate())

	// Output:
	// config: flatten.collision must be overwrite or error
}

// ExampleOutputConfig_OutputFormat shows format inference from the path.
func ExampleOutputConfig_OutputFormat() {
	for _, path := range []string{"-", "out.parquet", "rows.jsonl.gz", "s3://bucket/t.csv"} {
		out := config.OutputConfig{Path: path}
		fmt.Println(path, out.OutputFormat())
	}

	// Output:
	// - csv
	// out.parquet parquet
	// rows.jsonl.gz jsonl
	// s3://bucket/t.csv csv
}
