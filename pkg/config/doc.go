// Package config provides configuration management for tidify runs.
//
// A Config has five sections:
//   - Flatten: separator, root column, index suffix, exclusions, collision policy
//   - Input: source location, format, compression and MongoDB settings
//   - Output: destination location, format, compression and per-format settings
//   - Observability: log level and encoding, metrics file, tracing
//   - Timeouts: run and connection timeouts
//
// # Loading
//
// Load layers defaults, an optional YAML or JSON file and TIDIFY_*
// environment variables through viper:
//
//	cfg, err := config.Load("tidify.yaml")
//	if err != nil {
//		log.Fatal(err)
//	}
//	table, err := tidy.Tidify(value, cfg.ToOptions())
//
// TIDIFY_FLATTEN_SEPARATOR=/ overrides flatten.separator, and so on for every
// key. Lists such as flatten.exclude take comma-separated values.
//
// LoadYAML reads a single YAML file without environment overrides.
//
// # Environment Variable Substitution
//
// Both loaders replace ${VAR_NAME} in the file with the variable's value
// before parsing, which keeps credentials out of configuration files:
//
//	output:
//	  format: postgresql
//	  postgres:
//	    dsn: ${DATABASE_URL}
//	    table: events
//
// # Format Inference
//
// When input.format or output.format is empty, InputFormat and OutputFormat
// derive it from the path extension, ignoring a trailing compression
// extension: "events.jsonl.gz" reads as jsonl.
package config
