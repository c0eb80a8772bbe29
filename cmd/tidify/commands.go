package main

import (
	"context"
	"fmt"
	"io"
	"runtime"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/ajitpratap0/tidify/internal/pipeline"
	"github.com/ajitpratap0/tidify/pkg/config"
	"github.com/ajitpratap0/tidify/pkg/connector/core"
	"github.com/ajitpratap0/tidify/pkg/connector/registry"
	"github.com/ajitpratap0/tidify/pkg/logger"
	"github.com/ajitpratap0/tidify/pkg/metrics"
	"github.com/ajitpratap0/tidify/pkg/observability"
	"github.com/ajitpratap0/tidify/pkg/storage"

	// Import all available connectors to register them
	_ "github.com/ajitpratap0/tidify/pkg/connector/destinations"
	_ "github.com/ajitpratap0/tidify/pkg/connector/sources"
)

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "tidify",
		Short: "tidify - flatten nested data into tidy tables",
		Long: `tidify reads a nested document (JSON, YAML, MongoDB, Arrow, Parquet, Avro),
flattens every path into a column and every sequence element into a row,
and writes the resulting table as CSV, JSON, a terminal grid, a columnar
file or a PostgreSQL table.`,
		SilenceUsage: true,
	}

	root.AddCommand(newVersionCmd(), newFormatsCmd(), newRunCmd())
	return root
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Run: func(cmd *cobra.Command, args []string) {
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "tidify v%s\n", version)
			fmt.Fprintf(out, "Go version: %s\n", runtime.Version())
			fmt.Fprintf(out, "OS/Arch: %s/%s\n", runtime.GOOS, runtime.GOARCH)
		},
	}
}

func newFormatsCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "formats",
		Aliases: []string{"list"},
		Short:   "List available input and output formats",
		Run: func(cmd *cobra.Command, args []string) {
			printFormats(cmd.OutOrStdout(), registry.ListConnectorInfo())
		},
	}
}

func printFormats(w io.Writer, infos []*registry.ConnectorInfo) {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "TYPE\tNAME\tEXTENSIONS\tDESCRIPTION")
	for _, info := range infos {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", info.Type, info.Name, strings.Join(info.Extensions, " "), info.Description)
	}
	_ = tw.Flush()
}

// runFlags maps each run flag to the configuration key it overrides.
var runFlags = map[string]string{
	"input":         "input.path",
	"input-format":  "input.format",
	"output":        "output.path",
	"output-format": "output.format",
	"sep":           "flatten.separator",
	"root-column":   "flatten.root_column",
	"index-suffix":  "flatten.index_suffix",
	"exclude":       "flatten.exclude",
	"collision":     "flatten.collision",
	"sort-columns":  "flatten.sort_columns",
	"max-rows":      "flatten.max_rows",
	"compression":   "output.compression",
	"log-level":     "observability.log_level",
	"metrics-file":  "observability.metrics_file",
	"trace":         "observability.trace",
	"timeout":       "timeouts.run",
}

func newRunCmd() *cobra.Command {
	var configFile string
	v := config.NewViper()
	d := config.NewConfig()

	runCmd := &cobra.Command{
		Use:   "run",
		Short: "Flatten one input into one output",
		Long: `Read a nested value, flatten it into a tidy table and write the table.
Settings come from defaults, the optional --config file, TIDIFY_* environment
variables and flags, in increasing precedence.

Example:
  tidify run --input orders.json --output orders.csv
  cat doc.yaml | tidify run --input-format yaml --output-format grid`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if configFile != "" {
				if err := config.ReadFile(v, configFile); err != nil {
					return err
				}
			}
			cfg, err := config.Decode(v)
			if err != nil {
				return err
			}
			return runTidify(cmd.Context(), cfg, cmd.InOrStdin(), cmd.OutOrStdout())
		},
	}

	flags := runCmd.Flags()
	flags.StringVarP(&configFile, "config", "c", "", "Path to a YAML or JSON configuration file")
	flags.StringP("input", "i", d.Input.Path, "Input location: a file path, s3://, gs:// or - for stdin")
	flags.String("input-format", "", "Input format (default: inferred from the input extension, else json)")
	flags.StringP("output", "o", d.Output.Path, "Output location: a file path, s3://, gs:// or - for stdout")
	flags.String("output-format", "", "Output format (default: inferred from the output extension, else csv)")
	flags.String("sep", d.Flatten.Separator, "Separator joining path segments into column names")
	flags.String("root-column", d.Flatten.RootColumn, "Column name for a scalar at the root")
	flags.String("index-suffix", d.Flatten.IndexSuffix, "Suffix of sequence position columns")
	flags.StringSlice("exclude", nil, "Column paths to drop, with their descendants")
	flags.String("collision", d.Flatten.Collision, "Column collision policy: overwrite or error")
	flags.Bool("sort-columns", d.Flatten.SortColumns, "Sort columns by name instead of first appearance")
	flags.Int("max-rows", d.Flatten.MaxRows, "Fail when the table would exceed this many rows (0 = unlimited)")
	flags.String("compression", d.Output.Compression, "Output compression (default: inferred from the output extension)")
	flags.String("log-level", d.Observability.LogLevel, "Log level (debug, info, warn, error)")
	flags.String("metrics-file", d.Observability.MetricsFile, "Write run metrics in Prometheus text format to this file")
	flags.Bool("trace", d.Observability.Trace, "Print trace spans to stderr")
	flags.Duration("timeout", d.Timeouts.Run, "Run timeout (0 = none)")

	for flag, key := range runFlags {
		_ = v.BindPFlag(key, flags.Lookup(flag))
	}

	return runCmd
}

// runTidify executes one run with a decoded configuration.
func runTidify(ctx context.Context, cfg *config.Config, stdin io.Reader, stdout io.Writer) error {
	log, err := logger.New(logger.Config{
		Level:    cfg.Observability.LogLevel,
		Encoding: cfg.Observability.LogEncoding,
	})
	if err != nil {
		return err
	}
	logger.Set(log)
	defer func() { _ = log.Sync() }()

	if cfg.Observability.Trace {
		shutdown, terr := observability.InitTracing(observability.DefaultTracingConfig(version))
		if terr != nil {
			return terr
		}
		defer func() { _ = shutdown(context.Background()) }()
	}

	if cfg.Timeouts.Run > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, cfg.Timeouts.Run)
		defer cancel()
	}

	inputFormat := cfg.Input.InputFormat()
	outputFormat := cfg.Output.OutputFormat()
	runID := strconv.FormatInt(time.Now().UnixNano(), 36)
	ctx = logger.ContextWithRun(ctx, runID, inputFormat, outputFormat)
	log = logger.FromContext(ctx, log).With(zap.String("component", "tidify-cli"))

	opener := storage.NewOpener(storage.OptionsFromConfig(cfg.Storage), log)
	opener.Stdin = stdin
	opener.Stdout = stdout
	defer func() {
		if cerr := opener.Close(); cerr != nil {
			log.Warn("failed to close storage clients", zap.Error(cerr))
		}
	}()
	deps := core.Deps{Storage: opener, Logger: log}

	source, err := registry.CreateSource(inputFormat, cfg, deps)
	if err != nil {
		return fmt.Errorf("failed to create source '%s': %w", inputFormat, err)
	}
	destination, err := registry.CreateDestination(outputFormat, cfg, deps)
	if err != nil {
		_ = source.Close(ctx)
		return fmt.Errorf("failed to create destination '%s': %w", outputFormat, err)
	}

	collector := metrics.NewCollector("tidify")
	p := pipeline.New(source, destination, cfg.ToOptions(), log, collector)
	defer func() {
		if cerr := p.Close(context.Background()); cerr != nil {
			log.Warn("failed to close connectors", zap.Error(cerr))
		}
	}()

	log.Debug("resolved run",
		zap.String("input", cfg.Input.Path),
		zap.String("input_format", inputFormat),
		zap.String("output", cfg.Output.Path),
		zap.String("output_format", outputFormat))

	_, runErr := p.Run(ctx)

	if path := cfg.Observability.MetricsFile; path != "" {
		if werr := collector.WriteFile(path); werr != nil {
			log.Warn("failed to write metrics file", zap.String("path", path), zap.Error(werr))
		}
	}

	return runErr
}
