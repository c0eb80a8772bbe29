// Package columnar provides the arrow, parquet and avro destination
// connectors. Column types are inferred from the table before writing.
package columnar

import (
	"context"
	"io"
	"path"
	"strings"

	"go.uber.org/zap"

	"github.com/ajitpratap0/tidify/pkg/config"
	"github.com/ajitpratap0/tidify/pkg/connector/base"
	"github.com/ajitpratap0/tidify/pkg/connector/core"
	"github.com/ajitpratap0/tidify/pkg/formats/columnar"
	"github.com/ajitpratap0/tidify/pkg/schema"
	"github.com/ajitpratap0/tidify/pkg/tidy"
)

// ColumnarDestination writes an Arrow IPC, Parquet or Avro OCF file. The
// formats compress internally, so the stream itself is never compressed.
type ColumnarDestination struct {
	*base.BaseConnector

	deps     core.Deps
	path     string
	format   columnar.Format
	settings config.ColumnarConfig
	out      io.WriteCloser
}

// NewDestinationFactory returns the factory for one columnar format.
func NewDestinationFactory(format columnar.Format) func(*config.Config, core.Deps) (core.Destination, error) {
	return func(cfg *config.Config, deps core.Deps) (core.Destination, error) {
		return &ColumnarDestination{
			BaseConnector: base.NewBaseConnector(string(format), core.ConnectorTypeDestination, deps.Logger),
			deps:          deps,
			path:          cfg.Output.Path,
			format:        format,
			settings:      cfg.Output.Columnar,
		}, nil
	}
}

func (d *ColumnarDestination) Write(ctx context.Context, table *tidy.Table) error {
	inferred := schema.NewTypeInferenceEngine(d.GetLogger()).InferSchema(schemaName(d.path), table)

	out, err := base.CreateOutput(ctx, d.deps, d.path, "none")
	if err != nil {
		return err
	}
	d.out = out

	w, err := columnar.NewWriter(out, &columnar.WriterConfig{
		Format:      d.format,
		Schema:      inferred,
		Compression: d.settings.Compression,
		BatchSize:   d.settings.BatchSize,
	})
	if err != nil {
		_ = d.Close(ctx)
		return err
	}

	if err := w.WriteTable(table); err != nil {
		_ = w.Close()
		_ = d.Close(ctx)
		return err
	}
	if err := w.Close(); err != nil {
		_ = d.Close(ctx)
		return err
	}
	if err := d.Close(ctx); err != nil {
		return err
	}

	d.GetLogger().Debug("wrote table",
		zap.String("path", d.path),
		zap.Int64("rows", w.RowsWritten()),
		zap.Int("columns", len(inferred.Fields)))
	return nil
}

// Close closes the output if Write left it open.
func (d *ColumnarDestination) Close(_ context.Context) error {
	if d.out == nil {
		return nil
	}
	err := d.out.Close()
	d.out = nil
	return err
}

// schemaName is the output file name without extensions, or "tidy".
func schemaName(p string) string {
	name := path.Base(strings.ReplaceAll(p, "\\", "/"))
	if i := strings.IndexByte(name, '.'); i >= 0 {
		name = name[:i]
	}
	if name == "" || name == "-" || name == "/" {
		return "tidy"
	}
	return name
}
