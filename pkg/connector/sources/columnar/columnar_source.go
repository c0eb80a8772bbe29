// Package columnar provides the arrow, parquet and avro source connectors.
// Each file is read as a sequence of records keyed by column name, so
// re-tidying a file written by tidify yields the same columns plus the
// record index.
package columnar

import (
	"context"

	"go.uber.org/zap"

	"github.com/ajitpratap0/tidify/pkg/config"
	"github.com/ajitpratap0/tidify/pkg/connector/base"
	"github.com/ajitpratap0/tidify/pkg/connector/core"
	"github.com/ajitpratap0/tidify/pkg/formats/columnar"
	"github.com/ajitpratap0/tidify/pkg/nested"
	"github.com/ajitpratap0/tidify/pkg/tidy"
)

// ColumnarSource reads an Arrow IPC, Parquet or Avro OCF file.
type ColumnarSource struct {
	*base.BaseConnector

	deps        core.Deps
	path        string
	compression string
	format      columnar.Format
}

// NewSourceFactory returns the factory for one columnar format.
func NewSourceFactory(format columnar.Format) func(*config.Config, core.Deps) (core.Source, error) {
	return func(cfg *config.Config, deps core.Deps) (core.Source, error) {
		return &ColumnarSource{
			BaseConnector: base.NewBaseConnector(string(format), core.ConnectorTypeSource, deps.Logger),
			deps:          deps,
			path:          cfg.Input.Path,
			compression:   cfg.Input.Compression,
			format:        format,
		}, nil
	}
}

// Read loads the file and returns one mapping per row. Null cells stay
// null; typed values keep their kind.
func (s *ColumnarSource) Read(ctx context.Context) (nested.Value, error) {
	r, err := base.OpenInput(ctx, s.deps, s.path, s.compression)
	if err != nil {
		return nested.Value{}, err
	}
	defer r.Close()

	table, err := columnar.ReadTable(r, s.format)
	if err != nil {
		return nested.Value{}, err
	}

	s.GetLogger().Debug("read input",
		zap.String("path", s.path),
		zap.Int("rows", table.Len()),
		zap.Int("columns", table.Width()))
	return records(table), nil
}

func (s *ColumnarSource) Close(_ context.Context) error {
	return nil
}

func records(t *tidy.Table) nested.Value {
	items := make([]nested.Value, len(t.Rows))
	for i, row := range t.Rows {
		entries := make([]nested.Entry, len(t.Columns))
		for j, column := range t.Columns {
			cell := row[j]
			if cell.IsAbsent() {
				cell = nested.Null()
			}
			entries[j] = nested.E(column, nested.Leaf(cell))
		}
		items[i] = nested.Map(entries...)
	}
	return nested.Seq(items...)
}
