// Package json provides the jsonl and jsontab destination connectors.
package json

import (
	"bufio"
	"context"
	"io"

	"go.uber.org/zap"

	"github.com/ajitpratap0/tidify/pkg/config"
	"github.com/ajitpratap0/tidify/pkg/connector/base"
	"github.com/ajitpratap0/tidify/pkg/connector/core"
	jsonpool "github.com/ajitpratap0/tidify/pkg/json"
	"github.com/ajitpratap0/tidify/pkg/nested"
	"github.com/ajitpratap0/tidify/pkg/tidy"
	"github.com/ajitpratap0/tidify/pkg/tidyerrors"
)

// JSONFormat represents the JSON output layout
type JSONFormat string

const (
	// JSONLines writes one object per row, in column order. Absent cells
	// are left out; null cells are written as null.
	JSONLines JSONFormat = "jsonl"
	// JSONTable writes one document {"columns": [...], "rows": [[...]]}
	// with absent cells as null.
	JSONTable JSONFormat = "jsontab"
)

// JSONDestination writes the table as JSON.
type JSONDestination struct {
	*base.BaseConnector

	deps        core.Deps
	path        string
	compression string
	format      JSONFormat
	out         io.WriteCloser
}

// NewJSONLinesDestination creates a jsonl destination.
func NewJSONLinesDestination(cfg *config.Config, deps core.Deps) (core.Destination, error) {
	return newJSONDestination(cfg, deps, JSONLines), nil
}

// NewJSONTableDestination creates a jsontab destination.
func NewJSONTableDestination(cfg *config.Config, deps core.Deps) (core.Destination, error) {
	return newJSONDestination(cfg, deps, JSONTable), nil
}

func newJSONDestination(cfg *config.Config, deps core.Deps, format JSONFormat) *JSONDestination {
	return &JSONDestination{
		BaseConnector: base.NewBaseConnector(string(format), core.ConnectorTypeDestination, deps.Logger),
		deps:          deps,
		path:          cfg.Output.Path,
		compression:   cfg.Output.Compression,
		format:        format,
	}
}

func (d *JSONDestination) Write(ctx context.Context, table *tidy.Table) error {
	out, err := base.CreateOutput(ctx, d.deps, d.path, d.compression)
	if err != nil {
		return err
	}
	d.out = out

	bw := bufio.NewWriter(out)
	if d.format == JSONTable {
		err = writeTable(bw, table)
	} else {
		err = writeLines(ctx, bw, table)
	}
	if err == nil {
		err = bw.Flush()
	}
	if err != nil {
		_ = d.Close(ctx)
		return tidyerrors.Wrap(err, tidyerrors.ErrorTypeFile, "failed to write JSON output").
			WithDetail("format", string(d.format))
	}
	if err := d.Close(ctx); err != nil {
		return err
	}

	d.GetLogger().Debug("wrote table",
		zap.String("path", d.path),
		zap.Int("rows", table.Len()))
	return nil
}

// Close closes the output if Write left it open.
func (d *JSONDestination) Close(_ context.Context) error {
	if d.out == nil {
		return nil
	}
	err := d.out.Close()
	d.out = nil
	return err
}

// writeLines writes one object per row. Keys follow the table's column
// order, which a map-based encoder would lose.
func writeLines(ctx context.Context, w *bufio.Writer, table *tidy.Table) error {
	keys, err := encodeKeys(table.Columns)
	if err != nil {
		return err
	}

	for i, row := range table.Rows {
		if err := ctx.Err(); err != nil {
			return err
		}
		_ = w.WriteByte('{')
		first := true
		for j, cell := range row {
			if cell.IsAbsent() {
				continue
			}
			if !first {
				_ = w.WriteByte(',')
			}
			first = false
			_, _ = w.Write(keys[j])
			_ = w.WriteByte(':')
			if err := writeScalar(w, cell); err != nil {
				return tidyerrors.Wrap(err, tidyerrors.ErrorTypeData, "failed to encode cell").
					WithDetail("row", i).
					WithDetail("column", table.Columns[j])
			}
		}
		if _, err := w.WriteString("}\n"); err != nil {
			return err
		}
	}
	return nil
}

func writeTable(w *bufio.Writer, table *tidy.Table) error {
	columns, err := jsonpool.Marshal(table.Columns)
	if err != nil {
		return err
	}
	if table.Columns == nil {
		columns = []byte("[]")
	}

	_, _ = w.WriteString(`{"columns":`)
	_, _ = w.Write(columns)
	_, _ = w.WriteString(`,"rows":[`)
	for i, row := range table.Rows {
		if i > 0 {
			_ = w.WriteByte(',')
		}
		_ = w.WriteByte('[')
		for j, cell := range row {
			if j > 0 {
				_ = w.WriteByte(',')
			}
			if err := writeScalar(w, cell); err != nil {
				return err
			}
		}
		_ = w.WriteByte(']')
	}
	_, err = w.WriteString("]}\n")
	return err
}

func encodeKeys(columns []string) ([][]byte, error) {
	keys := make([][]byte, len(columns))
	for i, c := range columns {
		k, err := jsonpool.Marshal(c)
		if err != nil {
			return nil, err
		}
		keys[i] = k
	}
	return keys, nil
}

func writeScalar(w *bufio.Writer, s nested.Scalar) error {
	b, err := s.MarshalJSON()
	if err != nil {
		return err
	}
	_, err = w.Write(b)
	return err
}
