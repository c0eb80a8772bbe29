// Package csv provides the csv destination connector.
package csv

import (
	"context"
	"encoding/csv"
	"io"

	"go.uber.org/zap"

	"github.com/ajitpratap0/tidify/pkg/config"
	"github.com/ajitpratap0/tidify/pkg/connector/base"
	"github.com/ajitpratap0/tidify/pkg/connector/core"
	"github.com/ajitpratap0/tidify/pkg/tidy"
	"github.com/ajitpratap0/tidify/pkg/tidyerrors"
)

// checkEvery is how many rows are written between context checks
const checkEvery = 1024

// CSVDestination writes the table as RFC 4180 CSV with a header row. Null
// and absent cells are both written as empty fields.
type CSVDestination struct {
	*base.BaseConnector

	deps        core.Deps
	path        string
	compression string
	out         io.WriteCloser
}

// NewCSVDestination creates a csv destination.
func NewCSVDestination(cfg *config.Config, deps core.Deps) (core.Destination, error) {
	return &CSVDestination{
		BaseConnector: base.NewBaseConnector("csv", core.ConnectorTypeDestination, deps.Logger),
		deps:          deps,
		path:          cfg.Output.Path,
		compression:   cfg.Output.Compression,
	}, nil
}

// Write writes the header and every row, then closes the output so object
// storage uploads complete before Write returns.
func (d *CSVDestination) Write(ctx context.Context, table *tidy.Table) error {
	out, err := base.CreateOutput(ctx, d.deps, d.path, d.compression)
	if err != nil {
		return err
	}
	d.out = out

	if err := writeCSV(ctx, out, table); err != nil {
		_ = d.Close(ctx)
		return err
	}
	if err := d.Close(ctx); err != nil {
		return err
	}

	d.GetLogger().Debug("wrote table",
		zap.String("path", d.path),
		zap.Int("rows", table.Len()),
		zap.Int("columns", table.Width()))
	return nil
}

// Close closes the output if Write left it open.
func (d *CSVDestination) Close(_ context.Context) error {
	if d.out == nil {
		return nil
	}
	err := d.out.Close()
	d.out = nil
	return err
}

func writeCSV(ctx context.Context, w io.Writer, table *tidy.Table) error {
	cw := csv.NewWriter(w)

	if err := cw.Write(table.Columns); err != nil {
		return tidyerrors.Wrap(err, tidyerrors.ErrorTypeFile, "failed to write CSV header")
	}

	record := make([]string, table.Width())
	for i, row := range table.Rows {
		if i%checkEvery == 0 {
			if err := ctx.Err(); err != nil {
				return tidyerrors.Wrap(err, tidyerrors.ErrorTypeTimeout, "CSV output cancelled").
					WithDetail("row", i)
			}
		}
		for j, cell := range row {
			record[j] = cell.String()
		}
		if err := cw.Write(record); err != nil {
			return tidyerrors.Wrap(err, tidyerrors.ErrorTypeFile, "failed to write CSV row").
				WithDetail("row", i)
		}
	}

	cw.Flush()
	if err := cw.Error(); err != nil {
		return tidyerrors.Wrap(err, tidyerrors.ErrorTypeFile, "failed to flush CSV output")
	}
	return nil
}
