// Package grid provides a destination that prints the table as an aligned
// text grid for terminal previews.
package grid

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"github.com/fatih/color"

	"github.com/ajitpratap0/tidify/pkg/config"
	"github.com/ajitpratap0/tidify/pkg/connector/base"
	"github.com/ajitpratap0/tidify/pkg/connector/core"
	"github.com/ajitpratap0/tidify/pkg/nested"
	"github.com/ajitpratap0/tidify/pkg/tidy"
	"github.com/ajitpratap0/tidify/pkg/tidyerrors"
)

// GridDestination renders the table with a bold header, a separator line
// and space-padded columns. Nulls print as a dimmed "null"; absent cells
// stay blank.
type GridDestination struct {
	*base.BaseConnector

	deps        core.Deps
	path        string
	compression string
	options     config.GridConfig
	out         io.WriteCloser
}

// NewGridDestination creates a grid destination.
func NewGridDestination(cfg *config.Config, deps core.Deps) (core.Destination, error) {
	if cfg.Output.Grid.MaxRows < 0 || cfg.Output.Grid.MaxWidth < 0 {
		return nil, tidyerrors.New(tidyerrors.ErrorTypeConfig, "output.grid limits cannot be negative")
	}
	return &GridDestination{
		BaseConnector: base.NewBaseConnector("grid", core.ConnectorTypeDestination, deps.Logger),
		deps:          deps,
		path:          cfg.Output.Path,
		compression:   cfg.Output.Compression,
		options:       cfg.Output.Grid,
	}, nil
}

func (d *GridDestination) Write(ctx context.Context, table *tidy.Table) error {
	out, err := base.CreateOutput(ctx, d.deps, d.path, d.compression)
	if err != nil {
		return err
	}
	d.out = out

	bw := bufio.NewWriter(out)
	render(bw, table, d.options)
	if err := bw.Flush(); err != nil {
		_ = d.Close(ctx)
		return tidyerrors.Wrap(err, tidyerrors.ErrorTypeFile, "failed to write grid")
	}
	return d.Close(ctx)
}

// Close closes the output if Write left it open.
func (d *GridDestination) Close(_ context.Context) error {
	if d.out == nil {
		return nil
	}
	err := d.out.Close()
	d.out = nil
	return err
}

type palette struct {
	header *color.Color
	rule   *color.Color
	null   *color.Color
}

func newPalette(noColor bool) palette {
	p := palette{
		header: color.New(color.Bold, color.FgCyan),
		rule:   color.New(color.FgHiBlack),
		null:   color.New(color.Faint),
	}
	if noColor {
		p.header.DisableColor()
		p.rule.DisableColor()
		p.null.DisableColor()
	}
	return p
}

func render(w io.Writer, table *tidy.Table, opts config.GridConfig) {
	if table.Width() == 0 {
		fmt.Fprintf(w, "(%d rows, no columns)\n", table.Len())
		return
	}

	shown := table.Rows
	if opts.MaxRows > 0 && len(shown) > opts.MaxRows {
		shown = shown[:opts.MaxRows]
	}

	header := make([]string, table.Width())
	widths := make([]int, table.Width())
	for i, c := range table.Columns {
		header[i] = truncate(c, opts.MaxWidth)
		widths[i] = utf8.RuneCountInString(header[i])
	}
	cells := make([][]string, len(shown))
	for r, row := range shown {
		cells[r] = make([]string, len(row))
		for i, cell := range row {
			cells[r][i] = truncate(cellText(cell), opts.MaxWidth)
			if n := utf8.RuneCountInString(cells[r][i]); n > widths[i] {
				widths[i] = n
			}
		}
	}

	p := newPalette(opts.NoColor)
	last := len(widths) - 1

	for i, h := range header {
		p.header.Fprint(w, pad(h, widths[i], i == last))
		if i < last {
			fmt.Fprint(w, "  ")
		}
	}
	fmt.Fprintln(w)

	for i, width := range widths {
		p.rule.Fprint(w, strings.Repeat("─", width))
		if i < last {
			fmt.Fprint(w, "  ")
		}
	}
	fmt.Fprintln(w)

	for r, row := range shown {
		for i, cell := range row {
			text := pad(cells[r][i], widths[i], i == last)
			if cell.IsNull() {
				p.null.Fprint(w, text)
			} else {
				fmt.Fprint(w, text)
			}
			if i < last {
				fmt.Fprint(w, "  ")
			}
		}
		fmt.Fprintln(w)
	}

	if hidden := table.Len() - len(shown); hidden > 0 {
		p.rule.Fprintf(w, "… %d more rows\n", hidden)
	}
}

func cellText(s nested.Scalar) string {
	if s.IsNull() {
		return "null"
	}
	// one line per row
	return strings.NewReplacer("\n", `\n`, "\r", `\r`, "\t", `\t`).Replace(s.String())
}

func truncate(s string, width int) string {
	if width <= 0 || utf8.RuneCountInString(s) <= width {
		return s
	}
	if width == 1 {
		return "…"
	}
	runes := []rune(s)
	return string(runes[:width-1]) + "…"
}

// pad right-pads s to width. The last column is not padded so lines carry
// no trailing spaces.
func pad(s string, width int, last bool) string {
	n := utf8.RuneCountInString(s)
	if last || n >= width {
		return s
	}
	return s + strings.Repeat(" ", width-n)
}
