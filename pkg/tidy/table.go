package tidy

import (
	"github.com/ajitpratap0/tidify/pkg/nested"
)

// Table is a rectangular view of a RowSet. Rows[i][j] is the value of
// Columns[j] in row i; cells a row never set hold nested.Absent().
type Table struct {
	Columns []string
	Rows    [][]nested.Scalar
}

// Tabularize aligns rows under the union of their columns, ordered by
// first appearance.
func Tabularize(rows RowSet) *Table {
	position := make(map[string]int)
	var columns []string
	for _, r := range rows {
		for _, f := range r.fields {
			if _, ok := position[f.Column]; !ok {
				position[f.Column] = len(columns)
				columns = append(columns, f.Column)
			}
		}
	}

	t := &Table{
		Columns: columns,
		Rows:    make([][]nested.Scalar, len(rows)),
	}
	for i, r := range rows {
		cells := make([]nested.Scalar, len(columns))
		for j := range cells {
			cells[j] = nested.Absent()
		}
		for _, f := range r.fields {
			cells[position[f.Column]] = f.Value
		}
		t.Rows[i] = cells
	}
	return t
}

// Len returns the number of rows.
func (t *Table) Len() int { return len(t.Rows) }

// Width returns the number of columns.
func (t *Table) Width() int { return len(t.Columns) }

// ColumnIndex returns the position of column, or -1.
func (t *Table) ColumnIndex(column string) int {
	for j, c := range t.Columns {
		if c == column {
			return j
		}
	}
	return -1
}

// Value returns the cell at row i under column. ok is false when the
// column does not exist or i is out of range.
func (t *Table) Value(i int, column string) (nested.Scalar, bool) {
	j := t.ColumnIndex(column)
	if j < 0 || i < 0 || i >= len(t.Rows) {
		return nested.Scalar{}, false
	}
	return t.Rows[i][j], true
}

// Column returns every cell of column top to bottom, or nil if the column
// does not exist.
func (t *Table) Column(column string) []nested.Scalar {
	j := t.ColumnIndex(column)
	if j < 0 {
		return nil
	}
	out := make([]nested.Scalar, len(t.Rows))
	for i, row := range t.Rows {
		out[i] = row[j]
	}
	return out
}

// RowSet converts the table back to rows. Every row carries every column,
// absent cells included, so Tabularize(t.RowSet()) equals t.
func (t *Table) RowSet() RowSet {
	out := make(RowSet, len(t.Rows))
	fields := make([]Field, len(t.Columns))
	for i, row := range t.Rows {
		for j, c := range t.Columns {
			fields[j] = Field{Column: c, Value: row[j]}
		}
		out[i] = NewRow(fields...)
	}
	return out
}

// Select returns a table with only the given columns in the given order.
// Unknown columns are filled with absent cells.
func (t *Table) Select(columns ...string) *Table {
	positions := make([]int, len(columns))
	for k, c := range columns {
		positions[k] = t.ColumnIndex(c)
	}

	out := &Table{
		Columns: append([]string(nil), columns...),
		Rows:    make([][]nested.Scalar, len(t.Rows)),
	}
	for i, row := range t.Rows {
		cells := make([]nested.Scalar, len(columns))
		for k, j := range positions {
			if j < 0 {
				cells[k] = nested.Absent()
				continue
			}
			cells[k] = row[j]
		}
		out.Rows[i] = cells
	}
	return out
}

// SortColumns returns a copy of t with columns ordered by SortColumns.
func (t *Table) SortColumns(separator, indexSuffix string) *Table {
	return t.Select(SortColumns(t.Columns, separator, indexSuffix)...)
}
