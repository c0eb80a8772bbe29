package tidy

import (
	"github.com/ajitpratap0/tidify/pkg/nested"
)

// Field is one column of a Row.
type Field struct {
	Column string
	Value  nested.Scalar
}

// Row is an ordered mapping from column name to scalar. Rows are never
// modified after construction; merging produces a new Row.
type Row struct {
	fields []Field
	index  map[string]int
}

// RowSet is an ordered sequence of rows.
type RowSet []Row

// NewRow builds a row from fields. A repeated column keeps its first
// position and its last value.
func NewRow(fields ...Field) Row {
	r := Row{
		fields: make([]Field, 0, len(fields)),
		index:  make(map[string]int, len(fields)),
	}
	for _, f := range fields {
		if i, ok := r.index[f.Column]; ok {
			r.fields[i].Value = f.Value
			continue
		}
		r.index[f.Column] = len(r.fields)
		r.fields = append(r.fields, f)
	}
	return r
}

// Len returns the number of columns in the row.
func (r Row) Len() int { return len(r.fields) }

// Get returns the value of column.
func (r Row) Get(column string) (nested.Scalar, bool) {
	i, ok := r.index[column]
	if !ok {
		return nested.Scalar{}, false
	}
	return r.fields[i].Value, true
}

// Columns returns the column names in order.
func (r Row) Columns() []string {
	out := make([]string, len(r.fields))
	for i, f := range r.fields {
		out[i] = f.Column
	}
	return out
}

// Fields returns a copy of the row's fields in order.
func (r Row) Fields() []Field {
	out := make([]Field, len(r.fields))
	copy(out, r.fields)
	return out
}

// Map returns the row as an unordered map.
func (r Row) Map() map[string]nested.Scalar {
	out := make(map[string]nested.Scalar, len(r.fields))
	for _, f := range r.fields {
		out[f.Column] = f.Value
	}
	return out
}

// merge returns the column-wise union of a and b, with a's columns first.
// Columns present in both go through resolve, which fails the merge or
// reports whether b's value replaces a's.
func merge(a, b Row, resolve func(column string) (bool, error)) (Row, error) {
	if len(b.fields) == 0 {
		return a, nil
	}
	if len(a.fields) == 0 {
		return b, nil
	}

	out := Row{
		fields: make([]Field, len(a.fields), len(a.fields)+len(b.fields)),
		index:  make(map[string]int, len(a.fields)+len(b.fields)),
	}
	copy(out.fields, a.fields)
	for k, v := range a.index {
		out.index[k] = v
	}

	for _, f := range b.fields {
		if i, ok := out.index[f.Column]; ok {
			replace, err := resolve(f.Column)
			if err != nil {
				return Row{}, err
			}
			if replace {
				out.fields[i].Value = f.Value
			}
			continue
		}
		out.index[f.Column] = len(out.fields)
		out.fields = append(out.fields, f)
	}
	return out, nil
}
