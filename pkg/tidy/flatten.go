package tidy

import (
	"github.com/ajitpratap0/tidify/pkg/nested"
	stringpool "github.com/ajitpratap0/tidify/pkg/strings"
	"github.com/ajitpratap0/tidify/pkg/tidyerrors"
)

// Flatten expands v into a RowSet. prefix is the column path v lives under;
// pass "" for a root value.
//
// Scalars produce one single-column row. Mappings combine their entries'
// row sets by cross product. Sequences concatenate their items' row sets,
// tagging every row with the item position. Empty mappings and sequences
// produce one empty row.
func Flatten(v nested.Value, prefix string, opts Options) (RowSet, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	f := newFlattener(opts.withDefaults())
	return f.flatten(v, prefix)
}

type flattener struct {
	opts    Options
	exclude map[string]struct{}
}

func newFlattener(opts Options) *flattener {
	f := &flattener{opts: opts}
	if len(opts.Exclude) > 0 {
		f.exclude = make(map[string]struct{}, len(opts.Exclude))
		for _, p := range opts.Exclude {
			f.exclude[p] = struct{}{}
		}
	}
	return f
}

func (f *flattener) flatten(v nested.Value, prefix string) (RowSet, error) {
	switch v.Kind() {
	case nested.ScalarValue:
		column := prefix
		if column == "" {
			column = f.opts.RootColumn
		}
		return RowSet{NewRow(Field{Column: column, Value: v.Scalar()})}, nil

	case nested.Mapping:
		// Columns from scalar and sequence entries win over columns
		// flattened out of sub-mappings, whatever the key order.
		acc := RowSet{{}}
		direct := make(map[string]struct{})
		for _, e := range v.Entries() {
			path := f.join(prefix, e.Key)
			if f.excluded(path) {
				continue
			}
			child, err := f.flatten(e.Value, path)
			if err != nil {
				return nil, err
			}
			sub := e.Value.Kind() == nested.Mapping
			resolve := func(column string) (bool, error) {
				if err := f.collide(column); err != nil {
					return false, err
				}
				_, owned := direct[column]
				return !sub || !owned, nil
			}
			if acc, err = f.cross(acc, child, path, resolve); err != nil {
				return nil, err
			}
			if !sub {
				for _, r := range child {
					for _, c := range r.Columns() {
						direct[c] = struct{}{}
					}
				}
			}
		}
		return acc, nil

	case nested.Sequence:
		items := v.Items()
		if len(items) == 0 {
			return RowSet{{}}, nil
		}
		indexColumn := f.join(prefix, f.opts.IndexSuffix)

		var out RowSet
		for i, item := range items {
			rows, err := f.flatten(item, prefix)
			if err != nil {
				return nil, err
			}
			if err := f.checkRows(len(out)+len(rows), prefix); err != nil {
				return nil, err
			}
			position := NewRow(Field{Column: indexColumn, Value: nested.Int(int64(i))})
			for _, r := range rows {
				tagged, err := merge(r, position, f.keep)
				if err != nil {
					return nil, err
				}
				out = append(out, tagged)
			}
		}
		return out, nil

	default:
		return nil, tidyerrors.New(tidyerrors.ErrorTypeShape, "value is not a scalar, mapping or sequence").
			WithDetail("path", displayPath(prefix))
	}
}

// cross returns every pairing of a row from acc with a row from child,
// acc-major.
func (f *flattener) cross(acc, child RowSet, path string, resolve func(string) (bool, error)) (RowSet, error) {
	if len(child) == 1 && child[0].Len() == 0 {
		return acc, nil
	}
	if err := f.checkRows(len(acc)*len(child), path); err != nil {
		return nil, err
	}

	out := make(RowSet, 0, len(acc)*len(child))
	for _, left := range acc {
		for _, right := range child {
			r, err := merge(left, right, resolve)
			if err != nil {
				return nil, err
			}
			out = append(out, r)
		}
	}
	return out, nil
}

func (f *flattener) collide(column string) error {
	if f.opts.OnCollision != nil {
		f.opts.OnCollision(column)
	}
	if f.opts.Collision == CollisionError {
		return tidyerrors.New(tidyerrors.ErrorTypeConflict, "column collision").
			WithDetail("column", column)
	}
	return nil
}

// keep resolves a collision in favour of the value already in the row.
// An element's own fields and deeper sequence positions beat the
// enclosing position.
func (f *flattener) keep(column string) (bool, error) {
	return false, f.collide(column)
}

func (f *flattener) checkRows(n int, path string) error {
	if f.opts.MaxRows > 0 && n > f.opts.MaxRows {
		return tidyerrors.New(tidyerrors.ErrorTypeData,
			stringpool.Sprintf("row limit %d exceeded", f.opts.MaxRows)).
			WithDetail("path", displayPath(path))
	}
	return nil
}

func (f *flattener) excluded(path string) bool {
	if f.exclude == nil {
		return false
	}
	_, ok := f.exclude[path]
	return ok
}

func (f *flattener) join(prefix, key string) string {
	if prefix == "" {
		return key
	}
	return stringpool.Concat(prefix, f.opts.Separator, key)
}

func displayPath(path string) string {
	if path == "" {
		return "$"
	}
	return path
}
