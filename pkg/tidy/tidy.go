// Package tidy turns nested values into tidy tables: one row per
// combination of nested sequence elements, one column per leaf path.
//
// Mappings combine their children by cross product, so a mapping holding
// k sequences of n elements each yields n^k rows. Use Options.MaxRows to
// bound the expansion for untrusted input.
package tidy

import (
	"github.com/ajitpratap0/tidify/pkg/nested"
)

// Tidify flattens v from the root and tabularizes the result.
func Tidify(v nested.Value, opts Options) (*Table, error) {
	rows, err := Flatten(v, "", opts)
	if err != nil {
		return nil, err
	}

	t := Tabularize(rows)
	if opts.SortColumns {
		o := opts.withDefaults()
		t = t.SortColumns(o.Separator, o.IndexSuffix)
	}
	return t, nil
}

// TidifyAny converts a native Go value with nested.FromAny and tidies it.
func TidifyAny(v interface{}, opts Options) (*Table, error) {
	value, err := nested.FromAny(v)
	if err != nil {
		return nil, err
	}
	return Tidify(value, opts)
}
