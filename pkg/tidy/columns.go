package tidy

import (
	"sort"
	"strings"
)

// SortColumns returns columns in reading order:
//
//   - the root index column (exactly indexSuffix) comes first,
//   - shallower columns come before deeper ones,
//   - a sequence's index column comes right before the column of the
//     same path, and before the sequence's own fields,
//   - ties are broken lexically.
//
// The input slice is not modified.
func SortColumns(columns []string, separator, indexSuffix string) []string {
	if separator == "" {
		separator = DefaultSeparator
	}
	if indexSuffix == "" {
		indexSuffix = DefaultIndexSuffix
	}

	keys := make([]columnKey, len(columns))
	for i, c := range columns {
		keys[i] = newColumnKey(c, separator, indexSuffix)
	}
	sort.SliceStable(keys, func(i, j int) bool { return keys[i].less(keys[j]) })

	out := make([]string, len(keys))
	for i, k := range keys {
		out[i] = k.column
	}
	return out
}

// columnKey orders a column by the path it belongs to. An index column
// belongs to its sequence's path and sorts ahead of that path's value.
type columnKey struct {
	column string
	anchor string
	depth  int
	rank   int // 0 for index columns, 1 otherwise
}

func newColumnKey(column, separator, indexSuffix string) columnKey {
	k := columnKey{column: column, anchor: column, rank: 1}
	switch {
	case column == indexSuffix:
		k.anchor, k.rank = "", 0
	case strings.HasSuffix(column, separator+indexSuffix):
		k.anchor, k.rank = strings.TrimSuffix(column, separator+indexSuffix), 0
	}
	if k.anchor != "" {
		k.depth = strings.Count(k.anchor, separator) + 1
	}
	return k
}

func (k columnKey) less(o columnKey) bool {
	if k.depth != o.depth {
		return k.depth < o.depth
	}
	if k.anchor != o.anchor {
		return k.anchor < o.anchor
	}
	return k.rank < o.rank
}
