package tidy

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSortColumns(t *testing.T) {
	tests := []struct {
		name string
		in   []string
		want []string
	}{
		{
			name: "index before value",
			in:   []string{"b", "b.index", "a", "a.index"},
			want: []string{"a.index", "a", "b.index", "b"},
		},
		{
			name: "root index first",
			in:   []string{"z", "index", "a"},
			want: []string{"index", "a", "z"},
		},
		{
			name: "shallow first",
			in:   []string{"a.b.c", "a.b", "b", "a.c"},
			want: []string{"b", "a.b", "a.c", "a.b.c"},
		},
		{
			name: "sequence index before its fields",
			in:   []string{"pets.name", "pets.index", "pets.age"},
			want: []string{"pets.index", "pets.age", "pets.name"},
		},
		{
			name: "nested sequence",
			in:   []string{"a.b.index", "a.b", "a.index", "a.c"},
			want: []string{"a.index", "a.b.index", "a.b", "a.c"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := append([]string(nil), tt.in...)
			assert.Equal(t, tt.want, SortColumns(in, ".", "index"))
			assert.Equal(t, tt.in, in, "input is not modified")
		})
	}
}

func TestSortColumnsCustomSeparator(t *testing.T) {
	got := SortColumns([]string{"a/b", "a/i", "a", "i"}, "/", "i")
	assert.Equal(t, []string{"i", "a/i", "a", "a/b"}, got)
}
