package tidy_test

import (
	"fmt"
	"strings"

	"github.com/ajitpratap0/tidify/pkg/nested"
	"github.com/ajitpratap0/tidify/pkg/tidy"
)

func ExampleTidify() {
	doc := `{"a": [1, 2], "b": [10, 20]}`
	v, err := nested.DecodeJSON(strings.NewReader(doc))
	if err != nil {
		panic(err)
	}

	table, err := tidy.Tidify(v, tidy.Options{})
	if err != nil {
		panic(err)
	}

	fmt.Println(strings.Join(table.Columns, " "))
	for _, row := range table.Rows {
		cells := make([]string, len(row))
		for i, c := range row {
			cells[i] = c.String()
		}
		fmt.Println(strings.Join(cells, " "))
	}
	// Output:
	// a a.index b b.index
	// 1 0 10 0
	// 1 0 20 1
	// 2 1 10 0
	// 2 1 20 1
}

func ExampleTabularize() {
	rows := tidy.RowSet{
		tidy.NewRow(tidy.Field{Column: "x", Value: nested.Int(1)}),
		tidy.NewRow(tidy.Field{Column: "y", Value: nested.String("b")}),
	}

	table := tidy.Tabularize(rows)
	for i := range table.Rows {
		x, _ := table.Value(i, "x")
		y, _ := table.Value(i, "y")
		fmt.Println(x.Kind(), y.Kind())
	}
	// Output:
	// number absent
	// absent string
}

func ExampleSortColumns() {
	fmt.Println(tidy.SortColumns([]string{"pets.name", "pets.index", "name", "index"}, ".", "index"))
	// Output: [index name pets.index pets.name]
}
