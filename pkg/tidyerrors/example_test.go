package tidyerrors_test

import (
	"fmt"
	"io"

	"github.com/ajitpratap0/tidify/pkg/tidyerrors"
)

// Example demonstrates basic error creation with a path detail.
func Example() {
	err := tidyerrors.New(tidyerrors.ErrorTypeShape, "unsupported value of type chan int").
		WithDetail("path", "a.b")

	fmt.Println(err.Error())

	// Output:
	// shape: unsupported value of type chan int (path "a.b")
}

// ExampleWrap shows how to wrap existing errors with context.
func ExampleWrap() {
	err := tidyerrors.Wrap(io.ErrUnexpectedEOF, tidyerrors.ErrorTypeData, "failed to decode JSON input").
		WithDetail("file", "data.json")

	if tidyerrors.IsType(err, tidyerrors.ErrorTypeData) {
		fmt.Println("This is a data error")
	}
	fmt.Println(err)

	// Output:
	// This is a data error
	// data: failed to decode JSON input: unexpected EOF
}

// ExampleIsRetryable shows which categories are worth retrying.
func ExampleIsRetryable() {
	connErr := tidyerrors.New(tidyerrors.ErrorTypeConnection, "connection refused")
	conflictErr := tidyerrors.New(tidyerrors.ErrorTypeConflict, "column collision").
		WithDetail("column", "a")

	fmt.Printf("connection retryable: %v\n", tidyerrors.IsRetryable(connErr))
	fmt.Printf("conflict retryable: %v\n", tidyerrors.IsRetryable(conflictErr))
	fmt.Println(conflictErr)

	// Output:
	// connection retryable: true
	// conflict retryable: false
	// conflict: column collision (column "a")
}
