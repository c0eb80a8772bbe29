package tidyerrors

import (
	"errors"
	"fmt"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWrapNil(t *testing.T) {
	assert.Nil(t, Wrap(nil, ErrorTypeData, "nothing"))
}

func TestWrapPreservesCauseAndStack(t *testing.T) {
	inner := New(ErrorTypeShape, "bad shape").WithDetail("path", "x")
	outer := Wrap(inner, ErrorTypeData, "decode failed")

	require.NotNil(t, outer)
	assert.Equal(t, inner.Stack, outer.Stack)
	assert.True(t, errors.Is(outer, inner))
	assert.True(t, IsType(outer, ErrorTypeData))

	var target *Error
	require.True(t, errors.As(outer.Unwrap(), &target))
	assert.Equal(t, ErrorTypeShape, target.Type)
}

func TestIsTypeThroughFmtWrap(t *testing.T) {
	err := fmt.Errorf("context: %w", New(ErrorTypeConflict, "collision"))
	assert.True(t, IsType(err, ErrorTypeConflict))
	assert.False(t, IsType(err, ErrorTypeShape))
	assert.False(t, IsType(io.EOF, ErrorTypeShape))
}

func TestDetail(t *testing.T) {
	err := New(ErrorTypeConflict, "collision").WithDetail("column", "a.b")

	v, ok := err.Detail("column")
	require.True(t, ok)
	assert.Equal(t, "a.b", v)

	_, ok = err.Detail("path")
	assert.False(t, ok)
}

func TestCaptureStack(t *testing.T) {
	err := New(ErrorTypeInternal, "boom")
	require.NotEmpty(t, err.Stack)
	assert.Contains(t, err.Stack[0].Function, "TestCaptureStack")
}
