// Package tidyerrors provides structured error handling for tidify with typed
// categories, key-value context and captured stack traces.
//
// # Overview
//
// Every error raised by the flattening core and by the surrounding sources,
// destinations and configuration carries an ErrorType so callers can branch
// on the category instead of matching message text:
//
//	rows, err := tidy.Flatten(value, "", opts)
//	if tidyerrors.IsType(err, tidyerrors.ErrorTypeShape) {
//	    // the input contained something that is not a scalar, mapping or sequence
//	}
//
// Details attach the offending path or column:
//
//	err := tidyerrors.New(tidyerrors.ErrorTypeConflict, "column collision").
//	    WithDetail("column", "a.b")
//
// # Thread Safety
//
// Error instances are not safe for concurrent modification. Finish adding
// details before sharing an error across goroutines.
package tidyerrors

import (
	"errors"
	"runtime"

	stringpool "github.com/ajitpratap0/tidify/pkg/strings"
)

// ErrorType represents the category of an error.
type ErrorType string

const (
	// ErrorTypeInternal represents internal errors
	ErrorTypeInternal ErrorType = "internal"
	// ErrorTypeValidation represents invalid arguments
	ErrorTypeValidation ErrorType = "validation"
	// ErrorTypeShape represents input that is not a scalar, mapping or sequence
	ErrorTypeShape ErrorType = "shape"
	// ErrorTypeConflict represents column name collisions
	ErrorTypeConflict ErrorType = "conflict"
	// ErrorTypeConfig represents configuration errors
	ErrorTypeConfig ErrorType = "config"
	// ErrorTypeFile represents file and object storage errors
	ErrorTypeFile ErrorType = "file"
	// ErrorTypeData represents decoding and encoding errors
	ErrorTypeData ErrorType = "data"
	// ErrorTypeConnection represents database and network errors
	ErrorTypeConnection ErrorType = "connection"
	// ErrorTypeCapability represents unsupported formats or features
	ErrorTypeCapability ErrorType = "capability"
	// ErrorTypeTimeout represents deadline errors
	ErrorTypeTimeout ErrorType = "timeout"
)

// Error is a structured error with a category, context details and the
// call stack at the point of creation.
type Error struct {
	Type    ErrorType
	Message string
	Cause   error
	Details map[string]interface{}
	Stack   []StackFrame
}

// StackFrame is a single frame in a captured call stack.
type StackFrame struct {
	Function string
	File     string
	Line     int
}

// Error implements the error interface. Details are appended in a stable
// order so messages are reproducible.
func (e *Error) Error() string {
	msg := stringpool.Sprintf("%s: %s", e.Type, e.Message)
	if path, ok := e.Details["path"]; ok {
		msg = stringpool.Sprintf("%s (path %q)", msg, path)
	}
	if column, ok := e.Details["column"]; ok {
		msg = stringpool.Sprintf("%s (column %q)", msg, column)
	}
	if e.Cause != nil {
		return stringpool.Sprintf("%s: %v", msg, e.Cause)
	}
	return msg
}

// Unwrap returns the underlying error for errors.Is and errors.As.
func (e *Error) Unwrap() error {
	return e.Cause
}

// WithDetail adds a key-value detail and returns the same error for chaining.
func (e *Error) WithDetail(key string, value interface{}) *Error {
	if e.Details == nil {
		e.Details = make(map[string]interface{})
	}
	e.Details[key] = value
	return e
}

// Detail returns a detail value and whether it was set.
func (e *Error) Detail(key string) (interface{}, bool) {
	v, ok := e.Details[key]
	return v, ok
}

// New creates an error of the given type, capturing the caller's stack.
func New(errType ErrorType, message string) *Error {
	return &Error{
		Type:    errType,
		Message: message,
		Stack:   captureStack(2),
	}
}

// Wrap wraps err with a type and message. The stack of an already
// structured cause is preserved. Wrap returns nil for a nil err.
func Wrap(err error, errType ErrorType, message string) *Error {
	if err == nil {
		return nil
	}

	var existingErr *Error
	if errors.As(err, &existingErr) {
		return &Error{
			Type:    errType,
			Message: message,
			Cause:   err,
			Stack:   existingErr.Stack,
		}
	}

	return &Error{
		Type:    errType,
		Message: message,
		Cause:   err,
		Stack:   captureStack(2),
	}
}

// IsRetryable reports whether err is worth retrying. Only connection and
// timeout errors qualify; flattening is deterministic and never retryable.
func IsRetryable(err error) bool {
	var e *Error
	if !errors.As(err, &e) {
		return false
	}

	switch e.Type {
	case ErrorTypeConnection, ErrorTypeTimeout:
		return true
	case ErrorTypeInternal, ErrorTypeValidation, ErrorTypeShape, ErrorTypeConflict,
		ErrorTypeConfig, ErrorTypeFile, ErrorTypeData, ErrorTypeCapability:
		return false
	default:
		return false
	}
}

// IsType reports whether err, or the first structured error in its chain,
// has the given type.
func IsType(err error, errType ErrorType) bool {
	var e *Error
	if !errors.As(err, &e) {
		return false
	}
	return e.Type == errType
}

// captureStack records up to 32 frames, skipping the top skip frames.
func captureStack(skip int) []StackFrame {
	const maxFrames = 32
	frames := make([]StackFrame, 0, maxFrames)

	for i := skip; i < maxFrames+skip; i++ {
		pc, file, line, ok := runtime.Caller(i)
		if !ok {
			break
		}

		fn := runtime.FuncForPC(pc)
		if fn == nil {
			continue
		}

		frames = append(frames, StackFrame{
			Function: fn.Name(),
			File:     file,
			Line:     line,
		})
	}

	return frames
}
