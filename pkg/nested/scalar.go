package nested

import (
	"strconv"

	jsonpool "github.com/ajitpratap0/tidify/pkg/json"
)

// ScalarKind identifies the variant held by a Scalar.
type ScalarKind uint8

const (
	// KindNull is an explicit null from the input.
	KindNull ScalarKind = iota
	// KindBool is a boolean.
	KindBool
	// KindNumber is a number kept as its decimal text.
	KindNumber
	// KindString is a string.
	KindString
	// KindAbsent marks a table cell for a column the row never had. Decoders
	// never produce it; tidy.Tabularize does.
	KindAbsent
)

func (k ScalarKind) String() string {
	switch k {
	case KindNull:
		return "null"
	case KindBool:
		return "bool"
	case KindNumber:
		return "number"
	case KindString:
		return "string"
	case KindAbsent:
		return "absent"
	default:
		return "unknown"
	}
}

// Scalar is a leaf value. The zero Scalar is null.
type Scalar struct {
	kind ScalarKind
	b    bool
	text string
}

// Null returns the null scalar.
func Null() Scalar { return Scalar{kind: KindNull} }

// Absent returns the marker for a missing table cell.
func Absent() Scalar { return Scalar{kind: KindAbsent} }

// Bool returns a boolean scalar.
func Bool(b bool) Scalar { return Scalar{kind: KindBool, b: b} }

// String returns a string scalar.
func String(s string) Scalar { return Scalar{kind: KindString, text: s} }

// Number returns a number scalar from its decimal text. The text is kept
// verbatim, so large integers and exact decimals are not rounded.
func Number(text string) Scalar { return Scalar{kind: KindNumber, text: text} }

// Int returns a number scalar for i.
func Int(i int64) Scalar { return Number(strconv.FormatInt(i, 10)) }

// Uint returns a number scalar for u.
func Uint(u uint64) Scalar { return Number(strconv.FormatUint(u, 10)) }

// Float returns a number scalar for f using the shortest exact form.
func Float(f float64) Scalar { return Number(strconv.FormatFloat(f, 'g', -1, 64)) }

// Kind returns the variant of s.
func (s Scalar) Kind() ScalarKind { return s.kind }

// IsNull reports whether s is null.
func (s Scalar) IsNull() bool { return s.kind == KindNull }

// IsAbsent reports whether s is the missing-cell marker.
func (s Scalar) IsAbsent() bool { return s.kind == KindAbsent }

// BoolValue returns the boolean held by s; false for other kinds.
func (s Scalar) BoolValue() bool { return s.kind == KindBool && s.b }

// Text returns the string or number text held by s; "" for other kinds.
func (s Scalar) Text() string {
	if s.kind == KindString || s.kind == KindNumber {
		return s.text
	}
	return ""
}

// Int64 parses a number scalar as an integer.
func (s Scalar) Int64() (int64, bool) {
	if s.kind != KindNumber {
		return 0, false
	}
	i, err := strconv.ParseInt(s.text, 10, 64)
	return i, err == nil
}

// Float64 parses a number scalar as a float.
func (s Scalar) Float64() (float64, bool) {
	if s.kind != KindNumber {
		return 0, false
	}
	f, err := strconv.ParseFloat(s.text, 64)
	return f, err == nil
}

// Native returns s as a plain Go value: nil for null and absent, bool,
// int64 for integral numbers, float64 for other numbers, or string.
func (s Scalar) Native() interface{} {
	switch s.kind {
	case KindBool:
		return s.b
	case KindNumber:
		if i, ok := s.Int64(); ok {
			return i
		}
		if f, ok := s.Float64(); ok {
			return f
		}
		return s.text
	case KindString:
		return s.text
	default:
		return nil
	}
}

// String renders s for text outputs. Null and absent render empty.
func (s Scalar) String() string {
	switch s.kind {
	case KindBool:
		return strconv.FormatBool(s.b)
	case KindNumber, KindString:
		return s.text
	default:
		return ""
	}
}

// Equal reports whether two scalars have the same kind and content.
func (s Scalar) Equal(other Scalar) bool {
	return s == other
}

// MarshalJSON encodes numbers verbatim and both null and absent as null.
func (s Scalar) MarshalJSON() ([]byte, error) {
	switch s.kind {
	case KindBool:
		return []byte(strconv.FormatBool(s.b)), nil
	case KindNumber:
		return []byte(s.text), nil
	case KindString:
		return jsonpool.Marshal(s.text)
	default:
		return []byte("null"), nil
	}
}
