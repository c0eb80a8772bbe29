// Package nested defines the hierarchical input model for tidify: a tagged
// union of scalars, ordered mappings and sequences.
//
// Values are immutable once built. They come from constructors
//
//	v := nested.Map(
//	    nested.E("a", nested.IntValue(1)),
//	    nested.E("b", nested.Seq(nested.Str("x"), nested.Str("y"))),
//	)
//
// from decoders that preserve key order (DecodeJSON, DecodeJSONLines,
// DecodeYAML), or from arbitrary decoded Go values through FromAny.
package nested

import (
	"strconv"
)

// Kind identifies the variant held by a Value.
type Kind uint8

const (
	// Invalid is the kind of the zero Value.
	Invalid Kind = iota
	// ScalarValue holds a Scalar.
	ScalarValue
	// Mapping holds ordered key-value entries.
	Mapping
	// Sequence holds ordered items.
	Sequence
)

func (k Kind) String() string {
	switch k {
	case ScalarValue:
		return "scalar"
	case Mapping:
		return "mapping"
	case Sequence:
		return "sequence"
	default:
		return "invalid"
	}
}

// Value is a node of a nested document. The zero Value is Invalid and is
// rejected by the flattener.
type Value struct {
	kind    Kind
	scalar  Scalar
	entries []Entry
	items   []Value
}

// Entry is one key-value pair of a Mapping.
type Entry struct {
	Key   string
	Value Value
}

// E builds an Entry.
func E(key string, v Value) Entry {
	return Entry{Key: key, Value: v}
}

// Leaf wraps a Scalar in a Value.
func Leaf(s Scalar) Value {
	return Value{kind: ScalarValue, scalar: s}
}

// NullValue returns a null leaf.
func NullValue() Value { return Leaf(Null()) }

// BoolValue returns a boolean leaf.
func BoolValue(b bool) Value { return Leaf(Bool(b)) }

// Str returns a string leaf.
func Str(s string) Value { return Leaf(String(s)) }

// Num returns a number leaf from its decimal text.
func Num(text string) Value { return Leaf(Number(text)) }

// IntValue returns an integer leaf.
func IntValue(i int64) Value { return Leaf(Int(i)) }

// FloatValue returns a float leaf.
func FloatValue(f float64) Value { return Leaf(Float(f)) }

// Map builds a Mapping. A repeated key keeps its first position and takes
// the last value, matching how JSON decoders treat duplicate keys.
func Map(entries ...Entry) Value {
	out := make([]Entry, 0, len(entries))
	seen := make(map[string]int, len(entries))
	for _, e := range entries {
		if i, ok := seen[e.Key]; ok {
			out[i].Value = e.Value
			continue
		}
		seen[e.Key] = len(out)
		out = append(out, e)
	}
	return Value{kind: Mapping, entries: out}
}

// Seq builds a Sequence.
func Seq(items ...Value) Value {
	out := make([]Value, len(items))
	copy(out, items)
	return Value{kind: Sequence, items: out}
}

// Kind returns the variant of v.
func (v Value) Kind() Kind { return v.kind }

// IsValid reports whether v was built by a constructor.
func (v Value) IsValid() bool { return v.kind != Invalid }

// Scalar returns the leaf of a ScalarValue; null for other kinds.
func (v Value) Scalar() Scalar { return v.scalar }

// Entries returns the entries of a Mapping in order. The slice must not be
// modified.
func (v Value) Entries() []Entry { return v.entries }

// Items returns the items of a Sequence in order. The slice must not be
// modified.
func (v Value) Items() []Value { return v.items }

// Len returns the number of entries or items; 0 for scalars.
func (v Value) Len() int {
	switch v.kind {
	case Mapping:
		return len(v.entries)
	case Sequence:
		return len(v.items)
	default:
		return 0
	}
}

// Get returns the value stored under key in a Mapping.
func (v Value) Get(key string) (Value, bool) {
	for _, e := range v.entries {
		if e.Key == key {
			return e.Value, true
		}
	}
	return Value{}, false
}

// Index returns the i-th item of a Sequence.
func (v Value) Index(i int) (Value, bool) {
	if v.kind != Sequence || i < 0 || i >= len(v.items) {
		return Value{}, false
	}
	return v.items[i], true
}

// Interface converts v back to plain Go values: map[string]interface{},
// []interface{} and the scalar natives of Scalar.Native.
func (v Value) Interface() interface{} {
	switch v.kind {
	case ScalarValue:
		return v.scalar.Native()
	case Mapping:
		m := make(map[string]interface{}, len(v.entries))
		for _, e := range v.entries {
			m[e.Key] = e.Value.Interface()
		}
		return m
	case Sequence:
		s := make([]interface{}, len(v.items))
		for i, item := range v.items {
			s[i] = item.Interface()
		}
		return s
	default:
		return nil
	}
}

// String renders v compactly for debugging.
func (v Value) String() string {
	switch v.kind {
	case ScalarValue:
		if v.scalar.Kind() == KindString {
			return strconv.Quote(v.scalar.Text())
		}
		if v.scalar.IsNull() {
			return "null"
		}
		return v.scalar.String()
	case Mapping:
		s := "{"
		for i, e := range v.entries {
			if i > 0 {
				s += ", "
			}
			s += strconv.Quote(e.Key) + ": " + e.Value.String()
		}
		return s + "}"
	case Sequence:
		s := "["
		for i, item := range v.items {
			if i > 0 {
				s += ", "
			}
			s += item.String()
		}
		return s + "]"
	default:
		return "<invalid>"
	}
}
