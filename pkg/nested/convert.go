package nested

import (
	"encoding"
	"fmt"
	"reflect"
	"sort"
	"time"

	jsonpool "github.com/ajitpratap0/tidify/pkg/json"
	stringpool "github.com/ajitpratap0/tidify/pkg/strings"
	"github.com/ajitpratap0/tidify/pkg/tidyerrors"
)

var (
	timeType          = reflect.TypeOf(time.Time{})
	textMarshalerType = reflect.TypeOf((*encoding.TextMarshaler)(nil)).Elem()
)

// FromAny converts plain decoded Go data into a Value. Maps with string
// keys become Mappings with keys in sorted order (Go maps carry no order),
// slices and arrays become Sequences, and the usual scalar types become
// leaves. time.Time and encoding.TextMarshaler values become strings.
//
// Anything else (channels, functions, structs, maps with non-string keys)
// is rejected with an ErrorTypeShape error naming the offending path.
func FromAny(in interface{}) (Value, error) {
	return fromAny(in, "")
}

// MustFromAny is FromAny for literals in tests and examples; it panics on
// error.
func MustFromAny(in interface{}) Value {
	v, err := FromAny(in)
	if err != nil {
		panic(err)
	}
	return v
}

func fromAny(in interface{}, path string) (Value, error) {
	switch x := in.(type) {
	case nil:
		return NullValue(), nil
	case Value:
		if !x.IsValid() {
			return Value{}, shapeError("invalid nested value", path)
		}
		return x, nil
	case Scalar:
		return Leaf(x), nil
	case bool:
		return BoolValue(x), nil
	case string:
		return Str(x), nil
	case jsonpool.Number:
		return Num(x.String()), nil
	case int:
		return IntValue(int64(x)), nil
	case int8:
		return IntValue(int64(x)), nil
	case int16:
		return IntValue(int64(x)), nil
	case int32:
		return IntValue(int64(x)), nil
	case int64:
		return IntValue(x), nil
	case uint:
		return Leaf(Uint(uint64(x))), nil
	case uint8:
		return Leaf(Uint(uint64(x))), nil
	case uint16:
		return Leaf(Uint(uint64(x))), nil
	case uint32:
		return Leaf(Uint(uint64(x))), nil
	case uint64:
		return Leaf(Uint(x)), nil
	case float32:
		return FloatValue(float64(x)), nil
	case float64:
		return FloatValue(x), nil
	case []byte:
		return Str(string(x)), nil
	case time.Time:
		return Str(x.Format(time.RFC3339Nano)), nil
	case map[string]interface{}:
		keys := make([]string, 0, len(x))
		for k := range x {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		entries := make([]Entry, 0, len(keys))
		for _, k := range keys {
			child, err := fromAny(x[k], joinPath(path, k))
			if err != nil {
				return Value{}, err
			}
			entries = append(entries, E(k, child))
		}
		return Map(entries...), nil
	case []interface{}:
		items := make([]Value, len(x))
		for i, item := range x {
			child, err := fromAny(item, indexPath(path, i))
			if err != nil {
				return Value{}, err
			}
			items[i] = child
		}
		return Value{kind: Sequence, items: items}, nil
	}

	return fromReflect(reflect.ValueOf(in), path)
}

func fromReflect(rv reflect.Value, path string) (Value, error) {
	if rv.Type() != timeType && rv.Type().Implements(textMarshalerType) {
		if rv.Kind() == reflect.Pointer && rv.IsNil() {
			return NullValue(), nil
		}
		text, err := rv.Interface().(encoding.TextMarshaler).MarshalText()
		if err != nil {
			return Value{}, tidyerrors.Wrap(err, tidyerrors.ErrorTypeShape, "failed to marshal text value").
				WithDetail("path", displayPath(path))
		}
		return Str(string(text)), nil
	}

	switch rv.Kind() {
	case reflect.Pointer, reflect.Interface:
		if rv.IsNil() {
			return NullValue(), nil
		}
		return fromAny(rv.Elem().Interface(), path)
	case reflect.Bool:
		return BoolValue(rv.Bool()), nil
	case reflect.String:
		return Str(rv.String()), nil
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return IntValue(rv.Int()), nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return Leaf(Uint(rv.Uint())), nil
	case reflect.Float32, reflect.Float64:
		return FloatValue(rv.Float()), nil
	case reflect.Slice, reflect.Array:
		if rv.Kind() == reflect.Slice && rv.IsNil() {
			return NullValue(), nil
		}
		items := make([]Value, rv.Len())
		for i := 0; i < rv.Len(); i++ {
			child, err := fromAny(rv.Index(i).Interface(), indexPath(path, i))
			if err != nil {
				return Value{}, err
			}
			items[i] = child
		}
		return Value{kind: Sequence, items: items}, nil
	case reflect.Map:
		if rv.Type().Key().Kind() != reflect.String {
			return Value{}, shapeError(
				stringpool.Sprintf("unsupported map key type %s", rv.Type().Key()), path)
		}
		if rv.IsNil() {
			return NullValue(), nil
		}
		keys := rv.MapKeys()
		sort.Slice(keys, func(i, j int) bool { return keys[i].String() < keys[j].String() })
		entries := make([]Entry, 0, len(keys))
		for _, k := range keys {
			child, err := fromAny(rv.MapIndex(k).Interface(), joinPath(path, k.String()))
			if err != nil {
				return Value{}, err
			}
			entries = append(entries, E(k.String(), child))
		}
		return Map(entries...), nil
	}

	return Value{}, shapeError(stringpool.Sprintf("unsupported value of type %s", rv.Type()), path)
}

func shapeError(msg, path string) *tidyerrors.Error {
	return tidyerrors.New(tidyerrors.ErrorTypeShape, msg).WithDetail("path", displayPath(path))
}

// joinPath and indexPath build the diagnostic path used in shape errors.
// They use "." and "[i]" regardless of the column separator.
func joinPath(path, key string) string {
	if path == "" {
		return key
	}
	return stringpool.Concat(path, ".", key)
}

func indexPath(path string, i int) string {
	return stringpool.Concat(path, "[", fmt.Sprint(i), "]")
}

func displayPath(path string) string {
	if path == "" {
		return "$"
	}
	return path
}
