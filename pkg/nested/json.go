package nested

import (
	"errors"
	"io"
	"strings"

	gojson "github.com/goccy/go-json"

	jsonpool "github.com/ajitpratap0/tidify/pkg/json"
	stringpool "github.com/ajitpratap0/tidify/pkg/strings"
	"github.com/ajitpratap0/tidify/pkg/tidyerrors"
)

// DecodeJSON decodes exactly one JSON document from r, keeping object keys
// in document order and numbers as their literal text. Trailing content
// other than whitespace is an error.
func DecodeJSON(r io.Reader) (Value, error) {
	dec := jsonpool.NewDecoder(r)

	v, err := decodeJSONValue(dec)
	if err != nil {
		return Value{}, tidyerrors.Wrap(unexpectedEOF(err), tidyerrors.ErrorTypeData, "failed to decode JSON document")
	}

	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return Value{}, tidyerrors.New(tidyerrors.ErrorTypeData, "unexpected content after JSON document")
	}
	return v, nil
}

// DecodeJSONLines decodes a stream of whitespace-separated JSON documents
// (JSON lines / NDJSON, or concatenated documents) into one Sequence.
func DecodeJSONLines(r io.Reader) (Value, error) {
	dec := jsonpool.NewDecoder(r)

	var items []Value
	for {
		v, err := decodeJSONValue(dec)
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return Value{}, tidyerrors.Wrap(err, tidyerrors.ErrorTypeData, "failed to decode JSON lines").
				WithDetail("record", len(items))
		}
		items = append(items, v)
	}
	return Value{kind: Sequence, items: items}, nil
}

// decodeJSONValue reads the next complete value from dec. It returns
// io.EOF only when the stream ends before a value starts.
func decodeJSONValue(dec *gojson.Decoder) (Value, error) {
	tok, err := dec.Token()
	if err != nil {
		return Value{}, err
	}
	return decodeJSONToken(dec, tok)
}

func decodeJSONToken(dec *gojson.Decoder, tok jsonpool.Token) (Value, error) {
	switch t := tok.(type) {
	case jsonpool.Delim:
		switch t {
		case '{':
			return decodeJSONObject(dec)
		case '[':
			return decodeJSONArray(dec)
		default:
			return Value{}, tidyerrors.New(tidyerrors.ErrorTypeData,
				stringpool.Sprintf("unexpected delimiter %q", rune(t)))
		}
	case nil:
		return NullValue(), nil
	case bool:
		return BoolValue(t), nil
	case string:
		return Str(t), nil
	case jsonpool.Number:
		// The token may alias the decoder's read buffer.
		return Num(strings.Clone(t.String())), nil
	case float64:
		return FloatValue(t), nil
	default:
		return Value{}, tidyerrors.New(tidyerrors.ErrorTypeData,
			stringpool.Sprintf("unexpected JSON token %v", tok))
	}
}

func decodeJSONObject(dec *gojson.Decoder) (Value, error) {
	entries := make([]Entry, 0, 8)
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return Value{}, unexpectedEOF(err)
		}
		key, ok := keyTok.(string)
		if !ok {
			return Value{}, tidyerrors.New(tidyerrors.ErrorTypeData,
				stringpool.Sprintf("expected object key, got %v", keyTok))
		}
		child, err := decodeJSONValue(dec)
		if err != nil {
			return Value{}, unexpectedEOF(err)
		}
		entries = append(entries, E(key, child))
	}
	if _, err := dec.Token(); err != nil { // closing '}'
		return Value{}, unexpectedEOF(err)
	}
	return Map(entries...), nil
}

func decodeJSONArray(dec *gojson.Decoder) (Value, error) {
	items := make([]Value, 0, 8)
	for dec.More() {
		child, err := decodeJSONValue(dec)
		if err != nil {
			return Value{}, unexpectedEOF(err)
		}
		items = append(items, child)
	}
	if _, err := dec.Token(); err != nil { // closing ']'
		return Value{}, unexpectedEOF(err)
	}
	return Value{kind: Sequence, items: items}, nil
}

// unexpectedEOF turns an EOF inside a composite value into a real error so
// callers looping until io.EOF do not mistake truncation for a clean end.
func unexpectedEOF(err error) error {
	if errors.Is(err, io.EOF) {
		return io.ErrUnexpectedEOF
	}
	return err
}
