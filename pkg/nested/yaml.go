package nested

import (
	"errors"
	"io"
	"math"
	"strconv"

	"gopkg.in/yaml.v3"

	stringpool "github.com/ajitpratap0/tidify/pkg/strings"
	"github.com/ajitpratap0/tidify/pkg/tidyerrors"
)

// DecodeYAML decodes YAML from r keeping mapping keys in document order.
// A single document decodes to its value; a multi-document stream decodes
// to a Sequence with one item per document.
func DecodeYAML(r io.Reader) (Value, error) {
	dec := yaml.NewDecoder(r)

	var docs []Value
	for {
		var node yaml.Node
		err := dec.Decode(&node)
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return Value{}, tidyerrors.Wrap(err, tidyerrors.ErrorTypeData, "failed to decode YAML").
				WithDetail("document", len(docs))
		}
		v, err := fromYAMLNode(&node, "")
		if err != nil {
			return Value{}, err
		}
		docs = append(docs, v)
	}

	switch len(docs) {
	case 0:
		return NullValue(), nil
	case 1:
		return docs[0], nil
	default:
		return Value{kind: Sequence, items: docs}, nil
	}
}

func fromYAMLNode(node *yaml.Node, path string) (Value, error) {
	switch node.Kind {
	case yaml.DocumentNode:
		if len(node.Content) == 0 {
			return NullValue(), nil
		}
		return fromYAMLNode(node.Content[0], path)
	case yaml.AliasNode:
		return fromYAMLNode(node.Alias, path)
	case yaml.ScalarNode:
		return fromYAMLScalar(node), nil
	case yaml.SequenceNode:
		items := make([]Value, len(node.Content))
		for i, child := range node.Content {
			v, err := fromYAMLNode(child, indexPath(path, i))
			if err != nil {
				return Value{}, err
			}
			items[i] = v
		}
		return Value{kind: Sequence, items: items}, nil
	case yaml.MappingNode:
		return fromYAMLMapping(node, path)
	default:
		return Value{}, shapeError(stringpool.Sprintf("unsupported YAML node kind %d", node.Kind), path)
	}
}

func fromYAMLMapping(node *yaml.Node, path string) (Value, error) {
	entries := make([]Entry, 0, len(node.Content)/2)
	var merged []Entry

	for i := 0; i+1 < len(node.Content); i += 2 {
		keyNode, valueNode := node.Content[i], node.Content[i+1]

		if keyNode.ShortTag() == "!!merge" {
			v, err := fromYAMLNode(valueNode, path)
			if err != nil {
				return Value{}, err
			}
			merged = append(merged, mergeSources(v)...)
			continue
		}

		if keyNode.Kind != yaml.ScalarNode {
			return Value{}, shapeError("YAML mapping keys must be scalars", path)
		}
		v, err := fromYAMLNode(valueNode, joinPath(path, keyNode.Value))
		if err != nil {
			return Value{}, err
		}
		entries = append(entries, E(keyNode.Value, v))
	}

	// Explicit keys win over merged ones.
	for _, m := range merged {
		explicit := false
		for _, e := range entries {
			if e.Key == m.Key {
				explicit = true
				break
			}
		}
		if !explicit {
			entries = append(entries, m)
		}
	}
	return Map(entries...), nil
}

// mergeSources flattens the value of a "<<" key, which is a mapping or a
// sequence of mappings.
func mergeSources(v Value) []Entry {
	switch v.Kind() {
	case Mapping:
		return v.Entries()
	case Sequence:
		var out []Entry
		for _, item := range v.Items() {
			out = append(out, item.Entries()...)
		}
		return out
	default:
		return nil
	}
}

func fromYAMLScalar(node *yaml.Node) Value {
	switch node.ShortTag() {
	case "!!null":
		return NullValue()
	case "!!bool":
		var b bool
		if err := node.Decode(&b); err == nil {
			return BoolValue(b)
		}
	case "!!int":
		var i int64
		if err := node.Decode(&i); err == nil {
			return IntValue(i)
		}
		var u uint64
		if err := node.Decode(&u); err == nil {
			return Leaf(Uint(u))
		}
	case "!!float":
		var f float64
		if err := node.Decode(&f); err == nil && !math.IsInf(f, 0) && !math.IsNaN(f) {
			return Num(strconv.FormatFloat(f, 'g', -1, 64))
		}
	}
	return Str(node.Value)
}
