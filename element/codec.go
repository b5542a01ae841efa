package element

import (
	"bytes"
	"fmt"
	"strconv"
	"time"

	json "github.com/goccy/go-json"
	"go.yaml.in/yaml/v4"

	"github.com/erraggy/oasderef/oaserrors"
)

// Decode parses JSON or YAML into a generic element tree, preserving the
// key order of the source. The YAML parser handles both formats.
// source is only used to label errors.
func Decode(data []byte, source string) (*Element, error) {
	var node yaml.Node
	if err := yaml.Unmarshal(data, &node); err != nil {
		return nil, &oaserrors.ParseError{Path: source, Message: "invalid YAML or JSON", Cause: err}
	}
	if node.Kind == 0 {
		return nil, &oaserrors.ParseError{Path: source, Message: "empty document"}
	}
	return fromNode(&node, source, 0)
}

// maxAliasDepth guards against alias expansion bombs.
const maxAliasDepth = 64

func fromNode(n *yaml.Node, source string, aliasDepth int) (*Element, error) {
	switch n.Kind {
	case yaml.DocumentNode:
		if len(n.Content) == 0 {
			return NewNull(), nil
		}
		return fromNode(n.Content[0], source, aliasDepth)
	case yaml.AliasNode:
		if aliasDepth >= maxAliasDepth || n.Alias == nil {
			return nil, &oaserrors.ParseError{Path: source, Line: n.Line, Column: n.Column, Message: "alias nesting too deep"}
		}
		return fromNode(n.Alias, source, aliasDepth+1)
	case yaml.MappingNode:
		obj := NewObject(KindGeneric)
		for i := 0; i+1 < len(n.Content); i += 2 {
			k, v := n.Content[i], n.Content[i+1]
			child, err := fromNode(v, source, aliasDepth)
			if err != nil {
				return nil, err
			}
			obj.Set(k.Value, child)
		}
		return obj, nil
	case yaml.SequenceNode:
		arr := NewArray(KindGeneric)
		for _, c := range n.Content {
			child, err := fromNode(c, source, aliasDepth)
			if err != nil {
				return nil, err
			}
			arr.items = append(arr.items, child)
		}
		return arr, nil
	case yaml.ScalarNode:
		var v any
		if err := n.Decode(&v); err != nil {
			return nil, &oaserrors.ParseError{Path: source, Line: n.Line, Column: n.Column, Message: "invalid scalar", Cause: err}
		}
		if t, ok := v.(time.Time); ok {
			return NewString(t.Format(time.RFC3339Nano)), nil
		}
		e, err := FromValue(v)
		if err != nil {
			// Fall back to the raw text for exotic scalar types.
			return NewString(n.Value), nil //nolint:nilerr // unsupported scalars keep their source text
		}
		return e, nil
	default:
		return nil, &oaserrors.ParseError{Path: source, Line: n.Line, Column: n.Column, Message: fmt.Sprintf("unsupported node kind %d", n.Kind)}
	}
}

// MarshalJSON encodes e as compact JSON in member order.
func MarshalJSON(e *Element) ([]byte, error) {
	var buf bytes.Buffer
	if err := writeJSON(&buf, e); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// MarshalJSONIndent encodes e as indented JSON in member order.
func MarshalJSONIndent(e *Element, prefix, indent string) ([]byte, error) {
	data, err := MarshalJSON(e)
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if err := json.Indent(&buf, data, prefix, indent); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func writeJSON(buf *bytes.Buffer, e *Element) error {
	if e == nil {
		buf.WriteString("null")
		return nil
	}
	switch e.Type {
	case TypeObject:
		buf.WriteByte('{')
		for i, m := range e.members {
			if i > 0 {
				buf.WriteByte(',')
			}
			key, err := json.Marshal(m.Key)
			if err != nil {
				return err
			}
			buf.Write(key)
			buf.WriteByte(':')
			if err := writeJSON(buf, m.Value); err != nil {
				return err
			}
		}
		buf.WriteByte('}')
	case TypeArray:
		buf.WriteByte('[')
		for i, it := range e.items {
			if i > 0 {
				buf.WriteByte(',')
			}
			if err := writeJSON(buf, it); err != nil {
				return err
			}
		}
		buf.WriteByte(']')
	default:
		data, err := json.Marshal(e.scalar)
		if err != nil {
			return fmt.Errorf("element: encoding %s: %w", e.Type, err)
		}
		buf.Write(data)
	}
	return nil
}

// MarshalYAML encodes e as YAML in member order.
func MarshalYAML(e *Element) ([]byte, error) {
	return yaml.Marshal(toNode(e))
}

func toNode(e *Element) *yaml.Node {
	if e == nil {
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!null", Value: "null"}
	}
	switch e.Type {
	case TypeObject:
		n := &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
		for _, m := range e.members {
			n.Content = append(n.Content,
				&yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: m.Key},
				toNode(m.Value),
			)
		}
		return n
	case TypeArray:
		n := &yaml.Node{Kind: yaml.SequenceNode, Tag: "!!seq"}
		for _, it := range e.items {
			n.Content = append(n.Content, toNode(it))
		}
		return n
	case TypeString:
		s, _ := e.StringValue()
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: s}
	case TypeBoolean:
		b, _ := e.BoolValue()
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!bool", Value: strconv.FormatBool(b)}
	case TypeNumber:
		if i, ok := e.scalar.(int64); ok {
			return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!int", Value: strconv.FormatInt(i, 10)}
		}
		f, _ := e.Float()
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!float", Value: strconv.FormatFloat(f, 'g', -1, 64)}
	default:
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!null", Value: "null"}
	}
}
