package element

import (
	"fmt"
	"sort"
)

// FromValue builds a generic element tree from a plain Go value.
// Maps are converted with their keys sorted, since Go maps carry no order.
// Supported leaves are string, bool, nil and the integer and float types.
func FromValue(v any) (*Element, error) {
	switch val := v.(type) {
	case nil:
		return NewNull(), nil
	case *Element:
		return val.Clone(), nil
	case string:
		return NewString(val), nil
	case bool:
		return NewBool(val), nil
	case int:
		return NewInt(int64(val)), nil
	case int8:
		return NewInt(int64(val)), nil
	case int16:
		return NewInt(int64(val)), nil
	case int32:
		return NewInt(int64(val)), nil
	case int64:
		return NewInt(val), nil
	case uint:
		return NewInt(int64(val)), nil
	case uint8:
		return NewInt(int64(val)), nil
	case uint16:
		return NewInt(int64(val)), nil
	case uint32:
		return NewInt(int64(val)), nil
	case uint64:
		return NewFloat(float64(val)), nil
	case float32:
		return NewFloat(float64(val)), nil
	case float64:
		return NewFloat(val), nil
	case []any:
		arr := NewArray(KindGeneric)
		for i, item := range val {
			child, err := FromValue(item)
			if err != nil {
				return nil, fmt.Errorf("[%d]: %w", i, err)
			}
			arr.items = append(arr.items, child)
		}
		return arr, nil
	case []string:
		arr := NewArray(KindGeneric)
		for _, item := range val {
			arr.items = append(arr.items, NewString(item))
		}
		return arr, nil
	case map[string]any:
		keys := make([]string, 0, len(val))
		for k := range val {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		obj := NewObject(KindGeneric)
		for _, k := range keys {
			child, err := FromValue(val[k])
			if err != nil {
				return nil, fmt.Errorf("%s: %w", k, err)
			}
			obj.members = append(obj.members, Member{Key: k, Value: child})
		}
		return obj, nil
	default:
		return nil, fmt.Errorf("element: unsupported value type %T", v)
	}
}

// MustFromValue is like FromValue but panics on unsupported values.
// It is intended for literals in tests and examples.
func MustFromValue(v any) *Element {
	e, err := FromValue(v)
	if err != nil {
		panic(err)
	}
	return e
}

// ToValue materializes e into plain Go values: map[string]any, []any,
// string, int64, float64, bool and nil. Metadata is not included.
func ToValue(e *Element) any {
	return toValue(e, false)
}

// ToPatchedValue is like ToValue, but objects carrying provenance metadata
// expose it as a "$$ref" member.
func ToPatchedValue(e *Element) any {
	return toValue(e, true)
}

func toValue(e *Element, patched bool) any {
	if e == nil {
		return nil
	}
	switch e.Type {
	case TypeObject:
		m := make(map[string]any, len(e.members)+1)
		for _, mem := range e.members {
			m[mem.Key] = toValue(mem.Value, patched)
		}
		if patched {
			if origin, ok := e.MetaString(MetaProvenance); ok {
				if _, exists := m[MetaProvenance]; !exists {
					m[MetaProvenance] = origin
				}
			}
		}
		return m
	case TypeArray:
		s := make([]any, len(e.items))
		for i, it := range e.items {
			s[i] = toValue(it, patched)
		}
		return s
	default:
		return e.scalar
	}
}

// Patched returns a deep copy of e in which objects carrying provenance
// metadata hold it as a trailing "$$ref" member. Member order is kept.
func Patched(e *Element) *Element {
	c := e.Clone()
	patch(c)
	return c
}

func patch(e *Element) {
	for _, m := range e.Members() {
		patch(m.Value)
	}
	for _, it := range e.Items() {
		patch(it)
	}
	if origin, ok := e.MetaString(MetaProvenance); ok && e.IsObject() && !e.Has(MetaProvenance) {
		e.Set(MetaProvenance, NewString(origin))
	}
}
