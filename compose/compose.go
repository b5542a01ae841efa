// Package compose flattens allOf compositions into a single schema.
//
// Items are deep-merged left to right into an accumulator and the schema's
// own keywords are laid on top:
//
//   - objects merge key by key, recursively
//   - arrays concatenate, except enum arrays of primitives, which are
//     deduplicated keeping first-seen order
//   - other values are replaced by the later one
//   - the schema-level example and examples keywords are never merged; the
//     schema's own value wins, otherwise the first item that defines one.
//     Nested objects, including properties named "example", merge as usual
//   - "$$ref" provenance is dropped unless the schema itself carried it
//
// Inputs are never modified.
package compose

import (
	"github.com/erraggy/oasderef/element"
	"github.com/erraggy/oasderef/oaserrors"
)

const (
	keywordAllOf    = "allOf"
	keywordEnum     = "enum"
	keywordExample  = "example"
	keywordExamples = "examples"
)

// Composition error messages.
const (
	MsgNotArray      = "allOf must be an array"
	MsgItemNotObject = "Elements in allOf must be objects"
)

// Flatten returns a copy of schema with its allOf keyword merged away. A
// schema without allOf is returned as is. Malformed compositions yield a
// *oaserrors.CompositionError and a nil element.
func Flatten(schema *element.Element) (*element.Element, error) {
	if !schema.IsObject() || !schema.Has(keywordAllOf) {
		return schema, nil
	}
	allOf := schema.Get(keywordAllOf)
	if !allOf.IsArray() {
		return nil, &oaserrors.CompositionError{Message: MsgNotArray}
	}

	own := schema.ShallowClone()
	own.Delete(keywordAllOf)
	if allOf.Len() == 0 {
		return own.Clone(), nil
	}

	items := make([]*element.Element, 0, allOf.Len())
	for _, item := range allOf.Items() {
		if !item.IsObject() {
			return nil, &oaserrors.CompositionError{Message: MsgItemNotObject}
		}
		flat, err := Flatten(item)
		if err != nil {
			return nil, err
		}
		items = append(items, flat)
	}
	return Merge(own, items), nil
}

// Merge deep-merges items left to right and lays own on top. own keeps its
// kind and metadata.
func Merge(own *element.Element, items []*element.Element) *element.Element {
	acc := element.NewObject(own.Kind)
	for _, item := range items {
		acc = mergeSchema(acc, item, false)
	}
	result := mergeSchema(acc, own, true)

	result.Kind = own.Kind
	result.Meta = nil
	for k, v := range own.Meta {
		result.SetMeta(k, v)
	}
	if origin := own.Get(element.MetaProvenance); origin != nil {
		result.Set(element.MetaProvenance, origin.Clone())
	} else {
		result.Delete(element.MetaProvenance)
	}
	return result
}

// mergeSchema merges the keywords of src into a copy of dst. When both
// define example or examples, srcWins decides which value is kept.
func mergeSchema(dst, src *element.Element, srcWins bool) *element.Element {
	out := dst.Clone()
	for _, m := range src.Members() {
		switch {
		case !out.Has(m.Key):
			out.Set(m.Key, m.Value.Clone())
		case m.Key == keywordExample || m.Key == keywordExamples:
			if srcWins {
				out.Set(m.Key, m.Value.Clone())
			}
		default:
			out.Set(m.Key, mergeValues(m.Key, out.Get(m.Key), m.Value))
		}
	}
	return out
}

// mergeObjects returns a new object holding src merged into dst key by key.
func mergeObjects(dst, src *element.Element) *element.Element {
	out := dst.Clone()
	for _, m := range src.Members() {
		if !out.Has(m.Key) {
			out.Set(m.Key, m.Value.Clone())
			continue
		}
		out.Set(m.Key, mergeValues(m.Key, out.Get(m.Key), m.Value))
	}
	return out
}

func mergeValues(key string, a, b *element.Element) *element.Element {
	switch {
	case a.IsObject() && b.IsObject():
		return mergeObjects(a, b)
	case a.IsArray() && b.IsArray():
		if key == keywordEnum && allPrimitive(a) && allPrimitive(b) {
			return unionPrimitives(a, b)
		}
		merged := element.NewArray(a.Kind)
		for _, it := range a.Items() {
			merged.Append(it.Clone())
		}
		for _, it := range b.Items() {
			merged.Append(it.Clone())
		}
		return merged
	default:
		return b.Clone()
	}
}

func allPrimitive(arr *element.Element) bool {
	for _, it := range arr.Items() {
		if !it.IsPrimitive() {
			return false
		}
	}
	return true
}

func unionPrimitives(a, b *element.Element) *element.Element {
	out := element.NewArray(a.Kind)
	seen := func(v *element.Element) bool {
		for _, have := range out.Items() {
			if element.Equal(have, v) {
				return true
			}
		}
		return false
	}
	for _, arr := range []*element.Element{a, b} {
		for _, it := range arr.Items() {
			if !seen(it) {
				out.Append(it.Clone())
			}
		}
	}
	return out
}
