// Package element provides the ordered document tree that oasderef operates on.
//
// An Element carries a structural Type (object, array, string, number,
// boolean, null) and a semantic Kind layered on top of it (schema,
// parameter, pathItem, ...). Object members keep their insertion order
// through every transformation, and each element carries metadata that is
// not part of its semantic value.
package element

import (
	"fmt"
	"math"
)

// Type is the structural shape of an element.
type Type int

const (
	// TypeNull is the JSON null value.
	TypeNull Type = iota
	// TypeBoolean is a JSON boolean.
	TypeBoolean
	// TypeNumber is a JSON number, stored as int64 or float64.
	TypeNumber
	// TypeString is a JSON string.
	TypeString
	// TypeArray is an ordered list of elements.
	TypeArray
	// TypeObject is an ordered list of key/element members.
	TypeObject
)

// String returns the JSON name of the type.
func (t Type) String() string {
	switch t {
	case TypeNull:
		return "null"
	case TypeBoolean:
		return "boolean"
	case TypeNumber:
		return "number"
	case TypeString:
		return "string"
	case TypeArray:
		return "array"
	case TypeObject:
		return "object"
	default:
		return fmt.Sprintf("Type(%d)", int(t))
	}
}

// Kind is the semantic kind of an element. The zero value is a generic element.
type Kind string

// Semantic kinds assigned by Refract.
const (
	KindGeneric        Kind = ""
	KindOpenAPI        Kind = "openapi"
	KindInfo           Kind = "info"
	KindServer         Kind = "server"
	KindTag            Kind = "tag"
	KindPaths          Kind = "paths"
	KindPathItem       Kind = "pathItem"
	KindOperation      Kind = "operation"
	KindParameter      Kind = "parameter"
	KindRequestBody    Kind = "requestBody"
	KindResponses      Kind = "responses"
	KindResponse       Kind = "response"
	KindMediaType      Kind = "mediaType"
	KindEncoding       Kind = "encoding"
	KindHeader         Kind = "header"
	KindExample        Kind = "example"
	KindLink           Kind = "link"
	KindCallback       Kind = "callback"
	KindSecurityScheme Kind = "securityScheme"
	KindComponents     Kind = "components"
	KindSchema         Kind = "schema"
	KindReference      Kind = "reference"
)

// Metadata keys used across packages.
const (
	// MetaProvenance holds the absolute URI a dereferenced element was copied from.
	MetaProvenance = "$$ref"
	// MetaReferencedElement holds the Kind a reference element is expected to resolve to.
	MetaReferencedElement = "referenced-element"
	// MetaRefOrigin holds the location of the document a dereferenced tree came from.
	MetaRefOrigin = "ref-origin"
)

// Member is a single key/value pair of an object element.
type Member struct {
	Key   string
	Value *Element
}

// Element is a node of the document tree.
type Element struct {
	Type Type
	Kind Kind
	// Meta holds annotations that travel with the node but are not part of its value.
	Meta map[string]any

	members []Member
	items   []*Element
	scalar  any
}

// NewObject creates an empty object element of the given kind.
func NewObject(kind Kind) *Element {
	return &Element{Type: TypeObject, Kind: kind}
}

// NewArray creates an array element of the given kind holding items.
func NewArray(kind Kind, items ...*Element) *Element {
	return &Element{Type: TypeArray, Kind: kind, items: items}
}

// NewString creates a string element.
func NewString(s string) *Element {
	return &Element{Type: TypeString, scalar: s}
}

// NewBool creates a boolean element.
func NewBool(b bool) *Element {
	return &Element{Type: TypeBoolean, scalar: b}
}

// NewNull creates a null element.
func NewNull() *Element {
	return &Element{Type: TypeNull}
}

// NewInt creates an integral number element.
func NewInt(n int64) *Element {
	return &Element{Type: TypeNumber, scalar: n}
}

// NewFloat creates a number element. Integral values are stored as int64.
func NewFloat(f float64) *Element {
	if f == math.Trunc(f) && !math.IsInf(f, 0) && math.Abs(f) < 1<<53 {
		return NewInt(int64(f))
	}
	return &Element{Type: TypeNumber, scalar: f}
}

// IsObject reports whether e is an object element.
func (e *Element) IsObject() bool { return e != nil && e.Type == TypeObject }

// IsArray reports whether e is an array element.
func (e *Element) IsArray() bool { return e != nil && e.Type == TypeArray }

// IsBoolean reports whether e is a boolean element.
func (e *Element) IsBoolean() bool { return e != nil && e.Type == TypeBoolean }

// IsPrimitive reports whether e is a string, number, boolean or null.
func (e *Element) IsPrimitive() bool {
	return e != nil && e.Type != TypeObject && e.Type != TypeArray
}

// Scalar returns the payload of a leaf element (string, int64, float64, bool or nil).
func (e *Element) Scalar() any {
	if e == nil {
		return nil
	}
	return e.scalar
}

// StringValue returns the string payload and whether e is a string.
func (e *Element) StringValue() (string, bool) {
	if e == nil || e.Type != TypeString {
		return "", false
	}
	s, ok := e.scalar.(string)
	return s, ok
}

// BoolValue returns the boolean payload and whether e is a boolean.
func (e *Element) BoolValue() (bool, bool) {
	if e == nil || e.Type != TypeBoolean {
		return false, false
	}
	b, ok := e.scalar.(bool)
	return b, ok
}

// Float returns the numeric payload as float64 and whether e is a number.
func (e *Element) Float() (float64, bool) {
	if e == nil || e.Type != TypeNumber {
		return 0, false
	}
	switch n := e.scalar.(type) {
	case int64:
		return float64(n), true
	case float64:
		return n, true
	}
	return 0, false
}

// Len returns the number of members or items.
func (e *Element) Len() int {
	switch {
	case e.IsObject():
		return len(e.members)
	case e.IsArray():
		return len(e.items)
	}
	return 0
}

// Members returns the object's members in order. The slice must not be modified.
func (e *Element) Members() []Member {
	if !e.IsObject() {
		return nil
	}
	return e.members
}

// Keys returns the object's keys in order.
func (e *Element) Keys() []string {
	if !e.IsObject() {
		return nil
	}
	keys := make([]string, len(e.members))
	for i, m := range e.members {
		keys[i] = m.Key
	}
	return keys
}

// Get returns the member value for key, or nil.
func (e *Element) Get(key string) *Element {
	if !e.IsObject() {
		return nil
	}
	for _, m := range e.members {
		if m.Key == key {
			return m.Value
		}
	}
	return nil
}

// Has reports whether the object holds key.
func (e *Element) Has(key string) bool {
	return e.index(key) >= 0
}

// GetString returns the string value of member key.
func (e *Element) GetString(key string) (string, bool) {
	return e.Get(key).StringValue()
}

func (e *Element) index(key string) int {
	if !e.IsObject() {
		return -1
	}
	for i, m := range e.members {
		if m.Key == key {
			return i
		}
	}
	return -1
}

// Set assigns value to key. An existing key keeps its position; a new key is appended.
// Set panics when e is not an object.
func (e *Element) Set(key string, value *Element) {
	if !e.IsObject() {
		panic(fmt.Sprintf("element: Set(%q) on %s", key, e.Type))
	}
	if i := e.index(key); i >= 0 {
		e.members[i].Value = value
		return
	}
	e.members = append(e.members, Member{Key: key, Value: value})
}

// Delete removes key and reports whether it was present.
func (e *Element) Delete(key string) bool {
	i := e.index(key)
	if i < 0 {
		return false
	}
	e.members = append(e.members[:i], e.members[i+1:]...)
	return true
}

// Items returns the array's items in order. The slice must not be modified.
func (e *Element) Items() []*Element {
	if !e.IsArray() {
		return nil
	}
	return e.items
}

// Index returns the i-th item, or nil when out of range.
func (e *Element) Index(i int) *Element {
	if !e.IsArray() || i < 0 || i >= len(e.items) {
		return nil
	}
	return e.items[i]
}

// SetIndex replaces the i-th item. It panics when i is out of range.
func (e *Element) SetIndex(i int, value *Element) {
	e.items[i] = value
}

// Append adds items to the end of an array element.
func (e *Element) Append(items ...*Element) {
	if !e.IsArray() {
		panic(fmt.Sprintf("element: Append on %s", e.Type))
	}
	e.items = append(e.items, items...)
}

// SetMeta records a metadata value, allocating the map on first use.
func (e *Element) SetMeta(key string, value any) {
	if e.Meta == nil {
		e.Meta = make(map[string]any)
	}
	e.Meta[key] = value
}

// MetaString returns a string metadata value.
func (e *Element) MetaString(key string) (string, bool) {
	if e == nil || e.Meta == nil {
		return "", false
	}
	s, ok := e.Meta[key].(string)
	return s, ok
}

// DeleteMeta removes a metadata value.
func (e *Element) DeleteMeta(key string) {
	if e != nil && e.Meta != nil {
		delete(e.Meta, key)
	}
}

// Clone returns a deep copy of e, including metadata.
func (e *Element) Clone() *Element {
	if e == nil {
		return nil
	}
	c := &Element{Type: e.Type, Kind: e.Kind, scalar: e.scalar}
	if len(e.Meta) > 0 {
		c.Meta = make(map[string]any, len(e.Meta))
		for k, v := range e.Meta {
			c.Meta[k] = v
		}
	}
	if e.members != nil {
		c.members = make([]Member, len(e.members))
		for i, m := range e.members {
			c.members[i] = Member{Key: m.Key, Value: m.Value.Clone()}
		}
	}
	if e.items != nil {
		c.items = make([]*Element, len(e.items))
		for i, it := range e.items {
			c.items[i] = it.Clone()
		}
	}
	return c
}

// ShallowClone copies e's own fields and member list but shares child elements.
func (e *Element) ShallowClone() *Element {
	if e == nil {
		return nil
	}
	c := *e
	if e.members != nil {
		c.members = append([]Member(nil), e.members...)
	}
	if e.items != nil {
		c.items = append([]*Element(nil), e.items...)
	}
	if e.Meta != nil {
		c.Meta = make(map[string]any, len(e.Meta))
		for k, v := range e.Meta {
			c.Meta[k] = v
		}
	}
	return &c
}

// Equal reports whether a and b hold the same value. Kinds and metadata are ignored,
// and member order is significant.
func Equal(a, b *Element) bool {
	if a == nil || b == nil {
		return a == b
	}
	if a.Type != b.Type {
		return false
	}
	switch a.Type {
	case TypeObject:
		if len(a.members) != len(b.members) {
			return false
		}
		for i := range a.members {
			if a.members[i].Key != b.members[i].Key || !Equal(a.members[i].Value, b.members[i].Value) {
				return false
			}
		}
		return true
	case TypeArray:
		if len(a.items) != len(b.items) {
			return false
		}
		for i := range a.items {
			if !Equal(a.items[i], b.items[i]) {
				return false
			}
		}
		return true
	case TypeNumber:
		af, _ := a.Float()
		bf, _ := b.Float()
		return af == bf
	default:
		return a.scalar == b.scalar
	}
}
