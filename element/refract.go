package element

import "strings"

// httpMethods lists the PathItem fields holding operations.
var httpMethods = []string{"get", "put", "post", "delete", "options", "head", "patch", "trace", "query"}

// schemaMapKeywords hold maps of subschemas.
var schemaMapKeywords = []string{"properties", "patternProperties", "$defs", "definitions", "dependentSchemas"}

// schemaListKeywords hold arrays of subschemas.
var schemaListKeywords = []string{"allOf", "anyOf", "oneOf", "prefixItems"}

// schemaKeywords hold a single subschema.
var schemaKeywords = []string{
	"additionalProperties", "not", "if", "then", "else", "contains", "propertyNames",
	"unevaluatedItems", "unevaluatedProperties", "contentSchema", "additionalItems",
}

// Refract tags a generic OpenAPI 3.x document tree with semantic kinds, in place,
// and returns it.
func Refract(root *Element) *Element {
	return RefractAs(root, KindOpenAPI)
}

// RefractAs tags e and its subtree as if e appeared where an element of the given
// kind is expected. Objects holding a string $ref in a position that accepts a
// Reference Object become KindReference, remembering the expected kind in
// MetaReferencedElement. Schemas and Path Items keep their kind and $ref keyword.
func RefractAs(e *Element, kind Kind) *Element {
	if e == nil {
		return nil
	}
	if acceptsReference(kind) && e.IsObject() {
		if _, ok := e.GetString("$ref"); ok {
			e.Kind = KindReference
			e.SetMeta(MetaReferencedElement, string(kind))
			return e
		}
	}

	switch kind {
	case KindSchema:
		refractSchema(e)
		return e
	case KindGeneric:
		e.Kind = KindGeneric
		return e
	}
	if !e.IsObject() {
		return e
	}
	e.Kind = kind

	switch kind {
	case KindOpenAPI:
		refractField(e, "info", KindInfo)
		refractList(e.Get("servers"), KindServer)
		refractField(e, "paths", KindPaths)
		refractMap(e.Get("webhooks"), KindPathItem)
		refractField(e, "components", KindComponents)
		refractList(e.Get("tags"), KindTag)
	case KindPaths, KindCallback:
		for _, m := range e.members {
			if !isExtension(m.Key) {
				RefractAs(m.Value, KindPathItem)
			}
		}
	case KindPathItem:
		for _, method := range httpMethods {
			refractField(e, method, KindOperation)
		}
		refractMap(e.Get("additionalOperations"), KindOperation)
		refractList(e.Get("parameters"), KindParameter)
		refractList(e.Get("servers"), KindServer)
	case KindOperation:
		refractList(e.Get("parameters"), KindParameter)
		refractField(e, "requestBody", KindRequestBody)
		refractField(e, "responses", KindResponses)
		refractMap(e.Get("callbacks"), KindCallback)
		refractList(e.Get("servers"), KindServer)
	case KindResponses:
		for _, m := range e.members {
			if !isExtension(m.Key) {
				RefractAs(m.Value, KindResponse)
			}
		}
	case KindResponse:
		refractMap(e.Get("headers"), KindHeader)
		refractMap(e.Get("content"), KindMediaType)
		refractMap(e.Get("links"), KindLink)
	case KindRequestBody:
		refractMap(e.Get("content"), KindMediaType)
	case KindMediaType:
		refractField(e, "schema", KindSchema)
		refractField(e, "itemSchema", KindSchema)
		refractMap(e.Get("examples"), KindExample)
		refractMap(e.Get("encoding"), KindEncoding)
	case KindEncoding:
		refractMap(e.Get("headers"), KindHeader)
	case KindParameter, KindHeader:
		refractField(e, "schema", KindSchema)
		refractMap(e.Get("content"), KindMediaType)
		refractMap(e.Get("examples"), KindExample)
	case KindComponents:
		refractMap(e.Get("schemas"), KindSchema)
		refractMap(e.Get("responses"), KindResponse)
		refractMap(e.Get("parameters"), KindParameter)
		refractMap(e.Get("examples"), KindExample)
		refractMap(e.Get("requestBodies"), KindRequestBody)
		refractMap(e.Get("headers"), KindHeader)
		refractMap(e.Get("securitySchemes"), KindSecurityScheme)
		refractMap(e.Get("links"), KindLink)
		refractMap(e.Get("callbacks"), KindCallback)
		refractMap(e.Get("pathItems"), KindPathItem)
		refractMap(e.Get("mediaTypes"), KindMediaType)
	case KindLink:
		refractField(e, "server", KindServer)
	}
	return e
}

func refractSchema(e *Element) {
	if !e.IsObject() && !e.IsBoolean() {
		return
	}
	e.Kind = KindSchema
	if e.IsBoolean() {
		return
	}
	for _, kw := range schemaMapKeywords {
		refractMap(e.Get(kw), KindSchema)
	}
	for _, kw := range schemaListKeywords {
		refractList(e.Get(kw), KindSchema)
	}
	for _, kw := range schemaKeywords {
		refractField(e, kw, KindSchema)
	}
	if items := e.Get("items"); items.IsArray() {
		refractList(items, KindSchema)
	} else {
		refractField(e, "items", KindSchema)
	}
}

func refractField(parent *Element, key string, kind Kind) {
	if child := parent.Get(key); child != nil {
		RefractAs(child, kind)
	}
}

func refractMap(e *Element, kind Kind) {
	for _, m := range e.Members() {
		RefractAs(m.Value, kind)
	}
}

func refractList(e *Element, kind Kind) {
	for _, it := range e.Items() {
		RefractAs(it, kind)
	}
}

// acceptsReference reports whether a Reference Object may stand in for kind.
func acceptsReference(kind Kind) bool {
	switch kind {
	case KindParameter, KindRequestBody, KindResponse, KindHeader, KindExample,
		KindLink, KindCallback, KindSecurityScheme, KindMediaType:
		return true
	}
	return false
}

func isExtension(key string) bool {
	return strings.HasPrefix(key, "x-")
}
