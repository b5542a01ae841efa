// Package oasderef dereferences OpenAPI 3.x documents.
//
// Dereferencing replaces every $ref of a document with a copy of the element
// it points to, so that consumers can work with a single self-contained tree.
// References may point inside the same document or into other documents
// reachable by file path or URL.
//
// # Overview
//
// The library consists of the following packages:
//
//   - element: the ordered document tree, its JSON and YAML codecs and the
//     refraction that tags OpenAPI 3.x positions with semantic kinds
//   - deref: the dereference engine with its options, hooks and collected errors
//   - compose: the allOf flattening policy used by the engine
//   - loader: document retrieval with caching, rate limiting and size limits
//   - oaserrors: the error types shared by all packages
//
// # Installation
//
//	go get github.com/erraggy/oasderef
//
// # Quick Start
//
// Dereference a document on disk:
//
//	result, err := deref.DereferenceURL(ctx, "openapi.yaml")
//	if err != nil {
//		log.Fatal(err)
//	}
//	for _, rec := range result.Errors {
//		fmt.Println(rec)
//	}
//	data, _ := element.MarshalJSONIndent(result.Element, "", "  ")
//
// Dereference a tree you already hold, resolving relative references
// against a base URI:
//
//	root, err := element.Decode(data, "openapi.yaml")
//	if err != nil {
//		log.Fatal(err)
//	}
//	result, err := deref.Dereference(ctx, root,
//		deref.WithBaseURI("https://example.com/api/openapi.yaml"),
//		deref.WithAllowMetaPatches(true),
//	)
//
// # Errors
//
// Failures that concern a single node, such as an unresolvable reference or
// an invalid allOf, never abort the run. They are collected in
// deref.Result.Errors with the JSON pointer of the offending keyword, and the
// node is left as it was. Only invalid options and a cancelled context make
// Dereference return an error.
//
// # Command Line
//
// The oasderef command wraps the library:
//
//	oasderef deref --format yaml openapi.yaml
//	oasderef mcp
//	oasderef version
package oasderef
