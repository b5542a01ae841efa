// Package deref dereferences OpenAPI 3.x documents.
//
// Every Reference Object, and every Schema or Path Item holding $ref, is
// replaced by a copy of its target. References may point into the same
// document or into other documents fetched through a loader.Loader. Schemas
// composed with allOf are flattened into a single schema (see package
// compose) unless strict mode is selected, and optional hooks compute
// defaults for schema properties and parameters.
//
// Failures at individual nodes do not stop the walk. They are collected as
// [Record] values in [Result.Errors], each naming the structural path of the
// offending keyword, and the node is left as it was. Only invalid options,
// a root document that cannot be loaded and a cancelled context are fatal.
//
// # Circular references
//
// A reference whose target is already being expanded further up the same
// chain is left in place as an unexpanded $ref. No error is recorded for it.
//
// # Provenance
//
// With WithAllowMetaPatches(true), every dereferenced element records the
// absolute URI of its target in the "$$ref" metadata entry.
// element.ToPatchedValue exposes that entry as a "$$ref" member.
package deref
