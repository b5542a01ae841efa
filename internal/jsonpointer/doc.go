// Package jsonpointer implements RFC 6901 JSON Pointers over element trees.
//
// Pointers appear as the fragment of a $ref, so Parse accepts the
// percent-encoded form used in URI fragments as well as the plain form.
package jsonpointer
