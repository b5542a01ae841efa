// Package oaserrors provides structured error types for oasderef.
//
// These error types enable programmatic error handling via errors.Is() and
// errors.As(), allowing callers to distinguish between different categories
// of errors and implement appropriate recovery strategies.
//
// # Error Categories
//
//   - ParseError: YAML/JSON decoding failures
//   - ReferenceError: $ref resolution failures and circular references
//   - CompositionError: malformed allOf compositions
//   - HookError: failures raised by user-supplied macros
//   - ExternalValueError: Example externalValue fetch failures
//   - LoadError: external documents that could not be obtained
//   - ResourceLimitError: Resource exhaustion (depth, size, count limits)
//   - ConfigError: Invalid configuration or input options
//
// # Usage with errors.As
//
//	result, err := deref.Dereference(ctx, root)
//	for _, rec := range result.Errors {
//	    var refErr *oaserrors.ReferenceError
//	    if errors.As(rec, &refErr) {
//	        fmt.Println("unresolved:", refErr.Ref)
//	    }
//	}
package oaserrors

import (
	"errors"
	"fmt"
)

// Sentinel errors for use with errors.Is().
// These allow quick checks without type assertions.
var (
	// ErrParse indicates a parsing failure occurred.
	ErrParse = errors.New("parse error")

	// ErrReference indicates a reference resolution failure.
	ErrReference = errors.New("reference error")

	// ErrComposition indicates an allOf composition could not be merged.
	ErrComposition = errors.New("composition error")

	// ErrHook indicates a user-supplied macro failed.
	ErrHook = errors.New("hook error")

	// ErrExternalValue indicates an Example externalValue could not be fetched.
	ErrExternalValue = errors.New("external value error")

	// ErrLoad indicates an external document could not be loaded.
	ErrLoad = errors.New("load error")

	// ErrResourceLimit indicates a resource limit was exceeded.
	ErrResourceLimit = errors.New("resource limit exceeded")

	// ErrConfig indicates an invalid configuration.
	ErrConfig = errors.New("configuration error")
)

// ParseError represents a failure to decode a document.
type ParseError struct {
	// Path is the file path or source identifier
	Path string
	// Line is the line number where the error occurred (0 if unknown)
	Line int
	// Column is the column number where the error occurred (0 if unknown)
	Column int
	// Message describes the parsing failure
	Message string
	// Cause is the underlying error, if any
	Cause error
}

// Error returns a human-readable error message.
func (e *ParseError) Error() string {
	msg := "parse error"
	if e.Path != "" {
		msg += " in " + e.Path
	}
	if e.Line > 0 {
		msg += fmt.Sprintf(" at line %d", e.Line)
		if e.Column > 0 {
			msg += fmt.Sprintf(", column %d", e.Column)
		}
	}
	if e.Message != "" {
		msg += ": " + e.Message
	}
	if e.Cause != nil {
		msg += ": " + e.Cause.Error()
	}
	return msg
}

// Unwrap returns the underlying cause for error chaining.
func (e *ParseError) Unwrap() error {
	return e.Cause
}

// Is reports whether target matches this error type.
func (e *ParseError) Is(target error) bool {
	return target == ErrParse
}

// ReferenceError represents a failure to resolve a $ref.
type ReferenceError struct {
	// Ref is the reference string that failed to resolve
	Ref string
	// RefType indicates the reference type: "internal" or "external"
	RefType string
	// Pointer is the JSON pointer prefix at which evaluation failed, if known
	Pointer string
	// Message provides additional context about the failure
	Message string
	// Cause is the underlying error, if any
	Cause error
}

// Error returns a human-readable error message.
// When a cause is present, only its root cause is reported so that
// intermediate wrappers do not drown the originating failure.
func (e *ReferenceError) Error() string {
	msg := "could not resolve reference"
	if e.Ref != "" {
		msg += " " + e.Ref
	}
	if e.Message != "" {
		msg += ": " + e.Message
	}
	if e.Cause != nil {
		msg += ": " + RootCause(e.Cause).Error()
	}
	return msg
}

// Unwrap returns the underlying cause for error chaining.
func (e *ReferenceError) Unwrap() error {
	return e.Cause
}

// Is reports whether target matches this error type.
func (e *ReferenceError) Is(target error) bool {
	return target == ErrReference
}

// CompositionError represents an allOf keyword that cannot be merged.
type CompositionError struct {
	// Path is the JSON pointer of the offending allOf keyword
	Path string
	// Message describes the malformed composition
	Message string
}

// Error returns a human-readable error message.
func (e *CompositionError) Error() string {
	msg := e.Message
	if msg == "" {
		msg = "invalid allOf composition"
	}
	if e.Path != "" {
		msg += " at " + e.Path
	}
	return msg
}

// Is reports whether target matches this error type.
func (e *CompositionError) Is(target error) bool {
	return target == ErrComposition
}

// HookError represents a failure raised by a user-supplied macro.
type HookError struct {
	// Hook names the macro: "modelPropertyMacro" or "parameterMacro"
	Hook string
	// Target identifies the item the macro was invoked for (property or parameter name)
	Target string
	// Cause is the error returned (or the panic raised) by the macro
	Cause error
}

// Error returns the macro's own message, prefixed with the hook name.
func (e *HookError) Error() string {
	msg := "hook error"
	if e.Hook != "" {
		msg = e.Hook + " failed"
	}
	if e.Target != "" {
		msg += " for " + e.Target
	}
	if e.Cause != nil {
		msg += ": " + RootCause(e.Cause).Error()
	}
	return msg
}

// Unwrap returns the underlying cause for error chaining.
func (e *HookError) Unwrap() error {
	return e.Cause
}

// Is reports whether target matches this error type.
func (e *HookError) Is(target error) bool {
	return target == ErrHook
}

// ExternalValueError represents an Example externalValue that could not be fetched.
type ExternalValueError struct {
	// ExternalValue is the value of the externalValue field
	ExternalValue string
	// Cause is the underlying error, if any
	Cause error
}

// Error returns a human-readable error message.
func (e *ExternalValueError) Error() string {
	msg := "could not resolve externalValue"
	if e.ExternalValue != "" {
		msg += " " + e.ExternalValue
	}
	if e.Cause != nil {
		msg += ": " + RootCause(e.Cause).Error()
	}
	return msg
}

// Unwrap returns the underlying cause for error chaining.
func (e *ExternalValueError) Unwrap() error {
	return e.Cause
}

// Is reports whether target matches this error type.
func (e *ExternalValueError) Is(target error) bool {
	return target == ErrExternalValue
}

// LoadError represents an external document that could not be obtained.
// Network and filesystem failures are always wrapped in a LoadError.
type LoadError struct {
	// Location is the URL or path of the document
	Location string
	// Cause is the underlying error, if any
	Cause error
}

// Error returns a human-readable error message.
func (e *LoadError) Error() string {
	msg := "failed to load document"
	if e.Location != "" {
		msg += " " + e.Location
	}
	if e.Cause != nil {
		msg += ": " + RootCause(e.Cause).Error()
	}
	return msg
}

// Unwrap returns the underlying cause for error chaining.
func (e *LoadError) Unwrap() error {
	return e.Cause
}

// Is reports whether target matches this error type.
func (e *LoadError) Is(target error) bool {
	return target == ErrLoad
}

// ResourceLimitError represents a resource exhaustion condition.
type ResourceLimitError struct {
	// ResourceType identifies what limit was exceeded
	// Common values: "ref_depth", "file_size"
	ResourceType string
	// Limit is the configured maximum value
	Limit int64
	// Actual is the value that exceeded the limit (may be 0 if unknown)
	Actual int64
	// Message provides additional context
	Message string
}

// Error returns a human-readable error message.
func (e *ResourceLimitError) Error() string {
	msg := "resource limit exceeded"
	if e.ResourceType != "" {
		msg += ": " + e.ResourceType
	}
	if e.Limit > 0 {
		msg += fmt.Sprintf(" (limit: %d", e.Limit)
		if e.Actual > 0 {
			msg += fmt.Sprintf(", actual: %d", e.Actual)
		}
		msg += ")"
	}
	if e.Message != "" {
		msg += ": " + e.Message
	}
	return msg
}

// Unwrap returns nil as ResourceLimitError has no underlying cause.
func (e *ResourceLimitError) Unwrap() error {
	return nil
}

// Is reports whether target matches this error type.
func (e *ResourceLimitError) Is(target error) bool {
	return target == ErrResourceLimit
}

// ConfigError represents an invalid configuration or input.
type ConfigError struct {
	// Option is the name of the problematic configuration option
	Option string
	// Value is the invalid value that was provided (may be nil)
	Value any
	// Message describes the configuration error
	Message string
	// Cause is the underlying error, if any
	Cause error
}

// Error returns a human-readable error message.
func (e *ConfigError) Error() string {
	msg := "configuration error"
	if e.Option != "" {
		msg += " for " + e.Option
	}
	if e.Value != nil {
		msg += fmt.Sprintf(" (value: %v)", e.Value)
	}
	if e.Message != "" {
		msg += ": " + e.Message
	}
	if e.Cause != nil {
		msg += ": " + e.Cause.Error()
	}
	return msg
}

// Unwrap returns the underlying cause for error chaining.
func (e *ConfigError) Unwrap() error {
	return e.Cause
}

// Is reports whether target matches this error type.
func (e *ConfigError) Is(target error) bool {
	return target == ErrConfig
}
