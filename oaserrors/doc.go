// Package oaserrors provides structured error types for the oasderef library.
//
// Import path: github.com/erraggy/oasderef/oaserrors
//
// This package enables programmatic error handling via [errors.Is] and [errors.As],
// allowing callers to distinguish between different categories of errors and implement
// appropriate recovery strategies.
//
// # Error Types
//
//   - [ParseError]: YAML/JSON decoding failures
//   - [ReferenceError]: $ref resolution failures
//   - [CompositionError]: allOf is not an array, or holds non-object items
//   - [HookError]: a modelPropertyMacro or parameterMacro failed
//   - [ExternalValueError]: an Example externalValue could not be fetched
//   - [LoadError]: an external document could not be obtained
//   - [ResourceLimitError]: Resource exhaustion (depth, size limits)
//   - [ConfigError]: Invalid configuration or input options
//
// # Sentinel Errors
//
// Each error type has a corresponding sentinel error for use with errors.Is():
//
//   - [ErrParse]: Matches any [ParseError]
//   - [ErrReference]: Matches any [ReferenceError]
//   - [ErrComposition]: Matches any [CompositionError]
//   - [ErrHook]: Matches any [HookError]
//   - [ErrExternalValue]: Matches any [ExternalValueError]
//   - [ErrLoad]: Matches any [LoadError]
//   - [ErrResourceLimit]: Matches any [ResourceLimitError]
//   - [ErrConfig]: Matches any [ConfigError]
//
// # Root Causes
//
// Wrapping errors report the message of their deepest cause, found with
// [RootCause]. RootCause understands both Unwrap() and the Cause() method
// of github.com/pkg/errors:
//
//	var loadErr *oaserrors.LoadError
//	if errors.As(err, &loadErr) {
//	    fmt.Println("origin:", oaserrors.RootCause(loadErr))
//	}
package oaserrors
