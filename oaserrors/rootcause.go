package oaserrors

import "reflect"

// maxCauseHops bounds chains made of non-pointer errors, which are not tracked for cycles.
const maxCauseHops = 1 << 16

// RootCause follows a chain of nested causes and returns the deepest error
// whose own cause link is absent or nil. An error without a cause link is
// returned as is, and RootCause(nil) returns nil.
//
// Both the standard library's Unwrap() error and the Cause() error method
// used by github.com/pkg/errors are followed. Errors that only implement
// Unwrap() []error (errors.Join) are treated as the end of the chain.
//
// The walk is iterative and stops on cycles.
func RootCause(err error) error {
	if err == nil {
		return nil
	}
	seen := make(map[error]struct{})
	for hops := 0; hops < maxCauseHops; hops++ {
		if reflect.TypeOf(err).Kind() == reflect.Pointer {
			if _, ok := seen[err]; ok {
				return err
			}
			seen[err] = struct{}{}
		}
		next := cause(err)
		if next == nil {
			return err
		}
		err = next
	}
	return err
}

// cause returns the next link of the chain, or nil at a boundary.
func cause(err error) error {
	switch e := err.(type) {
	case interface{ Unwrap() error }:
		return e.Unwrap()
	case interface{ Cause() error }:
		return e.Cause()
	default:
		return nil
	}
}
