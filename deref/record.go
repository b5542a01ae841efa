package deref

import (
	"errors"
	"strings"

	"github.com/erraggy/oasderef/internal/jsonpointer"
	"github.com/erraggy/oasderef/oaserrors"
)

// RecordKind classifies a collected failure.
type RecordKind string

// Record kinds.
const (
	KindUnresolvableReference     RecordKind = "UnresolvableReference"
	KindInvalidComposition        RecordKind = "InvalidComposition"
	KindHookExecutionFailure      RecordKind = "HookExecutionFailure"
	KindUnresolvableExternalValue RecordKind = "UnresolvableExternalValue"
	KindLoadFailure               RecordKind = "LoadFailure"
	KindResourceLimit             RecordKind = "ResourceLimit"
)

// Record is a non-fatal failure collected while dereferencing. The node it
// concerns is left unchanged.
type Record struct {
	Kind    RecordKind
	Message string
	// FullPath is the structural path of the offending keyword from the root.
	FullPath []string
	// Ref is the $ref value for reference failures.
	Ref string
	// ExternalValue is the culprit of UnresolvableExternalValue records.
	ExternalValue string
	Cause         error
}

// Error returns the record message.
func (r *Record) Error() string {
	return r.Message
}

// Unwrap returns the underlying cause for error chaining.
func (r *Record) Unwrap() error {
	return r.Cause
}

// Pointer returns FullPath as a JSON pointer.
func (r *Record) Pointer() string {
	return jsonpointer.Compile(r.FullPath)
}

// String includes the location of the failure.
func (r *Record) String() string {
	var b strings.Builder
	b.WriteString(r.Message)
	if len(r.FullPath) > 0 {
		b.WriteString(" (at ")
		b.WriteString(r.Pointer())
		b.WriteString(")")
	}
	return b.String()
}

func newRecord(path []string, cause error) *Record {
	rec := &Record{
		Message:  cause.Error(),
		FullPath: path,
		Cause:    cause,
	}
	var (
		refErr   *oaserrors.ReferenceError
		loadErr  *oaserrors.LoadError
		evErr    *oaserrors.ExternalValueError
		compErr  *oaserrors.CompositionError
		hookErr  *oaserrors.HookError
		limitErr *oaserrors.ResourceLimitError
	)
	switch {
	case errors.As(cause, &evErr):
		rec.Kind = KindUnresolvableExternalValue
		rec.ExternalValue = evErr.ExternalValue
	case errors.As(cause, &refErr):
		rec.Kind = KindUnresolvableReference
		if errors.As(refErr.Cause, &loadErr) {
			rec.Kind = KindLoadFailure
		}
		rec.Ref = refErr.Ref
	case errors.As(cause, &loadErr):
		rec.Kind = KindLoadFailure
	case errors.As(cause, &compErr):
		rec.Kind = KindInvalidComposition
	case errors.As(cause, &hookErr):
		rec.Kind = KindHookExecutionFailure
	case errors.As(cause, &limitErr):
		rec.Kind = KindResourceLimit
	default:
		// Only reference resolution records causes outside the taxonomy.
		rec.Kind = KindUnresolvableReference
	}
	return rec
}
