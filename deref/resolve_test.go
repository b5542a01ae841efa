package deref

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/erraggy/oasderef/oaserrors"
)

func TestResolveLocation(t *testing.T) {
	dir := t.TempDir()
	tests := []struct {
		name string
		base string
		ref  string
		want string
	}{
		{"empty ref is the base", "https://example.com/api/openapi.yaml", "", "https://example.com/api/openapi.yaml"},
		{"relative to url", "https://example.com/api/openapi.yaml", "schemas/pet.yaml", "https://example.com/api/schemas/pet.yaml"},
		{"parent of url", "https://example.com/api/openapi.yaml", "../common.yaml", "https://example.com/common.yaml"},
		{"absolute url wins", "https://example.com/api/openapi.yaml", "https://other.org/x.json", "https://other.org/x.json"},
		{"relative to file", filepath.Join(dir, "openapi.yaml"), "./common.yaml", filepath.Join(dir, "common.yaml")},
		{"absolute path wins", filepath.Join(dir, "openapi.yaml"), "/etc/shared.yaml", "/etc/shared.yaml"},
		{"mem scheme", "mem://localhost/specs/openapi.yaml", "common.yaml", "mem://localhost/specs/common.yaml"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := resolveLocation(tt.base, tt.ref)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestLocate(t *testing.T) {
	tgt, err := locate("", "#/paths/~1pets~1%7Bid%7D/get")
	require.NoError(t, err)
	assert.Equal(t, "", tgt.location)
	assert.Equal(t, []string{"paths", "/pets/{id}", "get"}, tgt.tokens)
	assert.Equal(t, "#/paths/~1pets~1{id}/get", tgt.identity())

	_, err = locate("", "#no-slash")
	assert.Error(t, err)
}

func TestRecord(t *testing.T) {
	rec := &Record{Message: "boom", FullPath: []string{"paths", "/pets", "get"}}
	assert.Equal(t, "boom", rec.Error())
	assert.Equal(t, "/paths/~1pets/get", rec.Pointer())
	assert.Equal(t, "boom (at /paths/~1pets/get)", rec.String())
}

func TestNewRecordKinds(t *testing.T) {
	notFound := errors.New("not found")
	tests := []struct {
		name  string
		cause error
		kind  RecordKind
		ref   string
	}{
		{
			name:  "missing pointer target",
			cause: &oaserrors.ReferenceError{Ref: "#/a", Cause: errors.New("no member a")},
			kind:  KindUnresolvableReference,
			ref:   "#/a",
		},
		{
			name:  "unloadable document",
			cause: &oaserrors.ReferenceError{Ref: "b.yaml#/a", Cause: &oaserrors.LoadError{Location: "b.yaml", Cause: notFound}},
			kind:  KindLoadFailure,
			ref:   "b.yaml#/a",
		},
		{
			name:  "bare load error",
			cause: &oaserrors.LoadError{Location: "b.yaml", Cause: notFound},
			kind:  KindLoadFailure,
		},
		{
			name:  "external value",
			cause: &oaserrors.ExternalValueError{ExternalValue: "x.json", Cause: &oaserrors.LoadError{Cause: notFound}},
			kind:  KindUnresolvableExternalValue,
		},
		{
			name:  "composition",
			cause: &oaserrors.CompositionError{Message: "allOf must be an array"},
			kind:  KindInvalidComposition,
		},
		{
			name:  "hook",
			cause: &oaserrors.HookError{Hook: "parameterMacro", Cause: notFound},
			kind:  KindHookExecutionFailure,
		},
		{
			name:  "depth limit",
			cause: &oaserrors.ResourceLimitError{ResourceType: "ref_depth", Limit: 1},
			kind:  KindResourceLimit,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := newRecord([]string{"x"}, tt.cause)
			assert.Equal(t, tt.kind, rec.Kind)
			assert.Equal(t, tt.ref, rec.Ref)
			assert.Same(t, tt.cause, rec.Cause)
		})
	}
}
