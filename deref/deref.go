package deref

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/erraggy/oasderef/element"
	"github.com/erraggy/oasderef/loader"
	"github.com/erraggy/oasderef/oaserrors"
)

// Result is the outcome of a dereference call.
type Result struct {
	// Element is the dereferenced tree. It never aliases the input.
	Element *element.Element
	// Errors lists the non-fatal failures in the order they were met.
	Errors []*Record
	// InvocationID identifies the call in log output.
	InvocationID string
}

// HasErrors reports whether any failure was collected.
func (r *Result) HasErrors() bool {
	return len(r.Errors) > 0
}

// Value materializes the result. With patched set, provenance metadata
// is surfaced as "$$ref" members.
func (r *Result) Value(patched bool) any {
	if patched {
		return element.ToPatchedValue(r.Element)
	}
	return element.ToValue(r.Element)
}

// Dereference resolves every reference in root, flattens allOf compositions
// and runs the configured hooks. root is not modified.
//
// A generic tree holding an "openapi" member is refracted into an OpenAPI
// tree first; other trees are expected to carry their kinds already.
//
// Node-level failures are collected in Result.Errors. The returned error is
// reserved for invalid options and for the context being done.
//
// Example:
//
//	result, err := deref.Dereference(ctx, root,
//	    deref.WithBaseURI("https://example.com/api/openapi.yaml"),
//	    deref.WithAllowMetaPatches(true),
//	)
func Dereference(ctx context.Context, root *element.Element, opts ...Option) (*Result, error) {
	cfg, err := applyOptions(opts...)
	if err != nil {
		return nil, fmt.Errorf("deref: invalid options: %w", err)
	}
	if root == nil {
		return nil, &oaserrors.ConfigError{Option: "root", Message: "must not be nil"}
	}
	return run(ctx, cfg, root)
}

// DereferenceURL loads the document at location and dereferences it. The
// location becomes the base URI unless WithBaseURI says otherwise. Failing
// to load the root document is fatal.
func DereferenceURL(ctx context.Context, location string, opts ...Option) (*Result, error) {
	cfg, err := applyOptions(opts...)
	if err != nil {
		return nil, fmt.Errorf("deref: invalid options: %w", err)
	}
	location = loader.Normalize(location)
	root, err := cfg.loader.Load(ctx, location)
	if err != nil {
		return nil, err
	}
	if cfg.baseURI == "" {
		cfg.baseURI = location
	}
	return run(ctx, cfg, root)
}

func run(ctx context.Context, cfg *config, root *element.Element) (*Result, error) {
	id := uuid.NewString()
	logger := cfg.logger.With("invocation", id)

	location, fragment, _ := strings.Cut(cfg.baseURI, "#")
	d := &dereferencer{
		ctx:            ctx,
		cfg:            cfg,
		logger:         logger,
		source:         root,
		rootLocation:   loader.Normalize(location),
		rootIsFragment: fragment != "" && fragment != "/",
		docs:           make(map[string]*element.Element),
	}

	work := root.Clone()
	if work.Kind == element.KindGeneric && work.IsObject() && work.Has("openapi") {
		element.Refract(work)
	}

	start := time.Now()
	logger.Debug("dereference started", "base", d.rootLocation, "mode", string(cfg.mode))
	out, err := d.visit(work, walkState{base: d.rootLocation})
	if err != nil {
		logger.Debug("dereference aborted", "error", err)
		return nil, fmt.Errorf("deref: %w", err)
	}
	if d.rootLocation != "" && out != nil {
		out.SetMeta(element.MetaRefOrigin, d.rootLocation)
	}
	logger.Debug("dereference finished",
		"errors", len(d.errors),
		"documents", len(d.docs),
		"elapsed", time.Since(start),
	)
	return &Result{Element: out, Errors: d.errors, InvocationID: id}, nil
}
