package deref

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"path/filepath"
	"slices"
	"strings"

	"github.com/erraggy/oasderef/element"
	"github.com/erraggy/oasderef/internal/jsonpointer"
	"github.com/erraggy/oasderef/loader"
	"github.com/erraggy/oasderef/oaserrors"
)

const (
	keywordRef           = "$ref"
	keywordExternalValue = "externalValue"
	keywordValue         = "value"
)

// referenceDescriptor is the $ref of an element plus its sibling members,
// which override same-named keywords of the resolved copy.
type referenceDescriptor struct {
	pointer   string
	overrides []element.Member
}

func describeReference(e *element.Element) (referenceDescriptor, bool) {
	ref, ok := e.GetString(keywordRef)
	if !ok {
		return referenceDescriptor{}, false
	}
	desc := referenceDescriptor{pointer: ref}
	for _, m := range e.Members() {
		if m.Key == keywordRef || m.Key == element.MetaProvenance {
			continue
		}
		desc.overrides = append(desc.overrides, m)
	}
	return desc, true
}

// resolveLocation resolves the document part of a reference against base
// following RFC 3986. Local paths are joined against the directory of a
// file base.
func resolveLocation(base, ref string) (string, error) {
	if ref == "" {
		return base, nil
	}
	refURL, err := url.Parse(ref)
	if err != nil {
		return "", fmt.Errorf("invalid reference location %q: %w", ref, err)
	}
	if len(refURL.Scheme) > 1 {
		return ref, nil
	}
	if base == "" {
		return loader.Normalize(ref), nil
	}
	if baseURL, err := url.Parse(base); err == nil && len(baseURL.Scheme) > 1 {
		return baseURL.ResolveReference(refURL).String(), nil
	}
	if filepath.IsAbs(ref) {
		return filepath.Clean(ref), nil
	}
	return filepath.Join(filepath.Dir(base), filepath.FromSlash(refURL.Path)), nil
}

// target is a located reference.
type target struct {
	location string
	tokens   []string
}

// identity is the absolute URI of the target.
func (t target) identity() string {
	return t.location + "#" + jsonpointer.Compile(t.tokens)
}

func locate(base, ref string) (target, error) {
	loc, fragment, _ := strings.Cut(ref, "#")
	location, err := resolveLocation(base, loc)
	if err != nil {
		return target{}, err
	}
	tokens, err := jsonpointer.Parse(fragment)
	if err != nil {
		return target{}, err
	}
	return target{location: location, tokens: tokens}, nil
}

// expectedKind is the kind a resolved copy must take.
func expectedKind(e *element.Element) element.Kind {
	if e.Kind == element.KindReference {
		if k, ok := e.MetaString(element.MetaReferencedElement); ok {
			return element.Kind(k)
		}
		return element.KindGeneric
	}
	return e.Kind
}

// visitReference replaces a reference element by a walked copy of its
// target. Failures are recorded and leave e in place.
func (d *dereferencer) visitReference(e *element.Element, st walkState) (*element.Element, error) {
	desc, _ := describeReference(e)
	refPath := st.childPath(keywordRef)

	t, err := locate(st.base, desc.pointer)
	if err != nil {
		d.record(refPath, &oaserrors.ReferenceError{Ref: desc.pointer, Message: "malformed reference", Cause: err})
		return e, nil
	}

	internal := t.location == st.base
	if (internal && !d.cfg.resolveInternal) || (!internal && !d.cfg.resolveExternal) {
		return e, nil
	}

	identity := t.identity()
	if slices.Contains(st.chain, identity) {
		d.logger.Debug("leaving circular reference unexpanded", "ref", desc.pointer, "identity", identity)
		return e, nil
	}
	if len(st.chain) >= d.cfg.maxRefDepth {
		d.record(refPath, &oaserrors.ResourceLimitError{
			ResourceType: "ref_depth",
			Limit:        int64(d.cfg.maxRefDepth),
			Actual:       int64(len(st.chain) + 1),
			Message:      "reference " + desc.pointer + " nested too deeply",
		})
		return e, nil
	}

	refType := "external"
	if internal {
		refType = "internal"
	}
	doc, err := d.document(t.location)
	if err != nil {
		if fatal := d.fatal(err); fatal != nil {
			return nil, fatal
		}
		d.record(refPath, &oaserrors.ReferenceError{Ref: desc.pointer, RefType: refType, Cause: err})
		return e, nil
	}
	found, err := jsonpointer.Evaluate(doc, t.tokens)
	if err != nil {
		refErr := &oaserrors.ReferenceError{Ref: desc.pointer, RefType: refType, Cause: err}
		var evalErr *jsonpointer.EvaluationError
		if errors.As(err, &evalErr) {
			refErr.Pointer = evalErr.Prefix
		}
		d.record(refPath, refErr)
		return e, nil
	}

	replacement := found.Clone()
	replacement.Meta = nil
	element.RefractAs(replacement, expectedKind(e))
	if replacement.IsObject() {
		for _, o := range desc.overrides {
			replacement.Set(o.Key, o.Value.Clone())
		}
	}
	if d.cfg.allowMetaPatches {
		replacement.SetMeta(element.MetaProvenance, identity)
	}
	d.logger.Debug("resolved reference", "ref", desc.pointer, "identity", identity, "path", jsonpointer.Compile(st.path))

	next := st
	next.base = t.location
	next.chain = append(slices.Clip(st.chain), identity)
	return d.visit(replacement, next)
}

// visitExample fills value from externalValue.
func (d *dereferencer) visitExample(e *element.Element, st walkState) error {
	ev, ok := e.GetString(keywordExternalValue)
	if !ok || e.Has(keywordValue) || !d.cfg.resolveExternal {
		return nil
	}
	fail := func(cause error) error {
		if fatal := d.fatal(cause); fatal != nil {
			return fatal
		}
		d.record(st.childPath(keywordExternalValue), &oaserrors.ExternalValueError{ExternalValue: ev, Cause: cause})
		return nil
	}

	loc, _, _ := strings.Cut(ev, "#")
	if loc == "" {
		return fail(errors.New("externalValue must name a document"))
	}
	location, err := resolveLocation(st.base, loc)
	if err != nil {
		return fail(err)
	}
	doc, err := d.document(location)
	if err != nil {
		return fail(err)
	}
	e.Set(keywordValue, doc.Clone())
	return nil
}

// document returns the pristine document stored at location.
func (d *dereferencer) document(location string) (*element.Element, error) {
	if location == d.rootLocation && !d.rootIsFragment {
		return d.source, nil
	}
	if doc, ok := d.docs[location]; ok {
		return doc, nil
	}
	doc, err := d.cfg.loader.Load(d.ctx, location)
	if err != nil {
		return nil, err
	}
	d.docs[location] = doc
	return doc, nil
}

// fatal returns the terminal error when err stems from the call's context
// being done.
func (d *dereferencer) fatal(err error) error {
	if ctxErr := d.ctx.Err(); ctxErr != nil && (errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)) {
		return ctxErr
	}
	return nil
}
