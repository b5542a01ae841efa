// Package loader obtains the documents that $ref and externalValue point at.
//
// [Service] is the general-purpose implementation: it downloads file paths,
// file://, http(s):// and mem:// locations through github.com/viant/afs,
// decodes them into element trees and caches the result. Concurrent loads
// of the same location share one download. [Static] serves documents that
// are already in memory, which is what tests and embedders usually want.
package loader

import (
	"context"
	"errors"
	"net/url"
	"path/filepath"
	"strings"

	"github.com/erraggy/oasderef/element"
	"github.com/erraggy/oasderef/oaserrors"
)

// ErrNotFound is the cause reported when a static source has no document
// for the requested location.
var ErrNotFound = errors.New("document not found")

// Loader fetches the document stored at an absolute location.
// Implementations must be safe for concurrent use and must not hand out
// trees that they later modify.
type Loader interface {
	Load(ctx context.Context, location string) (*element.Element, error)
}

// Func adapts a function to the Loader interface.
type Func func(ctx context.Context, location string) (*element.Element, error)

// Load implements Loader.
func (f Func) Load(ctx context.Context, location string) (*element.Element, error) {
	return f(ctx, location)
}

// Static is an in-memory document source keyed by absolute location.
type Static map[string]*element.Element

// Load returns a copy of the document registered for location.
func (s Static) Load(ctx context.Context, location string) (*element.Element, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	doc, ok := s[location]
	if !ok {
		return nil, &oaserrors.LoadError{Location: location, Cause: ErrNotFound}
	}
	return doc.Clone(), nil
}

// Normalize turns a local path into an absolute file path and leaves URLs
// untouched, so that relative references resolve against a stable base.
func Normalize(location string) string {
	if location == "" || isURL(location) {
		return location
	}
	if abs, err := filepath.Abs(location); err == nil {
		return abs
	}
	return location
}

func isURL(location string) bool {
	u, err := url.Parse(location)
	if err != nil {
		return false
	}
	return len(u.Scheme) > 1 && strings.Contains(location, "://")
}

func isRemote(location string) bool {
	return strings.HasPrefix(location, "http://") || strings.HasPrefix(location, "https://")
}
