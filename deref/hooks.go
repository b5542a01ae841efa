package deref

import (
	"fmt"

	"github.com/erraggy/oasderef/element"
	"github.com/erraggy/oasderef/oaserrors"
)

// ModelPropertyMacro computes the default for a schema property. It receives
// the property's plain value; the result becomes the property's "default".
type ModelPropertyMacro func(property map[string]any) (any, error)

// ParameterMacro computes the default for a parameter. operation is nil for
// parameters outside any operation (path-level or components).
type ParameterMacro func(operation, parameter map[string]any) (any, error)

const (
	hookModelProperty = "modelPropertyMacro"
	hookParameter     = "parameterMacro"
)

// invokeHook runs fn, converting a panic into an error.
func invokeHook(fn func() (any, error)) (result any, err error) {
	defer func() {
		if r := recover(); r != nil {
			if e, ok := r.(error); ok {
				err = e
				return
			}
			err = fmt.Errorf("%v", r)
		}
	}()
	return fn()
}

// runHook invokes fn and converts its result into an element.
func runHook(hook, target string, fn func() (any, error)) (*element.Element, error) {
	v, err := invokeHook(fn)
	if err == nil {
		var def *element.Element
		if def, err = element.FromValue(v); err == nil {
			return def, nil
		}
	}
	return nil, &oaserrors.HookError{Hook: hook, Target: target, Cause: err}
}

func plainObject(e *element.Element) map[string]any {
	m, _ := element.ToValue(e).(map[string]any)
	return m
}
