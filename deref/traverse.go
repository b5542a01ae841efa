package deref

import (
	"context"
	"errors"
	"strconv"

	"github.com/erraggy/oasderef/compose"
	"github.com/erraggy/oasderef/element"
	"github.com/erraggy/oasderef/internal/jsonpointer"
	"github.com/erraggy/oasderef/loader"
	"github.com/erraggy/oasderef/oaserrors"
)

// dereferencer holds the state of one Dereference call.
type dereferencer struct {
	ctx    context.Context
	cfg    *config
	logger loader.Logger

	// source is the caller's tree. Targets are copied from it and it is never modified.
	source         *element.Element
	rootLocation   string
	rootIsFragment bool
	docs           map[string]*element.Element

	errors []*Record
}

// walkState is the traversal context of a node. It is passed by value so
// that each subtree sees its own scope.
type walkState struct {
	// path is the structural path of the node from the root.
	path []string
	// base is the location of the document the node was copied from.
	base string
	// chain lists the identities of the references being expanded around the node.
	chain []string
	// operation is the nearest enclosing Operation, or nil.
	operation *element.Element
}

func (s walkState) childPath(key string) []string {
	p := make([]string, len(s.path)+1)
	copy(p, s.path)
	p[len(s.path)] = key
	return p
}

func (s walkState) child(key string) walkState {
	s.path = s.childPath(key)
	return s
}

func (d *dereferencer) record(path []string, cause error) {
	rec := newRecord(path, cause)
	d.logger.Debug("recorded error", "kind", string(rec.Kind), "path", jsonpointer.Compile(path), "error", rec.Message)
	d.errors = append(d.errors, rec)
}

// visit walks e and returns the element that takes its place.
func (d *dereferencer) visit(e *element.Element, st walkState) (*element.Element, error) {
	if err := d.ctx.Err(); err != nil {
		return nil, err
	}
	if e == nil {
		return nil, nil
	}

	// enter
	switch e.Kind {
	case element.KindReference:
		return d.visitReference(e, st)
	case element.KindSchema, element.KindPathItem:
		if _, ok := describeReference(e); ok {
			return d.visitReference(e, st)
		}
	case element.KindOperation:
		st.operation = e
	case element.KindExample:
		if err := d.visitExample(e, st); err != nil {
			return nil, err
		}
	case element.KindGeneric, element.KindOpenAPI, element.KindInfo, element.KindServer,
		element.KindTag, element.KindPaths, element.KindParameter, element.KindRequestBody,
		element.KindResponses, element.KindResponse, element.KindMediaType, element.KindEncoding,
		element.KindHeader, element.KindLink, element.KindCallback, element.KindSecurityScheme,
		element.KindComponents:
	default:
		// Unknown kinds are walked structurally.
	}

	if err := d.visitChildren(e, st); err != nil {
		return nil, err
	}

	// leave
	switch e.Kind {
	case element.KindSchema:
		return d.leaveSchema(e, st), nil
	case element.KindParameter:
		d.leaveParameter(e, st)
	}
	return e, nil
}

func (d *dereferencer) visitChildren(e *element.Element, st walkState) error {
	switch e.Type {
	case element.TypeObject:
		for _, m := range e.Members() {
			replaced, err := d.visit(m.Value, st.child(m.Key))
			if err != nil {
				return err
			}
			if replaced != m.Value {
				e.Set(m.Key, replaced)
			}
		}
	case element.TypeArray:
		for i, it := range e.Items() {
			replaced, err := d.visit(it, st.child(strconv.Itoa(i)))
			if err != nil {
				return err
			}
			if replaced != it {
				e.SetIndex(i, replaced)
			}
		}
	}
	return nil
}

// leaveSchema flattens allOf and runs the property hook.
func (d *dereferencer) leaveSchema(e *element.Element, st walkState) *element.Element {
	if !e.IsObject() {
		return e
	}
	if d.cfg.mode != ModeStrict && e.Has("allOf") {
		merged, err := compose.Flatten(e)
		if err != nil {
			var compErr *oaserrors.CompositionError
			if errors.As(err, &compErr) {
				compErr.Path = jsonpointer.Compile(st.childPath("allOf"))
			}
			d.record(st.childPath("allOf"), err)
		} else {
			e = merged
		}
	}
	if d.cfg.propertyMacro != nil {
		d.applyPropertyMacro(e, st)
	}
	return e
}

func (d *dereferencer) applyPropertyMacro(schema *element.Element, st walkState) {
	props := schema.Get("properties")
	if !props.IsObject() {
		return
	}
	for _, m := range props.Members() {
		if !m.Value.IsObject() {
			continue
		}
		property := plainObject(m.Value)
		def, err := runHook(hookModelProperty, m.Key, func() (any, error) {
			return d.cfg.propertyMacro(property)
		})
		if err != nil {
			d.record(st.childPath("properties"), err)
			continue
		}
		m.Value.Set("default", def)
	}
}

func (d *dereferencer) leaveParameter(param *element.Element, st walkState) {
	if d.cfg.parameterMacro == nil || !param.IsObject() {
		return
	}
	var operation map[string]any
	if st.operation != nil {
		operation = plainObject(st.operation)
	}
	parameter := plainObject(param)
	name, _ := param.GetString("name")
	def, err := runHook(hookParameter, name, func() (any, error) {
		return d.cfg.parameterMacro(operation, parameter)
	})
	if err != nil {
		collection := st.path
		if len(collection) > 0 {
			collection = collection[:len(collection)-1]
		}
		d.record(append([]string(nil), collection...), err)
		return
	}
	param.Set("default", def)
}
