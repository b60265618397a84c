package directive

import (
	"context"
	"fmt"
	"io"

	"github.com/flosch/pongo2/v6"

	"github.com/goliatone/go-slingtpl/pkg/sling"
)

// Params holds the evaluated parameters of a directive call keyed by name.
type Params map[string]*pongo2.Value

// Directive is a template model that templates can call.
type Directive interface {
	Execute(env *Environment, params Params) error
}

// Func adapts a function to the Directive interface.
type Func func(env *Environment, params Params) error

func (f Func) Execute(env *Environment, params Params) error {
	return f(env, params)
}

// Environment exposes the evaluation state of the calling template.
type Environment struct {
	lookup func(name string) (any, bool)
	out    io.Writer
}

// NewEnvironment builds an Environment over a fixed set of variables.
func NewEnvironment(vars map[string]any, out io.Writer) *Environment {
	return &Environment{
		lookup: func(name string) (any, bool) {
			value, ok := vars[name]
			return value, ok
		},
		out: out,
	}
}

// Variable returns the unboxed template variable name, or nil.
func (e *Environment) Variable(name string) any {
	if e == nil || e.lookup == nil {
		return nil
	}
	value, ok := e.lookup(name)
	if !ok {
		return nil
	}
	return Unbox(value)
}

// Out is the output stream of the calling template.
func (e *Environment) Out() io.Writer {
	if e == nil || e.out == nil {
		return io.Discard
	}
	return e.out
}

// Context returns the context of the bound request, or a background
// context when no request is bound.
func (e *Environment) Context() context.Context {
	if req, ok := e.Variable(sling.BindingRequest).(sling.Request); ok {
		if ctx := req.Context(); ctx != nil {
			return ctx
		}
	}
	return context.Background()
}

// Unbox strips the template engine's value wrapper. Nil values and wrappers
// around nil come back as nil.
func Unbox(value any) any {
	switch v := value.(type) {
	case nil:
		return nil
	case *pongo2.Value:
		if v == nil || v.IsNil() {
			return nil
		}
		return Unbox(v.Interface())
	default:
		return value
	}
}

// Param unboxes the parameter name as a T. The boolean is false when the
// parameter is absent or nil; a value of any other type is an error.
func Param[T any](params Params, name string) (T, bool, error) {
	var zero T
	raw, ok := params[name]
	if !ok {
		return zero, false, nil
	}
	value := Unbox(raw)
	if value == nil {
		return zero, false, nil
	}
	typed, ok := value.(T)
	if !ok {
		return zero, false, fmt.Errorf("%w: %s has type %T", ErrInvalidParameter, name, value)
	}
	return typed, true, nil
}

func optionalString(params Params, name string) (*string, error) {
	value, ok, err := Param[string](params, name)
	if err != nil || !ok {
		return nil, err
	}
	return &value, nil
}
