// Package scripting defines the script-engine seam between a rendering host
// and a template engine: per-call bindings and output, engines, and the
// factories that create them.
package scripting

import (
	"errors"
	"fmt"
	"io"
)

// ErrMissingBinding is returned when a required binding is absent.
var ErrMissingBinding = errors.New("scripting: required binding missing")

// Bindings are the named values visible to a script.
type Bindings map[string]any

// Merge copies every entry of other into b. Existing names are overwritten.
func (b Bindings) Merge(other map[string]any) {
	for name, value := range other {
		b[name] = value
	}
}

// Context carries the bindings and output sink of a single evaluation.
type Context struct {
	Bindings Bindings
	Writer   io.Writer
}

// Engine evaluates a script once per call.
type Engine interface {
	Eval(script io.Reader, sctx *Context) error
	Factory() EngineFactory
}

// EngineFactory describes a scripting language and creates engines for it.
type EngineFactory interface {
	EngineName() string
	LanguageName() string
	LanguageVersion() string
	Names() []string
	Extensions() []string
	MimeTypes() []string
	NewEngine() Engine
}

// ScriptError reports a failed evaluation of the script at Path. Cause is the
// innermost error reported by the template engine when it differs from Err.
type ScriptError struct {
	Path  string
	Err   error
	Cause error
}

func (e *ScriptError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("scripting: failure processing template %s", e.Path)
	}
	return fmt.Sprintf("scripting: failure processing template %s: %v", e.Path, e.Err)
}

func (e *ScriptError) Unwrap() []error {
	errs := make([]error, 0, 2)
	if e.Err != nil {
		errs = append(errs, e.Err)
	}
	if e.Cause != nil && e.Cause != e.Err {
		errs = append(errs, e.Cause)
	}
	return errs
}
