package engine

import (
	"errors"
	"fmt"
	"io"

	"github.com/flosch/pongo2/v6"

	"github.com/goliatone/go-slingtpl/pkg/scripting"
	"github.com/goliatone/go-slingtpl/pkg/sling"
)

// Engine evaluates one script per Eval call.
type Engine struct {
	factory *Factory
}

var _ scripting.Engine = (*Engine)(nil)

// Factory returns the factory that created e.
func (e *Engine) Factory() scripting.EngineFactory {
	return e.factory
}

// Eval renders script into sctx.Writer. The script helper must be bound
// under sling.BindingSling; its script resource path names the template in
// errors.
func (e *Engine) Eval(script io.Reader, sctx *scripting.Context) error {
	if sctx == nil || sctx.Bindings == nil {
		return fmt.Errorf("%w: script context has no bindings", scripting.ErrMissingBinding)
	}
	helper, ok := sctx.Bindings[sling.BindingSling].(sling.ScriptHelper)
	if !ok || helper == nil {
		return fmt.Errorf("%w: script helper missing from bindings", scripting.ErrMissingBinding)
	}
	if sctx.Writer == nil {
		return errors.New("engine: script context has no writer")
	}

	for namespace, group := range e.factory.TemplateModels() {
		sctx.Bindings[namespace] = group
	}

	scriptName := scriptPath(helper)
	cfg := e.factory.Configuration()

	tpl, err := cfg.Parse(script)
	if err != nil {
		return scriptError(scriptName, err)
	}
	if err := tpl.ExecuteWriter(pongo2.Context(sctx.Bindings), sctx.Writer); err != nil {
		return scriptError(scriptName, err)
	}
	return nil
}

func scriptPath(helper sling.ScriptHelper) string {
	if res := helper.ScriptResource(); res != nil {
		return res.Path()
	}
	return "<unknown>"
}

func scriptError(path string, err error) *scripting.ScriptError {
	return &scripting.ScriptError{Path: path, Err: err, Cause: templateCause(err)}
}

// templateCause peels pongo2's error wrappers off err. Only directly nested
// wrappers are removed so the causes of nested renders stay intact.
func templateCause(err error) error {
	for {
		perr, ok := err.(*pongo2.Error)
		if !ok || perr.OrigError == nil {
			return err
		}
		err = perr.OrigError
	}
}
