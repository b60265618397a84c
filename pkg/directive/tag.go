package directive

import (
	"fmt"
	"sync"

	"github.com/flosch/pongo2/v6"
)

// CallTag is the template tag that invokes directives.
const CallTag = "call"

var (
	registerOnce sync.Once
	registerErr  error
)

// RegisterTags registers the call tag with pongo2. Tags are process global;
// repeated calls return the outcome of the first registration.
func RegisterTags() error {
	registerOnce.Do(func() {
		registerErr = pongo2.RegisterTag(CallTag, parseCallTag)
	})
	return registerErr
}

type callParam struct {
	name string
	expr pongo2.IEvaluator
}

type callNode struct {
	position  *pongo2.Token
	namespace string
	name      string
	params    []callParam
}

func (n *callNode) Execute(ctx *pongo2.ExecutionContext, writer pongo2.TemplateWriter) *pongo2.Error {
	model, ok := lookupModel(ctx, n.namespace, n.name)
	if !ok {
		return ctx.Error(fmt.Sprintf("call: no template model %s.%s", n.namespace, n.name), n.position)
	}
	d, ok := model.(Directive)
	if !ok {
		return ctx.Error(fmt.Sprintf("call: template model %s.%s (%T) is not a directive", n.namespace, n.name, model), n.position)
	}

	params := make(Params, len(n.params))
	for _, param := range n.params {
		value, err := param.expr.Evaluate(ctx)
		if err != nil {
			return err
		}
		params[param.name] = value
	}

	env := &Environment{
		lookup: func(name string) (any, bool) {
			return contextVariable(ctx, name)
		},
		out: writer,
	}
	if err := d.Execute(env, params); err != nil {
		return ctx.OrigError(err, n.position)
	}
	return nil
}

func contextVariable(ctx *pongo2.ExecutionContext, name string) (any, bool) {
	if value, ok := ctx.Private[name]; ok {
		return value, true
	}
	value, ok := ctx.Public[name]
	return value, ok
}

func lookupModel(ctx *pongo2.ExecutionContext, namespace, name string) (any, bool) {
	raw, ok := contextVariable(ctx, namespace)
	if !ok {
		return nil, false
	}
	var models map[string]any
	switch ns := Unbox(raw).(type) {
	case map[string]any:
		models = ns
	case pongo2.Context:
		models = ns
	default:
		return nil, false
	}
	model, ok := models[name]
	if !ok || model == nil {
		return nil, false
	}
	return model, true
}

// parseCallTag parses {% call namespace.name key=expr ... %}.
func parseCallTag(_ *pongo2.Parser, start *pongo2.Token, arguments *pongo2.Parser) (pongo2.INodeTag, *pongo2.Error) {
	node := &callNode{position: start}

	namespaceToken := arguments.MatchType(pongo2.TokenIdentifier)
	if namespaceToken == nil {
		return nil, arguments.Error("call: expected a directive namespace.", nil)
	}
	if arguments.Match(pongo2.TokenSymbol, ".") == nil {
		return nil, arguments.Error("call: expected '.' after the directive namespace.", nil)
	}
	nameToken := arguments.MatchType(pongo2.TokenIdentifier)
	if nameToken == nil {
		return nil, arguments.Error("call: expected a directive name.", nil)
	}
	node.namespace = namespaceToken.Val
	node.name = nameToken.Val

	seen := make(map[string]struct{})
	for arguments.Remaining() > 0 {
		keyToken := arguments.MatchType(pongo2.TokenIdentifier)
		if keyToken == nil {
			return nil, arguments.Error("call: expected a parameter name.", nil)
		}
		if _, dup := seen[keyToken.Val]; dup {
			return nil, arguments.Error(fmt.Sprintf("call: parameter %q given more than once.", keyToken.Val), keyToken)
		}
		seen[keyToken.Val] = struct{}{}

		if arguments.Match(pongo2.TokenSymbol, "=") == nil {
			return nil, arguments.Error(fmt.Sprintf("call: expected '=' after parameter %q.", keyToken.Val), keyToken)
		}
		expr, err := arguments.ParseExpression()
		if err != nil {
			return nil, err
		}
		node.params = append(node.params, callParam{name: keyToken.Val, expr: expr})
	}

	return node, nil
}
