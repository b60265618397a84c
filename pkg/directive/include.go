package directive

import (
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/goliatone/go-slingtpl/internal/ctxlog"
	"github.com/goliatone/go-slingtpl/pkg/models"
	"github.com/goliatone/go-slingtpl/pkg/sling"
)

// Namespace and name the include directive registers under.
const (
	IncludeNamespace = "sling"
	IncludeName      = "include"
)

// Parameters accepted by the include directive.
const (
	ParamInclude          = "include"
	ParamResourceType     = "resourceType"
	ParamReplaceSelectors = "replaceSelectors"
	ParamAddSelectors     = "addSelectors"
	ParamReplaceSuffix    = "replaceSuffix"
)

// TransportFailurePolicy decides what an include does when the nested
// render itself fails.
type TransportFailurePolicy int

const (
	// TransportFailureIgnore logs the failure and emits nothing; the calling
	// template keeps rendering.
	TransportFailureIgnore TransportFailurePolicy = iota
	// TransportFailureFail logs the failure and aborts the calling template
	// with ErrTransport.
	TransportFailureFail
)

func (p TransportFailurePolicy) String() string {
	switch p {
	case TransportFailureIgnore:
		return "ignore"
	case TransportFailureFail:
		return "fail"
	default:
		return fmt.Sprintf("TransportFailurePolicy(%d)", int(p))
	}
}

// IncludeOption configures an Include directive.
type IncludeOption func(*Include)

// WithLogger sets the logger used when the request context carries none.
func WithLogger(logger *slog.Logger) IncludeOption {
	return func(d *Include) {
		if logger != nil {
			d.logger = logger
		}
	}
}

// WithTransportFailurePolicy selects how failed nested renders surface.
func WithTransportFailurePolicy(policy TransportFailurePolicy) IncludeOption {
	return func(d *Include) {
		d.policy = policy
	}
}

// Include renders a resource or path through the host dispatcher and writes
// the captured text into the calling template. It keeps no state between
// calls.
type Include struct {
	logger *slog.Logger
	policy TransportFailurePolicy
}

var _ Directive = (*Include)(nil)

// NewInclude constructs the include directive.
func NewInclude(options ...IncludeOption) *Include {
	d := &Include{logger: slog.Default()}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(d)
	}
	return d
}

// Provider exposes the directive as the sling.include template model.
func (d *Include) Provider() models.Provider {
	return models.Static(IncludeNamespace, IncludeName, 0, d)
}

// Policy reports the configured transport failure policy.
func (d *Include) Policy() TransportFailurePolicy {
	return d.policy
}

// target is either a resourceTarget or a pathTarget.
type target interface {
	describe() string
}

type resourceTarget struct {
	resource sling.Resource
}

type pathTarget struct {
	path string
}

func (t resourceTarget) describe() string { return "resource " + t.resource.Path() }
func (t pathTarget) describe() string     { return "path " + t.path }

// Execute implements Directive.
func (d *Include) Execute(env *Environment, params Params) error {
	req, resp, err := renderingContext(env)
	if err != nil {
		return err
	}

	tgt, err := includeTarget(params)
	if err != nil {
		return err
	}

	opts, err := dispatchOptions(params)
	if err != nil {
		return err
	}

	content, err := d.dispatch(tgt, req, resp, opts)
	if err != nil {
		return err
	}
	if content == "" {
		return nil
	}
	_, err = io.WriteString(env.Out(), content)
	return err
}

func renderingContext(env *Environment) (sling.Request, sling.Response, error) {
	req, ok := env.Variable(sling.BindingRequest).(sling.Request)
	if !ok || req == nil {
		return nil, nil, fmt.Errorf("%w: request is nil", ErrMissingContext)
	}
	resp, ok := env.Variable(sling.BindingResponse).(sling.Response)
	if !ok || resp == nil {
		return nil, nil, fmt.Errorf("%w: response is nil", ErrMissingContext)
	}
	return req, resp, nil
}

func includeTarget(params Params) (target, error) {
	raw, ok := params[ParamInclude]
	if !ok {
		return nil, fmt.Errorf("%w: include is nil", ErrNoTarget)
	}
	// resources win over paths when a value could be both
	switch value := Unbox(raw).(type) {
	case nil:
		return nil, fmt.Errorf("%w: unwrapping include failed", ErrNoTarget)
	case sling.Resource:
		return resourceTarget{resource: value}, nil
	case string:
		return pathTarget{path: value}, nil
	default:
		return nil, fmt.Errorf("%w: include has unsupported type %T", ErrNoTarget, value)
	}
}

func dispatchOptions(params Params) (*sling.DispatchOptions, error) {
	opts := &sling.DispatchOptions{}
	fields := []struct {
		name string
		dst  **string
	}{
		{ParamResourceType, &opts.ForceResourceType},
		{ParamReplaceSelectors, &opts.ReplaceSelectors},
		{ParamAddSelectors, &opts.AddSelectors},
		{ParamReplaceSuffix, &opts.ReplaceSuffix},
	}
	for _, field := range fields {
		value, err := optionalString(params, field.name)
		if err != nil {
			return nil, err
		}
		*field.dst = value
	}
	return opts, nil
}

// dispatch renders tgt and returns the captured text. An empty string with a
// nil error means the nested render failed and the failure was ignored.
func (d *Include) dispatch(tgt target, req sling.Request, resp sling.Response, opts *sling.DispatchOptions) (string, error) {
	logger := ctxlog.FromContext(req.Context(), d.logger)

	var dispatcher sling.RequestDispatcher
	switch t := tgt.(type) {
	case resourceTarget:
		dispatcher = req.DispatcherForResource(t.resource, opts)
	case pathTarget:
		path, err := absolutePath(req, t.path)
		if err != nil {
			return "", err
		}
		tgt = pathTarget{path: path}
		if synthetic := syntheticTarget(req, path, opts); synthetic != nil {
			// the synthetic resource already carries the forced type
			opts.ForceResourceType = nil
			tgt = resourceTarget{resource: synthetic}
			dispatcher = req.DispatcherForResource(synthetic, opts)
		} else {
			dispatcher = req.DispatcherForPath(path, opts)
		}
	default:
		return "", fmt.Errorf("%w: unsupported target %T", ErrNoTarget, tgt)
	}

	if dispatcher == nil {
		logger.Error("no request dispatcher, unable to include", "target", tgt.describe(), "options", opts.String())
		return "", fmt.Errorf("%w: %s", ErrDispatcherUnavailable, tgt.describe())
	}

	capture := sling.NewCaptureResponse(resp)
	if err := dispatcher.Include(req, capture); err != nil {
		logger.Error("include failed", "target", tgt.describe(), "error", err)
		if d.policy == TransportFailureFail {
			return "", fmt.Errorf("%w: %s: %w", ErrTransport, tgt.describe(), err)
		}
		return "", nil
	}

	text, err := capture.CapturedText()
	if err != nil {
		return "", fmt.Errorf("%w: %s: %w", ErrNoContent, tgt.describe(), err)
	}
	return text, nil
}

// absolutePath anchors a relative path at the current resource and
// normalizes the result. A path whose ".." segments climb above the root is
// rejected with ErrNoTarget instead of falling back to the current resource.
func absolutePath(req sling.Request, p string) (string, error) {
	if !strings.HasPrefix(p, "/") {
		current := req.Resource()
		if current == nil {
			return "", fmt.Errorf("%w: no current resource to resolve %q against", ErrMissingContext, p)
		}
		p = current.Path() + "/" + p
	}
	normalized, ok := sling.Normalize(p)
	if !ok {
		return "", fmt.Errorf("%w: path %q cannot be normalized", ErrNoTarget, p)
	}
	return normalized, nil
}

// syntheticTarget returns a typed placeholder when a resource type is forced
// and nothing exists at path.
func syntheticTarget(req sling.Request, path string, opts *sling.DispatchOptions) sling.Resource {
	if opts.ForceResourceType == nil {
		return nil
	}
	resolver := req.ResourceResolver()
	if resolver != nil {
		if _, found := resolver.Resolve(path); found {
			return nil
		}
	}
	return sling.NewSyntheticResource(resolver, path, *opts.ForceResourceType)
}
