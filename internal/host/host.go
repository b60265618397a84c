// Package host is a small in-memory resource rendering host. It resolves
// request paths against a YAML content repository, picks scripts by resource
// type and evaluates them with the pongo2 engine, including nested
// dispatches issued by template directives.
package host

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/goliatone/go-slingtpl/internal/ctxlog"
	"github.com/goliatone/go-slingtpl/pkg/engine"
	"github.com/goliatone/go-slingtpl/pkg/scripting"
	"github.com/goliatone/go-slingtpl/pkg/sling"
)

// DefaultMaxIncludeDepth bounds nested includes.
const DefaultMaxIncludeDepth = 50

// scriptRoot holds the scripts of every resource type.
const scriptRoot = "/apps/"

// Option customises a Host.
type Option func(*Host)

// WithLogger sets the host logger.
func WithLogger(logger *slog.Logger) Option {
	return func(h *Host) {
		if logger != nil {
			h.logger = logger
		}
	}
}

// WithMaxIncludeDepth bounds nested includes. Values below one are ignored.
func WithMaxIncludeDepth(depth int) Option {
	return func(h *Host) {
		if depth > 0 {
			h.maxDepth = depth
		}
	}
}

// Host renders repository resources with engine scripts.
type Host struct {
	repo     *Repository
	factory  *engine.Factory
	logger   *slog.Logger
	maxDepth int
}

// New wires a host over repo and factory.
func New(repo *Repository, factory *engine.Factory, options ...Option) (*Host, error) {
	if repo == nil {
		return nil, errors.New("host: repository is required")
	}
	if factory == nil {
		return nil, errors.New("host: engine factory is required")
	}
	h := &Host{
		repo:     repo,
		factory:  factory,
		logger:   slog.Default(),
		maxDepth: DefaultMaxIncludeDepth,
	}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(h)
	}
	return h, nil
}

// Repository returns the content repository.
func (h *Host) Repository() *Repository {
	return h.repo
}

// Render renders the request path rawPath into resp.
func (h *Host) Render(ctx context.Context, rawPath string, resp sling.Response) error {
	if ctx == nil {
		ctx = context.Background()
	}
	info := sling.ParsePathInfo(rawPath)
	res, ok := h.repo.Resolve(info.ResourcePath)
	if !ok {
		return StatusError{Code: http.StatusNotFound, Err: notFound(info.ResourcePath)}
	}
	req := &request{ctx: ctx, host: h, resource: res, info: info}
	return h.render(req, res.ResourceType(), resp)
}

func (h *Host) render(req *request, resourceType string, resp sling.Response) error {
	logger := ctxlog.FromContext(req.ctx, h.logger)
	if req.depth > h.maxDepth {
		return fmt.Errorf("%w: %d levels at %s", ErrIncludeTooDeep, req.depth, req.info)
	}

	script, ok := h.resolveScript(resourceType, req.info)
	if !ok {
		return h.renderDefault(req, resp)
	}
	source, ok := script.Text(PropertyScript)
	if !ok {
		return fmt.Errorf("host: script %s has no %s property", script.Path(), PropertyScript)
	}

	logger.Debug("evaluating script", "script", script.Path(), "resource", req.resource.Path(), "depth", req.depth)
	sctx := &scripting.Context{
		Bindings: scripting.Bindings{
			sling.BindingSling:    scriptHelper{script: script, req: req, resp: resp},
			sling.BindingRequest:  req,
			sling.BindingResponse: resp,
			sling.BindingResource: req.resource,
			sling.BindingLog:      logger,
		},
		Writer: resp.Writer(),
	}
	return h.factory.NewEngine().Eval(strings.NewReader(source), sctx)
}

// resolveScript looks below /apps/<type>/ for, in order,
// <selectors>.<ext>.<scriptExt>, <ext>.<scriptExt> and
// <basename>.<scriptExt>, trying each script extension of the factory.
func (h *Host) resolveScript(resourceType string, info sling.PathInfo) (*Resource, bool) {
	resourceType = strings.Trim(resourceType, "/")
	if resourceType == "" {
		return nil, false
	}
	dir := scriptRoot + resourceType + "/"
	basename := sling.Name("/" + resourceType)

	var stems []string
	if info.Extension != "" {
		if selectors := info.SelectorString(); selectors != "" {
			stems = append(stems, selectors+"."+info.Extension)
		}
		stems = append(stems, info.Extension)
	}
	stems = append(stems, basename)

	for _, stem := range stems {
		for _, ext := range h.factory.Extensions() {
			if script, ok := h.repo.Resource(dir + stem + "." + ext); ok {
				return script, true
			}
		}
	}
	return nil, false
}

// renderDefault emits a data property as binary output or a text property as
// character output.
func (h *Host) renderDefault(req *request, resp sling.Response) error {
	res, ok := req.resource.(*Resource)
	if !ok {
		return StatusError{Code: http.StatusNotFound, Err: fmt.Errorf("%w: %s", ErrNoRenderer, req.resource.Path())}
	}
	if data, ok := res.Data(PropertyData); ok {
		_, err := resp.OutputStream().Write(data)
		return err
	}
	if text, ok := res.Text(PropertyText); ok {
		_, err := resp.Writer().Write([]byte(text))
		return err
	}
	return StatusError{Code: http.StatusNotFound, Err: fmt.Errorf("%w: %s", ErrNoRenderer, res.Path())}
}

func notFound(path string) error {
	return fmt.Errorf("%w: %s", ErrNotFound, path)
}
