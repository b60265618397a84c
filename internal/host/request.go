package host

import (
	"context"
	"io"
	"net/http"

	"github.com/goliatone/go-slingtpl/pkg/sling"
)

type request struct {
	ctx      context.Context
	host     *Host
	resource sling.Resource
	info     sling.PathInfo
	depth    int
}

var _ sling.Request = (*request)(nil)

func (r *request) Context() context.Context                 { return r.ctx }
func (r *request) Resource() sling.Resource                 { return r.resource }
func (r *request) ResourceResolver() sling.ResourceResolver { return r.host.repo }
func (r *request) PathInfo() sling.PathInfo                 { return r.info }

// DispatcherForResource keeps the selectors, extension and suffix of the
// current request.
func (r *request) DispatcherForResource(res sling.Resource, opts *sling.DispatchOptions) sling.RequestDispatcher {
	if res == nil {
		return nil
	}
	info := r.info
	info.ResourcePath = res.Path()
	return &dispatcher{host: r.host, resource: res, info: info, opts: opts.Clone()}
}

// DispatcherForPath parses path as a request path. A path without an
// extension inherits the extension of the current request.
func (r *request) DispatcherForPath(path string, opts *sling.DispatchOptions) sling.RequestDispatcher {
	if path == "" {
		return nil
	}
	info := sling.ParsePathInfo(path)
	if info.Extension == "" {
		info.Extension = r.info.Extension
	}
	return &dispatcher{host: r.host, info: info, opts: opts.Clone()}
}

type dispatcher struct {
	host     *Host
	resource sling.Resource
	info     sling.PathInfo
	opts     *sling.DispatchOptions
}

func (d *dispatcher) Include(req sling.Request, resp sling.Response) error {
	ctx := context.Background()
	depth := 0
	if parent, ok := req.(*request); ok {
		depth = parent.depth
	}
	if req != nil && req.Context() != nil {
		ctx = req.Context()
	}

	res := d.resource
	if res == nil {
		resolved, ok := d.host.repo.Resolve(d.info.ResourcePath)
		if !ok {
			return StatusError{Code: http.StatusNotFound, Err: notFound(d.info.ResourcePath)}
		}
		res = resolved
	}

	resourceType := res.ResourceType()
	if d.opts.ForceResourceType != nil && *d.opts.ForceResourceType != "" {
		resourceType = *d.opts.ForceResourceType
	}

	child := &request{
		ctx:      ctx,
		host:     d.host,
		resource: res,
		info:     d.info.WithOptions(d.opts),
		depth:    depth + 1,
	}
	return d.host.render(child, resourceType, resp)
}

type scriptHelper struct {
	script sling.Resource
	req    sling.Request
	resp   sling.Response
}

var _ sling.ScriptHelper = scriptHelper{}

func (h scriptHelper) ScriptResource() sling.Resource { return h.script }
func (h scriptHelper) Request() sling.Request         { return h.req }
func (h scriptHelper) Response() sling.Response       { return h.resp }

// httpResponse sends both output channels to the client.
type httpResponse struct {
	w http.ResponseWriter
}

func (r httpResponse) Header() http.Header     { return r.w.Header() }
func (r httpResponse) Writer() io.Writer       { return r.w }
func (r httpResponse) OutputStream() io.Writer { return r.w }
