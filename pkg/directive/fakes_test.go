package directive

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"net/http"

	"github.com/goliatone/go-slingtpl/pkg/sling"
)

type fakeResource struct {
	path         string
	resourceType string
}

func (r *fakeResource) Path() string                             { return r.path }
func (r *fakeResource) ResourceType() string                     { return r.resourceType }
func (r *fakeResource) ResourceResolver() sling.ResourceResolver { return nil }

type fakeResolver map[string]sling.Resource

func (f fakeResolver) Resolve(path string) (sling.Resource, bool) {
	res, ok := f[path]
	return res, ok
}

// fakeDispatcher writes text or binary output, or fails.
type fakeDispatcher struct {
	text   string
	binary []byte
	err    error
	calls  int
}

func (d *fakeDispatcher) Include(_ sling.Request, resp sling.Response) error {
	d.calls++
	if d.err != nil {
		return d.err
	}
	if d.binary != nil {
		_, err := resp.OutputStream().Write(d.binary)
		return err
	}
	_, err := io.WriteString(resp.Writer(), d.text)
	return err
}

type dispatchCall struct {
	resource sling.Resource
	path     string
	opts     sling.DispatchOptions
}

type fakeRequest struct {
	ctx        context.Context
	resource   sling.Resource
	resolver   sling.ResourceResolver
	dispatcher sling.RequestDispatcher
	calls      []dispatchCall
}

func (r *fakeRequest) Context() context.Context {
	if r.ctx == nil {
		return context.Background()
	}
	return r.ctx
}
func (r *fakeRequest) Resource() sling.Resource                 { return r.resource }
func (r *fakeRequest) ResourceResolver() sling.ResourceResolver { return r.resolver }
func (r *fakeRequest) PathInfo() sling.PathInfo {
	if r.resource == nil {
		return sling.PathInfo{}
	}
	return sling.PathInfo{ResourcePath: r.resource.Path(), Extension: "html"}
}

func (r *fakeRequest) DispatcherForResource(res sling.Resource, opts *sling.DispatchOptions) sling.RequestDispatcher {
	r.calls = append(r.calls, dispatchCall{resource: res, opts: *opts})
	return r.dispatcher
}

func (r *fakeRequest) DispatcherForPath(path string, opts *sling.DispatchOptions) sling.RequestDispatcher {
	r.calls = append(r.calls, dispatchCall{path: path, opts: *opts})
	return r.dispatcher
}

type fakeResponse struct {
	header http.Header
	body   bytes.Buffer
}

func newFakeResponse() *fakeResponse {
	return &fakeResponse{header: http.Header{}}
}

func (r *fakeResponse) Header() http.Header     { return r.header }
func (r *fakeResponse) Writer() io.Writer       { return &r.body }
func (r *fakeResponse) OutputStream() io.Writer { return &r.body }

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newRequest(dispatcher sling.RequestDispatcher) *fakeRequest {
	return &fakeRequest{
		resource: &fakeResource{path: "/content/pongo2/page", resourceType: "pongo2/page"},
		resolver: fakeResolver{
			"/content/includes/foo": &fakeResource{path: "/content/includes/foo", resourceType: "includes/foo"},
		},
		dispatcher: dispatcher,
	}
}

func bindings(req sling.Request, resp sling.Response) map[string]any {
	return map[string]any{
		sling.BindingRequest:  req,
		sling.BindingResponse: resp,
	}
}
