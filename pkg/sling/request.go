package sling

import (
	"context"
	"io"
	"net/http"
)

// Names of the script bindings a host provides for every render.
const (
	BindingSling    = "sling"
	BindingRequest  = "request"
	BindingResponse = "response"
	BindingResource = "resource"
	BindingLog      = "log"
)

// Request is the host request currently being rendered.
type Request interface {
	Context() context.Context
	Resource() Resource
	ResourceResolver() ResourceResolver
	PathInfo() PathInfo

	// DispatcherForResource returns a dispatcher that renders res, or nil
	// when the host cannot dispatch to it.
	DispatcherForResource(res Resource, opts *DispatchOptions) RequestDispatcher
	// DispatcherForPath returns a dispatcher for an absolute, normalized
	// path, or nil when the host cannot dispatch to it.
	DispatcherForPath(path string, opts *DispatchOptions) RequestDispatcher
}

// Response receives rendered output. Writer carries character output and
// OutputStream carries binary output; a response uses one or the other.
type Response interface {
	Header() http.Header
	Writer() io.Writer
	OutputStream() io.Writer
}

// RequestDispatcher performs a nested render.
type RequestDispatcher interface {
	Include(req Request, resp Response) error
}

// ScriptHelper is bound under BindingSling and identifies the script being
// evaluated.
type ScriptHelper interface {
	ScriptResource() Resource
	Request() Request
	Response() Response
}
