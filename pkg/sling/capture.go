package sling

import (
	"bytes"
	"errors"
	"io"
	"net/http"
	"strings"
)

var (
	// ErrBinaryResponse is returned when text is requested from a capture
	// that received binary output.
	ErrBinaryResponse = errors.New("sling: captured response is binary")
	// ErrOutputMode is returned by writes to the output channel a response
	// did not select first.
	ErrOutputMode = errors.New("sling: response output already obtained in another mode")
)

type captureMode int

const (
	captureNone captureMode = iota
	captureText
	captureBinary
)

// CaptureResponse buffers the output of a nested include instead of sending
// it to the client. The first call to Writer or OutputStream decides whether
// the capture is textual or binary. Headers are shared with the wrapped
// response.
type CaptureResponse struct {
	wrapped Response
	mode    captureMode
	text    strings.Builder
	binary  bytes.Buffer
}

var _ Response = (*CaptureResponse)(nil)

// NewCaptureResponse wraps resp.
func NewCaptureResponse(resp Response) *CaptureResponse {
	return &CaptureResponse{wrapped: resp}
}

func (c *CaptureResponse) Header() http.Header {
	if c.wrapped == nil {
		return http.Header{}
	}
	return c.wrapped.Header()
}

func (c *CaptureResponse) Writer() io.Writer {
	if c.mode == captureBinary {
		return errWriter{}
	}
	c.mode = captureText
	return &c.text
}

func (c *CaptureResponse) OutputStream() io.Writer {
	if c.mode == captureText {
		return errWriter{}
	}
	c.mode = captureBinary
	return &c.binary
}

// IsBinary reports whether output was written through OutputStream.
func (c *CaptureResponse) IsBinary() bool {
	return c.mode == captureBinary
}

// CapturedText returns the buffered character output. A capture that never
// obtained a writer yields the empty string.
func (c *CaptureResponse) CapturedText() (string, error) {
	if c.IsBinary() {
		return "", ErrBinaryResponse
	}
	return c.text.String(), nil
}

// CapturedBytes returns the buffered binary output.
func (c *CaptureResponse) CapturedBytes() []byte {
	return c.binary.Bytes()
}

type errWriter struct{}

func (errWriter) Write([]byte) (int, error) {
	return 0, ErrOutputMode
}
