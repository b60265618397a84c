package host

import (
	"errors"
	"net/http"

	"github.com/goliatone/go-slingtpl/pkg/scripting"
)

var (
	ErrNotFound       = errors.New("host: resource not found")
	ErrNoRenderer     = errors.New("host: no script or default rendering for resource")
	ErrIncludeTooDeep = errors.New("host: include depth exceeded")
)

// HTTPError is an error that carries an HTTP status.
type HTTPError interface {
	error
	StatusCode() int
}

// StatusError attaches an HTTP status to an error.
type StatusError struct {
	Code int
	Err  error
}

func (e StatusError) Error() string {
	if e.Err != nil {
		return e.Err.Error()
	}
	return http.StatusText(e.Code)
}

func (e StatusError) Unwrap() error { return e.Err }

func (e StatusError) StatusCode() int {
	if e.Code <= 0 {
		return http.StatusInternalServerError
	}
	return e.Code
}

// StatusCode maps err to an HTTP status. Errors without one are server
// errors, and so is any script failure: a status carried by a nested
// include belongs to the include, not to the page that failed.
func StatusCode(err error) int {
	if err == nil {
		return http.StatusOK
	}
	var scriptErr *scripting.ScriptError
	if errors.As(err, &scriptErr) {
		return http.StatusInternalServerError
	}
	var httpErr HTTPError
	if errors.As(err, &httpErr) && httpErr != nil {
		return httpErr.StatusCode()
	}
	return http.StatusInternalServerError
}
