package directive

import "errors"

var (
	// ErrMissingContext reports that the request or response binding is
	// absent from the template environment.
	ErrMissingContext = errors.New("directive: missing rendering context")
	// ErrNoTarget reports that the include parameter is missing or does not
	// resolve to a resource or a path.
	ErrNoTarget = errors.New("directive: no resolvable include target")
	// ErrInvalidParameter reports a parameter of an unsupported type.
	ErrInvalidParameter = errors.New("directive: invalid parameter")
	// ErrDispatcherUnavailable reports that the host returned no dispatcher.
	ErrDispatcherUnavailable = errors.New("directive: request dispatcher unavailable")
	// ErrNoContent reports a nested render that produced no text.
	ErrNoContent = errors.New("directive: dispatch produced no content")
	// ErrTransport reports a failed nested render when the include directive
	// is configured to fail on transport errors.
	ErrTransport = errors.New("directive: nested include failed")
)
