package nightscout

import (
	"errors"
	"fmt"
)

var (
	// ErrTransport matches non-200 responses and network failures
	ErrTransport = errors.New("transport error")
	// ErrParse matches malformed or unexpected JSON
	ErrParse = errors.New("parse error")
)

// FetchError describes a failed fetch against one endpoint
type FetchError struct {
	Endpoint   string
	StatusCode int // 0 when the request never got a response
	Kind       error
	Err        error
}

func (e *FetchError) Error() string {
	switch {
	case e.Err != nil:
		return fmt.Sprintf("%s: %s: %v", e.Endpoint, e.Kind, e.Err)
	case e.StatusCode != 0:
		return fmt.Sprintf("%s: %s: unexpected status %d", e.Endpoint, e.Kind, e.StatusCode)
	default:
		return fmt.Sprintf("%s: %s", e.Endpoint, e.Kind)
	}
}

func (e *FetchError) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}
