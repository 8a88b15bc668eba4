package hoarder

import (
	"errors"
	"fmt"
)

// URLError reports a server address that cannot be parsed as an absolute URL.
type URLError struct {
	Input string
	Err   error
}

func (e *URLError) Error() string {
	return fmt.Sprintf("invalid URL: %v", e.Err)
}

func (e *URLError) Unwrap() error { return e.Err }

// TransportError covers everything between "request built" and "payload
// decoded": DNS, connect, TLS, timeouts and unreadable success bodies.
type TransportError struct {
	Op  string
	Err error
}

func (e *TransportError) Error() string {
	if e.Op == "" {
		return fmt.Sprintf("HTTP request failed: %v", e.Err)
	}
	return fmt.Sprintf("HTTP request failed: %s: %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// APIError is a non-success response. Body holds the raw response text.
type APIError struct {
	Status int
	Body   string
}

func (e *APIError) Error() string {
	return "API error: " + e.Body
}

// IsURLError reports whether err is, or wraps, a *URLError.
func IsURLError(err error) bool {
	var target *URLError
	return errors.As(err, &target)
}

// IsTransportError reports whether err is, or wraps, a *TransportError.
func IsTransportError(err error) bool {
	var target *TransportError
	return errors.As(err, &target)
}

// AsAPIError returns the *APIError in err's chain, if any.
func AsAPIError(err error) (*APIError, bool) {
	var target *APIError
	if errors.As(err, &target) {
		return target, true
	}
	return nil, false
}
