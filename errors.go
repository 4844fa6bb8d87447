package minapi

import (
	"errors"
	"fmt"
	"net/http"
)

// Sentinel errors for argument access and request binding.
var (
	// ErrArgumentIndex reports an out-of-range argument slot on an
	// InvocationContext. It is a programming error, never swallowed.
	ErrArgumentIndex = errors.New("argument index out of range")

	// ErrFixedArity reports an attempt to resize the fixed-arity argument
	// list of an InvocationContext.
	ErrFixedArity = errors.New("unsupported operation: argument list has fixed arity")

	// ErrBindArgument reports a failure converting a route or query value
	// to a handler parameter's declared type.
	ErrBindArgument = errors.New("bind argument")

	// ErrParameterSource reports an unrecognized parameter source during
	// document generation. It aborts the in-flight generation.
	ErrParameterSource = errors.New("unsupported parameter source")
)

// StatusCoder is implemented by errors or results that carry an HTTP status code.
type StatusCoder interface {
	StatusCode() int
}

// ProblemDetail is an RFC 9457 problem details response.
//
//nolint:errname // RFC 9457 standard name
type ProblemDetail struct {
	Type     string `json:"type,omitempty"`
	Title    string `json:"title,omitempty"`
	Status   int    `json:"status"`
	Detail   string `json:"detail,omitempty"`
	Instance string `json:"instance,omitempty"`
}

// Error returns the detail message (or title if detail is empty).
func (p *ProblemDetail) Error() string {
	if p.Detail != "" {
		return p.Detail
	}
	return p.Title
}

// StatusCode returns the HTTP status code.
func (p *ProblemDetail) StatusCode() int { return p.Status }

// HTTPError is an error with an HTTP status code.
type HTTPError struct {
	Status  int    `json:"status"`
	Message string `json:"message"`
}

// Error returns the error message.
func (e *HTTPError) Error() string { return e.Message }

// StatusCode returns the HTTP status code.
func (e *HTTPError) StatusCode() int { return e.Status }

// Error returns an error with the given HTTP status code and message.
func Error(status int, message string) error {
	return &HTTPError{Status: status, Message: message}
}

// Errorf returns a formatted error with the given HTTP status code.
func Errorf(status int, format string, args ...any) error {
	return &HTTPError{Status: status, Message: fmt.Sprintf(format, args...)}
}

// ErrorStatus extracts the HTTP status code from an error. Returns
// http.StatusInternalServerError if the error does not implement StatusCoder.
func ErrorStatus(err error) int {
	var sc StatusCoder
	if errors.As(err, &sc) {
		return sc.StatusCode()
	}
	return http.StatusInternalServerError
}
