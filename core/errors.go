package core

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	ErrTokenExpired     = errors.New("token has expired")
	ErrTokenInvalidated = errors.New("token has been invalidated")
	ErrInvalidToken     = errors.New("invalid token")
	ErrMalformedToken   = errors.New("malformed token")
	ErrMissingExpiry    = errors.New("token has no expiry")
	ErrTransport        = errors.New("transport error")
	ErrHTTPStatus       = errors.New("http status error")
	ErrDecode           = errors.New("response decode error")
	ErrRefreshDenied    = errors.New("refresh denied")
	ErrUnexpectedBody   = errors.New("unexpected response format")
	ErrStoreFailed      = errors.New("session store operation failed")
)

// RequestError is the single failure kind surfaced by the request executor.
// Status is zero when no response was obtained.
type RequestError struct {
	Status   int
	Err      error
	Response *ErrorResponse // Decoded error envelope, when the body carried one
}

// NewStatusError builds a RequestError for a non-successful response
func NewStatusError(status int) *RequestError {
	return &RequestError{Status: status, Err: ErrHTTPStatus}
}

// NewTransportError builds a RequestError for a failure before any response
func NewTransportError(cause error) *RequestError {
	return &RequestError{Err: fmt.Errorf("%w: %w", ErrTransport, cause)}
}

// NewDecodeError builds a RequestError for a successful response whose body is not JSON
func NewDecodeError(status int, cause error) *RequestError {
	return &RequestError{Status: status, Err: fmt.Errorf("%w: %w", ErrDecode, cause)}
}

func (e *RequestError) Error() string {
	switch {
	case errors.Is(e.Err, ErrHTTPStatus):
		return fmt.Sprintf("HTTP error! status: %d", e.Status)
	case e.Err != nil:
		return e.Err.Error()
	default:
		return fmt.Sprintf("request failed with status %d", e.Status)
	}
}

func (e *RequestError) Unwrap() error {
	return e.Err
}

// StatusOf returns the HTTP status carried by err, or 0
func StatusOf(err error) int {
	var reqErr *RequestError
	if errors.As(err, &reqErr) {
		return reqErr.Status
	}
	return 0
}

// IsNotFound reports whether err carries a 404 response
func IsNotFound(err error) bool {
	return StatusOf(err) == http.StatusNotFound
}
