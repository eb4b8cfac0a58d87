package lastfm

import (
	"fmt"
)

// APIError represents a logical error reported by the Last.fm API.
//
// The APIError type provides structured error information including
// the Last.fm error code and message. It implements error.
type APIError struct {
	Code    int    // Last.fm error code
	Message string // Error message from Last.fm
}

// Error returns the error message.
func (e *APIError) Error() string {
	return fmt.Sprintf("lastfm: error %d: %s", e.Code, e.Message)
}

// Is checks if the target error is a Last.fm API error with the same code.
//
// This allows errors.Is() to work with *APIError types.
func (e *APIError) Is(target error) bool {
	t, ok := target.(*APIError)
	if !ok {
		return false
	}
	return e.Code == t.Code
}

// NetworkError represents a transport failure reaching the Last.fm API:
// connection errors, timeouts, and unexpected HTTP status codes without
// an API error payload.
type NetworkError struct {
	Err error
}

// Error returns the error message.
func (e *NetworkError) Error() string {
	return fmt.Sprintf("lastfm: network error: %v", e.Err)
}

// Unwrap returns the underlying transport error.
func (e *NetworkError) Unwrap() error {
	return e.Err
}

// MalformedError represents a response whose shape did not match what
// the API documents.
type MalformedError struct {
	Reason string
	Err    error
}

// Error returns the error message.
func (e *MalformedError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("lastfm: malformed response: %s: %v", e.Reason, e.Err)
	}
	return fmt.Sprintf("lastfm: malformed response: %s", e.Reason)
}

// Unwrap returns the underlying decode error, if any.
func (e *MalformedError) Unwrap() error {
	return e.Err
}

// Common Last.fm error codes.
const (
	ErrCodeInvalidService      = 2
	ErrCodeInvalidMethod       = 3
	ErrCodeInvalidParameters   = 6
	ErrCodeInvalidResourceSpec = 7
	ErrCodeOperationFailed     = 8
	ErrCodeInvalidAPIKey       = 10
	ErrCodeServiceOffline      = 11
	ErrCodeTempUnavailable     = 16
	ErrCodeRateLimitExceeded   = 29
)
