// Package errors provides custom error types for the completion client and
// the widget controller.
package errors

import (
	"errors"
	"fmt"
)

// Sentinel errors for common cases
var (
	ErrMissingAPIKey   = errors.New("API key is not configured")
	ErrAuthFailed      = errors.New("authentication failed")
	ErrRateLimited     = errors.New("rate limit exceeded")
	ErrInvalidResponse = errors.New("invalid response format")
	ErrNoContent       = errors.New("no content in response")
	ErrBusy            = errors.New("a reply is already pending")
	ErrAlreadySettled  = errors.New("exchange already settled")
)

// maxBodyLen limits how much of an error response body is kept
const maxBodyLen = 4096

// AuthError represents a rejected API key (HTTP 401/403)
type AuthError struct {
	StatusCode int
	Message    string
}

func (e *AuthError) Error() string {
	if e.Message == "" {
		return "authentication failed: check the API key"
	}
	return fmt.Sprintf("authentication failed: %s", e.Message)
}

// Is allows comparison with sentinel errors
func (e *AuthError) Is(target error) bool {
	if target == ErrAuthFailed {
		return true
	}
	_, ok := target.(*AuthError)
	return ok
}

// NewAuthError creates a new AuthError
func NewAuthError(statusCode int, message string) *AuthError {
	return &AuthError{StatusCode: statusCode, Message: message}
}

// RateLimitError represents an HTTP 429 from the endpoint
type RateLimitError struct {
	Message string
}

func (e *RateLimitError) Error() string {
	if e.Message == "" {
		return "rate limit exceeded"
	}
	return fmt.Sprintf("rate limit exceeded: %s", e.Message)
}

// Is allows comparison with sentinel errors
func (e *RateLimitError) Is(target error) bool {
	if target == ErrRateLimited {
		return true
	}
	_, ok := target.(*RateLimitError)
	return ok
}

// NewRateLimitError creates a new RateLimitError
func NewRateLimitError(message string) *RateLimitError {
	return &RateLimitError{Message: message}
}

// APIError represents a non-success HTTP status from the endpoint
type APIError struct {
	StatusCode int
	Endpoint   string
	Message    string
	Body       string
}

func (e *APIError) Error() string {
	if e.StatusCode > 0 {
		return fmt.Sprintf("API error [%d] at %s: %s", e.StatusCode, e.Endpoint, e.Message)
	}
	return fmt.Sprintf("API error at %s: %s", e.Endpoint, e.Message)
}

// NewAPIError creates a new APIError
func NewAPIError(statusCode int, endpoint, message string) *APIError {
	return &APIError{
		StatusCode: statusCode,
		Endpoint:   endpoint,
		Message:    message,
	}
}

// NewAPIErrorWithBody creates an APIError that keeps (a prefix of) the body
func NewAPIErrorWithBody(statusCode int, endpoint, message, body string) *APIError {
	if len(body) > maxBodyLen {
		body = body[:maxBodyLen]
	}
	return &APIError{
		StatusCode: statusCode,
		Endpoint:   endpoint,
		Message:    message,
		Body:       body,
	}
}

// NetworkError represents a transport failure before any response arrived
type NetworkError struct {
	Op       string
	Endpoint string
	Err      error
}

func (e *NetworkError) Error() string {
	if e.Endpoint != "" {
		return fmt.Sprintf("network error during %s at %s: %v", e.Op, e.Endpoint, e.Err)
	}
	return fmt.Sprintf("network error during %s: %v", e.Op, e.Err)
}

func (e *NetworkError) Unwrap() error {
	return e.Err
}

// NewNetworkError creates a new NetworkError
func NewNetworkError(op string, err error) *NetworkError {
	return &NetworkError{Op: op, Err: err}
}

// NewNetworkErrorWithEndpoint creates a NetworkError that records the endpoint
func NewNetworkErrorWithEndpoint(op, endpoint string, err error) *NetworkError {
	return &NetworkError{Op: op, Endpoint: endpoint, Err: err}
}

// TimeoutError represents a request timeout
type TimeoutError struct {
	Message string
}

func (e *TimeoutError) Error() string {
	if e.Message == "" {
		return "request timed out"
	}
	return fmt.Sprintf("request timed out: %s", e.Message)
}

// NewTimeoutError creates a new TimeoutError
func NewTimeoutError(message string) *TimeoutError {
	return &TimeoutError{Message: message}
}

// ParseError represents a response body that does not have the expected shape
type ParseError struct {
	Message string
	Path    string
}

func (e *ParseError) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("parse error at %s: %s", e.Path, e.Message)
	}
	return fmt.Sprintf("parse error: %s", e.Message)
}

// Is allows comparison with sentinel errors
func (e *ParseError) Is(target error) bool {
	if target == ErrInvalidResponse {
		return true
	}
	_, ok := target.(*ParseError)
	return ok
}

// NewParseError creates a new ParseError
func NewParseError(message, path string) *ParseError {
	return &ParseError{Message: message, Path: path}
}

// GetHTTPStatus returns the HTTP status carried by err, or 0
func GetHTTPStatus(err error) int {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode
	}
	var authErr *AuthError
	if errors.As(err, &authErr) {
		return authErr.StatusCode
	}
	if IsRateLimitError(err) {
		return 429
	}
	return 0
}

// GetEndpoint returns the endpoint recorded in err, if any
func GetEndpoint(err error) string {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Endpoint
	}
	var netErr *NetworkError
	if errors.As(err, &netErr) {
		return netErr.Endpoint
	}
	return ""
}

// GetResponseBody returns the error body recorded in err, if any
func GetResponseBody(err error) string {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Body
	}
	return ""
}

// IsAuthError reports whether err is an authentication failure
func IsAuthError(err error) bool {
	return errors.Is(err, ErrAuthFailed)
}

// IsRateLimitError reports whether err is a rate limit failure
func IsRateLimitError(err error) bool {
	return errors.Is(err, ErrRateLimited)
}

// IsNetworkError reports whether err is a transport failure
func IsNetworkError(err error) bool {
	var netErr *NetworkError
	return errors.As(err, &netErr)
}

// IsTimeoutError reports whether err is a timeout
func IsTimeoutError(err error) bool {
	var timeoutErr *TimeoutError
	return errors.As(err, &timeoutErr)
}

// IsParseError reports whether err is a malformed response
func IsParseError(err error) bool {
	return errors.Is(err, ErrInvalidResponse)
}

// IsMissingAPIKey reports whether err is caused by an absent API key
func IsMissingAPIKey(err error) bool {
	return errors.Is(err, ErrMissingAPIKey)
}
