package http

import (
	"fmt"
	"net/http"
	"time"
)

// Error codes carried in the response envelope.
const (
	CodeBadRequest      = "ERR_BAD_REQUEST"
	CodeNotFound        = "ERR_NOT_FOUND"
	CodeRateLimited     = "ERR_RATE_LIMITED"
	CodeUpstreamTimeout = "ERR_UPSTREAM_TIMEOUT"
	CodeInternal        = "ERR_INTERNAL"
)

// DefaultRetryAfter is advertised on 429 responses when no better hint exists.
const DefaultRetryAfter = 60 * time.Second

// AppError represents application-level error with HTTP status.
type AppError struct {
	Code    string                 `json:"code"`
	Message string                 `json:"message"`
	Field   string                 `json:"field,omitempty"`
	Params  map[string]interface{} `json:"params,omitempty"`
	Status  int                    `json:"-"`
	Err     error                  `json:"-"`
	// RetryAfter is sent as the Retry-After header when positive.
	RetryAfter time.Duration `json:"-"`
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

// Unwrap returns underlying error.
func (e *AppError) Unwrap() error {
	return e.Err
}

// NewAppError creates a new application error.
func NewAppError(code, message string, status int) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
		Status:  status,
	}
}

// WithParam sets a single error param. A "field" param also fills Field.
func (e *AppError) WithParam(key string, value interface{}) *AppError {
	if key == "field" {
		if s, ok := value.(string); ok {
			e.Field = s
			return e
		}
	}
	if e.Params == nil {
		e.Params = make(map[string]interface{})
	}
	e.Params[key] = value
	return e
}

// WithError wraps an underlying error.
func (e *AppError) WithError(err error) *AppError {
	e.Err = err
	return e
}

// NotFoundError creates a 404 error.
func NotFoundError(message string) *AppError {
	return NewAppError(CodeNotFound, message, http.StatusNotFound)
}

// NotFoundErrorf creates a 404 error with formatting.
func NotFoundErrorf(format string, a ...interface{}) *AppError {
	return NotFoundError(fmt.Sprintf(format, a...))
}

// BadRequestError creates a 400 error.
func BadRequestError(message string) *AppError {
	return NewAppError(CodeBadRequest, message, http.StatusBadRequest)
}

// InternalError creates a 500 error.
func InternalError(message string) *AppError {
	return NewAppError(CodeInternal, message, http.StatusInternalServerError)
}

// TooManyRequestsError creates a 429 error advertising DefaultRetryAfter.
func TooManyRequestsError(message string) *AppError {
	e := NewAppError(CodeRateLimited, message, http.StatusTooManyRequests)
	e.RetryAfter = DefaultRetryAfter
	return e
}

// GatewayTimeoutError creates a 504 error for upstream providers that did
// not answer in time.
func GatewayTimeoutError(message string) *AppError {
	return NewAppError(CodeUpstreamTimeout, message, http.StatusGatewayTimeout)
}
