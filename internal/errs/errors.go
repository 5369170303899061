// Package errs provides the JSON error bodies middleware attach to
// short-circuit responses.
package errs

import (
	"encoding/json"
	"net/http"
)

// Type classifies an API error.
type Type string

const (
	TypeAuth       Type = "AUTH_ERROR"
	TypePermission Type = "PERMISSION_ERROR"
	TypeCSRF       Type = "CSRF_ERROR"
	TypeRateLimit  Type = "RATE_LIMIT_ERROR"
	TypeInternal   Type = "INTERNAL_ERROR"
)

// APIError is the uniform error payload.
type APIError struct {
	Type    Type   `json:"type"`
	Code    int    `json:"code"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
}

func (e *APIError) Error() string { return e.Message }

// WithDetails attaches detail data and returns the error for chaining.
func (e *APIError) WithDetails(details any) *APIError {
	e.Details = details
	return e
}

// ToJSON serializes the error payload, falling back to a static body if the
// details cannot be marshalled.
func (e *APIError) ToJSON() []byte {
	data, err := json.Marshal(e)
	if err != nil {
		return []byte(`{"type":"INTERNAL_ERROR","code":500,"message":"error serializing error response"}`)
	}
	return data
}

func NewAuthError(message string) *APIError {
	return &APIError{Type: TypeAuth, Code: http.StatusUnauthorized, Message: message}
}

func NewPermissionError(message string) *APIError {
	return &APIError{Type: TypePermission, Code: http.StatusForbidden, Message: message}
}

func NewCSRFError(message string) *APIError {
	return &APIError{Type: TypeCSRF, Code: http.StatusForbidden, Message: message}
}

func NewRateLimitError(message string) *APIError {
	return &APIError{Type: TypeRateLimit, Code: http.StatusTooManyRequests, Message: message}
}

func NewInternalError(message string) *APIError {
	return &APIError{Type: TypeInternal, Code: http.StatusInternalServerError, Message: message}
}
