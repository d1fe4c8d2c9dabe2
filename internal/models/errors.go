package models

import (
	"fmt"
	"net/http"
)

// ErrorType represents the category of error
type ErrorType string

const (
	// ErrorTypeValidation represents malformed or invalid input (400)
	ErrorTypeValidation ErrorType = "validation"
	// ErrorTypeNoActiveKey means the resolver found zero active credentials
	// for the requested service; recoverable by administrator action (400)
	ErrorTypeNoActiveKey ErrorType = "no_active_key"
	// ErrorTypeUnsupportedService means the request names a service with no
	// adapter (400)
	ErrorTypeUnsupportedService ErrorType = "unsupported_service"
	// ErrorTypeAuthentication represents authentication errors (401)
	ErrorTypeAuthentication ErrorType = "authentication"
	// ErrorTypeAuthorization represents authorization errors (403)
	ErrorTypeAuthorization ErrorType = "authorization"
	// ErrorTypeNotFound represents resource not found errors (404)
	ErrorTypeNotFound ErrorType = "not_found"
	// ErrorTypeConflict represents a lost write race, e.g. concurrent
	// activation of sibling keys (409)
	ErrorTypeConflict ErrorType = "conflict"
	// ErrorTypeProvider means the upstream AI API answered with a non-success
	// response (502)
	ErrorTypeProvider ErrorType = "provider"
	// ErrorTypeTransport represents network-level failures reaching the
	// provider: DNS, connection reset, timeout (502)
	ErrorTypeTransport ErrorType = "transport"
	// ErrorTypeTimeout represents timeout errors (504)
	ErrorTypeTimeout ErrorType = "timeout"
	// ErrorTypeInternal represents internal server errors (500)
	ErrorTypeInternal ErrorType = "internal"
)

// AppError represents a structured application error
type AppError struct {
	Type       ErrorType `json:"type"`
	Message    string    `json:"message"`
	Code       string    `json:"code,omitzero"`
	StatusCode int       `json:"-"`
	Cause      error     `json:"-"`
}

// Error implements the error interface
func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

// Unwrap allows error unwrapping
func (e *AppError) Unwrap() error {
	return e.Cause
}

// GetStatusCode returns the HTTP status code for the error
func (e *AppError) GetStatusCode() int {
	if e.StatusCode > 0 {
		return e.StatusCode
	}

	switch e.Type {
	case ErrorTypeValidation, ErrorTypeNoActiveKey, ErrorTypeUnsupportedService:
		return http.StatusBadRequest
	case ErrorTypeAuthentication:
		return http.StatusUnauthorized
	case ErrorTypeAuthorization:
		return http.StatusForbidden
	case ErrorTypeNotFound:
		return http.StatusNotFound
	case ErrorTypeConflict:
		return http.StatusConflict
	case ErrorTypeProvider, ErrorTypeTransport:
		return http.StatusBadGateway
	case ErrorTypeTimeout:
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}

// NewValidationError creates a validation error
func NewValidationError(message string, cause error) *AppError {
	return &AppError{
		Type:       ErrorTypeValidation,
		Message:    message,
		StatusCode: http.StatusBadRequest,
		Cause:      cause,
	}
}

// NewNoActiveKeyError creates the error surfaced when no credential is active
// for a service. Never retried automatically.
func NewNoActiveKeyError(service ProviderService) *AppError {
	return &AppError{
		Type:       ErrorTypeNoActiveKey,
		Message:    fmt.Sprintf("no active API key configured for service %s", service),
		Code:       "NO_ACTIVE_KEY",
		StatusCode: http.StatusBadRequest,
	}
}

// NewUnsupportedServiceError creates the error surfaced when a request names
// a service without an adapter.
func NewUnsupportedServiceError(service ProviderService) *AppError {
	return &AppError{
		Type:       ErrorTypeUnsupportedService,
		Message:    fmt.Sprintf("service %s has no provider adapter", service),
		Code:       "UNSUPPORTED_SERVICE",
		StatusCode: http.StatusBadRequest,
	}
}

// NewProviderError creates a provider error carrying the most specific
// message the provider's error envelope offered.
func NewProviderError(provider, message string, cause error) *AppError {
	return &AppError{
		Type:       ErrorTypeProvider,
		Message:    message,
		Code:       fmt.Sprintf("PROVIDER_%s_ERROR", provider),
		StatusCode: http.StatusBadGateway,
		Cause:      cause,
	}
}

// NewTransportError creates a network-level dispatch error
func NewTransportError(provider string, cause error) *AppError {
	return &AppError{
		Type:       ErrorTypeTransport,
		Message:    fmt.Sprintf("failed to reach %s: %v", provider, cause),
		Code:       "TRANSPORT_ERROR",
		StatusCode: http.StatusBadGateway,
		Cause:      cause,
	}
}

// NewNotFoundError creates a resource not found error
func NewNotFoundError(message string) *AppError {
	return &AppError{
		Type:       ErrorTypeNotFound,
		Message:    message,
		StatusCode: http.StatusNotFound,
	}
}

// NewConflictError creates a write-conflict error
func NewConflictError(message string) *AppError {
	return &AppError{
		Type:       ErrorTypeConflict,
		Message:    message,
		StatusCode: http.StatusConflict,
	}
}

// NewInternalError creates an internal server error
func NewInternalError(message string, cause error) *AppError {
	return &AppError{
		Type:       ErrorTypeInternal,
		Message:    message,
		StatusCode: http.StatusInternalServerError,
		Cause:      cause,
	}
}

// SanitizeError sanitizes an error for external consumption
func SanitizeError(err error) *AppError {
	if appErr, ok := err.(*AppError); ok {
		// Return a copy without the internal cause
		return &AppError{
			Type:       appErr.Type,
			Message:    appErr.Message,
			Code:       appErr.Code,
			StatusCode: appErr.GetStatusCode(),
		}
	}

	return &AppError{
		Type:       ErrorTypeInternal,
		Message:    "an unexpected error occurred",
		StatusCode: http.StatusInternalServerError,
		Cause:      err,
	}
}
