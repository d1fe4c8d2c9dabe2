package models

import (
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestErrorStatusCodes(t *testing.T) {
	tests := []struct {
		name     string
		err      *AppError
		expected int
	}{
		{"no active key", NewNoActiveKeyError(ServiceOpenAI), http.StatusBadRequest},
		{"unsupported service", NewUnsupportedServiceError(ServiceCustom), http.StatusBadRequest},
		{"validation", NewValidationError("bad input", nil), http.StatusBadRequest},
		{"provider", NewProviderError("openai", "invalid api key", nil), http.StatusBadGateway},
		{"transport", NewTransportError("anthropic", errors.New("connection refused")), http.StatusBadGateway},
		{"not found", NewNotFoundError("key not found"), http.StatusNotFound},
		{"conflict", NewConflictError("another key won the activation"), http.StatusConflict},
		{"internal", NewInternalError("boom", nil), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.err.GetStatusCode())
		})
	}
}

func TestProviderErrorKeepsMessage(t *testing.T) {
	err := NewProviderError("anthropic", "invalid api key", errors.New("401"))

	assert.Equal(t, ErrorTypeProvider, err.Type)
	assert.Equal(t, "invalid api key", err.Message)
	assert.Contains(t, err.Error(), "invalid api key")
}

func TestNoActiveKeyErrorNamesService(t *testing.T) {
	err := NewNoActiveKeyError(ServicePerplexity)

	assert.Equal(t, ErrorTypeNoActiveKey, err.Type)
	assert.Contains(t, err.Message, "perplexity")
}

func TestSanitizeErrorStripsCause(t *testing.T) {
	cause := errors.New("dial tcp: connection refused to 10.0.0.5")
	sanitized := SanitizeError(NewProviderError("openai", "upstream rejected the request", cause))

	assert.Equal(t, ErrorTypeProvider, sanitized.Type)
	assert.Nil(t, sanitized.Cause)
	assert.Equal(t, "upstream rejected the request", sanitized.Message)
}

func TestSanitizeErrorWrapsUnknown(t *testing.T) {
	sanitized := SanitizeError(errors.New("secret internal detail"))

	assert.Equal(t, ErrorTypeInternal, sanitized.Type)
	assert.NotContains(t, sanitized.Message, "secret")
}

func TestErrorUnwrap(t *testing.T) {
	cause := errors.New("root cause")
	err := NewTransportError("google", cause)

	assert.True(t, errors.Is(err, cause))
}
