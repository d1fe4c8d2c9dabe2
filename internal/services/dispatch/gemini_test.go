package dispatch

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/sparknote/ai-gateway/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGoogleGenerate(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.True(t, strings.Contains(r.URL.Path, "gemini-1.5-flash"))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"candidates": [{"content": {"role": "model", "parts": [{"text": "bonjour"}]}, "finishReason": "STOP"}],
			"usageMetadata": {"promptTokenCount": 2, "candidatesTokenCount": 3, "totalTokenCount": 5},
			"modelVersion": "gemini-1.5-flash"
		}`))
	}))
	defer server.Close()

	adapter := NewGoogleAdapter()
	result, err := adapter.Generate(context.Background(), "g-key",
		models.ProviderConfig{BaseURL: server.URL},
		&models.GenerationRequest{
			Service: models.ServiceGoogle,
			Model:   "gemini-1.5-flash",
			Prompt:  "translate hello to french",
		})

	require.NoError(t, err)
	assert.Equal(t, "bonjour", result.Content)
	assert.Equal(t, "gemini-1.5-flash", result.Model)

	tokens := models.TotalTokens(result.Usage)
	require.NotNil(t, tokens)
	assert.Equal(t, 5, *tokens)
	assert.NotEmpty(t, result.Raw)
}

func TestGoogleGenerateProviderError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error": {"code": 400, "message": "API key not valid", "status": "INVALID_ARGUMENT"}}`))
	}))
	defer server.Close()

	adapter := NewGoogleAdapter()
	_, err := adapter.Generate(context.Background(), "bad-key",
		models.ProviderConfig{BaseURL: server.URL},
		&models.GenerationRequest{Service: models.ServiceGoogle, Model: "gemini-1.5-flash", Prompt: "hi"})

	var appErr *models.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, models.ErrorTypeProvider, appErr.Type)
	assert.Contains(t, appErr.Message, "API key not valid")
}

func TestGoogleGenerateEmptyCandidates(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"candidates": [], "modelVersion": "gemini-1.5-flash"}`))
	}))
	defer server.Close()

	adapter := NewGoogleAdapter()
	_, err := adapter.Generate(context.Background(), "g-key",
		models.ProviderConfig{BaseURL: server.URL},
		&models.GenerationRequest{Service: models.ServiceGoogle, Model: "gemini-1.5-flash", Prompt: "hi"})

	var appErr *models.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, models.ErrorTypeProvider, appErr.Type)
}
