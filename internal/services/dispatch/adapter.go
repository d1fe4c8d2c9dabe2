// Package dispatch routes generation requests to the configured AI providers.
// It resolves the credential for the requested service, hands the call to the
// matching adapter, and reports a DispatchOutcome for every attempt.
package dispatch

import (
	"context"
	"crypto/sha256"
	"encoding/json"
	"fmt"

	"github.com/sparknote/ai-gateway/internal/models"
)

// Adapter translates a provider-neutral generation request into one provider's
// wire protocol. Implementations must not retry and must map provider API
// failures to ErrorTypeProvider and connectivity failures to
// ErrorTypeTransport.
type Adapter interface {
	// Service names the provider this adapter speaks to.
	Service() models.ProviderService

	// Generate performs a single generation call with the given API key.
	Generate(ctx context.Context, apiKey string, cfg models.ProviderConfig, req *models.GenerationRequest) (*models.GenerationResult, error)
}

// clientConfigHash derives a stable cache key from the parts of a client's
// configuration that require a rebuild when they change. The API key is
// hashed so the raw secret never becomes a cache key.
func clientConfigHash(apiKey, baseURL string, timeoutMs int) (string, error) {
	type configForHash struct {
		BaseURL    string
		TimeoutMs  int
		APIKeyHash string
	}

	apiKeyHash := sha256.Sum256([]byte(apiKey))
	hashConfig := configForHash{
		BaseURL:    baseURL,
		TimeoutMs:  timeoutMs,
		APIKeyHash: fmt.Sprintf("%x", apiKeyHash[:8]),
	}

	configJSON, err := json.Marshal(hashConfig)
	if err != nil {
		return "", err
	}

	hash := sha256.Sum256(configJSON)
	return fmt.Sprintf("%x", hash[:16]), nil
}

// errorEnvelope is the {"error": {"message": ...}} body shape shared by the
// OpenAI, Perplexity, and Anthropic APIs.
type errorEnvelope struct {
	Error struct {
		Message string `json:"message"`
	} `json:"error"`
}

// providerErrorMessage extracts a human-readable message from a provider's
// raw error body, falling back to a generic per-provider message when the
// body carries none.
func providerErrorMessage(rawBody, fallback string) string {
	var env errorEnvelope
	if err := json.Unmarshal([]byte(rawBody), &env); err == nil && env.Error.Message != "" {
		return env.Error.Message
	}
	return fallback
}
