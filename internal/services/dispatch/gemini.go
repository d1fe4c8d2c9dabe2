package dispatch

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/sparknote/ai-gateway/internal/models"
	"github.com/sparknote/ai-gateway/internal/utils/clientcache"

	fiberlog "github.com/gofiber/fiber/v2/log"
	"google.golang.org/genai"
)

// GoogleAdapter speaks the Gemini GenerateContent API through the genai SDK.
type GoogleAdapter struct {
	clientCache *clientcache.Cache[*genai.Client]
}

func NewGoogleAdapter() *GoogleAdapter {
	return &GoogleAdapter{
		clientCache: clientcache.NewCache[*genai.Client](),
	}
}

func (a *GoogleAdapter) Service() models.ProviderService {
	return models.ServiceGoogle
}

// createClient creates or retrieves a cached Gemini client.
func (a *GoogleAdapter) createClient(ctx context.Context, apiKey string, cfg models.ProviderConfig) (*genai.Client, error) {
	configHash, err := clientConfigHash(apiKey, cfg.BaseURL, cfg.TimeoutMs)
	if err != nil {
		fiberlog.Warnf("Failed to generate config hash for google: %v, creating new client without caching", err)
		return a.buildClient(ctx, apiKey, cfg)
	}

	client, err := a.clientCache.GetOrCreate(configHash, func() (*genai.Client, error) {
		fiberlog.Debugf("Creating new Gemini client (config hash: %s)", configHash[:8])
		return a.buildClient(ctx, apiKey, cfg)
	})
	if err != nil {
		return nil, err
	}
	return client, nil
}

func (a *GoogleAdapter) buildClient(ctx context.Context, apiKey string, cfg models.ProviderConfig) (*genai.Client, error) {
	timeout := 30 * time.Second
	if cfg.TimeoutMs > 0 {
		timeout = time.Duration(cfg.TimeoutMs) * time.Millisecond
	}

	clientConfig := &genai.ClientConfig{
		APIKey:     apiKey,
		Backend:    genai.BackendGeminiAPI,
		HTTPClient: &http.Client{Timeout: timeout},
	}
	if cfg.BaseURL != "" {
		clientConfig.HTTPOptions = genai.HTTPOptions{BaseURL: cfg.BaseURL}
	}

	client, err := genai.NewClient(ctx, clientConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}
	return client, nil
}

// Generate performs one GenerateContent call and normalizes the response.
func (a *GoogleAdapter) Generate(
	ctx context.Context,
	apiKey string,
	cfg models.ProviderConfig,
	req *models.GenerationRequest,
) (*models.GenerationResult, error) {
	client, err := a.createClient(ctx, apiKey, cfg)
	if err != nil {
		return nil, models.NewTransportError("google", err)
	}

	systemPrompt := cfg.SystemPrompt
	if systemPrompt == "" {
		systemPrompt = models.DefaultSystemPrompt
	}

	genConfig := &genai.GenerateContentConfig{
		SystemInstruction: genai.NewContentFromText(systemPrompt, genai.RoleUser),
	}
	if opts := req.Options; opts != nil {
		if opts.Temperature != nil {
			genConfig.Temperature = genai.Ptr(float32(*opts.Temperature))
		}
		if opts.MaxTokens != nil {
			genConfig.MaxOutputTokens = int32(*opts.MaxTokens)
		}
		if opts.TopP != nil {
			genConfig.TopP = genai.Ptr(float32(*opts.TopP))
		}
		if opts.TopK != nil {
			genConfig.TopK = genai.Ptr(float32(*opts.TopK))
		}
	}

	fiberlog.Infof("Making google API request - model: %s", req.Model)
	resp, err := client.Models.GenerateContent(ctx, req.Model, genai.Text(req.Prompt), genConfig)
	if err != nil {
		return nil, a.mapError(err)
	}

	content, ok := firstCandidateText(resp)
	if !ok {
		return nil, models.NewProviderError("google", "response contained no candidates", nil)
	}

	raw, err := json.Marshal(resp)
	if err != nil {
		return nil, models.NewInternalError("failed to encode Gemini response", err)
	}

	var usage json.RawMessage
	if resp.UsageMetadata != nil {
		if encoded, err := json.Marshal(resp.UsageMetadata); err == nil {
			usage = encoded
		}
	}

	result := &models.GenerationResult{
		Content: content,
		Model:   resp.ModelVersion,
		Usage:   usage,
		Raw:     raw,
	}
	if result.Model == "" {
		result.Model = req.Model
	}
	return result, nil
}

// firstCandidateText walks the candidate structure defensively since every
// level is optional in the wire format.
func firstCandidateText(resp *genai.GenerateContentResponse) (string, bool) {
	if resp == nil || len(resp.Candidates) == 0 {
		return "", false
	}
	candidate := resp.Candidates[0]
	if candidate == nil || candidate.Content == nil || len(candidate.Content.Parts) == 0 {
		return "", false
	}
	part := candidate.Content.Parts[0]
	if part == nil {
		return "", false
	}
	return part.Text, true
}

func (a *GoogleAdapter) mapError(err error) error {
	var apierr genai.APIError
	if errors.As(err, &apierr) {
		message := apierr.Message
		if message == "" {
			message = "Google API error"
		}
		return models.NewProviderError("google", message, err)
	}
	return models.NewTransportError("google", err)
}
