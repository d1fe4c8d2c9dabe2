package dispatch

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/sparknote/ai-gateway/internal/models"
	"github.com/sparknote/ai-gateway/internal/utils/clientcache"

	"github.com/anthropics/anthropic-sdk-go"
	anthropicOption "github.com/anthropics/anthropic-sdk-go/option"
	fiberlog "github.com/gofiber/fiber/v2/log"
)

// defaultAnthropicMaxTokens is applied when the caller sets no max_tokens.
// The Messages API rejects requests without one.
const defaultAnthropicMaxTokens = 1000

// AnthropicAdapter speaks the Anthropic Messages API.
type AnthropicAdapter struct {
	clientCache *clientcache.Cache[*anthropic.Client]
}

func NewAnthropicAdapter() *AnthropicAdapter {
	return &AnthropicAdapter{
		clientCache: clientcache.NewCache[*anthropic.Client](),
	}
}

func (a *AnthropicAdapter) Service() models.ProviderService {
	return models.ServiceAnthropic
}

// createClient creates or retrieves a cached Anthropic client.
func (a *AnthropicAdapter) createClient(apiKey string, cfg models.ProviderConfig) *anthropic.Client {
	configHash, err := clientConfigHash(apiKey, cfg.BaseURL, cfg.TimeoutMs)
	if err != nil {
		fiberlog.Warnf("Failed to generate config hash for anthropic: %v, creating new client without caching", err)
		return a.buildClient(apiKey, cfg)
	}

	client, err := a.clientCache.GetOrCreate(configHash, func() (*anthropic.Client, error) {
		fiberlog.Debugf("Creating new Anthropic client (config hash: %s)", configHash[:8])
		return a.buildClient(apiKey, cfg), nil
	})
	if err != nil {
		fiberlog.Warnf("Unexpected error from client cache: %v, creating new client", err)
		return a.buildClient(apiKey, cfg)
	}
	return client
}

func (a *AnthropicAdapter) buildClient(apiKey string, cfg models.ProviderConfig) *anthropic.Client {
	opts := []anthropicOption.RequestOption{
		anthropicOption.WithAPIKey(apiKey),
	}

	if cfg.BaseURL != "" {
		opts = append(opts, anthropicOption.WithBaseURL(cfg.BaseURL))
	}

	timeout := 30 * time.Second
	if cfg.TimeoutMs > 0 {
		timeout = time.Duration(cfg.TimeoutMs) * time.Millisecond
	}
	opts = append(opts, anthropicOption.WithHTTPClient(&http.Client{Timeout: timeout}))

	client := anthropic.NewClient(opts...)
	return &client
}

// Generate performs one Messages API call and normalizes the response.
func (a *AnthropicAdapter) Generate(
	ctx context.Context,
	apiKey string,
	cfg models.ProviderConfig,
	req *models.GenerationRequest,
) (*models.GenerationResult, error) {
	client := a.createClient(apiKey, cfg)

	systemPrompt := cfg.SystemPrompt
	if systemPrompt == "" {
		systemPrompt = models.DefaultSystemPrompt
	}

	params := anthropic.MessageNewParams{
		Model:     anthropic.Model(req.Model),
		MaxTokens: defaultAnthropicMaxTokens,
		System: []anthropic.TextBlockParam{
			{Text: systemPrompt},
		},
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(req.Prompt)),
		},
	}

	if opts := req.Options; opts != nil {
		if opts.MaxTokens != nil {
			params.MaxTokens = int64(*opts.MaxTokens)
		}
		if opts.Temperature != nil {
			params.Temperature = anthropic.Float(*opts.Temperature)
		}
		if opts.TopP != nil {
			params.TopP = anthropic.Float(*opts.TopP)
		}
		if opts.TopK != nil {
			params.TopK = anthropic.Int(int64(*opts.TopK))
		}
	}

	fiberlog.Infof("Making anthropic API request - model: %s, max_tokens: %d", req.Model, params.MaxTokens)
	message, err := client.Messages.New(ctx, params)
	if err != nil {
		return nil, a.mapError(err)
	}

	if len(message.Content) == 0 {
		return nil, models.NewProviderError("anthropic", "response contained no content blocks", nil)
	}

	result := &models.GenerationResult{
		Content: message.Content[0].Text,
		Model:   string(message.Model),
		Usage:   json.RawMessage(message.Usage.RawJSON()),
		Raw:     json.RawMessage(message.RawJSON()),
	}
	if result.Model == "" {
		result.Model = req.Model
	}
	return result, nil
}

func (a *AnthropicAdapter) mapError(err error) error {
	var apierr *anthropic.Error
	if errors.As(err, &apierr) {
		message := providerErrorMessage(apierr.RawJSON(), "Anthropic API error")
		return models.NewProviderError("anthropic", message, err)
	}
	return models.NewTransportError("anthropic", err)
}
