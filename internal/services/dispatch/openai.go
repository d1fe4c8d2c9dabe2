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
	"github.com/openai/openai-go/v2"
	openaiOption "github.com/openai/openai-go/v2/option"
)

// OpenAICompatibleAdapter speaks the OpenAI chat-completions protocol. It
// serves both OpenAI itself and Perplexity, whose API is wire-compatible and
// differs only in host, model namespace, and the extra top_k parameter.
type OpenAICompatibleAdapter struct {
	service        models.ProviderService
	defaultBaseURL string
	clientCache    *clientcache.Cache[*openai.Client]
}

// NewOpenAIAdapter returns the adapter for api.openai.com.
func NewOpenAIAdapter() *OpenAICompatibleAdapter {
	return &OpenAICompatibleAdapter{
		service:     models.ServiceOpenAI,
		clientCache: clientcache.NewCache[*openai.Client](),
	}
}

// NewPerplexityAdapter returns the adapter for api.perplexity.ai, reusing the
// OpenAI client against Perplexity's compatible endpoint.
func NewPerplexityAdapter() *OpenAICompatibleAdapter {
	return &OpenAICompatibleAdapter{
		service:        models.ServicePerplexity,
		defaultBaseURL: models.DefaultPerplexityBaseURL,
		clientCache:    clientcache.NewCache[*openai.Client](),
	}
}

func (a *OpenAICompatibleAdapter) Service() models.ProviderService {
	return a.service
}

// createClient creates or retrieves a cached client for the given key and
// provider config.
func (a *OpenAICompatibleAdapter) createClient(apiKey string, cfg models.ProviderConfig) *openai.Client {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = a.defaultBaseURL
	}

	configHash, err := clientConfigHash(apiKey, baseURL, cfg.TimeoutMs)
	if err != nil {
		fiberlog.Warnf("Failed to generate config hash for %s: %v, creating new client without caching", a.service, err)
		return a.buildClient(apiKey, baseURL, cfg.TimeoutMs)
	}

	cacheKey := fmt.Sprintf("%s:%s", a.service, configHash)
	client, err := a.clientCache.GetOrCreate(cacheKey, func() (*openai.Client, error) {
		fiberlog.Debugf("Creating new %s client (config hash: %s)", a.service, configHash[:8])
		return a.buildClient(apiKey, baseURL, cfg.TimeoutMs), nil
	})
	if err != nil {
		fiberlog.Warnf("Unexpected error from client cache: %v, creating new client", err)
		return a.buildClient(apiKey, baseURL, cfg.TimeoutMs)
	}
	return client
}

func (a *OpenAICompatibleAdapter) buildClient(apiKey, baseURL string, timeoutMs int) *openai.Client {
	opts := []openaiOption.RequestOption{
		openaiOption.WithAPIKey(apiKey),
	}

	if baseURL != "" {
		opts = append(opts, openaiOption.WithBaseURL(baseURL))
	}

	timeout := 30 * time.Second
	if timeoutMs > 0 {
		timeout = time.Duration(timeoutMs) * time.Millisecond
	}
	opts = append(opts, openaiOption.WithHTTPClient(&http.Client{Timeout: timeout}))

	client := openai.NewClient(opts...)
	return &client
}

// Generate performs one chat-completions call and normalizes the response.
func (a *OpenAICompatibleAdapter) Generate(
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

	params := openai.ChatCompletionNewParams{
		Model: req.Model,
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(systemPrompt),
			openai.UserMessage(req.Prompt),
		},
	}

	var callOpts []openaiOption.RequestOption
	if opts := req.Options; opts != nil {
		if opts.Temperature != nil {
			params.Temperature = openai.Float(*opts.Temperature)
		}
		if opts.MaxTokens != nil {
			params.MaxTokens = openai.Int(int64(*opts.MaxTokens))
		}
		if opts.TopP != nil {
			params.TopP = openai.Float(*opts.TopP)
		}
		// top_k is not part of the OpenAI schema but Perplexity accepts it.
		if opts.TopK != nil && a.service == models.ServicePerplexity {
			callOpts = append(callOpts, openaiOption.WithJSONSet("top_k", *opts.TopK))
		}
	}

	fiberlog.Infof("Making %s API request - model: %s", a.service, req.Model)
	completion, err := client.Chat.Completions.New(ctx, params, callOpts...)
	if err != nil {
		return nil, a.mapError(err)
	}

	if len(completion.Choices) == 0 {
		return nil, models.NewProviderError(string(a.service), "response contained no choices", nil)
	}

	result := &models.GenerationResult{
		Content: completion.Choices[0].Message.Content,
		Model:   completion.Model,
		Usage:   json.RawMessage(completion.Usage.RawJSON()),
		Raw:     json.RawMessage(completion.RawJSON()),
	}
	if result.Model == "" {
		result.Model = req.Model
	}
	return result, nil
}

// mapError classifies an SDK error as a provider rejection or a transport
// failure. Provider messages are passed through verbatim so the caller sees
// what the upstream actually said.
func (a *OpenAICompatibleAdapter) mapError(err error) error {
	var apierr *openai.Error
	if errors.As(err, &apierr) {
		fallback := fmt.Sprintf("%s API error", a.service)
		message := apierr.Message
		if message == "" {
			message = providerErrorMessage(apierr.RawJSON(), fallback)
		}
		return models.NewProviderError(string(a.service), message, err)
	}
	return models.NewTransportError(string(a.service), err)
}
