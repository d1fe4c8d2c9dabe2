package models

import "fmt"

// ProviderService identifies one AI backend. The set is closed: adding a
// provider means adding an adapter and is a deliberate, reviewable change.
type ProviderService string

const (
	ServiceOpenAI     ProviderService = "openai"
	ServicePerplexity ProviderService = "perplexity"
	ServiceAnthropic  ProviderService = "anthropic"
	ServiceGoogle     ProviderService = "google"
	// ServiceCustom is a reserved extension point. It is a valid enum value
	// but no adapter exists for it; dispatching to it fails with
	// ErrorTypeUnsupportedService.
	ServiceCustom ProviderService = "custom"
)

// AllServices lists every enumerable service, including the unsupported
// "custom" placeholder.
var AllServices = []ProviderService{
	ServiceOpenAI,
	ServicePerplexity,
	ServiceAnthropic,
	ServiceGoogle,
	ServiceCustom,
}

// ParseProviderService validates a raw service string against the closed
// enumeration.
func ParseProviderService(s string) (ProviderService, error) {
	svc := ProviderService(s)
	for _, known := range AllServices {
		if svc == known {
			return svc, nil
		}
	}
	return "", fmt.Errorf("unknown service: %q", s)
}

// Default model identifiers per provider. These are policy, not protocol:
// every one of them can be overridden per provider in the YAML config.
const (
	DefaultOpenAIModel     = "gpt-4o"
	DefaultPerplexityModel = "llama-3.1-sonar-small-128k-online"
	DefaultAnthropicModel  = "claude-3-haiku-20240307"
	DefaultGoogleModel     = "gemini-1.5-flash"
)

// DefaultPerplexityBaseURL is where the Perplexity chat-completions API lives;
// the request shape is OpenAI-compatible, only the host and model namespace
// differ.
const DefaultPerplexityBaseURL = "https://api.perplexity.ai"

// DefaultSystemPrompt is sent as the system role for chat-style providers
// unless the provider config overrides it.
const DefaultSystemPrompt = "You are a helpful assistant."

// DefaultModelFor returns the built-in default model for a service, or ""
// for services without an adapter.
func DefaultModelFor(service ProviderService) string {
	switch service {
	case ServiceOpenAI:
		return DefaultOpenAIModel
	case ServicePerplexity:
		return DefaultPerplexityModel
	case ServiceAnthropic:
		return DefaultAnthropicModel
	case ServiceGoogle:
		return DefaultGoogleModel
	default:
		return ""
	}
}

// ProviderConfig holds per-provider settings from the YAML config. APIKey is
// the environment-level fallback credential used only when the credential
// store has no active key for the service.
type ProviderConfig struct {
	APIKey       string `yaml:"api_key" json:"api_key,omitzero"`
	BaseURL      string `yaml:"base_url" json:"base_url,omitzero"`
	DefaultModel string `yaml:"default_model" json:"default_model,omitzero"`
	SystemPrompt string `yaml:"system_prompt" json:"system_prompt,omitzero"`
	TimeoutMs    int    `yaml:"timeout_ms" json:"timeout_ms,omitzero"`
}
