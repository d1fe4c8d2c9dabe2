package config

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/sparknote/ai-gateway/internal/models"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config represents the complete application configuration
type Config struct {
	Server    models.ServerConfig                              `yaml:"server"`
	Providers map[models.ProviderService]models.ProviderConfig `yaml:"providers"`
	Database  *models.DatabaseConfig                           `yaml:"database,omitempty"`
	Auth      *models.AuthConfig                               `yaml:"auth,omitempty"`
	Cache     *models.CacheConfig                              `yaml:"cache,omitempty"`
}

// LoadFromFile loads configuration from a YAML file with environment variable substitution
func LoadFromFile(configPath string) (*Config, error) {
	// Validate and clean the file path to prevent directory traversal
	cleanPath := filepath.Clean(configPath)

	if strings.Contains(cleanPath, "..") {
		return nil, fmt.Errorf("invalid config path: path traversal not allowed")
	}

	ext := filepath.Ext(cleanPath)
	if ext != ".yaml" && ext != ".yml" {
		return nil, fmt.Errorf("invalid config file: only .yaml and .yml files are allowed")
	}

	data, err := os.ReadFile(cleanPath) // #nosec G304 - path is validated above
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", cleanPath, err)
	}

	content := substituteEnvVars(string(data))

	var config Config
	if err := yaml.Unmarshal([]byte(content), &config); err != nil {
		return nil, fmt.Errorf("failed to parse YAML config: %w", err)
	}

	// Normalize provider map keys to lowercase so lookups by service enum
	// are case-insensitive
	if config.Providers != nil {
		normalized := make(map[models.ProviderService]models.ProviderConfig, len(config.Providers))
		for key, value := range config.Providers {
			normalized[models.ProviderService(strings.ToLower(string(key)))] = value
		}
		config.Providers = normalized
	}

	return &config, nil
}

// LoadEnvFiles loads environment variables from .env files in order of precedence
// Loads files in the order provided (first has highest priority)
func LoadEnvFiles(envFiles []string) {
	for _, envFile := range envFiles {
		if _, err := os.Stat(envFile); err == nil {
			if err := godotenv.Load(envFile); err == nil {
				fmt.Printf("Loaded environment variables from %s\n", envFile)
			}
		}
	}
}

// New creates a new Config instance by loading from the specified config file path
func New(configPath string) (*Config, error) {
	return LoadFromFile(configPath)
}

// substituteEnvVars replaces ${VAR_NAME} and ${VAR_NAME:-default} patterns with environment variables
func substituteEnvVars(content string) string {
	re := regexp.MustCompile(`\$\{([^}:]+)(?::(-[^}]*))?\}`)

	return re.ReplaceAllStringFunc(content, func(match string) string {
		submatches := re.FindStringSubmatch(match)
		if len(submatches) < 2 {
			return match
		}

		varName := submatches[1]
		defaultValue := ""

		if len(submatches) > 2 && submatches[2] != "" {
			defaultValue = strings.TrimPrefix(submatches[2], "-")
		}

		if value := os.Getenv(varName); value != "" {
			return value
		}

		return defaultValue
	})
}

// ProviderConfig returns the configuration for a service, falling back to a
// zero value when the service is not configured. A missing entry is not an
// error: the credential store remains the primary source of API keys.
func (c *Config) ProviderConfig(service models.ProviderService) models.ProviderConfig {
	if c.Providers == nil {
		return models.ProviderConfig{}
	}
	return c.Providers[service]
}

// FallbackAPIKey returns the environment-level fallback credential for a
// service, or "" when none is configured.
func (c *Config) FallbackAPIKey(service models.ProviderService) string {
	return c.ProviderConfig(service).APIKey
}

// DefaultModel returns the model used when a request omits one: the
// per-provider config override if set, else the built-in default.
func (c *Config) DefaultModel(service models.ProviderService) string {
	if m := c.ProviderConfig(service).DefaultModel; m != "" {
		return m
	}
	return models.DefaultModelFor(service)
}

// SystemPrompt returns the system message sent to chat-style providers.
func (c *Config) SystemPrompt(service models.ProviderService) string {
	if p := c.ProviderConfig(service).SystemPrompt; p != "" {
		return p
	}
	return models.DefaultSystemPrompt
}

// GetNormalizedLogLevel returns the log level in lowercase for consistent comparison
func (c *Config) GetNormalizedLogLevel() string {
	return strings.ToLower(c.Server.LogLevel)
}

// IsProduction returns true if the environment is production
func (c *Config) IsProduction() bool {
	return c.Server.Environment == "production"
}

// Validate checks if all required configuration values are set
func (c *Config) Validate() error {
	var missing []string

	if c.Server.Port == "" {
		missing = append(missing, "server.port")
	}
	if c.Server.AllowedOrigins == "" {
		missing = append(missing, "server.allowed_origins")
	}
	if c.Database == nil {
		missing = append(missing, "database")
	}

	if len(missing) > 0 {
		return &ValidationError{MissingFields: missing}
	}

	return nil
}

// ValidationError represents configuration validation errors
type ValidationError struct {
	MissingFields []string
}

func (e *ValidationError) Error() string {
	return "missing required configuration fields: " + strings.Join(e.MissingFields, ", ")
}
