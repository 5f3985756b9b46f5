package config

import (
	"fmt"
	"os"
	"strings"
	"time"
)

const (
	defaultGatewayURL     = "https://api.openai.com/v1"
	defaultGatewayModel   = "gpt-4o-mini"
	defaultGatewayTimeout = 30 * time.Second
	defaultAPIKeyEnv      = "AI_GATEWAY_API_KEY"

	// covers the storage round trips around the gateway call
	extractionLockMargin = 90 * time.Second
)

// AIConfig holds the text-completion gateway settings
type AIConfig struct {
	// APIKeyEnv names the environment variable holding the secret. The key itself is
	// read on every call so a missing key fails the request, not the process.
	APIKeyEnv string        `json:"-"`
	BaseURL   string        `json:"baseUrl"`
	Model     string        `json:"model"`
	Timeout   time.Duration `json:"timeout"`
}

// DefaultAIConfig returns the gateway configuration from the environment
func DefaultAIConfig() (*AIConfig, error) {
	timeout := defaultGatewayTimeout
	if v := os.Getenv("AI_GATEWAY_TIMEOUT"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return nil, fmt.Errorf("invalid AI_GATEWAY_TIMEOUT: %w", err)
		}
		if d <= 0 {
			return nil, fmt.Errorf("AI_GATEWAY_TIMEOUT must be positive")
		}
		timeout = d
	}

	return &AIConfig{
		APIKeyEnv: defaultAPIKeyEnv,
		BaseURL:   strings.TrimRight(getEnvOrDefault("AI_GATEWAY_URL", defaultGatewayURL), "/"),
		Model:     getEnvOrDefault("AI_GATEWAY_MODEL", defaultGatewayModel),
		Timeout:   timeout,
	}, nil
}

// APIKey returns the current gateway key, empty when unset
func (c *AIConfig) APIKey() string {
	return os.Getenv(c.APIKeyEnv)
}

// IsEnabled returns true if the gateway key is configured
func (c *AIConfig) IsEnabled() bool {
	return c.APIKey() != ""
}

// CompletionsEndpoint returns the chat-completions URL
func (c *AIConfig) CompletionsEndpoint() string {
	return c.BaseURL + "/chat/completions"
}

// ExtractionLockTTL is how long a keypoint extraction lock lives. It always outlasts
// one gateway call so the lock cannot expire while extraction is still running.
func (c *AIConfig) ExtractionLockTTL() time.Duration {
	return c.Timeout + extractionLockMargin
}

func getEnvOrDefault(key, defaultValue string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultValue
}
