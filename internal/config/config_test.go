package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")
	t.Setenv("SERVER_PORT", "")
	t.Setenv("REDIS_ADDR", "redis://cache:6379")
	t.Setenv("CORS_ALLOWED_ORIGINS", "")
	t.Setenv("AI_GATEWAY_TIMEOUT", "")
	t.Setenv("AI_GATEWAY_URL", "")

	cfg, err := Load()

	require.NoError(t, err)
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "cache:6379", cfg.Redis.Addr)
	assert.Equal(t, []string{"*"}, cfg.CORS.AllowedOrigins)
	assert.Equal(t, 100, cfg.RateLimit.RequestsPerMinute)
	assert.Equal(t, 30*time.Second, cfg.AI.Timeout)
	assert.Equal(t, "https://api.openai.com/v1/chat/completions", cfg.AI.CompletionsEndpoint())
}

func TestLoad_Errors(t *testing.T) {
	tests := []struct {
		name          string
		env           map[string]string
		errorContains string
	}{
		{
			name:          "missing jwt secret",
			env:           map[string]string{"JWT_SECRET": ""},
			errorContains: "JWT_SECRET is required",
		},
		{
			name:          "invalid port",
			env:           map[string]string{"JWT_SECRET": "s", "SERVER_PORT": "eighty"},
			errorContains: "invalid SERVER_PORT",
		},
		{
			name:          "invalid gateway timeout",
			env:           map[string]string{"JWT_SECRET": "s", "SERVER_PORT": "", "AI_GATEWAY_TIMEOUT": "soon"},
			errorContains: "invalid AI_GATEWAY_TIMEOUT",
		},
		{
			name:          "non-positive rate limit",
			env:           map[string]string{"JWT_SECRET": "s", "SERVER_PORT": "", "RATE_LIMIT_PER_MINUTE": "0"},
			errorContains: "RATE_LIMIT_PER_MINUTE must be positive",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.env {
				t.Setenv(k, v)
			}

			cfg, err := Load()

			assert.Error(t, err)
			assert.Contains(t, err.Error(), tt.errorContains)
			assert.Nil(t, cfg)
		})
	}
}

func TestParseOrigins(t *testing.T) {
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, parseOrigins(" https://a.example, ,https://b.example "))
	assert.Equal(t, []string{"*"}, parseOrigins(" , "))
}

func TestAIConfig_APIKeyReadPerCall(t *testing.T) {
	cfg := &AIConfig{APIKeyEnv: "TEST_GATEWAY_KEY"}

	t.Setenv("TEST_GATEWAY_KEY", "")
	assert.False(t, cfg.IsEnabled())

	t.Setenv("TEST_GATEWAY_KEY", "sk-123")
	assert.True(t, cfg.IsEnabled())
	assert.Equal(t, "sk-123", cfg.APIKey())
}

func TestAIConfig_ExtractionLockTTL(t *testing.T) {
	tests := []struct {
		name    string
		timeout string
		want    time.Duration
	}{
		{name: "default timeout", timeout: "", want: 2 * time.Minute},
		{name: "long timeout", timeout: "5m", want: 6*time.Minute + 30*time.Second},
		{name: "short timeout", timeout: "1s", want: 91 * time.Second},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("AI_GATEWAY_TIMEOUT", tt.timeout)

			cfg, err := DefaultAIConfig()

			require.NoError(t, err)
			assert.Equal(t, tt.want, cfg.ExtractionLockTTL())
			assert.Greater(t, cfg.ExtractionLockTTL(), cfg.Timeout)
		})
	}
}
