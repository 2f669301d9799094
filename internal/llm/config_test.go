package llm

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearProviderEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{
		"ANTHROPIC_API_KEY", "OPENAI_API_KEY", "GEMINI_API_KEY", "OPENROUTER_API_KEY",
		"HIRESIGHT_LLM_PROVIDER", "HIRESIGHT_ANTHROPIC_API_KEY", "HIRESIGHT_OPENAI_API_KEY",
		"HIRESIGHT_GEMINI_API_KEY", "HIRESIGHT_OPENROUTER_API_KEY", "HIRESIGHT_OPENAI_BASE_URL",
	} {
		t.Setenv(k, "")
	}
}

func TestConfigFromEnvOverrides(t *testing.T) {
	clearProviderEnv(t)
	t.Setenv("HIRESIGHT_LLM_PROVIDER", "openai")
	t.Setenv("HIRESIGHT_OPENAI_API_KEY", "sk-test")
	t.Setenv("HIRESIGHT_OPENAI_MODEL", "gpt-test")

	cfg := ConfigFromEnv()
	assert.Equal(t, "openai", cfg.Provider)
	assert.Equal(t, "sk-test", cfg.OpenAI.APIKey)
	assert.Equal(t, "gpt-test", cfg.OpenAI.Model)
	// Untouched sections keep their defaults.
	assert.Equal(t, "claude-haiku", cfg.Anthropic.Model)
	require.NoError(t, cfg.Validate())
}

func TestDiscoverConfigPriority(t *testing.T) {
	clearProviderEnv(t)

	_, ok := DiscoverConfig()
	assert.False(t, ok, "no keys set")

	t.Setenv("GEMINI_API_KEY", "g-key")
	cfg, ok := DiscoverConfig()
	require.True(t, ok)
	assert.Equal(t, "gemini", cfg.Provider)

	// Anthropic outranks Gemini when both are present.
	t.Setenv("ANTHROPIC_API_KEY", "a-key")
	cfg, ok = DiscoverConfig()
	require.True(t, ok)
	assert.Equal(t, "anthropic", cfg.Provider)
	assert.Equal(t, "a-key", cfg.Anthropic.APIKey)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"anthropic without key", func(c *Config) { c.Provider = "anthropic" }, "HIRESIGHT_ANTHROPIC_API_KEY"},
		{"openai without key", func(c *Config) { c.Provider = "openai" }, "HIRESIGHT_OPENAI_API_KEY"},
		{"unknown provider", func(c *Config) { c.Provider = "psychic" }, "unknown model provider"},
		{"mock needs nothing", func(c *Config) { c.Provider = "mock" }, ""},
		{"gemini with key", func(c *Config) { c.Provider = "gemini"; c.Gemini.APIKey = "k" }, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
			} else {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
			}
		})
	}
}
