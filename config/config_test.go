package config

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testAPIKey = "sk-test-0123456789abcdef"

func setBaseEnv(t *testing.T) {
	t.Helper()
	t.Setenv("OPENAI_API_KEY", testAPIKey)
	t.Setenv("PORT", "")
	t.Setenv("APP_ENV", "")
	t.Setenv("CORS_ORIGIN", "")
	t.Setenv("RATE_LIMIT_WINDOW_MS", "")
	t.Setenv("RATE_LIMIT_MAX", "")
	t.Setenv("DATA_DIR", "")
	t.Setenv("RESOURCE_CACHE", "")
	t.Setenv("OPENAI_BASE_URL", "")
}

func TestFromEnvDefaults(t *testing.T) {
	setBaseEnv(t)

	cfg, err := FromEnv()
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "development", cfg.Environment)
	assert.Equal(t, testAPIKey, cfg.OpenAI.APIKey)
	assert.Equal(t, "https://api.openai.com/v1", cfg.OpenAI.BaseURL)
	assert.True(t, cfg.CORS.Wildcard)
	assert.Equal(t, time.Minute, cfg.RateLimit.Window)
	assert.Equal(t, 30, cfg.RateLimit.MaxRequests)
	assert.Equal(t, "data", cfg.Resources.Dir)
	assert.False(t, cfg.Resources.CacheEnabled)
	require.NoError(t, cfg.Validate())
}

func TestFromEnvOverrides(t *testing.T) {
	setBaseEnv(t)
	t.Setenv("PORT", "9090")
	t.Setenv("APP_ENV", "production")
	t.Setenv("CORS_ORIGIN", "https://a.example.com, https://b.example.com")
	t.Setenv("RATE_LIMIT_WINDOW_MS", "5000")
	t.Setenv("RATE_LIMIT_MAX", "5")
	t.Setenv("DATA_DIR", "/srv/promptgate/data")
	t.Setenv("RESOURCE_CACHE", "true")

	cfg, err := FromEnv()
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, "production", cfg.Environment)
	assert.False(t, cfg.CORS.Wildcard)
	assert.Equal(t, []string{"https://a.example.com", "https://b.example.com"}, cfg.CORS.AllowedOrigins)
	assert.Equal(t, 5*time.Second, cfg.RateLimit.Window)
	assert.Equal(t, 5, cfg.RateLimit.MaxRequests)
	assert.Equal(t, "/srv/promptgate/data", cfg.Resources.Dir)
	assert.True(t, cfg.Resources.CacheEnabled)
}

func TestFromEnvMissingAPIKey(t *testing.T) {
	setBaseEnv(t)
	t.Setenv("OPENAI_API_KEY", "")

	_, err := FromEnv()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "OPENAI_API_KEY")
}

func TestFromEnvShortAPIKey(t *testing.T) {
	setBaseEnv(t)
	t.Setenv("OPENAI_API_KEY", "too-short")

	_, err := FromEnv()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "OPENAI_API_KEY")
}

func TestFromEnvAggregatesViolations(t *testing.T) {
	setBaseEnv(t)
	t.Setenv("OPENAI_API_KEY", "short")
	t.Setenv("PORT", "70000")
	t.Setenv("APP_ENV", "staging")

	_, err := FromEnv()
	require.Error(t, err)

	msg := err.Error()
	assert.Contains(t, msg, "OPENAI_API_KEY")
	assert.Contains(t, msg, "PORT")
	assert.Contains(t, msg, "APP_ENV")
}

func TestParseCORSOrigin(t *testing.T) {
	tests := []struct {
		name     string
		origin   string
		wildcard bool
		origins  []string
	}{
		{
			name:     "wildcard",
			origin:   "*",
			wildcard: true,
		},
		{
			name:    "single origin",
			origin:  "https://app.example.com",
			origins: []string{"https://app.example.com"},
		},
		{
			name:    "list with whitespace",
			origin:  " https://a.example.com ,https://b.example.com,",
			origins: []string{"https://a.example.com", "https://b.example.com"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cors := parseCORSOrigin(tt.origin)
			assert.Equal(t, tt.wildcard, cors.Wildcard)
			assert.Equal(t, tt.origins, cors.AllowedOrigins)
		})
	}
}

func TestCORSAllowOrigin(t *testing.T) {
	cors := CORSConfig{AllowedOrigins: []string{"https://a.example.com"}}
	assert.True(t, cors.AllowOrigin("https://a.example.com"))
	assert.False(t, cors.AllowOrigin("https://b.example.com"))

	wildcard := CORSConfig{Wildcard: true}
	assert.True(t, wildcard.AllowOrigin("https://anything.example.com"))
}

func TestDefaultPresets(t *testing.T) {
	cfg := DefaultConfig()

	require.Contains(t, cfg.Presets, DefaultPreset)
	preset := cfg.Presets[DefaultPreset]
	assert.Equal(t, "gpt-5", preset.Model)
	assert.Greater(t, preset.MaxOutputTokens, 0)

	// The table defines more models than the handler ever selects.
	assert.Contains(t, cfg.Presets, "gpt-5-mini")
	assert.Contains(t, cfg.Presets, "gpt-5-nano")
}

func TestLoadOverlay(t *testing.T) {
	t.Setenv("PROMPTGATE_TEST_TOKENS", "2048")

	cfg := DefaultConfig()
	overlay := `
server:
  port: 9999
  read_timeout: 10s
presets:
  gpt-5:
    model: gpt-5
    temperature: 0.2
    max_output_tokens: ${PROMPTGATE_TEST_TOKENS}
`
	require.NoError(t, loadOverlay(cfg, strings.NewReader(overlay)))

	assert.Equal(t, 9999, cfg.Server.Port)
	assert.Equal(t, 10*time.Second, cfg.Server.ReadTimeout)
	assert.Equal(t, 0.2, cfg.Presets["gpt-5"].Temperature)
	assert.Equal(t, 2048, cfg.Presets["gpt-5"].MaxOutputTokens)
	// Untouched settings keep their defaults.
	assert.Equal(t, 120*time.Second, cfg.Server.WriteTimeout)
}

func TestLoadOverlayRejectsBrokenPresets(t *testing.T) {
	cfg := DefaultConfig()
	overlay := `
presets:
  gpt-5:
    model: ""
`
	err := loadOverlay(cfg, strings.NewReader(overlay))
	require.Error(t, err)
}

func TestConfigValidate(t *testing.T) {
	cfg := DefaultConfig()
	require.NoError(t, cfg.Validate())

	cfg.Server.Port = 0
	assert.Error(t, cfg.Validate())

	cfg = DefaultConfig()
	delete(cfg.Presets, DefaultPreset)
	assert.Error(t, cfg.Validate())

	cfg = DefaultConfig()
	cfg.RateLimit.MaxRequests = 0
	assert.Error(t, cfg.Validate())
}
