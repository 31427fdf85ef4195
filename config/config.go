// Package config provides configuration management for the promptgate gateway.
// Configuration is read from the environment at process start and validated
// before anything else runs; an optional YAML file can override server tuning
// and the model preset table.
package config

import (
	stderrors "errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// Config represents the complete gateway configuration. It combines server
// settings, the OpenAI client configuration, CORS and rate limit policy,
// static resource locations, and the immutable model preset table.
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	OpenAI    OpenAIConfig    `yaml:"openai"`
	CORS      CORSConfig      `yaml:"-"`
	RateLimit RateLimitConfig `yaml:"-"`
	Resources ResourceConfig  `yaml:"resources"`

	// Presets is the immutable model preset table, built once at process
	// start. The chat handler always selects DefaultPreset regardless of
	// request content.
	Presets map[string]ModelPreset `yaml:"presets"`

	// Environment is the deployment mode, "development" or "production".
	Environment string `yaml:"-"`
}

// DefaultPreset is the preset name the chat handler selects for every
// request. The preset table defines more entries, but none of them is
// reachable through the request body.
const DefaultPreset = "gpt-5"

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	// Port specifies the HTTP server port (default: 8080)
	Port int `yaml:"port"`

	// ReadTimeout is the maximum duration for reading the entire request,
	// including the body (default: 30s)
	ReadTimeout time.Duration `yaml:"read_timeout"`

	// WriteTimeout is the maximum duration before timing out writes of the
	// response. Completion calls are held open until the upstream returns,
	// so this must comfortably exceed typical model latency (default: 120s).
	WriteTimeout time.Duration `yaml:"write_timeout"`

	// MaxHeaderBytes controls the maximum number of bytes the server will
	// read parsing request headers (default: 1MB)
	MaxHeaderBytes int `yaml:"max_header_bytes"`

	// ShutdownTimeout specifies how long to wait for in-flight requests
	// during graceful shutdown (default: 30s)
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
}

// OpenAIConfig holds the upstream completion service configuration.
type OpenAIConfig struct {
	// APIKey authenticates against the completion API. Required,
	// minimum 20 characters.
	APIKey string `yaml:"-"`

	// BaseURL is the API root (default: https://api.openai.com/v1).
	// Overridable for tests and proxies.
	BaseURL string `yaml:"base_url"`
}

// CORSConfig holds the cross-origin policy. Origin is either the wildcard
// "*" or a comma-separated origin list; AllowedOrigins holds the parsed list.
type CORSConfig struct {
	Wildcard       bool
	AllowedOrigins []string
}

// AllowOrigin reports whether the given Origin header value is admitted.
func (c CORSConfig) AllowOrigin(origin string) bool {
	if c.Wildcard {
		return true
	}
	for _, allowed := range c.AllowedOrigins {
		if allowed == origin {
			return true
		}
	}
	return false
}

// RateLimitConfig bounds requests admitted per client per time window.
type RateLimitConfig struct {
	// Window is the measurement window.
	Window time.Duration

	// MaxRequests is the number of requests admitted per client per window.
	MaxRequests int
}

// ResourceConfig locates the static prompt resources. Both files are
// re-read on every request unless CacheEnabled is set, in which case they
// are held in memory and invalidated by a filesystem watcher.
type ResourceConfig struct {
	// Dir is the directory holding context.json and guardrail.json.
	Dir string `yaml:"dir"`

	// CacheEnabled turns on the watched in-memory cache.
	CacheEnabled bool `yaml:"cache_enabled"`
}

// ModelPreset is a named bundle of model identifier and sampling parameters.
// The table is immutable after process start.
type ModelPreset struct {
	Model           string  `yaml:"model"`
	Temperature     float64 `yaml:"temperature"`
	MaxOutputTokens int     `yaml:"max_output_tokens"`
}

// envSchema is the environment surface of the gateway. Every key is
// validated at startup; failures are aggregated and fatal.
type envSchema struct {
	OpenAIAPIKey       string `env:"OPENAI_API_KEY" validate:"required,min=20"`
	Port               int    `env:"PORT" envDefault:"8080" validate:"gte=1,lte=65535"`
	AppEnv             string `env:"APP_ENV" envDefault:"development" validate:"oneof=development production"`
	CORSOrigin         string `env:"CORS_ORIGIN" envDefault:"*" validate:"required"`
	RateLimitWindowMS  int64  `env:"RATE_LIMIT_WINDOW_MS" envDefault:"60000" validate:"gt=0"`
	RateLimitMax       int    `env:"RATE_LIMIT_MAX" envDefault:"30" validate:"gt=0"`
	DataDir            string `env:"DATA_DIR" envDefault:"data" validate:"required"`
	ResourceCache      bool   `env:"RESOURCE_CACHE" envDefault:"false"`
	OpenAIBaseURL      string `env:"OPENAI_BASE_URL" envDefault:"https://api.openai.com/v1" validate:"url"`
}

// envMessages maps schema fields to startup diagnostics. Messages name the
// environment variable, not the Go field, so the operator can act on them.
var envMessages = map[string]string{
	"OpenAIAPIKey":      "OPENAI_API_KEY must be set and at least 20 characters",
	"Port":              "PORT must be between 1 and 65535",
	"AppEnv":            "APP_ENV must be one of: development, production",
	"CORSOrigin":        "CORS_ORIGIN must be '*' or a comma-separated origin list",
	"RateLimitWindowMS": "RATE_LIMIT_WINDOW_MS must be a positive integer",
	"RateLimitMax":      "RATE_LIMIT_MAX must be a positive integer",
	"DataDir":           "DATA_DIR must not be empty",
	"OpenAIBaseURL":     "OPENAI_BASE_URL must be a valid URL",
}

// FromEnv builds a Config from the process environment. All validation
// failures are aggregated into a single error so the operator sees every
// problem at once; the caller is expected to treat any error as fatal.
func FromEnv() (*Config, error) {
	var schema envSchema
	if err := env.Parse(&schema); err != nil {
		return nil, fmt.Errorf("parse environment: %w", err)
	}

	if err := validator.New().Struct(schema); err != nil {
		var verrs validator.ValidationErrors
		if !stderrors.As(err, &verrs) {
			return nil, fmt.Errorf("validate environment: %w", err)
		}
		msgs := make([]string, 0, len(verrs))
		for _, ve := range verrs {
			if msg, ok := envMessages[ve.StructField()]; ok {
				msgs = append(msgs, msg)
			} else {
				msgs = append(msgs, ve.Error())
			}
		}
		return nil, fmt.Errorf("invalid environment: %s", strings.Join(msgs, "; "))
	}

	cfg := DefaultConfig()
	cfg.Server.Port = schema.Port
	cfg.Environment = schema.AppEnv
	cfg.OpenAI.APIKey = schema.OpenAIAPIKey
	cfg.OpenAI.BaseURL = schema.OpenAIBaseURL
	cfg.CORS = parseCORSOrigin(schema.CORSOrigin)
	cfg.RateLimit = RateLimitConfig{
		Window:      time.Duration(schema.RateLimitWindowMS) * time.Millisecond,
		MaxRequests: schema.RateLimitMax,
	}
	cfg.Resources.Dir = schema.DataDir
	cfg.Resources.CacheEnabled = schema.ResourceCache

	return cfg, nil
}

// parseCORSOrigin interprets the CORS_ORIGIN value: "*" means wildcard,
// anything else is a comma-separated origin list with whitespace trimmed.
func parseCORSOrigin(origin string) CORSConfig {
	if origin == "*" {
		return CORSConfig{Wildcard: true}
	}
	parts := strings.Split(origin, ",")
	origins := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			origins = append(origins, trimmed)
		}
	}
	return CORSConfig{AllowedOrigins: origins}
}

// DefaultConfig returns the baseline configuration. The preset table mirrors
// the deployed gateway: three entries, only the default one reachable.
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Port:            8080,
			ReadTimeout:     30 * time.Second,
			WriteTimeout:    120 * time.Second,
			MaxHeaderBytes:  1 << 20,
			ShutdownTimeout: 30 * time.Second,
		},
		OpenAI: OpenAIConfig{
			BaseURL: "https://api.openai.com/v1",
		},
		CORS: CORSConfig{Wildcard: true},
		RateLimit: RateLimitConfig{
			Window:      time.Minute,
			MaxRequests: 30,
		},
		Resources: ResourceConfig{
			Dir: "data",
		},
		Presets: map[string]ModelPreset{
			"gpt-5": {
				Model:           "gpt-5",
				Temperature:     0.7,
				MaxOutputTokens: 1024,
			},
			"gpt-5-mini": {
				Model:           "gpt-5-mini",
				Temperature:     0.7,
				MaxOutputTokens: 1024,
			},
			"gpt-5-nano": {
				Model:           "gpt-5-nano",
				Temperature:     0.7,
				MaxOutputTokens: 512,
			},
		},
		Environment: "development",
	}
}

// fileOverlay is the subset of Config an optional YAML file may override.
// Environment-sourced values (API key, CORS, rate limits) are deliberately
// excluded; the file only tunes server behavior and the preset table.
type fileOverlay struct {
	Server  *ServerConfig          `yaml:"server"`
	OpenAI  *struct {
		BaseURL string `yaml:"base_url"`
	} `yaml:"openai"`
	Resources *ResourceConfig        `yaml:"resources"`
	Presets   map[string]ModelPreset `yaml:"presets"`
}

// LoadFile applies an optional YAML overlay on top of cfg. Environment
// variable references of the form ${VAR} inside the file are expanded
// before decoding.
func LoadFile(cfg *Config, filename string) error {
	f, err := os.Open(filename)
	if err != nil {
		return fmt.Errorf("open config file: %w", err)
	}
	defer f.Close()

	return loadOverlay(cfg, f)
}

func loadOverlay(cfg *Config, r io.Reader) error {
	data, err := io.ReadAll(r)
	if err != nil {
		return fmt.Errorf("read config: %w", err)
	}

	expanded := os.Expand(string(data), os.Getenv)

	var overlay fileOverlay
	if err := yaml.Unmarshal([]byte(expanded), &overlay); err != nil {
		return fmt.Errorf("decode config: %w", err)
	}

	if overlay.Server != nil {
		applyServerOverlay(&cfg.Server, overlay.Server)
	}
	if overlay.OpenAI != nil && overlay.OpenAI.BaseURL != "" {
		cfg.OpenAI.BaseURL = overlay.OpenAI.BaseURL
	}
	if overlay.Resources != nil {
		if overlay.Resources.Dir != "" {
			cfg.Resources.Dir = overlay.Resources.Dir
		}
		if overlay.Resources.CacheEnabled {
			cfg.Resources.CacheEnabled = true
		}
	}
	for name, preset := range overlay.Presets {
		cfg.Presets[name] = preset
	}

	return cfg.Validate()
}

func applyServerOverlay(dst *ServerConfig, src *ServerConfig) {
	if src.Port != 0 {
		dst.Port = src.Port
	}
	if src.ReadTimeout != 0 {
		dst.ReadTimeout = src.ReadTimeout
	}
	if src.WriteTimeout != 0 {
		dst.WriteTimeout = src.WriteTimeout
	}
	if src.MaxHeaderBytes != 0 {
		dst.MaxHeaderBytes = src.MaxHeaderBytes
	}
	if src.ShutdownTimeout != 0 {
		dst.ShutdownTimeout = src.ShutdownTimeout
	}
}

// Validate checks structural invariants that the env schema cannot express.
func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid port: %d", c.Server.Port)
	}
	if c.Server.ReadTimeout < 0 {
		return fmt.Errorf("negative read timeout: %v", c.Server.ReadTimeout)
	}
	if c.Server.WriteTimeout < 0 {
		return fmt.Errorf("negative write timeout: %v", c.Server.WriteTimeout)
	}
	if c.Server.ShutdownTimeout < 0 {
		return fmt.Errorf("negative shutdown timeout: %v", c.Server.ShutdownTimeout)
	}
	if c.RateLimit.Window <= 0 {
		return fmt.Errorf("non-positive rate limit window: %v", c.RateLimit.Window)
	}
	if c.RateLimit.MaxRequests <= 0 {
		return fmt.Errorf("non-positive rate limit max: %d", c.RateLimit.MaxRequests)
	}
	preset, ok := c.Presets[DefaultPreset]
	if !ok {
		return fmt.Errorf("preset table missing %q", DefaultPreset)
	}
	if preset.Model == "" {
		return fmt.Errorf("preset %q has empty model", DefaultPreset)
	}
	if preset.MaxOutputTokens <= 0 {
		return fmt.Errorf("preset %q has non-positive max_output_tokens", DefaultPreset)
	}
	return nil
}
