// Package config loads the coordinator's YAML configuration, applies
// environment overrides and defaults, and validates the result.
package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"handoff/pkg/agent/middleware/resilience/retry"
	"handoff/pkg/proto"
	"handoff/pkg/status"
)

// Decision backend providers.
const (
	ProviderFallback  = "fallback"
	ProviderScript    = "script"
	ProviderAnthropic = "anthropic"
	ProviderOpenAI    = "openai"
	ProviderGoogle    = "google"
	ProviderOllama    = "ollama"
)

// Environment variables.
const (
	EnvAnthropicAPIKey = "ANTHROPIC_API_KEY"
	EnvOpenAIAPIKey    = "OPENAI_API_KEY"
	EnvGoogleAPIKey    = "GOOGLE_GENAI_API_KEY"
	EnvOllamaHost      = "OLLAMA_HOST"

	EnvProvider      = "SMC_PROVIDER"
	EnvModel         = "SMC_MODEL"
	EnvMaxIterations = "SMC_MAX_ITERATIONS"
)

// Defaults.
const (
	DefaultConfigFile    = "smc.yaml"
	DefaultMaxIterations = 10
	DefaultTimeout       = 60 * time.Second
	DefaultOllamaHost    = "http://localhost:11434"
)

// Config is the full configuration of one coordinator process.
type Config struct {
	Backend BackendConfig `yaml:"backend"`
	Loop    LoopConfig    `yaml:"loop"`
	Seed    status.Seed   `yaml:"seed"`
	Workers []string      `yaml:"workers"`
	Audit   AuditConfig   `yaml:"audit"`
	Metrics MetricsConfig `yaml:"metrics"`
}

// BackendConfig selects and tunes the decision backend.
type BackendConfig struct {
	Provider    string        `yaml:"provider"`
	Model       string        `yaml:"model"`
	Host        string        `yaml:"host"`        // ollama only
	APIKeyEnv   string        `yaml:"api_key_env"` // defaulted per provider
	Timeout     time.Duration `yaml:"timeout"`
	MaxAttempts int           `yaml:"max_attempts"`
	Script      []string      `yaml:"script"` // provider=script
}

// LoopConfig bounds the coordination loop.
type LoopConfig struct {
	MaxIterations int `yaml:"max_iterations"`
}

// AuditConfig enables audit export. Empty values disable the sink.
type AuditConfig struct {
	JSONLDir   string `yaml:"jsonl_dir"`
	SQLitePath string `yaml:"sqlite_path"`
}

// MetricsConfig controls Prometheus collection.
type MetricsConfig struct {
	Enabled bool `yaml:"enabled"`
	Dump    bool `yaml:"dump"` // print text exposition after a run
}

// Default returns a configuration that runs the four example workers
// against the deterministic fallback policy.
func Default() *Config {
	cfg := base()
	applyDefaults(cfg)
	return cfg
}

func base() *Config {
	return &Config{
		Workers: []string{proto.AgentReasoning, proto.AgentTester, proto.AgentBuilder, proto.AgentFinalizer},
	}
}

// ProviderPattern maps a model-name prefix to a provider.
type ProviderPattern struct {
	Prefix   string
	Provider string
}

// ProviderPatterns infers a provider when only a model is configured.
//
//nolint:gochecknoglobals // lookup table
var ProviderPatterns = []ProviderPattern{
	{"claude", ProviderAnthropic},
	{"gpt", ProviderOpenAI},
	{"o1", ProviderOpenAI},
	{"o3", ProviderOpenAI},
	{"o4", ProviderOpenAI},
	{"gemini", ProviderGoogle},
	{"phi", ProviderOllama},
	{"llama", ProviderOllama},
	{"qwen", ProviderOllama},
	{"mistral", ProviderOllama},
	{"gemma", ProviderOllama},
	{"smollm", ProviderOllama},
	{"ollama:", ProviderOllama}, // Explicit prefix like "ollama:phi4"
}

// GetModelProvider infers the provider for a model name.
func GetModelProvider(modelName string) (string, error) {
	for i := range ProviderPatterns {
		if strings.HasPrefix(modelName, ProviderPatterns[i].Prefix) {
			return ProviderPatterns[i].Provider, nil
		}
	}
	return "", fmt.Errorf("cannot infer provider for model %q", modelName)
}

// IsModelProvider reports whether provider is backed by a language model.
func IsModelProvider(provider string) bool {
	switch provider {
	case ProviderAnthropic, ProviderOpenAI, ProviderGoogle, ProviderOllama:
		return true
	default:
		return false
	}
}

// DefaultAPIKeyEnv returns the conventional API key variable for a provider, "" when none is needed.
func DefaultAPIKeyEnv(provider string) string {
	switch provider {
	case ProviderAnthropic:
		return EnvAnthropicAPIKey
	case ProviderOpenAI:
		return EnvOpenAIAPIKey
	case ProviderGoogle:
		return EnvGoogleAPIKey
	default:
		return ""
	}
}

// APIKey reads the key named by APIKeyEnv.
func (b *BackendConfig) APIKey() (string, error) {
	if b.APIKeyEnv == "" {
		return "", nil
	}
	key := os.Getenv(b.APIKeyEnv)
	if key == "" {
		return "", fmt.Errorf("API key not found: %s is not set", b.APIKeyEnv)
	}
	return key, nil
}

// RetryConfig derives the retry policy for model-backed providers.
func (b *BackendConfig) RetryConfig() retry.Config {
	cfg := retry.DefaultConfig
	cfg.MaxAttempts = b.MaxAttempts
	return cfg
}
