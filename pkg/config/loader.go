package config

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"regexp"
	"strconv"

	"gopkg.in/yaml.v3"

	"handoff/pkg/logx"
)

var envVarRegex = regexp.MustCompile(`\$\{([^}]+)\}`)

// Load reads a YAML configuration file, substituting ${VAR} placeholders from
// the environment, then applies SMC_* overrides, defaults and validation.
// An empty path yields Default() with overrides applied.
func Load(path string) (*Config, error) {
	cfg := base()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := decode(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
		}
	}

	if err := applyEnvOverrides(cfg); err != nil {
		return nil, err
	}
	applyDefaults(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	logx.Debug(logx.WithComponent(context.Background(), "config"), "config", "loaded config: provider=%s model=%s max_iterations=%d",
		cfg.Backend.Provider, cfg.Backend.Model, cfg.Loop.MaxIterations)
	return cfg, nil
}

func decode(data []byte, cfg *Config) error {
	expanded := envVarRegex.ReplaceAllStringFunc(string(data), func(match string) string {
		envVar := match[2 : len(match)-1] // Remove ${ and }
		if value := os.Getenv(envVar); value != "" {
			return value
		}
		return match // Keep the placeholder if unset
	})

	dec := yaml.NewDecoder(bytes.NewReader([]byte(expanded)))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return err //nolint:wrapcheck // wrapped by caller
	}
	return nil
}

func applyEnvOverrides(cfg *Config) error {
	if v := os.Getenv(EnvProvider); v != "" {
		cfg.Backend.Provider = v
	}
	if v := os.Getenv(EnvModel); v != "" {
		cfg.Backend.Model = v
	}
	if v := os.Getenv(EnvMaxIterations); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid %s %q: %w", EnvMaxIterations, v, err)
		}
		cfg.Loop.MaxIterations = n
	}
	return nil
}

// applyDefaults fills values left empty by the file and environment.
func applyDefaults(cfg *Config) {
	if cfg.Backend.Provider == "" {
		cfg.Backend.Provider = ProviderFallback
		if cfg.Backend.Model != "" {
			if p, err := GetModelProvider(cfg.Backend.Model); err == nil {
				cfg.Backend.Provider = p
			}
		}
	}
	if cfg.Backend.APIKeyEnv == "" {
		cfg.Backend.APIKeyEnv = DefaultAPIKeyEnv(cfg.Backend.Provider)
	}
	if cfg.Backend.Provider == ProviderOllama && cfg.Backend.Host == "" {
		cfg.Backend.Host = os.Getenv(EnvOllamaHost)
		if cfg.Backend.Host == "" {
			cfg.Backend.Host = DefaultOllamaHost
		}
	}
	if cfg.Backend.Timeout == 0 {
		cfg.Backend.Timeout = DefaultTimeout
	}
	if cfg.Backend.MaxAttempts == 0 {
		cfg.Backend.MaxAttempts = 3
	}
	if cfg.Loop.MaxIterations == 0 {
		cfg.Loop.MaxIterations = DefaultMaxIterations
	}
}

// Validate checks provider names, bounds and the seed.
func (c *Config) Validate() error {
	switch c.Backend.Provider {
	case ProviderFallback, ProviderScript:
	case ProviderAnthropic, ProviderOpenAI, ProviderGoogle, ProviderOllama:
	default:
		return fmt.Errorf("unknown backend provider %q", c.Backend.Provider)
	}
	if c.Backend.Provider == ProviderScript && len(c.Backend.Script) == 0 {
		return fmt.Errorf("backend provider %q needs at least one scripted reply", ProviderScript)
	}
	if c.Backend.Timeout < 0 {
		return fmt.Errorf("backend timeout must not be negative")
	}
	if c.Backend.MaxAttempts < 1 {
		return fmt.Errorf("backend max_attempts must be at least 1")
	}
	if c.Loop.MaxIterations < 1 {
		return fmt.Errorf("loop max_iterations must be at least 1, got %d", c.Loop.MaxIterations)
	}
	seen := make(map[string]bool, len(c.Workers))
	for _, w := range c.Workers {
		if w == "" {
			return fmt.Errorf("worker names must not be empty")
		}
		if seen[w] {
			return fmt.Errorf("worker %q listed twice", w)
		}
		seen[w] = true
	}
	if err := c.Seed.Validate(); err != nil {
		return fmt.Errorf("invalid seed: %w", err)
	}
	return nil
}
