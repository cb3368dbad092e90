// Package agent builds decision-backend LLM clients with their middleware chain.
package agent

import (
	"fmt"
	"net/http"

	"handoff/pkg/agent/internal/llmimpl/anthropic"
	"handoff/pkg/agent/internal/llmimpl/google"
	"handoff/pkg/agent/internal/llmimpl/ollama"
	"handoff/pkg/agent/internal/llmimpl/openaiofficial"
	"handoff/pkg/agent/llm"
	"handoff/pkg/agent/middleware/metrics"
	"handoff/pkg/agent/middleware/resilience/retry"
	"handoff/pkg/agent/middleware/resilience/timeout"
	"handoff/pkg/config"
	"handoff/pkg/logx"
)

// LLMClientFactory creates LLM clients with properly configured middleware chains.
type LLMClientFactory struct {
	metricsRecorder metrics.Recorder
	logger          *logx.Logger
	httpClient      *http.Client // used by the ollama client; nil means http.DefaultClient
}

// NewLLMClientFactory creates a factory. A nil recorder disables request metrics.
func NewLLMClientFactory(recorder metrics.Recorder, logger *logx.Logger) *LLMClientFactory {
	if recorder == nil {
		recorder = metrics.Nop()
	}
	if logger == nil {
		logger = logx.NewLogger("llm")
	}
	return &LLMClientFactory{metricsRecorder: recorder, logger: logger}
}

// WithHTTPClient sets the HTTP client handed to providers that accept one.
func (f *LLMClientFactory) WithHTTPClient(c *http.Client) *LLMClientFactory {
	f.httpClient = c
	return f
}

// CreateClient creates the raw provider client for cfg and wraps it:
//
//	Metrics -> Retry -> Timeout -> RawClient
func (f *LLMClientFactory) CreateClient(cfg *config.BackendConfig) (llm.LLMClient, error) {
	rawClient, err := f.rawClient(cfg)
	if err != nil {
		return nil, err
	}

	retryPolicy := retry.NewPolicy(cfg.RetryConfig(), nil)

	client := llm.Chain(rawClient,
		metrics.Middleware(f.metricsRecorder, nil, f.logger),
		retry.Middleware(retryPolicy, f.logger),
		timeout.Middleware(cfg.Timeout),
	)

	f.logger.Info("decision backend: provider=%s model=%s", cfg.Provider, client.GetModelName())
	return client, nil
}

func (f *LLMClientFactory) rawClient(cfg *config.BackendConfig) (llm.LLMClient, error) {
	if !config.IsModelProvider(cfg.Provider) {
		return nil, fmt.Errorf("provider %q is not backed by a language model", cfg.Provider)
	}

	apiKey, err := cfg.APIKey()
	if err != nil {
		return nil, fmt.Errorf("failed to get API key for provider %s: %w", cfg.Provider, err)
	}

	switch cfg.Provider {
	case config.ProviderAnthropic:
		return anthropic.NewClaudeClientWithModel(apiKey, cfg.Model), nil
	case config.ProviderOpenAI:
		return openaiofficial.NewOfficialClientWithModel(apiKey, cfg.Model), nil
	case config.ProviderGoogle:
		return google.NewGeminiClientWithModel(apiKey, cfg.Model), nil
	case config.ProviderOllama:
		return ollama.NewOllamaClientWithModel(cfg.Host, cfg.Model, f.httpClient), nil
	default:
		return nil, fmt.Errorf("unsupported provider: %s", cfg.Provider)
	}
}
