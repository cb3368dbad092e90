package main

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"

	"handoff/pkg/agent"
	agentmetrics "handoff/pkg/agent/middleware/metrics"
	"handoff/pkg/audit"
	"handoff/pkg/backend"
	"handoff/pkg/config"
	"handoff/pkg/coordinator"
	"handoff/pkg/eventlog"
	"handoff/pkg/logx"
	"handoff/pkg/metrics"
	"handoff/pkg/persistence"
	"handoff/pkg/workers"
)

// session is a configured coordinator plus everything that must be closed after it.
type session struct {
	cfg      *config.Config
	coord    *coordinator.Coordinator
	registry *prometheus.Registry // nil unless metrics are enabled
	closers  []func() error
	logger   *logx.Logger
}

// newSession wires the backend, workers, metrics and audit sinks described by cfg.
func newSession(cfg *config.Config) (*session, error) {
	s := &session{cfg: cfg, logger: logx.NewLogger("smc")}

	loopRecorder := metrics.Nop()
	var llmRecorder agentmetrics.Recorder = agentmetrics.Nop()
	if cfg.Metrics.Enabled || cfg.Metrics.Dump {
		s.registry = prometheus.NewRegistry()
		loopRecorder = metrics.NewPrometheusRecorder(s.registry)
		llmRecorder = agentmetrics.NewPrometheusRecorder(s.registry)
	}

	b, err := buildBackend(&cfg.Backend, llmRecorder)
	if err != nil {
		return nil, err
	}

	sinks, err := s.openSinks(&cfg.Audit)
	if err != nil {
		s.Close()
		return nil, err
	}

	s.coord = coordinator.New(
		coordinator.WithBackend(b),
		coordinator.WithSeed(cfg.Seed),
		coordinator.WithRecorder(loopRecorder),
		coordinator.WithSinks(sinks...),
	)
	if err := workers.RegisterAll(s.coord, cfg.Workers...); err != nil {
		s.Close()
		return nil, fmt.Errorf("failed to register workers: %w", err)
	}
	return s, nil
}

// buildBackend returns nil for the fallback policy.
func buildBackend(cfg *config.BackendConfig, recorder agentmetrics.Recorder) (backend.Backend, error) {
	switch cfg.Provider {
	case config.ProviderFallback:
		return nil, nil
	case config.ProviderScript:
		return backend.NewScripted(cfg.Script...), nil
	default:
		factory := agent.NewLLMClientFactory(recorder, logx.NewLogger("llm"))
		client, err := factory.CreateClient(cfg)
		if err != nil {
			return nil, fmt.Errorf("failed to create %s backend: %w", cfg.Provider, err)
		}
		return backend.NewLLM(client), nil
	}
}

func (s *session) openSinks(cfg *config.AuditConfig) ([]audit.Sink, error) {
	var sinks []audit.Sink
	if cfg.JSONLDir != "" {
		w, err := eventlog.NewWriter(cfg.JSONLDir)
		if err != nil {
			return nil, fmt.Errorf("failed to open audit log: %w", err)
		}
		sinks = append(sinks, w)
		s.closers = append(s.closers, w.Close)
	}
	if cfg.SQLitePath != "" {
		store, err := persistence.Open(cfg.SQLitePath)
		if err != nil {
			return nil, fmt.Errorf("failed to open audit store: %w", err)
		}
		sinks = append(sinks, store)
		s.closers = append(s.closers, store.Close)
	}
	return sinks, nil
}

// Close releases the audit sinks in reverse order.
func (s *session) Close() {
	for i := len(s.closers) - 1; i >= 0; i-- {
		if err := s.closers[i](); err != nil {
			s.logger.Warn("close failed: %v", err)
		}
	}
	s.closers = nil
}
