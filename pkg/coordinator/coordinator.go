// Package coordinator drives the handoff cycle: it asks the decision backend
// which worker goes next, runs that worker, merges its structured result into
// the Status Record and records every step.
package coordinator

import (
	"time"

	"github.com/google/uuid"

	"handoff/pkg/audit"
	"handoff/pkg/backend"
	"handoff/pkg/logx"
	"handoff/pkg/metrics"
	"handoff/pkg/registry"
	"handoff/pkg/status"
)

// Coordinator owns one Status Record and one Worker Registry. It is not safe
// for concurrent use; drive it from a single goroutine.
type Coordinator struct {
	record   *status.Record
	registry *registry.Registry
	adapter  backend.Adapter
	recorder metrics.Recorder
	sinks    []audit.Sink
	logger   *logx.Logger

	now      func() time.Time
	newRunID func() string
}

// Option configures a Coordinator.
type Option func(*Coordinator)

// WithBackend routes decisions through b. A nil b selects the deterministic fallback.
func WithBackend(b backend.Backend) Option {
	return func(c *Coordinator) {
		c.adapter = backend.New(b)
	}
}

// WithAdapter installs a custom resolution strategy.
func WithAdapter(a backend.Adapter) Option {
	return func(c *Coordinator) {
		c.adapter = a
	}
}

// WithSeed replaces the initial Status Record values. The seed is expected to be validated.
func WithSeed(seed status.Seed) Option {
	return func(c *Coordinator) {
		c.record = status.New(seed)
	}
}

// WithLogger sets the logger.
func WithLogger(l *logx.Logger) Option {
	return func(c *Coordinator) {
		c.logger = l
	}
}

// WithRecorder sets the loop metrics recorder.
func WithRecorder(r metrics.Recorder) Option {
	return func(c *Coordinator) {
		c.recorder = r
	}
}

// WithSinks adds audit sinks. Entries are forwarded as they are appended.
func WithSinks(sinks ...audit.Sink) Option {
	return func(c *Coordinator) {
		c.sinks = append(c.sinks, sinks...)
	}
}

// New creates a coordinator with a fresh Status Record, an empty registry and
// the fallback policy unless options say otherwise.
func New(opts ...Option) *Coordinator {
	c := &Coordinator{
		record:   status.New(status.Seed{}),
		registry: registry.New(),
		adapter:  backend.Fallback{},
		recorder: metrics.Nop(),
		logger:   logx.NewLogger("coordinator"),
		now:      time.Now,
		newRunID: uuid.NewString,
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.adapter == nil {
		c.adapter = backend.Fallback{}
	}
	if c.recorder == nil {
		c.recorder = metrics.Nop()
	}
	return c
}

// Register adds or replaces a worker.
func (c *Coordinator) Register(name string, w registry.Worker) {
	c.registry.Register(name, w)
	c.logger.Debug("registered worker %s", name)
}

// Status returns a snapshot of the Status Record.
func (c *Coordinator) Status() status.Snapshot {
	return c.record.Snapshot()
}

// AvailableAgents lists registered worker names in sorted order.
func (c *Coordinator) AvailableAgents() []string {
	return c.registry.Names()
}
