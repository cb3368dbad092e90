// Package registry maps worker names to the capabilities the coordinator dispatches.
package registry

import (
	"context"
	"slices"
	"sort"

	"handoff/pkg/status"
)

// Worker is an opaque capability: it reads a status snapshot and returns a structured result.
type Worker interface {
	Execute(ctx context.Context, st status.Snapshot) (status.Result, error)
}

// WorkerFunc adapts a plain function to Worker.
type WorkerFunc func(ctx context.Context, st status.Snapshot) (status.Result, error)

func (f WorkerFunc) Execute(ctx context.Context, st status.Snapshot) (status.Result, error) {
	return f(ctx, st)
}

// Registry is owned by a single coordinator. The mapping must not change during a run.
type Registry struct {
	workers map[string]Worker
}

func New() *Registry {
	return &Registry{workers: make(map[string]Worker)}
}

// Register binds name to w, replacing any earlier registration.
func (r *Registry) Register(name string, w Worker) {
	r.workers[name] = w
}

// Lookup returns the worker bound to name.
func (r *Registry) Lookup(name string) (Worker, bool) {
	w, ok := r.workers[name]
	return w, ok
}

// Names returns the registered names, sorted.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.workers))
	for name := range r.workers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Has reports whether any of the given names is registered.
func (r *Registry) Has(names ...string) bool {
	return slices.ContainsFunc(names, func(n string) bool {
		_, ok := r.workers[n]
		return ok
	})
}

func (r *Registry) Len() int {
	return len(r.workers)
}
