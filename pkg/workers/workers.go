// Package workers provides the reference workers of the handoff cycle. Their
// build and test steps are simulated through injectable runners.
package workers

import (
	"fmt"

	"handoff/pkg/proto"
	"handoff/pkg/registry"
)

// Result values reported under the "result" key.
const (
	ResultSuccess = "SUCCESS"
	ResultFailure = "FAILURE"
	ResultPartial = "PARTIAL"
)

// Registrar is anything workers can be registered with, such as a coordinator or a registry.
type Registrar interface {
	Register(name string, w registry.Worker)
}

// ByName returns a default-configured reference worker.
func ByName(name string) (registry.Worker, error) {
	switch name {
	case proto.AgentReasoning:
		return &Reasoning{}, nil
	case proto.AgentTester:
		return &Tester{}, nil
	case proto.AgentBuilder:
		return &Builder{}, nil
	case proto.AgentFinalizer:
		return &Finalizer{}, nil
	default:
		return nil, fmt.Errorf("no reference worker named %q", name)
	}
}

// RegisterAll registers the named reference workers with r.
func RegisterAll(r Registrar, names ...string) error {
	for _, name := range names {
		w, err := ByName(name)
		if err != nil {
			return err
		}
		r.Register(name, w)
	}
	return nil
}
