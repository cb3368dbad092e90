package coordinator

import (
	"context"
	"fmt"

	"handoff/pkg/backend"
	"handoff/pkg/decode"
	"handoff/pkg/metrics"
	"handoff/pkg/prompt"
	"handoff/pkg/proto"
)

// Route asks the backend which worker should run next given the current record.
func (c *Coordinator) Route(ctx context.Context) (proto.RoutingDecision, error) {
	st := c.record.Snapshot()
	p := prompt.Routing(st, c.registry.Names())

	d, err := ask(ctx, c, p, &backend.Request{Kind: p.Task, Status: st}, decode.Routing)
	if err != nil {
		return proto.RoutingDecision{}, err
	}
	c.logger.Info("routing: next=%s (%s)", d.NextAgent, d.Rationale)
	return d, nil
}

// Triage asks the backend how to handle a list of errors.
func (c *Coordinator) Triage(ctx context.Context, errs []string) (proto.TriageDecision, error) {
	p := prompt.Triage(errs)
	req := &backend.Request{Kind: p.Task, Status: c.record.Snapshot(), Errors: append([]string(nil), errs...)}

	d, err := ask(ctx, c, p, req, decode.Triage)
	if err != nil {
		return proto.TriageDecision{}, err
	}
	c.logger.Info("triage: %d errors -> %s (%s)", len(errs), d.Action, d.ContextFocus)
	return d, nil
}

// Decide asks the backend whether the current success rates justify a commit.
func (c *Coordinator) Decide(ctx context.Context) (proto.FinalDecision, error) {
	st := c.record.Snapshot()
	p := prompt.Final(st.BuildSuccessRate, st.TestSuccessRate)

	d, err := ask(ctx, c, p, &backend.Request{Kind: p.Task, Status: st}, decode.Final)
	if err != nil {
		return proto.FinalDecision{}, err
	}
	c.logger.Info("final decision: commit=%t next=%s (%s)", d.CommitRequired, d.NextAgent, d.Rationale)
	return d, nil
}

// ask runs one encode -> resolve -> decode round trip and records its outcome.
func ask[T any](ctx context.Context, c *Coordinator, p prompt.Prompt, req *backend.Request,
	parse func(string) (T, error),
) (T, error) {
	start := c.now()
	d, err := roundTrip(ctx, c, p, req, parse)

	outcome := metrics.OutcomeOK
	if err != nil {
		outcome = metrics.OutcomeError
	}
	c.recorder.ObserveDecision(p.Task, outcome, c.now().Sub(start))
	return d, err
}

func roundTrip[T any](ctx context.Context, c *Coordinator, p prompt.Prompt, req *backend.Request,
	parse func(string) (T, error),
) (T, error) {
	var zero T

	encoded, err := p.Encode()
	if err != nil {
		return zero, fmt.Errorf("encode %s prompt: %w", p.Task, err)
	}
	req.Prompt = encoded

	text, err := c.adapter.Resolve(ctx, req)
	if err != nil {
		return zero, fmt.Errorf("resolve %s: %w", p.Task, err)
	}
	c.logger.Debug("%s reply: %s", p.Task, text)

	d, err := parse(text)
	if err != nil {
		return zero, fmt.Errorf("decode %s reply: %w", p.Task, err)
	}
	return d, nil
}
