// Package decode parses backend responses into decision values.
// Decoding is strict: every required key must be present, non-null and of the exact JSON type.
package decode

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"

	"handoff/pkg/prompt"
	"handoff/pkg/proto"
)

// ErrDecode is matched by every *DecodeError.
var ErrDecode = errors.New("decode error")

// DecodeError names the decision kind and, when known, the offending field.
type DecodeError struct {
	Kind   string // task name of the prompt the response answers
	Field  string // empty when the payload itself is malformed
	Reason string
	Err    error
}

func (e *DecodeError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("decode %s response: %s", e.Kind, e.Reason)
	}
	return fmt.Sprintf("decode %s response: field %q %s", e.Kind, e.Field, e.Reason)
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}

func (e *DecodeError) Is(target error) bool {
	return target == ErrDecode
}

// Routing parses a state_routing response.
func Routing(text string) (proto.RoutingDecision, error) {
	obj, err := object(prompt.TaskStateRouting, text)
	if err != nil {
		return proto.RoutingDecision{}, err
	}
	next, err := obj.str("next_agent")
	if err != nil {
		return proto.RoutingDecision{}, err
	}
	rationale, err := obj.str("rationale")
	if err != nil {
		return proto.RoutingDecision{}, err
	}
	return proto.RoutingDecision{NextAgent: next, Rationale: rationale}, nil
}

// Triage parses a fix_triage response. The action must be one of the four triage actions.
func Triage(text string) (proto.TriageDecision, error) {
	obj, err := object(prompt.TaskFixTriage, text)
	if err != nil {
		return proto.TriageDecision{}, err
	}
	raw, err := obj.str("action")
	if err != nil {
		return proto.TriageDecision{}, err
	}
	action, err := proto.ParseTriageAction(raw)
	if err != nil {
		return proto.TriageDecision{}, &DecodeError{Kind: obj.kind, Field: "action", Reason: "is not a triage action", Err: err}
	}
	focus, err := obj.str("context_focus")
	if err != nil {
		return proto.TriageDecision{}, err
	}
	return proto.TriageDecision{Action: action, ContextFocus: focus}, nil
}

// Final parses a final_decision response. commit_required must be a JSON boolean.
func Final(text string) (proto.FinalDecision, error) {
	obj, err := object(prompt.TaskFinalDecision, text)
	if err != nil {
		return proto.FinalDecision{}, err
	}
	commit, err := obj.boolean("commit_required")
	if err != nil {
		return proto.FinalDecision{}, err
	}
	next, err := obj.str("next_agent")
	if err != nil {
		return proto.FinalDecision{}, err
	}
	rationale, err := obj.str("rationale")
	if err != nil {
		return proto.FinalDecision{}, err
	}
	return proto.FinalDecision{CommitRequired: commit, NextAgent: next, Rationale: rationale}, nil
}

type payload struct {
	kind   string
	fields map[string]json.RawMessage
}

func object(kind, text string) (*payload, error) {
	trimmed := bytes.TrimSpace([]byte(text))
	if len(trimmed) == 0 {
		return nil, &DecodeError{Kind: kind, Reason: "empty response"}
	}
	if trimmed[0] != '{' {
		return nil, &DecodeError{Kind: kind, Reason: "payload is not a JSON object"}
	}
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(trimmed, &fields); err != nil {
		return nil, &DecodeError{Kind: kind, Reason: "invalid JSON", Err: err}
	}
	return &payload{kind: kind, fields: fields}, nil
}

func (p *payload) raw(field string) (json.RawMessage, error) {
	raw, ok := p.fields[field]
	if !ok {
		return nil, &DecodeError{Kind: p.kind, Field: field, Reason: "is missing"}
	}
	if string(bytes.TrimSpace(raw)) == "null" {
		return nil, &DecodeError{Kind: p.kind, Field: field, Reason: "is null"}
	}
	return raw, nil
}

func (p *payload) str(field string) (string, error) {
	raw, err := p.raw(field)
	if err != nil {
		return "", err
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return "", &DecodeError{Kind: p.kind, Field: field, Reason: "must be a string", Err: err}
	}
	return s, nil
}

func (p *payload) boolean(field string) (bool, error) {
	raw, err := p.raw(field)
	if err != nil {
		return false, err
	}
	var b bool
	if err := json.Unmarshal(raw, &b); err != nil {
		return false, &DecodeError{Kind: p.kind, Field: field, Reason: "must be a boolean", Err: err}
	}
	return b, nil
}
