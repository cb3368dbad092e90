package status

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"

	"handoff/pkg/proto"
)

// ErrValidation is matched by every *ValidationError.
var ErrValidation = errors.New("validation error")

// ValidationError reports a result field whose value is outside its domain.
type ValidationError struct {
	Field  string
	Value  any
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s %v: %s", e.Field, e.Value, e.Reason)
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

// Merge folds a worker result into the record, field by field:
// audit trail, ai_state, ai_queue_status, handoff flag, rates, errors.
// It is not transactional; fields applied before a failing one stay applied.
func (r *Record) Merge(result Result, agentName string) error {
	r.s.LastAction = textOrUnknown(result[KeyAction])
	r.s.LastAgent = agentName
	r.s.LastResult = textOrUnknown(result[KeyResult])

	if v, ok := result[KeyAIState]; ok {
		state, err := asAgentState(v)
		if err != nil {
			return err
		}
		r.s.AIState = state
	}

	if v, ok := result[KeyAIQueueStatus]; ok {
		queue, err := asQueueStatus(v)
		if err != nil {
			return err
		}
		r.s.AIQueueStatus = queue
	}

	if v, ok := result[KeyHandoffRequested]; ok {
		b, isBool := v.(bool)
		if !isBool {
			return &ValidationError{Field: KeyHandoffRequested, Value: v, Reason: "must be a boolean"}
		}
		r.s.AIHandoffRequested = b
	}

	if v, ok := result[KeyBuildSuccessRate]; ok {
		rate, err := asRate(KeyBuildSuccessRate, v)
		if err != nil {
			return err
		}
		r.s.BuildSuccessRate = rate
	}

	if v, ok := result[KeyTestSuccessRate]; ok {
		rate, err := asRate(KeyTestSuccessRate, v)
		if err != nil {
			return err
		}
		r.s.TestSuccessRate = rate
	}

	if v, ok := result[KeyErrors]; ok {
		errs, err := asStrings(v)
		if err != nil {
			return err
		}
		r.setErrors(errs)
	}

	return nil
}

func textOrUnknown(v any) string {
	switch t := v.(type) {
	case nil:
		return Unknown
	case string:
		return t
	default:
		return fmt.Sprint(t)
	}
}

func asAgentState(v any) (proto.AgentState, error) {
	var raw string
	switch t := v.(type) {
	case string:
		raw = t
	case proto.AgentState:
		raw = string(t)
	default:
		return "", &ValidationError{Field: KeyAIState, Value: v, Reason: "must be a string"}
	}
	state, err := proto.ParseAgentState(raw)
	if err != nil {
		return "", &ValidationError{Field: KeyAIState, Value: raw, Reason: err.Error()}
	}
	return state, nil
}

func asQueueStatus(v any) (proto.QueueStatus, error) {
	var raw string
	switch t := v.(type) {
	case string:
		raw = t
	case proto.QueueStatus:
		raw = string(t)
	default:
		return "", &ValidationError{Field: KeyAIQueueStatus, Value: v, Reason: "must be a string"}
	}
	queue, err := proto.ParseQueueStatus(raw)
	if err != nil {
		return "", &ValidationError{Field: KeyAIQueueStatus, Value: raw, Reason: err.Error()}
	}
	return queue, nil
}

func asRate(field string, v any) (float64, error) {
	var f float64
	switch t := v.(type) {
	case float64:
		f = t
	case float32:
		f = float64(t)
	case int:
		f = float64(t)
	case int8:
		f = float64(t)
	case int16:
		f = float64(t)
	case int32:
		f = float64(t)
	case int64:
		f = float64(t)
	case uint:
		f = float64(t)
	case uint8:
		f = float64(t)
	case uint16:
		f = float64(t)
	case uint32:
		f = float64(t)
	case uint64:
		f = float64(t)
	case json.Number:
		parsed, err := t.Float64()
		if err != nil {
			return 0, &ValidationError{Field: field, Value: v, Reason: "must be numeric"}
		}
		f = parsed
	default:
		return 0, &ValidationError{Field: field, Value: v, Reason: "must be numeric"}
	}
	if err := checkRate(field, f); err != nil {
		return 0, err
	}
	return f, nil
}

func checkRate(field string, f float64) error {
	if math.IsNaN(f) || f < 0 || f > 1 {
		return &ValidationError{Field: field, Value: f, Reason: "must be within [0, 1]"}
	}
	return nil
}

func asStrings(v any) ([]string, error) {
	switch t := v.(type) {
	case nil:
		return []string{}, nil
	case []string:
		return t, nil
	case []any:
		out := make([]string, 0, len(t))
		for i, item := range t {
			s, ok := item.(string)
			if !ok {
				return nil, &ValidationError{Field: KeyErrors, Value: item, Reason: fmt.Sprintf("element %d must be a string", i)}
			}
			out = append(out, s)
		}
		return out, nil
	default:
		return nil, &ValidationError{Field: KeyErrors, Value: v, Reason: "must be a sequence of strings"}
	}
}
