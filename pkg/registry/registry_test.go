package registry

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"handoff/pkg/status"
)

func constant(action string) Worker {
	return WorkerFunc(func(context.Context, status.Snapshot) (status.Result, error) {
		return status.Result{"action": action}, nil
	})
}

func TestRegisterLookup(t *testing.T) {
	r := New()
	assert.Equal(t, 0, r.Len())

	_, ok := r.Lookup("BuilderAgent")
	assert.False(t, ok)

	r.Register("BuilderAgent", constant("BUILD"))
	w, ok := r.Lookup("BuilderAgent")
	require.True(t, ok)

	res, err := w.Execute(context.Background(), status.New(status.Seed{}).Snapshot())
	require.NoError(t, err)
	assert.Equal(t, "BUILD", res["action"])
}

func TestRegisterLastWriteWins(t *testing.T) {
	r := New()
	r.Register("TesterAgent", constant("first"))
	r.Register("TesterAgent", constant("second"))
	assert.Equal(t, 1, r.Len())

	w, ok := r.Lookup("TesterAgent")
	require.True(t, ok)
	res, err := w.Execute(context.Background(), status.Snapshot{})
	require.NoError(t, err)
	assert.Equal(t, "second", res["action"])
}

func TestNamesSorted(t *testing.T) {
	r := New()
	for _, n := range []string{"TesterAgent", "BuilderAgent", "ReasoningAgent"} {
		r.Register(n, constant(n))
	}
	assert.Equal(t, []string{"BuilderAgent", "ReasoningAgent", "TesterAgent"}, r.Names())
	assert.Empty(t, New().Names())
	assert.True(t, r.Has("Nope", "TesterAgent"))
	assert.False(t, r.Has("NONE"))
}
