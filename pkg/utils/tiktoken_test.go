package utils

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCountTokens(t *testing.T) {
	tc, err := NewTokenCounter("llama3.2:3b")
	require.NoError(t, err)

	assert.Equal(t, 0, tc.CountTokens(""))

	short := tc.CountTokens(`{"next_agent": "ReasoningAgent"}`)
	assert.Positive(t, short)

	long := tc.CountTokens(strings.Repeat(`{"next_agent": "ReasoningAgent"} `, 20))
	assert.Greater(t, long, short)

	assert.True(t, tc.WithinLimit("hello", 10))
	assert.False(t, tc.WithinLimit(strings.Repeat("word ", 100), 10))
}

func TestCountTokensSimple(t *testing.T) {
	assert.Equal(t, CountTokensSimple("hello world"), CountTokensSimple("hello world"))
	assert.Positive(t, CountTokensSimple("hello world"))
}

func TestNilCounterEstimates(t *testing.T) {
	var tc *TokenCounter
	assert.Equal(t, 3, tc.CountTokens("123456789012"))
}
