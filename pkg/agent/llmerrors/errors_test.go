package llmerrors

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromStatus(t *testing.T) {
	cause := errors.New("http failure")
	tests := []struct {
		code int
		want ErrorType
	}{
		{401, ErrorTypeAuth},
		{403, ErrorTypeAuth},
		{429, ErrorTypeRateLimit},
		{400, ErrorTypeBadPrompt},
		{500, ErrorTypeTransient},
		{503, ErrorTypeTransient},
	}
	for _, tt := range tests {
		t.Run(fmt.Sprint(tt.code), func(t *testing.T) {
			err := FromStatus(tt.code, cause)
			require.NotNil(t, err)
			assert.Equal(t, tt.want, err.Type)
			assert.Equal(t, tt.code, err.StatusCode)
			assert.ErrorIs(t, err, cause)
		})
	}
	assert.Nil(t, FromStatus(200, nil))
	assert.Nil(t, FromStatus(302, nil))
}

func TestClassify(t *testing.T) {
	assert.Nil(t, Classify(nil))

	tests := []struct {
		err  error
		want ErrorType
	}{
		{context.DeadlineExceeded, ErrorTypeTransient},
		{fmt.Errorf("wrapped: %w", context.Canceled), ErrorTypeTransient},
		{errors.New("read tcp: connection reset by peer"), ErrorTypeTransient},
		{errors.New("unexpected EOF"), ErrorTypeTransient},
		{errors.New("Quota exhausted for today"), ErrorTypeRateLimit},
		{errors.New("missing API key"), ErrorTypeAuth},
		{errors.New("invalid model parameter"), ErrorTypeBadPrompt},
		{errors.New("something odd"), ErrorTypeUnknown},
	}
	for _, tt := range tests {
		t.Run(tt.err.Error(), func(t *testing.T) {
			got := Classify(tt.err)
			assert.Equal(t, tt.want, got.Type)
			assert.ErrorIs(t, got, tt.err)
		})
	}

	classified := NewError(ErrorTypeEmptyResponse, "nothing")
	assert.Same(t, classified, Classify(fmt.Errorf("ctx: %w", classified)))
}

func TestIsAndTypeOf(t *testing.T) {
	err := fmt.Errorf("outer: %w", NewErrorWithStatus(ErrorTypeRateLimit, 429, "slow down"))
	assert.True(t, Is(err, ErrorTypeRateLimit))
	assert.False(t, Is(err, ErrorTypeAuth))
	assert.Equal(t, ErrorTypeRateLimit, TypeOf(err))
	assert.Equal(t, ErrorTypeUnknown, TypeOf(errors.New("plain")))
}

func TestRetryable(t *testing.T) {
	assert.True(t, NewError(ErrorTypeTransient, "").IsRetryable())
	assert.True(t, NewError(ErrorTypeEmptyResponse, "").IsRetryable())
	assert.False(t, NewError(ErrorTypeAuth, "").IsRetryable())
	assert.False(t, NewServiceUnavailableError(errors.New("x"), 3).IsRetryable())
	assert.True(t, IsServiceUnavailable(NewServiceUnavailableError(errors.New("x"), 3)))
}

func TestErrorString(t *testing.T) {
	assert.Equal(t, "LLM error (auth): nope", NewError(ErrorTypeAuth, "nope").Error())
	assert.Equal(t, "LLM error (transient): boom", (&Error{Type: ErrorTypeTransient, Err: errors.New("boom")}).Error())
	assert.Equal(t, "LLM error (unknown): status 418", (&Error{Type: ErrorTypeUnknown, StatusCode: 418}).Error())
}

func TestSanitizePrompt(t *testing.T) {
	assert.Equal(t, "short", SanitizePrompt("short", 50))

	long := strings.Repeat("a", 300) + strings.Repeat("b", 300)
	got := SanitizePrompt(long, 200)
	assert.True(t, strings.HasPrefix(got, strings.Repeat("a", 100)))
	assert.True(t, strings.HasSuffix(got, strings.Repeat("b", 100)))
	assert.Contains(t, got, "[600 chars, hash:")
}
