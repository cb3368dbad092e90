package backend

import (
	"context"
	"errors"
	"sync"
)

// ErrScriptExhausted is returned once a Scripted backend has no replies left.
var ErrScriptExhausted = errors.New("scripted backend: no replies left")

// Scripted replays a fixed list of replies in order and records the prompts it saw.
// It serves dry runs (`smc run --script`) and tests.
type Scripted struct {
	mu      sync.Mutex
	replies []string
	prompts []string
}

// NewScripted creates a backend that returns replies one per call.
func NewScripted(replies ...string) *Scripted {
	return &Scripted{replies: append([]string(nil), replies...)}
}

// Generate implements Backend.
func (s *Scripted) Generate(ctx context.Context, prompt string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err //nolint:wrapcheck // context error passed through
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.prompts = append(s.prompts, prompt)
	if len(s.replies) == 0 {
		return "", ErrScriptExhausted
	}
	reply := s.replies[0]
	s.replies = s.replies[1:]
	return reply, nil
}

// Prompts returns a copy of every prompt received so far.
func (s *Scripted) Prompts() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.prompts...)
}

// Remaining reports how many replies are left.
func (s *Scripted) Remaining() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.replies)
}
