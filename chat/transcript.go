// Package chat implements the client side of one conversation with the
// planner service: the in-memory transcript, the HTTP client, and the
// exchange controller driving a rendering surface.
package chat

import (
	"sync"

	"github.com/worraphat/jarvis/agent/contract"
)

// Transcript is the ordered, append-only conversation history for one
// session. It lives only as long as the session; nothing is persisted.
// Unbounded growth is accepted.
type Transcript struct {
	mu    sync.Mutex
	turns []contract.Turn
}

func NewTranscript() *Transcript {
	return &Transcript{}
}

// Append adds a turn to the end. Turns are immutable once appended.
func (t *Transcript) Append(turn contract.Turn) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.turns = append(t.turns, turn)
}

// Sendable returns a copy of the full history for transmission.
func (t *Transcript) Sendable() []contract.Turn {
	t.mu.Lock()
	defer t.mu.Unlock()
	return append([]contract.Turn(nil), t.turns...)
}

func (t *Transcript) Len() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.turns)
}
