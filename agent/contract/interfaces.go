package contract

import "context"

// Responder answers one chat message given the conversation so far.
type Responder interface {
	Respond(ctx context.Context, text string, history []Turn) (Reply, error)
}

// FallbackModel handles chit-chat that carries no recognizable planning
// intent. Implementations may be absent; the responder degrades to a fixed
// reply when nil.
type FallbackModel interface {
	Chat(ctx context.Context, system string, history []Turn, user string) (string, error)
}
