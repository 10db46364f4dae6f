package contract

// Role identifies the author of a conversation turn.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Turn is a single message of the conversation history exchanged with the
// planner service. The chat client sends its full history with every request
// so the responder has conversational context.
type Turn struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

// Reply is the outcome of one exchange: the answer text plus follow-up
// suggestions the client may render as chips.
type Reply struct {
	Text        string   `json:"text,omitempty"`
	Suggestions []string `json:"suggestions,omitempty"`
}

// ChatRequest is the wire shape of POST /chat.
type ChatRequest struct {
	Text    string `json:"text"`
	History []Turn `json:"history,omitempty"`
}
