package chat

import (
	"context"
	"strings"

	"github.com/worraphat/jarvis/agent/contract"
)

// Fixed literals the controller renders for an exchange.
const (
	PlaceholderText = "…"
	NoReplyText     = "No reply."
	FailureText     = "Error contacting the planner."
)

// MessageID identifies a rendered message so the controller can replace the
// placeholder with the final reply.
type MessageID int

// Surface is the rendering side the controller drives. Implementations must
// tolerate calls from the exchange goroutine.
type Surface interface {
	// ShowUserMessage renders the user's turn immediately.
	ShowUserMessage(text string)
	// ShowPlaceholder renders an in-flight assistant marker and returns its id.
	ShowPlaceholder() MessageID
	// ReplaceMessage swaps a previously rendered message's content.
	ReplaceMessage(id MessageID, text string)
	// SetSuggestions replaces the chip row; an empty slice clears it.
	SetSuggestions(chips []string)
	// ClearInput empties the input field.
	ClearInput()
}

// Controller orchestrates one exchange per Submit: optimistic rendering, the
// single request, and the transcript update. Overlapping submissions are not
// guarded against; each exchange races on its own placeholder.
type Controller struct {
	planner    PlannerClient
	surface    Surface
	transcript *Transcript
}

func NewController(planner PlannerClient, surface Surface, transcript *Transcript) *Controller {
	if transcript == nil {
		transcript = NewTranscript()
	}
	return &Controller{
		planner:    planner,
		surface:    surface,
		transcript: transcript,
	}
}

// Transcript exposes the session history (shared with the Submit goroutines).
func (c *Controller) Transcript() *Transcript {
	return c.transcript
}

// Submit runs one exchange. Whitespace-only input is silently ignored. The
// returned channel closes when the exchange has fully settled; callers that
// do not care may discard it.
func (c *Controller) Submit(raw string) <-chan struct{} {
	done := make(chan struct{})

	text := strings.TrimSpace(raw)
	if text == "" {
		close(done)
		return done
	}

	c.surface.ShowUserMessage(text)
	c.surface.ClearInput()
	c.surface.SetSuggestions(nil)
	placeholder := c.surface.ShowPlaceholder()

	// History is captured before the new user turn is appended: the turn
	// only joins the transcript once the exchange succeeds.
	history := c.transcript.Sendable()

	go func() {
		defer close(done)

		reply, err := c.planner.Send(context.Background(), text, history)
		if err != nil {
			c.surface.ReplaceMessage(placeholder, FailureText)
			return
		}

		shown := reply.Text
		if shown == "" {
			shown = NoReplyText
		}
		c.surface.ReplaceMessage(placeholder, shown)
		c.surface.SetSuggestions(reply.Suggestions)

		c.transcript.Append(contract.Turn{Role: contract.RoleUser, Content: text})
		c.transcript.Append(contract.Turn{Role: contract.RoleAssistant, Content: reply.Text})
	}()
	return done
}

// ActivateSuggestion submits a chip: behaviorally identical to typing its
// text and pressing send.
func (c *Controller) ActivateSuggestion(chip string) <-chan struct{} {
	return c.Submit(chip)
}
