// Package responder answers chat messages about supply disruptions. Routing
// is deterministic: messages carrying a recognizable planning intent are
// dispatched to the planning tools, everything else goes to an optional
// chit-chat fallback model.
package responder

import (
	"context"
	"errors"
	"time"

	"github.com/cloudwego/eino/compose"

	"github.com/worraphat/jarvis/agent/contract"
	nodex "github.com/worraphat/jarvis/agent/nodes"
	promptx "github.com/worraphat/jarvis/agent/prompt"
	"github.com/worraphat/jarvis/dataset"
)

var ErrEmptyMessage = contract.ErrEmptyMessage

type Responder struct {
	ds       *dataset.Dataset
	fallback contract.FallbackModel

	graphRunner compose.Runnable[nodex.GraphInput, nodex.GraphOutput]

	systemPrompt string
	now          func() time.Time
}

var _ contract.Responder = (*Responder)(nil)

// New builds a responder over the loaded dataset. fallback may be nil; the
// responder then answers unrecognized messages with a fixed reply.
func New(ds *dataset.Dataset, fallback contract.FallbackModel) (*Responder, error) {
	if ds == nil {
		return nil, errors.New("dataset is required")
	}

	r := &Responder{
		ds:           ds,
		fallback:     fallback,
		systemPrompt: promptx.System(),
		now:          time.Now,
	}

	graphRunner, err := r.compileRespondGraph(context.Background())
	if err != nil {
		return nil, err
	}
	r.graphRunner = graphRunner

	return r, nil
}

// Respond answers one message given the conversation so far.
func (r *Responder) Respond(ctx context.Context, text string, history []contract.Turn) (contract.Reply, error) {
	out, err := r.graphRunner.Invoke(ctx, nodex.GraphInput{
		Text:    text,
		History: history,
	})
	if err != nil {
		return contract.Reply{}, err
	}
	return contract.Reply{Text: out.Text, Suggestions: out.Suggestions}, nil
}
