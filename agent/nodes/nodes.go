// Package nodes holds the responder pipeline steps. Each node is a pure-ish
// function over GraphState so the graph wiring stays declarative and each
// step is testable on its own.
package nodes

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/worraphat/jarvis/agent/contract"
	"github.com/worraphat/jarvis/agent/format"
	"github.com/worraphat/jarvis/agent/intent"
	"github.com/worraphat/jarvis/agent/suggest"
	"github.com/worraphat/jarvis/agent/tool"
	"github.com/worraphat/jarvis/dataset"
)

type GraphInput struct {
	Text    string
	History []contract.Turn
}

type GraphOutput struct {
	Text        string
	Suggestions []string
}

type GraphState struct {
	Text    string
	History []contract.Turn
	Now     time.Time

	Intent   intent.Intent
	Coverage []tool.CoverageAlert

	Message string
}

// ValidateRequest trims the message and stamps the run.
func ValidateRequest(in GraphInput, nowFn func() time.Time) (*GraphState, error) {
	text := strings.TrimSpace(in.Text)
	if text == "" {
		return nil, contract.ErrEmptyMessage
	}
	return &GraphState{
		Text:    text,
		History: in.History,
		Now:     nowFn().UTC(),
	}, nil
}

// ParseIntent classifies the message.
func ParseIntent(in *GraphState) (*GraphState, error) {
	if in == nil {
		return nil, fmt.Errorf("%w: graph state is nil", contract.ErrValidation)
	}
	in.Intent = intent.Parse(in.Text)
	log.Debug().Str("intent", string(in.Intent.Type)).Str("text", in.Text).Msg("intent parsed")
	return in, nil
}

// DispatchTool runs the tool matching the intent and renders the reply text.
// Unrecognized messages go to the fallback model when one is configured.
func DispatchTool(ctx context.Context, in *GraphState, ds *dataset.Dataset, fallback contract.FallbackModel, systemPrompt string) (*GraphState, error) {
	if in == nil {
		return nil, fmt.Errorf("%w: graph state is nil", contract.ErrValidation)
	}

	switch in.Intent.Type {
	case intent.TypeSKUMissing:
		rec := tool.RecommendMissingSKU(ds, in.Intent.SKU, in.Now)
		in.Message = format.Recommendation(rec, tool.PlantsForSKU(ds, in.Intent.SKU))

	case intent.TypeImpactedBySKU:
		orders := tool.ImpactedOrdersBySKU(ds, in.Intent.SKU)
		in.Message = format.Impacted(in.Intent.SKU, tool.UniqueCustomers(orders), orders)

	case intent.TypeComponentMissing:
		impact, err := tool.ImpactedOrdersByComponent(ds, in.Intent.Code)
		if err != nil {
			in.Message = "BOM not loaded. Component lookups are unavailable for this dataset."
			return in, nil
		}
		sim := tool.SimulateStockout(ds, in.Intent.Code, in.Now)
		// A hint error means no capable plants are on file; the zero hint
		// renders nothing extra.
		hint, _ := tool.ComponentProductionHint(ds, in.Intent.Code)
		in.Message = format.ComponentImpact(impact, sim, hint)

	case intent.TypeComponentStockout:
		sim := tool.SimulateStockout(ds, in.Intent.Code, in.Now)
		in.Message = format.Stockout(sim)

	case intent.TypeRouteBlock:
		if in.Intent.Origin == "" || in.Intent.Dest == "" {
			in.Message = "Need origin and destination plants like plant_201 and plant_203."
			return in, nil
		}
		res := tool.SimulateRouteBlock(ds, in.Intent.Origin, in.Intent.Dest, in.Intent.SKU, in.Now)
		in.Message = format.Reroute(res)

	case intent.TypeCoverage:
		in.Coverage = tool.Coverage(ds, in.Intent.Horizon, in.Now)
		in.Message = format.Coverage(in.Intent.Horizon, in.Coverage)

	default:
		in.Message = fallbackReply(ctx, in, fallback, systemPrompt)
	}
	return in, nil
}

const askForCodes = "I can help with supply chain disruptions. Tell me things like " +
	"\"product_253 is missing\", \"route from plant_201 to plant_203 is blocked\", or " +
	"\"predict stockouts for 7 days\". Please include exact SKU or plant codes."

func fallbackReply(ctx context.Context, in *GraphState, fallback contract.FallbackModel, systemPrompt string) string {
	if fallback == nil {
		return askForCodes
	}
	answer, err := fallback.Chat(ctx, systemPrompt, in.History, in.Text)
	if err != nil {
		log.Warn().Err(err).Msg("fallback model failed, using fixed reply")
		return askForCodes
	}
	if strings.TrimSpace(answer) == "" {
		return askForCodes
	}
	return answer
}

// AttachSuggestions finalizes the reply with follow-up chips.
func AttachSuggestions(in *GraphState, ds *dataset.Dataset) (GraphOutput, error) {
	if in == nil {
		return GraphOutput{}, fmt.Errorf("%w: graph state is nil", contract.ErrValidation)
	}
	if strings.TrimSpace(in.Message) == "" {
		return GraphOutput{}, fmt.Errorf("%w: dispatch produced an empty reply", contract.ErrValidation)
	}
	return GraphOutput{
		Text:        in.Message,
		Suggestions: suggest.For(in.Intent, ds, in.Coverage),
	}, nil
}
