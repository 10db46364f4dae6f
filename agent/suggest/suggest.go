// Package suggest derives the follow-up chips the chat widget offers after
// each answer. Every chip is a complete message that parses back into a
// supported intent, so activating one behaves exactly like typing it.
package suggest

import (
	"fmt"

	"github.com/worraphat/jarvis/agent/intent"
	"github.com/worraphat/jarvis/agent/tool"
	"github.com/worraphat/jarvis/dataset"
)

const maxChips = 4

// For returns the chips for one handled intent.
func For(in intent.Intent, ds *dataset.Dataset, coverage []tool.CoverageAlert) []string {
	switch in.Type {
	case intent.TypeSKUMissing:
		return clip([]string{
			fmt.Sprintf("Who is affected by %s?", in.SKU),
			fmt.Sprintf("Simulate a stockout of component %s", in.SKU),
			"Predict stockouts for the next 7 days",
		})
	case intent.TypeImpactedBySKU:
		return clip([]string{
			fmt.Sprintf("%s is missing", in.SKU),
			"Predict stockouts for the next 7 days",
		})
	case intent.TypeComponentMissing:
		return clip([]string{
			fmt.Sprintf("Simulate a stockout of component %s", in.Code),
			"Predict stockouts for the next 7 days",
		})
	case intent.TypeComponentStockout:
		return clip([]string{
			fmt.Sprintf("Who is affected by %s?", in.Code),
			"Predict stockouts for the next 7 days",
		})
	case intent.TypeRouteBlock:
		return clip([]string{
			"Predict stockouts for the next 7 days",
		})
	case intent.TypeCoverage:
		return coverageChips(coverage)
	default:
		return Starters(ds)
	}
}

// Starters are the chips shown when no planning intent was recognized.
func Starters(ds *dataset.Dataset) []string {
	chips := []string{"Predict stockouts for the next 7 days"}
	if skus := tool.ListSKUs(ds); len(skus) > 0 {
		chips = append([]string{
			fmt.Sprintf("%s is missing", skus[0]),
			fmt.Sprintf("Who is affected by %s?", skus[0]),
		}, chips...)
	}
	return clip(chips)
}

// coverageChips turns the riskiest SKUs into recovery chips.
func coverageChips(alerts []tool.CoverageAlert) []string {
	var chips []string
	for _, a := range alerts {
		if !a.Risk {
			continue
		}
		chips = append(chips, fmt.Sprintf("%s is missing", a.SKU))
		if len(chips) == maxChips-1 {
			break
		}
	}
	chips = append(chips, "Predict stockouts for the next 30 days")
	return clip(chips)
}

func clip(chips []string) []string {
	if len(chips) > maxChips {
		return chips[:maxChips]
	}
	return chips
}
