package tool

import (
	"fmt"
	"sort"
	"time"

	"github.com/worraphat/jarvis/dataset"
	"github.com/worraphat/jarvis/planner"
)

// The effectively-unbounded shortage used when recommending for a fully
// missing SKU: every impacted order must be re-sourced.
const unboundedShortage = 1_000_000_000

// Default production lead time assumed when plant_material has no entry.
const defaultLeadTimeH = 72.0

// OrderAction is one actionable line of a recommendation.
type OrderAction struct {
	OrderID     string    `json:"order_id"`
	CustomerID  string    `json:"customer_id"`
	DestLocID   string    `json:"dest_loc_id"`
	Qty         int       `json:"qty"`
	Action      string    `json:"action"`
	Strategy    string    `json:"strategy"`
	SourceLocID string    `json:"source_loc_id,omitempty"`
	ETA         time.Time `json:"eta_ts,omitzero"`
	LatenessH   float64   `json:"lateness_h"`
}

// SourceSummary aggregates recommendation lines by strategy and source.
type SourceSummary struct {
	Strategy    string    `json:"strategy"`
	SourceLocID string    `json:"source_loc_id"`
	Lines       int       `json:"lines"`
	MinETA      time.Time `json:"min_eta,omitzero"`
}

// Recommendation is the full answer for "SKU X is missing".
type Recommendation struct {
	SKU               string          `json:"sku"`
	AffectedOrders    int             `json:"affected_orders"`
	AffectedCustomers int             `json:"affected_customers"`
	KPI               planner.KPI     `json:"kpi"`
	RecommendedAction string          `json:"recommended_action"`
	BySource          []SourceSummary `json:"by_source,omitempty"`
	PerOrder          []OrderAction   `json:"per_order,omitempty"`
}

// RecommendMissingSKU plans every impacted order of a missing finished-good
// SKU and picks a single top recommendation: the best stock-now source if any
// stock exists, else the fastest produce option.
func RecommendMissingSKU(ds *dataset.Dataset, sku string, now time.Time) Recommendation {
	affected := ImpactedOrdersBySKU(ds, sku)

	rows, kpi := planner.PlanForDelay(
		planner.DelayEvent{SKU: sku, QtyUnavailable: unboundedShortage, Origin: "NA"},
		ds,
		planner.Options{Now: now},
	)

	rec := Recommendation{
		SKU:               sku,
		AffectedOrders:    len(affected),
		AffectedCustomers: UniqueCustomers(affected),
		KPI:               kpi,
	}
	if len(rows) == 0 {
		rec.RecommendedAction = "No open orders found for this SKU."
		return rec
	}

	leadTimes := ds.LeadTimes(sku)
	for _, row := range rows {
		rec.PerOrder = append(rec.PerOrder, OrderAction{
			OrderID:     row.OrderID,
			CustomerID:  row.CustomerID,
			DestLocID:   row.DestLocID,
			Qty:         row.Qty,
			Action:      actionFor(row, leadTimes),
			Strategy:    row.Strategy,
			SourceLocID: row.SourceLocID,
			ETA:         row.ETA,
			LatenessH:   row.LatenessH,
		})
	}

	rec.RecommendedAction = topRecommendation(rows, leadTimes)
	rec.BySource = summarizeBySource(rows)
	return rec
}

func actionFor(row planner.Row, leadTimes map[string]float64) string {
	switch {
	case row.Strategy == planner.StrategyStockNow && row.SourceLocID != "":
		return fmt.Sprintf("Ship now from %s", row.SourceLocID)
	case row.Strategy == planner.StrategyProduce && row.SourceLocID != "":
		return fmt.Sprintf("Produce at %s (LT≈%dh) then ship", row.SourceLocID, int(leadTimeFor(row.SourceLocID, leadTimes)+0.5))
	default:
		return "No feasible source. Inform customer of delay."
	}
}

func topRecommendation(rows []planner.Row, leadTimes map[string]float64) string {
	if best, ok := bestByStrategy(rows, planner.StrategyStockNow); ok {
		return fmt.Sprintf("Ship now from %s for the earliest ETA.", best.SourceLocID)
	}
	if best, ok := bestByStrategy(rows, planner.StrategyProduce); ok {
		return fmt.Sprintf("Produce at %s (LT≈%dh) then ship.", best.SourceLocID, int(leadTimeFor(best.SourceLocID, leadTimes)+0.5))
	}
	return "No feasible plant. Inform customers of delay."
}

func bestByStrategy(rows []planner.Row, strategy string) (planner.Row, bool) {
	var best planner.Row
	found := false
	for _, row := range rows {
		if row.Strategy != strategy {
			continue
		}
		if !found || row.LatenessH < best.LatenessH ||
			(row.LatenessH == best.LatenessH && row.ETA.Before(best.ETA)) {
			best = row
			found = true
		}
	}
	return best, found
}

func leadTimeFor(loc string, leadTimes map[string]float64) float64 {
	if lt, ok := leadTimes[loc]; ok {
		return lt
	}
	return defaultLeadTimeH
}

func summarizeBySource(rows []planner.Row) []SourceSummary {
	type key struct{ strategy, source string }
	agg := make(map[key]*SourceSummary)
	for _, row := range rows {
		if row.SourceLocID == "" {
			continue
		}
		k := key{row.Strategy, row.SourceLocID}
		s, ok := agg[k]
		if !ok {
			s = &SourceSummary{Strategy: row.Strategy, SourceLocID: row.SourceLocID, MinETA: row.ETA}
			agg[k] = s
		}
		s.Lines++
		if row.ETA.Before(s.MinETA) {
			s.MinETA = row.ETA
		}
	}

	out := make([]SourceSummary, 0, len(agg))
	for _, s := range agg {
		out = append(out, *s)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Strategy != out[j].Strategy {
			return out[i].Strategy < out[j].Strategy
		}
		return out[i].MinETA.Before(out[j].MinETA)
	})
	return out
}
