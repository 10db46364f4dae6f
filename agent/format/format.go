// Package format renders tool results as short human-readable chat replies:
// local-time stamps, per-order bullet lines, and truncated row lists.
package format

import (
	"fmt"
	"strings"
	"time"

	"github.com/worraphat/jarvis/agent/tool"
	"github.com/worraphat/jarvis/dataset"
	"github.com/worraphat/jarvis/planner"
)

const maxRows = 5

var localTZ = loadLocalTZ()

func loadLocalTZ() *time.Location {
	loc, err := time.LoadLocation("Europe/Copenhagen")
	if err != nil {
		return time.UTC
	}
	return loc
}

// Timestamp renders a time in the deployment's local zone, or "n/a".
func Timestamp(ts time.Time) string {
	if ts.IsZero() {
		return "n/a"
	}
	return ts.In(localTZ).Format("02 Jan 2006, 15:04 MST")
}

// Pct renders an on-time percentage with one decimal.
func Pct(v float64) string {
	return fmt.Sprintf("%.1f%%", v)
}

// Lateness renders lateness hours as "on time" or "late by X h".
func Lateness(h float64) string {
	if h <= 1e-6 {
		return "on time"
	}
	return fmt.Sprintf("late by %.1f h", h)
}

func line(simSKU string, row planner.Row) string {
	src := row.SourceLocID
	if src == "" {
		src = "n/a"
	}
	strat := strings.ReplaceAll(row.Strategy, "-", " ")
	prefix := ""
	if simSKU != "" {
		prefix = simSKU + " · "
	}
	if row.Strategy == planner.StrategyNone {
		return fmt.Sprintf("- %sOrder %s → %s (customer %s). No feasible source.", prefix, row.OrderID, row.DestLocID, row.CustomerID)
	}
	return fmt.Sprintf("- %sOrder %s → %s (customer %s). Source %s. %s. ETA %s. %s.",
		prefix, row.OrderID, row.DestLocID, row.CustomerID, src, strat, Timestamp(row.ETA), Lateness(row.LatenessH))
}

// Rows renders up to 5 plan rows as bullets with a "… and N more." tail.
func Rows(rows []planner.Row) string {
	if len(rows) == 0 {
		return "none."
	}
	take := rows
	if len(take) > maxRows {
		take = take[:maxRows]
	}
	lines := make([]string, 0, len(take)+1)
	for _, r := range take {
		lines = append(lines, line("", r))
	}
	if len(rows) > maxRows {
		lines = append(lines, fmt.Sprintf("… and %d more.", len(rows)-maxRows))
	}
	return strings.Join(lines, "\n")
}

// SimRows is Rows for simulation output, tagging each line with its SKU.
func SimRows(rows []tool.SimRow) string {
	if len(rows) == 0 {
		return "none."
	}
	take := rows
	if len(take) > maxRows {
		take = take[:maxRows]
	}
	lines := make([]string, 0, len(take)+1)
	for _, r := range take {
		lines = append(lines, line(r.SimSKU, r.Row))
	}
	if len(rows) > maxRows {
		lines = append(lines, fmt.Sprintf("… and %d more.", len(rows)-maxRows))
	}
	return strings.Join(lines, "\n")
}

// Recommendation renders the full "SKU missing" answer. stockPlants are the
// plants still holding the SKU.
func Recommendation(rec tool.Recommendation, stockPlants []string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Missing SKU: %s\n", rec.SKU)
	if len(stockPlants) > 0 {
		fmt.Fprintf(&b, "Stock on hand at: %s\n", strings.Join(stockPlants, ", "))
	} else {
		b.WriteString("No stock on hand at any plant.\n")
	}
	fmt.Fprintf(&b, "Recommended: %s\n", rec.RecommendedAction)
	fmt.Fprintf(&b, "KPI lines on-time: %s · late orders: %d\n", Pct(rec.KPI.OnTimePct), rec.KPI.LateOrders)
	b.WriteString(orderActions(rec.PerOrder))
	return b.String()
}

func orderActions(actions []tool.OrderAction) string {
	if len(actions) == 0 {
		return "none."
	}
	take := actions
	if len(take) > maxRows {
		take = take[:maxRows]
	}
	lines := make([]string, 0, len(take)+1)
	for _, a := range take {
		eta := ""
		if !a.ETA.IsZero() {
			eta = fmt.Sprintf(" ETA %s.", Timestamp(a.ETA))
		}
		lines = append(lines, fmt.Sprintf("- Order %s → %s (customer %s, qty %d): %s.%s %s.",
			a.OrderID, a.DestLocID, a.CustomerID, a.Qty, a.Action, eta, Lateness(a.LatenessH)))
	}
	if len(actions) > maxRows {
		lines = append(lines, fmt.Sprintf("… and %d more.", len(actions)-maxRows))
	}
	return strings.Join(lines, "\n")
}

// Impacted renders the impacted-orders answer for a SKU.
func Impacted(sku string, customers int, orders []dataset.Order) string {
	header := fmt.Sprintf("Impacted orders for %s: %d (customers: %d)", sku, len(orders), customers)
	if len(orders) == 0 {
		return header
	}

	take := orders
	if len(take) > maxRows {
		take = take[:maxRows]
	}
	lines := []string{header}
	for _, o := range take {
		lines = append(lines, fmt.Sprintf("- Order %s → %s (customer %s, qty %d). Needed by %s.",
			o.OrderID, o.DestLocID, o.CustomerID, o.Qty, Timestamp(o.NeedBy)))
	}
	if len(orders) > maxRows {
		lines = append(lines, fmt.Sprintf("… and %d more.", len(orders)-maxRows))
	}
	return strings.Join(lines, "\n")
}

// ComponentImpact renders the component-missing answer, including where to
// produce the component and where to assemble its parents.
func ComponentImpact(impact tool.ComponentImpact, sim tool.StockoutResult, hint tool.ProductionHint) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Component missing: %s\n", impact.Component)
	fmt.Fprintf(&b, "Mapped finished goods: %d · affected orders: %d\n", len(impact.MappedSKUs), len(impact.Orders))
	if hint.Fastest.Plant != "" {
		fmt.Fprintf(&b, "Produce component at %s (LT≈%dh).\n", hint.Fastest.Plant, int(hint.Fastest.LeadTimeH+0.5))
	}
	if line := assemblyLine(hint.Assembly); line != "" {
		b.WriteString(line + "\n")
	}
	b.WriteString(SimRows(sim.Rows))
	return b.String()
}

// assemblyLine lists up to 3 parent SKUs with their fastest assembly plant.
func assemblyLine(hints []tool.PlantHint) string {
	var parts []string
	for _, h := range hints {
		if h.Plant == "" {
			continue
		}
		parts = append(parts, fmt.Sprintf("%s at %s (LT≈%dh)", h.SKU, h.Plant, int(h.LeadTimeH+0.5)))
		if len(parts) == 3 {
			break
		}
	}
	if len(parts) == 0 {
		return ""
	}
	return "Assemble: " + strings.Join(parts, ", ") + "."
}

// Stockout renders a stockout simulation.
func Stockout(res tool.StockoutResult) string {
	if res.Message != "" {
		return res.Message
	}
	return fmt.Sprintf("Stockout simulation for %s: %d replanned lines\n%s", res.Code, len(res.Rows), SimRows(res.Rows))
}

// Reroute renders a route-block simulation.
func Reroute(res tool.RerouteResult) string {
	if res.Message != "" {
		return res.Message
	}
	return fmt.Sprintf("Route blocked %s → %s. On-time after reroute: %s\n%s",
		res.Blocked[0], res.Blocked[1], Pct(res.OnTimePct), SimRows(res.Rows))
}

// Coverage renders coverage alerts, risky SKUs first, capped at 10 lines.
func Coverage(horizonDays int, alerts []tool.CoverageAlert) string {
	risky := make([]tool.CoverageAlert, 0, len(alerts))
	rest := make([]tool.CoverageAlert, 0, len(alerts))
	for _, a := range alerts {
		if a.Risk {
			risky = append(risky, a)
		} else {
			rest = append(rest, a)
		}
	}
	ordered := append(risky, rest...)
	if len(ordered) > 10 {
		ordered = ordered[:10]
	}

	lines := make([]string, 0, len(ordered)+1)
	lines = append(lines, fmt.Sprintf("Coverage alerts next %d days:", horizonDays))
	if len(ordered) == 0 {
		lines = append(lines, "- no demand in window.")
	}
	for _, a := range ordered {
		lines = append(lines, fmt.Sprintf("- %s: demand %d vs on_hand %d → risk %v", a.SKU, a.DemandInWindow, a.OnHand, a.Risk))
	}
	return strings.Join(lines, "\n")
}
