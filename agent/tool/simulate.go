package tool

import (
	"fmt"
	"sort"
	"time"

	"github.com/worraphat/jarvis/dataset"
	"github.com/worraphat/jarvis/planner"
)

// SimRow is a replanned order line inside a simulation, tagged with the SKU
// the simulation ran for.
type SimRow struct {
	SimSKU string `json:"sim_sku"`
	planner.Row
}

// StockoutResult is the outcome of simulating a component or SKU stockout.
type StockoutResult struct {
	Code    string          `json:"code"`
	Role    dataset.BOMRole `json:"role"`
	SKUs    []string        `json:"skus"`
	Rows    []SimRow        `json:"rows,omitempty"`
	Message string          `json:"message,omitempty"`
}

// SimulateStockout zeroes on-hand stock for the SKUs mapped from the given
// code (a component expands through the BOM, a finished good maps to itself)
// and replans every affected order.
func SimulateStockout(ds *dataset.Dataset, code string, now time.Time) StockoutResult {
	role := ds.DetectBOMRole(code)
	res := StockoutResult{Code: code, Role: role}

	switch role {
	case dataset.BOMRoleComponent:
		res.SKUs = ds.ProductsUsing(code)
	case dataset.BOMRoleMaterial:
		res.SKUs = []string{code}
	default:
		if len(ds.OrdersForSKU(code)) > 0 {
			res.SKUs = []string{code}
		} else {
			res.Message = fmt.Sprintf("Code %q not found in BOM or orders. Provide a component or a valid SKU.", code)
			return res
		}
	}

	sim := ds.Clone()
	zeroed := make(map[string]struct{}, len(res.SKUs))
	for _, sku := range res.SKUs {
		zeroed[sku] = struct{}{}
	}
	for i, r := range sim.Inventory {
		if _, ok := zeroed[r.SKU]; ok {
			sim.Inventory[i].OnHand = 0
		}
	}

	for _, sku := range res.SKUs {
		rows, _ := planner.PlanForDelay(
			planner.DelayEvent{SKU: sku, QtyUnavailable: unboundedShortage, Origin: "NA"},
			sim,
			planner.Options{Now: now},
		)
		for _, row := range rows {
			res.Rows = append(res.Rows, SimRow{SimSKU: sku, Row: row})
		}
	}
	if len(res.Rows) == 0 {
		res.Message = "No open orders for the mapped SKU(s), nothing to replan."
	}
	return res
}

// RerouteResult is the outcome of simulating a blocked origin->dest lane.
type RerouteResult struct {
	Blocked   [2]string `json:"blocked"`
	OnTimePct float64   `json:"on_time_pct"`
	Rows      []SimRow  `json:"rows,omitempty"`
	Message   string    `json:"message,omitempty"`
}

// SimulateRouteBlock replans deliveries with the origin->dest lane excluded.
// With an empty SKU every SKU with open orders to the destination is
// replanned.
func SimulateRouteBlock(ds *dataset.Dataset, origin, dest, sku string, now time.Time) RerouteResult {
	res := RerouteResult{Blocked: [2]string{origin, dest}}

	var skus []string
	if sku != "" {
		skus = []string{sku}
	} else {
		seen := make(map[string]struct{})
		for _, o := range ds.Orders {
			if o.DestLocID != dest {
				continue
			}
			if _, dup := seen[o.SKU]; dup {
				continue
			}
			seen[o.SKU] = struct{}{}
			skus = append(skus, o.SKU)
		}
		sort.Strings(skus)
	}
	if len(skus) == 0 {
		res.Message = fmt.Sprintf("No open orders delivering to %s.", dest)
		return res
	}

	opts := planner.Options{
		Now:           now,
		BlockedRoutes: [][2]string{{origin, dest}},
	}
	onTime, total := 0, 0
	for _, s := range skus {
		rows, _ := planner.PlanForDelay(
			planner.DelayEvent{SKU: s, QtyUnavailable: unboundedShortage, Origin: "NA"},
			ds,
			opts,
		)
		for _, row := range rows {
			res.Rows = append(res.Rows, SimRow{SimSKU: s, Row: row})
			total++
			if row.Strategy != planner.StrategyNone && row.LatenessH <= 1e-6 {
				onTime++
			}
		}
	}
	if total == 0 {
		res.Message = "No feasible alternative route for the selected scope."
		return res
	}

	sort.SliceStable(res.Rows, func(i, j int) bool {
		if res.Rows[i].SimSKU != res.Rows[j].SimSKU {
			return res.Rows[i].SimSKU < res.Rows[j].SimSKU
		}
		if res.Rows[i].LatenessH != res.Rows[j].LatenessH {
			return res.Rows[i].LatenessH < res.Rows[j].LatenessH
		}
		return res.Rows[i].ETA.Before(res.Rows[j].ETA)
	})
	res.OnTimePct = float64(int(float64(onTime)/float64(total)*10000+0.5)) / 100
	return res
}
