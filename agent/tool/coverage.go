package tool

import (
	"sort"
	"time"

	"github.com/worraphat/jarvis/dataset"
)

// CoverageAlert compares on-hand stock with demand due inside the horizon.
type CoverageAlert struct {
	SKU            string `json:"sku"`
	DemandInWindow int    `json:"demand_in_window"`
	OnHand         int    `json:"on_hand"`
	Gap            int    `json:"gap"`
	Risk           bool   `json:"risk"`
}

// Coverage computes per-SKU coverage alerts for the next horizonDays,
// sorted by gap so the worst shortfalls come first.
func Coverage(ds *dataset.Dataset, horizonDays int, now time.Time) []CoverageAlert {
	end := now.Add(time.Duration(horizonDays) * 24 * time.Hour)

	demand := make(map[string]int)
	for _, o := range ds.Orders {
		if !o.NeedBy.After(end) {
			demand[o.SKU] += o.Qty
		}
	}

	out := make([]CoverageAlert, 0, len(demand))
	for sku, d := range demand {
		onHand := ds.OnHand(sku)
		out = append(out, CoverageAlert{
			SKU:            sku,
			DemandInWindow: d,
			OnHand:         onHand,
			Gap:            onHand - d,
			Risk:           onHand < d,
		})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Gap != out[j].Gap {
			return out[i].Gap < out[j].Gap
		}
		return out[i].SKU < out[j].SKU
	})
	return out
}
