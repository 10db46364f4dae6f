// Package planner computes recovery plans for supply disruptions: which open
// orders are hit, which plant each one should be served from, and how late
// every line ends up.
package planner

import (
	"sort"
	"time"

	"github.com/worraphat/jarvis/dataset"
)

// Allocation strategies per order line.
const (
	StrategyStockNow = "stock-now"
	StrategyProduce  = "produce"
	StrategyNone     = "none"
)

const (
	defaultHorizonDays = 7
	// Transit hours assumed when either endpoint has no usable coordinates.
	defaultTransitH = 24.0
	// Lateness at or below this is considered on time.
	onTimeToleranceH = 1e-6
)

// DelayEvent describes the disruption being planned around.
type DelayEvent struct {
	SKU            string `json:"sku"`
	QtyUnavailable int    `json:"qty_unavailable"`
	Origin         string `json:"origin_loc_id"`
}

// Row is one planned order line.
type Row struct {
	OrderID     string    `json:"order_id"`
	CustomerID  string    `json:"customer_id"`
	SKU         string    `json:"sku"`
	Qty         int       `json:"qty"`
	DestLocID   string    `json:"dest_loc_id"`
	SourceLocID string    `json:"source_loc_id,omitempty"`
	Strategy    string    `json:"strategy"`
	ETA         time.Time `json:"eta_ts,omitzero"`
	LatenessH   float64   `json:"lateness_h"`
}

// KPI summarizes a plan against the 95% on-time SLA.
type KPI struct {
	AffectedOrders    int     `json:"affected_orders"`
	AffectedCustomers int     `json:"affected_customers"`
	OnTimePct         float64 `json:"on_time_pct"`
	LateOrders        int     `json:"late_orders"`
	AvailableStock    int     `json:"available_stock"`
	Recovered         int     `json:"recovered"`
	Missing           int     `json:"missing"`
}

// Options tune a planning run.
type Options struct {
	// HorizonDays bounds which open orders count as impacted. Zero means 7.
	HorizonDays int
	// BlockedRoutes are origin->dest lanes excluded from sourcing.
	BlockedRoutes [][2]string
	// Now anchors the run; zero means time.Now in UTC.
	Now time.Time
}

func (o Options) now() time.Time {
	if o.Now.IsZero() {
		return time.Now().UTC()
	}
	return o.Now.UTC()
}

func (o Options) horizon() time.Duration {
	days := o.HorizonDays
	if days <= 0 {
		days = defaultHorizonDays
	}
	return time.Duration(days) * 24 * time.Hour
}

func (o Options) blocked(source, dest string) bool {
	for _, lane := range o.BlockedRoutes {
		if lane[0] == source && lane[1] == dest {
			return true
		}
	}
	return false
}

// PlanForDelay allocates remaining stock to the impacted orders of a SKU and
// falls back to production at the fastest capable plant. Orders are served
// greedily in need-by order: stock at the destination plant first, then the
// nearest plant with stock, then produce-and-ship.
func PlanForDelay(ev DelayEvent, ds *dataset.Dataset, opts Options) ([]Row, KPI) {
	now := opts.now()
	end := now.Add(opts.horizon())

	var impacted []dataset.Order
	for _, o := range ds.OrdersForSKU(ev.SKU) {
		if !o.NeedBy.Before(now) && !o.NeedBy.After(end) {
			impacted = append(impacted, o)
		}
	}

	remaining := ds.StockByPlant(ev.SKU)
	// Stock at the disrupted origin is what just became unavailable.
	delete(remaining, ev.Origin)
	available := 0
	for _, qty := range remaining {
		available += qty
	}

	kpi := KPI{
		AffectedOrders: len(impacted),
		AvailableStock: available,
		Missing:        ev.QtyUnavailable,
	}
	if len(impacted) == 0 {
		kpi.OnTimePct = 100
		return nil, kpi
	}

	leadTimes := ds.LeadTimes(ev.SKU)
	customers := make(map[string]struct{}, len(impacted))

	rows := make([]Row, 0, len(impacted))
	for _, order := range impacted {
		customers[order.CustomerID] = struct{}{}
		row := Row{
			OrderID:    order.OrderID,
			CustomerID: order.CustomerID,
			SKU:        order.SKU,
			Qty:        order.Qty,
			DestLocID:  order.DestLocID,
			Strategy:   StrategyNone,
		}

		if source, ok := pickStockSource(ds, remaining, order, opts); ok {
			take := min(order.Qty, remaining[source])
			remaining[source] -= take
			if remaining[source] <= 0 {
				delete(remaining, source)
			}
			kpi.Recovered += take

			row.SourceLocID = source
			row.Strategy = StrategyStockNow
			row.ETA = now.Add(transit(ds, source, order.DestLocID))
		} else if source, lt, ok := pickProducer(leadTimes, order.DestLocID, opts); ok {
			row.SourceLocID = source
			row.Strategy = StrategyProduce
			row.ETA = now.Add(time.Duration(lt*float64(time.Hour))).Add(transit(ds, source, order.DestLocID))
		}

		if row.Strategy == StrategyNone {
			kpi.LateOrders++
		} else {
			row.LatenessH = row.ETA.Sub(order.NeedBy).Hours()
			if row.LatenessH < 0 {
				row.LatenessH = 0
			}
			if row.LatenessH > onTimeToleranceH {
				kpi.LateOrders++
			}
		}
		rows = append(rows, row)
	}

	kpi.AffectedCustomers = len(customers)
	kpi.OnTimePct = round2(float64(len(rows)-kpi.LateOrders) / float64(len(rows)) * 100)
	if kpi.Recovered >= ev.QtyUnavailable {
		kpi.Missing = 0
	} else {
		kpi.Missing = ev.QtyUnavailable - kpi.Recovered
	}
	return rows, kpi
}

// pickStockSource prefers stock at the destination plant, then the nearest
// plant with stock. Blocked lanes are skipped.
func pickStockSource(ds *dataset.Dataset, remaining map[string]int, order dataset.Order, opts Options) (string, bool) {
	if remaining[order.DestLocID] > 0 && !opts.blocked(order.DestLocID, order.DestLocID) {
		return order.DestLocID, true
	}

	type candidate struct {
		loc  string
		dist float64
		qty  int
	}
	var candidates []candidate
	for loc, qty := range remaining {
		if qty <= 0 || opts.blocked(loc, order.DestLocID) {
			continue
		}
		candidates = append(candidates, candidate{
			loc:  loc,
			dist: laneDistance(ds, loc, order.DestLocID),
			qty:  qty,
		})
	}
	if len(candidates) == 0 {
		return "", false
	}
	sort.Slice(candidates, func(i, j int) bool {
		if candidates[i].dist != candidates[j].dist {
			return candidates[i].dist < candidates[j].dist
		}
		if candidates[i].qty != candidates[j].qty {
			return candidates[i].qty > candidates[j].qty
		}
		return candidates[i].loc < candidates[j].loc
	})
	return candidates[0].loc, true
}

// pickProducer returns the capable plant with the shortest lead time.
func pickProducer(leadTimes map[string]float64, dest string, opts Options) (string, float64, bool) {
	best := ""
	bestLT := 0.0
	for loc, lt := range leadTimes {
		if opts.blocked(loc, dest) {
			continue
		}
		if best == "" || lt < bestLT || (lt == bestLT && loc < best) {
			best, bestLT = loc, lt
		}
	}
	return best, bestLT, best != ""
}

func laneDistance(ds *dataset.Dataset, from, to string) float64 {
	a, okA := ds.PlantByID(from)
	b, okB := ds.PlantByID(to)
	if !okA || !okB || (a.Lat == 0 && a.Lon == 0) || (b.Lat == 0 && b.Lon == 0) {
		return defaultTransitH * dataset.SpeedKmh
	}
	return HaversineKm(a.Lat, a.Lon, b.Lat, b.Lon)
}

func transit(ds *dataset.Dataset, from, to string) time.Duration {
	if from == to {
		return 0
	}
	hours := laneDistance(ds, from, to) / dataset.SpeedKmh
	return time.Duration(hours * float64(time.Hour))
}

func round2(v float64) float64 {
	return float64(int(v*100+0.5)) / 100
}
