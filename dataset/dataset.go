// Package dataset loads and normalizes the supply chain reference data the
// planner cross-references: inventory, plants, open orders, plant production
// capabilities, and the bill of materials.
package dataset

import (
	"sort"
	"time"
)

// Lane speed for straight-line ETA (km/h). One mode for all lanes.
const SpeedKmh = 700.0

// SLA target for the on-time KPI.
const SLAOnTimeTarget = 0.95

// InventoryRow is on-hand stock of one SKU at one plant.
type InventoryRow struct {
	LocID  string
	SKU    string
	OnHand int
}

// Plant is a production or distribution site with coordinates.
type Plant struct {
	LocID string
	Lat   float64
	Lon   float64
}

// Order is one open customer order line.
type Order struct {
	OrderID    string    `json:"order_id"`
	CustomerID string    `json:"customer_id"`
	SKU        string    `json:"sku"`
	Qty        int       `json:"qty"`
	NeedBy     time.Time `json:"need_by_ts_utc"`
	DestLocID  string    `json:"dest_loc_id"`
}

// PlantMaterial says a plant can produce a SKU with the given lead time.
type PlantMaterial struct {
	SKU       string
	LocID     string
	LeadTimeH float64
}

// BOMEdge links a finished-good material to one of its components.
type BOMEdge struct {
	Component string
	Material  string
}

// Dataset is the full normalized reference data, held in memory for the
// lifetime of the process.
type Dataset struct {
	Inventory     []InventoryRow
	Plants        []Plant
	Orders        []Order
	PlantMaterial []PlantMaterial
	BOM           []BOMEdge
}

// PlantByID returns the plant with the given loc id, if known.
func (d *Dataset) PlantByID(locID string) (Plant, bool) {
	for _, p := range d.Plants {
		if p.LocID == locID {
			return p, true
		}
	}
	return Plant{}, false
}

// OnHand returns total stock for a SKU across all plants.
func (d *Dataset) OnHand(sku string) int {
	total := 0
	for _, r := range d.Inventory {
		if r.SKU == sku {
			total += r.OnHand
		}
	}
	return total
}

// StockByPlant returns per-plant stock for a SKU, skipping zero rows.
func (d *Dataset) StockByPlant(sku string) map[string]int {
	out := make(map[string]int)
	for _, r := range d.Inventory {
		if r.SKU == sku && r.OnHand > 0 {
			out[r.LocID] += r.OnHand
		}
	}
	return out
}

// PlantsWithStock returns sorted plant ids currently holding stock for a SKU.
func (d *Dataset) PlantsWithStock(sku string) []string {
	byPlant := d.StockByPlant(sku)
	out := make([]string, 0, len(byPlant))
	for loc := range byPlant {
		out = append(out, loc)
	}
	sort.Strings(out)
	return out
}

// OrdersForSKU returns open orders for the SKU in need-by order.
func (d *Dataset) OrdersForSKU(sku string) []Order {
	var out []Order
	for _, o := range d.Orders {
		if o.SKU == sku {
			out = append(out, o)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].NeedBy.Before(out[j].NeedBy) })
	return out
}

// ProductsUsing expands a component code to the sorted finished-good SKUs
// that depend on it directly or transitively.
func (d *Dataset) ProductsUsing(component string) []string {
	parents := make(map[string][]string, len(d.BOM))
	for _, e := range d.BOM {
		parents[e.Component] = append(parents[e.Component], e.Material)
	}

	seen := make(map[string]struct{})
	stack := []string{component}
	for len(stack) > 0 {
		node := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		for _, parent := range parents[node] {
			if _, ok := seen[parent]; ok {
				continue
			}
			seen[parent] = struct{}{}
			stack = append(stack, parent)
		}
	}

	out := make([]string, 0, len(seen))
	for sku := range seen {
		out = append(out, sku)
	}
	sort.Strings(out)
	return out
}

// BOMRole reports whether a code appears in the BOM as a component, a
// finished-good material, or not at all.
type BOMRole string

const (
	BOMRoleComponent BOMRole = "component"
	BOMRoleMaterial  BOMRole = "material"
	BOMRoleNone      BOMRole = "none"
)

func (d *Dataset) DetectBOMRole(code string) BOMRole {
	for _, e := range d.BOM {
		if e.Component == code {
			return BOMRoleComponent
		}
	}
	for _, e := range d.BOM {
		if e.Material == code {
			return BOMRoleMaterial
		}
	}
	return BOMRoleNone
}

// LeadTimes returns plant -> lead time hours for producing the SKU.
func (d *Dataset) LeadTimes(sku string) map[string]float64 {
	out := make(map[string]float64)
	for _, pm := range d.PlantMaterial {
		if pm.SKU == sku {
			out[pm.LocID] = pm.LeadTimeH
		}
	}
	return out
}

// Clone returns a deep copy, used by simulations that mutate stock.
func (d *Dataset) Clone() *Dataset {
	out := &Dataset{
		Inventory:     append([]InventoryRow(nil), d.Inventory...),
		Plants:        append([]Plant(nil), d.Plants...),
		Orders:        append([]Order(nil), d.Orders...),
		PlantMaterial: append([]PlantMaterial(nil), d.PlantMaterial...),
		BOM:           append([]BOMEdge(nil), d.BOM...),
	}
	return out
}
