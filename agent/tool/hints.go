package tool

import (
	"fmt"

	"github.com/worraphat/jarvis/agent/contract"
	"github.com/worraphat/jarvis/dataset"
)

// PlantHint points at the plant that can produce a code the fastest.
type PlantHint struct {
	SKU       string  `json:"sku,omitempty"`
	Plant     string  `json:"plant,omitempty"`
	LeadTimeH float64 `json:"lead_time_h"`
}

// ProductionHint suggests where to produce a missing component and where to
// assemble its parent products that have open orders.
type ProductionHint struct {
	Component string      `json:"component"`
	Parents   int         `json:"parents"`
	Orders    int         `json:"orders"`
	Fastest   PlantHint   `json:"hint_component"`
	Assembly  []PlantHint `json:"hint_parents,omitempty"`
}

// ComponentProductionHint finds the fastest plant for the component itself
// and the fastest assembly plant per affected parent SKU.
func ComponentProductionHint(ds *dataset.Dataset, component string) (ProductionHint, error) {
	if len(ds.BOM) == 0 {
		return ProductionHint{}, contract.ErrBOMNotLoaded
	}

	parents := ds.ProductsUsing(component)
	if len(parents) == 0 {
		return ProductionHint{}, fmt.Errorf("no parent products found for component %s", component)
	}

	hint := ProductionHint{
		Component: component,
		Parents:   len(parents),
		Fastest:   fastestPlant(ds, component),
	}

	withOrders := make(map[string]struct{})
	for _, sku := range parents {
		orders := ds.OrdersForSKU(sku)
		if len(orders) == 0 {
			continue
		}
		hint.Orders += len(orders)
		withOrders[sku] = struct{}{}
	}
	for _, sku := range parents {
		if _, ok := withOrders[sku]; !ok {
			continue
		}
		h := fastestPlant(ds, sku)
		h.SKU = sku
		hint.Assembly = append(hint.Assembly, h)
	}
	return hint, nil
}

func fastestPlant(ds *dataset.Dataset, sku string) PlantHint {
	best := PlantHint{LeadTimeH: defaultLeadTimeH}
	for loc, lt := range ds.LeadTimes(sku) {
		if best.Plant == "" || lt < best.LeadTimeH || (lt == best.LeadTimeH && loc < best.Plant) {
			best.Plant = loc
			best.LeadTimeH = lt
		}
	}
	return best
}
