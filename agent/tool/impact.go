// Package tool implements the planning operations the responder dispatches
// to: impact lookups, recovery recommendations, stockout and route-block
// simulations, and coverage prediction.
package tool

import (
	"sort"

	"github.com/worraphat/jarvis/agent/contract"
	"github.com/worraphat/jarvis/dataset"
)

const maxListedSKUs = 200

// ListSKUs returns up to 200 SKUs present in both orders and inventory.
func ListSKUs(ds *dataset.Dataset) []string {
	inInventory := make(map[string]struct{}, len(ds.Inventory))
	for _, r := range ds.Inventory {
		inInventory[r.SKU] = struct{}{}
	}

	seen := make(map[string]struct{})
	var out []string
	for _, o := range ds.Orders {
		if _, ok := inInventory[o.SKU]; !ok {
			continue
		}
		if _, dup := seen[o.SKU]; dup {
			continue
		}
		seen[o.SKU] = struct{}{}
		out = append(out, o.SKU)
	}
	sort.Strings(out)
	if len(out) > maxListedSKUs {
		out = out[:maxListedSKUs]
	}
	return out
}

// PlantsForSKU returns plant ids currently holding stock for the SKU.
func PlantsForSKU(ds *dataset.Dataset, sku string) []string {
	return ds.PlantsWithStock(sku)
}

// ImpactedOrdersBySKU lists open orders hit if a finished-good SKU is
// missing, in need-by order.
func ImpactedOrdersBySKU(ds *dataset.Dataset, sku string) []dataset.Order {
	return ds.OrdersForSKU(sku)
}

// ComponentImpact is the result of expanding a missing component through the
// BOM to the finished-good orders it blocks.
type ComponentImpact struct {
	Component  string          `json:"component"`
	MappedSKUs []string        `json:"mapped_skus"`
	Orders     []dataset.Order `json:"orders"`
}

// ImpactedOrdersByComponent expands a missing component via the BOM and
// lists the affected finished-good orders.
func ImpactedOrdersByComponent(ds *dataset.Dataset, component string) (ComponentImpact, error) {
	if len(ds.BOM) == 0 {
		return ComponentImpact{}, contract.ErrBOMNotLoaded
	}

	skus := ds.ProductsUsing(component)
	impact := ComponentImpact{Component: component, MappedSKUs: skus}
	for _, sku := range skus {
		impact.Orders = append(impact.Orders, ds.OrdersForSKU(sku)...)
	}
	return impact, nil
}

// UniqueCustomers counts distinct customers across order lines.
func UniqueCustomers(orders []dataset.Order) int {
	seen := make(map[string]struct{}, len(orders))
	for _, o := range orders {
		seen[o.CustomerID] = struct{}{}
	}
	return len(seen)
}
