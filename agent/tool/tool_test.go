package tool

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/worraphat/jarvis/agent/contract"
	"github.com/worraphat/jarvis/dataset"
	"github.com/worraphat/jarvis/planner"
)

var simNow = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

func fixtureDataset() *dataset.Dataset {
	return &dataset.Dataset{
		Plants: []dataset.Plant{
			{LocID: "plant_201", Lat: 55.0, Lon: 9.0},
			{LocID: "plant_202", Lat: 55.5, Lon: 9.5},
		},
		Inventory: []dataset.InventoryRow{
			{LocID: "plant_201", SKU: "product_1", OnHand: 10},
			{LocID: "plant_202", SKU: "product_2", OnHand: 1},
		},
		Orders: []dataset.Order{
			{OrderID: "o1", CustomerID: "c1", SKU: "product_1", Qty: 4,
				NeedBy: simNow.Add(48 * time.Hour), DestLocID: "plant_201"},
			{OrderID: "o2", CustomerID: "c1", SKU: "product_1", Qty: 2,
				NeedBy: simNow.Add(24 * time.Hour), DestLocID: "plant_202"},
			{OrderID: "o3", CustomerID: "c2", SKU: "product_2", Qty: 5,
				NeedBy: simNow.Add(72 * time.Hour), DestLocID: "plant_202"},
		},
		PlantMaterial: []dataset.PlantMaterial{
			{SKU: "product_1", LocID: "plant_202", LeadTimeH: 48},
			{SKU: "product_2", LocID: "plant_201", LeadTimeH: 24},
		},
		BOM: []dataset.BOMEdge{
			{Component: "product_9", Material: "product_1"},
			{Component: "product_9", Material: "product_2"},
		},
	}
}

func TestListSKUsIntersectsOrdersAndInventory(t *testing.T) {
	t.Parallel()

	ds := fixtureDataset()
	ds.Orders = append(ds.Orders, dataset.Order{OrderID: "o4", SKU: "product_no_stock"})

	got := ListSKUs(ds)
	want := []string{"product_1", "product_2"}
	if len(got) != len(want) {
		t.Fatalf("ListSKUs = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("ListSKUs = %v, want %v", got, want)
		}
	}
}

func TestPlantsForSKU(t *testing.T) {
	t.Parallel()

	ds := fixtureDataset()
	if got := PlantsForSKU(ds, "product_1"); len(got) != 1 || got[0] != "plant_201" {
		t.Fatalf("PlantsForSKU(product_1) = %v", got)
	}
	if got := PlantsForSKU(ds, "product_404"); len(got) != 0 {
		t.Fatalf("PlantsForSKU(product_404) = %v", got)
	}
}

func TestImpactedOrdersBySKUSortedByNeedBy(t *testing.T) {
	t.Parallel()

	orders := ImpactedOrdersBySKU(fixtureDataset(), "product_1")
	if len(orders) != 2 {
		t.Fatalf("got %d orders, want 2", len(orders))
	}
	if orders[0].OrderID != "o2" || orders[1].OrderID != "o1" {
		t.Fatalf("orders not in need-by order: %v", orders)
	}
	if got := UniqueCustomers(orders); got != 1 {
		t.Fatalf("UniqueCustomers = %d, want 1", got)
	}
}

func TestImpactedOrdersByComponent(t *testing.T) {
	t.Parallel()

	impact, err := ImpactedOrdersByComponent(fixtureDataset(), "product_9")
	if err != nil {
		t.Fatal(err)
	}
	if len(impact.MappedSKUs) != 2 {
		t.Fatalf("mapped SKUs = %v", impact.MappedSKUs)
	}
	if len(impact.Orders) != 3 {
		t.Fatalf("got %d orders, want 3", len(impact.Orders))
	}
}

func TestImpactedOrdersByComponentWithoutBOM(t *testing.T) {
	t.Parallel()

	ds := fixtureDataset()
	ds.BOM = nil

	_, err := ImpactedOrdersByComponent(ds, "product_9")
	if !errors.Is(err, contract.ErrBOMNotLoaded) {
		t.Fatalf("err = %v, want ErrBOMNotLoaded", err)
	}
}

func TestRecommendMissingSKUPrefersStock(t *testing.T) {
	t.Parallel()

	rec := RecommendMissingSKU(fixtureDataset(), "product_1", simNow)

	if rec.AffectedOrders != 2 || rec.AffectedCustomers != 1 {
		t.Fatalf("affected = %d orders / %d customers", rec.AffectedOrders, rec.AffectedCustomers)
	}
	if !strings.HasPrefix(rec.RecommendedAction, "Ship now from plant_201") {
		t.Fatalf("recommended = %q", rec.RecommendedAction)
	}
	if len(rec.PerOrder) != 2 {
		t.Fatalf("per-order lines = %d", len(rec.PerOrder))
	}
	for _, a := range rec.PerOrder {
		if a.Strategy == planner.StrategyStockNow && !strings.HasPrefix(a.Action, "Ship now from") {
			t.Fatalf("action = %q for strategy %q", a.Action, a.Strategy)
		}
	}
}

func TestRecommendMissingSKUFallsBackToProduce(t *testing.T) {
	t.Parallel()

	ds := fixtureDataset()
	ds.Inventory = nil

	rec := RecommendMissingSKU(ds, "product_1", simNow)
	if !strings.HasPrefix(rec.RecommendedAction, "Produce at plant_202") {
		t.Fatalf("recommended = %q", rec.RecommendedAction)
	}
}

func TestRecommendMissingSKUNoOrders(t *testing.T) {
	t.Parallel()

	rec := RecommendMissingSKU(fixtureDataset(), "product_404", simNow)
	if rec.RecommendedAction != "No open orders found for this SKU." {
		t.Fatalf("recommended = %q", rec.RecommendedAction)
	}
	if len(rec.PerOrder) != 0 {
		t.Fatalf("per-order lines = %d, want 0", len(rec.PerOrder))
	}
}

func TestSimulateStockoutExpandsComponent(t *testing.T) {
	t.Parallel()

	res := SimulateStockout(fixtureDataset(), "product_9", simNow)

	if res.Role != dataset.BOMRoleComponent {
		t.Fatalf("role = %q", res.Role)
	}
	if len(res.SKUs) != 2 {
		t.Fatalf("mapped SKUs = %v", res.SKUs)
	}
	// All three open orders lose their stock source and get replanned.
	if len(res.Rows) != 3 {
		t.Fatalf("rows = %d, want 3", len(res.Rows))
	}
	for _, row := range res.Rows {
		if row.Strategy == planner.StrategyStockNow {
			t.Fatalf("stock-now strategy survived a full stockout: %+v", row)
		}
	}
}

func TestSimulateStockoutUnknownCode(t *testing.T) {
	t.Parallel()

	res := SimulateStockout(fixtureDataset(), "product_404", simNow)
	if res.Message == "" || len(res.Rows) != 0 {
		t.Fatalf("want a message and no rows, got %+v", res)
	}
}

func TestSimulateRouteBlockAllSKUsToDest(t *testing.T) {
	t.Parallel()

	res := SimulateRouteBlock(fixtureDataset(), "plant_201", "plant_202", "", simNow)

	if res.Blocked != [2]string{"plant_201", "plant_202"} {
		t.Fatalf("blocked = %v", res.Blocked)
	}
	// o2 (product_1) and o3 (product_2) deliver to plant_202.
	if len(res.Rows) == 0 {
		t.Fatalf("no rows: %+v", res)
	}
	for _, row := range res.Rows {
		if row.SourceLocID == "plant_201" && row.DestLocID == "plant_202" {
			t.Fatalf("blocked lane used: %+v", row)
		}
	}
}

func TestSimulateRouteBlockNoOrdersToDest(t *testing.T) {
	t.Parallel()

	res := SimulateRouteBlock(fixtureDataset(), "plant_201", "plant_404", "", simNow)
	if res.Message == "" || len(res.Rows) != 0 {
		t.Fatalf("want a message and no rows, got %+v", res)
	}
}

func TestCoverageFlagsShortfalls(t *testing.T) {
	t.Parallel()

	alerts := Coverage(fixtureDataset(), 7, simNow)
	if len(alerts) != 2 {
		t.Fatalf("alerts = %v", alerts)
	}
	// product_2 has demand 5 against stock 1, the worst gap comes first.
	if alerts[0].SKU != "product_2" || !alerts[0].Risk || alerts[0].Gap != -4 {
		t.Fatalf("alerts[0] = %+v", alerts[0])
	}
	if alerts[1].SKU != "product_1" || alerts[1].Risk {
		t.Fatalf("alerts[1] = %+v", alerts[1])
	}
}

func TestComponentProductionHint(t *testing.T) {
	t.Parallel()

	hint, err := ComponentProductionHint(fixtureDataset(), "product_9")
	if err != nil {
		t.Fatal(err)
	}
	if hint.Parents != 2 || hint.Orders != 3 {
		t.Fatalf("hint = %+v", hint)
	}
	// product_9 itself has no plant_material entry, the default applies.
	if hint.Fastest.Plant != "" || hint.Fastest.LeadTimeH != 72.0 {
		t.Fatalf("fastest = %+v", hint.Fastest)
	}
	if len(hint.Assembly) != 2 {
		t.Fatalf("assembly hints = %v", hint.Assembly)
	}
}
