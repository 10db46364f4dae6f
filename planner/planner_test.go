package planner

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/worraphat/jarvis/dataset"
)

var testNow = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

func testDataset() *dataset.Dataset {
	return &dataset.Dataset{
		Plants: []dataset.Plant{
			{LocID: "plant_201", Lat: 55.0, Lon: 9.0},
			{LocID: "plant_202", Lat: 55.5, Lon: 9.5},
			{LocID: "plant_203", Lat: 40.0, Lon: -3.0},
		},
		Inventory: []dataset.InventoryRow{
			{LocID: "plant_201", SKU: "product_1", OnHand: 10},
			{LocID: "plant_202", SKU: "product_1", OnHand: 5},
		},
		Orders: []dataset.Order{
			{OrderID: "o1", CustomerID: "c1", SKU: "product_1", Qty: 4,
				NeedBy: testNow.Add(48 * time.Hour), DestLocID: "plant_202"},
			{OrderID: "o2", CustomerID: "c2", SKU: "product_1", Qty: 6,
				NeedBy: testNow.Add(72 * time.Hour), DestLocID: "plant_203"},
		},
		PlantMaterial: []dataset.PlantMaterial{
			{SKU: "product_1", LocID: "plant_203", LeadTimeH: 48},
			{SKU: "product_1", LocID: "plant_202", LeadTimeH: 96},
		},
	}
}

func TestPlanForDelayPrefersDestinationStock(t *testing.T) {
	t.Parallel()

	ds := testDataset()
	rows, kpi := PlanForDelay(DelayEvent{SKU: "product_1", QtyUnavailable: 10, Origin: "plant_201"},
		ds, Options{Now: testNow})

	require.Len(t, rows, 2)

	// o1 ships from its own destination plant, arriving immediately.
	assert.Equal(t, "o1", rows[0].OrderID)
	assert.Equal(t, StrategyStockNow, rows[0].Strategy)
	assert.Equal(t, "plant_202", rows[0].SourceLocID)
	assert.Equal(t, testNow, rows[0].ETA)
	assert.Zero(t, rows[0].LatenessH)

	assert.Equal(t, 2, kpi.AffectedOrders)
	assert.Equal(t, 2, kpi.AffectedCustomers)
	// plant_201 stock vanished with the disruption.
	assert.Equal(t, 5, kpi.AvailableStock)
}

func TestPlanForDelayExcludesOriginStock(t *testing.T) {
	t.Parallel()

	ds := testDataset()
	// Only plant_201 holds stock; it is the disrupted origin.
	ds.Inventory = []dataset.InventoryRow{
		{LocID: "plant_201", SKU: "product_1", OnHand: 100},
	}

	rows, kpi := PlanForDelay(DelayEvent{SKU: "product_1", QtyUnavailable: 100, Origin: "plant_201"},
		ds, Options{Now: testNow})

	require.Len(t, rows, 2)
	assert.Zero(t, kpi.AvailableStock)
	assert.Zero(t, kpi.Recovered)
	for _, row := range rows {
		assert.Equal(t, StrategyProduce, row.Strategy)
		assert.Equal(t, "plant_203", row.SourceLocID, "fastest lead time wins")
	}
}

func TestPlanForDelayProduceETAIncludesLeadTimeAndTransit(t *testing.T) {
	t.Parallel()

	ds := testDataset()
	ds.Inventory = nil

	rows, _ := PlanForDelay(DelayEvent{SKU: "product_1", Origin: "plant_201"},
		ds, Options{Now: testNow})

	require.Len(t, rows, 2)
	// o2's destination is the producing plant, so transit is zero and the
	// ETA is exactly lead time out.
	var o2 Row
	for _, r := range rows {
		if r.OrderID == "o2" {
			o2 = r
		}
	}
	assert.Equal(t, StrategyProduce, o2.Strategy)
	assert.Equal(t, testNow.Add(48*time.Hour), o2.ETA)
}

func TestPlanForDelayNoFeasibleSource(t *testing.T) {
	t.Parallel()

	ds := testDataset()
	ds.Inventory = nil
	ds.PlantMaterial = nil

	rows, kpi := PlanForDelay(DelayEvent{SKU: "product_1", QtyUnavailable: 7, Origin: "plant_201"},
		ds, Options{Now: testNow})

	require.Len(t, rows, 2)
	for _, row := range rows {
		assert.Equal(t, StrategyNone, row.Strategy)
		assert.Empty(t, row.SourceLocID)
		assert.True(t, row.ETA.IsZero())
	}
	assert.Equal(t, 2, kpi.LateOrders)
	assert.Zero(t, kpi.OnTimePct)
	assert.Equal(t, 7, kpi.Missing)
}

func TestPlanForDelayBlockedRouteSkipsLane(t *testing.T) {
	t.Parallel()

	ds := testDataset()
	ds.Orders = ds.Orders[:1] // only o1, dest plant_202

	rows, _ := PlanForDelay(DelayEvent{SKU: "product_1", Origin: "plant_201"}, ds, Options{
		Now:           testNow,
		BlockedRoutes: [][2]string{{"plant_202", "plant_202"}},
	})

	require.Len(t, rows, 1)
	// Destination stock is blocked, so nothing remains within reach except
	// production.
	assert.NotEqual(t, "plant_202", rows[0].SourceLocID)
}

func TestPlanForDelayHorizonExcludesFarOrders(t *testing.T) {
	t.Parallel()

	ds := testDataset()
	ds.Orders = append(ds.Orders, dataset.Order{
		OrderID: "o_far", CustomerID: "c3", SKU: "product_1", Qty: 1,
		NeedBy: testNow.Add(30 * 24 * time.Hour), DestLocID: "plant_202",
	})

	rows, kpi := PlanForDelay(DelayEvent{SKU: "product_1", Origin: "plant_201"},
		ds, Options{Now: testNow, HorizonDays: 7})

	assert.Len(t, rows, 2)
	assert.Equal(t, 2, kpi.AffectedOrders)
	for _, row := range rows {
		assert.NotEqual(t, "o_far", row.OrderID)
	}
}

func TestPlanForDelayNoImpactedOrders(t *testing.T) {
	t.Parallel()

	ds := testDataset()
	rows, kpi := PlanForDelay(DelayEvent{SKU: "product_unknown", Origin: "plant_201"},
		ds, Options{Now: testNow})

	assert.Empty(t, rows)
	assert.Zero(t, kpi.AffectedOrders)
	assert.Equal(t, 100.0, kpi.OnTimePct)
}

func TestPlanForDelayRecoveredCapsMissing(t *testing.T) {
	t.Parallel()

	ds := testDataset()
	rows, kpi := PlanForDelay(DelayEvent{SKU: "product_1", QtyUnavailable: 3, Origin: "plant_201"},
		ds, Options{Now: testNow})

	require.Len(t, rows, 2)
	assert.GreaterOrEqual(t, kpi.Recovered, 3)
	assert.Zero(t, kpi.Missing)
}
