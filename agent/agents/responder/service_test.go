package responder

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/worraphat/jarvis/agent/contract"
	"github.com/worraphat/jarvis/dataset"
)

type fakeFallback struct {
	answer string
	err    error
	calls  int
	user   string
}

func (f *fakeFallback) Chat(_ context.Context, _ string, _ []contract.Turn, user string) (string, error) {
	f.calls++
	f.user = user
	return f.answer, f.err
}

func respondDataset() *dataset.Dataset {
	now := time.Now().UTC()
	return &dataset.Dataset{
		Plants: []dataset.Plant{
			{LocID: "plant_201", Lat: 55.0, Lon: 9.0},
			{LocID: "plant_202", Lat: 55.5, Lon: 9.5},
		},
		Inventory: []dataset.InventoryRow{
			{LocID: "plant_201", SKU: "product_1", OnHand: 10},
		},
		Orders: []dataset.Order{
			{OrderID: "o1", CustomerID: "c1", SKU: "product_1", Qty: 4,
				NeedBy: now.Add(48 * time.Hour), DestLocID: "plant_202"},
		},
		PlantMaterial: []dataset.PlantMaterial{
			{SKU: "product_1", LocID: "plant_202", LeadTimeH: 48},
		},
		BOM: []dataset.BOMEdge{
			{Component: "product_9", Material: "product_1"},
		},
	}
}

func TestNewRequiresDataset(t *testing.T) {
	t.Parallel()

	if _, err := New(nil, nil); err == nil {
		t.Fatal("want error for nil dataset")
	}
}

func TestRespondEmptyMessage(t *testing.T) {
	t.Parallel()

	r, err := New(respondDataset(), nil)
	if err != nil {
		t.Fatal(err)
	}

	if _, err := r.Respond(context.Background(), "   ", nil); !errors.Is(err, ErrEmptyMessage) {
		t.Fatalf("err = %v, want ErrEmptyMessage", err)
	}
}

func TestRespondSKUMissing(t *testing.T) {
	t.Parallel()

	r, err := New(respondDataset(), nil)
	if err != nil {
		t.Fatal(err)
	}

	reply, err := r.Respond(context.Background(), "product_1 is missing", nil)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(reply.Text, "Missing SKU: product_1") {
		t.Fatalf("reply = %q", reply.Text)
	}
	if !strings.Contains(reply.Text, "Stock on hand at: plant_201") {
		t.Fatalf("stock plants missing from reply = %q", reply.Text)
	}
	if len(reply.Suggestions) == 0 {
		t.Fatal("no suggestions attached")
	}
}

func TestRespondComponentMissingIncludesProductionHint(t *testing.T) {
	t.Parallel()

	r, err := New(respondDataset(), nil)
	if err != nil {
		t.Fatal(err)
	}

	reply, err := r.Respond(context.Background(), "component product_9 is missing", nil)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(reply.Text, "Component missing: product_9") {
		t.Fatalf("reply = %q", reply.Text)
	}
	// product_1 is the only parent with open orders; plant_202 can assemble
	// it in 48h.
	if !strings.Contains(reply.Text, "Assemble: product_1 at plant_202 (LT≈48h).") {
		t.Fatalf("assembly hint missing from reply = %q", reply.Text)
	}
}

func TestRespondCoverage(t *testing.T) {
	t.Parallel()

	r, err := New(respondDataset(), nil)
	if err != nil {
		t.Fatal(err)
	}

	reply, err := r.Respond(context.Background(), "predict stockouts for the next 7 days", nil)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(reply.Text, "Coverage alerts next 7 days:") {
		t.Fatalf("reply = %q", reply.Text)
	}
}

func TestRespondRouteBlockNeedsPlants(t *testing.T) {
	t.Parallel()

	r, err := New(respondDataset(), nil)
	if err != nil {
		t.Fatal(err)
	}

	reply, err := r.Respond(context.Background(), "the route is blocked", nil)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(reply.Text, "Need origin and destination plants") {
		t.Fatalf("reply = %q", reply.Text)
	}
}

func TestRespondFallbackWithoutModel(t *testing.T) {
	t.Parallel()

	r, err := New(respondDataset(), nil)
	if err != nil {
		t.Fatal(err)
	}

	reply, err := r.Respond(context.Background(), "hello there", nil)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(reply.Text, "Please include exact SKU or plant codes.") {
		t.Fatalf("reply = %q", reply.Text)
	}
}

func TestRespondFallbackUsesModel(t *testing.T) {
	t.Parallel()

	fb := &fakeFallback{answer: "Hi, I can help with supply disruptions."}
	r, err := New(respondDataset(), fb)
	if err != nil {
		t.Fatal(err)
	}

	reply, err := r.Respond(context.Background(), "hello there", nil)
	if err != nil {
		t.Fatal(err)
	}
	if reply.Text != fb.answer {
		t.Fatalf("reply = %q", reply.Text)
	}
	if fb.calls != 1 || fb.user != "hello there" {
		t.Fatalf("fallback called %d times with %q", fb.calls, fb.user)
	}
}

func TestRespondFallbackModelFailureUsesFixedReply(t *testing.T) {
	t.Parallel()

	fb := &fakeFallback{err: errors.New("rate limited")}
	r, err := New(respondDataset(), fb)
	if err != nil {
		t.Fatal(err)
	}

	reply, err := r.Respond(context.Background(), "hello there", nil)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(reply.Text, "Please include exact SKU or plant codes.") {
		t.Fatalf("reply = %q", reply.Text)
	}
}

func TestRespondPlanningIntentSkipsFallback(t *testing.T) {
	t.Parallel()

	fb := &fakeFallback{answer: "should not be used"}
	r, err := New(respondDataset(), fb)
	if err != nil {
		t.Fatal(err)
	}

	if _, err := r.Respond(context.Background(), "product_1 is missing", nil); err != nil {
		t.Fatal(err)
	}
	if fb.calls != 0 {
		t.Fatalf("fallback called %d times for a planning intent", fb.calls)
	}
}
