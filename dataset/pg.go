package dataset

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/driver/pgdriver"
)

// PGConfig configures the optional Postgres dataset source. When DSN is empty
// the service loads CSVs instead.
type PGConfig struct {
	DSN     string        `envconfig:"DSN" split_words:"true"`
	Timeout time.Duration `envconfig:"TIMEOUT" split_words:"true" default:"15s"`
}

func (c PGConfig) Enabled() bool {
	return strings.TrimSpace(c.DSN) != ""
}

type pgInventoryRow struct {
	bun.BaseModel `bun:"table:inventory"`

	LocID  string `bun:"loc_id"`
	SKU    string `bun:"sku"`
	OnHand int    `bun:"on_hand"`
}

type pgPlant struct {
	bun.BaseModel `bun:"table:plants"`

	LocID string  `bun:"loc_id,pk"`
	Lat   float64 `bun:"lat"`
	Lon   float64 `bun:"lon"`
}

type pgOrder struct {
	bun.BaseModel `bun:"table:orders"`

	OrderID    string    `bun:"order_id,pk"`
	CustomerID string    `bun:"customer_id"`
	SKU        string    `bun:"sku"`
	Qty        int       `bun:"qty"`
	NeedBy     time.Time `bun:"need_by_ts_utc"`
	DestLocID  string    `bun:"dest_loc_id"`
}

type pgPlantMaterial struct {
	bun.BaseModel `bun:"table:plant_material"`

	SKU       string  `bun:"sku"`
	LocID     string  `bun:"loc_id"`
	LeadTimeH float64 `bun:"lead_time_h"`
}

type pgBOMEdge struct {
	bun.BaseModel `bun:"table:material_component"`

	Component string `bun:"component"`
	Material  string `bun:"material"`
}

// LoadPostgres reads the five relations from Postgres. The schema mirrors the
// normalized CSV shape, so no aliasing is needed here.
func LoadPostgres(ctx context.Context, cfg PGConfig) (*Dataset, error) {
	if !cfg.Enabled() {
		return nil, errors.New("postgres dsn is required")
	}

	sqldb := sql.OpenDB(pgdriver.NewConnector(
		pgdriver.WithDSN(strings.TrimSpace(cfg.DSN)),
		pgdriver.WithTimeout(cfg.Timeout),
	))
	db := bun.NewDB(sqldb, pgdialect.New())
	defer db.Close()

	ctx, cancel := context.WithTimeout(ctx, cfg.Timeout)
	defer cancel()

	var (
		inv    []pgInventoryRow
		plants []pgPlant
		orders []pgOrder
		pm     []pgPlantMaterial
		bom    []pgBOMEdge
	)
	if err := db.NewSelect().Model(&inv).Scan(ctx); err != nil {
		return nil, fmt.Errorf("select inventory: %w", err)
	}
	if err := db.NewSelect().Model(&plants).Scan(ctx); err != nil {
		return nil, fmt.Errorf("select plants: %w", err)
	}
	if err := db.NewSelect().Model(&orders).Order("need_by_ts_utc ASC").Scan(ctx); err != nil {
		return nil, fmt.Errorf("select orders: %w", err)
	}
	if err := db.NewSelect().Model(&pm).Scan(ctx); err != nil {
		return nil, fmt.Errorf("select plant_material: %w", err)
	}
	if err := db.NewSelect().Model(&bom).Scan(ctx); err != nil {
		// BOM is optional in the CSV path too.
		bom = nil
	}

	ds := &Dataset{}
	for _, r := range inv {
		ds.Inventory = append(ds.Inventory, InventoryRow{LocID: r.LocID, SKU: r.SKU, OnHand: r.OnHand})
	}
	for _, p := range plants {
		ds.Plants = append(ds.Plants, Plant{LocID: p.LocID, Lat: p.Lat, Lon: p.Lon})
	}
	for _, o := range orders {
		ds.Orders = append(ds.Orders, Order{
			OrderID:    o.OrderID,
			CustomerID: o.CustomerID,
			SKU:        o.SKU,
			Qty:        o.Qty,
			NeedBy:     o.NeedBy.UTC(),
			DestLocID:  o.DestLocID,
		})
	}
	for _, r := range pm {
		ds.PlantMaterial = append(ds.PlantMaterial, PlantMaterial{SKU: r.SKU, LocID: r.LocID, LeadTimeH: r.LeadTimeH})
	}
	for _, e := range bom {
		ds.BOM = append(ds.BOM, BOMEdge{Component: e.Component, Material: e.Material})
	}
	return ds, nil
}
