package dataset

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
)

// Column aliases accepted per field, matched case-insensitively after
// trimming. The exported CSVs rename columns between extracts, so loading is
// deliberately forgiving.
var (
	inventoryStockCols = []string{"stock", "on_hand", "available_qty", "qty", "quantity", "balance"}
	inventorySKUCols   = []string{"product", "sku", "material", "product_id"}
	plantIDCols        = []string{"loc_id", "plant", "plant_id", "site", "location", "id"}
	latCols            = []string{"lat", "latitude", "y"}
	lonCols            = []string{"lon", "longitude", "long", "lng", "x"}
	orderSKUCols       = []string{"sku", "product", "material", "component"}
	orderQtyCols       = []string{"qty", "quantity", "order_qty"}
	orderDestCols      = []string{"dest_loc_id", "destination", "dest", "plant", "location", "site"}
	orderCustomerCols  = []string{"customer_id", "customer", "cust_id", "sold_to_party"}
	orderIDCols        = []string{"order_id", "ord_id", "order_key", "id"}
	leadTimeCols       = []string{"lead_time_h", "lead_time", "lt_h"}
	bomComponentCols   = []string{"component", "component_id", "componentcode", "comp", "comp_id", "child", "child_id", "child_material", "child_item", "subcomponent"}
	bomMaterialCols    = []string{"material", "material_id", "product", "product_id", "fg", "finished_good", "parent", "parent_id", "header_material", "header_item"}
)

const defaultNeedByOffset = 24 * time.Hour

// Load reads the five CSVs from dir. The BOM is optional: when neither
// material_component.csv nor material_component_small.csv parses, the
// dataset carries an empty BOM and component intents report it as missing.
func Load(dir string) (*Dataset, error) {
	inv, err := LoadInventory(filepath.Join(dir, "inventory.csv"))
	if err != nil {
		return nil, err
	}
	plants, err := LoadPlants(filepath.Join(dir, "plants.csv"))
	if err != nil {
		return nil, err
	}
	orders, err := LoadOrders(filepath.Join(dir, "orders.csv"), time.Now().UTC())
	if err != nil {
		return nil, err
	}
	pm, err := LoadPlantMaterial(filepath.Join(dir, "plant_material.csv"))
	if err != nil {
		return nil, err
	}
	bom, err := LoadBOM(filepath.Join(dir, "material_component.csv"), filepath.Join(dir, "material_component_small.csv"))
	if err != nil {
		log.Warn().Err(err).Msg("bom not loaded, component intents disabled")
		bom = nil
	}

	log.Info().
		Int("inventory_rows", len(inv)).
		Int("plants", len(plants)).
		Int("orders", len(orders)).
		Int("plant_material_rows", len(pm)).
		Int("bom_edges", len(bom)).
		Str("dir", dir).
		Msg("dataset loaded")

	return &Dataset{
		Inventory:     inv,
		Plants:        plants,
		Orders:        orders,
		PlantMaterial: pm,
		BOM:           bom,
	}, nil
}

func LoadInventory(path string) ([]InventoryRow, error) {
	return readCSV(path, parseInventory)
}

func LoadPlants(path string) ([]Plant, error) {
	return readCSV(path, parsePlants)
}

func LoadOrders(path string, now time.Time) ([]Order, error) {
	return readCSV(path, func(r io.Reader) ([]Order, error) {
		return parseOrders(r, now)
	})
}

func LoadPlantMaterial(path string) ([]PlantMaterial, error) {
	return readCSV(path, parsePlantMaterial)
}

// LoadBOM tries the full mapping first, then the small fallback extract.
func LoadBOM(path, alt string) ([]BOMEdge, error) {
	edges, err := readCSV(path, parseBOM)
	if err == nil {
		return edges, nil
	}
	edges, altErr := readCSV(alt, parseBOM)
	if altErr != nil {
		return nil, fmt.Errorf("load bom: %w (fallback: %v)", err, altErr)
	}
	return edges, nil
}

func readCSV[T any](path string, parse func(io.Reader) ([]T, error)) ([]T, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	rows, err := parse(f)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return rows, nil
}

// header maps lowercased trimmed column names to their index.
type header map[string]int

func readHeader(rec []string) header {
	h := make(header, len(rec))
	for i, c := range rec {
		h[strings.ToLower(strings.TrimSpace(c))] = i
	}
	return h
}

func (h header) pick(candidates []string) (int, bool) {
	for _, c := range candidates {
		if i, ok := h[c]; ok {
			return i, true
		}
	}
	return 0, false
}

// pickContains matches any column whose name contains one of the substrings.
func (h header) pickContains(substrings []string) (int, bool) {
	for name, i := range h {
		for _, s := range substrings {
			if strings.Contains(name, s) {
				return i, true
			}
		}
	}
	return 0, false
}

func field(rec []string, i int) string {
	if i < 0 || i >= len(rec) {
		return ""
	}
	return strings.TrimSpace(rec[i])
}

func atoiDefault(s string, def int) int {
	n, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return def
	}
	return int(n)
}

func parseInventory(r io.Reader) ([]InventoryRow, error) {
	records, err := readAll(r)
	if err != nil {
		return nil, err
	}
	h := readHeader(records[0])

	stockIdx, ok := h.pick(inventoryStockCols)
	if !ok {
		return nil, errors.New("inventory needs a stock-like column")
	}
	skuIdx, ok := h.pick(inventorySKUCols)
	if !ok {
		return nil, errors.New("inventory needs a product-like column")
	}
	locIdx, ok := h.pick(plantIDCols)
	if !ok {
		return nil, errors.New("inventory needs a plant-like column")
	}

	out := make([]InventoryRow, 0, len(records)-1)
	for _, rec := range records[1:] {
		out = append(out, InventoryRow{
			LocID:  field(rec, locIdx),
			SKU:    field(rec, skuIdx),
			OnHand: atoiDefault(field(rec, stockIdx), 0),
		})
	}
	return out, nil
}

func parsePlants(r io.Reader) ([]Plant, error) {
	records, err := readAll(r)
	if err != nil {
		return nil, err
	}
	h := readHeader(records[0])

	idIdx, ok := h.pick(plantIDCols)
	if !ok {
		return nil, errors.New("plants needs an id-like column")
	}
	latIdx, okLat := h.pick(latCols)
	lonIdx, okLon := h.pick(lonCols)
	if !okLat || !okLon {
		return nil, errors.New("plants needs latitude and longitude columns")
	}

	out := make([]Plant, 0, len(records)-1)
	for _, rec := range records[1:] {
		lat, errLat := strconv.ParseFloat(field(rec, latIdx), 64)
		lon, errLon := strconv.ParseFloat(field(rec, lonIdx), 64)
		if errLat != nil || errLon != nil {
			// Rows with unparseable coordinates keep the plant known but
			// unroutable; distance falls back to the default transit.
			lat, lon = 0, 0
		}
		out = append(out, Plant{LocID: field(rec, idIdx), Lat: lat, Lon: lon})
	}
	return out, nil
}

func parseOrders(r io.Reader, now time.Time) ([]Order, error) {
	records, err := readAll(r)
	if err != nil {
		return nil, err
	}
	h := readHeader(records[0])

	skuIdx, ok := h.pick(orderSKUCols)
	if !ok {
		return nil, errors.New("orders needs a SKU-like column (sku/product/material/component)")
	}
	qtyIdx, hasQty := h.pick(orderQtyCols)
	destIdx, hasDest := h.pick(orderDestCols)
	custIdx, hasCust := h.pick(orderCustomerCols)
	oidIdx, hasOID := h.pick(orderIDCols)
	needIdx, hasNeed := h.pickContains([]string{"need", "due", "deliver", "require"})

	defaultNeedBy := now.Add(defaultNeedByOffset)

	out := make([]Order, 0, len(records)-1)
	for n, rec := range records[1:] {
		o := Order{
			SKU:    field(rec, skuIdx),
			Qty:    1,
			NeedBy: defaultNeedBy,
		}
		if hasQty {
			o.Qty = atoiDefault(field(rec, qtyIdx), 1)
		}
		if hasDest {
			o.DestLocID = field(rec, destIdx)
		} else {
			o.DestLocID = "DEST_UNKNOWN"
		}
		if hasCust {
			o.CustomerID = field(rec, custIdx)
		} else {
			o.CustomerID = o.DestLocID
		}
		if hasOID {
			o.OrderID = field(rec, oidIdx)
		} else {
			o.OrderID = strconv.Itoa(n + 1)
		}
		if hasNeed {
			if ts, err := parseTimestamp(field(rec, needIdx)); err == nil {
				o.NeedBy = ts
			}
		}
		out = append(out, o)
	}
	return out, nil
}

func parsePlantMaterial(r io.Reader) ([]PlantMaterial, error) {
	records, err := readAll(r)
	if err != nil {
		return nil, err
	}
	h := readHeader(records[0])

	skuIdx, ok := h.pick(inventorySKUCols)
	if !ok {
		return nil, errors.New("plant_material needs a product-like column")
	}
	locIdx, ok := h.pick(plantIDCols)
	if !ok {
		return nil, errors.New("plant_material needs a plant-like column")
	}
	ltIdx, ok := h.pick(leadTimeCols)
	if !ok {
		return nil, errors.New("plant_material needs a lead-time column")
	}

	out := make([]PlantMaterial, 0, len(records)-1)
	for _, rec := range records[1:] {
		lt, err := strconv.ParseFloat(field(rec, ltIdx), 64)
		if err != nil {
			continue
		}
		out = append(out, PlantMaterial{
			SKU:       field(rec, skuIdx),
			LocID:     field(rec, locIdx),
			LeadTimeH: lt,
		})
	}
	return out, nil
}

func parseBOM(r io.Reader) ([]BOMEdge, error) {
	records, err := readAll(r)
	if err != nil {
		return nil, err
	}
	h := readHeader(records[0])

	compIdx, okComp := h.pick(bomComponentCols)
	matIdx, okMat := h.pick(bomMaterialCols)
	if !okComp || !okMat {
		return nil, errors.New("bom needs component and material columns")
	}

	seen := make(map[BOMEdge]struct{})
	out := make([]BOMEdge, 0, len(records)-1)
	for _, rec := range records[1:] {
		e := BOMEdge{Component: field(rec, compIdx), Material: field(rec, matIdx)}
		if e.Component == "" || e.Material == "" {
			continue
		}
		if _, dup := seen[e]; dup {
			continue
		}
		seen[e] = struct{}{}
		out = append(out, e)
	}
	return out, nil
}

func readAll(r io.Reader) ([][]string, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true
	records, err := cr.ReadAll()
	if err != nil {
		return nil, err
	}
	if len(records) < 1 {
		return nil, errors.New("csv is empty")
	}
	return records, nil
}

var timestampLayouts = []string{
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"2006-01-02",
}

func parseTimestamp(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range timestampLayouts {
		if ts, err := time.Parse(layout, s); err == nil {
			return ts.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized timestamp %q", s)
}
