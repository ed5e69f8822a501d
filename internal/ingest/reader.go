// Package ingest reads planning inputs from CSV files and writes planning
// results back out as CSV.
package ingest

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/andresuchdata/stockcast/internal/domain"
)

var dateLayouts = []string{"2006-01-02", time.RFC3339, "2006/01/02", "02/01/2006"}

// DemandRecord is one row of a demand history file.
type DemandRecord struct {
	ItemID      string
	WarehouseID string
	Demand      domain.HistoricalDemand
}

// ItemRecord is one row of an item file together with its stock on hand.
type ItemRecord struct {
	Item         domain.InventoryItem
	WarehouseID  string
	CurrentStock float64
}

// header maps lower-cased column names to their index.
type header map[string]int

func readHeader(reader *csv.Reader, required ...string) (header, error) {
	row, err := reader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("empty file: missing header")
		}
		return nil, fmt.Errorf("failed to read CSV header: %w", err)
	}

	h := make(header, len(row))
	for i, col := range row {
		name := strings.ToLower(strings.TrimSpace(strings.TrimPrefix(col, "\ufeff")))
		h[name] = i
	}
	for _, col := range required {
		if _, ok := h[col]; !ok {
			return nil, fmt.Errorf("missing required column %q", col)
		}
	}
	return h, nil
}

func (h header) value(record []string, col string) string {
	idx, ok := h[col]
	if !ok || idx >= len(record) {
		return ""
	}
	return strings.TrimSpace(record[idx])
}

func (h header) float(record []string, col string, line int) (float64, error) {
	raw := h.value(record, col)
	if raw == "" {
		return 0, nil
	}
	v, err := strconv.ParseFloat(strings.ReplaceAll(raw, ",", ""), 64)
	if err != nil {
		return 0, fmt.Errorf("line %d: invalid %s %q: %w", line, col, raw, err)
	}
	return v, nil
}

func newReader(r io.Reader) *csv.Reader {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true
	return reader
}

func parseDate(raw string) (time.Time, error) {
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return domain.NormalizeDate(t), nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognised date %q", raw)
}

func parseBool(raw string) bool {
	switch strings.ToLower(raw) {
	case "1", "true", "yes", "y":
		return true
	}
	return false
}

// ReadDemand reads date,quantity rows with optional item_id, warehouse_id,
// price and is_holiday columns.
func ReadDemand(r io.Reader) ([]DemandRecord, error) {
	reader := newReader(r)
	h, err := readHeader(reader, "date", "quantity")
	if err != nil {
		return nil, err
	}

	var records []DemandRecord
	for line := 2; ; line++ {
		row, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read CSV record: %w", err)
		}

		date, err := parseDate(h.value(row, "date"))
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		quantity, err := h.float(row, "quantity", line)
		if err != nil {
			return nil, err
		}
		if quantity < 0 {
			return nil, fmt.Errorf("line %d: quantity must not be negative", line)
		}

		demand := domain.HistoricalDemand{
			Date:      date,
			Quantity:  quantity,
			IsHoliday: parseBool(h.value(row, "is_holiday")),
		}
		if h.value(row, "price") != "" {
			price, err := h.float(row, "price", line)
			if err != nil {
				return nil, err
			}
			demand.Price = &price
		}

		records = append(records, DemandRecord{
			ItemID:      h.value(row, "item_id"),
			WarehouseID: h.value(row, "warehouse_id"),
			Demand:      demand.WithCalendarFields(),
		})
	}
	return records, nil
}

// ReadDemandHistory reads a single-item demand file.
func ReadDemandHistory(r io.Reader) ([]domain.HistoricalDemand, error) {
	records, err := ReadDemand(r)
	if err != nil {
		return nil, err
	}
	history := make([]domain.HistoricalDemand, len(records))
	for i, rec := range records {
		history[i] = rec.Demand
	}
	return history, nil
}

// SeriesKey identifies the demand of one item in one warehouse.
type SeriesKey struct {
	ItemID      string
	WarehouseID string
}

// GroupBySeries splits demand records per item and warehouse. Each series is
// date-sorted and a repeated day keeps its last row.
func GroupBySeries(records []DemandRecord) map[SeriesKey][]domain.HistoricalDemand {
	grouped := make(map[SeriesKey][]domain.HistoricalDemand)
	for _, rec := range records {
		key := SeriesKey{ItemID: rec.ItemID, WarehouseID: rec.WarehouseID}
		grouped[key] = append(grouped[key], rec.Demand)
	}
	for key, series := range grouped {
		grouped[key] = collapseDays(series, false)
	}
	return grouped
}

// GroupByItem splits demand records per item id across all warehouses. Each
// series is date-sorted and rows on the same day are summed.
func GroupByItem(records []DemandRecord) map[string][]domain.HistoricalDemand {
	grouped := make(map[string][]domain.HistoricalDemand)
	for _, rec := range records {
		grouped[rec.ItemID] = append(grouped[rec.ItemID], rec.Demand)
	}
	for itemID, series := range grouped {
		grouped[itemID] = collapseDays(series, true)
	}
	return grouped
}

// collapseDays sorts series by day and merges rows sharing a day, either
// summing their quantities or keeping the later row.
func collapseDays(series []domain.HistoricalDemand, sum bool) []domain.HistoricalDemand {
	sort.SliceStable(series, func(i, j int) bool {
		return series[i].Date.Before(series[j].Date)
	})

	out := series[:0]
	for _, h := range series {
		last := len(out) - 1
		if last < 0 || !out[last].Date.Equal(h.Date) {
			out = append(out, h)
			continue
		}
		if sum {
			out[last].Quantity += h.Quantity
			out[last].IsHoliday = out[last].IsHoliday || h.IsHoliday
		} else {
			out[last] = h
		}
	}
	return out
}

// ReadItems reads id,item_name,cost_price rows with optional unit_price,
// max_stock_level, current_stock and warehouse_id columns.
func ReadItems(r io.Reader) ([]ItemRecord, error) {
	reader := newReader(r)
	h, err := readHeader(reader, "id", "cost_price")
	if err != nil {
		return nil, err
	}

	var items []ItemRecord
	for line := 2; ; line++ {
		row, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read CSV record: %w", err)
		}

		rec := ItemRecord{
			Item: domain.InventoryItem{
				ID:            h.value(row, "id"),
				ItemName:      h.value(row, "item_name"),
				ItemCode:      h.value(row, "item_code"),
				SKU:           h.value(row, "sku"),
				UnitOfMeasure: h.value(row, "unit_of_measure"),
			},
			WarehouseID: h.value(row, "warehouse_id"),
		}
		if rec.Item.ID == "" {
			return nil, fmt.Errorf("line %d: id is required", line)
		}

		for col, dst := range map[string]*float64{
			"cost_price":      &rec.Item.CostPrice,
			"unit_price":      &rec.Item.UnitPrice,
			"max_stock_level": &rec.Item.MaxStockLevel,
			"min_stock_level": &rec.Item.MinStockLevel,
			"current_stock":   &rec.CurrentStock,
		} {
			if *dst, err = h.float(row, col, line); err != nil {
				return nil, err
			}
		}
		items = append(items, rec)
	}
	return items, nil
}

// ReadItemUsage reads item_id,annual_usage,unit_cost rows for ABC analysis.
func ReadItemUsage(r io.Reader) ([]domain.ItemUsage, error) {
	reader := newReader(r)
	h, err := readHeader(reader, "item_id", "annual_usage", "unit_cost")
	if err != nil {
		return nil, err
	}

	var usage []domain.ItemUsage
	for line := 2; ; line++ {
		row, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read CSV record: %w", err)
		}

		u := domain.ItemUsage{ItemID: h.value(row, "item_id")}
		if u.AnnualUsage, err = h.float(row, "annual_usage", line); err != nil {
			return nil, err
		}
		if u.UnitCost, err = h.float(row, "unit_cost", line); err != nil {
			return nil, err
		}
		usage = append(usage, u)
	}
	return usage, nil
}
