// internal/domain/models.go
package domain

import (
	"encoding/json"
	"fmt"
	"time"
)

// InventoryItem is the item master record the planner works from.
type InventoryItem struct {
	ID              string  `json:"id" db:"id"`
	ItemName        string  `json:"item_name" db:"item_name"`
	ItemCode        string  `json:"item_code,omitempty" db:"item_code"`
	SKU             string  `json:"sku,omitempty" db:"sku"`
	CostPrice       float64 `json:"cost_price" db:"cost_price"`
	UnitPrice       float64 `json:"unit_price" db:"unit_price"`
	MinStockLevel   float64 `json:"min_stock_level" db:"min_stock_level"`
	MaxStockLevel   float64 `json:"max_stock_level" db:"max_stock_level"` // 0 when unset
	ReorderPoint    float64 `json:"reorder_point" db:"reorder_point"`
	ReorderQuantity float64 `json:"reorder_quantity" db:"reorder_quantity"`
	UnitOfMeasure   string  `json:"unit_of_measure,omitempty" db:"unit_of_measure"`
}

// HistoricalDemand is one observed demand data point (day granularity).
type HistoricalDemand struct {
	Date        time.Time `json:"date" db:"demand_date"`
	Quantity    float64   `json:"quantity" db:"quantity"`
	Price       *float64  `json:"price,omitempty" db:"price"`
	DayOfWeek   int       `json:"day_of_week,omitempty" db:"-"`
	WeekOfYear  int       `json:"week_of_year,omitempty" db:"-"`
	MonthOfYear int       `json:"month_of_year,omitempty" db:"-"`
	IsHoliday   bool      `json:"is_holiday,omitempty" db:"is_holiday"`
}

// UnmarshalJSON accepts the date as a calendar day ("2006-01-02") or an
// RFC3339 timestamp.
func (h *HistoricalDemand) UnmarshalJSON(data []byte) error {
	type plain HistoricalDemand
	aux := struct {
		Date string `json:"date"`
		*plain
	}{plain: (*plain)(h)}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	if aux.Date == "" {
		h.Date = time.Time{}
		return nil
	}
	date, err := ParseDate(aux.Date)
	if err != nil {
		return err
	}
	h.Date = date
	return nil
}

// ParseDate parses a calendar day or an RFC3339 timestamp.
func ParseDate(value string) (time.Time, error) {
	if t, err := time.Parse("2006-01-02", value); err == nil {
		return t, nil
	}
	t, err := time.Parse(time.RFC3339Nano, value)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q: expected YYYY-MM-DD or RFC3339", value)
	}
	return t, nil
}

// StockLevel is the live on-hand quantity of an item in a warehouse.
type StockLevel struct {
	ItemID         string  `json:"item_id" db:"item_id"`
	WarehouseID    string  `json:"warehouse_id" db:"warehouse_id"`
	QuantityOnHand float64 `json:"quantity_on_hand" db:"quantity_on_hand"`
}

// ItemUsage is the annual consumption of an item, used for ABC analysis.
type ItemUsage struct {
	ItemID      string  `json:"item_id" db:"item_id"`
	AnnualUsage float64 `json:"annual_usage" db:"annual_usage"`
	UnitCost    float64 `json:"unit_cost" db:"unit_cost"`
}

// NormalizeDate truncates t to its UTC calendar day.
func NormalizeDate(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// WithCalendarFields fills the derived calendar context from Date.
func (h HistoricalDemand) WithCalendarFields() HistoricalDemand {
	h.Date = NormalizeDate(h.Date)
	h.DayOfWeek = int(h.Date.Weekday())
	_, h.WeekOfYear = h.Date.ISOWeek()
	h.MonthOfYear = int(h.Date.Month())
	return h
}

// PlanRun identifies one warehouse planning pass and its persisted results.
type PlanRun struct {
	ID          string    `json:"id" db:"id"`
	WarehouseID string    `json:"warehouse_id" db:"warehouse_id"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
	Items       int       `json:"items" db:"items"`
	Failed      int       `json:"failed" db:"failed"`
	ReportKey   string    `json:"report_key,omitempty" db:"report_key"`
}

// DemandObservation is a demand data point attributed to an item and warehouse.
type DemandObservation struct {
	ItemID      string
	WarehouseID string
	HistoricalDemand
}
