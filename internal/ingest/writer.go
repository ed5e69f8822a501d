package ingest

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/andresuchdata/stockcast/internal/forecast"
	"github.com/andresuchdata/stockcast/internal/optimizer"
)

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func writeAll(w io.Writer, header []string, rows [][]string) error {
	writer := csv.NewWriter(w)
	if err := writer.Write(header); err != nil {
		return fmt.Errorf("failed to write CSV header: %w", err)
	}
	if err := writer.WriteAll(rows); err != nil {
		return fmt.Errorf("failed to write CSV rows: %w", err)
	}
	return nil
}

// WriteOptimizationResults writes one row per result. Recommendations are
// joined with " | ".
func WriteOptimizationResults(w io.Writer, results []*optimizer.Result) error {
	header := []string{
		"item_id", "item_name", "warehouse_id", "current_stock", "optimal_stock",
		"reorder_point", "reorder_quantity", "safety_stock", "service_level",
		"holding_cost", "ordering_cost", "total_cost", "turnover_rate",
		"days_of_supply", "risk_level", "recommendations",
	}
	rows := make([][]string, 0, len(results))
	for _, r := range results {
		rows = append(rows, []string{
			r.ItemID,
			r.ItemName,
			r.WarehouseID,
			formatFloat(r.CurrentStock),
			formatFloat(r.OptimalStock),
			formatFloat(r.ReorderPoint),
			formatFloat(r.ReorderQuantity),
			formatFloat(r.SafetyStock),
			strconv.FormatFloat(r.ServiceLevel, 'f', 4, 64),
			strconv.FormatFloat(r.HoldingCost, 'f', 2, 64),
			strconv.FormatFloat(r.OrderingCost, 'f', 2, 64),
			strconv.FormatFloat(r.TotalCost, 'f', 2, 64),
			strconv.FormatFloat(r.TurnoverRate, 'f', 2, 64),
			strconv.FormatFloat(r.DaysOfSupply, 'f', 1, 64),
			string(r.RiskLevel),
			strings.Join(r.Recommendations, " | "),
		})
	}
	return writeAll(w, header, rows)
}

// WriteABCResults writes the classification in ranked order.
func WriteABCResults(w io.Writer, results []optimizer.ABCResult) error {
	header := []string{"rank", "item_id", "annual_usage", "unit_cost", "annual_value", "cumulative_percentage", "category"}
	rows := make([][]string, 0, len(results))
	for i, r := range results {
		rows = append(rows, []string{
			strconv.Itoa(i + 1),
			r.ItemID,
			formatFloat(r.AnnualUsage),
			formatFloat(r.UnitCost),
			formatFloat(r.AnnualValue),
			strconv.FormatFloat(r.CumulativePercentage, 'f', 2, 64),
			string(r.Category),
		})
	}
	return writeAll(w, header, rows)
}

// WriteForecasts writes one row per prediction of every forecast.
func WriteForecasts(w io.Writer, forecasts ...*forecast.DemandForecast) error {
	header := []string{"item_id", "method", "date", "predicted_demand", "lower", "upper"}
	var rows [][]string
	for _, fc := range forecasts {
		if fc == nil {
			continue
		}
		for _, p := range fc.Predictions {
			rows = append(rows, []string{
				fc.ItemID,
				string(fc.Method),
				p.Date.Format("2006-01-02"),
				strconv.FormatFloat(p.PredictedDemand, 'f', 2, 64),
				strconv.FormatFloat(p.ConfidenceInterval.Lower, 'f', 2, 64),
				strconv.FormatFloat(p.ConfidenceInterval.Upper, 'f', 2, 64),
			})
		}
	}
	return writeAll(w, header, rows)
}
