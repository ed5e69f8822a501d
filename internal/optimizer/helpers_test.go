package optimizer

import (
	"time"

	"github.com/andresuchdata/stockcast/internal/domain"
)

// testBaseDate is a Monday.
var testBaseDate = time.Date(2025, 1, 6, 0, 0, 0, 0, time.UTC)

func generateSeries(values []float64) []domain.HistoricalDemand {
	history := make([]domain.HistoricalDemand, len(values))
	for i, v := range values {
		history[i] = domain.HistoricalDemand{
			Date:     testBaseDate.AddDate(0, 0, i),
			Quantity: v,
		}
	}
	return history
}

func generateConstantData(n int, value float64) []domain.HistoricalDemand {
	values := make([]float64, n)
	for i := range values {
		values[i] = value
	}
	return generateSeries(values)
}

// generateWeeklyData emits weekday demand Monday to Friday and weekend demand on Saturday and Sunday.
func generateWeeklyData(n int, weekday, weekend float64) []domain.HistoricalDemand {
	values := make([]float64, n)
	for i := range values {
		if i%7 >= 5 {
			values[i] = weekend
		} else {
			values[i] = weekday
		}
	}
	return generateSeries(values)
}

func testItem() domain.InventoryItem {
	return domain.InventoryItem{
		ID:        "item-1",
		ItemName:  "Widget",
		CostPrice: 50,
		UnitPrice: 80,
	}
}
