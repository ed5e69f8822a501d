package forecast

import (
	"time"

	"github.com/andresuchdata/stockcast/internal/domain"
)

// testBaseDate is a Monday.
var testBaseDate = time.Date(2025, 1, 6, 0, 0, 0, 0, time.UTC)

func generateSeries(values ...float64) []domain.HistoricalDemand {
	data := make([]domain.HistoricalDemand, len(values))
	for i, v := range values {
		data[i] = domain.HistoricalDemand{
			Date:     testBaseDate.AddDate(0, 0, i),
			Quantity: v,
		}
	}
	return data
}

func generateConstantData(n int, value float64) []domain.HistoricalDemand {
	values := make([]float64, n)
	for i := range values {
		values[i] = value
	}
	return generateSeries(values...)
}

// generateLinearData creates y = slope * x + intercept
func generateLinearData(n int, slope, intercept float64) []domain.HistoricalDemand {
	values := make([]float64, n)
	for i := range values {
		values[i] = slope*float64(i) + intercept
	}
	return generateSeries(values...)
}

// generateWeeklyData uses weekday for Monday-Friday and weekend for Saturday/Sunday.
func generateWeeklyData(n int, weekday, weekend float64) []domain.HistoricalDemand {
	data := make([]domain.HistoricalDemand, n)
	for i := range data {
		date := testBaseDate.AddDate(0, 0, i)
		q := weekday
		if date.Weekday() == time.Saturday || date.Weekday() == time.Sunday {
			q = weekend
		}
		data[i] = domain.HistoricalDemand{Date: date, Quantity: q}
	}
	return data
}

// generateNoisyData adds a repeating deterministic offset to a flat base.
func generateNoisyData(n int, base float64) []domain.HistoricalDemand {
	offsets := []float64{3, -2, 4, -1, 0, -3, 2, -4, 1}
	values := make([]float64, n)
	for i := range values {
		values[i] = base + offsets[i%len(offsets)]
	}
	return generateSeries(values...)
}
