package optimizer

import (
	"math"

	"github.com/andresuchdata/stockcast/internal/domain"
)

// CalculateDemandStats derives daily, annual and variability figures. An empty
// history yields all-zero statistics.
func CalculateDemandStats(history []domain.HistoricalDemand) DemandStats {
	if len(history) == 0 {
		return DemandStats{}
	}

	total := 0.0
	for _, h := range history {
		total += h.Quantity
	}
	days := float64(len(history))
	average := total / days

	sumSq := 0.0
	for _, h := range history {
		d := h.Quantity - average
		sumSq += d * d
	}

	return DemandStats{
		TotalDemand:        total,
		AverageDailyDemand: average,
		AnnualDemand:       (total / days) * daysPerYear,
		DemandVariability:  math.Sqrt(sumSq / days),
		Days:               len(history),
	}
}
