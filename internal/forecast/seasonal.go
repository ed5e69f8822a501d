package forecast

import (
	"time"

	"github.com/andresuchdata/stockcast/internal/domain"
)

// SeasonalFactors holds one multiplier per weekday, indexed by time.Weekday.
type SeasonalFactors [7]float64

// Factor returns the multiplier for the weekday of date.
func (s SeasonalFactors) Factor(date time.Time) float64 {
	return s[date.Weekday()]
}

// Spread returns the largest and smallest weekday multipliers.
func (s SeasonalFactors) Spread() (lowest, highest float64) {
	lowest, highest = s[0], s[0]
	for _, f := range s[1:] {
		if f < lowest {
			lowest = f
		}
		if f > highest {
			highest = f
		}
	}
	return lowest, highest
}

// CalculateSeasonalFactors divides each weekday's average demand by the
// overall average. Weekdays without observations, and every weekday when the
// overall average is zero, get a factor of 1.
func CalculateSeasonalFactors(history []domain.HistoricalDemand) SeasonalFactors {
	var (
		factors SeasonalFactors
		sums    [7]float64
		counts  [7]int
		total   float64
	)

	for _, h := range history {
		day := domain.NormalizeDate(h.Date).Weekday()
		sums[day] += h.Quantity
		counts[day]++
		total += h.Quantity
	}

	overall := 0.0
	if len(history) > 0 {
		overall = total / float64(len(history))
	}

	for day := range factors {
		if counts[day] == 0 || overall == 0 {
			factors[day] = 1
			continue
		}
		factors[day] = (sums[day] / float64(counts[day])) / overall
	}
	return factors
}
