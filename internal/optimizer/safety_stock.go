package optimizer

import (
	"math"
)

const (
	defaultZScore    = 1.65
	zScoreMatchRange = 0.05
)

// zScoreTable approximates the inverse normal CDF at common service levels.
var zScoreTable = []struct {
	level float64
	z     float64
}{
	{0.50, 0.00},
	{0.75, 0.67},
	{0.80, 0.84},
	{0.85, 1.04},
	{0.90, 1.28},
	{0.95, 1.65},
	{0.97, 1.88},
	{0.98, 2.05},
	{0.99, 2.33},
}

// ZScore returns the z value of the nearest tabulated service level. Levels
// further than 0.05 from every entry use the 95% value.
func ZScore(serviceLevel float64) float64 {
	best := defaultZScore
	bestDistance := math.Inf(1)
	for _, entry := range zScoreTable {
		distance := math.Abs(entry.level - serviceLevel)
		if distance < bestDistance {
			best = entry.z
			bestDistance = distance
		}
	}
	if bestDistance > zScoreMatchRange {
		return defaultZScore
	}
	return best
}

// CalculateSafetyStock is ceil(z * sigma * sqrt(leadTime)).
func (o *Optimizer) CalculateSafetyStock(demandVariability float64) float64 {
	z := ZScore(o.params.ServiceLevelTarget)
	return math.Max(0, math.Ceil(z*demandVariability*math.Sqrt(float64(o.params.LeadTimeDays))))
}

// CalculateReorderPoint is ceil(average daily demand * lead time + safety stock).
func (o *Optimizer) CalculateReorderPoint(averageDailyDemand, safetyStock float64) float64 {
	return math.Max(0, math.Ceil(averageDailyDemand*float64(o.params.LeadTimeDays)+safetyStock))
}
