package forecast

import (
	"math"
	"time"

	"github.com/andresuchdata/stockcast/internal/domain"
)

func quantities(history []domain.HistoricalDemand) []float64 {
	values := make([]float64, len(history))
	for i, h := range history {
		values[i] = h.Quantity
	}
	return values
}

func mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sum := 0.0
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

// populationStdDev divides by n, not n-1.
func populationStdDev(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	m := mean(values)
	sumSq := 0.0
	for _, v := range values {
		d := v - m
		sumSq += d * d
	}
	return math.Sqrt(sumSq / float64(len(values)))
}

// CalculateMAPE returns the Mean Absolute Percentage Error over the points
// whose actual value is non-zero. ok is false when no point qualifies.
func CalculateMAPE(actual, predicted []float64) (mape float64, ok bool) {
	if len(actual) != len(predicted) || len(actual) == 0 {
		return 0, false
	}

	sum := 0.0
	count := 0
	for i := range actual {
		if actual[i] != 0 {
			sum += math.Abs((actual[i] - predicted[i]) / actual[i])
			count++
		}
	}
	if count == 0 {
		return 0, false
	}
	return (sum / float64(count)) * 100, true
}

func clamp(v, lo, hi float64) float64 {
	return math.Min(hi, math.Max(lo, v))
}

func addDays(t time.Time, days int) time.Time {
	return t.AddDate(0, 0, days)
}

// newPrediction clamps the point estimate and the lower bound at zero.
func newPrediction(date time.Time, value, margin float64) Prediction {
	predicted := math.Max(0, value)
	return Prediction{
		Date:            date,
		PredictedDemand: predicted,
		ConfidenceInterval: ConfidenceInterval{
			Lower: math.Max(0, predicted-margin),
			Upper: predicted + margin,
		},
	}
}

func float64Ptr(v float64) *float64 {
	return &v
}
