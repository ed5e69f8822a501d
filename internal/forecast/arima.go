package forecast

import (
	"github.com/andresuchdata/stockcast/internal/domain"
)

// ARIMAForecaster is a simplified AR(1) model on first differences. It is not
// a fitted ARIMA: the lag-1 autocorrelation of the differences scales the last
// observed difference, and only the first forecast day receives that step.
// Later days carry the day-one level forward unchanged.
type ARIMAForecaster struct{}

// NewARIMAForecaster creates a new simplified ARIMA forecaster
func NewARIMAForecaster() *ARIMAForecaster {
	return &ARIMAForecaster{}
}

// Method returns the strategy identifier
func (f *ARIMAForecaster) Method() Method {
	return MethodARIMA
}

// Forecast generates predictions from the last value and the AR(1) step
func (f *ARIMAForecaster) Forecast(history []domain.HistoricalDemand, horizon int) []Prediction {
	n := len(history)
	if n == 0 || horizon <= 0 {
		return []Prediction{}
	}

	values := quantities(history)
	diffs := difference(values)
	phi := lag1Autocorrelation(diffs)

	lastDiff := 0.0
	if len(diffs) > 0 {
		lastDiff = diffs[len(diffs)-1]
	}

	// constant width from the spread of the differences
	margin := zScore95 * populationStdDev(diffs)

	value := values[n-1]
	lastDate := history[n-1].Date
	predictions := make([]Prediction, horizon)
	for i := 1; i <= horizon; i++ {
		predictedDiff := 0.0
		if i == 1 {
			predictedDiff = phi * lastDiff
		}
		value += predictedDiff

		p := newPrediction(addDays(lastDate, i), value, margin)
		p.Trend = float64Ptr(predictedDiff)
		predictions[i-1] = p
	}
	return predictions
}

func difference(values []float64) []float64 {
	if len(values) < 2 {
		return []float64{}
	}
	diffs := make([]float64, len(values)-1)
	for i := 1; i < len(values); i++ {
		diffs[i-1] = values[i] - values[i-1]
	}
	return diffs
}

// lag1Autocorrelation returns 0 for constant or too-short series.
func lag1Autocorrelation(series []float64) float64 {
	if len(series) < 2 {
		return 0
	}
	m := mean(series)

	numerator := 0.0
	for i := 1; i < len(series); i++ {
		numerator += (series[i] - m) * (series[i-1] - m)
	}
	denominator := 0.0
	for _, v := range series {
		d := v - m
		denominator += d * d
	}
	if denominator == 0 {
		return 0
	}
	return numerator / denominator
}
