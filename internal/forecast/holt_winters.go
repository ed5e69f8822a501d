package forecast

import (
	"math"

	"github.com/andresuchdata/stockcast/internal/domain"
)

// HoltWintersForecaster implements triple exponential smoothing with
// multiplicative seasonal indices.
type HoltWintersForecaster struct {
	Alpha          float64
	Beta           float64
	Gamma          float64
	SeasonalPeriod int
}

// NewHoltWintersForecaster creates a Holt-Winters forecaster from engine parameters
func NewHoltWintersForecaster(params Parameters) *HoltWintersForecaster {
	params = params.withDefaults()
	return &HoltWintersForecaster{
		Alpha:          params.Alpha,
		Beta:           params.Beta,
		Gamma:          params.Gamma,
		SeasonalPeriod: params.SeasonalPeriod,
	}
}

// Method returns the strategy identifier
func (f *HoltWintersForecaster) Method() Method {
	return MethodExponentialSmoothing
}

// Forecast generates predictions using Holt-Winters. Histories shorter than
// two full seasons fall back to the moving average strategy.
func (f *HoltWintersForecaster) Forecast(history []domain.HistoricalDemand, horizon int) []Prediction {
	n := len(history)
	period := f.SeasonalPeriod
	if period <= 0 {
		period = defaultSeasonalPeriod
	}
	if n < 2*period {
		return NewMovingAverageForecaster().Forecast(history, horizon)
	}
	if horizon <= 0 {
		return []Prediction{}
	}

	values := quantities(history)
	alpha, beta, gamma := f.Alpha, f.Beta, f.Gamma

	// Initial level is the first season's mean, initial trend the per-step
	// change between the first two season means.
	level := mean(values[:period])
	trend := (mean(values[period:2*period]) - level) / float64(period)

	seasonal := make([]float64, period)
	for i := 0; i < period; i++ {
		if level != 0 {
			seasonal[i] = values[i] / level
		} else {
			seasonal[i] = 1
		}
	}

	sumSquaredError := 0.0
	for t := 0; t < n; t++ {
		idx := t % period
		prevSeasonal := seasonal[idx]

		fitted := (level + trend) * prevSeasonal
		residual := values[t] - fitted
		sumSquaredError += residual * residual

		deseasonalized := values[t]
		if prevSeasonal != 0 {
			deseasonalized = values[t] / prevSeasonal
		}

		prevLevel := level
		level = alpha*deseasonalized + (1-alpha)*(level+trend)
		trend = beta*(level-prevLevel) + (1-beta)*trend
		if level != 0 {
			seasonal[idx] = gamma*(values[t]/level) + (1-gamma)*prevSeasonal
		}
	}
	variance := sumSquaredError / float64(n)

	lastDate := history[n-1].Date
	predictions := make([]Prediction, horizon)
	for i := 1; i <= horizon; i++ {
		date := addDays(lastDate, i)
		index := seasonal[(n+i-1)%period]

		margin := zScore95 * math.Sqrt(variance*float64(i))

		p := newPrediction(date, (level+trend*float64(i))*index, margin)
		p.SeasonalityFactor = float64Ptr(index)
		p.Trend = float64Ptr(trend)
		predictions[i-1] = p
	}
	return predictions
}
