package forecast

import (
	"github.com/andresuchdata/stockcast/internal/domain"
)

const maxMovingAverageWindow = 14

// MovingAverageForecaster projects the trailing-window average plus the
// window's endpoint trend, scaled by the weekday seasonal factor.
type MovingAverageForecaster struct{}

// NewMovingAverageForecaster creates a new moving average forecaster
func NewMovingAverageForecaster() *MovingAverageForecaster {
	return &MovingAverageForecaster{}
}

// Method returns the strategy identifier
func (f *MovingAverageForecaster) Method() Method {
	return MethodMovingAverage
}

// Forecast generates predictions using a trailing moving average
func (f *MovingAverageForecaster) Forecast(history []domain.HistoricalDemand, horizon int) []Prediction {
	n := len(history)
	if n == 0 || horizon <= 0 {
		return []Prediction{}
	}

	window := movingAverageWindow(n)
	recent := quantities(history[n-window:])
	average := mean(recent)

	trend := 0.0
	if window > 1 {
		trend = (recent[window-1] - recent[0]) / float64(window-1)
	}

	// constant width regardless of horizon
	margin := zScore95 * populationStdDev(recent)

	factors := CalculateSeasonalFactors(history)
	lastDate := history[n-1].Date
	predictions := make([]Prediction, horizon)
	for i := 1; i <= horizon; i++ {
		date := addDays(lastDate, i)
		seasonal := factors.Factor(date)

		p := newPrediction(date, (average+trend*float64(i))*seasonal, margin)
		p.SeasonalityFactor = float64Ptr(seasonal)
		p.Trend = float64Ptr(trend)
		predictions[i-1] = p
	}
	return predictions
}

// movingAverageWindow is min(14, n/2), never below one point.
func movingAverageWindow(n int) int {
	window := n / 2
	if window > maxMovingAverageWindow {
		window = maxMovingAverageWindow
	}
	if window < 1 {
		window = 1
	}
	return window
}
