package forecast

import (
	"math"

	"github.com/andresuchdata/stockcast/internal/domain"
)

// LinearRegressionForecaster fits an ordinary least-squares trend line against
// the day index and scales it by the weekday seasonal factor.
type LinearRegressionForecaster struct{}

// NewLinearRegressionForecaster creates a new linear regression forecaster
func NewLinearRegressionForecaster() *LinearRegressionForecaster {
	return &LinearRegressionForecaster{}
}

// Method returns the strategy identifier
func (f *LinearRegressionForecaster) Method() Method {
	return MethodLinearRegression
}

// Forecast generates predictions using linear regression
func (f *LinearRegressionForecaster) Forecast(history []domain.HistoricalDemand, horizon int) []Prediction {
	n := len(history)
	if n == 0 || horizon <= 0 {
		return []Prediction{}
	}

	factors := CalculateSeasonalFactors(history)
	values := quantities(history)
	slope, intercept := leastSquares(values)

	sumSquaredError := 0.0
	for i, v := range values {
		residual := v - (intercept + slope*float64(i))
		sumSquaredError += residual * residual
	}
	stdError := 0.0
	if n > 2 {
		stdError = math.Sqrt(sumSquaredError / float64(n-2))
	}

	nf := float64(n)
	lastDate := history[n-1].Date
	predictions := make([]Prediction, horizon)
	for i := 1; i <= horizon; i++ {
		date := addDays(lastDate, i)
		seasonal := factors.Factor(date)
		trendValue := intercept + slope*float64(n-1+i)

		// widens with distance; a heuristic, not a prediction interval
		margin := zScore95 * stdError * math.Sqrt(1+float64(i*i)/nf)

		p := newPrediction(date, trendValue*seasonal, margin)
		p.SeasonalityFactor = float64Ptr(seasonal)
		p.Trend = float64Ptr(slope)
		predictions[i-1] = p
	}
	return predictions
}

// leastSquares regresses values against their 0-based index.
func leastSquares(values []float64) (slope, intercept float64) {
	n := float64(len(values))
	if n == 0 {
		return 0, 0
	}

	sumX, sumY, sumXY, sumX2 := 0.0, 0.0, 0.0, 0.0
	for i, y := range values {
		x := float64(i)
		sumX += x
		sumY += y
		sumXY += x * y
		sumX2 += x * x
	}

	denominator := n*sumX2 - sumX*sumX
	if denominator == 0 {
		return 0, sumY / n
	}
	slope = (n*sumXY - sumX*sumY) / denominator
	intercept = (sumY - slope*sumX) / n
	return slope, intercept
}
