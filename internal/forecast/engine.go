package forecast

import (
	"fmt"
	"math"
	"sort"

	"github.com/andresuchdata/stockcast/internal/domain"
)

const (
	backtestWindow  = 7
	defaultAccuracy = 80.0
	maxConfidence   = 95.0
)

// Engine produces demand forecasts. It holds only immutable parameters and is
// safe for concurrent use.
type Engine struct {
	params     Parameters
	forecaster Forecaster
}

// NewEngine creates an engine for the configured method. An unrecognised
// method falls back to linear regression; use ParseMethod to validate input.
func NewEngine(params Parameters) *Engine {
	params = params.withDefaults()
	forecaster, err := NewForecaster(params)
	if err != nil {
		params.Method = MethodLinearRegression
		forecaster = NewLinearRegressionForecaster()
	}
	return &Engine{params: params, forecaster: forecaster}
}

// NewForecaster returns the strategy implementing params.Method.
func NewForecaster(params Parameters) (Forecaster, error) {
	params = params.withDefaults()
	switch params.Method {
	case MethodLinearRegression:
		return NewLinearRegressionForecaster(), nil
	case MethodMovingAverage:
		return NewMovingAverageForecaster(), nil
	case MethodExponentialSmoothing:
		return NewHoltWintersForecaster(params), nil
	case MethodARIMA:
		return NewARIMAForecaster(), nil
	default:
		return nil, fmt.Errorf("unknown forecasting method: %s", params.Method)
	}
}

// Parameters returns the engine configuration after defaults were applied.
func (e *Engine) Parameters() Parameters {
	return e.params
}

// GenerateForecast forecasts forecastDays days past the last history date.
// A non-positive forecastDays uses DefaultForecastDays. history is not
// modified.
func (e *Engine) GenerateForecast(itemID, warehouseID string, history []domain.HistoricalDemand, forecastDays int) (*DemandForecast, error) {
	if len(history) < MinHistoryPoints {
		return nil, &ValidationError{Required: MinHistoryPoints, Got: len(history)}
	}
	if forecastDays <= 0 {
		forecastDays = DefaultForecastDays
	}

	series := e.prepareHistory(history)
	predictions := e.forecaster.Forecast(series, forecastDays)

	accuracy := backtestAccuracy(series, predictions)
	return &DemandForecast{
		ItemID:         itemID,
		WarehouseID:    warehouseID,
		Method:         e.params.Method,
		ForecastPeriod: ClassifyPeriod(forecastDays),
		Predictions:    predictions,
		Accuracy:       accuracy,
		Confidence:     math.Min(accuracy*0.9, maxConfidence),
		HistoryPoints:  len(series),
	}, nil
}

// prepareHistory copies, normalizes and date-sorts the input, then trims it to
// the last LookbackDays calendar days without dropping below MinHistoryPoints.
func (e *Engine) prepareHistory(history []domain.HistoricalDemand) []domain.HistoricalDemand {
	series := make([]domain.HistoricalDemand, len(history))
	for i, h := range history {
		series[i] = h.WithCalendarFields()
	}
	sort.SliceStable(series, func(i, j int) bool {
		return series[i].Date.Before(series[j].Date)
	})

	lookback := e.params.LookbackDays
	if lookback <= 0 || len(series) == 0 {
		return series
	}

	// keep the trailing lookback calendar days, gaps included
	cutoff := series[len(series)-1].Date.AddDate(0, 0, -lookback)
	start := sort.Search(len(series), func(i int) bool {
		return series[i].Date.After(cutoff)
	})
	if len(series)-start < MinHistoryPoints {
		start = max(len(series)-MinHistoryPoints, 0)
	}
	return series[start:]
}

// backtestAccuracy compares the first week of predictions with the last week
// of observations and inverts the MAPE.
func backtestAccuracy(history []domain.HistoricalDemand, predictions []Prediction) float64 {
	if len(history) < backtestWindow || len(predictions) < backtestWindow {
		return defaultAccuracy
	}

	actual := quantities(history[len(history)-backtestWindow:])
	predicted := make([]float64, backtestWindow)
	for i := range predicted {
		predicted[i] = predictions[i].PredictedDemand
	}

	mape, ok := CalculateMAPE(actual, predicted)
	if !ok {
		return defaultAccuracy
	}
	return clamp(100-mape, 0, 100)
}

// ClassifyPeriod labels a horizon: up to a week is DAILY, up to a month WEEKLY.
func ClassifyPeriod(forecastDays int) ForecastPeriod {
	switch {
	case forecastDays <= 7:
		return PeriodDaily
	case forecastDays <= 30:
		return PeriodWeekly
	default:
		return PeriodMonthly
	}
}
