// Package forecast turns a daily demand history into a multi-day demand forecast
// with confidence intervals and a backtested accuracy score.
package forecast

import (
	"fmt"
	"strings"
	"time"

	"github.com/andresuchdata/stockcast/internal/domain"
)

// Method selects the forecasting strategy.
type Method string

const (
	MethodLinearRegression     Method = "LINEAR_REGRESSION"
	MethodMovingAverage        Method = "MOVING_AVERAGE"
	MethodExponentialSmoothing Method = "EXPONENTIAL_SMOOTHING"
	MethodARIMA                Method = "ARIMA"
)

// Methods lists every supported strategy.
var Methods = []Method{
	MethodLinearRegression,
	MethodMovingAverage,
	MethodExponentialSmoothing,
	MethodARIMA,
}

// ParseMethod resolves a method name case-insensitively. Hyphens and spaces
// are accepted in place of underscores.
func ParseMethod(name string) (Method, error) {
	normalized := strings.ToUpper(strings.TrimSpace(name))
	normalized = strings.NewReplacer("-", "_", " ", "_").Replace(normalized)
	if normalized == "" {
		return MethodLinearRegression, nil
	}
	for _, m := range Methods {
		if string(m) == normalized {
			return m, nil
		}
	}
	return "", fmt.Errorf("unknown forecasting method: %s", name)
}

// ForecastPeriod is a classification label derived from the requested horizon.
type ForecastPeriod string

const (
	PeriodDaily   ForecastPeriod = "DAILY"
	PeriodWeekly  ForecastPeriod = "WEEKLY"
	PeriodMonthly ForecastPeriod = "MONTHLY"
)

const (
	// MinHistoryPoints is the smallest history a forecast can be built from.
	MinHistoryPoints = 7
	// DefaultForecastDays is used when the caller passes a non-positive horizon.
	DefaultForecastDays = 30

	defaultSeasonalPeriod = 7
	defaultAlpha          = 0.3
	defaultBeta           = 0.1
	defaultGamma          = 0.2

	zScore95 = 1.96
)

// Parameters is the immutable configuration of one Engine.
type Parameters struct {
	Method         Method  `json:"method" mapstructure:"method"`
	LookbackDays   int     `json:"lookback_days" mapstructure:"lookback_days"`
	SeasonalPeriod int     `json:"seasonal_period" mapstructure:"seasonal_period"`
	Alpha          float64 `json:"alpha" mapstructure:"alpha"`
	Beta           float64 `json:"beta" mapstructure:"beta"`
	Gamma          float64 `json:"gamma" mapstructure:"gamma"`
}

// DefaultParameters returns linear regression with weekly seasonality.
func DefaultParameters() Parameters {
	return Parameters{
		Method:         MethodLinearRegression,
		SeasonalPeriod: defaultSeasonalPeriod,
		Alpha:          defaultAlpha,
		Beta:           defaultBeta,
		Gamma:          defaultGamma,
	}
}

func (p Parameters) withDefaults() Parameters {
	if p.Method == "" {
		p.Method = MethodLinearRegression
	}
	if p.SeasonalPeriod <= 0 {
		p.SeasonalPeriod = defaultSeasonalPeriod
	}
	if p.Alpha <= 0 || p.Alpha > 1 {
		p.Alpha = defaultAlpha
	}
	if p.Beta <= 0 || p.Beta > 1 {
		p.Beta = defaultBeta
	}
	if p.Gamma <= 0 || p.Gamma > 1 {
		p.Gamma = defaultGamma
	}
	if p.LookbackDays < 0 {
		p.LookbackDays = 0
	}
	return p
}

// ConfidenceInterval bounds a single prediction. Lower is never negative.
type ConfidenceInterval struct {
	Lower float64 `json:"lower"`
	Upper float64 `json:"upper"`
}

// Prediction is the forecast for one future day.
type Prediction struct {
	Date               time.Time          `json:"date"`
	PredictedDemand    float64            `json:"predicted_demand"`
	ConfidenceInterval ConfidenceInterval `json:"confidence_interval"`
	SeasonalityFactor  *float64           `json:"seasonality_factor,omitempty"`
	Trend              *float64           `json:"trend,omitempty"`
}

// DemandForecast is the aggregate result of one GenerateForecast call.
type DemandForecast struct {
	ItemID         string         `json:"item_id"`
	WarehouseID    string         `json:"warehouse_id"`
	Method         Method         `json:"method"`
	ForecastPeriod ForecastPeriod `json:"forecast_period"`
	Predictions    []Prediction   `json:"predictions"`
	Accuracy       float64        `json:"accuracy"`
	Confidence     float64        `json:"confidence"`
	HistoryPoints  int            `json:"history_points"`
}

// TotalDemand sums the predicted demand over the first days predictions.
// A non-positive days value sums the whole horizon.
func (f *DemandForecast) TotalDemand(days int) float64 {
	if f == nil {
		return 0
	}
	if days <= 0 || days > len(f.Predictions) {
		days = len(f.Predictions)
	}
	total := 0.0
	for _, p := range f.Predictions[:days] {
		total += p.PredictedDemand
	}
	return total
}

// Forecaster is implemented once per Method. history is sorted ascending by
// date and holds at least MinHistoryPoints entries.
type Forecaster interface {
	Method() Method
	Forecast(history []domain.HistoricalDemand, horizon int) []Prediction
}
