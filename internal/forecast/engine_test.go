package forecast

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/andresuchdata/stockcast/internal/domain"
)

func TestGenerateForecast_InsufficientHistory(t *testing.T) {
	for _, method := range Methods {
		t.Run(string(method), func(t *testing.T) {
			engine := NewEngine(Parameters{Method: method})

			_, err := engine.GenerateForecast("item-1", "wh-1", generateConstantData(6, 10), 30)
			require.Error(t, err)

			var validationErr *ValidationError
			require.True(t, errors.As(err, &validationErr))
			assert.Equal(t, MinHistoryPoints, validationErr.Required)
			assert.Equal(t, 6, validationErr.Got)
			assert.True(t, errors.Is(err, ErrInsufficientHistory))
			assert.Contains(t, err.Error(), "7")
		})
	}
}

func TestGenerateForecast_ExactlyMinimumHistory(t *testing.T) {
	for _, method := range Methods {
		t.Run(string(method), func(t *testing.T) {
			engine := NewEngine(Parameters{Method: method})

			result, err := engine.GenerateForecast("item-1", "wh-1", generateNoisyData(7, 20), 14)
			require.NoError(t, err)
			assert.Len(t, result.Predictions, 14)
			assert.Equal(t, 7, result.HistoryPoints)
		})
	}
}

func TestGenerateForecast_HorizonAndDates(t *testing.T) {
	history := generateNoisyData(45, 30)
	lastDate := history[len(history)-1].Date

	for _, method := range Methods {
		for _, days := range []int{1, 7, 30, 60} {
			t.Run(fmt.Sprintf("%s/%d", method, days), func(t *testing.T) {
				engine := NewEngine(Parameters{Method: method})

				result, err := engine.GenerateForecast("item-1", "wh-1", history, days)
				require.NoError(t, err)
				require.Len(t, result.Predictions, days)

				for i, p := range result.Predictions {
					assert.True(t, p.Date.Equal(lastDate.AddDate(0, 0, i+1)),
						"prediction %d dated %s", i, p.Date)
				}
			})
		}
	}
}

func TestGenerateForecast_NonNegative(t *testing.T) {
	// steep decline pushes every trend-following method below zero
	history := generateLinearData(30, -4, 120)

	for _, method := range Methods {
		t.Run(string(method), func(t *testing.T) {
			engine := NewEngine(Parameters{Method: method})

			result, err := engine.GenerateForecast("item-1", "wh-1", history, 60)
			require.NoError(t, err)

			for i, p := range result.Predictions {
				assert.GreaterOrEqual(t, p.PredictedDemand, 0.0, "prediction %d", i)
				assert.GreaterOrEqual(t, p.ConfidenceInterval.Lower, 0.0, "prediction %d", i)
				assert.GreaterOrEqual(t, p.ConfidenceInterval.Upper, p.PredictedDemand, "prediction %d", i)
			}
		})
	}
}

func TestGenerateForecast_DefaultHorizon(t *testing.T) {
	engine := NewEngine(DefaultParameters())

	result, err := engine.GenerateForecast("item-1", "wh-1", generateConstantData(20, 5), 0)
	require.NoError(t, err)
	assert.Len(t, result.Predictions, DefaultForecastDays)
	assert.Equal(t, PeriodWeekly, result.ForecastPeriod)
	assert.Equal(t, MethodLinearRegression, result.Method)
}

func TestGenerateForecast_PerfectAccuracyCapsConfidence(t *testing.T) {
	engine := NewEngine(DefaultParameters())

	result, err := engine.GenerateForecast("item-1", "wh-1", generateConstantData(21, 10), 30)
	require.NoError(t, err)

	assert.InDelta(t, 100.0, result.Accuracy, 1e-9)
	assert.InDelta(t, 90.0, result.Confidence, 1e-9)
	for _, p := range result.Predictions {
		assert.InDelta(t, 10.0, p.PredictedDemand, 1e-9)
	}
}

func TestGenerateForecast_ShortHorizonDefaultsAccuracy(t *testing.T) {
	engine := NewEngine(DefaultParameters())

	result, err := engine.GenerateForecast("item-1", "wh-1", generateNoisyData(30, 20), 5)
	require.NoError(t, err)
	assert.Equal(t, defaultAccuracy, result.Accuracy)
	assert.InDelta(t, 72.0, result.Confidence, 1e-9)
	assert.Equal(t, PeriodDaily, result.ForecastPeriod)
}

func TestGenerateForecast_ZeroActualsDefaultsAccuracy(t *testing.T) {
	engine := NewEngine(Parameters{Method: MethodMovingAverage})

	result, err := engine.GenerateForecast("item-1", "wh-1", generateConstantData(14, 0), 10)
	require.NoError(t, err)
	assert.Equal(t, defaultAccuracy, result.Accuracy)
}

func TestGenerateForecast_AccuracyAndConfidenceBounds(t *testing.T) {
	history := generateSeries(1, 200, 3, 150, 2, 300, 1, 250, 4, 100, 2, 180, 1, 220)

	for _, method := range Methods {
		t.Run(string(method), func(t *testing.T) {
			result, err := NewEngine(Parameters{Method: method}).GenerateForecast("item-1", "wh-1", history, 30)
			require.NoError(t, err)

			assert.GreaterOrEqual(t, result.Accuracy, 0.0)
			assert.LessOrEqual(t, result.Accuracy, 100.0)
			assert.LessOrEqual(t, result.Confidence, maxConfidence)
			assert.InDelta(t, result.Accuracy*0.9, result.Confidence, 1e-9)
		})
	}
}

func TestGenerateForecast_DoesNotMutateInput(t *testing.T) {
	history := generateNoisyData(20, 15)
	// reverse to make the input unsorted
	for i, j := 0, len(history)-1; i < j; i, j = i+1, j-1 {
		history[i], history[j] = history[j], history[i]
	}
	snapshot := append(history[:0:0], history...)

	result, err := NewEngine(DefaultParameters()).GenerateForecast("item-1", "wh-1", history, 7)
	require.NoError(t, err)

	assert.Equal(t, snapshot, history)
	// sorted internally, so the first prediction follows the latest date
	assert.True(t, result.Predictions[0].Date.Equal(snapshot[0].Date.AddDate(0, 0, 1)))
}

func TestGenerateForecast_LookbackWindow(t *testing.T) {
	engine := NewEngine(Parameters{Method: MethodLinearRegression, LookbackDays: 30})

	result, err := engine.GenerateForecast("item-1", "wh-1", generateNoisyData(90, 20), 7)
	require.NoError(t, err)
	assert.Equal(t, 30, result.HistoryPoints)

	tight := NewEngine(Parameters{Method: MethodLinearRegression, LookbackDays: 3})
	result, err = tight.GenerateForecast("item-1", "wh-1", generateNoisyData(90, 20), 7)
	require.NoError(t, err)
	assert.Equal(t, MinHistoryPoints, result.HistoryPoints)
}

func TestGenerateForecast_LookbackCountsCalendarDays(t *testing.T) {
	// every other day for 60 days: 30 points, 15 of them inside the last 30 days
	var history []domain.HistoricalDemand
	for i := 0; i < 60; i += 2 {
		history = append(history, domain.HistoricalDemand{Date: testBaseDate.AddDate(0, 0, i), Quantity: float64(10 + i%5)})
	}

	result, err := NewEngine(Parameters{Method: MethodMovingAverage, LookbackDays: 30}).GenerateForecast("item-1", "", history, 7)
	require.NoError(t, err)
	assert.Equal(t, 15, result.HistoryPoints)

	// a sparse window still keeps the minimum number of points
	result, err = NewEngine(Parameters{Method: MethodMovingAverage, LookbackDays: 8}).GenerateForecast("item-1", "", history, 7)
	require.NoError(t, err)
	assert.Equal(t, MinHistoryPoints, result.HistoryPoints)
}

func TestGenerateForecast_Idempotent(t *testing.T) {
	history := generateWeeklyData(60, 8, 20)

	for _, method := range Methods {
		t.Run(string(method), func(t *testing.T) {
			engine := NewEngine(Parameters{Method: method})

			first, err := engine.GenerateForecast("item-1", "wh-1", history, 30)
			require.NoError(t, err)
			second, err := engine.GenerateForecast("item-1", "wh-1", history, 30)
			require.NoError(t, err)
			assert.Equal(t, first, second)
		})
	}
}

func TestClassifyPeriod(t *testing.T) {
	tests := []struct {
		days     int
		expected ForecastPeriod
	}{
		{1, PeriodDaily},
		{7, PeriodDaily},
		{8, PeriodWeekly},
		{30, PeriodWeekly},
		{31, PeriodMonthly},
		{365, PeriodMonthly},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprintf("%d days", tt.days), func(t *testing.T) {
			assert.Equal(t, tt.expected, ClassifyPeriod(tt.days))
		})
	}
}

func TestParseMethod(t *testing.T) {
	tests := []struct {
		input    string
		expected Method
		wantErr  bool
	}{
		{"LINEAR_REGRESSION", MethodLinearRegression, false},
		{"moving_average", MethodMovingAverage, false},
		{"exponential-smoothing", MethodExponentialSmoothing, false},
		{" arima ", MethodARIMA, false},
		{"", MethodLinearRegression, false},
		{"prophet", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			method, err := ParseMethod(tt.input)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expected, method)
		})
	}
}

func TestNewEngine_UnknownMethodFallsBack(t *testing.T) {
	engine := NewEngine(Parameters{Method: "SEASONAL_NAIVE"})
	assert.Equal(t, MethodLinearRegression, engine.Parameters().Method)

	_, err := NewForecaster(Parameters{Method: "SEASONAL_NAIVE"})
	assert.Error(t, err)
}

func TestNewEngine_AppliesDefaults(t *testing.T) {
	params := NewEngine(Parameters{Alpha: 2, Beta: -1}).Parameters()

	assert.Equal(t, defaultSeasonalPeriod, params.SeasonalPeriod)
	assert.Equal(t, defaultAlpha, params.Alpha)
	assert.Equal(t, defaultBeta, params.Beta)
	assert.Equal(t, defaultGamma, params.Gamma)
}

func TestCalculateMAPE(t *testing.T) {
	mape, ok := CalculateMAPE([]float64{100, 200, 300}, []float64{110, 190, 310})
	require.True(t, ok)
	// (0.1 + 0.05 + 0.0333) / 3 * 100
	assert.InDelta(t, 6.111, mape, 0.001)

	_, ok = CalculateMAPE([]float64{0, 0}, []float64{1, 2})
	assert.False(t, ok)

	_, ok = CalculateMAPE([]float64{1}, []float64{1, 2})
	assert.False(t, ok)
}

func TestDemandForecast_TotalDemand(t *testing.T) {
	result, err := NewEngine(DefaultParameters()).GenerateForecast("item-1", "wh-1", generateConstantData(14, 4), 10)
	require.NoError(t, err)

	assert.InDelta(t, 28.0, result.TotalDemand(7), 1e-9)
	assert.InDelta(t, 40.0, result.TotalDemand(0), 1e-9)

	var missing *DemandForecast
	assert.Equal(t, 0.0, missing.TotalDemand(7))
}
