package forecast

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestARIMAForecaster_FirstDayStepCarriesForward(t *testing.T) {
	// differences alternate 2, -1 with mean 0.5, so phi = -11.25 / 13.5
	history := generateSeries(10, 12, 11, 13, 12, 14, 13)

	predictions := NewARIMAForecaster().Forecast(history, 5)
	require.Len(t, predictions, 5)

	phi := -11.25 / 13.5
	dayOne := 13 + phi*-1
	for i, p := range predictions {
		assert.InDelta(t, dayOne, p.PredictedDemand, 1e-9, "prediction %d", i)
		// population stddev of the differences is 1.5
		assert.InDelta(t, dayOne+1.96*1.5, p.ConfidenceInterval.Upper, 1e-9)
	}

	require.NotNil(t, predictions[0].Trend)
	assert.InDelta(t, -phi, *predictions[0].Trend, 1e-9)
	assert.Equal(t, 0.0, *predictions[1].Trend)
}

func TestARIMAForecaster_ConstantSeries(t *testing.T) {
	predictions := NewARIMAForecaster().Forecast(generateConstantData(10, 7), 4)
	require.Len(t, predictions, 4)

	for _, p := range predictions {
		assert.Equal(t, 7.0, p.PredictedDemand)
		assert.Equal(t, 7.0, p.ConfidenceInterval.Lower)
		assert.Equal(t, 7.0, p.ConfidenceInterval.Upper)
	}
}

func TestLag1Autocorrelation(t *testing.T) {
	assert.Equal(t, 0.0, lag1Autocorrelation([]float64{3, 3, 3}))
	assert.Equal(t, 0.0, lag1Autocorrelation([]float64{1}))
	assert.InDelta(t, -11.25/13.5, lag1Autocorrelation([]float64{2, -1, 2, -1, 2, -1}), 1e-12)
}

func TestARIMAForecaster_Method(t *testing.T) {
	assert.Equal(t, MethodARIMA, NewARIMAForecaster().Method())
}
