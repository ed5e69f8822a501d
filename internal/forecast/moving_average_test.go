package forecast

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMovingAverageWindow(t *testing.T) {
	tests := []struct {
		n        int
		expected int
	}{
		{1, 1},
		{7, 3},
		{20, 10},
		{28, 14},
		{90, 14},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.expected, movingAverageWindow(tt.n), "n=%d", tt.n)
	}
}

func TestMovingAverageForecaster_ConstantDemand(t *testing.T) {
	predictions := NewMovingAverageForecaster().Forecast(generateConstantData(21, 6), 10)
	require.Len(t, predictions, 10)

	for _, p := range predictions {
		assert.InDelta(t, 6.0, p.PredictedDemand, 1e-9)
		assert.InDelta(t, 6.0, p.ConfidenceInterval.Lower, 1e-9)
		assert.InDelta(t, 6.0, p.ConfidenceInterval.Upper, 1e-9)
	}
}

func TestMovingAverageForecaster_ConstantIntervalWidth(t *testing.T) {
	predictions := NewMovingAverageForecaster().Forecast(generateNoisyData(40, 60), 20)
	require.Len(t, predictions, 20)

	first := predictions[0].ConfidenceInterval.Upper - predictions[0].PredictedDemand
	assert.Greater(t, first, 0.0)
	for i, p := range predictions {
		assert.InDelta(t, first, p.ConfidenceInterval.Upper-p.PredictedDemand, 1e-9, "prediction %d", i)
	}
}

func TestMovingAverageForecaster_EndpointTrend(t *testing.T) {
	// window is 10: the last ten points rise by one per day
	predictions := NewMovingAverageForecaster().Forecast(generateLinearData(20, 1, 10), 3)
	require.Len(t, predictions, 3)

	for _, p := range predictions {
		require.NotNil(t, p.Trend)
		assert.InDelta(t, 1.0, *p.Trend, 1e-9)
	}
}

func TestMovingAverageForecaster_Method(t *testing.T) {
	assert.Equal(t, MethodMovingAverage, NewMovingAverageForecaster().Method())
}
