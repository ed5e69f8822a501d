package cache

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/andresuchdata/stockcast/internal/config"
	"github.com/andresuchdata/stockcast/internal/domain"
	"github.com/andresuchdata/stockcast/internal/forecast"
)

func history(values ...float64) []domain.HistoricalDemand {
	base := time.Date(2025, 3, 3, 0, 0, 0, 0, time.UTC)
	out := make([]domain.HistoricalDemand, len(values))
	for i, v := range values {
		out[i] = domain.HistoricalDemand{Date: base.AddDate(0, 0, i), Quantity: v}
	}
	return out
}

func TestNewForecastKey(t *testing.T) {
	params := forecast.DefaultParameters()
	params.Method = forecast.MethodARIMA
	key := NewForecastKey("sku-1", "wh-1", params, 14, history(1, 2, 3))

	assert.Equal(t, "sku-1", key.ItemID)
	assert.Equal(t, forecast.MethodARIMA, key.Method)
	assert.Len(t, key.Fingerprint, 40)
}

func TestNewForecastKey_OrderIndependent(t *testing.T) {
	params := forecast.DefaultParameters()
	rows := history(4, 5, 6)
	shuffled := []domain.HistoricalDemand{rows[2], rows[0], rows[1]}
	shuffled[0].Date = shuffled[0].Date.Add(9 * time.Hour)

	assert.Equal(t,
		NewForecastKey("sku-1", "wh-1", params, 30, rows),
		NewForecastKey("sku-1", "wh-1", params, 30, shuffled))
}

func TestBuildForecastKey(t *testing.T) {
	params := forecast.DefaultParameters()
	base := NewForecastKey("sku-1", "wh-1", params, 30, history(4, 5, 6))
	same := NewForecastKey("sku-1", "wh-1", params, 30, history(4, 5, 6))

	assert.Equal(t, buildForecastKey(base), buildForecastKey(same))
	assert.True(t, strings.HasPrefix(buildForecastKey(base), "forecast:sku-1:"))

	movingAverage := params
	movingAverage.Method = forecast.MethodMovingAverage
	lookback := params
	lookback.LookbackDays = 60
	season := params
	season.SeasonalPeriod = 30
	alpha := params
	alpha.Alpha = 0.5

	variants := map[string]ForecastKey{
		"warehouse":   NewForecastKey("sku-1", "wh-2", params, 30, history(4, 5, 6)),
		"method":      NewForecastKey("sku-1", "wh-1", movingAverage, 30, history(4, 5, 6)),
		"horizon":     NewForecastKey("sku-1", "wh-1", params, 7, history(4, 5, 6)),
		"extra point": NewForecastKey("sku-1", "wh-1", params, 30, history(4, 5, 6, 7)),
		"new value":   NewForecastKey("sku-1", "wh-1", params, 30, history(4, 5, 9)),
		"same total":  NewForecastKey("sku-1", "wh-1", params, 30, history(6, 5, 4)),
		"lookback":    NewForecastKey("sku-1", "wh-1", lookback, 30, history(4, 5, 6)),
		"season":      NewForecastKey("sku-1", "wh-1", season, 30, history(4, 5, 6)),
		"alpha":       NewForecastKey("sku-1", "wh-1", alpha, 30, history(4, 5, 6)),
	}
	for name, v := range variants {
		assert.NotEqual(t, buildForecastKey(base), buildForecastKey(v), name)
	}
}

func TestNoopForecastCache(t *testing.T) {
	c, err := NewForecastCache(config.CacheConfig{Enabled: false})
	require.NoError(t, err)

	ctx := context.Background()
	key := NewForecastKey("sku-1", "", forecast.DefaultParameters(), 7, history(1))

	require.NoError(t, c.Set(ctx, key, &forecast.DemandForecast{ItemID: "sku-1"}))
	fc, ok, err := c.Get(ctx, key)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Nil(t, fc)
	assert.NoError(t, c.Invalidate(ctx, "sku-1"))
	assert.NoError(t, c.InvalidateAll(ctx))
}

func TestRedisOptions(t *testing.T) {
	opts, err := redisOptions(config.CacheConfig{RedisHost: "cache", RedisPort: "6380", RedisDB: 2})
	require.NoError(t, err)
	assert.Equal(t, "cache:6380", opts.Addr)
	assert.Equal(t, 2, opts.DB)

	opts, err = redisOptions(config.CacheConfig{RedisURL: "redis://:secret@localhost:6379/3"})
	require.NoError(t, err)
	assert.Equal(t, "secret", opts.Password)
	assert.Equal(t, 3, opts.DB)

	_, err = redisOptions(config.CacheConfig{RedisURL: "http://nope"})
	assert.Error(t, err)
}
