package cache

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/andresuchdata/stockcast/internal/config"
	"github.com/andresuchdata/stockcast/internal/domain"
	"github.com/andresuchdata/stockcast/internal/forecast"
)

const (
	forecastKeyPrefix     = "forecast"
	forecastScanBatchSize = 100
	defaultForecastTTL    = 15 * time.Minute
)

// ForecastKey identifies one forecast request. Fingerprint covers every
// observation and the engine parameters, so equal keys mean equal forecasts.
type ForecastKey struct {
	ItemID      string
	WarehouseID string
	Method      forecast.Method
	Horizon     int
	Fingerprint string
}

// NewForecastKey fingerprints params and the date-ordered history for the
// given request.
func NewForecastKey(itemID, warehouseID string, params forecast.Parameters, horizon int, history []domain.HistoricalDemand) ForecastKey {
	return ForecastKey{
		ItemID:      itemID,
		WarehouseID: warehouseID,
		Method:      params.Method,
		Horizon:     horizon,
		Fingerprint: fingerprint(params, history),
	}
}

func fingerprint(params forecast.Parameters, history []domain.HistoricalDemand) string {
	points := make([]domain.HistoricalDemand, len(history))
	for i, h := range history {
		points[i] = domain.HistoricalDemand{Date: domain.NormalizeDate(h.Date), Quantity: h.Quantity}
	}
	sort.SliceStable(points, func(i, j int) bool {
		return points[i].Date.Before(points[j].Date)
	})

	h := sha1.New()
	fmt.Fprintf(h, "lookback=%d|season=%d|alpha=%s|beta=%s|gamma=%s\n",
		params.LookbackDays, params.SeasonalPeriod,
		formatFloat(params.Alpha), formatFloat(params.Beta), formatFloat(params.Gamma))
	for _, p := range points {
		fmt.Fprintf(h, "%s=%s\n", p.Date.Format("2006-01-02"), formatFloat(p.Quantity))
	}
	return hex.EncodeToString(h.Sum(nil))
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}

type ForecastCache interface {
	Get(ctx context.Context, key ForecastKey) (*forecast.DemandForecast, bool, error)
	Set(ctx context.Context, key ForecastKey, fc *forecast.DemandForecast) error
	Invalidate(ctx context.Context, itemID string) error
	InvalidateAll(ctx context.Context) error
}

type redisForecastCache struct {
	client *redis.Client
	ttl    time.Duration
}

type noopForecastCache struct{}

// NewForecastCache connects to Redis when caching is enabled and returns a
// no-op cache otherwise. The connection is verified before returning.
func NewForecastCache(cfg config.CacheConfig) (ForecastCache, error) {
	if !cfg.Enabled {
		return &noopForecastCache{}, nil
	}

	opts, err := redisOptions(cfg)
	if err != nil {
		return nil, err
	}
	client := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}

	return NewRedisForecastCache(client, time.Duration(cfg.ForecastTTLSeconds)*time.Second), nil
}

// NewRedisForecastCache wraps an existing client. A non-positive ttl falls
// back to 15 minutes.
func NewRedisForecastCache(client *redis.Client, ttl time.Duration) ForecastCache {
	if ttl <= 0 {
		ttl = defaultForecastTTL
	}
	return &redisForecastCache{client: client, ttl: ttl}
}

// redisOptions prefers REDIS_URL and otherwise assembles host, port and db.
func redisOptions(cfg config.CacheConfig) (*redis.Options, error) {
	if cfg.RedisURL != "" {
		opts, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			return nil, fmt.Errorf("invalid redis url: %w", err)
		}
		return opts, nil
	}

	host, port := cfg.RedisHost, cfg.RedisPort
	if host == "" {
		host = "127.0.0.1"
	}
	if port == "" {
		port = "6379"
	}
	return &redis.Options{
		Addr:     net.JoinHostPort(host, port),
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	}, nil
}

func NewNoopForecastCache() ForecastCache {
	return &noopForecastCache{}
}

func (c *redisForecastCache) Get(ctx context.Context, key ForecastKey) (*forecast.DemandForecast, bool, error) {
	payload, err := c.client.Get(ctx, buildForecastKey(key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("redis get failed: %w", err)
	}

	var fc forecast.DemandForecast
	if err := json.Unmarshal(payload, &fc); err != nil {
		return nil, false, fmt.Errorf("decode forecast cache: %w", err)
	}
	return &fc, true, nil
}

func (c *redisForecastCache) Set(ctx context.Context, key ForecastKey, fc *forecast.DemandForecast) error {
	payload, err := json.Marshal(fc)
	if err != nil {
		return fmt.Errorf("encode forecast cache: %w", err)
	}
	if err := c.client.Set(ctx, buildForecastKey(key), payload, c.ttl).Err(); err != nil {
		return fmt.Errorf("redis set failed: %w", err)
	}
	return nil
}

func (c *redisForecastCache) Invalidate(ctx context.Context, itemID string) error {
	return c.deleteMatching(ctx, itemKeyPrefix(itemID)+"*")
}

func (c *redisForecastCache) InvalidateAll(ctx context.Context) error {
	return c.deleteMatching(ctx, forecastKeyPrefix+":*")
}

// deleteMatching removes forecast entries page by page with SCAN so large
// keyspaces never block the server.
func (c *redisForecastCache) deleteMatching(ctx context.Context, pattern string) error {
	iter := c.client.Scan(ctx, 0, pattern, forecastScanBatchSize).Iterator()
	batch := make([]string, 0, forecastScanBatchSize)
	for iter.Next(ctx) {
		batch = append(batch, iter.Val())
		if len(batch) == forecastScanBatchSize {
			if err := c.client.Del(ctx, batch...).Err(); err != nil {
				return fmt.Errorf("redis delete failed: %w", err)
			}
			batch = batch[:0]
		}
	}
	if err := iter.Err(); err != nil {
		return fmt.Errorf("redis scan failed: %w", err)
	}
	if len(batch) > 0 {
		if err := c.client.Del(ctx, batch...).Err(); err != nil {
			return fmt.Errorf("redis delete failed: %w", err)
		}
	}
	return nil
}

func (n *noopForecastCache) Get(ctx context.Context, key ForecastKey) (*forecast.DemandForecast, bool, error) {
	return nil, false, nil
}

func (n *noopForecastCache) Set(ctx context.Context, key ForecastKey, fc *forecast.DemandForecast) error {
	return nil
}

func (n *noopForecastCache) Invalidate(ctx context.Context, itemID string) error {
	return nil
}

func (n *noopForecastCache) InvalidateAll(ctx context.Context) error {
	return nil
}

// itemKeyPrefix keeps the item id readable so one item can be invalidated by prefix scan.
func itemKeyPrefix(itemID string) string {
	return fmt.Sprintf("%s:%s:", forecastKeyPrefix, itemID)
}

func buildForecastKey(key ForecastKey) string {
	return itemKeyPrefix(key.ItemID) + forecastKeyHash(key)
}

func forecastKeyHash(key ForecastKey) string {
	parts := []string{
		"warehouse=" + key.WarehouseID,
		"method=" + string(key.Method),
		"horizon=" + strconv.Itoa(key.Horizon),
		"history=" + key.Fingerprint,
	}
	sum := sha1.Sum([]byte(strings.Join(parts, "|")))
	return hex.EncodeToString(sum[:])
}
