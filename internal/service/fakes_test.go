package service

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/andresuchdata/stockcast/internal/cache"
	"github.com/andresuchdata/stockcast/internal/domain"
	"github.com/andresuchdata/stockcast/internal/forecast"
	"github.com/andresuchdata/stockcast/internal/optimizer"
	"github.com/andresuchdata/stockcast/internal/storage"
)

var testNow = time.Date(2025, 4, 1, 12, 0, 0, 0, time.UTC)

func weeklyHistory(n int) []domain.HistoricalDemand {
	out := make([]domain.HistoricalDemand, n)
	start := testNow.AddDate(0, 0, -n)
	for i := range out {
		q := 2.0
		if d := start.AddDate(0, 0, i).Weekday(); d == time.Saturday || d == time.Sunday {
			q = 5
		}
		out[i] = domain.HistoricalDemand{Date: domain.NormalizeDate(start.AddDate(0, 0, i)), Quantity: q}
	}
	return out
}

type fakeRepo struct {
	mu         sync.Mutex
	items      map[string]domain.InventoryItem
	history    map[string][]domain.HistoricalDemand
	historyErr map[string]error
	levels     map[string][]domain.StockLevel
	usage      []domain.ItemUsage
	saved      []domain.PlanRun
	savedRes   [][]*optimizer.Result
	saveErr    error
	since      time.Time
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{
		items:      map[string]domain.InventoryItem{},
		history:    map[string][]domain.HistoricalDemand{},
		historyErr: map[string]error{},
		levels:     map[string][]domain.StockLevel{},
	}
}

func (r *fakeRepo) GetItems(ctx context.Context, ids []string) ([]domain.InventoryItem, error) {
	var out []domain.InventoryItem
	for _, id := range ids {
		if item, ok := r.items[id]; ok {
			out = append(out, item)
		}
	}
	return out, nil
}

func (r *fakeRepo) GetDemandHistory(ctx context.Context, itemID, warehouseID string, since time.Time) ([]domain.HistoricalDemand, error) {
	r.mu.Lock()
	r.since = since
	r.mu.Unlock()
	if err := r.historyErr[itemID]; err != nil {
		return nil, err
	}
	return r.history[itemID], nil
}

func (r *fakeRepo) GetStockLevels(ctx context.Context, warehouseID string) ([]domain.StockLevel, error) {
	return r.levels[warehouseID], nil
}

func (r *fakeRepo) SaveOptimizationResults(ctx context.Context, run domain.PlanRun, results []*optimizer.Result) error {
	if r.saveErr != nil {
		return r.saveErr
	}
	r.saved = append(r.saved, run)
	r.savedRes = append(r.savedRes, results)
	return nil
}

func (r *fakeRepo) GetAnnualUsage(ctx context.Context, since time.Time) ([]domain.ItemUsage, error) {
	r.since = since
	return r.usage, nil
}

type memoryCache struct {
	mu      sync.Mutex
	entries map[cache.ForecastKey]*forecast.DemandForecast
	gets    int
	hits    int
}

func newMemoryCache() *memoryCache {
	return &memoryCache{entries: map[cache.ForecastKey]*forecast.DemandForecast{}}
}

func (c *memoryCache) Get(ctx context.Context, key cache.ForecastKey) (*forecast.DemandForecast, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.gets++
	fc, ok := c.entries[key]
	if ok {
		c.hits++
	}
	return fc, ok, nil
}

func (c *memoryCache) Set(ctx context.Context, key cache.ForecastKey, fc *forecast.DemandForecast) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = fc
	return nil
}

func (c *memoryCache) Invalidate(ctx context.Context, itemID string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	for k := range c.entries {
		if k.ItemID == itemID {
			delete(c.entries, k)
		}
	}
	return nil
}

func (c *memoryCache) InvalidateAll(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = map[cache.ForecastKey]*forecast.DemandForecast{}
	return nil
}

type memoryStorage struct {
	objects map[string][]byte
	err     error
}

func (m *memoryStorage) ListObjects(ctx context.Context, prefix string) ([]storage.ObjectInfo, error) {
	var out []storage.ObjectInfo
	for k, v := range m.objects {
		out = append(out, storage.ObjectInfo{Key: k, Size: int64(len(v))})
	}
	return out, nil
}

func (m *memoryStorage) DownloadObject(ctx context.Context, key, destPath string) error {
	return errors.New("not implemented")
}

func (m *memoryStorage) UploadObject(ctx context.Context, key string, data []byte) error {
	if m.err != nil {
		return m.err
	}
	if m.objects == nil {
		m.objects = map[string][]byte{}
	}
	m.objects[key] = data
	return nil
}

type denyAll struct{}

func (denyAll) Allow(context.Context, Operation) bool { return false }
