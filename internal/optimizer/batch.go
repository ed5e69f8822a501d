package optimizer

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/andresuchdata/stockcast/internal/domain"
	"github.com/andresuchdata/stockcast/internal/forecast"
)

// DefaultBatchWorkers bounds how many items are optimized at once.
const DefaultBatchWorkers = 4

// BatchEntry is one item of a batch request.
type BatchEntry struct {
	Item         domain.InventoryItem
	WarehouseID  string
	CurrentStock float64
	History      []domain.HistoricalDemand
	Forecast     *forecast.DemandForecast
}

// BatchResult pairs an entry's outcome with its position in the request.
// Exactly one of Result and Err is set.
type BatchResult struct {
	Index  int
	ItemID string
	Result *Result
	Err    error
}

// OptimizeBatch optimizes every entry with at most workers in flight. A failing
// or panicking entry is reported in its own BatchResult and never stops the
// others. Results are returned in input order.
func (o *Optimizer) OptimizeBatch(ctx context.Context, entries []BatchEntry, workers int) []BatchResult {
	if workers <= 0 {
		workers = DefaultBatchWorkers
	}

	results := make([]BatchResult, len(entries))
	g := new(errgroup.Group)
	g.SetLimit(workers)

	for i := range entries {
		entry := entries[i]
		results[i] = BatchResult{Index: i, ItemID: entry.Item.ID}

		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				results[i].Err = err
				return nil
			}
			results[i].Result, results[i].Err = o.optimizeEntry(entry)
			return nil
		})
	}
	// entry errors are collected per result; Wait only joins the workers
	_ = g.Wait()
	return results
}

func (o *Optimizer) optimizeEntry(entry BatchEntry) (result *Result, err error) {
	defer func() {
		if r := recover(); r != nil {
			result, err = nil, fmt.Errorf("item %s: optimization panicked: %v", entry.Item.ID, r)
		}
	}()

	return o.OptimizeItem(entry.Item, entry.WarehouseID, entry.CurrentStock, entry.History, entry.Forecast)
}

// OptimizeInventoryBatch optimizes entries with a fresh Optimizer built from params.
func OptimizeInventoryBatch(ctx context.Context, entries []BatchEntry, params Parameters) []BatchResult {
	return NewOptimizer(params).OptimizeBatch(ctx, entries, DefaultBatchWorkers)
}

// Succeeded returns the results of entries that were optimized, in input order.
func Succeeded(results []BatchResult) []*Result {
	out := make([]*Result, 0, len(results))
	for _, r := range results {
		if r.Err == nil && r.Result != nil {
			out = append(out, r.Result)
		}
	}
	return out
}
