package optimizer

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/andresuchdata/stockcast/internal/domain"
)

func TestOptimizeBatch_IsolatesFailures(t *testing.T) {
	o := NewOptimizer(DefaultParameters())
	history := generateConstantData(30, 4)

	entries := []BatchEntry{
		{Item: domain.InventoryItem{ID: "good-1", CostPrice: 10}, CurrentStock: 50, History: history},
		{Item: domain.InventoryItem{ID: "bad", CostPrice: -1}, CurrentStock: 50, History: history},
		{Item: domain.InventoryItem{ID: "good-2", CostPrice: 20}, CurrentStock: 10, History: history},
		{Item: domain.InventoryItem{ID: ""}, CurrentStock: 1},
	}

	results := o.OptimizeBatch(context.Background(), entries, 2)
	require.Len(t, results, 4)

	for i, r := range results {
		assert.Equal(t, i, r.Index)
	}

	assert.NoError(t, results[0].Err)
	assert.Equal(t, "good-1", results[0].Result.ItemID)

	var verr *ValidationError
	assert.ErrorAs(t, results[1].Err, &verr)
	assert.Nil(t, results[1].Result)
	assert.Equal(t, "bad", results[1].ItemID)

	assert.NoError(t, results[2].Err)
	assert.Equal(t, "good-2", results[2].Result.ItemID)

	assert.Error(t, results[3].Err)

	succeeded := Succeeded(results)
	require.Len(t, succeeded, 2)
	assert.Equal(t, "good-1", succeeded[0].ItemID)
	assert.Equal(t, "good-2", succeeded[1].ItemID)
}

func TestOptimizeBatch_MatchesSingleItem(t *testing.T) {
	o := NewOptimizer(DefaultParameters())
	history := generateWeeklyData(42, 3, 6)
	item := testItem()

	single, err := o.OptimizeItem(item, "wh-1", 30, history, nil)
	require.NoError(t, err)

	results := OptimizeInventoryBatch(context.Background(), []BatchEntry{
		{Item: item, WarehouseID: "wh-1", CurrentStock: 30, History: history},
	}, DefaultParameters())

	require.Len(t, results, 1)
	require.NoError(t, results[0].Err)
	assert.Equal(t, single, results[0].Result)
}

func TestOptimizeBatch_CancelledContext(t *testing.T) {
	o := NewOptimizer(DefaultParameters())
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	results := o.OptimizeBatch(ctx, []BatchEntry{
		{Item: testItem(), CurrentStock: 10, History: generateConstantData(10, 1)},
	}, 0)

	require.Len(t, results, 1)
	assert.ErrorIs(t, results[0].Err, context.Canceled)
}

func TestOptimizeBatch_Empty(t *testing.T) {
	results := NewOptimizer(DefaultParameters()).OptimizeBatch(context.Background(), nil, 0)
	assert.Empty(t, results)
}
