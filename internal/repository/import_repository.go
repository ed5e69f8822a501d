package repository

import (
	"context"

	"github.com/andresuchdata/stockcast/internal/domain"
)

// ImportRepository upserts planning inputs. Each call is atomic.
type ImportRepository interface {
	UpsertItems(ctx context.Context, items []domain.InventoryItem) (int, error)
	UpsertDemand(ctx context.Context, demand []domain.DemandObservation) (int, error)
	UpsertStockLevels(ctx context.Context, levels []domain.StockLevel) (int, error)
}
