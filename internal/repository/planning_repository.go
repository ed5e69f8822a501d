package repository

import (
	"context"
	"time"

	"github.com/andresuchdata/stockcast/internal/domain"
	"github.com/andresuchdata/stockcast/internal/optimizer"
)

// PlanningRepository is the data source and sink of the planning service.
type PlanningRepository interface {
	// GetItems returns the requested items, or every item when ids is empty.
	GetItems(ctx context.Context, ids []string) ([]domain.InventoryItem, error)
	// GetDemandHistory returns daily demand since the given day, summed across
	// warehouses when warehouseID is empty, ordered by date.
	GetDemandHistory(ctx context.Context, itemID, warehouseID string, since time.Time) ([]domain.HistoricalDemand, error)
	GetStockLevels(ctx context.Context, warehouseID string) ([]domain.StockLevel, error)
	SaveOptimizationResults(ctx context.Context, run domain.PlanRun, results []*optimizer.Result) error
	// GetAnnualUsage annualizes demand since the given day and prices it at cost.
	GetAnnualUsage(ctx context.Context, since time.Time) ([]domain.ItemUsage, error)
}
