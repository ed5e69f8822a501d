package service

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/andresuchdata/stockcast/internal/cache"
	"github.com/andresuchdata/stockcast/internal/domain"
	"github.com/andresuchdata/stockcast/internal/ingest"
	"github.com/andresuchdata/stockcast/internal/repository"
)

// ImportBatch is the parsed content of item and demand files.
type ImportBatch struct {
	Items  []ingest.ItemRecord
	Demand []ingest.DemandRecord
	// DefaultWarehouse is used for rows without a warehouse_id.
	DefaultWarehouse string
}

// ImportSummary counts the rows written per table.
type ImportSummary struct {
	Items       int `json:"items"`
	Demand      int `json:"demand"`
	StockLevels int `json:"stock_levels"`
}

// ImportService loads planning inputs into the repository and drops cached
// forecasts of every item whose demand changed.
type ImportService struct {
	repo  repository.ImportRepository
	cache cache.ForecastCache
}

func NewImportService(repo repository.ImportRepository, cacheImpl cache.ForecastCache) *ImportService {
	if cacheImpl == nil {
		cacheImpl = cache.NewNoopForecastCache()
	}
	return &ImportService{repo: repo, cache: cacheImpl}
}

// Import writes items before demand and stock so references resolve.
func (s *ImportService) Import(ctx context.Context, batch ImportBatch) (ImportSummary, error) {
	var summary ImportSummary

	items := make([]domain.InventoryItem, 0, len(batch.Items))
	var levels []domain.StockLevel
	for _, rec := range batch.Items {
		items = append(items, rec.Item)
		if warehouse := firstNonEmpty(rec.WarehouseID, batch.DefaultWarehouse); warehouse != "" {
			levels = append(levels, domain.StockLevel{
				ItemID:         rec.Item.ID,
				WarehouseID:    warehouse,
				QuantityOnHand: rec.CurrentStock,
			})
		}
	}

	demand := make([]domain.DemandObservation, 0, len(batch.Demand))
	touched := make(map[string]struct{})
	for i, rec := range batch.Demand {
		if rec.ItemID == "" {
			return summary, &InvalidRequestError{Field: "item_id", Reason: fmt.Sprintf("missing on demand row %d", i+1)}
		}
		demand = append(demand, domain.DemandObservation{
			ItemID:           rec.ItemID,
			WarehouseID:      firstNonEmpty(rec.WarehouseID, batch.DefaultWarehouse),
			HistoricalDemand: rec.Demand,
		})
		touched[rec.ItemID] = struct{}{}
	}

	var err error
	if summary.Items, err = s.repo.UpsertItems(ctx, items); err != nil {
		return summary, err
	}
	if summary.Demand, err = s.repo.UpsertDemand(ctx, demand); err != nil {
		return summary, err
	}
	if summary.StockLevels, err = s.repo.UpsertStockLevels(ctx, levels); err != nil {
		return summary, err
	}

	for itemID := range touched {
		if err := s.cache.Invalidate(ctx, itemID); err != nil {
			log.Warn().Err(err).Str("item_id", itemID).Msg("import: failed to invalidate cached forecasts")
		}
	}

	log.Info().
		Int("items", summary.Items).
		Int("demand", summary.Demand).
		Int("stock_levels", summary.StockLevels).
		Msg("import complete")
	return summary, nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
