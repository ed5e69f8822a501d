package postgres

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/andresuchdata/stockcast/internal/domain"
	"github.com/andresuchdata/stockcast/internal/repository"
)

type importRepository struct {
	db *DB
}

func NewImportRepository(db *DB) repository.ImportRepository {
	return &importRepository{db: db}
}

// execEach prepares query once and executes it for every argument list inside
// a single transaction.
func (r *importRepository) execEach(ctx context.Context, what, query string, n int, args func(i int) []any) (int, error) {
	if n == 0 {
		return 0, nil
	}
	err := r.db.WithTx(ctx, func(tx *sqlx.Tx) error {
		stmt, err := tx.PreparexContext(ctx, query)
		if err != nil {
			return fmt.Errorf("failed to prepare %s upsert: %w", what, err)
		}
		defer stmt.Close()

		for i := 0; i < n; i++ {
			if _, err := stmt.ExecContext(ctx, args(i)...); err != nil {
				return fmt.Errorf("failed to upsert %s row %d: %w", what, i+1, err)
			}
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return n, nil
}

func (r *importRepository) UpsertItems(ctx context.Context, items []domain.InventoryItem) (int, error) {
	query := `
		INSERT INTO inventory_items (` + itemColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		ON CONFLICT (id) DO UPDATE SET
			item_name = EXCLUDED.item_name,
			item_code = EXCLUDED.item_code,
			sku = EXCLUDED.sku,
			cost_price = EXCLUDED.cost_price,
			unit_price = EXCLUDED.unit_price,
			min_stock_level = EXCLUDED.min_stock_level,
			max_stock_level = EXCLUDED.max_stock_level,
			reorder_point = EXCLUDED.reorder_point,
			reorder_quantity = EXCLUDED.reorder_quantity,
			unit_of_measure = EXCLUDED.unit_of_measure
	`
	return r.execEach(ctx, "item", query, len(items), func(i int) []any {
		it := items[i]
		return []any{
			it.ID, it.ItemName, it.ItemCode, it.SKU, it.CostPrice, it.UnitPrice,
			it.MinStockLevel, it.MaxStockLevel, it.ReorderPoint, it.ReorderQuantity, it.UnitOfMeasure,
		}
	})
}

func (r *importRepository) UpsertDemand(ctx context.Context, demand []domain.DemandObservation) (int, error) {
	query := `
		INSERT INTO demand_history (item_id, warehouse_id, demand_date, quantity, price, is_holiday)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (item_id, warehouse_id, demand_date) DO UPDATE SET
			quantity = EXCLUDED.quantity,
			price = EXCLUDED.price,
			is_holiday = EXCLUDED.is_holiday
	`
	return r.execEach(ctx, "demand", query, len(demand), func(i int) []any {
		d := demand[i]
		return []any{d.ItemID, d.WarehouseID, domain.NormalizeDate(d.Date), d.Quantity, d.Price, d.IsHoliday}
	})
}

func (r *importRepository) UpsertStockLevels(ctx context.Context, levels []domain.StockLevel) (int, error) {
	query := `
		INSERT INTO stock_levels (item_id, warehouse_id, quantity_on_hand, updated_at)
		VALUES ($1, $2, $3, NOW())
		ON CONFLICT (item_id, warehouse_id) DO UPDATE SET
			quantity_on_hand = EXCLUDED.quantity_on_hand,
			updated_at = NOW()
	`
	return r.execEach(ctx, "stock level", query, len(levels), func(i int) []any {
		l := levels[i]
		return []any{l.ItemID, l.WarehouseID, l.QuantityOnHand}
	})
}
