package postgres

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/andresuchdata/stockcast/internal/domain"
	"github.com/andresuchdata/stockcast/internal/optimizer"
	"github.com/andresuchdata/stockcast/internal/repository"
)

type planningRepository struct {
	db *DB
}

func NewPlanningRepository(db *DB) repository.PlanningRepository {
	return &planningRepository{db: db}
}

const itemColumns = `id, item_name, item_code, sku, cost_price, unit_price, min_stock_level,
	max_stock_level, reorder_point, reorder_quantity, unit_of_measure`

func (r *planningRepository) GetItems(ctx context.Context, ids []string) ([]domain.InventoryItem, error) {
	query := `SELECT ` + itemColumns + ` FROM inventory_items`
	args := []interface{}{}
	if len(ids) > 0 {
		query += ` WHERE id = ANY($1)`
		args = append(args, pq.Array(ids))
	}
	query += ` ORDER BY id`

	var items []domain.InventoryItem
	if err := r.db.SelectContext(ctx, &items, query, args...); err != nil {
		return nil, fmt.Errorf("error getting items: %w", err)
	}
	return items, nil
}

func (r *planningRepository) GetDemandHistory(ctx context.Context, itemID, warehouseID string, since time.Time) ([]domain.HistoricalDemand, error) {
	query := `
		SELECT
			demand_date,
			SUM(quantity) AS quantity,
			AVG(price) AS price,
			BOOL_OR(is_holiday) AS is_holiday
		FROM demand_history
		WHERE item_id = $1
		  AND ($2 = '' OR warehouse_id = $2)
		  AND demand_date >= $3
		GROUP BY demand_date
		ORDER BY demand_date
	`

	var history []domain.HistoricalDemand
	if err := r.db.SelectContext(ctx, &history, query, itemID, warehouseID, domain.NormalizeDate(since)); err != nil {
		return nil, fmt.Errorf("error getting demand history for %s: %w", itemID, err)
	}
	for i := range history {
		history[i] = history[i].WithCalendarFields()
	}
	return history, nil
}

func (r *planningRepository) GetStockLevels(ctx context.Context, warehouseID string) ([]domain.StockLevel, error) {
	query := `
		SELECT item_id, warehouse_id, quantity_on_hand
		FROM stock_levels
		WHERE warehouse_id = $1
		ORDER BY item_id
	`

	var levels []domain.StockLevel
	if err := r.db.SelectContext(ctx, &levels, query, warehouseID); err != nil {
		return nil, fmt.Errorf("error getting stock levels for %s: %w", warehouseID, err)
	}
	return levels, nil
}

func (r *planningRepository) SaveOptimizationResults(ctx context.Context, run domain.PlanRun, results []*optimizer.Result) error {
	return r.db.WithTx(ctx, func(tx *sqlx.Tx) error {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO plan_runs (id, warehouse_id, created_at, items, failed, report_key)
			VALUES ($1, $2, $3, $4, $5, $6)
			ON CONFLICT (id) DO UPDATE SET
				items = EXCLUDED.items,
				failed = EXCLUDED.failed,
				report_key = EXCLUDED.report_key
		`, run.ID, run.WarehouseID, run.CreatedAt, run.Items, run.Failed, run.ReportKey)
		if err != nil {
			return fmt.Errorf("failed to save plan run: %w", err)
		}

		stmt, err := tx.PreparexContext(ctx, `
			INSERT INTO optimization_results (
				run_id, item_id, warehouse_id, current_stock, optimal_stock,
				reorder_point, reorder_quantity, safety_stock, service_level,
				holding_cost, ordering_cost, total_cost, turnover_rate,
				days_of_supply, risk_level, recommendations
			) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)
			ON CONFLICT (run_id, item_id) DO UPDATE SET
				current_stock = EXCLUDED.current_stock,
				optimal_stock = EXCLUDED.optimal_stock,
				reorder_point = EXCLUDED.reorder_point,
				reorder_quantity = EXCLUDED.reorder_quantity,
				safety_stock = EXCLUDED.safety_stock,
				service_level = EXCLUDED.service_level,
				holding_cost = EXCLUDED.holding_cost,
				ordering_cost = EXCLUDED.ordering_cost,
				total_cost = EXCLUDED.total_cost,
				turnover_rate = EXCLUDED.turnover_rate,
				days_of_supply = EXCLUDED.days_of_supply,
				risk_level = EXCLUDED.risk_level,
				recommendations = EXCLUDED.recommendations
		`)
		if err != nil {
			return fmt.Errorf("failed to prepare statement: %w", err)
		}
		defer stmt.Close()

		for _, res := range results {
			_, err := stmt.ExecContext(ctx,
				run.ID,
				res.ItemID,
				run.WarehouseID,
				res.CurrentStock,
				res.OptimalStock,
				res.ReorderPoint,
				res.ReorderQuantity,
				res.SafetyStock,
				res.ServiceLevel,
				res.HoldingCost,
				res.OrderingCost,
				res.TotalCost,
				res.TurnoverRate,
				res.DaysOfSupply,
				string(res.RiskLevel),
				pq.Array(res.Recommendations),
			)
			if err != nil {
				return fmt.Errorf("failed to insert result for %s: %w", res.ItemID, err)
			}
		}
		return nil
	})
}

func (r *planningRepository) GetAnnualUsage(ctx context.Context, since time.Time) ([]domain.ItemUsage, error) {
	query := `
		SELECT
			d.item_id,
			SUM(d.quantity) * 365.0 / $2 AS annual_usage,
			i.cost_price AS unit_cost
		FROM demand_history d
		JOIN inventory_items i ON i.id = d.item_id
		WHERE d.demand_date >= $1
		GROUP BY d.item_id, i.cost_price
		ORDER BY d.item_id
	`

	start := domain.NormalizeDate(since)
	var usage []domain.ItemUsage
	if err := r.db.SelectContext(ctx, &usage, query, start, observedDays(start, time.Now())); err != nil {
		return nil, fmt.Errorf("error getting annual usage: %w", err)
	}
	return usage, nil
}

// observedDays counts calendar days from start through now, at least one.
func observedDays(start, now time.Time) float64 {
	days := math.Floor(domain.NormalizeDate(now).Sub(start).Hours()/24) + 1
	return math.Max(days, 1)
}
