package main

import (
	"fmt"
	"io"
	"sort"

	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v2"

	"github.com/andresuchdata/stockcast/internal/domain"
	"github.com/andresuchdata/stockcast/internal/forecast"
	"github.com/andresuchdata/stockcast/internal/ingest"
	"github.com/andresuchdata/stockcast/internal/optimizer"
)

func forecastCommand() *cli.Command {
	return &cli.Command{
		Name:  "forecast",
		Usage: "Forecast daily demand for every item in a demand history file",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     "history",
				Usage:    "Demand CSV (date,quantity[,item_id,warehouse_id,price,is_holiday])",
				Required: true,
			},
			&cli.StringFlag{
				Name:    "method",
				Usage:   "linear_regression, moving_average, exponential_smoothing or arima",
				EnvVars: []string{"FORECAST_METHOD"},
			},
			&cli.IntFlag{
				Name:    "days",
				Usage:   "Forecast horizon in days",
				Value:   forecast.DefaultForecastDays,
				EnvVars: []string{"FORECAST_HORIZON_DAYS"},
			},
			outputFlag(),
		},
		Action: runForecast,
	}
}

func runForecast(c *cli.Context) error {
	method, err := forecast.ParseMethod(c.String("method"))
	if err != nil {
		return err
	}
	params := forecast.DefaultParameters()
	params.Method = method
	engine := forecast.NewEngine(params)

	records, err := readFile(c.String("history"), ingest.ReadDemand)
	if err != nil {
		return err
	}
	grouped := ingest.GroupByItem(records)

	var forecasts []*forecast.DemandForecast
	for _, itemID := range sortedKeys(grouped) {
		fc, err := engine.GenerateForecast(itemID, "", grouped[itemID], c.Int("days"))
		if err != nil {
			log.Warn().Err(err).Str("item_id", itemID).Msg("skipping item")
			continue
		}
		forecasts = append(forecasts, fc)
	}
	if len(forecasts) == 0 && len(grouped) > 0 {
		return fmt.Errorf("no item had enough history to forecast (need %d points)", forecast.MinHistoryPoints)
	}

	return withOutput(c, func(w io.Writer) error {
		return ingest.WriteForecasts(w, forecasts...)
	})
}

func optimizeCommand() *cli.Command {
	return &cli.Command{
		Name:  "optimize",
		Usage: "Compute reorder policies for the items in an item file",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     "items",
				Usage:    "Item CSV (id,cost_price[,item_name,unit_price,max_stock_level,current_stock,warehouse_id])",
				Required: true,
			},
			&cli.StringFlag{
				Name:     "history",
				Usage:    "Demand CSV with an item_id column",
				Required: true,
			},
			&cli.BoolFlag{
				Name:  "with-forecast",
				Usage: "Use forecast accuracy in the recommendations",
			},
			&cli.Float64Flag{
				Name:    "holding-cost-rate",
				Value:   optimizer.DefaultParameters().HoldingCostRate,
				EnvVars: []string{"OPTIMIZER_HOLDING_COST_RATE"},
			},
			&cli.Float64Flag{
				Name:    "ordering-cost",
				Value:   optimizer.DefaultParameters().OrderingCost,
				EnvVars: []string{"OPTIMIZER_ORDERING_COST"},
			},
			&cli.IntFlag{
				Name:    "lead-time",
				Usage:   "Supplier lead time in days",
				Value:   optimizer.DefaultParameters().LeadTimeDays,
				EnvVars: []string{"OPTIMIZER_LEAD_TIME_DAYS"},
			},
			&cli.Float64Flag{
				Name:    "service-level",
				Value:   optimizer.DefaultParameters().ServiceLevelTarget,
				EnvVars: []string{"OPTIMIZER_SERVICE_LEVEL_TARGET"},
			},
			&cli.StringFlag{
				Name:    "language",
				Usage:   "Recommendation language (" + fmt.Sprint(optimizer.SupportedLanguages()) + ")",
				Value:   optimizer.DefaultParameters().Language,
				EnvVars: []string{"OPTIMIZER_LANGUAGE"},
			},
			&cli.IntFlag{
				Name:    "workers",
				Value:   optimizer.DefaultBatchWorkers,
				EnvVars: []string{"OPTIMIZER_BATCH_WORKERS"},
			},
			outputFlag(),
		},
		Action: runOptimize,
	}
}

func runOptimize(c *cli.Context) error {
	items, err := readFile(c.String("items"), ingest.ReadItems)
	if err != nil {
		return err
	}
	records, err := readFile(c.String("history"), ingest.ReadDemand)
	if err != nil {
		return err
	}
	byItem := ingest.GroupByItem(records)
	bySeries := ingest.GroupBySeries(records)

	params := optimizer.Parameters{
		HoldingCostRate:    c.Float64("holding-cost-rate"),
		OrderingCost:       c.Float64("ordering-cost"),
		LeadTimeDays:       c.Int("lead-time"),
		ServiceLevelTarget: c.Float64("service-level"),
		Language:           c.String("language"),
	}
	engine := forecast.NewEngine(forecast.DefaultParameters())

	entries := make([]optimizer.BatchEntry, len(items))
	for i, item := range items {
		// warehouse-level demand when the file has it, the item total otherwise
		history, ok := bySeries[ingest.SeriesKey{ItemID: item.Item.ID, WarehouseID: item.WarehouseID}]
		if !ok || item.WarehouseID == "" {
			history = byItem[item.Item.ID]
		}
		entries[i] = optimizer.BatchEntry{
			Item:         item.Item,
			WarehouseID:  item.WarehouseID,
			CurrentStock: item.CurrentStock,
			History:      history,
		}
		if c.Bool("with-forecast") && len(entries[i].History) >= forecast.MinHistoryPoints {
			if entries[i].Forecast, err = engine.GenerateForecast(item.Item.ID, item.WarehouseID, entries[i].History, 0); err != nil {
				return err
			}
		}
	}

	results := optimizer.NewOptimizer(params).OptimizeBatch(c.Context, entries, c.Int("workers"))
	for _, r := range results {
		if r.Err != nil {
			log.Warn().Err(r.Err).Str("item_id", r.ItemID).Msg("item not optimized")
		}
	}
	if err := c.Context.Err(); err != nil {
		return err
	}

	return withOutput(c, func(w io.Writer) error {
		return ingest.WriteOptimizationResults(w, optimizer.Succeeded(results))
	})
}

func abcCommand() *cli.Command {
	return &cli.Command{
		Name:  "abc",
		Usage: "Classify items into A, B and C by annual consumption value",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     "usage",
				Usage:    "Usage CSV (item_id,annual_usage,unit_cost)",
				Required: true,
			},
			outputFlag(),
		},
		Action: runABC,
	}
}

func runABC(c *cli.Context) error {
	usage, err := readFile(c.String("usage"), ingest.ReadItemUsage)
	if err != nil {
		return err
	}
	results := optimizer.CalculateABCAnalysis(usage)

	counts := optimizer.CategoryCounts(results)
	log.Info().
		Int("a", counts[optimizer.CategoryA]).
		Int("b", counts[optimizer.CategoryB]).
		Int("c", counts[optimizer.CategoryC]).
		Msg("ABC analysis complete")

	return withOutput(c, func(w io.Writer) error {
		return ingest.WriteABCResults(w, results)
	})
}

func sortedKeys(m map[string][]domain.HistoricalDemand) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
