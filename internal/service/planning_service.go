package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"github.com/andresuchdata/stockcast/internal/cache"
	"github.com/andresuchdata/stockcast/internal/domain"
	"github.com/andresuchdata/stockcast/internal/forecast"
	"github.com/andresuchdata/stockcast/internal/ingest"
	"github.com/andresuchdata/stockcast/internal/metrics"
	"github.com/andresuchdata/stockcast/internal/optimizer"
	"github.com/andresuchdata/stockcast/internal/repository"
	"github.com/andresuchdata/stockcast/internal/storage"
)

const (
	defaultHistoryDays     = 90
	forecastSourceCache    = "cache"
	forecastSourceComputed = "computed"
)

// Options configures a PlanningService.
type Options struct {
	Forecast     forecast.Parameters
	Optimizer    optimizer.Parameters
	HorizonDays  int
	HistoryDays  int
	BatchWorkers int
	ReportPrefix string
	Now          func() time.Time
}

// PlanningService wires the forecasting and optimization engines to storage,
// caching and authorization.
type PlanningService struct {
	repo      repository.PlanningRepository
	cache     cache.ForecastCache
	storage   storage.ObjectStorage
	gate      Gate
	engine    *forecast.Engine
	optimizer *optimizer.Optimizer
	opts      Options
}

// NewPlanningService builds the service. repo and store may be nil: stateless
// operations still work, and plans are simply not exported.
func NewPlanningService(repo repository.PlanningRepository, cacheImpl cache.ForecastCache, store storage.ObjectStorage, gate Gate, opts Options) *PlanningService {
	if cacheImpl == nil {
		cacheImpl = cache.NewNoopForecastCache()
	}
	if gate == nil {
		gate = AllowAll{}
	}
	if opts.HorizonDays <= 0 {
		opts.HorizonDays = forecast.DefaultForecastDays
	}
	if opts.HistoryDays <= 0 {
		opts.HistoryDays = defaultHistoryDays
	}
	if opts.BatchWorkers <= 0 {
		opts.BatchWorkers = optimizer.DefaultBatchWorkers
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}

	return &PlanningService{
		repo:      repo,
		cache:     cacheImpl,
		storage:   store,
		gate:      gate,
		engine:    forecast.NewEngine(opts.Forecast),
		optimizer: optimizer.NewOptimizer(opts.Optimizer),
		opts:      opts,
	}
}

// ForecastRequest asks for a demand forecast. Without History the service
// loads it from the repository.
type ForecastRequest struct {
	ItemID      string                    `json:"item_id"`
	WarehouseID string                    `json:"warehouse_id"`
	Method      string                    `json:"method"`
	Days        int                       `json:"forecast_days"`
	History     []domain.HistoricalDemand `json:"history"`
}

// OptimizeRequest asks for the policy of one item. Without History the
// service loads it from the repository. WithForecast also runs the forecast
// so its accuracy can feed the recommendations.
type OptimizeRequest struct {
	Item         domain.InventoryItem      `json:"item"`
	WarehouseID  string                    `json:"warehouse_id"`
	CurrentStock float64                   `json:"current_stock"`
	History      []domain.HistoricalDemand `json:"history"`
	WithForecast bool                      `json:"with_forecast"`
}

// ItemFailure reports an item a plan could not optimize.
type ItemFailure struct {
	ItemID string `json:"item_id"`
	Error  string `json:"error"`
}

// PlanReport is the outcome of one warehouse planning pass.
type PlanReport struct {
	Run      domain.PlanRun      `json:"run"`
	Results  []*optimizer.Result `json:"results"`
	Failures []ItemFailure       `json:"failures"`
}

func (s *PlanningService) authorize(ctx context.Context, op Operation) error {
	if !s.gate.Allow(ctx, op) {
		log.Warn().Str("operation", string(op)).Msg("planning: operation denied")
		return ErrForbidden
	}
	return nil
}

func (s *PlanningService) historySince() time.Time {
	return s.opts.Now().AddDate(0, 0, -s.opts.HistoryDays)
}

func (s *PlanningService) loadHistory(ctx context.Context, itemID, warehouseID string) ([]domain.HistoricalDemand, error) {
	if s.repo == nil {
		return nil, ErrNoRepository
	}
	return s.repo.GetDemandHistory(ctx, itemID, warehouseID, s.historySince())
}

// Forecast returns a cached or freshly computed forecast.
func (s *PlanningService) Forecast(ctx context.Context, req ForecastRequest) (*forecast.DemandForecast, error) {
	if err := s.authorize(ctx, OpForecast); err != nil {
		return nil, err
	}
	if req.ItemID == "" {
		return nil, &InvalidRequestError{Field: "item_id", Reason: "is required"}
	}

	engine := s.engine
	if req.Method != "" {
		method, err := forecast.ParseMethod(req.Method)
		if err != nil {
			return nil, &InvalidRequestError{Field: "method", Reason: err.Error()}
		}
		if method != engine.Parameters().Method {
			params := engine.Parameters()
			params.Method = method
			engine = forecast.NewEngine(params)
		}
	}

	history := req.History
	if len(history) == 0 {
		var err error
		if history, err = s.loadHistory(ctx, req.ItemID, req.WarehouseID); err != nil {
			return nil, err
		}
	}

	return s.forecastWith(ctx, engine, req.ItemID, req.WarehouseID, history, req.Days)
}

func (s *PlanningService) forecastWith(ctx context.Context, engine *forecast.Engine, itemID, warehouseID string, history []domain.HistoricalDemand, days int) (*forecast.DemandForecast, error) {
	if days <= 0 {
		days = s.opts.HorizonDays
	}
	params := engine.Parameters()
	method := params.Method
	key := cache.NewForecastKey(itemID, warehouseID, params, days, history)

	if fc, ok, err := s.cache.Get(ctx, key); err == nil && ok {
		metrics.ObserveForecast(string(method), forecastSourceCache)
		return fc, nil
	} else if err != nil {
		log.Warn().Err(err).Str("item_id", itemID).Msg("planning: cache get forecast failed")
	}

	fc, err := engine.GenerateForecast(itemID, warehouseID, history, days)
	if err != nil {
		return nil, err
	}
	metrics.ObserveForecast(string(method), forecastSourceComputed)

	if err := s.cache.Set(ctx, key, fc); err != nil {
		log.Warn().Err(err).Str("item_id", itemID).Msg("planning: cache set forecast failed")
	}
	return fc, nil
}

// Optimize computes the policy for one item.
func (s *PlanningService) Optimize(ctx context.Context, req OptimizeRequest) (*optimizer.Result, error) {
	if err := s.authorize(ctx, OpOptimize); err != nil {
		return nil, err
	}

	history := req.History
	if len(history) == 0 && s.repo != nil && req.Item.ID != "" {
		var err error
		if history, err = s.loadHistory(ctx, req.Item.ID, req.WarehouseID); err != nil {
			return nil, err
		}
	}

	var fc *forecast.DemandForecast
	if req.WithForecast && len(history) >= forecast.MinHistoryPoints {
		var err error
		if fc, err = s.forecastWith(ctx, s.engine, req.Item.ID, req.WarehouseID, history, 0); err != nil {
			return nil, err
		}
	}

	result, err := s.optimizer.OptimizeItem(req.Item, req.WarehouseID, req.CurrentStock, history, fc)
	if err != nil {
		metrics.ObserveOptimizationFailure()
		return nil, err
	}
	metrics.ObserveOptimization(string(result.RiskLevel))
	return result, nil
}

// OptimizeBatch optimizes caller-supplied entries; failures are reported per entry.
func (s *PlanningService) OptimizeBatch(ctx context.Context, entries []optimizer.BatchEntry) ([]optimizer.BatchResult, error) {
	if err := s.authorize(ctx, OpBatch); err != nil {
		return nil, err
	}
	results := s.optimizer.OptimizeBatch(ctx, entries, s.opts.BatchWorkers)
	observeBatch(results)
	return results, nil
}

func observeBatch(results []optimizer.BatchResult) {
	failed := 0
	for _, r := range results {
		if r.Err != nil {
			failed++
			metrics.ObserveOptimizationFailure()
			log.Warn().Err(r.Err).Str("item_id", r.ItemID).Msg("planning: item optimization failed")
			continue
		}
		metrics.ObserveOptimization(string(r.Result.RiskLevel))
	}
	log.Debug().Int("items", len(results)).Int("failed", failed).Msg("planning: batch optimized")
}

// ClassifyABC classifies the given usage, or the stored usage over the
// history window when items is empty.
func (s *PlanningService) ClassifyABC(ctx context.Context, items []domain.ItemUsage) ([]optimizer.ABCResult, error) {
	if err := s.authorize(ctx, OpABC); err != nil {
		return nil, err
	}
	if len(items) == 0 {
		if s.repo == nil {
			return nil, ErrNoRepository
		}
		var err error
		if items, err = s.repo.GetAnnualUsage(ctx, s.historySince()); err != nil {
			return nil, err
		}
	}
	return optimizer.CalculateABCAnalysis(items), nil
}

// PlanWarehouse optimizes every stocked item of a warehouse, persists the
// results and exports them as CSV when object storage is configured.
func (s *PlanningService) PlanWarehouse(ctx context.Context, warehouseID string) (*PlanReport, error) {
	if err := s.authorize(ctx, OpPlan); err != nil {
		return nil, err
	}
	if warehouseID == "" {
		return nil, &InvalidRequestError{Field: "warehouse", Reason: "is required"}
	}
	if s.repo == nil {
		return nil, ErrNoRepository
	}

	run := domain.PlanRun{
		ID:          uuid.NewString(),
		WarehouseID: warehouseID,
		CreatedAt:   s.opts.Now().UTC(),
	}
	logger := log.With().Str("run_id", run.ID).Str("warehouse_id", warehouseID).Logger()

	entries, loadFailures, err := s.loadWarehouse(ctx, warehouseID)
	if err != nil {
		metrics.ObservePlanRun("failed")
		return nil, err
	}

	batch := s.optimizer.OptimizeBatch(ctx, entries, s.opts.BatchWorkers)
	observeBatch(batch)

	report := &PlanReport{
		Run:      run,
		Results:  optimizer.Succeeded(batch),
		Failures: loadFailures,
	}
	for _, r := range batch {
		if r.Err != nil {
			report.Failures = append(report.Failures, ItemFailure{ItemID: r.ItemID, Error: r.Err.Error()})
		}
	}
	report.Run.Items = len(batch) + len(loadFailures)
	report.Run.Failed = len(report.Failures)

	if s.storage != nil && len(report.Results) > 0 {
		key, err := s.exportReport(ctx, report)
		if err != nil {
			logger.Warn().Err(err).Msg("planning: report export failed")
		} else {
			report.Run.ReportKey = key
		}
	}

	if err := s.repo.SaveOptimizationResults(ctx, report.Run, report.Results); err != nil {
		metrics.ObservePlanRun("failed")
		return nil, fmt.Errorf("failed to save plan results: %w", err)
	}

	metrics.ObservePlanRun("completed")
	logger.Info().
		Int("items", report.Run.Items).
		Int("failed", report.Run.Failed).
		Str("report_key", report.Run.ReportKey).
		Msg("Warehouse plan completed")

	return report, nil
}

// loadWarehouse builds one batch entry per stocked item, loading histories
// and forecasts concurrently. Items whose data cannot be loaded are reported
// as failures instead of aborting the plan.
func (s *PlanningService) loadWarehouse(ctx context.Context, warehouseID string) ([]optimizer.BatchEntry, []ItemFailure, error) {
	failures := make([]ItemFailure, 0)

	levels, err := s.repo.GetStockLevels(ctx, warehouseID)
	if err != nil {
		return nil, nil, err
	}
	if len(levels) == 0 {
		return []optimizer.BatchEntry{}, failures, nil
	}

	ids := make([]string, len(levels))
	for i, l := range levels {
		ids[i] = l.ItemID
	}
	items, err := s.repo.GetItems(ctx, ids)
	if err != nil {
		return nil, nil, err
	}
	byID := make(map[string]domain.InventoryItem, len(items))
	for _, item := range items {
		byID[item.ID] = item
	}

	slots := make([]*optimizer.BatchEntry, len(levels))
	loadErrs := make([]error, len(levels))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.opts.BatchWorkers)
	for i, level := range levels {
		item, ok := byID[level.ItemID]
		if !ok {
			loadErrs[i] = fmt.Errorf("%w: %s", ErrItemNotFound, level.ItemID)
			continue
		}

		g.Go(func() error {
			history, err := s.loadHistory(gctx, item.ID, warehouseID)
			if err != nil {
				if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
					return err
				}
				loadErrs[i] = err
				return nil
			}

			entry := &optimizer.BatchEntry{
				Item:         item,
				WarehouseID:  warehouseID,
				CurrentStock: level.QuantityOnHand,
				History:      history,
			}
			if len(history) >= forecast.MinHistoryPoints {
				fc, err := s.forecastWith(gctx, s.engine, item.ID, warehouseID, history, 0)
				if err != nil {
					log.Warn().Err(err).Str("item_id", item.ID).Msg("planning: forecast failed, optimizing without it")
				}
				entry.Forecast = fc
			}
			slots[i] = entry
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, nil, err
	}

	entries := make([]optimizer.BatchEntry, 0, len(levels))
	for i, entry := range slots {
		if loadErrs[i] != nil {
			log.Warn().Err(loadErrs[i]).Str("item_id", levels[i].ItemID).Msg("planning: item data unavailable")
			failures = append(failures, ItemFailure{ItemID: levels[i].ItemID, Error: loadErrs[i].Error()})
			continue
		}
		if entry != nil {
			entries = append(entries, *entry)
		}
	}
	return entries, failures, nil
}

func (s *PlanningService) exportReport(ctx context.Context, report *PlanReport) (string, error) {
	var buf bytes.Buffer
	if err := ingest.WriteOptimizationResults(&buf, report.Results); err != nil {
		return "", err
	}
	key := storage.ReportKey(s.opts.ReportPrefix, report.Run.WarehouseID, report.Run.ID, report.Run.CreatedAt)
	if err := s.storage.UploadObject(ctx, key, buf.Bytes()); err != nil {
		return "", err
	}
	return key, nil
}
