package optimizer

import (
	"math"
	"sort"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/andresuchdata/stockcast/internal/domain"
	"github.com/andresuchdata/stockcast/internal/forecast"
)

// Optimizer computes replenishment policies. It holds only immutable
// parameters and is safe for concurrent use.
type Optimizer struct {
	params   Parameters
	language language.Tag
}

// NewOptimizer creates an optimizer. Out-of-range parameters are replaced with defaults.
func NewOptimizer(params Parameters) *Optimizer {
	params = params.withDefaults()
	return &Optimizer{
		params:   params,
		language: resolveLanguage(params.Language),
	}
}

// Parameters returns the optimizer configuration after defaults were applied.
func (o *Optimizer) Parameters() Parameters {
	return o.params
}

// OptimizeItem computes the full policy for one item in one warehouse. The
// forecast is optional and only feeds the accuracy recommendation. An empty
// history produces a zero-demand policy flagged with NoDemandData. history is
// read in date order and is not modified.
func (o *Optimizer) OptimizeItem(item domain.InventoryItem, warehouseID string, currentStock float64, history []domain.HistoricalDemand, fc *forecast.DemandForecast) (*Result, error) {
	if err := validateInput(item, currentStock, history); err != nil {
		return nil, err
	}
	history = sortedByDate(history)

	stats := CalculateDemandStats(history)
	safetyStock := o.CalculateSafetyStock(stats.DemandVariability)
	reorderPoint := o.CalculateReorderPoint(stats.AverageDailyDemand, safetyStock)

	eoq := o.CalculateEOQ(item.CostPrice, stats.AverageDailyDemand, stats.AnnualDemand)
	orderQuantity := CalculateOptimalOrderQuantity(eoq.EOQ, item.MaxStockLevel, reorderPoint)
	optimalStock := safetyStock + orderQuantity

	holding := o.CalculateHoldingCost(item.CostPrice, currentStock, optimalStock)
	ordering := o.CalculateOrderingCost(stats.AnnualDemand, orderQuantity)
	serviceLevel := o.CalculateServiceLevel(history, safetyStock)

	turnover := 0.0
	if stockValue := currentStock * item.CostPrice; stockValue > 0 {
		turnover = stats.AnnualDemand * item.CostPrice / stockValue
	}
	daysOfSupply := NoDemandDaysOfSupply
	if stats.AverageDailyDemand > 0 {
		daysOfSupply = currentStock / stats.AverageDailyDemand
	}

	score := ScoreRisk(RiskFactors{
		CurrentStock: currentStock,
		ReorderPoint: reorderPoint,
		SafetyStock:  safetyStock,
		ServiceLevel: serviceLevel,
		TurnoverRate: turnover,
		DaysOfSupply: daysOfSupply,
		LeadTimeDays: o.params.LeadTimeDays,
	})

	result := &Result{
		ItemID:                item.ID,
		ItemName:              item.ItemName,
		WarehouseID:           warehouseID,
		CurrentStock:          currentStock,
		OptimalStock:          optimalStock,
		ReorderPoint:          reorderPoint,
		ReorderQuantity:       orderQuantity,
		SafetyStock:           safetyStock,
		EconomicOrderQuantity: eoq.EOQ,
		AverageDailyDemand:    stats.AverageDailyDemand,
		AnnualDemand:          stats.AnnualDemand,
		ServiceLevel:          serviceLevel,
		HoldingCost:           holding,
		OrderingCost:          ordering,
		TotalCost:             holding + ordering,
		TurnoverRate:          turnover,
		DaysOfSupply:          daysOfSupply,
		RiskLevel:             ClassifyRisk(score),
		RiskScore:             score,
		NoDemandData:          len(history) == 0,
	}

	printer := message.NewPrinter(o.language, message.Catalog(recommendationCatalog))
	result.Recommendations = buildRecommendations(printer, recommendationInput{
		item:         item,
		result:       result,
		history:      history,
		forecast:     fc,
		leadTimeDays: o.params.LeadTimeDays,
		target:       o.params.ServiceLevelTarget,
	})

	return result, nil
}

func validateInput(item domain.InventoryItem, currentStock float64, history []domain.HistoricalDemand) error {
	switch {
	case item.ID == "":
		return &ValidationError{Field: "id", Reason: "item id is required"}
	case !isFinite(currentStock) || currentStock < 0:
		return &ValidationError{ItemID: item.ID, Field: "current_stock", Reason: "must be a finite, non-negative number"}
	case !isFinite(item.CostPrice) || item.CostPrice < 0:
		return &ValidationError{ItemID: item.ID, Field: "cost_price", Reason: "must be a finite, non-negative number"}
	case !isFinite(item.UnitPrice):
		return &ValidationError{ItemID: item.ID, Field: "unit_price", Reason: "must be a finite number"}
	case !isFinite(item.MaxStockLevel):
		return &ValidationError{ItemID: item.ID, Field: "max_stock_level", Reason: "must be a finite number"}
	}
	for _, h := range history {
		if !isFinite(h.Quantity) || h.Quantity < 0 {
			return &ValidationError{ItemID: item.ID, Field: "quantity", Reason: "demand history must be finite and non-negative"}
		}
	}
	return nil
}

func sortedByDate(history []domain.HistoricalDemand) []domain.HistoricalDemand {
	sorted := make([]domain.HistoricalDemand, len(history))
	copy(sorted, history)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Date.Before(sorted[j].Date)
	})
	return sorted
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
