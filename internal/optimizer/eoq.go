package optimizer

import (
	"math"
)

// CalculateEOQ applies sqrt(2DS/H) with H = unitCost * holdingCostRate.
// A non-positive holding cost has no finite optimum and returns a zero result.
func (o *Optimizer) CalculateEOQ(unitCost, dailyDemand, annualDemand float64) EOQResult {
	holdingPerUnit := unitCost * o.params.HoldingCostRate
	if holdingPerUnit <= 0 || annualDemand <= 0 {
		return EOQResult{}
	}

	eoq := math.Sqrt(2 * annualDemand * o.params.OrderingCost / holdingPerUnit)
	if eoq == 0 {
		return EOQResult{}
	}

	frequency := annualDemand / eoq
	cycleDays := 0.0
	if dailyDemand > 0 {
		cycleDays = eoq / dailyDemand
	}
	holding := (eoq / 2) * holdingPerUnit
	ordering := frequency * o.params.OrderingCost

	return EOQResult{
		EOQ:                eoq,
		OrderFrequency:     frequency,
		OrderCycleDays:     cycleDays,
		AnnualHoldingCost:  holding,
		AnnualOrderingCost: ordering,
		TotalAnnualCost:    holding + ordering,
	}
}

// CalculateOptimalOrderQuantity rounds the EOQ up and caps it at the item's
// maximum stock level, or at twice the reorder point when no maximum is set.
func CalculateOptimalOrderQuantity(eoq, maxStockLevel, reorderPoint float64) float64 {
	quantity := math.Ceil(math.Max(0, eoq))
	limit := maxStockLevel
	if limit <= 0 {
		limit = 2 * reorderPoint
	}
	return math.Max(0, math.Min(quantity, limit))
}

// CalculateHoldingCost charges the holding rate on the average of current and optimal stock.
func (o *Optimizer) CalculateHoldingCost(unitCost, currentStock, optimalStock float64) float64 {
	return math.Max(0, unitCost*o.params.HoldingCostRate*((currentStock+optimalStock)/2))
}

// CalculateOrderingCost is the annual fixed ordering cost at the given order size.
func (o *Optimizer) CalculateOrderingCost(annualDemand, orderQuantity float64) float64 {
	if orderQuantity <= 0 {
		return 0
	}
	return math.Max(0, (annualDemand/orderQuantity)*o.params.OrderingCost)
}
