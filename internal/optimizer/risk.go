package optimizer

import (
	"github.com/andresuchdata/stockcast/internal/domain"
)

// RiskFactors are the policy figures a risk score is computed from.
type RiskFactors struct {
	CurrentStock float64
	ReorderPoint float64
	SafetyStock  float64
	ServiceLevel float64
	TurnoverRate float64
	DaysOfSupply float64
	LeadTimeDays int
}

// ScoreRisk adds points for stock position, service level, turnover and coverage.
func ScoreRisk(f RiskFactors) int {
	score := 0
	lead := float64(f.LeadTimeDays)

	switch {
	case f.CurrentStock < f.ReorderPoint:
		score += 3
	case f.CurrentStock < f.SafetyStock:
		score += 2
	}

	switch {
	case f.ServiceLevel < 0.90:
		score += 3
	case f.ServiceLevel < 0.95:
		score++
	}

	if f.TurnoverRate < 2 {
		score += 2
	}

	switch {
	case f.DaysOfSupply < lead:
		score += 3
	case f.DaysOfSupply < 1.5*lead:
		score++
	}

	return score
}

// ClassifyRisk maps a score onto a RiskLevel.
func ClassifyRisk(score int) RiskLevel {
	switch {
	case score >= 7:
		return RiskCritical
	case score >= 5:
		return RiskHigh
	case score >= 3:
		return RiskMedium
	default:
		return RiskLow
	}
}

// CalculateServiceLevel backtests the safety stock: every lead-time window
// whose total demand exceeds safetyStock counts as a stock-out period. With
// fewer observations than the lead time the target is returned unchanged.
func (o *Optimizer) CalculateServiceLevel(history []domain.HistoricalDemand, safetyStock float64) float64 {
	lead := o.params.LeadTimeDays
	n := len(history)
	if n < lead {
		return o.params.ServiceLevelTarget
	}

	windows := n - lead + 1
	stockouts := 0
	windowDemand := 0.0
	for i := 0; i < n; i++ {
		windowDemand += history[i].Quantity
		if i >= lead {
			windowDemand -= history[i-lead].Quantity
		}
		if i >= lead-1 && windowDemand > safetyStock {
			stockouts++
		}
	}
	return 1 - float64(stockouts)/float64(windows)
}
