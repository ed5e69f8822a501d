package optimizer

import (
	"sort"

	"github.com/andresuchdata/stockcast/internal/domain"
)

// ABCCategory is a Pareto class by annual consumption value.
type ABCCategory string

const (
	CategoryA ABCCategory = "A"
	CategoryB ABCCategory = "B"
	CategoryC ABCCategory = "C"
)

const (
	categoryALimit = 80.0
	categoryBLimit = 95.0
)

// ABCResult is the classification of one item.
type ABCResult struct {
	ItemID               string      `json:"item_id"`
	AnnualUsage          float64     `json:"annual_usage"`
	UnitCost             float64     `json:"unit_cost"`
	AnnualValue          float64     `json:"annual_value"`
	CumulativeValue      float64     `json:"cumulative_value"`
	CumulativePercentage float64     `json:"cumulative_percentage"`
	Category             ABCCategory `json:"category"`
}

// CalculateABCAnalysis sorts items by annual value, highest first, and assigns
// A up to 80% of cumulative value, B up to 95%, and C beyond. Ties keep their
// input order. When the total value is zero every item is C.
func CalculateABCAnalysis(items []domain.ItemUsage) []ABCResult {
	results := make([]ABCResult, len(items))
	total := 0.0
	for i, item := range items {
		value := item.AnnualUsage * item.UnitCost
		results[i] = ABCResult{
			ItemID:      item.ItemID,
			AnnualUsage: item.AnnualUsage,
			UnitCost:    item.UnitCost,
			AnnualValue: value,
		}
		total += value
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].AnnualValue > results[j].AnnualValue
	})

	cumulative := 0.0
	for i := range results {
		cumulative += results[i].AnnualValue
		results[i].CumulativeValue = cumulative
		if total <= 0 {
			results[i].Category = CategoryC
			continue
		}
		results[i].CumulativePercentage = cumulative * 100 / total
		results[i].Category = classifyABC(results[i].CumulativePercentage)
	}
	return results
}

func classifyABC(cumulativePercentage float64) ABCCategory {
	switch {
	case cumulativePercentage <= categoryALimit:
		return CategoryA
	case cumulativePercentage <= categoryBLimit:
		return CategoryB
	default:
		return CategoryC
	}
}

// CategoryCounts tallies results per category.
func CategoryCounts(results []ABCResult) map[ABCCategory]int {
	counts := map[ABCCategory]int{CategoryA: 0, CategoryB: 0, CategoryC: 0}
	for _, r := range results {
		counts[r.Category]++
	}
	return counts
}
