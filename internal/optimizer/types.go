// Package optimizer converts demand statistics and item cost data into an
// inventory replenishment policy with costs, risk and recommendations.
package optimizer

import (
	"fmt"
)

const (
	defaultHoldingCostRate    = 0.25
	defaultOrderingCost       = 50.0
	defaultLeadTimeDays       = 7
	defaultServiceLevelTarget = 0.95

	// NoDemandDaysOfSupply is reported when there is no daily demand to divide by.
	NoDemandDaysOfSupply = 999.0

	daysPerYear = 365.0
)

// Parameters is the immutable configuration of one Optimizer.
type Parameters struct {
	HoldingCostRate     float64 `json:"holding_cost_rate" mapstructure:"holding_cost_rate"` // annual, fraction of unit cost
	OrderingCost        float64 `json:"ordering_cost" mapstructure:"ordering_cost"`         // fixed cost per order
	LeadTimeDays        int     `json:"lead_time_days" mapstructure:"lead_time_days"`
	ServiceLevelTarget  float64 `json:"service_level_target" mapstructure:"service_level_target"`
	ReviewPeriodMinDays int     `json:"review_period_min_days,omitempty" mapstructure:"review_period_min_days"`
	ReviewPeriodMaxDays int     `json:"review_period_max_days,omitempty" mapstructure:"review_period_max_days"`
	Language            string  `json:"language,omitempty" mapstructure:"language"` // BCP 47 tag for recommendations
}

// DefaultParameters returns the standard policy configuration.
func DefaultParameters() Parameters {
	return Parameters{
		HoldingCostRate:    defaultHoldingCostRate,
		OrderingCost:       defaultOrderingCost,
		LeadTimeDays:       defaultLeadTimeDays,
		ServiceLevelTarget: defaultServiceLevelTarget,
		Language:           "en",
	}
}

func (p Parameters) withDefaults() Parameters {
	if p.HoldingCostRate < 0 {
		p.HoldingCostRate = defaultHoldingCostRate
	}
	if p.OrderingCost < 0 {
		p.OrderingCost = defaultOrderingCost
	}
	if p.LeadTimeDays <= 0 {
		p.LeadTimeDays = defaultLeadTimeDays
	}
	if p.ServiceLevelTarget <= 0 || p.ServiceLevelTarget >= 1 {
		p.ServiceLevelTarget = defaultServiceLevelTarget
	}
	if p.ReviewPeriodMaxDays > 0 && p.ReviewPeriodMinDays > p.ReviewPeriodMaxDays {
		p.ReviewPeriodMinDays, p.ReviewPeriodMaxDays = p.ReviewPeriodMaxDays, p.ReviewPeriodMinDays
	}
	return p
}

// RiskLevel classifies the stock-out exposure of an item.
type RiskLevel string

const (
	RiskLow      RiskLevel = "LOW"
	RiskMedium   RiskLevel = "MEDIUM"
	RiskHigh     RiskLevel = "HIGH"
	RiskCritical RiskLevel = "CRITICAL"
)

// EOQResult is the economic order quantity and the annual costs at that quantity.
type EOQResult struct {
	EOQ                float64 `json:"eoq"`
	OrderFrequency     float64 `json:"order_frequency"`  // orders per year
	OrderCycleDays     float64 `json:"order_cycle_days"` // days between orders
	AnnualHoldingCost  float64 `json:"annual_holding_cost"`
	AnnualOrderingCost float64 `json:"annual_ordering_cost"`
	TotalAnnualCost    float64 `json:"total_annual_cost"`
}

// DemandStats summarises a demand history.
type DemandStats struct {
	TotalDemand        float64 `json:"total_demand"`
	AverageDailyDemand float64 `json:"average_daily_demand"`
	AnnualDemand       float64 `json:"annual_demand"`
	DemandVariability  float64 `json:"demand_variability"` // population stddev of daily demand
	Days               int     `json:"days"`
}

// Result is the policy snapshot for one item. It is recomputed on every call.
type Result struct {
	ItemID                string    `json:"item_id"`
	ItemName              string    `json:"item_name"`
	WarehouseID           string    `json:"warehouse_id,omitempty"`
	CurrentStock          float64   `json:"current_stock"`
	OptimalStock          float64   `json:"optimal_stock"`
	ReorderPoint          float64   `json:"reorder_point"`
	ReorderQuantity       float64   `json:"reorder_quantity"`
	SafetyStock           float64   `json:"safety_stock"`
	EconomicOrderQuantity float64   `json:"economic_order_quantity"`
	AverageDailyDemand    float64   `json:"average_daily_demand"`
	AnnualDemand          float64   `json:"annual_demand"`
	ServiceLevel          float64   `json:"service_level"`
	HoldingCost           float64   `json:"holding_cost"`
	OrderingCost          float64   `json:"ordering_cost"`
	TotalCost             float64   `json:"total_cost"`
	TurnoverRate          float64   `json:"turnover_rate"`
	DaysOfSupply          float64   `json:"days_of_supply"`
	Recommendations       []string  `json:"recommendations"`
	RiskLevel             RiskLevel `json:"risk_level"`
	RiskScore             int       `json:"risk_score"`
	NoDemandData          bool      `json:"no_demand_data"`
}

// ValidationError reports an item record or stock figure that cannot be optimized.
type ValidationError struct {
	ItemID string
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	if e.ItemID == "" {
		return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
	}
	return fmt.Sprintf("item %s: invalid %s: %s", e.ItemID, e.Field, e.Reason)
}
