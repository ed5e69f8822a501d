package optimizer

import (
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/message/catalog"

	"github.com/andresuchdata/stockcast/internal/domain"
	"github.com/andresuchdata/stockcast/internal/forecast"
)

// English message keys double as the fallback format strings.
const (
	msgUrgentReorder  = "Urgent reorder: stock of %.0f is below the reorder point of %.0f. Order %.0f units now."
	msgOverstock      = "Overstock: stock of %.0f is more than 50%% above the optimal level of %.0f. Reduce upcoming orders."
	msgServiceLevel   = "Service level of %.1f%% is below the %.1f%% target. Increase safety stock."
	msgSlowTurnover   = "Slow turnover of %.1f per year. Review purchase volumes or clear excess stock."
	msgFastTurnover   = "Fast turnover of %.1f per year. Consider more frequent orders."
	msgLowCoverage    = "Only %.0f days of supply left, less than twice the %d day lead time."
	msgExcessCoverage = "%.0f days of supply on hand. Stock beyond 90 days ties up working capital."
	msgLowAccuracy    = "Forecast accuracy is only %.0f%%. Check the demand history before relying on the forecast."
	msgHighValueSlow  = "High-value item with slow turnover. Order smaller quantities more often."
	msgSeasonal       = "Demand varies strongly by weekday. Build stock ahead of peak days."
)

const (
	overstockRatio        = 1.5
	serviceLevelTolerance = 0.05
	slowTurnover          = 4.0
	fastTurnover          = 12.0
	excessCoverageDays    = 90.0
	lowAccuracy           = 70.0
	highValueUnitPrice    = 1000.0
	seasonalMinHistory    = 14
	seasonalSpread        = 0.5
)

var arabicMessages = map[string]string{
	msgUrgentReorder:  "إعادة طلب عاجلة: المخزون %.0f أقل من نقطة إعادة الطلب %.0f. اطلب %.0f وحدة الآن.",
	msgOverstock:      "مخزون زائد: المخزون %.0f يتجاوز المستوى الأمثل %.0f بأكثر من 50%%. قلل الطلبات القادمة.",
	msgServiceLevel:   "مستوى الخدمة %.1f%% أقل من الهدف %.1f%%. زد مخزون الأمان.",
	msgSlowTurnover:   "دوران بطيء بمعدل %.1f في السنة. راجع كميات الشراء أو صرّف المخزون الزائد.",
	msgFastTurnover:   "دوران سريع بمعدل %.1f في السنة. فكّر في طلبات أكثر تكرارًا.",
	msgLowCoverage:    "يتبقى %.0f يومًا فقط من المخزون، أقل من ضعف مهلة التوريد البالغة %d يومًا.",
	msgExcessCoverage: "المخزون يكفي %.0f يومًا. المخزون الذي يتجاوز 90 يومًا يجمّد رأس المال.",
	msgLowAccuracy:    "دقة التنبؤ %.0f%% فقط. راجع سجل الطلب قبل الاعتماد على التنبؤ.",
	msgHighValueSlow:  "صنف عالي القيمة بطيء الدوران. اطلب كميات أصغر بشكل أكثر تكرارًا.",
	msgSeasonal:       "يختلف الطلب بشدة حسب أيام الأسبوع. جهّز المخزون قبل أيام الذروة.",
}

var recommendationCatalog = newRecommendationCatalog()

func newRecommendationCatalog() *catalog.Builder {
	b := catalog.NewBuilder(catalog.Fallback(language.English))
	for key, msg := range arabicMessages {
		// keys are constants; SetString only fails on malformed messages
		_ = b.SetString(language.Arabic, key, msg)
	}
	return b
}

// SupportedLanguages lists the languages recommendations can be rendered in.
func SupportedLanguages() []language.Tag {
	return recommendationCatalog.Languages()
}

// resolveLanguage parses a BCP 47 tag. Unparseable input falls back to English;
// the printer matches everything else against the catalog.
func resolveLanguage(name string) language.Tag {
	tag, err := language.Parse(name)
	if err != nil {
		return language.English
	}
	return tag
}

// recommendationInput carries the computed policy figures the rules read.
type recommendationInput struct {
	item         domain.InventoryItem
	result       *Result
	history      []domain.HistoricalDemand
	forecast     *forecast.DemandForecast
	leadTimeDays int
	target       float64
}

// buildRecommendations evaluates every rule independently, in a fixed order.
func buildRecommendations(p *message.Printer, in recommendationInput) []string {
	r := in.result
	lead := float64(in.leadTimeDays)
	out := make([]string, 0, 4)

	if r.CurrentStock < r.ReorderPoint {
		out = append(out, p.Sprintf(msgUrgentReorder, r.CurrentStock, r.ReorderPoint, r.ReorderQuantity))
	}
	if r.CurrentStock > overstockRatio*r.OptimalStock {
		out = append(out, p.Sprintf(msgOverstock, r.CurrentStock, r.OptimalStock))
	}
	if r.ServiceLevel < in.target-serviceLevelTolerance {
		out = append(out, p.Sprintf(msgServiceLevel, r.ServiceLevel*100, in.target*100))
	}

	// turnover is meaningless without stock on hand
	if r.CurrentStock > 0 {
		switch {
		case r.TurnoverRate < slowTurnover:
			out = append(out, p.Sprintf(msgSlowTurnover, r.TurnoverRate))
		case r.TurnoverRate > fastTurnover:
			out = append(out, p.Sprintf(msgFastTurnover, r.TurnoverRate))
		}
	}

	switch {
	case r.DaysOfSupply < 2*lead:
		out = append(out, p.Sprintf(msgLowCoverage, r.DaysOfSupply, in.leadTimeDays))
	case r.DaysOfSupply > excessCoverageDays:
		out = append(out, p.Sprintf(msgExcessCoverage, r.DaysOfSupply))
	}

	if in.forecast != nil && in.forecast.Accuracy < lowAccuracy {
		out = append(out, p.Sprintf(msgLowAccuracy, in.forecast.Accuracy))
	}
	if in.item.UnitPrice > highValueUnitPrice && r.TurnoverRate < slowTurnover {
		out = append(out, p.Sprintf(msgHighValueSlow))
	}
	if len(in.history) >= seasonalMinHistory {
		lowest, highest := forecast.CalculateSeasonalFactors(in.history).Spread()
		if highest-lowest > seasonalSpread {
			out = append(out, p.Sprintf(msgSeasonal))
		}
	}
	return out
}
