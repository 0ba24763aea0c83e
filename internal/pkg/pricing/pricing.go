// internal/pkg/pricing/pricing.go
package pricing

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"settings-service/internal/domain/plan"
)

// Price is a derived amount in the plan's currency.
type Price struct {
	Amount   float64 `json:"amount"`
	Currency string  `json:"currency"`
}

// daysPerIntervalMonth is the billing period length of one interval unit.
// A 1m interval bills as a 28-day period, not a calendar month.
const daysPerIntervalMonth = 28

// MonthsFromInterval parses the month count from an interval code such as
// "3m". Unparsable codes count as a single month.
func MonthsFromInterval(code plan.BillingInterval) int {
	s := string(code)
	if !strings.HasSuffix(s, "m") {
		return 1
	}
	n, err := strconv.Atoi(strings.TrimSuffix(s, "m"))
	if err != nil || n < 1 {
		return 1
	}
	return n
}

// PriceFor resolves the price of a plan on an interval. Resolution order:
// explicit prices map entry, then the legacy monthly/yearly column for
// 1m/12m, then price_monthly multiplied by the month count. Returns nil
// when no price can be derived.
func PriceFor(p *plan.Plan, code plan.BillingInterval) *Price {
	if p == nil {
		return nil
	}
	if amount, ok := p.Prices[code]; ok {
		return &Price{Amount: amount, Currency: p.Currency}
	}
	switch code {
	case plan.Interval1M:
		if p.PriceMonthly != nil {
			return &Price{Amount: *p.PriceMonthly, Currency: p.Currency}
		}
	case plan.Interval12M:
		if p.PriceYearly != nil {
			return &Price{Amount: *p.PriceYearly, Currency: p.Currency}
		}
	}
	if p.PriceMonthly != nil {
		return &Price{Amount: *p.PriceMonthly * float64(MonthsFromInterval(code)), Currency: p.Currency}
	}
	return nil
}

// BestValuePercent reports the savings of the interval's total price versus
// paying the monthly rate for the same number of months, rounded to a whole
// percent and floored at zero. A total worse than monthly is 0%, never a
// negative saving.
func BestValuePercent(p *plan.Plan, code plan.BillingInterval) int {
	total := PriceFor(p, code)
	monthly := PriceFor(p, plan.Interval1M)
	if total == nil || monthly == nil {
		return 0
	}
	if !isFinite(total.Amount) || !isFinite(monthly.Amount) || monthly.Amount <= 0 {
		return 0
	}
	baseline := monthly.Amount * float64(MonthsFromInterval(code))
	if baseline <= 0 {
		return 0
	}
	pct := int(math.Round((1 - total.Amount/baseline) * 100))
	if pct < 0 {
		pct = 0
	}
	if pct > 100 {
		pct = 100
	}
	return pct
}

// HasBestValue reports whether the interval saves anything over monthly.
func HasBestValue(p *plan.Plan, code plan.BillingInterval) bool {
	return BestValuePercent(p, code) > 0
}

// PeriodEnd returns the end of a billing period started at start. Periods
// are month-count × 28 days.
func PeriodEnd(start time.Time, code plan.BillingInterval) time.Time {
	return start.AddDate(0, 0, daysPerIntervalMonth*MonthsFromInterval(code))
}

// FormatLimitValue renders a plan limit for display. The storage_mb key is
// shown in MB or GB; for every key a non-positive number reads "Unlimited"
// and a missing value reads "-".
func FormatLimitValue(key string, value any) string {
	if key == "storage_mb" {
		v, ok := toFloat(value)
		if !ok || !isFinite(v) {
			return "-"
		}
		if v <= 0 {
			return "Unlimited"
		}
		if v >= 1024 {
			gb := v / 1024
			if math.Mod(v, 1024) == 0 {
				return fmt.Sprintf("%.0f GB", gb)
			}
			return fmt.Sprintf("%.1f GB", gb)
		}
		return formatNumber(v) + " MB"
	}

	if value == nil {
		return "-"
	}
	if v, ok := toFloat(value); ok {
		if v <= 0 {
			return "Unlimited"
		}
		return formatNumber(v)
	}
	return fmt.Sprintf("%v", value)
}

func formatNumber(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

func toFloat(value any) (float64, bool) {
	switch v := value.(type) {
	case float64:
		return v, true
	case float32:
		return float64(v), true
	case int:
		return float64(v), true
	case int32:
		return float64(v), true
	case int64:
		return float64(v), true
	case uint:
		return float64(v), true
	default:
		return 0, false
	}
}
