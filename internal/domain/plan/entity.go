// internal/domain/plan/entity.go
package plan

import (
	"time"
)

// BillingInterval is a subscription renewal period code. It is not a
// calendar month: one interval unit bills as a 28-day period.
type BillingInterval string

const (
	Interval1M  BillingInterval = "1m"
	Interval3M  BillingInterval = "3m"
	Interval6M  BillingInterval = "6m"
	Interval12M BillingInterval = "12m"
)

// AllIntervals lists every interval code the catalog may offer.
var AllIntervals = []BillingInterval{Interval1M, Interval3M, Interval6M, Interval12M}

// IsValidInterval reports whether code is a known billing interval.
func IsValidInterval(code BillingInterval) bool {
	for _, iv := range AllIntervals {
		if iv == code {
			return true
		}
	}
	return false
}

// Plan is a catalog entry. Plans are owned and mutated by backoffice
// tooling only; the API serves them read-only.
type Plan struct {
	ID       int64  `json:"id" db:"id"`
	Slug     string `json:"slug" db:"slug"`
	Name     string `json:"name" db:"name"`
	Currency string `json:"currency" db:"currency"`

	// Pricing. Prices maps interval code to amount; the legacy monthly and
	// yearly columns remain as fallbacks for catalogs that predate the map.
	Prices       map[BillingInterval]float64 `json:"prices,omitempty" db:"prices"`
	PriceMonthly *float64                    `json:"price_monthly,omitempty" db:"price_monthly"`
	PriceYearly  *float64                    `json:"price_yearly,omitempty" db:"price_yearly"`

	// Limits maps a capacity key (storage_mb, max_staff, max_units, ...) to
	// its numeric cap. Zero or absent means unlimited.
	Limits map[string]float64 `json:"limits,omitempty" db:"limits"`

	AvailableIntervals []BillingInterval `json:"available_intervals" db:"available_intervals"`
	Recommended        bool              `json:"recommended" db:"recommended"`

	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// AllowsInterval reports whether the plan can be billed on the given interval.
func (p *Plan) AllowsInterval(code BillingInterval) bool {
	for _, iv := range p.AvailableIntervals {
		if iv == code {
			return true
		}
	}
	return false
}

// NormalizeInterval returns code if the plan allows it, otherwise 1m when
// allowed, otherwise the first allowed interval.
func (p *Plan) NormalizeInterval(code BillingInterval) BillingInterval {
	if p.AllowsInterval(code) {
		return code
	}
	if p.AllowsInterval(Interval1M) {
		return Interval1M
	}
	if len(p.AvailableIntervals) > 0 {
		return p.AvailableIntervals[0]
	}
	return Interval1M
}
