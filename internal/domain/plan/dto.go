// internal/domain/plan/dto.go
package plan

// IntervalPricing is the display pricing computed for one available interval.
type IntervalPricing struct {
	Interval        BillingInterval `json:"interval"`
	Months          int             `json:"months"`
	Amount          float64         `json:"amount"`
	Currency        string          `json:"currency"`
	PerMonth        float64         `json:"per_month"`
	BestValue       bool            `json:"best_value"`
	BestValuePct    int             `json:"best_value_percent"`
	PriceAvailable  bool            `json:"price_available"`
}

// PlanView is a catalog entry decorated with derived display pricing and
// human-readable limit values.
type PlanView struct {
	Plan
	Pricing       []IntervalPricing `json:"pricing"`
	DisplayLimits map[string]string `json:"display_limits,omitempty"`
}

// ListResponse wraps a catalog listing.
type ListResponse struct {
	Plans []PlanView `json:"plans"`
	Total int        `json:"total"`
}
