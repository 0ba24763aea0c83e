// internal/service/plans/plans.go
package plans

import (
	"context"
	"fmt"

	"settings-service/internal/domain/plan"
	"settings-service/internal/pkg/pricing"

	"go.uber.org/zap"
)

// Catalog is the read-only plan source.
type Catalog interface {
	List(ctx context.Context) ([]plan.Plan, error)
	FindBySlug(ctx context.Context, slug string) (*plan.Plan, error)
}

type Service struct {
	catalog Catalog
	logger  *zap.Logger
}

func NewService(catalog Catalog, logger *zap.Logger) *Service {
	return &Service{catalog: catalog, logger: logger}
}

// List returns the catalog decorated with derived display pricing and
// formatted limits.
func (s *Service) List(ctx context.Context) (*plan.ListResponse, error) {
	items, err := s.catalog.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list plans: %w", err)
	}

	views := make([]plan.PlanView, 0, len(items))
	for i := range items {
		views = append(views, *decorate(&items[i]))
	}
	return &plan.ListResponse{Plans: views, Total: len(views)}, nil
}

// Get returns one decorated plan by slug.
func (s *Service) Get(ctx context.Context, slug string) (*plan.PlanView, error) {
	p, err := s.catalog.FindBySlug(ctx, slug)
	if err != nil {
		return nil, err
	}
	return decorate(p), nil
}

// decorate computes per-interval display pricing and readable limit values
// for a catalog entry. Intervals without a derivable price are flagged
// rather than dropped so the caller can render them disabled.
func decorate(p *plan.Plan) *plan.PlanView {
	view := &plan.PlanView{Plan: *p}

	intervals := p.AvailableIntervals
	if len(intervals) == 0 {
		intervals = []plan.BillingInterval{plan.Interval1M}
	}

	for _, iv := range intervals {
		months := pricing.MonthsFromInterval(iv)
		ip := plan.IntervalPricing{
			Interval: iv,
			Months:   months,
			Currency: p.Currency,
		}
		if price := pricing.PriceFor(p, iv); price != nil {
			ip.Amount = price.Amount
			ip.PerMonth = price.Amount / float64(months)
			ip.PriceAvailable = true
			ip.BestValuePct = pricing.BestValuePercent(p, iv)
			ip.BestValue = pricing.HasBestValue(p, iv)
		}
		view.Pricing = append(view.Pricing, ip)
	}

	if len(p.Limits) > 0 {
		view.DisplayLimits = make(map[string]string, len(p.Limits))
		for key, value := range p.Limits {
			view.DisplayLimits[key] = pricing.FormatLimitValue(key, value)
		}
	}
	return view
}
