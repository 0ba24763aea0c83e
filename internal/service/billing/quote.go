// internal/service/billing/quote.go
package billing

import (
	"context"
	"fmt"
	"math"
	"strings"
	"time"

	"settings-service/internal/domain/coupon"
	"settings-service/internal/domain/plan"
	"settings-service/internal/domain/subscription"
	xerrors "settings-service/internal/pkg/errors"
	"settings-service/internal/pkg/pricing"
)

func roundMoney(v float64) float64 {
	return math.Round(v*100) / 100
}

// quote derives the charge for a plan/interval with an optional coupon:
// base price, coupon discount, then GST on the discounted amount.
func (s *Service) quote(p *plan.Plan, interval plan.BillingInterval, c *coupon.Coupon) (*subscription.CouponPreview, error) {
	price := pricing.PriceFor(p, interval)
	if price == nil {
		return nil, fmt.Errorf("%w: plan %q has no price for interval %q", xerrors.ErrInvalidInput, p.Slug, interval)
	}

	base := roundMoney(price.Amount)
	discount := 0.0
	if c != nil {
		discount = roundMoney(c.DiscountOn(base))
	}
	final := roundMoney(base - discount)

	q := &subscription.CouponPreview{
		BaseAmount:     base,
		DiscountAmount: discount,
		FinalAmount:    final,
		Currency:       price.Currency,
	}
	if c != nil {
		q.Coupon = subscription.AppliedCoupon{
			Code:           c.Code,
			BaseAmount:     base,
			DiscountAmount: discount,
			FinalAmount:    final,
			Currency:       price.Currency,
		}
	}

	if s.gstPercent > 0 {
		q.GSTPercent = s.gstPercent
		q.GSTAmount = roundMoney(final * s.gstPercent / 100)
		q.GrossAmount = roundMoney(final + q.GSTAmount)
	} else {
		q.GrossAmount = final
	}

	return q, nil
}

// resolveCoupon validates a code against a plan at the current instant.
func (s *Service) resolveCoupon(ctx context.Context, code string, planSlug string) (*coupon.Coupon, error) {
	code = strings.TrimSpace(code)
	if code == "" {
		return nil, fmt.Errorf("%w: coupon code is empty", xerrors.ErrInvalidInput)
	}

	c, err := s.coupons.FindByCode(ctx, code)
	if err != nil {
		if xerrors.Is(err, xerrors.ErrNotFound) {
			return nil, fmt.Errorf("%w: coupon code not found", xerrors.ErrInvalidInput)
		}
		return nil, fmt.Errorf("failed to look up coupon: %w", err)
	}

	if !c.Usable(time.Now()) {
		return nil, fmt.Errorf("%w: coupon is not active", xerrors.ErrInvalidInput)
	}
	if !c.AppliesTo(planSlug) {
		return nil, fmt.Errorf("%w: coupon not applicable to this plan", xerrors.ErrInvalidInput)
	}

	return c, nil
}
