// internal/service/billing/subscription.go
package billing

import (
	"context"
	"fmt"
	"time"

	"settings-service/internal/domain/account"
	"settings-service/internal/domain/subscription"
	xerrors "settings-service/internal/pkg/errors"
	"settings-service/internal/pkg/pricing"

	"go.uber.org/zap"
)

// GetCurrentSubscription returns the account's current subscription.
// ErrNotFound means "no current", a valid empty state the handler maps to
// 404 rather than a failure banner.
func (s *Service) GetCurrentSubscription(ctx context.Context, accountID int64) (*subscription.Subscription, error) {
	return s.subscriptions.FindCurrentByAccount(ctx, accountID)
}

// ChangePlan moves the account onto a plan and interval, applying an
// optional coupon server-side, and replaces the current subscription. On
// success all coupon-entry state is cleared: the coupon, if any, was
// consumed or attached server-side and the caller trusts the returned
// subscription.
func (s *Service) ChangePlan(ctx context.Context, accountID int64, role account.Role, req *subscription.ChangePlanRequest) (*subscription.Subscription, error) {
	if err := requireBillingRole(role); err != nil {
		return nil, err
	}

	p, err := s.plans.FindBySlug(ctx, req.PlanSlug)
	if err != nil {
		if xerrors.Is(err, xerrors.ErrNotFound) {
			return nil, fmt.Errorf("%w: unknown plan %q", xerrors.ErrInvalidInput, req.PlanSlug)
		}
		return nil, err
	}
	interval := p.NormalizeInterval(req.BillingInterval)

	var couponID int64
	var quoted *subscription.CouponPreview
	if req.CouponCode != "" {
		c, err := s.resolveCoupon(ctx, req.CouponCode, p.Slug)
		if err != nil {
			return nil, err
		}
		couponID = c.ID
		quoted, err = s.quote(p, interval, c)
		if err != nil {
			return nil, err
		}
	} else {
		quoted, err = s.quote(p, interval, nil)
		if err != nil {
			return nil, err
		}
	}

	now := time.Now()
	meta := &subscription.Meta{
		GSTPercent:  quoted.GSTPercent,
		GSTAmount:   quoted.GSTAmount,
		GrossAmount: quoted.GrossAmount,
	}
	if quoted.Coupon.Code != "" {
		coupon := quoted.Coupon
		meta.AppliedCoupon = &coupon
	}

	sub, err := s.subscriptions.FindCurrentByAccount(ctx, accountID)
	if err != nil && !xerrors.Is(err, xerrors.ErrNotFound) {
		return nil, fmt.Errorf("failed to load current subscription: %w", err)
	}
	if sub == nil {
		sub = &subscription.Subscription{AccountID: accountID}
	}

	sub.PlanSlug = p.Slug
	sub.Status = subscription.StatusActive
	sub.BillingInterval = interval
	sub.CurrentPeriodStart = now
	sub.CurrentPeriodEnd = pricing.PeriodEnd(now, interval)
	sub.Meta = meta

	if err := s.replaceSubscription(ctx, sub, couponID); err != nil {
		return nil, fmt.Errorf("failed to change plan: %w", err)
	}

	s.clearCouponState(ctx, accountID)

	s.logger.Info("plan changed",
		zap.Int64("account_id", accountID),
		zap.String("plan_slug", p.Slug),
		zap.String("interval", string(interval)),
	)
	s.publish(accountID, "subscription.changed", sub)
	return sub, nil
}
