// internal/service/billing/selection.go
package billing

import (
	"context"
	"fmt"
	"strings"
	"time"

	"settings-service/internal/domain/account"
	"settings-service/internal/domain/subscription"
	xerrors "settings-service/internal/pkg/errors"

	"go.uber.org/zap"
)

// GetSelection returns the account's current selection, or a zero value
// when none has been made yet.
func (s *Service) GetSelection(ctx context.Context, accountID int64) (*Selection, error) {
	sel, err := s.store.GetSelection(ctx, accountID)
	if err != nil {
		if xerrors.Is(err, xerrors.ErrNotFound) {
			return &Selection{AccountID: accountID}, nil
		}
		return nil, err
	}
	return sel, nil
}

// UpdateSelection records a plan/interval/coupon-code choice. Whenever any
// element of the triple changes, the stored coupon preview and error are
// cleared: a preview must never be shown against a selection other than
// the one that produced it.
func (s *Service) UpdateSelection(ctx context.Context, accountID int64, role account.Role, req *subscription.SelectionRequest) (*Selection, error) {
	if err := requireBillingRole(role); err != nil {
		return nil, err
	}

	sel, err := s.GetSelection(ctx, accountID)
	if err != nil {
		return nil, err
	}

	interval := req.BillingInterval
	if req.PlanSlug != "" {
		p, err := s.plans.FindBySlug(ctx, req.PlanSlug)
		if err != nil {
			if xerrors.Is(err, xerrors.ErrNotFound) {
				return nil, fmt.Errorf("%w: unknown plan %q", xerrors.ErrInvalidInput, req.PlanSlug)
			}
			return nil, err
		}
		// An interval outside the plan's offering resets to 1m when
		// allowed, else the first allowed interval.
		interval = p.NormalizeInterval(interval)
	}

	code := strings.TrimSpace(req.CouponCode)
	changed := sel.PlanSlug != req.PlanSlug ||
		sel.BillingInterval != interval ||
		sel.CouponCode != code

	sel.PlanSlug = req.PlanSlug
	sel.BillingInterval = interval
	sel.CouponCode = code
	if changed {
		sel.Preview = nil
		sel.CouponError = ""
	}
	sel.UpdatedAt = time.Now()

	if err := s.store.PutSelection(ctx, sel); err != nil {
		return nil, err
	}
	return sel, nil
}

// PreviewCoupon quotes a coupon against the given plan and interval and
// stores the result on the selection. One call, no persistence beyond the
// selection-scoped preview.
func (s *Service) PreviewCoupon(ctx context.Context, accountID int64, role account.Role, req *subscription.PreviewCouponRequest) (*subscription.CouponPreview, error) {
	if err := requireBillingRole(role); err != nil {
		return nil, err
	}
	if req.PlanSlug == "" {
		return nil, fmt.Errorf("%w: no plan selected", xerrors.ErrInvalidInput)
	}
	code := strings.TrimSpace(req.CouponCode)
	if code == "" {
		return nil, fmt.Errorf("%w: coupon code is empty", xerrors.ErrInvalidInput)
	}

	if s.limiter != nil {
		allowed, err := s.limiter.Allow(ctx, accountID)
		if err != nil {
			s.logger.Warn("coupon rate limiter unavailable", zap.Error(err))
		} else if !allowed {
			return nil, xerrors.ErrRateLimited
		}
	}

	p, err := s.plans.FindBySlug(ctx, req.PlanSlug)
	if err != nil {
		if xerrors.Is(err, xerrors.ErrNotFound) {
			return nil, fmt.Errorf("%w: unknown plan %q", xerrors.ErrInvalidInput, req.PlanSlug)
		}
		return nil, err
	}
	interval := p.NormalizeInterval(req.BillingInterval)

	// Re-key the selection to the previewed triple before quoting so a
	// stored preview can never outlive its selection.
	sel, err := s.UpdateSelection(ctx, accountID, role, &subscription.SelectionRequest{
		PlanSlug:        req.PlanSlug,
		BillingInterval: interval,
		CouponCode:      code,
	})
	if err != nil {
		return nil, err
	}

	c, err := s.resolveCoupon(ctx, code, p.Slug)
	if err != nil {
		if xerrors.Is(err, xerrors.ErrInvalidInput) {
			sel.Preview = nil
			sel.CouponError = err.Error()
			if putErr := s.store.PutSelection(ctx, sel); putErr != nil {
				s.logger.Warn("failed to store coupon error", zap.Error(putErr))
			}
		}
		return nil, err
	}

	preview, err := s.quote(p, interval, c)
	if err != nil {
		return nil, err
	}

	sel.Preview = preview
	sel.CouponError = ""
	if err := s.store.PutSelection(ctx, sel); err != nil {
		return nil, err
	}

	s.logger.Info("coupon previewed",
		zap.Int64("account_id", accountID),
		zap.String("plan_slug", p.Slug),
		zap.String("interval", string(interval)),
		zap.String("coupon_code", c.Code),
		zap.Float64("discount", preview.DiscountAmount),
	)
	return preview, nil
}

// clearCouponState drops the coupon code, preview and error after a plan
// change or verified payment consumed the coupon.
func (s *Service) clearCouponState(ctx context.Context, accountID int64) {
	sel, err := s.GetSelection(ctx, accountID)
	if err != nil {
		s.logger.Warn("failed to load selection for coupon reset", zap.Error(err))
		return
	}
	sel.CouponCode = ""
	sel.Preview = nil
	sel.CouponError = ""
	sel.UpdatedAt = time.Now()
	if err := s.store.PutSelection(ctx, sel); err != nil {
		s.logger.Warn("failed to clear coupon state", zap.Error(err))
	}
}
