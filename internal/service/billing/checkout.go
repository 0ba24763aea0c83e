// internal/service/billing/checkout.go
package billing

import (
	"context"
	"fmt"
	"math"
	"time"

	"settings-service/internal/domain/account"
	"settings-service/internal/domain/subscription"
	"settings-service/internal/gateway/razorpay"
	xerrors "settings-service/internal/pkg/errors"
	"settings-service/internal/pkg/pricing"

	"github.com/oklog/ulid/v2"
	"go.uber.org/zap"
)

// CheckoutIntent is everything the caller needs to open the gateway's
// checkout surface for an order.
type CheckoutIntent struct {
	Options *razorpay.CheckoutOptions `json:"options"`
	Session *Session                  `json:"session"`
}

// StartCheckout runs the pay action up to handing control to the external
// checkout surface: preconditions, order creation, gateway acquisition and
// option construction. At most one checkout may be open per account.
func (s *Service) StartCheckout(ctx context.Context, accountID int64, role account.Role, req *subscription.CreateOrderRequest) (*CheckoutIntent, error) {
	// Typed precondition checks. Nothing below them runs, and no network
	// call is made, unless all pass.
	if err := requireBillingRole(role); err != nil {
		return nil, err
	}
	if req.PlanSlug == "" {
		return nil, fmt.Errorf("%w: no plan selected", xerrors.ErrInvalidInput)
	}

	if existing, err := s.store.GetSession(ctx, accountID); err == nil &&
		existing.State != StateVerified && existing.State != StateCancelled {
		return nil, xerrors.ErrCheckoutInFlight
	} else if err != nil && !xerrors.Is(err, xerrors.ErrNotFound) {
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

	// Payment never implicitly creates a subscription: without a current
	// one the actor is directed to create it first.
	if _, err := s.subscriptions.FindCurrentByAccount(ctx, accountID); err != nil {
		if xerrors.Is(err, xerrors.ErrNotFound) {
			return nil, xerrors.ErrNoSubscription
		}
		return nil, fmt.Errorf("failed to load current subscription: %w", err)
	}

	var couponID int64
	var quoted *subscription.CouponPreview
	if req.CouponCode != "" {
		cp, err := s.resolveCoupon(ctx, req.CouponCode, p.Slug)
		if err != nil {
			return nil, err
		}
		couponID = cp.ID
		quoted, err = s.quote(p, interval, cp)
		if err != nil {
			return nil, err
		}
	} else {
		quoted, err = s.quote(p, interval, nil)
		if err != nil {
			return nil, err
		}
	}

	receipt := "rcpt-" + ulid.Make().String()
	notes := map[string]string{
		"plan_slug":        p.Slug,
		"billing_interval": string(interval),
		"account_id":       fmt.Sprintf("%d", accountID),
	}
	if quoted.Coupon.Code != "" {
		notes["coupon_code"] = quoted.Coupon.Code
	}

	order, err := s.gateway.CreateOrder(ctx, &razorpay.OrderRequest{
		AmountPaise: int64(math.Round(quoted.GrossAmount * 100)),
		Currency:    quoted.Currency,
		Receipt:     receipt,
		Notes:       notes,
	})
	if err != nil {
		return nil, err
	}

	sess := &Session{
		AccountID:       accountID,
		State:           StateOrderCreated,
		PlanSlug:        p.Slug,
		BillingInterval: interval,
		CouponCode:      quoted.Coupon.Code,
		CouponID:        couponID,
		OrderID:         order.ID,
		Receipt:         receipt,
		BaseAmount:      quoted.BaseAmount,
		DiscountAmount:  quoted.DiscountAmount,
		FinalAmount:     quoted.FinalAmount,
		GSTPercent:      quoted.GSTPercent,
		GSTAmount:       quoted.GSTAmount,
		GrossAmount:     quoted.GrossAmount,
		Currency:        quoted.Currency,
		CreatedAt:       time.Now(),
	}

	// The gateway handle is a shared process-lifetime resource; acquiring
	// it here is idempotent no matter how many pay actions race.
	if err := s.gateway.Acquire(ctx); err != nil {
		if delErr := s.store.DeleteSession(ctx, accountID); delErr != nil {
			s.logger.Warn("failed to drop checkout session", zap.Error(delErr))
		}
		return nil, err
	}
	sess.State = StateSDKReady

	prefill := s.prefillFor(ctx, accountID)
	description := fmt.Sprintf("%s plan (%s)", p.Name, interval)
	options := s.gateway.BuildCheckoutOptions(order, description, notes, prefill)

	sess.State = StateCheckoutOpen
	if err := s.store.PutSession(ctx, sess); err != nil {
		return nil, err
	}

	s.logger.Info("checkout opened",
		zap.Int64("account_id", accountID),
		zap.String("plan_slug", p.Slug),
		zap.String("interval", string(interval)),
		zap.String("order_id", order.ID),
		zap.Float64("gross_amount", quoted.GrossAmount),
	)
	return &CheckoutIntent{Options: options, Session: sess}, nil
}

// prefillFor loads actor contact info for the checkout form. Best-effort:
// anything unavailable stays an empty string.
func (s *Service) prefillFor(ctx context.Context, accountID int64) razorpay.Prefill {
	acc, err := s.accounts.FindByID(ctx, accountID)
	if err != nil {
		s.logger.Debug("prefill lookup failed", zap.Error(err))
		return razorpay.Prefill{}
	}
	pf := razorpay.Prefill{Name: acc.FullName, Email: acc.Email}
	if acc.Phone.Valid {
		pf.Contact = acc.Phone.String
	}
	return pf
}

// VerifyPayment handles the gateway's success callback: one verification
// of the signed (order, payment) pair. On success the current subscription
// is replaced and all coupon-entry state is cleared. On failure the
// subscription is untouched and the session is dropped; a retry must
// create a fresh order.
func (s *Service) VerifyPayment(ctx context.Context, accountID int64, role account.Role, req *subscription.VerifyPaymentRequest) (*subscription.Subscription, error) {
	if err := requireBillingRole(role); err != nil {
		return nil, err
	}

	sess, err := s.store.GetSession(ctx, accountID)
	if err != nil {
		if xerrors.Is(err, xerrors.ErrNotFound) {
			return nil, fmt.Errorf("%w: no open checkout", xerrors.ErrVerificationFailed)
		}
		return nil, err
	}
	if sess.State != StateCheckoutOpen || sess.OrderID != req.RazorpayOrderID {
		s.dropSession(ctx, accountID)
		return nil, fmt.Errorf("%w: order does not match the open checkout", xerrors.ErrVerificationFailed)
	}

	if !s.gateway.VerifySignature(req.RazorpayOrderID, req.RazorpayPaymentID, req.RazorpaySignature) {
		s.dropSession(ctx, accountID)
		s.logger.Warn("payment signature rejected",
			zap.Int64("account_id", accountID),
			zap.String("order_id", req.RazorpayOrderID),
		)
		return nil, xerrors.ErrVerificationFailed
	}

	now := time.Now()
	meta := &subscription.Meta{
		GSTPercent:  sess.GSTPercent,
		GSTAmount:   sess.GSTAmount,
		GrossAmount: sess.GrossAmount,
		OrderID:     req.RazorpayOrderID,
		PaymentID:   req.RazorpayPaymentID,
	}
	if sess.CouponCode != "" {
		meta.AppliedCoupon = &subscription.AppliedCoupon{
			Code:           sess.CouponCode,
			BaseAmount:     sess.BaseAmount,
			DiscountAmount: sess.DiscountAmount,
			FinalAmount:    sess.FinalAmount,
			Currency:       sess.Currency,
		}
	}

	sub, err := s.subscriptions.FindCurrentByAccount(ctx, accountID)
	if err != nil && !xerrors.Is(err, xerrors.ErrNotFound) {
		return nil, fmt.Errorf("failed to load current subscription: %w", err)
	}

	if sub == nil {
		sub = &subscription.Subscription{AccountID: accountID}
	}
	sub.PlanSlug = sess.PlanSlug
	sub.Status = subscription.StatusActive
	sub.BillingInterval = sess.BillingInterval
	sub.CurrentPeriodStart = now
	sub.CurrentPeriodEnd = pricing.PeriodEnd(now, sess.BillingInterval)
	sub.Meta = meta

	if err := s.replaceSubscription(ctx, sub, sess.CouponID); err != nil {
		return nil, fmt.Errorf("failed to replace subscription: %w", err)
	}

	s.clearCouponState(ctx, accountID)
	s.dropSession(ctx, accountID)

	s.logger.Info("payment verified",
		zap.Int64("account_id", accountID),
		zap.String("order_id", req.RazorpayOrderID),
		zap.String("payment_id", req.RazorpayPaymentID),
		zap.String("plan_slug", sub.PlanSlug),
	)
	s.publish(accountID, "payment.verified", sub)
	return sub, nil
}

// CancelCheckout handles the gateway's dismiss callback: no verification
// call, no subscription mutation, no error. The flow simply returns to the
// pre-payment view.
func (s *Service) CancelCheckout(ctx context.Context, accountID int64) error {
	sess, err := s.store.GetSession(ctx, accountID)
	if err != nil {
		if xerrors.Is(err, xerrors.ErrNotFound) {
			return nil
		}
		return err
	}

	s.dropSession(ctx, accountID)
	s.logger.Info("checkout dismissed",
		zap.Int64("account_id", accountID),
		zap.String("order_id", sess.OrderID),
	)
	return nil
}

func (s *Service) dropSession(ctx context.Context, accountID int64) {
	if err := s.store.DeleteSession(ctx, accountID); err != nil {
		s.logger.Warn("failed to drop checkout session", zap.Error(err))
	}
}
