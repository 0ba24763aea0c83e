// internal/service/billing/checkout_test.go
package billing

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"settings-service/internal/domain/account"
	"settings-service/internal/domain/coupon"
	"settings-service/internal/domain/plan"
	"settings-service/internal/domain/subscription"
	"settings-service/internal/gateway/razorpay"
	xerrors "settings-service/internal/pkg/errors"

	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func ptr(v float64) *float64 { return &v }

type fakeCatalog struct {
	plans map[string]*plan.Plan
}

func (f *fakeCatalog) List(ctx context.Context) ([]plan.Plan, error) {
	out := make([]plan.Plan, 0, len(f.plans))
	for _, p := range f.plans {
		out = append(out, *p)
	}
	return out, nil
}

func (f *fakeCatalog) FindBySlug(ctx context.Context, slug string) (*plan.Plan, error) {
	p, ok := f.plans[slug]
	if !ok {
		return nil, xerrors.ErrNotFound
	}
	cp := *p
	return &cp, nil
}

type fakeSubscriptions struct {
	current *subscription.Subscription
	creates int
	updates int
}

func (f *fakeSubscriptions) FindCurrentByAccount(ctx context.Context, accountID int64) (*subscription.Subscription, error) {
	if f.current == nil {
		return nil, xerrors.ErrNotFound
	}
	cp := *f.current
	return &cp, nil
}

func (f *fakeSubscriptions) CreateWithTx(ctx context.Context, tx pgx.Tx, sub *subscription.Subscription) error {
	f.creates++
	sub.ID = 1
	cp := *sub
	f.current = &cp
	return nil
}

func (f *fakeSubscriptions) UpdateWithTx(ctx context.Context, tx pgx.Tx, sub *subscription.Subscription) error {
	f.updates++
	cp := *sub
	f.current = &cp
	return nil
}

type fakeCoupons struct {
	coupons      map[string]*coupon.Coupon
	increments   int
	incrementErr error
}

func (f *fakeCoupons) FindByCode(ctx context.Context, code string) (*coupon.Coupon, error) {
	c, ok := f.coupons[code]
	if !ok {
		return nil, xerrors.ErrNotFound
	}
	cp := *c
	return &cp, nil
}

func (f *fakeCoupons) IncrementUsesWithTx(ctx context.Context, tx pgx.Tx, id int64) error {
	if f.incrementErr != nil {
		return f.incrementErr
	}
	f.increments++
	return nil
}

// fakeTxRunner hands fn a nil transaction and counts how many transactions
// were begun.
type fakeTxRunner struct {
	begins int
}

func (f *fakeTxRunner) RunInTx(ctx context.Context, fn func(tx pgx.Tx) error) error {
	f.begins++
	return fn(nil)
}

type fakeAccounts struct{}

func (f *fakeAccounts) FindByID(ctx context.Context, id int64) (*account.Account, error) {
	return &account.Account{
		ID:       id,
		Email:    "owner@estate.test",
		FullName: "Asha Rao",
		Phone:    sql.NullString{String: "+919800000000", Valid: true},
		Role:     account.RoleOwner,
		Active:   true,
	}, nil
}

// fakeGateway counts every cross-boundary call so tests can assert that
// precondition failures never reach the provider.
type fakeGateway struct {
	acquires      int
	orders        int
	verifications int

	acquireErr error
	signatures map[string]bool
}

func (f *fakeGateway) Acquire(ctx context.Context) error {
	f.acquires++
	return f.acquireErr
}

func (f *fakeGateway) CreateOrder(ctx context.Context, req *razorpay.OrderRequest) (*razorpay.OrderResponse, error) {
	f.orders++
	return &razorpay.OrderResponse{
		ID:       "order_test_1",
		Amount:   req.AmountPaise,
		Currency: req.Currency,
		Receipt:  req.Receipt,
		Status:   "created",
	}, nil
}

func (f *fakeGateway) VerifySignature(orderID, paymentID, signature string) bool {
	f.verifications++
	return f.signatures[signature]
}

func (f *fakeGateway) BuildCheckoutOptions(order *razorpay.OrderResponse, description string, notes map[string]string, prefill razorpay.Prefill) *razorpay.CheckoutOptions {
	return &razorpay.CheckoutOptions{
		OrderID:     order.ID,
		Amount:      order.Amount,
		Currency:    order.Currency,
		Description: description,
		Notes:       notes,
		Prefill:     prefill,
	}
}

func (f *fakeGateway) totalCalls() int {
	return f.acquires + f.orders + f.verifications
}

type allowAllLimiter struct{}

func (allowAllLimiter) Allow(ctx context.Context, accountID int64) (bool, error) { return true, nil }

type fixture struct {
	svc     *Service
	catalog *fakeCatalog
	subs    *fakeSubscriptions
	coupons *fakeCoupons
	gateway *fakeGateway
	runner  *fakeTxRunner
	store   *MemoryStateStore
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	monthly := 1000.0
	pro := &plan.Plan{
		ID:       1,
		Slug:     "pro",
		Name:     "Pro",
		Currency: "INR",
		Prices: map[plan.BillingInterval]float64{
			plan.Interval1M:  1000,
			plan.Interval12M: 10800,
		},
		PriceMonthly:       ptr(monthly),
		AvailableIntervals: []plan.BillingInterval{plan.Interval1M, plan.Interval6M, plan.Interval12M},
	}

	now := time.Now()
	save20 := &coupon.Coupon{
		ID:            7,
		Code:          "SAVE20",
		DiscountType:  coupon.DiscountPercentage,
		DiscountValue: 20,
		StartsAt:      now.Add(-time.Hour),
		EndsAt:        now.Add(24 * time.Hour),
		Active:        true,
	}

	catalog := &fakeCatalog{plans: map[string]*plan.Plan{"pro": pro}}
	subs := &fakeSubscriptions{}
	coupons := &fakeCoupons{coupons: map[string]*coupon.Coupon{"SAVE20": save20}}
	gateway := &fakeGateway{signatures: map[string]bool{"good-sig": true}}
	runner := &fakeTxRunner{}
	store := NewMemoryStateStore()

	svc := NewService(catalog, subs, coupons, &fakeAccounts{}, gateway, runner, store, allowAllLimiter{}, nil, 18, zap.NewNop())
	return &fixture{svc: svc, catalog: catalog, subs: subs, coupons: coupons, gateway: gateway, runner: runner, store: store}
}

func activeSubscription(accountID int64) *subscription.Subscription {
	now := time.Now()
	return &subscription.Subscription{
		ID:                 1,
		AccountID:          accountID,
		PlanSlug:           "pro",
		Status:             subscription.StatusActive,
		BillingInterval:    plan.Interval1M,
		CurrentPeriodStart: now.AddDate(0, 0, -10),
		CurrentPeriodEnd:   now.AddDate(0, 0, 18),
	}
}

func TestStartCheckoutRequiresCurrentSubscription(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.StartCheckout(context.Background(), 42, account.RoleOwner, &subscription.CreateOrderRequest{
		PlanSlug:        "pro",
		BillingInterval: plan.Interval12M,
	})

	require.ErrorIs(t, err, xerrors.ErrNoSubscription)
	assert.Equal(t, 0, f.gateway.totalCalls(), "guidance error must issue zero gateway calls")
}

func TestStartCheckoutForbiddenRole(t *testing.T) {
	f := newFixture(t)
	f.subs.current = activeSubscription(42)

	_, err := f.svc.StartCheckout(context.Background(), 42, account.RoleStaff, &subscription.CreateOrderRequest{
		PlanSlug:        "pro",
		BillingInterval: plan.Interval1M,
	})

	require.ErrorIs(t, err, xerrors.ErrForbidden)
	assert.Equal(t, 0, f.gateway.totalCalls())
}

func TestStartCheckoutOpensSession(t *testing.T) {
	f := newFixture(t)
	f.subs.current = activeSubscription(42)

	intent, err := f.svc.StartCheckout(context.Background(), 42, account.RoleOwner, &subscription.CreateOrderRequest{
		PlanSlug:        "pro",
		BillingInterval: plan.Interval12M,
		CouponCode:      "SAVE20",
	})
	require.NoError(t, err)

	// 10800 base, 20% off = 8640, +18% GST = 10195.20.
	assert.Equal(t, StateCheckoutOpen, intent.Session.State)
	assert.Equal(t, 10800.0, intent.Session.BaseAmount)
	assert.Equal(t, 2160.0, intent.Session.DiscountAmount)
	assert.Equal(t, 8640.0, intent.Session.FinalAmount)
	assert.Equal(t, 10195.2, intent.Session.GrossAmount)
	assert.Equal(t, int64(1019520), intent.Options.Amount)
	assert.Equal(t, "order_test_1", intent.Options.OrderID)
	assert.Equal(t, "SAVE20", intent.Options.Notes["coupon_code"])
	assert.Contains(t, intent.Session.Receipt, "rcpt-")
	assert.Equal(t, 1, f.gateway.orders)
	assert.Equal(t, 1, f.gateway.acquires)

	sess, err := f.store.GetSession(context.Background(), 42)
	require.NoError(t, err)
	assert.Equal(t, StateCheckoutOpen, sess.State)
}

func TestStartCheckoutSingleFlight(t *testing.T) {
	f := newFixture(t)
	f.subs.current = activeSubscription(42)

	req := &subscription.CreateOrderRequest{PlanSlug: "pro", BillingInterval: plan.Interval1M}
	_, err := f.svc.StartCheckout(context.Background(), 42, account.RoleOwner, req)
	require.NoError(t, err)

	_, err = f.svc.StartCheckout(context.Background(), 42, account.RoleOwner, req)
	require.ErrorIs(t, err, xerrors.ErrCheckoutInFlight)
	assert.Equal(t, 1, f.gateway.orders, "second attempt must not create another order")
}

func TestStartCheckoutNormalizesUnknownInterval(t *testing.T) {
	f := newFixture(t)
	f.subs.current = activeSubscription(42)

	intent, err := f.svc.StartCheckout(context.Background(), 42, account.RoleOwner, &subscription.CreateOrderRequest{
		PlanSlug:        "pro",
		BillingInterval: plan.Interval3M, // not offered by the plan
	})
	require.NoError(t, err)
	assert.Equal(t, plan.Interval1M, intent.Session.BillingInterval)
}

func TestCancelCheckoutNoVerifyNoMutation(t *testing.T) {
	f := newFixture(t)
	f.subs.current = activeSubscription(42)
	before := *f.subs.current

	_, err := f.svc.StartCheckout(context.Background(), 42, account.RoleOwner, &subscription.CreateOrderRequest{
		PlanSlug:        "pro",
		BillingInterval: plan.Interval1M,
	})
	require.NoError(t, err)

	require.NoError(t, f.svc.CancelCheckout(context.Background(), 42))

	assert.Equal(t, 0, f.gateway.verifications, "dismiss must never call verify")
	assert.Equal(t, 0, f.subs.creates+f.subs.updates, "dismiss must never mutate the subscription")
	assert.Equal(t, before, *f.subs.current)

	_, err = f.store.GetSession(context.Background(), 42)
	assert.ErrorIs(t, err, xerrors.ErrNotFound)
}

func TestCancelCheckoutWithoutSessionIsNoop(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.svc.CancelCheckout(context.Background(), 42))
}

func TestVerifyPaymentSuccessReplacesSubscription(t *testing.T) {
	f := newFixture(t)
	f.subs.current = activeSubscription(42)

	intent, err := f.svc.StartCheckout(context.Background(), 42, account.RoleOwner, &subscription.CreateOrderRequest{
		PlanSlug:        "pro",
		BillingInterval: plan.Interval12M,
		CouponCode:      "SAVE20",
	})
	require.NoError(t, err)

	sub, err := f.svc.VerifyPayment(context.Background(), 42, account.RoleOwner, &subscription.VerifyPaymentRequest{
		RazorpayOrderID:   intent.Session.OrderID,
		RazorpayPaymentID: "pay_test_1",
		RazorpaySignature: "good-sig",
	})
	require.NoError(t, err)

	assert.Equal(t, "pro", sub.PlanSlug)
	assert.Equal(t, subscription.StatusActive, sub.Status)
	assert.Equal(t, plan.Interval12M, sub.BillingInterval)
	// Twelve 28-day periods.
	assert.Equal(t, 12*28, int(sub.CurrentPeriodEnd.Sub(sub.CurrentPeriodStart).Hours()/24))
	require.NotNil(t, sub.Meta)
	assert.Equal(t, "pay_test_1", sub.Meta.PaymentID)
	require.NotNil(t, sub.Meta.AppliedCoupon)
	assert.Equal(t, "SAVE20", sub.Meta.AppliedCoupon.Code)

	assert.Equal(t, 1, f.subs.updates)
	assert.Equal(t, 1, f.coupons.increments)
	// Replace and redemption commit together.
	assert.Equal(t, 1, f.runner.begins)

	// Coupon entry state is cleared once the payment consumed the code.
	sel, err := f.svc.GetSelection(context.Background(), 42)
	require.NoError(t, err)
	assert.Empty(t, sel.CouponCode)
	assert.Nil(t, sel.Preview)

	// The session is gone; a repeat verification needs a fresh order.
	_, err = f.svc.VerifyPayment(context.Background(), 42, account.RoleOwner, &subscription.VerifyPaymentRequest{
		RazorpayOrderID:   intent.Session.OrderID,
		RazorpayPaymentID: "pay_test_1",
		RazorpaySignature: "good-sig",
	})
	assert.ErrorIs(t, err, xerrors.ErrVerificationFailed)
}

func TestVerifyPaymentCouponRedemptionFailureAbortsVerification(t *testing.T) {
	f := newFixture(t)
	f.subs.current = activeSubscription(42)
	f.coupons.incrementErr = xerrors.ErrNotFound

	intent, err := f.svc.StartCheckout(context.Background(), 42, account.RoleOwner, &subscription.CreateOrderRequest{
		PlanSlug:        "pro",
		BillingInterval: plan.Interval12M,
		CouponCode:      "SAVE20",
	})
	require.NoError(t, err)

	_, err = f.svc.VerifyPayment(context.Background(), 42, account.RoleOwner, &subscription.VerifyPaymentRequest{
		RazorpayOrderID:   intent.Session.OrderID,
		RazorpayPaymentID: "pay_test_1",
		RazorpaySignature: "good-sig",
	})
	require.Error(t, err)
	assert.Equal(t, 0, f.coupons.increments)

	// The session survives the aborted commit so the caller can retry.
	sess, err := f.store.GetSession(context.Background(), 42)
	require.NoError(t, err)
	require.NotNil(t, sess)
	assert.Equal(t, intent.Session.OrderID, sess.OrderID)
}

func TestVerifyPaymentBadSignatureLeavesSubscriptionUntouched(t *testing.T) {
	f := newFixture(t)
	f.subs.current = activeSubscription(42)
	before := *f.subs.current

	intent, err := f.svc.StartCheckout(context.Background(), 42, account.RoleOwner, &subscription.CreateOrderRequest{
		PlanSlug:        "pro",
		BillingInterval: plan.Interval12M,
	})
	require.NoError(t, err)

	_, err = f.svc.VerifyPayment(context.Background(), 42, account.RoleOwner, &subscription.VerifyPaymentRequest{
		RazorpayOrderID:   intent.Session.OrderID,
		RazorpayPaymentID: "pay_test_1",
		RazorpaySignature: "tampered",
	})
	require.ErrorIs(t, err, xerrors.ErrVerificationFailed)

	assert.Equal(t, 0, f.subs.creates+f.subs.updates)
	assert.Equal(t, before, *f.subs.current)
	assert.Equal(t, 0, f.coupons.increments)

	// The failed session is dropped: retrying requires a new order, and a
	// new checkout may be started immediately.
	_, err = f.store.GetSession(context.Background(), 42)
	assert.ErrorIs(t, err, xerrors.ErrNotFound)

	_, err = f.svc.StartCheckout(context.Background(), 42, account.RoleOwner, &subscription.CreateOrderRequest{
		PlanSlug:        "pro",
		BillingInterval: plan.Interval12M,
	})
	assert.NoError(t, err)
}

func TestVerifyPaymentOrderMismatch(t *testing.T) {
	f := newFixture(t)
	f.subs.current = activeSubscription(42)

	_, err := f.svc.StartCheckout(context.Background(), 42, account.RoleOwner, &subscription.CreateOrderRequest{
		PlanSlug:        "pro",
		BillingInterval: plan.Interval1M,
	})
	require.NoError(t, err)

	_, err = f.svc.VerifyPayment(context.Background(), 42, account.RoleOwner, &subscription.VerifyPaymentRequest{
		RazorpayOrderID:   "order_someone_else",
		RazorpayPaymentID: "pay_test_1",
		RazorpaySignature: "good-sig",
	})
	require.ErrorIs(t, err, xerrors.ErrVerificationFailed)
	assert.Equal(t, 0, f.gateway.verifications, "mismatched order never reaches signature verification")
	assert.Equal(t, 0, f.subs.creates+f.subs.updates)
}

func TestStartCheckoutAcquireFailureDropsSession(t *testing.T) {
	f := newFixture(t)
	f.subs.current = activeSubscription(42)
	f.gateway.acquireErr = xerrors.ErrGatewayUnavailable

	_, err := f.svc.StartCheckout(context.Background(), 42, account.RoleOwner, &subscription.CreateOrderRequest{
		PlanSlug:        "pro",
		BillingInterval: plan.Interval1M,
	})
	require.ErrorIs(t, err, xerrors.ErrGatewayUnavailable)

	// The failure is retryable: the next attempt is not blocked by a stale
	// in-flight session.
	f.gateway.acquireErr = nil
	_, err = f.svc.StartCheckout(context.Background(), 42, account.RoleOwner, &subscription.CreateOrderRequest{
		PlanSlug:        "pro",
		BillingInterval: plan.Interval1M,
	})
	assert.NoError(t, err)
}

func TestChangePlanWithoutPaymentCreatesSubscription(t *testing.T) {
	f := newFixture(t)

	sub, err := f.svc.ChangePlan(context.Background(), 42, account.RoleOwner, &subscription.ChangePlanRequest{
		PlanSlug:        "pro",
		BillingInterval: plan.Interval6M,
	})
	require.NoError(t, err)

	assert.Equal(t, 1, f.subs.creates)
	assert.Equal(t, plan.Interval6M, sub.BillingInterval)
	// 6 months of the monthly fallback, GST on top.
	assert.Equal(t, 6*28, int(sub.CurrentPeriodEnd.Sub(sub.CurrentPeriodStart).Hours()/24))
	require.NotNil(t, sub.Meta)
	assert.Equal(t, 7080.0, sub.Meta.GrossAmount)
}
