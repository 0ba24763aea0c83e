// internal/service/billing/selection_test.go
package billing

import (
	"context"
	"testing"

	"settings-service/internal/domain/account"
	"settings-service/internal/domain/plan"
	"settings-service/internal/domain/subscription"
	xerrors "settings-service/internal/pkg/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type denyLimiter struct{}

func (denyLimiter) Allow(ctx context.Context, accountID int64) (bool, error) { return false, nil }

func TestPreviewCouponQuote(t *testing.T) {
	f := newFixture(t)

	preview, err := f.svc.PreviewCoupon(context.Background(), 42, account.RoleOwner, &subscription.PreviewCouponRequest{
		PlanSlug:        "pro",
		BillingInterval: plan.Interval12M,
		CouponCode:      "SAVE20",
	})
	require.NoError(t, err)

	assert.Equal(t, 10800.0, preview.BaseAmount)
	assert.Equal(t, 2160.0, preview.DiscountAmount)
	assert.Equal(t, 8640.0, preview.FinalAmount)
	assert.Equal(t, "INR", preview.Currency)
	assert.Equal(t, "SAVE20", preview.Coupon.Code)

	sel, err := f.svc.GetSelection(context.Background(), 42)
	require.NoError(t, err)
	require.NotNil(t, sel.Preview)
	assert.Equal(t, preview.FinalAmount, sel.Preview.FinalAmount)
	assert.Empty(t, sel.CouponError)
}

func TestPreviewCouponUnknownCodeStoresError(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.PreviewCoupon(context.Background(), 42, account.RoleOwner, &subscription.PreviewCouponRequest{
		PlanSlug:        "pro",
		BillingInterval: plan.Interval1M,
		CouponCode:      "NOPE",
	})
	require.ErrorIs(t, err, xerrors.ErrInvalidInput)

	sel, selErr := f.svc.GetSelection(context.Background(), 42)
	require.NoError(t, selErr)
	assert.Nil(t, sel.Preview)
	assert.Contains(t, sel.CouponError, "not found")
}

func TestPreviewCouponRateLimited(t *testing.T) {
	f := newFixture(t)
	f.svc.limiter = denyLimiter{}

	_, err := f.svc.PreviewCoupon(context.Background(), 42, account.RoleOwner, &subscription.PreviewCouponRequest{
		PlanSlug:        "pro",
		BillingInterval: plan.Interval1M,
		CouponCode:      "SAVE20",
	})
	assert.ErrorIs(t, err, xerrors.ErrRateLimited)
}

func TestSelectionChangeClearsPreviewAndError(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.PreviewCoupon(context.Background(), 42, account.RoleOwner, &subscription.PreviewCouponRequest{
		PlanSlug:        "pro",
		BillingInterval: plan.Interval12M,
		CouponCode:      "SAVE20",
	})
	require.NoError(t, err)

	// Changing the interval invalidates the stored preview.
	sel, err := f.svc.UpdateSelection(context.Background(), 42, account.RoleOwner, &subscription.SelectionRequest{
		PlanSlug:        "pro",
		BillingInterval: plan.Interval6M,
		CouponCode:      "SAVE20",
	})
	require.NoError(t, err)
	assert.Nil(t, sel.Preview)
	assert.Empty(t, sel.CouponError)

	// Re-preview, then change the code: same invalidation.
	_, err = f.svc.PreviewCoupon(context.Background(), 42, account.RoleOwner, &subscription.PreviewCouponRequest{
		PlanSlug:        "pro",
		BillingInterval: plan.Interval6M,
		CouponCode:      "SAVE20",
	})
	require.NoError(t, err)

	sel, err = f.svc.UpdateSelection(context.Background(), 42, account.RoleOwner, &subscription.SelectionRequest{
		PlanSlug:        "pro",
		BillingInterval: plan.Interval6M,
		CouponCode:      "OTHER",
	})
	require.NoError(t, err)
	assert.Nil(t, sel.Preview)
}

func TestUpdateSelectionUnchangedKeepsPreview(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.PreviewCoupon(context.Background(), 42, account.RoleOwner, &subscription.PreviewCouponRequest{
		PlanSlug:        "pro",
		BillingInterval: plan.Interval12M,
		CouponCode:      "SAVE20",
	})
	require.NoError(t, err)

	sel, err := f.svc.UpdateSelection(context.Background(), 42, account.RoleOwner, &subscription.SelectionRequest{
		PlanSlug:        "pro",
		BillingInterval: plan.Interval12M,
		CouponCode:      "SAVE20",
	})
	require.NoError(t, err)
	assert.NotNil(t, sel.Preview, "identical triple must keep the preview")
}

func TestUpdateSelectionNormalizesInterval(t *testing.T) {
	f := newFixture(t)

	sel, err := f.svc.UpdateSelection(context.Background(), 42, account.RoleOwner, &subscription.SelectionRequest{
		PlanSlug:        "pro",
		BillingInterval: plan.Interval3M,
	})
	require.NoError(t, err)
	assert.Equal(t, plan.Interval1M, sel.BillingInterval)
}

func TestUpdateSelectionForbiddenRole(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.UpdateSelection(context.Background(), 42, account.RoleStaff, &subscription.SelectionRequest{
		PlanSlug: "pro",
	})
	assert.ErrorIs(t, err, xerrors.ErrForbidden)
}
