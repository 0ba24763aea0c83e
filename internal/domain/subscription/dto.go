// internal/domain/subscription/dto.go
package subscription

import "settings-service/internal/domain/plan"

type ChangePlanRequest struct {
	PlanSlug        string               `json:"plan_slug" binding:"required"`
	BillingInterval plan.BillingInterval `json:"billing_interval" binding:"required"`
	CouponCode      string               `json:"coupon_code"`
}

type SelectionRequest struct {
	PlanSlug        string               `json:"plan_slug"`
	BillingInterval plan.BillingInterval `json:"billing_interval"`
	CouponCode      string               `json:"coupon_code"`
}

type PreviewCouponRequest struct {
	PlanSlug        string               `json:"plan_slug" binding:"required"`
	BillingInterval plan.BillingInterval `json:"billing_interval" binding:"required"`
	CouponCode      string               `json:"coupon_code" binding:"required"`
}

type CreateOrderRequest struct {
	PlanSlug        string               `json:"plan_slug" binding:"required"`
	BillingInterval plan.BillingInterval `json:"billing_interval" binding:"required"`
	CouponCode      string               `json:"coupon_code"`
}

// VerifyPaymentRequest carries the three identifiers the gateway hands to
// its success callback.
type VerifyPaymentRequest struct {
	RazorpayOrderID   string `json:"razorpay_order_id" binding:"required"`
	RazorpayPaymentID string `json:"razorpay_payment_id" binding:"required"`
	RazorpaySignature string `json:"razorpay_signature" binding:"required"`
}
