// internal/domain/subscription/entity.go
package subscription

import (
	"database/sql"
	"time"

	"settings-service/internal/domain/plan"
)

type Status string

const (
	StatusActive   Status = "active"
	StatusTrialing Status = "trialing"
	StatusPastDue  Status = "past_due"
	StatusCanceled Status = "canceled"
	StatusUnknown  Status = "unknown"
)

// ParseStatus maps a stored status string onto the known set, defaulting
// to unknown rather than failing on values newer than this build.
func ParseStatus(s string) Status {
	switch Status(s) {
	case StatusActive, StatusTrialing, StatusPastDue, StatusCanceled:
		return Status(s)
	default:
		return StatusUnknown
	}
}

// AppliedCoupon records the coupon attached to a subscription at payment
// or plan-change time.
type AppliedCoupon struct {
	Code           string  `json:"code"`
	BaseAmount     float64 `json:"base_amount"`
	DiscountAmount float64 `json:"discount_amount"`
	FinalAmount    float64 `json:"final_amount"`
	Currency       string  `json:"currency"`
}

// Meta is the free-form block carried on a subscription: the applied
// coupon, the GST breakdown and gateway payment identifiers.
type Meta struct {
	AppliedCoupon *AppliedCoupon `json:"applied_coupon,omitempty"`
	GSTPercent    float64        `json:"gst_percent,omitempty"`
	GSTAmount     float64        `json:"gst_amount,omitempty"`
	GrossAmount   float64        `json:"gross_amount,omitempty"`
	OrderID       string         `json:"order_id,omitempty"`
	PaymentID     string         `json:"payment_id,omitempty"`
}

// Subscription is the one current subscription of an account. Absence of a
// row is a valid terminal state ("no current"), distinct from a load error.
type Subscription struct {
	ID                 int64                `json:"id" db:"id"`
	AccountID          int64                `json:"account_id" db:"account_id"`
	PlanSlug           string               `json:"plan_slug" db:"plan_slug"`
	Status             Status               `json:"status" db:"status"`
	BillingInterval    plan.BillingInterval `json:"billing_interval" db:"billing_interval"`
	CurrentPeriodStart time.Time            `json:"current_period_start" db:"current_period_start"`
	CurrentPeriodEnd   time.Time            `json:"current_period_end" db:"current_period_end"`
	TrialEnd           sql.NullTime         `json:"trial_end,omitempty" db:"trial_end"`
	Meta               *Meta                `json:"meta,omitempty" db:"meta"`
	CreatedAt          time.Time            `json:"created_at" db:"created_at"`
	UpdatedAt          time.Time            `json:"updated_at" db:"updated_at"`
}

// CouponPreview is an ephemeral quote of a coupon's effect on a plan and
// interval. It is valid only for the selection that produced it and is
// never written to postgres.
type CouponPreview struct {
	Coupon         AppliedCoupon `json:"coupon"`
	BaseAmount     float64       `json:"base_amount"`
	DiscountAmount float64       `json:"discount_amount"`
	FinalAmount    float64       `json:"final_amount"`
	GSTPercent     float64       `json:"gst_percent,omitempty"`
	GSTAmount      float64       `json:"gst_amount,omitempty"`
	GrossAmount    float64       `json:"gross_amount,omitempty"`
	Currency       string        `json:"currency"`
}
