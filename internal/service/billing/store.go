// internal/service/billing/store.go
package billing

import (
	"context"
	"time"

	"settings-service/internal/domain/plan"
	"settings-service/internal/domain/subscription"
)

// State is a checkout session's position in the payment flow.
type State string

const (
	StateIdle               State = "idle"
	StateOrderCreated       State = "order_created"
	StateSDKReady           State = "sdk_ready"
	StateCheckoutOpen       State = "checkout_open"
	StateVerified           State = "verified"
	StateVerificationFailed State = "verification_failed"
	StateCancelled          State = "cancelled"
)

// Selection is the account's current plan/interval/coupon choice. A coupon
// preview and its error belong to the exact (plan, interval, code) triple
// that produced them and are cleared whenever any element changes.
type Selection struct {
	AccountID       int64                       `json:"account_id"`
	PlanSlug        string                      `json:"plan_slug"`
	BillingInterval plan.BillingInterval        `json:"billing_interval"`
	CouponCode      string                      `json:"coupon_code"`
	Preview         *subscription.CouponPreview `json:"preview,omitempty"`
	CouponError     string                      `json:"coupon_error,omitempty"`
	UpdatedAt       time.Time                   `json:"updated_at"`
}

// Session is one in-flight checkout. At most one exists per account.
type Session struct {
	AccountID       int64                `json:"account_id"`
	State           State                `json:"state"`
	PlanSlug        string               `json:"plan_slug"`
	BillingInterval plan.BillingInterval `json:"billing_interval"`
	CouponCode      string               `json:"coupon_code,omitempty"`
	CouponID        int64                `json:"coupon_id,omitempty"`
	OrderID         string               `json:"order_id"`
	Receipt         string               `json:"receipt"`
	BaseAmount      float64              `json:"base_amount"`
	DiscountAmount  float64              `json:"discount_amount"`
	FinalAmount     float64              `json:"final_amount"`
	GSTPercent      float64              `json:"gst_percent,omitempty"`
	GSTAmount       float64              `json:"gst_amount,omitempty"`
	GrossAmount     float64              `json:"gross_amount"`
	Currency        string               `json:"currency"`
	CreatedAt       time.Time            `json:"created_at"`
}

// StateStore persists selections and checkout sessions across requests.
// Missing entries are reported as xerrors.ErrNotFound.
type StateStore interface {
	GetSelection(ctx context.Context, accountID int64) (*Selection, error)
	PutSelection(ctx context.Context, sel *Selection) error

	GetSession(ctx context.Context, accountID int64) (*Session, error)
	PutSession(ctx context.Context, sess *Session) error
	DeleteSession(ctx context.Context, accountID int64) error
}
