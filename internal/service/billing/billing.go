// internal/service/billing/billing.go
package billing

import (
	"context"

	"settings-service/internal/domain/account"
	"settings-service/internal/domain/coupon"
	"settings-service/internal/domain/plan"
	"settings-service/internal/domain/subscription"
	"settings-service/internal/gateway/razorpay"
	xerrors "settings-service/internal/pkg/errors"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
)

// PlanCatalog is the read-only plan source.
type PlanCatalog interface {
	List(ctx context.Context) ([]plan.Plan, error)
	FindBySlug(ctx context.Context, slug string) (*plan.Plan, error)
}

// TxRunner runs a multi-step write inside one database transaction.
type TxRunner interface {
	RunInTx(ctx context.Context, fn func(tx pgx.Tx) error) error
}

// SubscriptionStore reads and replaces the account's current subscription.
// Writes take a caller-owned transaction so a replace and its coupon
// redemption commit together.
type SubscriptionStore interface {
	FindCurrentByAccount(ctx context.Context, accountID int64) (*subscription.Subscription, error)
	CreateWithTx(ctx context.Context, tx pgx.Tx, sub *subscription.Subscription) error
	UpdateWithTx(ctx context.Context, tx pgx.Tx, sub *subscription.Subscription) error
}

// CouponStore resolves coupon codes.
type CouponStore interface {
	FindByCode(ctx context.Context, code string) (*coupon.Coupon, error)
	IncrementUsesWithTx(ctx context.Context, tx pgx.Tx, id int64) error
}

// AccountStore supplies actor prefill info, best-effort.
type AccountStore interface {
	FindByID(ctx context.Context, id int64) (*account.Account, error)
}

// Gateway is the payment provider: order creation, signature checks and
// checkout option construction.
type Gateway interface {
	Acquire(ctx context.Context) error
	CreateOrder(ctx context.Context, req *razorpay.OrderRequest) (*razorpay.OrderResponse, error)
	VerifySignature(orderID, paymentID, signature string) bool
	BuildCheckoutOptions(order *razorpay.OrderResponse, description string, notes map[string]string, prefill razorpay.Prefill) *razorpay.CheckoutOptions
}

// RateLimiter throttles coupon preview attempts per account.
type RateLimiter interface {
	Allow(ctx context.Context, accountID int64) (bool, error)
}

// EventPublisher pushes billing events to connected admin UIs.
type EventPublisher interface {
	Broadcast(accountID int64, eventType string, data any)
}

type Service struct {
	plans         PlanCatalog
	subscriptions SubscriptionStore
	coupons       CouponStore
	accounts      AccountStore
	gateway       Gateway
	db            TxRunner
	store         StateStore
	limiter       RateLimiter
	events        EventPublisher
	gstPercent    float64
	logger        *zap.Logger
}

func NewService(
	plans PlanCatalog,
	subscriptions SubscriptionStore,
	coupons CouponStore,
	accounts AccountStore,
	gateway Gateway,
	db TxRunner,
	store StateStore,
	limiter RateLimiter,
	events EventPublisher,
	gstPercent float64,
	logger *zap.Logger,
) *Service {
	return &Service{
		plans:         plans,
		subscriptions: subscriptions,
		coupons:       coupons,
		accounts:      accounts,
		gateway:       gateway,
		db:            db,
		store:         store,
		limiter:       limiter,
		events:        events,
		gstPercent:    gstPercent,
		logger:        logger,
	}
}

// requireBillingRole is the typed precondition check run before any remote
// call: the wrong actor role is refused without touching the network.
func requireBillingRole(role account.Role) error {
	if !role.CanManageBilling() {
		return xerrors.ErrForbidden
	}
	return nil
}

func (s *Service) publish(accountID int64, eventType string, data any) {
	if s.events != nil {
		s.events.Broadcast(accountID, eventType, data)
	}
}

// replaceSubscription writes the subscription row and, when a coupon was
// applied, its redemption in one transaction so neither lands without the
// other.
func (s *Service) replaceSubscription(ctx context.Context, sub *subscription.Subscription, couponID int64) error {
	return s.db.RunInTx(ctx, func(tx pgx.Tx) error {
		var err error
		if sub.ID == 0 {
			err = s.subscriptions.CreateWithTx(ctx, tx, sub)
		} else {
			err = s.subscriptions.UpdateWithTx(ctx, tx, sub)
		}
		if err != nil {
			return err
		}
		if couponID != 0 {
			return s.coupons.IncrementUsesWithTx(ctx, tx, couponID)
		}
		return nil
	})
}
