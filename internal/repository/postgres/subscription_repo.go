// internal/repository/postgres/subscription_repo.go
package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"settings-service/internal/domain/subscription"
	xerrors "settings-service/internal/pkg/errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type SubscriptionRepository struct {
	db *pgxpool.Pool
}

func NewSubscriptionRepository(db *pgxpool.Pool) *SubscriptionRepository {
	return &SubscriptionRepository{db: db}
}

const subscriptionColumns = `
	id, account_id, plan_slug, status, billing_interval,
	current_period_start, current_period_end, trial_end, meta,
	created_at, updated_at
`

func scanSubscription(row pgx.Row) (*subscription.Subscription, error) {
	var sub subscription.Subscription
	var status string
	var metaJSON []byte

	err := row.Scan(
		&sub.ID, &sub.AccountID, &sub.PlanSlug, &status, &sub.BillingInterval,
		&sub.CurrentPeriodStart, &sub.CurrentPeriodEnd, &sub.TrialEnd, &metaJSON,
		&sub.CreatedAt, &sub.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	sub.Status = subscription.ParseStatus(status)
	if len(metaJSON) > 0 {
		if err := json.Unmarshal(metaJSON, &sub.Meta); err != nil {
			return nil, fmt.Errorf("failed to unmarshal meta: %w", err)
		}
	}
	return &sub, nil
}

// FindCurrentByAccount retrieves the account's current subscription.
// Absence is reported as ErrNotFound, a valid empty state.
func (r *SubscriptionRepository) FindCurrentByAccount(ctx context.Context, accountID int64) (*subscription.Subscription, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM subscriptions
		WHERE account_id = $1
		ORDER BY created_at DESC
		LIMIT 1
	`, subscriptionColumns)

	sub, err := scanSubscription(r.db.QueryRow(ctx, query, accountID))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, xerrors.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find subscription: %w", err)
	}
	return sub, nil
}

// CreateWithTx inserts a subscription row inside a caller-owned transaction.
func (r *SubscriptionRepository) CreateWithTx(ctx context.Context, tx pgx.Tx, sub *subscription.Subscription) error {
	query := `
		INSERT INTO subscriptions (
			account_id, plan_slug, status, billing_interval,
			current_period_start, current_period_end, trial_end, meta
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id, created_at, updated_at
	`

	metaJSON, err := marshalMeta(sub.Meta)
	if err != nil {
		return err
	}

	err = tx.QueryRow(
		ctx, query,
		sub.AccountID, sub.PlanSlug, string(sub.Status), string(sub.BillingInterval),
		sub.CurrentPeriodStart, sub.CurrentPeriodEnd, sub.TrialEnd, metaJSON,
	).Scan(&sub.ID, &sub.CreatedAt, &sub.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create subscription: %w", err)
	}
	return nil
}

// UpdateWithTx replaces the mutable fields of a subscription inside a
// caller-owned transaction.
func (r *SubscriptionRepository) UpdateWithTx(ctx context.Context, tx pgx.Tx, sub *subscription.Subscription) error {
	query := `
		UPDATE subscriptions
		SET plan_slug = $1, status = $2, billing_interval = $3,
		    current_period_start = $4, current_period_end = $5,
		    trial_end = $6, meta = $7, updated_at = $8
		WHERE id = $9
	`

	metaJSON, err := marshalMeta(sub.Meta)
	if err != nil {
		return err
	}

	tag, err := tx.Exec(
		ctx, query,
		sub.PlanSlug, string(sub.Status), string(sub.BillingInterval),
		sub.CurrentPeriodStart, sub.CurrentPeriodEnd, sub.TrialEnd, metaJSON,
		time.Now(), sub.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update subscription: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return xerrors.ErrNotFound
	}
	return nil
}

func marshalMeta(meta *subscription.Meta) ([]byte, error) {
	if meta == nil {
		return nil, nil
	}
	b, err := json.Marshal(meta)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal meta: %w", err)
	}
	return b, nil
}
