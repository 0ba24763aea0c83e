// internal/repository/postgres/coupon_repo.go
package postgres

import (
	"context"
	"errors"
	"fmt"

	"settings-service/internal/domain/coupon"
	xerrors "settings-service/internal/pkg/errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/lib/pq"
)

type CouponRepository struct {
	db *pgxpool.Pool
}

func NewCouponRepository(db *pgxpool.Pool) *CouponRepository {
	return &CouponRepository{db: db}
}

// FindByCode retrieves a coupon by its code, case-insensitively.
func (r *CouponRepository) FindByCode(ctx context.Context, code string) (*coupon.Coupon, error) {
	query := `
		SELECT id, code, discount_type, discount_value, max_discount,
		       applicable_plans, starts_at, ends_at, max_uses, current_uses,
		       active, created_at, updated_at
		FROM coupons
		WHERE UPPER(code) = UPPER($1)
	`

	var c coupon.Coupon
	var discountType string
	var plans []string

	err := r.db.QueryRow(ctx, query, code).Scan(
		&c.ID, &c.Code, &discountType, &c.DiscountValue, &c.MaxDiscount,
		pq.Array(&plans), &c.StartsAt, &c.EndsAt, &c.MaxUses, &c.CurrentUses,
		&c.Active, &c.CreatedAt, &c.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, xerrors.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find coupon: %w", err)
	}

	c.DiscountType = coupon.DiscountType(discountType)
	c.ApplicablePlans = plans
	return &c, nil
}

// IncrementUsesWithTx bumps the redemption counter inside a caller-owned
// transaction, alongside the subscription write that redeemed the coupon.
func (r *CouponRepository) IncrementUsesWithTx(ctx context.Context, tx pgx.Tx, id int64) error {
	tag, err := tx.Exec(ctx, `UPDATE coupons SET current_uses = current_uses + 1, updated_at = NOW() WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to increment coupon uses: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return xerrors.ErrNotFound
	}
	return nil
}
