// internal/repository/postgres/plan_repo.go
package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"settings-service/internal/domain/plan"
	xerrors "settings-service/internal/pkg/errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/lib/pq"
)

// PlanRepository reads the plan catalog. The catalog is seeded and mutated
// by backoffice tooling only; the service never writes it.
type PlanRepository struct {
	db *pgxpool.Pool
}

func NewPlanRepository(db *pgxpool.Pool) *PlanRepository {
	return &PlanRepository{db: db}
}

const planColumns = `
	id, slug, name, currency, prices, price_monthly, price_yearly,
	limits, available_intervals, recommended, created_at, updated_at
`

func scanPlan(row pgx.Row) (*plan.Plan, error) {
	var p plan.Plan
	var pricesJSON, limitsJSON []byte
	var priceMonthly, priceYearly sql.NullFloat64
	var intervals []string

	err := row.Scan(
		&p.ID, &p.Slug, &p.Name, &p.Currency, &pricesJSON, &priceMonthly, &priceYearly,
		&limitsJSON, pq.Array(&intervals), &p.Recommended, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if len(pricesJSON) > 0 {
		if err := json.Unmarshal(pricesJSON, &p.Prices); err != nil {
			return nil, fmt.Errorf("failed to unmarshal prices: %w", err)
		}
	}
	if len(limitsJSON) > 0 {
		if err := json.Unmarshal(limitsJSON, &p.Limits); err != nil {
			return nil, fmt.Errorf("failed to unmarshal limits: %w", err)
		}
	}
	if priceMonthly.Valid {
		v := priceMonthly.Float64
		p.PriceMonthly = &v
	}
	if priceYearly.Valid {
		v := priceYearly.Float64
		p.PriceYearly = &v
	}
	for _, iv := range intervals {
		p.AvailableIntervals = append(p.AvailableIntervals, plan.BillingInterval(iv))
	}

	return &p, nil
}

// List retrieves the full catalog ordered by monthly price.
func (r *PlanRepository) List(ctx context.Context) ([]plan.Plan, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM plans
		ORDER BY COALESCE(price_monthly, 0) ASC, slug ASC
	`, planColumns)

	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list plans: %w", err)
	}
	defer rows.Close()

	plans := []plan.Plan{}
	for rows.Next() {
		p, err := scanPlan(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan plan: %w", err)
		}
		plans = append(plans, *p)
	}

	return plans, rows.Err()
}

// FindBySlug retrieves a single plan.
func (r *PlanRepository) FindBySlug(ctx context.Context, slug string) (*plan.Plan, error) {
	query := fmt.Sprintf(`SELECT %s FROM plans WHERE slug = $1`, planColumns)

	p, err := scanPlan(r.db.QueryRow(ctx, query, slug))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, xerrors.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find plan: %w", err)
	}
	return p, nil
}
