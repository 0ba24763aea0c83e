// internal/domain/coupon/entity.go
package coupon

import (
	"database/sql"
	"time"
)

type DiscountType string

const (
	DiscountPercentage DiscountType = "percentage"
	DiscountFixed      DiscountType = "fixed_amount"
)

// Coupon is a redeemable discount code. ApplicablePlans empty means the
// code applies to every plan.
type Coupon struct {
	ID              int64           `json:"id" db:"id"`
	Code            string          `json:"code" db:"code"`
	DiscountType    DiscountType    `json:"discount_type" db:"discount_type"`
	DiscountValue   float64         `json:"discount_value" db:"discount_value"`
	MaxDiscount     sql.NullFloat64 `json:"max_discount,omitempty" db:"max_discount"`
	ApplicablePlans []string        `json:"applicable_plans,omitempty" db:"applicable_plans"`
	StartsAt        time.Time       `json:"starts_at" db:"starts_at"`
	EndsAt          time.Time       `json:"ends_at" db:"ends_at"`
	MaxUses         sql.NullInt32   `json:"max_uses,omitempty" db:"max_uses"`
	CurrentUses     int             `json:"current_uses" db:"current_uses"`
	Active          bool            `json:"active" db:"active"`
	CreatedAt       time.Time       `json:"created_at" db:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at" db:"updated_at"`
}

// AppliesTo reports whether the coupon may be used on the given plan slug.
func (c *Coupon) AppliesTo(planSlug string) bool {
	if len(c.ApplicablePlans) == 0 {
		return true
	}
	for _, slug := range c.ApplicablePlans {
		if slug == planSlug {
			return true
		}
	}
	return false
}

// Usable reports whether the coupon is live at the given instant.
func (c *Coupon) Usable(now time.Time) bool {
	if !c.Active || now.Before(c.StartsAt) || now.After(c.EndsAt) {
		return false
	}
	if c.MaxUses.Valid && c.CurrentUses >= int(c.MaxUses.Int32) {
		return false
	}
	return true
}

// DiscountOn computes the discount the coupon grants on a base amount,
// capped at the base and at MaxDiscount for percentage codes.
func (c *Coupon) DiscountOn(base float64) float64 {
	var discount float64
	switch c.DiscountType {
	case DiscountPercentage:
		discount = base * (c.DiscountValue / 100)
		if c.MaxDiscount.Valid && discount > c.MaxDiscount.Float64 {
			discount = c.MaxDiscount.Float64
		}
	case DiscountFixed:
		discount = c.DiscountValue
	}
	if discount > base {
		discount = base
	}
	if discount < 0 {
		discount = 0
	}
	return discount
}
