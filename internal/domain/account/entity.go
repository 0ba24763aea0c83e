// internal/domain/account/entity.go
package account

import (
	"database/sql"
	"time"
)

type Role string

const (
	RoleAdmin Role = "admin"
	RoleOwner Role = "owner"
	RoleStaff Role = "staff"
)

// CanManageBilling reports whether the role may change plans, preview
// coupons or start payments.
func (r Role) CanManageBilling() bool {
	return r == RoleAdmin || r == RoleOwner
}

// Account is an admin-panel user of the property-management workspace.
type Account struct {
	ID           int64          `json:"id" db:"id"`
	Email        string         `json:"email" db:"email"`
	PasswordHash string         `json:"-" db:"password_hash"`
	FullName     string         `json:"full_name" db:"full_name"`
	Phone        sql.NullString `json:"phone,omitempty" db:"phone"`
	Role         Role           `json:"role" db:"role"`
	Active       bool           `json:"active" db:"active"`
	CreatedAt    time.Time      `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at" db:"updated_at"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type LoginResponse struct {
	Token   string   `json:"token"`
	Account *Account `json:"account"`
}
