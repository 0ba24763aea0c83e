// internal/middleware/helpers.go
package middleware

import (
	"settings-service/internal/domain/account"

	"github.com/gin-gonic/gin"
)

// GetAccountID gets the authenticated account id from context.
func GetAccountID(c *gin.Context) (int64, bool) {
	v, exists := c.Get("account_id")
	if !exists {
		return 0, false
	}
	id, ok := v.(int64)
	return id, ok
}

// MustGetAccountID gets the account id or panics; for handlers behind Auth().
func MustGetAccountID(c *gin.Context) int64 {
	id, exists := GetAccountID(c)
	if !exists {
		panic("account_id not found in context")
	}
	return id
}

// GetRole gets the authenticated account's role from context.
func GetRole(c *gin.Context) (account.Role, bool) {
	v, exists := c.Get("role")
	if !exists {
		return "", false
	}
	role, ok := v.(account.Role)
	return role, ok
}
