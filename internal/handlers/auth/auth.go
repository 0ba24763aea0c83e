// internal/handlers/auth/auth.go
package auth

import (
	"net/http"

	"settings-service/internal/domain/account"
	"settings-service/internal/middleware"
	"settings-service/internal/pkg/response"
	"settings-service/internal/service/auth"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type AuthHandler struct {
	authService *auth.Service
	logger      *zap.Logger
}

func NewAuthHandler(authService *auth.Service, logger *zap.Logger) *AuthHandler {
	return &AuthHandler{authService: authService, logger: logger}
}

// Login authenticates an account and returns a bearer token.
func (h *AuthHandler) Login(c *gin.Context) {
	var req account.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ValidationError(c, "invalid login request", err)
		return
	}

	resp, err := h.authService.Login(c.Request.Context(), &req)
	if err != nil {
		response.FromError(c, err, "login failed")
		return
	}

	response.Success(c, http.StatusOK, "logged in", resp)
}

// GetMe returns the authenticated account.
func (h *AuthHandler) GetMe(c *gin.Context) {
	accountID := middleware.MustGetAccountID(c)

	acc, err := h.authService.GetAccount(c.Request.Context(), accountID)
	if err != nil {
		response.FromError(c, err, "failed to load account")
		return
	}

	response.Success(c, http.StatusOK, "account retrieved", acc)
}
