// internal/handlers/billing/billing.go
package billing

import (
	"net/http"

	"settings-service/internal/domain/subscription"
	"settings-service/internal/middleware"
	"settings-service/internal/pkg/response"
	"settings-service/internal/service/billing"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type BillingHandler struct {
	billingService *billing.Service
	logger         *zap.Logger
}

func NewBillingHandler(billingService *billing.Service, logger *zap.Logger) *BillingHandler {
	return &BillingHandler{billingService: billingService, logger: logger}
}

// GetSubscription returns the account's current subscription.
func (h *BillingHandler) GetSubscription(c *gin.Context) {
	accountID := middleware.MustGetAccountID(c)

	sub, err := h.billingService.GetCurrentSubscription(c.Request.Context(), accountID)
	if err != nil {
		response.FromError(c, err, "failed to load subscription")
		return
	}

	response.Success(c, http.StatusOK, "subscription retrieved", sub)
}

// ChangePlan replaces the current subscription with a new plan/interval.
func (h *BillingHandler) ChangePlan(c *gin.Context) {
	accountID := middleware.MustGetAccountID(c)
	role, _ := middleware.GetRole(c)

	var req subscription.ChangePlanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ValidationError(c, "invalid change plan request", err)
		return
	}

	sub, err := h.billingService.ChangePlan(c.Request.Context(), accountID, role, &req)
	if err != nil {
		response.FromError(c, err, "failed to change plan")
		return
	}

	response.Success(c, http.StatusOK, "plan changed", sub)
}

// GetSelection returns the stored plan/interval/coupon selection.
func (h *BillingHandler) GetSelection(c *gin.Context) {
	accountID := middleware.MustGetAccountID(c)

	sel, err := h.billingService.GetSelection(c.Request.Context(), accountID)
	if err != nil {
		response.FromError(c, err, "failed to load selection")
		return
	}

	response.Success(c, http.StatusOK, "selection retrieved", sel)
}

// UpdateSelection records a plan/interval/coupon choice.
func (h *BillingHandler) UpdateSelection(c *gin.Context) {
	accountID := middleware.MustGetAccountID(c)
	role, _ := middleware.GetRole(c)

	var req subscription.SelectionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ValidationError(c, "invalid selection request", err)
		return
	}

	sel, err := h.billingService.UpdateSelection(c.Request.Context(), accountID, role, &req)
	if err != nil {
		response.FromError(c, err, "failed to update selection")
		return
	}

	response.Success(c, http.StatusOK, "selection updated", sel)
}

// PreviewCoupon quotes a coupon against the selected plan and interval.
func (h *BillingHandler) PreviewCoupon(c *gin.Context) {
	accountID := middleware.MustGetAccountID(c)
	role, _ := middleware.GetRole(c)

	var req subscription.PreviewCouponRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ValidationError(c, "invalid coupon preview request", err)
		return
	}

	preview, err := h.billingService.PreviewCoupon(c.Request.Context(), accountID, role, &req)
	if err != nil {
		response.FromError(c, err, "failed to preview coupon")
		return
	}

	response.Success(c, http.StatusOK, "coupon previewed", preview)
}

// StartCheckout creates a payment order and returns the checkout options.
func (h *BillingHandler) StartCheckout(c *gin.Context) {
	accountID := middleware.MustGetAccountID(c)
	role, _ := middleware.GetRole(c)

	var req subscription.CreateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ValidationError(c, "invalid checkout request", err)
		return
	}

	intent, err := h.billingService.StartCheckout(c.Request.Context(), accountID, role, &req)
	if err != nil {
		response.FromError(c, err, "failed to start checkout")
		return
	}

	response.Success(c, http.StatusCreated, "checkout started", intent)
}

// VerifyPayment handles the gateway's success callback.
func (h *BillingHandler) VerifyPayment(c *gin.Context) {
	accountID := middleware.MustGetAccountID(c)
	role, _ := middleware.GetRole(c)

	var req subscription.VerifyPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ValidationError(c, "invalid verification request", err)
		return
	}

	sub, err := h.billingService.VerifyPayment(c.Request.Context(), accountID, role, &req)
	if err != nil {
		response.FromError(c, err, "payment verification failed")
		return
	}

	response.Success(c, http.StatusOK, "payment verified", sub)
}

// CancelCheckout handles the gateway's dismiss callback.
func (h *BillingHandler) CancelCheckout(c *gin.Context) {
	accountID := middleware.MustGetAccountID(c)

	if err := h.billingService.CancelCheckout(c.Request.Context(), accountID); err != nil {
		response.FromError(c, err, "failed to cancel checkout")
		return
	}

	response.Success(c, http.StatusOK, "checkout cancelled", nil)
}
