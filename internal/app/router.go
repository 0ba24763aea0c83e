// internal/app/router.go
package app

import (
	"settings-service/internal/domain/account"
	authHandler "settings-service/internal/handlers/auth"
	billingHandler "settings-service/internal/handlers/billing"
	eventsHandler "settings-service/internal/handlers/events"
	plansHandler "settings-service/internal/handlers/plans"
	settingsHandler "settings-service/internal/handlers/settings"
	"settings-service/internal/middleware"

	"github.com/gin-gonic/gin"
)

type Handlers struct {
	AuthHandler     *authHandler.AuthHandler
	PlanHandler     *plansHandler.PlanHandler
	BillingHandler  *billingHandler.BillingHandler
	SettingsHandler *settingsHandler.SettingsHandler
	EventsHandler   *eventsHandler.EventsHandler
	AuthMiddleware  *middleware.AuthMiddleware
}

func SetupRouter(r *gin.Engine, h *Handlers) {
	api := r.Group("/api/v1")

	// ==================== Health Check ====================
	api.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok", "version": "1.0.0"})
	})

	// ==================== WebSocket ====================
	r.GET("/ws", h.AuthMiddleware.Auth(), h.EventsHandler.HandleConnection)

	// ==================== Auth ====================
	auth := api.Group("/auth")
	{
		auth.POST("/login", h.AuthHandler.Login)
		auth.GET("/me", h.AuthMiddleware.Auth(), h.AuthHandler.GetMe)
	}

	// ==================== Plans ====================
	plans := api.Group("/plans")
	plans.Use(h.AuthMiddleware.Auth())
	{
		plans.GET("", h.PlanHandler.ListPlans)
		plans.GET("/:slug", h.PlanHandler.GetPlan)
	}

	// ==================== Subscription & Checkout ====================
	subscription := api.Group("/subscription")
	subscription.Use(h.AuthMiddleware.Auth())
	{
		subscription.GET("", h.BillingHandler.GetSubscription)
		subscription.PUT("/plan", h.BillingHandler.ChangePlan)

		subscription.GET("/selection", h.BillingHandler.GetSelection)
		subscription.PUT("/selection", h.BillingHandler.UpdateSelection)
		subscription.POST("/coupon/preview", h.BillingHandler.PreviewCoupon)

		subscription.POST("/checkout", h.BillingHandler.StartCheckout)
		subscription.POST("/checkout/verify", h.BillingHandler.VerifyPayment)
		subscription.POST("/checkout/cancel", h.BillingHandler.CancelCheckout)
	}

	// ==================== Settings Panels ====================
	// Reads are open to every authenticated account; writes need a
	// management role, same as billing actions.
	manageRole := h.AuthMiddleware.RequireRole(account.RoleAdmin, account.RoleOwner)

	settings := api.Group("/settings")
	settings.Use(h.AuthMiddleware.Auth())
	{
		settings.GET("/:kind", h.SettingsHandler.GetSettings)
		settings.PUT("/:kind", manageRole, h.SettingsHandler.SaveSettings)
	}
}
