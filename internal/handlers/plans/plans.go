// internal/handlers/plans/plans.go
package plans

import (
	"net/http"

	"settings-service/internal/pkg/response"
	"settings-service/internal/service/plans"

	"github.com/gin-gonic/gin"
)

type PlanHandler struct {
	planService *plans.Service
}

func NewPlanHandler(planService *plans.Service) *PlanHandler {
	return &PlanHandler{planService: planService}
}

// ListPlans retrieves the catalog with derived display pricing.
func (h *PlanHandler) ListPlans(c *gin.Context) {
	result, err := h.planService.List(c.Request.Context())
	if err != nil {
		response.Error(c, http.StatusInternalServerError, "failed to list plans", err)
		return
	}

	response.Success(c, http.StatusOK, "plans retrieved", result)
}

// GetPlan retrieves a single plan by slug.
func (h *PlanHandler) GetPlan(c *gin.Context) {
	slug := c.Param("slug")
	if slug == "" {
		response.Error(c, http.StatusBadRequest, "plan slug is required", nil)
		return
	}

	view, err := h.planService.Get(c.Request.Context(), slug)
	if err != nil {
		response.FromError(c, err, "failed to load plan")
		return
	}

	response.Success(c, http.StatusOK, "plan retrieved", view)
}
