// internal/handlers/settings/settings.go
package settings

import (
	"net/http"
	"strconv"

	settingsdomain "settings-service/internal/domain/settings"
	"settings-service/internal/middleware"
	"settings-service/internal/pkg/response"
	"settings-service/internal/service/settings"

	"github.com/gin-gonic/gin"
)

type SettingsHandler struct {
	settingsService *settings.Service
}

func NewSettingsHandler(settingsService *settings.Service) *SettingsHandler {
	return &SettingsHandler{settingsService: settingsService}
}

// GetSettings reads a panel, optionally scoped to a building via the
// building_id query parameter.
func (h *SettingsHandler) GetSettings(c *gin.Context) {
	accountID := middleware.MustGetAccountID(c)
	kind := settingsdomain.Kind(c.Param("kind"))

	buildingID, ok := parseBuildingID(c)
	if !ok {
		response.Error(c, http.StatusBadRequest, "invalid building_id", nil)
		return
	}

	view, err := h.settingsService.Get(c.Request.Context(), accountID, kind, buildingID)
	if err != nil {
		response.FromError(c, err, "failed to load settings")
		return
	}

	response.Success(c, http.StatusOK, "settings retrieved", view)
}

// SaveSettings writes a panel for the requested scope.
func (h *SettingsHandler) SaveSettings(c *gin.Context) {
	accountID := middleware.MustGetAccountID(c)
	kind := settingsdomain.Kind(c.Param("kind"))

	var req settingsdomain.SaveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ValidationError(c, "invalid settings payload", err)
		return
	}

	rec, err := h.settingsService.Save(c.Request.Context(), accountID, kind, &req)
	if err != nil {
		response.FromError(c, err, "failed to save settings")
		return
	}

	response.Success(c, http.StatusOK, "settings saved", rec)
}

func parseBuildingID(c *gin.Context) (*int64, bool) {
	raw := c.Query("building_id")
	if raw == "" {
		return nil, true
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id < 1 {
		return nil, false
	}
	return &id, true
}
