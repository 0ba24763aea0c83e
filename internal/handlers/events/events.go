// internal/handlers/events/events.go
package events

import (
	"net/http"

	"settings-service/internal/middleware"
	"settings-service/internal/pkg/response"
	"settings-service/internal/ws"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type EventsHandler struct {
	hub    *ws.Hub
	logger *zap.Logger
}

func NewEventsHandler(hub *ws.Hub, logger *zap.Logger) *EventsHandler {
	return &EventsHandler{hub: hub, logger: logger}
}

// HandleConnection upgrades an authenticated request to a websocket that
// receives billing and settings events for the account.
func (h *EventsHandler) HandleConnection(c *gin.Context) {
	accountID, ok := middleware.GetAccountID(c)
	if !ok {
		response.Error(c, http.StatusUnauthorized, "authentication required", nil)
		return
	}

	if err := h.hub.Serve(c.Writer, c.Request, accountID); err != nil {
		h.logger.Warn("websocket upgrade failed", zap.Error(err))
	}
}
