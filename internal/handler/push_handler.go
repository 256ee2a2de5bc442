package handler

import (
	"strings"

	"school-concierge-be/internal/pkg/logger"
	internalWS "school-concierge-be/internal/websocket"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
)

// PushHandler upgrades visitor connections for real-time delivery of human
// replies. Visitors are anonymous; the session id is the only credential,
// the same way it is for the REST endpoints.
type PushHandler struct {
	hub    *internalWS.Hub
	logger logger.ILogger
}

func NewPushHandler(hub *internalWS.Hub, log logger.ILogger) *PushHandler {
	return &PushHandler{
		hub:    hub,
		logger: log,
	}
}

// ServeWs handles websocket requests from the peer.
func (h *PushHandler) ServeWs(c *fiber.Ctx) error {
	sessionID := strings.TrimSpace(c.Query("session_id"))
	if sessionID == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Missing session_id"})
	}

	if websocket.IsWebSocketUpgrade(c) {
		return websocket.New(func(conn *websocket.Conn) {
			h.logger.Info("PushHandler", "Starting WebSocket session", map[string]interface{}{"session_id": sessionID})
			internalWS.ServeWs(h.hub, conn, sessionID)
			h.logger.Info("PushHandler", "WebSocket session ended", map[string]interface{}{"session_id": sessionID})
		})(c)
	}
	return fiber.ErrUpgradeRequired
}

// RegisterRoutes registers the push routes.
func (h *PushHandler) RegisterRoutes(router fiber.Router) {
	router.Get("/ws", h.ServeWs)
}
