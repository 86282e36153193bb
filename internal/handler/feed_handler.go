package handler

import (
	"strings"

	"cognimed-be/internal/pkg/logger"
	"cognimed-be/internal/pkg/serverutils"
	internalWS "cognimed-be/internal/websocket"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
)

const feedHandlerModule = "FeedHandler"

type FeedHandler struct {
	hub    *internalWS.Hub
	logger logger.ILogger
}

func NewFeedHandler(hub *internalWS.Hub, log logger.ILogger) *FeedHandler {
	return &FeedHandler{hub: hub, logger: log}
}

func (h *FeedHandler) RegisterRoutes(r fiber.Router) {
	r.Get("/ws/feed", h.ServeWs)
}

// ServeWs authenticates the handshake and streams feed frames to the peer.
// Browsers pass the token as ?token=, other clients may use the header.
func (h *FeedHandler) ServeWs(c *fiber.Ctx) error {
	tokenStr := c.Query("token")
	if tokenStr == "" {
		authHeader := c.Get("Authorization")
		if len(authHeader) > 7 && strings.EqualFold(authHeader[:7], "Bearer ") {
			tokenStr = authHeader[7:]
		}
	}
	if tokenStr == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": "Missing token (query 'token' or header 'Authorization')"})
	}

	actor, err := serverutils.ParseToken(tokenStr)
	if err != nil {
		h.logger.Warn(feedHandlerModule, "Invalid token in websocket handshake", map[string]interface{}{"error": err})
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": "Invalid token"})
	}

	if !websocket.IsWebSocketUpgrade(c) {
		return fiber.ErrUpgradeRequired
	}

	return websocket.New(func(conn *websocket.Conn) {
		h.logger.Info(feedHandlerModule, "Feed session started", map[string]interface{}{"actor": actor.Username})
		internalWS.ServeWs(h.hub, conn, actor.Id)
		h.logger.Info(feedHandlerModule, "Feed session ended", map[string]interface{}{"actor": actor.Username})
	})(c)
}
