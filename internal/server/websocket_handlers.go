package server

import (
	"encoding/json"
	"log/slog"

	"hearth/internal/middleware"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
)

// WebsocketHandler upgrades GET /api/ws and streams the caller's notification events.
// Must be placed after WebSocketAuthRequired.
func (s *Server) WebsocketHandler() fiber.Handler {
	upgrade := websocket.New(func(conn *websocket.Conn) {
		userID, _ := conn.Locals("userID").(string)
		if userID == "" {
			_ = conn.Close()
			return
		}

		client, err := s.hub.Register(userID, conn)
		if err != nil {
			middleware.Logger.Warn("websocket registration rejected",
				slog.String("user_id", userID), slog.String("error", err.Error()))
			_ = conn.WriteMessage(websocket.TextMessage, errorFrame(err))
			_ = conn.Close()
			return
		}

		go client.WritePump()
		client.ReadPump()
	})

	return func(c *fiber.Ctx) error {
		if !websocket.IsWebSocketUpgrade(c) {
			return fiber.ErrUpgradeRequired
		}
		return upgrade(c)
	}
}

// errorFrame is the JSON text frame sent before closing a rejected connection.
func errorFrame(err error) []byte {
	b, mErr := json.Marshal(fiber.Map{"error": err.Error()})
	if mErr != nil {
		return []byte(`{"error":"connection rejected"}`)
	}
	return b
}
