package server

import (
	"encoding/json"
	"errors"

	"breakroom/internal/models"
	"breakroom/internal/notifications"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
)

// WebsocketHandler upgrades the connection and attaches it to the feed hub.
// AuthRequired already ran, so userID is present in locals. The token is
// accepted as a ?token= query parameter because browsers cannot set the
// Authorization header on upgrade requests.
func (s *Server) WebsocketHandler() fiber.Handler {
	upgrade := websocket.New(func(conn *websocket.Conn) {
		userID, _ := conn.Locals("userID").(uint)

		client, err := s.hub.Register(userID, conn)
		if err != nil {
			msg, _ := json.Marshal(fiber.Map{"type": "error", "payload": err.Error()})
			_ = conn.WriteMessage(websocket.TextMessage, msg)
			_ = conn.Close()
			return
		}

		greeting, _ := json.Marshal(notifications.FeedEvent{
			Type:    "connected",
			Payload: fiber.Map{"user_id": userID},
		})
		client.TrySend(greeting)

		go client.WritePump()
		client.ReadPump()
	})

	return func(c *fiber.Ctx) error {
		if s.hub == nil {
			return models.RespondWithError(c, fiber.StatusServiceUnavailable,
				models.NewInternalError(errors.New("feed events unavailable")))
		}
		if !websocket.IsWebSocketUpgrade(c) {
			return models.RespondWithError(c, fiber.StatusUpgradeRequired,
				models.NewValidationError("Websocket upgrade required"))
		}
		return upgrade(c)
	}
}
