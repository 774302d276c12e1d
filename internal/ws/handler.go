package ws

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
	"github.com/google/uuid"
)

// LocalSessionID is the fiber local carrying the session a subscriber watches.
const LocalSessionID = "ws_session_id"

func Handler(hub *Hub) fiber.Handler {
	return websocket.New(func(c *websocket.Conn) {
		sessionID, ok := c.Locals(LocalSessionID).(uuid.UUID)
		if !ok {
			_ = c.Close()
			return
		}

		client := &Client{
			hub:       hub,
			conn:      c,
			sessionID: sessionID,
			send:      make(chan []byte, 256),
		}

		hub.register <- client

		go client.WritePump()
		client.ReadPump()
	})
}

// UpgradeMiddleware rejects plain HTTP requests and stores the session id
// from the :id route param for Handler.
func UpgradeMiddleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if !websocket.IsWebSocketUpgrade(c) {
			return fiber.ErrUpgradeRequired
		}

		sessionID, err := uuid.Parse(c.Params("id"))
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "invalid session id")
		}

		c.Locals(LocalSessionID, sessionID)
		return c.Next()
	}
}
