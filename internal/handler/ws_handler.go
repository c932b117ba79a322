package handler

import (
	"deposito-pos/internal/middleware"
	"deposito-pos/internal/session"
	"deposito-pos/internal/ws"

	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
)

// RequireUpgrade rejects plain HTTP requests on the websocket route.
func RequireUpgrade(c *fiber.Ctx) error {
	if websocket.IsWebSocketUpgrade(c) {
		return c.Next()
	}
	return c.SendStatus(fiber.StatusUpgradeRequired)
}

// Live registers an authenticated connection with the hub and keeps it
// open until the client goes away. Locals set by the auth middleware are
// still readable on the upgraded connection.
func Live(hub *ws.Hub) fiber.Handler {
	return websocket.New(func(c *websocket.Conn) {
		client := &ws.Client{Conn: c}
		if sess, ok := c.Locals(middleware.LocalSession).(session.Session); ok {
			client.AccountID = sess.AccountID
			client.Name = sess.Name
		}

		hub.Register(client)
		defer hub.Unregister(c)

		for {
			// Keep alive loop
			if _, _, err := c.ReadMessage(); err != nil {
				break
			}
		}
	})
}
