// Package server contains HTTP and WebSocket handlers for the application's API endpoints.
package server

import (
	"log"

	"samplepedia/internal/featureflags"
	"samplepedia/internal/middleware"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
)

// NotificationStreamHandler upgrades GET /api/ws/notifications into the live
// notification stream. The stream is one-way: the hub pushes, the client's
// reads only service pings and disconnects.
func (s *Server) NotificationStreamHandler() fiber.Handler {
	return websocket.New(func(conn *websocket.Conn) {
		middleware.ActiveWebSockets.Inc()
		defer middleware.ActiveWebSockets.Dec()

		userIDVal := conn.Locals("userID")
		if userIDVal == nil {
			_ = conn.WriteMessage(websocket.TextMessage, []byte(`{"error":"unauthorized"}`))
			_ = conn.Close()
			return
		}
		uid, ok := userIDVal.(uint)
		if !ok {
			_ = conn.Close()
			return
		}

		if s.hub == nil {
			_ = conn.Close()
			return
		}

		if !s.featureFlags.Enabled(featureflags.LiveNotifications, uid) {
			_ = conn.WriteMessage(websocket.TextMessage, []byte(`{"error":"live notifications disabled"}`))
			_ = conn.Close()
			return
		}

		// Register connection with scaling guardrails
		client, err := s.hub.Register(uid, conn)
		if err != nil {
			log.Printf("WebSocket Notification: Failed to register user %d: %v", uid, err)
			_ = conn.WriteMessage(websocket.TextMessage, []byte(`{"error":"`+err.Error()+`"}`))
			_ = conn.Close()
			return
		}

		defer s.hub.UnregisterClient(client)

		// Start pumps
		go client.WritePump()
		client.ReadPump()
	})
}
