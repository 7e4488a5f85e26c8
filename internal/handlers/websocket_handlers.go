package handlers

import (
	"log/slog"
	"net/http"

	"board/internal/websocket"

	ws "github.com/gorilla/websocket"
)

// HandleWebSocket upgrades an authenticated request into a moderation feed
// subscription. Browsers pass the token as ?token= since they cannot set headers.
func (s *Server) HandleWebSocket() http.HandlerFunc {
	upgrader := ws.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin: func(r *http.Request) bool {
			origin := r.Header.Get("Origin")
			return origin == "" || s.CORS.AllowsOrigin(origin)
		},
	}

	return func(w http.ResponseWriter, r *http.Request) {
		user := actingUser(r)

		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			// Upgrade has already written the HTTP error
			slog.Warn("WebSocket upgrade failed", "user", user.ID, "error", err)
			return
		}

		client := websocket.NewClient(s.Hub, conn, user)
		select {
		case client.Hub.Register <- client:
		case <-r.Context().Done():
			conn.Close()
			return
		}
		slog.Info("WebSocket client registered", "user", user.ID, "role", user.Role)

		go client.WritePump()
		go client.ReadPump()
	}
}
