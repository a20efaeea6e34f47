package realtime

import (
	"log/slog"
	"net/http"

	ws "github.com/coder/websocket"

	"github.com/forttask/forttask/internal/auth"
)

// ServeWS returns an HTTP handler that upgrades connections to WebSocket
// and runs them against the hub. It expects a verified identity in the
// request context, placed there by the session middleware, so every
// connection is bound to a household before any join is processed.
func ServeWS(hub *Hub, logger *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		identity, ok := auth.FromContext(r.Context())
		if !ok {
			http.Error(w, "Unauthorized", http.StatusUnauthorized)
			return
		}

		conn, err := ws.Accept(w, r, &ws.AcceptOptions{
			InsecureSkipVerify: true, // Same-origin enforcement happens at the session layer
		})
		if err != nil {
			logger.Warn("websocket accept", "error", err)
			return
		}

		client := NewClient(hub, conn, identity)
		client.Run(r.Context())
	}
}
