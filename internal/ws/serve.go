package ws

import (
	"net/http"

	"github.com/gorilla/websocket"

	"github.com/parleychat/parley/internal/auth"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// Handler authenticates and upgrades websocket connections. The token comes
// from the ?token query parameter and is verified before the upgrade: a
// missing, tampered, or expired token is rejected with 401 and causes no
// presence side effects.
func Handler(hub *Hub, svc *auth.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		token := r.URL.Query().Get("token")
		if token == "" {
			http.Error(w, "missing token", http.StatusUnauthorized)
			return
		}
		claims, err := svc.VerifyToken(token)
		if err != nil {
			http.Error(w, "invalid token", http.StatusUnauthorized)
			return
		}

		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			hub.log.Debug("upgrade failed", "error", err)
			return
		}

		client := newClient(hub, conn, claims.UserID, claims.Username)
		if !client.transition(StateConnecting, StateAuthenticated) {
			conn.Close()
			return
		}
		hub.register <- client

		go client.writePump()
		go client.readPump()
	}
}
