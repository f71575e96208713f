package events

import (
	"encoding/json"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true // OK for demo; restrict in production
	},
}

// WSHandler upgrades the request and subscribes the connection to the
// change feed until the peer hangs up.
func WSHandler(hub *Hub) gin.HandlerFunc {
	return func(c *gin.Context) {
		ws, err := upgrader.Upgrade(c.Writer, c.Request, nil)
		if err != nil {
			return
		}

		hub.AddWS(ws)
		log.Printf("[ws] subscriber connected: %s", ws.RemoteAddr())

		stats := hub.Stats()
		hello, _ := json.Marshal(map[string]any{
			"type":       "welcome",
			"transport":  "websocket",
			"ws_clients": stats.WSClients,
		})
		_ = ws.WriteMessage(websocket.TextMessage, hello)

		drain(ws)

		hub.RemoveWS(ws)
		log.Printf("[ws] subscriber disconnected: %s", ws.RemoteAddr())
	}
}

// drain consumes incoming frames so pings and close handshakes are
// processed; the feed itself is one-way.
func drain(ws *websocket.Conn) {
	for {
		if _, _, err := ws.ReadMessage(); err != nil {
			return
		}
	}
}
