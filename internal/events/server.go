// Package events streams auth activity to connected admin dashboards over
// Socket.IO: login attempts as they are audited and security-configuration
// changes as they land.
package events

import (
	"log"
	"net/http"

	socketio "github.com/googollee/go-socket.io"
	"github.com/googollee/go-socket.io/engineio"
	"github.com/googollee/go-socket.io/engineio/transport"
	"github.com/googollee/go-socket.io/engineio/transport/polling"
	"github.com/googollee/go-socket.io/engineio/transport/websocket"
)

var (
	// Server is the global Socket.IO server instance
	Server *socketio.Server
)

// InitServer initializes the Socket.IO server
func InitServer() error {
	server := socketio.NewServer(&engineio.Options{
		Transports: []transport.Transport{
			&polling.Transport{
				CheckOrigin: func(r *http.Request) bool {
					// The JWT handshake in AuthMiddleware is the gate
					return true
				},
			},
			&websocket.Transport{
				CheckOrigin: func(r *http.Request) bool {
					return true
				},
			},
		},
	})

	server.OnConnect("/", func(s socketio.Conn) error {
		// Admin JWT is checked in the handshake middleware; a connection
		// reaching here is authenticated
		log.Printf("[Events] Dashboard connected: %s", s.ID())

		s.Emit("connected", map[string]interface{}{
			"ok": true,
		})

		return nil
	})

	server.OnDisconnect("/", func(s socketio.Conn, reason string) {
		log.Printf("[Events] Dashboard disconnected: %s, reason: %s", s.ID(), reason)
	})

	server.OnError("/", func(s socketio.Conn, e error) {
		log.Printf("[Events] Error for client %s: %v", s.ID(), e)
	})

	go func() {
		if err := server.Serve(); err != nil {
			log.Fatalf("[Events] Server error: %v", err)
		}
	}()

	Server = server
	log.Println("[Events] Socket.IO server initialized")
	return nil
}

// BroadcastToAll broadcasts a message to all connected dashboards
func BroadcastToAll(event string, data interface{}) {
	if Server != nil {
		Server.BroadcastToNamespace("/", event, data)
	}
}
