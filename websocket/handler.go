package websocket

import (
	"net/http"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// HandleWebSocket upgrades an admin console connection and keeps it
// registered with the hub until the dashboard disconnects.
func HandleWebSocket(c echo.Context, hub *Hub, adminID primitive.ObjectID) error {
	conn, err := upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		return err
	}

	client := &Client{
		AdminID: adminID,
		Conn:    conn,
	}

	hub.register <- client

	client.Send(Event{
		Type:    "connected",
		Message: "WebSocket connection established",
	})

	// Read loop; the console does not send anything meaningful, this only
	// detects disconnects.
	go func() {
		defer func() {
			hub.unregister <- client
		}()

		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				break
			}
		}
	}()

	return nil
}
