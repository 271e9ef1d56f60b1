package websocket

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// dialDashboard stands up a websocket endpoint, connects to it and registers
// the server side of the connection with the hub, like a logged-in console.
func dialDashboard(t *testing.T, hub *Hub) *websocket.Conn {
	t.Helper()

	registered := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			t.Error(err)
			return
		}
		client := &Client{AdminID: primitive.NewObjectID(), Conn: conn}
		hub.mu.Lock()
		hub.clients[client] = true
		hub.mu.Unlock()
		close(registered)
	}))
	t.Cleanup(srv.Close)

	conn, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(srv.URL, "http"), nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })

	select {
	case <-registered:
	case <-time.After(2 * time.Second):
		t.Fatal("dashboard was never registered with the hub")
	}
	return conn
}

func TestBroadcastDeliversEvent(t *testing.T) {
	hub := NewHub()
	conn := dialDashboard(t, hub)

	hub.NotifyRequestSubmitted(map[string]interface{}{"memberId": "MEMBER-001"})

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	var event Event
	require.NoError(t, conn.ReadJSON(&event))
	assert.Equal(t, EventTypeRequestSubmitted, event.Type)
	assert.Equal(t, "New organisation info update request submitted", event.Message)
}

func TestBroadcastConcurrentSubmissions(t *testing.T) {
	hub := NewHub()
	conn := dialDashboard(t, hub)

	// Concurrent submissions and decisions broadcast from separate request
	// handler goroutines; every write to the shared connection must be
	// serialized or gorilla/websocket panics.
	const writers = 8
	const perWriter = 25

	var wg sync.WaitGroup
	for i := 0; i < writers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < perWriter; j++ {
				if j%2 == 0 {
					hub.NotifyRequestSubmitted(map[string]interface{}{"memberId": "MEMBER-001"})
				} else {
					hub.NotifyRequestProcessed(map[string]interface{}{"memberId": "MEMBER-001"})
				}
			}
		}()
	}

	conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	for received := 0; received < writers*perWriter; received++ {
		var event Event
		require.NoError(t, conn.ReadJSON(&event))
		assert.Contains(t, []string{EventTypeRequestSubmitted, EventTypeRequestProcessed}, event.Type)
	}
	wg.Wait()
}

func TestHandleWebSocketHandshake(t *testing.T) {
	hub := NewHub()
	go hub.Run()

	e := echo.New()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		c := e.NewContext(r, w)
		HandleWebSocket(c, hub, primitive.NewObjectID())
	}))
	t.Cleanup(srv.Close)

	conn, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(srv.URL, "http"), nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	var event Event
	require.NoError(t, conn.ReadJSON(&event))
	assert.Equal(t, "connected", event.Type)

	hub.NotifyRequestProcessed(map[string]interface{}{"memberId": "MEMBER-002"})
	require.NoError(t, conn.ReadJSON(&event))
	assert.Equal(t, EventTypeRequestProcessed, event.Type)
}
