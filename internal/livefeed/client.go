package livefeed

import (
	"context"
	"net/http"
	"time"

	"rigor-logistics/internal/logger"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 512
	sendBuffer     = 256
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// Callers are authenticated by token before the upgrade.
	CheckOrigin: func(r *http.Request) bool { return true },
}

// Client is one websocket subscriber of a single trip.
type Client struct {
	hub    *Hub
	conn   *websocket.Conn
	tripID int64
	send   chan []byte
}

func newClient(hub *Hub, conn *websocket.Conn, tripID int64) *Client {
	return &Client{
		hub:    hub,
		conn:   conn,
		tripID: tripID,
		send:   make(chan []byte, sendBuffer),
	}
}

// ServeWS upgrades the request and streams the trip's events until either
// side closes the connection.
func ServeWS(ctx context.Context, hub *Hub, w http.ResponseWriter, r *http.Request, tripID int64) error {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		return err
	}

	c := newClient(hub, conn, tripID)
	if err := hub.Register(ctx, c); err != nil {
		_ = conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseGoingAway, "server shutting down"),
			time.Now().Add(writeWait))
		conn.Close()
		return err
	}

	go c.writePump()
	go c.readPump()
	return nil
}

// readPump only services control frames. Subscribers do not send data.
func (c *Client) readPump() {
	defer func() {
		c.hub.Unregister(c)
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure, websocket.CloseAbnormalClosure) {
				logger.Warn("Live feed connection error", zap.Int64("trip_id", c.tripID), zap.Error(err))
			}
			return
		}
	}
}

func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}

		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
