package server

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

const (
	writeWait      = 2 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 64 * 1024
	sendQueueSize  = 64
)

// -----------------------------------------------------------------------------
// Client is one dashboard socket. Payloads are pre-encoded JSON; the hub
// closes `closed` (never `send`) so late replies cannot panic.
// -----------------------------------------------------------------------------

type Client struct {
	id   string
	hub  *Hub
	conn *websocket.Conn
	send chan []byte

	closed    chan struct{}
	closeOnce sync.Once
}

func newClient(hub *Hub, conn *websocket.Conn) *Client {
	return &Client{
		id:     uuid.NewString(),
		hub:    hub,
		conn:   conn,
		send:   make(chan []byte, sendQueueSize),
		closed: make(chan struct{}),
	}
}

// enqueue never blocks; false means the client is gone or too slow.
func (c *Client) enqueue(payload []byte) bool {
	select {
	case <-c.closed:
		return false
	default:
	}

	select {
	case c.send <- payload:
		return true
	default:
		return false
	}
}

func (c *Client) close() {
	c.closeOnce.Do(func() { close(c.closed) })
}

// -----------------------------------------------------------------------------

// readPump dispatches commands and doubles as the connection watchdog.
func (c *Client) readPump() {
	defer func() {
		select {
		case c.hub.unregister <- c:
		case <-c.hub.done:
		}
		c.conn.Close()
		c.hub.Logger.Debug("Client %s disconnected", c.id)
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, message, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.hub.Logger.Info("Client %s read error: %v", c.id, err)
			}
			return
		}
		if !c.hub.handleClientMessage(c, message) {
			return
		}
	}
}

// -----------------------------------------------------------------------------

// writePump owns every write on the connection.
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case <-c.closed:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			c.conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
			return

		case payload := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.TextMessage, payload); err != nil {
				c.hub.Logger.Info("Client %s write error: %v", c.id, err)
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
