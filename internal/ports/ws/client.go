package ws

import (
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

const (
	// Time allowed to write a message to a client
	writeWait = 10 * time.Second

	// Time allowed to read a pong after a ping
	pongWait = 60 * time.Second

	// Interval at which to send pings; must be less than pongWait
	pingInterval = 50 * time.Second

	// Requests are a few short JSON fields
	maxMessageSize = 512

	sendBuffer = 64
)

// client is a WebSocket connection attached to one table.
type client struct {
	*websocket.Conn

	table  *table
	logger *slog.Logger

	mu     sync.Mutex
	send   chan []byte // Buffered channel of outgoing messages
	closed bool
}

func newClient(conn *websocket.Conn, t *table, logger *slog.Logger) *client {
	return &client{
		Conn:   conn,
		table:  t,
		logger: logger,
		send:   make(chan []byte, sendBuffer),
	}
}

// queue encodes msg for the write pump. It reports false when the client is
// stopped or too slow to keep up.
func (c *client) queue(msg message) bool {
	b, err := json.Marshal(msg)
	if err != nil {
		c.logger.Error("encode message", "type", msg.Type, "err", err)
		return true
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return false
	}
	select {
	case c.send <- b:
		return true
	default:
		return false
	}
}

// stop closes the send channel, which makes the write pump send a close
// frame and hang up.
func (c *client) stop() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.closed {
		c.closed = true
		close(c.send)
	}
}

func (c *client) readPump() {
	defer func() {
		c.table.detach(c)
		c.stop()
		c.Close()
	}()

	c.SetReadLimit(maxMessageSize)
	c.SetReadDeadline(time.Now().Add(pongWait))
	c.SetPongHandler(func(string) error {
		c.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, data, err := c.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				c.logger.Warn("connection dropped", "table", c.table.id, "err", err)
			}
			return
		}
		for _, reply := range c.table.handle(data) {
			if !c.queue(reply) {
				c.logger.Warn("client too slow, disconnecting", "table", c.table.id)
				return
			}
		}
	}
}

func (c *client) writePump() {
	pingTicker := time.NewTicker(pingInterval)

	defer func() {
		pingTicker.Stop()
		c.Close()
	}()

	for {
		select {
		case msg, open := <-c.send:
			c.SetWriteDeadline(time.Now().Add(writeWait))
			if !open {
				c.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
				return
			}
			if err := c.WriteMessage(websocket.TextMessage, msg); err != nil {
				return
			}
		case <-pingTicker.C:
			if err := c.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait)); err != nil {
				return
			}
		}
	}
}
