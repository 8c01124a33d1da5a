package ws

import (
	"context"
	"log/slog"
	"time"

	"github.com/gorilla/websocket"

	"github.com/tankarena/lobby-server/internal/model"
	"github.com/tankarena/lobby-server/internal/relay"
)

const (
	// writeWait is the allowance for a single outbound write
	writeWait = 10 * time.Second

	// pongWait bounds how long a peer may stay silent; pings go out at
	// pingPeriod so a healthy peer always answers in time
	pongWait   = 60 * time.Second
	pingPeriod = (pongWait * 9) / 10

	maxMessageSize = 64 * 1024

	// sendBuffer frames queue per connection before drops kick in
	sendBuffer = 256
)

// Client owns one websocket connection: a read pump feeding inbound frames
// to the coordinator and a write pump draining the send queue. The send
// queue never blocks the caller; a full queue drops the frame.
type Client struct {
	id      model.ConnID
	conn    *websocket.Conn
	session *relay.Session
	logger  *slog.Logger

	send chan []byte
	done chan struct{}
}

var _ relay.Sender = (*Client)(nil)

// NewClient wraps an upgraded websocket connection
func NewClient(id model.ConnID, conn *websocket.Conn, session *relay.Session, logger *slog.Logger) *Client {
	return &Client{
		id:      id,
		conn:    conn,
		session: session,
		logger:  logger.With(slog.String("component", "ws"), slog.String("conn_id", string(id))),
		send:    make(chan []byte, sendBuffer),
		done:    make(chan struct{}),
	}
}

// Send queues one frame for delivery. Never blocks: if the peer cannot
// keep up the frame is dropped and the write pump stays healthy.
func (c *Client) Send(message []byte) error {
	select {
	case c.send <- message:
		return nil
	case <-c.done:
		return model.ErrNotConnected
	default:
		c.logger.Warn("send queue full, dropping frame")
		return nil
	}
}

// ReadPump consumes inbound frames until the connection dies, then tears
// the session membership down. Runs on the upgrade handler's goroutine.
func (c *Client) ReadPump(ctx context.Context) {
	defer func() {
		c.session.Disconnect(ctx, c.id)
		close(c.done)
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, message, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				c.logger.Info("connection closed unexpectedly", slog.Any("error", err))
			}
			return
		}
		c.session.HandleMessage(ctx, c.id, message)
	}
}

// WritePump drains the send queue and keeps the peer alive with pings.
// Runs on its own goroutine; exits when the read pump closes done.
func (c *Client) WritePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case message := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		case <-c.done:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			c.conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
			return
		}
	}
}
