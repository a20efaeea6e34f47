package realtime

import (
	"context"
	"time"

	ws "github.com/coder/websocket"

	"github.com/forttask/forttask/internal/auth"
)

const (
	sendBufferSize = 16
	pingInterval   = 30 * time.Second
)

// Client represents a single WebSocket connection and the identity it
// authenticated with. The joined set is touched only by the read loop and
// the disconnect path that follows it, so it needs no lock.
type Client struct {
	hub      *Hub
	conn     *ws.Conn
	identity auth.Identity
	send     chan []byte
	joined   map[int64]struct{}
}

func NewClient(hub *Hub, conn *ws.Conn, identity auth.Identity) *Client {
	return &Client{
		hub:      hub,
		conn:     conn,
		identity: identity,
		send:     make(chan []byte, sendBufferSize),
		joined:   make(map[int64]struct{}),
	}
}

// Run starts the write pump and runs the read pump. It blocks until the
// connection is closed, then leaves every joined room.
func (c *Client) Run(ctx context.Context) {
	defer c.hub.disconnect(c)

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	go c.writePump(ctx)
	c.readPump(ctx)
}

// readPump feeds inbound messages to the hub in receipt order. It returns
// on read error (connection close), which triggers cleanup.
func (c *Client) readPump(ctx context.Context) {
	for {
		_, data, err := c.conn.Read(ctx)
		if err != nil {
			return
		}
		c.hub.handleInbound(c, data)
	}
}

// writePump drains the send channel and writes messages to the WebSocket.
// It also sends periodic pings to detect stale connections.
func (c *Client) writePump(ctx context.Context) {
	ticker := time.NewTicker(pingInterval)
	defer ticker.Stop()

	for {
		select {
		case msg := <-c.send:
			if err := c.conn.Write(ctx, ws.MessageText, msg); err != nil {
				return
			}
		case <-ticker.C:
			if err := c.conn.Ping(ctx); err != nil {
				return
			}
		case <-ctx.Done():
			return
		}
	}
}
