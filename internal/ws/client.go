package ws

import (
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxFrameSize   = 1 << 16
	sendBufferSize = 64
)

// Connection lifecycle states. Transitions are one-way:
// Connecting -> Authenticated -> Closed.
type ConnState int32

const (
	StateConnecting ConnState = iota
	StateAuthenticated
	StateClosed
)

// Client is one websocket connection bound to an authenticated user for its
// whole lifetime. The read pump turns frames into typed events for the hub;
// the write pump drains the send buffer.
type Client struct {
	hub  *Hub
	conn *websocket.Conn

	userID   string
	username string

	send  chan []byte
	state atomic.Int32
}

func newClient(hub *Hub, conn *websocket.Conn, userID, username string) *Client {
	c := &Client{
		hub:      hub,
		conn:     conn,
		userID:   userID,
		username: username,
		send:     make(chan []byte, sendBufferSize),
	}
	c.state.Store(int32(StateConnecting))
	return c
}

func (c *Client) State() ConnState {
	return ConnState(c.state.Load())
}

func (c *Client) transition(from, to ConnState) bool {
	return c.state.CompareAndSwap(int32(from), int32(to))
}

// Send queues a named event for delivery. Best effort: if the client's
// buffer is full the connection is torn down rather than blocking the
// caller.
func (c *Client) Send(event string, payload any) {
	if c.State() == StateClosed {
		return
	}
	frame, err := marshalEnvelope(event, payload)
	if err != nil {
		c.hub.log.Error("marshal event", "event", event, "error", err)
		return
	}
	select {
	case c.send <- frame:
	default:
		c.hub.log.Warn("send buffer full, dropping client", "userId", c.userID)
		c.close()
	}
}

// close moves the client to Closed and asks the hub to detach it. Safe to
// call from any goroutine and at any point in the lifecycle, including from
// inside the hub's own run loop (the unregister hand-off is asynchronous so
// the loop never waits on itself).
func (c *Client) close() {
	prev := ConnState(c.state.Swap(int32(StateClosed)))
	if prev == StateClosed {
		return
	}
	c.conn.Close()
	if prev == StateAuthenticated {
		select {
		case c.hub.unregister <- c:
		default:
			go func() { c.hub.unregister <- c }()
		}
	}
}

// readPump decodes inbound frames into typed events and hands them to the
// hub's run loop. It exits (and detaches the client) on any read error,
// including the peer closing the connection.
func (c *Client) readPump() {
	defer c.close()

	c.conn.SetReadLimit(maxFrameSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		var env Envelope
		if err := c.conn.ReadJSON(&env); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				c.hub.log.Debug("read error", "userId", c.userID, "error", err)
			}
			return
		}
		c.hub.inbound <- inboundEvent{client: c, env: env}
	}
}

// writePump drains the send buffer and keeps the connection alive with
// pings. One writer per connection; nobody else touches c.conn for writes.
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.close()
	}()

	for {
		select {
		case frame, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, frame); err != nil {
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
