// Package server manages individual WebSocket connections, handling read and
// write pumps, deadlines, and lifecycle control for each socket.
package server

import (
	"errors"
	"log"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

const (
	pongWait      = 60 * time.Second
	pingInterval  = 54 * time.Second
	writeWait     = 10 * time.Second
	sendQueueSize = 256
)

// ErrConnectionClosed is returned by Send once the connection is shut down.
var ErrConnectionClosed = errors.New("connection closed")

// errSendQueueFull is returned when the outbound buffer is saturated; the
// peer is too slow to keep up and the frame is not delivered.
var errSendQueueFull = errors.New("send queue full")

// client is one live WebSocket connection. It implements chat.Conn so the
// core can send frames, close with a code, and query liveness without owning
// the socket. Each client gets a random id used for log correlation.
type client struct {
	id   string
	conn *websocket.Conn
	addr string
	send chan []byte
	done chan struct{}

	mu     sync.Mutex
	closed bool
}

func newClient(conn *websocket.Conn, addr string, maxFrameBytes int64) *client {
	c := &client{
		id:   uuid.NewString(),
		conn: conn,
		addr: addr,
		send: make(chan []byte, sendQueueSize),
		done: make(chan struct{}),
	}
	conn.SetReadLimit(maxFrameBytes)
	go c.writePump()
	return c
}

// Send queues an outbound frame. It never blocks; a saturated queue is an
// error so the caller can treat the peer as unreachable.
func (c *client) Send(payload []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return ErrConnectionClosed
	}

	select {
	case c.send <- payload:
		return nil
	default:
		return errSendQueueFull
	}
}

// Close sends a close frame with the given code and reason, then tears the
// connection down. Closing an already-closed client is a no-op.
func (c *client) Close(code int, reason string) error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil
	}
	c.closed = true
	close(c.done)
	c.mu.Unlock()

	message := websocket.FormatCloseMessage(code, reason)
	deadline := time.Now().Add(writeWait)
	if err := c.conn.WriteControl(websocket.CloseMessage, message, deadline); err != nil && !isExpectedCloseError(err) {
		log.Printf("Error writing close frame to %s: %v", c.addr, err)
	}
	return c.conn.Close()
}

// IsAlive reports whether the connection is still usable.
func (c *client) IsAlive() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return !c.closed
}

// readLoop reads frames until the connection fails or closes, invoking
// handle for each one. The read deadline is refreshed by pongs and after
// every successful read.
func (c *client) readLoop(handle func(raw []byte)) {
	defer func() {
		_ = c.Close(websocket.CloseNormalClosure, "")
	}()

	if err := c.conn.SetReadDeadline(time.Now().Add(pongWait)); err != nil {
		log.Printf("Error setting read deadline for %s: %v", c.addr, err)
		return
	}
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, raw, err := c.conn.ReadMessage()
		if err != nil {
			c.logReadError(err)
			return
		}
		if err := c.conn.SetReadDeadline(time.Now().Add(pongWait)); err != nil {
			log.Printf("Error resetting read deadline for %s: %v", c.addr, err)
			return
		}
		handle(raw)
	}
}

func (c *client) logReadError(err error) {
	switch {
	case errors.Is(err, websocket.ErrReadLimit):
		log.Printf("Frame from %s exceeded the read limit", c.addr)
	case websocket.IsCloseError(err,
		websocket.CloseNormalClosure,
		websocket.CloseGoingAway,
		websocket.CloseAbnormalClosure):
		log.Printf("Connection %s closed: %v", c.id, err)
	case isExpectedCloseError(err):
		// Teardown already in progress; nothing worth logging.
	default:
		log.Printf("WebSocket read error from %s: %v", c.addr, err)
	}
}

// writePump drains the send queue onto the socket and keeps the connection
// alive with periodic pings.
func (c *client) writePump() {
	ticker := time.NewTicker(pingInterval)
	defer ticker.Stop()

	for {
		select {
		case payload := <-c.send:
			if err := c.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
				log.Printf("Error setting write deadline for %s: %v", c.addr, err)
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, payload); err != nil {
				if !isExpectedCloseError(err) {
					log.Printf("Error writing message to %s: %v", c.addr, err)
				}
				return
			}

		case <-ticker.C:
			if err := c.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
				log.Printf("Error setting write deadline for ping to %s: %v", c.addr, err)
				return
			}
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}

		case <-c.done:
			return
		}
	}
}

// isExpectedCloseError checks if an error is expected during connection
// closure.
func isExpectedCloseError(err error) bool {
	if err == nil {
		return true
	}
	errStr := err.Error()
	return strings.Contains(errStr, "use of closed network connection") ||
		strings.Contains(errStr, "websocket: close sent") ||
		strings.Contains(errStr, "broken pipe")
}
