package realtime

import (
	"sync"

	"telehealth-backend/internal/domain/entity"

	"github.com/google/uuid"
)

// Conn is the transport beneath a Client. The websocket adapter lives in the
// delivery layer; keeping the hub behind this interface keeps the realtime
// package free of transport concerns.
type Conn interface {
	WriteMessage(data []byte) error
	Close() error
}

// Outbound frames queued per client before a slow peer starts losing frames.
const sendBufferSize = 32

// Client is one live bidirectional channel to exactly one user. A user may
// hold several clients at once (multi-device). The hub owns the client for
// its lifetime; it is destroyed on disconnect or protocol error.
type Client struct {
	UserID uuid.UUID
	Role   string

	conn      Conn
	send      chan []byte
	done      chan struct{}
	closeOnce sync.Once
}

func NewClient(userID uuid.UUID, role string, conn Conn) *Client {
	return &Client{
		UserID: userID,
		Role:   role,
		conn:   conn,
		send:   make(chan []byte, sendBufferSize),
		done:   make(chan struct{}),
	}
}

// IsDoctor reports whether this connection belongs to a doctor-role user.
func (c *Client) IsDoctor() bool {
	return c.Role == entity.RoleDoctor
}

// trySend queues a frame without blocking. A closed client or a full buffer
// drops the frame; delivery is best-effort and a failed send never closes
// the connection.
func (c *Client) trySend(data []byte) bool {
	select {
	case <-c.done:
		return false
	default:
	}

	select {
	case c.send <- data:
		return true
	default:
		return false
	}
}

// WritePump drains the send queue onto the transport. It exits when the
// client is closed or a write fails; the read loop observes the transport
// close and drives deregistration.
func (c *Client) WritePump() {
	for {
		select {
		case <-c.done:
			return
		case data := <-c.send:
			if err := c.conn.WriteMessage(data); err != nil {
				return
			}
		}
	}
}

// Close tears down the transport. Safe to call multiple times.
func (c *Client) Close() {
	c.closeOnce.Do(func() {
		close(c.done)
		c.conn.Close()
	})
}
