// internal/gateway/client.go
package gateway

import (
	"sync"
	"sync/atomic"

	"github.com/google/uuid"
	"github.com/jason-s-yu/sweeper/internal/room"
)

// Client is the gateway's handle on one open connection. Events are queued on a bounded
// outbox that the transport drains; a slow reader loses events rather than stalling the
// room that produced them.
type Client struct {
	ID     uuid.UUID // connection identity, also the room player ID
	UserID uuid.UUID // authenticated account, uuid.Nil for guests

	out     chan room.Event
	mu      sync.Mutex
	closed  bool
	dropped atomic.Int64
}

func newClient(id, userID uuid.UUID, size int) *Client {
	if size <= 0 {
		size = 1
	}
	return &Client{ID: id, UserID: userID, out: make(chan room.Event, size)}
}

// Outbox is drained by the connection's write loop. It is closed by Close.
func (c *Client) Outbox() <-chan room.Event {
	return c.out
}

// Write queues ev without blocking. It reports false if the event was dropped because the
// outbox is full or closed.
func (c *Client) Write(ev room.Event) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return false
	}
	select {
	case c.out <- ev:
		return true
	default:
		c.dropped.Add(1)
		return false
	}
}

// Dropped counts events discarded on a full outbox.
func (c *Client) Dropped() int64 {
	return c.dropped.Load()
}

// Close closes the outbox. Safe to call more than once.
func (c *Client) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.closed = true
	close(c.out)
}
