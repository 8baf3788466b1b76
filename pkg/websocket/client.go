package websocket

import (
	"sync"

	"github.com/jgirmay/geoattend/pkg/services/presence"
)

// Client is one socket registered as a presence connection. The send queue is
// never closed; done signals the write pump to stop instead.
type Client struct {
	id        string
	conn      *Conn
	send      chan *presence.Message
	done      chan struct{}
	closeOnce sync.Once
}

func newClient(id string, conn *Conn, buffer int) *Client {
	if buffer <= 0 {
		buffer = 256
	}
	return &Client{
		id:   id,
		conn: conn,
		send: make(chan *presence.Message, buffer),
		done: make(chan struct{}),
	}
}

// ID returns the connection id
func (c *Client) ID() string {
	return c.id
}

// Send enqueues msg without blocking. A full queue or a closed client drops it.
func (c *Client) Send(msg *presence.Message) bool {
	select {
	case <-c.done:
		return false
	default:
	}

	select {
	case c.send <- msg:
		return true
	default:
		return false
	}
}

// Close stops the write pump, which closes the socket
func (c *Client) Close() {
	c.closeOnce.Do(func() { close(c.done) })
}

// Done is closed once the client has been closed
func (c *Client) Done() <-chan struct{} {
	return c.done
}

var _ presence.Connection = (*Client)(nil)
