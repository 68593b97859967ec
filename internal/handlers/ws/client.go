package ws

import (
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

// writeWait bounds a single message write
const writeWait = 10 * time.Second

// maxMessageSize bounds inbound intent messages
const maxMessageSize = 64 * 1024

// client is one websocket connection. Writes are serialized by the
// mutex; the hub broadcast and the connection's own read loop both send
// through here.
type client struct {
	conn *websocket.Conn
	mu   sync.Mutex
}

func newClient(conn *websocket.Conn) *client {
	conn.SetReadLimit(maxMessageSize)
	return &client{conn: conn}
}

func (c *client) send(msg any) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
		return err
	}
	return c.conn.WriteJSON(msg)
}

func (c *client) close() {
	_ = c.conn.Close()
}
