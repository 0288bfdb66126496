package realtime

import (
	"errors"
	"sync"

	"github.com/fasthttp/websocket"
)

// Hub tracks live connections by id and implements Sender for the Protocol.
type Hub struct {
	mu    sync.RWMutex
	conns map[string]*Connection
}

func NewHub() *Hub {
	return &Hub{conns: make(map[string]*Connection)}
}

// Attach registers the connection and starts its write loop.
func (h *Hub) Attach(conn *Connection) {
	h.mu.Lock()
	h.conns[conn.ID] = conn
	h.mu.Unlock()

	conn.Start()
}

// Detach removes the connection from the table. The caller is responsible for
// running the protocol's disconnect transition first so rosters stay accurate.
func (h *Hub) Detach(connectionID string) {
	h.mu.Lock()
	delete(h.conns, connectionID)
	h.mu.Unlock()
}

// Send delivers payload to the connection with the given id.
func (h *Hub) Send(connectionID string, payload []byte) error {
	h.mu.RLock()
	conn := h.conns[connectionID]
	h.mu.RUnlock()

	if conn == nil {
		return errors.New("unknown connection")
	}
	return conn.Send(payload)
}

// Close terminates every tracked connection and clears the table.
func (h *Hub) Close() {
	h.mu.Lock()
	conns := make([]*Connection, 0, len(h.conns))
	for _, conn := range h.conns {
		conns = append(conns, conn)
	}
	h.conns = make(map[string]*Connection)
	h.mu.Unlock()

	for _, conn := range conns {
		conn.Close(websocket.CloseGoingAway, "server shutdown")
	}
}
