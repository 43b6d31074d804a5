// Package stream broadcasts debug-draw frames to websocket clients so
// an external viewer can render the physics world live.
package stream

import (
	"sync"

	"github.com/gorilla/websocket"
)

// SafeWriter serializes writes to one websocket connection. gorilla
// connections allow a single concurrent writer, and the broadcaster
// fans frames out from the simulation loop while pings come from a
// different goroutine.
type SafeWriter struct {
	conn *websocket.Conn
	mu   sync.Mutex
}

func NewSafeWriter(conn *websocket.Conn) *SafeWriter {
	return &SafeWriter{conn: conn}
}

func (w *SafeWriter) WriteJSON(v any) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.conn.WriteJSON(v)
}

func (w *SafeWriter) WriteMessage(messageType int, data []byte) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.conn.WriteMessage(messageType, data)
}

func (w *SafeWriter) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.conn.Close()
}

// ReadMessage reads from the connection. Reads are not serialized; the
// broadcaster owns the single read loop per connection.
func (w *SafeWriter) ReadMessage() (int, []byte, error) {
	return w.conn.ReadMessage()
}
