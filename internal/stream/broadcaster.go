package stream

import (
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/san-kum/scenephys/internal/physics"
)

const pingInterval = 2 * time.Second

// LineSegment is the wire form of one debug line.
type LineSegment struct {
	Begin [3]float32 `json:"begin"`
	End   [3]float32 `json:"end"`
	Color [4]uint8   `json:"color"`
}

// Frame carries one tick's worth of debug geometry.
type Frame struct {
	Tick  uint64        `json:"tick"`
	Lines []LineSegment `json:"lines"`
}

// FrameFrom converts a draw context into a broadcastable frame.
func FrameFrom(tick uint64, ctx *physics.DrawContext) Frame {
	f := Frame{Tick: tick, Lines: make([]LineSegment, 0, len(ctx.Lines))}
	for _, l := range ctx.Lines {
		f.Lines = append(f.Lines, LineSegment{
			Begin: [3]float32{l.Begin.X(), l.Begin.Y(), l.Begin.Z()},
			End:   [3]float32{l.End.X(), l.End.Y(), l.End.Z()},
			Color: [4]uint8{l.Color.R, l.Color.G, l.Color.B, l.Color.A},
		})
	}
	return f
}

// Broadcaster accepts websocket clients and fans frames out to them.
// A client that fails a write is dropped; the simulation never blocks
// on a slow viewer.
type Broadcaster struct {
	upgrader websocket.Upgrader
	logger   *slog.Logger

	mu      sync.Mutex
	clients map[*SafeWriter]struct{}
}

func NewBroadcaster(logger *slog.Logger) *Broadcaster {
	if logger == nil {
		logger = slog.Default()
	}
	return &Broadcaster{
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool { return true },
		},
		logger:  logger,
		clients: make(map[*SafeWriter]struct{}),
	}
}

// ServeHTTP upgrades the request and keeps the connection registered
// until the peer goes away.
func (b *Broadcaster) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := b.upgrader.Upgrade(w, r, nil)
	if err != nil {
		b.logger.Error("websocket upgrade failed", "error", err)
		return
	}
	client := NewSafeWriter(conn)
	b.add(client)
	b.logger.Info("viewer connected", "remote", r.RemoteAddr)

	go b.pingLoop(client)

	// Read loop exists only to observe the close.
	for {
		if _, _, err := client.ReadMessage(); err != nil {
			break
		}
	}
	b.remove(client)
	b.logger.Info("viewer disconnected", "remote", r.RemoteAddr)
}

func (b *Broadcaster) pingLoop(client *SafeWriter) {
	ticker := time.NewTicker(pingInterval)
	defer ticker.Stop()
	for range ticker.C {
		if !b.contains(client) {
			return
		}
		if err := client.WriteMessage(websocket.PingMessage, nil); err != nil {
			b.remove(client)
			return
		}
	}
}

// Broadcast sends the frame to every connected client.
func (b *Broadcaster) Broadcast(frame Frame) {
	b.mu.Lock()
	targets := make([]*SafeWriter, 0, len(b.clients))
	for c := range b.clients {
		targets = append(targets, c)
	}
	b.mu.Unlock()

	for _, c := range targets {
		if err := c.WriteJSON(frame); err != nil {
			b.logger.Warn("dropping viewer after failed write", "error", err)
			b.remove(c)
		}
	}
}

// ClientCount reports how many viewers are connected.
func (b *Broadcaster) ClientCount() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.clients)
}

// Close disconnects every client.
func (b *Broadcaster) Close() {
	b.mu.Lock()
	clients := make([]*SafeWriter, 0, len(b.clients))
	for c := range b.clients {
		clients = append(clients, c)
	}
	b.clients = make(map[*SafeWriter]struct{})
	b.mu.Unlock()

	for _, c := range clients {
		c.Close()
	}
}

func (b *Broadcaster) add(c *SafeWriter) {
	b.mu.Lock()
	b.clients[c] = struct{}{}
	b.mu.Unlock()
}

func (b *Broadcaster) remove(c *SafeWriter) {
	b.mu.Lock()
	_, ok := b.clients[c]
	delete(b.clients, c)
	b.mu.Unlock()
	if ok {
		c.Close()
	}
}

func (b *Broadcaster) contains(c *SafeWriter) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	_, ok := b.clients[c]
	return ok
}
