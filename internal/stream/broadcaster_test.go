package stream

import (
	"image/color"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/gorilla/websocket"

	"github.com/san-kum/scenephys/internal/physics"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func waitForClients(t *testing.T, b *Broadcaster, want int) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if b.ClientCount() == want {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("client count = %d, want %d", b.ClientCount(), want)
}

func TestSafeWriterConcurrentWrites(t *testing.T) {
	upgrader := websocket.Upgrader{
		CheckOrigin: func(r *http.Request) bool { return true },
	}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			t.Errorf("upgrade: %v", err)
			return
		}
		defer conn.Close()
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}))
	defer server.Close()

	url := "ws" + strings.TrimPrefix(server.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	sw := NewSafeWriter(conn)
	defer sw.Close()

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				if err := sw.WriteJSON(map[string]int{"writer": n, "seq": j}); err != nil {
					t.Errorf("writer %d: %v", n, err)
					return
				}
			}
		}(i)
	}
	wg.Wait()
}

func TestBroadcastDeliversFrame(t *testing.T) {
	b := NewBroadcaster(quietLogger())
	defer b.Close()
	server := httptest.NewServer(b)
	defer server.Close()

	url := "ws" + strings.TrimPrefix(server.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()
	waitForClients(t, b, 1)

	ctx := &physics.DrawContext{}
	ctx.AddLine(mgl32.Vec3{1, 2, 3}, mgl32.Vec3{4, 5, 6}, color.RGBA{R: 255, G: 128, B: 0, A: 255})
	b.Broadcast(FrameFrom(7, ctx))

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	var frame Frame
	if err := conn.ReadJSON(&frame); err != nil {
		t.Fatalf("read frame: %v", err)
	}
	if frame.Tick != 7 {
		t.Fatalf("tick = %d, want 7", frame.Tick)
	}
	if len(frame.Lines) != 1 {
		t.Fatalf("lines = %d, want 1", len(frame.Lines))
	}
	line := frame.Lines[0]
	if line.Begin != [3]float32{1, 2, 3} || line.End != [3]float32{4, 5, 6} {
		t.Fatalf("unexpected endpoints: %+v", line)
	}
	if line.Color != [4]uint8{255, 128, 0, 255} {
		t.Fatalf("unexpected color: %v", line.Color)
	}
}

func TestDisconnectedClientIsRemoved(t *testing.T) {
	b := NewBroadcaster(quietLogger())
	defer b.Close()
	server := httptest.NewServer(b)
	defer server.Close()

	url := "ws" + strings.TrimPrefix(server.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	waitForClients(t, b, 1)

	conn.Close()
	waitForClients(t, b, 0)

	// Broadcasting with no clients is a no-op.
	b.Broadcast(Frame{Tick: 1})
}
