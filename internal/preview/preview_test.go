package preview

import (
	"context"
	"log/slog"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"libdb.so/stripglow/internal/led"
)

func startHub(t *testing.T) (*Hub, string) {
	t.Helper()

	hub := NewHub(slog.Default())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		hub.Run(ctx)
		close(done)
	}()

	server := httptest.NewServer(hub)
	t.Cleanup(func() {
		cancel()
		<-done
		server.Close()
	})

	return hub, "ws" + strings.TrimPrefix(server.URL, "http")
}

func dial(t *testing.T, hub *Hub, url string) *websocket.Conn {
	t.Helper()

	want := hub.Clients() + 1

	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatal("dial:", err)
	}
	t.Cleanup(func() { conn.Close() })

	deadline := time.Now().Add(2 * time.Second)
	for hub.Clients() < want {
		if time.Now().After(deadline) {
			t.Fatal("client was never registered")
		}
		time.Sleep(time.Millisecond)
	}

	return conn
}

func readFrame(t *testing.T, conn *websocket.Conn) Frame {
	t.Helper()

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))

	var f Frame
	if err := conn.ReadJSON(&f); err != nil {
		t.Fatal("read:", err)
	}
	return f
}

func TestHubBroadcast(t *testing.T) {
	hub, url := startHub(t)
	a := dial(t, hub, url)
	b := dial(t, hub, url)

	frame := led.LEDs{led.RGB(255, 0, 0), led.RGBW(0, 0, 0, 255)}
	hub.Publish(frame)

	for _, conn := range []*websocket.Conn{a, b} {
		f := readFrame(t, conn)
		if f.Seq != 1 {
			t.Errorf("seq = %d, want 1", f.Seq)
		}
		if len(f.Pixels) != 2 || f.Pixels[0] != frame[0] || f.Pixels[1] != frame[1] {
			t.Errorf("pixels = %v, want %v", f.Pixels, frame)
		}
	}
}

func TestHubSendsLastFrameOnConnect(t *testing.T) {
	hub, url := startHub(t)
	first := dial(t, hub, url)

	hub.Publish(led.LEDs{led.RGB(1, 2, 3)})
	readFrame(t, first)

	late := dial(t, hub, url)
	if f := readFrame(t, late); f.Pixels[0] != led.RGB(1, 2, 3) {
		t.Errorf("late client got %v", f.Pixels)
	}
}

func TestHubForgetsClosedClients(t *testing.T) {
	hub, url := startHub(t)
	conn := dial(t, hub, url)
	conn.Close()

	deadline := time.Now().Add(2 * time.Second)
	for hub.Clients() > 0 {
		if time.Now().After(deadline) {
			t.Fatal("closed client was never removed")
		}
		time.Sleep(time.Millisecond)
	}
}

func TestPublishNeverBlocks(t *testing.T) {
	hub := NewHub(slog.Default())

	done := make(chan struct{})
	go func() {
		for range 100 {
			hub.Publish(led.LEDs{led.RGB(1, 1, 1)})
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Publish blocked without a running hub")
	}

	if f := <-hub.frames; f.Seq != 100 {
		t.Errorf("queued frame seq = %d, want the latest", f.Seq)
	}
}
