// Package preview streams flushed frames to browsers over WebSocket.
package preview

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"golang.org/x/sync/errgroup"

	"libdb.so/stripglow/internal/led"
)

const (
	writeTimeout    = 2 * time.Second
	clientQueue     = 4
	shutdownTimeout = 2 * time.Second
)

// Frame is the message sent to clients for every flushed frame.
type Frame struct {
	Seq    uint64      `json:"seq"`
	Pixels []led.Color `json:"pixels"`
}

// Hub fans frames out to every connected client. Slow clients miss frames
// instead of slowing down the strip.
type Hub struct {
	logger   *slog.Logger
	upgrader websocket.Upgrader
	frames   chan Frame

	mu      sync.Mutex
	clients map[*client]struct{}
	last    *Frame
	seq     uint64
}

type client struct {
	conn *websocket.Conn
	send chan Frame
}

// NewHub creates a hub. Run must be called for frames to be delivered.
func NewHub(logger *slog.Logger) *Hub {
	return &Hub{
		logger: logger,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 4096,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
		frames:  make(chan Frame, 1),
		clients: make(map[*client]struct{}),
	}
}

// Publish queues a frame for broadcast. It never blocks; if the previous
// frame was not picked up yet, it is replaced. It can be used directly as a
// strip observer.
func (h *Hub) Publish(pixels led.LEDs) {
	h.mu.Lock()
	h.seq++
	f := Frame{Seq: h.seq, Pixels: append([]led.Color(nil), pixels...)}
	h.mu.Unlock()

	for {
		select {
		case h.frames <- f:
			return
		default:
		}

		select {
		case <-h.frames:
		default:
		}
	}
}

// Clients returns the number of connected clients.
func (h *Hub) Clients() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

// Run broadcasts published frames until ctx is done, then disconnects every
// client.
func (h *Hub) Run(ctx context.Context) error {
	defer h.closeAll()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case f := <-h.frames:
			h.broadcast(f)
		}
	}
}

func (h *Hub) broadcast(f Frame) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.last = &f
	for c := range h.clients {
		select {
		case c.send <- f:
		default:
			h.logger.Debug("preview client is slow, dropping frame", "seq", f.Seq)
		}
	}
}

func (h *Hub) closeAll() {
	h.mu.Lock()
	defer h.mu.Unlock()

	for c := range h.clients {
		h.remove(c)
	}
}

// remove must be called with mu held.
func (h *Hub) remove(c *client) {
	if _, ok := h.clients[c]; ok {
		delete(h.clients, c)
		close(c.send)
	}
}

// ServeHTTP upgrades the request to a WebSocket and streams frames to it.
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Debug("preview upgrade failed", "error", err)
		return
	}

	c := &client{
		conn: conn,
		send: make(chan Frame, clientQueue),
	}

	h.mu.Lock()
	h.clients[c] = struct{}{}
	if h.last != nil {
		c.send <- *h.last
	}
	n := len(h.clients)
	h.mu.Unlock()

	h.logger.Info("preview client connected", "remote", r.RemoteAddr, "clients", n)

	go h.writeLoop(c)
	go h.readLoop(c)
}

func (h *Hub) writeLoop(c *client) {
	defer c.conn.Close()

	for f := range c.send {
		c.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
		if err := c.conn.WriteJSON(f); err != nil {
			h.logger.Debug("preview write failed", "error", err)
			h.drop(c)
			break
		}
	}

	c.conn.WriteControl(
		websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
		time.Now().Add(writeTimeout))
}

// readLoop discards incoming messages and notices when the client leaves.
func (h *Hub) readLoop(c *client) {
	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			h.drop(c)
			return
		}
	}
}

func (h *Hub) drop(c *client) {
	h.mu.Lock()
	_, ok := h.clients[c]
	h.remove(c)
	n := len(h.clients)
	h.mu.Unlock()

	if ok {
		h.logger.Info("preview client disconnected", "clients", n)
	}
}

// Serve listens on addr and serves the hub at /ws until ctx is done.
func (h *Hub) Serve(ctx context.Context, addr string) error {
	mux := http.NewServeMux()
	mux.Handle("/ws", h)

	server := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errg, ctx := errgroup.WithContext(ctx)

	errg.Go(func() error {
		return h.Run(ctx)
	})

	errg.Go(func() error {
		h.logger.Info("serving preview", "addr", addr)
		if err := server.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	errg.Go(func() error {
		<-ctx.Done()
		sctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return server.Shutdown(sctx)
	})

	if err := errg.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}
