// Package monitor streams the state of a delivery surface to websocket clients.
//
// Each connected client receives one JSON Frame per interval holding the
// rendered latest value of every bound record type. Clients never write;
// anything they send is read and discarded so close frames are noticed.
package monitor

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"

	"github.com/ameersohail0/OpenDaVINCI/delivery"
	"github.com/ameersohail0/OpenDaVINCI/errors"
	"github.com/ameersohail0/OpenDaVINCI/pkg/timestamp"
)

// Source is what the monitor renders. *delivery.Surface satisfies it.
type Source interface {
	Name() string
	Views() []delivery.View
	Delivered() uint64
	Dropped() uint64
}

// Frame is one update sent to clients.
type Frame struct {
	Surface   string          `json:"surface"`
	At        string          `json:"at"`
	Delivered uint64          `json:"delivered"`
	Dropped   uint64          `json:"dropped"`
	Views     []delivery.View `json:"views"`
}

const writeWait = 10 * time.Second

// Handler upgrades requests to websockets and pushes frames.
type Handler struct {
	source   Source
	interval time.Duration
	clock    timestamp.Clock
	logger   *slog.Logger
	upgrader websocket.Upgrader

	clients  atomic.Int64
	mu       sync.Mutex
	closed   bool
	shutdown chan struct{}
	wg       sync.WaitGroup
}

// Option configures a Handler.
type Option func(*Handler)

// WithLogger sets the logger. A nil logger keeps slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(h *Handler) {
		if l != nil {
			h.logger = l
		}
	}
}

// WithClock sets the clock used for frame stamps.
func WithClock(c timestamp.Clock) Option {
	return func(h *Handler) {
		if c != nil {
			h.clock = c
		}
	}
}

// NewHandler returns a Handler sending a frame every interval.
func NewHandler(source Source, interval time.Duration, opts ...Option) *Handler {
	if interval <= 0 {
		interval = time.Second
	}
	h := &Handler{
		source:   source,
		interval: interval,
		clock:    timestamp.SystemClock(),
		logger:   slog.Default(),
		upgrader: websocket.Upgrader{
			// The monitor is read-only, so any origin may watch.
			CheckOrigin:     func(*http.Request) bool { return true },
			ReadBufferSize:  1024,
			WriteBufferSize: 4096,
		},
		shutdown: make(chan struct{}),
	}
	for _, opt := range opts {
		opt(h)
	}
	h.logger = h.logger.With("component", "monitor", "surface", source.Name())
	return h
}

// Snapshot builds the frame that would be sent now.
func (h *Handler) Snapshot() Frame {
	return Frame{
		Surface:   h.source.Name(),
		At:        h.clock.Now().String(),
		Delivered: h.source.Delivered(),
		Dropped:   h.source.Dropped(),
		Views:     h.source.Views(),
	}
}

// Clients returns the number of connected clients.
func (h *Handler) Clients() int {
	return int(h.clients.Load())
}

// ServeHTTP upgrades the connection and streams frames until the client
// leaves or Close is called.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	select {
	case <-h.shutdown:
		http.Error(w, "monitor closed", http.StatusServiceUnavailable)
		return
	default:
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Debug("websocket upgrade failed", "error", err)
		return
	}

	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		_ = conn.Close()
		return
	}
	h.wg.Add(1)
	h.mu.Unlock()

	h.clients.Add(1)
	defer func() {
		h.clients.Add(-1)
		_ = conn.Close()
		h.wg.Done()
	}()

	h.logger.Debug("client connected", "remote", r.RemoteAddr)
	h.stream(r.Context(), conn)
}

func (h *Handler) stream(ctx context.Context, conn *websocket.Conn) {
	gone := make(chan struct{})
	go func() {
		defer close(gone)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	ticker := time.NewTicker(h.interval)
	defer ticker.Stop()

	for {
		if err := h.send(conn); err != nil {
			h.logger.Debug("client write failed", "error", err)
			return
		}
		select {
		case <-ctx.Done():
			return
		case <-gone:
			return
		case <-h.shutdown:
			_ = conn.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseGoingAway, "shutdown"),
				time.Now().Add(writeWait))
			return
		case <-ticker.C:
		}
	}
}

func (h *Handler) send(conn *websocket.Conn) error {
	_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
	return conn.WriteJSON(h.Snapshot())
}

// Close disconnects all clients and waits for their goroutines.
func (h *Handler) Close() {
	h.mu.Lock()
	if !h.closed {
		h.closed = true
		close(h.shutdown)
	}
	h.mu.Unlock()
	h.wg.Wait()
}

// Server serves a Handler on its own port.
type Server struct {
	port    int
	path    string
	handler *Handler

	mu       sync.Mutex
	server   *http.Server
	listener net.Listener
	addr     net.Addr
	stopped  bool
}

// NewServer returns a server for h on port and path.
func NewServer(port int, path string, h *Handler) *Server {
	if path == "" {
		path = "/ws"
	}
	return &Server{port: port, path: path, handler: h}
}

// Mux returns the routes served by Start.
func (s *Server) Mux() http.Handler {
	mux := http.NewServeMux()
	mux.Handle(s.path, s.handler)
	mux.HandleFunc("/views", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		_ = enc.Encode(s.handler.Snapshot())
	})
	return mux
}

// Listen binds the port without serving, so a Stop issued while Start is
// still being scheduled finds the listener.
func (s *Server) Listen() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stopped = false
	return s.listenLocked()
}

func (s *Server) listenLocked() error {
	if s.server != nil {
		return errors.WrapInvalid(fmt.Errorf("server already running"),
			"MonitorServer", "Start", "start server")
	}
	ln, err := net.Listen("tcp", fmt.Sprintf(":%d", s.port))
	if err != nil {
		return errors.WrapFatal(err, "MonitorServer", "Start",
			fmt.Sprintf("listen on port %d", s.port))
	}
	s.listener = ln
	s.addr = ln.Addr()
	s.server = &http.Server{
		Handler:           s.Mux(),
		ReadHeaderTimeout: 5 * time.Second,
	}
	return nil
}

// Start serves until Stop is called. It blocks. It binds first unless Listen
// already did, and returns nil at once when Stop came first.
func (s *Server) Start() error {
	s.mu.Lock()
	if s.stopped {
		s.mu.Unlock()
		return nil
	}
	if s.listener == nil {
		if err := s.listenLocked(); err != nil {
			s.mu.Unlock()
			return err
		}
	}
	srv, ln := s.server, s.listener
	s.listener = nil
	s.mu.Unlock()

	if err := srv.Serve(ln); err != nil && err != http.ErrServerClosed {
		return errors.WrapFatal(err, "MonitorServer", "Start",
			fmt.Sprintf("serve on port %d", s.port))
	}
	return nil
}

// ListenAddr returns the bound address, or nil before Listen or Start.
func (s *Server) ListenAddr() net.Addr {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.addr
}

// Stop disconnects websocket clients and shuts the server down.
func (s *Server) Stop(ctx context.Context) error {
	s.handler.Close()

	s.mu.Lock()
	defer s.mu.Unlock()
	s.stopped = true
	if s.listener != nil {
		_ = s.listener.Close()
		s.listener = nil
	}
	if s.server == nil {
		return nil
	}
	err := s.server.Shutdown(ctx)
	s.server = nil
	if err != nil {
		return errors.WrapTransient(err, "MonitorServer", "Stop", "shutdown server")
	}
	return nil
}
