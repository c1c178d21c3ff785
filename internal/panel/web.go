package panel

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/mrcode/nightscout-panel/internal/models"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(*http.Request) bool {
		return true // Served on localhost by default
	},
}

// Web serves the current display state over HTTP and pushes every update
// to connected websocket clients
type Web struct {
	addr    string
	logger  *zap.Logger
	refresh func()

	mu      sync.RWMutex
	pending state
	current models.DisplayState

	clientsMu sync.Mutex
	clients   map[*websocket.Conn]bool

	listener net.Listener
	server   *http.Server
}

// NewWeb creates a web panel listening on addr
func NewWeb(addr string, logger *zap.Logger) *Web {
	return &Web{
		addr:    addr,
		logger:  logger.Named("web"),
		clients: make(map[*websocket.Conn]bool),
	}
}

// OnRefresh sets the callback behind POST /api/v1/refresh
func (w *Web) OnRefresh(fn func()) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.refresh = fn
}

// Handler returns the routed HTTP handler
func (w *Web) Handler() http.Handler {
	router := mux.NewRouter()
	router.HandleFunc("/", w.handleRoot).Methods(http.MethodGet)
	router.HandleFunc("/api/v1/display", w.handleDisplay).Methods(http.MethodGet)
	router.HandleFunc("/api/v1/refresh", w.handleRefresh).Methods(http.MethodPost)
	router.HandleFunc("/ws", w.handleWebSocket)

	accessLog := zap.NewStdLog(w.logger).Writer()
	return handlers.RecoveryHandler()(handlers.LoggingHandler(accessLog, router))
}

// Start binds the listen address and serves in the background until
// Shutdown is called. Bind failures are returned.
func (w *Web) Start() error {
	listener, err := net.Listen("tcp", w.addr)
	if err != nil {
		return fmt.Errorf("web panel: %w", err)
	}

	w.mu.Lock()
	w.listener = listener
	w.mu.Unlock()

	w.server = &http.Server{
		Handler:           w.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	w.logger.Info("Web panel listening", zap.Stringer("addr", listener.Addr()))
	go func() {
		if err := w.server.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			w.logger.Error("Web panel stopped", zap.Error(err))
		}
	}()

	return nil
}

// Addr returns the bound address once Start has succeeded, else the
// configured one
func (w *Web) Addr() string {
	w.mu.RLock()
	defer w.mu.RUnlock()

	if w.listener != nil {
		return w.listener.Addr().String()
	}
	return w.addr
}

// Shutdown stops the server and drops websocket clients
func (w *Web) Shutdown(ctx context.Context) error {
	w.clientsMu.Lock()
	for conn := range w.clients {
		_ = conn.Close()
		delete(w.clients, conn)
	}
	w.clientsMu.Unlock()

	if w.server == nil {
		return nil
	}
	return w.server.Shutdown(ctx)
}

// SetLabel implements Panel
func (w *Web) SetLabel(label string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.pending.label = label
}

// SetTooltip implements Panel
func (w *Web) SetTooltip(tooltip string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.pending.tooltip = tooltip
}

// SetStyle implements Panel
func (w *Web) SetStyle(category models.ColorCategory, color string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.pending.category = category
	w.pending.color = color
}

// Commit publishes the accumulated state and broadcasts it
func (w *Web) Commit() {
	w.mu.Lock()
	w.current = w.pending.snapshot()
	w.current.UpdatedAt = time.Now()
	current := w.current
	w.mu.Unlock()

	data, err := json.Marshal(current)
	if err != nil {
		w.logger.Error("Failed to marshal display state", zap.Error(err))
		return
	}

	w.clientsMu.Lock()
	defer w.clientsMu.Unlock()

	for conn := range w.clients {
		if err := conn.WriteMessage(websocket.TextMessage, data); err != nil {
			w.logger.Debug("Dropping websocket client", zap.Error(err))
			_ = conn.Close()
			delete(w.clients, conn)
		}
	}
}

// Current returns the last committed state
func (w *Web) Current() models.DisplayState {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.current
}

func (w *Web) handleRoot(rw http.ResponseWriter, _ *http.Request) {
	current := w.Current()

	rw.Header().Set("Content-Type", "text/plain; charset=utf-8")
	fmt.Fprintf(rw, "%s\n\n%s\n", current.Label, current.Tooltip)
}

func (w *Web) handleDisplay(rw http.ResponseWriter, _ *http.Request) {
	rw.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(rw).Encode(w.Current()); err != nil {
		w.logger.Error("Failed to encode display state", zap.Error(err))
	}
}

func (w *Web) handleRefresh(rw http.ResponseWriter, _ *http.Request) {
	w.mu.RLock()
	refresh := w.refresh
	w.mu.RUnlock()

	if refresh == nil {
		http.Error(rw, "refresh not available", http.StatusServiceUnavailable)
		return
	}

	refresh()
	rw.WriteHeader(http.StatusAccepted)
}

func (w *Web) handleWebSocket(rw http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(rw, r, nil)
	if err != nil {
		w.logger.Warn("Failed to upgrade connection", zap.Error(err))
		return
	}

	w.clientsMu.Lock()
	w.clients[conn] = true
	err = conn.WriteJSON(w.Current())
	w.clientsMu.Unlock()

	if err != nil {
		w.removeClient(conn)
		return
	}

	// Drain reads so close frames are processed
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			break
		}
	}
	w.removeClient(conn)
}

func (w *Web) removeClient(conn *websocket.Conn) {
	w.clientsMu.Lock()
	defer w.clientsMu.Unlock()

	if w.clients[conn] {
		delete(w.clients, conn)
		_ = conn.Close()
	}
}
