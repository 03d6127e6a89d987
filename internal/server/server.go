package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/jpalmerr/redux/counter"
	"github.com/jpalmerr/redux/internal/driver"
	"github.com/jpalmerr/redux/internal/hub"
)

const (
	// sseWriteTimeout is the maximum time allowed for a single SSE write operation.
	// This prevents goroutine leaks when clients are slow or disconnected.
	sseWriteTimeout = 5 * time.Second

	// shutdownTimeout bounds graceful shutdown of in-flight requests.
	shutdownTimeout = 5 * time.Second

	// maxBodyBytes limits the size of a dispatch request body.
	maxBodyBytes = 1 << 20

	// defaultTitle is used when no custom title is configured.
	defaultTitle = "Counter"
)

// Dispatcher applies an action to the store and returns the resulting state.
type Dispatcher interface {
	Submit(ctx context.Context, action counter.Action) (counter.Tally, error)
}

// dispatchResponse is the body returned by a successful dispatch.
type dispatchResponse struct {
	State  int    `json:"state"`
	Seq    uint64 `json:"seq"`
	Action string `json:"action"`
}

// errorResponse is the body returned for a failed request.
type errorResponse struct {
	Error string `json:"error"`
}

// Server handles HTTP requests for a counter service.
//
// Server provides four endpoints:
//   - GET /: Plain-text index
//   - GET /api/state: Latest snapshot as JSON
//   - POST /api/dispatch: Apply a JSON action
//   - GET /api/sse: Server-Sent Events stream of snapshots
type Server struct {
	hub        hub.Hub
	dispatcher Dispatcher
	port       int
	httpServer *http.Server
	title      string
	logger     *slog.Logger
}

// NewServer creates a new HTTP [Server].
//
// Parameters:
//   - h: Hub providing the latest snapshot and update stream
//   - d: Dispatcher that applies actions
//   - port: TCP port to listen on (0 picks a free port)
//   - title: Service title (defaults to "Counter" if empty)
//   - logger: Logger for server events
//
// The server is not started until [Server.Start] is called.
func NewServer(h hub.Hub, d Dispatcher, port int, title string, logger *slog.Logger) *Server {
	if title == "" {
		title = defaultTitle
	}
	return &Server{
		hub:        h,
		dispatcher: d,
		port:       port,
		title:      title,
		logger:     logger,
	}
}

// Handler returns the server's request router.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/", s.handleIndex)
	mux.HandleFunc("/api/state", s.handleState)
	mux.HandleFunc("/api/dispatch", s.handleDispatch)
	mux.HandleFunc("/api/sse", s.handleSSE)
	return mux
}

// Start begins serving HTTP requests in a background goroutine.
//
// Start is non-blocking and returns once the listener is bound. The server
// runs until ctx is cancelled, then shuts down gracefully.
//
// Returns the bound address, or an error if the server fails to bind.
func (s *Server) Start(ctx context.Context) (net.Addr, error) {
	// create listener first to verify port availability synchronously
	addr := fmt.Sprintf(":%d", s.port)
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("failed to bind to port %d: %w", s.port, err)
	}

	s.httpServer = &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		// request contexts derive from ctx so SSE handlers exit on shutdown
		BaseContext: func(_ net.Listener) context.Context {
			return ctx
		},
	}

	go func() {
		if err := s.httpServer.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("http server error", "error", err)
		}
	}()

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
			s.logger.Error("http server shutdown error", "error", err)
		}
	}()

	return ln.Addr(), nil
}

// handleIndex describes the available endpoints.
func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, err := fmt.Fprintf(w, "%s\n\n  GET  /api/state\n  POST /api/dispatch\n  GET  /api/sse\n", s.title)
	if err != nil {
		s.logger.Error("failed to write index response", "error", err)
	}
}

// handleState returns the latest snapshot as JSON.
func (s *Server) handleState(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	w.Header().Set("Cache-Control", "no-cache")
	s.writeJSON(w, http.StatusOK, s.hub.Latest())
}

// handleDispatch decodes an action and applies it through the dispatcher.
func (s *Server) handleDispatch(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var action counter.Action
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&action); err != nil {
		s.writeJSON(w, http.StatusBadRequest, errorResponse{Error: fmt.Sprintf("invalid action: %v", err)})
		return
	}
	if err := action.Validate(); err != nil {
		s.writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}

	tally, err := s.dispatcher.Submit(r.Context(), action)
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, driver.ErrStopped) || errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			status = http.StatusServiceUnavailable
		}
		s.logger.Warn("dispatch failed", "action", action.String(), "error", err)
		s.writeJSON(w, status, errorResponse{Error: err.Error()})
		return
	}

	s.logger.Debug("dispatch applied", "action", action.String(), "state", tally.Value, "seq", tally.Seq)
	s.writeJSON(w, http.StatusOK, dispatchResponse{State: tally.Value, Seq: tally.Seq, Action: action.String()})
}

// writeJSON encodes v with the given status code.
func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error("failed to encode response", "error", err)
	}
}

// handleSSE streams snapshots via Server-Sent Events.
//
// Each event carries the snapshot ID as its SSE id. Write deadlines keep a
// slow or disconnected client from blocking the handler forever.
func (s *Server) handleSSE(w http.ResponseWriter, r *http.Request) {
	if _, ok := w.(http.Flusher); !ok {
		http.Error(w, "SSE not supported", http.StatusInternalServerError)
		return
	}

	rc := http.NewResponseController(w)

	// may not be supported by some ResponseWriter impls (e.g. httptest.ResponseRecorder)
	deadlinesSupported := true

	writeAndFlush := func(snap hub.Snapshot) error {
		data, err := json.Marshal(snap)
		if err != nil {
			return err
		}

		if deadlinesSupported {
			if err := rc.SetWriteDeadline(time.Now().Add(sseWriteTimeout)); err != nil {
				s.logger.Warn("sse write deadlines not supported", "error", err)
				deadlinesSupported = false
			}
		}

		if _, err := fmt.Fprintf(w, "id: %s\ndata: %s\n\n", snap.ID, data); err != nil {
			return err
		}
		return rc.Flush()
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("Access-Control-Allow-Origin", "*")

	// subscribe before reading the latest snapshot so no update is lost in between
	ch := s.hub.Subscribe()
	defer s.hub.Unsubscribe(ch)

	latest := s.hub.Latest()
	if err := writeAndFlush(latest); err != nil {
		return
	}

	for {
		select {
		case snap, ok := <-ch:
			if !ok {
				return
			}
			// skip anything already covered by the initial snapshot
			if snap.Seq <= latest.Seq {
				continue
			}
			if err := writeAndFlush(snap); err != nil {
				return
			}

		case <-r.Context().Done():
			// fires on both client disconnect and server shutdown
			return
		}
	}
}
