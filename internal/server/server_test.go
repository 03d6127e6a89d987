package server

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/jpalmerr/redux"
	"github.com/jpalmerr/redux/counter"
	"github.com/jpalmerr/redux/internal/driver"
	"github.com/jpalmerr/redux/internal/hub"
)

// testLogger returns a logger that discards all output for clean test output.
func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// mockDispatcher implements Dispatcher for testing.
type mockDispatcher struct {
	mu       sync.Mutex
	received []counter.Action
	tally    counter.Tally
	err      error
}

func (m *mockDispatcher) Submit(_ context.Context, action counter.Action) (counter.Tally, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return counter.Tally{}, m.err
	}
	m.received = append(m.received, action)
	m.tally = counter.ReduceTally(m.tally, action)
	return m.tally, nil
}

func (m *mockDispatcher) actions() []counter.Action {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]counter.Action(nil), m.received...)
}

func newTestServer(d Dispatcher) (*Server, *hub.MemoryHub) {
	h := hub.NewMemoryHub(0)
	return NewServer(h, d, 0, "", testLogger()), h
}

// --- Tests ---

func TestHandleIndex(t *testing.T) {
	srv, _ := newTestServer(&mockDispatcher{})

	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
	}
	if !strings.Contains(rec.Body.String(), defaultTitle) {
		t.Errorf("index should contain default title, got: %s", rec.Body.String())
	}

	rec = httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/missing", nil))
	if rec.Code != http.StatusNotFound {
		t.Errorf("status for unknown path = %d, want %d", rec.Code, http.StatusNotFound)
	}
}

func TestHandleState(t *testing.T) {
	srv, h := newTestServer(&mockDispatcher{})
	h.Publish(hub.NewSnapshot(3, 42, "increment:2"))

	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/state", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("Content-Type = %q, want application/json", ct)
	}

	var snap hub.Snapshot
	if err := json.NewDecoder(rec.Body).Decode(&snap); err != nil {
		t.Fatalf("decode error = %v", err)
	}
	if snap.State != 42 || snap.Seq != 3 || snap.Action != "increment:2" {
		t.Errorf("snapshot = %+v, want state 42 seq 3 action increment:2", snap)
	}
}

func TestHandleState_MethodNotAllowed(t *testing.T) {
	srv, _ := newTestServer(&mockDispatcher{})

	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/state", nil))

	if rec.Code != http.StatusMethodNotAllowed {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusMethodNotAllowed)
	}
}

func TestHandleDispatch(t *testing.T) {
	md := &mockDispatcher{}
	srv, _ := newTestServer(md)

	body := strings.NewReader(`{"kind":"increment","amount":5}`)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/dispatch", body))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d (body: %s)", rec.Code, http.StatusOK, rec.Body.String())
	}

	var resp dispatchResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode error = %v", err)
	}
	if resp.State != 5 {
		t.Errorf("State = %d, want %d", resp.State, 5)
	}
	if resp.Seq != 1 {
		t.Errorf("Seq = %d, want %d", resp.Seq, 1)
	}
	if resp.Action != "increment:5" {
		t.Errorf("Action = %q, want %q", resp.Action, "increment:5")
	}

	got := md.actions()
	if len(got) != 1 || got[0] != counter.Increment(5) {
		t.Errorf("dispatcher received %v, want [increment:5]", got)
	}
}

func TestHandleDispatch_BadRequests(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		wantErr string
	}{
		{name: "malformed json", body: `{"kind":`, wantErr: "invalid action"},
		{name: "unknown field", body: `{"kind":"increment","amount":1,"extra":true}`, wantErr: "invalid action"},
		{name: "unknown kind", body: `{"kind":"reset","amount":1}`, wantErr: "unknown action kind"},
		{name: "missing kind", body: `{"amount":1}`, wantErr: "kind is required"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			md := &mockDispatcher{}
			srv, _ := newTestServer(md)

			rec := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodPost, "/api/dispatch", strings.NewReader(tt.body))
			srv.Handler().ServeHTTP(rec, req)

			if rec.Code != http.StatusBadRequest {
				t.Fatalf("status = %d, want %d", rec.Code, http.StatusBadRequest)
			}
			if !strings.Contains(rec.Body.String(), tt.wantErr) {
				t.Errorf("body = %s, want containing %q", rec.Body.String(), tt.wantErr)
			}
			if len(md.actions()) != 0 {
				t.Error("invalid action should not reach the dispatcher")
			}
		})
	}
}

func TestHandleDispatch_MethodNotAllowed(t *testing.T) {
	srv, _ := newTestServer(&mockDispatcher{})

	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/dispatch", nil))

	if rec.Code != http.StatusMethodNotAllowed {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusMethodNotAllowed)
	}
}

func TestHandleDispatch_DispatcherErrors(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
	}{
		{name: "stopped", err: driver.ErrStopped, wantStatus: http.StatusServiceUnavailable},
		{name: "cancelled", err: context.Canceled, wantStatus: http.StatusServiceUnavailable},
		{name: "panic", err: errors.New("dispatch panic (correlation_id: abc): boom"), wantStatus: http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv, _ := newTestServer(&mockDispatcher{err: tt.err})

			rec := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodPost, "/api/dispatch", strings.NewReader(`{"kind":"decrement","amount":1}`))
			srv.Handler().ServeHTTP(rec, req)

			if rec.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", rec.Code, tt.wantStatus)
			}

			var resp errorResponse
			if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
				t.Fatalf("decode error = %v", err)
			}
			if resp.Error != tt.err.Error() {
				t.Errorf("Error = %q, want %q", resp.Error, tt.err.Error())
			}
		})
	}
}

func TestHandleSSE_InitialSnapshot(t *testing.T) {
	srv, h := newTestServer(&mockDispatcher{})
	initial := h.Latest()

	ctx, cancel := context.WithTimeout(context.Background(), 200*time.Millisecond)
	defer cancel()

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/sse", nil).WithContext(ctx)
	srv.handleSSE(rec, req)

	body := rec.Body.String()
	if !strings.Contains(body, "id: "+initial.ID) {
		t.Errorf("response should contain initial snapshot id, got: %s", body)
	}
	if !strings.Contains(body, `"state":0`) {
		t.Errorf("response should contain initial state, got: %s", body)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "text/event-stream" {
		t.Errorf("Content-Type = %q, want text/event-stream", ct)
	}
}

func TestHandleSSE_StreamsUpdates(t *testing.T) {
	srv, h := newTestServer(&mockDispatcher{})

	ctx, cancel := context.WithTimeout(context.Background(), 500*time.Millisecond)
	defer cancel()

	go func() {
		time.Sleep(50 * time.Millisecond)
		h.Publish(hub.NewSnapshot(1, 1, "increment:1"))
		h.Publish(hub.NewSnapshot(2, -1, "decrement:2"))
	}()

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/sse", nil).WithContext(ctx)
	srv.handleSSE(rec, req)

	body := rec.Body.String()
	first := strings.Index(body, `"action":"increment:1"`)
	second := strings.Index(body, `"action":"decrement:2"`)
	if first == -1 || second == -1 {
		t.Fatalf("response should contain both updates, got: %s", body)
	}
	if first > second {
		t.Errorf("updates out of order: %s", body)
	}
}

func TestServer_StartEndToEnd(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	store := counter.NewTallyStore(0, redux.WithLogger(testLogger()))
	h := hub.NewMemoryHub(0)
	store.Subscribe(hub.Subscriber(h))

	d := driver.New(store, 8, testLogger())
	d.Start(ctx)
	defer d.Stop()

	srv := NewServer(h, d, 0, "Test Counter", testLogger())
	addr, err := srv.Start(ctx)
	if err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	port := addr.(*net.TCPAddr).Port
	base := fmt.Sprintf("http://127.0.0.1:%d", port)

	// open the SSE stream first
	sseReq, _ := http.NewRequestWithContext(ctx, http.MethodGet, base+"/api/sse", nil)
	sseResp, err := http.DefaultClient.Do(sseReq)
	if err != nil {
		t.Fatalf("GET /api/sse error = %v", err)
	}
	defer sseResp.Body.Close()
	events := bufio.NewReader(sseResp.Body)

	// initial snapshot
	if line := readDataLine(t, events); !strings.Contains(line, `"state":0`) {
		t.Fatalf("first event = %s, want state 0", line)
	}

	for _, body := range []string{`{"kind":"increment","amount":1}`, `{"kind":"decrement","amount":2}`} {
		resp, err := http.Post(base+"/api/dispatch", "application/json", strings.NewReader(body))
		if err != nil {
			t.Fatalf("POST /api/dispatch error = %v", err)
		}
		_ = resp.Body.Close()
		if resp.StatusCode != http.StatusOK {
			t.Fatalf("POST /api/dispatch status = %d", resp.StatusCode)
		}
	}

	if line := readDataLine(t, events); !strings.Contains(line, `"state":1`) {
		t.Errorf("second event = %s, want state 1", line)
	}
	if line := readDataLine(t, events); !strings.Contains(line, `"state":-1`) {
		t.Errorf("third event = %s, want state -1", line)
	}

	resp, err := http.Get(base + "/api/state")
	if err != nil {
		t.Fatalf("GET /api/state error = %v", err)
	}
	defer resp.Body.Close()

	var snap hub.Snapshot
	if err := json.NewDecoder(resp.Body).Decode(&snap); err != nil {
		t.Fatalf("decode error = %v", err)
	}
	if snap.State != -1 || snap.Seq != 2 || snap.Action != "decrement:2" {
		t.Errorf("snapshot = %+v, want state -1 seq 2 action decrement:2", snap)
	}
}

// readDataLine reads SSE lines until a data line arrives.
func readDataLine(t *testing.T, r *bufio.Reader) string {
	t.Helper()

	lines := make(chan string, 1)
	errs := make(chan error, 1)
	go func() {
		for {
			line, err := r.ReadString('\n')
			if err != nil {
				errs <- err
				return
			}
			if strings.HasPrefix(line, "data: ") {
				lines <- line
				return
			}
		}
	}()

	select {
	case line := <-lines:
		return line
	case err := <-errs:
		t.Fatalf("reading SSE stream: %v", err)
	case <-time.After(2 * time.Second):
		t.Fatal("timeout waiting for SSE event")
	}
	return ""
}
