package dirigera

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
)

// testLogger discards everything.
type testLogger struct{}

func (testLogger) Debug(string, ...any) {}
func (testLogger) Info(string, ...any)  {}
func (testLogger) Warn(string, ...any)  {}
func (testLogger) Error(string, ...any) {}

// wsURL rewrites an httptest TLS server URL to its WebSocket form.
func wsURL(srv *httptest.Server) string {
	return "wss" + strings.TrimPrefix(srv.URL, "https")
}

func TestListenOnce_DeliversMessages(t *testing.T) {
	upgrader := websocket.Upgrader{}
	srv := httptest.NewTLSServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer test-token" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			t.Errorf("upgrading: %v", err)
			return
		}
		defer conn.Close()

		if err := conn.WriteMessage(websocket.TextMessage, []byte(`{"type":"deviceStateChanged"}`)); err != nil {
			t.Errorf("writing message: %v", err)
			return
		}

		// Hold the connection open until the client drops it.
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}))
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	received := make(chan []byte, 1)
	listener := &Listener{
		url:   wsURL(srv),
		token: "test-token",
		handler: func(payload []byte) {
			received <- payload
			cancel()
		},
		logger: testLogger{},
	}

	err := listener.listenOnce(ctx)
	if !errors.Is(err, context.Canceled) {
		t.Errorf("listenOnce() = %v, want context.Canceled", err)
	}

	select {
	case payload := <-received:
		if string(payload) != `{"type":"deviceStateChanged"}` {
			t.Errorf("payload = %s", payload)
		}
	default:
		t.Fatal("no message delivered")
	}
}

func TestListenOnce_Unauthorized(t *testing.T) {
	srv := httptest.NewTLSServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	listener := &Listener{
		url:     wsURL(srv),
		token:   "wrong",
		handler: func([]byte) {},
		logger:  testLogger{},
	}

	err := listener.listenOnce(context.Background())
	if !errors.Is(err, ErrUnauthorized) {
		t.Errorf("listenOnce() = %v, want ErrUnauthorized", err)
	}
}

func TestRun_StopsOnCancel(t *testing.T) {
	// No server: the dial fails, Run waits for the reconnect delay or the
	// context, whichever comes first.
	listener := &Listener{
		url:     "wss://127.0.0.1:1/v1",
		token:   "test-token",
		handler: func([]byte) {},
		logger:  testLogger{},
	}

	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan error, 1)
	go func() { done <- listener.Run(ctx) }()

	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		if !errors.Is(err, context.Canceled) {
			t.Errorf("Run() = %v, want context.Canceled", err)
		}
	case <-time.After(time.Second):
		t.Fatal("Run() did not return after cancellation")
	}
}
