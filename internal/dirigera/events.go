package dirigera

import (
	"context"
	"crypto/tls"
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/nerrad567/dirigera-bridge/internal/infrastructure/config"
)

// Listener constants.
const (
	// reconnectDelay is the wait between WebSocket reconnect attempts.
	reconnectDelay = 10 * time.Second

	// dialTimeout bounds the WebSocket handshake.
	dialTimeout = 10 * time.Second
)

// EventHandler receives each raw WebSocket message payload.
//
// Handlers are invoked sequentially per connection. A reconnect may briefly
// overlap the tail of a prior session, so the same event can be delivered
// twice; consumers must tolerate re-delivery.
type EventHandler func(payload []byte)

// Logger is the logging interface used by the Listener.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

// Listener maintains a WebSocket connection to the hub's event stream and
// hands every message to the handler. It reconnects on failure with a fixed
// delay and stops only when the context is cancelled.
type Listener struct {
	url     string
	token   string
	handler EventHandler
	logger  Logger
}

// NewListener creates an event listener for the hub.
func NewListener(cfg config.DirigeraConfig, handler EventHandler, logger Logger) *Listener {
	return &Listener{
		url:     fmt.Sprintf("wss://%s:%d/v1", cfg.IP, cfg.Port),
		token:   cfg.Token,
		handler: handler,
		logger:  logger,
	}
}

// Run connects to the hub's event stream and dispatches messages until the
// context is cancelled. Connection failures are logged and retried; Run only
// returns the context's error.
//
// Parameters:
//   - ctx: Cancelling this context closes the connection and stops the loop.
//
// Returns:
//   - error: ctx.Err() after cancellation
func (l *Listener) Run(ctx context.Context) error {
	for {
		if err := l.listenOnce(ctx); err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			l.logger.Error("event stream disconnected", "error", err)
		}

		l.logger.Info("reconnecting to event stream", "delay", reconnectDelay)
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(reconnectDelay):
		}
	}
}

// listenOnce dials the hub and reads messages until the connection drops or
// the context is cancelled.
func (l *Listener) listenOnce(ctx context.Context) error {
	dialer := websocket.Dialer{
		HandshakeTimeout: dialTimeout,
		TLSClientConfig: &tls.Config{
			InsecureSkipVerify: true, //nolint:gosec // hub uses a self-signed cert on the LAN
		},
	}

	header := http.Header{}
	header.Set("Authorization", "Bearer "+l.token)

	conn, resp, err := dialer.DialContext(ctx, l.url, header)
	if err != nil {
		if resp != nil && (resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden) {
			return ErrUnauthorized
		}
		return fmt.Errorf("dialing event stream: %w", err)
	}
	defer conn.Close()

	l.logger.Info("event stream connected", "url", l.url)

	// The blocking ReadMessage has no context support; closing the
	// connection from a watcher goroutine is the documented way to
	// interrupt it.
	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-ctx.Done():
			conn.Close()
		case <-done:
		}
	}()

	for {
		_, payload, err := conn.ReadMessage()
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return fmt.Errorf("reading event: %w", err)
		}
		l.handler(payload)
	}
}
