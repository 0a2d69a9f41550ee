package sink

import (
	"context"
	"crypto/tls"
	"fmt"
	"net/url"
	"time"

	"github.com/specialistvlad/opgrid/internal/ctxlog"
	"github.com/specialistvlad/opgrid/internal/progress"
	"github.com/zishang520/engine.io-client-go/transports"
	"github.com/zishang520/engine.io/v2/types"
	"github.com/zishang520/socket.io-client-go/socket"
)

// DefaultEvent is the socket.io event snapshots are published under.
const DefaultEvent = "progress"

// SocketIOConfig configures a socket.io publisher.
type SocketIOConfig struct {
	URL                string
	Namespace          string
	Event              string
	InsecureSkipVerify bool
	// ConnectTimeout bounds the initial connection. Zero means 15s.
	ConnectTimeout time.Duration
}

// SocketIO publishes snapshots to a socket.io server.
type SocketIO struct {
	io    *socket.Socket
	event string
}

// DialSocketIO connects to the server and waits for the connection to be
// established.
func DialSocketIO(ctx context.Context, cfg SocketIOConfig) (*SocketIO, error) {
	logger := ctxlog.FromContext(ctx).With("sink", "socketio", "url", cfg.URL)
	logger.Info("Connecting progress publisher...")

	parsedURL, err := url.Parse(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse URL: %w", err)
	}
	if parsedURL.Scheme == "" || parsedURL.Host == "" {
		return nil, fmt.Errorf("failed to parse URL: %q is not absolute", cfg.URL)
	}
	timeout := cfg.ConnectTimeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	event := cfg.Event
	if event == "" {
		event = DefaultEvent
	}

	opts := socket.DefaultOptions()
	opts.SetPath(parsedURL.Path)
	if cfg.InsecureSkipVerify {
		logger.Warn("Skipping TLS certificate verification")
		opts.SetTLSClientConfig(&tls.Config{InsecureSkipVerify: true})
	}
	opts.SetTransports(types.NewSet(transports.WebSocket))
	opts.SetReconnection(false)

	connectChan := make(chan error, 1)

	baseURL := fmt.Sprintf("%s://%s", parsedURL.Scheme, parsedURL.Host)
	manager := socket.NewManager(baseURL, opts)
	io := manager.Socket(cfg.Namespace, opts)

	io.Once(types.EventName("connect"), func(...any) {
		logger.Info("Successfully connected", "sid", io.Id())
		connectChan <- nil
	})
	io.Once(types.EventName("connect_error"), func(errs ...any) {
		err, _ := errs[0].(error)
		if err == nil {
			err = fmt.Errorf("%v", errs[0])
		}
		logger.Debug("EVENT HANDLER: 'connect_error' event fired", "error", err)
		connectChan <- err
	})

	io.Connect()

	select {
	case err := <-connectChan:
		if err != nil {
			io.Disconnect()
			return nil, fmt.Errorf("socket.io connection failed: %w", err)
		}
		return &SocketIO{io: io, event: event}, nil
	case <-ctx.Done():
		io.Disconnect()
		return nil, fmt.Errorf("context cancelled while waiting for socket.io connection")
	case <-time.After(timeout):
		io.Disconnect()
		return nil, fmt.Errorf("timed out after %v waiting for socket.io connection", timeout)
	}
}

// Message is the payload of each published event.
type Message struct {
	Stages   []string  `json:"stages"`
	Progress []float64 `json:"progress"`
	Overall  float64   `json:"overall"`
}

// NewMessage builds the event payload for a snapshot.
func NewMessage(stages []string, fractions []float64) Message {
	s := progress.Snapshot{Stages: stages, Progress: fractions}
	return Message{Stages: stages, Progress: fractions, Overall: s.Overall()}
}

// Sink returns a progress.Sink that emits each snapshot as a volatile event.
// Publishing is best effort: network failures are logged and never abort
// the run.
func (s *SocketIO) Sink() progress.Sink {
	return func(ctx context.Context, stages []string, fractions []float64) error {
		if !s.io.Connected() {
			ctxlog.FromContext(ctx).Debug("Progress publisher disconnected, dropping snapshot.")
			return nil
		}
		if err := s.io.Volatile().Emit(s.event, NewMessage(stages, fractions)); err != nil {
			ctxlog.FromContext(ctx).Warn("Failed to publish progress snapshot.", "error", err)
		}
		return nil
	}
}

// Close disconnects from the server.
func (s *SocketIO) Close() error {
	s.io.Disconnect()
	return nil
}
