package channel

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	evbus "github.com/asaskevich/EventBus"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"finboard-go/internal/platform/config"
	perrors "finboard-go/internal/platform/errors"
	"finboard-go/internal/platform/logging"
)

// Frame is the wire format of one named notification.
type Frame struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data,omitempty"`
}

// Handler receives the raw payload of a named notification. Handlers run
// synchronously on the read loop: a handler returns before the next frame is
// dispatched, so cache mutations never interleave.
type Handler func(data json.RawMessage)

// Client keeps one persistent connection to the realtime boundary, dispatching
// named notifications to subscribed handlers and reconnecting on transport
// loss with unlimited retries. No ordering is guaranteed across a reconnect
// gap; entries created during a disconnect only show up on the next refetch.
type Client struct {
	url              string
	clientID         string
	reconnectInitial time.Duration
	reconnectMax     time.Duration
	logger           *logging.Logger

	bus evbus.Bus

	mu        sync.Mutex
	conn      *websocket.Conn
	cancel    context.CancelFunc
	done      chan struct{}
	connected atomic.Bool
}

// New builds a realtime channel client. Connect starts it.
func New(cfg config.ChannelConfig, logger *logging.Logger) *Client {
	initial := cfg.ReconnectInitial
	if initial <= 0 {
		initial = time.Second
	}
	max := cfg.ReconnectMax
	if max < initial {
		max = 30 * time.Second
	}
	return &Client{
		url:              cfg.URL,
		clientID:         uuid.New().String(),
		reconnectInitial: initial,
		reconnectMax:     max,
		logger:           logger,
		bus:              evbus.New(),
	}
}

// On subscribes a handler to a named notification.
func (c *Client) On(topic string, handler Handler) error {
	return c.bus.Subscribe(topic, handler)
}

// Off removes a previously subscribed handler.
func (c *Client) Off(topic string, handler Handler) error {
	return c.bus.Unsubscribe(topic, handler)
}

// Emit pushes a lightweight "something changed" signal to the server. It is
// an optimistic hint, never an authoritative command: a send on a disconnected
// channel is an error the caller may ignore.
func (c *Client) Emit(topic string, payload interface{}) error {
	var data json.RawMessage
	if payload != nil {
		encoded, err := json.Marshal(payload)
		if err != nil {
			return perrors.Wrap(perrors.KindData, "channel.emit", "encode payload", err)
		}
		data = encoded
	}

	frame, err := json.Marshal(Frame{Event: topic, Data: data})
	if err != nil {
		return perrors.Wrap(perrors.KindData, "channel.emit", "encode frame", err)
	}

	c.mu.Lock()
	conn := c.conn
	c.mu.Unlock()
	if conn == nil {
		return perrors.New(perrors.KindChannel, "channel.emit", "not connected")
	}
	if err := conn.WriteMessage(websocket.TextMessage, frame); err != nil {
		return perrors.Wrap(perrors.KindChannel, "channel.emit", "write frame", err)
	}
	return nil
}

// Connect starts the connection loop. Calling it twice restarts the loop.
func (c *Client) Connect(ctx context.Context) {
	c.Close()

	runCtx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})

	c.mu.Lock()
	c.cancel = cancel
	c.done = done
	c.mu.Unlock()

	go c.run(runCtx, done)
}

// Connected reports whether a connection is currently established.
func (c *Client) Connected() bool {
	return c.connected.Load()
}

// Close stops the connection loop and drops the current connection.
func (c *Client) Close() {
	c.mu.Lock()
	cancel := c.cancel
	done := c.done
	conn := c.conn
	c.cancel = nil
	c.done = nil
	c.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	if conn != nil {
		_ = conn.Close()
	}
	if done != nil {
		<-done
	}
}

func (c *Client) run(ctx context.Context, done chan struct{}) {
	defer close(done)

	backoff := c.reconnectInitial
	for {
		// the client id survives reconnects, so the server can tell a
		// returning dashboard from a new one
		header := http.Header{"X-Client-ID": []string{c.clientID}}
		conn, _, err := websocket.DefaultDialer.DialContext(ctx, c.url, header)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			if c.logger != nil {
				c.logger.Debug("channel: dial %s failed: %v", c.url, err)
			}
			select {
			case <-ctx.Done():
				return
			case <-time.After(backoff):
			}
			backoff *= 2
			if backoff > c.reconnectMax {
				backoff = c.reconnectMax
			}
			continue
		}

		backoff = c.reconnectInitial
		c.setConn(conn)
		if c.logger != nil {
			c.logger.Info("channel: connected to %s", c.url)
		}

		c.readLoop(conn)

		c.setConn(nil)
		if ctx.Err() != nil {
			return
		}
		if c.logger != nil {
			c.logger.Warn("channel: connection lost, reconnecting")
		}
	}
}

func (c *Client) readLoop(conn *websocket.Conn) {
	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			_ = conn.Close()
			return
		}

		var frame Frame
		if err := json.Unmarshal(data, &frame); err != nil || frame.Event == "" {
			// malformed frames are skipped, never fatal
			if c.logger != nil {
				c.logger.Debug("channel: dropping malformed frame")
			}
			continue
		}

		c.bus.Publish(frame.Event, frame.Data)
	}
}

func (c *Client) setConn(conn *websocket.Conn) {
	c.mu.Lock()
	c.conn = conn
	c.mu.Unlock()
	c.connected.Store(conn != nil)
}
