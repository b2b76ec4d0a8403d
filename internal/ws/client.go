// Package ws implements the reconnecting push-channel client. It owns a
// single logical WebSocket connection to the backend's medical-data feed,
// surfaces typed events to subscribers, and self-heals on drops with a fixed
// number of linear-delay retries.
package ws

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

// Event names dispatched to handlers registered with On.
const (
	EventConnected        = "connected"
	EventDisconnected     = "disconnected"
	EventConnectionFailed = "connection_failed"
	EventError            = "error"
	EventMedicalData      = "medical_data"
	EventEvacuationUpdate = "evacuation_update"
	EventAlert            = "alert"
)

// State is the connection lifecycle state.
type State int

const (
	StateDisconnected State = iota
	StateConnecting
	StateOpen
)

func (s State) String() string {
	switch s {
	case StateConnecting:
		return "connecting"
	case StateOpen:
		return "open"
	default:
		return "disconnected"
	}
}

// Conn is the minimal surface of a WebSocket connection the client needs.
// *websocket.Conn satisfies it; tests inject fakes.
type Conn interface {
	ReadMessage() (messageType int, p []byte, err error)
	WriteJSON(v any) error
	Close() error
}

// DialFunc opens a connection to the given URL.
type DialFunc func(ctx context.Context, url string) (Conn, error)

// Handler receives the raw `data` field of a dispatched frame. Lifecycle
// events (connected, disconnected, connection_failed) carry nil data; the
// error event carries the error text as a JSON string.
type Handler func(data json.RawMessage)

// Client maintains the push connection. All exported methods are safe for
// concurrent use; handlers are invoked outside the internal lock, one event
// at a time.
type Client struct {
	url  string
	dial DialFunc
	log  *zap.Logger

	maxReconnectAttempts int
	reconnectDelay       time.Duration

	mu                sync.Mutex
	conn              Conn
	state             State
	reconnectAttempts int
	reconnectTimer    *time.Timer
	// gen invalidates read loops and scheduled reconnects that belong to a
	// superseded connection, so a stale close cannot drive state.
	gen int

	handlerMu sync.Mutex
	handlers  map[string][]Handler
}

// Options tune a Client. Zero values select the defaults.
type Options struct {
	MaxReconnectAttempts int           // default 5
	ReconnectDelay       time.Duration // default 3s
	Dial                 DialFunc      // default gorilla dialer
	Logger               *zap.Logger   // default nop
}

// EndpointFromBase derives the push endpoint from the REST base URL:
// http becomes ws, https becomes wss, path /ws/medical_data/.
func EndpointFromBase(baseURL string) (string, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return "", fmt.Errorf("invalid base URL %q: %w", baseURL, err)
	}
	switch u.Scheme {
	case "http":
		u.Scheme = "ws"
	case "https":
		u.Scheme = "wss"
	case "ws", "wss":
	default:
		return "", fmt.Errorf("unsupported scheme %q", u.Scheme)
	}
	u.Path = strings.TrimRight(u.Path, "/") + "/ws/medical_data/"
	u.RawQuery = ""
	return u.String(), nil
}

// NewClient creates a client for the given push endpoint URL. No connection
// is opened until Connect.
func NewClient(wsURL string, opts Options) *Client {
	if opts.MaxReconnectAttempts <= 0 {
		opts.MaxReconnectAttempts = 5
	}
	if opts.ReconnectDelay <= 0 {
		opts.ReconnectDelay = 3 * time.Second
	}
	if opts.Dial == nil {
		opts.Dial = gorillaDial
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	return &Client{
		url:                  wsURL,
		dial:                 opts.Dial,
		log:                  opts.Logger,
		maxReconnectAttempts: opts.MaxReconnectAttempts,
		reconnectDelay:       opts.ReconnectDelay,
		handlers:             map[string][]Handler{},
	}
}

// gorillaDial is the production DialFunc.
func gorillaDial(ctx context.Context, wsURL string) (Conn, error) {
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, wsURL, nil)
	if err != nil {
		return nil, err
	}
	return conn, nil
}

// On registers a handler for the named event. Handlers registered for the
// same event run in registration order.
func (c *Client) On(event string, h Handler) {
	c.handlerMu.Lock()
	defer c.handlerMu.Unlock()
	c.handlers[event] = append(c.handlers[event], h)
}

// State returns the current connection state.
func (c *Client) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// ReconnectAttempts returns the current retry counter. Reset to zero on
// every successful open.
func (c *Client) ReconnectAttempts() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.reconnectAttempts
}

// Connect opens the connection, closing any existing one first: at most one
// live connection at a time. A pending reconnect is cancelled. The dial runs
// asynchronously; Connect never blocks on the network.
func (c *Client) Connect() {
	c.mu.Lock()
	c.stopReconnectTimerLocked()
	if c.conn != nil {
		_ = c.conn.Close()
		c.conn = nil
	}
	c.gen++
	gen := c.gen
	c.state = StateConnecting
	c.mu.Unlock()

	go c.dialAndServe(gen)
}

// dialAndServe performs one dial attempt and, on success, runs the read loop
// until the connection drops.
func (c *Client) dialAndServe(gen int) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	conn, err := c.dial(ctx, c.url)
	cancel()

	c.mu.Lock()
	if gen != c.gen {
		// Superseded by a newer Connect or a Disconnect while dialing.
		c.mu.Unlock()
		if conn != nil {
			_ = conn.Close()
		}
		return
	}
	if err != nil {
		c.log.Warn("websocket dial failed", zap.String("url", c.url), zap.Error(err))
		c.state = StateDisconnected
		c.mu.Unlock()
		c.emit(EventError, errData(err))
		c.emit(EventDisconnected, nil)
		c.scheduleReconnect(gen)
		return
	}

	c.conn = conn
	c.state = StateOpen
	c.reconnectAttempts = 0
	c.mu.Unlock()

	c.log.Info("websocket connected", zap.String("url", c.url))
	c.emit(EventConnected, nil)

	c.readLoop(conn, gen)
}

// readLoop parses and dispatches frames until the connection errors out.
func (c *Client) readLoop(conn Conn, gen int) {
	for {
		_, payload, err := conn.ReadMessage()
		if err != nil {
			c.handleClose(gen, err)
			return
		}
		c.dispatch(payload)
	}
}

// frame is the wire shape of a push message.
type frame struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
}

// dispatch parses one frame and emits it to subscribers. Unparseable
// payloads are logged and dropped; unrecognized types are dropped silently.
func (c *Client) dispatch(payload []byte) {
	var f frame
	if err := json.Unmarshal(payload, &f); err != nil {
		c.log.Warn("websocket message parse failed", zap.Error(err))
		return
	}
	switch f.Type {
	case EventMedicalData, EventEvacuationUpdate, EventAlert:
		c.emit(f.Type, f.Data)
	}
}

// handleClose runs when the read loop ends. A stale generation means the
// connection was already replaced or explicitly closed and must not trigger
// a reconnect.
func (c *Client) handleClose(gen int, err error) {
	c.mu.Lock()
	if gen != c.gen {
		c.mu.Unlock()
		return
	}
	c.log.Warn("websocket closed", zap.Error(err))
	if c.conn != nil {
		_ = c.conn.Close()
		c.conn = nil
	}
	c.state = StateDisconnected
	c.mu.Unlock()

	c.emit(EventDisconnected, nil)
	c.scheduleReconnect(gen)
}

// scheduleReconnect arms exactly one retry after the fixed delay, or emits
// connection_failed once the attempt cap is reached.
func (c *Client) scheduleReconnect(gen int) {
	c.mu.Lock()
	if gen != c.gen {
		c.mu.Unlock()
		return
	}
	if c.reconnectAttempts >= c.maxReconnectAttempts {
		c.mu.Unlock()
		c.log.Error("websocket reconnect attempts exhausted",
			zap.Int("attempts", c.maxReconnectAttempts))
		c.emit(EventConnectionFailed, nil)
		return
	}
	c.reconnectAttempts++
	attempt := c.reconnectAttempts
	c.stopReconnectTimerLocked()
	c.reconnectTimer = time.AfterFunc(c.reconnectDelay, func() {
		c.reconnect(gen, attempt)
	})
	c.mu.Unlock()
}

// reconnect reopens the connection without resetting the retry counter. The
// staleness check and the generation bump happen under one lock acquisition,
// so a Disconnect racing with an already-fired timer always wins.
func (c *Client) reconnect(gen, attempt int) {
	c.mu.Lock()
	if gen != c.gen {
		c.mu.Unlock()
		return
	}
	if c.conn != nil {
		_ = c.conn.Close()
		c.conn = nil
	}
	c.gen++
	newGen := c.gen
	c.state = StateConnecting
	c.mu.Unlock()

	c.log.Info("websocket reconnecting",
		zap.Int("attempt", attempt), zap.Int("max", c.maxReconnectAttempts))
	go c.dialAndServe(newGen)
}

// Disconnect closes the connection and cancels any pending reconnect.
// Explicit disconnects are terminal, never retried. Idempotent.
func (c *Client) Disconnect() {
	c.mu.Lock()
	c.stopReconnectTimerLocked()
	c.gen++
	if c.conn != nil {
		_ = c.conn.Close()
		c.conn = nil
	}
	c.state = StateDisconnected
	c.mu.Unlock()
}

// stopReconnectTimerLocked cancels the pending reconnect timer, if any.
// Caller holds c.mu.
func (c *Client) stopReconnectTimerLocked() {
	if c.reconnectTimer != nil {
		c.reconnectTimer.Stop()
		c.reconnectTimer = nil
	}
}

// controlFrame is the shape of outbound subscription messages.
type controlFrame struct {
	Action    string `json:"action"`
	SoldierID string `json:"soldier_id"`
}

// SubscribeSoldier asks the server to push updates for one soldier.
// Fire-and-forget: a no-op unless the connection is currently open.
func (c *Client) SubscribeSoldier(soldierID string) {
	c.send(controlFrame{Action: "subscribe_soldier", SoldierID: soldierID})
}

// UnsubscribeSoldier cancels a per-soldier subscription. Same fire-and-forget
// semantics as SubscribeSoldier.
func (c *Client) UnsubscribeSoldier(soldierID string) {
	c.send(controlFrame{Action: "unsubscribe_soldier", SoldierID: soldierID})
}

func (c *Client) send(f controlFrame) {
	if f.SoldierID == "" {
		return
	}
	c.mu.Lock()
	conn := c.conn
	open := c.state == StateOpen
	c.mu.Unlock()
	if !open || conn == nil {
		return
	}
	if err := conn.WriteJSON(f); err != nil {
		c.log.Warn("websocket send failed",
			zap.String("action", f.Action), zap.Error(err))
	}
}

// emit invokes the handlers registered for event, outside any lock.
func (c *Client) emit(event string, data json.RawMessage) {
	c.handlerMu.Lock()
	hs := make([]Handler, len(c.handlers[event]))
	copy(hs, c.handlers[event])
	c.handlerMu.Unlock()
	for _, h := range hs {
		h(data)
	}
}

func errData(err error) json.RawMessage {
	b, _ := json.Marshal(err.Error())
	return b
}
