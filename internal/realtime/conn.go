package realtime

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

// State is the lifecycle of one connection. Closed and Errored are terminal;
// a later Connect builds a fresh connection.
type State int32

const (
	StateIdle State = iota
	StateConnecting
	StateOpen
	StateClosed
	StateErrored
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateConnecting:
		return "connecting"
	case StateOpen:
		return "open"
	case StateClosed:
		return "closed"
	case StateErrored:
		return "error"
	default:
		return "unknown"
	}
}

var (
	// ErrAlreadyConnected is returned by Connect while a handshake is in
	// flight or a session is open.
	ErrAlreadyConnected = errors.New("realtime: connection already active")

	// ErrClosedDuringConnect is returned when Close raced a successful
	// handshake; the freshly opened link is discarded.
	ErrClosedDuringConnect = errors.New("realtime: connection closed during handshake")
)

// Client owns one realtime session at a time: the WebSocket link, the capture
// pipeline feeding it, the playback queue consuming it, and the listener
// registry observing it.
type Client struct {
	cfg      Config
	router   *Router
	playback *PlaybackQueue
	capture  *CapturePipeline
	log      *slog.Logger

	mu    sync.Mutex
	state State
	ws    *websocket.Conn
	done  chan struct{}

	writeMu sync.Mutex
}

// NewClient wires a client from its configuration and device collaborators.
// Either device may be nil: a nil source disables capture, a nil player
// discards inbound audio. The client still dispatches every event.
func NewClient(cfg Config, source Source, player Player, log *slog.Logger) *Client {
	if log == nil {
		log = slog.Default()
	}
	log = log.With("component", "realtime")

	c := &Client{
		cfg:      cfg.withDefaults(),
		router:   NewRouter(log),
		playback: NewPlaybackQueue(player, log),
		log:      log,
	}
	c.capture = NewCapturePipeline(source, c.Ready, c.Send, log)
	return c
}

// Connect opens the WebSocket link, presenting the model as a query parameter
// and the credential as a subprotocol token. On success the capture pipeline
// is started before Connect returns. A second Connect while connecting or
// open fails fast without dialing.
func (c *Client) Connect(ctx context.Context) error {
	c.mu.Lock()
	if c.state == StateConnecting || c.state == StateOpen {
		c.mu.Unlock()
		return ErrAlreadyConnected
	}
	c.state = StateConnecting
	done := make(chan struct{})
	c.done = done
	c.mu.Unlock()

	endpoint, err := c.sessionURL()
	if err != nil {
		c.fail()
		return err
	}

	dialer := websocket.Dialer{
		HandshakeTimeout: c.cfg.HandshakeTimeout,
		Subprotocols:     c.subprotocols(),
	}

	ws, resp, err := dialer.DialContext(ctx, endpoint, nil)
	if err != nil {
		c.fail()
		if resp != nil {
			return fmt.Errorf("realtime: handshake rejected (status %d): %w", resp.StatusCode, err)
		}
		return fmt.Errorf("realtime: connect %s: %w", endpoint, err)
	}

	c.mu.Lock()
	if c.state != StateConnecting {
		// Close raced the handshake; the success is stale.
		c.mu.Unlock()
		_ = ws.Close()
		return ErrClosedDuringConnect
	}
	c.ws = ws
	c.state = StateOpen
	c.mu.Unlock()

	c.log.Info("session open", "model", c.cfg.Model)

	// Capture starts synchronously here: any deferred start loses the
	// earliest frames while the remote endpoint is already listening.
	if err := c.capture.Start(); err != nil {
		c.log.Warn("capture start failed, session is receive-only", "error", err)
	}

	go c.readLoop(ws, done)
	return nil
}

func (c *Client) sessionURL() (string, error) {
	u, err := url.Parse(c.cfg.URL)
	if err != nil {
		return "", fmt.Errorf("realtime: invalid endpoint %q: %w", c.cfg.URL, err)
	}
	q := u.Query()
	q.Set("model", c.cfg.Model)
	u.RawQuery = q.Encode()
	return u.String(), nil
}

func (c *Client) subprotocols() []string {
	protocols := []string{"realtime"}
	if c.cfg.Credential != "" {
		protocols = append(protocols, "openai-insecure-api-key."+c.cfg.Credential)
	}
	return append(protocols, "openai-beta.realtime-v1")
}

// fail marks a handshake failure. Errored is only reachable from Connecting;
// a Close that raced the dial already holds the terminal Closed state.
func (c *Client) fail() {
	c.mu.Lock()
	if c.state == StateConnecting {
		c.state = StateErrored
	}
	c.mu.Unlock()
}

// Send serializes and transmits an outbound event, assigning a fresh event_id
// when the caller did not set one. Sending while the connection is not open
// is an expected race during connect/teardown and is skipped with a debug
// log, never an error.
func (c *Client) Send(ev Event) error {
	c.mu.Lock()
	if c.state != StateOpen {
		state := c.state
		c.mu.Unlock()
		c.log.Debug("send skipped, connection not open", "state", state.String(), "type", ev.Type)
		return nil
	}
	ws := c.ws
	c.mu.Unlock()

	if ev.EventID == "" {
		ev.EventID = newEventID()
	}

	data, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("realtime: marshal %s event: %w", ev.Type, err)
	}

	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	return ws.WriteMessage(websocket.TextMessage, data)
}

// Subscribe registers a listener for an event type, or all types via the
// Wildcard label. The returned token removes that registration.
func (c *Client) Subscribe(eventType string, fn Listener) Subscription {
	return c.router.Subscribe(eventType, fn)
}

func (c *Client) Unsubscribe(sub Subscription) {
	c.router.Unsubscribe(sub)
}

// Ready reports whether the connection is open for sending.
func (c *Client) Ready() bool {
	return c.State() == StateOpen
}

func (c *Client) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Capture exposes the pipeline for collaborators that need the block counter.
func (c *Client) Capture() *CapturePipeline {
	return c.capture
}

// Playback exposes the queue for collaborators that need playback status.
func (c *Client) Playback() *PlaybackQueue {
	return c.playback
}

// Close tears the session down from the local side: cleanup first, then the
// link itself if still open. Safe in every state.
func (c *Client) Close() error {
	c.handleClose(websocket.CloseNormalClosure, "client closed")
	return nil
}

func (c *Client) readLoop(ws *websocket.Conn, done chan struct{}) {
	for {
		_, data, err := ws.ReadMessage()
		if err != nil {
			select {
			case <-done:
				return
			default:
			}

			var closeErr *websocket.CloseError
			if errors.As(err, &closeErr) {
				c.handleClose(closeErr.Code, closeErr.Text)
				return
			}

			// Link-level failure: surface it to listeners, then treat the
			// dead link as an abnormal close.
			errEv := NewEvent(EventTypeError, map[string]any{"error": err.Error()})
			errEv.ReceivedAt = time.Now()
			c.router.Dispatch(errEv)
			c.handleClose(websocket.CloseAbnormalClosure, err.Error())
			return
		}
		c.handleMessage(data)
	}
}

// handleMessage classifies one inbound frame. Parse failures are reported with
// the raw payload and skipped; the connection stays up.
func (c *Client) handleMessage(data []byte) {
	ev, err := ParseEvent(data)
	if err != nil {
		c.log.Error("malformed server payload", "error", err, "payload", string(data))
		return
	}
	if ev.ReceivedAt.IsZero() {
		ev.ReceivedAt = time.Now()
	}

	if ev.Type == EventTypeResponseAudioDelta {
		if delta := ev.Str("delta"); delta != "" {
			c.playback.Enqueue(delta)
		}
	}

	c.router.Dispatch(ev)
}

// handleClose is the single terminal path for a connection, whether the close
// was remote or local. It stops capture, drains playback, delivers exactly one
// synthetic close event, and only then clears the listener registry.
func (c *Client) handleClose(code int, reason string) {
	c.mu.Lock()
	if c.state == StateIdle || c.state == StateClosed || c.state == StateErrored {
		c.mu.Unlock()
		return
	}
	c.state = StateClosed
	ws := c.ws
	c.ws = nil
	done := c.done
	c.done = nil
	c.mu.Unlock()

	if done != nil {
		close(done)
	}

	c.capture.Stop()
	if dropped := c.playback.Drain(); dropped > 0 {
		c.log.Debug("discarded queued audio on close", "chunks", dropped)
	}

	closeEv := NewEvent(EventTypeClose, map[string]any{"code": code, "reason": reason})
	closeEv.ReceivedAt = time.Now()
	c.router.Dispatch(closeEv)
	c.router.Clear()

	if ws != nil {
		_ = ws.Close()
	}

	c.log.Info("session closed", "code", code, "reason", reason)
}
