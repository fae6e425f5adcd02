// Package websocket subscribes to the backend's push stream of notification
// events, reconnecting with backoff when the connection drops.
package websocket

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"net/http"
	"net/url"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"
	json "github.com/json-iterator/go"

	"github.com/Saad0095/leaders-tax-cli/pkg/logger"
)

// MessageType represents the type of WebSocket message
type MessageType string

const (
	MessageTypeNotification MessageType = "notification"
	MessageTypeHeartbeat    MessageType = "heartbeat"
	MessageTypePong         MessageType = "pong"
	MessageTypeError        MessageType = "error"
)

// Message is one frame of the stream
type Message struct {
	Type    MessageType     `json:"type"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// Config holds WebSocket client configuration
type Config struct {
	URL                  string
	ConnectTimeout       time.Duration
	HeartbeatInterval    time.Duration
	ReconnectBaseDelay   time.Duration
	ReconnectMaxDelay    time.Duration
	MaxReconnectAttempts int // negative means unlimited
}

// DefaultConfig returns the settings used for streamURL
func DefaultConfig(streamURL string) Config {
	return Config{
		URL:                  streamURL,
		ConnectTimeout:       15 * time.Second,
		HeartbeatInterval:    30 * time.Second,
		ReconnectBaseDelay:   2 * time.Second,
		ReconnectMaxDelay:    30 * time.Second,
		MaxReconnectAttempts: -1,
	}
}

// ConnectionState represents the state of the WebSocket connection
type ConnectionState int32

const (
	StateDisconnected ConnectionState = iota
	StateConnecting
	StateConnected
	StateReconnecting
	StateError
)

func (s ConnectionState) String() string {
	switch s {
	case StateDisconnected:
		return "disconnected"
	case StateConnecting:
		return "connecting"
	case StateConnected:
		return "connected"
	case StateReconnecting:
		return "reconnecting"
	case StateError:
		return "error"
	}
	return "unknown"
}

// ConnectionStats holds connection statistics
type ConnectionStats struct {
	MessagesReceived int64
	MessagesSent     int64
	ReconnectCount   int
	LastError        string
	ConnectedAt      time.Time
	DisconnectedAt   time.Time
}

type listener struct {
	id int
	fn func(json.RawMessage)
}

// Client manages one stream connection
type Client struct {
	config Config
	token  string
	state  atomic.Int32

	mu     sync.Mutex
	conn   *websocket.Conn
	writeM sync.Mutex

	listenersMu sync.RWMutex
	listeners   map[MessageType][]listener
	nextID      int

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	statsLock sync.RWMutex
	stats     ConnectionStats
}

// NewClient creates a new WebSocket client
func NewClient(config Config) *Client {
	ctx, cancel := context.WithCancel(context.Background())
	return &Client{
		config:    config,
		listeners: make(map[MessageType][]listener),
		ctx:       ctx,
		cancel:    cancel,
	}
}

// Connect dials the stream, authenticating with token, and starts reading
func (c *Client) Connect(token string) error {
	c.token = token
	c.setState(StateConnecting)

	conn, err := c.dial()
	if err != nil {
		c.setState(StateError)
		c.recordError(err.Error())
		return fmt.Errorf("failed to connect to notification stream: %w", err)
	}

	c.attach(conn)
	logger.Debug("WebSocket connected", "url", c.config.URL)
	return nil
}

// Disconnect closes the connection and stops reconnecting
func (c *Client) Disconnect() {
	c.cancel()

	c.mu.Lock()
	if c.conn != nil {
		_ = c.conn.Close()
		c.conn = nil
	}
	c.mu.Unlock()

	c.wg.Wait()
	c.setState(StateDisconnected)
	c.recordDisconnected()
	logger.Debug("WebSocket disconnected")
}

// IsConnected returns true if the connection is established
func (c *Client) IsConnected() bool {
	return c.State() == StateConnected
}

// State reports the connection state
func (c *Client) State() ConnectionState {
	return ConnectionState(c.state.Load())
}

// On subscribes to a message type and returns the unsubscribe function.
// Callbacks run on the read goroutine in arrival order.
func (c *Client) On(msgType MessageType, callback func(json.RawMessage)) func() {
	c.listenersMu.Lock()
	c.nextID++
	id := c.nextID
	c.listeners[msgType] = append(c.listeners[msgType], listener{id: id, fn: callback})
	c.listenersMu.Unlock()

	return func() {
		c.listenersMu.Lock()
		defer c.listenersMu.Unlock()

		ls := c.listeners[msgType]
		for i, l := range ls {
			if l.id == id {
				c.listeners[msgType] = append(ls[:i:i], ls[i+1:]...)
				break
			}
		}
	}
}

// Send sends a message to the server
func (c *Client) Send(msgType MessageType, payload interface{}) error {
	c.mu.Lock()
	conn := c.conn
	c.mu.Unlock()

	if conn == nil {
		return errors.New("not connected")
	}

	msg := struct {
		Type    MessageType `json:"type"`
		Payload interface{} `json:"payload,omitempty"`
	}{Type: msgType, Payload: payload}

	data, err := json.Marshal(msg)
	if err != nil {
		return err
	}

	c.writeM.Lock()
	err = conn.WriteMessage(websocket.TextMessage, data)
	c.writeM.Unlock()
	if err != nil {
		return err
	}

	c.recordMessageSent()
	return nil
}

// GetStats returns connection statistics
func (c *Client) GetStats() ConnectionStats {
	c.statsLock.RLock()
	defer c.statsLock.RUnlock()
	return c.stats
}

func (c *Client) dial() (*websocket.Conn, error) {
	u, err := url.Parse(c.config.URL)
	if err != nil {
		return nil, fmt.Errorf("invalid stream url: %w", err)
	}

	header := http.Header{}
	if c.token != "" {
		q := u.Query()
		q.Set("token", c.token)
		u.RawQuery = q.Encode()
		header.Set("Authorization", "Bearer "+c.token)
	}

	dialCtx := c.ctx
	if c.config.ConnectTimeout > 0 {
		var cancel context.CancelFunc
		dialCtx, cancel = context.WithTimeout(c.ctx, c.config.ConnectTimeout)
		defer cancel()
	}

	conn, _, err := websocket.DefaultDialer.DialContext(dialCtx, u.String(), header)
	return conn, err
}

// attach installs conn and starts its read and heartbeat loops
func (c *Client) attach(conn *websocket.Conn) {
	c.mu.Lock()
	if c.ctx.Err() != nil {
		c.mu.Unlock()
		_ = conn.Close()
		return
	}
	c.conn = conn
	c.mu.Unlock()

	c.setState(StateConnected)
	c.recordConnected()

	connCtx, stop := context.WithCancel(c.ctx)
	c.wg.Add(2)
	go func() {
		defer c.wg.Done()
		defer stop()
		c.readLoop(conn)
	}()
	go func() {
		defer c.wg.Done()
		c.heartbeatLoop(connCtx)
	}()
}

func (c *Client) readLoop(conn *websocket.Conn) {
	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			if c.ctx.Err() != nil {
				return
			}
			c.recordError(err.Error())
			logger.Warn("WebSocket read error", "error", err)
			c.wg.Add(1)
			go func() {
				defer c.wg.Done()
				c.reconnect()
			}()
			return
		}

		var msg Message
		if err := json.Unmarshal(data, &msg); err != nil {
			logger.Warn("Ignoring malformed stream message", "error", err)
			continue
		}
		c.recordMessageReceived()
		c.emit(msg)
	}
}

func (c *Client) emit(msg Message) {
	c.listenersMu.RLock()
	ls := append([]listener(nil), c.listeners[msg.Type]...)
	c.listenersMu.RUnlock()

	for _, l := range ls {
		l.fn(msg.Payload)
	}
}

func (c *Client) heartbeatLoop(ctx context.Context) {
	if c.config.HeartbeatInterval <= 0 {
		return
	}
	ticker := time.NewTicker(c.config.HeartbeatInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := c.Send(MessageTypeHeartbeat, nil); err != nil {
				logger.Debug("Failed to send heartbeat", "error", err)
			}
		}
	}
}

// reconnect redials with exponential backoff and jitter
func (c *Client) reconnect() {
	c.mu.Lock()
	if c.conn != nil {
		_ = c.conn.Close()
		c.conn = nil
	}
	c.mu.Unlock()

	c.setState(StateReconnecting)
	c.recordDisconnected()

	delay := c.config.ReconnectBaseDelay
	for attempt := 0; ; attempt++ {
		if c.config.MaxReconnectAttempts >= 0 && attempt >= c.config.MaxReconnectAttempts {
			c.setState(StateError)
			logger.Error("Max reconnection attempts reached")
			return
		}

		wait := delay
		if delay > 0 {
			wait += time.Duration(rand.Int63n(int64(delay)/4 + 1))
		}
		logger.Debug("Reconnecting WebSocket", "attempt", attempt+1, "wait", wait)

		select {
		case <-c.ctx.Done():
			return
		case <-time.After(wait):
		}

		conn, err := c.dial()
		if err != nil {
			c.recordError(err.Error())
			delay = min(delay*2, c.config.ReconnectMaxDelay)
			continue
		}

		c.statsLock.Lock()
		c.stats.ReconnectCount++
		c.statsLock.Unlock()

		c.attach(conn)
		logger.Debug("WebSocket reconnected")
		return
	}
}

func (c *Client) setState(state ConnectionState) {
	c.state.Store(int32(state))
}

func (c *Client) recordMessageReceived() {
	c.statsLock.Lock()
	c.stats.MessagesReceived++
	c.statsLock.Unlock()
}

func (c *Client) recordMessageSent() {
	c.statsLock.Lock()
	c.stats.MessagesSent++
	c.statsLock.Unlock()
}

func (c *Client) recordError(errMsg string) {
	c.statsLock.Lock()
	c.stats.LastError = errMsg
	c.statsLock.Unlock()
}

func (c *Client) recordConnected() {
	c.statsLock.Lock()
	c.stats.ConnectedAt = time.Now()
	c.statsLock.Unlock()
}

func (c *Client) recordDisconnected() {
	c.statsLock.Lock()
	c.stats.DisconnectedAt = time.Now()
	c.statsLock.Unlock()
}
