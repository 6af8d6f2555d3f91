// Package connection owns the lifecycle of the persistent push channel:
// opening, authenticating, detecting closure, and scheduling reconnects
// with exponential backoff. It knows nothing about inbox semantics
// beyond decoding the push envelope.
package connection

import (
	"context"
	"encoding/json"
	"net/url"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/peoplekit/inbox-sync/internal/auth"
	"github.com/peoplekit/inbox-sync/internal/domain"
	"github.com/peoplekit/inbox-sync/internal/logging"
)

// EventType discriminates the events emitted by the Manager.
type EventType string

const (
	// EventConnected signals a successful open.
	EventConnected EventType = "connected"
	// EventDisconnected signals a close, clean or not.
	EventDisconnected EventType = "disconnected"
	// EventReconnecting signals a scheduled retry.
	EventReconnecting EventType = "reconnecting"
	// EventNotification carries a live notification record.
	EventNotification EventType = "notification"
)

// Event is a single lifecycle or data event from the push channel.
// Attempt and Delay are set for EventReconnecting; Notification is set
// for EventNotification.
type Event struct {
	Type         EventType
	Attempt      int
	Delay        time.Duration
	Notification *domain.Notification
}

// Conn is the minimal socket surface consumed by the manager.
type Conn interface {
	ReadMessage() (messageType int, p []byte, err error)
	Close() error
}

// Dialer opens a socket connection to the given URL.
type Dialer interface {
	DialContext(ctx context.Context, url string) (Conn, error)
}

// gorillaDialer is the production Dialer backed by gorilla/websocket.
type gorillaDialer struct{}

func (gorillaDialer) DialContext(ctx context.Context, rawURL string) (Conn, error) {
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, rawURL, nil)
	if err != nil {
		return nil, err
	}
	return conn, nil
}

// Manager maintains one persistent socket connection and reports every
// material lifecycle event on its event channel. It decides
// autonomously whether and when to retry after a loss.
type Manager struct {
	socketURL string
	creds     auth.Source
	dialer    Dialer
	policy    Policy
	logger    logging.Logger
	events    chan Event

	mu       sync.Mutex
	state    State
	attempts int
	delay    time.Duration
	conn     Conn
	timer    *time.Timer
	closed   bool
}

// Option customizes a Manager.
type Option func(*Manager)

// WithDialer overrides the socket dialer. Used in tests.
func WithDialer(d Dialer) Option {
	return func(m *Manager) { m.dialer = d }
}

// WithPolicy overrides the reconnect policy.
func WithPolicy(p Policy) Option {
	return func(m *Manager) { m.policy = p }
}

// NewManager creates a manager for the given push channel URL, e.g.
// ws://localhost:8080/ws/notifications. The credential is appended as a
// token query parameter on every dial.
func NewManager(socketURL string, creds auth.Source, opts ...Option) *Manager {
	m := &Manager{
		socketURL: socketURL,
		creds:     creds,
		dialer:    gorillaDialer{},
		policy:    DefaultPolicy(),
		logger:    logging.With("component", "connection"),
		events:    make(chan Event, 64),
		state:     StateDisconnected,
	}
	for _, opt := range opts {
		opt(m)
	}
	m.delay = m.policy.FloorDelay
	return m
}

// Events returns the channel of lifecycle and notification events.
// Consumers must read current connectivity from these signals; the
// channel is buffered and events are dropped with a warning if nobody
// drains it.
func (m *Manager) Events() <-chan Event {
	return m.events
}

// State returns the current connection state.
func (m *Manager) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// Open establishes one socket connection, encoding the credential in
// the handshake. Without a credential and a signed-in user the call is
// a no-op: no connection attempt, no error. Open is also a no-op while
// a connection is active or being established, and after Close.
func (m *Manager) Open(ctx context.Context) {
	if !auth.Ready(m.creds) {
		m.logger.Debug("no credential available, skipping connect")
		return
	}

	m.mu.Lock()
	if m.closed || m.state == StateConnecting || m.state == StateConnected {
		m.mu.Unlock()
		return
	}
	if m.timer != nil {
		m.timer.Stop()
		m.timer = nil
	}
	m.state = StateConnecting
	m.mu.Unlock()

	dialURL := m.socketURL + "?token=" + url.QueryEscape(m.creds.Token())
	conn, err := m.dialer.DialContext(ctx, dialURL)
	if err != nil {
		m.logger.Warn("connect failed", "error", err)
		m.lostConnection(ctx)
		return
	}

	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		_ = conn.Close()
		return
	}
	m.conn = conn
	m.state = StateConnected
	m.attempts = 0
	m.delay = m.policy.FloorDelay
	m.mu.Unlock()

	m.emit(Event{Type: EventConnected})
	m.logger.Info("connected", "url", m.socketURL)
	go m.readLoop(ctx, conn)
}

// Close deliberately tears down the active connection, if any, and
// cancels any pending retry. It is idempotent and never triggers the
// reconnect logic.
func (m *Manager) Close() error {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return nil
	}
	m.closed = true
	m.state = StateClosed
	if m.timer != nil {
		m.timer.Stop()
		m.timer = nil
	}
	conn := m.conn
	m.conn = nil
	m.mu.Unlock()

	if conn != nil {
		_ = conn.Close()
	}
	m.logger.Debug("connection closed deliberately")
	return nil
}

// readLoop consumes inbound messages until the connection fails.
func (m *Manager) readLoop(ctx context.Context, conn Conn) {
	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			m.mu.Lock()
			stale := m.conn != conn
			closed := m.closed
			m.mu.Unlock()
			if stale || closed {
				return
			}
			m.logger.Debug("connection lost", "error", err)
			m.lostConnection(ctx)
			return
		}

		var msg domain.PushMessage
		if err := json.Unmarshal(data, &msg); err != nil {
			// One bad message must not disrupt the connection.
			m.logger.Warn("dropping malformed push payload", "error", err)
			continue
		}
		if !msg.IsNotification() {
			// Unknown discriminators are ignored for forward compatibility.
			continue
		}

		m.emit(Event{Type: EventNotification, Notification: msg.Notification})
	}
}

// lostConnection records the loss and schedules a retry while the
// attempt counter is below the ceiling. Beyond the ceiling the manager
// stays Disconnected until an external re-trigger.
func (m *Manager) lostConnection(ctx context.Context) {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return
	}
	m.conn = nil
	m.state = StateDisconnected
	m.mu.Unlock()
	m.emit(Event{Type: EventDisconnected})

	m.mu.Lock()
	if m.attempts >= m.policy.MaxAttempts {
		m.mu.Unlock()
		m.logger.Warn("reconnect attempts exhausted", "attempts", m.policy.MaxAttempts)
		return
	}
	m.attempts++
	attempt := m.attempts
	delay := m.delay
	m.delay = m.policy.NextDelay(m.delay)
	m.state = StateReconnecting
	m.timer = time.AfterFunc(delay, func() { m.Open(ctx) })
	m.mu.Unlock()

	m.emit(Event{Type: EventReconnecting, Attempt: attempt, Delay: delay})
	m.logger.Info("reconnect scheduled", "attempt", attempt, "delay", delay)
}

func (m *Manager) emit(ev Event) {
	select {
	case m.events <- ev:
	default:
		m.logger.Warn("event buffer full, dropping event", "type", ev.Type)
	}
}
