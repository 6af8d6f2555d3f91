// Package syncer coordinates the baseline fetch and the live push
// channel into one consistent client-side view of the inbox.
package syncer

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/peoplekit/inbox-sync/internal/auth"
	"github.com/peoplekit/inbox-sync/internal/connection"
	"github.com/peoplekit/inbox-sync/internal/domain"
	"github.com/peoplekit/inbox-sync/internal/logging"
	"github.com/peoplekit/inbox-sync/internal/store"
)

// ErrLoadFailed reports a failed baseline fetch. Previously synchronized
// data stays visible when it occurs.
var ErrLoadFailed = errors.New("failed to load notifications")

// Fetcher provides the baseline notification list.
type Fetcher interface {
	List(ctx context.Context) ([]domain.Notification, error)
}

// Connector is the push channel surface consumed by the engine.
type Connector interface {
	Open(ctx context.Context)
	Close() error
	Events() <-chan connection.Event
}

// Marker applies the confirm-then-apply mark-as-read mutation.
type Marker interface {
	MarkAsRead(ctx context.Context, id string) error
}

// Status is the engine's externally visible state, published together
// with the notification list.
type Status struct {
	// Loading is true while the initial baseline fetch is in flight.
	Loading bool
	// Connected mirrors the live push channel availability.
	Connected bool
	// Err holds the last baseline fetch failure, nil otherwise.
	Err error
}

// Engine runs the synchronization lifecycle: on start it kicks off the
// baseline fetch and the push channel concurrently, then keeps the
// store current from live events. Reads and mutations go through the
// engine so every consumer observes the same state.
type Engine struct {
	fetcher Fetcher
	conn    Connector
	store   *store.Store
	marker  Marker
	creds   auth.Source
	logger  logging.Logger

	mu        sync.Mutex
	started   bool
	loading   bool
	connected bool
	err       error

	updates chan struct{}
	done    chan struct{}
}

// New wires an engine from its collaborators. The store is shared with
// the mutation gateway behind the marker.
func New(fetcher Fetcher, conn Connector, st *store.Store, marker Marker, creds auth.Source) *Engine {
	return &Engine{
		fetcher: fetcher,
		conn:    conn,
		store:   st,
		marker:  marker,
		creds:   creds,
		logger:  logging.With("component", "syncer"),
		updates: make(chan struct{}, 1),
		done:    make(chan struct{}),
	}
}

// Start activates synchronization: the baseline fetch and the push
// channel begin concurrently, without ordering between them. Without a
// signed-in credential nothing is activated and the engine stays empty.
// Start is idempotent.
func (e *Engine) Start(ctx context.Context) {
	if !auth.Ready(e.creds) {
		e.logger.Debug("no credential available, staying inactive")
		return
	}

	e.mu.Lock()
	if e.started {
		e.mu.Unlock()
		return
	}
	e.started = true
	e.loading = true
	e.mu.Unlock()
	e.notify()

	go e.loadBaseline(ctx)
	go e.consumeEvents()
	go e.conn.Open(ctx)
}

// Stop tears down the push channel and stops event consumption. The
// store keeps its last synchronized contents.
func (e *Engine) Stop() {
	e.mu.Lock()
	select {
	case <-e.done:
	default:
		close(e.done)
	}
	e.mu.Unlock()

	if err := e.conn.Close(); err != nil {
		e.logger.Warn("closing push channel", "error", err)
	}
}

// Status returns the current loading, connectivity, and error state.
func (e *Engine) Status() Status {
	e.mu.Lock()
	defer e.mu.Unlock()
	return Status{Loading: e.loading, Connected: e.connected, Err: e.err}
}

// Notifications returns a copy of the current ordered notification list.
func (e *Engine) Notifications() []domain.Notification {
	return e.store.Snapshot()
}

// UnreadCount returns the number of unread records.
func (e *Engine) UnreadCount() int {
	return e.store.UnreadCount()
}

// Updates signals that the list or status changed. The channel is
// buffered with one slot; bursts coalesce into a single wakeup, so
// consumers must re-read the full state on every signal.
func (e *Engine) Updates() <-chan struct{} {
	return e.updates
}

// MarkAsRead marks one notification as read through the pessimistic
// gateway. The local list only changes after the server confirms.
func (e *Engine) MarkAsRead(ctx context.Context, id string) error {
	err := e.marker.MarkAsRead(ctx, id)
	if err == nil {
		e.notify()
	}
	return err
}

// loadBaseline fetches the full list once and installs it. On failure
// the store is left untouched so stale data stays visible.
func (e *Engine) loadBaseline(ctx context.Context) {
	records, err := e.fetcher.List(ctx)

	e.mu.Lock()
	e.loading = false
	if err != nil {
		e.err = fmt.Errorf("%w: %v", ErrLoadFailed, err)
		e.mu.Unlock()
		e.logger.Error("baseline fetch failed", "error", err)
		e.notify()
		return
	}
	e.err = nil
	e.mu.Unlock()

	e.store.ReplaceBaseline(records)
	e.logger.Info("baseline loaded", "count", len(records))
	e.notify()
}

// consumeEvents drains the push channel until Stop.
func (e *Engine) consumeEvents() {
	for {
		select {
		case <-e.done:
			return
		case ev, ok := <-e.conn.Events():
			if !ok {
				return
			}
			e.handleEvent(ev)
		}
	}
}

func (e *Engine) handleEvent(ev connection.Event) {
	switch ev.Type {
	case connection.EventConnected:
		e.setConnected(true)
	case connection.EventDisconnected, connection.EventReconnecting:
		e.setConnected(false)
	case connection.EventNotification:
		if ev.Notification == nil {
			return
		}
		if e.store.PrependLive(*ev.Notification) {
			e.logger.Debug("live notification applied", "id", ev.Notification.ID)
		}
	default:
		return
	}
	e.notify()
}

func (e *Engine) setConnected(connected bool) {
	e.mu.Lock()
	e.connected = connected
	e.mu.Unlock()
}

func (e *Engine) notify() {
	select {
	case e.updates <- struct{}{}:
	default:
	}
}
