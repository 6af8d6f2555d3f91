package connection

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/peoplekit/inbox-sync/internal/auth"
)

// fakeConn is a scriptable Conn fed from a channel.
type fakeConn struct {
	msgs chan []byte
	done chan struct{}
	once sync.Once
}

func newFakeConn() *fakeConn {
	return &fakeConn{
		msgs: make(chan []byte, 16),
		done: make(chan struct{}),
	}
}

func (c *fakeConn) ReadMessage() (int, []byte, error) {
	select {
	case data := <-c.msgs:
		return 1, data, nil
	case <-c.done:
		return 0, nil, errors.New("connection reset")
	}
}

func (c *fakeConn) Close() error {
	c.once.Do(func() { close(c.done) })
	return nil
}

func (c *fakeConn) send(payload string) {
	c.msgs <- []byte(payload)
}

// fail simulates a transport-level connection loss.
func (c *fakeConn) fail() {
	_ = c.Close()
}

// fakeDialer pops scripted results; once the script is exhausted every
// dial fails.
type fakeDialer struct {
	mu     sync.Mutex
	script []dialResult
	calls  int
	urls   []string
}

type dialResult struct {
	conn *fakeConn
	err  error
}

func (d *fakeDialer) DialContext(ctx context.Context, rawURL string) (Conn, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.calls++
	d.urls = append(d.urls, rawURL)
	if len(d.script) == 0 {
		return nil, errors.New("dial refused")
	}
	next := d.script[0]
	d.script = d.script[1:]
	if next.err != nil {
		return nil, next.err
	}
	return next.conn, nil
}

func (d *fakeDialer) callCount() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.calls
}

func fastPolicy() Policy {
	return Policy{MaxAttempts: 3, FloorDelay: 2 * time.Millisecond, CapDelay: 8 * time.Millisecond}
}

func requireEvent(t *testing.T, m *Manager, want EventType) Event {
	t.Helper()
	select {
	case ev := <-m.Events():
		require.Equal(t, want, ev.Type, "unexpected event")
		return ev
	case <-time.After(2 * time.Second):
		t.Fatalf("timed out waiting for %s event", want)
		return Event{}
	}
}

func requireNoEvent(t *testing.T, m *Manager, within time.Duration) {
	t.Helper()
	select {
	case ev := <-m.Events():
		t.Fatalf("unexpected %s event", ev.Type)
	case <-time.After(within):
	}
}

func TestOpen_WithoutCredentialIsNoOp(t *testing.T) {
	dialer := &fakeDialer{}
	m := NewManager("ws://host/ws/notifications", auth.NewStatic(""), WithDialer(dialer))

	m.Open(context.Background())

	assert.Equal(t, 0, dialer.callCount())
	assert.Equal(t, StateDisconnected, m.State())
	requireNoEvent(t, m, 20*time.Millisecond)
}

func TestOpen_EncodesCredentialInHandshake(t *testing.T) {
	dialer := &fakeDialer{script: []dialResult{{conn: newFakeConn()}}}
	m := NewManager("ws://host/ws/notifications", auth.NewStatic("tok en"), WithDialer(dialer))
	defer func() { _ = m.Close() }()

	m.Open(context.Background())
	requireEvent(t, m, EventConnected)

	require.Len(t, dialer.urls, 1)
	assert.Equal(t, "ws://host/ws/notifications?token=tok+en", dialer.urls[0])
}

func TestOpen_SuccessfulConnect(t *testing.T) {
	dialer := &fakeDialer{script: []dialResult{{conn: newFakeConn()}}}
	m := NewManager("ws://host/ws/notifications", auth.NewStatic("tok"), WithDialer(dialer))
	defer func() { _ = m.Close() }()

	m.Open(context.Background())

	requireEvent(t, m, EventConnected)
	assert.Equal(t, StateConnected, m.State())
}

func TestOpen_WhileConnectedIsNoOp(t *testing.T) {
	dialer := &fakeDialer{script: []dialResult{{conn: newFakeConn()}}}
	m := NewManager("ws://host/ws/notifications", auth.NewStatic("tok"), WithDialer(dialer))
	defer func() { _ = m.Close() }()

	m.Open(context.Background())
	requireEvent(t, m, EventConnected)

	m.Open(context.Background())
	assert.Equal(t, 1, dialer.callCount())
}

func TestReadLoop_EmitsLiveNotifications(t *testing.T) {
	conn := newFakeConn()
	dialer := &fakeDialer{script: []dialResult{{conn: conn}}}
	m := NewManager("ws://host/ws/notifications", auth.NewStatic("tok"), WithDialer(dialer))
	defer func() { _ = m.Close() }()

	m.Open(context.Background())
	requireEvent(t, m, EventConnected)

	conn.send(`{"type":"notification","notification":{"id":"9","title":"Task assigned","status":"UNREAD"}}`)

	ev := requireEvent(t, m, EventNotification)
	require.NotNil(t, ev.Notification)
	assert.Equal(t, "9", ev.Notification.ID)
	assert.Equal(t, "Task assigned", ev.Notification.Title)
}

func TestReadLoop_DropsMalformedAndUnknownPayloads(t *testing.T) {
	conn := newFakeConn()
	dialer := &fakeDialer{script: []dialResult{{conn: conn}}}
	m := NewManager("ws://host/ws/notifications", auth.NewStatic("tok"), WithDialer(dialer))
	defer func() { _ = m.Close() }()

	m.Open(context.Background())
	requireEvent(t, m, EventConnected)

	conn.send(`{not json`)
	conn.send(`{"type":"presence","user":"bob"}`)
	conn.send(`{"type":"notification"}`)
	// A valid event after the garbage proves the connection survived.
	conn.send(`{"type":"notification","notification":{"id":"1","status":"UNREAD"}}`)

	ev := requireEvent(t, m, EventNotification)
	assert.Equal(t, "1", ev.Notification.ID)
	assert.Equal(t, StateConnected, m.State())
}

func TestLostConnection_BackoffGrowthAndCeiling(t *testing.T) {
	conn := newFakeConn()
	// One successful dial, then every retry is refused.
	dialer := &fakeDialer{script: []dialResult{{conn: conn}}}
	m := NewManager("ws://host/ws/notifications", auth.NewStatic("tok"),
		WithDialer(dialer), WithPolicy(fastPolicy()))
	defer func() { _ = m.Close() }()

	m.Open(context.Background())
	requireEvent(t, m, EventConnected)

	conn.fail()

	wantDelays := []time.Duration{2 * time.Millisecond, 4 * time.Millisecond, 8 * time.Millisecond}
	for i, wantDelay := range wantDelays {
		requireEvent(t, m, EventDisconnected)
		ev := requireEvent(t, m, EventReconnecting)
		assert.Equal(t, i+1, ev.Attempt)
		assert.Equal(t, wantDelay, ev.Delay)
	}

	// Third retry fails too; the ceiling is reached, so only the
	// disconnect is reported and no further attempt is scheduled.
	requireEvent(t, m, EventDisconnected)
	requireNoEvent(t, m, 50*time.Millisecond)
	assert.Equal(t, StateDisconnected, m.State())
	assert.Equal(t, 4, dialer.callCount())
}

func TestLostConnection_DelayCapsAtLimit(t *testing.T) {
	policy := Policy{MaxAttempts: 5, FloorDelay: 2 * time.Millisecond, CapDelay: 5 * time.Millisecond}
	dialer := &fakeDialer{}
	m := NewManager("ws://host/ws/notifications", auth.NewStatic("tok"),
		WithDialer(dialer), WithPolicy(policy))
	defer func() { _ = m.Close() }()

	m.Open(context.Background())

	wantDelays := []time.Duration{2, 4, 5, 5, 5}
	for i, d := range wantDelays {
		requireEvent(t, m, EventDisconnected)
		ev := requireEvent(t, m, EventReconnecting)
		assert.Equal(t, i+1, ev.Attempt)
		assert.Equal(t, d*time.Millisecond, ev.Delay)
	}
}

func TestReconnect_ResetsBackoffOnSuccess(t *testing.T) {
	conn := newFakeConn()
	// First dial refused, second succeeds, then refusals again.
	dialer := &fakeDialer{script: []dialResult{
		{err: errors.New("dial refused")},
		{conn: conn},
	}}
	m := NewManager("ws://host/ws/notifications", auth.NewStatic("tok"),
		WithDialer(dialer), WithPolicy(fastPolicy()))
	defer func() { _ = m.Close() }()

	m.Open(context.Background())

	requireEvent(t, m, EventDisconnected)
	first := requireEvent(t, m, EventReconnecting)
	assert.Equal(t, 1, first.Attempt)
	assert.Equal(t, 2*time.Millisecond, first.Delay)

	requireEvent(t, m, EventConnected)

	// Losing the fresh connection restarts the backoff at the floor.
	conn.fail()
	requireEvent(t, m, EventDisconnected)
	again := requireEvent(t, m, EventReconnecting)
	assert.Equal(t, 1, again.Attempt)
	assert.Equal(t, 2*time.Millisecond, again.Delay)
}

func TestClose_IsIdempotentAndSuppressesReconnect(t *testing.T) {
	conn := newFakeConn()
	dialer := &fakeDialer{script: []dialResult{{conn: conn}}}
	m := NewManager("ws://host/ws/notifications", auth.NewStatic("tok"),
		WithDialer(dialer), WithPolicy(fastPolicy()))

	m.Open(context.Background())
	requireEvent(t, m, EventConnected)

	require.NoError(t, m.Close())
	require.NoError(t, m.Close())

	assert.Equal(t, StateClosed, m.State())
	// The read loop sees the closed socket but must not retry.
	requireNoEvent(t, m, 50*time.Millisecond)
	assert.Equal(t, 1, dialer.callCount())
}

func TestClose_CancelsPendingRetry(t *testing.T) {
	dialer := &fakeDialer{}
	policy := Policy{MaxAttempts: 3, FloorDelay: 50 * time.Millisecond, CapDelay: time.Second}
	m := NewManager("ws://host/ws/notifications", auth.NewStatic("tok"),
		WithDialer(dialer), WithPolicy(policy))

	m.Open(context.Background())
	requireEvent(t, m, EventDisconnected)
	requireEvent(t, m, EventReconnecting)

	require.NoError(t, m.Close())
	time.Sleep(100 * time.Millisecond)

	assert.Equal(t, 1, dialer.callCount())
	assert.Equal(t, StateClosed, m.State())
}

func TestOpen_AfterCloseIsNoOp(t *testing.T) {
	dialer := &fakeDialer{script: []dialResult{{conn: newFakeConn()}}}
	m := NewManager("ws://host/ws/notifications", auth.NewStatic("tok"), WithDialer(dialer))

	require.NoError(t, m.Close())
	m.Open(context.Background())

	assert.Equal(t, 0, dialer.callCount())
	assert.Equal(t, StateClosed, m.State())
}
