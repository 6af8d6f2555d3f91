package connection

import "time"

// State represents the lifecycle state of the push channel connection.
type State string

const (
	// StateDisconnected is the initial state, and the terminal state
	// after reconnect attempts are exhausted.
	StateDisconnected State = "disconnected"
	// StateConnecting means a socket is being opened.
	StateConnecting State = "connecting"
	// StateConnected means the socket is open and usable.
	StateConnected State = "connected"
	// StateReconnecting means a retry is scheduled after a loss.
	StateReconnecting State = "reconnecting"
	// StateClosed is terminal, entered only on deliberate teardown.
	StateClosed State = "closed"
)

// IsValid checks if the connection state is valid.
func (s State) IsValid() bool {
	switch s {
	case StateDisconnected, StateConnecting, StateConnected, StateReconnecting, StateClosed:
		return true
	default:
		return false
	}
}

// String returns the string representation of the state.
func (s State) String() string {
	return string(s)
}

// Policy tunes the reconnect behavior after a connection loss.
type Policy struct {
	// MaxAttempts is the retry ceiling; once reached the manager stays
	// Disconnected until an external re-trigger.
	MaxAttempts int
	// FloorDelay is the delay before the first retry, and the value the
	// backoff resets to after a successful open.
	FloorDelay time.Duration
	// CapDelay bounds the doubling backoff.
	CapDelay time.Duration
}

// DefaultPolicy returns the stock reconnect policy: 5 attempts, delays
// doubling from 1s up to 30s.
func DefaultPolicy() Policy {
	return Policy{
		MaxAttempts: 5,
		FloorDelay:  time.Second,
		CapDelay:    30 * time.Second,
	}
}

// NextDelay returns the delay to use after the given one: doubled,
// bounded by the cap.
func (p Policy) NextDelay(current time.Duration) time.Duration {
	next := current * 2
	if next > p.CapDelay {
		next = p.CapDelay
	}
	return next
}
