// Package gateway performs the mark-as-read mutation with
// server-confirmed-only application: the local store changes only after
// the backend accepts the mutation. No optimistic write, no rollback.
package gateway

import (
	"context"
	"errors"
	"fmt"

	"github.com/peoplekit/inbox-sync/internal/logging"
)

// ErrMarkReadFailed is returned when the server rejects the mutation or
// the request fails. The local store is left untouched in that case.
var ErrMarkReadFailed = errors.New("failed to mark as read")

// Mutator is the backend operation needed by the gateway.
type Mutator interface {
	MarkRead(ctx context.Context, id string) error
}

// ReadMarker is the local state transition applied after confirmation.
type ReadMarker interface {
	MarkRead(id string) bool
}

// Gateway applies the read acknowledgment pessimistically.
type Gateway struct {
	client Mutator
	store  ReadMarker
}

// New creates a mutation gateway over the given backend client and store.
func New(client Mutator, store ReadMarker) *Gateway {
	return &Gateway{client: client, store: store}
}

// MarkAsRead sends the mutation and, on confirmed success only, commits
// the local UNREAD to READ transition. Failures are reported to the
// caller without mutating local state; no retry is attempted here.
func (g *Gateway) MarkAsRead(ctx context.Context, id string) error {
	if err := g.client.MarkRead(ctx, id); err != nil {
		logging.Warn("mark-read rejected", "id", id, "error", err)
		return fmt.Errorf("%w: %v", ErrMarkReadFailed, err)
	}

	g.store.MarkRead(id)
	logging.Debug("notification marked as read", "id", id)
	return nil
}
