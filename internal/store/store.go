// Package store holds the canonical, deduplicated client-side view of
// the notification inbox.
package store

import (
	"sync"

	"github.com/peoplekit/inbox-sync/internal/domain"
)

// Store is an ordered collection of notification records with
// dedup-by-identity semantics. The head of the list is the newest record.
//
// It has exactly two writers by design: the sync engine (baseline fetch
// and live push events) and the mutation gateway (confirmed mark-as-read).
type Store struct {
	mu    sync.RWMutex
	items []domain.Notification
	// live tracks ids that entered via PrependLive and have not yet been
	// covered by a baseline. ReplaceBaseline must not erase them.
	live map[string]struct{}
}

// New creates an empty store.
func New() *Store {
	return &Store{live: make(map[string]struct{})}
}

// ReplaceBaseline installs a new baseline list from a fetch result.
//
// The replacement is merge-aware: live records applied before the fetch
// resolved are retained at the head of the list unless the baseline
// already contains their id. This closes the race between a concurrent
// baseline fetch and early push deliveries.
func (s *Store) ReplaceBaseline(records []domain.Notification) {
	s.mu.Lock()
	defer s.mu.Unlock()

	baseline := make([]domain.Notification, 0, len(records))
	inBaseline := make(map[string]struct{}, len(records))
	for _, n := range records {
		if _, dup := inBaseline[n.ID]; dup {
			continue
		}
		inBaseline[n.ID] = struct{}{}
		baseline = append(baseline, n)
	}

	var retained []domain.Notification
	retainedLive := make(map[string]struct{})
	for _, n := range s.items {
		if _, isLive := s.live[n.ID]; !isLive {
			continue
		}
		if _, covered := inBaseline[n.ID]; covered {
			continue
		}
		retained = append(retained, n)
		retainedLive[n.ID] = struct{}{}
	}

	s.items = append(retained, baseline...)
	s.live = retainedLive
}

// PrependLive inserts a newly arrived notification at the head of the
// list. If a record with the same id already exists, the call is a no-op
// and false is returned.
func (s *Store) PrependLive(record domain.Notification) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.contains(record.ID) {
		return false
	}

	s.items = append([]domain.Notification{record}, s.items...)
	s.live[record.ID] = struct{}{}
	return true
}

// MarkRead flips the status of the matching record from UNREAD to READ.
// It is a no-op returning false when the id is absent or already READ.
// The READ status is terminal; no transition back to UNREAD exists.
func (s *Store) MarkRead(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.items {
		if s.items[i].ID != id {
			continue
		}
		if s.items[i].Status != domain.StatusUnread {
			return false
		}
		s.items[i].Status = domain.StatusRead
		return true
	}
	return false
}

// Snapshot returns a copy of the current ordered list of records.
func (s *Store) Snapshot() []domain.Notification {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]domain.Notification, len(s.items))
	copy(out, s.items)
	return out
}

// Len returns the number of stored records.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.items)
}

// UnreadCount returns the number of records with UNREAD status.
func (s *Store) UnreadCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	count := 0
	for i := range s.items {
		if s.items[i].Status == domain.StatusUnread {
			count++
		}
	}
	return count
}

func (s *Store) contains(id string) bool {
	for i := range s.items {
		if s.items[i].ID == id {
			return true
		}
	}
	return false
}
