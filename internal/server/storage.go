// Package server provides the reference inbox backend used for local
// development and integration testing: a gin REST API, a JWT token
// service, and a websocket push hub over a SQLite store.
package server

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"github.com/peoplekit/inbox-sync/internal/domain"
)

var (
	// ErrNotificationNotFound indicates that a notification cannot be found.
	ErrNotificationNotFound = errors.New("notification not found")
)

const schemaSQL = `
CREATE TABLE IF NOT EXISTS notifications (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	user_id INTEGER NOT NULL,
	title TEXT NOT NULL,
	message TEXT NOT NULL DEFAULT '',
	type TEXT NOT NULL DEFAULT '',
	status TEXT NOT NULL DEFAULT 'UNREAD',
	created_at TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_notifications_user ON notifications(user_id, id DESC);
`

// Storage persists notifications in SQLite.
type Storage struct {
	db *sql.DB
}

// NewStorage creates a SQLite-backed storage at the provided path.
// The special path ":memory:" keeps everything in memory.
func NewStorage(dbPath string) (*Storage, error) {
	if strings.TrimSpace(dbPath) == "" {
		return nil, fmt.Errorf("sqlite storage: db path cannot be empty")
	}

	if dbPath != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
			return nil, fmt.Errorf("sqlite storage: create db directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("sqlite storage: open db: %w", err)
	}

	storage := &Storage{db: db}
	if err := storage.init(); err != nil {
		_ = db.Close()
		return nil, err
	}

	return storage, nil
}

func (s *Storage) init() error {
	if _, err := s.db.Exec("PRAGMA busy_timeout = 5000"); err != nil {
		return fmt.Errorf("sqlite storage: set busy timeout: %w", err)
	}

	if _, err := s.db.Exec(schemaSQL); err != nil {
		return fmt.Errorf("sqlite storage: create schema: %w", err)
	}

	return nil
}

// Close closes the underlying SQLite connection.
func (s *Storage) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Create inserts a notification for the given user and returns the
// stored record with its generated id and timestamp.
func (s *Storage) Create(ctx context.Context, userID int64, n domain.Notification) (domain.Notification, error) {
	if n.Status == "" {
		n.Status = domain.StatusUnread
	}
	if !n.Status.IsValid() {
		return domain.Notification{}, fmt.Errorf("sqlite storage: invalid status %q", n.Status)
	}
	if n.CreatedAt == "" {
		n.CreatedAt = time.Now().UTC().Format(time.RFC3339)
	}

	res, err := s.db.ExecContext(ctx,
		"INSERT INTO notifications (user_id, title, message, type, status, created_at) VALUES (?, ?, ?, ?, ?, ?)",
		userID, n.Title, n.Message, n.Type, string(n.Status), n.CreatedAt,
	)
	if err != nil {
		return domain.Notification{}, fmt.Errorf("sqlite storage: create notification: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return domain.Notification{}, fmt.Errorf("sqlite storage: last insert id: %w", err)
	}
	n.ID = strconv.FormatInt(id, 10)
	return n, nil
}

// List returns all notifications for the user, newest first.
func (s *Storage) List(ctx context.Context, userID int64) ([]domain.Notification, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT id, title, message, type, status, created_at FROM notifications WHERE user_id = ? ORDER BY id DESC",
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("sqlite storage: list notifications: %w", err)
	}
	defer func() { _ = rows.Close() }()

	records := make([]domain.Notification, 0)
	for rows.Next() {
		var (
			id     int64
			n      domain.Notification
			status string
		)
		if err := rows.Scan(&id, &n.Title, &n.Message, &n.Type, &status, &n.CreatedAt); err != nil {
			return nil, fmt.Errorf("sqlite storage: scan notification: %w", err)
		}
		n.ID = strconv.FormatInt(id, 10)
		n.Status = domain.Status(status)
		records = append(records, n)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite storage: iterate notifications: %w", err)
	}

	return records, nil
}

// MarkRead flips the status of the user's notification to READ. Marking
// an already read record succeeds without change.
func (s *Storage) MarkRead(ctx context.Context, userID int64, id string) error {
	numID, err := strconv.ParseInt(id, 10, 64)
	if err != nil {
		return fmt.Errorf("%w: %s", ErrNotificationNotFound, id)
	}

	res, err := s.db.ExecContext(ctx,
		"UPDATE notifications SET status = ? WHERE user_id = ? AND id = ?",
		string(domain.StatusRead), userID, numID,
	)
	if err != nil {
		return fmt.Errorf("sqlite storage: mark read: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("sqlite storage: rows affected: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("%w: %s", ErrNotificationNotFound, id)
	}
	return nil
}
