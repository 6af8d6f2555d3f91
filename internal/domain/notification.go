// Package domain provides the domain layer for the notification inbox.
// It contains the notification record, its status value object, and the
// push-channel message envelope.
package domain

import (
	"fmt"
	"time"
)

// Notification represents a single inbox notification record.
// Identity is the ID field; the server guarantees it is unique within
// one user's inbox.
type Notification struct {
	ID        string `json:"id"`
	Title     string `json:"title"`
	Message   string `json:"message"`
	Type      string `json:"type"`
	Status    Status `json:"status"`
	CreatedAt string `json:"created_at"`
}

// Status represents the read status of a notification.
type Status string

const (
	StatusUnread Status = "UNREAD"
	StatusRead   Status = "READ"
)

// IsValid checks if the notification status is valid.
func (s Status) IsValid() bool {
	switch s {
	case StatusUnread, StatusRead:
		return true
	default:
		return false
	}
}

// String returns the string representation of the status.
func (s Status) String() string {
	return string(s)
}

// IsRead reports whether the notification has been read.
func (n *Notification) IsRead() bool {
	return n.Status == StatusRead
}

// Validate validates the notification and returns an error if invalid.
func (n *Notification) Validate() error {
	if n.ID == "" {
		return fmt.Errorf("notification ID cannot be empty")
	}

	if !n.Status.IsValid() {
		return fmt.Errorf("invalid notification status: %s", n.Status)
	}

	// CreatedAt is display-only but must be a timestamp when present.
	if n.CreatedAt != "" {
		if _, err := time.Parse(time.RFC3339, n.CreatedAt); err != nil {
			return fmt.Errorf("invalid created_at format: %w", err)
		}
	}

	return nil
}

// PushTypeNotification is the envelope discriminator for notification
// push events. Any other discriminator value is ignored by this client.
const PushTypeNotification = "notification"

// PushMessage is the inbound payload of the push channel.
type PushMessage struct {
	Type         string        `json:"type"`
	Notification *Notification `json:"notification,omitempty"`
}

// IsNotification reports whether the message carries a notification record.
func (m *PushMessage) IsNotification() bool {
	return m.Type == PushTypeNotification && m.Notification != nil
}
