// Package api provides the REST client for the notification inbox
// backend: the baseline list fetch and the mark-read mutation.
package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/peoplekit/inbox-sync/internal/auth"
	"github.com/peoplekit/inbox-sync/internal/domain"
)

// Inbox defines the backend operations consumed by the sync subsystem.
type Inbox interface {
	// List fetches the full current notification list (the baseline).
	List(ctx context.Context) ([]domain.Notification, error)
	// MarkRead asks the server to mark one notification as read.
	MarkRead(ctx context.Context, id string) error
}

// Compile-time interface check.
var _ Inbox = (*Client)(nil)

// Client implements Inbox over HTTP with bearer authentication.
type Client struct {
	baseURL string
	creds   auth.Source
	httpc   *http.Client
}

// NewClient creates a REST client for the given base URL, e.g.
// http://localhost:8080/api/v1. The credential source supplies the
// bearer token attached to every request.
func NewClient(baseURL string, creds auth.Source) *Client {
	return &Client{
		baseURL: baseURL,
		creds:   creds,
		httpc:   &http.Client{Timeout: 30 * time.Second},
	}
}

func (c *Client) newRequest(ctx context.Context, method, path string) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, nil)
	if err != nil {
		return nil, err
	}
	if c.creds != nil {
		if token := c.creds.Token(); token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
	}
	return req, nil
}

// List fetches the baseline notification list from
// GET <base>/notifications/.
func (c *Client) List(ctx context.Context) ([]domain.Notification, error) {
	req, err := c.newRequest(ctx, http.MethodGet, "/notifications/")
	if err != nil {
		return nil, fmt.Errorf("notifications list: %w", err)
	}

	resp, err := c.httpc.Do(req)
	if err != nil {
		return nil, fmt.Errorf("notifications list: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("notifications list: unexpected status %d", resp.StatusCode)
	}

	var records []domain.Notification
	if err := json.NewDecoder(resp.Body).Decode(&records); err != nil {
		return nil, fmt.Errorf("notifications list: parse response: %w", err)
	}

	return records, nil
}

// MarkRead posts the mark-read mutation to
// POST <base>/notifications/mark-read/<id>.
func (c *Client) MarkRead(ctx context.Context, id string) error {
	if id == "" {
		return fmt.Errorf("notifications mark-read: empty id")
	}

	req, err := c.newRequest(ctx, http.MethodPost, "/notifications/mark-read/"+id)
	if err != nil {
		return fmt.Errorf("notifications mark-read: %w", err)
	}

	resp, err := c.httpc.Do(req)
	if err != nil {
		return fmt.Errorf("notifications mark-read: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("notifications mark-read: unexpected status %d", resp.StatusCode)
	}

	return nil
}
