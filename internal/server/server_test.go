package server

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/peoplekit/inbox-sync/internal/domain"
)

func newTestServer(t *testing.T) (*httptest.Server, *TokenService) {
	t.Helper()

	storage, err := NewStorage(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = storage.Close() })

	tokens := NewTokenService("test-secret", time.Hour)
	srv := NewServer(storage, tokens)
	t.Cleanup(srv.Close)

	ts := httptest.NewServer(srv.Router())
	t.Cleanup(ts.Close)
	return ts, tokens
}

func authToken(t *testing.T, tokens *TokenService, userID int64) string {
	t.Helper()
	token, err := tokens.Generate(userID)
	require.NoError(t, err)
	return token
}

func doJSON(t *testing.T, method, url, token string, body any) *http.Response {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(payload)
	} else {
		reader = bytes.NewReader(nil)
	}

	req, err := http.NewRequest(method, url, reader)
	require.NoError(t, err)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { _ = resp.Body.Close() })
	return resp
}

func createNotification(t *testing.T, ts *httptest.Server, token, title string) domain.Notification {
	t.Helper()

	resp := doJSON(t, http.MethodPost, ts.URL+"/api/v1/notifications/", token,
		map[string]string{"title": title, "message": "body of " + title, "type": "task"})
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var record domain.Notification
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&record))
	return record
}

func TestListNotifications_RequiresAuth(t *testing.T) {
	ts, _ := newTestServer(t)

	resp, err := http.Get(ts.URL + "/api/v1/notifications/")
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestListNotifications_RejectsForgedToken(t *testing.T) {
	ts, _ := newTestServer(t)
	forged := authToken(t, NewTokenService("other-secret", time.Hour), 1)

	resp := doJSON(t, http.MethodGet, ts.URL+"/api/v1/notifications/", forged, nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestCreateAndList_NewestFirst(t *testing.T) {
	ts, tokens := newTestServer(t)
	token := authToken(t, tokens, 1)

	first := createNotification(t, ts, token, "First")
	second := createNotification(t, ts, token, "Second")

	resp := doJSON(t, http.MethodGet, ts.URL+"/api/v1/notifications/", token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var records []domain.Notification
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&records))
	require.Len(t, records, 2)
	assert.Equal(t, second.ID, records[0].ID)
	assert.Equal(t, first.ID, records[1].ID)
	assert.Equal(t, domain.StatusUnread, records[0].Status)
	assert.NotEmpty(t, records[0].CreatedAt)
}

func TestList_IsScopedToUser(t *testing.T) {
	ts, tokens := newTestServer(t)
	alice := authToken(t, tokens, 1)
	bob := authToken(t, tokens, 2)

	createNotification(t, ts, alice, "For alice")

	resp := doJSON(t, http.MethodGet, ts.URL+"/api/v1/notifications/", bob, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var records []domain.Notification
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&records))
	assert.Empty(t, records)
}

func TestMarkRead_FlipsStatus(t *testing.T) {
	ts, tokens := newTestServer(t)
	token := authToken(t, tokens, 1)

	record := createNotification(t, ts, token, "To read")

	resp := doJSON(t, http.MethodPost, ts.URL+"/api/v1/notifications/mark-read/"+record.ID, token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp = doJSON(t, http.MethodGet, ts.URL+"/api/v1/notifications/", token, nil)
	var records []domain.Notification
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&records))
	require.Len(t, records, 1)
	assert.Equal(t, domain.StatusRead, records[0].Status)
}

func TestMarkRead_UnknownIDReturnsNotFound(t *testing.T) {
	ts, tokens := newTestServer(t)
	token := authToken(t, tokens, 1)

	resp := doJSON(t, http.MethodPost, ts.URL+"/api/v1/notifications/mark-read/999", token, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp = doJSON(t, http.MethodPost, ts.URL+"/api/v1/notifications/mark-read/not-a-number", token, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestIssueToken_RoundTrips(t *testing.T) {
	ts, tokens := newTestServer(t)

	resp := doJSON(t, http.MethodPost, ts.URL+"/api/v1/auth/token", "", map[string]int64{"user_id": 7})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var out struct {
		Token string `json:"token"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	require.NotEmpty(t, out.Token)

	claims, err := tokens.Validate(out.Token)
	require.NoError(t, err)
	assert.Equal(t, int64(7), claims.UserID)
}

func wsURL(ts *httptest.Server, token string) string {
	return strings.Replace(ts.URL, "http", "ws", 1) + "/ws/notifications?token=" + token
}

func TestSocket_RejectsMissingToken(t *testing.T) {
	ts, _ := newTestServer(t)

	url := strings.Replace(ts.URL, "http", "ws", 1) + "/ws/notifications"
	conn, resp, err := websocket.DefaultDialer.Dial(url, nil)
	require.Error(t, err)
	if conn != nil {
		_ = conn.Close()
	}
	require.NotNil(t, resp)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestSocket_BroadcastsCreatedNotifications(t *testing.T) {
	ts, tokens := newTestServer(t)
	token := authToken(t, tokens, 1)

	conn, _, err := websocket.DefaultDialer.Dial(wsURL(ts, token), nil)
	require.NoError(t, err)
	defer func() { _ = conn.Close() }()

	created := createNotification(t, ts, token, "Pushed live")

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	var msg domain.PushMessage
	require.NoError(t, conn.ReadJSON(&msg))

	assert.Equal(t, domain.PushTypeNotification, msg.Type)
	require.NotNil(t, msg.Notification)
	assert.Equal(t, created.ID, msg.Notification.ID)
	assert.Equal(t, "Pushed live", msg.Notification.Title)
	assert.Equal(t, domain.StatusUnread, msg.Notification.Status)
}

func TestSocket_DoesNotLeakAcrossUsers(t *testing.T) {
	ts, tokens := newTestServer(t)
	alice := authToken(t, tokens, 1)
	bob := authToken(t, tokens, 2)

	conn, _, err := websocket.DefaultDialer.Dial(wsURL(ts, bob), nil)
	require.NoError(t, err)
	defer func() { _ = conn.Close() }()

	createNotification(t, ts, alice, "Private to alice")

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(200*time.Millisecond)))
	var msg domain.PushMessage
	err = conn.ReadJSON(&msg)
	assert.Error(t, err, "bob must not receive alice's notification")
}
