package api

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/peoplekit/inbox-sync/internal/auth"
	"github.com/peoplekit/inbox-sync/internal/domain"
)

func TestList_DecodesBaseline(t *testing.T) {
	var gotAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/api/v1/notifications/", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[
			{"id":"1","title":"Task assigned","message":"Review payroll","type":"TASK_ASSIGNED","status":"UNREAD","created_at":"2024-01-01T12:00:00Z"},
			{"id":"2","title":"Shift updated","message":"","type":"SHIFT_UPDATED","status":"READ","created_at":"2024-01-02T09:30:00Z"}
		]`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL+"/api/v1", auth.NewStatic("tok-123"))
	records, err := c.List(context.Background())
	require.NoError(t, err)

	assert.Equal(t, "Bearer tok-123", gotAuth)
	require.Len(t, records, 2)
	assert.Equal(t, "1", records[0].ID)
	assert.Equal(t, domain.StatusUnread, records[0].Status)
	assert.Equal(t, domain.StatusRead, records[1].Status)
}

func TestList_NonOKStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, auth.NewStatic("tok"))
	_, err := c.List(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unexpected status 500")
}

func TestList_MalformedBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"not":"an array"`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, auth.NewStatic("tok"))
	_, err := c.List(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parse response")
}

func TestList_NetworkError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close() // closed before use

	c := NewClient(srv.URL, auth.NewStatic("tok"))
	_, err := c.List(context.Background())
	assert.Error(t, err)
}

func TestMarkRead_PostsToMutationPath(t *testing.T) {
	var gotMethod, gotPath, gotAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotMethod = r.Method
		gotPath = r.URL.Path
		gotAuth = r.Header.Get("Authorization")
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	c := NewClient(srv.URL+"/api/v1", auth.NewStatic("tok-456"))
	require.NoError(t, c.MarkRead(context.Background(), "42"))

	assert.Equal(t, http.MethodPost, gotMethod)
	assert.Equal(t, "/api/v1/notifications/mark-read/42", gotPath)
	assert.Equal(t, "Bearer tok-456", gotAuth)
}

func TestMarkRead_ServerFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, auth.NewStatic("tok"))
	err := c.MarkRead(context.Background(), "42")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unexpected status 502")
}

func TestMarkRead_EmptyID(t *testing.T) {
	c := NewClient("http://unused", auth.NewStatic("tok"))
	assert.Error(t, c.MarkRead(context.Background(), ""))
}
