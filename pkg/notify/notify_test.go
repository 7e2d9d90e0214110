package notify

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestManagerWithoutNotifiers(t *testing.T) {
	assert.False(t, NewManager(nil).HasNotifiers())

	var m *Manager
	assert.False(t, m.HasNotifiers())
}

func TestWebhookSend(t *testing.T) {
	var got Announcement
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
	}))
	defer srv.Close()

	m := NewManager([]Notifier{NewWebhook(srv.URL)})
	require.True(t, m.HasNotifiers())

	err := m.Broadcast(context.Background(), &Announcement{
		GUID:       "abc123",
		Title:      "T1",
		AuthorName: "Ada Lovelace",
		URL:        "https://medium.com/p/abc123",
	})
	require.NoError(t, err)
	assert.Equal(t, "abc123", got.GUID)
	assert.Equal(t, "T1", got.Title)
}

func TestBroadcastCollectsFailures(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	m := NewManager([]Notifier{NewWebhook(srv.URL), NewDiscord(srv.URL)})
	err := m.Broadcast(context.Background(), &Announcement{GUID: "abc123"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "webhook")
	assert.Contains(t, err.Error(), "discord")
}
