package slack

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/primanata/aws-monitoring-hub-go/internal/shared/types"
)

func TestSendPostsJSONPayload(t *testing.T) {
	var got payload
	var contentType string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		contentType = r.Header.Get("Content-Type")
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	n := NewNotifier(types.SlackConfig{
		WebhookURL: server.URL,
		Channel:    "#monitoring",
		Username:   "monhub",
		IconEmoji:  ":robot_face:",
	}, zerolog.Nop())

	ok, detail := n.Send(context.Background(), "daily report ready")
	assert.True(t, ok)
	assert.Equal(t, "ok", detail)
	assert.Equal(t, "application/json", contentType)
	assert.Equal(t, "daily report ready", got.Text)
	assert.Equal(t, "#monitoring", got.Channel)
	assert.Equal(t, "monhub", got.Username)
	assert.Equal(t, ":robot_face:", got.IconEmoji)
}

func TestSendReportUsesRoute(t *testing.T) {
	var got payload
	routed := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.WriteHeader(http.StatusOK)
	}))
	defer routed.Close()

	n := NewNotifier(types.SlackConfig{
		WebhookURL: "http://127.0.0.1:1/default",
		Channel:    "#general",
		Routes: []types.SlackRoute{
			{Report: "backup", ClientKey: "aryanoble", WebhookURL: routed.URL, Channel: "#aryanoble-backup"},
		},
	}, zerolog.Nop())

	ok, detail := n.SendReport(context.Background(), "backup", "aryanoble", "backup digest")
	assert.True(t, ok)
	assert.Equal(t, "ok", detail)
	assert.Equal(t, "#aryanoble-backup", got.Channel)
}

func TestSendReportFallsBackToDefault(t *testing.T) {
	var got payload
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	n := NewNotifier(types.SlackConfig{
		WebhookURL: server.URL,
		Channel:    "#general",
		Routes: []types.SlackRoute{
			{Report: "backup", ClientKey: "aryanoble", WebhookURL: "http://127.0.0.1:1/routed"},
		},
	}, zerolog.Nop())

	ok, _ := n.SendReport(context.Background(), "rds", "aryanoble", "rds digest")
	assert.True(t, ok)
	assert.Equal(t, "#general", got.Channel)
}

func TestSendNon2xxFails(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer server.Close()

	n := NewNotifier(types.SlackConfig{WebhookURL: server.URL}, zerolog.Nop())

	ok, detail := n.Send(context.Background(), "text")
	assert.False(t, ok)
	assert.Equal(t, "slack responded with status 403", detail)
}

func TestSendWithoutWebhook(t *testing.T) {
	n := NewNotifier(types.SlackConfig{}, zerolog.Nop())

	ok, detail := n.Send(context.Background(), "text")
	assert.False(t, ok)
	assert.Equal(t, "no webhook configured", detail)
}
