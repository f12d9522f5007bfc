package notify_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/phasewatch/phasewatch/pkg/notify"
)

func TestDiscordNotifier_Name(t *testing.T) {
	n := notify.NewDiscordNotifier("https://discord.com/api/webhooks/x", "")
	assert.Equal(t, "discord", n.Name())
}

func TestDiscordNotifier_Send(t *testing.T) {
	var received map[string]any
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		err := json.NewDecoder(r.Body).Decode(&received)
		require.NoError(t, err)
		w.WriteHeader(http.StatusNoContent)
	}))
	defer server.Close()

	n := notify.NewDiscordNotifier(server.URL, "")
	msg := notify.Message{
		Channel: 1,
		Kind:    "increase",
		Level:   "WARNING",
		Value:   15.0,
		Content: "Channel **ONE** increased :arrow_up: alert level to **WARNING** 🟠 (`15.0 A`)",
	}

	err := n.Send(context.Background(), msg)
	require.NoError(t, err)
	assert.Equal(t, msg.Content, received["content"])
	_, hasUsername := received["username"]
	assert.False(t, hasUsername)
}

func TestDiscordNotifier_Send_WithUsername(t *testing.T) {
	var received map[string]any
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		err := json.NewDecoder(r.Body).Decode(&received)
		require.NoError(t, err)
		w.WriteHeader(http.StatusNoContent)
	}))
	defer server.Close()

	n := notify.NewDiscordNotifier(server.URL, "phasewatch")
	err := n.Send(context.Background(), notify.Message{Content: "hello"})
	require.NoError(t, err)
	assert.Equal(t, "phasewatch", received["username"])
}

func TestDiscordNotifier_Send_ServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer server.Close()

	n := notify.NewDiscordNotifier(server.URL, "")
	err := n.Send(context.Background(), notify.Message{Content: "hello"})
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "429")
}
