package websocket

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/ragtrainer/gateway/internal/infrastructure/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHub_BroadcastToWorkspace(t *testing.T) {
	hub := NewHub(&config.NewConfig().WebSocket)
	hub.Start()
	defer hub.Stop()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = hub.Serve(w, r, r.URL.Query().Get("ws"))
	}))
	defer srv.Close()

	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	connA, _, err := websocket.DefaultDialer.Dial(url+"?ws=a", nil)
	require.NoError(t, err)
	defer connA.Close()
	connB, _, err := websocket.DefaultDialer.Dial(url+"?ws=b", nil)
	require.NoError(t, err)
	defer connB.Close()

	require.Eventually(t, func() bool {
		return hub.Subscribers("a") == 1 && hub.Subscribers("b") == 1
	}, time.Second, 10*time.Millisecond)

	require.NoError(t, hub.BroadcastToWorkspace("a", map[string]string{"kind": "documents_loaded"}))

	_ = connA.SetReadDeadline(time.Now().Add(time.Second))
	_, data, err := connA.ReadMessage()
	require.NoError(t, err)
	assert.JSONEq(t, `{"kind":"documents_loaded"}`, string(data))

	// 其他工作区收不到
	_ = connB.SetReadDeadline(time.Now().Add(100 * time.Millisecond))
	_, _, err = connB.ReadMessage()
	assert.Error(t, err)
}

func TestHub_UnregisterOnClose(t *testing.T) {
	hub := NewHub(&config.NewConfig().WebSocket)
	hub.Start()
	defer hub.Stop()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = hub.Serve(w, r, "ws-1")
	}))
	defer srv.Close()

	conn, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(srv.URL, "http"), nil)
	require.NoError(t, err)

	require.Eventually(t, func() bool { return hub.Subscribers("ws-1") == 1 }, time.Second, 10*time.Millisecond)
	conn.Close()
	assert.Eventually(t, func() bool { return hub.Subscribers("ws-1") == 0 }, time.Second, 10*time.Millisecond)
}

func TestHub_BroadcastAfterStop(t *testing.T) {
	hub := NewHub(&config.NewConfig().WebSocket)
	hub.Start()
	hub.Stop()
	hub.Stop()

	assert.NoError(t, hub.BroadcastToWorkspace("x", map[string]int{"n": 1}))
}
