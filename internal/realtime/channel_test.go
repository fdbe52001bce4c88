package realtime

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/JBBSoftech/watter/internal/models"
	"github.com/JBBSoftech/watter/internal/platform"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var upgrader = websocket.Upgrader{}

func newWSServer(t *testing.T, onConn func(conn *websocket.Conn)) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()
		onConn(conn)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func wsURL(srv *httptest.Server) string {
	return "ws" + strings.TrimPrefix(srv.URL, "http")
}

func newTestSession(t *testing.T) *platform.Session {
	t.Helper()
	session, err := platform.NewSession("tenant-1", "")
	require.NoError(t, err)
	return session
}

func TestChannelJoinsRoomAndDeliversEvents(t *testing.T) {
	joined := make(chan models.RealtimeEvent, 1)
	srv := newWSServer(t, func(conn *websocket.Conn) {
		var join models.RealtimeEvent
		require.NoError(t, conn.ReadJSON(&join))
		joined <- join

		require.NoError(t, conn.WriteJSON(models.RealtimeEvent{Kind: models.EventKindRoomJoined}))
		require.NoError(t, conn.WriteJSON(models.RealtimeEvent{Kind: models.EventKindDynamicUpdate}))

		// Keep the connection open until the client closes it.
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	})

	received := make(chan models.RealtimeEvent, 8)
	ch := NewChannel(Options{
		URL:               wsURL(srv),
		MaxReconnects:     3,
		ReconnectInterval: 50 * time.Millisecond,
	}, newTestSession(t))
	ch.OnEvent(func(event models.RealtimeEvent) {
		received <- event
	})
	ch.Start(context.Background())
	defer ch.Close()

	join := <-joined
	assert.Equal(t, models.EventKindJoinAdminRoom, join.Kind)
	var msg models.JoinRoomMessage
	require.NoError(t, json.Unmarshal(join.Payload, &msg))
	assert.Equal(t, "tenant-1", msg.TenantID)

	deadline := time.After(2 * time.Second)
	var kinds []string
	for len(kinds) < 2 {
		select {
		case ev := <-received:
			kinds = append(kinds, ev.Kind)
		case <-deadline:
			t.Fatalf("timed out waiting for events, got %v", kinds)
		}
	}
	assert.Contains(t, kinds, models.EventKindRoomJoined)
	assert.Contains(t, kinds, models.EventKindDynamicUpdate)

	require.Eventually(t, ch.RoomJoined, time.Second, 5*time.Millisecond)
	assert.True(t, ch.IsConnected())
}

func TestEventDeliveryDoesNotRequireAck(t *testing.T) {
	srv := newWSServer(t, func(conn *websocket.Conn) {
		// Swallow the join and push an update without ever acking.
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
		_ = conn.WriteJSON(models.RealtimeEvent{Kind: models.EventKindHomePage})
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	})

	received := make(chan models.RealtimeEvent, 1)
	ch := NewChannel(Options{
		URL:               wsURL(srv),
		MaxReconnects:     3,
		ReconnectInterval: 50 * time.Millisecond,
	}, newTestSession(t))
	ch.OnEvent(func(event models.RealtimeEvent) {
		received <- event
	})
	ch.Start(context.Background())
	defer ch.Close()

	select {
	case ev := <-received:
		assert.Equal(t, models.EventKindHomePage, ev.Kind)
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for event")
	}
	assert.False(t, ch.RoomJoined())
}

func TestReconnectAfterServerDrop(t *testing.T) {
	var conns atomic.Int64
	srv := newWSServer(t, func(conn *websocket.Conn) {
		n := conns.Add(1)
		if n == 1 {
			// Drop the first connection immediately after the join.
			_, _, _ = conn.ReadMessage()
			return
		}
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	})

	ch := NewChannel(Options{
		URL:               wsURL(srv),
		MaxReconnects:     5,
		ReconnectInterval: 20 * time.Millisecond,
	}, newTestSession(t))
	ch.Start(context.Background())
	defer ch.Close()

	require.Eventually(t, func() bool {
		return conns.Load() >= 2 && ch.IsConnected()
	}, 2*time.Second, 10*time.Millisecond)
}

func TestCloseStopsReconnection(t *testing.T) {
	var conns atomic.Int64
	srv := newWSServer(t, func(conn *websocket.Conn) {
		conns.Add(1)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	})

	ch := NewChannel(Options{
		URL:               wsURL(srv),
		MaxReconnects:     10,
		ReconnectInterval: 10 * time.Millisecond,
	}, newTestSession(t))
	ch.Start(context.Background())

	require.Eventually(t, ch.IsConnected, 2*time.Second, 5*time.Millisecond)
	require.NoError(t, ch.Close())
	assert.False(t, ch.IsConnected())

	// No reconnection after an explicit close.
	before := conns.Load()
	time.Sleep(100 * time.Millisecond)
	assert.Equal(t, before, conns.Load())
}

func TestReconnectAttemptsAreBounded(t *testing.T) {
	ch := NewChannel(Options{
		URL:               "ws://127.0.0.1:1/real-time-updates",
		MaxReconnects:     2,
		ReconnectInterval: 10 * time.Millisecond,
	}, newTestSession(t))
	ch.Start(context.Background())

	// The run loop gives up after the attempt cap; Close must still return.
	require.Eventually(t, func() bool {
		select {
		case <-ch.done:
			return true
		default:
			return false
		}
	}, 2*time.Second, 10*time.Millisecond)
	require.NoError(t, ch.Close())
	assert.False(t, ch.IsConnected())
}

func TestCloseBeforeStartReturns(t *testing.T) {
	ch := NewChannel(Options{URL: "ws://127.0.0.1:1"}, newTestSession(t))
	require.NoError(t, ch.Close())
}
