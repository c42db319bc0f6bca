package infrastructure

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func startHub(t *testing.T) (*Hub, *httptest.Server, context.CancelFunc) {
	t.Helper()
	hub := NewHub()
	ctx, cancel := context.WithCancel(context.Background())
	go hub.Run(ctx)

	upgrader := websocket.Upgrader{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		hub.Serve(conn, r.URL.Query().Get("uid"))
	}))
	return hub, srv, cancel
}

func dial(t *testing.T, srv *httptest.Server, uid string) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/?uid=" + uid
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	return conn
}

func TestHubPushToAllConnectionsOfUser(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())
	hub, srv, cancel := startHub(t)
	defer srv.Close()
	defer cancel()

	a := dial(t, srv, "u1")
	defer a.Close()
	b := dial(t, srv, "u1")
	defer b.Close()
	require.Eventually(t, func() bool { return hub.Connections("u1") == 2 }, time.Second, 5*time.Millisecond)

	assert.Equal(t, 2, hub.Push("u1", []byte(`{"title":"Order shipped"}`)))
	assert.Equal(t, 0, hub.Push("u2", []byte(`{}`)))

	for _, c := range []*websocket.Conn{a, b} {
		require.NoError(t, c.SetReadDeadline(time.Now().Add(time.Second)))
		_, msg, err := c.ReadMessage()
		require.NoError(t, err)
		assert.JSONEq(t, `{"title":"Order shipped"}`, string(msg))
	}

	require.NoError(t, a.Close())
	require.Eventually(t, func() bool { return hub.Connections("u1") == 1 }, time.Second, 5*time.Millisecond)
}

func TestHubStopClosesConnections(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())
	hub, srv, cancel := startHub(t)
	defer srv.Close()

	c := dial(t, srv, "u1")
	defer c.Close()
	require.Eventually(t, func() bool { return hub.Connections("u1") == 1 }, time.Second, 5*time.Millisecond)

	cancel()
	require.NoError(t, c.SetReadDeadline(time.Now().Add(time.Second)))
	_, _, err := c.ReadMessage()
	assert.Error(t, err)
	assert.Equal(t, 0, hub.Connections("u1"))
}
