package realtime

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"nhooyr.io/websocket"
	"nhooyr.io/websocket/wsjson"
)

func TestHubJoinLeave(t *testing.T) {
	h := NewHub()
	var seen []int
	h.OnChange(func(n int) { seen = append(seen, n) })

	a := h.Join()
	assert.Equal(t, 1, <-a.C)

	b := h.Join()
	assert.Equal(t, 2, <-a.C)
	assert.Equal(t, 2, <-b.C)
	assert.Equal(t, 2, h.Count())

	h.Leave(b)
	assert.Equal(t, 1, <-a.C)
	h.Leave(b)
	assert.Equal(t, 1, h.Count())

	h.Leave(a)
	assert.Equal(t, 0, h.Count())
	assert.Equal(t, []int{1, 2, 1, 0}, seen)
}

func TestHubSlowListenerGetsLatest(t *testing.T) {
	h := NewHub()
	slow := h.Join()
	for i := 0; i < 5; i++ {
		h.Join()
	}
	assert.Equal(t, 6, <-slow.C)
	select {
	case n := <-slow.C:
		t.Fatalf("unexpected stale value %d", n)
	default:
	}
}

func TestHubConcurrent(t *testing.T) {
	h := NewHub()
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			sub := h.Join()
			h.Leave(sub)
		}()
	}
	wg.Wait()
	assert.Equal(t, 0, h.Count())
}

func dial(t *testing.T, ctx context.Context, srv *httptest.Server) *websocket.Conn {
	t.Helper()
	u := "ws" + strings.TrimPrefix(srv.URL, "http")
	conn, _, err := websocket.Dial(ctx, u, nil)
	require.NoError(t, err)
	return conn
}

func readUntil(t *testing.T, ctx context.Context, conn *websocket.Conn, want int) {
	t.Helper()
	for {
		var msg Message
		require.NoError(t, wsjson.Read(ctx, conn, &msg))
		assert.Equal(t, EventOnlineUsers, msg.Event)
		if msg.Count == want {
			return
		}
	}
}

func TestServeWS(t *testing.T) {
	h := NewHub()
	srv := httptest.NewServer(http.HandlerFunc(h.ServeWS))
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	first := dial(t, ctx, srv)
	defer first.Close(websocket.StatusNormalClosure, "")
	readUntil(t, ctx, first, 1)

	second := dial(t, ctx, srv)
	readUntil(t, ctx, second, 2)
	readUntil(t, ctx, first, 2)

	require.NoError(t, second.Close(websocket.StatusNormalClosure, ""))
	readUntil(t, ctx, first, 1)
	assert.Equal(t, 1, h.Count())
}
