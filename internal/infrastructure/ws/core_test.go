package ws

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/hilthontt/encore/internal/infrastructure/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

type frame struct {
	Type    string  `json:"type"`
	Topic   string  `json:"topic"`
	Data    float64 `json:"data"`
	Loading bool    `json:"loading"`
	Error   string  `json:"error"`
}

func startHub(t *testing.T, sub Subscription) (*Hub, *httptest.Server, context.CancelFunc, chan error) {
	t.Helper()

	hub := NewHub(NewMemoryFeed(), []string{"*"}, logger.NewNop())
	ctx, cancel := context.WithCancel(context.Background())

	runErr := make(chan error, 1)
	go func() { runErr <- hub.Run(ctx) }()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		_ = hub.Serve(w, r, q.Get("uid"), q.Get("sid"), sub)
	}))

	return hub, srv, cancel, runErr
}

func dial(t *testing.T, srv *httptest.Server, uid string) *websocket.Conn {
	t.Helper()
	return dialSession(t, srv, uid, "")
}

func dialSession(t *testing.T, srv *httptest.Server, uid, sid string) *websocket.Conn {
	t.Helper()

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/?uid=" + uid + "&sid=" + sid
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	return conn
}

func readFrame(t *testing.T, conn *websocket.Conn) frame {
	t.Helper()

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))
	var f frame
	require.NoError(t, conn.ReadJSON(&f))
	return f
}

func TestHubPushesLoadingThenSnapshotsOnChange(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	var runs atomic.Int64
	hub, srv, cancel, runErr := startHub(t, Subscription{
		Topic:  "queue",
		Tables: []string{TableSongRequests},
		Query: func(ctx context.Context) (any, error) {
			return runs.Add(1), nil
		},
	})
	defer srv.Close()

	conn := dial(t, srv, "u1")
	defer conn.Close()

	first := readFrame(t, conn)
	assert.True(t, first.Loading)
	assert.Equal(t, "queue", first.Topic)

	second := readFrame(t, conn)
	assert.False(t, second.Loading)
	assert.Equal(t, float64(1), second.Data)

	hub.Notify(context.Background(), TableNotifications, "")
	hub.Notify(context.Background(), TableSongRequests, "r1")

	third := readFrame(t, conn)
	assert.Equal(t, SnapshotMessage, third.Type)
	assert.Equal(t, float64(2), third.Data)

	cancel()
	require.NoError(t, <-runErr)

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))
	_, _, err := conn.ReadMessage()
	assert.True(t, websocket.IsCloseError(err, websocket.CloseNormalClosure), "got %v", err)
}

func TestHubTerminatesUserSessions(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	hub, srv, cancel, runErr := startHub(t, Subscription{
		Topic:  "queue",
		Tables: []string{TableSongRequests},
		Query: func(ctx context.Context) (any, error) {
			return 0, nil
		},
	})
	defer srv.Close()

	victim := dial(t, srv, "u1")
	defer victim.Close()
	bystander := dial(t, srv, "u2")
	defer bystander.Close()

	for _, c := range []*websocket.Conn{victim, bystander} {
		readFrame(t, c)
		readFrame(t, c)
	}
	require.Eventually(t, func() bool { return hub.Count() == 2 }, 5*time.Second, 10*time.Millisecond)

	hub.TerminateUser(context.Background(), "u1")

	f := readFrame(t, victim)
	assert.Equal(t, SessionTerminatedMessage, f.Type)

	require.NoError(t, victim.SetReadDeadline(time.Now().Add(5*time.Second)))
	_, _, err := victim.ReadMessage()
	assert.Error(t, err)

	require.Eventually(t, func() bool { return hub.Count() == 1 }, 5*time.Second, 10*time.Millisecond)

	cancel()
	require.NoError(t, <-runErr)
}

func TestHubTerminatesSingleSession(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	hub, srv, cancel, runErr := startHub(t, Subscription{
		Topic:  "queue",
		Tables: []string{TableSongRequests},
		Query: func(ctx context.Context) (any, error) {
			return 0, nil
		},
	})
	defer srv.Close()

	laptop := dialSession(t, srv, "u1", "s1")
	defer laptop.Close()
	phone := dialSession(t, srv, "u1", "s2")
	defer phone.Close()

	for _, c := range []*websocket.Conn{laptop, phone} {
		readFrame(t, c)
		readFrame(t, c)
	}
	require.Eventually(t, func() bool { return hub.Count() == 2 }, 5*time.Second, 10*time.Millisecond)

	hub.TerminateSession(context.Background(), "s1")

	f := readFrame(t, laptop)
	assert.Equal(t, SessionTerminatedMessage, f.Type)
	require.Eventually(t, func() bool { return hub.Count() == 1 }, 5*time.Second, 10*time.Millisecond)

	hub.Notify(context.Background(), TableSongRequests, "")
	f = readFrame(t, phone)
	assert.Equal(t, SnapshotMessage, f.Type)

	cancel()
	require.NoError(t, <-runErr)
}

func TestHubReportsQueryErrors(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	_, srv, cancel, runErr := startHub(t, Subscription{
		Topic: "request:r1",
		Query: func(ctx context.Context) (any, error) {
			return nil, errors.New("not found")
		},
	})
	defer srv.Close()

	conn := dial(t, srv, "u1")
	defer conn.Close()

	readFrame(t, conn)
	f := readFrame(t, conn)
	assert.Equal(t, "not found", f.Error)
	assert.False(t, f.Loading)

	cancel()
	require.NoError(t, <-runErr)
}

func TestMemoryFeedClosesOnCancel(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	feed := NewMemoryFeed()
	ctx, cancel := context.WithCancel(context.Background())

	ch, err := feed.Subscribe(ctx)
	require.NoError(t, err)

	require.NoError(t, feed.Publish(ctx, Change{Table: TableSongRequests, ID: "r1"}))
	assert.Equal(t, Change{Table: TableSongRequests, ID: "r1"}, <-ch)

	cancel()
	_, ok := <-ch
	assert.False(t, ok)
}
