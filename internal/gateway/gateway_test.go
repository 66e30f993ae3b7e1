package gateway

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"badgerbot/internal/config"
	"badgerbot/pkg/types"
)

var upgrader = websocket.Upgrader{}

// stubFeed is a minimal event-feed server: it acks every outbound frame and
// can inject inbound events.
type stubFeed struct {
	t *testing.T

	mu       sync.Mutex
	conn     *websocket.Conn
	received []frame
	ackError string

	connected chan struct{}
}

func newStubFeed(t *testing.T) (*stubFeed, *httptest.Server) {
	f := &stubFeed{t: t, connected: make(chan struct{}, 1)}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		f.mu.Lock()
		f.conn = conn
		f.mu.Unlock()
		f.connected <- struct{}{}

		for {
			_, data, err := conn.ReadMessage()
			if err != nil {
				return
			}
			var in frame
			if err := json.Unmarshal(data, &in); err != nil {
				continue
			}

			f.mu.Lock()
			f.received = append(f.received, in)
			ack := frame{Op: opAck, Nonce: in.Nonce, MessageID: "msg-42", Error: f.ackError}
			f.mu.Unlock()

			out, _ := json.Marshal(ack)
			if err := conn.WriteMessage(websocket.TextMessage, out); err != nil {
				return
			}
		}
	}))
	t.Cleanup(srv.Close)
	return f, srv
}

func (f *stubFeed) inject(fr frame) {
	f.mu.Lock()
	conn := f.conn
	f.mu.Unlock()
	require.NotNil(f.t, conn)

	data, err := json.Marshal(fr)
	require.NoError(f.t, err)
	require.NoError(f.t, conn.WriteMessage(websocket.TextMessage, data))
}

func (f *stubFeed) lastReceived() frame {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.received[len(f.received)-1]
}

func testGatewayConfig(serverURL string) config.GatewayConfig {
	return config.GatewayConfig{
		URL:            "ws" + strings.TrimPrefix(serverURL, "http"),
		Token:          "test-token",
		WriteTimeout:   time.Second,
		ReadTimeout:    0,
		ReconnectBase:  10 * time.Millisecond,
		ReconnectLimit: 50 * time.Millisecond,
		BufferSize:     16,
	}
}

func startGateway(t *testing.T, feed *stubFeed, srv *httptest.Server) (*Gateway, context.CancelFunc) {
	t.Helper()

	log := logrus.New()
	log.SetLevel(logrus.PanicLevel)

	g := New(testGatewayConfig(srv.URL), log)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		_ = g.Run(ctx)
		close(done)
	}()
	t.Cleanup(func() {
		cancel()
		select {
		case <-done:
		case <-time.After(time.Second):
			t.Error("gateway did not stop")
		}
	})

	select {
	case <-feed.connected:
	case <-time.After(time.Second):
		t.Fatal("gateway never connected")
	}
	return g, cancel
}

func TestReplyReturnsHandleFromAck(t *testing.T) {
	feed, srv := newStubFeed(t)
	g, _ := startGateway(t, feed, srv)

	page := types.Page{Title: "hello"}
	handle, err := g.Reply(context.Background(), "int-1", types.Reply{Page: &page})
	require.NoError(t, err)
	assert.Equal(t, types.ReplyHandle("msg-42"), handle)

	sent := feed.lastReceived()
	assert.Equal(t, opReply, sent.Op)
	assert.Equal(t, "int-1", sent.InteractionID)
	assert.NotEmpty(t, sent.Nonce)
	require.NotNil(t, sent.Reply)
	assert.Equal(t, "hello", sent.Reply.Page.Title)
}

func TestEditSendsFrame(t *testing.T) {
	feed, srv := newStubFeed(t)
	g, _ := startGateway(t, feed, srv)

	err := g.Edit(context.Background(), "msg-7", types.Page{Title: "p2"}, types.ControlSet{})
	require.NoError(t, err)

	sent := feed.lastReceived()
	assert.Equal(t, opEdit, sent.Op)
	assert.Equal(t, "msg-7", sent.MessageID)
}

func TestReplyEphemeralSetsFlag(t *testing.T) {
	feed, srv := newStubFeed(t)
	g, _ := startGateway(t, feed, srv)

	require.NoError(t, g.ReplyEphemeral(context.Background(), "int-1", "only you can see this"))

	sent := feed.lastReceived()
	require.NotNil(t, sent.Reply)
	assert.True(t, sent.Reply.Ephemeral)
	assert.Equal(t, "only you can see this", sent.Reply.Content)
}

func TestRemoteErrorSurfaces(t *testing.T) {
	feed, srv := newStubFeed(t)
	g, _ := startGateway(t, feed, srv)

	feed.mu.Lock()
	feed.ackError = "unknown interaction"
	feed.mu.Unlock()

	_, err := g.Reply(context.Background(), "int-1", types.Reply{Content: "x"})
	require.Error(t, err)

	var remote *RemoteError
	require.ErrorAs(t, err, &remote)
	assert.Equal(t, "unknown interaction", remote.Message)
}

func TestInboundEventsRouted(t *testing.T) {
	feed, srv := newStubFeed(t)

	log := logrus.New()
	log.SetLevel(logrus.PanicLevel)
	g := New(testGatewayConfig(srv.URL), log)

	commandCh := make(chan types.CommandEvent, 1)
	componentCh := make(chan types.ComponentEvent, 1)
	g.Route(
		func(_ context.Context, ev types.CommandEvent) { commandCh <- ev },
		func(_ context.Context, ev types.ComponentEvent) { componentCh <- ev },
	)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() { _ = g.Run(ctx) }()

	select {
	case <-feed.connected:
	case <-time.After(time.Second):
		t.Fatal("gateway never connected")
	}

	feed.inject(frame{Op: opCommand, Command: &types.CommandEvent{
		ID: "int-1", Name: "search", UserID: "u1",
		Options: map[string]string{"query": "algorithms"},
	}})

	select {
	case ev := <-commandCh:
		assert.Equal(t, "search", ev.Name)
		assert.Equal(t, "algorithms", ev.Options["query"])
	case <-time.After(time.Second):
		t.Fatal("command event never routed")
	}

	feed.inject(frame{Op: opComponent, Component: &types.ComponentEvent{
		ID: "int-2", UserID: "u1", CustomID: "u1:sess:next:",
	}})

	select {
	case ev := <-componentCh:
		assert.Equal(t, "u1:sess:next:", ev.CustomID)
	case <-time.After(time.Second):
		t.Fatal("component event never routed")
	}
}

func TestSendWhileDisconnected(t *testing.T) {
	log := logrus.New()
	log.SetLevel(logrus.PanicLevel)
	g := New(config.GatewayConfig{WriteTimeout: time.Second}, log)

	_, err := g.Reply(context.Background(), "int-1", types.Reply{Content: "x"})
	assert.ErrorIs(t, err, ErrNotConnected)
}

func TestReconnectAfterConnectionLoss(t *testing.T) {
	feed, srv := newStubFeed(t)
	g, _ := startGateway(t, feed, srv)

	feed.mu.Lock()
	conn := feed.conn
	feed.mu.Unlock()
	require.NoError(t, conn.Close())

	select {
	case <-feed.connected:
	case <-time.After(2 * time.Second):
		t.Fatal("gateway never reconnected")
	}

	require.Eventually(t, func() bool {
		_, err := g.Reply(context.Background(), "int-1", types.Reply{Content: "x"})
		return err == nil
	}, 2*time.Second, 20*time.Millisecond)
}
