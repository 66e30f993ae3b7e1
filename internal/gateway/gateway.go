// Package gateway maintains the websocket connection to the chat platform's
// event feed. It turns inbound frames into command and component events,
// and implements the reply transport by writing frames back and correlating
// acks by nonce.
package gateway

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"

	"badgerbot/internal/config"
	"badgerbot/pkg/types"
)

// CommandFunc handles one inbound slash-command event.
type CommandFunc func(ctx context.Context, ev types.CommandEvent)

// ComponentFunc handles one inbound component callback.
type ComponentFunc func(ctx context.Context, ev types.ComponentEvent)

// Gateway owns the event-feed connection for the lifetime of the process,
// reconnecting with capped exponential backoff when the feed drops.
type Gateway struct {
	cfg config.GatewayConfig
	log *logrus.Logger

	onCommand   CommandFunc
	onComponent ComponentFunc

	mu      sync.RWMutex
	conn    *connection
	pending map[string]chan frame
}

// New creates a gateway. Route must be called before Run.
func New(cfg config.GatewayConfig, log *logrus.Logger) *Gateway {
	return &Gateway{
		cfg:     cfg,
		log:     log,
		pending: make(map[string]chan frame),
	}
}

// Route installs the event handlers. The gateway is constructed before the
// dispatch layer because the dispatch layer needs it as a transport, so the
// handlers arrive late.
func (g *Gateway) Route(onCommand CommandFunc, onComponent ComponentFunc) {
	g.onCommand = onCommand
	g.onComponent = onComponent
}

// Run connects to the feed and processes events until ctx is cancelled.
// Connection loss is not fatal; Run redials with backoff.
func (g *Gateway) Run(ctx context.Context) error {
	backoff := g.cfg.ReconnectBase
	for {
		conn, err := g.dial(ctx)
		if err != nil {
			g.log.WithError(err).WithField("retry_in", backoff).Warn("gateway dial failed")
			select {
			case <-time.After(backoff):
			case <-ctx.Done():
				return ctx.Err()
			}
			backoff *= 2
			if backoff > g.cfg.ReconnectLimit {
				backoff = g.cfg.ReconnectLimit
			}
			continue
		}

		backoff = g.cfg.ReconnectBase
		g.setConn(conn)
		g.log.WithField("url", g.cfg.URL).Info("gateway connected")

		err = g.readLoop(ctx, conn)
		g.setConn(nil)
		g.failPending()
		conn.close()

		if ctx.Err() != nil {
			return ctx.Err()
		}
		g.log.WithError(err).Warn("gateway connection lost")
	}
}

func (g *Gateway) dial(ctx context.Context) (*connection, error) {
	header := http.Header{}
	if g.cfg.Token != "" {
		header.Set("Authorization", "Bot "+g.cfg.Token)
	}
	ws, _, err := websocket.DefaultDialer.DialContext(ctx, g.cfg.URL, header)
	if err != nil {
		return nil, err
	}
	return newConnection(ws, g.cfg.BufferSize, g.cfg.WriteTimeout), nil
}

func (g *Gateway) readLoop(ctx context.Context, conn *connection) error {
	for {
		var f frame
		if err := conn.readJSON(g.cfg.ReadTimeout, &f); err != nil {
			return err
		}

		switch f.Op {
		case opCommand:
			if f.Command == nil || g.onCommand == nil {
				continue
			}
			ev := *f.Command
			go g.onCommand(ctx, ev)
		case opComponent:
			if f.Component == nil || g.onComponent == nil {
				continue
			}
			ev := *f.Component
			go g.onComponent(ctx, ev)
		case opAck:
			g.resolvePending(f)
		default:
			g.log.WithField("op", f.Op).Debug("ignoring unknown frame")
		}
	}
}

func (g *Gateway) setConn(conn *connection) {
	g.mu.Lock()
	g.conn = conn
	g.mu.Unlock()
}

func (g *Gateway) current() *connection {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.conn
}

func (g *Gateway) addPending(nonce string) chan frame {
	ch := make(chan frame, 1)
	g.mu.Lock()
	g.pending[nonce] = ch
	g.mu.Unlock()
	return ch
}

func (g *Gateway) removePending(nonce string) {
	g.mu.Lock()
	delete(g.pending, nonce)
	g.mu.Unlock()
}

func (g *Gateway) resolvePending(f frame) {
	g.mu.Lock()
	ch, ok := g.pending[f.Nonce]
	if ok {
		delete(g.pending, f.Nonce)
	}
	g.mu.Unlock()
	if ok {
		ch <- f
	}
}

// failPending drops every in-flight ack wait when the connection dies so
// callers time out immediately instead of hanging for the full deadline.
func (g *Gateway) failPending() {
	g.mu.Lock()
	for nonce, ch := range g.pending {
		close(ch)
		delete(g.pending, nonce)
	}
	g.mu.Unlock()
}

// send writes a frame and waits for the matching ack.
func (g *Gateway) send(ctx context.Context, f frame) (frame, error) {
	conn := g.current()
	if conn == nil {
		return frame{}, ErrNotConnected
	}

	f.Nonce = uuid.NewString()
	ch := g.addPending(f.Nonce)

	if err := conn.writeJSON(ctx, f); err != nil {
		g.removePending(f.Nonce)
		return frame{}, err
	}

	select {
	case ack, ok := <-ch:
		if !ok {
			return frame{}, ErrConnectionClosed
		}
		if ack.Error != "" {
			return frame{}, &RemoteError{Op: f.Op, Message: ack.Error}
		}
		return ack, nil
	case <-time.After(g.cfg.WriteTimeout):
		g.removePending(f.Nonce)
		return frame{}, ErrWriteTimeout
	case <-ctx.Done():
		g.removePending(f.Nonce)
		return frame{}, ctx.Err()
	}
}

// Reply sends a new message answering an interaction and returns the handle
// of the created message.
func (g *Gateway) Reply(ctx context.Context, interactionID string, reply types.Reply) (types.ReplyHandle, error) {
	ack, err := g.send(ctx, frame{
		Op:            opReply,
		InteractionID: interactionID,
		Reply:         &reply,
	})
	if err != nil {
		return "", err
	}
	return types.ReplyHandle(ack.MessageID), nil
}

// Edit replaces the page and controls of an existing reply.
func (g *Gateway) Edit(ctx context.Context, handle types.ReplyHandle, page types.Page, controls types.ControlSet) error {
	_, err := g.send(ctx, frame{
		Op:        opEdit,
		MessageID: string(handle),
		Page:      &page,
		Controls:  &controls,
	})
	return err
}

// EditControls replaces only the controls of an existing reply.
func (g *Gateway) EditControls(ctx context.Context, handle types.ReplyHandle, controls types.ControlSet) error {
	_, err := g.send(ctx, frame{
		Op:        opEditControls,
		MessageID: string(handle),
		Controls:  &controls,
	})
	return err
}

// ReplyEphemeral sends a caller-only-visible text reply.
func (g *Gateway) ReplyEphemeral(ctx context.Context, interactionID string, content string) error {
	_, err := g.send(ctx, frame{
		Op:            opReply,
		InteractionID: interactionID,
		Reply:         &types.Reply{Content: content, Ephemeral: true},
	})
	return err
}

// RemoteError is a failure reported by the feed in an ack frame.
type RemoteError struct {
	Op      string
	Message string
}

func (e *RemoteError) Error() string {
	return "gateway " + e.Op + " rejected: " + e.Message
}
