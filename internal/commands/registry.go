// Package commands implements the slash-command handlers. Handlers call
// content producers, shape the results into pages and hand them to the
// paginator, which owns the session lifecycle for anything interactive.
package commands

import (
	"context"
	"sort"

	"github.com/sirupsen/logrus"

	"badgerbot/pkg/interfaces"
	"badgerbot/pkg/types"
)

// Handler is one registered slash command.
type Handler interface {
	// Name returns the command's invocation name.
	Name() string

	// Description returns the one-line help text.
	Description() string

	// Handle executes the command. Each invocation runs on its own
	// goroutine; handlers reply through the transport and never return
	// errors upward.
	Handle(ctx context.Context, ev types.CommandEvent)
}

// Registry routes command events to handlers by name.
type Registry struct {
	handlers  map[string]Handler
	transport interfaces.ReplyTransport
	log       *logrus.Logger
}

// NewRegistry creates an empty command registry.
func NewRegistry(transport interfaces.ReplyTransport, log *logrus.Logger) *Registry {
	return &Registry{
		handlers:  make(map[string]Handler),
		transport: transport,
		log:       log,
	}
}

// Register adds a handler. Later registrations with the same name win.
func (r *Registry) Register(h Handler) {
	r.handlers[h.Name()] = h
}

// Dispatch routes one command event.
func (r *Registry) Dispatch(ctx context.Context, ev types.CommandEvent) {
	h, ok := r.handlers[ev.Name]
	if !ok {
		r.log.WithField("command", ev.Name).Warn("unknown command")
		if err := r.transport.ReplyEphemeral(ctx, ev.ID, "Unknown command."); err != nil {
			r.log.WithError(err).Warn("failed to send unknown-command reply")
		}
		return
	}

	r.log.WithFields(logrus.Fields{
		"command": ev.Name,
		"user_id": ev.UserID,
	}).Info("executing command")

	h.Handle(ctx, ev)
}

// List returns registered handlers sorted by name. Used by the help command.
func (r *Registry) List() []Handler {
	out := make([]Handler, 0, len(r.handlers))
	for _, h := range r.handlers {
		out = append(out, h)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name() < out[j].Name() })
	return out
}
