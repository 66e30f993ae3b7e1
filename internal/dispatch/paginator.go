package dispatch

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"

	"badgerbot/internal/components"
	"badgerbot/pkg/interfaces"
	"badgerbot/pkg/types"
)

// Paginator is the one place that turns produced pages into a live reply:
// single pages go out as plain replies, multi-page content becomes a session
// with pagination controls and an armed expiry.
type Paginator struct {
	store     interfaces.SessionStore
	transport interfaces.ReplyTransport
	scheduler interfaces.ExpiryScheduler
	ttl       time.Duration
	log       *logrus.Logger
}

// NewPaginator builds a paginator with the given session TTL.
func NewPaginator(store interfaces.SessionStore, transport interfaces.ReplyTransport, scheduler interfaces.ExpiryScheduler, ttl time.Duration, log *logrus.Logger) *Paginator {
	return &Paginator{
		store:     store,
		transport: transport,
		scheduler: scheduler,
		ttl:       ttl,
		log:       log,
	}
}

// Respond answers an interaction with the produced pages. Zero pages renders
// the canonical empty-result message; producers returning nothing and
// producers failing look identical here.
func (p *Paginator) Respond(ctx context.Context, interactionID, ownerID string, pages []types.Page) error {
	if len(pages) == 0 {
		return p.transport.ReplyEphemeral(ctx, interactionID, "No results found.")
	}

	if len(pages) == 1 {
		_, err := p.transport.Reply(ctx, interactionID, types.Reply{Page: &pages[0]})
		return err
	}

	s, err := p.store.Create(ownerID, pages, p.ttl)
	if err != nil {
		return err
	}

	controls := components.PaginationFor(s)
	handle, err := p.transport.Reply(ctx, interactionID, types.Reply{Page: &pages[0], Controls: controls})
	if err != nil {
		// The reply never went out; keeping the session would strand state
		// until TTL for controls nobody can click.
		p.store.Remove(s.ID)
		return err
	}

	p.scheduler.Arm(s.ID, handle, p.ttl, components.PaginationFor)

	p.log.WithFields(logrus.Fields{
		"session_id": s.ID,
		"owner_id":   ownerID,
		"pages":      len(pages),
	}).Debug("paginated session created")
	return nil
}

// RespondWithActions answers with a single page carrying result-action
// controls (and optionally stashed select options for nested flows). The
// backing session exists so callbacks can resolve it and so expiry disables
// the controls.
func (p *Paginator) RespondWithActions(ctx context.Context, interactionID, ownerID string, page types.Page, role types.ControlRole, items []components.ActionItem, options []string) error {
	s, err := p.store.Create(ownerID, []types.Page{page}, p.ttl)
	if err != nil {
		return err
	}

	if len(options) > 0 {
		if err := p.store.SetOptions(s.ID, options); err != nil {
			p.store.Remove(s.ID)
			return err
		}
	}

	controls, err := components.ActionButtons(ownerID, s.ID, role, items)
	if err != nil {
		p.store.Remove(s.ID)
		return err
	}

	handle, err := p.transport.Reply(ctx, interactionID, types.Reply{Page: &page, Controls: controls})
	if err != nil {
		p.store.Remove(s.ID)
		return err
	}

	// Action layouts are static; expiry replays the captured snapshot.
	p.scheduler.Arm(s.ID, handle, p.ttl, func(*types.Session) types.ControlSet {
		return controls
	})

	p.log.WithFields(logrus.Fields{
		"session_id": s.ID,
		"owner_id":   ownerID,
		"controls":   len(items),
	}).Debug("action session created")
	return nil
}
