// Package dispatch is the entry point for every component callback: it
// decodes the control identifier, enforces ownership and cooldowns, drives
// session transitions and emits the updated reply.
package dispatch

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"badgerbot/internal/components"
	"badgerbot/internal/database"
	"badgerbot/internal/producers"
	"badgerbot/internal/session"
	"badgerbot/pkg/interfaces"
	"badgerbot/pkg/types"
)

// User-facing rejection messages.
const (
	msgNotOwner = "You didn't request this!"
	msgStale    = "This menu has expired. Run the command again to get a fresh one."
	msgGeneric  = "An error has occurred. Please try again later."
)

func msgThrottled(label string, window time.Duration) string {
	return fmt.Sprintf("Stop spamming! You already selected `%s` recently. Please wait %d seconds...",
		label, int(window.Seconds()))
}

// CourseCatalog resolves a course by subject abbreviation and number.
type CourseCatalog interface {
	GetCourse(ctx context.Context, subjectAbbrev, number string) (*database.Course, error)
}

// RatingsProducer fetches per-course student ratings for a professor.
type RatingsProducer interface {
	StudentRatings(ctx context.Context, profID, course string) ([]producers.StudentRating, error)
}

// Formatters turn producer results into renderable pages. Injected by the
// application so this package stays free of presentation concerns.
type Formatters struct {
	CoursePage   func(c *database.Course) types.Page
	RatingsPages func(profName string, ratings []producers.StudentRating) []types.Page
}

// Config holds the dispatcher's lifecycle knobs.
type Config struct {
	CooldownWindow time.Duration
	SessionTTL     time.Duration
}

// Dispatcher routes component callbacks to their handlers.
type Dispatcher struct {
	store     interfaces.SessionStore
	cooldowns interfaces.CooldownLedger
	transport interfaces.ReplyTransport
	scheduler interfaces.ExpiryScheduler
	catalog   CourseCatalog
	ratings   RatingsProducer
	format    Formatters
	pager     *Paginator
	cfg       Config
	log       *logrus.Logger
}

// NewDispatcher wires a dispatcher.
func NewDispatcher(
	store interfaces.SessionStore,
	cooldowns interfaces.CooldownLedger,
	transport interfaces.ReplyTransport,
	scheduler interfaces.ExpiryScheduler,
	catalog CourseCatalog,
	ratings RatingsProducer,
	format Formatters,
	cfg Config,
	log *logrus.Logger,
) *Dispatcher {
	return &Dispatcher{
		store:     store,
		cooldowns: cooldowns,
		transport: transport,
		scheduler: scheduler,
		catalog:   catalog,
		ratings:   ratings,
		format:    format,
		pager:     NewPaginator(store, transport, scheduler, cfg.SessionTTL, log),
		cfg:       cfg,
		log:       log,
	}
}

// Paginator exposes the dispatcher's paginated-reply helper so command
// handlers share the exact session lifecycle used by nested flows.
func (d *Dispatcher) Paginator() *Paginator {
	return d.pager
}

// Handle processes one component callback. Every rejection is terminal for
// this single callback; no retries happen here.
func (d *Dispatcher) Handle(ctx context.Context, ev types.ComponentEvent) {
	// Expired cooldown entries are reclaimed on the way out of every
	// dispatch rather than by a dedicated timer.
	defer d.cooldowns.Sweep()

	log := d.log.WithFields(logrus.Fields{
		"dispatch_id": uuid.NewString(),
		"user_id":     ev.UserID,
	})

	control, err := types.DecodeControlID(ev.CustomID)
	if err != nil {
		// Ids are generated exclusively by this subsystem; a decode failure
		// means a forged or corrupted callback.
		log.WithError(err).WithField("custom_id", ev.CustomID).Error("malformed control id")
		d.ephemeral(ctx, log, ev.ID, msgGeneric)
		return
	}

	log = log.WithFields(logrus.Fields{
		"session_id": control.SessionID,
		"role":       control.Role.String(),
	})

	switch {
	case control.Role.Pagination():
		d.handlePagination(ctx, log, ev, control)
	case control.Role == types.RoleCourseDetail:
		d.handleCourseDetail(ctx, log, ev, control)
	case control.Role == types.RoleRatingsMenu:
		d.handleRatingsMenu(ctx, log, ev, control)
	case control.Role == types.RoleRatingsPick:
		d.handleRatingsPick(ctx, log, ev, control)
	case control.Role == types.RolePageIndicator:
		// Indicators are never enabled; a callback for one is a replayed
		// or forged event.
		log.Debug("ignoring page indicator callback")
	default:
		log.Error("unhandled control role")
		d.ephemeral(ctx, log, ev.ID, msgGeneric)
	}
}

// handlePagination applies a cursor movement to the owning session and edits
// the original reply in place. Pure pagination never re-fetches content; it
// replays pages the session already holds.
func (d *Dispatcher) handlePagination(ctx context.Context, log *logrus.Entry, ev types.ComponentEvent, control types.ControlID) {
	if ev.UserID != control.OwnerID {
		d.ephemeral(ctx, log, ev.ID, msgNotOwner)
		return
	}

	res, err := d.store.Transition(control.SessionID, ev.UserID, control.Role)
	switch {
	case errors.Is(err, session.ErrSessionNotFound):
		d.ephemeral(ctx, log, ev.ID, msgStale)
		return
	case errors.Is(err, session.ErrNotOwner):
		d.ephemeral(ctx, log, ev.ID, msgNotOwner)
		return
	case err != nil:
		log.WithError(err).Error("pagination transition failed")
		d.ephemeral(ctx, log, ev.ID, msgGeneric)
		return
	}

	// A boundary no-op still re-renders current state: same page, same
	// controls, no user-visible failure.
	controls := components.Pagination(res)
	if err := d.transport.Edit(ctx, types.ReplyHandle(ev.MessageID), res.Page, controls); err != nil {
		log.WithError(err).Warn("failed to edit paginated reply")
	}
}

// handleCourseDetail serves a result-action button: fetch the full catalog
// entry for one search hit. Detail fetches are throttled per user and course,
// not ownership-gated; anyone may click, but not twice within the window.
func (d *Dispatcher) handleCourseDetail(ctx context.Context, log *logrus.Entry, ev types.ComponentEvent, control types.ControlID) {
	fields, err := types.DecodeValue(control.Payload)
	if err != nil || len(fields) != 2 {
		log.WithError(err).Error("malformed course detail payload")
		d.ephemeral(ctx, log, ev.ID, msgGeneric)
		return
	}
	subject, number := fields[0], fields[1]
	courseLabel := subject + " " + number

	key := cooldownKey(ev.UserID, control.SessionID, control.Payload)
	if !d.cooldowns.Allow(key, d.cfg.CooldownWindow) {
		d.ephemeral(ctx, log, ev.ID, msgThrottled(courseLabel, d.cfg.CooldownWindow))
		return
	}

	course, err := d.catalog.GetCourse(ctx, subject, number)
	switch {
	case errors.Is(err, database.ErrCourseNotFound):
		d.ephemeral(ctx, log, ev.ID, fmt.Sprintf("Could not find `%s` in the catalog.", courseLabel))
		return
	case err != nil:
		log.WithError(err).Error("course detail fetch failed")
		d.ephemeral(ctx, log, ev.ID, "An error has occurred. Unable to fetch courses...")
		return
	}

	page := d.format.CoursePage(course)
	if _, err := d.transport.Reply(ctx, ev.ID, types.Reply{Page: &page}); err != nil {
		log.WithError(err).Warn("failed to send course detail reply")
	}
}

// handleRatingsMenu spawns the student-ratings select menu: a nested
// ephemeral sub-session with its own TTL-bound control set, following the
// same ownership rules as its parent.
func (d *Dispatcher) handleRatingsMenu(ctx context.Context, log *logrus.Entry, ev types.ComponentEvent, control types.ControlID) {
	if ev.UserID != control.OwnerID {
		d.ephemeral(ctx, log, ev.ID, msgNotOwner)
		return
	}

	key := cooldownKey(ev.UserID, control.SessionID, "ratings-menu")
	if !d.cooldowns.Allow(key, d.cfg.CooldownWindow) {
		d.ephemeral(ctx, log, ev.ID, msgThrottled("Student Ratings", d.cfg.CooldownWindow))
		return
	}

	parent, err := d.store.Get(control.SessionID)
	if err != nil {
		d.ephemeral(ctx, log, ev.ID, msgStale)
		return
	}
	if len(parent.Options) == 0 {
		d.ephemeral(ctx, log, ev.ID, "No rated courses are available for this professor.")
		return
	}

	selectOptions := make([]types.SelectOption, 0, len(parent.Options))
	for _, value := range parent.Options {
		fields, err := types.DecodeValue(value)
		if err != nil || len(fields) != 2 {
			log.WithError(err).Error("malformed ratings option value")
			continue
		}
		selectOptions = append(selectOptions, types.SelectOption{Label: fields[0], Value: value})
	}
	if len(selectOptions) == 0 {
		d.ephemeral(ctx, log, ev.ID, msgGeneric)
		return
	}

	const prompt = "Select a course you want to see student ratings for:"

	sub, err := d.store.Create(ev.UserID, []types.Page{{Description: prompt}}, d.cfg.SessionTTL)
	if err != nil {
		log.WithError(err).Error("failed to create ratings sub-session")
		d.ephemeral(ctx, log, ev.ID, msgGeneric)
		return
	}

	menu, err := components.SelectMenu(ev.UserID, sub.ID, types.RoleRatingsPick, control.Payload, "Select a course", selectOptions)
	if err != nil {
		log.WithError(err).Error("failed to render ratings select menu")
		d.store.Remove(sub.ID)
		d.ephemeral(ctx, log, ev.ID, msgGeneric)
		return
	}

	handle, err := d.transport.Reply(ctx, ev.ID, types.Reply{Content: prompt, Controls: menu})
	if err != nil {
		log.WithError(err).Warn("failed to send ratings select menu")
		d.store.Remove(sub.ID)
		return
	}

	// The menu's layout never changes, so the expiry render replays the
	// captured snapshot.
	d.scheduler.Arm(sub.ID, handle, d.cfg.SessionTTL, func(*types.Session) types.ControlSet {
		return menu
	})
}

// handleRatingsPick serves a select-menu choice: fetch the chosen course's
// student ratings and answer with a fresh (possibly paginated) reply.
func (d *Dispatcher) handleRatingsPick(ctx context.Context, log *logrus.Entry, ev types.ComponentEvent, control types.ControlID) {
	if ev.UserID != control.OwnerID {
		d.ephemeral(ctx, log, ev.ID, msgNotOwner)
		return
	}

	if _, err := d.store.Get(control.SessionID); err != nil {
		d.ephemeral(ctx, log, ev.ID, msgStale)
		return
	}

	for _, value := range ev.Values {
		fields, err := types.DecodeValue(value)
		if err != nil || len(fields) != 2 {
			log.WithError(err).Error("malformed ratings pick value")
			d.ephemeral(ctx, log, ev.ID, msgGeneric)
			return
		}
		course, profName := fields[0], fields[1]

		key := cooldownKey(control.SessionID, course, control.Payload)
		if !d.cooldowns.Allow(key, d.cfg.CooldownWindow) {
			d.ephemeral(ctx, log, ev.ID, msgThrottled(course, d.cfg.CooldownWindow))
			continue
		}

		ratings, err := d.ratings.StudentRatings(ctx, control.Payload, course)
		if err != nil {
			log.WithError(err).Error("student ratings fetch failed")
			d.ephemeral(ctx, log, ev.ID, msgGeneric)
			continue
		}
		if len(ratings) == 0 {
			d.ephemeral(ctx, log, ev.ID, fmt.Sprintf("Could not find any student ratings for `%s`!", course))
			continue
		}

		pages := d.format.RatingsPages(profName, ratings)
		if err := d.pager.Respond(ctx, ev.ID, ev.UserID, pages); err != nil {
			log.WithError(err).Error("failed to send student ratings reply")
		}
	}
}

func (d *Dispatcher) ephemeral(ctx context.Context, log *logrus.Entry, interactionID, content string) {
	if err := d.transport.ReplyEphemeral(ctx, interactionID, content); err != nil {
		log.WithError(err).Warn("failed to send ephemeral reply")
	}
}

// cooldownKey builds the composite throttle key: acting identity plus the
// specific action, so one user's cooldown on one action leaves every other
// action free.
func cooldownKey(parts ...string) string {
	return types.EncodeValue(parts...)
}
