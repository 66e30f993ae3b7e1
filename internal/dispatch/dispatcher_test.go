package dispatch

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"badgerbot/internal/cooldown"
	"badgerbot/internal/database"
	"badgerbot/internal/expiry"
	"badgerbot/internal/producers"
	"badgerbot/internal/session"
	"badgerbot/pkg/types"
)

type sentReply struct {
	interactionID string
	reply         types.Reply
}

type sentEdit struct {
	handle   types.ReplyHandle
	page     types.Page
	controls types.ControlSet
}

type recordingTransport struct {
	mu         sync.Mutex
	replies    []sentReply
	edits      []sentEdit
	ephemerals []string
	nextHandle int
}

func (r *recordingTransport) Reply(_ context.Context, interactionID string, reply types.Reply) (types.ReplyHandle, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.replies = append(r.replies, sentReply{interactionID: interactionID, reply: reply})
	r.nextHandle++
	return types.ReplyHandle(fmt.Sprintf("msg-%d", r.nextHandle)), nil
}

func (r *recordingTransport) Edit(_ context.Context, handle types.ReplyHandle, page types.Page, controls types.ControlSet) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.edits = append(r.edits, sentEdit{handle: handle, page: page, controls: controls})
	return nil
}

func (r *recordingTransport) EditControls(_ context.Context, handle types.ReplyHandle, controls types.ControlSet) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.edits = append(r.edits, sentEdit{handle: handle, controls: controls})
	return nil
}

func (r *recordingTransport) ReplyEphemeral(_ context.Context, _ string, content string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.ephemerals = append(r.ephemerals, content)
	return nil
}

func (r *recordingTransport) lastReply() sentReply {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.replies[len(r.replies)-1]
}

func (r *recordingTransport) lastEdit() sentEdit {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.edits[len(r.edits)-1]
}

func (r *recordingTransport) lastEphemeral() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.ephemerals[len(r.ephemerals)-1]
}

func (r *recordingTransport) counts() (replies, edits, ephemerals int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.replies), len(r.edits), len(r.ephemerals)
}

type stubCatalog struct {
	courses map[string]*database.Course
	err     error
}

func (s *stubCatalog) GetCourse(_ context.Context, subjectAbbrev, number string) (*database.Course, error) {
	if s.err != nil {
		return nil, s.err
	}
	c, ok := s.courses[subjectAbbrev+" "+number]
	if !ok {
		return nil, database.ErrCourseNotFound
	}
	return c, nil
}

type stubRatings struct {
	ratings map[string][]producers.StudentRating
	err     error
}

func (s *stubRatings) StudentRatings(_ context.Context, _, course string) ([]producers.StudentRating, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.ratings[course], nil
}

type fixture struct {
	store      *session.Store
	cooldowns  *cooldown.Ledger
	transport  *recordingTransport
	scheduler  *expiry.Scheduler
	catalog    *stubCatalog
	ratings    *stubRatings
	dispatcher *Dispatcher
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	log := logrus.New()
	log.SetLevel(logrus.PanicLevel)

	store := session.NewStore()
	cooldowns := cooldown.NewLedger()
	transport := &recordingTransport{}
	scheduler := expiry.NewScheduler(store, transport, log)
	catalog := &stubCatalog{courses: map[string]*database.Course{}}
	ratings := &stubRatings{ratings: map[string][]producers.StudentRating{}}

	formatters := Formatters{
		CoursePage: func(c *database.Course) types.Page {
			return types.Page{Title: c.SubjectAbbrev + " " + c.Number, Description: c.Title}
		},
		RatingsPages: func(profName string, rs []producers.StudentRating) []types.Page {
			pages := make([]types.Page, len(rs))
			for i, r := range rs {
				pages[i] = types.Page{Title: profName, Description: r.Comment}
			}
			return pages
		},
	}

	d := NewDispatcher(store, cooldowns, transport, scheduler, catalog, ratings, formatters, Config{
		CooldownWindow: 30 * time.Second,
		SessionTTL:     time.Minute,
	}, log)

	t.Cleanup(scheduler.Stop)

	return &fixture{
		store:      store,
		cooldowns:  cooldowns,
		transport:  transport,
		scheduler:  scheduler,
		catalog:    catalog,
		ratings:    ratings,
		dispatcher: d,
	}
}

func pages(n int) []types.Page {
	out := make([]types.Page, n)
	for i := range out {
		out[i] = types.Page{Title: fmt.Sprintf("Page %d", i+1)}
	}
	return out
}

// controlByRole digs the wire id for a role out of a sent control set.
func controlByRole(t *testing.T, set types.ControlSet, role types.ControlRole) string {
	t.Helper()
	for _, row := range set.Rows {
		for _, c := range row {
			if c.Role == role {
				return c.ID
			}
		}
	}
	t.Fatalf("no control with role %s", role)
	return ""
}

func TestPaginationFlow(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	require.NoError(t, f.dispatcher.Paginator().Respond(ctx, "int-1", "owner", pages(3)))

	sent := f.transport.lastReply()
	require.Equal(t, "Page 1", sent.reply.Page.Title)

	click := func(role types.ControlRole) {
		f.dispatcher.Handle(ctx, types.ComponentEvent{
			ID:        "int-next",
			UserID:    "owner",
			MessageID: "msg-1",
			CustomID:  controlByRole(t, sent.reply.Controls, role),
		})
	}

	click(types.RoleNext)
	edit := f.transport.lastEdit()
	assert.Equal(t, types.ReplyHandle("msg-1"), edit.handle)
	assert.Equal(t, "Page 2", edit.page.Title)
	assert.Equal(t, "2/3", edit.controls.Rows[0][2].Label)

	click(types.RoleLast)
	edit = f.transport.lastEdit()
	assert.Equal(t, "Page 3", edit.page.Title)
	assert.Equal(t, "3/3", edit.controls.Rows[0][2].Label)

	// next at the last page re-renders the same state.
	click(types.RoleNext)
	edit = f.transport.lastEdit()
	assert.Equal(t, "Page 3", edit.page.Title)

	click(types.RoleFirst)
	edit = f.transport.lastEdit()
	assert.Equal(t, "Page 1", edit.page.Title)
	assert.Equal(t, "1/3", edit.controls.Rows[0][2].Label)

	_, _, ephemerals := f.transport.counts()
	assert.Zero(t, ephemerals)
}

func TestPaginationRejectsNonOwner(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	require.NoError(t, f.dispatcher.Paginator().Respond(ctx, "int-1", "owner", pages(2)))
	sent := f.transport.lastReply()

	f.dispatcher.Handle(ctx, types.ComponentEvent{
		ID:        "int-2",
		UserID:    "intruder",
		MessageID: "msg-1",
		CustomID:  controlByRole(t, sent.reply.Controls, types.RoleNext),
	})

	assert.Equal(t, msgNotOwner, f.transport.lastEphemeral())

	// The click changed nothing.
	_, edits, _ := f.transport.counts()
	assert.Zero(t, edits)
}

func TestPaginationStaleSession(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	require.NoError(t, f.dispatcher.Paginator().Respond(ctx, "int-1", "owner", pages(2)))
	sent := f.transport.lastReply()
	nextID := controlByRole(t, sent.reply.Controls, types.RoleNext)

	decoded, err := types.DecodeControlID(nextID)
	require.NoError(t, err)
	f.store.Remove(decoded.SessionID)

	f.dispatcher.Handle(ctx, types.ComponentEvent{
		ID:        "int-2",
		UserID:    "owner",
		MessageID: "msg-1",
		CustomID:  nextID,
	})

	assert.Equal(t, msgStale, f.transport.lastEphemeral())
}

func TestMalformedControlID(t *testing.T) {
	f := newFixture(t)

	f.dispatcher.Handle(context.Background(), types.ComponentEvent{
		ID:       "int-1",
		UserID:   "owner",
		CustomID: "not-a-control-id",
	})

	assert.Equal(t, msgGeneric, f.transport.lastEphemeral())
}

func TestPageIndicatorCallbackIgnored(t *testing.T) {
	f := newFixture(t)

	id := types.ControlID{OwnerID: "owner", SessionID: "sess", Role: types.RolePageIndicator}.Encode()
	f.dispatcher.Handle(context.Background(), types.ComponentEvent{
		ID:       "int-1",
		UserID:   "owner",
		CustomID: id,
	})

	replies, edits, ephemerals := f.transport.counts()
	assert.Zero(t, replies+edits+ephemerals)
}

func TestCourseDetailFetchAndThrottle(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.catalog.courses["COMP SCI 300"] = &database.Course{
		SubjectAbbrev: "COMP SCI",
		Number:        "300",
		Title:         "Programming II",
	}

	id := types.ControlID{
		OwnerID:   "owner",
		SessionID: "sess",
		Role:      types.RoleCourseDetail,
		Payload:   types.EncodeValue("COMP SCI", "300"),
	}.Encode()

	ev := types.ComponentEvent{ID: "int-1", UserID: "clicker", CustomID: id}
	f.dispatcher.Handle(ctx, ev)

	sent := f.transport.lastReply()
	assert.Equal(t, "COMP SCI 300", sent.reply.Page.Title)
	assert.Equal(t, "Programming II", sent.reply.Page.Description)

	// Same user, same course, inside the window.
	f.dispatcher.Handle(ctx, ev)
	assert.Contains(t, f.transport.lastEphemeral(), "Stop spamming!")

	// A different user is admitted independently.
	f.dispatcher.Handle(ctx, types.ComponentEvent{ID: "int-2", UserID: "other", CustomID: id})
	replies, _, _ := f.transport.counts()
	assert.Equal(t, 2, replies)
}

func TestCourseDetailNotFound(t *testing.T) {
	f := newFixture(t)

	id := types.ControlID{
		OwnerID:   "owner",
		SessionID: "sess",
		Role:      types.RoleCourseDetail,
		Payload:   types.EncodeValue("MATH", "999"),
	}.Encode()

	f.dispatcher.Handle(context.Background(), types.ComponentEvent{ID: "int-1", UserID: "u", CustomID: id})
	assert.Contains(t, f.transport.lastEphemeral(), "Could not find")
}

func TestCourseDetailProducerFailure(t *testing.T) {
	f := newFixture(t)
	f.catalog.err = errors.New("catalog down")

	id := types.ControlID{
		OwnerID:   "owner",
		SessionID: "sess",
		Role:      types.RoleCourseDetail,
		Payload:   types.EncodeValue("COMP SCI", "300"),
	}.Encode()

	f.dispatcher.Handle(context.Background(), types.ComponentEvent{ID: "int-1", UserID: "u", CustomID: id})
	assert.Contains(t, f.transport.lastEphemeral(), "An error has occurred")
}

func TestRatingsMenuSpawnsSubSession(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	parent, err := f.store.Create("owner", pages(1), time.Minute)
	require.NoError(t, err)
	require.NoError(t, f.store.SetOptions(parent.ID, []string{
		types.EncodeValue("COMP SCI 300", "Grace Hopper"),
		types.EncodeValue("COMP SCI 400", "Grace Hopper"),
	}))

	id := types.ControlID{
		OwnerID:   "owner",
		SessionID: parent.ID,
		Role:      types.RoleRatingsMenu,
		Payload:   "prof-node-id",
	}.Encode()

	before := f.store.Count()
	f.dispatcher.Handle(ctx, types.ComponentEvent{ID: "int-1", UserID: "owner", CustomID: id})

	assert.Equal(t, before+1, f.store.Count())
	assert.Equal(t, 1, f.scheduler.Pending())

	sent := f.transport.lastReply()
	menu := sent.reply.Controls.Rows[0][0]
	assert.Equal(t, types.StyleSelect, menu.Style)
	require.Len(t, menu.SelectOptions, 2)
	assert.Equal(t, "COMP SCI 300", menu.SelectOptions[0].Label)

	decoded, err := types.DecodeControlID(menu.ID)
	require.NoError(t, err)
	assert.Equal(t, types.RoleRatingsPick, decoded.Role)
	assert.Equal(t, "prof-node-id", decoded.Payload)
	assert.NotEqual(t, parent.ID, decoded.SessionID)
}

func TestRatingsMenuRejectsNonOwner(t *testing.T) {
	f := newFixture(t)

	parent, err := f.store.Create("owner", pages(1), time.Minute)
	require.NoError(t, err)

	id := types.ControlID{
		OwnerID:   "owner",
		SessionID: parent.ID,
		Role:      types.RoleRatingsMenu,
		Payload:   "prof",
	}.Encode()

	f.dispatcher.Handle(context.Background(), types.ComponentEvent{ID: "int-1", UserID: "intruder", CustomID: id})
	assert.Equal(t, msgNotOwner, f.transport.lastEphemeral())
	assert.Equal(t, 1, f.store.Count())
}

func TestRatingsMenuThrottled(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	parent, err := f.store.Create("owner", pages(1), time.Minute)
	require.NoError(t, err)
	require.NoError(t, f.store.SetOptions(parent.ID, []string{
		types.EncodeValue("COMP SCI 300", "Grace Hopper"),
	}))

	id := types.ControlID{
		OwnerID:   "owner",
		SessionID: parent.ID,
		Role:      types.RoleRatingsMenu,
		Payload:   "prof",
	}.Encode()

	ev := types.ComponentEvent{ID: "int-1", UserID: "owner", CustomID: id}
	f.dispatcher.Handle(ctx, ev)
	f.dispatcher.Handle(ctx, ev)

	assert.Contains(t, f.transport.lastEphemeral(), "Stop spamming!")
	replies, _, _ := f.transport.counts()
	assert.Equal(t, 1, replies)
}

func TestRatingsPickFetchesRatings(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	sub, err := f.store.Create("owner", pages(1), time.Minute)
	require.NoError(t, err)

	f.ratings.ratings["COMP SCI 300"] = []producers.StudentRating{
		{Course: "COMP SCI 300", Quality: 5, Comment: "great"},
	}

	id := types.ControlID{
		OwnerID:   "owner",
		SessionID: sub.ID,
		Role:      types.RoleRatingsPick,
		Payload:   "prof-node-id",
	}.Encode()

	f.dispatcher.Handle(ctx, types.ComponentEvent{
		ID:       "int-1",
		UserID:   "owner",
		CustomID: id,
		Values:   []string{types.EncodeValue("COMP SCI 300", "Grace Hopper")},
	})

	sent := f.transport.lastReply()
	assert.Equal(t, "Grace Hopper", sent.reply.Page.Title)
	assert.Equal(t, "great", sent.reply.Page.Description)
}

func TestRatingsPickNoRatings(t *testing.T) {
	f := newFixture(t)

	sub, err := f.store.Create("owner", pages(1), time.Minute)
	require.NoError(t, err)

	id := types.ControlID{
		OwnerID:   "owner",
		SessionID: sub.ID,
		Role:      types.RoleRatingsPick,
		Payload:   "prof",
	}.Encode()

	f.dispatcher.Handle(context.Background(), types.ComponentEvent{
		ID:       "int-1",
		UserID:   "owner",
		CustomID: id,
		Values:   []string{types.EncodeValue("MATH 222", "Grace Hopper")},
	})

	assert.Contains(t, f.transport.lastEphemeral(), "Could not find any student ratings")
}

func TestRatingsPickStaleSubSession(t *testing.T) {
	f := newFixture(t)

	id := types.ControlID{
		OwnerID:   "owner",
		SessionID: "long-gone",
		Role:      types.RoleRatingsPick,
		Payload:   "prof",
	}.Encode()

	f.dispatcher.Handle(context.Background(), types.ComponentEvent{
		ID:       "int-1",
		UserID:   "owner",
		CustomID: id,
		Values:   []string{types.EncodeValue("MATH 222", "Grace Hopper")},
	})

	assert.Equal(t, msgStale, f.transport.lastEphemeral())
}

func TestHandleSweepsCooldowns(t *testing.T) {
	f := newFixture(t)

	// A dispatch that touches nothing still runs the opportunistic sweep.
	f.dispatcher.Handle(context.Background(), types.ComponentEvent{
		ID:       "int-1",
		UserID:   "owner",
		CustomID: "garbage",
	})

	assert.Zero(t, f.cooldowns.Size())
}
