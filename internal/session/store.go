// Package session implements the in-memory store for interactive paginated
// replies. State is process-lifetime scoped: a restart drops all sessions,
// which surfaces to users as a stale interaction rather than data loss.
package session

import (
	"sync"
	"time"

	"github.com/lithammer/shortuuid/v4"

	"badgerbot/pkg/types"
)

// DefaultTTL matches the window during which the hosting reply stays
// editable on the platform side.
const DefaultTTL = 10 * time.Minute

// held pairs a session with its own lock. Transitions for one session
// serialize on that lock; sessions never share it, so unrelated users'
// interactions proceed in parallel.
type held struct {
	mu sync.Mutex
	s  types.Session
}

// Store holds all live sessions keyed by id.
type Store struct {
	mu       sync.RWMutex
	sessions map[string]*held
	now      func() time.Time
}

// NewStore creates an empty session store.
func NewStore() *Store {
	return &Store{
		sessions: make(map[string]*held),
		now:      time.Now,
	}
}

// Create stores a new session owned by ownerID. The id is a fresh shortuuid
// token: unguessable, never reused, and compact enough to leave control-id
// headroom for payloads.
func (st *Store) Create(ownerID string, pages []types.Page, ttl time.Duration) (*types.Session, error) {
	if !types.IsValidUserID(ownerID) {
		return nil, types.ErrInvalidOwnerID
	}
	if len(pages) == 0 {
		return nil, types.ErrEmptyPages
	}
	if ttl <= 0 {
		ttl = DefaultTTL
	}

	now := st.now()
	s := types.Session{
		ID:        shortuuid.New(),
		OwnerID:   ownerID,
		Pages:     pages,
		Position:  0,
		CreatedAt: now,
		ExpiresAt: now.Add(ttl),
	}

	st.mu.Lock()
	st.sessions[s.ID] = &held{s: s}
	st.mu.Unlock()

	snapshot := s
	return &snapshot, nil
}

// SetOptions attaches opaque side data for secondary select flows. Must be
// called before the session's controls are published.
func (st *Store) SetOptions(id string, options []string) error {
	h, err := st.lookup(id)
	if err != nil {
		return err
	}

	h.mu.Lock()
	h.s.Options = append([]string(nil), options...)
	h.mu.Unlock()
	return nil
}

// Get returns a snapshot of the session for id. The caller may read it
// freely; mutations only happen through Transition.
func (st *Store) Get(id string) (*types.Session, error) {
	h, err := st.lookup(id)
	if err != nil {
		return nil, err
	}

	h.mu.Lock()
	snapshot := h.s
	h.mu.Unlock()
	return &snapshot, nil
}

// Transition applies a pagination action for requesterID. The position read,
// precondition check and position write happen under the session's lock as
// one unit, so two near-simultaneous clicks can never double-advance or step
// past a boundary. Precondition failures yield a Moved=false result: an
// idempotent re-render of current state.
func (st *Store) Transition(id, requesterID string, action types.ControlRole) (*types.TransitionResult, error) {
	h, err := st.lookup(id)
	if err != nil {
		return nil, err
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	if h.s.OwnerID != requesterID {
		return nil, ErrNotOwner
	}

	count := len(h.s.Pages)
	next := h.s.Position
	moved := false

	switch action {
	case types.RoleFirst:
		if h.s.Position > 0 {
			next, moved = 0, true
		}
	case types.RolePrev:
		if h.s.Position > 0 {
			next, moved = h.s.Position-1, true
		}
	case types.RoleNext:
		if h.s.Position < count-1 {
			next, moved = h.s.Position+1, true
		}
	case types.RoleLast:
		if h.s.Position < count-1 {
			next, moved = count-1, true
		}
	default:
		return nil, ErrInvalidAction
	}

	h.s.Position = next

	return &types.TransitionResult{
		SessionID: h.s.ID,
		OwnerID:   h.s.OwnerID,
		Position:  h.s.Position,
		Count:     count,
		Page:      h.s.Pages[h.s.Position],
		Moved:     moved,
	}, nil
}

// Remove deletes the session. A removed (or never-existing) id stays
// unresolvable forever; removing it again is a no-op.
func (st *Store) Remove(id string) {
	st.mu.Lock()
	delete(st.sessions, id)
	st.mu.Unlock()
}

// Count returns the number of live sessions.
func (st *Store) Count() int {
	st.mu.RLock()
	defer st.mu.RUnlock()
	return len(st.sessions)
}

func (st *Store) lookup(id string) (*held, error) {
	st.mu.RLock()
	h, ok := st.sessions[id]
	st.mu.RUnlock()
	if !ok {
		return nil, ErrSessionNotFound
	}
	return h, nil
}
