package interfaces

import (
	"time"

	"badgerbot/pkg/types"
)

// SessionStore holds per-reply interaction state and provides atomic
// read-modify-write transitions over it. Implementations must be safe for
// concurrent use, and operations on different session ids must not block
// each other.
type SessionStore interface {
	// Create stores a new session owned by ownerID with position 0 and a
	// fresh unguessable id. Empty pages are rejected.
	Create(ownerID string, pages []types.Page, ttl time.Duration) (*types.Session, error)

	// Get returns the session for id, or ErrSessionNotFound.
	Get(id string) (*types.Session, error)

	// Transition applies a pagination action on behalf of requesterID.
	// The position read, bounds check and position write are a single
	// atomic unit per session. A precondition failure is reported as a
	// result with Moved=false, not an error.
	Transition(id, requesterID string, action types.ControlRole) (*types.TransitionResult, error)

	// SetOptions attaches opaque side data consumed by secondary select
	// flows. Must happen before the session's controls are published.
	SetOptions(id string, options []string) error

	// Remove deletes the session. Removing an unknown id is a no-op.
	Remove(id string)
}

// CooldownLedger throttles repeated expensive actions per composite key.
type CooldownLedger interface {
	// Allow admits the invocation iff no admission for key happened within
	// the window, recording the admission time when it does. Two racing
	// calls with the same key admit at most one within the window.
	Allow(key string, window time.Duration) bool

	// Sweep drops entries whose window has fully elapsed. Called
	// opportunistically after each dispatch.
	Sweep()
}

// ExpiryScheduler arms one-shot end-of-life tasks for sessions. There is
// exactly one place that decides a session's end of life: the task armed
// here.
type ExpiryScheduler interface {
	// Arm schedules the disable-and-remove task for sessionID. The render
	// callback derives the control set to disable from the session's state
	// at firing time. Arming an already-armed session replaces the task.
	Arm(sessionID string, handle types.ReplyHandle, ttl time.Duration, render func(*types.Session) types.ControlSet)

	// Disarm cancels a pending task. Disarming an unknown session is a
	// no-op; a task that already fired stays fired.
	Disarm(sessionID string)
}
