// Package expiry owns session end-of-life. Every TTL-bound reply is armed
// here and nowhere else, so exactly one code path decides when a session dies.
package expiry

import (
	"context"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"badgerbot/pkg/interfaces"
	"badgerbot/pkg/types"
)

// Scheduler arms one-shot deferred tasks that disable a reply's controls and
// free its session state once the TTL elapses.
type Scheduler struct {
	store     interfaces.SessionStore
	transport interfaces.ReplyTransport
	log       *logrus.Logger

	mu     sync.Mutex
	timers map[string]*time.Timer
}

// NewScheduler creates a scheduler bound to the given store and transport.
func NewScheduler(store interfaces.SessionStore, transport interfaces.ReplyTransport, log *logrus.Logger) *Scheduler {
	return &Scheduler{
		store:     store,
		transport: transport,
		log:       log,
		timers:    make(map[string]*time.Timer),
	}
}

// Arm schedules the end-of-life task for sessionID. The render callback
// derives the control set from the session state observed at firing time, so
// the disabled page indicator keeps whatever label the last transition gave
// it. Re-arming replaces any pending task.
func (sc *Scheduler) Arm(sessionID string, handle types.ReplyHandle, ttl time.Duration, render func(*types.Session) types.ControlSet) {
	sc.mu.Lock()
	defer sc.mu.Unlock()

	if t, ok := sc.timers[sessionID]; ok {
		t.Stop()
	}
	sc.timers[sessionID] = time.AfterFunc(ttl, func() {
		sc.fire(sessionID, handle, render)
	})
}

// Disarm cancels a pending task. Unknown ids and already-fired tasks are
// no-ops.
func (sc *Scheduler) Disarm(sessionID string) {
	sc.mu.Lock()
	defer sc.mu.Unlock()

	if t, ok := sc.timers[sessionID]; ok {
		t.Stop()
		delete(sc.timers, sessionID)
	}
}

// fire runs the end-of-life task: push a fully disabled control set to the
// reply, then remove the session. A session already removed by the time the
// timer fires (explicit removal racing the TTL) is left alone; removal and
// disabling are each idempotent, so the two paths compose in either order.
func (sc *Scheduler) fire(sessionID string, handle types.ReplyHandle, render func(*types.Session) types.ControlSet) {
	sc.mu.Lock()
	delete(sc.timers, sessionID)
	sc.mu.Unlock()

	s, err := sc.store.Get(sessionID)
	if err != nil {
		// Already gone; nothing to disable.
		return
	}

	controls := render(s).Disabled()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := sc.transport.EditControls(ctx, handle, controls); err != nil {
		// The reply may have been deleted platform-side; state cleanup
		// still proceeds.
		sc.log.WithError(err).WithField("session_id", sessionID).
			Warn("failed to disable controls on expired reply")
	}

	sc.store.Remove(sessionID)

	sc.log.WithField("session_id", sessionID).Debug("session expired")
}

// Stop cancels every pending task. Used at shutdown; sessions are not
// disabled, they simply never fire.
func (sc *Scheduler) Stop() {
	sc.mu.Lock()
	defer sc.mu.Unlock()

	for id, t := range sc.timers {
		t.Stop()
		delete(sc.timers, id)
	}
}

// Pending returns the number of armed tasks. Intended for stats and tests.
func (sc *Scheduler) Pending() int {
	sc.mu.Lock()
	defer sc.mu.Unlock()
	return len(sc.timers)
}
