// Package cooldown implements the throttling ledger that guards repeated
// expensive interactions. Keys are composite (acting user + throttled action),
// so a user cooling down on one action stays free on every other.
package cooldown

import (
	"sync"
	"time"
)

// DefaultWindow is the throttle window applied to interactive fetch actions.
const DefaultWindow = 30 * time.Second

type entry struct {
	last   int64 // unix nanoseconds of the last admitted invocation
	window time.Duration
}

// Ledger is a concurrent map from action key to last admitted invocation.
// Admission uses per-key compare-and-swap, so two racing calls with the same
// key admit at most one within the window, and calls on different keys never
// block each other.
type Ledger struct {
	entries sync.Map // string -> entry
	now     func() time.Time
}

// NewLedger creates an empty ledger.
func NewLedger() *Ledger {
	return &Ledger{now: time.Now}
}

// newLedgerAt creates a ledger with an injected clock for tests.
func newLedgerAt(now func() time.Time) *Ledger {
	return &Ledger{now: now}
}

// Allow reports whether an invocation for key is admitted now. On admission
// the ledger records the invocation time; on rejection the existing entry is
// left untouched.
func (l *Ledger) Allow(key string, window time.Duration) bool {
	now := l.now().UnixNano()
	fresh := entry{last: now, window: window}

	for {
		current, loaded := l.entries.LoadOrStore(key, fresh)
		if !loaded {
			return true
		}

		e := current.(entry)
		if now < e.last+int64(e.window) {
			return false
		}

		// Window elapsed: claim the slot. A lost swap means a concurrent
		// call was admitted first; re-read and treat this one as throttled.
		if l.entries.CompareAndSwap(key, e, fresh) {
			return true
		}
	}
}

// Sweep removes every entry whose window has fully elapsed. It runs
// opportunistically after a dispatch rather than on a timer; iteration
// tolerates concurrent insertion of other keys, and a concurrently refreshed
// entry survives the sweep.
func (l *Ledger) Sweep() {
	now := l.now().UnixNano()
	l.entries.Range(func(key, value any) bool {
		e := value.(entry)
		if e.last+int64(e.window) < now {
			l.entries.CompareAndDelete(key, value)
		}
		return true
	})
}

// Size returns the number of live entries. Intended for stats and tests.
func (l *Ledger) Size() int {
	n := 0
	l.entries.Range(func(_, _ any) bool {
		n++
		return true
	})
	return n
}
