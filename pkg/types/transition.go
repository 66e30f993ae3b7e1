package types

// TransitionResult is the immutable snapshot produced by a successful (or
// no-op) session transition. All fields are read under the session's own
// lock, so a result is always internally consistent even when transitions
// race: renderers derive control sets from the snapshot, never from live
// session state.
type TransitionResult struct {
	SessionID string
	OwnerID   string
	Position  int
	Count     int
	Page      Page
	// Moved is false when the requested action failed its precondition
	// (e.g. next at the last page). The dispatcher treats that as a silent
	// refresh of current state, not an error.
	Moved bool
}
