package types

import "fmt"

// ControlRole is the closed set of interaction kinds a control can carry.
// Every inbound callback resolves to exactly one role at the decode boundary;
// adding a new interaction kind means adding a constant here and handling it
// in the dispatcher's switch.
type ControlRole int

const (
	RoleFirst ControlRole = iota
	RolePrev
	RolePageIndicator
	RoleNext
	RoleLast
	// RoleCourseDetail is a per-result button that fetches full course
	// information from the catalog.
	RoleCourseDetail
	// RoleRatingsMenu is the button that opens a student-ratings select menu.
	RoleRatingsMenu
	// RoleRatingsPick is a select-menu choice that fetches student ratings
	// for one course.
	RoleRatingsPick
)

var roleNames = map[ControlRole]string{
	RoleFirst:         "first",
	RolePrev:          "prev",
	RolePageIndicator: "page",
	RoleNext:          "next",
	RoleLast:          "last",
	RoleCourseDetail:  "course",
	RoleRatingsMenu:   "ratings",
	RoleRatingsPick:   "pick",
}

var rolesByName = func() map[string]ControlRole {
	m := make(map[string]ControlRole, len(roleNames))
	for role, name := range roleNames {
		m[name] = role
	}
	return m
}()

func (r ControlRole) String() string {
	if name, ok := roleNames[r]; ok {
		return name
	}
	return fmt.Sprintf("role(%d)", int(r))
}

// ParseControlRole resolves the wire name of a role.
func ParseControlRole(name string) (ControlRole, error) {
	role, ok := rolesByName[name]
	if !ok {
		return 0, fmt.Errorf("%w: %q", ErrUnknownRole, name)
	}
	return role, nil
}

// Pagination reports whether the role is a cursor movement over an existing
// session's pages. Pagination transitions never trigger outbound fetches.
func (r ControlRole) Pagination() bool {
	switch r {
	case RoleFirst, RolePrev, RoleNext, RoleLast:
		return true
	default:
		return false
	}
}

// Throttled reports whether the role belongs to the throttled action class:
// interactions that trigger an expensive fetch and are admitted through the
// cooldown ledger rather than the ownership check alone.
func (r ControlRole) Throttled() bool {
	switch r {
	case RoleCourseDetail, RoleRatingsMenu, RoleRatingsPick:
		return true
	default:
		return false
	}
}
