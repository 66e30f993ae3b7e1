package types

import (
	"time"
)

// Protocol layout limits imposed by the host chat platform. These are
// authoritative: the renderer must never emit a control set that exceeds them.
const (
	MaxControlsPerRow     = 5
	MaxRowsPerMessage     = 5
	MaxControlsPerMessage = MaxControlsPerRow * MaxRowsPerMessage
	MaxControlIDLength    = 100
)

// Session holds the server-side state for one interactive, paginated reply.
// Pages and OwnerID are immutable after creation; Position is mutated only
// through the store's Transition operation so that 0 <= Position < len(Pages)
// always holds.
type Session struct {
	ID        string    `json:"id"`
	OwnerID   string    `json:"owner_id"`
	Pages     []Page    `json:"pages"`
	Position  int       `json:"position"`
	CreatedAt time.Time `json:"created_at"`
	ExpiresAt time.Time `json:"expires_at"`

	// Options carries opaque side data for secondary select flows
	// (e.g. the course list backing a student-ratings menu). The session
	// subsystem never inspects it.
	Options []string `json:"options,omitempty"`
}

// PageCount returns the number of pages in the session.
func (s *Session) PageCount() int {
	return len(s.Pages)
}

// CurrentPage returns the page at the session's current position.
func (s *Session) CurrentPage() Page {
	return s.Pages[s.Position]
}

// Page is one unit of renderable content. The session subsystem treats pages
// as opaque; only the commands that produce them and the transport that sends
// them care about the shape.
type Page struct {
	Title       string  `json:"title,omitempty"`
	Description string  `json:"description,omitempty"`
	Fields      []Field `json:"fields,omitempty"`
	Footer      string  `json:"footer,omitempty"`
	Color       int     `json:"color,omitempty"`
}

// Field is a titled section within a page.
type Field struct {
	Name   string `json:"name"`
	Value  string `json:"value"`
	Inline bool   `json:"inline,omitempty"`
}

// ControlStyle selects the visual treatment of a control.
type ControlStyle string

const (
	StylePrimary   ControlStyle = "primary"
	StyleSecondary ControlStyle = "secondary"
	StyleSelect    ControlStyle = "select"
)

// Control is a single interactive element attached to a reply.
type Control struct {
	ID      string       `json:"id"`
	Label   string       `json:"label"`
	Style   ControlStyle `json:"style"`
	Role    ControlRole  `json:"role"`
	Enabled bool         `json:"enabled"`

	// SelectOptions is populated only for StyleSelect controls.
	SelectOptions []SelectOption `json:"select_options,omitempty"`
}

// SelectOption is one choice inside a select-menu control.
type SelectOption struct {
	Label string `json:"label"`
	Value string `json:"value"`
}

// ControlSet is the rendered collection of controls bound to one reply,
// partitioned into rows the way the platform will display them. A ControlSet
// is a value snapshot: mutating session state never changes a set that has
// already been emitted.
type ControlSet struct {
	Rows [][]Control `json:"rows"`
}

// Disabled returns a copy of the set with every control disabled. Used for
// the expiry-driven final edit; the receiver is left untouched so a racing
// transition never observes a half-disabled snapshot.
func (cs ControlSet) Disabled() ControlSet {
	out := ControlSet{Rows: make([][]Control, len(cs.Rows))}
	for i, row := range cs.Rows {
		out.Rows[i] = make([]Control, len(row))
		for j, c := range row {
			c.Enabled = false
			out.Rows[i][j] = c
		}
	}
	return out
}

// Empty reports whether the set contains no controls.
func (cs ControlSet) Empty() bool {
	for _, row := range cs.Rows {
		if len(row) > 0 {
			return false
		}
	}
	return true
}

// ReplyHandle identifies an already-sent reply so it can be edited in place.
type ReplyHandle string

// Reply is the outbound payload handed to the transport.
type Reply struct {
	Content   string     `json:"content,omitempty"`
	Page      *Page      `json:"page,omitempty"`
	Controls  ControlSet `json:"controls"`
	Ephemeral bool       `json:"ephemeral,omitempty"`
}

// CommandEvent is an inbound slash-command invocation delivered by the
// gateway feed.
type CommandEvent struct {
	ID        string            `json:"id"`
	Name      string            `json:"name"`
	UserID    string            `json:"user_id"`
	ChannelID string            `json:"channel_id"`
	Options   map[string]string `json:"options,omitempty"`
}

// ComponentEvent is an inbound callback for a button click or select-menu
// choice. CustomID is the opaque control identifier this subsystem generated;
// Values carries the chosen option values for select menus.
type ComponentEvent struct {
	ID        string   `json:"id"`
	UserID    string   `json:"user_id"`
	MessageID string   `json:"message_id"`
	CustomID  string   `json:"custom_id"`
	Values    []string `json:"values,omitempty"`
}
