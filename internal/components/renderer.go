// Package components derives control layouts from session state. Rendering
// is pure: the same (position, count) always yields the same control set, and
// nothing here touches stores or transports.
package components

import (
	"fmt"

	"badgerbot/pkg/types"
)

// Pagination control labels.
const (
	labelFirst = "⏪"
	labelPrev  = "◀"
	labelNext  = "▶"
	labelLast  = "⏩"
)

// Pagination renders the five-control pagination row for a transition
// snapshot: first, prev, page indicator, next, last. First/prev are enabled
// iff the cursor can move left, next/last iff it can move right; the
// indicator is always disabled and labels the cursor as "position+1/count".
func Pagination(res *types.TransitionResult) types.ControlSet {
	return paginationRow(res.OwnerID, res.SessionID, res.Position, res.Count)
}

// PaginationFor renders the pagination row from a session snapshot. Used for
// the initial reply and the expiry-time disable edit.
func PaginationFor(s *types.Session) types.ControlSet {
	return paginationRow(s.OwnerID, s.ID, s.Position, len(s.Pages))
}

func paginationRow(ownerID, sessionID string, position, count int) types.ControlSet {
	id := func(role types.ControlRole) string {
		return types.ControlID{OwnerID: ownerID, SessionID: sessionID, Role: role}.Encode()
	}

	left := position > 0
	right := position < count-1

	row := []types.Control{
		{ID: id(types.RoleFirst), Label: labelFirst, Style: types.StylePrimary, Role: types.RoleFirst, Enabled: left},
		{ID: id(types.RolePrev), Label: labelPrev, Style: types.StylePrimary, Role: types.RolePrev, Enabled: left},
		{
			ID:      id(types.RolePageIndicator),
			Label:   fmt.Sprintf("%d/%d", position+1, count),
			Style:   types.StyleSecondary,
			Role:    types.RolePageIndicator,
			Enabled: false,
		},
		{ID: id(types.RoleNext), Label: labelNext, Style: types.StylePrimary, Role: types.RoleNext, Enabled: right},
		{ID: id(types.RoleLast), Label: labelLast, Style: types.StylePrimary, Role: types.RoleLast, Enabled: right},
	}

	return types.ControlSet{Rows: [][]types.Control{row}}
}

// ActionItem is one result-action button to render.
type ActionItem struct {
	Payload string
	Label   string
}

// ActionButtons renders per-result action buttons, partitioned across rows of
// five in input order. More items than the platform's 25-control ceiling is a
// programming error in the calling command, reported as ErrTooManyControls
// rather than silently truncated.
func ActionButtons(ownerID, sessionID string, role types.ControlRole, items []ActionItem) (types.ControlSet, error) {
	if len(items) > types.MaxControlsPerMessage {
		return types.ControlSet{}, fmt.Errorf("%w: %d items", types.ErrTooManyControls, len(items))
	}

	var set types.ControlSet
	for start := 0; start < len(items); start += types.MaxControlsPerRow {
		end := start + types.MaxControlsPerRow
		if end > len(items) {
			end = len(items)
		}

		row := make([]types.Control, 0, end-start)
		for _, item := range items[start:end] {
			encoded, err := (types.ControlID{
				OwnerID:   ownerID,
				SessionID: sessionID,
				Role:      role,
				Payload:   item.Payload,
			}).EncodeChecked()
			if err != nil {
				return types.ControlSet{}, err
			}
			row = append(row, types.Control{
				ID:      encoded,
				Label:   item.Label,
				Style:   types.StyleSecondary,
				Role:    role,
				Enabled: true,
			})
		}
		set.Rows = append(set.Rows, row)
	}

	return set, nil
}

// SelectMenu renders a single-choice select menu bound to a session.
func SelectMenu(ownerID, sessionID string, role types.ControlRole, payload, placeholder string, options []types.SelectOption) (types.ControlSet, error) {
	encoded, err := (types.ControlID{
		OwnerID:   ownerID,
		SessionID: sessionID,
		Role:      role,
		Payload:   payload,
	}).EncodeChecked()
	if err != nil {
		return types.ControlSet{}, err
	}

	menu := types.Control{
		ID:            encoded,
		Label:         placeholder,
		Style:         types.StyleSelect,
		Role:          role,
		Enabled:       true,
		SelectOptions: options,
	}
	return types.ControlSet{Rows: [][]types.Control{{menu}}}, nil
}
