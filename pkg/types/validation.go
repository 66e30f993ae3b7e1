package types

import "regexp"

var userIDRegex = regexp.MustCompile(`^[a-zA-Z0-9_-]+$`)

// IsValidUserID checks if a user ID meets format requirements. IDs are
// embedded inside control identifiers, so the character set is restricted to
// values that are stable under the codec's escaping.
func IsValidUserID(userID string) bool {
	if len(userID) < 1 || len(userID) > 50 {
		return false
	}
	return userIDRegex.MatchString(userID)
}

// Validate ensures the session meets its structural invariants.
func (s *Session) Validate() error {
	if !IsValidUserID(s.OwnerID) {
		return ErrInvalidOwnerID
	}
	if len(s.Pages) == 0 {
		return ErrEmptyPages
	}
	if s.Position < 0 || s.Position >= len(s.Pages) {
		return ErrPositionOutOfRange
	}
	return nil
}

// Validate enforces the platform's structural layout limits on a control set.
func (cs ControlSet) Validate() error {
	total := 0
	for _, row := range cs.Rows {
		if len(row) > MaxControlsPerRow {
			return ErrRowOverflow
		}
		total += len(row)
	}
	if len(cs.Rows) > MaxRowsPerMessage || total > MaxControlsPerMessage {
		return ErrTooManyControls
	}
	return nil
}
