package session

import "errors"

// Session store error types. NotFound and NotOwner are expected runtime
// outcomes (expired replies, other users poking at controls) and are handled
// as rejections, never as failures.
var (
	ErrSessionNotFound = errors.New("session not found")
	ErrNotOwner        = errors.New("requester does not own this session")
	ErrInvalidAction   = errors.New("action is not a pagination transition")
)
