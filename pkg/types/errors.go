package types

import "errors"

// Shared validation and codec error types. Component packages define their
// own operational errors; these cover the types themselves.
var (
	ErrInvalidOwnerID     = errors.New("owner ID must be 1-50 characters, alphanumeric + underscore/hyphen only")
	ErrEmptyPages         = errors.New("session requires at least one page")
	ErrPositionOutOfRange = errors.New("session position out of page range")
	ErrUnknownRole        = errors.New("unknown control role")
	ErrMalformedControlID = errors.New("malformed control identifier")
	ErrControlIDTooLong   = errors.New("encoded control identifier exceeds platform length limit")
	ErrTooManyControls    = errors.New("control set exceeds 25 controls per message")
	ErrRowOverflow        = errors.New("control row exceeds 5 controls")
)
