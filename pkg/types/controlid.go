package types

import (
	"fmt"
	"net/url"
	"strings"
)

// controlIDSep joins the four control-id fields on the wire. Field values are
// percent-escaped before joining, so a value containing ':' (or '%') survives
// a round-trip; the separator itself can therefore never appear inside an
// escaped field.
const controlIDSep = ":"

// ControlID is the decoded form of the opaque identifier carried by every
// interactive control. The platform echoes the identifier back verbatim on a
// callback, so it must carry everything needed to resolve the interaction:
// who may drive it, which session it belongs to, what kind of action it is,
// and an optional role-specific payload.
type ControlID struct {
	OwnerID   string
	SessionID string
	Role      ControlRole
	Payload   string
}

// Encode renders the control id in wire form:
// owner:session:role:payload, each field percent-escaped.
func (c ControlID) Encode() string {
	return strings.Join([]string{
		url.QueryEscape(c.OwnerID),
		url.QueryEscape(c.SessionID),
		c.Role.String(),
		url.QueryEscape(c.Payload),
	}, controlIDSep)
}

// EncodeChecked is Encode plus the platform length limit. Controls are
// generated exclusively by this subsystem, so an overlong id is a programming
// error surfaced at render time rather than a user-facing condition.
func (c ControlID) EncodeChecked() (string, error) {
	encoded := c.Encode()
	if len(encoded) > MaxControlIDLength {
		return "", fmt.Errorf("%w: %d bytes", ErrControlIDTooLong, len(encoded))
	}
	return encoded, nil
}

// DecodeControlID parses a wire-form control id. Identifiers are only ever
// produced by Encode, so any parse failure indicates a forged or corrupted
// callback and is reported as ErrMalformedControlID.
func DecodeControlID(raw string) (ControlID, error) {
	parts := strings.Split(raw, controlIDSep)
	if len(parts) != 4 {
		return ControlID{}, fmt.Errorf("%w: expected 4 fields, got %d", ErrMalformedControlID, len(parts))
	}

	owner, err := url.QueryUnescape(parts[0])
	if err != nil {
		return ControlID{}, fmt.Errorf("%w: owner field: %v", ErrMalformedControlID, err)
	}
	session, err := url.QueryUnescape(parts[1])
	if err != nil {
		return ControlID{}, fmt.Errorf("%w: session field: %v", ErrMalformedControlID, err)
	}
	role, err := ParseControlRole(parts[2])
	if err != nil {
		return ControlID{}, fmt.Errorf("%w: %v", ErrMalformedControlID, err)
	}
	payload, err := url.QueryUnescape(parts[3])
	if err != nil {
		return ControlID{}, fmt.Errorf("%w: payload field: %v", ErrMalformedControlID, err)
	}

	if owner == "" || session == "" {
		return ControlID{}, fmt.Errorf("%w: empty owner or session field", ErrMalformedControlID)
	}

	return ControlID{OwnerID: owner, SessionID: session, Role: role, Payload: payload}, nil
}

// EncodeValue joins free-form value fields (select-option values) with the
// same escaping rule as control ids.
func EncodeValue(fields ...string) string {
	escaped := make([]string, len(fields))
	for i, f := range fields {
		escaped[i] = url.QueryEscape(f)
	}
	return strings.Join(escaped, controlIDSep)
}

// DecodeValue splits a value produced by EncodeValue.
func DecodeValue(raw string) ([]string, error) {
	parts := strings.Split(raw, controlIDSep)
	out := make([]string, len(parts))
	for i, p := range parts {
		v, err := url.QueryUnescape(p)
		if err != nil {
			return nil, fmt.Errorf("%w: value field %d: %v", ErrMalformedControlID, i, err)
		}
		out[i] = v
	}
	return out, nil
}
