package gateway

import "errors"

var (
	// ErrConnectionClosed is returned when a send races the connection
	// being torn down.
	ErrConnectionClosed = errors.New("gateway connection closed")

	// ErrWriteTimeout is returned when the outbound buffer stays full past
	// the write timeout.
	ErrWriteTimeout = errors.New("gateway write timeout")

	// ErrNotConnected is returned for sends attempted while the gateway is
	// between connections.
	ErrNotConnected = errors.New("gateway not connected")
)
