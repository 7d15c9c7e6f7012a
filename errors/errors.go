package errors

import (
	"errors"
	"fmt"
)

var (
	// ErrUnauthenticated is returned when an action requiring a presence
	// entry is attempted on a connection that has none.
	ErrUnauthenticated = fmt.Errorf("no presence entry for this connection")
	ErrInvalidMessage  = fmt.Errorf("invalid message")
	ErrNotFound        = fmt.Errorf("not found")

	// ErrConflict signals a uniqueness-constraint race during identity or
	// conversation creation. Callers re-read and return the winning record;
	// this error never reaches a protocol consumer.
	ErrConflict = fmt.Errorf("uniqueness conflict")
)

// WireCode maps an error to the code carried by the protocol error event
// sent back to the originating connection.
func WireCode(err error) string {
	switch {
	case errors.Is(err, ErrUnauthenticated):
		return "unauthenticated"
	case errors.Is(err, ErrInvalidMessage):
		return "invalidMessage"
	case errors.Is(err, ErrNotFound):
		return "notFound"
	default:
		return "internal"
	}
}
