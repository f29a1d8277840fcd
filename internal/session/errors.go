package session

import "errors"

var (
	// ErrNotConnected is returned by any operation on a Session that has
	// no attached transport.
	ErrNotConnected = errors.New("session: not connected")

	// ErrLinkUnreliable is returned when one segment fails its integrity
	// exchange more times than the retry limit allows.
	ErrLinkUnreliable = errors.New("session: link unreliable, retry limit exceeded")

	// ErrMessageTooLarge is returned by Receive when the announced
	// message length exceeds the session's limit, before any allocation.
	ErrMessageTooLarge = errors.New("session: message exceeds size limit")
)
