package mtk

import "errors"

var (
	// ErrMissingPrefix is returned when a reply lacks the expected
	// information prefix.
	ErrMissingPrefix = errors.New("missing information prefix")

	// ErrNotEnoughItems is returned when a reply has fewer fields than its
	// layout requires.
	ErrNotEnoughItems = errors.New("not enough items")

	// ErrUnknownType is returned for a +EPDN reply whose tag is neither
	// "new" nor "update", including the "err" report.
	ErrUnknownType = errors.New("unknown response type")

	// ErrSessionMismatch is returned when the reply belongs to another
	// session than the one being connected.
	ErrSessionMismatch = errors.New("session id mismatch")

	// ErrInvalidInterface is returned when the interface id is not an
	// unsigned integer.
	ErrInvalidInterface = errors.New("invalid interface id")

	// ErrInvalidAddress is returned when a mandatory address is not a
	// usable IPv4 address.
	ErrInvalidAddress = errors.New("invalid IPv4 address")
)
