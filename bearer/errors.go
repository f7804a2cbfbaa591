package bearer

import (
	"errors"
	"fmt"
)

// Kind classifies bearer failures for the caller.
type Kind int

const (
	KindFailed Kind = iota
	KindMalformedResponse
	KindInProgress
	KindCancelled
	KindNoPort
)

func (k Kind) String() string {
	switch k {
	case KindFailed:
		return "failed"
	case KindMalformedResponse:
		return "malformed response"
	case KindInProgress:
		return "in progress"
	case KindCancelled:
		return "cancelled"
	case KindNoPort:
		return "no port"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// Error is the structured failure reported by bearer operations. Msg is the
// complete human readable message; Err, if set, is the cause for errors.Is.
type Error struct {
	Kind Kind
	Msg  string
	Err  error
}

func (e *Error) Error() string {
	if e.Msg == "" && e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Kind, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Msg)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Errorf builds an *Error of the given kind. A %w verb in format is kept as
// the wrapped cause.
func Errorf(kind Kind, format string, args ...any) *Error {
	wrapped := fmt.Errorf(format, args...)
	return &Error{Kind: kind, Msg: wrapped.Error(), Err: errors.Unwrap(wrapped)}
}

// IsKind reports whether err carries a bearer *Error of kind k.
func IsKind(err error, k Kind) bool {
	var e *Error
	return errors.As(err, &e) && e.Kind == k
}
