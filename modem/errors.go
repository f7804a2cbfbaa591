package modem

import (
	"errors"
	"fmt"
)

var (
	// ErrNoDialer is returned when a Modem is constructed without a Dialer.
	//
	// This indicates a configuration error. A Dialer is required in order to
	// establish a connection to the modem port.
	ErrNoDialer = errors.New("no dialer configured")

	// ErrNotInitialized is returned by New when the Dialer hands out no
	// transport.
	ErrNotInitialized = errors.New("modem not initialized")

	// ErrAlreadyClosed is returned when Close is called on a Modem that has
	// already been closed.
	ErrAlreadyClosed = errors.New("modem already closed")

	// ErrSIMPinRequired is returned when the SIM card requires a PIN and no
	// PIN was provided in the Config.
	//
	// Callers may handle this error specially (for example, by prompting
	// the user for a PIN) and retry initialization.
	ErrSIMPinRequired = errors.New("SIM PIN required")

	// ErrLoopRunning is returned when Loop is called while another Loop is
	// already serving the same port.
	ErrLoopRunning = errors.New("loop already running")

	// ErrPortInUse is returned by Acquire when the port is already held by
	// another connection attempt.
	ErrPortInUse = errors.New("port already in use")

	// ErrLineTooLong is returned when a modem response line exceeds the
	// maximum allowed length.
	//
	// This typically indicates malformed input, unexpected binary data,
	// or a protocol framing error.
	ErrLineTooLong = errors.New("response line too long")
)

// CommandError reports a final result code other than OK. It lets callers
// tell a modem that refused a command apart from a broken transport.
type CommandError struct {
	// Command is the command line as it was written to the port.
	Command string
	// Result is the final result line (ERROR, +CME ERROR: ..., NO CARRIER...).
	Result string
	// Response holds the lines received before the final result.
	Response string
}

func (e *CommandError) Error() string {
	return fmt.Sprintf("command %q failed: %s", e.Command, e.Result)
}

// IsCommandError reports whether err carries a modem-reported failure.
func IsCommandError(err error) bool {
	var ce *CommandError
	return errors.As(err, &ce)
}
