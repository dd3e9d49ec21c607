package gammascout

import (
	"errors"
	"fmt"
)

var (
	// ErrTimeout is returned when no line arrived within the response timeout
	// of an operation that requires one.
	ErrTimeout = errors.New("timeout waiting for response")

	// ErrClosed is returned by a port or connection after Close.
	ErrClosed = errors.New("connection closed")
)

// ProtocolError reports a received line that does not match what the
// protocol requires at that point.
type ProtocolError struct {
	// Op is the step that failed, e.g. "version", "read log".
	Op string

	// Got is the offending line.
	Got string

	// Want describes the expected text or format.
	Want string
}

func (e *ProtocolError) Error() string {
	return fmt.Sprintf("%s: received %q, expected %s", e.Op, e.Got, e.Want)
}

// IsProtocolError returns true if err is or wraps a *ProtocolError.
func IsProtocolError(err error) bool {
	var pe *ProtocolError
	return errors.As(err, &pe)
}

// InvalidModeError is returned by SwitchMode for a target other than
// ModeStandard or ModePC.
type InvalidModeError struct {
	Mode Mode
}

func (e *InvalidModeError) Error() string {
	return fmt.Sprintf("cannot switch to mode %s", e.Mode)
}
