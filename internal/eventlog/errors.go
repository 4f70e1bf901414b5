package eventlog

import (
	"errors"
	"fmt"
)

// ErrFrozen is returned when mutating a log whose session has ended.
var ErrFrozen = errors.New("eventlog: log is frozen")

// MalformedLogError reports a blob or log that is not a valid ordered event
// sequence with exactly one leading session-start event.
type MalformedLogError struct {
	Reason string
	Index  int // offending event index, -1 when not event specific
	Err    error
}

func (e *MalformedLogError) Error() string {
	msg := "eventlog: malformed log: " + e.Reason
	if e.Index >= 0 {
		msg = fmt.Sprintf("%s (event %d)", msg, e.Index)
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *MalformedLogError) Unwrap() error {
	return e.Err
}

func malformed(index int, format string, args ...any) *MalformedLogError {
	return &MalformedLogError{Reason: fmt.Sprintf(format, args...), Index: index}
}
