package domain

import (
	"errors"
	"fmt"
)

// ErrFormat is matched by every *FormatError.
var ErrFormat = errors.New("malformed rule")

// ErrEmptyProgram is returned when a program has no rule lines, so no initial state can be derived.
var ErrEmptyProgram = errors.New("empty program")

// ErrProgramNotFound is returned when a named program cannot be found by a loader.
var ErrProgramNotFound = errors.New("program not found")

// ErrResultNotFound is returned when a key cannot be found in a result store.
var ErrResultNotFound = errors.New("result not found")

// ErrHeadOutOfRange is returned by callers that refuse an initial head far
// away from the input tape.
var ErrHeadOutOfRange = errors.New("head out of range")

// FormatError reports a rule line that cannot be compiled, usually because it
// does not split into exactly five fields.
type FormatError struct {
	Line   int
	Text   string
	Reason string
}

func (e *FormatError) Error() string {
	return fmt.Sprintf("line %d: %s: %q", e.Line, e.Reason, e.Text)
}

// Is makes errors.Is(err, ErrFormat) hold for any FormatError.
func (e *FormatError) Is(target error) bool {
	return target == ErrFormat
}
