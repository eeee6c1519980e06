package dumplog

import "fmt"

// UnexpectedFileContentError reports a dump whose text does not match any
// recognized pattern: a missing or mismatched preamble, a line that fails to
// match the shape it was expected to have, or a segment/producer mismatch.
// It is always fatal to the stream that produced it.
type UnexpectedFileContentError struct {
	Label string // source label, e.g. a file path
	Line  int    // 1-based
	Msg   string
}

func (e *UnexpectedFileContentError) Error() string {
	return fmt.Sprintf("%s:%d: %s", e.Label, e.Line, e.Msg)
}

func unexpected(label string, line int, format string, args ...interface{}) error {
	return &UnexpectedFileContentError{Label: label, Line: line, Msg: fmt.Sprintf(format, args...)}
}

// IllegalStateError reports a structurally well-formed dump that violates one
// of the broker's on-log invariants: a record that doesn't match the kind its
// batch header promised, a leader-epoch or position regression, an illegal
// transaction state transition, or similar. It is always fatal to the stream
// that produced it.
type IllegalStateError struct {
	Label string
	Line  int
	Msg   string
}

func (e *IllegalStateError) Error() string {
	return fmt.Sprintf("%s:%d: %s", e.Label, e.Line, e.Msg)
}

func illegalState(label string, line int, format string, args ...interface{}) error {
	return &IllegalStateError{Label: label, Line: line, Msg: fmt.Sprintf(format, args...)}
}
