package framepace

import (
	"fmt"
	"runtime/debug"
)

// TokenSource identifies which component produced an error.
type TokenSource string

// Error sources.
const (
	TokenScheduler TokenSource = "scheduler"
	TokenClock     TokenSource = "clock"
	TokenRunner    TokenSource = "runner"
)

// PacingError is returned for construction and lifecycle misuse. The pacing
// operations themselves are total: an arrival or a tick never fails, it can
// only violate an invariant, which is a bug rather than a runtime condition.
type PacingError struct {
	Inner       error
	Message     string
	StackTrace  string
	ErrorSource TokenSource
	Misc        map[string]interface{}
}

func wrapPacingError(err error, source TokenSource, messagef string, msgArgs ...interface{}) PacingError {
	return PacingError{
		Inner:       err,
		Message:     fmt.Sprintf(messagef, msgArgs...),
		StackTrace:  string(debug.Stack()),
		ErrorSource: source,
		Misc:        make(map[string]interface{}),
	}
}

func (e PacingError) Error() string {
	return e.Message
}

func (e PacingError) Unwrap() error {
	return e.Inner
}
