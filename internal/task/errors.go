package task

import "fmt"

// ParseError reports a routine token that could not be turned into a
// task: unrecognized action, malformed arguments, or an unknown
// location reference. Routine loading fails atomically on the first
// ParseError; no partially-built task list is ever executed.
type ParseError struct {
	Token  string
	Reason string
	Err    error
}

func (e *ParseError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("parse %q: %s: %v", e.Token, e.Reason, e.Err)
	}
	return fmt.Sprintf("parse %q: %s", e.Token, e.Reason)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

func parseErrorf(token, format string, args ...interface{}) *ParseError {
	return &ParseError{Token: token, Reason: fmt.Sprintf(format, args...)}
}
