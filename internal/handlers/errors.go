package handlers

import "fmt"

// Error is returned by Resolve for failures that end the request instead of
// producing a conversational outcome.
type Error struct {
	Code   string
	Reason string
	Err    error
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	if e.Err == nil {
		return fmt.Sprintf("resolver: %s (%s)", e.Code, e.Reason)
	}
	return fmt.Sprintf("resolver: %s (%s): %v", e.Code, e.Reason, e.Err)
}

func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

func newError(code, reason string, err error) *Error {
	return &Error{Code: code, Reason: reason, Err: err}
}
