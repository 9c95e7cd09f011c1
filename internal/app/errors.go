package app

import (
	"errors"
	"fmt"
)

// InputError reports a document the checker refuses to process. It is
// never worth retrying.
type InputError struct {
	Err error
}

func (e *InputError) Error() string { return "invalid document: " + e.Err.Error() }
func (e *InputError) Unwrap() error { return e.Err }

// RequestError reports a check that failed as a whole, such as one that
// hit the request timeout.
type RequestError struct {
	Retryable bool
	Err       error
}

func (e *RequestError) Error() string {
	return fmt.Sprintf("check failed (retryable=%t): %v", e.Retryable, e.Err)
}
func (e *RequestError) Unwrap() error { return e.Err }

// IsRetryable reports whether err is a RequestError worth retrying.
func IsRetryable(err error) bool {
	var re *RequestError
	return errors.As(err, &re) && re.Retryable
}
