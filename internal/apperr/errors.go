// Package apperr defines the sentinel errors shared across service boundaries.
package apperr

import "errors"

var (
	ErrNotFound      = errors.New("not found")
	ErrConflict      = errors.New("conflict")
	ErrAlreadyExists = errors.New("already exists")
	ErrInvalid       = errors.New("invalid document")
)

// invalidError marks a parse or validation failure. It matches ErrInvalid
// under errors.Is while Error() stays the bare diagnostic, so API error
// bodies and CLI output can show the detail without a sentinel prefix.
type invalidError struct {
	err error
}

func (e *invalidError) Error() string        { return e.err.Error() }
func (e *invalidError) Unwrap() error        { return e.err }
func (e *invalidError) Is(target error) bool { return target == ErrInvalid }

// Invalid wraps err so that errors.Is(err, ErrInvalid) holds.
func Invalid(err error) error {
	if err == nil {
		return nil
	}
	return &invalidError{err: err}
}
