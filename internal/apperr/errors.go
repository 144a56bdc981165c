// Package apperr defines the expected business-rule failures that handlers
// translate into client responses. Anything that is not one of these is a
// system fault.
package apperr

import (
	"errors"
	"fmt"
)

var (
	ErrUserNotFound      = errors.New("User not found")
	ErrIncorrectPassword = errors.New("Incorrect password")
	ErrUserExists        = errors.New("User already exists")
	ErrNoteNotExist      = errors.New("Note doesn't exist")
	ErrSessionInvalid    = errors.New("session invalid or expired")
)

// MissingFieldError reports the first required note field found empty.
type MissingFieldError struct {
	Field string
}

func (e *MissingFieldError) Error() string {
	return fmt.Sprintf("%s is required", e.Field)
}

// IsFailure reports whether err is an expected, user-correctable failure
// rather than a system fault.
func IsFailure(err error) bool {
	var mf *MissingFieldError
	if errors.As(err, &mf) {
		return true
	}
	return errors.Is(err, ErrUserNotFound) ||
		errors.Is(err, ErrIncorrectPassword) ||
		errors.Is(err, ErrUserExists) ||
		errors.Is(err, ErrNoteNotExist) ||
		errors.Is(err, ErrSessionInvalid)
}
