package model

import (
	"errors"
	"strings"
)

// ErrNotFound is returned when an item or referenced entity does not exist.
var ErrNotFound = errors.New("not found")

// ErrConflict is returned when a revision number insert races another writer.
// It is retried inside the store and never reaches callers.
var ErrConflict = errors.New("revision number conflict")

// ValidationError collects every input problem found in one request, so the
// user sees all of them in a single round trip.
type ValidationError struct {
	Problems []string
}

func (e *ValidationError) Error() string {
	return "validation failed: " + strings.Join(e.Problems, "; ")
}

// NewValidationError returns a ValidationError if any problems were
// collected, nil otherwise.
func NewValidationError(problems []string) error {
	if len(problems) == 0 {
		return nil
	}
	return &ValidationError{Problems: problems}
}

// AsValidationError unwraps err into a ValidationError, if it is one.
func AsValidationError(err error) (*ValidationError, bool) {
	var verr *ValidationError
	if errors.As(err, &verr) {
		return verr, true
	}
	return nil, false
}
