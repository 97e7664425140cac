package ledger

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound    = errors.New("entry not found")
	ErrUnavailable = errors.New("store unavailable")
)

// ValidationError reports a rejected field; nothing is written when it is returned.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func invalid(field, msg string) error {
	return &ValidationError{Field: field, Message: msg}
}

func unavailable(op string, err error) error {
	return fmt.Errorf("%s: %w: %v", op, ErrUnavailable, err)
}
