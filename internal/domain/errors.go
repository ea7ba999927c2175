package domain

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound             = errors.New("not found")
	ErrLoggedOut            = errors.New("session expired")
	ErrValidation           = errors.New("validation failed")
	ErrClientCreate         = errors.New("client could not be created")
	ErrNoRoomsAvailable     = errors.New("no rooms available for the selected type and dates")
	ErrBookingClosed        = errors.New("online booking is disabled")
	ErrConfirmationRequired = errors.New("confirmation required")
)

// ValidationError names the offending field. It matches ErrValidation with errors.Is.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func (e *ValidationError) Is(target error) bool { return target == ErrValidation }

func invalid(field, msg string) error { return &ValidationError{Field: field, Message: msg} }
