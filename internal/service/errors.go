package service

import (
	"errors"
	"fmt"
)

var (
	// ErrSearchUnavailable covers network failure, timeout, non-2xx status and
	// malformed payloads from the food database. Callers treat it as "no results".
	ErrSearchUnavailable = errors.New("food search unavailable")

	// ErrInvalidCalories is the composition gate: entries need calories > 0.
	ErrInvalidCalories = errors.New("calories must be greater than zero")

	ErrTemplateNotFound   = errors.New("template not found")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrUserExists         = errors.New("user already exists")
	ErrInvalidToken       = errors.New("invalid token")
)

// ValidationError rejects input before anything is persisted.
type ValidationError struct {
	Field   string
	Message string
	cause   error
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func (e *ValidationError) Unwrap() error {
	return e.cause
}

func newValidationError(field, message string, cause error) *ValidationError {
	return &ValidationError{Field: field, Message: message, cause: cause}
}

// PersistenceError wraps a failed read or write against the store.
type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *PersistenceError) Unwrap() error {
	return e.Err
}

func persistenceError(op string, err error) error {
	if err == nil {
		return nil
	}
	return &PersistenceError{Op: op, Err: err}
}
