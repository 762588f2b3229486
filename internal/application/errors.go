package application

import (
	"errors"
	"fmt"
)

// Sentinel errors form the service's error taxonomy. Handlers translate them
// to HTTP statuses; anything not listed here is an internal failure and is
// never detailed to the caller.
var (
	ErrValidation         = errors.New("invalid input")
	ErrEmailTaken         = errors.New("an account with this email already exists")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrEmailNotVerified   = errors.New("please verify your email before logging in")
	ErrLoginNotAllowed    = errors.New("this account is not allowed to log in")
	ErrInvalidLink        = errors.New("invalid verification link")
	ErrExpiredLink        = errors.New("verification link expired; please register again")
	ErrAccountNotFound    = errors.New("account not found")
)

// ValidationError carries the offending field; errors.Is(err, ErrValidation)
// holds for every instance.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s %s", e.Field, e.Reason)
}

func (e *ValidationError) Unwrap() error { return ErrValidation }

func invalidField(field, reason string) error {
	return &ValidationError{Field: field, Reason: reason}
}
