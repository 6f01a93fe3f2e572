package domain

import (
	"errors"
	"fmt"
	"strings"
)

// Authentication errors returned by the identity provider.
var (
	ErrEmailInUse    = errors.New("email already in use")
	ErrUserNotFound  = errors.New("user not found")
	ErrWrongPassword = errors.New("wrong password")
)

// ErrSessionEnded is returned when the session behind a request or a live
// subscription was signed out, revoked or expired.
var ErrSessionEnded = errors.New("session ended")

// ErrNotFound is returned when a requested event, post or notification does not exist.
var ErrNotFound = errors.New("not found")

// ErrForbidden is returned when the caller is not allowed to act on the resource.
var ErrForbidden = errors.New("forbidden")

// ErrInvalidInput is returned when the request is invalid. Use NewValidationError
// to attach field messages.
var ErrInvalidInput = errors.New("invalid input")

// Claim lifecycle errors.
var (
	ErrAlreadyClaimed = errors.New("post already claimed by another user")
	ErrNotClaimant    = errors.New("post is not claimed by this user")
	ErrPostCompleted  = errors.New("post already completed")
)

// Join code allocation errors.
var (
	ErrJoinCodeTaken     = errors.New("join code already in use")
	ErrJoinCodeExhausted = errors.New("could not allocate a unique join code")
)

// ValidationError lists the problems found in a request. It matches ErrInvalidInput with errors.Is.
type ValidationError struct {
	Problems []string
}

// NewValidationError returns a ValidationError for the given problems.
func NewValidationError(problems ...string) *ValidationError {
	return &ValidationError{Problems: problems}
}

func (e *ValidationError) Error() string {
	if len(e.Problems) == 0 {
		return ErrInvalidInput.Error()
	}
	return fmt.Sprintf("%s: %s", ErrInvalidInput, strings.Join(e.Problems, "; "))
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrInvalidInput
}

// ErrUnavailable is returned when an optional backend (image storage) is not configured.
var ErrUnavailable = errors.New("feature not configured")
