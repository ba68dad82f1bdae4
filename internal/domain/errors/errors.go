package errors

import (
	"errors"
	"fmt"
)

var (
	ErrAlreadyExists        = errors.New("already exists")
	ErrNotFound             = errors.New("not found")
	ErrInvalidCredentials   = errors.New("invalid credentials")
	ErrNotAuthenticated     = errors.New("not authenticated")
	ErrPersistence          = errors.New("persistence failure")
	ErrTransitionNotAllowed = errors.New("transition not allowed")
	ErrInvalidInput         = errors.New("invalid input")
)

// User facing messages returned in the sign-up/sign-in result union.
const (
	MsgDuplicateUser      = "User with this email already exists"
	MsgInvalidCredentials = "Invalid email or password"
	MsgSignUpFailed       = "Failed to create account"
	MsgSignInFailed       = "Failed to sign in"
	MsgInvalidInput       = "Email and password are required"
)

// PersistenceError describes a failed storage read, write or decode.
type PersistenceError struct {
	Op  string
	Key string
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("%s %q: %v", e.Op, e.Key, e.Err)
}

func (e *PersistenceError) Unwrap() error { return e.Err }

// Is reports every PersistenceError as ErrPersistence.
func (e *PersistenceError) Is(target error) bool { return target == ErrPersistence }

// ProfileSetupError is returned by the backend when profile setup or update fails.
type ProfileSetupError struct {
	Status  int
	Message string
}

func (e *ProfileSetupError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("profile setup failed with status %d", e.Status)
	}
	return e.Message
}
