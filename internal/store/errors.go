package store

import "errors"

var (
	ErrNotFound  = errors.New("not found")
	ErrNoSession = errors.New("no active session")
	ErrForbidden = errors.New("not permitted")
)

var (
	ErrDuplicateEmail     = errors.New("email already registered")
	ErrInvalidCredentials = errors.New("invalid email or password")
)

var (
	ErrAlreadyExists     = errors.New("already exists")
	ErrInvalidTransition = errors.New("invalid state transition")
	ErrNotApproved       = errors.New("join request not approved")
	ErrEventFull         = errors.New("event is full")
)

var (
	ErrValidation = errors.New("validation error")
)
