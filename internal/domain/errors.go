package domain

import "errors"

var (
	ErrNotFound           = errors.New("not found")
	ErrInvalidInput       = errors.New("invalid input")
	ErrForbidden          = errors.New("forbidden")
	ErrUnauthenticated    = errors.New("unauthenticated")
	ErrNoRole             = errors.New("email does not belong to a known role domain")
	ErrInvalidCredentials = errors.New("invalid name or pin")
	ErrAccountExists      = errors.New("an account with this name already exists")
	ErrAccountDisabled    = errors.New("account is disabled")
	ErrRequestResolved    = errors.New("song request has already been resolved")
	ErrInvalidReorder     = errors.New("invalid reorder sequence")
	ErrSessionNotFound    = errors.New("session not found")
)
