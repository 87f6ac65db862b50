package store

import "errors"

// Centralized store-level errors. All errors returned by store operations
// are defined here so callers can branch with errors.Is.
var (
	ErrCitizenNotFound    = errors.New("citizen not found")
	ErrAccountNotFound    = errors.New("account not found")
	ErrUsernameTaken      = errors.New("username already in use")
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrNotRegu            = errors.New("account is not a collector group")
	ErrNoSession          = errors.New("no cached session")
)
