package services

import "errors"

var (
	// ErrNotFound is returned when the requested document does not exist.
	ErrNotFound = errors.New("not found")
	// ErrEmailTaken is returned when registering with an email that is
	// already in use.
	ErrEmailTaken = errors.New("user already exists")
	// ErrInvalidCredentials is returned on login with an unknown email or a
	// wrong password. Callers must not distinguish the two.
	ErrInvalidCredentials = errors.New("invalid email or password")
)
