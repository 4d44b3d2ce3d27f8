package repository

import "errors"

var (
	// ErrNotFound is returned when a row does not exist or is owned by a
	// different user; the two cases are indistinguishable on purpose.
	ErrNotFound = errors.New("not found")
	// ErrEmailTaken is returned when the email unique constraint rejects
	// an insert.
	ErrEmailTaken = errors.New("email already taken")
)
