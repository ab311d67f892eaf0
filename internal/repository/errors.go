package repository

import "errors"

var (
	// ErrNotFound indicates the requested record does not exist.
	ErrNotFound = errors.New("repository: not found")
	// ErrDuplicate indicates a unique constraint (username, email, AMKA,
	// invoice number) rejected the write.
	ErrDuplicate = errors.New("repository: duplicate key")
)
