package repository

import "errors"

// Store-level sentinels. Services translate these into the user-facing
// error taxonomy.
var (
	ErrNotFound        = errors.New("record not found")
	ErrDuplicateEntry  = errors.New("duplicate entry")
	ErrCapacityFull    = errors.New("session capacity full")
	ErrSessionInactive = errors.New("session is not active")
)
