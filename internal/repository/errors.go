package repository

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound indicates an operation referenced a user id with no
	// stored profile record. Not retryable.
	ErrNotFound = errors.New("profile record not found")

	// ErrStoreUnavailable indicates a transport or backend failure,
	// including timeouts. Retryable by the caller, but a timed-out write
	// may or may not have committed; re-fetch before retrying.
	ErrStoreUnavailable = errors.New("profile store unavailable")

	// ErrNoFieldsToUpdate indicates an update call with no fields set.
	ErrNoFieldsToUpdate = errors.New("no profile fields to update")

	// ErrEmailTaken indicates credentials already exist for an email.
	ErrEmailTaken = errors.New("email is already registered")
)

// storeErr wraps a backend failure as ErrStoreUnavailable, preserving the
// cause in the message.
func storeErr(err error) error {
	return fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
}
