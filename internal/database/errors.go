package database

import (
	"errors"
	"fmt"
)

// ErrStorageUnavailable wraps driver-level failures so callers can tell a
// dead backing store apart from domain errors. Not retried here.
var ErrStorageUnavailable = errors.New("storage unavailable")

// ErrRecordNotFound is returned by lookups that do not auto-create.
var ErrRecordNotFound = errors.New("schedule record not found")

// storeErr wraps a driver error with the failed operation and tags it as a
// storage failure.
func storeErr(op string, err error) error {
	return fmt.Errorf("failed to %s: %w", op, errors.Join(ErrStorageUnavailable, err))
}
