package ledger

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidAmount is returned for malformed or non-positive amount input.
	ErrInvalidAmount = errors.New("invalid amount")
	// ErrInvalidDate is returned for input that is not a YYYY-MM-DD date.
	ErrInvalidDate = errors.New("invalid date, expected YYYY-MM-DD")
	// ErrNotAdmin is returned when a gated operation is attempted by an
	// identity outside the admin allow-list.
	ErrNotAdmin = errors.New("access denied: admin only")
)

// StorageError wraps an I/O failure from the underlying store. The
// triggering operation is abandoned, never retried.
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage: %s: %v", e.Op, e.Err)
}

func (e *StorageError) Unwrap() error {
	return e.Err
}
