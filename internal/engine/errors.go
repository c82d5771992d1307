package engine

import (
	"errors"
	"fmt"
)

// ErrNoSnapshot is returned by a SnapshotStore when a session has never
// been saved.
var ErrNoSnapshot = errors.New("no session snapshot")

// SnapshotError reports a snapshot that could not be saved or restored.
type SnapshotError struct {
	// SessionID identifies the affected session.
	SessionID string

	// Op is "save", "load" or "restore".
	Op string

	Err error
}

// Error implements the error interface.
func (e *SnapshotError) Error() string {
	return fmt.Sprintf("%s session %s: %v", e.Op, e.SessionID, e.Err)
}

// Unwrap returns the underlying cause.
func (e *SnapshotError) Unwrap() error {
	return e.Err
}

// IsSnapshotError reports whether err is a SnapshotError.
// Uses errors.As to handle wrapped errors.
func IsSnapshotError(err error) bool {
	var se *SnapshotError
	return errors.As(err, &se)
}
