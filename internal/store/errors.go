package store

import "fmt"

// Error is a storage-level failure. Services translate these into domain
// errors with context-specific messages.
type Error struct {
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Err }

// Sentinel errors.
var (
	// ErrNotFound is returned when a document or index entry does not exist.
	ErrNotFound = &Error{Message: "resource not found"}

	// ErrAlreadyExists is returned when a primary key or unique index value is taken.
	ErrAlreadyExists = &Error{Message: "resource already exists"}
)
