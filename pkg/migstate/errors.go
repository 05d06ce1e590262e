package migstate

import (
	"errors"
	"fmt"
)

// Common sentinel errors
var (
	// ErrNotFound is returned by Backend.Read when the document location
	// does not exist. The Store treats it as "needs initialization"; it
	// never reaches callers of Get or Set.
	ErrNotFound = errors.New("state document not found")

	// ErrEmptyStageName is returned when a caller passes an empty stage name.
	ErrEmptyStageName = errors.New("stage name must not be empty")

	// ErrInvalidStatus is returned when a caller passes a desired status
	// outside the persistable enum.
	ErrInvalidStatus = errors.New("status must be started or completed")
)

// MalformedDocumentError indicates that persisted bytes do not parse as a
// state document. It is never self-healed: the Store surfaces it rather
// than silently replacing the document.
type MalformedDocumentError struct {
	// Location describes where the document was read from (if known)
	Location string

	// Cause is the underlying parse or validation error
	Cause error
}

func (e *MalformedDocumentError) Error() string {
	if e.Location != "" {
		return fmt.Sprintf("malformed state document at %s: %v", e.Location, e.Cause)
	}
	return fmt.Sprintf("malformed state document: %v", e.Cause)
}

func (e *MalformedDocumentError) Unwrap() error {
	return e.Cause
}

// BackendUnavailableError indicates an I/O, network, or authorization
// failure at the storage layer, as opposed to the location simply not
// existing. It is always fatal for the invocation; the Store never retries.
type BackendUnavailableError struct {
	// Backend is the backend kind (e.g. "local", "s3", "redis")
	Backend string

	// Op is the failing operation: "exists", "read" or "write"
	Op string

	// Location describes the document location
	Location string

	// Cause is the underlying error
	Cause error
}

func (e *BackendUnavailableError) Error() string {
	return fmt.Sprintf("%s backend unavailable: %s %s: %v", e.Backend, e.Op, e.Location, e.Cause)
}

func (e *BackendUnavailableError) Unwrap() error {
	return e.Cause
}
