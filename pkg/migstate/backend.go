package migstate

import "context"

// Backend is the interface for storing document bytes.
// Implementations (Local, S3, Memory, Redis, SQL, Postgres) carry their
// location from construction and must fully overwrite the document on Write;
// there is no partial update at the storage layer.
//
// Error contract:
//   - Exists reports absence as (false, nil). The local variant never
//     errors; remote variants return *BackendUnavailableError when absence
//     cannot be distinguished from a connectivity or authorization failure.
//   - Read returns ErrNotFound when the location is absent and
//     *BackendUnavailableError for any other failure.
//   - Write returns *BackendUnavailableError on failure. Atomicity is
//     whatever the medium provides natively (object storage: atomic PUT;
//     local filesystem: best effort).
type Backend interface {
	// Exists reports whether the document location currently exists.
	Exists(ctx context.Context) (bool, error)

	// Read returns the full document bytes.
	Read(ctx context.Context) ([]byte, error)

	// Write replaces the document bytes wholesale.
	Write(ctx context.Context, data []byte) error

	// String returns a human-readable location for logs and errors.
	String() string
}
