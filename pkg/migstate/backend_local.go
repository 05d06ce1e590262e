package migstate

import (
	"context"
	"fmt"
	"os"
)

// LocalBackend stores the document in a single file on the local filesystem.
// Writes truncate and rewrite the whole file. No locking is performed;
// concurrent local writers can race and the last writer wins.
type LocalBackend struct {
	path string
}

// NewLocalBackend creates a backend for the given file path.
func NewLocalBackend(path string) *LocalBackend {
	return &LocalBackend{path: path}
}

func (b *LocalBackend) Exists(ctx context.Context) (bool, error) {
	_, err := os.Stat(b.path)
	if err != nil {
		// Absence and unreadability both report false for the local
		// variant; Read surfaces the real error when it matters.
		return false, nil
	}
	return true, nil
}

func (b *LocalBackend) Read(ctx context.Context) ([]byte, error) {
	data, err := os.ReadFile(b.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, b.path)
		}
		return nil, &BackendUnavailableError{Backend: "local", Op: "read", Location: b.path, Cause: err}
	}
	return data, nil
}

func (b *LocalBackend) Write(ctx context.Context, data []byte) error {
	if err := os.WriteFile(b.path, data, 0o644); err != nil {
		return &BackendUnavailableError{Backend: "local", Op: "write", Location: b.path, Cause: err}
	}
	return nil
}

func (b *LocalBackend) String() string {
	return b.path
}
