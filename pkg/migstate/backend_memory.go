package migstate

import (
	"context"
	"fmt"
	"sync"
)

// MemoryBackend is a simple thread-safe in-memory backend for testing and
// local development. It loses data on restart.
type MemoryBackend struct {
	mu   sync.RWMutex
	data []byte
	set  bool
}

// NewMemoryBackend creates a new empty in-memory backend.
func NewMemoryBackend() *MemoryBackend {
	return &MemoryBackend{}
}

func (b *MemoryBackend) Exists(ctx context.Context) (bool, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.set, nil
}

func (b *MemoryBackend) Read(ctx context.Context) ([]byte, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if !b.set {
		return nil, fmt.Errorf("%w: memory", ErrNotFound)
	}

	// Return a copy to prevent race conditions if caller modifies it
	out := make([]byte, len(b.data))
	copy(out, b.data)
	return out, nil
}

func (b *MemoryBackend) Write(ctx context.Context, data []byte) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	// Store a copy
	b.data = make([]byte, len(data))
	copy(b.data, data)
	b.set = true
	return nil
}

func (b *MemoryBackend) String() string {
	return "memory"
}
