package migstate

import (
	"context"
	"errors"
	"sync"
	"testing"
)

func TestMemoryBackend_EmptyReportsAbsent(t *testing.T) {
	backend := NewMemoryBackend()
	ctx := context.Background()

	exists, err := backend.Exists(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if exists {
		t.Error("Expected fresh backend to report absent")
	}

	if _, err := backend.Read(ctx); !errors.Is(err, ErrNotFound) {
		t.Errorf("Expected ErrNotFound, got %v", err)
	}
}

func TestMemoryBackend_ReadReturnsCopy(t *testing.T) {
	backend := NewMemoryBackend()
	ctx := context.Background()

	if err := backend.Write(ctx, []byte(`{"version":"v1","stages":{}}`)); err != nil {
		t.Fatal(err)
	}

	data, err := backend.Read(ctx)
	if err != nil {
		t.Fatal(err)
	}
	data[0] = 'X'

	again, err := backend.Read(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if again[0] != '{' {
		t.Error("Expected stored bytes to be unaffected by caller mutation")
	}
}

func TestMemoryBackend_ConcurrentAccess(t *testing.T) {
	backend := NewMemoryBackend()
	ctx := context.Background()

	if err := backend.Write(ctx, []byte(`{"version":"v1","stages":{}}`)); err != nil {
		t.Fatal(err)
	}

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			if _, err := backend.Read(ctx); err != nil {
				t.Errorf("Read failed: %v", err)
			}
		}()
		go func() {
			defer wg.Done()
			if err := backend.Write(ctx, []byte(`{"version":"v1","stages":{"a":"started"}}`)); err != nil {
				t.Errorf("Write failed: %v", err)
			}
		}()
	}
	wg.Wait()
}
