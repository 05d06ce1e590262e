package migstate

import (
	"context"
	"time"
)

// Observer is the interface for observing state store operations.
// Implementations can emit metrics, logs, or traces to their observability backend.
//
// All Observer methods are called synchronously during each operation, so
// implementations should be fast and non-blocking. For expensive operations
// (e.g., network calls), consider buffering events and processing them
// asynchronously.
//
// Example implementations:
//   - Prometheus metrics collector
//   - OpenTelemetry tracer
//   - Structured logger (slog)
type Observer interface {
	// OnEnsure is called after EnsureInitialized completes.
	OnEnsure(ctx context.Context, event *EnsureEvent)

	// OnGet is called after Get or ReadOnlyGet completes.
	OnGet(ctx context.Context, event *GetEvent)

	// OnSet is called after Set completes.
	OnSet(ctx context.Context, event *SetEvent)

	// OnBackendOp is called after each raw backend operation (exists/read/write).
	OnBackendOp(ctx context.Context, event *BackendOpEvent)
}

// EnsureEvent is emitted when EnsureInitialized completes.
type EnsureEvent struct {
	Location string
	Created  bool // true if the empty template was written
	Duration time.Duration
	Error    error // nil if successful
}

// GetEvent is emitted when a stage status lookup completes.
type GetEvent struct {
	Location string
	Stage    string
	Status   Status // StatusUnset if the stage has never been recorded
	Duration time.Duration
	Error    error
}

// SetEvent is emitted when a stage transition completes.
type SetEvent struct {
	Location string
	Stage    string
	Desired  Status
	Final    Status
	Changed  bool // true if a write was performed
	Duration time.Duration
	Error    error
}

// BackendOpEvent is emitted for each raw backend operation.
type BackendOpEvent struct {
	Backend  string // location string of the backend
	Op       string // "exists", "read" or "write"
	Bytes    int    // payload size for read/write
	Latency  time.Duration
	Error    error
	NotFound bool // true when a read hit an absent location
}

// NoOpObserver is a no-op implementation of Observer.
// Useful as a base for partial implementations.
type NoOpObserver struct{}

func (NoOpObserver) OnEnsure(ctx context.Context, event *EnsureEvent)       {}
func (NoOpObserver) OnGet(ctx context.Context, event *GetEvent)             {}
func (NoOpObserver) OnSet(ctx context.Context, event *SetEvent)             {}
func (NoOpObserver) OnBackendOp(ctx context.Context, event *BackendOpEvent) {}

// MultiObserver combines multiple observers into one.
// Events are sent to all observers in order.
type MultiObserver struct {
	Observers []Observer
}

func (m *MultiObserver) OnEnsure(ctx context.Context, event *EnsureEvent) {
	for _, obs := range m.Observers {
		obs.OnEnsure(ctx, event)
	}
}

func (m *MultiObserver) OnGet(ctx context.Context, event *GetEvent) {
	for _, obs := range m.Observers {
		obs.OnGet(ctx, event)
	}
}

func (m *MultiObserver) OnSet(ctx context.Context, event *SetEvent) {
	for _, obs := range m.Observers {
		obs.OnSet(ctx, event)
	}
}

func (m *MultiObserver) OnBackendOp(ctx context.Context, event *BackendOpEvent) {
	for _, obs := range m.Observers {
		obs.OnBackendOp(ctx, event)
	}
}
