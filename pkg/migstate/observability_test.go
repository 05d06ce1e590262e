package migstate

import (
	"context"
	"log/slog"
	"os"
	"testing"
)

// recordingObserver captures every event for assertions.
type recordingObserver struct {
	NoOpObserver
	ensures    []*EnsureEvent
	gets       []*GetEvent
	sets       []*SetEvent
	backendOps []*BackendOpEvent
}

func (o *recordingObserver) OnEnsure(ctx context.Context, event *EnsureEvent) {
	o.ensures = append(o.ensures, event)
}

func (o *recordingObserver) OnGet(ctx context.Context, event *GetEvent) {
	o.gets = append(o.gets, event)
}

func (o *recordingObserver) OnSet(ctx context.Context, event *SetEvent) {
	o.sets = append(o.sets, event)
}

func (o *recordingObserver) OnBackendOp(ctx context.Context, event *BackendOpEvent) {
	o.backendOps = append(o.backendOps, event)
}

func TestObserver_EventFlow(t *testing.T) {
	obs := &recordingObserver{}
	store := NewStore(NewMemoryBackend(), WithObserver(obs))
	ctx := context.Background()

	if _, err := store.EnsureInitialized(ctx); err != nil {
		t.Fatal(err)
	}
	if _, err := store.Get(ctx, "step1"); err != nil {
		t.Fatal(err)
	}
	if _, _, err := store.Set(ctx, "step1", StatusStarted); err != nil {
		t.Fatal(err)
	}

	if len(obs.ensures) != 1 {
		t.Errorf("Expected 1 ensure event, got %d", len(obs.ensures))
	}
	if !obs.ensures[0].Created {
		t.Error("Expected ensure event to report creation")
	}

	if len(obs.gets) != 1 {
		t.Errorf("Expected 1 get event, got %d", len(obs.gets))
	}
	if obs.gets[0].Status != StatusUnset {
		t.Errorf("Expected unset in get event, got %q", obs.gets[0].Status)
	}

	if len(obs.sets) != 1 {
		t.Errorf("Expected 1 set event, got %d", len(obs.sets))
	}
	if obs.sets[0].Final != StatusStarted || !obs.sets[0].Changed {
		t.Errorf("Expected (started, changed), got (%q, %v)", obs.sets[0].Final, obs.sets[0].Changed)
	}

	// ensure: exists+write; get: read; set: read+write
	if len(obs.backendOps) != 5 {
		t.Errorf("Expected 5 backend op events, got %d", len(obs.backendOps))
	}
}

func TestObserver_NoOpSetSkipsWriteEvent(t *testing.T) {
	obs := &recordingObserver{}
	store := NewStore(NewMemoryBackend(), WithObserver(obs))
	ctx := context.Background()

	if _, _, err := store.Set(ctx, "step1", StatusCompleted); err != nil {
		t.Fatal(err)
	}
	before := len(obs.backendOps)

	if _, _, err := store.Set(ctx, "step1", StatusStarted); err != nil {
		t.Fatal(err)
	}

	ops := obs.backendOps[before:]
	if len(ops) != 1 || ops[0].Op != "read" {
		t.Errorf("Expected a single read for the normalized set, got %+v", ops)
	}
}

func TestMultiObserver_FanOut(t *testing.T) {
	a := &recordingObserver{}
	b := &recordingObserver{}
	store := NewStore(NewMemoryBackend(), WithObserver(&MultiObserver{Observers: []Observer{a, b}}))

	if _, _, err := store.Set(context.Background(), "step1", StatusStarted); err != nil {
		t.Fatal(err)
	}

	if len(a.sets) != 1 || len(b.sets) != 1 {
		t.Errorf("Expected both observers to see the set, got %d and %d", len(a.sets), len(b.sets))
	}
}

func TestSlogObserver_DoesNotPanic(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
	obs := NewSlogObserver(logger, slog.LevelDebug)
	store := NewStore(NewMemoryBackend(), WithObserver(obs))
	ctx := context.Background()

	if _, err := store.EnsureInitialized(ctx); err != nil {
		t.Fatal(err)
	}
	if _, _, err := store.Set(ctx, "step1", StatusStarted); err != nil {
		t.Fatal(err)
	}
	if _, err := store.Get(ctx, "step1"); err != nil {
		t.Fatal(err)
	}
}
