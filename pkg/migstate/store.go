// Package migstate implements an idempotency ledger for multi-step
// workflows: a small persistent document that records, per named stage,
// whether that stage is unset, started, or completed, so a workflow runner
// can skip stages already completed on a rerun.
//
// The document lives in exactly one Backend (local file, S3 object, or one
// of the supporting variants). Every mutation is a full read-modify-write
// of the document; the Store never caches it across calls. Within one
// process, operations are sequential by construction. Across processes no
// locking or conditional-write is attempted: two concurrent writers can
// race and the last writer wins.
package migstate

import (
	"context"
	"errors"
	"time"
)

// Store is the idempotency policy layer over a Backend. It is the only
// component callers should normally use.
//
// Transition policy per stage: completed is terminal. A Set that asks to
// move a completed stage backward is normalized to a no-op returning
// (StatusCompleted, changed=false) rather than rejected with an error,
// matching the "once truly done, always done" contract for reruns.
type Store struct {
	backend  Backend
	observer Observer
}

// NewStore creates a store over the given backend.
func NewStore(backend Backend, opts ...StoreOption) *Store {
	cfg := storeConfig{observer: NoOpObserver{}}
	for _, opt := range opts {
		opt.apply(&cfg)
	}
	return &Store{
		backend:  backend,
		observer: cfg.observer,
	}
}

// EnsureInitialized writes the empty document template if and only if the
// backend location does not exist yet. It never clobbers an existing
// document, so it is safe to call on every invocation. The returned bool
// reports whether the template was written.
func (s *Store) EnsureInitialized(ctx context.Context) (bool, error) {
	start := time.Now()
	created, err := s.ensureInitialized(ctx)
	s.observer.OnEnsure(ctx, &EnsureEvent{
		Location: s.backend.String(),
		Created:  created,
		Duration: time.Since(start),
		Error:    err,
	})
	return created, err
}

func (s *Store) ensureInitialized(ctx context.Context) (bool, error) {
	exists, err := s.exists(ctx)
	if err != nil {
		return false, err
	}
	if exists {
		return false, nil
	}

	if err := s.writeDocument(ctx, NewDocument()); err != nil {
		return false, err
	}
	return true, nil
}

// Get returns the stored status for the given stage, or StatusUnset if the
// stage has never been recorded. An absent document reads as empty; backend
// and decode failures propagate unchanged.
func (s *Store) Get(ctx context.Context, stage string) (Status, error) {
	start := time.Now()
	status, err := s.get(ctx, stage)
	s.observer.OnGet(ctx, &GetEvent{
		Location: s.backend.String(),
		Stage:    stage,
		Status:   status,
		Duration: time.Since(start),
		Error:    err,
	})
	return status, err
}

func (s *Store) get(ctx context.Context, stage string) (Status, error) {
	if stage == "" {
		return StatusUnset, ErrEmptyStageName
	}

	doc, err := s.readDocumentOrEmpty(ctx)
	if err != nil {
		return StatusUnset, err
	}
	return doc.Stages[stage], nil
}

// ReadOnlyGet reports the stored status without ever mutating the document.
// It is for callers that only branch on existing status; changed is always
// false.
func (s *Store) ReadOnlyGet(ctx context.Context, stage string) (Status, bool, error) {
	status, err := s.Get(ctx, stage)
	return status, false, err
}

// Set records the desired status for a stage, applying the transition rule:
//
//	current == completed          -> (completed, false), desired ignored
//	current == desired            -> (current, false), write skipped
//	otherwise                     -> stages[stage] = desired, full document
//	                                 persisted, (desired, true)
//
// Only the named stage is touched; every other entry rides along unchanged
// in the rewritten document.
func (s *Store) Set(ctx context.Context, stage string, desired Status) (Status, bool, error) {
	start := time.Now()
	final, changed, err := s.set(ctx, stage, desired)
	s.observer.OnSet(ctx, &SetEvent{
		Location: s.backend.String(),
		Stage:    stage,
		Desired:  desired,
		Final:    final,
		Changed:  changed,
		Duration: time.Since(start),
		Error:    err,
	})
	return final, changed, err
}

func (s *Store) set(ctx context.Context, stage string, desired Status) (Status, bool, error) {
	if stage == "" {
		return StatusUnset, false, ErrEmptyStageName
	}
	if !desired.Valid() {
		return StatusUnset, false, ErrInvalidStatus
	}

	doc, err := s.readDocumentOrEmpty(ctx)
	if err != nil {
		return StatusUnset, false, err
	}

	current := doc.Stages[stage]

	// Terminal: a completed stage never reopens.
	if current.Terminal() {
		return current, false, nil
	}

	// Already there: skip the redundant write.
	if current == desired {
		return current, false, nil
	}

	doc.Stages[stage] = desired
	if err := s.writeDocument(ctx, doc); err != nil {
		return StatusUnset, false, err
	}
	return desired, true, nil
}

// exists probes the backend, reporting latency to the observer.
func (s *Store) exists(ctx context.Context) (bool, error) {
	start := time.Now()
	exists, err := s.backend.Exists(ctx)
	s.observer.OnBackendOp(ctx, &BackendOpEvent{
		Backend: s.backend.String(),
		Op:      "exists",
		Latency: time.Since(start),
		Error:   err,
	})
	return exists, err
}

// readDocumentOrEmpty reads and decodes the current document. An absent
// location decodes as the empty template, so ErrNotFound never escapes
// the store.
func (s *Store) readDocumentOrEmpty(ctx context.Context) (*Document, error) {
	start := time.Now()
	data, err := s.backend.Read(ctx)
	s.observer.OnBackendOp(ctx, &BackendOpEvent{
		Backend:  s.backend.String(),
		Op:       "read",
		Bytes:    len(data),
		Latency:  time.Since(start),
		Error:    err,
		NotFound: errors.Is(err, ErrNotFound),
	})
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return NewDocument(), nil
		}
		return nil, err
	}

	doc, err := DecodeDocument(data)
	if err != nil {
		var malformed *MalformedDocumentError
		if errors.As(err, &malformed) && malformed.Location == "" {
			malformed.Location = s.backend.String()
		}
		return nil, err
	}
	return doc, nil
}

func (s *Store) writeDocument(ctx context.Context, doc *Document) error {
	data, err := doc.Encode()
	if err != nil {
		return err
	}

	start := time.Now()
	err = s.backend.Write(ctx, data)
	s.observer.OnBackendOp(ctx, &BackendOpEvent{
		Backend: s.backend.String(),
		Op:      "write",
		Bytes:   len(data),
		Latency: time.Since(start),
		Error:   err,
	})
	return err
}
