// Package river provides integration between the migstate ledger and River queue.
//
// This package provides a generic worker adapter that runs workflow stages
// as River jobs guarded by the ledger. It handles:
//   - Skipping jobs whose stage is already completed
//   - Recording started/completed transitions around the stage body
//   - Error classification for River's retry logic
package river

import (
	"context"
	"errors"
	"fmt"

	"github.com/riverqueue/river"

	"migstate/pkg/migstate"
)

// StageArgs is the interface that River job args must implement.
// It extends river.JobArgs with a method naming the ledger stage that
// guards the job.
type StageArgs interface {
	river.JobArgs

	// Stage returns the ledger stage name for this job.
	Stage() string
}

// StageWorker is a River worker that runs a workflow stage guarded by the
// ledger. A job whose stage is already completed returns immediately
// without running the body; otherwise the stage is marked started, the
// body runs, and the stage is marked completed on success.
type StageWorker[Args StageArgs] struct {
	river.WorkerDefaults[Args]

	// Store is the ledger consulted before and after the stage body
	Store *migstate.Store

	// Run is the stage body
	Run func(ctx context.Context, job *river.Job[Args]) error
}

// NewStageWorker creates a new StageWorker with the given configuration.
func NewStageWorker[Args StageArgs](
	store *migstate.Store,
	run func(ctx context.Context, job *river.Job[Args]) error,
) *StageWorker[Args] {
	return &StageWorker[Args]{
		Store: store,
		Run:   run,
	}
}

// Work executes the stage for the given job, skipping it when the ledger
// already records it as completed.
func (w *StageWorker[Args]) Work(ctx context.Context, job *river.Job[Args]) error {
	stage := job.Args.Stage()

	status, err := w.Store.Get(ctx, stage)
	if err != nil {
		return classifyError(fmt.Errorf("ledger lookup for stage %q: %w", stage, err))
	}

	// Completed on a previous run: nothing to do.
	if status == migstate.StatusCompleted {
		return nil
	}

	if _, _, err := w.Store.Set(ctx, stage, migstate.StatusStarted); err != nil {
		return classifyError(fmt.Errorf("marking stage %q started: %w", stage, err))
	}

	if err := w.Run(ctx, job); err != nil {
		return classifyError(err)
	}

	if _, _, err := w.Store.Set(ctx, stage, migstate.StatusCompleted); err != nil {
		return classifyError(fmt.Errorf("marking stage %q completed: %w", stage, err))
	}

	return nil
}

// classifyError converts ledger and stage errors to River-appropriate
// errors. This helps River decide whether to retry or discard the job.
func classifyError(err error) error {
	// A corrupt ledger document will not heal by retrying the job.
	var malformed *migstate.MalformedDocumentError
	if errors.As(err, &malformed) {
		return river.JobCancel(err)
	}

	// Context cancellation - don't retry, job was cancelled
	if errors.Is(err, context.Canceled) {
		return river.JobCancel(err)
	}

	// Deadline exceeded - allow retry with backoff
	if errors.Is(err, context.DeadlineExceeded) {
		return err
	}

	// Default: return error as-is, let River retry. This covers
	// *migstate.BackendUnavailableError, which is usually transient.
	return err
}
