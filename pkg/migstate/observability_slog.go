package migstate

import (
	"context"
	"log/slog"
)

// SlogObserver implements Observer using Go's structured logging (log/slog).
// This emits structured logs for all store and backend events.
//
// Example:
//
//	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
//	observer := migstate.NewSlogObserver(logger, slog.LevelInfo)
//	store := migstate.NewStore(backend, migstate.WithObserver(observer))
type SlogObserver struct {
	logger   *slog.Logger
	minLevel slog.Level
}

// NewSlogObserver creates an observer that logs to the given slog.Logger.
// Only events at or above minLevel will be logged.
func NewSlogObserver(logger *slog.Logger, minLevel slog.Level) *SlogObserver {
	return &SlogObserver{
		logger:   logger,
		minLevel: minLevel,
	}
}

func (o *SlogObserver) OnEnsure(ctx context.Context, event *EnsureEvent) {
	if event.Error != nil {
		if o.minLevel <= slog.LevelError {
			o.logger.ErrorContext(ctx, "ledger initialization failed",
				slog.String("location", event.Location),
				slog.Duration("duration", event.Duration),
				slog.String("error", event.Error.Error()),
			)
		}
		return
	}
	if o.minLevel <= slog.LevelInfo {
		o.logger.InfoContext(ctx, "ledger initialized",
			slog.String("location", event.Location),
			slog.Bool("created", event.Created),
			slog.Duration("duration", event.Duration),
		)
	}
}

func (o *SlogObserver) OnGet(ctx context.Context, event *GetEvent) {
	if event.Error != nil {
		if o.minLevel <= slog.LevelWarn {
			o.logger.WarnContext(ctx, "stage lookup failed",
				slog.String("location", event.Location),
				slog.String("stage", event.Stage),
				slog.Duration("duration", event.Duration),
				slog.String("error", event.Error.Error()),
			)
		}
		return
	}
	if o.minLevel <= slog.LevelDebug {
		o.logger.DebugContext(ctx, "stage lookup",
			slog.String("location", event.Location),
			slog.String("stage", event.Stage),
			slog.String("status", string(event.Status)),
			slog.Duration("duration", event.Duration),
		)
	}
}

func (o *SlogObserver) OnSet(ctx context.Context, event *SetEvent) {
	if event.Error != nil {
		if o.minLevel <= slog.LevelError {
			o.logger.ErrorContext(ctx, "stage transition failed",
				slog.String("location", event.Location),
				slog.String("stage", event.Stage),
				slog.String("desired", string(event.Desired)),
				slog.Duration("duration", event.Duration),
				slog.String("error", event.Error.Error()),
			)
		}
		return
	}
	if o.minLevel <= slog.LevelInfo {
		o.logger.InfoContext(ctx, "stage transition",
			slog.String("location", event.Location),
			slog.String("stage", event.Stage),
			slog.String("desired", string(event.Desired)),
			slog.String("final", string(event.Final)),
			slog.Bool("changed", event.Changed),
			slog.Duration("duration", event.Duration),
		)
	}
}

func (o *SlogObserver) OnBackendOp(ctx context.Context, event *BackendOpEvent) {
	if event.Error != nil && !event.NotFound {
		if o.minLevel <= slog.LevelWarn {
			o.logger.WarnContext(ctx, "backend operation failed",
				slog.String("backend", event.Backend),
				slog.String("op", event.Op),
				slog.Duration("latency", event.Latency),
				slog.String("error", event.Error.Error()),
			)
		}
		return
	}
	if o.minLevel <= slog.LevelDebug {
		o.logger.DebugContext(ctx, "backend operation",
			slog.String("backend", event.Backend),
			slog.String("op", event.Op),
			slog.Int("bytes", event.Bytes),
			slog.Duration("latency", event.Latency),
			slog.Bool("not_found", event.NotFound),
		)
	}
}
