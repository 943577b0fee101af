package journal

import (
	"context"
	"log/slog"

	"dlassist/internal/intake"
	"dlassist/internal/logging"
	"dlassist/internal/services"
)

// FromResult maps a completed intake onto a journal entry.
func FromResult(result intake.Result) Entry {
	entry := Entry{
		IntakeID:     result.IntakeID,
		Path:         result.Path,
		FinalPath:    result.FinalPath,
		Category:     result.Category,
		Action:       string(result.Action),
		Duplicate:    result.Duplicate,
		RemovedOlder: result.RemovedOlder,
		Started:      result.Started,
		Duration:     result.Duration,
	}
	if result.Err != nil {
		entry.ErrorClass = services.Classify(result.Err)
		entry.ErrorMessage = result.Err.Error()
	}
	return entry
}

// Recorder adapts a Store to the intake notifier interface. Record failures
// are logged and dropped; history must never block or fail an intake.
type Recorder struct {
	store  *Store
	logger *slog.Logger
}

// NewRecorder wraps store; logger may be nil.
func NewRecorder(store *Store, logger *slog.Logger) *Recorder {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Recorder{
		store:  store,
		logger: logging.NewComponentLogger(logger, "journal"),
	}
}

// IntakeCompleted records the result.
func (r *Recorder) IntakeCompleted(ctx context.Context, result intake.Result) {
	if _, err := r.store.Record(ctx, FromResult(result)); err != nil {
		logging.ErrorWithContext(r.logger, "journal record failed", "journal_error",
			logging.String(logging.FieldIntakeID, result.IntakeID),
			logging.Error(err),
		)
	}
}
