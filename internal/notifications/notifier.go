package notifications

import (
	"context"
	"log/slog"
	"path/filepath"

	"dlassist/internal/intake"
	"dlassist/internal/logging"
)

// Notifier adapts a Service to the intake notifier interface, translating
// terminal pipeline results into push events. Left-in-place and vanished
// outcomes are not worth a phone buzz and are skipped.
type Notifier struct {
	service Service
	logger  *slog.Logger
}

// NewNotifier wraps service; logger may be nil.
func NewNotifier(service Service, logger *slog.Logger) *Notifier {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Notifier{
		service: service,
		logger:  logging.NewComponentLogger(logger, "notifications"),
	}
}

// IntakeCompleted publishes the event matching the result's action. Publish
// failures are logged and dropped; a push outage must not fail an intake.
func (n *Notifier) IntakeCompleted(ctx context.Context, result intake.Result) {
	event, payload, ok := eventForResult(result)
	if !ok {
		return
	}
	if err := n.service.Publish(ctx, event, payload); err != nil {
		logging.WarnWithContext(n.logger, "notification publish failed", "notify_error",
			logging.String(logging.FieldIntakeID, result.IntakeID),
			logging.String("event", string(event)),
			logging.Error(err),
		)
	}
}

func eventForResult(result intake.Result) (Event, Payload, bool) {
	name := filepath.Base(result.Path)
	switch result.Action {
	case intake.ActionMoved:
		return EventFileProcessed, Payload{
			"name":     name,
			"category": result.Category,
			"final":    result.FinalPath,
		}, true
	case intake.ActionQuarantined:
		return EventFileQuarantined, Payload{
			"name":     name,
			"category": result.Category,
		}, true
	case intake.ActionDeletedDuplicate:
		return EventDuplicateDeleted, Payload{
			"name": name,
			"kept": result.Duplicate,
		}, true
	case intake.ActionFailed:
		payload := Payload{"name": name}
		if result.Err != nil {
			payload["error"] = result.Err.Error()
		}
		return EventIntakeFailed, payload, true
	default:
		return "", nil, false
	}
}
