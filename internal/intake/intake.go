package intake

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"dlassist/internal/classify"
	"dlassist/internal/config"
	"dlassist/internal/dupes"
	"dlassist/internal/fileutil"
	"dlassist/internal/logging"
	"dlassist/internal/metadata"
	"dlassist/internal/naming"
	"dlassist/internal/placement"
	"dlassist/internal/services"
)

// Action is a pipeline's final disposition of a file.
type Action string

const (
	// ActionMoved means the file landed in its category destination.
	ActionMoved Action = "moved"
	// ActionQuarantined means no destination was known and the file went to
	// the quarantine folder under its original name.
	ActionQuarantined Action = "quarantined"
	// ActionLeftInPlace means no destination was known and quarantine is off.
	ActionLeftInPlace Action = "left_in_place"
	// ActionDeletedDuplicate means the incoming file was removed in favor of
	// an equivalent file already present at the destination.
	ActionDeletedDuplicate Action = "deleted_duplicate"
	// ActionVanished means the file was gone before the pipeline started.
	ActionVanished Action = "vanished"
	// ActionFailed means a pipeline step errored; Err carries the cause.
	ActionFailed Action = "failed"
)

// Result records what one intake did. FinalPath is empty unless the file was
// relocated; Duplicate names the first equivalent found at the destination;
// RemovedOlder names a stale duplicate deleted to make room for the incoming
// file.
type Result struct {
	IntakeID     string        `json:"intake_id"`
	Path         string        `json:"path"`
	FinalPath    string        `json:"final_path,omitempty"`
	Category     string        `json:"category"`
	Action       Action        `json:"action"`
	Duplicate    string        `json:"duplicate,omitempty"`
	RemovedOlder string        `json:"removed_older,omitempty"`
	Err          error         `json:"-"`
	Started      time.Time     `json:"started"`
	Duration     time.Duration `json:"duration"`
}

// Notifier observes completed intakes. Implementations decide which actions
// they care about; they must log their own failures rather than return them,
// and a panic is contained by the controller.
type Notifier interface {
	IntakeCompleted(ctx context.Context, result Result)
}

// MultiNotifier fans one result out to several notifiers in order.
func MultiNotifier(notifiers ...Notifier) Notifier {
	return multiNotifier(notifiers)
}

type multiNotifier []Notifier

func (m multiNotifier) IntakeCompleted(ctx context.Context, result Result) {
	for _, n := range m {
		if n != nil {
			n.IntakeCompleted(ctx, result)
		}
	}
}

// Controller decides the fate of one ready file at a time: classify by
// extension, resolve duplicates against the destination, pick a name from
// metadata, and move, quarantine, or leave the file. A failing step aborts
// only that file's pipeline.
type Controller struct {
	cfg        *config.Config
	classifier *classify.Classifier
	names      *naming.Policy
	places     *placement.Policy
	resolver   *dupes.Resolver
	meta       *metadata.Source
	notifier   Notifier
	logger     *slog.Logger
}

// New builds a controller whose policies are derived from cfg. The metadata
// source is injected so callers control which extractors (and timeouts) are
// active; notifier may be nil.
func New(cfg *config.Config, meta *metadata.Source, notifier Notifier, logger *slog.Logger) *Controller {
	if logger == nil {
		logger = logging.NewNop()
	}
	if meta == nil {
		meta = metadata.NewSource(logger, 0)
	}
	return &Controller{
		cfg:        cfg,
		classifier: classify.New(cfg.FileTypes),
		names:      naming.New(cfg.NamingPatterns),
		places:     placement.New(cfg.Destinations),
		resolver:   dupes.NewResolver(cfg.DuplicateDetection.CompareMethod),
		meta:       meta,
		notifier:   notifier,
		logger:     logging.NewComponentLogger(logger, "intake"),
	}
}

// Process runs the full pipeline for path and reports the outcome. It never
// returns an error: failures are captured in the result and logged, because
// one bad file must not stop the watcher.
func (c *Controller) Process(ctx context.Context, path string) Result {
	result := Result{
		IntakeID: uuid.NewString(),
		Path:     path,
		Started:  time.Now(),
	}
	ctx = services.WithIntakeID(ctx, result.IntakeID)
	log := c.logger.With(
		logging.String(logging.FieldIntakeID, result.IntakeID),
		logging.String(logging.FieldPath, path),
	)

	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			log.Debug("file gone before intake")
			result.Action = ActionVanished
		} else {
			result.Action = ActionFailed
			result.Err = services.Wrap(services.ErrTransient, "intake", "stat", "", err)
			logging.ErrorWithContext(log, "intake failed", "intake_failed", logging.Error(result.Err))
		}
		return c.finish(ctx, log, result)
	}

	if err := c.run(ctx, log, &result); err != nil {
		result.Action = ActionFailed
		result.Err = err
		logging.ErrorWithContext(log, "intake failed", "intake_failed",
			logging.String("error_class", services.Classify(err)),
			logging.Error(err),
		)
	}
	return c.finish(ctx, log, result)
}

func (c *Controller) run(ctx context.Context, log *slog.Logger, result *Result) error {
	category, matched := c.classifier.Category(result.Path)
	result.Category = category
	log.Info("classified",
		logging.String(logging.FieldCategory, category),
		logging.Bool("matched", matched),
	)

	done, err := c.resolveDuplicates(ctx, log, result)
	if err != nil {
		return err
	}
	if done {
		return nil
	}

	attrs := c.meta.Extract(ctx, result.Path)
	name, nameErr := c.names.FileName(category, filepath.Base(result.Path), attrs)
	if nameErr != nil {
		// Recovered per policy: the original filename is always usable.
		logging.WarnWithContext(log, "falling back to original filename", "name_fallback",
			logging.Error(services.Wrap(services.ErrNameResolution, "intake", "name", "", nameErr)),
		)
	}

	return c.place(log, result, name)
}

// resolveDuplicates runs the duplicate check. It reports done=true when the
// incoming file was deleted and the pipeline should stop.
func (c *Controller) resolveDuplicates(ctx context.Context, log *slog.Logger, result *Result) (bool, error) {
	if !c.cfg.DuplicateDetection.Enabled {
		return false, nil
	}
	destDir, ok := c.places.Destination(result.Category)
	if !ok {
		return false, nil
	}

	matches, err := c.resolver.Find(ctx, result.Path, destDir)
	if err != nil {
		return false, services.Wrap(services.ErrTransient, "intake", "duplicate check", "", err)
	}
	if len(matches) == 0 {
		return false, nil
	}

	// Only the first match participates in the keep-newest comparison. The
	// walk order is filesystem enumeration order, so with several equivalent
	// copies the survivor is not deterministic.
	first := matches[0]
	result.Duplicate = first
	log.Info("duplicate found",
		logging.String("duplicate", first),
		logging.Int("matches", len(matches)),
		logging.String("method", c.resolver.Method()),
	)

	if !c.cfg.DuplicateDetection.KeepNewest {
		return true, c.deleteIncoming(log, result)
	}

	incoming, err := os.Stat(result.Path)
	if err != nil {
		return false, services.Wrap(services.ErrTransient, "intake", "duplicate check", "stat incoming", err)
	}
	existing, err := os.Stat(first)
	if err != nil {
		return false, services.Wrap(services.ErrTransient, "intake", "duplicate check", "stat duplicate", err)
	}

	if incoming.ModTime().After(existing.ModTime()) {
		if err := os.Remove(first); err != nil {
			return false, services.Wrap(services.ErrTransient, "intake", "duplicate check", "delete older duplicate", err)
		}
		result.RemovedOlder = first
		log.Info("deleted older duplicate", logging.String("duplicate", first))
		return false, nil
	}
	return true, c.deleteIncoming(log, result)
}

func (c *Controller) deleteIncoming(log *slog.Logger, result *Result) error {
	if err := os.Remove(result.Path); err != nil {
		return services.Wrap(services.ErrTransient, "intake", "duplicate check", "delete incoming duplicate", err)
	}
	result.Action = ActionDeletedDuplicate
	log.Info("deleted incoming duplicate", logging.String("kept", result.Duplicate))
	return nil
}

func (c *Controller) place(log *slog.Logger, result *Result, name string) error {
	if destDir, ok := c.places.Destination(result.Category); ok {
		final, err := fileutil.MoveFile(result.Path, destDir, name)
		if err != nil {
			if errors.Is(err, fileutil.ErrSourceRemove) {
				// The copy landed; only cleanup failed. Record where the data
				// lives so the duplicate copy can be found.
				result.FinalPath = final
			}
			return services.Wrap(services.ErrTransient, "intake", "move", "", err)
		}
		result.FinalPath = final
		result.Action = ActionMoved
		log.Info("moved",
			logging.String(logging.FieldAction, string(ActionMoved)),
			logging.String(logging.FieldDestination, final),
		)
		return nil
	}

	if c.cfg.Quarantine.Enabled {
		final, err := fileutil.MoveFile(result.Path, c.cfg.QuarantineFolder, filepath.Base(result.Path))
		if err != nil {
			if errors.Is(err, fileutil.ErrSourceRemove) {
				result.FinalPath = final
			}
			return services.Wrap(services.ErrTransient, "intake", "quarantine", "", err)
		}
		result.FinalPath = final
		result.Action = ActionQuarantined
		log.Info("quarantined",
			logging.String(logging.FieldAction, string(ActionQuarantined)),
			logging.String(logging.FieldDestination, final),
		)
		return nil
	}

	result.Action = ActionLeftInPlace
	log.Info("left in place", logging.String(logging.FieldAction, string(ActionLeftInPlace)))
	return nil
}

// finish stamps the duration and fans the result out to the notifier. A
// notifier panic is contained here so observers can never take down the
// watcher.
func (c *Controller) finish(ctx context.Context, log *slog.Logger, result Result) Result {
	result.Duration = time.Since(result.Started)
	if c.notifier != nil {
		func() {
			defer func() {
				if r := recover(); r != nil {
					logging.ErrorWithContext(log, "notifier panicked", "notify_panic",
						logging.Error(fmt.Errorf("%v", r)),
					)
				}
			}()
			c.notifier.IntakeCompleted(ctx, result)
		}()
	}
	return result
}
