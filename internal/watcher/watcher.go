package watcher

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"dlassist/internal/config"
	"dlassist/internal/logging"
	"dlassist/internal/services"
)

// HandleFunc receives a file that passed filtering and the readiness check.
type HandleFunc func(ctx context.Context, path string)

// tempSuffixes are in-progress download extensions dropped before readiness
// checking when monitoring.ignore_temp is set.
var tempSuffixes = []string{".part", ".crdownload", ".tmp"}

// Watcher observes one non-recursive directory for file arrivals and hands
// each path to the handler exactly once, after the file has stopped growing.
// Every path is guarded by a processing set, so duplicate events for the same
// file never start a second pipeline.
type Watcher struct {
	cfg     *config.Config
	handler HandleFunc
	logger  *slog.Logger

	mu         sync.Mutex
	processing map[string]bool
	accepting  bool
	started    bool
	fsw        *fsnotify.Watcher

	wg sync.WaitGroup
}

// New constructs a watcher for the configured downloads folder.
func New(cfg *config.Config, handler HandleFunc, logger *slog.Logger) *Watcher {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Watcher{
		cfg:        cfg,
		handler:    handler,
		logger:     logging.NewComponentLogger(logger, "watcher"),
		processing: make(map[string]bool),
		accepting:  true,
	}
}

// Start subscribes to creation events on the downloads folder, creating the
// folder if absent. The supplied context is handed to every file pipeline;
// cancelling it aborts in-flight readiness waits, while Stop drains them.
func (w *Watcher) Start(ctx context.Context) error {
	dir := strings.TrimSpace(w.cfg.DownloadsFolder)
	if dir == "" {
		return services.Wrap(services.ErrConfiguration, "watcher", "start", "downloads folder not configured", nil)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return services.Wrap(services.ErrConfiguration, "watcher", "start", "create downloads folder", err)
	}

	w.mu.Lock()
	if w.started {
		w.mu.Unlock()
		return errors.New("watcher already started")
	}
	if !w.accepting {
		w.mu.Unlock()
		return errors.New("watcher already stopped")
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		w.mu.Unlock()
		return services.Wrap(services.ErrConfiguration, "watcher", "start", "event subscription", err)
	}
	if err := fsw.Add(dir); err != nil {
		w.mu.Unlock()
		fsw.Close()
		return services.Wrap(services.ErrConfiguration, "watcher", "start", "watch downloads folder", err)
	}
	w.fsw = fsw
	w.started = true
	w.wg.Add(1)
	w.mu.Unlock()

	go w.run(ctx, fsw)

	w.logger.Info("watching downloads folder",
		logging.String(logging.FieldPath, dir),
		logging.Duration("poll_interval", w.cfg.PollInterval()),
	)
	return nil
}

// Stop ends event delivery and blocks until in-flight file handling has
// drained. It is idempotent and safe to call without a prior Start.
func (w *Watcher) Stop() {
	w.mu.Lock()
	w.accepting = false
	fsw := w.fsw
	w.fsw = nil
	w.mu.Unlock()

	if fsw != nil {
		fsw.Close()
	}
	w.wg.Wait()
}

// Wait blocks until all dispatched file handling has finished without
// shutting the watcher down. Useful for one-shot processing runs.
func (w *Watcher) Wait() {
	w.wg.Wait()
}

// ProcessExisting feeds every current entry of the downloads folder through
// the same filtering, readiness, and handling path used for live events.
// It returns the number of files dispatched.
func (w *Watcher) ProcessExisting(ctx context.Context) (int, error) {
	dir := strings.TrimSpace(w.cfg.DownloadsFolder)
	if dir == "" {
		return 0, services.Wrap(services.ErrConfiguration, "watcher", "process existing", "downloads folder not configured", nil)
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		return 0, services.Wrap(services.ErrConfiguration, "watcher", "process existing", "read downloads folder", err)
	}

	dispatched := 0
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if w.dispatch(ctx, filepath.Join(dir, entry.Name())) {
			dispatched++
		}
	}
	return dispatched, nil
}

func (w *Watcher) run(ctx context.Context, fsw *fsnotify.Watcher) {
	defer w.wg.Done()
	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-fsw.Events:
			if !ok {
				return
			}
			if !event.Has(fsnotify.Create) {
				continue
			}
			w.dispatch(ctx, event.Name)
		case err, ok := <-fsw.Errors:
			if !ok {
				return
			}
			logging.WarnWithContext(w.logger, "watch error", "watch_error", logging.Error(err))
		}
	}
}

// dispatch applies the name filters and the processing-set guard, then hands
// the path to its own handling goroutine. Reports whether handling started.
func (w *Watcher) dispatch(ctx context.Context, path string) bool {
	if w.shouldIgnore(path) {
		w.logger.Debug("ignoring filtered event", logging.String(logging.FieldPath, path))
		return false
	}
	if info, err := os.Stat(path); err != nil || info.IsDir() {
		return false
	}

	path = filepath.Clean(path)
	w.mu.Lock()
	if !w.accepting || w.processing[path] {
		w.mu.Unlock()
		w.logger.Debug("duplicate event ignored", logging.String(logging.FieldPath, path))
		return false
	}
	w.processing[path] = true
	w.wg.Add(1)
	w.mu.Unlock()

	go func() {
		defer w.wg.Done()
		defer w.endProcessing(path)
		if !w.awaitReady(ctx, path) {
			return
		}
		w.handler(ctx, path)
	}()
	return true
}

func (w *Watcher) endProcessing(path string) {
	w.mu.Lock()
	delete(w.processing, path)
	w.mu.Unlock()
}

func (w *Watcher) shouldIgnore(path string) bool {
	base := filepath.Base(path)
	if w.cfg.Monitoring.IgnoreHidden && strings.HasPrefix(base, ".") {
		return true
	}
	if w.cfg.Monitoring.IgnoreTemp {
		lower := strings.ToLower(base)
		for _, suffix := range tempSuffixes {
			if strings.HasSuffix(lower, suffix) {
				return true
			}
		}
	}
	return false
}

// awaitReady polls the file size until two consecutive non-zero reads agree,
// then waits the settle delay. After the ready timeout it gives up and
// reports the file ready anyway; the pipeline must tolerate a growing file.
// Returns false only when the file vanished or the context was cancelled.
func (w *Watcher) awaitReady(ctx context.Context, path string) bool {
	poll := w.cfg.PollInterval()
	if poll <= 0 {
		poll = time.Second
	}
	deadline := time.Now().Add(w.cfg.ReadyTimeout())

	ticker := time.NewTicker(poll)
	defer ticker.Stop()

	var lastSize int64 = -1
	for {
		info, err := os.Stat(path)
		switch {
		case errors.Is(err, os.ErrNotExist):
			w.logger.Debug("file vanished before ready", logging.String(logging.FieldPath, path))
			return false
		case err != nil:
			// Transient stat failure; keep polling until the deadline.
		case info.Size() > 0 && info.Size() == lastSize:
			return w.settle(ctx, path)
		default:
			lastSize = info.Size()
		}

		if w.cfg.ReadyTimeout() > 0 && time.Now().After(deadline) {
			w.logger.Debug("readiness timeout, proceeding anyway",
				logging.String(logging.FieldPath, path),
				logging.Int64("last_size", lastSize),
			)
			return w.settle(ctx, path)
		}

		select {
		case <-ctx.Done():
			return false
		case <-ticker.C:
		}
	}
}

func (w *Watcher) settle(ctx context.Context, path string) bool {
	delay := w.cfg.SettleDelay()
	if delay <= 0 {
		return true
	}
	timer := time.NewTimer(delay)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
	}
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		w.logger.Debug("file vanished during settle", logging.String(logging.FieldPath, path))
		return false
	}
	return true
}
