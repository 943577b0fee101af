package daemon

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync/atomic"
	"time"

	"github.com/gofrs/flock"

	"dlassist/internal/api"
	"dlassist/internal/config"
	"dlassist/internal/deps"
	"dlassist/internal/journal"
	"dlassist/internal/logging"
	"dlassist/internal/notifications"
	"dlassist/internal/watcher"
)

// Daemon coordinates the watcher, journal, notifications, and the optional
// dashboard behind flock-based single-instance execution.
type Daemon struct {
	cfg      *config.Config
	store    *config.Store
	journal  *journal.Store
	watch    *watcher.Watcher
	notifier notifications.Service
	logger   *slog.Logger
	logPath  string

	lockPath string
	lock     *flock.Flock

	dashboard *dashboardServer

	running   atomic.Bool
	startedAt atomic.Int64
	ctx       context.Context
	cancel    context.CancelFunc
}

// Status represents daemon runtime information.
type Status struct {
	Running         bool
	PID             int
	StartedAt       time.Time
	DownloadsFolder string
	JournalDBPath   string
	LockFilePath    string
	SocketPath      string
	DashboardAddr   string
	Dependencies    []deps.Status
	Intakes         map[string]int
}

// New constructs a daemon with initialized dependencies. The journal store is
// owned by the daemon from here on and closed by Close. A nil watcher is
// allowed for dashboard-only use; Start then refuses to run.
func New(cfg *config.Config, store *config.Store, journalStore *journal.Store, watch *watcher.Watcher, notifier notifications.Service, logger *slog.Logger) (*Daemon, error) {
	if cfg == nil || store == nil || journalStore == nil {
		return nil, errors.New("daemon requires config, config store, and journal")
	}
	if logger == nil {
		logger = logging.NewNop()
	}

	return &Daemon{
		cfg:      cfg,
		store:    store,
		journal:  journalStore,
		watch:    watch,
		notifier: notifier,
		logger:   logger,
		logPath:  cfg.LogFilePath(),
		lockPath: cfg.LockPath(),
		lock:     flock.New(cfg.LockPath()),
	}, nil
}

// Start acquires the daemon lock, begins watching the downloads folder, and
// brings up the dashboard when enabled. A failed dashboard bind is logged and
// tolerated; a failed watcher start is fatal.
func (d *Daemon) Start(ctx context.Context) error {
	if d.running.Load() {
		return errors.New("daemon already running")
	}
	if d.watch == nil {
		return errors.New("daemon has no watcher")
	}

	ok, err := d.lock.TryLock()
	if err != nil {
		return fmt.Errorf("acquire lock: %w", err)
	}
	if !ok {
		return errors.New("another dlassist daemon instance is already running")
	}

	d.ctx, d.cancel = context.WithCancel(ctx)
	if err := d.watch.Start(d.ctx); err != nil {
		_ = d.lock.Unlock()
		d.cancel()
		d.ctx = nil
		d.cancel = nil
		return fmt.Errorf("start watcher: %w", err)
	}

	if d.cfg.Daemon.ProcessExistingOnStart {
		if dispatched, err := d.watch.ProcessExisting(d.ctx); err != nil {
			d.logger.Warn("startup sweep failed", logging.Error(err))
		} else if dispatched > 0 {
			d.logger.Info("processing files already present", logging.Int("count", dispatched))
		}
	}

	if d.cfg.Dashboard.Enabled {
		if err := d.StartDashboard(d.ctx); err != nil {
			d.logger.Warn("dashboard unavailable", logging.Error(err))
		}
	}

	d.running.Store(true)
	d.startedAt.Store(time.Now().Unix())
	d.publish(d.ctx, notifications.EventDaemonStarted, notifications.Payload{
		"folder": d.cfg.DownloadsFolder,
	})
	d.logger.Info("dlassist daemon started",
		logging.String("lock", d.lockPath),
		logging.String(logging.FieldPath, d.cfg.DownloadsFolder),
	)
	return nil
}

// Stop drains in-flight file handling and releases the daemon lock.
func (d *Daemon) Stop() {
	if !d.running.Load() {
		return
	}

	if d.cancel != nil {
		d.cancel()
		d.cancel = nil
	}
	d.watch.Stop()
	if d.dashboard != nil {
		d.dashboard.stop()
		d.dashboard = nil
	}
	// The daemon context is gone by now, so the farewell rides its own.
	d.publish(context.Background(), notifications.EventDaemonStopped, nil)
	if err := d.lock.Unlock(); err != nil {
		d.logger.Warn("failed to release daemon lock", logging.Error(err))
	}
	d.ctx = nil
	d.running.Store(false)
	d.startedAt.Store(0)
	d.logger.Info("dlassist daemon stopped")
}

// Close releases resources held by the daemon, including a dashboard started
// without Start.
func (d *Daemon) Close() error {
	d.Stop()
	if d.dashboard != nil {
		d.dashboard.stop()
		d.dashboard = nil
	}
	if d.journal != nil {
		return d.journal.Close()
	}
	return nil
}

// Running reports whether Start has completed and Stop has not.
func (d *Daemon) Running() bool {
	return d.running.Load()
}

// StartDashboard binds the HTTP surface regardless of dashboard.enabled, so
// the standalone dashboard mode can serve with the watcher off.
func (d *Daemon) StartDashboard(ctx context.Context) error {
	if d.dashboard != nil {
		return errors.New("dashboard already running")
	}
	srv, err := newDashboardServer(d.cfg, d, d.logger)
	if err != nil {
		return err
	}
	if err := srv.start(ctx); err != nil {
		return err
	}
	d.dashboard = srv
	return nil
}

// DashboardAddr returns the bound dashboard address, or "" when it is down.
func (d *Daemon) DashboardAddr() string {
	if d.dashboard == nil {
		return ""
	}
	return d.dashboard.addr()
}

// ProcessExisting sweeps the downloads folder through the intake pipeline and
// returns the number of files dispatched. Handling runs on the daemon context
// so a disconnecting caller does not abort readiness waits.
func (d *Daemon) ProcessExisting(ctx context.Context) (int, error) {
	if d.watch == nil {
		return 0, errors.New("watcher unavailable")
	}
	run := d.ctx
	if run == nil {
		run = ctx
	}
	return d.watch.ProcessExisting(run)
}

// RecentIntakes returns the newest journal entries, most recent first.
func (d *Daemon) RecentIntakes(ctx context.Context, limit int) ([]*journal.Entry, error) {
	if d.journal == nil {
		return nil, errors.New("journal unavailable")
	}
	return d.journal.Recent(ctx, limit)
}

// QuarantineEntries lists the quarantine folder contents, newest first. An
// absent folder is an empty listing, not an error.
func (d *Daemon) QuarantineEntries(ctx context.Context) ([]api.QuarantineFile, error) {
	return ListQuarantine(d.cfg.QuarantineFolder)
}

// ListQuarantine scans a quarantine folder and returns its files, newest
// first. The CLI uses it directly when the daemon is not running.
func ListQuarantine(dir string) ([]api.QuarantineFile, error) {
	dir = strings.TrimSpace(dir)
	if dir == "" {
		return nil, nil
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("read quarantine folder: %w", err)
	}

	files := make([]api.QuarantineFile, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		files = append(files, api.QuarantineFile{
			Name:     entry.Name(),
			Path:     filepath.Join(dir, entry.Name()),
			Size:     info.Size(),
			Modified: info.ModTime().UTC(),
		})
	}
	sort.Slice(files, func(i, j int) bool {
		if files[i].Modified.Equal(files[j].Modified) {
			return files[i].Name < files[j].Name
		}
		return files[i].Modified.After(files[j].Modified)
	})
	return files, nil
}

// ConfigGet resolves a dotted configuration key.
func (d *Daemon) ConfigGet(key string) (any, error) {
	if d.store == nil {
		return nil, errors.New("config store unavailable")
	}
	return d.store.Get(key)
}

// ConfigSet updates a dotted configuration key and persists the file. Running
// components keep their startup snapshot; the change applies on next start.
func (d *Daemon) ConfigSet(key string, value any) error {
	if d.store == nil {
		return errors.New("config store unavailable")
	}
	return d.store.Set(key, value)
}

// ConfigAll returns the full configuration tree.
func (d *Daemon) ConfigAll() (map[string]any, error) {
	if d.store == nil {
		return nil, errors.New("config store unavailable")
	}
	return d.store.All()
}

// TestNotification sends a test message through the notification pipeline.
func (d *Daemon) TestNotification(ctx context.Context) (bool, string, error) {
	if d.cfg == nil {
		return false, "configuration unavailable", errors.New("configuration unavailable")
	}
	if strings.TrimSpace(d.cfg.Notifications.NtfyTopic) == "" {
		return false, "ntfy topic not configured", nil
	}
	notifier := d.notifier
	if notifier == nil {
		notifier = notifications.NewService(d.cfg)
	}
	if err := notifier.Publish(ctx, notifications.EventTest, nil); err != nil {
		return false, "failed to send notification", err
	}
	return true, "test notification sent", nil
}

// LogPath returns the path to the daemon log file.
func (d *Daemon) LogPath() string {
	return d.logPath
}

// Status returns the current daemon status.
func (d *Daemon) Status(ctx context.Context) Status {
	status := Status{
		Running:         d.running.Load(),
		PID:             os.Getpid(),
		DownloadsFolder: d.cfg.DownloadsFolder,
		JournalDBPath:   d.cfg.JournalPath(),
		LockFilePath:    d.lockPath,
		SocketPath:      d.cfg.SocketPath(),
		DashboardAddr:   d.DashboardAddr(),
		Dependencies:    deps.CheckBinaries(deps.Default()),
	}
	if unix := d.startedAt.Load(); unix > 0 {
		status.StartedAt = time.Unix(unix, 0).UTC()
	}
	if d.journal != nil {
		if totals, err := d.journal.Stats(ctx); err == nil {
			status.Intakes = totals
		} else {
			d.logger.Debug("journal stats failed", logging.Error(err))
		}
	}
	return status
}

func (d *Daemon) publish(ctx context.Context, event notifications.Event, payload notifications.Payload) {
	if d.notifier == nil {
		return
	}
	if err := d.notifier.Publish(ctx, event, payload); err != nil {
		d.logger.Debug("lifecycle notification failed", logging.Error(err))
	}
}
