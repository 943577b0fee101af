package daemonrun

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"

	"dlassist/internal/config"
	"dlassist/internal/daemon"
	"dlassist/internal/deps"
	"dlassist/internal/intake"
	"dlassist/internal/ipc"
	"dlassist/internal/journal"
	"dlassist/internal/logging"
	"dlassist/internal/notifications"
	"dlassist/internal/preflight"
	"dlassist/internal/watcher"
)

// Options configures daemon process runtime behavior.
type Options struct {
	ConfigPath  string
	LogLevel    string
	Development bool
}

// Run starts the dlassist daemon runtime loop: watcher, intake pipeline,
// journal, IPC server, and the dashboard when enabled. It blocks until the
// context is canceled or a SIGINT/SIGTERM arrives.
func Run(cmdCtx context.Context, cfg *config.Config, opts Options) error {
	if cfg == nil {
		return fmt.Errorf("config is required")
	}

	signalCtx, cancel := signal.NotifyContext(cmdCtx, syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := cfg.EnsureDirectories(); err != nil {
		return fmt.Errorf("prepare directories: %w", err)
	}

	logPath := cfg.LogFilePath()
	logger, err := logging.New(logging.Options{
		Level:            resolveLevel(opts.LogLevel, cfg),
		Format:           cfg.Logging.Format,
		OutputPaths:      []string{"stdout", logPath},
		ErrorOutputPaths: []string{"stderr", logPath},
		Development:      opts.Development,
	})
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}

	logDependencySnapshot(logger, cfg)

	pidPath := cfg.PidPath()
	if err := writePIDFile(pidPath); err != nil {
		return fmt.Errorf("write pid file: %w", err)
	}
	defer os.Remove(pidPath)

	journalStore, err := journal.Open(cfg)
	if err != nil {
		logger.Error("open journal", logging.Error(err))
		return err
	}
	defer journalStore.Close()

	configStore := config.NewStore(cfg, configPath(opts))
	notifier := notifications.NewService(cfg)
	meta := intake.NewMetadataSource(cfg, logger)
	controller := intake.New(cfg, meta, intake.MultiNotifier(
		journal.NewRecorder(journalStore, logger),
		notifications.NewNotifier(notifier, logger),
	), logger)
	watch := watcher.New(cfg, func(ctx context.Context, path string) {
		controller.Process(ctx, path)
	}, logger)

	d, err := daemon.New(cfg, configStore, journalStore, watch, notifier, logger)
	if err != nil {
		return fmt.Errorf("create daemon: %w", err)
	}
	defer d.Close()

	ipcServer, err := ipc.NewServer(signalCtx, cfg.SocketPath(), d, logger)
	if err != nil {
		return fmt.Errorf("start IPC server: %w", err)
	}
	defer ipcServer.Close()
	ipcServer.Serve()

	if err := d.Start(signalCtx); err != nil {
		logger.Warn("daemon start failed",
			logging.Error(err),
			logging.String(logging.FieldEventType, "daemon_start_failed"),
			logging.String(logging.FieldErrorHint, "check downloads folder access and any other running instance"),
			logging.String(logging.FieldImpact, "daemon will not sort incoming files"),
		)
	}

	go logPreflight(signalCtx, logger, cfg)

	<-signalCtx.Done()
	logger.Info("dlassist daemon shutting down")
	return nil
}

// RunDashboard serves the administrative HTTP surface without watching the
// downloads folder, for use alongside or instead of the daemon.
func RunDashboard(cmdCtx context.Context, cfg *config.Config, opts Options) error {
	if cfg == nil {
		return fmt.Errorf("config is required")
	}

	signalCtx, cancel := signal.NotifyContext(cmdCtx, syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := cfg.EnsureDirectories(); err != nil {
		return fmt.Errorf("prepare directories: %w", err)
	}

	logger, err := logging.New(logging.Options{
		Level:       resolveLevel(opts.LogLevel, cfg),
		Format:      cfg.Logging.Format,
		Development: opts.Development,
	})
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}

	journalStore, err := journal.Open(cfg)
	if err != nil {
		logger.Error("open journal", logging.Error(err))
		return err
	}
	defer journalStore.Close()

	configStore := config.NewStore(cfg, configPath(opts))
	d, err := daemon.New(cfg, configStore, journalStore, nil, notifications.NewService(cfg), logger)
	if err != nil {
		return fmt.Errorf("create daemon: %w", err)
	}
	defer d.Close()

	if err := d.StartDashboard(signalCtx); err != nil {
		return err
	}
	logger.Info("dashboard running", logging.String("address", d.DashboardAddr()))

	<-signalCtx.Done()
	logger.Info("dashboard shutting down")
	return nil
}

func configPath(opts Options) string {
	if path := strings.TrimSpace(opts.ConfigPath); path != "" {
		return path
	}
	if path, err := config.DefaultConfigPath(); err == nil {
		return path
	}
	return "dlassist.toml"
}

func resolveLevel(level string, cfg *config.Config) string {
	if strings.TrimSpace(level) != "" {
		return level
	}
	return cfg.Logging.Level
}

func writePIDFile(path string) error {
	if path == "" {
		return nil
	}
	value := strconv.Itoa(os.Getpid()) + "\n"
	return os.WriteFile(path, []byte(value), 0o644)
}

// logPreflight reports failed readiness checks so a bad destination shows up
// in the log instead of as a string of quarantined files. It runs in the
// background because the vision check may block on a slow endpoint.
func logPreflight(ctx context.Context, logger *slog.Logger, cfg *config.Config) {
	for _, result := range preflight.RunAll(ctx, cfg) {
		if result.Passed {
			continue
		}
		logger.Warn("preflight check failed",
			logging.String(logging.FieldEventType, "preflight_failed"),
			logging.String("check", result.Name),
			logging.String("detail", result.Detail),
		)
	}
}

func logDependencySnapshot(logger *slog.Logger, cfg *config.Config) {
	if logger == nil || cfg == nil {
		return
	}
	attrs := []logging.Attr{
		logging.String(logging.FieldEventType, "dependency_snapshot"),
		logging.Bool("ntfy_topic_present", strings.TrimSpace(cfg.Notifications.NtfyTopic) != ""),
		logging.Bool("vision_enabled", cfg.Vision.Enabled),
		logging.Bool("vision_key_present", strings.TrimSpace(cfg.Vision.APIKey) != ""),
		logging.Bool("dashboard_enabled", cfg.Dashboard.Enabled),
	}
	for _, status := range deps.CheckBinaries(deps.Default()) {
		attrs = append(attrs,
			logging.Bool(strings.ToLower(status.Name)+"_available", status.Available),
			logging.String(strings.ToLower(status.Name)+"_binary", status.Command),
		)
	}
	logger.Info("dependency snapshot", logging.Args(attrs...)...)
}
