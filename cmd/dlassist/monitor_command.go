package main

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"dlassist/internal/intake"
	"dlassist/internal/journal"
	"dlassist/internal/logging"
	"dlassist/internal/notifications"
	"dlassist/internal/watcher"
)

// newMonitorCommand runs the intake pipeline in the foreground: watch the
// downloads folder, sweep files that arrived before startup, and keep going
// until interrupted. Unlike `daemon run` it serves no IPC or dashboard.
func newMonitorCommand(ctx *commandContext) *cobra.Command {
	var skipExisting bool
	cmd := &cobra.Command{
		Use:   "monitor",
		Short: "Watch the downloads folder in the foreground",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}

			signalCtx, cancel := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer cancel()

			logger, err := logging.NewFromConfig(cfg)
			if err != nil {
				return fmt.Errorf("init logger: %w", err)
			}

			journalStore, err := journal.Open(cfg)
			if err != nil {
				return fmt.Errorf("open journal: %w", err)
			}
			defer journalStore.Close()

			notifier := notifications.NewService(cfg)
			controller := intake.New(cfg, intake.NewMetadataSource(cfg, logger), intake.MultiNotifier(
				journal.NewRecorder(journalStore, logger),
				notifications.NewNotifier(notifier, logger),
			), logger)

			watch := watcher.New(cfg, func(handleCtx context.Context, path string) {
				controller.Process(handleCtx, path)
			}, logger)

			if err := watch.Start(signalCtx); err != nil {
				return err
			}

			if !skipExisting {
				if _, err := watch.ProcessExisting(signalCtx); err != nil {
					logger.Warn("process existing files", logging.Error(err))
				}
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Watching %s (press Ctrl+C to stop)\n", cfg.DownloadsFolder)
			<-signalCtx.Done()
			watch.Stop()
			logger.Info("monitor stopped")
			return nil
		},
	}
	cmd.Flags().BoolVar(&skipExisting, "skip-existing", false, "Do not sweep files already present at startup")
	return cmd
}
