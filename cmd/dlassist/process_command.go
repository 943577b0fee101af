package main

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/spf13/cobra"

	"dlassist/internal/intake"
	"dlassist/internal/logging"
	"dlassist/internal/watcher"
)

// newProcessCommand runs one sweep over the downloads folder and reports what
// happened to each file. It reuses the watcher's filtering and readiness path
// so the one-shot mode behaves exactly like live events.
func newProcessCommand(ctx *commandContext) *cobra.Command {
	var jsonOut bool
	cmd := &cobra.Command{
		Use:   "process",
		Short: "Process existing files in the downloads folder once",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}

			logger := logging.NewNop()
			controller := intake.New(cfg, intake.NewMetadataSource(cfg, logger), nil, logger)

			var mu sync.Mutex
			var results []intake.Result
			watch := watcher.New(cfg, func(handleCtx context.Context, path string) {
				result := controller.Process(handleCtx, path)
				mu.Lock()
				results = append(results, result)
				mu.Unlock()
			}, logger)

			if _, err := watch.ProcessExisting(cmd.Context()); err != nil {
				return err
			}
			watch.Wait()

			sort.Slice(results, func(i, j int) bool { return results[i].Path < results[j].Path })

			if jsonOut {
				return writeJSON(cmd, results)
			}

			stdout := cmd.OutOrStdout()
			if len(results) == 0 {
				fmt.Fprintln(stdout, "No files to process")
				return nil
			}

			rows := make([][]string, 0, len(results))
			for _, result := range results {
				detail := result.FinalPath
				if detail == "" && result.Err != nil {
					detail = result.Err.Error()
				}
				rows = append(rows, []string{
					result.Path,
					result.Category,
					string(result.Action),
					detail,
				})
			}
			fmt.Fprintln(stdout, renderTable(
				[]string{"File", "Category", "Action", "Detail"},
				rows,
				[]columnAlignment{alignLeft, alignLeft, alignLeft, alignLeft},
			))
			fmt.Fprintf(stdout, "Processed %d files\n", len(results))
			return nil
		},
	}
	cmd.Flags().BoolVar(&jsonOut, "json", false, "Emit results as JSON")
	return cmd
}
