package main

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"dlassist/internal/api"
	"dlassist/internal/journal"
)

// newHistoryCommand lists recent intake outcomes from the journal. It asks
// the daemon first and falls back to reading the journal database directly
// when the daemon is down.
func newHistoryCommand(ctx *commandContext) *cobra.Command {
	var limit int
	var jsonOut bool
	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show recent intake history",
		RunE: func(cmd *cobra.Command, args []string) error {
			records, err := fetchHistory(ctx, cmd, limit)
			if err != nil {
				return err
			}

			if jsonOut {
				return writeJSON(cmd, api.HistoryResponse{Entries: records})
			}

			stdout := cmd.OutOrStdout()
			if len(records) == 0 {
				fmt.Fprintln(stdout, "No intakes recorded")
				return nil
			}

			rows := make([][]string, 0, len(records))
			for _, record := range records {
				detail := record.FinalPath
				if detail == "" {
					detail = record.ErrorMessage
				}
				rows = append(rows, []string{
					record.StartedAt.Local().Format("2006-01-02 15:04:05"),
					record.Action,
					record.Category,
					filepath.Base(record.SourcePath),
					detail,
				})
			}
			fmt.Fprintln(stdout, renderTable(
				[]string{"When", "Action", "Category", "File", "Detail"},
				rows,
				[]columnAlignment{alignLeft, alignLeft, alignLeft, alignLeft, alignLeft},
			))
			return nil
		},
	}
	cmd.Flags().IntVar(&limit, "limit", 20, "Maximum number of entries to show")
	cmd.Flags().BoolVar(&jsonOut, "json", false, "Emit history as JSON")
	return cmd
}

func fetchHistory(ctx *commandContext, cmd *cobra.Command, limit int) ([]api.IntakeRecord, error) {
	client, dialErr := ctx.dialClient()
	if dialErr == nil {
		defer client.Close()
		resp, err := client.RecentIntakes(limit)
		if err != nil {
			return nil, err
		}
		return resp.Entries, nil
	}

	// Daemon down: read the journal database directly.
	cfg, err := ctx.ensureConfig()
	if err != nil {
		return nil, err
	}
	store, err := journal.Open(cfg)
	if err != nil {
		return nil, fmt.Errorf("open journal: %w", err)
	}
	defer store.Close()
	entries, err := store.Recent(cmd.Context(), limit)
	if err != nil {
		return nil, err
	}
	return api.FromJournalEntries(entries), nil
}
