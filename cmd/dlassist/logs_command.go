package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"dlassist/internal/logs"
)

// newLogsCommand tails the daemon's JSON log file.
func newLogsCommand(ctx *commandContext) *cobra.Command {
	var lines int
	var follow bool
	cmd := &cobra.Command{
		Use:   "logs",
		Short: "Show recent daemon log lines",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}

			logPath := cfg.LogFilePath()
			stdout := cmd.OutOrStdout()

			result, err := logs.Tail(cmd.Context(), logPath, logs.TailOptions{
				Offset: -1,
				Limit:  lines,
			})
			if err != nil {
				return err
			}
			for _, line := range result.Lines {
				fmt.Fprintln(stdout, line)
			}
			if !follow {
				return nil
			}

			offset := result.Offset
			for {
				result, err := logs.Tail(cmd.Context(), logPath, logs.TailOptions{
					Offset: offset,
					Follow: true,
					Wait:   2 * time.Second,
				})
				if err != nil {
					if cmd.Context().Err() != nil {
						return nil
					}
					return err
				}
				for _, line := range result.Lines {
					fmt.Fprintln(stdout, line)
				}
				offset = result.Offset
				select {
				case <-cmd.Context().Done():
					return nil
				default:
				}
			}
		},
	}
	cmd.Flags().IntVar(&lines, "lines", 50, "Number of trailing lines to print")
	cmd.Flags().BoolVar(&follow, "follow", false, "Keep printing new lines as they arrive")
	return cmd
}
