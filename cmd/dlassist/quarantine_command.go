package main

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"dlassist/internal/api"
)

// newQuarantineCommand lists files parked in the quarantine folder. The
// listing goes through the daemon when it is up so the output matches the
// dashboard; otherwise the folder is read directly.
func newQuarantineCommand(ctx *commandContext) *cobra.Command {
	quarantineCmd := &cobra.Command{
		Use:   "quarantine",
		Short: "Inspect quarantined files",
	}

	var jsonOut bool
	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List files in the quarantine folder",
		RunE: func(cmd *cobra.Command, args []string) error {
			files, err := fetchQuarantine(ctx)
			if err != nil {
				return err
			}

			if jsonOut {
				return writeJSON(cmd, api.QuarantineListResponse{Files: files})
			}

			stdout := cmd.OutOrStdout()
			if len(files) == 0 {
				fmt.Fprintln(stdout, "Quarantine is empty")
				return nil
			}

			rows := make([][]string, 0, len(files))
			for _, file := range files {
				rows = append(rows, []string{
					file.Name,
					formatBytes(file.Size),
					file.Modified.Local().Format("2006-01-02 15:04:05"),
				})
			}
			fmt.Fprintln(stdout, renderTable(
				[]string{"File", "Size", "Modified"},
				rows,
				[]columnAlignment{alignLeft, alignRight, alignLeft},
			))
			return nil
		},
	}
	listCmd.Flags().BoolVar(&jsonOut, "json", false, "Emit listing as JSON")

	quarantineCmd.AddCommand(listCmd)
	return quarantineCmd
}

func fetchQuarantine(ctx *commandContext) ([]api.QuarantineFile, error) {
	client, dialErr := ctx.dialClient()
	if dialErr == nil {
		defer client.Close()
		resp, err := client.QuarantineEntries()
		if err != nil {
			return nil, err
		}
		return resp.Files, nil
	}

	cfg, err := ctx.ensureConfig()
	if err != nil {
		return nil, err
	}
	return listQuarantineFolder(cfg.QuarantineFolder)
}

func listQuarantineFolder(dir string) ([]api.QuarantineFile, error) {
	if strings.TrimSpace(dir) == "" {
		return nil, nil
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
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
	sort.Slice(files, func(i, j int) bool { return files[i].Modified.After(files[j].Modified) })
	return files, nil
}
