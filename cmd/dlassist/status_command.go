package main

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"dlassist/internal/daemonctl"
	"dlassist/internal/ipc"
	"dlassist/internal/preflight"
)

func newStatusCommand(ctx *commandContext) *cobra.Command {
	var jsonOut bool
	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show daemon and pipeline status",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runStatus(cmd, ctx, jsonOut)
		},
	}
	cmd.Flags().BoolVar(&jsonOut, "json", false, "Emit status as JSON")
	return cmd
}

func runStatus(cmd *cobra.Command, ctx *commandContext, jsonOut bool) error {
	cfg := ctx.configValue()
	snapshot, err := daemonctl.BuildStatusSnapshot(cmd.Context(), ctx.socketPath(), cfg)
	if err != nil {
		return err
	}

	if jsonOut {
		return writeJSON(cmd, snapshot)
	}

	stdout := cmd.OutOrStdout()
	colorize := shouldColorize(stdout)

	for _, line := range renderSectionHeader("Daemon", colorize) {
		fmt.Fprintln(stdout, line)
	}
	if snapshot.Running {
		fmt.Fprintln(stdout, renderStatusLine("Running", statusOK, fmt.Sprintf("pid %d", snapshot.PID), colorize))
		if !snapshot.StartedAt.IsZero() {
			fmt.Fprintln(stdout, renderStatusLine("Started", statusInfo, snapshot.StartedAt.Format("2006-01-02 15:04:05 MST"), colorize))
		}
		if snapshot.DashboardAddr != "" {
			fmt.Fprintln(stdout, renderStatusLine("Dashboard", statusInfo, snapshot.DashboardAddr, colorize))
		}
	} else {
		fmt.Fprintln(stdout, renderStatusLine("Running", statusWarn, "daemon is not running", colorize))
	}
	fmt.Fprintln(stdout)

	for _, line := range renderSectionHeader("Paths", colorize) {
		fmt.Fprintln(stdout, line)
	}
	fmt.Fprintln(stdout, renderStatusLine("Downloads", statusInfo, snapshot.DownloadsFolder, colorize))
	fmt.Fprintln(stdout, renderStatusLine("Journal", statusInfo, snapshot.JournalDBPath, colorize))
	fmt.Fprintln(stdout, renderStatusLine("Socket", statusInfo, snapshot.SocketPath, colorize))
	fmt.Fprintln(stdout)

	for _, line := range renderSectionHeader("Checks", colorize) {
		fmt.Fprintln(stdout, line)
	}
	for _, result := range preflight.RunAll(cmd.Context(), cfg) {
		kind := statusOK
		if !result.Passed {
			kind = statusWarn
		}
		fmt.Fprintln(stdout, renderStatusLine(result.Name, kind, result.Detail, colorize))
	}
	fmt.Fprintln(stdout)

	for _, line := range renderSectionHeader("Dependencies", colorize) {
		fmt.Fprintln(stdout, line)
	}
	for _, line := range dependencyLines(snapshot.Dependencies, colorize) {
		fmt.Fprintln(stdout, line)
	}
	fmt.Fprintln(stdout)

	for _, line := range renderSectionHeader("Intakes", colorize) {
		fmt.Fprintln(stdout, line)
	}
	rows := buildIntakeRows(snapshot.Intakes)
	if len(rows) == 0 {
		fmt.Fprintln(stdout, "No intakes recorded")
		return nil
	}
	fmt.Fprintln(stdout, renderTable([]string{"Action", "Count"}, rows, []columnAlignment{alignLeft, alignRight}))
	return nil
}

func dependencyLines(deps []ipc.DependencyStatus, colorize bool) []string {
	lines := make([]string, 0, len(deps))
	for _, dep := range deps {
		if dep.Available {
			message := "Ready"
			if dep.Command != "" {
				message = fmt.Sprintf("Ready (command: %s)", dep.Command)
			}
			lines = append(lines, renderStatusLine(dep.Name, statusOK, message, colorize))
			continue
		}
		detail := dep.Detail
		if detail == "" {
			detail = "not available"
		}
		kind := statusError
		if dep.Optional {
			kind = statusWarn
		}
		lines = append(lines, renderStatusLine(dep.Name, kind, detail, colorize))
	}
	return lines
}

func buildIntakeRows(totals map[string]int) [][]string {
	actions := make([]string, 0, len(totals))
	for action, count := range totals {
		if count > 0 {
			actions = append(actions, action)
		}
	}
	sort.Strings(actions)
	rows := make([][]string, 0, len(actions))
	for _, action := range actions {
		rows = append(rows, []string{action, fmt.Sprintf("%d", totals[action])})
	}
	return rows
}
