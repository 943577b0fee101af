package main

import (
	"github.com/spf13/cobra"

	"dlassist/internal/daemonrun"
)

// newDashboardCommand serves the administrative HTTP surface without watching
// the downloads folder, for configuration edits and quarantine review.
func newDashboardCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "dashboard",
		Short: "Serve the configuration dashboard without watching",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			return daemonrun.RunDashboard(cmd.Context(), cfg, daemonrun.Options{
				ConfigPath: configFlagValue(ctx),
			})
		},
	}
}
