package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"dlassist/internal/ipc"
	"dlassist/internal/notifications"
)

// newTestNotifyCommand sends a test push notification, through the daemon when
// it is up and directly from this process otherwise.
func newTestNotifyCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "test-notify",
		Short: "Send a test notification",
		RunE: func(cmd *cobra.Command, args []string) error {
			client, dialErr := ctx.dialClient()
			if dialErr == nil {
				defer client.Close()
				return testNotifyViaDaemon(cmd, client)
			}

			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			if strings.TrimSpace(cfg.Notifications.NtfyTopic) == "" {
				fmt.Fprintln(cmd.OutOrStdout(), "ntfy topic not configured")
				return nil
			}
			service := notifications.NewService(cfg)
			if err := service.Publish(cmd.Context(), notifications.EventTest, nil); err != nil {
				return fmt.Errorf("send test notification: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Test notification sent")
			return nil
		},
	}
}

func testNotifyViaDaemon(cmd *cobra.Command, client *ipc.Client) error {
	resp, err := client.TestNotification()
	if err != nil {
		return err
	}
	if resp == nil {
		return errors.New("missing notification response")
	}
	switch {
	case resp.Message != "":
		fmt.Fprintln(cmd.OutOrStdout(), resp.Message)
	case resp.Sent:
		fmt.Fprintln(cmd.OutOrStdout(), "Test notification sent")
	default:
		fmt.Fprintln(cmd.OutOrStdout(), "Notification not sent")
	}
	return nil
}
