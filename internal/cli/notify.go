package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mrcode/nightscout-panel/internal/notifications"
)

var notifyCmd = &cobra.Command{
	Use:   "notify",
	Short: "Desktop notification helpers",
}

var notifyTestCmd = &cobra.Command{
	Use:   "test",
	Short: "Send a test desktop notification",
	RunE: func(cmd *cobra.Command, _ []string) error {
		settings, err := loadSettings()
		if err != nil {
			return err
		}
		logger, err := newLogger(settings)
		if err != nil {
			return err
		}
		defer func() { _ = logger.Sync() }()

		manager := notifications.NewManager(settings, logger)
		if err := manager.SendTestNotification(); err != nil {
			return fmt.Errorf("failed to send notification: %w", err)
		}

		fmt.Fprintln(cmd.OutOrStdout(), "Test notification sent")
		return nil
	},
}

func init() {
	notifyCmd.AddCommand(notifyTestCmd)
}
