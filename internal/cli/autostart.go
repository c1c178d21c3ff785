package cli

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/mrcode/nightscout-panel/internal/autostart"
)

var autostartCmd = &cobra.Command{
	Use:   "autostart",
	Short: "Start the panel at login",
}

var autostartEnableCmd = &cobra.Command{
	Use:   "enable",
	Short: "Run \"nightscout-panel run\" at login",
	RunE: func(cmd *cobra.Command, _ []string) error {
		args := []string{"run"}
		if configPath != "" {
			abs, err := filepath.Abs(configPath)
			if err != nil {
				return err
			}
			args = append(args, "--config", abs)
		}

		entry, err := autostart.NewEntry(args...)
		if err != nil {
			return err
		}
		if err := autostart.Enable(entry); err != nil {
			return fmt.Errorf("failed to enable autostart: %w", err)
		}

		fmt.Fprintln(cmd.OutOrStdout(), "Autostart enabled")
		return nil
	},
}

var autostartDisableCmd = &cobra.Command{
	Use:   "disable",
	Short: "Stop starting the panel at login",
	RunE: func(cmd *cobra.Command, _ []string) error {
		if err := autostart.Disable(); err != nil {
			return fmt.Errorf("failed to disable autostart: %w", err)
		}

		fmt.Fprintln(cmd.OutOrStdout(), "Autostart disabled")
		return nil
	},
}

var autostartStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Report whether autostart is enabled",
	RunE: func(cmd *cobra.Command, _ []string) error {
		enabled, err := autostart.IsEnabled()
		if err != nil {
			return err
		}

		status := "disabled"
		if enabled {
			status = "enabled"
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Autostart %s\n", status)
		return nil
	},
}

func init() {
	autostartCmd.AddCommand(autostartEnableCmd)
	autostartCmd.AddCommand(autostartDisableCmd)
	autostartCmd.AddCommand(autostartStatusCmd)
}
