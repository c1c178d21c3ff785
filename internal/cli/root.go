// Package cli implements the nightscout-panel command line
package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/mrcode/nightscout-panel/internal/logging"
	"github.com/mrcode/nightscout-panel/internal/models"
)

var (
	configPath string
	logLevel   string
)

var rootCmd = &cobra.Command{
	Use:   "nightscout-panel",
	Short: "Show the latest Nightscout glucose reading",
	Long: `nightscout-panel polls a Nightscout site for the latest sensor glucose
value and device status and shows it as a short label with a tooltip on
the terminal, a local web page, an MQTT topic, the system tray or desktop
notifications.`,
	SilenceUsage: true,
}

// Execute runs the root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Settings file (default is settings.json in the user config directory)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log level: debug|info|warn|error (overrides logLevel)")

	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(onceCmd)
	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(autostartCmd)
	rootCmd.AddCommand(notifyCmd)
	rootCmd.AddCommand(versionCmd)
}

// loadSettings reads the settings file and environment
func loadSettings() (*models.Settings, error) {
	settings := models.DefaultSettings()
	if err := settings.Load(configPath); err != nil {
		return nil, fmt.Errorf("failed to load settings: %w", err)
	}
	return settings, nil
}

// newLogger builds the logger for settings, honouring --log-level
func newLogger(settings *models.Settings) (*zap.Logger, error) {
	snapshot := settings.Clone()

	level := snapshot.LogLevel
	if logLevel != "" {
		level = logLevel
	}

	logger, err := logging.New(level, snapshot.LogFormat)
	if err != nil {
		return nil, fmt.Errorf("failed to create logger: %w", err)
	}
	return logger, nil
}
