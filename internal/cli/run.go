package cli

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Refresh the display on an interval until interrupted",
	Long: `Starts the refresh loop and renders to every surface listed in the
"surfaces" setting (terminal, web, mqtt, tray, notifications). The settings
file is watched and changes apply from the next refresh.`,
	RunE: runRun,
}

func runRun(cmd *cobra.Command, _ []string) error {
	settings, err := loadSettings()
	if err != nil {
		return err
	}

	logger, err := newLogger(settings)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	r, err := newRunner(settings, logger)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger.Info("Starting",
		zap.String("version", Version),
		zap.Strings("surfaces", settings.Clone().Surfaces),
		zap.Duration("interval", settings.RefreshDuration()),
	)

	return r.Run(ctx)
}
