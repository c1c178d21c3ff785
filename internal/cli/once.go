package cli

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/mrcode/nightscout-panel/internal/app"
	"github.com/mrcode/nightscout-panel/internal/nightscout"
	"github.com/mrcode/nightscout-panel/internal/panel"
)

var onceJSON bool

var onceCmd = &cobra.Command{
	Use:   "once",
	Short: "Fetch and print the display once",
	Long:  `Runs a single refresh cycle and prints the label and tooltip. Exits non-zero if either fetch fails.`,
	RunE:  runOnce,
}

func init() {
	onceCmd.Flags().BoolVar(&onceJSON, "json", false, "Print the display state as JSON")
}

func runOnce(cmd *cobra.Command, _ []string) error {
	settings, err := loadSettings()
	if err != nil {
		return err
	}

	logger, err := newLogger(settings)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	timeout := time.Duration(settings.Clone().RequestTimeout) * time.Second
	client := nightscout.NewClient(nightscout.NewRestyDoer(timeout))

	// Output goes through Display, no surface needed
	service := app.NewRefreshService(settings, client, panel.Multi{}, logger)
	defer service.Stop()

	if err := service.RunCycle(cmd.Context()); err != nil {
		return err
	}

	state := service.Display()
	out := cmd.OutOrStdout()

	if onceJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(state)
	}

	fmt.Fprintln(out, state.Label)
	if state.Tooltip != "" {
		fmt.Fprintln(out, state.Tooltip)
	}
	return nil
}
