package cli

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
)

type options struct {
	configPath string
	dbPath     string
	now        func() time.Time
}

// NewRootCmd builds the dayplan command tree. The bare command opens the
// timeline TUI.
func NewRootCmd(version string) *cobra.Command {
	return newRootCmd(version, &options{now: time.Now})
}

func newRootCmd(version string, opts *options) *cobra.Command {
	root := &cobra.Command{
		Use:   "dayplan",
		Short: "Daily routine timeline with alarms",
		Long: `dayplan lays your recurring routines out on a daily timeline, shows the
free time between them and rings an alarm when a block is about to start.

Run without a subcommand to open the interactive timeline.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runTUI(cmd, opts)
		},
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.PersistentFlags().StringVar(&opts.configPath, "config", "", "config file (default ~/.dayplan/config.yaml)")
	root.PersistentFlags().StringVar(&opts.dbPath, "db", "", "SQLite database path (overrides config and DAYPLAN_DB_PATH)")

	root.AddCommand(newDayCmd(opts))
	root.AddCommand(newAlarmsCmd(opts))
	root.AddCommand(newListCmd(opts))
	root.AddCommand(newAddCmd(opts))
	root.AddCommand(newRemoveCmd(opts))
	root.AddCommand(newOccurrencesCmd(opts))
	root.AddCommand(newExportCmd(opts))
	root.AddCommand(newImportCmd(opts))
	root.AddCommand(newResetCmd(opts))
	return root
}

// Execute runs the root command and prints any error to stderr.
func Execute(version string) error {
	if err := NewRootCmd(version).Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		return err
	}
	return nil
}
