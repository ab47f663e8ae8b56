package cli

import (
	"github.com/spf13/cobra"

	"github.com/andy/workbench/internal/app"
)

var appInstance *app.App

var rootCmd = &cobra.Command{
	Use:   "workbench",
	Short: "Time tracking and invoicing for a small workshop",
	Long: `Workbench tracks time against projects and 3D print jobs, prices them
with tiered rate cards and turns them into invoices.

Running workbench without arguments launches the interactive TUI.
Use subcommands for CLI operations.`,
	SilenceUsage: true,
	Run:          launchTUI,
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

// SetApp sets the app instance for commands to use
func SetApp(a *app.App) {
	appInstance = a
}

func init() {
	rootCmd.AddCommand(trackCmd)
	rootCmd.AddCommand(logsCmd)
	rootCmd.AddCommand(customersCmd)
	rootCmd.AddCommand(ratesCmd)
	rootCmd.AddCommand(projectsCmd)
	rootCmd.AddCommand(printJobsCmd)
	rootCmd.AddCommand(invoicesCmd)
	rootCmd.AddCommand(reportCmd)
	rootCmd.AddCommand(resetCmd)
	rootCmd.AddCommand(tuiCmd)
}
