package cli

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"slices"
	"strings"

	"github.com/spf13/cobra"
)

var resetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Reset data in the database",
	Long: `Reset data in the database.

Examples:
  workbench reset logs       # Delete all time logs
  workbench reset invoices   # Delete all invoices
  workbench reset all        # Wipe everything except users`,
}

var resetLogsCmd = &cobra.Command{
	Use:   "logs",
	Short: "Delete all time logs",
	RunE: func(cmd *cobra.Command, args []string) error {
		return resetTables("This will delete ALL time logs. Continue?",
			"All time logs have been deleted.",
			"time_logs",
		)
	},
}

var resetInvoicesCmd = &cobra.Command{
	Use:   "invoices",
	Short: "Delete all invoices",
	RunE: func(cmd *cobra.Command, args []string) error {
		return resetTables("This will delete ALL invoices. Continue?",
			"All invoices have been deleted.",
			"invoice_line_items", "invoices",
		)
	},
}

var resetAllCmd = &cobra.Command{
	Use:   "all",
	Short: "Delete ALL data: customers, projects, print jobs, logs, invoices",
	RunE: func(cmd *cobra.Command, args []string) error {
		// children before parents for the foreign keys
		return resetTables("This will delete ALL data. Continue?",
			"All data has been deleted.",
			"invoice_line_items",
			"invoices",
			"time_logs",
			"print_jobs",
			"projects",
			"rate_cards",
			"customers",
		)
	},
}

// resetTables clears the tables in order inside one transaction
func resetTables(question, done string, tables ...string) error {
	if !confirmPrompt(question) {
		fmt.Println("Cancelled.")
		return nil
	}

	ctx := context.Background()
	tx, err := appInstance.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if slices.Contains(tables, "projects") {
		if _, err := tx.ExecContext(ctx, "UPDATE projects SET parent_id = NULL"); err != nil {
			return fmt.Errorf("failed to detach sub-projects: %w", err)
		}
	}

	for _, table := range tables {
		if _, err := tx.ExecContext(ctx, fmt.Sprintf("DELETE FROM %s", table)); err != nil {
			return fmt.Errorf("failed to clear %s: %w", table, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit reset: %w", err)
	}

	appInstance.Logger.Sugar().Infow("data reset", "tables", tables)
	fmt.Println(done)
	return nil
}

func confirmPrompt(message string) bool {
	fmt.Printf("%s [y/N] ", message)
	reader := bufio.NewReader(os.Stdin)
	input, err := reader.ReadString('\n')
	if err != nil {
		return false
	}
	input = strings.TrimSpace(strings.ToLower(input))
	return input == "y" || input == "yes"
}

func init() {
	resetCmd.AddCommand(resetLogsCmd)
	resetCmd.AddCommand(resetInvoicesCmd)
	resetCmd.AddCommand(resetAllCmd)
}
