package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/andy/workbench/internal/domain"
	"github.com/andy/workbench/internal/pricing"
	"github.com/andy/workbench/internal/repository"
	"github.com/andy/workbench/internal/tracking"
	"github.com/spf13/cobra"
)

var logsCmd = &cobra.Command{
	Use:   "logs",
	Short: "Manage time logs",
	Long:  `List, add, annotate, and delete time logs.`,
}

var logsListCmd = &cobra.Command{
	Use:   "list [project|job] [id]",
	Short: "List time logs, optionally for one subject",
	Args:  cobra.RangeArgs(0, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()

		var filter repository.TimeLogFilter
		if len(args) == 1 {
			return fmt.Errorf("give both a subject kind and an ID")
		}
		if len(args) == 2 {
			subject, err := parseSubject(args[0], args[1])
			if err != nil {
				return err
			}
			filter.Subject = &subject
		}

		if cmd.Flags().Changed("from") {
			s, _ := cmd.Flags().GetString("from")
			t, err := parseDate(s)
			if err != nil {
				return fmt.Errorf("invalid from date: %w", err)
			}
			filter.StartedFrom = &t
		}
		if cmd.Flags().Changed("to") {
			s, _ := cmd.Flags().GetString("to")
			t, err := parseDate(s)
			if err != nil {
				return fmt.Errorf("invalid to date: %w", err)
			}
			// inclusive of the whole day
			end := t.AddDate(0, 0, 1)
			filter.StartedBefore = &end
		}
		if mine, _ := cmd.Flags().GetBool("mine"); mine {
			filter.UserID = &appInstance.User.ID
		}
		filter.OpenOnly, _ = cmd.Flags().GetBool("open")

		logs, err := appInstance.TimeLogRepo.List(ctx, filter)
		if err != nil {
			return fmt.Errorf("failed to list time logs: %w", err)
		}

		if len(logs) == 0 {
			fmt.Println("No time logs found")
			return nil
		}

		now := time.Now()
		fmt.Printf("%-6s %-26s %-17s %-8s %-8s %s\n", "ID", "Subject", "Started", "Elapsed", "Status", "Note")
		fmt.Println("--------------------------------------------------------------------------------")

		for _, log := range logs {
			status := "done"
			if log.IsOpen() {
				status = "running"
			}
			fmt.Printf("%-6d %-26s %-17s %-8s %-8s %s\n",
				log.ID,
				truncate(subjectName(ctx, log.Subject()), 26),
				log.StartTime.Format("2006-01-02 15:04"),
				tracking.FormatElapsed(domain.Elapsed(log, now)),
				status,
				truncate(log.Note, 30),
			)
		}

		fmt.Println("--------------------------------------------------------------------------------")
		fmt.Printf("Total: %d log(s), %s finished\n", len(logs), pricing.FormatDurationHuman(pricing.TotalDuration(logs)))
		return nil
	},
}

var logsAddCmd = &cobra.Command{
	Use:   "add [project|job] [id] [start] [end]",
	Short: "Add a finished time log by hand",
	Long: `Add a finished time log. Times are "YYYY-MM-DD HH:MM" in local time.

  workbench logs add project 3 "2024-05-02 09:00" "2024-05-02 12:30"`,
	Args: cobra.ExactArgs(4),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()

		subject, err := parseSubject(args[0], args[1])
		if err != nil {
			return err
		}

		start, err := time.ParseInLocation("2006-01-02 15:04", args[2], time.Local)
		if err != nil {
			return fmt.Errorf("invalid start time: %w", err)
		}
		end, err := time.ParseInLocation("2006-01-02 15:04", args[3], time.Local)
		if err != nil {
			return fmt.Errorf("invalid end time: %w", err)
		}

		log := domain.NewTimeLog(subject, appInstance.User.ID, start)
		log.Close(end)
		log.Note, _ = cmd.Flags().GetString("note")

		if err := log.Validate(); err != nil {
			return fmt.Errorf("invalid time log: %w", err)
		}

		if err := appInstance.TimeLogRepo.Create(ctx, log); err != nil {
			return fmt.Errorf("failed to create time log: %w", err)
		}

		fmt.Printf("✓ Time log created (ID: %d)\n", log.ID)
		fmt.Printf("  %s: %s\n", subjectName(ctx, subject), pricing.FormatDurationHuman(end.Sub(start)))
		return nil
	},
}

var logsNoteCmd = &cobra.Command{
	Use:   "note [id] [text]",
	Short: "Set the note of a time log",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID(args[0], "time log")
		if err != nil {
			return err
		}

		if err := appInstance.TimeLogRepo.UpdateNote(context.Background(), id, args[1]); err != nil {
			return fmt.Errorf("failed to update note: %w", err)
		}

		fmt.Printf("✓ Note saved on log %d\n", id)
		return nil
	},
}

var logsDeleteCmd = &cobra.Command{
	Use:   "delete [id]",
	Short: "Delete a time log",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID(args[0], "time log")
		if err != nil {
			return err
		}

		if !confirmPrompt(fmt.Sprintf("Delete time log %d?", id)) {
			fmt.Println("Cancelled.")
			return nil
		}

		if err := appInstance.TimeLogRepo.Delete(context.Background(), id); err != nil {
			return fmt.Errorf("failed to delete time log: %w", err)
		}

		fmt.Printf("✓ Time log deleted (ID: %d)\n", id)
		return nil
	},
}

func init() {
	logsCmd.AddCommand(logsListCmd)
	logsCmd.AddCommand(logsAddCmd)
	logsCmd.AddCommand(logsNoteCmd)
	logsCmd.AddCommand(logsDeleteCmd)

	logsListCmd.Flags().String("from", "", "Started on or after (YYYY-MM-DD or 'today')")
	logsListCmd.Flags().String("to", "", "Started on or before (YYYY-MM-DD or 'today')")
	logsListCmd.Flags().Bool("open", false, "Only running logs")
	logsListCmd.Flags().Bool("mine", false, "Only your own logs")

	logsAddCmd.Flags().String("note", "", "Note for the log")
}
