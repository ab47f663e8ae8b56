package cli

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/andy/workbench/internal/domain"
	"github.com/andy/workbench/internal/pricing"
	"github.com/andy/workbench/internal/service"
	"github.com/andy/workbench/internal/tracking"
	"github.com/spf13/cobra"
)

var trackCmd = &cobra.Command{
	Use:     "track",
	Aliases: []string{"t"},
	Short:   "Track time on projects and print jobs",
	Long: `Start and stop time logs. A subject is given as a kind and an ID:

  workbench track start project 3
  workbench track start job 7
  workbench track stop project 3`,
}

var trackStartCmd = &cobra.Command{
	Use:   "start [project|job] [id]",
	Short: "Start a time log",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()

		subject, err := parseSubject(args[0], args[1])
		if err != nil {
			return err
		}

		log, err := appInstance.TrackerService.Start(ctx, subject, appInstance.User.ID)
		if err != nil {
			if errors.Is(err, service.ErrTimeLogAlreadyOpen) {
				return fmt.Errorf("%s is already running; stop it first", subjectName(ctx, subject))
			}
			return fmt.Errorf("failed to start time log: %w", err)
		}

		if note, _ := cmd.Flags().GetString("note"); note != "" {
			if err := appInstance.TimeLogRepo.UpdateNote(ctx, log.ID, note); err != nil {
				return fmt.Errorf("failed to save note: %w", err)
			}
		}

		fmt.Printf("✓ Started %s (log %d) at %s\n",
			subjectName(ctx, subject), log.ID, log.StartTime.Format("15:04:05"))
		return nil
	},
}

var trackStopCmd = &cobra.Command{
	Use:   "stop [project|job] [id]",
	Short: "Stop the running time log of a subject",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()

		subject, err := parseSubject(args[0], args[1])
		if err != nil {
			return err
		}

		log, err := appInstance.TrackerService.StopOpen(ctx, subject, appInstance.User.ID)
		if err != nil {
			return fmt.Errorf("failed to stop time log: %w", err)
		}

		fmt.Printf("✓ Stopped %s\n", subjectName(ctx, subject))
		fmt.Printf("  Duration: %s\n", tracking.FormatElapsed(domain.Elapsed(log, time.Now())))
		return nil
	},
}

var trackEndCmd = &cobra.Command{
	Use:   "end [log_id]",
	Short: "End a time log by ID",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()

		id, err := parseID(args[0], "time log")
		if err != nil {
			return err
		}

		log, err := appInstance.TrackerService.End(ctx, id)
		if err != nil {
			return fmt.Errorf("failed to end time log: %w", err)
		}
		if log == nil {
			fmt.Printf("Time log %d is not running\n", id)
			return nil
		}

		fmt.Printf("✓ Ended log %d on %s (%s)\n",
			log.ID, subjectName(ctx, log.Subject()), tracking.FormatElapsed(domain.Elapsed(log, time.Now())))
		return nil
	},
}

var trackStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show running time logs and today's total",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()
		now := time.Now()

		open, err := appInstance.TrackerService.ListOpen(ctx, appInstance.User.ID)
		if err != nil {
			return fmt.Errorf("failed to list running logs: %w", err)
		}

		if len(open) == 0 {
			fmt.Println("Nothing running")
		} else {
			fmt.Printf("%-6s %-30s %-10s %-8s\n", "Log", "Subject", "Started", "Elapsed")
			fmt.Println("----------------------------------------------------------")
			for _, log := range open {
				fmt.Printf("%-6d %-30s %-10s %-8s\n",
					log.ID,
					truncate(subjectName(ctx, log.Subject()), 30),
					log.StartTime.Format("15:04:05"),
					tracking.FormatElapsed(domain.Elapsed(log, now)),
				)
			}
		}

		today, err := appInstance.ReportService.TodayTotal(ctx, appInstance.User.ID, now)
		if err != nil {
			return fmt.Errorf("failed to total today: %w", err)
		}
		fmt.Printf("\nToday: %s finished across %d log(s)\n",
			pricing.FormatDurationHuman(today.Duration), len(today.Logs))
		return nil
	},
}

func init() {
	trackCmd.AddCommand(trackStartCmd)
	trackCmd.AddCommand(trackStopCmd)
	trackCmd.AddCommand(trackEndCmd)
	trackCmd.AddCommand(trackStatusCmd)

	trackStartCmd.Flags().String("note", "", "What you are working on")
}
