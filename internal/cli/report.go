package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/andy/workbench/internal/tracking"
	"github.com/spf13/cobra"
)

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Summaries of tracked time and money",
}

var reportTodayCmd = &cobra.Command{
	Use:   "today",
	Short: "Finished time logged today",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()

		day := time.Now()
		if s, _ := cmd.Flags().GetString("date"); s != "" {
			d, err := parseDate(s)
			if err != nil {
				return fmt.Errorf("invalid date: %w", err)
			}
			day = d.Add(12 * time.Hour)
		}

		summary, err := appInstance.ReportService.TodayTotal(ctx, appInstance.User.ID, day)
		if err != nil {
			return fmt.Errorf("failed to total the day: %w", err)
		}

		fmt.Printf("%s for %s\n", summary.Date.Format("Monday 2006-01-02"), appInstance.User.Name)
		fmt.Println("--------------------------------------------------")
		for _, log := range summary.Logs {
			fmt.Printf("%-30s %s - %s  %s\n",
				truncate(subjectName(ctx, log.Subject()), 30),
				log.StartTime.Format("15:04"),
				log.EndTime.Format("15:04"),
				tracking.FormatElapsed(log.EndTime.Sub(log.StartTime)),
			)
		}
		fmt.Println("--------------------------------------------------")
		fmt.Printf("Total: %s (%.2fh)\n", tracking.FormatElapsed(summary.Duration), summary.Hours)
		if summary.Running > 0 {
			fmt.Printf("%d log(s) still running\n", summary.Running)
		}
		return nil
	},
}

var reportSubjectCmd = &cobra.Command{
	Use:   "subject [project|job] [id]",
	Short: "Total time and value tracked on a project or print job",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()

		subject, err := parseSubject(args[0], args[1])
		if err != nil {
			return err
		}

		summary, err := appInstance.ReportService.SubjectSummary(ctx, subject)
		if err != nil {
			return fmt.Errorf("failed to summarise %s: %w", subject, err)
		}

		fmt.Printf("%s\n", subjectName(ctx, subject))
		fmt.Printf("  Logs: %d\n", len(summary.Logs))
		fmt.Printf("  Time: %s\n", summary.Human)
		fmt.Printf("  Rate: %s/h\n", money(summary.Rate))
		fmt.Printf("  Value: %s\n", money(summary.Amount))
		return nil
	},
}

var reportOutstandingCmd = &cobra.Command{
	Use:   "outstanding",
	Short: "Money owed on sent and overdue invoices",
	RunE: func(cmd *cobra.Command, args []string) error {
		total, err := appInstance.ReportService.GetOutstandingTotal(context.Background())
		if err != nil {
			return fmt.Errorf("failed to total outstanding invoices: %w", err)
		}

		fmt.Printf("Outstanding: %s\n", money(total))
		return nil
	},
}

func init() {
	reportCmd.AddCommand(reportTodayCmd)
	reportCmd.AddCommand(reportSubjectCmd)
	reportCmd.AddCommand(reportOutstandingCmd)

	reportTodayCmd.Flags().String("date", "", "Another day (YYYY-MM-DD or 'yesterday')")

}
