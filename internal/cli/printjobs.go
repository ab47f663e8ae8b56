package cli

import (
	"context"
	"fmt"

	"github.com/andy/workbench/internal/domain"
	"github.com/spf13/cobra"
)

var printJobsCmd = &cobra.Command{
	Use:     "printjobs",
	Aliases: []string{"jobs", "printjob"},
	Short:   "Manage 3D print jobs",
	Long: `Print jobs are billed through the cost pipeline: electricity, material,
labour, margin, discount and tax.`,
}

var printJobsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List print jobs",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()

		var customerID *int64
		if cmd.Flags().Changed("customer") {
			ref, _ := cmd.Flags().GetString("customer")
			id, err := resolveCustomerID(ctx, ref)
			if err != nil {
				return fmt.Errorf("failed to resolve customer: %w", err)
			}
			customerID = &id
		}

		var status *domain.PrintJobStatus
		if cmd.Flags().Changed("status") {
			s, _ := cmd.Flags().GetString("status")
			st := domain.PrintJobStatus(s)
			status = &st
		}

		jobs, err := appInstance.PrintJobRepo.List(ctx, customerID, status)
		if err != nil {
			return fmt.Errorf("failed to list print jobs: %w", err)
		}

		if len(jobs) == 0 {
			fmt.Println("No print jobs found")
			return nil
		}

		fmt.Printf("%-5s %-26s %-20s %-4s %-9s %-7s %-9s\n", "ID", "Name", "Customer", "Qty", "Grams", "Hours", "Status")
		fmt.Println("-----------------------------------------------------------------------------------")

		for _, j := range jobs {
			fmt.Printf("%-5d %-26s %-20s %-4d %-9.1f %-7.2f %-9s\n",
				j.ID,
				truncate(j.Name, 26),
				truncate(customerName(ctx, j.CustomerID), 20),
				j.Quantity,
				j.WeightGrams,
				j.PrintHours,
				j.Status,
			)
		}

		fmt.Printf("\nTotal: %d print job(s)\n", len(jobs))
		return nil
	},
}

var printJobsAddCmd = &cobra.Command{
	Use:   "add [name]",
	Short: "Add a print job",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()

		ref, _ := cmd.Flags().GetString("customer")
		customerID, err := resolveCustomerID(ctx, ref)
		if err != nil {
			return fmt.Errorf("failed to resolve customer: %w", err)
		}

		job := domain.NewPrintJob(args[0], customerID)
		applyPrintJobFlags(cmd, job)

		if err := appInstance.PrintJobRepo.Create(ctx, job); err != nil {
			return fmt.Errorf("failed to create print job: %w", err)
		}

		fmt.Printf("✓ Print job created: %s (ID: %d)\n", job.Name, job.ID)
		return nil
	},
}

var printJobsEditCmd = &cobra.Command{
	Use:   "edit [id]",
	Short: "Edit a print job",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()

		id, err := parseID(args[0], "print job")
		if err != nil {
			return err
		}

		job, err := appInstance.PrintJobRepo.GetByID(ctx, id)
		if err != nil {
			return fmt.Errorf("failed to get print job: %w", err)
		}

		if cmd.Flags().Changed("name") {
			job.Name, _ = cmd.Flags().GetString("name")
		}
		applyPrintJobFlags(cmd, job)

		if err := job.Validate(); err != nil {
			return fmt.Errorf("invalid print job: %w", err)
		}

		if err := appInstance.PrintJobRepo.Update(ctx, job); err != nil {
			return fmt.Errorf("failed to update print job: %w", err)
		}

		fmt.Printf("✓ Print job updated: %s (%s)\n", job.Name, job.Status)
		return nil
	},
}

func applyPrintJobFlags(cmd *cobra.Command, job *domain.PrintJob) {
	if cmd.Flags().Changed("quantity") {
		job.Quantity, _ = cmd.Flags().GetInt("quantity")
	}
	if cmd.Flags().Changed("grams") {
		job.WeightGrams, _ = cmd.Flags().GetFloat64("grams")
	}
	if cmd.Flags().Changed("price-per-gram") {
		job.PricePerGram, _ = cmd.Flags().GetFloat64("price-per-gram")
	}
	if cmd.Flags().Changed("hours") {
		job.PrintHours, _ = cmd.Flags().GetFloat64("hours")
	}
	if cmd.Flags().Changed("rate") {
		id, _ := cmd.Flags().GetInt64("rate")
		job.RateCardID = &id
		if id == 0 {
			job.RateCardID = nil
		}
	}
	if cmd.Flags().Changed("status") {
		s, _ := cmd.Flags().GetString("status")
		job.Status = domain.PrintJobStatus(s)
	}
}

func init() {
	printJobsCmd.AddCommand(printJobsListCmd)
	printJobsCmd.AddCommand(printJobsAddCmd)
	printJobsCmd.AddCommand(printJobsEditCmd)

	printJobsListCmd.Flags().String("customer", "", "Filter by customer ID or name")
	printJobsListCmd.Flags().String("status", "", "Filter by status (queued, printing, done)")

	printJobsAddCmd.Flags().String("customer", "", "Customer ID or name (required)")
	printJobsAddCmd.MarkFlagRequired("customer")
	printJobsEditCmd.Flags().String("name", "", "New name")

	for _, c := range []*cobra.Command{printJobsAddCmd, printJobsEditCmd} {
		c.Flags().Int("quantity", 1, "Number of units")
		c.Flags().Float64("grams", 0, "Filament weight per unit in grams")
		c.Flags().Float64("price-per-gram", 0, "Filament price per gram")
		c.Flags().Float64("hours", 0, "Printer hours for the whole job")
		c.Flags().Int64("rate", 0, "Rate card ID for labour (0 uses the configured base cost)")
		c.Flags().String("status", "", "Status (queued, printing, done)")
	}
}
