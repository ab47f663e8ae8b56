package cli

import (
	"context"
	"fmt"

	"github.com/andy/workbench/internal/domain"
	"github.com/spf13/cobra"
)

var projectsCmd = &cobra.Command{
	Use:     "projects",
	Aliases: []string{"project"},
	Short:   "Manage projects",
	Long: `Projects are billed by the hour against a rate card. A project may have a
parent; invoicing a project includes all of its sub-projects.`,
}

var projectsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List projects",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()
		includeArchived, _ := cmd.Flags().GetBool("archived")

		var customerID *int64
		if cmd.Flags().Changed("customer") {
			ref, _ := cmd.Flags().GetString("customer")
			id, err := resolveCustomerID(ctx, ref)
			if err != nil {
				return fmt.Errorf("failed to resolve customer: %w", err)
			}
			customerID = &id
		}

		projects, err := appInstance.ProjectRepo.List(ctx, customerID, includeArchived)
		if err != nil {
			return fmt.Errorf("failed to list projects: %w", err)
		}

		if len(projects) == 0 {
			fmt.Println("No projects found")
			return nil
		}

		fmt.Printf("%-5s %-28s %-22s %-7s %-7s %-8s\n", "ID", "Name", "Customer", "Parent", "Rate", "Status")
		fmt.Println("----------------------------------------------------------------------------------")

		for _, p := range projects {
			status := "Active"
			if p.IsArchived {
				status = "Archived"
			}
			fmt.Printf("%-5d %-28s %-22s %-7s %-7s %-8s\n",
				p.ID,
				truncate(p.Name, 28),
				truncate(customerName(ctx, p.CustomerID), 22),
				optionalID(p.ParentID),
				optionalID(p.RateCardID),
				status,
			)
		}

		fmt.Printf("\nTotal: %d project(s)\n", len(projects))
		return nil
	},
}

var projectsAddCmd = &cobra.Command{
	Use:   "add [name]",
	Short: "Add a project",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()

		ref, _ := cmd.Flags().GetString("customer")
		customerID, err := resolveCustomerID(ctx, ref)
		if err != nil {
			return fmt.Errorf("failed to resolve customer: %w", err)
		}

		project := domain.NewProject(args[0], customerID)
		if cmd.Flags().Changed("rate") {
			id, _ := cmd.Flags().GetInt64("rate")
			project.RateCardID = &id
		}
		if cmd.Flags().Changed("parent") {
			id, _ := cmd.Flags().GetInt64("parent")
			if _, err := appInstance.ProjectRepo.GetByID(ctx, id); err != nil {
				return fmt.Errorf("failed to get parent project: %w", err)
			}
			project.ParentID = &id
		}

		if err := appInstance.ProjectRepo.Create(ctx, project); err != nil {
			return fmt.Errorf("failed to create project: %w", err)
		}

		fmt.Printf("✓ Project created: %s (ID: %d)\n", project.Name, project.ID)
		return nil
	},
}

var projectsEditCmd = &cobra.Command{
	Use:   "edit [id]",
	Short: "Edit a project",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()

		id, err := parseID(args[0], "project")
		if err != nil {
			return err
		}

		project, err := appInstance.ProjectRepo.GetByID(ctx, id)
		if err != nil {
			return fmt.Errorf("failed to get project: %w", err)
		}

		if cmd.Flags().Changed("name") {
			project.Name, _ = cmd.Flags().GetString("name")
		}
		if cmd.Flags().Changed("rate") {
			rate, _ := cmd.Flags().GetInt64("rate")
			project.RateCardID = &rate
			if rate == 0 {
				project.RateCardID = nil
			}
		}
		if cmd.Flags().Changed("parent") {
			parent, _ := cmd.Flags().GetInt64("parent")
			project.ParentID = &parent
			if parent == 0 {
				project.ParentID = nil
			}
		}

		if err := project.Validate(); err != nil {
			return fmt.Errorf("invalid project: %w", err)
		}

		if err := appInstance.ProjectRepo.Update(ctx, project); err != nil {
			return fmt.Errorf("failed to update project: %w", err)
		}

		fmt.Printf("✓ Project updated: %s\n", project.Name)
		return nil
	},
}

var projectsArchiveCmd = &cobra.Command{
	Use:   "archive [id]",
	Short: "Archive a project",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID(args[0], "project")
		if err != nil {
			return err
		}

		if err := appInstance.ProjectRepo.Archive(context.Background(), id); err != nil {
			return fmt.Errorf("failed to archive project: %w", err)
		}

		fmt.Printf("✓ Project %d archived\n", id)
		return nil
	},
}

var projectsTreeCmd = &cobra.Command{
	Use:   "tree [id]",
	Short: "Show a project and its sub-projects",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()

		id, err := parseID(args[0], "project")
		if err != nil {
			return err
		}

		totals, err := appInstance.InvoiceService.QuoteProject(ctx, id, invoiceParamsFromFlags(cmd))
		if err != nil {
			return fmt.Errorf("failed to walk project tree: %w", err)
		}

		for _, line := range totals.Lines {
			fmt.Printf("%-5d %-30s %8.2fh  %s\n", line.ProjectID, truncate(line.Name, 30), line.Hours, money(line.Amount))
		}
		return nil
	},
}

func init() {
	projectsCmd.AddCommand(projectsListCmd)
	projectsCmd.AddCommand(projectsAddCmd)
	projectsCmd.AddCommand(projectsEditCmd)
	projectsCmd.AddCommand(projectsArchiveCmd)
	projectsCmd.AddCommand(projectsTreeCmd)

	projectsListCmd.Flags().Bool("archived", false, "Include archived projects")
	projectsListCmd.Flags().String("customer", "", "Filter by customer ID or name")

	projectsAddCmd.Flags().String("customer", "", "Customer ID or name (required)")
	projectsAddCmd.MarkFlagRequired("customer")
	projectsAddCmd.Flags().Int64("rate", 0, "Rate card ID")
	projectsAddCmd.Flags().Int64("parent", 0, "Parent project ID")

	projectsEditCmd.Flags().String("name", "", "New name")
	projectsEditCmd.Flags().Int64("rate", 0, "Rate card ID (0 clears it)")
	projectsEditCmd.Flags().Int64("parent", 0, "Parent project ID (0 clears it)")

	addInvoiceParamFlags(projectsTreeCmd)
}
