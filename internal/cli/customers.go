package cli

import (
	"context"
	"fmt"

	"github.com/andy/workbench/internal/domain"
	"github.com/spf13/cobra"
)

var customersCmd = &cobra.Command{
	Use:     "customers",
	Aliases: []string{"customer"},
	Short:   "Manage customers",
	Long:    `List, add, edit, and archive customers. Friends are billed at the friends rate tier.`,
}

var customersListCmd = &cobra.Command{
	Use:   "list",
	Short: "List all customers",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()
		includeArchived, _ := cmd.Flags().GetBool("archived")

		customers, err := appInstance.CustomerRepo.List(ctx, includeArchived)
		if err != nil {
			return fmt.Errorf("failed to list customers: %w", err)
		}

		if len(customers) == 0 {
			fmt.Println("No customers found")
			return nil
		}

		fmt.Printf("%-5s %-30s %-30s %-9s %-10s\n", "ID", "Name", "Email", "Tier", "Status")
		fmt.Println("-------------------------------------------------------------------------------------")

		for _, c := range customers {
			status := "Active"
			if c.IsArchived {
				status = "Archived"
			}
			fmt.Printf("%-5d %-30s %-30s %-9s %-10s\n",
				c.ID,
				truncate(c.Name, 30),
				truncate(c.Email, 30),
				c.Tier(),
				status,
			)
		}

		fmt.Printf("\nTotal: %d customer(s)\n", len(customers))
		return nil
	},
}

var customersAddCmd = &cobra.Command{
	Use:   "add [name]",
	Short: "Add a new customer",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()

		customer := domain.NewCustomer(args[0])
		customer.Email, _ = cmd.Flags().GetString("email")
		customer.Notes, _ = cmd.Flags().GetString("notes")
		customer.IsFriend, _ = cmd.Flags().GetBool("friend")

		if err := customer.Validate(); err != nil {
			return fmt.Errorf("invalid customer: %w", err)
		}

		if err := appInstance.CustomerRepo.Create(ctx, customer); err != nil {
			return fmt.Errorf("failed to create customer: %w", err)
		}

		fmt.Printf("✓ Customer created: %s (ID: %d)\n", customer.Name, customer.ID)
		fmt.Printf("  Tier: %s\n", customer.Tier())
		return nil
	},
}

var customersEditCmd = &cobra.Command{
	Use:   "edit [id]",
	Short: "Edit an existing customer",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()

		id, err := parseID(args[0], "customer")
		if err != nil {
			return err
		}

		customer, err := appInstance.CustomerRepo.GetByID(ctx, id)
		if err != nil {
			return fmt.Errorf("failed to get customer: %w", err)
		}

		if cmd.Flags().Changed("name") {
			customer.Name, _ = cmd.Flags().GetString("name")
		}
		if cmd.Flags().Changed("email") {
			customer.Email, _ = cmd.Flags().GetString("email")
		}
		if cmd.Flags().Changed("notes") {
			customer.Notes, _ = cmd.Flags().GetString("notes")
		}
		if cmd.Flags().Changed("friend") {
			customer.IsFriend, _ = cmd.Flags().GetBool("friend")
		}

		if err := customer.Validate(); err != nil {
			return fmt.Errorf("invalid customer: %w", err)
		}

		if err := appInstance.CustomerRepo.Update(ctx, customer); err != nil {
			return fmt.Errorf("failed to update customer: %w", err)
		}

		fmt.Printf("✓ Customer updated: %s (%s tier)\n", customer.Name, customer.Tier())
		return nil
	},
}

var customersArchiveCmd = &cobra.Command{
	Use:   "archive [id]",
	Short: "Archive a customer",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()

		id, err := parseID(args[0], "customer")
		if err != nil {
			return err
		}

		customer, err := appInstance.CustomerRepo.GetByID(ctx, id)
		if err != nil {
			return fmt.Errorf("failed to get customer: %w", err)
		}

		if err := appInstance.CustomerRepo.Archive(ctx, id); err != nil {
			return fmt.Errorf("failed to archive customer: %w", err)
		}

		fmt.Printf("✓ Customer archived: %s\n", customer.Name)
		return nil
	},
}

var customersUnarchiveCmd = &cobra.Command{
	Use:   "unarchive [id]",
	Short: "Unarchive a customer",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()

		id, err := parseID(args[0], "customer")
		if err != nil {
			return err
		}

		if err := appInstance.CustomerRepo.Unarchive(ctx, id); err != nil {
			return fmt.Errorf("failed to unarchive customer: %w", err)
		}

		fmt.Printf("✓ Customer unarchived (ID: %d)\n", id)
		return nil
	},
}

func init() {
	customersCmd.AddCommand(customersListCmd)
	customersCmd.AddCommand(customersAddCmd)
	customersCmd.AddCommand(customersEditCmd)
	customersCmd.AddCommand(customersArchiveCmd)
	customersCmd.AddCommand(customersUnarchiveCmd)

	customersListCmd.Flags().Bool("archived", false, "Include archived customers")

	customersAddCmd.Flags().String("email", "", "Customer email")
	customersAddCmd.Flags().String("notes", "", "Notes about the customer")
	customersAddCmd.Flags().Bool("friend", false, "Bill at the friends rate tier")

	customersEditCmd.Flags().String("name", "", "New name")
	customersEditCmd.Flags().String("email", "", "New email")
	customersEditCmd.Flags().String("notes", "", "New notes")
	customersEditCmd.Flags().Bool("friend", false, "Bill at the friends rate tier")
}
