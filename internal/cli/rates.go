package cli

import (
	"context"
	"fmt"

	"github.com/andy/workbench/internal/domain"
	"github.com/spf13/cobra"
)

var ratesCmd = &cobra.Command{
	Use:     "rates",
	Aliases: []string{"ratecards"},
	Short:   "Manage rate cards",
	Long: `Rate cards hold the hourly price of a service. Each card has a standard
tier and an optional friends tier; a tier is a single rate or a min/max range,
and the lower bound is what gets billed.`,
}

var ratesListCmd = &cobra.Command{
	Use:   "list",
	Short: "List rate cards",
	RunE: func(cmd *cobra.Command, args []string) error {
		cards, err := appInstance.RateCardRepo.List(context.Background())
		if err != nil {
			return fmt.Errorf("failed to list rate cards: %w", err)
		}

		if len(cards) == 0 {
			fmt.Println("No rate cards found")
			return nil
		}

		fmt.Printf("%-5s %-25s %-15s %-22s %-22s\n", "ID", "Service", "Category", "Standard", "Friends")
		fmt.Println("-----------------------------------------------------------------------------------------")

		for _, c := range cards {
			fmt.Printf("%-5d %-25s %-15s %-22s %-22s\n",
				c.ID,
				truncate(c.Service, 25),
				truncate(c.Category, 15),
				formatTier(c.Standard),
				formatTier(c.Friends),
			)
		}
		return nil
	},
}

var ratesAddCmd = &cobra.Command{
	Use:   "add [service]",
	Short: "Add a rate card",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()

		category, _ := cmd.Flags().GetString("category")
		card := domain.NewRateCard(args[0], category, 0)
		card.Standard = tierFromFlags(cmd, "standard")
		card.Friends = tierFromFlags(cmd, "friends")

		if err := card.Validate(); err != nil {
			return fmt.Errorf("invalid rate card: %w", err)
		}

		if err := appInstance.RateCardRepo.Create(ctx, card); err != nil {
			return fmt.Errorf("failed to create rate card: %w", err)
		}

		fmt.Printf("✓ Rate card created: %s (ID: %d)\n", card.Service, card.ID)
		fmt.Printf("  Standard: %s/h  Friends: %s/h\n",
			money(card.RateFor(domain.TierStandard)),
			money(card.RateFor(domain.TierFriends)),
		)
		return nil
	},
}

var ratesEditCmd = &cobra.Command{
	Use:   "edit [id]",
	Short: "Edit a rate card",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()

		id, err := parseID(args[0], "rate card")
		if err != nil {
			return err
		}

		card, err := appInstance.RateCardRepo.GetByID(ctx, id)
		if err != nil {
			return fmt.Errorf("failed to get rate card: %w", err)
		}

		if cmd.Flags().Changed("service") {
			card.Service, _ = cmd.Flags().GetString("service")
		}
		if cmd.Flags().Changed("category") {
			card.Category, _ = cmd.Flags().GetString("category")
		}
		if cmd.Flags().Changed("standard-min") || cmd.Flags().Changed("standard-max") {
			card.Standard = tierFromFlags(cmd, "standard")
		}
		if cmd.Flags().Changed("friends-min") || cmd.Flags().Changed("friends-max") {
			card.Friends = tierFromFlags(cmd, "friends")
		}

		if err := card.Validate(); err != nil {
			return fmt.Errorf("invalid rate card: %w", err)
		}

		if err := appInstance.RateCardRepo.Update(ctx, card); err != nil {
			return fmt.Errorf("failed to update rate card: %w", err)
		}

		fmt.Printf("✓ Rate card updated: %s\n", card.Service)
		return nil
	},
}

var ratesDeleteCmd = &cobra.Command{
	Use:   "delete [id]",
	Short: "Delete a rate card",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID(args[0], "rate card")
		if err != nil {
			return err
		}

		if err := appInstance.RateCardRepo.Delete(context.Background(), id); err != nil {
			return fmt.Errorf("failed to delete rate card: %w", err)
		}

		fmt.Printf("✓ Rate card %d deleted\n", id)
		return nil
	},
}

// tierFromFlags reads --<tier>-min and --<tier>-max; unset flags stay nil
func tierFromFlags(cmd *cobra.Command, tier string) domain.RateTier {
	var t domain.RateTier
	if cmd.Flags().Changed(tier + "-min") {
		v, _ := cmd.Flags().GetFloat64(tier + "-min")
		t.Min = &v
	}
	if cmd.Flags().Changed(tier + "-max") {
		v, _ := cmd.Flags().GetFloat64(tier + "-max")
		t.Max = &v
	}
	return t
}

func formatTier(t domain.RateTier) string {
	switch {
	case t.Min != nil && t.Max != nil:
		return money(*t.Min) + " - " + money(*t.Max)
	case t.Min != nil:
		return money(*t.Min)
	case t.Max != nil:
		return "up to " + money(*t.Max)
	}
	return "-"
}

func init() {
	ratesCmd.AddCommand(ratesListCmd)
	ratesCmd.AddCommand(ratesAddCmd)
	ratesCmd.AddCommand(ratesEditCmd)
	ratesCmd.AddCommand(ratesDeleteCmd)

	for _, c := range []*cobra.Command{ratesAddCmd, ratesEditCmd} {
		c.Flags().String("category", "", "Service category")
		c.Flags().Float64("standard-min", 0, "Standard hourly rate (lower bound)")
		c.Flags().Float64("standard-max", 0, "Standard hourly rate upper bound")
		c.Flags().Float64("friends-min", 0, "Friends hourly rate (lower bound)")
		c.Flags().Float64("friends-max", 0, "Friends hourly rate upper bound")
	}
	ratesEditCmd.Flags().String("service", "", "New service name")
}
