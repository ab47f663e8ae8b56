package cli

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/andy/workbench/internal/domain"
	"github.com/andy/workbench/internal/draft"
	"github.com/andy/workbench/internal/pricing"
	"github.com/andy/workbench/internal/service"
	"github.com/spf13/cobra"
)

var invoicesCmd = &cobra.Command{
	Use:     "invoices",
	Aliases: []string{"invoice"},
	Short:   "Quote and manage invoices",
	Long: `Quote and invoice print jobs and project trees, then move invoices
through finalized, sent and paid.

Discount, tax and margin given with --save-draft are remembered for the
subject and reused by the next quote or invoice until it is created.`,
}

var invoicesQuoteCmd = &cobra.Command{
	Use:   "quote [project|job] [id]",
	Short: "Show what an invoice would contain without saving it",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()

		subject, err := parseSubject(args[0], args[1])
		if err != nil {
			return err
		}

		params, err := loadInvoiceParams(cmd, subject)
		if err != nil {
			return err
		}

		switch subject.Kind {
		case domain.SubjectPrintJob:
			b, err := appInstance.InvoiceService.QuotePrintJob(ctx, subject.ID, params)
			if err != nil {
				return fmt.Errorf("failed to quote print job: %w", err)
			}
			printBreakdown(subjectName(ctx, subject), b)
		case domain.SubjectProject:
			totals, err := appInstance.InvoiceService.QuoteProject(ctx, subject.ID, params)
			if err != nil {
				return fmt.Errorf("failed to quote project: %w", err)
			}
			printProjectTotals(totals)
		}
		return nil
	},
}

var invoicesCreateCmd = &cobra.Command{
	Use:   "create [project|job] [id]",
	Short: "Create a draft invoice for a print job or project tree",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()

		subject, err := parseSubject(args[0], args[1])
		if err != nil {
			return err
		}

		params, err := loadInvoiceParams(cmd, subject)
		if err != nil {
			return err
		}

		var invoice *domain.Invoice
		switch subject.Kind {
		case domain.SubjectPrintJob:
			invoice, err = appInstance.InvoiceService.InvoicePrintJob(ctx, subject.ID, params)
		case domain.SubjectProject:
			invoice, err = appInstance.InvoiceService.InvoiceProject(ctx, subject.ID, params)
		}
		if err != nil {
			return fmt.Errorf("failed to create invoice: %w", err)
		}

		if err := appInstance.Drafts.Clear(draftKey(subject)); err != nil {
			appInstance.Logger.Sugar().Warnw("could not clear invoice draft", "subject", subject.String(), "error", err)
		}

		fmt.Printf("✓ Draft invoice created: %s (ID: %d)\n", invoice.InvoiceNumber, invoice.ID)
		fmt.Printf("  Customer: %s\n", customerName(ctx, invoice.CustomerID))
		fmt.Printf("  Total: %s\n", money(invoice.Total))
		return nil
	},
}

var invoicesListCmd = &cobra.Command{
	Use:   "list",
	Short: "List invoices",
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

		var status *domain.InvoiceStatus
		if cmd.Flags().Changed("status") {
			s, _ := cmd.Flags().GetString("status")
			st := domain.InvoiceStatus(s)
			status = &st
		}

		invoices, err := appInstance.InvoiceService.ListInvoices(ctx, customerID, status)
		if err != nil {
			return fmt.Errorf("failed to list invoices: %w", err)
		}

		if len(invoices) == 0 {
			fmt.Println("No invoices found")
			return nil
		}

		fmt.Printf("%-5s %-15s %-20s %-22s %-14s %-10s\n", "ID", "Number", "Customer", "For", "Total", "Status")
		fmt.Println("--------------------------------------------------------------------------------------------")

		for _, inv := range invoices {
			fmt.Printf("%-5d %-15s %-20s %-22s %-14s %-10s\n",
				inv.ID,
				inv.InvoiceNumber,
				truncate(customerName(ctx, inv.CustomerID), 20),
				truncate(subjectName(ctx, inv.Subject), 22),
				money(inv.Total),
				inv.Status,
			)
		}

		fmt.Printf("\nTotal: %d invoice(s)\n", len(invoices))
		return nil
	},
}

var invoicesShowCmd = &cobra.Command{
	Use:   "show [id]",
	Short: "Show invoice details",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()

		id, err := parseID(args[0], "invoice")
		if err != nil {
			return err
		}

		inv, err := appInstance.InvoiceService.GetInvoice(ctx, id)
		if err != nil {
			return fmt.Errorf("failed to get invoice: %w", err)
		}

		fmt.Println(strings.Repeat("=", 80))
		fmt.Printf("Invoice: %s\n", inv.InvoiceNumber)
		fmt.Println(strings.Repeat("=", 80))
		fmt.Printf("Customer: %s\n", customerName(ctx, inv.CustomerID))
		fmt.Printf("For: %s\n", subjectName(ctx, inv.Subject))
		fmt.Printf("Status: %s\n", inv.Status)
		if inv.DueDate != nil {
			fmt.Printf("Due: %s\n", inv.DueDate.Format("2006-01-02"))
		}
		if inv.PaidDate != nil {
			fmt.Printf("Paid: %s\n", inv.PaidDate.Format("2006-01-02"))
		}
		fmt.Println()

		if len(inv.LineItems) > 0 {
			fmt.Println("Line Items:")
			fmt.Println(strings.Repeat("-", 80))
			fmt.Printf("%-12s %-34s %8s %10s %12s\n", "Layer", "Description", "Hours", "Rate", "Amount")
			fmt.Println(strings.Repeat("-", 80))

			for _, item := range inv.LineItems {
				fmt.Printf("%-12s %-34s %8.2f %10s %12s\n",
					item.Layer,
					truncate(item.Description, 34),
					item.Hours,
					money(item.Rate),
					money(item.Amount),
				)
			}
			fmt.Println(strings.Repeat("-", 80))
		}

		fmt.Println()
		fmt.Printf("Subtotal: %s\n", money(inv.Subtotal))
		if inv.DiscountPercent > 0 {
			fmt.Printf("Discount (%.1f%%): -%s\n", inv.DiscountPercent, money(inv.DiscountAmount))
		}
		fmt.Printf("Tax (%.1f%%): %s\n", inv.TaxRate*100, money(inv.TaxAmount))
		fmt.Printf("Total: %s\n", money(inv.Total))
		fmt.Println(strings.Repeat("=", 80))
		return nil
	},
}

var invoicesFinalizeCmd = &cobra.Command{
	Use:   "finalize [id]",
	Short: "Finalize a draft invoice",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()

		id, err := parseID(args[0], "invoice")
		if err != nil {
			return err
		}

		if err := appInstance.InvoiceService.Finalize(ctx, id); err != nil {
			return fmt.Errorf("failed to finalize invoice: %w", err)
		}

		fmt.Printf("✓ Invoice #%d finalized\n", id)
		return nil
	},
}

var invoicesMarkSentCmd = &cobra.Command{
	Use:   "mark-sent [id]",
	Short: "Mark an invoice as sent",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID(args[0], "invoice")
		if err != nil {
			return err
		}

		if err := appInstance.InvoiceService.MarkSent(context.Background(), id); err != nil {
			return fmt.Errorf("failed to mark invoice as sent: %w", err)
		}

		fmt.Printf("✓ Invoice #%d marked as sent\n", id)
		return nil
	},
}

var invoicesMarkPaidCmd = &cobra.Command{
	Use:   "mark-paid [id]",
	Short: "Mark an invoice as paid",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID(args[0], "invoice")
		if err != nil {
			return err
		}

		paidDate := time.Now()
		if s, _ := cmd.Flags().GetString("date"); s != "" {
			paidDate, err = parseDate(s)
			if err != nil {
				return fmt.Errorf("invalid paid date: %w", err)
			}
		}

		if err := appInstance.InvoiceService.MarkPaid(context.Background(), id, paidDate); err != nil {
			return fmt.Errorf("failed to mark invoice as paid: %w", err)
		}

		fmt.Printf("✓ Invoice #%d marked as paid on %s\n", id, paidDate.Format("2006-01-02"))
		return nil
	},
}

var invoicesCheckOverdueCmd = &cobra.Command{
	Use:   "check-overdue",
	Short: "Flag sent invoices past their due date",
	RunE: func(cmd *cobra.Command, args []string) error {
		n, err := appInstance.InvoiceService.CheckOverdue(context.Background())
		if err != nil {
			return fmt.Errorf("failed to check overdue invoices: %w", err)
		}

		fmt.Printf("✓ %d invoice(s) marked overdue\n", n)
		return nil
	},
}

func draftKey(s domain.Subject) string {
	kind := "project"
	if s.Kind == domain.SubjectPrintJob {
		kind = "printjob"
	}
	return draft.Key(kind, s.ID)
}

func addInvoiceParamFlags(cmd *cobra.Command) {
	cmd.Flags().Float64("discount", 0, "Discount percent (10 = 10%)")
	cmd.Flags().Float64("tax", 0, "Tax rate override (0.21 = 21%)")
	cmd.Flags().Float64("margin", 0, "Margin rate override for print jobs (0.25 = 25%)")
}

// invoiceParamsFromFlags applies the discount, tax and margin flags on top of base
func invoiceParamsFromFlags(cmd *cobra.Command, base ...service.InvoiceParams) service.InvoiceParams {
	var p service.InvoiceParams
	if len(base) > 0 {
		p = base[0]
	}
	if cmd.Flags().Changed("discount") {
		p.DiscountPercent, _ = cmd.Flags().GetFloat64("discount")
	}
	if cmd.Flags().Changed("tax") {
		v, _ := cmd.Flags().GetFloat64("tax")
		p.TaxRate = &v
	}
	if cmd.Flags().Changed("margin") {
		v, _ := cmd.Flags().GetFloat64("margin")
		p.MarginRate = &v
	}
	return p
}

// loadInvoiceParams starts from the saved draft of the subject, applies the
// flags and saves the result back when --save-draft is set.
func loadInvoiceParams(cmd *cobra.Command, subject domain.Subject) (service.InvoiceParams, error) {
	key := draftKey(subject)

	var saved service.InvoiceParams
	found, err := appInstance.Drafts.Load(key, &saved)
	if err != nil {
		return service.InvoiceParams{}, fmt.Errorf("failed to load invoice draft: %w", err)
	}
	if found {
		fmt.Printf("Using saved draft for %s\n", subject)
	}

	params := invoiceParamsFromFlags(cmd, saved)

	if save, _ := cmd.Flags().GetBool("save-draft"); save {
		if err := appInstance.Drafts.Save(key, params); err != nil {
			return service.InvoiceParams{}, fmt.Errorf("failed to save invoice draft: %w", err)
		}
	}
	return params, nil
}

func printBreakdown(name string, b pricing.Breakdown) {
	fmt.Printf("Quote for %s\n", name)
	fmt.Println(strings.Repeat("-", 46))
	fmt.Printf("%-14s %14s %14s\n", "Layer", "Adds", "Running total")
	fmt.Println(strings.Repeat("-", 46))
	for _, l := range b.Layers() {
		fmt.Printf("%-14s %14s %14s\n", l.Name, money(l.Cost), money(l.Total))
	}
	fmt.Println(strings.Repeat("-", 46))
	fmt.Printf("Material price: %s\n", money(b.MaterialPrice))
	fmt.Printf("Total: %s\n", money(b.Total()))
}

func printProjectTotals(t pricing.ProjectTotals) {
	fmt.Printf("%-5s %-30s %8s %10s %12s\n", "ID", "Project", "Hours", "Rate", "Amount")
	fmt.Println(strings.Repeat("-", 70))
	for _, l := range t.Lines {
		fmt.Printf("%-5d %-30s %8.2f %10s %12s\n",
			l.ProjectID, truncate(l.Name, 30), l.Hours, money(l.Rate), money(l.Amount))
	}
	fmt.Println(strings.Repeat("-", 70))
	fmt.Printf("Subtotal: %s\n", money(t.Subtotal))
	if t.DiscountPercent > 0 {
		fmt.Printf("Discount (%.1f%%): -%s\n", t.DiscountPercent, money(t.DiscountAmount))
	}
	fmt.Printf("Tax (%.1f%%): %s\n", t.TaxRate*100, money(t.TaxAmount))
	fmt.Printf("Total: %s\n", money(t.Total))
}

func init() {
	invoicesCmd.AddCommand(invoicesQuoteCmd)
	invoicesCmd.AddCommand(invoicesCreateCmd)
	invoicesCmd.AddCommand(invoicesListCmd)
	invoicesCmd.AddCommand(invoicesShowCmd)
	invoicesCmd.AddCommand(invoicesFinalizeCmd)
	invoicesCmd.AddCommand(invoicesMarkSentCmd)
	invoicesCmd.AddCommand(invoicesMarkPaidCmd)
	invoicesCmd.AddCommand(invoicesCheckOverdueCmd)

	for _, c := range []*cobra.Command{invoicesQuoteCmd, invoicesCreateCmd} {
		addInvoiceParamFlags(c)
		c.Flags().Bool("save-draft", false, "Remember these settings for this subject")
	}

	invoicesListCmd.Flags().String("customer", "", "Filter by customer ID or name")
	invoicesListCmd.Flags().String("status", "", "Filter by status (draft, finalized, sent, paid, overdue)")

	invoicesMarkPaidCmd.Flags().String("date", "", "Payment date (defaults to today)")
}
