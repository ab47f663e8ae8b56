package tui

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/andy/workbench/internal/app"
	"github.com/andy/workbench/internal/config"
	"github.com/andy/workbench/internal/domain"
)

type invoiceViewMode int

const (
	invoiceViewList invoiceViewMode = iota
	invoiceViewDetail
)

// InvoicesModel displays invoices in list and detail views
type InvoicesModel struct {
	app       *app.App
	mode      invoiceViewMode
	invoices  []*domain.Invoice
	customers map[int64]string
	cursor    int
	selected  *domain.Invoice
	loading   bool
	err       error
	statusMsg string
}

type invoicesDataMsg struct {
	invoices  []*domain.Invoice
	customers map[int64]string
	err       error
}

type invoiceDetailMsg struct {
	invoice *domain.Invoice
	err     error
}

// invoiceActionMsg reports a status change or export
type invoiceActionMsg struct {
	status string
	err    error
}

func NewInvoicesModel(a *app.App) tea.Model {
	return &InvoicesModel{app: a, loading: true}
}

func (m *InvoicesModel) Init() tea.Cmd {
	return m.loadInvoices()
}

func (m *InvoicesModel) loadInvoices() tea.Cmd {
	return func() tea.Msg {
		ctx := context.Background()

		// flag anything past due before listing
		if _, err := m.app.InvoiceService.CheckOverdue(ctx); err != nil {
			return invoicesDataMsg{err: err}
		}

		invoices, err := m.app.InvoiceService.ListInvoices(ctx, nil, nil)
		if err != nil {
			return invoicesDataMsg{err: err}
		}

		customers, err := m.app.CustomerRepo.List(ctx, true)
		if err != nil {
			return invoicesDataMsg{err: err}
		}
		names := make(map[int64]string, len(customers))
		for _, c := range customers {
			names[c.ID] = c.Name
		}

		return invoicesDataMsg{invoices: invoices, customers: names}
	}
}

func (m *InvoicesModel) loadDetail(id int64) tea.Cmd {
	return func() tea.Msg {
		inv, err := m.app.InvoiceService.GetInvoice(context.Background(), id)
		return invoiceDetailMsg{invoice: inv, err: err}
	}
}

func (m *InvoicesModel) act(verb string, fn func(ctx context.Context, id int64) error) tea.Cmd {
	inv := m.current()
	if inv == nil {
		return nil
	}
	return func() tea.Msg {
		if err := fn(context.Background(), inv.ID); err != nil {
			return invoiceActionMsg{err: err}
		}
		return invoiceActionMsg{status: fmt.Sprintf("%s %s", inv.InvoiceNumber, verb)}
	}
}

func (m *InvoicesModel) markPaid(ctx context.Context, id int64) error {
	return m.app.InvoiceService.MarkPaid(ctx, id, time.Now())
}

func (m *InvoicesModel) export() tea.Cmd {
	inv := m.selected
	if inv == nil {
		return nil
	}
	path := filepath.Join(config.Dir(), "invoices", inv.InvoiceNumber+".txt")
	customer := m.customers[inv.CustomerID]
	return func() tea.Msg {
		if err := writeInvoiceTxt(m.app, inv, customer, path); err != nil {
			return invoiceActionMsg{err: err}
		}
		return invoiceActionMsg{status: "Saved " + path}
	}
}

// current is the invoice under the cursor, or the one being viewed
func (m *InvoicesModel) current() *domain.Invoice {
	if m.mode == invoiceViewDetail {
		return m.selected
	}
	if m.cursor < len(m.invoices) {
		return m.invoices[m.cursor]
	}
	return nil
}

// writeInvoiceTxt renders a plain text copy of an invoice
func writeInvoiceTxt(a *app.App, inv *domain.Invoice, customer, filePath string) error {
	if err := os.MkdirAll(filepath.Dir(filePath), 0755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}
	money := func(v float64) string { return formatMoney(a.Config.Invoice.Currency, v) }

	var b strings.Builder
	sep := strings.Repeat("=", 60)
	line := strings.Repeat("-", 60)

	b.WriteString("INVOICE\n")
	b.WriteString(sep + "\n")
	fmt.Fprintf(&b, "Invoice #:  %s\n", inv.InvoiceNumber)
	fmt.Fprintf(&b, "Date:       %s\n", inv.CreatedAt.Format("Jan 02, 2006"))
	if inv.DueDate != nil {
		fmt.Fprintf(&b, "Due:        %s\n", inv.DueDate.Format("Jan 02, 2006"))
	}

	if user := a.Config.User; user.Name != "" {
		b.WriteString("\nFrom:\n")
		fmt.Fprintf(&b, "  %s\n", user.Name)
		if user.Email != "" {
			fmt.Fprintf(&b, "  %s\n", user.Email)
		}
	}

	b.WriteString("\nBill To:\n")
	fmt.Fprintf(&b, "  %s\n", customer)

	b.WriteString("\n" + line + "\n")
	fmt.Fprintf(&b, "%-30s %8s %8s %11s\n", "Description", "Hours", "Rate", "Amount")
	b.WriteString(line + "\n")
	for _, item := range inv.LineItems {
		fmt.Fprintf(&b, "%-30s %8.2f %8.2f %11s\n",
			truncateStr(item.Description, 30), item.Hours, item.Rate, money(item.Amount))
	}
	b.WriteString(line + "\n")

	fmt.Fprintf(&b, "%48s %11s\n", "Subtotal", money(inv.Subtotal))
	if inv.DiscountAmount > 0 {
		fmt.Fprintf(&b, "%48s %11s\n", fmt.Sprintf("Discount (%.0f%%)", inv.DiscountPercent), "-"+money(inv.DiscountAmount))
	}
	fmt.Fprintf(&b, "%48s %11s\n", fmt.Sprintf("Tax (%.1f%%)", inv.TaxRate*100), money(inv.TaxAmount))
	fmt.Fprintf(&b, "%48s %11s\n", "TOTAL", money(inv.Total))
	b.WriteString(sep + "\n")

	return os.WriteFile(filePath, []byte(b.String()), 0644)
}

func (m *InvoicesModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case RefreshDataMsg:
		m.loading = true
		return m, m.loadInvoices()

	case invoicesDataMsg:
		m.loading = false
		m.err = msg.err
		if msg.err == nil {
			m.invoices = msg.invoices
			m.customers = msg.customers
			if m.cursor >= len(m.invoices) {
				m.cursor = max(0, len(m.invoices)-1)
			}
		}
		return m, nil

	case invoiceDetailMsg:
		m.loading = false
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}
		m.selected = msg.invoice
		m.mode = invoiceViewDetail
		return m, nil

	case invoiceActionMsg:
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}
		m.statusMsg = msg.status
		cmds := []tea.Cmd{m.loadInvoices()}
		if m.mode == invoiceViewDetail && m.selected != nil {
			cmds = append(cmds, m.loadDetail(m.selected.ID))
		}
		return m, tea.Batch(cmds...)

	case tea.KeyMsg:
		if m.loading {
			return m, nil
		}
		m.statusMsg = ""
		m.err = nil

		switch m.mode {
		case invoiceViewList:
			return m.updateList(msg)
		case invoiceViewDetail:
			return m.updateDetail(msg)
		}
	}

	return m, nil
}

// updateActions handles the status keys shared by both views
func (m *InvoicesModel) updateActions(msg tea.KeyMsg) tea.Cmd {
	svc := m.app.InvoiceService
	switch msg.String() {
	case "f":
		return m.act("finalized", svc.Finalize)
	case "s":
		return m.act("marked as sent", svc.MarkSent)
	case "p":
		return m.act("marked as paid", m.markPaid)
	}
	return nil
}

func (m *InvoicesModel) updateList(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, DefaultKeyMap.Up):
		if m.cursor > 0 {
			m.cursor--
		}
	case key.Matches(msg, DefaultKeyMap.Down):
		if m.cursor < len(m.invoices)-1 {
			m.cursor++
		}
	case key.Matches(msg, DefaultKeyMap.Select):
		if m.cursor < len(m.invoices) {
			m.loading = true
			return m, m.loadDetail(m.invoices[m.cursor].ID)
		}
	default:
		return m, m.updateActions(msg)
	}
	return m, nil
}

func (m *InvoicesModel) updateDetail(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, DefaultKeyMap.Back):
		m.mode = invoiceViewList
		m.selected = nil
		return m, nil
	case msg.String() == "e":
		return m, m.export()
	}
	return m, m.updateActions(msg)
}

func (m *InvoicesModel) View() string {
	if m.loading {
		return "Loading invoices..."
	}
	if m.mode == invoiceViewDetail {
		return m.viewDetail()
	}
	return m.viewList()
}

func (m *InvoicesModel) money(v float64) string {
	return formatMoney(m.app.Config.Invoice.Currency, v)
}

func (m *InvoicesModel) customerName(id int64) string {
	if name, ok := m.customers[id]; ok {
		return name
	}
	return fmt.Sprintf("Customer #%d", id)
}

func (m *InvoicesModel) viewStatus() string {
	var s string
	if m.statusMsg != "" {
		s += statusStyle.Render("  "+m.statusMsg) + "\n\n"
	}
	if m.err != nil {
		s += errStyle.Render(fmt.Sprintf("  Error: %v", m.err)) + "\n\n"
	}
	return s
}

func (m *InvoicesModel) viewList() string {
	s := titleStyle.Render("Invoices") + "\n\n"
	s += m.viewStatus()

	if len(m.invoices) == 0 && m.err == nil {
		s += subtitleStyle.Render("  No invoices yet. Create one with 'workbench invoices create'.")
		return s
	}

	s += subtitleStyle.Render(fmt.Sprintf(
		"  %-14s  %-20s  %-16s  %12s  %s",
		"Number", "Customer", "Subject", "Total", "Status",
	)) + "\n"

	for i, inv := range m.invoices {
		row := fmt.Sprintf("  %-14s  %-20s  %-16s  %12s  ",
			inv.InvoiceNumber,
			truncateStr(m.customerName(inv.CustomerID), 20),
			inv.Subject.String(),
			m.money(inv.Total),
		)
		if i == m.cursor {
			row = lipgloss.NewStyle().Bold(true).Foreground(primaryColor).Render(row)
		}
		s += row + statusBadge(inv.Status) + "\n"
	}

	s += "\n" + helpStyle.Render("  j/k: navigate  enter: detail  f: finalize  s: sent  p: paid")
	return s
}

func (m *InvoicesModel) viewDetail() string {
	inv := m.selected
	if inv == nil {
		return "No invoice selected"
	}

	s := titleStyle.Render(fmt.Sprintf("Invoice %s", inv.InvoiceNumber)) + "\n\n"
	s += m.viewStatus()
	s += fmt.Sprintf("  Customer: %s\n", m.customerName(inv.CustomerID))
	s += fmt.Sprintf("  For:      %s\n", inv.Subject)
	if inv.DueDate != nil {
		s += fmt.Sprintf("  Due:      %s\n", inv.DueDate.Format("Jan 02, 2006"))
	}
	if inv.PaidDate != nil {
		s += fmt.Sprintf("  Paid:     %s\n", inv.PaidDate.Format("Jan 02, 2006"))
	}
	s += fmt.Sprintf("  Status:   %s\n\n", statusBadge(inv.Status))

	if len(inv.LineItems) == 0 {
		s += subtitleStyle.Render("  No line items") + "\n"
	} else {
		s += subtitleStyle.Render(fmt.Sprintf(
			"  %-35s  %8s  %8s  %12s", "Description", "Hours", "Rate", "Amount",
		)) + "\n"
		for _, item := range inv.LineItems {
			s += fmt.Sprintf("  %-35s  %8.2f  %8.2f  %12s\n",
				truncateStr(item.Description, 35), item.Hours, item.Rate, m.money(item.Amount))
		}
	}

	s += "\n"
	s += fmt.Sprintf("  Subtotal:  %12s\n", m.money(inv.Subtotal))
	if inv.DiscountAmount > 0 {
		s += fmt.Sprintf("  Discount:  %12s\n", "-"+m.money(inv.DiscountAmount))
	}
	s += fmt.Sprintf("  Tax:       %12s\n", m.money(inv.TaxAmount))
	s += lipgloss.NewStyle().Bold(true).Render(
		fmt.Sprintf("  Total:     %12s", m.money(inv.Total)),
	) + "\n"

	s += "\n" + helpStyle.Render("  esc: back  f: finalize  s: sent  p: paid  e: export .txt")
	return s
}

func statusBadge(status domain.InvoiceStatus) string {
	switch status {
	case domain.InvoiceStatusDraft:
		return draftStyle.Render("draft")
	case domain.InvoiceStatusFinalized:
		return lipgloss.NewStyle().Foreground(primaryColor).Render("finalized")
	case domain.InvoiceStatusSent:
		return lipgloss.NewStyle().Foreground(accentColor).Render("sent")
	case domain.InvoiceStatusPaid:
		return statusStyle.Render("paid")
	case domain.InvoiceStatusOverdue:
		return overdueStyle.Render("OVERDUE")
	}
	return string(status)
}
