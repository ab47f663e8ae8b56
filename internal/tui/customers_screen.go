package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/andy/workbench/internal/app"
	"github.com/andy/workbench/internal/domain"
)

const (
	customerFieldName = iota
	customerFieldEmail
	customerFieldFriend
	customerFieldNotes
)

// CustomersModel lists customers with create and edit forms
type CustomersModel struct {
	app          *app.App
	customers    []*domain.Customer
	cursor       int
	showArchived bool
	loading      bool
	err          error
	statusMsg    string

	form            *form
	editingID       int64 // 0 for a new customer
	autoNewCustomer bool  // open the form once data has loaded
}

type customersDataMsg struct {
	customers []*domain.Customer
	err       error
}

type customerSavedMsg struct {
	name string
	err  error
}

func NewCustomersModel(a *app.App) tea.Model {
	return &CustomersModel{app: a, loading: true}
}

// IsCapturingInput returns true when the form is active
func (m *CustomersModel) IsCapturingInput() bool {
	return m.form != nil
}

func (m *CustomersModel) Init() tea.Cmd {
	return m.loadCustomers()
}

func (m *CustomersModel) loadCustomers() tea.Cmd {
	return func() tea.Msg {
		customers, err := m.app.CustomerRepo.List(context.Background(), m.showArchived)
		return customersDataMsg{customers: customers, err: err}
	}
}

func (m *CustomersModel) openForm(editing *domain.Customer) tea.Cmd {
	var name, email, notes string
	friend := "no"
	m.editingID = 0
	if editing != nil {
		name, email, notes = editing.Name, editing.Email, editing.Notes
		if editing.IsFriend {
			friend = "yes"
		}
		m.editingID = editing.ID
	}

	m.form = newForm(
		formField{label: "Name:", placeholder: "Customer name", value: name, width: 40},
		formField{label: "Email:", placeholder: "email@example.com", value: email, width: 40},
		formField{label: "Friend (yes/no):", placeholder: "no", value: friend, width: 10},
		formField{label: "Notes:", placeholder: "Optional notes", value: notes, width: 50},
	)
	return m.form.start()
}

func parseYesNo(s string) (bool, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "n", "no", "false":
		return false, nil
	case "y", "yes", "true":
		return true, nil
	}
	return false, fmt.Errorf("expected yes or no, got %q", s)
}

func (m *CustomersModel) saveCustomer() tea.Cmd {
	f := m.form
	editingID := m.editingID
	return func() tea.Msg {
		ctx := context.Background()

		friend, err := parseYesNo(f.value(customerFieldFriend))
		if err != nil {
			return customerSavedMsg{err: err}
		}

		customer := domain.NewCustomer(f.value(customerFieldName))
		if editingID > 0 {
			customer, err = m.app.CustomerRepo.GetByID(ctx, editingID)
			if err != nil {
				return customerSavedMsg{err: err}
			}
			customer.Name = strings.TrimSpace(f.value(customerFieldName))
		}
		customer.Email = f.value(customerFieldEmail)
		customer.Notes = f.value(customerFieldNotes)
		customer.IsFriend = friend

		if err := customer.Validate(); err != nil {
			return customerSavedMsg{err: err}
		}

		if editingID > 0 {
			err = m.app.CustomerRepo.Update(ctx, customer)
		} else {
			err = m.app.CustomerRepo.Create(ctx, customer)
		}
		if err != nil {
			return customerSavedMsg{err: err}
		}
		return customerSavedMsg{name: customer.Name}
	}
}

func (m *CustomersModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if _, ok := msg.(OpenNewCustomerFormMsg); ok {
		if m.loading {
			m.autoNewCustomer = true
			return m, nil
		}
		return m, m.openForm(nil)
	}

	switch msg := msg.(type) {
	case RefreshDataMsg:
		if m.form != nil {
			return m, nil
		}
		m.loading = true
		return m, m.loadCustomers()

	case customersDataMsg:
		m.loading = false
		m.err = msg.err
		if msg.err == nil {
			m.customers = msg.customers
			if m.cursor >= len(m.customers) {
				m.cursor = max(0, len(m.customers)-1)
			}
		}
		if m.autoNewCustomer {
			m.autoNewCustomer = false
			return m, m.openForm(nil)
		}
		return m, nil

	case customerSavedMsg:
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}
		m.form = nil
		m.err = nil
		m.statusMsg = fmt.Sprintf("Saved: %s", msg.name)
		m.loading = true
		return m, m.loadCustomers()

	case tea.KeyMsg:
		if m.form != nil {
			cmd, submit, cancel := handleFormKey(m.form, msg)
			switch {
			case cancel:
				m.form = nil
				m.err = nil
				return m, nil
			case submit:
				return m, m.saveCustomer()
			}
			return m, cmd
		}

		if m.loading {
			return m, nil
		}
		m.statusMsg = ""
		m.err = nil

		switch {
		case key.Matches(msg, DefaultKeyMap.Up):
			if m.cursor > 0 {
				m.cursor--
			}
		case key.Matches(msg, DefaultKeyMap.Down):
			if m.cursor < len(m.customers)-1 {
				m.cursor++
			}
		case key.Matches(msg, DefaultKeyMap.New):
			return m, m.openForm(nil)
		case key.Matches(msg, DefaultKeyMap.Select):
			if m.cursor < len(m.customers) {
				return m, m.openForm(m.customers[m.cursor])
			}
		case msg.String() == "a":
			if m.cursor < len(m.customers) {
				return m, m.toggleArchive(m.customers[m.cursor])
			}
		case msg.String() == "h":
			m.showArchived = !m.showArchived
			m.cursor = 0
			m.loading = true
			return m, m.loadCustomers()
		}
	}

	// text input blink and similar
	if m.form != nil {
		return m, m.form.update(msg)
	}
	return m, nil
}

func (m *CustomersModel) toggleArchive(c *domain.Customer) tea.Cmd {
	return func() tea.Msg {
		ctx := context.Background()
		var err error
		if c.IsArchived {
			err = m.app.CustomerRepo.Unarchive(ctx, c.ID)
		} else {
			err = m.app.CustomerRepo.Archive(ctx, c.ID)
		}
		if err != nil {
			return customersDataMsg{err: err}
		}
		return m.loadCustomers()()
	}
}

func (m *CustomersModel) View() string {
	if m.form != nil {
		return m.viewForm()
	}
	return m.viewList()
}

func (m *CustomersModel) viewForm() string {
	var s string
	switch {
	case m.editingID > 0:
		s += titleStyle.Render("Edit Customer") + "\n\n"
	case len(m.customers) == 0:
		s += titleStyle.Render("Welcome to workbench!") + "\n"
		s += subtitleStyle.Render("  Add your first customer to get started.") + "\n\n"
	default:
		s += titleStyle.Render("New Customer") + "\n\n"
	}

	s += m.form.view()

	if m.err != nil {
		s += errStyle.Render(fmt.Sprintf("  Error: %v", m.err)) + "\n\n"
	}
	return s + helpStyle.Render(formHelp)
}

func (m *CustomersModel) viewList() string {
	if m.loading {
		return "Loading customers..."
	}
	if m.err != nil {
		return errStyle.Render(fmt.Sprintf("Error: %v", m.err))
	}

	header := "Customers"
	if m.showArchived {
		header += subtitleStyle.Render("  (showing archived)")
	}
	s := titleStyle.Render(header) + "\n\n"

	if m.statusMsg != "" {
		s += statusStyle.Render("  "+m.statusMsg) + "\n\n"
	}

	if len(m.customers) == 0 {
		s += subtitleStyle.Render("  No customers yet. Press 'n' to add one.") + "\n"
		return s
	}

	for i, c := range m.customers {
		indicator := "  "
		nameStyle := lipgloss.NewStyle()
		if c.IsArchived {
			nameStyle = nameStyle.Foreground(mutedColor)
		}
		if i == m.cursor {
			indicator = "> "
			nameStyle = nameStyle.Bold(true).Foreground(primaryColor)
		}

		name := c.Name
		if c.IsArchived {
			name += " (archived)"
		}
		detail := fmt.Sprintf("    %s tier", c.Tier())
		if c.Email != "" {
			detail += "  |  " + c.Email
		}

		s += nameStyle.Render(indicator+name) + "\n" + subtitleStyle.Render(detail) + "\n"
	}

	s += "\n" + helpStyle.Render("  j/k: navigate  n: new  enter: edit  a: archive/unarchive  h: toggle archived")
	return s
}
