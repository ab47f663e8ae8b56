package tui

import (
	"fmt"
	"strconv"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/andy/workbench/internal/app"
	"github.com/andy/workbench/internal/config"
)

// settings form field indices
const (
	settingsFieldPrefix = iota
	settingsFieldDueDays
	settingsFieldTaxRate
	settingsFieldElectricity
	settingsFieldLabour
	settingsFieldMargin
	settingsFieldChime
)

type settingsSavedMsg struct {
	err error
}

// SettingsModel manages the settings screen
type SettingsModel struct {
	app       *app.App
	form      *form
	err       error
	statusMsg string
}

// NewSettingsModel creates a new settings screen
func NewSettingsModel(a *app.App) tea.Model {
	return &SettingsModel{app: a}
}

// IsCapturingInput returns true when the edit form is active
func (m *SettingsModel) IsCapturingInput() bool {
	return m.form != nil
}

func (m *SettingsModel) Init() tea.Cmd {
	return nil
}

func (m *SettingsModel) openForm() tea.Cmd {
	cfg := m.app.Config
	chime := "no"
	if cfg.Tracker.Chime {
		chime = "yes"
	}

	m.form = newForm(
		formField{label: "Invoice Number Prefix:", placeholder: "WB", value: cfg.Invoice.NumberPrefix, width: 20},
		formField{label: "Default Due Days:", placeholder: "30", value: strconv.Itoa(cfg.Invoice.DefaultDueDays), width: 10},
		formField{label: "Tax Rate (%):", placeholder: "21", value: percent(cfg.Invoice.DefaultTaxRate), width: 10},
		formField{label: "Electricity per Print Hour:", placeholder: "0.35", value: decimal(cfg.Invoice.ElectricityRate), width: 10},
		formField{label: "Labour Base Cost per Unit:", placeholder: "5", value: decimal(cfg.Invoice.LabourBaseCost), width: 10},
		formField{label: "Margin (%):", placeholder: "25", value: percent(cfg.Invoice.MarginRate), width: 10},
		formField{label: "Quarter-hour Chime (yes/no):", placeholder: "yes", value: chime, width: 10},
	)
	return m.form.start()
}

func percent(rate float64) string {
	return strconv.FormatFloat(rate*100, 'f', -1, 64)
}

func decimal(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func parseNonNegative(name, s string) (float64, error) {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil || v < 0 {
		return 0, fmt.Errorf("%s must be a non-negative number", name)
	}
	return v, nil
}

// applySettingsForm validates the form and writes it into cfg
func applySettingsForm(f *form, cfg *config.Config) error {
	prefix := strings.TrimSpace(f.value(settingsFieldPrefix))
	if prefix == "" {
		return fmt.Errorf("invoice prefix is required")
	}

	dueDays, err := strconv.Atoi(strings.TrimSpace(f.value(settingsFieldDueDays)))
	if err != nil || dueDays <= 0 {
		return fmt.Errorf("due days must be a positive number")
	}

	tax, err := parseNonNegative("tax rate", f.value(settingsFieldTaxRate))
	if err != nil {
		return err
	}
	electricity, err := parseNonNegative("electricity rate", f.value(settingsFieldElectricity))
	if err != nil {
		return err
	}
	labour, err := parseNonNegative("labour base cost", f.value(settingsFieldLabour))
	if err != nil {
		return err
	}
	margin, err := parseNonNegative("margin", f.value(settingsFieldMargin))
	if err != nil {
		return err
	}
	chime, err := parseYesNo(f.value(settingsFieldChime))
	if err != nil {
		return err
	}

	cfg.Invoice.NumberPrefix = prefix
	cfg.Invoice.DefaultDueDays = dueDays
	cfg.Invoice.DefaultTaxRate = tax / 100
	cfg.Invoice.ElectricityRate = electricity
	cfg.Invoice.LabourBaseCost = labour
	cfg.Invoice.MarginRate = margin / 100
	cfg.Tracker.Chime = chime
	return nil
}

func (m *SettingsModel) saveSettings() tea.Cmd {
	f := m.form
	return func() tea.Msg {
		if err := applySettingsForm(f, m.app.Config); err != nil {
			return settingsSavedMsg{err: err}
		}
		m.app.ApplyInvoiceSettings()

		if err := m.app.SaveConfig(); err != nil {
			return settingsSavedMsg{err: fmt.Errorf("failed to save config: %w", err)}
		}
		return settingsSavedMsg{}
	}
}

func (m *SettingsModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case settingsSavedMsg:
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}
		m.form = nil
		m.err = nil
		m.statusMsg = "Settings saved"
		return m, nil

	case tea.KeyMsg:
		if m.form != nil {
			cmd, submit, cancel := handleFormKey(m.form, msg)
			switch {
			case cancel:
				m.form = nil
				m.err = nil
				return m, nil
			case submit:
				return m, m.saveSettings()
			}
			return m, cmd
		}

		m.err = nil
		if msg.String() == "enter" {
			m.statusMsg = ""
			return m, m.openForm()
		}
	}

	if m.form != nil {
		return m, m.form.update(msg)
	}
	return m, nil
}

func (m *SettingsModel) View() string {
	if m.form != nil {
		return m.viewForm()
	}
	return m.viewSettings()
}

func (m *SettingsModel) viewSettings() string {
	s := titleStyle.Render("Settings") + "\n\n"

	if m.statusMsg != "" {
		s += statusStyle.Render("  "+m.statusMsg) + "\n\n"
	}

	cfg := m.app.Config
	inv := cfg.Invoice
	money := func(v float64) string { return formatMoney(inv.Currency, v) }

	labelStyle := lipgloss.NewStyle().Bold(true).Width(28)
	valueStyle := lipgloss.NewStyle().Foreground(primaryColor)
	row := func(label, value string) string {
		return fmt.Sprintf("  %s %s\n", labelStyle.Render(label), valueStyle.Render(value))
	}

	s += subtitleStyle.Render("  Invoices") + "\n\n"
	s += row("Number Prefix:", inv.NumberPrefix)
	s += row("Default Due Days:", strconv.Itoa(inv.DefaultDueDays))
	s += row("Default Tax Rate:", percent(inv.DefaultTaxRate)+"%")

	s += "\n" + subtitleStyle.Render("  Print Jobs") + "\n\n"
	s += row("Electricity per Print Hour:", money(inv.ElectricityRate))
	s += row("Labour Base Cost per Unit:", money(inv.LabourBaseCost))
	s += row("Margin:", percent(inv.MarginRate)+"%")
	if inv.LegacyMaterialDoubling {
		s += row("Material Layer:", "legacy (2x electricity)")
	}

	s += "\n" + subtitleStyle.Render("  Tracker") + "\n\n"
	s += row("User:", cfg.User.Name)
	s += row("Quarter-hour Chime:", strconv.FormatBool(cfg.Tracker.Chime))
	s += row("Database:", cfg.Database.Path)

	s += "\n" + helpStyle.Render("  enter: edit settings")
	return s
}

func (m *SettingsModel) viewForm() string {
	s := titleStyle.Render("Edit Settings") + "\n\n"
	s += m.form.view()

	if m.err != nil {
		s += errStyle.Render(fmt.Sprintf("  Error: %v", m.err)) + "\n\n"
	}
	return s + helpStyle.Render(formHelp)
}
