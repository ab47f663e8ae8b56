package tui

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"go.uber.org/zap"

	"github.com/andy/workbench/internal/app"
	"github.com/andy/workbench/internal/domain"
	"github.com/andy/workbench/internal/tracking"
)

// Screen represents the current active screen
type Screen int

const (
	ScreenDashboard Screen = iota
	ScreenTracker
	ScreenCustomers
	ScreenInvoices
	ScreenSettings
)

func (s Screen) String() string {
	switch s {
	case ScreenDashboard:
		return "Dashboard"
	case ScreenTracker:
		return "Tracker"
	case ScreenCustomers:
		return "Customers"
	case ScreenInvoices:
		return "Invoices"
	case ScreenSettings:
		return "Settings"
	default:
		return "Unknown"
	}
}

// Model is the root Bubble Tea model. It owns the one-second tick and the
// quarter-hour chimes so they keep running whatever screen is shown.
type Model struct {
	app           *app.App
	currentScreen Screen
	width         int
	height        int

	screens map[Screen]tea.Model

	chimes   map[int64]*tracking.Chime // by time log ID
	notifier tracking.Notifier

	checkedFirstRun bool
	quitArmed       bool

	err     error
	warnMsg string
}

// New creates a new root model. Chimes ring the bell on bell when the
// tracker chime is enabled in the config.
func New(a *app.App, bell io.Writer) Model {
	return Model{
		app:           a,
		currentScreen: ScreenDashboard,
		screens:       map[Screen]tea.Model{ScreenDashboard: NewDashboardModel(a)},
		chimes:        make(map[int64]*tracking.Chime),
		notifier:      chimeNotifier(a, bell),
	}
}

func chimeNotifier(a *app.App, bell io.Writer) tracking.Notifier {
	return tracking.NotifierFunc(func(elapsed time.Duration) {
		if a.Config.Tracker.Chime && bell != nil {
			tracking.BellNotifier{W: bell}.Chime(elapsed)
		}
		a.Logger.Info("quarter hour", zap.String("elapsed", tracking.FormatElapsed(elapsed)))
	})
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(m.checkFirstRun(), m.screens[ScreenDashboard].Init(), tick())
}

// checkFirstRun checks if any customers exist in the database
func (m *Model) checkFirstRun() tea.Cmd {
	return func() tea.Msg {
		customers, err := m.app.CustomerRepo.List(context.Background(), false)
		if err != nil {
			return firstRunCheckMsg{hasCustomers: true}
		}
		return firstRunCheckMsg{hasCustomers: len(customers) > 0}
	}
}

func newScreen(a *app.App, screen Screen) tea.Model {
	switch screen {
	case ScreenDashboard:
		return NewDashboardModel(a)
	case ScreenTracker:
		return NewTrackerModel(a)
	case ScreenCustomers:
		return NewCustomersModel(a)
	case ScreenInvoices:
		return NewInvoicesModel(a)
	case ScreenSettings:
		return NewSettingsModel(a)
	}
	return nil
}

// initScreen lazy-initializes a screen on first visit and asks it to reload
// its data on later visits.
func (m *Model) initScreen(screen Screen) tea.Cmd {
	if _, ok := m.screens[screen]; !ok {
		s := newScreen(m.app, screen)
		m.screens[screen] = s
		return s.Init()
	}
	return func() tea.Msg { return RefreshDataMsg{} }
}

func (m *Model) switchTo(screen Screen) tea.Cmd {
	m.currentScreen = screen
	return m.initScreen(screen)
}

// InputCapturer is implemented by screens that capture keyboard input.
// When active, global navigation keys are suppressed.
type InputCapturer interface {
	IsCapturingInput() bool
}

func (m *Model) activeScreenCapturingInput() bool {
	if ic, ok := m.screens[m.currentScreen].(InputCapturer); ok {
		return ic.IsCapturingInput()
	}
	return false
}

// checkChimes rings once per quarter hour for every running log of the user
func (m *Model) checkChimes(now time.Time) {
	open, err := m.app.TrackerService.ListOpen(context.Background(), m.app.User.ID)
	if err != nil {
		m.app.Logger.Warn("could not list running logs", zap.Error(err))
		return
	}

	running := make(map[int64]bool, len(open))
	for _, log := range open {
		running[log.ID] = true
		c, ok := m.chimes[log.ID]
		if !ok {
			c = tracking.NewChime(m.notifier)
			m.chimes[log.ID] = c
		}
		c.Check(domain.Elapsed(log, now), now)
	}
	for id := range m.chimes {
		if !running[id] {
			delete(m.chimes, id)
		}
	}
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case TickMsg:
		m.checkChimes(msg.Now)
		cmd := m.forward(msg)
		return m, tea.Batch(cmd, tick())

	case tea.KeyMsg:
		m.warnMsg = ""
		wasArmed := m.quitArmed
		m.quitArmed = false

		if !m.activeScreenCapturingInput() {
			switch {
			case key.Matches(msg, DefaultKeyMap.Quit):
				// logs keep running after exit; warn once so it is not a surprise
				if len(m.chimes) > 0 && !wasArmed {
					m.quitArmed = true
					m.warnMsg = fmt.Sprintf("%d log(s) still running. Press q again to quit anyway.", len(m.chimes))
					return m, nil
				}
				return m, tea.Quit
			case key.Matches(msg, DefaultKeyMap.Dashboard):
				return m, m.switchTo(ScreenDashboard)
			case key.Matches(msg, DefaultKeyMap.Tracker):
				return m, m.switchTo(ScreenTracker)
			case key.Matches(msg, DefaultKeyMap.Customers):
				return m, m.switchTo(ScreenCustomers)
			case key.Matches(msg, DefaultKeyMap.Invoices):
				return m, m.switchTo(ScreenInvoices)
			case key.Matches(msg, DefaultKeyMap.Settings):
				return m, m.switchTo(ScreenSettings)
			}
		}

	case firstRunCheckMsg:
		if !m.checkedFirstRun && !msg.hasCustomers {
			m.checkedFirstRun = true
			initCmd := m.switchTo(ScreenCustomers)
			openFormCmd := func() tea.Msg { return OpenNewCustomerFormMsg{} }
			return m, tea.Batch(initCmd, openFormCmd)
		}
		m.checkedFirstRun = true
		return m, nil

	case SwitchScreenMsg:
		return m, m.switchTo(msg.Screen)

	case ErrorMsg:
		m.err = msg.Err
		return m, nil
	}

	return m, m.forward(msg)
}

// forward routes a message to the current screen
func (m *Model) forward(msg tea.Msg) tea.Cmd {
	screen, ok := m.screens[m.currentScreen]
	if !ok {
		return nil
	}
	var cmd tea.Cmd
	m.screens[m.currentScreen], cmd = screen.Update(msg)
	return cmd
}

func (m Model) View() string {
	if m.width == 0 {
		return "Loading..."
	}

	header := headerStyle.Render(fmt.Sprintf("workbench - %s", m.currentScreen))
	footer := footerStyle.Render("[G]Dashboard  [T]racker  [C]ustomers  [I]nvoices  [,] Settings  [Q]uit")

	content := "Loading..."
	if screen, ok := m.screens[m.currentScreen]; ok {
		content = screen.View()
	}

	errorDisplay := ""
	if m.warnMsg != "" {
		errorDisplay = lipgloss.NewStyle().Foreground(warningColor).Render("\n" + m.warnMsg)
	} else if m.err != nil {
		errorDisplay = errStyle.Render(fmt.Sprintf("\nError: %s", m.err.Error()))
	}

	innerWidth := max(m.width-6, 20)
	dividerWidth := max(innerWidth-12, 10)
	divider := lipgloss.NewStyle().Foreground(borderColor).Render(strings.Repeat("─", dividerWidth))

	body := fmt.Sprintf("%s\n%s\n\n%s%s\n\n%s\n%s", header, divider, content, errorDisplay, divider, footer)

	frame := appBorderStyle.
		Width(innerWidth).
		Height(m.height - 4)
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, frame.Render(body))
}

// Run starts the TUI
func Run(a *app.App) error {
	p := tea.NewProgram(New(a, os.Stderr), tea.WithAltScreen())
	_, err := p.Run()
	return err
}
