package tui

import (
	"context"
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/andy/workbench/internal/app"
	"github.com/andy/workbench/internal/domain"
	"github.com/andy/workbench/internal/pricing"
	"github.com/andy/workbench/internal/repository"
	"github.com/andy/workbench/internal/service"
)

// DashboardModel represents the dashboard home screen
type DashboardModel struct {
	app *app.App

	today       *service.DaySummary
	outstanding float64
	running     []*domain.TimeLog
	recent      []*domain.TimeLog
	names       map[domain.Subject]string
	now         time.Time

	loading bool
	err     error
}

type dashboardDataMsg struct {
	today       *service.DaySummary
	outstanding float64
	running     []*domain.TimeLog
	recent      []*domain.TimeLog
	names       map[domain.Subject]string
	err         error
}

func NewDashboardModel(a *app.App) tea.Model {
	return &DashboardModel{
		app:     a,
		loading: true,
		now:     time.Now(),
		names:   make(map[domain.Subject]string),
	}
}

func (m *DashboardModel) Init() tea.Cmd {
	return m.loadData()
}

func (m *DashboardModel) loadData() tea.Cmd {
	return func() tea.Msg {
		ctx := context.Background()
		now := time.Now()
		userID := m.app.User.ID
		msg := dashboardDataMsg{names: make(map[domain.Subject]string)}

		today, err := m.app.ReportService.TodayTotal(ctx, userID, now)
		if err != nil {
			msg.err = fmt.Errorf("today: %w", err)
			return msg
		}
		msg.today = today

		msg.outstanding, err = m.app.ReportService.GetOutstandingTotal(ctx)
		if err != nil {
			msg.err = fmt.Errorf("outstanding: %w", err)
			return msg
		}

		msg.running, err = m.app.TrackerService.ListOpen(ctx, userID)
		if err != nil {
			msg.err = fmt.Errorf("running logs: %w", err)
			return msg
		}

		weekAgo := now.AddDate(0, 0, -7)
		msg.recent, err = m.app.TimeLogRepo.List(ctx, repository.TimeLogFilter{
			UserID:      &userID,
			StartedFrom: &weekAgo,
			ClosedOnly:  true,
		})
		if err != nil {
			msg.err = fmt.Errorf("recent logs: %w", err)
			return msg
		}

		for _, log := range append(append([]*domain.TimeLog{}, msg.running...), msg.recent...) {
			s := log.Subject()
			if _, ok := msg.names[s]; !ok {
				msg.names[s] = m.subjectName(ctx, s)
			}
		}
		return msg
	}
}

func (m *DashboardModel) subjectName(ctx context.Context, s domain.Subject) string {
	switch s.Kind {
	case domain.SubjectProject:
		if p, err := m.app.ProjectRepo.GetByID(ctx, s.ID); err == nil {
			return p.Name
		}
	case domain.SubjectPrintJob:
		if j, err := m.app.PrintJobRepo.GetByID(ctx, s.ID); err == nil {
			return j.Name
		}
	}
	return s.String()
}

func (m *DashboardModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case dashboardDataMsg:
		m.loading = false
		m.err = msg.err
		m.today = msg.today
		m.outstanding = msg.outstanding
		m.running = msg.running
		m.recent = msg.recent
		m.names = msg.names
		return m, nil

	case TickMsg:
		m.now = msg.Now
		// pick up a finished quarter or a log started from the CLI
		if msg.Now.Second() == 0 {
			return m, m.loadData()
		}
		return m, nil

	case RefreshDataMsg:
		m.loading = true
		return m, m.loadData()
	}

	return m, nil
}

func (m *DashboardModel) View() string {
	if m.loading {
		return "Loading dashboard..."
	}
	if m.err != nil {
		return errStyle.Render(fmt.Sprintf("Error: %v", m.err))
	}

	currency := m.app.Config.Invoice.Currency
	s := fmt.Sprintf("  Today:  %-14s  Outstanding:  %s\n",
		pricing.FormatDurationHuman(m.today.Duration),
		formatMoney(currency, m.outstanding),
	)

	s += "\n"
	if len(m.running) == 0 {
		s += subtitleStyle.Render("  Nothing running") + "\n"
	} else {
		s += "  Running\n"
		for _, log := range m.running {
			s += fmt.Sprintf("  %s %-30s [%s]\n",
				runningStyle.Render("●"),
				truncateStr(m.names[log.Subject()], 30),
				clockStyle.Render(formatClock(domain.Elapsed(log, m.now))),
			)
		}
	}

	s += "\n" + m.renderRecent()
	return s
}

func (m *DashboardModel) renderRecent() string {
	header := "  Recent Logs (Last 7 Days)\n"
	if len(m.recent) == 0 {
		return header + subtitleStyle.Render("  No recent logs") + "\n"
	}

	s := header
	// newest first
	shown := 0
	for i := len(m.recent) - 1; i >= 0 && shown < 8; i-- {
		log := m.recent[i]
		s += fmt.Sprintf("  %-7s %-30s %8s  %s\n",
			log.StartTime.Format("Jan 2"),
			truncateStr(m.names[log.Subject()], 30),
			pricing.FormatDurationHuman(domain.Elapsed(log, m.now)),
			truncateStr(log.Note, 30),
		)
		shown++
	}
	return s
}
