package tui

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/andy/workbench/internal/app"
	"github.com/andy/workbench/internal/domain"
	"github.com/andy/workbench/internal/service"
	"github.com/andy/workbench/internal/tracking"
)

// trackable is one row of the tracker: a project or print job
type trackable struct {
	subject domain.Subject
	name    string
	detail  string
}

type trackablesMsg struct {
	items []trackable
	err   error
}

type trackerChangedMsg struct {
	status string
	err    error
}

// TrackerModel lists projects and print jobs and starts or stops their logs
type TrackerModel struct {
	app       *app.App
	items     []trackable
	open      map[domain.Subject]*domain.TimeLog
	cursor    int
	now       time.Time
	loading   bool
	err       error
	statusMsg string
}

func NewTrackerModel(a *app.App) tea.Model {
	return &TrackerModel{
		app:     a,
		open:    make(map[domain.Subject]*domain.TimeLog),
		now:     time.Now(),
		loading: true,
	}
}

func (m *TrackerModel) Init() tea.Cmd {
	return m.loadItems()
}

func (m *TrackerModel) loadItems() tea.Cmd {
	return func() tea.Msg {
		ctx := context.Background()
		var items []trackable

		projects, err := m.app.ProjectRepo.List(ctx, nil, false)
		if err != nil {
			return trackablesMsg{err: err}
		}
		for _, p := range projects {
			detail := "project"
			if p.ParentID != nil {
				detail = fmt.Sprintf("sub-project of #%d", *p.ParentID)
			}
			items = append(items, trackable{subject: p.Subject(), name: p.Name, detail: detail})
		}

		jobs, err := m.app.PrintJobRepo.List(ctx, nil, nil)
		if err != nil {
			return trackablesMsg{err: err}
		}
		for _, j := range jobs {
			if j.Status == domain.PrintJobDone {
				continue
			}
			items = append(items, trackable{
				subject: j.Subject(),
				name:    j.Name,
				detail:  fmt.Sprintf("print job, %d x %.0fg, %s", j.Quantity, j.WeightGrams, j.Status),
			})
		}

		return trackablesMsg{items: items}
	}
}

// refreshOpen reloads the running logs so changes from the CLI show up
func (m *TrackerModel) refreshOpen() {
	open, err := m.app.TrackerService.ListOpen(context.Background(), m.app.User.ID)
	if err != nil {
		m.err = err
		return
	}
	m.open = make(map[domain.Subject]*domain.TimeLog, len(open))
	for _, log := range open {
		m.open[log.Subject()] = log
	}
}

func (m *TrackerModel) toggle(item trackable) tea.Cmd {
	return func() tea.Msg {
		ctx := context.Background()
		userID := m.app.User.ID

		if _, running := m.open[item.subject]; running {
			log, err := m.app.TrackerService.StopOpen(ctx, item.subject, userID)
			if err != nil {
				return trackerChangedMsg{err: err}
			}
			return trackerChangedMsg{status: fmt.Sprintf("Stopped %s after %s",
				item.name, tracking.FormatElapsed(domain.Elapsed(log, time.Now())))}
		}

		if _, err := m.app.TrackerService.Start(ctx, item.subject, userID); err != nil {
			if errors.Is(err, service.ErrTimeLogAlreadyOpen) {
				return trackerChangedMsg{status: item.name + " is already running"}
			}
			return trackerChangedMsg{err: err}
		}
		return trackerChangedMsg{status: "Started " + item.name}
	}
}

func (m *TrackerModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case RefreshDataMsg:
		m.loading = true
		return m, m.loadItems()

	case trackablesMsg:
		m.loading = false
		m.err = msg.err
		if msg.err == nil {
			m.items = msg.items
			if m.cursor >= len(m.items) {
				m.cursor = max(0, len(m.items)-1)
			}
			m.refreshOpen()
		}
		return m, nil

	case trackerChangedMsg:
		m.err = msg.err
		m.statusMsg = msg.status
		m.refreshOpen()
		return m, nil

	case TickMsg:
		m.now = msg.Now
		m.refreshOpen()
		return m, nil

	case tea.KeyMsg:
		if m.loading {
			return m, nil
		}
		m.err = nil
		m.statusMsg = ""

		switch {
		case key.Matches(msg, DefaultKeyMap.Up):
			if m.cursor > 0 {
				m.cursor--
			}
		case key.Matches(msg, DefaultKeyMap.Down):
			if m.cursor < len(m.items)-1 {
				m.cursor++
			}
		case key.Matches(msg, DefaultKeyMap.Select), msg.String() == " ":
			if m.cursor < len(m.items) {
				return m, m.toggle(m.items[m.cursor])
			}
		}
	}

	return m, nil
}

func (m *TrackerModel) View() string {
	if m.loading {
		return "Loading projects and print jobs..."
	}

	s := titleStyle.Render("Tracker") + "\n\n"

	if m.statusMsg != "" {
		s += statusStyle.Render("  "+m.statusMsg) + "\n\n"
	}
	if m.err != nil {
		s += errStyle.Render(fmt.Sprintf("  Error: %v", m.err)) + "\n\n"
	}

	if len(m.items) == 0 {
		s += subtitleStyle.Render("  Nothing to track yet. Add a project or print job from the CLI.") + "\n"
		return s
	}

	for i, item := range m.items {
		indicator := "  "
		if i == m.cursor {
			indicator = "> "
		}

		state := idleStyle.Render("○ --:--:--")
		if log, ok := m.open[item.subject]; ok {
			state = runningStyle.Render("● ") + clockStyle.Render(formatClock(domain.Elapsed(log, m.now)))
		}

		name := truncateStr(item.name, 30)
		if i == m.cursor {
			name = titleStyle.Render(name)
		}
		s += fmt.Sprintf("%s%s  %-30s  %s\n", indicator, state, name, subtitleStyle.Render(item.detail))
	}

	s += "\n" + helpStyle.Render("  j/k: navigate  enter/space: start or stop")
	return s
}
