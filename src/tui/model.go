// Package tui provides the terminal dashboard for browsing repository build
// health.
package tui

import (
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"ci-build-watcher/src/analytics"
	"ci-build-watcher/src/render"
	"ci-build-watcher/src/store"
)

// Model is the Bubble Tea model for the dashboard. It shows a repository list
// on the left and the selected repository's reports on the right.
type Model struct {
	store     store.Store
	engine    *analytics.Engine
	styles    *StyleConfig
	now       func() time.Time
	staleDays int

	list     list.Model
	detail   viewport.Model
	items    []Item
	overview analytics.Overview
	selected string

	width  int
	height int
	ready  bool
}

// Option configures a Model.
type Option func(*Model)

// WithClock replaces time.Now for computing repository ages.
func WithClock(now func() time.Time) Option {
	return func(m *Model) {
		m.now = now
	}
}

// WithStaleDays sets the staleness threshold used for markers and the overview.
func WithStaleDays(days int) Option {
	return func(m *Model) {
		m.staleDays = days
	}
}

// WithStyles replaces the default palette.
func WithStyles(styles *StyleConfig) Option {
	return func(m *Model) {
		m.styles = styles
	}
}

// NewModel creates a dashboard over st and engine.
func NewModel(st store.Store, engine *analytics.Engine, opts ...Option) Model {
	m := Model{
		store:     st,
		engine:    engine,
		styles:    DefaultStyles(),
		now:       time.Now,
		staleDays: analytics.DefaultStaleDays,
	}
	for _, opt := range opts {
		opt(&m)
	}

	m.items = m.buildItems()
	m.overview = engine.BuildHealthOverview(m.staleDays)

	l := list.New(toListItems(m.items), NewDelegate(m.styles), 0, 0)
	l.SetShowStatusBar(false)
	l.SetShowTitle(false)
	l.SetFilteringEnabled(false)
	l.SetShowHelp(false)
	m.list = l

	m.detail = viewport.New(0, 0)

	return m
}

// Run starts the dashboard on the terminal's alternate screen.
func Run(st store.Store, engine *analytics.Engine, opts ...Option) error {
	p := tea.NewProgram(NewModel(st, engine, opts...), tea.WithAltScreen())
	_, err := p.Run()
	return err
}

func (m Model) buildItems() []Item {
	now := m.now()
	repos := m.store.ListRepositories()

	items := make([]Item, len(repos))
	for i, repo := range repos {
		items[i] = Item{
			Repo:  repo,
			Stale: store.IsStale(repo, now, m.staleDays),
			Age:   now.Sub(repo.LastBuildAt),
		}
	}
	return items
}

func toListItems(items []Item) []list.Item {
	out := make([]list.Item, len(items))
	for i, item := range items {
		out[i] = item
	}
	return out
}

// Init initializes the model. Required by tea.Model interface.
func (m Model) Init() tea.Cmd {
	return nil
}

// Update handles messages and updates the model state.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.ready = true
		m.resizeComponents()
		m.refreshDetail(true)
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		case "ctrl+d", "pgdown":
			m.detail.SetYOffset(m.detail.YOffset + max(1, m.detail.Height/2))
			return m, nil
		case "ctrl+u", "pgup":
			m.detail.SetYOffset(m.detail.YOffset - max(1, m.detail.Height/2))
			return m, nil
		}
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	m.refreshDetail(false)
	return m, cmd
}

// SelectedRepository returns the name of the highlighted repository.
func (m Model) SelectedRepository() (string, bool) {
	item, ok := m.list.SelectedItem().(Item)
	if !ok {
		return "", false
	}
	return item.Repo.Name, true
}

// refreshDetail rebuilds the detail panel when the selection changed or force
// is set.
func (m *Model) refreshDetail(force bool) {
	name, ok := m.SelectedRepository()
	if !ok || (!force && name == m.selected) {
		return
	}
	m.selected = name
	m.detail.SetContent(TruncateLines(m.detailContent(name), m.detail.Width))
	m.detail.GotoTop()
}

// detailContent renders the reports for one repository.
func (m Model) detailContent(name string) string {
	var sections []string

	status, err := m.engine.RepoStatus(name)
	if err != nil {
		return render.NotFound(name)
	}
	sections = append(sections, render.RepoStatus(status))

	if rate, err := m.engine.RepoFailureRate(name, analytics.DefaultFailureRateLastN); err == nil {
		sections = append(sections, render.FailureRate(rate))
	}

	sections = append(sections, render.Builds(status.Name, m.engine.ListBuilds(name)))

	title := lipgloss.NewStyle().
		Foreground(m.styles.StatusColor(status.LastBuildStatus)).
		Bold(true).
		Render(status.Name)

	return title + "\n\n" + strings.Join(sections, "\n")
}
