package tui

import (
	"fmt"
	"io"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

const (
	// listRenderingOverhead accounts for list padding and the panel border.
	listRenderingOverhead = 4

	statusWidth = 7
	ageWidth    = 5
)

// Delegate renders repositories as single-line table rows.
type Delegate struct {
	styles *StyleConfig
}

// NewDelegate creates a new delegate with the given styles
func NewDelegate(styles *StyleConfig) Delegate {
	return Delegate{styles: styles}
}

// Height returns the height of a list item
func (d Delegate) Height() int {
	return 1
}

// Spacing returns spacing between items
func (d Delegate) Spacing() int {
	return 0
}

// Update handles item updates
func (d Delegate) Update(msg tea.Msg, m *list.Model) tea.Cmd {
	return nil
}

// Render renders a list item
func (d Delegate) Render(w io.Writer, m list.Model, index int, item list.Item) {
	entry, ok := item.(Item)
	if !ok {
		return
	}

	age := "-"
	if !entry.Repo.LastBuildAt.IsZero() {
		age = FormatAge(entry.Age)
	}
	marker := " "
	if entry.Stale {
		marker = "!"
	}

	// Fixed columns: marker (1) + status + age + separators (6)
	nameWidth := m.Width() - 1 - statusWidth - ageWidth - 6 - listRenderingOverhead
	if nameWidth < 4 {
		nameWidth = 4
	}

	status := lipgloss.NewStyle().
		Foreground(d.styles.StatusColor(entry.Repo.LastBuildStatus)).
		Render(TruncateAndPad(string(entry.Repo.LastBuildStatus), statusWidth, false))

	line := fmt.Sprintf("%s %s │ %s │ %s",
		lipgloss.NewStyle().Foreground(d.styles.StaleColor).Render(marker),
		TruncateAndPad(entry.Repo.Name, nameWidth, true),
		status,
		TruncateAndPad(age, ageWidth, false))

	style := lipgloss.NewStyle().Foreground(d.styles.TextSecondary)
	if index == m.Index() {
		style = style.Bold(true).Foreground(d.styles.PrimaryBlue).Background(d.styles.SelectedColor)
	}

	fmt.Fprint(w, style.Render(line))
}
