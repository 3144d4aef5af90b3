package tui

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
)

// panelDimensions holds calculated layout dimensions
type panelDimensions struct {
	availableHeight int
	leftPanelWidth  int
	rightPanelWidth int
}

// calculateDimensions computes panel sizes based on terminal dimensions.
func (m Model) calculateDimensions() panelDimensions {
	// header (1) + help line (1) + panel borders (2)
	availableHeight := m.height - 4
	if availableHeight < 3 {
		availableHeight = 3
	}

	// Two-panel layout: Repositories (40%) | Reports (60%)
	leftPanelWidth := int(float64(m.width) * 0.4)
	rightPanelWidth := m.width - leftPanelWidth

	return panelDimensions{
		availableHeight: availableHeight,
		leftPanelWidth:  leftPanelWidth,
		rightPanelWidth: rightPanelWidth,
	}
}

// resizeComponents handles window resize events
func (m *Model) resizeComponents() {
	dims := m.calculateDimensions()

	m.list.SetSize(dims.leftPanelWidth-2, dims.availableHeight)
	m.detail.Width = dims.rightPanelWidth - 2
	m.detail.Height = dims.availableHeight
}

// View renders the complete dashboard layout
func (m Model) View() string {
	if !m.ready {
		return "\n  Initializing..."
	}

	if len(m.items) == 0 {
		return "No repositories loaded.\n"
	}

	dims := m.calculateDimensions()

	leftPanel := m.styles.PanelStyle().
		Width(dims.leftPanelWidth - 2).
		Height(dims.availableHeight).
		Render(m.list.View())
	rightPanel := m.styles.PanelStyle().
		Width(dims.rightPanelWidth - 2).
		Height(dims.availableHeight).
		Render(m.detail.View())

	mainContent := lipgloss.JoinHorizontal(lipgloss.Top, leftPanel, rightPanel)

	return lipgloss.JoinVertical(lipgloss.Left, m.renderHeader(), mainContent, m.renderHelpText())
}

// renderHeader renders the title with the overview counts
func (m Model) renderHeader() string {
	o := m.overview
	summary := fmt.Sprintf("%d repos • %d builds • %d failed • %d stale (> %dd)",
		o.TotalRepositories, o.TotalBuilds, o.FailedBuilds, o.StaleRepositories, o.StaleDays)

	title := m.styles.TitleStyle().Render("CI Build Watcher")
	counts := lipgloss.NewStyle().Foreground(m.styles.TextSecondary).Render(Truncate(summary, max(0, m.width-20), true))

	return lipgloss.JoinHorizontal(lipgloss.Top, title, counts)
}

// renderHelpText renders the key help at the bottom
func (m Model) renderHelpText() string {
	keyStyle := lipgloss.NewStyle().Foreground(m.styles.PrimaryBlue).Bold(true)
	sepStyle := lipgloss.NewStyle().Foreground(m.styles.TextSecondary)

	helpText := fmt.Sprintf("%s: Nav %s %s: Scroll reports %s %s: Quit",
		keyStyle.Render("↑/↓ j/k"), sepStyle.Render("•"),
		keyStyle.Render("ctrl+d/ctrl+u"), sepStyle.Render("•"),
		keyStyle.Render("q"))

	return m.styles.HelpStyle().Render(helpText)
}
