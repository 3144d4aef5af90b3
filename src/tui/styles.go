package tui

import (
	"github.com/charmbracelet/lipgloss"

	"ci-build-watcher/src/contracts"
)

// StyleConfig holds all customizable style colors for the dashboard.
type StyleConfig struct {
	// Primary colors
	PrimaryBlue    lipgloss.Color
	AccentBlue     lipgloss.Color
	CardBackground lipgloss.Color
	TextPrimary    lipgloss.Color
	TextSecondary  lipgloss.Color
	BorderColor    lipgloss.Color
	SelectedColor  lipgloss.Color

	// Build outcome colors
	SuccessColor lipgloss.Color
	FailedColor  lipgloss.Color
	UnknownColor lipgloss.Color
	StaleColor   lipgloss.Color
}

// DefaultStyles returns the default color palette
func DefaultStyles() *StyleConfig {
	return &StyleConfig{
		PrimaryBlue:    lipgloss.Color("#8AB4F8"),
		AccentBlue:     lipgloss.Color("#4285F4"),
		CardBackground: lipgloss.Color("#2D2D2D"),
		TextPrimary:    lipgloss.Color("#E8EAED"),
		TextSecondary:  lipgloss.Color("#9AA0A6"),
		BorderColor:    lipgloss.Color("#5F6368"),
		SelectedColor:  lipgloss.Color("#303134"),
		SuccessColor:   lipgloss.Color("#34A853"),
		FailedColor:    lipgloss.Color("#EA4335"),
		UnknownColor:   lipgloss.Color("#FBBC04"),
		StaleColor:     lipgloss.Color("#A142F4"),
	}
}

// StatusColor returns the color for a build status.
func (s *StyleConfig) StatusColor(status contracts.Status) lipgloss.Color {
	switch status {
	case contracts.StatusSuccess:
		return s.SuccessColor
	case contracts.StatusFailed:
		return s.FailedColor
	default:
		return s.UnknownColor
	}
}

// TitleStyle returns a title lipgloss style using this config
func (s *StyleConfig) TitleStyle() lipgloss.Style {
	return lipgloss.NewStyle().
		Foreground(s.PrimaryBlue).
		Bold(true).
		Padding(0, 1)
}

// HelpStyle returns a help text lipgloss style using this config
func (s *StyleConfig) HelpStyle() lipgloss.Style {
	return lipgloss.NewStyle().
		Foreground(s.TextSecondary).
		Padding(0, 2)
}

// PanelStyle returns a bordered panel lipgloss style using this config
func (s *StyleConfig) PanelStyle() lipgloss.Style {
	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(s.BorderColor)
}
