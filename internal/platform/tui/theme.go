package tui

import "github.com/charmbracelet/lipgloss"

// Theme contains the console's visual styles.
type Theme struct {
	Title     lipgloss.Style
	Running   lipgloss.Style
	Paused    lipgloss.Style
	Offline   lipgloss.Style
	Label     lipgloss.Style
	Value     lipgloss.Style
	Separator lipgloss.Style

	// Log line styles by origin
	Event    lipgloss.Style
	Response lipgloss.Style
	NewGame  lipgloss.Style
	Error    lipgloss.Style
	Info     lipgloss.Style

	Prompt lipgloss.Style
	Frame  lipgloss.Style
}

// DefaultTheme returns the default visual theme.
func DefaultTheme() Theme {
	return Theme{
		Title:     lipgloss.NewStyle().Foreground(lipgloss.Color("51")).Bold(true),
		Running:   lipgloss.NewStyle().Foreground(lipgloss.Color("46")).Bold(true),
		Paused:    lipgloss.NewStyle().Foreground(lipgloss.Color("226")).Bold(true),
		Offline:   lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Bold(true),
		Label:     lipgloss.NewStyle().Foreground(lipgloss.Color("245")),
		Value:     lipgloss.NewStyle().Foreground(lipgloss.Color("255")),
		Separator: lipgloss.NewStyle().Foreground(lipgloss.Color("240")),

		Event:    lipgloss.NewStyle().Foreground(lipgloss.Color("75")),
		Response: lipgloss.NewStyle().Foreground(lipgloss.Color("213")),
		NewGame:  lipgloss.NewStyle().Foreground(lipgloss.Color("208")).Bold(true),
		Error:    lipgloss.NewStyle().Foreground(lipgloss.Color("196")),
		Info:     lipgloss.NewStyle().Foreground(lipgloss.Color("245")),

		Prompt: lipgloss.NewStyle().Foreground(lipgloss.Color("51")),
		Frame: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("240")).
			Padding(0, 1),
	}
}
