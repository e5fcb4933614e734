// Package cli provides terminal styling for the operator console.
package cli

import "github.com/charmbracelet/lipgloss"

// Theme defines the console color scheme.
type Theme struct {
	Primary lipgloss.Color // accent color for labels and prompts
	Dim     lipgloss.Color // help and secondary text
	Error   lipgloss.Color // failures
}

// DefaultTheme is the default bright green theme.
var DefaultTheme = Theme{
	Primary: lipgloss.Color("#00ff9f"),
	Dim:     lipgloss.Color("#6e7681"),
	Error:   lipgloss.Color("#ff6b6b"),
}

// Styles holds all styles derived from a theme.
type Styles struct {
	Prompt lipgloss.Style
	Label  lipgloss.Style
	Help   lipgloss.Style
	Error  lipgloss.Style
}

// NewStyles creates styles from a theme.
func NewStyles(t Theme) Styles {
	return Styles{
		Prompt: lipgloss.NewStyle().Bold(true).Foreground(t.Primary),
		Label:  lipgloss.NewStyle().Foreground(t.Primary),
		Help:   lipgloss.NewStyle().Foreground(t.Dim),
		Error:  lipgloss.NewStyle().Foreground(t.Error),
	}
}
