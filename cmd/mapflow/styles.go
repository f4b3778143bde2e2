package main

import "github.com/charmbracelet/lipgloss"

var (
	colorPrimary = lipgloss.Color("#7C3AED")
	colorMuted   = lipgloss.Color("#6B7280")
	colorWarning = lipgloss.Color("#F59E0B")
	colorLink    = lipgloss.Color("#10B981")

	categoryColors = map[string]lipgloss.Color{
		"Trigger":   lipgloss.Color("#EF4444"),
		"Source":    lipgloss.Color("#3B82F6"),
		"Mask":      lipgloss.Color("#6B7280"),
		"Modulizer": lipgloss.Color("#8B5CF6"),
		"Mesh":      lipgloss.Color("#14B8A6"),
		"Layer":     lipgloss.Color("#F97316"),
		"Output":    lipgloss.Color("#22C55E"),
	}

	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(colorPrimary).
			MarginBottom(1)

	partStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(colorMuted).
			Padding(0, 1)

	mutedStyle   = lipgloss.NewStyle().Foreground(colorMuted)
	warningStyle = lipgloss.NewStyle().Foreground(colorWarning).Bold(true)
	linkStyle    = lipgloss.NewStyle().Foreground(colorLink).Italic(true)
	headerStyle  = lipgloss.NewStyle().Bold(true).Underline(true)
)

func categoryStyle(name string) lipgloss.Style {
	s := lipgloss.NewStyle().Bold(true)
	if c, ok := categoryColors[name]; ok {
		s = s.Foreground(c)
	}

	return s
}
