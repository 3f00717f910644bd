package page

import "github.com/charmbracelet/lipgloss"

type styles struct {
	title    lipgloss.Style
	header   lipgloss.Style
	checked  lipgloss.Style
	box      lipgloss.Style
	id       lipgloss.Style
	name     lipgloss.Style
	detail   lipgloss.Style
	warning  lipgloss.Style
	section  lipgloss.Style
	empty    lipgloss.Style
	selected lipgloss.Style
}

func newStyles() styles {
	return styles{
		title:    lipgloss.NewStyle().Bold(true),
		header:   lipgloss.NewStyle().Foreground(lipgloss.Color("241")),
		checked:  lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("42")),
		box:      lipgloss.NewStyle().Foreground(lipgloss.Color("244")),
		id:       lipgloss.NewStyle().Foreground(lipgloss.Color("245")).Width(8).Align(lipgloss.Right),
		name:     lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("39")),
		detail:   lipgloss.NewStyle().Foreground(lipgloss.Color("252")),
		warning:  lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("203")),
		section:  lipgloss.NewStyle().MarginTop(1),
		empty:    lipgloss.NewStyle().Faint(true),
		selected: lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("159")),
	}
}
