package browse

import (
	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/lipgloss"
)

type styles struct {
	title    lipgloss.Style
	header   lipgloss.Style
	selected lipgloss.Style
	status   lipgloss.Style
	err      lipgloss.Style
	prompt   lipgloss.Style
	frame    lipgloss.Style
}

func newStyles() styles {
	return styles{
		title:    lipgloss.NewStyle().Bold(true),
		header:   lipgloss.NewStyle().Foreground(lipgloss.Color("241")),
		selected: lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("159")),
		status:   lipgloss.NewStyle().Foreground(lipgloss.Color("245")),
		err:      lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("203")),
		prompt:   lipgloss.NewStyle().Foreground(lipgloss.Color("69")),
		frame:    lipgloss.NewStyle().BorderStyle(lipgloss.NormalBorder()).BorderForeground(lipgloss.Color("240")),
	}
}

func tableStyles() table.Styles {
	s := table.DefaultStyles()
	s.Header = s.Header.Bold(true).BorderStyle(lipgloss.NormalBorder()).BorderForeground(lipgloss.Color("240")).BorderBottom(true)
	s.Selected = s.Selected.Bold(true)
	return s
}
