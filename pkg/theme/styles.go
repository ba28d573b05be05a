package theme

import (
	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/lipgloss"
)

// Styles is the set of lipgloss styles derived from a Theme.
type Styles struct {
	Title        lipgloss.Style
	StatusBar    lipgloss.Style
	Connected    lipgloss.Style
	Disconnected lipgloss.Style
	Hint         lipgloss.Style
	Note         lipgloss.Style
	Table        table.Styles
}

// NewStyles builds the lipgloss styles for t.
func NewStyles(t Theme) Styles {
	ts := table.DefaultStyles()
	ts.Header = ts.Header.
		Bold(true).
		Foreground(lipgloss.Color(t.Accent)).
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(lipgloss.Color(t.Border)).
		BorderBottom(true)
	ts.Cell = ts.Cell.Foreground(lipgloss.Color(t.Foreground))
	ts.Selected = ts.Selected.
		Foreground(lipgloss.Color(t.Foreground)).
		Background(lipgloss.Color(t.Selected)).
		Bold(false)

	return Styles{
		Title:        lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color(t.Accent)),
		StatusBar:    lipgloss.NewStyle().Foreground(lipgloss.Color(t.Foreground)),
		Connected:    lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color(t.StatusOK)),
		Disconnected: lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color(t.StatusError)),
		Hint:         lipgloss.NewStyle().Foreground(lipgloss.Color(t.Dim)),
		Note:         lipgloss.NewStyle().Foreground(lipgloss.Color(t.StatusError)),
		Table:        ts,
	}
}
