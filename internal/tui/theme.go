// Package tui implements the interactive search window on Bubble Tea.
package tui

import (
	"github.com/charmbracelet/lipgloss"
)

// Theme is a palette plus the styles built from it.
type Theme struct {
	Name string
	// Glamour is the glamour standard style used for page content.
	Glamour string

	TitleBar    lipgloss.Style
	Prompt      lipgloss.Style
	Placeholder lipgloss.Style
	Input       lipgloss.Style

	ItemTitle     lipgloss.Style
	ItemURL       lipgloss.Style
	ItemSnippet   lipgloss.Style
	ItemSelected  lipgloss.Style
	ItemPriority  lipgloss.Style
	PriorityBadge lipgloss.Style
	Separator     lipgloss.Style
	Empty         lipgloss.Style
	Status        lipgloss.Style
	Error         lipgloss.Style
	PageTitle     lipgloss.Style
	PageTab       lipgloss.Style
	PageTabActive lipgloss.Style
	SummaryBox    lipgloss.Style
}

type palette struct {
	background, widget, hover, text string
	link, muted, border, accent    string
}

var (
	darkPalette = palette{
		background: "#212529", widget: "#343A40", hover: "#495057", text: "#FFFFFF",
		link: "#4da3ff", muted: "#999999", border: "#444444", accent: "#f0ad4e",
	}
	lightPalette = palette{
		background: "#dedad6", widget: "#cbc5bf", hover: "#b6afa8", text: "#000000",
		link: "#0066cc", muted: "#666666", border: "#b6afa8", accent: "#a0522d",
	}
)

// NewTheme returns the "light" theme for name "light" and the dark theme
// otherwise.
func NewTheme(name string) Theme {
	p, glam := darkPalette, "dark"
	if name == "light" {
		p, glam = lightPalette, "light"
		name = "light"
	} else {
		name = "dark"
	}
	c := func(s string) lipgloss.Color { return lipgloss.Color(s) }
	return Theme{
		Name:    name,
		Glamour: glam,

		TitleBar:    lipgloss.NewStyle().Foreground(c(p.text)).Background(c(p.widget)).Bold(true).Padding(0, 1),
		Prompt:      lipgloss.NewStyle().Foreground(c(p.link)).Bold(true),
		Placeholder: lipgloss.NewStyle().Foreground(c(p.muted)),
		Input:       lipgloss.NewStyle().Foreground(c(p.text)),

		ItemTitle:     lipgloss.NewStyle().Foreground(c(p.link)).Bold(true),
		ItemURL:       lipgloss.NewStyle().Foreground(c(p.muted)),
		ItemSnippet:   lipgloss.NewStyle().Foreground(c(p.text)),
		ItemSelected:  lipgloss.NewStyle().Background(c(p.hover)),
		ItemPriority:  lipgloss.NewStyle().BorderStyle(lipgloss.ThickBorder()).BorderLeft(true).BorderForeground(c(p.accent)).PaddingLeft(1),
		PriorityBadge: lipgloss.NewStyle().Foreground(c(p.background)).Background(c(p.accent)).Padding(0, 1),
		Separator:     lipgloss.NewStyle().Foreground(c(p.border)),
		Empty:         lipgloss.NewStyle().Foreground(c(p.muted)).Padding(2, 0).Align(lipgloss.Center),
		Status:        lipgloss.NewStyle().Foreground(c(p.muted)).Background(c(p.widget)).Padding(0, 1),
		Error:         lipgloss.NewStyle().Foreground(lipgloss.Color("#ef5350")),
		PageTitle:     lipgloss.NewStyle().Foreground(c(p.text)).Bold(true),
		PageTab:       lipgloss.NewStyle().Foreground(c(p.muted)).Padding(0, 1),
		PageTabActive: lipgloss.NewStyle().Foreground(c(p.text)).Background(c(p.hover)).Padding(0, 1),
		SummaryBox:    lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(c(p.accent)).Padding(0, 1),
	}
}
