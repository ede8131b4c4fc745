// Package ui holds the lipgloss presentation primitives of the terminal viewer.
package ui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

var (
	Foreground = lipgloss.AdaptiveColor{Light: "#101F38", Dark: "#f2f2f2"}
	Accent     = lipgloss.Color("#8BC34A")
	Border     = lipgloss.AdaptiveColor{Light: "#dce0e5", Dark: "#2a3850"}
	Muted      = lipgloss.AdaptiveColor{Light: "#9aa3ad", Dark: "#5b6b84"}
)

// Styles groups every style the viewer renders with.
type Styles struct {
	Frame      lipgloss.Style
	Rule       lipgloss.Style
	PanelTitle lipgloss.Style
	Title      lipgloss.Style
	Label      lipgloss.Style
	Trigger    lipgloss.Style
	Focused    lipgloss.Style
	Item       lipgloss.Style
	Control    lipgloss.Style
	Disabled   lipgloss.Style
	Loading    lipgloss.Style
}

func DefaultStyles() Styles {
	return Styles{
		Frame: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(Border).
			Padding(1, 2),
		Rule: lipgloss.NewStyle().
			Border(lipgloss.ThickBorder(), false, false, false, true).
			BorderForeground(Accent).
			PaddingLeft(1),
		PanelTitle: lipgloss.NewStyle().Bold(true).Foreground(Accent),
		Title:      lipgloss.NewStyle().Bold(true).Foreground(Foreground),
		Label:      lipgloss.NewStyle().Bold(true),
		Trigger:    lipgloss.NewStyle().Foreground(Foreground),
		Focused:    lipgloss.NewStyle().Bold(true).Foreground(Accent),
		Item:       lipgloss.NewStyle().PaddingLeft(4),
		Control:    lipgloss.NewStyle().Foreground(Foreground),
		Disabled:   lipgloss.NewStyle().Foreground(Muted).Faint(true),
		Loading:    lipgloss.NewStyle().Italic(true).Foreground(Muted),
	}
}

// Card frames body in a rounded box.
func (s Styles) Card(body string) string {
	return s.Frame.Render(body)
}

// Panel renders a titled block with an accent rule on its left edge.
func (s Styles) Panel(title, body string) string {
	var sb strings.Builder
	sb.WriteString(s.PanelTitle.Render(title))
	if body != "" {
		sb.WriteString("\n")
		sb.WriteString(body)
	}
	return s.Rule.Render(sb.String())
}
