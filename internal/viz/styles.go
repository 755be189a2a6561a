package viz

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

type styles struct {
	canvas  lipgloss.Style
	panel   lipgloss.Style
	header  lipgloss.Style
	label   lipgloss.Style
	value   lipgloss.Style
	graph   lipgloss.Style
	help    lipgloss.Style
	running lipgloss.Style
	paused  lipgloss.Style
}

func newStyles(t Theme) styles {
	return styles{
		canvas: lipgloss.NewStyle().Foreground(t.Canvas).Padding(1, 2),
		panel: lipgloss.NewStyle().
			Border(lipgloss.NormalBorder(), false, false, false, true).
			BorderForeground(t.Border).
			Padding(1, 2).
			Width(44),
		header:  lipgloss.NewStyle().Foreground(t.Title).Bold(true).MarginBottom(1),
		label:   lipgloss.NewStyle().Foreground(t.Label).Width(10),
		value:   lipgloss.NewStyle().Foreground(t.Value),
		graph:   lipgloss.NewStyle().Foreground(t.Graph).Padding(1, 0),
		help:    lipgloss.NewStyle().Foreground(t.Border).MarginTop(1),
		running: lipgloss.NewStyle().Bold(true).Foreground(t.Running),
		paused:  lipgloss.NewStyle().Bold(true).Foreground(t.Paused),
	}
}

func (s styles) row(label, value string) string {
	return s.label.Render(label) + s.value.Render(value) + "\n"
}

// ProgressBar renders fraction in [0, 1] as a bar of the given width.
func ProgressBar(fraction float64, width int) string {
	filled := int(fraction * float64(width))
	if filled > width {
		filled = width
	}
	if filled < 0 {
		filled = 0
	}
	return strings.Repeat("█", filled) + strings.Repeat("░", width-filled)
}
