package tui

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/aretw0/pocket/pkg/prefs"
)

// Styles holds the lipgloss styles for one theme.
type Styles struct {
	Sidebar  lipgloss.Style
	Detail   lipgloss.Style
	Item     lipgloss.Style
	Selected lipgloss.Style
	Heading  lipgloss.Style
	Muted    lipgloss.Style
	Status   lipgloss.Style
	Error    lipgloss.Style
}

type palette struct {
	fg, muted, accent, accentFg, border, danger lipgloss.Color
}

var palettes = map[prefs.Theme]palette{
	prefs.Light: {fg: "#1f2328", muted: "#6e7781", accent: "#0969da", accentFg: "#ffffff", border: "#d0d7de", danger: "#cf222e"},
	prefs.Dark:  {fg: "#e6edf3", muted: "#8b949e", accent: "#2f81f7", accentFg: "#0d1117", border: "#30363d", danger: "#f85149"},
}

// NewStyles builds the styles for theme. Unknown themes render as light.
func NewStyles(theme prefs.Theme) Styles {
	p, ok := palettes[theme]
	if !ok {
		p = palettes[prefs.Light]
	}
	pane := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(p.border).
		Padding(0, 1)

	return Styles{
		Sidebar:  pane,
		Detail:   pane,
		Item:     lipgloss.NewStyle().Foreground(p.fg),
		Selected: lipgloss.NewStyle().Foreground(p.accentFg).Background(p.accent).Bold(true),
		Heading:  lipgloss.NewStyle().Foreground(p.fg).Bold(true),
		Muted:    lipgloss.NewStyle().Foreground(p.muted),
		Status:   lipgloss.NewStyle().Foreground(p.accent),
		Error:    lipgloss.NewStyle().Foreground(p.danger),
	}
}
