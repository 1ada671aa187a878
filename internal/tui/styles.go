// Package tui provides the terminal user interface for the preparation
// system.
package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/habibGamal/preparation-system/internal/config"
	"github.com/habibGamal/preparation-system/internal/tui/components"
)

// palette is the set of colors a scheme defines.
type palette struct {
	primary, secondary, accent lipgloss.Color
	muted                      lipgloss.Color
	err, warning, success      lipgloss.Color
}

var palettes = map[config.ColorScheme]palette{
	config.ColorSchemeGreenPhosphor: {
		primary: "#00FF00", secondary: "#00AA00", accent: "#66FF66", muted: "#006600",
		err: "#FF4444", warning: "#FFAA00", success: "#00FF00",
	},
	config.ColorSchemeAmber: {
		primary: "#FFAA00", secondary: "#AA7700", accent: "#FFCC66", muted: "#664400",
		err: "#FF4444", warning: "#FFFF00", success: "#FFAA00",
	},
	config.ColorSchemeWhite: {
		primary: "#FFFFFF", secondary: "#AAAAAA", accent: "#FFFFFF", muted: "#666666",
		err: "#FF4444", warning: "#FFAA00", success: "#00FF00",
	},
}

// Theme contains the style definitions for the TUI.
type Theme struct {
	SecondaryColor lipgloss.Color

	Primary   lipgloss.Style
	Secondary lipgloss.Style
	Accent    lipgloss.Style
	Error     lipgloss.Style
	Warning   lipgloss.Style
	Success   lipgloss.Style
	Muted     lipgloss.Style

	Header    lipgloss.Style
	Footer    lipgloss.Style
	Title     lipgloss.Style
	Label     lipgloss.Style
	Value     lipgloss.Style
	Box       lipgloss.Style
	Alert     lipgloss.Style
	AlertWarn lipgloss.Style
	AlertCrit lipgloss.Style

	TableHeader lipgloss.Style
	TableRow    lipgloss.Style
	TableRowAlt lipgloss.Style
	Selected    lipgloss.Style
}

// NewTheme creates a theme for the configured color scheme. Unknown schemes
// fall back to green phosphor.
func NewTheme(scheme config.ColorScheme) *Theme {
	p, ok := palettes[scheme]
	if !ok {
		p = palettes[config.ColorSchemeGreenPhosphor]
	}

	fg := func(c lipgloss.Color) lipgloss.Style { return lipgloss.NewStyle().Foreground(c) }

	return &Theme{
		SecondaryColor: p.secondary,

		Primary:   fg(p.primary),
		Secondary: fg(p.secondary),
		Accent:    fg(p.accent),
		Error:     fg(p.err),
		Warning:   fg(p.warning),
		Success:   fg(p.success),
		Muted:     fg(p.muted),

		Header: fg(p.primary).Bold(true).Padding(0, 1),
		Footer: fg(p.secondary).Padding(0, 1),
		Title:  fg(p.accent).Bold(true).MarginBottom(1),
		Label:  fg(p.secondary),
		Value:  fg(p.primary),
		Box: lipgloss.NewStyle().
			Border(lipgloss.NormalBorder()).
			BorderForeground(p.secondary).
			Padding(0, 1),
		Alert:     fg(p.primary).Bold(true),
		AlertWarn: fg(p.warning).Bold(true),
		AlertCrit: fg(p.err).Bold(true).Blink(true),

		TableHeader: fg(p.accent).Bold(true),
		TableRow:    fg(p.primary),
		TableRowAlt: fg(p.secondary),
		Selected:    lipgloss.NewStyle().Background(p.primary).Foreground(lipgloss.Color("#000000")),
	}
}

// StyleTable applies the theme to a table.
func (t *Theme) StyleTable(table *components.Table) {
	table.SetStyles(t.TableHeader, t.TableRow, t.TableRowAlt, t.Selected, t.Secondary)
}

// DrawHorizontalLine draws a horizontal line.
func (t *Theme) DrawHorizontalLine(width int) string {
	return t.Secondary.Render(strings.Repeat("─", max(width, 0)))
}

// DrawDoubleLine draws a double horizontal line.
func (t *Theme) DrawDoubleLine(width int) string {
	return t.Primary.Render(strings.Repeat("═", max(width, 0)))
}
