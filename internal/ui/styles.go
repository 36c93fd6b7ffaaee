package ui

import (
	"github.com/charmbracelet/lipgloss"

	"scout-tui/internal/state"
)

// palette is the set of colors that change with the theme.
type palette struct {
	accent lipgloss.Color
	muted  lipgloss.Color
	text   lipgloss.Color
	bar    lipgloss.Color
	warn   lipgloss.Color
}

func paletteFor(t state.Theme) palette {
	if t == state.ThemeLight {
		return palette{
			accent: lipgloss.Color("25"),
			muted:  lipgloss.Color("245"),
			text:   lipgloss.Color("235"),
			bar:    lipgloss.Color("153"),
			warn:   lipgloss.Color("160"),
		}
	}
	return palette{
		accent: lipgloss.Color("39"),
		muted:  lipgloss.Color("240"),
		text:   lipgloss.Color("252"),
		bar:    lipgloss.Color("24"),
		warn:   lipgloss.Color("203"),
	}
}

type styles struct {
	header      lipgloss.Style
	status      lipgloss.Style
	notice      lipgloss.Style
	errNotice   lipgloss.Style
	title       lipgloss.Style
	muted       lipgloss.Style
	selected    lipgloss.Style
	widget      lipgloss.Style
	widgetValue lipgloss.Style
	suggestion  lipgloss.Style
	searchMatch lipgloss.Style
	palette     palette
}

func newStyles(t state.Theme) styles {
	p := paletteFor(t)
	return styles{
		header: lipgloss.NewStyle().
			Bold(true).
			Foreground(p.text).
			Background(p.bar).
			Padding(0, 1),
		status: lipgloss.NewStyle().
			Foreground(p.text).
			Background(p.bar).
			Padding(0, 1),
		notice: lipgloss.NewStyle().
			Foreground(p.accent).
			Padding(0, 1),
		errNotice: lipgloss.NewStyle().
			Foreground(p.warn).
			Padding(0, 1),
		title: lipgloss.NewStyle().
			Bold(true).
			Foreground(p.accent),
		muted: lipgloss.NewStyle().
			Foreground(p.muted),
		selected: lipgloss.NewStyle().
			Bold(true).
			Foreground(p.accent),
		widget: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder(), true).
			BorderForeground(p.muted).
			Padding(0, 1),
		widgetValue: lipgloss.NewStyle().
			Bold(true).
			Foreground(p.accent),
		suggestion: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder(), true).
			BorderForeground(p.accent).
			Padding(0, 1),
		searchMatch: lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("16")).
			Background(lipgloss.Color("220")),
		palette: p,
	}
}

func (s styles) panel(active bool) lipgloss.Style {
	border := lipgloss.NormalBorder()
	if active {
		return lipgloss.NewStyle().
			Border(border, true).
			BorderForeground(s.palette.accent).
			Padding(0, 1)
	}
	return lipgloss.NewStyle().
		Border(border, true).
		BorderForeground(s.palette.muted).
		Padding(0, 1)
}
