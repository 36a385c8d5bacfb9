package dashboard

import (
	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/lipgloss"
)

type palette struct {
	text     lipgloss.Color
	muted    lipgloss.Color
	subtle   lipgloss.Color
	border   lipgloss.Color
	accent   lipgloss.Color
	errColor lipgloss.Color
	positive lipgloss.Color
}

var (
	darkPalette = palette{
		text:     lipgloss.Color("#F0F0F0"),
		muted:    lipgloss.Color("#B0B0B0"),
		subtle:   lipgloss.Color("#6E6E6E"),
		border:   lipgloss.Color("#4A4A4A"),
		accent:   lipgloss.Color("#C89A3A"),
		errColor: lipgloss.Color("#FF4D4F"),
		positive: lipgloss.Color("#52C41A"),
	}
	lightPalette = palette{
		text:     lipgloss.Color("#1F1F1F"),
		muted:    lipgloss.Color("#595959"),
		subtle:   lipgloss.Color("#8C8C8C"),
		border:   lipgloss.Color("#BFBFBF"),
		accent:   lipgloss.Color("#AD6800"),
		errColor: lipgloss.Color("#CF1322"),
		positive: lipgloss.Color("#389E0D"),
	}
)

// theme holds every style the dashboard renders with.
type theme struct {
	dark bool

	activeNav   lipgloss.Style
	inactiveNav lipgloss.Style
	header      lipgloss.Style
	errorText   lipgloss.Style
	infoText    lipgloss.Style
	card        lipgloss.Style
	cardTitle   lipgloss.Style
	cardValue   lipgloss.Style
	muted       lipgloss.Style
	positive    lipgloss.Style
	negative    lipgloss.Style
	modal       lipgloss.Style
}

func newTheme(dark bool) theme {
	p := lightPalette
	if dark {
		p = darkPalette
	}
	return theme{
		dark: dark,
		activeNav: lipgloss.NewStyle().
			Foreground(p.text).
			Bold(true).
			Padding(0, 1).
			Border(lipgloss.RoundedBorder(), true).
			BorderForeground(p.accent),
		inactiveNav: lipgloss.NewStyle().
			Foreground(p.muted).
			Padding(0, 1).
			Border(lipgloss.RoundedBorder(), true).
			BorderForeground(p.border),
		header:    lipgloss.NewStyle().Foreground(p.subtle),
		errorText: lipgloss.NewStyle().Foreground(p.errColor),
		infoText:  lipgloss.NewStyle().Foreground(p.accent),
		card: lipgloss.NewStyle().
			Padding(0, 1).
			Border(lipgloss.RoundedBorder(), true).
			BorderForeground(p.border),
		cardTitle: lipgloss.NewStyle().Foreground(p.subtle),
		cardValue: lipgloss.NewStyle().Foreground(p.text).Bold(true),
		muted:     lipgloss.NewStyle().Foreground(p.muted),
		positive:  lipgloss.NewStyle().Foreground(p.positive).Bold(true),
		negative:  lipgloss.NewStyle().Foreground(p.errColor).Bold(true),
		modal: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder(), true).
			BorderForeground(p.accent).
			Padding(1, 2),
	}
}

func (t theme) tableStyles() table.Styles {
	p := lightPalette
	if t.dark {
		p = darkPalette
	}
	styles := table.DefaultStyles()
	styles.Header = styles.Header.
		Border(lipgloss.NormalBorder(), false, false, true, false).
		BorderForeground(p.border).
		Foreground(p.muted).
		Bold(true).
		Padding(0, 1).
		PaddingLeft(0)
	styles.Cell = styles.Cell.
		Foreground(p.muted).
		Padding(0, 1).
		PaddingLeft(0)
	styles.Selected = styles.Cell.
		Foreground(p.text).
		Bold(true)
	return styles
}
