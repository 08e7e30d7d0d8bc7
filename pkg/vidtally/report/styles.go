package report

import "github.com/charmbracelet/lipgloss"

// ANSI 256-color palette shared by the pretty formatter.
const (
	ColorPrimary = lipgloss.Color("39")
	ColorSuccess = lipgloss.Color("42")
	ColorWarning = lipgloss.Color("214")
	ColorDanger  = lipgloss.Color("196")
	ColorMuted   = lipgloss.Color("245")
)

var (
	// GroupBox frames the per-directory table.
	GroupBox = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(ColorPrimary).
			Padding(0, 1).
			MarginBottom(1)

	// SummaryBox frames the overall totals.
	SummaryBox = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(ColorMuted).
			Padding(0, 1)
)

var (
	TitleStyle    = lipgloss.NewStyle().Bold(true).Foreground(ColorPrimary)
	LabelStyle    = lipgloss.NewStyle().Foreground(ColorMuted)
	ValueStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("255"))
	DurationStyle = lipgloss.NewStyle().Foreground(ColorPrimary).Bold(true)
	SuccessStyle  = lipgloss.NewStyle().Foreground(ColorSuccess)
	WarningStyle  = lipgloss.NewStyle().Foreground(ColorWarning)
	ErrorStyle    = lipgloss.NewStyle().Foreground(ColorDanger)
	MutedStyle    = lipgloss.NewStyle().Foreground(ColorMuted)

	HeaderCellStyle = lipgloss.NewStyle().Bold(true).Foreground(ColorMuted).PaddingRight(2)
	CellStyle       = lipgloss.NewStyle().PaddingRight(2)
)
