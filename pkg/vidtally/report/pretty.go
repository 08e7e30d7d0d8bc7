package report

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"

	"github.com/jamesainslie/vidtally/pkg/vidtally/aggregate"
	"github.com/jamesainslie/vidtally/pkg/vidtally/types"
)

// PrettyFormatter renders the report as styled boxes for a terminal.
type PrettyFormatter struct{}

// Format writes a directory table and a totals box.
func (f *PrettyFormatter) Format(w *bytes.Buffer, s *aggregate.Summary) error {
	w.WriteString(GroupBox.Render(f.groups(s)))
	w.WriteString("\n")
	w.WriteString(SummaryBox.Render(f.overall(s)))
	w.WriteString("\n")
	return nil
}

func (f *PrettyFormatter) groups(s *aggregate.Summary) string {
	title := TitleStyle.Render("Folders")
	if len(s.Groups) == 0 {
		return title + "\n" + MutedStyle.Render("no media files")
	}

	header := []string{"FOLDER", "FILES", "AVERAGE", "TOTAL"}
	rows := make([][]string, 0, len(s.Groups))
	for _, g := range s.Groups {
		files := fmt.Sprintf("%d", g.Count)
		if g.Failed > 0 {
			files += fmt.Sprintf(" (+%d failed)", g.Failed)
		}
		rows = append(rows, []string{
			g.Key,
			files,
			types.FormatDuration(g.Average()),
			types.FormatDuration(g.Total),
		})
	}

	widths := make([]int, len(header))
	for i, h := range header {
		widths[i] = len(h)
	}
	for _, row := range rows {
		for i, cell := range row {
			widths[i] = max(widths[i], lipgloss.Width(cell))
		}
	}

	var sb strings.Builder
	sb.WriteString(title)
	sb.WriteString("\n")
	for i, h := range header {
		sb.WriteString(HeaderCellStyle.Render(pad(h, widths[i], i > 0)))
	}
	sb.WriteString("\n")
	for r, row := range rows {
		for i, cell := range row {
			text := pad(cell, widths[i], i > 0)
			switch {
			case i == 0:
				sb.WriteString(CellStyle.Render(ValueStyle.Render(text)))
			case i == 1 && s.Groups[r].Failed > 0:
				sb.WriteString(CellStyle.Render(WarningStyle.Render(text)))
			case i >= 2:
				sb.WriteString(CellStyle.Render(DurationStyle.Render(text)))
			default:
				sb.WriteString(CellStyle.Render(text))
			}
		}
		if r < len(rows)-1 {
			sb.WriteString("\n")
		}
	}
	return sb.String()
}

func (f *PrettyFormatter) overall(s *aggregate.Summary) string {
	var lines []string
	lines = append(lines, TitleStyle.Render("Overall"))
	lines = append(lines, fmt.Sprintf("%s %s  %s %s  %s %s",
		LabelStyle.Render("Processed:"), ValueStyle.Render(humanize.Comma(int64(s.Attempted()))),
		LabelStyle.Render("OK:"), SuccessStyle.Render(humanize.Comma(int64(s.Succeeded))),
		LabelStyle.Render("Failed:"), failedStyle(s.Failed).Render(humanize.Comma(int64(s.Failed))),
	))

	if s.Failed > 0 {
		parts := make([]string, 0, len(s.Failures))
		for _, c := range s.Failures {
			if c.Count > 0 {
				parts = append(parts, fmt.Sprintf("%s %d", c.Category, c.Count))
			}
		}
		lines = append(lines, LabelStyle.Render("Errors:")+" "+ErrorStyle.Render(strings.Join(parts, ", ")))
	}

	if s.Succeeded == 0 {
		lines = append(lines, WarningStyle.Render(NoDurations))
		return strings.Join(lines, "\n")
	}

	lines = append(lines, fmt.Sprintf("%s %s  %s %s  %s %s",
		LabelStyle.Render("Total:"), DurationStyle.Render(types.FormatDuration(s.Total)),
		LabelStyle.Render("seconds"), ValueStyle.Render(fmt.Sprintf("%.2f", s.Total)),
		LabelStyle.Render("hours"), ValueStyle.Render(fmt.Sprintf("%.2f", s.Total/3600)),
	))
	return strings.Join(lines, "\n")
}

func failedStyle(n int) lipgloss.Style {
	if n > 0 {
		return ErrorStyle
	}
	return MutedStyle
}

// pad pads s with spaces to width, on the left when right is set.
func pad(s string, width int, right bool) string {
	gap := width - lipgloss.Width(s)
	if gap <= 0 {
		return s
	}
	if right {
		return strings.Repeat(" ", gap) + s
	}
	return s + strings.Repeat(" ", gap)
}

func init() {
	Register("pretty", func() Formatter {
		return &PrettyFormatter{}
	})
}

var _ Formatter = (*PrettyFormatter)(nil)
