package report

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/jamesainslie/vidtally/pkg/vidtally/aggregate"
	"github.com/jamesainslie/vidtally/pkg/vidtally/types"
)

// Section headings. ExtractSummary keys off these.
const (
	GroupsHeading  = "SUBFOLDER SUMMARIES"
	OverallHeading = "OVERALL SUMMARY"
	ErrorsHeading  = "COMMON ERROR TYPES:"

	// NoDurations replaces the totals when nothing resolved.
	NoDurations = "No valid video durations found."
)

// Rule is the line that frames section headings.
var Rule = strings.Repeat("=", 50)

// TextFormatter renders the plain report printed to the console and
// written to saved report files.
type TextFormatter struct{}

// Format writes the grouped section followed by the overall section.
func (f *TextFormatter) Format(w *bytes.Buffer, s *aggregate.Summary) error {
	fmt.Fprintln(w, Rule)
	fmt.Fprintln(w, GroupsHeading)
	fmt.Fprintln(w, Rule)

	for _, g := range s.Groups {
		fmt.Fprintf(w, "\n%s:\n", g.Key)
		fmt.Fprintf(w, "  Files: %d\n", g.Count)
		fmt.Fprintf(w, "  Average Duration: %s\n", types.FormatDuration(g.Average()))
		fmt.Fprintf(w, "  Total Duration: %s\n", types.FormatDuration(g.Total))
	}

	fmt.Fprintln(w)
	fmt.Fprintln(w, Rule)
	fmt.Fprintln(w, OverallHeading)
	fmt.Fprintln(w, Rule)
	fmt.Fprintf(w, "Total files processed: %d\n", s.Attempted())
	fmt.Fprintf(w, "Successful reads: %d\n", s.Succeeded)
	fmt.Fprintf(w, "Failed reads: %d\n", s.Failed)
	fmt.Fprintln(w)

	if s.Failed > 0 && len(s.Failures) > 0 {
		fmt.Fprintln(w, ErrorsHeading)
		for _, c := range s.Failures {
			if c.Count > 0 {
				fmt.Fprintf(w, "  %s: %d files\n", c.Category, c.Count)
			}
		}
		fmt.Fprintln(w)
	}

	if s.Succeeded == 0 {
		fmt.Fprintln(w, NoDurations)
		return nil
	}

	fmt.Fprintf(w, "Total duration: %s\n", types.FormatDuration(s.Total))
	fmt.Fprintf(w, "Total duration (seconds): %.2f\n", s.Total)
	fmt.Fprintf(w, "Total duration (hours): %.2f\n", s.Total/3600)
	return nil
}

func init() {
	Register("text", func() Formatter {
		return &TextFormatter{}
	})
}

var _ Formatter = (*TextFormatter)(nil)
