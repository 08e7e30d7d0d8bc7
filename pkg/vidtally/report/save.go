package report

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// ExtractSummary trims a console transcript down to the report sections.
// It keeps everything from the rule line preceding the grouped section
// heading, or failing that the overall heading. A transcript with neither
// heading is returned unchanged.
func ExtractSummary(transcript string) string {
	lines := strings.SplitAfter(transcript, "\n")

	start := indexOfHeading(lines, GroupsHeading)
	if start < 0 {
		start = indexOfHeading(lines, OverallHeading)
	}
	if start < 0 {
		return transcript
	}

	if start > 0 && isRule(lines[start-1]) {
		start--
	}
	return strings.Join(lines[start:], "")
}

func indexOfHeading(lines []string, heading string) int {
	for i, line := range lines {
		if strings.TrimSpace(line) == heading {
			return i
		}
	}
	return -1
}

func isRule(line string) bool {
	line = strings.TrimSpace(line)
	return line != "" && strings.Trim(line, "=") == ""
}

// Filename returns <folder>_<YYYYMMDD-HHMMSS>_<count>videos.txt, using the
// base name of folder with spaces replaced by underscores, or "root" when
// the folder has no name.
func Filename(folder string, now time.Time, count int) string {
	name := ""
	if folder != "" {
		if abs, err := filepath.Abs(folder); err == nil {
			folder = abs
		}
		name = filepath.Base(folder)
	}
	if name == "" || name == "." || name == string(filepath.Separator) || name == filepath.VolumeName(folder) {
		name = "root"
	}
	name = strings.ReplaceAll(name, " ", "_")
	return fmt.Sprintf("%s_%s_%dvideos.txt", name, now.Format("20060102-150405"), count)
}

// Save writes content to dir/name, creating dir as needed, and returns the
// full path.
func Save(dir, name, content string) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("creating report directory: %w", err)
	}

	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		return "", fmt.Errorf("writing report: %w", err)
	}

	logger.Info("saved report", "path", path, "bytes", len(content))
	return path, nil
}
