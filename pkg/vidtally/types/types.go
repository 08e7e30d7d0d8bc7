// Package types provides core data types for the vidtally duration calculator.
// It includes the discovered media file, the tagged per-file resolution result,
// the failure taxonomy, and helpers for formatting durations and sizes.
package types

import (
	"errors"
	"fmt"
	"math"
	"path"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"

	"github.com/dustin/go-humanize"
)

// RootGroup is the group key used for files sitting directly under the scan root.
const RootGroup = "Root"

// Size constants for binary (IEC) units.
const (
	KiB int64 = 1024
	MiB int64 = 1024 * KiB
	GiB int64 = 1024 * MiB
	TiB int64 = 1024 * GiB
)

// MediaFile is a candidate media file found during discovery.
type MediaFile struct {
	// Path is the absolute path used for probing.
	Path string `json:"path"`

	// RelPath is the path relative to the scan root, used for display and grouping.
	RelPath string `json:"rel_path"`

	// Size is the file size in bytes at discovery time.
	Size int64 `json:"size"`
}

// Dir returns the group key of the file: the slash-separated parent of the
// relative path, or RootGroup when the file sits directly under the root.
func (m MediaFile) Dir() string {
	dir := path.Dir(filepath.ToSlash(m.RelPath))
	if dir == "." || dir == "/" || dir == "" {
		return RootGroup
	}
	return dir
}

// Name returns the base name of the file.
func (m MediaFile) Name() string {
	return filepath.Base(m.RelPath)
}

// Category is the closed set of failure classes a probe can report.
type Category int

// Failure categories. The zero value is CategoryOther.
const (
	// CategoryOther covers faults that fit no other bucket.
	CategoryOther Category = iota

	// CategoryContainer covers unreadable files and unrecognised container formats.
	CategoryContainer

	// CategoryStructure covers truncated or malformed box/index structures.
	CategoryStructure

	// CategoryMetadata covers containers lacking the duration metadata.
	CategoryMetadata

	// CategoryProbeFailure is used when no probe raised a fault but none
	// produced a positive duration either.
	CategoryProbeFailure
)

// String returns the label used in reports.
func (c Category) String() string {
	switch c {
	case CategoryContainer:
		return "Container"
	case CategoryStructure:
		return "Structure"
	case CategoryMetadata:
		return "Metadata"
	case CategoryProbeFailure:
		return "ProbeFailure"
	default:
		return "Other"
	}
}

// MarshalText encodes the category as its label.
func (c Category) MarshalText() ([]byte, error) {
	return []byte(c.String()), nil
}

// Method identifies which probe produced a duration.
type Method int

const (
	// MethodNone marks a failed result.
	MethodNone Method = iota
	// MethodPrimary is the in-process container probe.
	MethodPrimary
	// MethodFallback is the external ffprobe command.
	MethodFallback
)

// String returns the method name.
func (m Method) String() string {
	switch m {
	case MethodPrimary:
		return "primary"
	case MethodFallback:
		return "fallback"
	default:
		return "none"
	}
}

// Result is the outcome of resolving one file's duration.
// Exactly one of the two shapes is meaningful, selected by OK.
type Result struct {
	// Duration is the resolved duration in seconds (Success only).
	Duration float64

	// Method is the probe that produced Duration (Success only).
	Method Method

	// Category classifies the failure (Failure only).
	Category Category

	// Message is the captured fault text (Failure only).
	Message string

	// Fallback is true when the secondary probe was attempted.
	Fallback bool

	// PrimaryErr is the primary probe's fault text, kept on both shapes so
	// progress output can show it even when the fallback succeeded.
	PrimaryErr string

	ok bool
}

// Success returns a successful result. Callers must pass d > 0.
func Success(d float64, m Method) Result {
	return Result{Duration: d, Method: m, ok: true}
}

// Failure returns a failed result.
func Failure(c Category, msg string) Result {
	return Result{Category: c, Message: msg}
}

// OK reports whether the result carries a duration.
func (r Result) OK() bool {
	return r.ok
}

// FormatDuration renders seconds as HH:MM:SS. Hours are unbounded and
// fractional seconds are truncated. Negative and NaN inputs render as zero.
func FormatDuration(seconds float64) string {
	if math.IsNaN(seconds) || seconds < 0 {
		seconds = 0
	}
	total := int64(math.Floor(seconds))
	hours := total / 3600
	minutes := (total % 3600) / 60
	secs := total % 60
	return fmt.Sprintf("%02d:%02d:%02d", hours, minutes, secs)
}

// FormatSize converts a size in bytes to a human-readable IEC string.
func FormatSize(bytes int64) string {
	if bytes < 0 {
		bytes = 0
	}
	return humanize.IBytes(uint64(bytes))
}

// sizePattern matches size strings like "100M", "2G", "500K", "1.5GB", etc.
var sizePattern = regexp.MustCompile(`(?i)^\s*([0-9]+(?:\.[0-9]+)?)\s*([KMGT]?(?:i?B)?)\s*$`)

// ErrInvalidSize indicates that the size string could not be parsed.
var ErrInvalidSize = errors.New("invalid size format")

// ParseSize parses a human-readable size string ("10MB", "1G", "512") into bytes.
func ParseSize(s string) (int64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, fmt.Errorf("%w: empty string", ErrInvalidSize)
	}

	matches := sizePattern.FindStringSubmatch(s)
	if matches == nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidSize, s)
	}

	value, err := strconv.ParseFloat(matches[1], 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidSize, s)
	}

	suffix := strings.ToUpper(matches[2])
	suffix = strings.TrimSuffix(suffix, "IB")
	suffix = strings.TrimSuffix(suffix, "B")

	var multiplier int64
	switch suffix {
	case "":
		multiplier = 1
	case "K":
		multiplier = KiB
	case "M":
		multiplier = MiB
	case "G":
		multiplier = GiB
	case "T":
		multiplier = TiB
	default:
		return 0, fmt.Errorf("%w: unknown suffix %q", ErrInvalidSize, suffix)
	}

	return int64(value * float64(multiplier)), nil
}
