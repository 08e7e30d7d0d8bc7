// Package config provides configuration management for the vidtally duration calculator.
package config

// Default configuration values for vidtally.
const (
	// DefaultOutputDir is where saved reports go, relative to the executable.
	DefaultOutputDir = "reports"

	// DefaultFFProbe is the secondary probe command looked up on PATH.
	DefaultFFProbe = "ffprobe"

	// DefaultFormat is the report format printed to the console.
	DefaultFormat = "text"

	// DefaultWorkers of 0 lets the tuner pick a probe worker count.
	DefaultWorkers = 0

	// DefaultLogLevel is the file log level.
	DefaultLogLevel = "info"

	// DefaultLogMaxSize is the log size that triggers rotation.
	DefaultLogMaxSize = "10MB"
)

// DefaultExtensions are the file name suffixes treated as media files.
var DefaultExtensions = []string{".mp4"}
