// Package logging hands out per-component loggers that write to a rotating
// file under the XDG state directory and, optionally, to stderr.
//
//	if err := logging.Init(logging.Config{Level: "info"}); err != nil {
//	    return err
//	}
//	defer logging.Close()
//	logging.Get("resolver").Info("resolved by fallback", "path", rel)
//
// Nothing here writes to stdout; stdout carries the scan transcript.
package logging

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/adrg/xdg"
	"github.com/charmbracelet/log"
)

// Level is a logging threshold.
type Level int

const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarn
	LevelError
)

var levelNames = [...]string{"debug", "info", "warn", "error"}

var charmLevels = [...]log.Level{log.DebugLevel, log.InfoLevel, log.WarnLevel, log.ErrorLevel}

func (l Level) String() string {
	if l < LevelDebug || l > LevelError {
		return "unknown"
	}
	return levelNames[l]
}

func (l Level) charm() log.Level {
	if l < LevelDebug || l > LevelError {
		return log.InfoLevel
	}
	return charmLevels[l]
}

// ErrInvalidLevel reports a level name ParseLevel does not know.
var ErrInvalidLevel = errors.New("invalid log level")

// ParseLevel accepts debug, info, warn (or warning) and error in any case.
// Unknown names yield LevelInfo and an error wrapping ErrInvalidLevel.
func ParseLevel(s string) (Level, error) {
	name := strings.ToLower(s)
	if name == "warning" {
		name = "warn"
	}
	for i, n := range levelNames {
		if n == name {
			return Level(i), nil
		}
	}
	return LevelInfo, fmt.Errorf("%w: %s", ErrInvalidLevel, s)
}

// Config is passed to Init.
type Config struct {
	Level    string
	Path     string // empty selects DefaultLogPath
	Rotation RotationConfig

	// Components overrides Level per component name.
	Components map[string]string

	// ConsoleLevel mirrors records at or above it to Console (stderr when
	// nil). Empty leaves the console silent.
	ConsoleLevel string
	Console      io.Writer
}

// Logger is a component's view of the log sinks. Until Init succeeds it
// has no sinks and drops everything.
type Logger struct {
	component string
	sinks     []*log.Logger
}

func (l *Logger) Debug(msg string, args ...interface{}) { l.emit(log.DebugLevel, msg, args) }
func (l *Logger) Info(msg string, args ...interface{}) { l.emit(log.InfoLevel, msg, args) }
func (l *Logger) Warn(msg string, args ...interface{}) { l.emit(log.WarnLevel, msg, args) }
func (l *Logger) Error(msg string, args ...interface{}) { l.emit(log.ErrorLevel, msg, args) }

func (l *Logger) emit(level log.Level, msg string, args []interface{}) {
	for _, s := range l.sinks {
		s.Log(level, msg, args...)
	}
}

// With returns a child logger that adds key/value pairs to every record.
func (l *Logger) With(args ...interface{}) *Logger {
	child := &Logger{component: l.component, sinks: make([]*log.Logger, len(l.sinks))}
	for i, s := range l.sinks {
		child.sinks[i] = s.With(args...)
	}
	return child
}

// Component is the name passed to Get.
func (l *Logger) Component() string {
	return l.component
}

// registry owns the open log file and every logger handed out by Get.
type registry struct {
	mu      sync.RWMutex
	file    *RotatingWriter
	level   Level
	levels  map[string]Level
	console io.Writer
	conLvl  Level
	loggers map[string]*Logger
}

var std = &registry{loggers: make(map[string]*Logger)}

// Init opens the log file and points every logger at it. Calling Init
// again replaces the previous configuration.
func Init(cfg Config) error {
	return std.open(cfg)
}

// Get returns the logger for component, creating it on first use.
func Get(component string) *Logger {
	return std.get(component)
}

// Close flushes and closes the log file; loggers go quiet until the next Init.
func Close() error {
	return std.close()
}

func (r *registry) open(cfg Config) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	err := r.reset()
	r.rebuild()
	if err != nil {
		return fmt.Errorf("closing existing writer: %w", err)
	}

	level, err := ParseLevel(cfg.Level)
	if err != nil {
		return fmt.Errorf("parsing log level: %w", err)
	}
	levels := make(map[string]Level, len(cfg.Components))
	for comp, name := range cfg.Components {
		if levels[comp], err = ParseLevel(name); err != nil {
			return fmt.Errorf("parsing level for component %s: %w", comp, err)
		}
	}

	var console io.Writer
	var conLvl Level
	if cfg.ConsoleLevel != "" {
		if conLvl, err = ParseLevel(cfg.ConsoleLevel); err != nil {
			return fmt.Errorf("parsing console level: %w", err)
		}
		console = cfg.Console
		if console == nil {
			console = os.Stderr
		}
	}

	path := cfg.Path
	if path == "" {
		path = DefaultLogPath()
	}
	file, err := NewRotatingWriter(path, cfg.Rotation)
	if err != nil {
		return fmt.Errorf("creating log writer: %w", err)
	}

	r.file, r.level, r.levels = file, level, levels
	r.console, r.conLvl = console, conLvl
	r.rebuild()
	return nil
}

func (r *registry) get(component string) *Logger {
	r.mu.RLock()
	l, ok := r.loggers[component]
	r.mu.RUnlock()
	if ok {
		return l
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if l, ok := r.loggers[component]; ok {
		return l
	}
	l = r.build(component)
	r.loggers[component] = l
	return l
}

func (r *registry) close() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.reset(); err != nil {
		return fmt.Errorf("closing log writer: %w", err)
	}
	r.rebuild()
	return nil
}

// reset drops all sinks. Callers hold r.mu.
func (r *registry) reset() error {
	var err error
	if r.file != nil {
		err = r.file.Close()
	}
	r.file, r.console, r.levels = nil, nil, nil
	return err
}

// rebuild updates loggers in place so package-level vars follow the new
// sinks. Callers hold r.mu.
func (r *registry) rebuild() {
	for component, l := range r.loggers {
		*l = *r.build(component)
	}
}

// build must be called with r.mu held.
func (r *registry) build(component string) *Logger {
	l := &Logger{component: component}
	if r.file == nil {
		return l
	}

	level := r.level
	if override, ok := r.levels[component]; ok {
		level = override
	}
	l.sinks = append(l.sinks, log.NewWithOptions(r.file, log.Options{
		Level:           level.charm(),
		Prefix:          component,
		ReportTimestamp: true,
		TimeFormat:      time.RFC3339,
	}))
	if r.console != nil {
		l.sinks = append(l.sinks, log.NewWithOptions(r.console, log.Options{
			Level:           r.conLvl.charm(),
			Prefix:          component,
			ReportTimestamp: true,
			TimeFormat:      time.Kitchen,
		}))
	}
	return l
}

// DefaultLogPath is $XDG_STATE_HOME/vidtally/vidtally.log.
func DefaultLogPath() string {
	return filepath.Join(xdg.StateHome, "vidtally", "vidtally.log")
}

// DefaultConfig logs at info to DefaultLogPath with default rotation.
func DefaultConfig() Config {
	return Config{
		Level:    "info",
		Path:     DefaultLogPath(),
		Rotation: DefaultRotationConfig(),
	}
}
