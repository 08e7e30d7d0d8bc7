package logging

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"
)

// backupStamp is the timestamp embedded in rotated file names:
// vidtally.2026-01-20-150405.log
const backupStamp = "2006-01-02-150405"

// RotationConfig controls when the log file is rolled over and how many
// old files survive.
type RotationConfig struct {
	// MaxSize in bytes. Zero means 10MB.
	MaxSize int64

	// MaxAge in days. Zero keeps backups regardless of age.
	MaxAge int

	// MaxBackups caps the number of rotated files. Zero keeps all.
	MaxBackups int

	// Daily rolls the file over the first time it is written on a new day.
	Daily bool
}

// DefaultRotationConfig returns the rotation settings used when none are
// configured.
func DefaultRotationConfig() RotationConfig {
	return RotationConfig{
		MaxSize:    10 * 1024 * 1024,
		MaxAge:     30,
		MaxBackups: 5,
		Daily:      true,
	}
}

// RotatingWriter is an io.WriteCloser over a log file that rotates by size
// and by day. Writes hold an advisory file lock so two vidtally runs
// sharing a log do not interleave partial lines.
type RotatingWriter struct {
	mu sync.Mutex

	path     string
	cfg      RotationConfig
	file     *os.File
	size     int64
	openedAt time.Time

	now func() time.Time
}

// NewRotatingWriter opens path for appending, creating parent directories,
// and prunes stale backups.
func NewRotatingWriter(path string, cfg RotationConfig) (*RotatingWriter, error) {
	if cfg.MaxSize <= 0 {
		cfg.MaxSize = DefaultRotationConfig().MaxSize
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("creating log directory: %w", err)
	}

	w := &RotatingWriter{path: path, cfg: cfg, now: time.Now}
	if err := w.open(); err != nil {
		return nil, err
	}
	w.prune()

	return w, nil
}

// Write appends p, rotating first when p would push the file past MaxSize
// or the day has changed.
func (w *RotatingWriter) Write(p []byte) (int, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.file == nil {
		return 0, os.ErrClosed
	}

	if w.due(int64(len(p))) {
		if err := w.rotate(); err != nil {
			return 0, fmt.Errorf("rotating log file: %w", err)
		}
	}

	if err := lockFile(w.file); err != nil {
		return 0, fmt.Errorf("acquiring file lock: %w", err)
	}
	defer unlockFile(w.file)

	n, err := w.file.Write(p)
	w.size += int64(n)
	if err != nil {
		return n, fmt.Errorf("writing to log file: %w", err)
	}
	return n, nil
}

// Close syncs and closes the file. Later writes fail with os.ErrClosed.
func (w *RotatingWriter) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.file == nil {
		return nil
	}

	syncErr := w.file.Sync()
	closeErr := w.file.Close()
	w.file = nil

	if syncErr != nil {
		return fmt.Errorf("syncing log file: %w", syncErr)
	}
	return closeErr
}

func (w *RotatingWriter) open() error {
	file, err := os.OpenFile(w.path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("opening log file: %w", err)
	}

	info, err := file.Stat()
	if err != nil {
		_ = file.Close()
		return fmt.Errorf("stat log file: %w", err)
	}

	w.file = file
	w.size = info.Size()
	// An existing file counts as opened when it was last written, so a log
	// left over from yesterday rotates on the first write today.
	w.openedAt = info.ModTime()
	return nil
}

func (w *RotatingWriter) due(incoming int64) bool {
	if w.size > 0 && w.size+incoming > w.cfg.MaxSize {
		return true
	}
	if !w.cfg.Daily {
		return false
	}
	y1, m1, d1 := w.now().Date()
	y2, m2, d2 := w.openedAt.Date()
	return y1 != y2 || m1 != m2 || d1 != d2
}

func (w *RotatingWriter) rotate() error {
	if err := w.file.Close(); err != nil {
		return fmt.Errorf("closing current file: %w", err)
	}
	w.file = nil

	ext := filepath.Ext(w.path)
	backup := strings.TrimSuffix(w.path, ext) + "." + w.now().Format(backupStamp) + ext
	if err := os.Rename(w.path, backup); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("renaming log file: %w", err)
	}

	if err := w.open(); err != nil {
		return err
	}
	w.openedAt = w.now()
	w.prune()
	return nil
}

// backups lists rotated siblings of the log file, newest first.
func (w *RotatingWriter) backups() []string {
	dir := filepath.Dir(w.path)
	base := filepath.Base(w.path)
	ext := filepath.Ext(base)
	prefix := strings.TrimSuffix(base, ext) + "."

	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil
	}

	var names []string
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || name == base {
			continue
		}
		stamp := strings.TrimSuffix(strings.TrimPrefix(name, prefix), ext)
		if !strings.HasPrefix(name, prefix) || !strings.HasSuffix(name, ext) {
			continue
		}
		if _, err := time.Parse(backupStamp, stamp); err != nil {
			continue
		}
		names = append(names, name)
	}

	// Stamps sort lexically in time order.
	sort.Sort(sort.Reverse(sort.StringSlice(names)))

	paths := make([]string, len(names))
	for i, n := range names {
		paths[i] = filepath.Join(dir, n)
	}
	return paths
}

// prune deletes backups beyond MaxBackups or older than MaxAge days.
// Errors are ignored; a stale backup is not worth failing a write over.
func (w *RotatingWriter) prune() {
	cutoff := time.Time{}
	if w.cfg.MaxAge > 0 {
		cutoff = w.now().Add(-time.Duration(w.cfg.MaxAge) * 24 * time.Hour)
	}

	for i, path := range w.backups() {
		if w.cfg.MaxBackups > 0 && i >= w.cfg.MaxBackups {
			_ = os.Remove(path)
			continue
		}
		if cutoff.IsZero() {
			continue
		}
		if info, err := os.Stat(path); err == nil && info.ModTime().Before(cutoff) {
			_ = os.Remove(path)
		}
	}
}
