// Package discover finds candidate media files beneath a root directory.
package discover

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/charlievieth/fastwalk"

	"github.com/jamesainslie/vidtally/pkg/vidtally/config"
	"github.com/jamesainslie/vidtally/pkg/vidtally/logging"
	"github.com/jamesainslie/vidtally/pkg/vidtally/types"
)

var (
	// ErrNotFound is returned when the root does not exist.
	ErrNotFound = errors.New("root not found")

	// ErrNotADirectory is returned when the root exists but is not a directory.
	ErrNotADirectory = errors.New("root is not a directory")
)

// Options configures a discovery pass.
type Options struct {
	// Root is the directory to search.
	Root string

	// Extensions are the file name suffixes to match. Empty means
	// config.DefaultExtensions.
	Extensions []string

	// IgnoreCase matches extensions case-insensitively.
	IgnoreCase bool

	// Exclude holds glob patterns; matches against the base name or the
	// relative path skip the file, or the whole subtree for directories.
	Exclude []string
}

// ResolveRoot returns the absolute form of root after checking that it is
// an existing directory.
func ResolveRoot(root string) (string, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return "", fmt.Errorf("resolving %s: %w", root, err)
	}

	info, err := os.Stat(abs)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return "", fmt.Errorf("%w: %s", ErrNotFound, abs)
		}
		return "", fmt.Errorf("stat %s: %w", abs, err)
	}
	if !info.IsDir() {
		return "", fmt.Errorf("%w: %s", ErrNotADirectory, abs)
	}

	return abs, nil
}

// Discover walks opts.Root recursively and returns every regular file whose
// name ends with one of the configured extensions, sorted by relative path.
// Symbolic links are not followed. Unreadable entries are logged and skipped.
func Discover(ctx context.Context, opts Options) ([]types.MediaFile, error) {
	root, err := ResolveRoot(opts.Root)
	if err != nil {
		return nil, err
	}

	m := newMatcher(opts)
	log := logging.Get("discover")

	var (
		mu    sync.Mutex
		files []types.MediaFile
	)

	conf := fastwalk.Config{Follow: false}
	walkErr := fastwalk.Walk(&conf, root, func(path string, d fs.DirEntry, err error) error {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}

		if err != nil {
			log.Warn("skipping unreadable entry", "path", path, "error", err)
			return nil
		}

		if path == root {
			return nil
		}

		rel, relErr := filepath.Rel(root, path)
		if relErr != nil {
			return nil
		}
		rel = filepath.ToSlash(rel)

		if m.excluded(rel) {
			if d.IsDir() {
				log.Debug("excluded directory", "path", rel)
				return fastwalk.SkipDir
			}
			return nil
		}

		if !d.Type().IsRegular() || !m.matches(d.Name()) {
			return nil
		}

		var size int64
		if info, infoErr := d.Info(); infoErr == nil {
			size = info.Size()
		}

		mu.Lock()
		files = append(files, types.MediaFile{Path: path, RelPath: rel, Size: size})
		mu.Unlock()
		return nil
	})
	if walkErr != nil {
		return nil, fmt.Errorf("walking %s: %w", root, walkErr)
	}

	// fastwalk visits directories concurrently.
	sort.Slice(files, func(i, j int) bool {
		return files[i].RelPath < files[j].RelPath
	})

	log.Debug("discovery complete", "root", root, "files", len(files))
	return files, nil
}

type matcher struct {
	extensions []string
	ignoreCase bool
	exclude    []string
}

func newMatcher(opts Options) *matcher {
	exts := opts.Extensions
	if len(exts) == 0 {
		exts = config.DefaultExtensions
	}

	m := &matcher{ignoreCase: opts.IgnoreCase}
	for _, ext := range exts {
		if ext == "" {
			continue
		}
		if opts.IgnoreCase {
			ext = strings.ToLower(ext)
		}
		m.extensions = append(m.extensions, ext)
	}
	for _, pattern := range opts.Exclude {
		if pattern != "" {
			m.exclude = append(m.exclude, filepath.ToSlash(strings.TrimSuffix(pattern, "/")))
		}
	}
	return m
}

// matches reports whether name ends with a configured extension.
func (m *matcher) matches(name string) bool {
	if m.ignoreCase {
		name = strings.ToLower(name)
	}
	for _, ext := range m.extensions {
		if strings.HasSuffix(name, ext) {
			return true
		}
	}
	return false
}

// excluded reports whether the slash-separated relative path matches an
// exclusion pattern, as a prefix directory, by base name, or in full.
func (m *matcher) excluded(rel string) bool {
	base := rel[strings.LastIndex(rel, "/")+1:]
	for _, pattern := range m.exclude {
		if rel == pattern || strings.HasPrefix(rel, pattern+"/") {
			return true
		}
		if ok, err := filepath.Match(pattern, base); err == nil && ok {
			return true
		}
		if ok, err := filepath.Match(pattern, rel); err == nil && ok {
			return true
		}
	}
	return false
}
