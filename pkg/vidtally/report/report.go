// Package report renders duration summaries in several formats and
// persists saved reports.
//
// Formatters are looked up by name from a registry:
//
//	formatter, err := report.Get("text")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	var buf bytes.Buffer
//	if err := formatter.Format(&buf, summary); err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Print(buf.String())
package report

import (
	"bytes"
	"fmt"
	"sort"
	"sync"

	"github.com/jamesainslie/vidtally/pkg/vidtally/aggregate"
	"github.com/jamesainslie/vidtally/pkg/vidtally/logging"
)

var logger = logging.Get("report")

// Formatter renders a summary into w.
type Formatter interface {
	Format(w *bytes.Buffer, s *aggregate.Summary) error
}

// FormatterFactory creates a Formatter.
type FormatterFactory func() Formatter

// Registry maps format names to formatter factories.
type Registry struct {
	mu        sync.RWMutex
	factories map[string]FormatterFactory
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{factories: make(map[string]FormatterFactory)}
}

// Register adds or replaces the factory for name.
func (r *Registry) Register(name string, factory FormatterFactory) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.factories[name] = factory
}

// Get returns a new formatter for name.
func (r *Registry) Get(name string) (Formatter, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	factory, ok := r.factories[name]
	if !ok {
		return nil, fmt.Errorf("unknown format %q (available: %v)", name, r.available())
	}
	return factory(), nil
}

// Available returns the registered names, sorted.
func (r *Registry) Available() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.available()
}

func (r *Registry) available() []string {
	names := make([]string, 0, len(r.factories))
	for name := range r.factories {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// DefaultRegistry holds the built-in formatters.
var DefaultRegistry = NewRegistry()

// Register adds a formatter factory to the default registry.
func Register(name string, factory FormatterFactory) {
	DefaultRegistry.Register(name, factory)
}

// Get returns a formatter from the default registry.
func Get(name string) (Formatter, error) {
	return DefaultRegistry.Get(name)
}

// Available lists the default registry's formats.
func Available() []string {
	return DefaultRegistry.Available()
}

// Render returns the plain text report for s.
func Render(s *aggregate.Summary) string {
	var buf bytes.Buffer
	_ = (&TextFormatter{}).Format(&buf, s)
	return buf.String()
}
