// Package aggregate folds per-file resolution results into per-directory
// and overall duration statistics.
package aggregate

import (
	"sort"

	"github.com/jamesainslie/vidtally/pkg/vidtally/types"
)

// Entry is one successfully resolved file.
type Entry struct {
	File     types.MediaFile `json:"file" yaml:"file"`
	Duration float64         `json:"duration" yaml:"duration"`
}

// Group holds the files that share a parent directory.
type Group struct {
	// Key is the slash-separated parent directory relative to the scan
	// root, or types.RootGroup.
	Key string `json:"key" yaml:"key"`

	// Total is the summed duration of Files in seconds.
	Total float64 `json:"total" yaml:"total"`

	// Count is the number of successfully resolved files.
	Count int `json:"count" yaml:"count"`

	// Failed is the number of files under Key that could not be resolved.
	// They contribute nothing else to the group.
	Failed int `json:"failed" yaml:"failed"`

	// Files lists successes in discovery order.
	Files []Entry `json:"files" yaml:"files"`
}

// Average returns Total/Count, or 0 for a group with no successes.
func (g *Group) Average() float64 {
	if g.Count == 0 {
		return 0
	}
	return g.Total / float64(g.Count)
}

// CategoryCount is the number of failures in one category.
type CategoryCount struct {
	Category types.Category `json:"category" yaml:"category"`
	Count    int            `json:"count" yaml:"count"`
}

// Summary is the result of a complete fold.
type Summary struct {
	Total     float64 `json:"total" yaml:"total"`
	Succeeded int     `json:"succeeded" yaml:"succeeded"`
	Failed    int     `json:"failed" yaml:"failed"`

	// Failures is ordered by the first occurrence of each category.
	Failures []CategoryCount `json:"failures" yaml:"failures"`

	// Groups is sorted by Key.
	Groups []*Group `json:"groups" yaml:"groups"`
}

// Attempted returns the number of files folded into the summary.
func (s *Summary) Attempted() int {
	return s.Succeeded + s.Failed
}

// Group returns the group with the given key, or nil.
func (s *Summary) Group(key string) *Group {
	i := sort.Search(len(s.Groups), func(i int) bool { return s.Groups[i].Key >= key })
	if i < len(s.Groups) && s.Groups[i].Key == key {
		return s.Groups[i]
	}
	return nil
}

// Aggregator accumulates results one file at a time. It is not safe for
// concurrent use; feed it from a single goroutine.
type Aggregator struct {
	groups     map[string]*Group
	categories map[types.Category]int
	order      []types.Category

	total     float64
	succeeded int
	failed    int
}

// New returns an empty Aggregator.
func New() *Aggregator {
	return &Aggregator{
		groups:     make(map[string]*Group),
		categories: make(map[types.Category]int),
	}
}

// Add folds one file's result.
func (a *Aggregator) Add(f types.MediaFile, r types.Result) {
	g := a.group(f.Dir())

	if !r.OK() {
		a.failed++
		g.Failed++
		if _, seen := a.categories[r.Category]; !seen {
			a.order = append(a.order, r.Category)
		}
		a.categories[r.Category]++
		return
	}

	g.Count++
	g.Total += r.Duration
	g.Files = append(g.Files, Entry{File: f, Duration: r.Duration})

	a.succeeded++
	a.total += r.Duration
}

func (a *Aggregator) group(key string) *Group {
	g, ok := a.groups[key]
	if !ok {
		g = &Group{Key: key}
		a.groups[key] = g
	}
	return g
}

// Summary returns a snapshot of the current totals. Groups in the snapshot
// share Files backing arrays with the Aggregator; further Adds do not
// change counts already returned.
func (a *Aggregator) Summary() *Summary {
	s := &Summary{
		Total:     a.total,
		Succeeded: a.succeeded,
		Failed:    a.failed,
		Failures:  make([]CategoryCount, 0, len(a.order)),
		Groups:    make([]*Group, 0, len(a.groups)),
	}

	for _, c := range a.order {
		s.Failures = append(s.Failures, CategoryCount{Category: c, Count: a.categories[c]})
	}

	for _, g := range a.groups {
		snapshot := *g
		s.Groups = append(s.Groups, &snapshot)
	}
	sort.Slice(s.Groups, func(i, j int) bool {
		return s.Groups[i].Key < s.Groups[j].Key
	})

	return s
}

// Pair is a file with its resolution result.
type Pair struct {
	File   types.MediaFile
	Result types.Result
}

// Fold aggregates pairs in order and returns the summary.
func Fold(pairs []Pair) *Summary {
	a := New()
	for _, p := range pairs {
		a.Add(p.File, p.Result)
	}
	return a.Summary()
}
