package report

import (
	"github.com/jamesainslie/vidtally/pkg/vidtally/aggregate"
	"github.com/jamesainslie/vidtally/pkg/vidtally/types"
)

// document is the machine-readable shape shared by the json and yaml
// formatters. Durations appear both as seconds and as HH:MM:SS.
type document struct {
	Groups  []docGroup `json:"groups" yaml:"groups"`
	Overall docOverall `json:"overall" yaml:"overall"`
}

type docGroup struct {
	Folder         string    `json:"folder" yaml:"folder"`
	Files          int       `json:"files" yaml:"files"`
	Failed         int       `json:"failed" yaml:"failed"`
	AverageSeconds float64   `json:"average_seconds" yaml:"average_seconds"`
	Average        string    `json:"average" yaml:"average"`
	TotalSeconds   float64   `json:"total_seconds" yaml:"total_seconds"`
	Total          string    `json:"total" yaml:"total"`
	Entries        []docFile `json:"entries" yaml:"entries"`
}

type docFile struct {
	Path     string  `json:"path" yaml:"path"`
	Size     string  `json:"size" yaml:"size"`
	Seconds  float64 `json:"seconds" yaml:"seconds"`
	Duration string  `json:"duration" yaml:"duration"`
}

type docOverall struct {
	Processed    int        `json:"processed" yaml:"processed"`
	Succeeded    int        `json:"succeeded" yaml:"succeeded"`
	Failed       int        `json:"failed" yaml:"failed"`
	Errors       []docError `json:"errors,omitempty" yaml:"errors,omitempty"`
	TotalSeconds float64    `json:"total_seconds" yaml:"total_seconds"`
	TotalHours   float64    `json:"total_hours" yaml:"total_hours"`
	Total        string     `json:"total" yaml:"total"`
}

type docError struct {
	Category types.Category `json:"category" yaml:"category"`
	Count    int            `json:"count" yaml:"count"`
}

func newDocument(s *aggregate.Summary) document {
	doc := document{
		Groups: make([]docGroup, 0, len(s.Groups)),
		Overall: docOverall{
			Processed:    s.Attempted(),
			Succeeded:    s.Succeeded,
			Failed:       s.Failed,
			TotalSeconds: s.Total,
			TotalHours:   s.Total / 3600,
			Total:        types.FormatDuration(s.Total),
		},
	}

	for _, g := range s.Groups {
		dg := docGroup{
			Folder:         g.Key,
			Files:          g.Count,
			Failed:         g.Failed,
			AverageSeconds: g.Average(),
			Average:        types.FormatDuration(g.Average()),
			TotalSeconds:   g.Total,
			Total:          types.FormatDuration(g.Total),
			Entries:        make([]docFile, 0, len(g.Files)),
		}
		for _, e := range g.Files {
			dg.Entries = append(dg.Entries, docFile{
				Path:     e.File.RelPath,
				Size:     types.FormatSize(e.File.Size),
				Seconds:  e.Duration,
				Duration: types.FormatDuration(e.Duration),
			})
		}
		doc.Groups = append(doc.Groups, dg)
	}

	for _, c := range s.Failures {
		if c.Count > 0 {
			doc.Overall.Errors = append(doc.Overall.Errors, docError{Category: c.Category, Count: c.Count})
		}
	}

	return doc
}
