package report

import (
	"bytes"
	"encoding/json"

	"github.com/jamesainslie/vidtally/pkg/vidtally/aggregate"
)

// JSONFormatter writes the summary as one indented JSON document.
type JSONFormatter struct{}

// Format writes the formatted output to the buffer.
func (f *JSONFormatter) Format(w *bytes.Buffer, s *aggregate.Summary) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(newDocument(s))
}

func init() {
	Register("json", func() Formatter {
		return &JSONFormatter{}
	})
}

var _ Formatter = (*JSONFormatter)(nil)
