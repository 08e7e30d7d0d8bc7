package report

import (
	"bytes"

	"gopkg.in/yaml.v3"

	"github.com/jamesainslie/vidtally/pkg/vidtally/aggregate"
)

// YAMLFormatter writes the same structure as JSONFormatter in YAML.
type YAMLFormatter struct{}

// Format writes the formatted output to the buffer.
func (f *YAMLFormatter) Format(w *bytes.Buffer, s *aggregate.Summary) error {
	encoder := yaml.NewEncoder(w)
	encoder.SetIndent(2)
	if err := encoder.Encode(newDocument(s)); err != nil {
		return err
	}
	return encoder.Close()
}

func init() {
	Register("yaml", func() Formatter {
		return &YAMLFormatter{}
	})
}

var _ Formatter = (*YAMLFormatter)(nil)
