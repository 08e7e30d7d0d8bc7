// Package probe reads media durations.
//
// Two probers are provided: Container parses the ISO base media file
// format in-process, and FFProbe shells out to the ffprobe command.
// Probers report failures as *Fault values carrying a types.Category so
// callers can tally failure classes without inspecting error text.
package probe

import (
	"context"
	"errors"
	"fmt"

	"github.com/jamesainslie/vidtally/pkg/vidtally/types"
)

var (
	// ErrNotMP4 means the file has no ftyp brand.
	ErrNotMP4 = errors.New("not an MP4 container")

	// ErrNoMovieHeader means the container carries no usable mvhd box.
	ErrNoMovieHeader = errors.New("no movie header")

	// ErrNoDuration means ffprobe reported no duration.
	ErrNoDuration = errors.New("no duration reported")
)

// Prober returns the duration of the media file at path in seconds.
// A zero duration with a nil error means the file was readable but
// carried no length.
type Prober interface {
	Duration(ctx context.Context, path string) (float64, error)
}

// ProberFunc adapts a function to the Prober interface.
type ProberFunc func(ctx context.Context, path string) (float64, error)

// Duration calls f.
func (f ProberFunc) Duration(ctx context.Context, path string) (float64, error) {
	return f(ctx, path)
}

// Fault is a classified probe failure.
type Fault struct {
	Category types.Category
	Op       string
	Path     string
	Err      error
}

func (f *Fault) Error() string {
	if f.Path == "" {
		return fmt.Sprintf("%s: %v", f.Op, f.Err)
	}
	return fmt.Sprintf("%s %s: %v", f.Op, f.Path, f.Err)
}

func (f *Fault) Unwrap() error {
	return f.Err
}

// Classify returns the category of the first Fault in err's chain, or
// types.CategoryOther when there is none.
func Classify(err error) types.Category {
	var fault *Fault
	if errors.As(err, &fault) {
		return fault.Category
	}
	return types.CategoryOther
}

func newFault(c types.Category, op, path string, err error) *Fault {
	return &Fault{Category: c, Op: op, Path: path, Err: err}
}
