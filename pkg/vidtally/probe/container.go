package probe

import (
	"context"
	"os"

	"github.com/abema/go-mp4"

	"github.com/jamesainslie/vidtally/pkg/vidtally/types"
)

// Container reads the duration from the movie header of an ISO base
// media file (MP4, M4V, MOV).
type Container struct{}

// Duration returns the mvhd duration divided by its timescale.
//
// Open and stat failures and a missing ftyp brand are CategoryContainer
// faults. A box tree that cannot be parsed is CategoryStructure. A missing
// movie header or zero timescale is CategoryMetadata.
func (Container) Duration(ctx context.Context, path string) (float64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	f, err := os.Open(path)
	if err != nil {
		return 0, newFault(types.CategoryContainer, "open", path, err)
	}
	defer f.Close()

	if _, err := f.Stat(); err != nil {
		return 0, newFault(types.CategoryContainer, "stat", path, err)
	}

	info, err := mp4.Probe(f)
	if err != nil {
		return 0, newFault(types.CategoryStructure, "parse", path, err)
	}

	if info.MajorBrand == [4]byte{} {
		return 0, newFault(types.CategoryContainer, "ftyp", path, ErrNotMP4)
	}
	if info.Timescale == 0 {
		return 0, newFault(types.CategoryMetadata, "mvhd", path, ErrNoMovieHeader)
	}

	return float64(info.Duration) / float64(info.Timescale), nil
}
