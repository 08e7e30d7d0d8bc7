// Package resolver turns a media file into a duration or a classified
// failure by trying a primary probe and falling back to a secondary one.
package resolver

import (
	"context"
	"fmt"
	"math"

	"github.com/jamesainslie/vidtally/pkg/vidtally/logging"
	"github.com/jamesainslie/vidtally/pkg/vidtally/probe"
	"github.com/jamesainslie/vidtally/pkg/vidtally/types"
)

// Resolver resolves one file at a time. It is safe for concurrent use when
// its probers are.
type Resolver struct {
	// Primary is tried first.
	Primary probe.Prober

	// Secondary is tried whenever Primary faults or returns a
	// non-positive duration. May be nil.
	Secondary probe.Prober
}

// New returns a Resolver using the in-process container probe with ffprobe
// as the fallback.
func New(ffprobe probe.FFProbe) *Resolver {
	return &Resolver{Primary: probe.Container{}, Secondary: ffprobe}
}

// Resolve never returns an error: every probe fault, including a panic,
// is folded into a failed Result.
//
// A positive finite primary duration wins outright. Otherwise the secondary probe
// runs regardless of why the primary did not produce one. If neither yields
// a positive duration, the primary's classified fault is reported, or
// CategoryProbeFailure when the primary merely returned zero.
func (r *Resolver) Resolve(ctx context.Context, f types.MediaFile) types.Result {
	log := logging.Get("resolver")

	var remembered *types.Result

	d, err := safeProbe(ctx, r.Primary, f.Path)
	switch {
	case err != nil:
		failed := types.Failure(probe.Classify(err), err.Error())
		remembered = &failed
		log.Debug("primary probe fault", "path", f.RelPath, "category", failed.Category, "error", err)
	case usable(d):
		return types.Success(d, types.MethodPrimary)
	default:
		log.Debug("primary probe returned no duration", "path", f.RelPath, "duration", d)
	}

	var primaryErr string
	if remembered != nil {
		primaryErr = remembered.Message
	}

	if r.Secondary != nil {
		d, err := safeProbe(ctx, r.Secondary, f.Path)
		if err == nil && usable(d) {
			res := types.Success(d, types.MethodFallback)
			res.Fallback = true
			res.PrimaryErr = primaryErr
			log.Info("resolved by fallback", "path", f.RelPath, "duration", d)
			return res
		}
		log.Debug("fallback probe failed", "path", f.RelPath, "duration", d, "error", err)
	}

	res := types.Failure(types.CategoryProbeFailure, "no method produced a positive duration")
	if remembered != nil {
		res = *remembered
	}
	res.Fallback = r.Secondary != nil
	res.PrimaryErr = primaryErr
	log.Warn("duration unavailable", "path", f.RelPath, "category", res.Category, "message", res.Message)
	return res
}

// usable reports whether d can be reported as a playback duration.
func usable(d float64) bool {
	return d > 0 && !math.IsInf(d, 1)
}

// safeProbe converts a panicking prober into an uncategorised fault.
func safeProbe(ctx context.Context, p probe.Prober, path string) (d float64, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			d = 0
			err = &probe.Fault{
				Category: types.CategoryOther,
				Op:       "probe",
				Path:     path,
				Err:      fmt.Errorf("panic: %v", rec),
			}
		}
	}()
	if p == nil {
		return 0, nil
	}
	return p.Duration(ctx, path)
}
