package probe

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"os/exec"
	"strconv"
	"strings"
	"time"

	"github.com/jamesainslie/vidtally/pkg/vidtally/logging"
)

// FFProbe asks the ffprobe command for the container duration.
type FFProbe struct {
	// Binary is the ffprobe executable. Empty means "ffprobe" on PATH.
	Binary string

	// Timeout bounds one invocation. Zero means no bound.
	Timeout time.Duration
}

// Duration runs ffprobe against path and returns format.duration.
func (p FFProbe) Duration(ctx context.Context, path string) (float64, error) {
	bin := p.Binary
	if bin == "" {
		bin = "ffprobe"
	}

	if p.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.Timeout)
		defer cancel()
	}

	cmd := exec.CommandContext(ctx, bin,
		"-v", "quiet",
		"-print_format", "json",
		"-show_format",
		path,
	)

	start := time.Now()
	out, err := cmd.Output()
	logging.Get("probe").Debug("ffprobe finished", "path", path, "elapsed", time.Since(start), "error", err)
	if err != nil {
		if errors.Is(err, exec.ErrNotFound) {
			return 0, fmt.Errorf("ffprobe binary %q: %w", bin, err)
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return 0, fmt.Errorf("ffprobe %q: %w", path, ctxErr)
		}
		return 0, fmt.Errorf("ffprobe %q: %w", path, err)
	}

	return ParseDuration(out)
}

type ffprobeOutput struct {
	Format struct {
		Duration string `json:"duration"`
	} `json:"format"`
}

// ParseDuration extracts format.duration from ffprobe JSON output.
// Exported for testing without a real ffprobe binary.
func ParseDuration(data []byte) (float64, error) {
	var raw ffprobeOutput
	if err := json.Unmarshal(data, &raw); err != nil {
		return 0, fmt.Errorf("parse ffprobe JSON: %w", err)
	}

	s := strings.TrimSpace(raw.Format.Duration)
	if s == "" || s == "N/A" {
		return 0, ErrNoDuration
	}

	d, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("parse duration %q: %w", s, err)
	}
	if math.IsInf(d, 0) || math.IsNaN(d) {
		return 0, fmt.Errorf("%w: %q", ErrNoDuration, s)
	}
	return d, nil
}
