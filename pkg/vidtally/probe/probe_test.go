package probe

import (
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jamesainslie/vidtally/pkg/vidtally/types"
)

func box(typ string, payload []byte) []byte {
	b := make([]byte, 8, 8+len(payload))
	binary.BigEndian.PutUint32(b, uint32(8+len(payload)))
	copy(b[4:], typ)
	return append(b, payload...)
}

func ftyp() []byte {
	p := []byte("isom")
	p = binary.BigEndian.AppendUint32(p, 0x200)
	p = append(p, "isommp41"...)
	return box("ftyp", p)
}

// mvhd builds a version 0 movie header box.
func mvhd(timescale, duration uint32) []byte {
	p := make([]byte, 0, 100)
	p = binary.BigEndian.AppendUint32(p, 0) // version and flags
	p = binary.BigEndian.AppendUint32(p, 0) // creation time
	p = binary.BigEndian.AppendUint32(p, 0) // modification time
	p = binary.BigEndian.AppendUint32(p, timescale)
	p = binary.BigEndian.AppendUint32(p, duration)
	p = binary.BigEndian.AppendUint32(p, 0x00010000) // rate 1.0
	p = binary.BigEndian.AppendUint16(p, 0x0100)     // volume 1.0
	p = append(p, make([]byte, 2+8)...)              // reserved
	for _, v := range []uint32{0x10000, 0, 0, 0, 0x10000, 0, 0, 0, 0x40000000} {
		p = binary.BigEndian.AppendUint32(p, v)
	}
	p = append(p, make([]byte, 24)...) // pre_defined
	p = binary.BigEndian.AppendUint32(p, 2)
	return box("mvhd", p)
}

func writeFixture(t *testing.T, name string, data []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, data, 0o644))
	return path
}

func TestMvhdFixtureSize(t *testing.T) {
	assert.Len(t, mvhd(1000, 1), 108)
}

func TestContainer_Duration(t *testing.T) {
	data := append(ftyp(), box("moov", mvhd(1000, 10000))...)
	path := writeFixture(t, "ten.mp4", data)

	d, err := Container{}.Duration(context.Background(), path)
	require.NoError(t, err)
	assert.InDelta(t, 10.0, d, 1e-9)
}

func TestContainer_FractionalDuration(t *testing.T) {
	data := append(ftyp(), box("moov", mvhd(90000, 135000))...)
	path := writeFixture(t, "frac.mp4", data)

	d, err := Container{}.Duration(context.Background(), path)
	require.NoError(t, err)
	assert.InDelta(t, 1.5, d, 1e-9)
}

func TestContainer_ZeroDuration(t *testing.T) {
	data := append(ftyp(), box("moov", mvhd(1000, 0))...)
	path := writeFixture(t, "zero.mp4", data)

	d, err := Container{}.Duration(context.Background(), path)
	require.NoError(t, err)
	assert.Zero(t, d)
}

func TestContainer_Faults(t *testing.T) {
	tests := []struct {
		name     string
		path     func(t *testing.T) string
		category types.Category
		sentinel error
	}{
		{
			name: "missing file",
			path: func(t *testing.T) string {
				return filepath.Join(t.TempDir(), "gone.mp4")
			},
			category: types.CategoryContainer,
		},
		{
			name: "no ftyp brand",
			path: func(t *testing.T) string {
				return writeFixture(t, "free.mp4", box("free", make([]byte, 8)))
			},
			category: types.CategoryContainer,
			sentinel: ErrNotMP4,
		},
		{
			name: "no movie header",
			path: func(t *testing.T) string {
				return writeFixture(t, "nomoov.mp4", ftyp())
			},
			category: types.CategoryMetadata,
			sentinel: ErrNoMovieHeader,
		},
		{
			name: "zero timescale",
			path: func(t *testing.T) string {
				return writeFixture(t, "ts0.mp4", append(ftyp(), box("moov", mvhd(0, 100))...))
			},
			category: types.CategoryMetadata,
			sentinel: ErrNoMovieHeader,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Container{}.Duration(context.Background(), tt.path(t))
			require.Error(t, err)

			var fault *Fault
			require.ErrorAs(t, err, &fault)
			assert.Equal(t, tt.category, fault.Category)
			assert.Equal(t, tt.category, Classify(err))
			if tt.sentinel != nil {
				assert.ErrorIs(t, err, tt.sentinel)
			}
		})
	}
}

func TestContainer_Canceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := Container{}.Duration(ctx, "unused.mp4")
	assert.ErrorIs(t, err, context.Canceled)
}

func TestClassify(t *testing.T) {
	assert.Equal(t, types.CategoryOther, Classify(nil))
	assert.Equal(t, types.CategoryOther, Classify(errors.New("plain")))

	wrapped := fmt.Errorf("outer: %w", &Fault{Category: types.CategoryStructure, Op: "parse", Err: errors.New("bad box")})
	assert.Equal(t, types.CategoryStructure, Classify(wrapped))
	assert.Equal(t, "parse: bad box", errors.Unwrap(wrapped).Error())
}

func TestParseDuration(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    float64
		wantErr error
	}{
		{name: "typical", input: `{"format":{"duration":"125.480000"}}`, want: 125.48},
		{name: "integer", input: `{"format":{"duration":"30"}}`, want: 30},
		{name: "missing", input: `{"format":{}}`, wantErr: ErrNoDuration},
		{name: "not available", input: `{"format":{"duration":"N/A"}}`, wantErr: ErrNoDuration},
		{name: "empty object", input: `{}`, wantErr: ErrNoDuration},
		{name: "infinite", input: `{"format":{"duration":"inf"}}`, wantErr: ErrNoDuration},
		{name: "signed infinite", input: `{"format":{"duration":"+Inf"}}`, wantErr: ErrNoDuration},
		{name: "not a number", input: `{"format":{"duration":"NaN"}}`, wantErr: ErrNoDuration},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseDuration([]byte(tt.input))
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.InDelta(t, tt.want, got, 1e-9)
		})
	}

	_, err := ParseDuration([]byte("not json"))
	assert.Error(t, err)

	_, err = ParseDuration([]byte(`{"format":{"duration":"abc"}}`))
	assert.Error(t, err)
}

// fakeFFProbe writes a shell script that stands in for ffprobe.
func fakeFFProbe(t *testing.T, body string) string {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("shell script fixtures need a POSIX shell")
	}
	path := filepath.Join(t.TempDir(), "ffprobe")
	require.NoError(t, os.WriteFile(path, []byte("#!/bin/sh\n"+body+"\n"), 0o755))
	return path
}

func TestFFProbe_Duration(t *testing.T) {
	bin := fakeFFProbe(t, `echo '{"format":{"duration":"42.5"}}'`)

	d, err := FFProbe{Binary: bin}.Duration(context.Background(), "clip.mp4")
	require.NoError(t, err)
	assert.InDelta(t, 42.5, d, 1e-9)
}

func TestFFProbe_NonZeroExit(t *testing.T) {
	bin := fakeFFProbe(t, "exit 1")

	_, err := FFProbe{Binary: bin}.Duration(context.Background(), "clip.mp4")
	assert.Error(t, err)
}

func TestFFProbe_MissingBinary(t *testing.T) {
	bin := filepath.Join(t.TempDir(), "no-such-ffprobe")

	_, err := FFProbe{Binary: bin}.Duration(context.Background(), "clip.mp4")
	assert.Error(t, err)
}

func TestFFProbe_Timeout(t *testing.T) {
	bin := fakeFFProbe(t, "exec sleep 5")

	start := time.Now()
	_, err := FFProbe{Binary: bin, Timeout: 100 * time.Millisecond}.Duration(context.Background(), "clip.mp4")
	require.Error(t, err)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Less(t, time.Since(start), 4*time.Second)
}

func TestProberFunc(t *testing.T) {
	var p Prober = ProberFunc(func(_ context.Context, path string) (float64, error) {
		return float64(len(path)), nil
	})

	d, err := p.Duration(context.Background(), "abc")
	require.NoError(t, err)
	assert.Equal(t, 3.0, d)
}
