//go:build darwin

package tuner

import (
	"fmt"
	"runtime"

	"golang.org/x/sys/unix"
)

// Detect reports CPU cores and RAM. Available RAM on macOS is estimated as
// half of hw.memsize since the kernel keeps most free pages as file cache.
func Detect() (SystemResources, error) {
	resources := SystemResources{CPUCores: runtime.NumCPU()}

	memsize, err := unix.SysctlUint64("hw.memsize")
	if err != nil {
		return resources, fmt.Errorf("sysctl hw.memsize: %w", err)
	}

	resources.TotalRAM = int64(memsize)
	resources.AvailableRAM = resources.TotalRAM / 2
	return resources, nil
}
