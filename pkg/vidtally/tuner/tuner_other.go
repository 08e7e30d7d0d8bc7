//go:build !darwin && !linux

package tuner

import "runtime"

// defaultTotalRAM is assumed where memory detection is not implemented.
const defaultTotalRAM = 8 * 1024 * 1024 * 1024

// Detect reports CPU cores and an assumed 8GB of RAM, half of it available.
func Detect() (SystemResources, error) {
	return SystemResources{
		CPUCores:     runtime.NumCPU(),
		TotalRAM:     defaultTotalRAM,
		AvailableRAM: defaultTotalRAM / 2,
	}, nil
}
