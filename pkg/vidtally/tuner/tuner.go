// Package tuner picks a probe worker count from the detected CPU and
// memory of the host.
package tuner

const (
	// maxWorkers caps the pool; each worker may hold an ffprobe process.
	maxWorkers = 16

	// workersPerCore reflects that probing is I/O bound.
	workersPerCore = 2

	// bytesPerWorker estimates the peak memory of one fallback probe.
	bytesPerWorker = 64 * 1024 * 1024
)

// SystemResources contains detected system resources.
type SystemResources struct {
	// CPUCores is the number of logical CPU cores available.
	CPUCores int

	// TotalRAM is the total physical RAM in bytes.
	TotalRAM int64

	// AvailableRAM is the RAM in bytes the process may reasonably use.
	// It may be an estimate.
	AvailableRAM int64
}

// Workers returns the default probe worker count: two per core, at most 16,
// further limited so that every worker could run a fallback probe within
// the available memory. The result is never below 1.
func Workers(resources SystemResources) int {
	workers := resources.CPUCores * workersPerCore
	workers = min(workers, maxWorkers)

	if resources.AvailableRAM > 0 {
		workers = min(workers, int(resources.AvailableRAM/bytesPerWorker))
	}

	return max(workers, 1)
}

// WorkersWithOverride returns override when it is positive and otherwise
// the detected default.
func WorkersWithOverride(resources SystemResources, override int) int {
	if override > 0 {
		return override
	}
	return Workers(resources)
}
