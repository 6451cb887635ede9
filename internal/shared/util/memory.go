package util

import (
	"runtime"
)

// HeapAllocMB is the live heap in MB, logged after each build cycle.
func HeapAllocMB() uint64 {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)
	return m.Alloc / 1024 / 1024
}
