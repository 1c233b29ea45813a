package infrastructure

import (
	"runtime"
	"time"
)

// RuntimeStats is a point-in-time snapshot of the Go runtime, reported by the
// liveness endpoint. Prometheus scrapes get the same figures from the Go and
// process collectors.
type RuntimeStats struct {
	GoRoutines    int
	HeapAlloc     uint64
	HeapSys       uint64
	TotalAlloc    uint64
	GCCount       uint32
	LastGCPause   time.Duration
	CPUCount      int
	GoVersion     string
	ProcessUptime time.Duration
	Timestamp     time.Time
}

// ReadRuntimeStats collects runtime statistics for a process started at startTime.
func ReadRuntimeStats(startTime time.Time) RuntimeStats {
	var mem runtime.MemStats
	runtime.ReadMemStats(&mem)

	return RuntimeStats{
		GoRoutines:    runtime.NumGoroutine(),
		HeapAlloc:     mem.HeapAlloc,
		HeapSys:       mem.HeapSys,
		TotalAlloc:    mem.TotalAlloc,
		GCCount:       mem.NumGC,
		LastGCPause:   time.Duration(mem.PauseNs[(mem.NumGC+255)%256]),
		CPUCount:      runtime.NumCPU(),
		GoVersion:     runtime.Version(),
		ProcessUptime: time.Since(startTime),
		Timestamp:     time.Now(),
	}
}

// FormatStats returns a JSON-friendly representation of the snapshot
func (s RuntimeStats) FormatStats() map[string]interface{} {
	return map[string]interface{}{
		"goroutines":       s.GoRoutines,
		"heap_alloc_mb":    s.HeapAlloc / 1024 / 1024,
		"heap_sys_mb":      s.HeapSys / 1024 / 1024,
		"total_alloc_mb":   s.TotalAlloc / 1024 / 1024,
		"gc_count":         s.GCCount,
		"last_gc_pause_ms": s.LastGCPause.Milliseconds(),
		"cpu_count":        s.CPUCount,
		"go_version":       s.GoVersion,
		"uptime_seconds":   s.ProcessUptime.Seconds(),
		"timestamp":        s.Timestamp.Format(time.RFC3339),
	}
}
