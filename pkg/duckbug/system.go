// system.go captures system state at delivery time.

package duckbug

import (
	"os"
	"runtime"
	"time"
)

// SystemState captures process metrics at the time a record is delivered.
type SystemState struct {
	// MemoryBytes is the current heap allocation in bytes.
	MemoryBytes int64 `json:"memory_bytes"`

	// GoroutineCount is the number of active goroutines.
	GoroutineCount int `json:"goroutine_count"`

	// UptimeMs is the time since startTime in milliseconds.
	UptimeMs int64 `json:"uptime_ms"`

	// HostName is the hostname of the machine.
	HostName string `json:"host_name"`
}

// CaptureSystemState captures system metrics at the current moment.
// The startTime parameter is used to calculate process uptime.
func CaptureSystemState(startTime time.Time) *SystemState {
	var memStats runtime.MemStats
	runtime.ReadMemStats(&memStats)

	hostname, _ := os.Hostname() // Ignore error, empty hostname is acceptable

	uptimeMs := time.Since(startTime).Milliseconds()
	if uptimeMs < 0 {
		uptimeMs = 0 // Clamp to 0 if start time is in the future
	}

	return &SystemState{
		MemoryBytes:    int64(memStats.Alloc),
		GoroutineCount: runtime.NumGoroutine(),
		UptimeMs:       uptimeMs,
		HostName:       hostname,
	}
}
