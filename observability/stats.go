// Package observability exposes lightweight runtime telemetry for the relay.
package observability

import (
	"runtime"
	"sync/atomic"
	"time"
)

// Snapshot aggregates the counters served on the stats endpoint.
type Snapshot struct {
	ActiveConnections int64  `json:"active_connections"`
	TotalConnections  uint64 `json:"total_connections"`
	FramesWritten     uint64 `json:"frames_written"`
	AllocMemMb        uint64 `json:"alloc_mem_mb"`
	NumGC             uint32 `json:"num_gc"`
	UptimeSeconds     int64  `json:"uptime_seconds"`
}

// Monitor collects connection and delivery counters. All methods are safe for
// concurrent use; counters are atomics so hot paths never contend on a lock.
type Monitor struct {
	startedAt time.Time

	activeConnections atomic.Int64
	totalConnections  atomic.Uint64
	framesWritten     atomic.Uint64
}

func NewMonitor() *Monitor {
	return &Monitor{startedAt: time.Now()}
}

func (m *Monitor) ConnOpened() {
	m.activeConnections.Add(1)
	m.totalConnections.Add(1)
}

func (m *Monitor) ConnClosed() {
	m.activeConnections.Add(-1)
}

func (m *Monitor) FrameWritten() {
	m.framesWritten.Add(1)
}

func (m *Monitor) Snapshot() Snapshot {
	var mem runtime.MemStats
	runtime.ReadMemStats(&mem)
	return Snapshot{
		ActiveConnections: m.activeConnections.Load(),
		TotalConnections:  m.totalConnections.Load(),
		FramesWritten:     m.framesWritten.Load(),
		AllocMemMb:        mem.Alloc / 1024 / 1024,
		NumGC:             mem.NumGC,
		UptimeSeconds:     int64(time.Since(m.startedAt).Seconds()),
	}
}
