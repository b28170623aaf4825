package pool

import (
	"runtime"
	"time"
)

// ResourceUsage is a point-in-time snapshot of process memory and pool
// occupancy.
type ResourceUsage struct {
	AllocBytes      uint64        `json:"alloc_bytes"`
	TotalAllocBytes uint64        `json:"total_alloc_bytes"`
	SysBytes        uint64        `json:"sys_bytes"`
	NumGC           uint32        `json:"num_gc"`
	Goroutines      int           `json:"goroutines"`
	TotalInstances  int           `json:"total_instances"`
	ActiveInstances int           `json:"active_instances"`
	IdleInstances   int           `json:"idle_instances"`
	Uptime          time.Duration `json:"uptime"`
}

// ResourceUsage reports current memory and instance counts. Read-only; no
// pool state changes.
func (m *Manager) ResourceUsage() ResourceUsage {
	var ms runtime.MemStats
	runtime.ReadMemStats(&ms)

	m.mu.Lock()
	defer m.mu.Unlock()

	usage := ResourceUsage{
		AllocBytes:      ms.Alloc,
		TotalAllocBytes: ms.TotalAlloc,
		SysBytes:        ms.Sys,
		NumGC:           ms.NumGC,
		Goroutines:      runtime.NumGoroutine(),
		Uptime:          time.Since(m.startedAt),
	}
	for _, inst := range m.instances {
		usage.TotalInstances++
		switch inst.Status {
		case StatusBusy:
			usage.ActiveInstances++
		case StatusReady, StatusIdle:
			usage.IdleInstances++
		}
	}

	if m.opts.ResourceMonitoring {
		m.metrics.ObserveMemory(ms.Alloc)
		m.metrics.ObservePool(usage.TotalInstances, usage.ActiveInstances, usage.IdleInstances)
	}
	return usage
}
