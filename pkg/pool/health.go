package pool

import (
	"context"
	"fmt"
	"time"
)

// HealthState classifies the pool after a health sweep.
type HealthState string

const (
	// HealthHealthy means every probe succeeded.
	HealthHealthy HealthState = "healthy"

	// HealthDegraded means probes failed on fewer than half the instances.
	HealthDegraded HealthState = "degraded"

	// HealthCritical means probes failed on at least half the instances.
	HealthCritical HealthState = "critical"
)

// HealthStatus is the aggregate result of one health sweep.
type HealthStatus struct {
	Status           HealthState `json:"status"`
	CheckedInstances int         `json:"checked_instances"`
	FailedProbes     int         `json:"failed_probes"`
	Issues           []string    `json:"issues,omitempty"`
	CheckedAt        time.Time   `json:"checked_at"`
}

// PerformHealthCheck probes every tracked instance with a cheap title
// query. A successful probe resets the instance's consecutive-error
// counter and promotes idle instances back to ready. The third consecutive
// failure marks the instance as errored and triggers exactly one recovery:
// close it and create a replacement with its original configuration.
//
// The sweep itself never fails; every problem it sees becomes an issue
// string in the returned status.
func (m *Manager) PerformHealthCheck(ctx context.Context) HealthStatus {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.metrics.IncHealthCheck()

	status := HealthStatus{CheckedAt: time.Now()}
	var issues []string

	// Snapshot ids first: recovery mutates the table mid-sweep.
	ids := make([]string, 0, len(m.instances))
	for id := range m.instances {
		ids = append(ids, id)
	}
	status.CheckedInstances = len(ids)

	for _, id := range ids {
		inst, ok := m.instances[id]
		if !ok {
			continue
		}

		_, err := inst.Driver.Title(ctx)
		if err == nil {
			inst.ErrorCount = 0
			if inst.Status == StatusIdle {
				inst.Status = StatusReady
			}
			continue
		}

		status.FailedProbes++
		inst.ErrorCount++
		issues = append(issues, fmt.Sprintf("instance %s failed liveness probe (%d consecutive): %v", id, inst.ErrorCount, err))

		if inst.ErrorCount < errorThreshold {
			continue
		}

		// Threshold crossed: the instance is dead. Close it and try a
		// single replacement with the original configuration.
		inst.Status = StatusError
		m.log.Warnf("instance %s errored after %d consecutive probe failures", id, inst.ErrorCount)
		cfg := inst.Config
		m.closeLocked(ctx, id, "health recovery")

		m.metrics.IncRecovery()
		if _, err := m.createLocked(ctx, cfg); err != nil {
			issues = append(issues, fmt.Sprintf("recovery failed for %s instance %s: %v", cfg.Kind, id, err))
		} else {
			m.log.Infof("recovered errored instance %s with a fresh %s session", id, cfg.Kind)
		}
	}

	status.Issues = issues
	switch {
	case status.FailedProbes == 0:
		status.Status = HealthHealthy
	case status.FailedProbes*2 < status.CheckedInstances:
		status.Status = HealthDegraded
	default:
		status.Status = HealthCritical
	}
	m.observePoolLocked()
	return status
}
