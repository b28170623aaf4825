package pool

import (
	"time"

	"github.com/entrhq/pagelens/pkg/driver"
)

// Status is the lifecycle state of a browser instance.
type Status string

const (
	// StatusReady means the instance is live and available for callers.
	StatusReady Status = "ready"

	// StatusBusy means a caller currently owns the instance's driver.
	StatusBusy Status = "busy"

	// StatusIdle means the instance was released and is awaiting reuse or
	// idle eviction.
	StatusIdle Status = "idle"

	// StatusError means the instance crossed the consecutive-failure
	// threshold. Terminal: the instance is only ever closed from here.
	StatusError Status = "error"
)

// Instance is one owned browser session plus its tracking metadata.
// Status, LastUsedAt and ErrorCount are mutated only by the Manager under
// its lock; callers that receive an *Instance may use ID, Driver and Config
// but must not write any field.
type Instance struct {
	// ID uniquely identifies the instance for its lifetime.
	ID string

	// Kind is the browser vendor this instance runs.
	Kind driver.Kind

	// Driver is the owned session handle. Exactly one instance owns a
	// given handle.
	Driver driver.Driver

	// Config is the configuration the instance was created with. Recovery
	// recreates replacements from this value.
	Config driver.Config

	// CreatedAt is when the instance was registered.
	CreatedAt time.Time

	// LastUsedAt is updated on every acquisition and release.
	LastUsedAt time.Time

	// Status is the current lifecycle state.
	Status Status

	// ErrorCount counts consecutive failed liveness probes. Reset to zero
	// on any successful probe.
	ErrorCount int

	// Capabilities holds the capability tags probed at creation, sorted.
	Capabilities []string
}

// available reports whether the instance can be handed to a caller.
// Released (idle) instances are promoted back through ready on
// acquisition.
func (i *Instance) available() bool {
	return i.Status == StatusReady || i.Status == StatusIdle
}

// Snapshot is a read-only view of an instance. It deliberately omits the
// live driver handle so status callers cannot reach the session.
type Snapshot struct {
	ID           string        `json:"id"`
	Kind         driver.Kind   `json:"kind"`
	Status       Status        `json:"status"`
	Config       driver.Config `json:"config"`
	CreatedAt    time.Time     `json:"created_at"`
	LastUsedAt   time.Time     `json:"last_used_at"`
	ErrorCount   int           `json:"error_count"`
	Capabilities []string      `json:"capabilities"`
}

func (i *Instance) snapshot() Snapshot {
	caps := make([]string, len(i.Capabilities))
	copy(caps, i.Capabilities)
	return Snapshot{
		ID:           i.ID,
		Kind:         i.Kind,
		Status:       i.Status,
		Config:       i.Config,
		CreatedAt:    i.CreatedAt,
		LastUsedAt:   i.LastUsedAt,
		ErrorCount:   i.ErrorCount,
		Capabilities: caps,
	}
}
