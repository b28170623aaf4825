package pool

import "time"

// Options configure a Manager. They are fixed at construction and never
// change afterwards.
type Options struct {
	// MaxInstances is the concurrency ceiling for live instances.
	MaxInstances int

	// NavigationTimeout bounds page loads performed by callers holding an
	// instance. The pool itself does not navigate; the value is carried
	// here so every consumer reads one source of truth.
	NavigationTimeout time.Duration

	// IdleTimeout is how long a non-busy instance may sit unused before
	// cleanup or capacity reclamation closes it.
	IdleTimeout time.Duration

	// AutoCleanup enables the background idle-eviction loop.
	AutoCleanup bool

	// ResourceMonitoring enables gauge updates on ResourceUsage calls and
	// pool transitions.
	ResourceMonitoring bool

	// HealthCheckInterval is the cadence of the background health loop.
	// Zero disables the loop; PerformHealthCheck can still be called
	// directly.
	HealthCheckInterval time.Duration

	// AvailabilityTimeout bounds how long GetBrowser waits for an
	// instance when the pool is saturated.
	AvailabilityTimeout time.Duration

	// AvailabilityPollInterval is the wait-loop poll cadence.
	AvailabilityPollInterval time.Duration
}

// DefaultOptions returns the standard pool configuration.
func DefaultOptions() Options {
	return Options{
		MaxInstances:             5,
		NavigationTimeout:        30 * time.Second,
		IdleTimeout:              5 * time.Minute,
		AutoCleanup:              true,
		ResourceMonitoring:       true,
		HealthCheckInterval:      time.Minute,
		AvailabilityTimeout:      30 * time.Second,
		AvailabilityPollInterval: time.Second,
	}
}

// normalize fills zero fields with defaults so a partially specified
// Options value behaves sanely.
func (o Options) normalize() Options {
	def := DefaultOptions()
	if o.MaxInstances <= 0 {
		o.MaxInstances = def.MaxInstances
	}
	if o.NavigationTimeout <= 0 {
		o.NavigationTimeout = def.NavigationTimeout
	}
	if o.IdleTimeout <= 0 {
		o.IdleTimeout = def.IdleTimeout
	}
	if o.AvailabilityTimeout <= 0 {
		o.AvailabilityTimeout = def.AvailabilityTimeout
	}
	if o.AvailabilityPollInterval <= 0 {
		o.AvailabilityPollInterval = def.AvailabilityPollInterval
	}
	return o
}
