package pool

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/tidwall/gjson"

	"github.com/entrhq/pagelens/pkg/driver"
	"github.com/entrhq/pagelens/pkg/logging"
	"github.com/entrhq/pagelens/pkg/metrics"
)

// errorThreshold is the number of consecutive failed liveness probes after
// which an instance is declared dead.
const errorThreshold = 3

// cleanupInterval is the cadence of the background idle-eviction loop.
const cleanupInterval = 30 * time.Second

// capabilityProbes is the fixed tag set checked once per new instance.
var capabilityProbes = []struct {
	tag    string
	script string
}{
	{"local_storage", "typeof window.localStorage !== 'undefined'"},
	{"session_storage", "typeof window.sessionStorage !== 'undefined'"},
	{"geolocation", "'geolocation' in navigator"},
	{"notifications", "'Notification' in window"},
	{"webgl", "(() => { const c = document.createElement('canvas'); return !!(c.getContext('webgl') || c.getContext('experimental-webgl')); })()"},
}

// Manager is the browser instance pool. All mutation of the instance table
// happens under mu; driver I/O for creation and closure also runs under mu
// so observe-then-mutate transitions (match vs. create vs. ceiling) stay
// serialized.
type Manager struct {
	mu        sync.Mutex
	factory   driver.Factory
	opts      Options
	instances map[string]*Instance
	log       *logging.Logger
	metrics   *metrics.Metrics
	startedAt time.Time

	stopCh      chan struct{}
	wg          sync.WaitGroup
	initialized bool
}

// NewManager creates a pool over the given driver factory. A nil logger
// falls back to a discard logger and metrics may be nil.
func NewManager(factory driver.Factory, opts Options, log *logging.Logger) *Manager {
	if log == nil {
		log = logging.Discard()
	}
	return &Manager{
		factory:   factory,
		opts:      opts.normalize(),
		instances: make(map[string]*Instance),
		log:       log,
		startedAt: time.Now(),
	}
}

// SetMetrics attaches telemetry collectors. Call before Initialize.
func (m *Manager) SetMetrics(mx *metrics.Metrics) {
	m.metrics = mx
}

// Options returns the pool configuration.
func (m *Manager) Options() Options {
	return m.opts
}

// Initialize starts the background maintenance loops. Safe to call once;
// subsequent calls are no-ops.
func (m *Manager) Initialize(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.initialized {
		return nil
	}
	m.stopCh = make(chan struct{})
	m.initialized = true

	if m.opts.AutoCleanup {
		m.wg.Add(1)
		go m.cleanupLoop()
	}
	if m.opts.HealthCheckInterval > 0 {
		m.wg.Add(1)
		go m.healthLoop()
	}
	m.log.Infof("pool initialized (ceiling=%d, idle_timeout=%s)", m.opts.MaxInstances, m.opts.IdleTimeout)
	return nil
}

// Shutdown stops the maintenance loops and closes every instance.
func (m *Manager) Shutdown(ctx context.Context) error {
	m.mu.Lock()
	if m.initialized {
		close(m.stopCh)
		m.initialized = false
	}
	m.mu.Unlock()
	m.wg.Wait()
	return m.CloseAll(ctx)
}

func (m *Manager) cleanupLoop() {
	defer m.wg.Done()
	ticker := time.NewTicker(cleanupInterval)
	defer ticker.Stop()
	for {
		select {
		case <-m.stopCh:
			return
		case <-ticker.C:
			if n := m.CleanupIdle(context.Background()); n > 0 {
				m.log.Infof("idle cleanup closed %d instance(s)", n)
			}
		}
	}
}

func (m *Manager) healthLoop() {
	defer m.wg.Done()
	ticker := time.NewTicker(m.opts.HealthCheckInterval)
	defer ticker.Stop()
	for {
		select {
		case <-m.stopCh:
			return
		case <-ticker.C:
			status := m.PerformHealthCheck(context.Background())
			if status.Status != HealthHealthy {
				m.log.Warnf("health check: %s (%d/%d probes failed)", status.Status, status.FailedProbes, status.CheckedInstances)
			}
		}
	}
}

// CreateBrowser launches and registers a new instance in status ready.
// Fails with UnsupportedBrowserError for an unknown kind and with
// CapacityExceededError when the ceiling holds after idle reclamation.
func (m *Manager) CreateBrowser(ctx context.Context, cfg driver.Config) (*Instance, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.createLocked(ctx, cfg)
}

func (m *Manager) createLocked(ctx context.Context, cfg driver.Config) (*Instance, error) {
	if !cfg.Kind.Valid() {
		return nil, &UnsupportedBrowserError{Kind: cfg.Kind}
	}

	if len(m.instances) >= m.opts.MaxInstances {
		m.reclaimIdleLocked(ctx)
	}
	if len(m.instances) >= m.opts.MaxInstances {
		return nil, &CapacityExceededError{Max: m.opts.MaxInstances}
	}

	drv, err := m.factory.Create(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create %s driver: %w", cfg.Kind, err)
	}

	now := time.Now()
	inst := &Instance{
		ID:           uuid.New().String(),
		Kind:         cfg.Kind,
		Driver:       drv,
		Config:       cfg,
		CreatedAt:    now,
		LastUsedAt:   now,
		Status:       StatusReady,
		Capabilities: probeCapabilities(ctx, drv),
	}
	m.instances[inst.ID] = inst
	m.metrics.IncCreated()
	m.observePoolLocked()
	m.log.Infof("created %s instance %s (headless=%t, %dx%d)",
		cfg.Kind, inst.ID, cfg.Headless, cfg.Viewport.Width, cfg.Viewport.Height)
	return inst, nil
}

// probeCapabilities checks the fixed capability tag set against a fresh
// session. A failed or false probe just drops the tag.
func probeCapabilities(ctx context.Context, drv driver.Driver) []string {
	tags := make([]string, 0, len(capabilityProbes))
	for _, probe := range capabilityProbes {
		result, err := drv.ExecuteScript(ctx, probe.script)
		if err != nil {
			continue
		}
		if gjson.Parse(result).Bool() {
			tags = append(tags, probe.tag)
		}
	}
	sort.Strings(tags)
	return tags
}

// reclaimIdleLocked closes non-busy instances idle past the timeout to free
// ceiling capacity.
func (m *Manager) reclaimIdleLocked(ctx context.Context) {
	now := time.Now()
	for id, inst := range m.instances {
		if inst.Status == StatusBusy {
			continue
		}
		if now.Sub(inst.LastUsedAt) > m.opts.IdleTimeout {
			m.closeLocked(ctx, id, "idle reclamation")
		}
	}
}

// GetBrowser hands out an instance marked busy. Preference order: a ready
// or idle instance whose configuration matches cfg field-for-field, then
// any available instance, then a freshly created one. When the pool is
// saturated it polls until an instance frees up or the availability
// deadline passes.
func (m *Manager) GetBrowser(ctx context.Context, cfg *driver.Config) (*Instance, error) {
	deadline := time.Now().Add(m.opts.AvailabilityTimeout)

	for {
		inst, err := m.tryAcquire(ctx, cfg)
		if err != nil {
			return nil, err
		}
		if inst != nil {
			return inst, nil
		}

		if time.Now().After(deadline) {
			return nil, &AvailabilityTimeoutError{Waited: m.opts.AvailabilityTimeout}
		}
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(m.opts.AvailabilityPollInterval):
		}
	}
}

// tryAcquire makes one pass over the table. It returns (nil, nil) when the
// caller should keep waiting.
func (m *Manager) tryAcquire(ctx context.Context, cfg *driver.Config) (*Instance, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if inst := m.matchLocked(cfg); inst != nil {
		inst.Status = StatusBusy
		inst.LastUsedAt = time.Now()
		m.observePoolLocked()
		return inst, nil
	}

	if len(m.instances) < m.opts.MaxInstances {
		create := driver.Config{Kind: driver.KindChrome, Headless: true, Viewport: driver.Viewport{Width: 1280, Height: 720}}
		if cfg != nil {
			create = *cfg
		}
		inst, err := m.createLocked(ctx, create)
		if err != nil {
			var capacity *CapacityExceededError
			if errors.As(err, &capacity) {
				return nil, nil // raced to the ceiling, keep waiting
			}
			return nil, err
		}
		inst.Status = StatusBusy
		inst.LastUsedAt = time.Now()
		m.observePoolLocked()
		return inst, nil
	}

	return nil, nil
}

// matchLocked picks an available instance, preferring an exact
// configuration match when one was requested.
func (m *Manager) matchLocked(cfg *driver.Config) *Instance {
	if cfg != nil {
		for _, inst := range m.instances {
			if inst.available() && inst.Config.Matches(*cfg) {
				return inst
			}
		}
	}
	for _, inst := range m.instances {
		if inst.available() {
			return inst
		}
	}
	return nil
}

// ReleaseBrowser returns a busy instance to the pool. The result reports
// whether the id was tracked at all; releasing an unknown id is not an
// error.
func (m *Manager) ReleaseBrowser(id string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	inst, ok := m.instances[id]
	if !ok {
		return false
	}
	if inst.Status == StatusBusy {
		inst.Status = StatusIdle
	}
	inst.LastUsedAt = time.Now()
	m.observePoolLocked()
	return true
}

// CloseBrowser terminates an instance and removes it from tracking. A
// failed termination is logged, not surfaced: table consistency takes
// priority over clean shutdown.
func (m *Manager) CloseBrowser(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.instances[id]; !ok {
		return fmt.Errorf("browser instance %q not found", id)
	}
	m.closeLocked(ctx, id, "explicit close")
	return nil
}

func (m *Manager) closeLocked(ctx context.Context, id, reason string) {
	inst := m.instances[id]
	if inst == nil {
		return
	}
	if err := inst.Driver.Quit(ctx); err != nil {
		m.log.Warnf("instance %s quit failed during %s: %v", id, reason, err)
	}
	delete(m.instances, id)
	m.metrics.IncClosed()
	m.observePoolLocked()
	m.log.Infof("closed instance %s (%s)", id, reason)
}

// CloseAll terminates every tracked instance concurrently. Individual quit
// failures are collected, never fatal to the batch.
func (m *Manager) CloseAll(ctx context.Context) error {
	m.mu.Lock()
	doomed := make([]*Instance, 0, len(m.instances))
	for id, inst := range m.instances {
		doomed = append(doomed, inst)
		delete(m.instances, id)
	}
	m.observePoolLocked()
	m.mu.Unlock()

	errCh := make(chan error, len(doomed))
	var wg sync.WaitGroup
	for _, inst := range doomed {
		wg.Add(1)
		go func(inst *Instance) {
			defer wg.Done()
			if err := inst.Driver.Quit(ctx); err != nil {
				errCh <- fmt.Errorf("instance %s: %w", inst.ID, err)
			}
			m.metrics.IncClosed()
		}(inst)
	}
	wg.Wait()
	close(errCh)

	var errs []error
	for err := range errCh {
		m.log.Warnf("close-all: %v", err)
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

// CleanupIdle closes non-busy instances idle past the timeout and reports
// how many were closed.
func (m *Manager) CleanupIdle(ctx context.Context) int {
	m.mu.Lock()
	defer m.mu.Unlock()

	before := len(m.instances)
	m.reclaimIdleLocked(ctx)
	return before - len(m.instances)
}

// BrowserStatus returns a read-only snapshot of one instance.
func (m *Manager) BrowserStatus(id string) (Snapshot, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	inst, ok := m.instances[id]
	if !ok {
		return Snapshot{}, false
	}
	return inst.snapshot(), true
}

// AllBrowsers returns read-only snapshots of every tracked instance,
// ordered by creation time.
func (m *Manager) AllBrowsers() []Snapshot {
	m.mu.Lock()
	defer m.mu.Unlock()

	snaps := make([]Snapshot, 0, len(m.instances))
	for _, inst := range m.instances {
		snaps = append(snaps, inst.snapshot())
	}
	sort.Slice(snaps, func(i, j int) bool { return snaps[i].CreatedAt.Before(snaps[j].CreatedAt) })
	return snaps
}

// Acquire marks a tracked instance busy and returns its driver. It fails
// for an unknown id and for an instance that is already held or errored,
// so two callers can never drive the same handle. Callers return the
// instance with ReleaseBrowser when done.
func (m *Manager) Acquire(id string) (driver.Driver, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	inst, ok := m.instances[id]
	if !ok {
		return nil, fmt.Errorf("browser instance %q not found", id)
	}
	if !inst.available() {
		return nil, fmt.Errorf("browser instance %q is %s", id, inst.Status)
	}
	inst.Status = StatusBusy
	inst.LastUsedAt = time.Now()
	m.observePoolLocked()
	return inst.Driver, nil
}

// observePoolLocked pushes instance counts to the gauges.
func (m *Manager) observePoolLocked() {
	if !m.opts.ResourceMonitoring {
		return
	}
	total, active, idle := 0, 0, 0
	for _, inst := range m.instances {
		total++
		switch inst.Status {
		case StatusBusy:
			active++
		case StatusReady, StatusIdle:
			idle++
		}
	}
	m.metrics.ObservePool(total, active, idle)
}
