package pool

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/entrhq/pagelens/pkg/driver"
	"github.com/entrhq/pagelens/pkg/driver/drivertest"
)

func chromeConfig() driver.Config {
	return driver.Config{
		Kind:     driver.KindChrome,
		Headless: true,
		Viewport: driver.Viewport{Width: 1280, Height: 720},
	}
}

func testOptions() Options {
	return Options{
		MaxInstances:             3,
		NavigationTimeout:        time.Second,
		IdleTimeout:              time.Minute,
		AvailabilityTimeout:      100 * time.Millisecond,
		AvailabilityPollInterval: 10 * time.Millisecond,
	}
}

func TestCreateBrowser(t *testing.T) {
	factory := &drivertest.Factory{}
	m := NewManager(factory, testOptions(), nil)

	inst, err := m.CreateBrowser(context.Background(), chromeConfig())
	require.NoError(t, err)

	assert.NotEmpty(t, inst.ID)
	assert.Equal(t, driver.KindChrome, inst.Kind)
	assert.Equal(t, StatusReady, inst.Status)
	assert.Len(t, factory.Created, 1)
}

func TestCreateBrowserUnsupportedKind(t *testing.T) {
	m := NewManager(&drivertest.Factory{}, testOptions(), nil)

	_, err := m.CreateBrowser(context.Background(), driver.Config{Kind: "safari"})
	require.Error(t, err)

	var unsupported *UnsupportedBrowserError
	assert.True(t, errors.As(err, &unsupported))
}

func TestCreateBrowserCapacityCeiling(t *testing.T) {
	opts := testOptions()
	opts.MaxInstances = 2
	m := NewManager(&drivertest.Factory{}, opts, nil)

	for i := 0; i < 2; i++ {
		_, err := m.CreateBrowser(context.Background(), chromeConfig())
		require.NoError(t, err)
	}

	_, err := m.CreateBrowser(context.Background(), chromeConfig())
	require.Error(t, err)

	var capacity *CapacityExceededError
	require.True(t, errors.As(err, &capacity))
	assert.Equal(t, 2, capacity.Max)
}

func TestCreateBrowserReclaimsIdleAtCeiling(t *testing.T) {
	opts := testOptions()
	opts.MaxInstances = 1
	opts.IdleTimeout = 10 * time.Millisecond
	factory := &drivertest.Factory{}
	m := NewManager(factory, opts, nil)

	first, err := m.CreateBrowser(context.Background(), chromeConfig())
	require.NoError(t, err)

	time.Sleep(20 * time.Millisecond)

	second, err := m.CreateBrowser(context.Background(), chromeConfig())
	require.NoError(t, err)
	assert.NotEqual(t, first.ID, second.ID)
	assert.True(t, factory.Created[0].Closed, "idle instance should have been reclaimed")
}

func TestCreateBrowserFactoryFailure(t *testing.T) {
	factory := &drivertest.Factory{CreateErr: errors.New("launch failed")}
	m := NewManager(factory, testOptions(), nil)

	_, err := m.CreateBrowser(context.Background(), chromeConfig())
	assert.ErrorContains(t, err, "launch failed")
	assert.Empty(t, m.AllBrowsers())
}

func TestGetBrowserReusesReleasedInstance(t *testing.T) {
	factory := &drivertest.Factory{}
	m := NewManager(factory, testOptions(), nil)

	first, err := m.GetBrowser(context.Background(), nil)
	require.NoError(t, err)
	assert.Equal(t, StatusBusy, first.Status)

	require.True(t, m.ReleaseBrowser(first.ID))
	snap, ok := m.BrowserStatus(first.ID)
	require.True(t, ok)
	assert.Equal(t, StatusIdle, snap.Status)

	second, err := m.GetBrowser(context.Background(), nil)
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)
	assert.Len(t, factory.Created, 1, "released instance should be reused, not recreated")
}

func TestGetBrowserPrefersConfigMatch(t *testing.T) {
	m := NewManager(&drivertest.Factory{}, testOptions(), nil)

	chrome, err := m.CreateBrowser(context.Background(), chromeConfig())
	require.NoError(t, err)

	firefoxCfg := chromeConfig()
	firefoxCfg.Kind = driver.KindFirefox
	firefox, err := m.CreateBrowser(context.Background(), firefoxCfg)
	require.NoError(t, err)

	got, err := m.GetBrowser(context.Background(), &firefoxCfg)
	require.NoError(t, err)
	assert.Equal(t, firefox.ID, got.ID)
	assert.NotEqual(t, chrome.ID, got.ID)
}

func TestGetBrowserAvailabilityTimeout(t *testing.T) {
	opts := testOptions()
	opts.MaxInstances = 1
	m := NewManager(&drivertest.Factory{}, opts, nil)

	_, err := m.GetBrowser(context.Background(), nil)
	require.NoError(t, err)

	_, err = m.GetBrowser(context.Background(), nil)
	require.Error(t, err)

	var timeout *AvailabilityTimeoutError
	assert.True(t, errors.As(err, &timeout))
}

func TestGetBrowserWaitsForRelease(t *testing.T) {
	opts := testOptions()
	opts.MaxInstances = 1
	opts.AvailabilityTimeout = time.Second
	m := NewManager(&drivertest.Factory{}, opts, nil)

	first, err := m.GetBrowser(context.Background(), nil)
	require.NoError(t, err)

	go func() {
		time.Sleep(30 * time.Millisecond)
		m.ReleaseBrowser(first.ID)
	}()

	second, err := m.GetBrowser(context.Background(), nil)
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)
}

func TestReleaseBrowserUnknownID(t *testing.T) {
	m := NewManager(&drivertest.Factory{}, testOptions(), nil)
	assert.False(t, m.ReleaseBrowser("no-such-id"))
}

func TestCloseBrowser(t *testing.T) {
	factory := &drivertest.Factory{}
	m := NewManager(factory, testOptions(), nil)

	inst, err := m.CreateBrowser(context.Background(), chromeConfig())
	require.NoError(t, err)

	require.NoError(t, m.CloseBrowser(context.Background(), inst.ID))
	assert.True(t, factory.Created[0].Closed)

	_, ok := m.BrowserStatus(inst.ID)
	assert.False(t, ok)
}

func TestCloseBrowserUnknownID(t *testing.T) {
	m := NewManager(&drivertest.Factory{}, testOptions(), nil)
	assert.ErrorContains(t, m.CloseBrowser(context.Background(), "no-such-id"), "not found")
}

func TestCloseBrowserKeepsTableConsistentOnQuitFailure(t *testing.T) {
	factory := &drivertest.Factory{
		OnCreate: func(d *drivertest.Driver) { d.QuitErr = errors.New("wedged") },
	}
	m := NewManager(factory, testOptions(), nil)

	inst, err := m.CreateBrowser(context.Background(), chromeConfig())
	require.NoError(t, err)

	require.NoError(t, m.CloseBrowser(context.Background(), inst.ID))
	_, ok := m.BrowserStatus(inst.ID)
	assert.False(t, ok, "instance must be untracked even when quit fails")
}

func TestCloseAll(t *testing.T) {
	factory := &drivertest.Factory{}
	m := NewManager(factory, testOptions(), nil)

	for i := 0; i < 3; i++ {
		_, err := m.CreateBrowser(context.Background(), chromeConfig())
		require.NoError(t, err)
	}

	require.NoError(t, m.CloseAll(context.Background()))
	assert.Empty(t, m.AllBrowsers())
	for _, d := range factory.Created {
		assert.True(t, d.Closed)
	}
}

func TestCleanupIdle(t *testing.T) {
	opts := testOptions()
	opts.IdleTimeout = 10 * time.Millisecond
	factory := &drivertest.Factory{}
	m := NewManager(factory, opts, nil)

	busy, err := m.GetBrowser(context.Background(), nil)
	require.NoError(t, err)
	_, err = m.CreateBrowser(context.Background(), chromeConfig())
	require.NoError(t, err)

	time.Sleep(20 * time.Millisecond)

	assert.Equal(t, 1, m.CleanupIdle(context.Background()))

	snaps := m.AllBrowsers()
	require.Len(t, snaps, 1)
	assert.Equal(t, busy.ID, snaps[0].ID, "busy instances survive idle cleanup")
}

func TestAllBrowsersSortedByCreation(t *testing.T) {
	m := NewManager(&drivertest.Factory{}, testOptions(), nil)

	for i := 0; i < 3; i++ {
		_, err := m.CreateBrowser(context.Background(), chromeConfig())
		require.NoError(t, err)
		time.Sleep(time.Millisecond)
	}

	snaps := m.AllBrowsers()
	require.Len(t, snaps, 3)
	for i := 1; i < len(snaps); i++ {
		assert.False(t, snaps[i].CreatedAt.Before(snaps[i-1].CreatedAt))
	}
}

func TestAcquire(t *testing.T) {
	factory := &drivertest.Factory{}
	m := NewManager(factory, testOptions(), nil)

	inst, err := m.CreateBrowser(context.Background(), chromeConfig())
	require.NoError(t, err)

	drv, err := m.Acquire(inst.ID)
	require.NoError(t, err)
	assert.Same(t, driver.Driver(factory.Created[0]), drv)

	snap, ok := m.BrowserStatus(inst.ID)
	require.True(t, ok)
	assert.Equal(t, StatusBusy, snap.Status)

	_, err = m.Acquire("no-such-id")
	assert.ErrorContains(t, err, "not found")
}

func TestAcquireRejectsHeldInstance(t *testing.T) {
	m := NewManager(&drivertest.Factory{}, testOptions(), nil)

	inst, err := m.GetBrowser(context.Background(), nil)
	require.NoError(t, err)

	_, err = m.Acquire(inst.ID)
	assert.ErrorContains(t, err, "busy")
}

func TestAcquirePreventsDoubleAssignment(t *testing.T) {
	m := NewManager(&drivertest.Factory{}, testOptions(), nil)

	inst, err := m.CreateBrowser(context.Background(), chromeConfig())
	require.NoError(t, err)

	_, err = m.Acquire(inst.ID)
	require.NoError(t, err)

	// The held instance must not be handed to anyone else; the pool has
	// room, so the second caller gets a fresh one.
	got, err := m.GetBrowser(context.Background(), nil)
	require.NoError(t, err)
	assert.NotEqual(t, inst.ID, got.ID)

	// Released, it becomes assignable again.
	require.True(t, m.ReleaseBrowser(inst.ID))
	drv, err := m.Acquire(inst.ID)
	require.NoError(t, err)
	assert.NotNil(t, drv)
}

func TestResourceUsage(t *testing.T) {
	m := NewManager(&drivertest.Factory{}, testOptions(), nil)

	busy, err := m.GetBrowser(context.Background(), nil)
	require.NoError(t, err)
	_, err = m.CreateBrowser(context.Background(), chromeConfig())
	require.NoError(t, err)

	usage := m.ResourceUsage()
	assert.Equal(t, 2, usage.TotalInstances)
	assert.Equal(t, 1, usage.ActiveInstances)
	assert.Equal(t, 1, usage.IdleInstances)
	assert.NotZero(t, usage.AllocBytes)
	assert.Positive(t, usage.Goroutines)

	m.ReleaseBrowser(busy.ID)
	usage = m.ResourceUsage()
	assert.Equal(t, 0, usage.ActiveInstances)
}

func TestShutdownClosesEverything(t *testing.T) {
	factory := &drivertest.Factory{}
	m := NewManager(factory, testOptions(), nil)
	require.NoError(t, m.Initialize(context.Background()))

	_, err := m.CreateBrowser(context.Background(), chromeConfig())
	require.NoError(t, err)

	require.NoError(t, m.Shutdown(context.Background()))
	assert.Empty(t, m.AllBrowsers())
	assert.True(t, factory.Created[0].Closed)
}
