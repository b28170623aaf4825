package pool

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/entrhq/pagelens/pkg/driver"
	"github.com/entrhq/pagelens/pkg/driver/drivertest"
)

func TestHealthCheckAllHealthy(t *testing.T) {
	m := NewManager(&drivertest.Factory{}, testOptions(), nil)

	for i := 0; i < 2; i++ {
		_, err := m.CreateBrowser(context.Background(), chromeConfig())
		require.NoError(t, err)
	}

	status := m.PerformHealthCheck(context.Background())
	assert.Equal(t, HealthHealthy, status.Status)
	assert.Equal(t, 2, status.CheckedInstances)
	assert.Zero(t, status.FailedProbes)
	assert.Empty(t, status.Issues)
}

func TestHealthCheckEmptyPool(t *testing.T) {
	m := NewManager(&drivertest.Factory{}, testOptions(), nil)

	status := m.PerformHealthCheck(context.Background())
	assert.Equal(t, HealthHealthy, status.Status)
	assert.Zero(t, status.CheckedInstances)
}

func TestHealthCheckCountsConsecutiveFailures(t *testing.T) {
	factory := &drivertest.Factory{}
	m := NewManager(factory, testOptions(), nil)

	inst, err := m.CreateBrowser(context.Background(), chromeConfig())
	require.NoError(t, err)

	factory.Last().TitleFailures = 1
	status := m.PerformHealthCheck(context.Background())
	assert.Equal(t, 1, status.FailedProbes)

	snap, ok := m.BrowserStatus(inst.ID)
	require.True(t, ok)
	assert.Equal(t, 1, snap.ErrorCount)

	// A healthy probe resets the counter.
	status = m.PerformHealthCheck(context.Background())
	assert.Zero(t, status.FailedProbes)

	snap, _ = m.BrowserStatus(inst.ID)
	assert.Zero(t, snap.ErrorCount)
}

func TestHealthCheckPromotesIdleOnSuccess(t *testing.T) {
	m := NewManager(&drivertest.Factory{}, testOptions(), nil)

	inst, err := m.GetBrowser(context.Background(), nil)
	require.NoError(t, err)
	m.ReleaseBrowser(inst.ID)

	m.PerformHealthCheck(context.Background())

	snap, ok := m.BrowserStatus(inst.ID)
	require.True(t, ok)
	assert.Equal(t, StatusReady, snap.Status)
}

func TestHealthCheckRecoversDeadInstance(t *testing.T) {
	factory := &drivertest.Factory{}
	m := NewManager(factory, testOptions(), nil)

	cfg := chromeConfig()
	cfg.UserAgent = "pagelens-test"
	inst, err := m.CreateBrowser(context.Background(), cfg)
	require.NoError(t, err)

	factory.Last().TitleFailures = 3
	for i := 0; i < 3; i++ {
		m.PerformHealthCheck(context.Background())
	}

	// Dead instance closed, replacement created with the original config.
	assert.True(t, factory.Created[0].Closed)
	require.Len(t, factory.Created, 2)
	assert.Equal(t, "pagelens-test", factory.Created[1].Config.UserAgent)

	_, ok := m.BrowserStatus(inst.ID)
	assert.False(t, ok, "errored instance must be untracked")

	snaps := m.AllBrowsers()
	require.Len(t, snaps, 1)
	assert.NotEqual(t, inst.ID, snaps[0].ID)
	assert.Equal(t, StatusReady, snaps[0].Status)
}

func TestHealthCheckRecoveryFailureReported(t *testing.T) {
	factory := &drivertest.Factory{}
	m := NewManager(factory, testOptions(), nil)

	_, err := m.CreateBrowser(context.Background(), chromeConfig())
	require.NoError(t, err)

	factory.Last().TitleFailures = 3
	m.PerformHealthCheck(context.Background())
	m.PerformHealthCheck(context.Background())

	factory.FailNext = 1
	status := m.PerformHealthCheck(context.Background())

	require.NotEmpty(t, status.Issues)
	assert.Contains(t, status.Issues[len(status.Issues)-1], "recovery failed")
	assert.Empty(t, m.AllBrowsers())
}

func TestHealthCheckClassification(t *testing.T) {
	tests := []struct {
		name      string
		instances int
		failing   int
		want      HealthState
	}{
		{"no failures", 4, 0, HealthHealthy},
		{"minority failing", 4, 1, HealthDegraded},
		{"half failing", 4, 2, HealthCritical},
		{"all failing", 2, 2, HealthCritical},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opts := testOptions()
			opts.MaxInstances = tt.instances
			factory := &drivertest.Factory{}
			m := NewManager(factory, opts, nil)

			for i := 0; i < tt.instances; i++ {
				_, err := m.CreateBrowser(context.Background(), chromeConfig())
				require.NoError(t, err)
			}
			for i := 0; i < tt.failing; i++ {
				factory.Created[i].TitleFailures = 1
			}

			status := m.PerformHealthCheck(context.Background())
			assert.Equal(t, tt.want, status.Status)
			assert.Equal(t, tt.failing, status.FailedProbes)
		})
	}
}

func TestInstanceAvailability(t *testing.T) {
	inst := &Instance{Status: StatusReady}
	assert.True(t, inst.available())

	inst.Status = StatusIdle
	assert.True(t, inst.available())

	inst.Status = StatusBusy
	assert.False(t, inst.available())

	inst.Status = StatusError
	assert.False(t, inst.available())
}

func TestSnapshotOmitsDriver(t *testing.T) {
	factory := &drivertest.Factory{}
	m := NewManager(factory, testOptions(), nil)

	inst, err := m.CreateBrowser(context.Background(), driver.Config{
		Kind:     driver.KindFirefox,
		Headless: true,
		Viewport: driver.Viewport{Width: 800, Height: 600},
	})
	require.NoError(t, err)

	snap, ok := m.BrowserStatus(inst.ID)
	require.True(t, ok)
	assert.Equal(t, inst.ID, snap.ID)
	assert.Equal(t, driver.KindFirefox, snap.Kind)
	assert.Equal(t, 800, snap.Config.Viewport.Width)
}
