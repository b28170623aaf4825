package config

import (
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfigFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))
	return path
}

func TestLoadDefaultsWhenFileMissing(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)

	assert.Equal(t, 5, cfg.Pool.MaxInstances)
	assert.Equal(t, 30*time.Second, cfg.Pool.NavigationTimeout())
	assert.Equal(t, 5*time.Minute, cfg.Pool.IdleTimeout())
	assert.True(t, cfg.Pool.AutoCleanup)
	assert.False(t, cfg.Metrics.Enabled)
}

func TestLoadFromFile(t *testing.T) {
	path := writeConfigFile(t, `
pool:
  max_instances: 10
  navigation_timeout_seconds: 15
  idle_timeout_seconds: 120
metrics:
  enabled: true
  addr: "0.0.0.0:9100"
allowed_urls:
  - "https://*.example.com/*"
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 10, cfg.Pool.MaxInstances)
	assert.Equal(t, 15*time.Second, cfg.Pool.NavigationTimeout())
	assert.Equal(t, 2*time.Minute, cfg.Pool.IdleTimeout())
	assert.True(t, cfg.Metrics.Enabled)
	assert.Equal(t, "0.0.0.0:9100", cfg.Metrics.Addr)
	assert.Equal(t, []string{"https://*.example.com/*"}, cfg.AllowedURLs)
}

func TestLoadEnvironmentOverridesFile(t *testing.T) {
	path := writeConfigFile(t, `
pool:
  max_instances: 10
`)
	t.Setenv("PAGELENS_POOL_MAX_INSTANCES", "2")
	t.Setenv("PAGELENS_METRICS_ENABLED", "true")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 2, cfg.Pool.MaxInstances)
	assert.True(t, cfg.Metrics.Enabled)
}

func TestLoadInvalidYAML(t *testing.T) {
	path := writeConfigFile(t, "pool: [not a mapping")
	_, err := Load(path)
	assert.ErrorContains(t, err, "failed to parse config file")
}

func TestLoadInvalidAllowlistPattern(t *testing.T) {
	path := writeConfigFile(t, `
allowed_urls:
  - "https://[invalid"
`)
	_, err := Load(path)
	assert.ErrorContains(t, err, "invalid allowed_urls pattern")
}

func TestURLAllowed(t *testing.T) {
	cfg := Config{AllowedURLs: []string{
		"https://*.example.com/*",
		"https://exact.test/page",
	}}

	assert.True(t, cfg.URLAllowed("https://docs.example.com/intro"))
	assert.True(t, cfg.URLAllowed("https://exact.test/page"))
	assert.False(t, cfg.URLAllowed("https://evil.test/"))
	assert.False(t, cfg.URLAllowed("https://exact.test/other"))
}

func TestURLAllowedConcurrentHandBuilt(t *testing.T) {
	// A Config built without Load never had its patterns compiled;
	// concurrent checks must not trip the race detector or disagree.
	cfg := Config{AllowedURLs: []string{"https://*.example.com/*"}}

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				assert.True(t, cfg.URLAllowed("https://docs.example.com/intro"))
				assert.False(t, cfg.URLAllowed("https://evil.test/"))
			}
		}()
	}
	wg.Wait()
}

func TestURLAllowedEmptyListAllowsEverything(t *testing.T) {
	cfg := Default()
	assert.True(t, cfg.URLAllowed("https://anything.anywhere/path"))
}
