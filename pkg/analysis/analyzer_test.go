package analysis

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/entrhq/pagelens/pkg/driver/drivertest"
)

const cleanAxeResult = `{"violations": [], "passes": 40, "incomplete": 0, "inapplicable": 12}`

func TestAnalyzeNavigationFailure(t *testing.T) {
	drv := drivertest.New()
	drv.NavigateErr = errors.New("connection refused")

	a := NewAnalyzer(nil)
	result, err := a.Analyze(context.Background(), drv, DefaultOptions("https://unreachable.test"))
	require.Error(t, err)
	assert.Nil(t, result)

	var navErr *NavigationError
	require.True(t, errors.As(err, &navErr))
	assert.Equal(t, "https://unreachable.test", navErr.URL)
}

func TestAnalyzePageNeverReady(t *testing.T) {
	drv := drivertest.New()
	drv.Stub("readyState", `"loading"`)

	opts := DefaultOptions("https://slow.test")
	opts.Timeout = 150 * time.Millisecond

	a := NewAnalyzer(nil)
	_, err := a.Analyze(context.Background(), drv, opts)
	require.Error(t, err)

	var navErr *NavigationError
	assert.True(t, errors.As(err, &navErr))
}

func TestAnalyzeFullRun(t *testing.T) {
	drv := drivertest.New()
	drv.Stub("getEntriesByType('navigation')", `{
		"load_time": 900, "dom_content_loaded": 600, "ttfb": 120,
		"first_contentful_paint": 800, "resource_count": 12,
		"transfer_size": 250000, "resource_durations": [20, 30]
	}`)
	drv.Stub("largest-contentful-paint", `{"lcp": 1200, "cls": 0.02}`)
	drv.Stub("axe.min.js", `true`)
	drv.Stub("axe.run", cleanAxeResult)
	drv.Stub("resolve(shifts)", `[]`)

	a := NewAnalyzer(nil)
	result, err := a.Analyze(context.Background(), drv, DefaultOptions("https://example.com"))
	require.NoError(t, err)

	assert.Equal(t, "https://example.com", result.URL)
	assert.Equal(t, []string{"https://example.com"}, drv.Navigated)
	assert.Equal(t, 1280, result.Viewport.Width)
	assert.False(t, result.Timestamp.IsZero())

	assert.Equal(t, 100, result.Performance.Score)
	assert.Equal(t, 900.0, result.Performance.LoadTimeMs)
	assert.Equal(t, 1200.0, result.Performance.LargestContentfulPaintMs)

	assert.Equal(t, 100, result.Accessibility.Score)
	assert.Equal(t, "AAA", result.Accessibility.WCAGLevel)
	assert.Equal(t, 40, result.Accessibility.Passes)

	assert.Equal(t, 100, result.Visual.Score)

	// Mean of the three probe categories; the cross-browser baseline is
	// reported alongside but not averaged in.
	assert.Equal(t, 100, result.QualityScore.Overall)
	assert.Equal(t, 85, result.QualityScore.CrossBrowser)
	assert.Empty(t, result.Recommendations)
	assert.Empty(t, result.Screenshot)
}

func TestAnalyzeDisabledProbesScorePerfect(t *testing.T) {
	drv := drivertest.New()

	opts := Options{URL: "https://example.com"}

	a := NewAnalyzer(nil)
	result, err := a.Analyze(context.Background(), drv, opts)
	require.NoError(t, err)

	assert.Equal(t, 100, result.Performance.Score)
	assert.Equal(t, 100, result.Accessibility.Score)
	assert.Equal(t, "AAA", result.Accessibility.WCAGLevel)
	assert.Equal(t, 100, result.Visual.Score)
	assert.Equal(t, 100, result.QualityScore.Overall)
}

func TestAnalyzeProbeFailureFallsBackToDefault(t *testing.T) {
	drv := drivertest.New()
	drv.StubErr("getEntriesByType('navigation')", errors.New("script blew up"))
	drv.StubErr("axe.min.js", errors.New("csp blocked the cdn"))
	drv.Stub("resolve(shifts)", `[]`)

	a := NewAnalyzer(nil)
	result, err := a.Analyze(context.Background(), drv, DefaultOptions("https://example.com"))
	require.NoError(t, err, "probe failures must not fail the run")

	assert.Equal(t, 100, result.Performance.Score)
	assert.Zero(t, result.Performance.LoadTimeMs)
	assert.Equal(t, 100, result.Accessibility.Score)
	assert.Empty(t, result.Accessibility.Violations)
}

func TestAnalyzeCapturesScreenshot(t *testing.T) {
	drv := drivertest.New()

	opts := Options{URL: "https://example.com", CaptureScreenshot: true}

	a := NewAnalyzer(nil)
	result, err := a.Analyze(context.Background(), drv, opts)
	require.NoError(t, err)
	assert.Equal(t, "ZmFrZS1wbmc=", result.Screenshot)
}

func TestAnalyzeCollectsBrowserInfo(t *testing.T) {
	drv := drivertest.New()

	a := NewAnalyzer(nil)
	result, err := a.Analyze(context.Background(), drv, Options{URL: "https://example.com"})
	require.NoError(t, err)
	assert.Equal(t, "fake-1.0", result.Browser.Version)
}
