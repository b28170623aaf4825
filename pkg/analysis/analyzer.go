package analysis

import (
	"context"
	"fmt"
	"time"

	"github.com/tidwall/gjson"

	"github.com/entrhq/pagelens/pkg/driver"
	"github.com/entrhq/pagelens/pkg/logging"
)

// readyPollInterval is how often the page-ready wait re-checks
// document.readyState.
const readyPollInterval = 100 * time.Millisecond

// crossBrowserBaseline stands in for the cross-browser category score
// until real multi-browser comparison feeds it.
const crossBrowserBaseline = 85

// Analyzer runs page-quality audits against driver sessions. It never
// closes or releases the sessions it is given; instance lifecycle belongs
// to the pool.
type Analyzer struct {
	log *logging.Logger
}

// NewAnalyzer creates an analyzer. A nil logger falls back to a discard
// logger.
func NewAnalyzer(log *logging.Logger) *Analyzer {
	if log == nil {
		log = logging.Discard()
	}
	return &Analyzer{log: log}
}

// Analyze navigates drv to opts.URL and produces a complete Result.
// Navigation failure is fatal and returns a *NavigationError. Probe
// failures are not: each failed or disabled probe contributes its neutral
// default and the run carries on.
func (a *Analyzer) Analyze(ctx context.Context, drv driver.Driver, opts Options) (*Result, error) {
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultNavigationTimeout
	}

	if err := a.navigate(ctx, drv, opts.URL, opts.Timeout); err != nil {
		return nil, &NavigationError{URL: opts.URL, Err: err}
	}

	result := &Result{
		URL:       opts.URL,
		Timestamp: time.Now(),
	}
	if caps, err := drv.Capabilities(ctx); err == nil {
		result.Browser = BrowserInfo{Name: caps["browserName"], Version: caps["browserVersion"]}
	}
	if vp, err := drv.Viewport(ctx); err == nil {
		result.Viewport = vp
	}

	result.Performance = a.performanceOrDefault(ctx, drv, opts.IncludePerformance)
	result.Accessibility = a.accessibilityOrDefault(ctx, drv, opts.IncludeAccessibility)
	result.Visual = a.visualOrDefault(ctx, drv, opts.IncludeVisual)

	if opts.CaptureScreenshot {
		shot, err := drv.TakeScreenshot(ctx)
		if err != nil {
			a.log.Warnf("screenshot capture failed for %s: %v", opts.URL, err)
		} else {
			result.Screenshot = shot
		}
	}

	result.Recommendations = recommend(result.Performance, result.Accessibility)
	result.QualityScore = computeQualityScore(result)
	return result, nil
}

// navigate loads the URL and waits for document.readyState to reach
// "complete", both bounded by timeout.
func (a *Analyzer) navigate(ctx context.Context, drv driver.Driver, url string, timeout time.Duration) error {
	waitCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	if err := drv.Navigate(waitCtx, url); err != nil {
		return err
	}

	for {
		raw, err := drv.ExecuteScript(waitCtx, readyStateScript)
		if err == nil && gjson.Parse(raw).String() == "complete" {
			return nil
		}

		select {
		case <-waitCtx.Done():
			return fmt.Errorf("page did not become ready within %s: %w", timeout, waitCtx.Err())
		case <-time.After(readyPollInterval):
		}
	}
}

// performanceOrDefault is the recovering wrapper around the performance
// probe used during a full run.
func (a *Analyzer) performanceOrDefault(ctx context.Context, drv driver.Driver, enabled bool) PerformanceMetrics {
	if !enabled {
		return defaultPerformance()
	}
	m, err := a.ProbePerformance(ctx, drv)
	if err != nil {
		a.log.Warnf("performance probe failed, using neutral default: %v", err)
		return defaultPerformance()
	}
	return m
}

// accessibilityOrDefault is the recovering wrapper around the
// accessibility audit used during a full run. Engine errors surface from
// the standalone audit but are defaulted here.
func (a *Analyzer) accessibilityOrDefault(ctx context.Context, drv driver.Driver, enabled bool) AccessibilityReport {
	if !enabled {
		return defaultAccessibility()
	}
	report, err := a.RunAccessibilityAudit(ctx, drv)
	if err != nil {
		a.log.Warnf("accessibility audit failed, using neutral default: %v", err)
		return defaultAccessibility()
	}
	return report
}

// visualOrDefault is the recovering wrapper around the visual probe used
// during a full run.
func (a *Analyzer) visualOrDefault(ctx context.Context, drv driver.Driver, enabled bool) VisualReport {
	if !enabled {
		return defaultVisual()
	}
	report, err := a.ProbeVisual(ctx, drv)
	if err != nil {
		a.log.Warnf("visual probe failed, using neutral default: %v", err)
		return defaultVisual()
	}
	return report
}

// Neutral defaults. A disabled or failed category deliberately reads as a
// perfect score; see the package comment.

func defaultPerformance() PerformanceMetrics {
	return PerformanceMetrics{Score: 100}
}

func defaultAccessibility() AccessibilityReport {
	return AccessibilityReport{
		Violations: []Violation{},
		Score:      100,
		WCAGLevel:  "AAA",
	}
}

func defaultVisual() VisualReport {
	return VisualReport{
		LayoutShifts: []LayoutShift{},
		Score:        100,
	}
}
