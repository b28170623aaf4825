package analysis

import (
	"context"
	"fmt"

	"github.com/tidwall/gjson"

	"github.com/entrhq/pagelens/pkg/driver"
)

// blockingThresholdMs is the per-resource duration above which time counts
// toward total blocking time.
const blockingThresholdMs = 50.0

// ProbePerformance pulls navigation, resource and paint timing from the
// page and scores it against Core Web Vitals thresholds. LCP and CLS come
// from a bounded one-second observer window and default to 0 when the
// window closes empty; an observer failure does not fail the probe.
func (a *Analyzer) ProbePerformance(ctx context.Context, drv driver.Driver) (PerformanceMetrics, error) {
	raw, err := drv.ExecuteScript(ctx, performanceEntriesScript)
	if err != nil {
		return PerformanceMetrics{}, fmt.Errorf("timing collection failed: %w", err)
	}
	entries := gjson.Parse(raw)

	m := PerformanceMetrics{
		LoadTimeMs:             entries.Get("load_time").Float(),
		DomContentLoadedMs:     entries.Get("dom_content_loaded").Float(),
		TimeToFirstByteMs:      entries.Get("ttfb").Float(),
		FirstContentfulPaintMs: entries.Get("first_contentful_paint").Float(),
		ResourceCount:          int(entries.Get("resource_count").Int()),
		TransferSizeBytes:      entries.Get("transfer_size").Int(),
	}

	for _, d := range entries.Get("resource_durations").Array() {
		if over := d.Float() - blockingThresholdMs; over > 0 {
			m.TotalBlockingTimeMs += over
		}
	}

	if vitals, err := drv.ExecuteAsyncScript(ctx, webVitalsScript); err == nil {
		parsed := gjson.Parse(vitals)
		m.LargestContentfulPaintMs = parsed.Get("lcp").Float()
		m.CumulativeLayoutShift = parsed.Get("cls").Float()
	} else {
		a.log.Debugf("web vitals sampling failed, defaulting LCP/CLS to 0: %v", err)
	}

	m.Score = scorePerformance(m)
	return m, nil
}

// scorePerformance subtracts a fixed penalty band per Core Web Vitals
// threshold exceeded, floored at 0.
func scorePerformance(m PerformanceMetrics) int {
	score := 100

	switch {
	case m.FirstContentfulPaintMs > 1800:
		score -= 20
	case m.FirstContentfulPaintMs > 1000:
		score -= 10
	}
	switch {
	case m.LargestContentfulPaintMs > 2500:
		score -= 25
	case m.LargestContentfulPaintMs > 1500:
		score -= 15
	}
	switch {
	case m.CumulativeLayoutShift > 0.25:
		score -= 20
	case m.CumulativeLayoutShift > 0.1:
		score -= 10
	}
	switch {
	case m.TotalBlockingTimeMs > 600:
		score -= 15
	case m.TotalBlockingTimeMs > 300:
		score -= 10
	}

	if score < 0 {
		score = 0
	}
	return score
}
