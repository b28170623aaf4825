package analysis

import "fmt"

// fcpRecommendationThresholdMs is the First Contentful Paint above which
// the performance recommendation fires.
const fcpRecommendationThresholdMs = 2500.0

// recommend derives rule-based recommendations from the probe results.
// Rules are independent and may all fire on the same page.
func recommend(perf PerformanceMetrics, a11y AccessibilityReport) []Recommendation {
	recs := []Recommendation{}

	if perf.FirstContentfulPaintMs > fcpRecommendationThresholdMs {
		recs = append(recs, Recommendation{
			Category: CategoryPerformance,
			Severity: SeverityHigh,
			Title:    "Improve First Contentful Paint",
			Description: fmt.Sprintf(
				"First Contentful Paint took %.0fms; users perceive pages above 2500ms as slow.",
				perf.FirstContentfulPaintMs),
			Impact: "Users see a blank page noticeably longer than on comparable sites.",
			Effort: "Medium",
			Fix:    "Reduce render-blocking resources, inline critical CSS and preload key assets.",
		})
	}

	if len(a11y.Violations) > 0 {
		recs = append(recs, Recommendation{
			Category: CategoryAccessibility,
			Severity: accessibilitySeverity(a11y.Violations),
			Title:    "Fix accessibility violations",
			Description: fmt.Sprintf(
				"%d accessibility rule violation(s) found; compliance level is %s.",
				len(a11y.Violations), a11y.WCAGLevel),
			Impact: "Assistive-technology users may be unable to use parts of the page.",
			Effort: "Varies",
			Fix:    "Address violations starting with the highest impact; each carries a help reference.",
		})
	}

	return recs
}

// accessibilitySeverity maps the worst violation impact to a
// recommendation severity.
func accessibilitySeverity(violations []Violation) Severity {
	worst := SeverityLow
	for _, v := range violations {
		switch v.Impact {
		case "critical":
			return SeverityCritical
		case "serious":
			worst = SeverityHigh
		case "moderate":
			if worst != SeverityHigh {
				worst = SeverityMedium
			}
		}
	}
	return worst
}
