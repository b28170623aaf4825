package analysis

import "math"

// OverallScore averages only the categories that are present. An empty map
// scores 0. This is the one scoring path that must not treat a missing
// category as zero.
func OverallScore(scores map[Category]float64) int {
	if len(scores) == 0 {
		return 0
	}
	sum := 0.0
	for _, s := range scores {
		sum += s
	}
	return clampScore(int(math.Round(sum / float64(len(scores)))))
}

// computeQualityScore folds the category scores into the composite verdict
// and tallies the issue breakdown from violations and recommendations.
func computeQualityScore(result *Result) QualityScore {
	qs := QualityScore{
		Performance:   result.Performance.Score,
		Accessibility: result.Accessibility.Score,
		Visual:        result.Visual.Score,
		CrossBrowser:  crossBrowserBaseline,
	}

	// The cross-browser baseline is reported per category but is an
	// estimate, not a measurement, so it stays out of the composite.
	qs.Overall = OverallScore(map[Category]float64{
		CategoryPerformance:   float64(qs.Performance),
		CategoryAccessibility: float64(qs.Accessibility),
		CategoryVisual:        float64(qs.Visual),
	})

	for _, v := range result.Accessibility.Violations {
		switch v.Impact {
		case "critical":
			qs.Breakdown.Critical++
		case "serious", "moderate":
			qs.Breakdown.Warning++
		default:
			qs.Breakdown.Suggestion++
		}
	}
	for _, rec := range result.Recommendations {
		switch rec.Severity {
		case SeverityCritical:
			qs.Breakdown.Critical++
		case SeverityHigh, SeverityMedium:
			qs.Breakdown.Warning++
		default:
			qs.Breakdown.Suggestion++
		}
	}
	return qs
}

func clampScore(v int) int {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}
