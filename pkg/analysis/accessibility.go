package analysis

import (
	"context"
	"fmt"

	"github.com/tidwall/gjson"

	"github.com/entrhq/pagelens/pkg/driver"
)

// violationWeights maps an axe impact level to its score penalty.
var violationWeights = map[string]int{
	"critical": 25,
	"serious":  15,
	"moderate": 10,
	"minor":    5,
}

// RunAccessibilityAudit injects the axe-core rule engine (a no-op when the
// page already carries it) and runs a full audit. An engine-reported error
// or a failed injection escalates as *AccessibilityAuditError; during a
// full Analyze run that error is caught by the recovering wrapper and
// replaced with the neutral default.
func (a *Analyzer) RunAccessibilityAudit(ctx context.Context, drv driver.Driver) (AccessibilityReport, error) {
	if _, err := drv.ExecuteAsyncScript(ctx, axeInjectScript); err != nil {
		return AccessibilityReport{}, &AccessibilityAuditError{Message: fmt.Sprintf("engine unavailable: %v", err)}
	}

	raw, err := drv.ExecuteAsyncScript(ctx, axeRunScript)
	if err != nil {
		return AccessibilityReport{}, &AccessibilityAuditError{Message: err.Error()}
	}

	parsed := gjson.Parse(raw)
	if engineErr := parsed.Get("error"); engineErr.Exists() {
		return AccessibilityReport{}, &AccessibilityAuditError{Message: engineErr.String()}
	}

	report := AccessibilityReport{
		Violations:   []Violation{},
		Passes:       int(parsed.Get("passes").Int()),
		Incomplete:   int(parsed.Get("incomplete").Int()),
		Inapplicable: int(parsed.Get("inapplicable").Int()),
	}
	for _, v := range parsed.Get("violations").Array() {
		report.Violations = append(report.Violations, Violation{
			ID:          v.Get("id").String(),
			Impact:      v.Get("impact").String(),
			Description: v.Get("description").String(),
			Help:        v.Get("help").String(),
			Nodes:       int(v.Get("nodes").Int()),
		})
	}

	report.Score = scoreAccessibility(report.Violations)
	report.WCAGLevel = wcagLevel(report.Violations)
	return report, nil
}

// scoreAccessibility subtracts the impact weight of every violation from
// 100, floored at 0. Unknown impacts count as minor.
func scoreAccessibility(violations []Violation) int {
	score := 100
	for _, v := range violations {
		weight, ok := violationWeights[v.Impact]
		if !ok {
			weight = violationWeights["minor"]
		}
		score -= weight
	}
	if score < 0 {
		score = 0
	}
	return score
}

// wcagLevel derives the compliance level from the violation profile:
// AAA with none, AA with no critical or serious, A with no critical,
// otherwise non-compliant.
func wcagLevel(violations []Violation) string {
	if len(violations) == 0 {
		return "AAA"
	}
	critical, serious := 0, 0
	for _, v := range violations {
		switch v.Impact {
		case "critical":
			critical++
		case "serious":
			serious++
		}
	}
	switch {
	case critical == 0 && serious == 0:
		return "AA"
	case critical == 0:
		return "A"
	default:
		return "Non-compliant"
	}
}
