package analysis

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/entrhq/pagelens/pkg/driver/drivertest"
)

func TestRunAccessibilityAudit(t *testing.T) {
	drv := drivertest.New()
	drv.Stub("axe.min.js", `true`)
	drv.Stub("axe.run", `{
		"violations": [
			{"id": "image-alt", "impact": "critical", "description": "Images must have alternate text", "help": "https://dequeuniversity.com/rules/axe/image-alt", "nodes": 3},
			{"id": "color-contrast", "impact": "moderate", "description": "Elements must have sufficient contrast", "nodes": 7}
		],
		"passes": 31, "incomplete": 2, "inapplicable": 9
	}`)

	a := NewAnalyzer(nil)
	report, err := a.RunAccessibilityAudit(context.Background(), drv)
	require.NoError(t, err)

	require.Len(t, report.Violations, 2)
	assert.Equal(t, "image-alt", report.Violations[0].ID)
	assert.Equal(t, 3, report.Violations[0].Nodes)
	assert.Equal(t, 31, report.Passes)
	assert.Equal(t, 2, report.Incomplete)

	// 100 - 25 (critical) - 10 (moderate) = 65.
	assert.Equal(t, 65, report.Score)
	assert.Equal(t, "Non-compliant", report.WCAGLevel)
}

func TestRunAccessibilityAuditInjectionFailure(t *testing.T) {
	drv := drivertest.New()
	drv.StubErr("axe.min.js", errors.New("blocked by csp"))

	a := NewAnalyzer(nil)
	_, err := a.RunAccessibilityAudit(context.Background(), drv)
	require.Error(t, err)

	var auditErr *AccessibilityAuditError
	require.True(t, errors.As(err, &auditErr))
	assert.Contains(t, auditErr.Message, "engine unavailable")
}

func TestRunAccessibilityAuditEngineError(t *testing.T) {
	drv := drivertest.New()
	drv.Stub("axe.min.js", `true`)
	drv.Stub("axe.run", `{"error": "axe is already running"}`)

	a := NewAnalyzer(nil)
	_, err := a.RunAccessibilityAudit(context.Background(), drv)
	require.Error(t, err)

	var auditErr *AccessibilityAuditError
	require.True(t, errors.As(err, &auditErr))
	assert.Equal(t, "axe is already running", auditErr.Message)
}

func TestScoreAccessibility(t *testing.T) {
	tests := []struct {
		name       string
		violations []Violation
		want       int
	}{
		{"no violations", nil, 100},
		{"one minor", []Violation{{Impact: "minor"}}, 95},
		{"one of each", []Violation{{Impact: "critical"}, {Impact: "serious"}, {Impact: "moderate"}, {Impact: "minor"}}, 45},
		{"unknown impact counts as minor", []Violation{{Impact: "bizarre"}}, 95},
		{"floored at zero", []Violation{{Impact: "critical"}, {Impact: "critical"}, {Impact: "critical"}, {Impact: "critical"}, {Impact: "critical"}}, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, scoreAccessibility(tt.violations))
		})
	}
}

func TestWCAGLevel(t *testing.T) {
	tests := []struct {
		name       string
		violations []Violation
		want       string
	}{
		{"clean page", nil, "AAA"},
		{"only minor and moderate", []Violation{{Impact: "minor"}, {Impact: "moderate"}}, "AA"},
		{"serious but no critical", []Violation{{Impact: "serious"}}, "A"},
		{"critical present", []Violation{{Impact: "critical"}, {Impact: "minor"}}, "Non-compliant"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, wcagLevel(tt.violations))
		})
	}
}
