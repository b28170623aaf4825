package analysis

import (
	"time"

	"github.com/entrhq/pagelens/pkg/driver"
)

// Category classifies findings and recommendations.
type Category string

const (
	CategoryPerformance   Category = "performance"
	CategoryAccessibility Category = "accessibility"
	CategoryVisual        Category = "visual"
	CategoryCrossBrowser  Category = "cross-browser"
	CategorySecurity      Category = "security"
)

// Severity ranks a recommendation.
type Severity string

const (
	SeverityLow      Severity = "low"
	SeverityMedium   Severity = "medium"
	SeverityHigh     Severity = "high"
	SeverityCritical Severity = "critical"
)

// Recommendation is one actionable finding. Generated once, never mutated.
type Recommendation struct {
	Category    Category `json:"category"`
	Severity    Severity `json:"severity"`
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Impact      string   `json:"impact"`
	Effort      string   `json:"effort"`
	Fix         string   `json:"fix,omitempty"`
}

// PerformanceMetrics holds the timing signals pulled from the page plus
// the derived 0-100 score. Times are milliseconds.
type PerformanceMetrics struct {
	LoadTimeMs               float64 `json:"load_time_ms"`
	DomContentLoadedMs       float64 `json:"dom_content_loaded_ms"`
	TimeToFirstByteMs        float64 `json:"time_to_first_byte_ms"`
	FirstContentfulPaintMs   float64 `json:"first_contentful_paint_ms"`
	LargestContentfulPaintMs float64 `json:"largest_contentful_paint_ms"`
	CumulativeLayoutShift    float64 `json:"cumulative_layout_shift"`
	TotalBlockingTimeMs      float64 `json:"total_blocking_time_ms"`
	ResourceCount            int     `json:"resource_count"`
	TransferSizeBytes        int64   `json:"transfer_size_bytes"`
	Score                    int     `json:"score"`
}

// Violation is one accessibility rule failure reported by the audit
// engine.
type Violation struct {
	ID          string `json:"id"`
	Impact      string `json:"impact"`
	Description string `json:"description"`
	Help        string `json:"help,omitempty"`
	Nodes       int    `json:"nodes"`
}

// AccessibilityReport aggregates the audit engine's results with the
// weighted score and derived WCAG compliance level.
type AccessibilityReport struct {
	Violations   []Violation `json:"violations"`
	Passes       int         `json:"passes"`
	Incomplete   int         `json:"incomplete"`
	Inapplicable int         `json:"inapplicable"`
	Score        int         `json:"score"`
	WCAGLevel    string      `json:"wcag_level"`
}

// LayoutShift is one observed layout-shift entry.
type LayoutShift struct {
	Value       float64 `json:"value"`
	StartTimeMs float64 `json:"start_time_ms"`
}

// ContrastSummary is the (placeholder-depth) color-contrast check output.
type ContrastSummary struct {
	ElementsChecked int `json:"elements_checked"`
	LowContrast     int `json:"low_contrast"`
}

// TypographySummary describes the page's text structure.
type TypographySummary struct {
	FontFamilies   []string `json:"font_families,omitempty"`
	HeadingCount   int      `json:"heading_count"`
	ParagraphCount int      `json:"paragraph_count"`
}

// SpacingSummary counts layout hints pulled from the DOM.
type SpacingSummary struct {
	InlineStyledElements int `json:"inline_styled_elements"`
	SpacedElements       int `json:"spaced_elements"`
}

// VisualReport holds the visual probe's findings.
type VisualReport struct {
	LayoutShifts  []LayoutShift     `json:"layout_shifts"`
	ColorContrast ContrastSummary   `json:"color_contrast"`
	Typography    TypographySummary `json:"typography"`
	Spacing       SpacingSummary    `json:"spacing"`
	Score         int               `json:"score"`
}

// IssueBreakdown counts findings by severity band.
type IssueBreakdown struct {
	Critical   int `json:"critical"`
	Warning    int `json:"warning"`
	Suggestion int `json:"suggestion"`
}

// QualityScore is the composite verdict. Overall is the rounded arithmetic
// mean of the four category scores, clamped to [0,100].
type QualityScore struct {
	Performance   int            `json:"performance"`
	Accessibility int            `json:"accessibility"`
	Visual        int            `json:"visual"`
	CrossBrowser  int            `json:"cross_browser"`
	Overall       int            `json:"overall"`
	Breakdown     IssueBreakdown `json:"breakdown"`
}

// BrowserInfo describes the session that produced a result.
type BrowserInfo struct {
	Name    string `json:"name"`
	Version string `json:"version"`
}

// Result is the complete output of one analysis run. Immutable once
// produced; the caller owns it.
type Result struct {
	URL             string              `json:"url"`
	Timestamp       time.Time           `json:"timestamp"`
	Browser         BrowserInfo         `json:"browser"`
	Viewport        driver.Viewport     `json:"viewport"`
	Performance     PerformanceMetrics  `json:"performance"`
	Accessibility   AccessibilityReport `json:"accessibility"`
	Visual          VisualReport        `json:"visual"`
	Recommendations []Recommendation    `json:"recommendations"`
	QualityScore    QualityScore        `json:"quality_score"`
	Screenshot      string              `json:"screenshot,omitempty"`
}
