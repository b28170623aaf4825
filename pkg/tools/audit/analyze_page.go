package audit

import (
	"context"
	"encoding/xml"
	"fmt"
	"strings"
	"time"

	"github.com/entrhq/pagelens/pkg/analysis"
	"github.com/entrhq/pagelens/pkg/config"
	"github.com/entrhq/pagelens/pkg/driver"
	"github.com/entrhq/pagelens/pkg/metrics"
	"github.com/entrhq/pagelens/pkg/pool"
	"github.com/entrhq/pagelens/pkg/tools"
)

// AnalyzePageTool runs the full page-quality analysis against a pooled
// browser instance.
type AnalyzePageTool struct {
	manager  *pool.Manager
	analyzer *analysis.Analyzer
	cfg      *config.Config
	metrics  *metrics.Metrics
}

// NewAnalyzePageTool creates a new analyze page tool. cfg and mx may be
// nil.
func NewAnalyzePageTool(manager *pool.Manager, analyzer *analysis.Analyzer, cfg *config.Config, mx *metrics.Metrics) *AnalyzePageTool {
	return &AnalyzePageTool{
		manager:  manager,
		analyzer: analyzer,
		cfg:      cfg,
		metrics:  mx,
	}
}

// Name returns the tool name.
func (t *AnalyzePageTool) Name() string {
	return "analyze_page"
}

// Description returns the tool description.
func (t *AnalyzePageTool) Description() string {
	return "Navigate to a URL and run performance, accessibility and visual analysis, producing per-category scores, a composite quality score and recommendations."
}

// Schema returns the tool's JSON schema.
func (t *AnalyzePageTool) Schema() map[string]interface{} {
	return tools.BaseToolSchema(
		map[string]interface{}{
			"url": map[string]interface{}{
				"type":        "string",
				"description": "Page URL to analyze",
			},
			"id": map[string]interface{}{
				"type":        "string",
				"description": "Optional instance id to analyze with. The instance is held for the duration of the run; when omitted any pooled instance is used",
			},
			"include_performance": map[string]interface{}{
				"type":        "boolean",
				"description": "Run the performance probe. Default: true",
			},
			"include_accessibility": map[string]interface{}{
				"type":        "boolean",
				"description": "Run the accessibility audit. Default: true",
			},
			"include_visual": map[string]interface{}{
				"type":        "boolean",
				"description": "Run the visual probe. Default: true",
			},
			"timeout_seconds": map[string]interface{}{
				"type":        "integer",
				"description": "Navigation timeout in seconds. Default: the pool's navigation timeout",
			},
			"screenshot": map[string]interface{}{
				"type":        "boolean",
				"description": "Attach a base64 screenshot to the result. Default: false",
			},
		},
		[]string{"url"},
	)
}

type analyzePageInput struct {
	XMLName              xml.Name `xml:"arguments"`
	URL                  string   `xml:"url"`
	ID                   string   `xml:"id"`
	IncludePerformance   *bool    `xml:"include_performance"`
	IncludeAccessibility *bool    `xml:"include_accessibility"`
	IncludeVisual        *bool    `xml:"include_visual"`
	TimeoutSeconds       int      `xml:"timeout_seconds"`
	Screenshot           bool     `xml:"screenshot"`
}

// Execute runs the analysis. Without an id it acquires any pooled
// instance; with an id it acquires that specific instance, failing if
// someone else holds it. Either way the instance is held busy for the
// duration of the run and released afterwards.
func (t *AnalyzePageTool) Execute(ctx context.Context, argsXML []byte) (string, map[string]interface{}, error) {
	var input analyzePageInput
	if err := tools.UnmarshalXMLWithFallback(argsXML, &input); err != nil {
		return "", nil, fmt.Errorf("invalid parameters: %w", err)
	}
	if input.URL == "" {
		return "", nil, fmt.Errorf("url parameter is required")
	}
	if t.cfg != nil && !t.cfg.URLAllowed(input.URL) {
		return "", nil, fmt.Errorf("url %q is not permitted by the allowed_urls configuration", input.URL)
	}

	drv, release, err := t.resolveDriver(ctx, input.ID)
	if err != nil {
		return "", nil, err
	}
	defer release()

	opts := analysis.DefaultOptions(input.URL)
	opts.Timeout = t.manager.Options().NavigationTimeout
	if input.TimeoutSeconds > 0 {
		opts.Timeout = time.Duration(input.TimeoutSeconds) * time.Second
	}
	if input.IncludePerformance != nil {
		opts.IncludePerformance = *input.IncludePerformance
	}
	if input.IncludeAccessibility != nil {
		opts.IncludeAccessibility = *input.IncludeAccessibility
	}
	if input.IncludeVisual != nil {
		opts.IncludeVisual = *input.IncludeVisual
	}
	opts.CaptureScreenshot = input.Screenshot

	result, err := t.analyzer.Analyze(ctx, drv, opts)
	if err != nil {
		t.metrics.IncAnalysis("error")
		return "", nil, fmt.Errorf("analysis failed: %w", err)
	}
	t.metrics.IncAnalysis("ok")

	return formatResult(result), map[string]interface{}{
		"url":           result.URL,
		"overall_score": result.QualityScore.Overall,
	}, nil
}

// resolveDriver maps the optional id to a driver session held busy for the
// duration of the run. Both paths go through the pool's acquisition
// accounting so the instance cannot be handed to anyone else mid-analysis.
func (t *AnalyzePageTool) resolveDriver(ctx context.Context, id string) (driver.Driver, func(), error) {
	if id != "" {
		drv, err := t.manager.Acquire(id)
		if err != nil {
			return nil, nil, err
		}
		return drv, func() { t.manager.ReleaseBrowser(id) }, nil
	}

	inst, err := t.manager.GetBrowser(ctx, nil)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to acquire browser: %w", err)
	}
	return inst.Driver, func() { t.manager.ReleaseBrowser(inst.ID) }, nil
}

// formatResult renders the analysis as a readable report.
func formatResult(r *analysis.Result) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Page analysis for %s\n", r.URL)
	if r.Browser.Name != "" {
		fmt.Fprintf(&b, "Browser: %s %s | Viewport: %dx%d\n", r.Browser.Name, r.Browser.Version, r.Viewport.Width, r.Viewport.Height)
	}

	q := r.QualityScore
	fmt.Fprintf(&b, "\nQuality score: %d/100\n", q.Overall)
	fmt.Fprintf(&b, "- Performance: %d\n- Accessibility: %d\n- Visual: %d\n- Cross-browser: %d\n",
		q.Performance, q.Accessibility, q.Visual, q.CrossBrowser)
	fmt.Fprintf(&b, "Issues: %d critical, %d warnings, %d suggestions\n",
		q.Breakdown.Critical, q.Breakdown.Warning, q.Breakdown.Suggestion)

	p := r.Performance
	fmt.Fprintf(&b, "\nPerformance\n")
	fmt.Fprintf(&b, "- Load: %.0fms | DCL: %.0fms | TTFB: %.0fms\n", p.LoadTimeMs, p.DomContentLoadedMs, p.TimeToFirstByteMs)
	fmt.Fprintf(&b, "- FCP: %.0fms | LCP: %.0fms | CLS: %.3f | TBT: %.0fms\n",
		p.FirstContentfulPaintMs, p.LargestContentfulPaintMs, p.CumulativeLayoutShift, p.TotalBlockingTimeMs)
	fmt.Fprintf(&b, "- Resources: %d (%d bytes transferred)\n", p.ResourceCount, p.TransferSizeBytes)

	a := r.Accessibility
	fmt.Fprintf(&b, "\nAccessibility: %s (%d violations, %d passes)\n", a.WCAGLevel, len(a.Violations), a.Passes)
	for _, v := range a.Violations {
		fmt.Fprintf(&b, "- [%s] %s: %s (%d nodes)\n", v.Impact, v.ID, v.Description, v.Nodes)
	}

	v := r.Visual
	fmt.Fprintf(&b, "\nVisual: %d layout shift(s), %d heading(s), %d paragraph(s)\n",
		len(v.LayoutShifts), v.Typography.HeadingCount, v.Typography.ParagraphCount)

	if len(r.Recommendations) > 0 {
		fmt.Fprintf(&b, "\nRecommendations\n")
		for _, rec := range r.Recommendations {
			fmt.Fprintf(&b, "- [%s/%s] %s: %s\n", rec.Category, rec.Severity, rec.Title, rec.Description)
		}
	}

	if r.Screenshot != "" {
		fmt.Fprintf(&b, "\nScreenshot captured (%d bytes base64).\n", len(r.Screenshot))
	}

	return b.String()
}
