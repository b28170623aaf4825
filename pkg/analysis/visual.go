package analysis

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/tidwall/gjson"

	"github.com/entrhq/pagelens/pkg/driver"
)

// ProbeVisual collects layout-shift entries from the page and summarizes
// typography, spacing and color usage from the served HTML. The summaries
// are deliberately shallow; layout shifts are the only live signal here.
func (a *Analyzer) ProbeVisual(ctx context.Context, drv driver.Driver) (VisualReport, error) {
	report := VisualReport{LayoutShifts: []LayoutShift{}}

	if raw, err := drv.ExecuteAsyncScript(ctx, layoutShiftScript); err == nil {
		for _, entry := range gjson.Parse(raw).Array() {
			report.LayoutShifts = append(report.LayoutShifts, LayoutShift{
				Value:       entry.Get("value").Float(),
				StartTimeMs: entry.Get("start_time").Float(),
			})
		}
	} else {
		a.log.Debugf("layout shift collection failed: %v", err)
	}

	source, err := drv.PageSource(ctx)
	if err != nil {
		return VisualReport{}, fmt.Errorf("failed to read page source: %w", err)
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(source))
	if err != nil {
		return VisualReport{}, fmt.Errorf("failed to parse page source: %w", err)
	}

	report.Typography = summarizeTypography(doc)
	report.Spacing = summarizeSpacing(doc)
	report.ColorContrast = summarizeContrast(doc)
	report.Score = scoreVisual(report)
	return report, nil
}

func summarizeTypography(doc *goquery.Document) TypographySummary {
	summary := TypographySummary{
		HeadingCount:   doc.Find("h1, h2, h3, h4, h5, h6").Length(),
		ParagraphCount: doc.Find("p").Length(),
	}

	families := map[string]bool{}
	doc.Find("[style]").Each(func(_ int, sel *goquery.Selection) {
		style, _ := sel.Attr("style")
		for _, decl := range strings.Split(style, ";") {
			name, value, found := strings.Cut(decl, ":")
			if found && strings.TrimSpace(strings.ToLower(name)) == "font-family" {
				families[strings.TrimSpace(value)] = true
			}
		}
	})
	for family := range families {
		summary.FontFamilies = append(summary.FontFamilies, family)
	}
	sort.Strings(summary.FontFamilies)
	return summary
}

func summarizeSpacing(doc *goquery.Document) SpacingSummary {
	summary := SpacingSummary{}
	doc.Find("[style]").Each(func(_ int, sel *goquery.Selection) {
		summary.InlineStyledElements++
		style, _ := sel.Attr("style")
		lower := strings.ToLower(style)
		if strings.Contains(lower, "margin") || strings.Contains(lower, "padding") {
			summary.SpacedElements++
		}
	})
	return summary
}

// summarizeContrast counts elements that set explicit colors. Actual
// contrast-ratio math needs computed styles, which this shallow pass does
// not attempt, so LowContrast stays 0.
func summarizeContrast(doc *goquery.Document) ContrastSummary {
	summary := ContrastSummary{}
	doc.Find("[style]").Each(func(_ int, sel *goquery.Selection) {
		style, _ := sel.Attr("style")
		if strings.Contains(strings.ToLower(style), "color") {
			summary.ElementsChecked++
		}
	})
	return summary
}

// scoreVisual penalizes observed layout instability; the static summaries
// carry no penalty at their current depth.
func scoreVisual(report VisualReport) int {
	total := 0.0
	for _, shift := range report.LayoutShifts {
		total += shift.Value
	}
	score := 100
	switch {
	case total > 0.25:
		score -= 20
	case total > 0.1:
		score -= 10
	}
	return score
}
