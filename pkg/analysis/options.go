package analysis

import "time"

// DefaultNavigationTimeout bounds navigation plus the page-ready wait.
const DefaultNavigationTimeout = 30 * time.Second

// Options configure one analysis run.
type Options struct {
	// URL is the page to analyze.
	URL string

	// Timeout bounds the navigate-and-wait step. Zero means
	// DefaultNavigationTimeout.
	Timeout time.Duration

	// Include flags toggle each probe. A disabled probe contributes its
	// neutral default to the result.
	IncludePerformance   bool
	IncludeAccessibility bool
	IncludeVisual        bool

	// CaptureScreenshot attaches a base64 screenshot to the result.
	CaptureScreenshot bool
}

// DefaultOptions enables every probe for the given URL.
func DefaultOptions(url string) Options {
	return Options{
		URL:                  url,
		Timeout:              DefaultNavigationTimeout,
		IncludePerformance:   true,
		IncludeAccessibility: true,
		IncludeVisual:        true,
	}
}
