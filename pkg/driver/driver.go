package driver

import "context"

// Driver is one live browser session. Script results are returned as JSON
// text so callers can pick fields out without committing to a schema; a
// script that evaluates to undefined yields "null".
//
// Every method is a suspension point. Implementations honor context
// cancellation on a best-effort basis: a cancelled context fails the call,
// but cleanup of the underlying session is left to Quit or the pool's
// health checks.
type Driver interface {
	// Navigate loads the given URL in the session's page.
	Navigate(ctx context.Context, url string) error

	// ExecuteScript evaluates a script in the page and returns its result
	// encoded as JSON.
	ExecuteScript(ctx context.Context, script string, args ...any) (string, error)

	// ExecuteAsyncScript evaluates a script that resolves asynchronously
	// (a promise-returning expression) and returns the settled value as JSON.
	ExecuteAsyncScript(ctx context.Context, script string, args ...any) (string, error)

	// TakeScreenshot captures the current page as a base64-encoded PNG.
	TakeScreenshot(ctx context.Context) (string, error)

	// FindElement returns a snapshot of the first element matching the
	// locator, or nil when nothing matches.
	FindElement(ctx context.Context, loc Locator) (*Element, error)

	// FindElements returns snapshots of all elements matching the locator.
	FindElements(ctx context.Context, loc Locator) ([]*Element, error)

	// Title returns the current page title. The pool uses this as its
	// liveness probe, so it must stay cheap.
	Title(ctx context.Context) (string, error)

	// CurrentURL returns the URL of the current page.
	CurrentURL(ctx context.Context) (string, error)

	// SetViewport resizes the page viewport.
	SetViewport(ctx context.Context, width, height int) error

	// Viewport returns the current viewport dimensions.
	Viewport(ctx context.Context) (Viewport, error)

	// PageSource returns the full serialized HTML of the current page.
	PageSource(ctx context.Context) (string, error)

	// Capabilities returns descriptive session capabilities such as
	// browser name and version.
	Capabilities(ctx context.Context) (map[string]string, error)

	// Quit terminates the session and releases its resources.
	Quit(ctx context.Context) error
}

// Factory creates driver sessions. The pool owns one Factory and is the
// only component that calls it.
type Factory interface {
	Create(ctx context.Context, cfg Config) (Driver, error)
}
