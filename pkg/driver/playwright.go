package driver

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"sync"

	"github.com/playwright-community/playwright-go"
)

// PlaywrightFactory creates driver sessions backed by Playwright. One
// factory owns the Playwright runtime for the whole process.
type PlaywrightFactory struct {
	mu          sync.Mutex
	pw          *playwright.Playwright
	initialized bool
}

// NewPlaywrightFactory creates a factory. Initialize must be called before
// the first Create.
func NewPlaywrightFactory() *PlaywrightFactory {
	return &PlaywrightFactory{}
}

// Initialize installs and starts the Playwright runtime. Driver output is
// discarded so it cannot interleave with our own logging.
func (f *PlaywrightFactory) Initialize() error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.initialized {
		return nil
	}

	opts := &playwright.RunOptions{
		Verbose: false,
		Stdout:  io.Discard,
		Stderr:  io.Discard,
	}

	if err := playwright.Install(opts); err != nil {
		return fmt.Errorf("failed to install playwright: %w", err)
	}

	pw, err := playwright.Run(opts)
	if err != nil {
		return fmt.Errorf("failed to start playwright: %w", err)
	}

	f.pw = pw
	f.initialized = true
	return nil
}

// Stop shuts down the Playwright runtime. Sessions created by this factory
// must be quit first.
func (f *PlaywrightFactory) Stop() error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if !f.initialized || f.pw == nil {
		return nil
	}
	if err := f.pw.Stop(); err != nil {
		return fmt.Errorf("failed to stop playwright: %w", err)
	}
	f.initialized = false
	return nil
}

// launch starts a browser of the requested kind. Edge rides the Chromium
// launcher with the msedge channel; the kind set is closed so a plain
// switch covers it.
func (f *PlaywrightFactory) launch(cfg Config) (playwright.Browser, error) {
	opts := playwright.BrowserTypeLaunchOptions{
		Headless: playwright.Bool(cfg.Headless),
	}
	if len(cfg.ExtraArgs) > 0 {
		opts.Args = cfg.ExtraArgs
	}

	switch cfg.Kind {
	case KindChrome:
		return f.pw.Chromium.Launch(opts)
	case KindFirefox:
		return f.pw.Firefox.Launch(opts)
	case KindEdge:
		opts.Channel = playwright.String("msedge")
		return f.pw.Chromium.Launch(opts)
	default:
		return nil, fmt.Errorf("unsupported browser kind %q", cfg.Kind)
	}
}

// Create launches a browser per cfg and returns a Driver wrapping a fresh
// context and page.
func (f *PlaywrightFactory) Create(ctx context.Context, cfg Config) (Driver, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if !f.initialized {
		return nil, fmt.Errorf("playwright factory not initialized")
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	browser, err := f.launch(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to launch %s: %w", cfg.Kind, err)
	}

	contextOpts := playwright.BrowserNewContextOptions{
		Viewport: &playwright.Size{
			Width:  cfg.Viewport.Width,
			Height: cfg.Viewport.Height,
		},
	}
	if cfg.UserAgent != "" {
		contextOpts.UserAgent = playwright.String(cfg.UserAgent)
	}
	browserCtx, err := browser.NewContext(contextOpts)
	if err != nil {
		browser.Close()
		return nil, fmt.Errorf("failed to create context: %w", err)
	}

	page, err := browserCtx.NewPage()
	if err != nil {
		browserCtx.Close()
		browser.Close()
		return nil, fmt.Errorf("failed to create page: %w", err)
	}

	return &playwrightDriver{
		kind:     cfg.Kind,
		browser:  browser,
		context:  browserCtx,
		page:     page,
		viewport: cfg.Viewport,
	}, nil
}

// playwrightDriver adapts a Playwright browser/context/page triple to the
// Driver interface.
type playwrightDriver struct {
	kind     Kind
	browser  playwright.Browser
	context  playwright.BrowserContext
	page     playwright.Page
	viewport Viewport
}

func (d *playwrightDriver) Navigate(ctx context.Context, url string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if _, err := d.page.Goto(url); err != nil {
		return fmt.Errorf("navigation failed: %w", err)
	}
	return nil
}

// evaluate runs a script and JSON-encodes whatever it yields. Playwright
// awaits promise results itself, so the same path serves sync and async
// scripts.
func (d *playwrightDriver) evaluate(ctx context.Context, script string, args ...any) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	var result any
	var err error
	switch len(args) {
	case 0:
		result, err = d.page.Evaluate(script)
	case 1:
		result, err = d.page.Evaluate(script, args[0])
	default:
		result, err = d.page.Evaluate(script, args)
	}
	if err != nil {
		return "", fmt.Errorf("script evaluation failed: %w", err)
	}

	encoded, err := json.Marshal(result)
	if err != nil {
		return "", fmt.Errorf("failed to encode script result: %w", err)
	}
	return string(encoded), nil
}

func (d *playwrightDriver) ExecuteScript(ctx context.Context, script string, args ...any) (string, error) {
	return d.evaluate(ctx, script, args...)
}

func (d *playwrightDriver) ExecuteAsyncScript(ctx context.Context, script string, args ...any) (string, error) {
	return d.evaluate(ctx, script, args...)
}

func (d *playwrightDriver) TakeScreenshot(ctx context.Context) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	data, err := d.page.Screenshot()
	if err != nil {
		return "", fmt.Errorf("screenshot failed: %w", err)
	}
	return base64.StdEncoding.EncodeToString(data), nil
}

// selectorFor translates a facade locator into a Playwright selector.
func selectorFor(loc Locator) (string, error) {
	switch loc.Using {
	case ByCSSSelector:
		return loc.Value, nil
	case ByXPath:
		return "xpath=" + loc.Value, nil
	case ByID:
		return "#" + loc.Value, nil
	case ByClassName:
		return "." + loc.Value, nil
	case ByTagName:
		return loc.Value, nil
	case ByLinkText:
		return fmt.Sprintf(`a:text-is(%q)`, loc.Value), nil
	case ByPartialLinkText:
		return fmt.Sprintf(`a:has-text(%q)`, loc.Value), nil
	case ByName:
		return fmt.Sprintf(`[name=%q]`, loc.Value), nil
	default:
		return "", fmt.Errorf("unsupported locator strategy %q", loc.Using)
	}
}

// snapshotElement copies tag, text and attributes out of a live handle.
func snapshotElement(handle playwright.ElementHandle) (*Element, error) {
	raw, err := handle.Evaluate(`el => ({
		tag: el.tagName.toLowerCase(),
		text: el.textContent || "",
		attributes: Object.fromEntries([...el.attributes].map(a => [a.name, a.value])),
	})`)
	if err != nil {
		return nil, fmt.Errorf("failed to snapshot element: %w", err)
	}

	m, ok := raw.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("unexpected element snapshot shape %T", raw)
	}
	el := &Element{Attributes: map[string]string{}}
	if tag, ok := m["tag"].(string); ok {
		el.Tag = tag
	}
	if text, ok := m["text"].(string); ok {
		el.Text = text
	}
	if attrs, ok := m["attributes"].(map[string]any); ok {
		for k, v := range attrs {
			if s, ok := v.(string); ok {
				el.Attributes[k] = s
			}
		}
	}
	return el, nil
}

func (d *playwrightDriver) FindElement(ctx context.Context, loc Locator) (*Element, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	selector, err := selectorFor(loc)
	if err != nil {
		return nil, err
	}
	handle, err := d.page.QuerySelector(selector)
	if err != nil {
		return nil, fmt.Errorf("selector query failed: %w", err)
	}
	if handle == nil {
		return nil, nil
	}
	return snapshotElement(handle)
}

func (d *playwrightDriver) FindElements(ctx context.Context, loc Locator) ([]*Element, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	selector, err := selectorFor(loc)
	if err != nil {
		return nil, err
	}
	handles, err := d.page.QuerySelectorAll(selector)
	if err != nil {
		return nil, fmt.Errorf("selector query failed: %w", err)
	}
	elements := make([]*Element, 0, len(handles))
	for _, handle := range handles {
		el, err := snapshotElement(handle)
		if err != nil {
			continue
		}
		elements = append(elements, el)
	}
	return elements, nil
}

func (d *playwrightDriver) Title(ctx context.Context) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	title, err := d.page.Title()
	if err != nil {
		return "", fmt.Errorf("title query failed: %w", err)
	}
	return title, nil
}

func (d *playwrightDriver) CurrentURL(ctx context.Context) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	return d.page.URL(), nil
}

func (d *playwrightDriver) SetViewport(ctx context.Context, width, height int) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := d.page.SetViewportSize(width, height); err != nil {
		return fmt.Errorf("failed to set viewport: %w", err)
	}
	d.viewport = Viewport{Width: width, Height: height}
	return nil
}

func (d *playwrightDriver) Viewport(ctx context.Context) (Viewport, error) {
	if err := ctx.Err(); err != nil {
		return Viewport{}, err
	}
	return d.viewport, nil
}

func (d *playwrightDriver) PageSource(ctx context.Context) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	source, err := d.page.Content()
	if err != nil {
		return "", fmt.Errorf("failed to read page source: %w", err)
	}
	return source, nil
}

func (d *playwrightDriver) Capabilities(ctx context.Context) (map[string]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return map[string]string{
		"browserName":    string(d.kind),
		"browserVersion": d.browser.Version(),
	}, nil
}

// Quit tears down the page, context and browser. Individual close failures
// are ignored so a wedged page cannot leak the browser process.
func (d *playwrightDriver) Quit(ctx context.Context) error {
	_ = d.page.Close()
	_ = d.context.Close()
	if err := d.browser.Close(); err != nil {
		return fmt.Errorf("failed to close browser: %w", err)
	}
	return nil
}
