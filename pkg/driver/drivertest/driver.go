// Package drivertest provides an in-memory driver.Driver and driver.Factory
// for tests. The fake answers scripts from substring-matched stubs so tests
// can shape probe results without a real browser.
package drivertest

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/entrhq/pagelens/pkg/driver"
)

type scriptStub struct {
	substr string
	result string
	err    error
}

// Driver is a fake driver.Driver. Zero value is usable; New sets friendlier
// defaults. All fields may be set before handing the driver to code under
// test; the fake takes its own lock on every call.
type Driver struct {
	mu sync.Mutex

	// Config the driver was created with (set by Factory).
	Config driver.Config

	// NavigateErr, when set, fails every Navigate call.
	NavigateErr error
	// Navigated records every URL passed to Navigate.
	Navigated []string

	// TitleValue is returned by Title once TitleFailures is exhausted.
	TitleValue string
	// TitleFailures makes the next N Title calls fail. Used to drive the
	// pool's consecutive-failure accounting.
	TitleFailures int
	// TitleCalls counts Title invocations.
	TitleCalls int

	// Screenshot is the base64 payload returned by TakeScreenshot.
	Screenshot string
	// PageHTML is returned by PageSource.
	PageHTML string

	// Elements maps locator values to canned FindElement results.
	Elements map[string][]*driver.Element

	// QuitErr, when set, is returned by Quit. The driver still records the
	// quit either way.
	QuitErr error
	// Closed reports whether Quit was called.
	Closed bool

	viewport driver.Viewport
	stubs    []scriptStub
}

// New returns a fake driver with defaults that let a full analysis run
// complete: pages report readyState "complete" and scripts without a stub
// evaluate to null.
func New() *Driver {
	return &Driver{
		TitleValue: "Fake Page",
		Screenshot: "ZmFrZS1wbmc=",
		PageHTML:   "<html><head><title>Fake Page</title></head><body><p>hello</p></body></html>",
		viewport:   driver.Viewport{Width: 1280, Height: 720},
	}
}

// Stub makes any script containing substr evaluate to the given JSON text.
// Stubs are matched in registration order.
func (d *Driver) Stub(substr, result string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.stubs = append(d.stubs, scriptStub{substr: substr, result: result})
}

// StubErr makes any script containing substr fail with err.
func (d *Driver) StubErr(substr string, err error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.stubs = append(d.stubs, scriptStub{substr: substr, err: err})
}

func (d *Driver) Navigate(ctx context.Context, url string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.NavigateErr != nil {
		return d.NavigateErr
	}
	d.Navigated = append(d.Navigated, url)
	return nil
}

func (d *Driver) evaluate(script string) (string, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	for _, stub := range d.stubs {
		if strings.Contains(script, stub.substr) {
			if stub.err != nil {
				return "", stub.err
			}
			return stub.result, nil
		}
	}
	if strings.Contains(script, "readyState") {
		return `"complete"`, nil
	}
	return "null", nil
}

func (d *Driver) ExecuteScript(ctx context.Context, script string, args ...any) (string, error) {
	return d.evaluate(script)
}

func (d *Driver) ExecuteAsyncScript(ctx context.Context, script string, args ...any) (string, error) {
	return d.evaluate(script)
}

func (d *Driver) TakeScreenshot(ctx context.Context) (string, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.Screenshot, nil
}

func (d *Driver) FindElement(ctx context.Context, loc driver.Locator) (*driver.Element, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if els := d.Elements[loc.Value]; len(els) > 0 {
		return els[0], nil
	}
	return nil, nil
}

func (d *Driver) FindElements(ctx context.Context, loc driver.Locator) ([]*driver.Element, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.Elements[loc.Value], nil
}

func (d *Driver) Title(ctx context.Context) (string, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.TitleCalls++
	if d.TitleFailures > 0 {
		d.TitleFailures--
		return "", fmt.Errorf("liveness probe failed")
	}
	return d.TitleValue, nil
}

func (d *Driver) CurrentURL(ctx context.Context) (string, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if len(d.Navigated) == 0 {
		return "about:blank", nil
	}
	return d.Navigated[len(d.Navigated)-1], nil
}

func (d *Driver) SetViewport(ctx context.Context, width, height int) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.viewport = driver.Viewport{Width: width, Height: height}
	return nil
}

func (d *Driver) Viewport(ctx context.Context) (driver.Viewport, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.viewport, nil
}

func (d *Driver) PageSource(ctx context.Context) (string, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.PageHTML, nil
}

func (d *Driver) Capabilities(ctx context.Context) (map[string]string, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return map[string]string{
		"browserName":    string(d.Config.Kind),
		"browserVersion": "fake-1.0",
	}, nil
}

func (d *Driver) Quit(ctx context.Context) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.Closed = true
	return d.QuitErr
}

// Factory is a fake driver.Factory that hands out fake Drivers and records
// every one it created.
type Factory struct {
	mu sync.Mutex

	// CreateErr, when set, fails every Create call.
	CreateErr error
	// FailNext makes the next N Create calls fail.
	FailNext int
	// OnCreate, when set, customizes each driver before it is returned.
	OnCreate func(d *Driver)

	// Created holds every driver handed out, in creation order.
	Created []*Driver
}

func (f *Factory) Create(ctx context.Context, cfg driver.Config) (driver.Driver, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.CreateErr != nil {
		return nil, f.CreateErr
	}
	if f.FailNext > 0 {
		f.FailNext--
		return nil, fmt.Errorf("driver creation failed")
	}
	d := New()
	d.Config = cfg
	if f.OnCreate != nil {
		f.OnCreate(d)
	}
	f.Created = append(f.Created, d)
	return d, nil
}

// Last returns the most recently created driver, or nil.
func (f *Factory) Last() *Driver {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.Created) == 0 {
		return nil
	}
	return f.Created[len(f.Created)-1]
}
