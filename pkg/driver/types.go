package driver

import "fmt"

// Kind identifies a supported browser vendor. The set is closed: dispatch
// over kinds goes through small per-kind tables, not open polymorphism.
type Kind string

const (
	KindChrome  Kind = "chrome"
	KindFirefox Kind = "firefox"
	KindEdge    Kind = "edge"
)

// Valid reports whether k is one of the supported browser kinds.
func (k Kind) Valid() bool {
	switch k {
	case KindChrome, KindFirefox, KindEdge:
		return true
	}
	return false
}

// ParseKind converts a user-supplied string into a Kind.
func ParseKind(s string) (Kind, error) {
	k := Kind(s)
	if !k.Valid() {
		return "", fmt.Errorf("unsupported browser kind %q", s)
	}
	return k, nil
}

// Viewport represents the browser viewport dimensions.
type Viewport struct {
	Width  int `json:"width"`
	Height int `json:"height"`
}

// Config describes how a browser session should be launched. Instances are
// matched for reuse field-for-field on Kind, Headless, Viewport and
// UserAgent; ExtraArgs are passed through to the launcher and do not
// participate in matching.
type Config struct {
	Kind      Kind     `json:"kind"`
	Headless  bool     `json:"headless"`
	Viewport  Viewport `json:"viewport"`
	UserAgent string   `json:"user_agent,omitempty"`
	ExtraArgs []string `json:"extra_args,omitempty"`
}

// Matches reports whether two configurations are interchangeable for
// instance reuse.
func (c Config) Matches(other Config) bool {
	return c.Kind == other.Kind &&
		c.Headless == other.Headless &&
		c.Viewport == other.Viewport &&
		c.UserAgent == other.UserAgent
}

// Strategy is a locator strategy understood by the facade.
type Strategy string

const (
	ByCSSSelector     Strategy = "css selector"
	ByXPath           Strategy = "xpath"
	ByID              Strategy = "id"
	ByClassName       Strategy = "class name"
	ByTagName         Strategy = "tag name"
	ByLinkText        Strategy = "link text"
	ByPartialLinkText Strategy = "partial link text"
	ByName            Strategy = "name"
)

// Locator pairs a strategy with its value, e.g. {css selector, "#login"}.
type Locator struct {
	Using Strategy `json:"using"`
	Value string   `json:"value"`
}

// Element is a point-in-time snapshot of a located DOM element. It carries
// no live reference back to the page.
type Element struct {
	Tag        string            `json:"tag"`
	Text       string            `json:"text"`
	Attributes map[string]string `json:"attributes,omitempty"`
}
