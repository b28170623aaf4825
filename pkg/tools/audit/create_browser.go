package audit

import (
	"context"
	"encoding/xml"
	"fmt"
	"strings"

	"github.com/entrhq/pagelens/pkg/driver"
	"github.com/entrhq/pagelens/pkg/pool"
	"github.com/entrhq/pagelens/pkg/tools"
)

const (
	defaultViewportWidth  = 1280
	defaultViewportHeight = 720
)

// CreateBrowserTool launches a new pooled browser instance.
type CreateBrowserTool struct {
	manager *pool.Manager
}

// NewCreateBrowserTool creates a new create browser tool.
func NewCreateBrowserTool(manager *pool.Manager) *CreateBrowserTool {
	return &CreateBrowserTool{manager: manager}
}

// Name returns the tool name.
func (t *CreateBrowserTool) Name() string {
	return "create_browser"
}

// Description returns the tool description.
func (t *CreateBrowserTool) Description() string {
	return "Create a new managed browser instance. Instances are pooled, reused across analyses and bounded by a concurrency ceiling."
}

// Schema returns the tool's JSON schema.
func (t *CreateBrowserTool) Schema() map[string]interface{} {
	return tools.BaseToolSchema(
		map[string]interface{}{
			"kind": map[string]interface{}{
				"type":        "string",
				"description": "Browser kind: chrome, firefox or edge. Default: chrome",
			},
			"headless": map[string]interface{}{
				"type":        "boolean",
				"description": "Run without a visible window. Default: true",
			},
			"width": map[string]interface{}{
				"type":        "integer",
				"description": "Viewport width in pixels. Default: 1280",
			},
			"height": map[string]interface{}{
				"type":        "integer",
				"description": "Viewport height in pixels. Default: 720",
			},
			"user_agent": map[string]interface{}{
				"type":        "string",
				"description": "Optional user agent override",
			},
		},
		nil,
	)
}

type createBrowserInput struct {
	XMLName   xml.Name `xml:"arguments"`
	Kind      string   `xml:"kind"`
	Headless  *bool    `xml:"headless"`
	Width     *int     `xml:"width"`
	Height    *int     `xml:"height"`
	UserAgent string   `xml:"user_agent"`
}

// Execute creates the instance and reports its id and capabilities.
func (t *CreateBrowserTool) Execute(ctx context.Context, argsXML []byte) (string, map[string]interface{}, error) {
	var input createBrowserInput
	if err := tools.UnmarshalXMLWithFallback(argsXML, &input); err != nil {
		return "", nil, fmt.Errorf("invalid parameters: %w", err)
	}

	cfg := driver.Config{
		Kind:      driver.KindChrome,
		Headless:  true,
		Viewport:  driver.Viewport{Width: defaultViewportWidth, Height: defaultViewportHeight},
		UserAgent: input.UserAgent,
	}
	if input.Kind != "" {
		cfg.Kind = driver.Kind(input.Kind)
	}
	if input.Headless != nil {
		cfg.Headless = *input.Headless
	}
	if input.Width != nil {
		cfg.Viewport.Width = *input.Width
	}
	if input.Height != nil {
		cfg.Viewport.Height = *input.Height
	}

	inst, err := t.manager.CreateBrowser(ctx, cfg)
	if err != nil {
		return "", nil, fmt.Errorf("failed to create browser: %w", err)
	}

	mode := "headed"
	if cfg.Headless {
		mode = "headless"
	}
	result := fmt.Sprintf(`Browser instance created

- ID: %s
- Kind: %s
- Mode: %s
- Viewport: %dx%d pixels
- Capabilities: %s
- Status: %s`,
		inst.ID, inst.Kind, mode,
		cfg.Viewport.Width, cfg.Viewport.Height,
		strings.Join(inst.Capabilities, ", "),
		inst.Status,
	)

	return result, map[string]interface{}{"id": inst.ID, "kind": string(inst.Kind)}, nil
}
