package audit

import (
	"context"
	"encoding/xml"
	"fmt"

	"github.com/entrhq/pagelens/pkg/pool"
	"github.com/entrhq/pagelens/pkg/tools"
)

// ReleaseBrowserTool returns a busy browser instance to the pool.
type ReleaseBrowserTool struct {
	manager *pool.Manager
}

// NewReleaseBrowserTool creates a new release browser tool.
func NewReleaseBrowserTool(manager *pool.Manager) *ReleaseBrowserTool {
	return &ReleaseBrowserTool{manager: manager}
}

// Name returns the tool name.
func (t *ReleaseBrowserTool) Name() string {
	return "release_browser"
}

// Description returns the tool description.
func (t *ReleaseBrowserTool) Description() string {
	return "Release a browser instance back to the pool so other callers can reuse it."
}

// Schema returns the tool's JSON schema.
func (t *ReleaseBrowserTool) Schema() map[string]interface{} {
	return tools.BaseToolSchema(
		map[string]interface{}{
			"id": map[string]interface{}{
				"type":        "string",
				"description": "Instance id to release",
			},
		},
		[]string{"id"},
	)
}

type releaseBrowserInput struct {
	XMLName xml.Name `xml:"arguments"`
	ID      string   `xml:"id"`
}

// Execute releases the instance. Releasing an unknown id is reported, not
// an error.
func (t *ReleaseBrowserTool) Execute(ctx context.Context, argsXML []byte) (string, map[string]interface{}, error) {
	var input releaseBrowserInput
	if err := tools.UnmarshalXMLWithFallback(argsXML, &input); err != nil {
		return "", nil, fmt.Errorf("invalid parameters: %w", err)
	}
	if input.ID == "" {
		return "", nil, fmt.Errorf("id parameter is required")
	}

	released := t.manager.ReleaseBrowser(input.ID)
	if !released {
		return fmt.Sprintf("No browser instance with id %s is tracked.", input.ID),
			map[string]interface{}{"released": false}, nil
	}
	return fmt.Sprintf("Browser instance %s released back to the pool.", input.ID),
		map[string]interface{}{"released": true}, nil
}
