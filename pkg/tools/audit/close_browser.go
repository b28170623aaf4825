package audit

import (
	"context"
	"encoding/xml"
	"fmt"

	"github.com/entrhq/pagelens/pkg/pool"
	"github.com/entrhq/pagelens/pkg/tools"
)

// CloseBrowserTool terminates a browser instance and removes it from the
// pool.
type CloseBrowserTool struct {
	manager *pool.Manager
}

// NewCloseBrowserTool creates a new close browser tool.
func NewCloseBrowserTool(manager *pool.Manager) *CloseBrowserTool {
	return &CloseBrowserTool{manager: manager}
}

// Name returns the tool name.
func (t *CloseBrowserTool) Name() string {
	return "close_browser"
}

// Description returns the tool description.
func (t *CloseBrowserTool) Description() string {
	return "Close a browser instance and remove it from the pool. The instance cannot be reused afterwards."
}

// Schema returns the tool's JSON schema.
func (t *CloseBrowserTool) Schema() map[string]interface{} {
	return tools.BaseToolSchema(
		map[string]interface{}{
			"id": map[string]interface{}{
				"type":        "string",
				"description": "Instance id to close",
			},
		},
		[]string{"id"},
	)
}

type closeBrowserInput struct {
	XMLName xml.Name `xml:"arguments"`
	ID      string   `xml:"id"`
}

// Execute closes the instance.
func (t *CloseBrowserTool) Execute(ctx context.Context, argsXML []byte) (string, map[string]interface{}, error) {
	var input closeBrowserInput
	if err := tools.UnmarshalXMLWithFallback(argsXML, &input); err != nil {
		return "", nil, fmt.Errorf("invalid parameters: %w", err)
	}
	if input.ID == "" {
		return "", nil, fmt.Errorf("id parameter is required")
	}

	if err := t.manager.CloseBrowser(ctx, input.ID); err != nil {
		return "", nil, fmt.Errorf("failed to close browser: %w", err)
	}
	return fmt.Sprintf("Browser instance %s closed.", input.ID), nil, nil
}
