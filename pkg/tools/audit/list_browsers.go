package audit

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/entrhq/pagelens/pkg/pool"
	"github.com/entrhq/pagelens/pkg/tools"
)

// ListBrowsersTool reports every tracked browser instance.
type ListBrowsersTool struct {
	manager *pool.Manager
}

// NewListBrowsersTool creates a new list browsers tool.
func NewListBrowsersTool(manager *pool.Manager) *ListBrowsersTool {
	return &ListBrowsersTool{manager: manager}
}

// Name returns the tool name.
func (t *ListBrowsersTool) Name() string {
	return "list_browsers"
}

// Description returns the tool description.
func (t *ListBrowsersTool) Description() string {
	return "List all tracked browser instances with their status, configuration and capabilities."
}

// Schema returns the tool's JSON schema.
func (t *ListBrowsersTool) Schema() map[string]interface{} {
	return tools.BaseToolSchema(map[string]interface{}{}, nil)
}

// Execute lists the tracked instances.
func (t *ListBrowsersTool) Execute(ctx context.Context, argsXML []byte) (string, map[string]interface{}, error) {
	snaps := t.manager.AllBrowsers()
	if len(snaps) == 0 {
		return "No browser instances are currently tracked.", nil, nil
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Tracked browser instances (%d):\n", len(snaps))
	for _, snap := range snaps {
		fmt.Fprintf(&b, "\n- %s\n  Kind: %s | Status: %s | Errors: %d\n  Viewport: %dx%d | Idle: %s\n",
			snap.ID, snap.Kind, snap.Status, snap.ErrorCount,
			snap.Config.Viewport.Width, snap.Config.Viewport.Height,
			time.Since(snap.LastUsedAt).Round(time.Second),
		)
	}

	return b.String(), map[string]interface{}{"count": len(snaps)}, nil
}
