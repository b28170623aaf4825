package audit

import (
	"context"
	"fmt"
	"time"

	"github.com/entrhq/pagelens/pkg/pool"
	"github.com/entrhq/pagelens/pkg/tools"
)

// ResourceUsageTool reports process memory and pool occupancy.
type ResourceUsageTool struct {
	manager *pool.Manager
}

// NewResourceUsageTool creates a new resource usage tool.
func NewResourceUsageTool(manager *pool.Manager) *ResourceUsageTool {
	return &ResourceUsageTool{manager: manager}
}

// Name returns the tool name.
func (t *ResourceUsageTool) Name() string {
	return "resource_usage"
}

// Description returns the tool description.
func (t *ResourceUsageTool) Description() string {
	return "Report process memory usage, goroutine count and browser pool occupancy."
}

// Schema returns the tool's JSON schema.
func (t *ResourceUsageTool) Schema() map[string]interface{} {
	return tools.BaseToolSchema(map[string]interface{}{}, nil)
}

// Execute snapshots resource usage.
func (t *ResourceUsageTool) Execute(ctx context.Context, argsXML []byte) (string, map[string]interface{}, error) {
	usage := t.manager.ResourceUsage()

	result := fmt.Sprintf(`Resource usage

- Heap allocated: %.1f MB (%.1f MB from OS)
- GC cycles: %d | Goroutines: %d
- Instances: %d total, %d active, %d idle
- Uptime: %s`,
		float64(usage.AllocBytes)/(1024*1024),
		float64(usage.SysBytes)/(1024*1024),
		usage.NumGC, usage.Goroutines,
		usage.TotalInstances, usage.ActiveInstances, usage.IdleInstances,
		usage.Uptime.Round(time.Second),
	)

	return result, map[string]interface{}{
		"total_instances":  usage.TotalInstances,
		"active_instances": usage.ActiveInstances,
	}, nil
}
