package audit

import (
	"context"
	"fmt"
	"strings"

	"github.com/entrhq/pagelens/pkg/pool"
	"github.com/entrhq/pagelens/pkg/tools"
)

// HealthCheckTool probes every pooled instance and reports the aggregate
// health state.
type HealthCheckTool struct {
	manager *pool.Manager
}

// NewHealthCheckTool creates a new health check tool.
func NewHealthCheckTool(manager *pool.Manager) *HealthCheckTool {
	return &HealthCheckTool{manager: manager}
}

// Name returns the tool name.
func (t *HealthCheckTool) Name() string {
	return "health_check"
}

// Description returns the tool description.
func (t *HealthCheckTool) Description() string {
	return "Probe every pooled browser instance for liveness. Dead instances are recovered with a fresh session."
}

// Schema returns the tool's JSON schema.
func (t *HealthCheckTool) Schema() map[string]interface{} {
	return tools.BaseToolSchema(map[string]interface{}{}, nil)
}

// Execute runs one health sweep.
func (t *HealthCheckTool) Execute(ctx context.Context, argsXML []byte) (string, map[string]interface{}, error) {
	status := t.manager.PerformHealthCheck(ctx)

	var b strings.Builder
	fmt.Fprintf(&b, "Pool health: %s\n", status.Status)
	fmt.Fprintf(&b, "- Instances checked: %d\n- Failed probes: %d\n", status.CheckedInstances, status.FailedProbes)
	if len(status.Issues) > 0 {
		fmt.Fprintf(&b, "\nIssues:\n")
		for _, issue := range status.Issues {
			fmt.Fprintf(&b, "- %s\n", issue)
		}
	}

	return b.String(), map[string]interface{}{
		"status":        string(status.Status),
		"failed_probes": status.FailedProbes,
	}, nil
}
