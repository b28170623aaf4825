// Package audit exposes the browser pool and analysis engine as tools on
// the tool-call protocol.
package audit

import (
	"github.com/entrhq/pagelens/pkg/analysis"
	"github.com/entrhq/pagelens/pkg/config"
	"github.com/entrhq/pagelens/pkg/metrics"
	"github.com/entrhq/pagelens/pkg/pool"
	"github.com/entrhq/pagelens/pkg/tools"
)

// Registry builds the audit tool set over one pool and one analyzer.
type Registry struct {
	manager  *pool.Manager
	analyzer *analysis.Analyzer
	cfg      *config.Config
	metrics  *metrics.Metrics
	tools    []tools.Tool
}

// NewRegistry creates an audit tool registry. cfg and mx may be nil; a nil
// cfg allows every URL.
func NewRegistry(manager *pool.Manager, analyzer *analysis.Analyzer, cfg *config.Config, mx *metrics.Metrics) *Registry {
	return &Registry{
		manager:  manager,
		analyzer: analyzer,
		cfg:      cfg,
		metrics:  mx,
	}
}

// RegisterTools creates and returns all audit tools. The slice is built
// once and reused.
func (r *Registry) RegisterTools() []tools.Tool {
	if len(r.tools) > 0 {
		return r.tools
	}

	r.tools = append(r.tools,
		NewCreateBrowserTool(r.manager),
		NewListBrowsersTool(r.manager),
		NewReleaseBrowserTool(r.manager),
		NewCloseBrowserTool(r.manager),
		NewAnalyzePageTool(r.manager, r.analyzer, r.cfg, r.metrics),
		NewHealthCheckTool(r.manager),
		NewResourceUsageTool(r.manager),
	)
	return r.tools
}

// HasInstances reports whether any browser instances are tracked.
func (r *Registry) HasInstances() bool {
	return len(r.manager.AllBrowsers()) > 0
}
