// Package main provides the pagelens page-quality analysis service. It
// manages a pool of browser instances and answers XML tool calls read
// from stdin, one result block per call.
package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/entrhq/pagelens/pkg/analysis"
	"github.com/entrhq/pagelens/pkg/config"
	"github.com/entrhq/pagelens/pkg/driver"
	"github.com/entrhq/pagelens/pkg/logging"
	"github.com/entrhq/pagelens/pkg/metrics"
	"github.com/entrhq/pagelens/pkg/pool"
	"github.com/entrhq/pagelens/pkg/tools"
	"github.com/entrhq/pagelens/pkg/tools/audit"
)

const version = "0.1.0"

// Flags holds the command line configuration.
type Flags struct {
	ConfigPath  string
	ShowVersion bool
	ListTools   bool
}

func main() {
	flags := parseFlags()

	if flags.ShowVersion {
		fmt.Printf("pagelens v%s\n", version)
		return
	}

	ctx, cancel := context.WithCancel(context.Background())

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigChan
		fmt.Fprintln(os.Stderr, "\nShutting down gracefully...")
		cancel()
	}()

	if err := run(ctx, flags); err != nil {
		cancel()
		log.Fatalf("Application error: %v", err)
	}
}

// parseFlags parses command line flags.
func parseFlags() *Flags {
	flags := &Flags{}

	flag.StringVar(&flags.ConfigPath, "config", "", "Path to config file (default: ~/.pagelens/config.yaml)")
	flag.BoolVar(&flags.ShowVersion, "version", false, "Show version and exit")
	flag.BoolVar(&flags.ListTools, "list-tools", false, "List available tools and exit")

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "pagelens - Browser pool and page-quality analysis service\n\n")
		fmt.Fprintf(os.Stderr, "Usage: pagelens [options]\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nEnvironment Variables:\n")
		fmt.Fprintf(os.Stderr, "  PAGELENS_POOL_MAX_INSTANCES    Pool concurrency ceiling\n")
		fmt.Fprintf(os.Stderr, "  PAGELENS_METRICS_ENABLED       Serve Prometheus metrics\n")
		fmt.Fprintf(os.Stderr, "\nTool calls are read from stdin as XML blocks:\n")
		fmt.Fprintf(os.Stderr, "  <tool><tool_name>analyze_page</tool_name><arguments><url>https://example.com</url></arguments></tool>\n")
	}

	flag.Parse()
	return flags
}

// run executes the main application logic.
func run(ctx context.Context, flags *Flags) error {
	cfg, err := config.Load(flags.ConfigPath)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	logger, logErr := logging.NewLogger("main")
	if logErr != nil {
		fmt.Fprintf(os.Stderr, "file logging unavailable, using stderr: %v\n", logErr)
	}

	var mx *metrics.Metrics
	if cfg.Metrics.Enabled {
		registry := prometheus.NewRegistry()
		mx = metrics.New(registry)
		go serveMetrics(cfg.Metrics.Addr, registry, logger)
	}

	factory := driver.NewPlaywrightFactory()
	manager := pool.NewManager(factory, pool.Options{
		MaxInstances:        cfg.Pool.MaxInstances,
		NavigationTimeout:   cfg.Pool.NavigationTimeout(),
		IdleTimeout:         cfg.Pool.IdleTimeout(),
		AutoCleanup:         cfg.Pool.AutoCleanup,
		ResourceMonitoring:  cfg.Pool.ResourceMonitoring,
		HealthCheckInterval: cfg.Pool.HealthCheckInterval(),
	}, logger)
	manager.SetMetrics(mx)

	analyzer := analysis.NewAnalyzer(logger)
	registry := audit.NewRegistry(manager, analyzer, &cfg, mx)

	dispatcher := tools.NewDispatcher()
	dispatcher.Register(registry.RegisterTools()...)

	if flags.ListTools {
		for _, tool := range dispatcher.List() {
			fmt.Printf("%s\n  %s\n", tool.Name(), tool.Description())
		}
		return nil
	}

	if err := factory.Initialize(); err != nil {
		return fmt.Errorf("failed to initialize browser runtime: %w", err)
	}
	defer factory.Stop()

	if err := manager.Initialize(ctx); err != nil {
		return fmt.Errorf("failed to initialize pool: %w", err)
	}
	defer func() {
		if err := manager.Shutdown(context.Background()); err != nil {
			logger.Warnf("pool shutdown: %v", err)
		}
	}()

	logger.Infof("pagelens v%s started (session %s)", version, logger.SessionID())
	return serve(ctx, dispatcher, logger)
}

// serve reads tool call blocks from stdin and writes one result block per
// call to stdout. The loop ends on EOF or context cancellation.
func serve(ctx context.Context, dispatcher *tools.Dispatcher, logger *logging.Logger) error {
	scanner := bufio.NewScanner(os.Stdin)
	scanner.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)

	var block strings.Builder
	for scanner.Scan() {
		if err := ctx.Err(); err != nil {
			return nil
		}

		line := scanner.Text()
		block.WriteString(line)
		block.WriteString("\n")
		if !strings.Contains(line, "</tool>") {
			continue
		}

		text := block.String()
		block.Reset()

		call, err := tools.ParseToolCall(text)
		if err != nil {
			writeResult(os.Stdout, "", fmt.Errorf("invalid tool call: %w", err))
			continue
		}

		logger.Infof("dispatching tool %s", call.ToolName)
		result, _, err := dispatcher.Dispatch(ctx, call)
		writeResult(os.Stdout, result, err)
	}
	return scanner.Err()
}

// xmlEscaper escapes the XML metacharacters in result payloads. A plain
// replacer rather than xml.EscapeText so newlines in report bodies stay
// readable.
var xmlEscaper = strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;")

// writeResult emits one result block. Payloads are escaped so page content
// or error text cannot break the result framing.
func writeResult(w io.Writer, result string, err error) {
	if err != nil {
		fmt.Fprintf(w, "<result><error>%s</error></result>\n", xmlEscaper.Replace(err.Error()))
		return
	}
	fmt.Fprintf(w, "<result>%s</result>\n", xmlEscaper.Replace(result))
}

// serveMetrics exposes the Prometheus registry over HTTP. Failures are
// logged, never fatal: telemetry must not take the service down.
func serveMetrics(addr string, registry *prometheus.Registry, logger *logging.Logger) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))
	logger.Infof("metrics listening on %s", addr)
	if err := http.ListenAndServe(addr, mux); err != nil {
		logger.Errorf("metrics server stopped: %v", err)
	}
}
