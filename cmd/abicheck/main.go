// Command abicheck verifies that a compiled WebAssembly guest threads
// scalar values correctly across the host/guest boundary.
//
// Usage:
//
//	abicheck [flags] <module.wasm>
//	abicheck -suite suite.yaml [flags]
//
// Exit codes: 0 all scenarios passed, 1 assertion or trap failure,
// 2 load failure, 3 link failure, 4 usage or configuration error.
package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/snowmelt/abicheck/config"
	"github.com/snowmelt/abicheck/core"
	"github.com/snowmelt/abicheck/engine"
	"github.com/snowmelt/abicheck/harness"
	"github.com/snowmelt/abicheck/internal/wasmgen"
	"github.com/snowmelt/abicheck/pkg/logging"
	"github.com/snowmelt/abicheck/pkg/metrics"
	"github.com/snowmelt/abicheck/pkg/tracing"
	"github.com/snowmelt/abicheck/scenario"
)

const version = "0.1.0"

const (
	exitOK       = 0
	exitScenario = 1
	exitLoad     = 2
	exitLink     = 3
	exitUsage    = 4
)

func main() {
	os.Exit(run())
}

func run() int {
	cfg := config.Load()

	var (
		scenariosFlag = flag.String("scenarios", strings.Join(cfg.Scenarios, ","), "comma-separated scenarios to run, or \"all\" (default: many-arguments)")
		suitePath     = flag.String("suite", "", "YAML suite file; replaces the positional module path")
		timeout       = flag.Duration("timeout", cfg.Timeout, "per-scenario timeout")
		parallelism   = flag.Int("parallelism", cfg.Parallelism, "concurrent scenario runs")
		metricsAddr   = flag.String("metrics-addr", cfg.MetricsAddr, "serve /metrics and /healthz on this address")
		listFlag      = flag.Bool("list", false, "list known scenarios and exit")
		genFixture    = flag.String("gen-fixture", "", "write the reference many-arguments guest to this path and exit")
	)
	flag.Parse()

	if *listFlag {
		for _, name := range scenario.Names() {
			fmt.Println(name)
		}
		return exitOK
	}

	if *genFixture != "" {
		if err := os.WriteFile(*genFixture, wasmgen.ManyArgumentsGuest(), 0o644); err != nil {
			fmt.Fprintln(os.Stderr, "abicheck:", err)
			return exitUsage
		}
		return exitOK
	}

	logger, err := logging.NewLogger(logging.Config{
		Level:  cfg.LogLevel,
		Format: cfg.LogFormat,
		Output: "stderr",
	})
	if err != nil {
		fmt.Fprintln(os.Stderr, "abicheck:", err)
		return exitUsage
	}

	ctx := context.Background()

	tracer, err := tracing.NewTracer(tracing.Config{
		ServiceName:    "abicheck",
		ServiceVersion: version,
		JaegerEndpoint: cfg.JaegerEndpoint,
		Environment:    "ci",
	})
	if err != nil {
		logger.Error("tracing setup failed", "error", err)
		return exitUsage
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = tracer.Shutdown(shutdownCtx)
	}()

	m := metrics.NewPrometheusMetrics(nil)

	eng, err := engine.New(engine.Config{
		MemLimitPages: uint32(cfg.MemPages),
		CacheSize:     cfg.CacheSize,
	})
	if err != nil {
		logger.Error("engine setup failed", "error", err)
		return exitUsage
	}
	eng.CacheObserver = m.RecordCache
	defer eng.Close(ctx)

	if *metricsAddr != "" {
		mux := http.NewServeMux()
		mux.Handle("/metrics", metrics.Handler())
		mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusOK)
			_, _ = w.Write([]byte("ok"))
		})
		go func() {
			logger.Info("metrics listening", "addr", *metricsAddr)
			if err := http.ListenAndServe(*metricsAddr, mux); err != nil {
				logger.Error("metrics server stopped", "error", err)
			}
		}()
	}

	runner := harness.NewRunner(eng, logger, m, tracer, harness.Options{
		Timeout:     *timeout,
		Parallelism: *parallelism,
	})

	entries, code := resolveEntries(*suitePath, *scenariosFlag)
	if code != exitOK {
		return code
	}

	var reports []core.Report
	for _, entry := range entries {
		factories, err := scenario.Find(entry.scenarios)
		if err != nil {
			fmt.Fprintln(os.Stderr, "abicheck:", err)
			return exitUsage
		}
		r := runner
		if entry.timeout > 0 {
			r = runner.WithTimeout(entry.timeout)
		}
		reports = append(reports, r.RunModule(ctx, entry.path, factories)...)
	}

	return summarize(reports)
}

type runEntry struct {
	path      string
	scenarios []string
	timeout   time.Duration
}

// resolveEntries turns CLI input into module/scenario pairs. Without an
// explicit selection only the many-arguments scenario runs; "all" selects
// every registered scenario. Nil scenarios mean run all.
func resolveEntries(suitePath, scenariosFlag string) ([]runEntry, int) {
	defaults := splitScenarios(scenariosFlag)
	switch {
	case len(defaults) == 1 && defaults[0] == "all":
		defaults = nil
	case len(defaults) == 0:
		defaults = []string{"many-arguments"}
	}

	if suitePath != "" {
		suite, err := config.LoadSuite(suitePath)
		if err != nil {
			fmt.Fprintln(os.Stderr, "abicheck:", err)
			return nil, exitUsage
		}
		entries := make([]runEntry, 0, len(suite.Modules))
		for _, mod := range suite.Modules {
			names := mod.Scenarios
			if len(names) == 0 {
				names = defaults
			}
			entries = append(entries, runEntry{
				path:      mod.Path,
				scenarios: names,
				timeout:   time.Duration(mod.Timeout),
			})
		}
		return entries, exitOK
	}

	if flag.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "usage: abicheck [flags] <module.wasm>")
		flag.PrintDefaults()
		return nil, exitUsage
	}
	return []runEntry{{path: flag.Arg(0), scenarios: defaults}}, exitOK
}

func splitScenarios(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

func summarize(reports []core.Report) int {
	code := exitOK
	for _, rep := range reports {
		if rep.Pass {
			fmt.Printf("ok   %s %s\n", rep.Scenario, rep.Module)
			continue
		}
		fmt.Printf("FAIL %s %s: %v\n", rep.Scenario, rep.Module, rep.Err)
		code = worse(code, exitCodeFor(rep.Err))
	}
	if len(reports) == 0 {
		fmt.Fprintln(os.Stderr, "abicheck: nothing to run")
		return exitUsage
	}
	return code
}

func exitCodeFor(err error) int {
	kind, ok := core.KindOf(err)
	if !ok {
		return exitScenario
	}
	switch kind {
	case core.KindLoad:
		return exitLoad
	case core.KindLink:
		return exitLink
	default:
		return exitScenario
	}
}

// worse prefers scenario failures over infrastructure ones so a CI matrix
// reports value corruption even when another module also failed to load.
func worse(a, b int) int {
	rank := func(c int) int {
		switch c {
		case exitScenario:
			return 3
		case exitLink:
			return 2
		case exitLoad:
			return 1
		}
		return 0
	}
	if rank(b) > rank(a) {
		return b
	}
	return a
}
