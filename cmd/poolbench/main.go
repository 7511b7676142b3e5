// Command poolbench runs self-checking scenarios against the worker pool and
// prints a pass/fail table with timings.
//
// Usage:
//
//	poolbench [-workers N] [-capacity N] [-tasks N] [-task-duration D]
//	          [-scenario NAME] [-metrics-addr :9090] [-log-level warn]
//
// Every flag can also be set through a POOLBENCH_* environment variable or a
// .env file in the working directory.
package main

import (
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"
	prom "github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/schollz/progressbar/v3"
	"github.com/utkarsh5026/taskpool/observability/prometheus"
	"github.com/utkarsh5026/taskpool/pool"
)

var (
	bold  = color.New(color.Bold)
	red   = color.New(color.FgRed, color.Bold)
	green = color.New(color.FgGreen, color.Bold)
)

type result struct {
	scenario scenario
	elapsed  time.Duration
	detail   string
	err      error
}

func main() {
	cfg, err := loadConfig(os.Args[1:], ".env")
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			os.Exit(0)
		}
		_, _ = red.Fprintln(os.Stderr, err)
		os.Exit(2)
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: cfg.LogLevel}))

	base := []pool.Option{pool.WithLogger(logger)}
	if cfg.MetricsAddr != "" {
		exporter, err := serveMetrics(cfg.MetricsAddr, logger)
		if err != nil {
			_, _ = red.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
		base = append(base, pool.WithMetrics(exporter))
	}

	selected := scenarios
	if cfg.Scenario != "" {
		selected = []scenario{*findScenario(cfg.Scenario)}
	}

	_, _ = bold.Printf("poolbench: %d workers, capacity %d, %d tasks\n\n", cfg.Workers, cfg.Capacity, cfg.Tasks)

	results := runScenarios(cfg, base, selected)
	renderResults(results)

	for _, r := range results {
		if r.err != nil {
			os.Exit(1)
		}
	}
}

func runScenarios(cfg Config, base []pool.Option, selected []scenario) []result {
	bar := makeProgressBar(len(selected))
	results := make([]result, 0, len(selected))

	for _, s := range selected {
		bar.Describe(fmt.Sprintf("Running: %s", s.name))
		start := time.Now()
		detail, err := s.run(cfg, base)
		results = append(results, result{
			scenario: s,
			elapsed:  time.Since(start),
			detail:   detail,
			err:      err,
		})
		_ = bar.Add(1)
	}
	_ = bar.Finish()
	return results
}

func renderResults(results []result) {
	table := tablewriter.NewWriter(os.Stdout)
	table.Header("Scenario", "Checks", "Result", "Time", "Detail")

	failed := 0
	for _, r := range results {
		status, detail := green.Sprint("PASS"), r.detail
		if r.err != nil {
			failed++
			status, detail = red.Sprint("FAIL"), r.err.Error()
		}
		_ = table.Append(
			r.scenario.name,
			r.scenario.description,
			status,
			formatLatency(r.elapsed),
			detail,
		)
	}

	if err := table.Render(); err != nil {
		_, _ = red.Fprintln(os.Stderr, "Error in rendering results table")
	}

	fmt.Println()
	if failed > 0 {
		_, _ = red.Printf("%d of %d scenarios failed\n", failed, len(results))
		return
	}
	_, _ = green.Printf("all %d scenarios passed\n", len(results))
}

// serveMetrics registers the pool collectors on a fresh registry and serves
// it on addr in the background.
func serveMetrics(addr string, logger *slog.Logger) (*prometheus.MetricsExporter, error) {
	reg := prom.NewRegistry()
	exporter, err := prometheus.NewMetricsExporter("poolbench", reg, prometheus.ExporterOptions{})
	if err != nil {
		return nil, fmt.Errorf("metrics: %w", err)
	}

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("metrics server stopped", "addr", addr, "error", err)
		}
	}()
	logger.Info("serving metrics", "addr", addr)
	return exporter, nil
}

func makeProgressBar(total int) *progressbar.ProgressBar {
	return progressbar.NewOptions(total,
		progressbar.OptionSetDescription("Running scenarios"),
		progressbar.OptionSetWidth(40),
		progressbar.OptionShowCount(),
		progressbar.OptionSetTheme(progressbar.Theme{
			Saucer:        "█",
			SaucerHead:    "█",
			SaucerPadding: "░",
			BarStart:      "│",
			BarEnd:        "│",
		}),
		progressbar.OptionEnableColorCodes(true),
		progressbar.OptionSetWriter(os.Stderr),
		progressbar.OptionClearOnFinish(),
	)
}

// formatNumber formats an integer with comma separators.
func formatNumber(n int) string {
	s := fmt.Sprintf("%d", n)
	var b strings.Builder
	for i, c := range s {
		if i > 0 && (len(s)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(c)
	}
	return b.String()
}

// formatLatency formats a duration in the most appropriate unit.
func formatLatency(d time.Duration) string {
	switch {
	case d < time.Microsecond:
		return fmt.Sprintf("%dns", d.Nanoseconds())
	case d < time.Millisecond:
		return fmt.Sprintf("%.1fµs", float64(d.Nanoseconds())/1e3)
	case d < time.Second:
		return fmt.Sprintf("%.2fms", float64(d.Nanoseconds())/1e6)
	default:
		return fmt.Sprintf("%.2fs", d.Seconds())
	}
}
