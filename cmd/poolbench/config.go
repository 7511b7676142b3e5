package main

import (
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"runtime"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds the poolbench settings. Values come from, in increasing
// precedence: built-in defaults, POOLBENCH_* environment variables (a .env
// file is loaded first if present) and command-line flags.
type Config struct {
	Workers      int
	Capacity     int
	Tasks        int
	TaskDuration time.Duration
	Scenario     string
	MetricsAddr  string
	LogLevel     slog.Level
}

func defaultConfig() Config {
	return Config{
		Workers:      runtime.GOMAXPROCS(0),
		Capacity:     2000,
		Tasks:        1000,
		TaskDuration: 100 * time.Millisecond,
		LogLevel:     slog.LevelWarn,
	}
}

// loadConfig builds the Config for args, the command line without the program name.
func loadConfig(args []string, envFile string) (Config, error) {
	if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, fmt.Errorf("config: loading %s: %w", envFile, err)
	}

	cfg := defaultConfig()
	var err error
	if cfg.Workers, err = getenvInt("POOLBENCH_WORKERS", cfg.Workers); err != nil {
		return Config{}, err
	}
	if cfg.Capacity, err = getenvInt("POOLBENCH_CAPACITY", cfg.Capacity); err != nil {
		return Config{}, err
	}
	if cfg.Tasks, err = getenvInt("POOLBENCH_TASKS", cfg.Tasks); err != nil {
		return Config{}, err
	}
	if cfg.TaskDuration, err = getenvDuration("POOLBENCH_TASK_DURATION", cfg.TaskDuration); err != nil {
		return Config{}, err
	}
	cfg.Scenario = getenvDefault("POOLBENCH_SCENARIO", cfg.Scenario)
	cfg.MetricsAddr = getenvDefault("POOLBENCH_METRICS_ADDR", cfg.MetricsAddr)
	level := getenvDefault("POOLBENCH_LOG_LEVEL", cfg.LogLevel.String())

	fset := flag.NewFlagSet("poolbench", flag.ContinueOnError)
	fset.IntVar(&cfg.Workers, "workers", cfg.Workers, "Number of workers per pool")
	fset.IntVar(&cfg.Capacity, "capacity", cfg.Capacity, "Queue capacity for the load scenarios")
	fset.IntVar(&cfg.Tasks, "tasks", cfg.Tasks, "Number of tasks in the throughput scenario")
	fset.DurationVar(&cfg.TaskDuration, "task-duration", cfg.TaskDuration, "Sleep per task in the parallelism scenario")
	fset.StringVar(&cfg.Scenario, "scenario", cfg.Scenario, "Run a single scenario by name. If empty, runs all scenarios")
	fset.StringVar(&cfg.MetricsAddr, "metrics-addr", cfg.MetricsAddr, "Serve Prometheus metrics on this address (e.g. :9090)")
	fset.StringVar(&level, "log-level", level, "Log level: debug, info, warn, error")
	if err := fset.Parse(args); err != nil {
		return Config{}, err
	}

	if err := cfg.LogLevel.UnmarshalText([]byte(level)); err != nil {
		return Config{}, fmt.Errorf("config: log level %q: %w", level, err)
	}
	if cfg.Workers < 1 || cfg.Capacity < 1 || cfg.Tasks < 1 {
		return Config{}, fmt.Errorf("config: workers, capacity and tasks must be positive (got %d, %d, %d)",
			cfg.Workers, cfg.Capacity, cfg.Tasks)
	}
	if cfg.Scenario != "" && findScenario(cfg.Scenario) == nil {
		return Config{}, fmt.Errorf("config: unknown scenario %q (have %s)", cfg.Scenario, strings.Join(scenarioNames(), ", "))
	}
	return cfg, nil
}

func getenvDefault(k, fallback string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return fallback
}

func getenvInt(k string, fallback int) (int, error) {
	v := os.Getenv(k)
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("config: %s=%q is not an integer: %w", k, v, err)
	}
	return n, nil
}

func getenvDuration(k string, fallback time.Duration) (time.Duration, error) {
	v := os.Getenv(k)
	if v == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("config: %s=%q is not a valid duration: %w", k, v, err)
	}
	return d, nil
}
