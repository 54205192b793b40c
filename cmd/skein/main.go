// # cmd/skein/main.go
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"skein/internal/app"
	"skein/internal/config"
	"skein/internal/history"
	"skein/internal/observability"
)

var (
	configPath = flag.String("config", "./skein.toml", "Path to config file")
	once       = flag.Bool("once", false, "Run single scan and exit")
	ui         = flag.Bool("ui", false, "Enable terminal UI mode")
	strict     = flag.Bool("strict", false, "Escalate same-file resolution failures to errors")
	trends     = flag.Bool("trends", false, "Print resolution trend report from history and exit")
	verbose    = flag.Bool("verbose", false, "Enable verbose logging")
	version    = flag.Bool("version", false, "Print version and exit")
)

const VERSION = "1.0.0"

func main() {
	flag.Parse()

	if *version {
		fmt.Printf("skein v%s\n", VERSION)
		os.Exit(0)
	}

	// Setup logging
	logLevel := slog.LevelInfo
	if *verbose {
		logLevel = slog.LevelDebug
	}

	logOutput := os.Stdout
	if *ui {
		// In UI mode, avoid stdout logs corrupting the TUI.
		logPath := resolveLogPath()
		if err := os.MkdirAll(filepath.Dir(logPath), 0700); err != nil {
			fmt.Fprintf(os.Stderr, "warning: failed to create log dir for %s: %v\n", logPath, err)
		} else {
			f, err := os.OpenFile(logPath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0600)
			if err == nil {
				logOutput = f
			} else {
				fmt.Fprintf(os.Stderr, "warning: failed to open log file %s: %v\n", logPath, err)
			}
		}
	}

	logger := slog.New(slog.NewTextHandler(logOutput, &slog.HandlerOptions{
		Level: logLevel,
	}))
	slog.SetDefault(logger)

	// Load config
	cfg, err := config.Load(*configPath)
	if err != nil {
		if os.IsNotExist(err) && *configPath == "./skein.toml" {
			cfg = config.Default()
		} else {
			slog.Error("failed to load config", "error", err)
			os.Exit(1)
		}
	}
	if *strict {
		cfg.Resolve.Strict = true
	}
	if flag.NArg() > 0 {
		cfg.WatchPaths = []string{flag.Arg(0)}
	}

	if *trends {
		printTrends(cfg)
		os.Exit(0)
	}

	ctx := context.Background()

	if cfg.Telemetry.OTLPEndpoint != "" {
		shutdown, err := observability.SetupTracing(ctx, cfg.Telemetry.OTLPEndpoint)
		if err != nil {
			slog.Warn("failed to set up tracing", "error", err)
		} else {
			defer shutdown(ctx)
		}
	}

	a, err := app.New(cfg)
	if err != nil {
		slog.Error("failed to initialize", "error", err)
		os.Exit(1)
	}
	defer a.Close()

	if cfg.Telemetry.MetricsAddr != "" {
		srv := observability.NewServer(cfg.Telemetry.MetricsAddr, func() observability.HealthStatus {
			return observability.HealthStatus{
				Status:       "up",
				IndexedFiles: a.Project.FileCount(),
			}
		})
		if err := srv.Start(); err != nil {
			slog.Warn("failed to start observability server", "error", err)
		} else {
			defer srv.Stop(ctx)
		}
	}

	// Initial scan and resolution run
	if err := a.InitialScan(); err != nil {
		slog.Error("initial scan failed", "error", err)
		os.Exit(1)
	}

	resolved, err := a.Resolve(ctx)
	if err != nil {
		slog.Error("resolution failed", "error", err)
		os.Exit(1)
	}

	if !*ui {
		a.PrintSummary(a.Project.FileCount(), resolved)
	}

	if *once {
		os.Exit(0)
	}

	// Watch mode
	if err := a.StartWatcher(); err != nil {
		slog.Error("failed to start watcher", "error", err)
		os.Exit(1)
	}

	if *ui {
		if err := runUI(a, resolved); err != nil {
			slog.Error("failed to run UI", "error", err)
			os.Exit(1)
		}
	} else {
		// Block forever
		select {}
	}
}

func printTrends(cfg *config.Config) {
	if cfg.History.Path == "" {
		fmt.Fprintln(os.Stderr, "trend report requires a configured history path")
		os.Exit(1)
	}
	store, err := history.Open(cfg.History.Path)
	if err != nil {
		fmt.Fprintln(os.Stderr, err.Error())
		os.Exit(1)
	}
	defer store.Close()

	runs, err := store.LoadRuns(time.Time{})
	if err != nil {
		fmt.Fprintln(os.Stderr, err.Error())
		os.Exit(1)
	}
	report, err := history.BuildTrendReport(runs, 24*time.Hour)
	if err != nil {
		fmt.Fprintln(os.Stderr, err.Error())
		os.Exit(1)
	}

	fmt.Printf("Resolution trends: %d runs from %s to %s\n",
		report.RunCount,
		report.Since.Format(time.RFC3339),
		report.Until.Format(time.RFC3339))
	for _, p := range report.Points {
		fmt.Printf("  %s  files=%d resolved=%d unresolved=%d (Δfiles=%+d Δunresolved=%+d avg=%.1f)\n",
			p.Timestamp.Format("2006-01-02 15:04"),
			p.FileCount, p.Resolved, p.Unresolved,
			p.DeltaFiles, p.DeltaUnresolved, p.AvgUnresolved)
	}
}

func resolveLogPath() string {
	if xdg := os.Getenv("XDG_STATE_HOME"); xdg != "" {
		return filepath.Join(xdg, "skein", "skein.log")
	}

	home, err := os.UserHomeDir()
	if err == nil && home != "" {
		return filepath.Join(home, ".local", "state", "skein", "skein.log")
	}

	return "skein.log"
}
