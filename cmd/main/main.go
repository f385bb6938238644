package main

import (
	"fmt"
	"log/slog"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/pflag"

	"github.com/user/bus-explorer-tui/pkg/config"
	"github.com/user/bus-explorer-tui/pkg/core"
	"github.com/user/bus-explorer-tui/pkg/models"
	"github.com/user/bus-explorer-tui/pkg/ui"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	// Phase 1: Bootstrap
	// Flags override config, and saved state fills in paths from the last
	// session when neither flags nor config name them.
	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	state, err := config.LoadState()
	if err != nil {
		return fmt.Errorf("load state: %w", err)
	}

	var (
		catalogPath string
		logPath     string
		filtersPath string
		logOutput   string
		demo        bool
	)

	flagSet := pflag.NewFlagSet("bus-explorer-tui", pflag.ContinueOnError)
	flagSet.StringVar(&catalogPath, "catalog", "", "project catalog (.json, or .zip bundle with one .json member)")
	flagSet.StringVarP(&logPath, "log-file", "l", "", "telegram log (.log, rotated .gz, or .zip archive)")
	flagSet.StringVar(&filtersPath, "filters", "", "named-filter YAML store (default: <log>.filters.yaml)")
	flagSet.StringVar(&logOutput, "log-output", "", "write JSON debug records to this file")
	flagSet.BoolVar(&demo, "demo", false, "run against generated demo data, no files required")
	flagSet.BoolVar(&cfg.VimMode, "vim", cfg.VimMode, "hjkl navigation in addition to arrow keys")
	flagSet.IntVar(&cfg.PollIntervalMs, "poll-interval", cfg.PollIntervalMs, "tail poll interval in milliseconds")
	flagSet.IntVar(&cfg.IdleWindowSec, "idle-window", cfg.IdleWindowSec, "seconds of inactivity before tailing pauses")
	flagSet.IntVar(&cfg.MaxCacheSize, "max-cache", cfg.MaxCacheSize, "maximum telegrams kept in memory")
	flagSet.IntVar(&cfg.MaxRenderLines, "max-render", cfg.MaxRenderLines, "maximum rows handed to the renderer")
	flagSet.BoolP("help", "h", false, "show help")

	if err := flagSet.Parse(os.Args[1:]); err != nil {
		if err == pflag.ErrHelp {
			printHelp(flagSet)
			return nil
		}
		return err
	}
	if help, _ := flagSet.GetBool("help"); help {
		printHelp(flagSet)
		return nil
	}
	if args := flagSet.Args(); len(args) > 0 {
		return fmt.Errorf("unexpected argument: %s", args[0])
	}

	if catalogPath == "" {
		catalogPath = cfg.CatalogPath
	}
	if logPath == "" {
		logPath = cfg.LogPath
	}
	if filtersPath == "" {
		filtersPath = cfg.FiltersPath
	}
	if logOutput == "" {
		logOutput = cfg.LogOutput
	}
	if !demo {
		if catalogPath == "" {
			catalogPath = state.LastCatalogPath
		}
		if logPath == "" {
			logPath = state.LastLogPath
		}
	}

	if !demo && catalogPath == "" && logPath == "" {
		printHelp(flagSet)
		return fmt.Errorf("nothing to open: pass --catalog and/or --log-file, or --demo")
	}

	closeLogging, err := setupLogging(logOutput)
	if err != nil {
		return err
	}
	defer closeLogging()

	filters := config.NewFilterStore(resolveFiltersPath(filtersPath, logPath))
	if !demo {
		if err := filters.Load(); err != nil {
			slog.Warn("named filters unavailable", "path", filters.Path(), "err", err)
		}
	}

	c := core.NewCore(nil, filters, cfg.MaxCacheSize, cfg.MaxRenderLines)
	if window, ok := restoreWindow(state); ok && !demo {
		// No source is loaded yet, so this only installs the window.
		_ = c.SetTimeWindow(window)
	}

	// Phase 2: Start TUI
	// The app loads catalog and log in a deferred command, so a slow or
	// broken source never blocks the first frame.
	app := ui.NewApp(c, cfg, catalogPath, logPath, demo)
	if err := tea.NewProgram(app, tea.WithAltScreen()).Start(); err != nil {
		return fmt.Errorf("run app: %w", err)
	}
	return nil
}

// setupLogging routes slog away from the terminal: warnings and errors to
// stderr, and everything at debug level to a JSON file when requested. The
// alt screen owns stdout, so nothing may log there.
func setupLogging(logOutput string) (func(), error) {
	if logOutput == "" {
		slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn})))
		return func() {}, nil
	}

	file, err := os.OpenFile(logOutput, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0600)
	if err != nil {
		return nil, fmt.Errorf("open log output %s: %w", logOutput, err)
	}
	slog.SetDefault(slog.New(slog.NewJSONHandler(file, &slog.HandlerOptions{Level: slog.LevelDebug})))
	return func() { _ = file.Close() }, nil
}

// resolveFiltersPath picks the named-filter store location: an explicit
// path wins, otherwise the store lives next to the log.
func resolveFiltersPath(filtersPath, logPath string) string {
	if filtersPath != "" {
		return filtersPath
	}
	return config.DefaultFiltersPath(logPath)
}

// restoreWindow rebuilds the saved time-of-day window. Unparseable saved
// values are dropped rather than blocking startup.
func restoreWindow(state config.State) (models.TimeWindow, bool) {
	var window models.TimeWindow
	if state.TimeFilterStart != "" {
		if start, err := models.ParseClockTime(state.TimeFilterStart); err == nil {
			window.Start = &start
		}
	}
	if state.TimeFilterEnd != "" {
		if end, err := models.ParseClockTime(state.TimeFilterEnd); err == nil {
			window.End = &end
		}
	}
	return window, window.Active()
}

func printHelp(flagSet *pflag.FlagSet) {
	fmt.Fprintf(os.Stderr, `Bus explorer: interactive terminal UI for timestamped bus telegram logs.

Telegrams are enriched from a project catalog export and explored through
three selectable trees (group addresses, topology, building), named
filters, a global regex, and a time-of-day window. Growing logs are tailed;
.gz and .zip sources are read as static archives.

Usage:
  bus-explorer-tui [flags]

Examples:
  # Browse a log with catalog names
  bus-explorer-tui --catalog project.json --log-file bus.log

  # Re-open the previous session's sources
  bus-explorer-tui

  # Try the UI without any files
  bus-explorer-tui --demo

Flags:
`)
	flagSet.SetOutput(os.Stderr)
	flagSet.PrintDefaults()
}
