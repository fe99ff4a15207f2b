package main

import (
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/finboard/finboard/internal/dashboard"
	"github.com/finboard/finboard/internal/tui"
)

func main() {
	var (
		serverURL = flag.String("server", "http://127.0.0.1:8080", "dataset server base URL")
		pageSize  = flag.Int("page-size", 100, "rows added per load")
		maxRows   = flag.Int("max-rows", 500, "server row ceiling")
		timeout   = flag.Duration("timeout", 15*time.Second, "per-fetch timeout")
		logPath   = flag.String("log", "", "write logs to this file (default: discard)")
	)
	flag.Parse()

	if err := run(*serverURL, *pageSize, *maxRows, *timeout, *logPath); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(serverURL string, pageSize, maxRows int, timeout time.Duration, logPath string) error {
	// The alternate screen owns stdout, so logs go to a file or nowhere.
	logger, closeLog, err := setupLogger(logPath)
	if err != nil {
		return fmt.Errorf("open log file: %w", err)
	}
	defer closeLog()

	client := dashboard.NewClient(serverURL, timeout)
	screen := tui.NewScreen()
	engine := dashboard.NewEngine(logger, client, screen, dashboard.Config{
		PageSize:     pageSize,
		MaxRows:      maxRows,
		FetchTimeout: timeout,
	})

	logger.Info("starting dashboard", slog.String("server", serverURL))

	p := tea.NewProgram(tui.NewModel(engine, screen), tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		logger.Error("dashboard error", slog.Any("error", err))
		return err
	}

	logger.Info("shutting down")
	return nil
}

func setupLogger(path string) (*slog.Logger, func(), error) {
	if path == "" {
		return slog.New(slog.NewTextHandler(io.Discard, nil)), func() {}, nil
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, nil, err
	}
	logger := slog.New(slog.NewJSONHandler(f, &slog.HandlerOptions{AddSource: true}))
	return logger, func() { _ = f.Close() }, nil
}
