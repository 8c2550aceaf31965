package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/consistent-milk12/fsm-sub001/internal/config"
)

func main() {
	configPath := config.DefaultPath()
	cfg, err := config.EnsureFile(configPath)
	if err != nil {
		slog.Warn("[tfm] using default configuration", "path", configPath, "error", err)
		cfg = config.DefaultConfig()
	}
	setupLogging(cfg.LogLevel)

	if cfg.ClipboardPath == "" {
		cfg.ClipboardPath = filepath.Join(filepath.Dir(configPath), "clipboard.bin")
	}

	startDir := "."
	if len(os.Args) > 1 {
		startDir = os.Args[1]
	}
	absDir, err := filepath.Abs(startDir)
	if err != nil {
		slog.Error("[tfm] failed to resolve start directory", "dir", startDir, "error", err)
		os.Exit(1)
	}

	application, err := newApp(cfg, absDir)
	if err != nil {
		slog.Error("[tfm] failed to initialize", "error", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sig
		slog.Info("[tfm] shutdown signal received")
		cancel()
	}()

	if err := application.run(ctx); err != nil {
		slog.Error("[tfm] exited with error", "error", err)
		os.Exit(1)
	}
}

func setupLogging(level string) {
	var lvl slog.Level
	switch level {
	case "debug":
		lvl = slog.LevelDebug
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}
	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: lvl})
	slog.SetDefault(slog.New(handler))
}
