package main

import (
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"

	"backtestlab/internal/config"
	"backtestlab/internal/logger"
	"backtestlab/internal/wiring"
)

func main() {
	cfgPath := os.Getenv("BACKTESTLAB_CONFIG")
	if cfgPath == "" {
		cfgPath = "configs/config.yaml"
	}

	cfg, err := config.Load(cfgPath)
	if err != nil {
		log.Fatalf("loading config failed: %v", err)
	}

	logFile, err := setupLogOutput(cfg.Log.Path)
	if err != nil {
		log.Fatalf("initializing log output failed: %v", err)
	}
	if logFile != nil {
		defer logFile.Close()
	}
	logger.SetLevel(cfg.Log.Level)
	logger.Infof("config loaded (env=%s, workers=%d)", cfg.Server.Env, cfg.Backtest.Workers)

	app, err := wiring.Initialize(cfg)
	if err != nil {
		log.Fatalf("wiring app failed: %v", err)
	}
	defer app.Close()

	logger.Infof("listening on %s", cfg.Server.HTTPAddr)
	if err := app.Server.Run(); err != nil {
		log.Fatalf("http server exited: %v", err)
	}
}

func setupLogOutput(path string) (*os.File, error) {
	trimmed := strings.TrimSpace(path)
	if trimmed == "" {
		return nil, nil
	}
	dir := filepath.Dir(trimmed)
	if dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, err
		}
	}
	file, err := os.OpenFile(trimmed, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, err
	}
	mw := io.MultiWriter(os.Stdout, file)
	log.SetOutput(mw)
	logger.SetOutput(mw)
	return file, nil
}
