package main

import (
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"log/slog"
	"os"

	"github.com/joho/godotenv"

	"github.com/soocke/barcode-tracker-go/app"
	"github.com/soocke/barcode-tracker-go/config"
)

func main() {
	cfgPath := flag.String("config", "barcode-tracker.json", "path to the JSON config file")
	source := flag.String("source", "", "frame source: synthetic or screen (overrides config)")
	debugFlag := flag.Bool("debug", false, "enable debug logging and runtime stats")
	flag.Parse()

	// Base config from defaults, overlaid by the config file
	cfg, err := config.Load(*cfgPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "config %s: %v\n", *cfgPath, err)
		os.Exit(1)
	}
	// Optional .env file; BT_* variables override the config file
	envErr := godotenv.Load()
	cfg.ApplyEnv(os.LookupEnv)
	if *source != "" {
		cfg.Source = *source
	}
	if *debugFlag {
		cfg.Debug = true
	}

	level := slog.LevelInfo
	if cfg.Debug {
		level = slog.LevelDebug
	}
	logger, closer := NewLogger(level, cfg.LogFile)
	defer closer.Close()
	slog.SetDefault(logger)
	if envErr != nil && !errors.Is(envErr, fs.ErrNotExist) {
		logger.Warn("could not read .env", "error", envErr)
	}

	application, err := app.NewApp("Barcode Tracker", cfg.ViewWidth+260, cfg.ViewHeight+320, cfg, *cfgPath, logger)
	if err != nil {
		logger.Error("startup failed", "error", err)
		os.Exit(1)
	}
	application.Start()
}
