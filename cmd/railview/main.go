// Package main is the entry point for the railview scene viewer.
package main

import (
	"fmt"
	"os"

	"go.uber.org/zap"

	"github.com/Faultbox/railview/internal/config"
	"github.com/Faultbox/railview/internal/game"
	"github.com/Faultbox/railview/internal/logger"
)

func main() {
	// Parse CLI flags first
	config.ParseFlags()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Config error: %v\n", err)
		os.Exit(1)
	}

	if config.SaveRequested() {
		path, err := cfg.Save()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Saving config: %v\n", err)
			os.Exit(1)
		}
		fmt.Println("wrote", path)
		return
	}

	if err := logger.Init(cfg.Logging.Level, cfg.Logging.LogFile); err != nil {
		fmt.Fprintf(os.Stderr, "Logger error: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Log.Info("=== railview ===", zap.String("config_file", cfg.Source))
	logger.Log.Debug("config", zap.Any("config", cfg))

	g, err := game.New(cfg)
	if err != nil {
		logger.Log.Error("failed to start viewer", zap.Error(err))
		logger.Sync()
		os.Exit(1)
	}
	defer g.Close()

	if err := g.Run(); err != nil {
		logger.Log.Error("viewer error", zap.Error(err))
		os.Exit(1)
	}

	logger.Log.Info("viewer closed normally")
}
