// Package main is the entry point for the relief tile server.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/arpentry/relief/internal/config"
	"github.com/arpentry/relief/internal/logger"
	"github.com/arpentry/relief/internal/pipeline"
	"github.com/arpentry/relief/internal/preview"
	"github.com/arpentry/relief/internal/server"
)

func main() {
	// Parse CLI flags first
	config.ParseFlags()

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Config error: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	if err := logger.Init(cfg.Logging.Level, cfg.Logging.LogFile); err != nil {
		fmt.Fprintf(os.Stderr, "Logger error: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Info("=== Relief Tile Server ===")
	logger.Sugar.Debugf("Config: %+v", cfg)

	// Open the dataset and prepare the pipeline
	p, err := pipeline.FromConfig(cfg)
	if err != nil {
		logger.Error("failed to prepare pipeline", zap.Error(err))
		os.Exit(1)
	}
	defer p.Close()

	meta := p.Metadata()
	logger.Info("dataset loaded",
		zap.String("path", cfg.Dataset.Path),
		zap.String("projection", meta.Projection),
		zap.Int("width", meta.Width),
		zap.Int("height", meta.Height),
		zap.Float64("min_elevation", meta.MinElevation),
		zap.Float64("max_elevation", meta.MaxElevation))

	srv, err := server.New(server.Options{
		Pipeline:       p,
		Log:            logger.Log,
		CacheBytes:     cfg.Server.CacheMB << 20,
		PreviewEnabled: cfg.Preview.Enabled,
		Preview: preview.Options{
			Size:        cfg.Preview.Size,
			Supersample: cfg.Preview.Supersample,
			Background:  cfg.Preview.Background,
			Surface:     cfg.Preview.Surface,
		},
	})
	if err != nil {
		logger.Error("failed to create server", zap.Error(err))
		os.Exit(1)
	}
	defer srv.Close()

	// Serve until interrupted
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := srv.Run(ctx, cfg.Server.Address, cfg.Server.ShutdownTimeout); err != nil {
		logger.Error("server error", zap.Error(err))
		os.Exit(1)
	}

	logger.Info("server closed normally")
}
